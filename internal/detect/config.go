package detect

import (
	"fmt"

	"github.com/ebbflow-cash/ebbflow/internal/common"
)

// Config holds the tunable thresholds for pattern detection and the
// forecast recommendation. The confidence thresholds and gap bands are
// the main calibration knobs; defaults mirror the documented values and
// are deliberately not "corrected" here.
type Config struct {
	// AutoThreshold is the minimum timing and amount confidence for an
	// unattended forecast recommendation.
	AutoThreshold float64
	// SkipThreshold is the confidence below which, on both sides, an
	// entity is skipped entirely.
	SkipThreshold float64
	// MinSample is the minimum total transaction count for any
	// recommendation other than skip.
	MinSample int
	// MinRecentSample is the minimum transaction count inside the
	// recent-activity window before historical regularity is trusted.
	MinRecentSample int
	// RecencyWindowDays is the maximum age of the last transaction
	// before an entity is considered inactive.
	RecencyWindowDays int
	// RecentActivityDays is the lookback window that defines "recent"
	// transactions for pattern statistics.
	RecentActivityDays int
	// RecencyDecayDays controls how fast confidence decays as the last
	// transaction ages; RecencyFloor bounds the decay.
	RecencyDecayDays int
	RecencyFloor     float64

	// ConsistentVariance and VariableVariance are the variance
	// coefficient cutoffs for amount classification.
	ConsistentVariance float64
	VariableVariance   float64

	// AnchorShare is the minimum share of observations on the modal
	// weekday or day-of-month before it becomes the projection anchor.
	AnchorShare float64
	// WeekdayShare is the minimum weekday concentration for a daily
	// pattern to be restricted to weekdays.
	WeekdayShare float64
	// MonthAnchorShare is the minimum share of transactions on the 15th
	// or at month-end for the bi-weekly day-of-month mode.
	MonthAnchorShare float64
}

// DefaultConfig returns the documented default thresholds.
func DefaultConfig() Config {
	return Config{
		AutoThreshold:      0.6,
		SkipThreshold:      0.3,
		MinSample:          3,
		MinRecentSample:    3,
		RecencyWindowDays:  60,
		RecentActivityDays: 90,
		RecencyDecayDays:   30,
		RecencyFloor:       0.5,
		ConsistentVariance: 0.15,
		VariableVariance:   0.5,
		AnchorShare:        0.6,
		WeekdayShare:       0.8,
		MonthAnchorShare:   0.7,
	}
}

// Validate checks that the thresholds are internally coherent.
func (c Config) Validate() error {
	ratios := []struct {
		name  string
		value float64
	}{
		{"auto_threshold", c.AutoThreshold},
		{"skip_threshold", c.SkipThreshold},
		{"recency_floor", c.RecencyFloor},
		{"anchor_share", c.AnchorShare},
		{"weekday_share", c.WeekdayShare},
		{"month_anchor_share", c.MonthAnchorShare},
	}
	for _, r := range ratios {
		if r.value < 0 || r.value > 1 {
			return fmt.Errorf("%s must be in [0, 1], got %v: %w", r.name, r.value, common.ErrInvalidConfig)
		}
	}

	if c.SkipThreshold > c.AutoThreshold {
		return fmt.Errorf("skip_threshold %v exceeds auto_threshold %v: %w", c.SkipThreshold, c.AutoThreshold, common.ErrInvalidConfig)
	}
	if c.ConsistentVariance < 0 || c.VariableVariance < c.ConsistentVariance {
		return fmt.Errorf("variance cutoffs must satisfy 0 <= consistent <= variable: %w", common.ErrInvalidConfig)
	}

	counts := []struct {
		name  string
		value int
	}{
		{"min_sample", c.MinSample},
		{"min_recent_sample", c.MinRecentSample},
		{"recency_window_days", c.RecencyWindowDays},
		{"recent_activity_days", c.RecentActivityDays},
		{"recency_decay_days", c.RecencyDecayDays},
	}
	for _, cnt := range counts {
		if cnt.value <= 0 {
			return fmt.Errorf("%s must be positive, got %d: %w", cnt.name, cnt.value, common.ErrInvalidConfig)
		}
	}

	return nil
}
