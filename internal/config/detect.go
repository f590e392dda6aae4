package config

import (
	"fmt"

	"github.com/spf13/viper"

	"github.com/ebbflow-cash/ebbflow/internal/detect"
)

// LoadDetectConfig builds the detection configuration from Viper,
// falling back to the calibrated defaults for any unset key. Keys live
// under the "detection" section of the config file (or EBBFLOW_ env
// vars, e.g. EBBFLOW_DETECTION_AUTO_THRESHOLD).
func LoadDetectConfig() (detect.Config, error) {
	cfg := detect.DefaultConfig()

	overrides := []struct {
		key    string
		target *float64
	}{
		{"detection.auto_threshold", &cfg.AutoThreshold},
		{"detection.skip_threshold", &cfg.SkipThreshold},
		{"detection.recency_floor", &cfg.RecencyFloor},
		{"detection.consistent_variance", &cfg.ConsistentVariance},
		{"detection.variable_variance", &cfg.VariableVariance},
		{"detection.anchor_share", &cfg.AnchorShare},
		{"detection.weekday_share", &cfg.WeekdayShare},
		{"detection.month_anchor_share", &cfg.MonthAnchorShare},
	}
	for _, o := range overrides {
		if viper.IsSet(o.key) {
			*o.target = viper.GetFloat64(o.key)
		}
	}

	intOverrides := []struct {
		key    string
		target *int
	}{
		{"detection.min_sample", &cfg.MinSample},
		{"detection.min_recent_sample", &cfg.MinRecentSample},
		{"detection.recency_window_days", &cfg.RecencyWindowDays},
		{"detection.recent_activity_days", &cfg.RecentActivityDays},
		{"detection.recency_decay_days", &cfg.RecencyDecayDays},
	}
	for _, o := range intOverrides {
		if viper.IsSet(o.key) {
			*o.target = viper.GetInt(o.key)
		}
	}

	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid detection config: %w", err)
	}
	return cfg, nil
}
