package model

import "time"

// PatternType classifies how often an entity transacts.
type PatternType string

const (
	// PatternDaily is an every-day (or every-weekday) cadence.
	PatternDaily PatternType = "daily"
	// PatternWeekly is a once-a-week cadence on a consistent weekday.
	PatternWeekly PatternType = "weekly"
	// PatternBiWeekly is an every-two-weeks or 15th/30th cadence.
	PatternBiWeekly PatternType = "bi_weekly"
	// PatternMonthly is a once-a-month cadence on a consistent day.
	PatternMonthly PatternType = "monthly"
	// PatternQuarterly is an every-three-months cadence.
	PatternQuarterly PatternType = "quarterly"
	// PatternIrregular means no recognized cadence.
	PatternIrregular PatternType = "irregular"
)

// Valid reports whether t is one of the known pattern types.
func (t PatternType) Valid() bool {
	switch t {
	case PatternDaily, PatternWeekly, PatternBiWeekly, PatternMonthly, PatternQuarterly, PatternIrregular:
		return true
	}
	return false
}

// TimingPattern is the detected recurrence cadence for one entity.
// It is derived data, recomputed on each analysis run.
type TimingPattern struct {
	Type          PatternType
	FrequencyDays int  // Average days between transactions; the projector's step source
	AnchorWeekday *time.Weekday
	AnchorDay     *int // Day of month, 1-31
	WeekdaysOnly  bool // Daily patterns concentrated on weekdays
	MonthAnchored bool // Bi-weekly patterns pinned to the 15th and month-end
	Confidence    float64
	Consistency   float64
}

// AmountClass classifies how stable an entity's amounts are.
type AmountClass string

const (
	// AmountConsistent means variance coefficient at or below the consistent threshold.
	AmountConsistent AmountClass = "consistent"
	// AmountVariable means moderate variance.
	AmountVariable AmountClass = "variable"
	// AmountHighlyVariable means variance too high to trust an average.
	AmountHighlyVariable AmountClass = "highly_variable"
)

// AmountPattern is the detected amount behavior for one entity.
type AmountPattern struct {
	Average             float64
	Median              float64
	VarianceCoefficient float64
	Class               AmountClass
	Confidence          float64
}

// Recommendation is the tri-state forecasting decision for an entity.
type Recommendation string

const (
	// RecommendAuto means both patterns are strong enough to forecast unattended.
	RecommendAuto Recommendation = "auto"
	// RecommendManual means a human should review before forecasting.
	RecommendManual Recommendation = "manual"
	// RecommendSkip means the entity should not be forecast.
	RecommendSkip Recommendation = "skip"
)

// VendorPattern aggregates one analysis run for one entity.
type VendorPattern struct {
	AnalyzedAt       time.Time
	LastTransaction  time.Time
	EntityID         string
	Reasoning        string
	Timing           TimingPattern
	Amount           AmountPattern
	Recommendation   Recommendation
	TransactionCount int
	RecentCount      int // Transactions inside the recent-activity window
	Sign             int // +1 for revenue entities, -1 for expense entities
}
