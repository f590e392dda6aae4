package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// ForecastMethod indicates how a forecast record was produced.
type ForecastMethod string

const (
	// MethodAuto marks records generated from a detected pattern.
	MethodAuto ForecastMethod = "auto"
	// MethodManualGroupPattern marks records generated from a user-defined pattern.
	MethodManualGroupPattern ForecastMethod = "manual_group_pattern"
)

// ForecastRecord is one projected cash-flow event for an entity.
// Regeneration replaces all unlocked records for the same entity and
// horizon; locked records are user overrides and survive untouched.
type ForecastRecord struct {
	Date        time.Time
	ID          string
	EntityID    string
	Amount      decimal.Decimal
	PatternType PatternType
	Method      ForecastMethod
	Confidence  float64
	Locked      bool
}
