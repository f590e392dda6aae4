package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// BalancePoint is one period of a running balance projection. It is
// always recomputable from a starting balance plus an event stream and
// is never stored as authoritative.
type BalancePoint struct {
	PeriodStart     time.Time
	PeriodEnd       time.Time
	StartingBalance decimal.Decimal
	Inflows         decimal.Decimal
	Outflows        decimal.Decimal
	EndingBalance   decimal.Decimal
}

// Net returns the period's net movement.
func (p BalancePoint) Net() decimal.Decimal {
	return p.Inflows.Add(p.Outflows)
}
