// Package ledger folds event streams into running balance projections.
package ledger

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ebbflow-cash/ebbflow/internal/model"
)

// Granularity selects the bucketing period for balance points.
type Granularity string

const (
	// Daily buckets one calendar day per balance point.
	Daily Granularity = "daily"
	// Weekly buckets Monday-anchored weeks.
	Weekly Granularity = "weekly"
)

// Event is a dated signed cash movement: an actual transaction or a
// forecast record. Callers merge and reconcile the two before folding;
// the accumulator treats them identically.
type Event struct {
	Date   time.Time
	Amount decimal.Decimal
}

// Accumulate left-folds a starting balance and an event stream into
// per-period balance points covering [from, to]. Periods with no events
// still appear so the continuity invariant holds across the whole
// range: each period's starting balance is the previous period's ending
// balance.
func Accumulate(starting decimal.Decimal, events []Event, from, to time.Time, g Granularity) []model.BalancePoint {
	if to.Before(from) {
		return nil
	}

	sorted := make([]Event, len(events))
	copy(sorted, events)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Date.Before(sorted[j].Date) })

	periods := buildPeriods(from, to, g)
	points := make([]model.BalancePoint, 0, len(periods))

	balance := starting
	i := 0
	for _, p := range periods {
		point := model.BalancePoint{
			PeriodStart:     p.start,
			PeriodEnd:       p.end,
			StartingBalance: balance,
			Inflows:         decimal.Zero,
			Outflows:        decimal.Zero,
		}
		for i < len(sorted) && !sorted[i].Date.After(p.end) {
			if sorted[i].Date.Before(p.start) {
				i++
				continue
			}
			if sorted[i].Amount.Sign() >= 0 {
				point.Inflows = point.Inflows.Add(sorted[i].Amount)
			} else {
				point.Outflows = point.Outflows.Add(sorted[i].Amount)
			}
			i++
		}
		balance = balance.Add(point.Inflows).Add(point.Outflows)
		point.EndingBalance = balance
		points = append(points, point)
	}

	return points
}

type period struct {
	start time.Time
	end   time.Time
}

func buildPeriods(from, to time.Time, g Granularity) []period {
	var periods []period
	switch g {
	case Weekly:
		for start := WeekStart(from); !start.After(to); start = start.AddDate(0, 0, 7) {
			periods = append(periods, period{start: start, end: start.AddDate(0, 0, 6)})
		}
	default:
		fromDay := time.Date(from.Year(), from.Month(), from.Day(), 0, 0, 0, 0, time.UTC)
		toDay := time.Date(to.Year(), to.Month(), to.Day(), 0, 0, 0, 0, time.UTC)
		for d := fromDay; !d.After(toDay); d = d.AddDate(0, 0, 1) {
			periods = append(periods, period{start: d, end: d})
		}
	}
	return periods
}
