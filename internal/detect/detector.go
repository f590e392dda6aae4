// Package detect implements recurrence pattern detection for entity
// transaction histories: timing cadence, amount consistency, and the
// forecast recommendation that combines them.
package detect

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ebbflow-cash/ebbflow/internal/common"
	"github.com/ebbflow-cash/ebbflow/internal/model"
)

// Detector analyzes one entity's transaction history at a time. It is
// stateless apart from configuration and safe for concurrent use.
type Detector struct {
	cfg Config
}

// NewDetector creates a detector with the given thresholds.
func NewDetector(cfg Config) *Detector {
	return &Detector{cfg: cfg}
}

// Config returns the detector's active configuration.
func (d *Detector) Config() Config {
	return d.cfg
}

// Analyze runs timing detection, amount detection, and the forecast
// recommendation for one entity as of the given time. Transactions must
// be sorted by date ascending; unsorted input is a caller bug and fails
// fast. Insufficient or stale data never produces an error, only a
// low-confidence result.
func (d *Detector) Analyze(entityID string, txns []model.Transaction, asOf time.Time) (model.VendorPattern, error) {
	if entityID == "" {
		return model.VendorPattern{}, common.ErrEmptyEntityID
	}
	for i := 1; i < len(txns); i++ {
		if txns[i].Date.Before(txns[i-1].Date) {
			return model.VendorPattern{}, fmt.Errorf("entity %s: %w", entityID, common.ErrUnsortedInput)
		}
	}

	pattern := model.VendorPattern{
		EntityID:         entityID,
		AnalyzedAt:       asOf,
		TransactionCount: len(txns),
		Sign:             1,
		Timing:           model.TimingPattern{Type: model.PatternIrregular},
		Amount:           model.AmountPattern{Class: model.AmountConsistent},
	}
	if len(txns) == 0 {
		pattern.Recommendation = model.RecommendSkip
		pattern.Reasoning = "no transactions"
		return pattern, nil
	}

	lastDate := txns[len(txns)-1].Date
	pattern.LastTransaction = lastDate
	daysSinceLast := daysBetween(lastDate, asOf)

	recentCutoff := asOf.AddDate(0, 0, -d.cfg.RecentActivityDays)
	recent := txns
	for i, t := range txns {
		if !t.Date.Before(recentCutoff) {
			recent = txns[i:]
			break
		}
		if i == len(txns)-1 {
			recent = nil
		}
	}
	pattern.RecentCount = len(recent)

	// Recent behavior outweighs history: when the recent window holds
	// enough samples the statistics come from it alone.
	sample := txns
	if len(recent) >= d.cfg.MinRecentSample {
		sample = recent
	}

	dates := make([]time.Time, len(sample))
	amounts := make([]float64, len(sample))
	for i, t := range sample {
		dates[i] = t.Date
		amounts[i] = t.Amount.Abs().InexactFloat64()
	}

	pattern.Timing = DetectTiming(dates, d.cfg)
	pattern.Amount = DetectAmounts(amounts, d.cfg)

	factor := RecencyFactor(daysSinceLast, d.cfg)
	pattern.Timing.Confidence *= factor
	pattern.Amount.Confidence *= factor

	pattern.Sign = historicalSign(txns)
	pattern.Recommendation, pattern.Reasoning = Recommend(
		pattern.Timing, pattern.Amount, len(txns), len(recent), daysSinceLast, d.cfg)

	return pattern, nil
}

// historicalSign infers the entity's direction from the majority sign
// of its history, falling back to the sign of the net total on a tie.
func historicalSign(txns []model.Transaction) int {
	positive, negative := 0, 0
	var net decimal.Decimal
	for _, t := range txns {
		switch t.Amount.Sign() {
		case 1:
			positive++
		case -1:
			negative++
		}
		net = net.Add(t.Amount)
	}
	switch {
	case positive > negative:
		return 1
	case negative > positive:
		return -1
	case net.Sign() < 0:
		return -1
	default:
		return 1
	}
}

func daysBetween(from, to time.Time) int {
	if to.Before(from) {
		return 0
	}
	fromDay := time.Date(from.Year(), from.Month(), from.Day(), 0, 0, 0, 0, time.UTC)
	toDay := time.Date(to.Year(), to.Month(), to.Day(), 0, 0, 0, 0, time.UTC)
	return int(toDay.Sub(fromDay).Hours() / 24)
}
