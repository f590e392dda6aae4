package forecast

import (
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ebbflow-cash/ebbflow/internal/model"
)

// Generate pairs projected dates with the pattern's expected amount and
// combined confidence. The amount keeps the entity's historical sign:
// revenue entities stay positive, expense entities negative.
func Generate(pattern model.VendorPattern, horizonStart, horizonEnd time.Time, method model.ForecastMethod) ([]model.ForecastRecord, error) {
	dates, err := ProjectDates(pattern.Timing, pattern.LastTransaction, horizonStart, horizonEnd)
	if err != nil {
		return nil, err
	}

	amount := decimal.NewFromFloat(pattern.Amount.Average).Round(2)
	if pattern.Sign < 0 {
		amount = amount.Neg()
	}
	confidence := math.Min(pattern.Timing.Confidence, pattern.Amount.Confidence)

	records := make([]model.ForecastRecord, 0, len(dates))
	for _, d := range dates {
		records = append(records, model.ForecastRecord{
			ID:          uuid.NewString(),
			EntityID:    pattern.EntityID,
			Date:        d,
			Amount:      amount,
			PatternType: pattern.Timing.Type,
			Confidence:  confidence,
			Method:      method,
		})
	}
	return records, nil
}
