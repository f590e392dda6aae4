package detect

import (
	"fmt"
	"math"
	"strings"

	"github.com/ebbflow-cash/ebbflow/internal/model"
)

// Recommend combines timing and amount patterns into the tri-state
// forecasting decision. Recency checks run before the confidence table:
// a strong historical pattern that has gone quiet must not generate
// phantom forecasts.
func Recommend(timing model.TimingPattern, amount model.AmountPattern, txnCount, recentCount, daysSinceLast int, cfg Config) (model.Recommendation, string) {
	if daysSinceLast > cfg.RecencyWindowDays {
		return model.RecommendSkip,
			fmt.Sprintf("last transaction %d days ago - potentially inactive", daysSinceLast)
	}

	if txnCount < cfg.MinSample {
		return model.RecommendSkip,
			fmt.Sprintf("only %d transactions - insufficient data", txnCount)
	}

	if recentCount < cfg.MinRecentSample {
		return model.RecommendManual,
			fmt.Sprintf("only %d transactions in last %d days - insufficient recent data", recentCount, cfg.RecentActivityDays)
	}

	if timing.Confidence < cfg.SkipThreshold && amount.Confidence < cfg.SkipThreshold {
		return model.RecommendSkip, "irregular timing and highly variable amounts"
	}

	if timing.Confidence >= cfg.AutoThreshold &&
		amount.Confidence >= cfg.AutoThreshold &&
		timing.Type != model.PatternIrregular {
		return model.RecommendAuto,
			fmt.Sprintf("%s pattern with %s amounts", timing.Type, amount.Class)
	}

	var reasons []string
	if timing.Confidence < cfg.AutoThreshold {
		reasons = append(reasons, "irregular timing")
	}
	if amount.Confidence < cfg.AutoThreshold {
		reasons = append(reasons, "variable amounts")
	}
	if timing.Type == model.PatternIrregular {
		reasons = append(reasons, "no clear frequency pattern")
	}
	return model.RecommendManual, "review needed: " + strings.Join(reasons, ", ")
}

// RecencyFactor decays confidence smoothly as the last transaction
// ages, bottoming out at the configured floor rather than cutting off.
func RecencyFactor(daysSinceLast int, cfg Config) float64 {
	if cfg.RecencyDecayDays <= 0 {
		return 1
	}
	return math.Max(cfg.RecencyFloor, 1-float64(daysSinceLast)/float64(cfg.RecencyDecayDays))
}
