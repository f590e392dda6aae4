package detect

import "github.com/ebbflow-cash/ebbflow/internal/model"

// DetectAmounts classifies how consistent an entity's transaction
// amounts are. Input amounts are unsigned magnitudes; direction is
// handled separately. An empty input yields a zero-confidence result.
func DetectAmounts(amounts []float64, cfg Config) model.AmountPattern {
	if len(amounts) == 0 {
		return model.AmountPattern{Class: model.AmountConsistent}
	}

	avg := mean(amounts)

	// A zero average or a single observation makes the variance
	// coefficient undefined; zero by convention, so the sample-size
	// factor alone keeps confidence low.
	vc := 0.0
	if avg > 0 {
		vc = stdDev(amounts) / avg
	}

	var class model.AmountClass
	var confidence float64
	switch {
	case vc <= cfg.ConsistentVariance:
		class = model.AmountConsistent
		confidence = 0.9
	case vc <= cfg.VariableVariance:
		class = model.AmountVariable
		confidence = 0.6
	default:
		class = model.AmountHighlyVariable
		confidence = 0.3
	}

	return model.AmountPattern{
		Average:             avg,
		Median:              median(amounts),
		VarianceCoefficient: vc,
		Class:               class,
		Confidence:          confidence * sampleFactor(len(amounts)),
	}
}
