package detect

import (
	"math"
	"sort"
)

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

func median(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	mid := len(sorted) / 2
	if len(sorted)%2 == 0 {
		return (sorted[mid-1] + sorted[mid]) / 2
	}
	return sorted[mid]
}

// stdDev is the sample standard deviation; zero for fewer than two values.
func stdDev(values []float64) float64 {
	if len(values) < 2 {
		return 0
	}
	m := mean(values)
	sum := 0.0
	for _, v := range values {
		d := v - m
		sum += d * d
	}
	return math.Sqrt(sum / float64(len(values)-1))
}

// weightedMean weights later values more heavily, so that recent
// behavior dominates older behavior. Weights grow linearly with index.
func weightedMean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	n := float64(len(values))
	var sum, weightSum float64
	for i, v := range values {
		w := float64(i+1) / n
		sum += v * w
		weightSum += w
	}
	return sum / weightSum
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}

// sampleFactor caps confidence by sample size: fewer than five
// observations can never produce full confidence. Both detectors use
// this same rule so their confidences stay comparable downstream.
func sampleFactor(n int) float64 {
	return math.Min(1, float64(n)/5)
}
