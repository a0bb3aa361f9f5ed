// Package stats summarizes repeated timing samples. Standard deviation is
// the population form (divide by n).
package stats

import (
	"math"
	"slices"
)

// Percentile thresholds reported by Summarize.
const (
	PercentileMedian = 0.5
	PercentileP95    = 0.95
)

// Summary describes a sample set.
type Summary struct {
	Count  int     `json:"count"`
	Mean   float64 `json:"mean"`
	StdDev float64 `json:"stddev"`
	Min    float64 `json:"min"`
	Median float64 `json:"median"`
	P95    float64 `json:"p95"`
	Max    float64 `json:"max"`
}

// Summarize computes a Summary of values. The input is not modified.
// An empty input yields the zero Summary.
func Summarize(values []float64) Summary {
	if len(values) == 0 {
		return Summary{}
	}

	sorted := slices.Clone(values)
	slices.Sort(sorted)

	mean, stddev := MeanStdDev(sorted)

	return Summary{
		Count:  len(sorted),
		Mean:   mean,
		StdDev: stddev,
		Min:    sorted[0],
		Median: percentileSorted(sorted, PercentileMedian),
		P95:    percentileSorted(sorted, PercentileP95),
		Max:    sorted[len(sorted)-1],
	}
}

// Mean returns the arithmetic mean of values, 0 for an empty slice.
func Mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}

	var sum float64

	for _, v := range values {
		sum += v
	}

	return sum / float64(len(values))
}

// MeanStdDev returns the mean and population standard deviation.
func MeanStdDev(values []float64) (mean, stddev float64) {
	if len(values) == 0 {
		return 0, 0
	}

	mean = Mean(values)

	var sumSq float64

	for _, v := range values {
		diff := v - mean
		sumSq += diff * diff
	}

	return mean, math.Sqrt(sumSq / float64(len(values)))
}

// Percentile returns the p-th percentile of values with linear
// interpolation. p is clamped to [0, 1].
func Percentile(values []float64, p float64) float64 {
	if len(values) == 0 {
		return 0
	}

	sorted := slices.Clone(values)
	slices.Sort(sorted)

	return percentileSorted(sorted, p)
}

func percentileSorted(sorted []float64, p float64) float64 {
	p = max(0, min(p, 1))
	idx := p * float64(len(sorted)-1)
	lower := int(math.Floor(idx))
	upper := int(math.Ceil(idx))

	if lower == upper {
		return sorted[lower]
	}

	frac := idx - float64(lower)

	return sorted[lower]*(1-frac) + sorted[upper]*frac
}
