// Package statistics provides the small numeric helpers the synthesizer and
// reporters share: summary statistics and hazard-ratio confidence intervals.
package statistics

import "math"

// ConfidenceInterval holds a point estimate with its interval bounds.
type ConfidenceInterval struct {
	Lower           float64 `json:"lower"`
	Upper           float64 `json:"upper"`
	Point           float64 `json:"point"`
	ConfidenceLevel float64 `json:"confidence_level"`
}

// HazardRatioCI builds a 95% confidence interval around a hazard ratio given
// a symmetric width. Bounds are clamped below at a small positive value since
// hazard ratios are strictly positive.
func HazardRatioCI(hr, width float64) ConfidenceInterval {
	lower := hr - width
	if lower < 0.05 {
		lower = 0.05
	}
	return ConfidenceInterval{
		Lower:           lower,
		Upper:           hr + width,
		Point:           hr,
		ConfidenceLevel: 0.95,
	}
}

// Protective reports whether the interval lies entirely below 1.0, i.e. the
// treatment is associated with reduced hazard at this confidence level.
func Protective(ci ConfidenceInterval) bool {
	return ci.Upper < 1.0
}

// SignificantP reports whether p clears the conventional 0.05 threshold.
func SignificantP(p float64) bool {
	return p < 0.05
}

// Mean returns the arithmetic mean, or 0 for an empty slice.
func Mean(values []float64) float64 {
	if len(values) == 0 {
		return 0.0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// StdDev returns the population standard deviation, or 0 for fewer than two
// values.
func StdDev(values []float64) float64 {
	if len(values) < 2 {
		return 0.0
	}
	m := Mean(values)
	sumSq := 0.0
	for _, v := range values {
		d := v - m
		sumSq += d * d
	}
	return math.Sqrt(sumSq / float64(len(values)))
}
