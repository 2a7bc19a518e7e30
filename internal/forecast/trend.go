package forecast

import "math"

// Trend calculates the linear trend of a value series as the ordinary
// least-squares slope of value against positional index (0, 1, 2, ...).
// Fewer than two values is a flat trend, not an error.
func Trend(values []float64) float64 {
	n := len(values)
	if n < 2 {
		return 0
	}

	xMean := float64(n-1) / 2
	yMean := calculateMean(values)

	numerator := 0.0
	denominator := 0.0
	for i, v := range values {
		dx := float64(i) - xMean
		numerator += dx * (v - yMean)
		denominator += dx * dx
	}

	if denominator == 0 {
		return 0
	}

	return numerator / denominator
}

// calculateMean calculates the mean of values
func calculateMean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// calculateVariance calculates the sample variance of values. Fewer than
// two values yields 0.
func calculateVariance(values []float64) float64 {
	if len(values) <= 1 {
		return 0
	}
	mean := calculateMean(values)
	variance := 0.0
	for _, v := range values {
		variance += (v - mean) * (v - mean)
	}
	return variance / float64(len(values)-1)
}

// calculateStdDev calculates the sample standard deviation of values.
func calculateStdDev(values []float64) float64 {
	return math.Sqrt(calculateVariance(values))
}

func minOf(values []float64) float64 {
	m := values[0]
	for _, v := range values[1:] {
		if v < m {
			m = v
		}
	}
	return m
}

func maxOf(values []float64) float64 {
	m := values[0]
	for _, v := range values[1:] {
		if v > m {
			m = v
		}
	}
	return m
}

// clamp bounds v to [lo, hi].
func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// round1 rounds to one decimal place.
func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

// round2 rounds to two decimal places.
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
