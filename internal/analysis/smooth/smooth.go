package smooth

import "math"

// MovingAverage returns the causal running mean of values: output i averages values[i-window+1..i],
// with the divisor shrinking to the samples actually seen while the window fills. Window sizes below
// one are treated as one.
func MovingAverage(values []float64, window int) []float64 {
	window = max(window, 1)
	out := make([]float64, len(values))

	var sum float64

	for i, v := range values {
		sum += v
		if i >= window {
			sum -= values[i-window]
		}

		out[i] = sum / float64(min(i+1, window))
	}

	return out
}

// Samples converts a duration in milliseconds to a rounded, non-negative sample count.
func Samples(durationMs, sampleRate float64) int {
	samples := math.Round(durationMs / 1000 * sampleRate)

	switch {
	case math.IsNaN(samples) || samples < 0:
		return 0
	case samples > math.MaxInt32:
		return math.MaxInt32
	}

	return int(samples)
}

// WindowSamples is Samples with a floor of one, suitable as a smoothing window length.
func WindowSamples(windowMs, sampleRate float64) int {
	return max(Samples(windowMs, sampleRate), 1)
}
