package spectrum

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

// MinBandwidth is the floor applied to half-power bandwidths so they are never exactly zero.
const MinBandwidth = 1e-9

// PeakFrequency returns the frequency of the bin with the largest linear magnitude (first one on
// ties). It reports false for a nil or empty spectrum.
func PeakFrequency(s *Spectrum) (float64, bool) {
	if s.Len() == 0 {
		return 0, false
	}

	return s.freqs[floats.MaxIdx(s.linear)], true
}

// HalfPowerBandwidth returns the width of the region around the strongest bin where the magnitude
// stays at or above peak/sqrt(2). The scan stops at the first bin below that level on each side,
// or at the spectrum edge, so a crossing outside the supplied range yields a truncated width.
// It reports false for a nil or empty spectrum or a non-finite f0.
func HalfPowerBandwidth(s *Spectrum, f0 float64) (float64, bool) {
	if s.Len() == 0 || math.IsNaN(f0) || math.IsInf(f0, 0) {
		return 0, false
	}

	left, right := halfPowerEdges(s.linear)

	return max(s.freqs[right]-s.freqs[left], MinBandwidth), true
}

// halfPowerEdges returns the indices where the scans away from the peak stopped.
func halfPowerEdges(mags []float64) (int, int) {
	peak := floats.MaxIdx(mags)
	target := mags[peak] / math.Sqrt2

	left := peak
	for left > 0 && mags[left] >= target {
		left--
	}

	right := peak
	for right < len(mags)-1 && mags[right] >= target {
		right++
	}

	return left, right
}
