// Package hilbert extracts the instantaneous amplitude envelope of a real signal from its analytic
// signal, built by masking the negative half of the spectrum.
package hilbert

import (
	"math"

	"github.com/farcloser/ringdown/internal/analysis/fft"
)

// Envelope returns |x + iH{x}| for every input sample. The signal is zero-padded to the next power
// of two for the transform; padded positions are dropped from the output.
func Envelope(samples []float64) []float64 {
	if len(samples) == 0 {
		return []float64{}
	}

	size := fft.NextPowerOfTwo(len(samples))

	re := make([]float64, size)
	im := make([]float64, size)
	copy(re, samples)

	mustTransform(re, im, false)

	mask := Mask(size)
	for k, h := range mask {
		re[k] *= h
		im[k] *= h
	}

	mustTransform(re, im, true)

	envelope := make([]float64, len(samples))
	for i := range envelope {
		envelope[i] = math.Hypot(re[i], im[i])
	}

	return envelope
}

// Mask returns the one-sided analytic-signal weights for a transform of the given length:
// 1 at DC and Nyquist, 2 for positive frequencies, 0 for negative frequencies.
func Mask(size int) []float64 {
	mask := make([]float64, size)
	if size == 0 {
		return mask
	}

	mask[0] = 1

	half := size / 2
	for k := 1; k < half; k++ {
		mask[k] = 2
	}

	if size%2 == 0 {
		mask[half] = 1
	} else if half > 0 {
		mask[half] = 2
	}

	return mask
}

// mustTransform only fails on a non power-of-two length, which the padding above rules out.
func mustTransform(re, im []float64, inverse bool) {
	if err := fft.Transform(re, im, inverse); err != nil {
		panic("hilbert: " + err.Error())
	}
}
