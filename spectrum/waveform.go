package spectrum

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/dsp/fourier"
	"gonum.org/v1/gonum/stat"

	"github.com/farcloser/ringdown/internal/analysis/fft"
	"github.com/farcloser/ringdown/internal/types"
)

// padFactor zero-pads the waveform to interpolate the magnitude spectrum between natural bins.
const padFactor = 4

// FromWaveform computes the single-sided magnitude spectrum of a recording: the mean is removed,
// a Hann window applied, and the result zero-padded to padFactor times the next power of two.
// The DC bin is dropped so frequencies start at the first positive bin.
func FromWaveform(samples []float64, sampleRate float64) (*Spectrum, error) {
	if len(samples) == 0 {
		return nil, fmt.Errorf("%w: empty waveform", types.ErrInvalidInput)
	}

	if math.IsNaN(sampleRate) || math.IsInf(sampleRate, 0) || sampleRate <= 0 {
		return nil, fmt.Errorf("%w: sample rate %v", types.ErrInvalidInput, sampleRate)
	}

	size := fft.NextPowerOfTwo(len(samples)) * padFactor
	mean := stat.Mean(samples, nil)
	window := makeHannWindow(len(samples))

	padded := make([]float64, size)
	for i, v := range samples {
		padded[i] = (v - mean) * window[i]
	}

	coeffs := fourier.NewFFT(size).Coefficients(nil, padded)

	binHz := sampleRate / float64(size)
	freqs := make([]float64, len(coeffs)-1)
	mags := make([]float64, len(coeffs)-1)

	for k := 1; k < len(coeffs); k++ {
		c := coeffs[k]
		freqs[k-1] = float64(k) * binHz
		mags[k-1] = math.Sqrt(real(c)*real(c) + imag(c)*imag(c))
	}

	return FromMagnitudes(freqs, mags)
}

func makeHannWindow(size int) []float64 {
	window := make([]float64, size)
	if size == 1 {
		window[0] = 1

		return window
	}

	for i := range window {
		window[i] = 0.5 * (1 - math.Cos(2*math.Pi*float64(i)/float64(size-1)))
	}

	return window
}
