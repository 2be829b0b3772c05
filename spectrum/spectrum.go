// Package spectrum models externally supplied frequency spectra and locates their dominant peak and
// half-power (-3 dB) bandwidth.
//
// A Spectrum holds either linear magnitudes or decibel levels. The representation is fixed at
// construction and linear magnitudes are resolved once, so queries never re-derive them.
package spectrum

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalidSpectrum is returned when spectrum bins cannot be accepted.
var ErrInvalidSpectrum = errors.New("invalid spectrum")

// Representation tells how bin values of a Spectrum were supplied.
type Representation int

const (
	Magnitude Representation = iota // linear magnitude
	LevelDb                         // level in dB, linear = 10^(dB/20)
)

func (r Representation) String() string {
	switch r {
	case Magnitude:
		return "magnitude"
	case LevelDb:
		return "level_db"
	}

	return "unknown"
}

// Bin is one spectrum sample, with Value expressed in the spectrum's Representation.
type Bin struct {
	FrequencyHz float64
	Value       float64
}

// Spectrum is an immutable, validated sequence of bins with strictly increasing frequencies.
type Spectrum struct {
	repr   Representation
	freqs  []float64
	values []float64
	linear []float64
}

// FromMagnitudes builds a spectrum from linear magnitudes.
func FromMagnitudes(freqs, magnitudes []float64) (*Spectrum, error) {
	return build(Magnitude, freqs, magnitudes)
}

// FromLevels builds a spectrum from decibel levels.
func FromLevels(freqs, levelsDb []float64) (*Spectrum, error) {
	return build(LevelDb, freqs, levelsDb)
}

// New builds a spectrum from bins in the given representation.
func New(repr Representation, bins []Bin) (*Spectrum, error) {
	freqs := make([]float64, len(bins))
	values := make([]float64, len(bins))

	for i, bin := range bins {
		freqs[i] = bin.FrequencyHz
		values[i] = bin.Value
	}

	return build(repr, freqs, values)
}

func build(repr Representation, freqs, values []float64) (*Spectrum, error) {
	if repr != Magnitude && repr != LevelDb {
		return nil, fmt.Errorf("%w: unknown representation %d", ErrInvalidSpectrum, repr)
	}

	if len(freqs) != len(values) {
		return nil, fmt.Errorf("%w: %d frequencies for %d values", ErrInvalidSpectrum, len(freqs), len(values))
	}

	spec := &Spectrum{
		repr:   repr,
		freqs:  make([]float64, len(freqs)),
		values: make([]float64, len(values)),
		linear: make([]float64, len(values)),
	}

	copy(spec.freqs, freqs)
	copy(spec.values, values)

	for i, freq := range freqs {
		if math.IsNaN(freq) || math.IsInf(freq, 0) {
			return nil, fmt.Errorf("%w: non-finite frequency at bin %d", ErrInvalidSpectrum, i)
		}

		if i > 0 && freq <= freqs[i-1] {
			return nil, fmt.Errorf("%w: frequency %g Hz at bin %d does not increase", ErrInvalidSpectrum, freq, i)
		}
	}

	for i, value := range values {
		linear, err := toLinear(repr, value)
		if err != nil {
			return nil, fmt.Errorf("%w: bin %d: %w", ErrInvalidSpectrum, i, err)
		}

		spec.linear[i] = linear
	}

	return spec, nil
}

var (
	errNonFiniteValue = errors.New("non-finite value")
	errNegativeValue  = errors.New("negative magnitude")
)

func toLinear(repr Representation, value float64) (float64, error) {
	if repr == LevelDb {
		// -Inf dB is silence.
		if math.IsNaN(value) || math.IsInf(value, 1) {
			return 0, errNonFiniteValue
		}

		return math.Pow(10, value/20), nil
	}

	if math.IsNaN(value) || math.IsInf(value, 0) {
		return 0, errNonFiniteValue
	}

	if value < 0 {
		return 0, errNegativeValue
	}

	return value, nil
}

// Len returns the number of bins.
func (s *Spectrum) Len() int {
	if s == nil {
		return 0
	}

	return len(s.freqs)
}

// Representation returns how the bin values were supplied.
func (s *Spectrum) Representation() Representation {
	if s == nil {
		return Magnitude
	}

	return s.repr
}

// Frequencies returns a copy of the bin frequencies in Hz.
func (s *Spectrum) Frequencies() []float64 {
	if s == nil {
		return nil
	}

	return append([]float64(nil), s.freqs...)
}

// Magnitudes returns a copy of the linear bin magnitudes.
func (s *Spectrum) Magnitudes() []float64 {
	if s == nil {
		return nil
	}

	return append([]float64(nil), s.linear...)
}

// Bins returns the bins as supplied.
func (s *Spectrum) Bins() []Bin {
	if s == nil {
		return nil
	}

	bins := make([]Bin, len(s.freqs))
	for i := range bins {
		bins[i] = Bin{FrequencyHz: s.freqs[i], Value: s.values[i]}
	}

	return bins
}
