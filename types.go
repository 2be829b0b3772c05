package ringdown

import (
	"fmt"
	"strings"

	"github.com/farcloser/ringdown/internal/types"
	"github.com/farcloser/ringdown/spectrum"
)

// ErrInvalidInput is returned when the buffer is empty or the sample rate is not a finite positive number.
var ErrInvalidInput = types.ErrInvalidInput

// Flag is a quality warning raised on a result. Flags combine as a bitmask.
type Flag int

const (
	FlagLowQ Flag = 1 << iota
	FlagBroadPeak
	FlagUnstableDecay

	FlagsAll = FlagLowQ | FlagBroadPeak | FlagUnstableDecay
)

var flagOrder = []Flag{FlagLowQ, FlagBroadPeak, FlagUnstableDecay}

func (f Flag) String() string {
	switch f {
	case 0:
		return "none"
	case FlagLowQ:
		return "low_Q"
	case FlagBroadPeak:
		return "broad_peak"
	case FlagUnstableDecay:
		return "unstable_decay"
	}

	if names := f.Names(); len(names) > 0 && f&^FlagsAll == 0 {
		return strings.Join(names, ",")
	}

	return "unknown"
}

// Has reports whether every bit of other is set.
func (f Flag) Has(other Flag) bool {
	return other != 0 && f&other == other
}

// Names returns the names of the set flags in a stable order.
func (f Flag) Names() []string {
	names := []string{}

	for _, flag := range flagOrder {
		if f&flag != 0 {
			names = append(names, flag.String())
		}
	}

	return names
}

// ParseFlag converts a flag name to a Flag value.
func ParseFlag(s string) (Flag, error) {
	switch strings.ToLower(strings.ReplaceAll(s, "-", "_")) {
	case "low_q":
		return FlagLowQ, nil
	case "broad_peak":
		return FlagBroadPeak, nil
	case "unstable_decay":
		return FlagUnstableDecay, nil
	default:
		return 0, fmt.Errorf("unknown flag %q (valid: low_Q, broad_peak, unstable_decay)", s)
	}
}

// Issue describes one evaluated quality check.
type Issue struct {
	Flag     Flag
	Detected bool
	Summary  string // human-readable summary
}

// Config holds the signal-processing parameters of an analysis. Values are used as given: zero
// disables smoothing or the attack skip. Start from DefaultConfig to get the defaults.
type Config struct {
	SmoothWindowMs float64 // causal moving-average length (default 5)
	AttackSkipMs   float64 // delay after the envelope peak before the decay fit starts (default 40)
}

// DefaultConfig returns the default smoothing and attack-skip durations.
func DefaultConfig() Config {
	return Config{
		SmoothWindowMs: 5,
		AttackSkipMs:   40,
	}
}

// Thresholds decide when quality flags are raised (zero value = use defaults, per field).
type Thresholds struct {
	LowQ           float64 // Q below this raises low_Q (default 150)
	BroadPeakRatio float64 // bandwidth above this fraction of f0 raises broad_peak (default 0.03)
	MinRSquared    float64 // R² below this raises unstable_decay (default 0.85)
}

// DefaultThresholds returns the default flag thresholds.
func DefaultThresholds() Thresholds {
	return Thresholds{
		LowQ:           150,
		BroadPeakRatio: 0.03,
		MinRSquared:    0.85,
	}
}

// Options configures one analysis call.
type Options struct {
	// F0Hint is used as the modal frequency when present and finite, instead of the spectrum peak.
	F0Hint Optional
	// Spectrum, when set, supplies the modal frequency and the half-power bandwidth.
	Spectrum *spectrum.Spectrum

	Config     Config
	Thresholds Thresholds
}

// DefaultOptions returns options with default config and thresholds, no hint and no spectrum.
func DefaultOptions() Options {
	return Options{
		Config:     DefaultConfig(),
		Thresholds: DefaultThresholds(),
	}
}

// Result contains the ring-down estimate of one buffer.
type Result struct {
	// Estimates (absent when the inputs did not allow them)
	F0        Optional // Hz
	Tau       Optional // seconds
	Q         Optional
	Bandwidth Optional // half-power bandwidth, Hz
	RSquared  Optional
	Slope     Optional // 1/s, of the log envelope
	Intercept Optional

	// Quality
	Flags      Flag
	Issues     []Issue
	IssueCount int

	// Envelope, normalized to 1 at the peak, full resolution
	Envelope []float64
	Time     []float64 // seconds, one per envelope sample

	// Downsampled envelope for display
	Preview       []float64
	PreviewTime   []float64
	PreviewStride int

	// Fit window
	PeakIndex int
	FitStart  int
	FitPoints int

	SampleRate float64
	Dt         float64

	// Effective parameters
	Config     Config
	Thresholds Thresholds
}
