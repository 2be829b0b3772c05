// Package ringdown estimates the modal frequency, decay time constant, quality factor and
// half-power bandwidth of a recorded ring-down, along with flags telling how far to trust them.
package ringdown

import (
	"fmt"
	"log/slog"
	"math"
	"time"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/farcloser/ringdown/internal/analysis/fft"
	"github.com/farcloser/ringdown/internal/analysis/hilbert"
	"github.com/farcloser/ringdown/internal/analysis/regression"
	"github.com/farcloser/ringdown/internal/analysis/smooth"
	"github.com/farcloser/ringdown/spectrum"
)

/*
Usage:

result, err := ringdown.Analyze(samples, 48000, ringdown.DefaultOptions())
if tau, ok := result.Tau.Get(); ok {
    fmt.Printf("tau: %.3f s\n", tau)
}

// Modal frequency and bandwidth from a measured spectrum
spec, err := spectrum.FromLevels(freqs, levelsDb)
opts := ringdown.DefaultOptions()
opts.Spectrum = spec
result, err := ringdown.Analyze(samples, 48000, opts)

// Known modal frequency, no spectrum
opts := ringdown.DefaultOptions()
opts.F0Hint = ringdown.Some(196)
result, err := ringdown.Analyze(samples, 48000, opts)

// Engine with its own logger
engine := ringdown.New(logger)
result, err := engine.Analyze(samples, 48000, opts)

// Iterate issues
for _, issue := range result.Issues {
    if issue.Detected {
        fmt.Printf("[%s] %s\n", issue.Flag, issue.Summary)
    }
}

*/

const (
	// logFloor keeps the log of a silent envelope finite.
	logFloor = 1e-12
	// normFloor bounds the normalization divisor away from zero.
	normFloor = 1e-12
	// minFitPoints is the number of samples the fit window must exceed.
	minFitPoints = 8
	// previewPoints is the approximate length of the downsampled envelope.
	previewPoints = 400
)

// Engine runs analyses. It holds no per-call state and is safe for concurrent use.
type Engine struct {
	logger *slog.Logger
}

// New returns an engine logging to logger, or to slog.Default() when nil.
func New(logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}

	return &Engine{logger: logger}
}

// Analyze estimates the ring-down parameters of buffer with a default engine.
func Analyze(buffer []float64, sampleRate float64, opts Options) (*Result, error) {
	return New(nil).Analyze(buffer, sampleRate, opts)
}

// Analyze estimates the ring-down parameters of buffer, sampled at sampleRate Hz.
// It fails only with ErrInvalidInput; numerical degeneracies leave estimates absent and raise flags.
func (e *Engine) Analyze(buffer []float64, sampleRate float64, opts Options) (*Result, error) {
	if len(buffer) == 0 {
		return nil, fmt.Errorf("%w: empty buffer", ErrInvalidInput)
	}

	if math.IsNaN(sampleRate) || math.IsInf(sampleRate, 0) || sampleRate <= 0 {
		return nil, fmt.Errorf("%w: sample rate %v", ErrInvalidInput, sampleRate)
	}

	applyDefaults(&opts)

	start := time.Now()
	count := len(buffer)
	dt := 1 / sampleRate

	result := &Result{
		SampleRate: sampleRate,
		Dt:         dt,
		Config:     opts.Config,
		Thresholds: opts.Thresholds,
	}

	// Envelope of the mean-removed signal
	mean := stat.Mean(buffer, nil)
	centered := make([]float64, count)

	for i, v := range buffer {
		centered[i] = v - mean
	}

	envelope := hilbert.Envelope(centered)

	e.logger.Debug("ringdown.Analyze", "stage", "envelope",
		"samples", count, "transform", fft.NextPowerOfTwo(count), "mean", mean)

	window := smooth.WindowSamples(opts.Config.SmoothWindowMs, sampleRate)
	smoothed := smooth.MovingAverage(envelope, window)

	// Normalize to the global peak
	peak := floats.MaxIdx(smoothed)
	scale := max(smoothed[peak], normFloor)

	normalized := make([]float64, count)
	for i, v := range smoothed {
		normalized[i] = v / scale
	}

	result.Envelope = normalized
	result.PeakIndex = peak

	e.logger.Debug("ringdown.Analyze", "stage", "normalize",
		"window", window, "peak_index", peak, "peak", smoothed[peak])

	fitDecay(result, normalized, peak, opts.Config.AttackSkipMs, sampleRate)

	e.logger.Debug("ringdown.Analyze", "stage", "fit",
		"fit_start", result.FitStart, "fit_points", result.FitPoints,
		"slope", result.Slope, "r2", result.RSquared)

	locateMode(result, opts)

	if f0, ok := result.F0.Get(); ok {
		if tau, ok := result.Tau.Get(); ok {
			result.Q = Some(math.Pi * f0 * tau)
		}
	}

	fillAxes(result, dt)
	interpretResults(result, opts.Thresholds)

	e.logger.Debug("ringdown.Analyze", "stage", "done",
		"f0", result.F0, "tau", result.Tau, "q", result.Q, "bandwidth", result.Bandwidth,
		"flags", result.Flags, "elapsed", time.Since(start))

	return result, nil
}

// fitDecay regresses the log envelope against time, from attackSkipMs after the peak to the end.
func fitDecay(result *Result, normalized []float64, peak int, attackSkipMs, sampleRate float64) {
	count := len(normalized)
	fitStart := min(peak+smooth.Samples(attackSkipMs, sampleRate), count)

	result.FitStart = fitStart
	result.FitPoints = count - fitStart

	if result.FitPoints <= minFitPoints {
		return
	}

	xs := make([]float64, result.FitPoints)
	ys := make([]float64, result.FitPoints)

	for i := range xs {
		xs[i] = float64(fitStart+i) / sampleRate
		ys[i] = math.Log(max(normalized[fitStart+i], logFloor))
	}

	line, ok := regression.Fit(xs, ys)
	if !ok {
		return
	}

	result.Slope = Some(line.Slope)
	result.Intercept = Some(line.Intercept)
	result.RSquared = Some(line.RSquared)

	if line.Slope < 0 {
		result.Tau = Some(-1 / line.Slope)
	}
}

// locateMode picks the modal frequency from the hint or the spectrum, and the bandwidth from the spectrum.
func locateMode(result *Result, opts Options) {
	if hint, ok := opts.F0Hint.Finite(); ok {
		result.F0 = Some(hint)
	} else if f0, ok := spectrum.PeakFrequency(opts.Spectrum); ok {
		result.F0 = Some(f0)
	}

	f0, ok := result.F0.Get()
	if !ok || opts.Spectrum == nil {
		return
	}

	if bandwidth, ok := spectrum.HalfPowerBandwidth(opts.Spectrum, f0); ok {
		result.Bandwidth = Some(bandwidth)
	}
}

func fillAxes(result *Result, dt float64) {
	count := len(result.Envelope)

	result.Time = make([]float64, count)
	for i := range result.Time {
		result.Time[i] = float64(i) * dt
	}

	stride := max(1, count/previewPoints)
	result.PreviewStride = stride
	result.Preview = make([]float64, 0, (count+stride-1)/stride)
	result.PreviewTime = make([]float64, 0, (count+stride-1)/stride)

	for i := 0; i < count; i += stride {
		result.Preview = append(result.Preview, result.Envelope[i])
		result.PreviewTime = append(result.PreviewTime, result.Time[i])
	}
}

func applyDefaults(opts *Options) {
	opts.Config.SmoothWindowMs = nonNegative(opts.Config.SmoothWindowMs)
	opts.Config.AttackSkipMs = nonNegative(opts.Config.AttackSkipMs)

	defaults := DefaultThresholds()

	if opts.Thresholds.LowQ == 0 {
		opts.Thresholds.LowQ = defaults.LowQ
	}

	if opts.Thresholds.BroadPeakRatio == 0 {
		opts.Thresholds.BroadPeakRatio = defaults.BroadPeakRatio
	}

	if opts.Thresholds.MinRSquared == 0 {
		opts.Thresholds.MinRSquared = defaults.MinRSquared
	}
}

func nonNegative(value float64) float64 {
	if math.IsNaN(value) || math.IsInf(value, 0) || value < 0 {
		return 0
	}

	return value
}

func interpretResults(result *Result, thresholds Thresholds) {
	// Low Q
	if q, ok := result.Q.Get(); ok {
		detected := q < thresholds.LowQ

		var summary string
		if detected {
			summary = fmt.Sprintf("Low Q: %.1f (below %.0f)", q, thresholds.LowQ)
		} else {
			summary = fmt.Sprintf("Q %.1f", q)
		}

		addIssue(result, FlagLowQ, detected, summary)
	}

	// Broad peak
	if bandwidth, ok := result.Bandwidth.Get(); ok {
		f0, _ := result.F0.Get()
		limit := thresholds.BroadPeakRatio * f0
		detected := bandwidth > limit

		var summary string
		if detected {
			summary = fmt.Sprintf("Broad peak: %.2f Hz wide at %.1f Hz (limit %.2f Hz)", bandwidth, f0, limit)
		} else {
			summary = fmt.Sprintf("Sharp peak: %.2f Hz wide at %.1f Hz", bandwidth, f0)
		}

		addIssue(result, FlagBroadPeak, detected, summary)
	}

	// Unstable decay
	if r2, ok := result.RSquared.Get(); ok {
		detected := r2 < thresholds.MinRSquared

		var summary string

		switch {
		case detected && !result.Tau.Present():
			summary = fmt.Sprintf("Unstable decay: R² %.3f, envelope does not decay", r2)
		case detected:
			summary = fmt.Sprintf("Unstable decay: R² %.3f (below %.2f)", r2, thresholds.MinRSquared)
		default:
			summary = fmt.Sprintf("Exponential decay, R² %.3f", r2)
		}

		addIssue(result, FlagUnstableDecay, detected, summary)
	}
}

func addIssue(result *Result, flag Flag, detected bool, summary string) {
	if detected {
		result.Flags |= flag
		result.IssueCount++
	}

	result.Issues = append(result.Issues, Issue{
		Flag:     flag,
		Detected: detected,
		Summary:  summary,
	})
}
