// Package config loads analysis settings from a YAML file.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/farcloser/ringdown"
	"github.com/farcloser/ringdown/spectrum"
)

// ErrInvalidConfig is returned when a configuration value is out of range.
var ErrInvalidConfig = errors.New("invalid configuration")

// Config is the on-disk analysis configuration.
type Config struct {
	SmoothWindowMs float64          `yaml:"smooth_window_ms"` // Causal smoothing length of the envelope.
	AttackSkipMs   float64          `yaml:"attack_skip_ms"`   // Delay after the envelope peak before fitting.
	F0Hint         *float64         `yaml:"f0_hint"`          // Known modal frequency in Hz, optional.
	Spectrum       string           `yaml:"spectrum"`         // CSV spectrum, relative to the config file.
	Thresholds     ThresholdsConfig `yaml:"thresholds"`       // Flag thresholds.

	dir string
}

// ThresholdsConfig holds the values that raise quality flags.
type ThresholdsConfig struct {
	LowQ           float64 `yaml:"low_q"`            // Q below this raises low_Q.
	BroadPeakRatio float64 `yaml:"broad_peak_ratio"` // Bandwidth above ratio*f0 raises broad_peak.
	MinRSquared    float64 `yaml:"min_r_squared"`    // R² below this raises unstable_decay.
}

// Default returns the configuration matching ringdown.DefaultOptions.
func Default() *Config {
	defaults := ringdown.DefaultOptions()

	return &Config{
		SmoothWindowMs: defaults.Config.SmoothWindowMs,
		AttackSkipMs:   defaults.Config.AttackSkipMs,
		Thresholds: ThresholdsConfig{
			LowQ:           defaults.Thresholds.LowQ,
			BroadPeakRatio: defaults.Thresholds.BroadPeakRatio,
			MinRSquared:    defaults.Thresholds.MinRSquared,
		},
	}
}

// Load reads the YAML file at path over the defaults. An empty path returns the defaults.
// Environment overrides are applied last.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path) //nolint:gosec // user-specified configuration file
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}

		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}

		cfg.dir = filepath.Dir(path)
	}

	cfg.applyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks that every value is usable.
func (c *Config) Validate() error {
	checks := []struct {
		name  string
		value float64
		ok    func(float64) bool
	}{
		{"smooth_window_ms", c.SmoothWindowMs, nonNegative},
		{"attack_skip_ms", c.AttackSkipMs, nonNegative},
		{"thresholds.low_q", c.Thresholds.LowQ, positive},
		{"thresholds.broad_peak_ratio", c.Thresholds.BroadPeakRatio, positive},
		{"thresholds.min_r_squared", c.Thresholds.MinRSquared, func(v float64) bool { return positive(v) && v <= 1 }},
	}

	for _, check := range checks {
		if !check.ok(check.value) {
			return fmt.Errorf("%w: %s = %v", ErrInvalidConfig, check.name, check.value)
		}
	}

	if c.F0Hint != nil && !positive(*c.F0Hint) {
		return fmt.Errorf("%w: f0_hint = %v", ErrInvalidConfig, *c.F0Hint)
	}

	return nil
}

// Options converts the configuration into analysis options, reading the spectrum file if one is set.
func (c *Config) Options() (ringdown.Options, error) {
	opts := ringdown.Options{
		Config: ringdown.Config{
			SmoothWindowMs: c.SmoothWindowMs,
			AttackSkipMs:   c.AttackSkipMs,
		},
		Thresholds: ringdown.Thresholds{
			LowQ:           c.Thresholds.LowQ,
			BroadPeakRatio: c.Thresholds.BroadPeakRatio,
			MinRSquared:    c.Thresholds.MinRSquared,
		},
	}

	if c.F0Hint != nil {
		opts.F0Hint = ringdown.Some(*c.F0Hint)
	}

	if c.Spectrum != "" {
		path := c.Spectrum
		if !filepath.IsAbs(path) && c.dir != "" {
			path = filepath.Join(c.dir, path)
		}

		spec, err := ReadSpectrum(path)
		if err != nil {
			return ringdown.Options{}, err
		}

		opts.Spectrum = spec
	}

	return opts, nil
}

// ReadSpectrum loads a CSV spectrum from path.
func ReadSpectrum(path string) (*spectrum.Spectrum, error) {
	file, err := os.Open(path) //nolint:gosec // user-specified spectrum file
	if err != nil {
		return nil, fmt.Errorf("opening spectrum: %w", err)
	}
	defer file.Close()

	spec, err := spectrum.ReadCSV(file)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return spec, nil
}

// applyEnvOverrides lets RINGDOWN_SMOOTH_WINDOW_MS and RINGDOWN_ATTACK_SKIP_MS replace file values.
func (c *Config) applyEnvOverrides() {
	overrides := []struct {
		env    string
		target *float64
	}{
		{"RINGDOWN_SMOOTH_WINDOW_MS", &c.SmoothWindowMs},
		{"RINGDOWN_ATTACK_SKIP_MS", &c.AttackSkipMs},
	}

	for _, override := range overrides {
		val, ok := os.LookupEnv(override.env)
		if !ok {
			continue
		}

		parsed, err := strconv.ParseFloat(val, 64)
		if err != nil {
			slog.Warn("ignoring environment override", "variable", override.env, "value", val, "error", err)

			continue
		}

		slog.Debug("config.Load", "override", override.env, "value", parsed)

		*override.target = parsed
	}
}

func nonNegative(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0) && v >= 0
}

func positive(v float64) bool {
	return nonNegative(v) && v > 0
}
