//nolint:wrapcheck
package main

import (
	"log/slog"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/farcloser/ringdown"
	"github.com/farcloser/ringdown/internal/config"
	"github.com/farcloser/ringdown/spectrum"
)

// analysisFlags are shared by every command that runs an analysis.
func analysisFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:  "config",
			Usage: "YAML configuration file (smoothing, attack skip, thresholds, f0 hint, spectrum)",
		},
		&cli.FloatFlag{
			Name:  "f0",
			Usage: "Known modal frequency in Hz (takes precedence over the spectrum peak)",
		},
		&cli.StringFlag{
			Name:  "spectrum",
			Usage: "CSV spectrum with a frequency_hz column and a magnitude or level_db column",
		},
		&cli.BoolFlag{
			Name:  "spectrum-from-signal",
			Usage: "Derive the spectrum from the recording itself when none is supplied",
		},
		&cli.FloatFlag{
			Name:  "smooth-ms",
			Usage: "Envelope smoothing window in milliseconds (default 5)",
		},
		&cli.FloatFlag{
			Name:  "attack-skip-ms",
			Usage: "Time skipped after the envelope peak before the decay fit, in milliseconds (default 40)",
		},
		&cli.StringFlag{
			Name:    "format",
			Aliases: []string{"f"},
			Usage:   "Output format: console, json, markdown",
			Value:   "console",
		},
		&cli.BoolFlag{
			Name:  "envelope",
			Usage: "Include the full-resolution normalized envelope in the output",
		},
		&cli.BoolFlag{
			Name:    "debug",
			Aliases: []string{"D"},
			Usage:   "Include all raw analysis data in output and log processing stages",
		},
	}
}

// buildOptions merges the configuration file and the command line; flags win.
func buildOptions(cmd *cli.Command, samples []float64, sampleRate float64) (ringdown.Options, error) {
	cfg, err := config.Load(cmd.String("config"))
	if err != nil {
		return ringdown.Options{}, err
	}

	if cmd.IsSet("smooth-ms") {
		cfg.SmoothWindowMs = cmd.Float("smooth-ms")
	}

	if cmd.IsSet("attack-skip-ms") {
		cfg.AttackSkipMs = cmd.Float("attack-skip-ms")
	}

	if err := cfg.Validate(); err != nil {
		return ringdown.Options{}, err
	}

	opts, err := cfg.Options()
	if err != nil {
		return ringdown.Options{}, err
	}

	if cmd.IsSet("f0") {
		opts.F0Hint = ringdown.Some(cmd.Float("f0"))
	}

	if path := cmd.String("spectrum"); path != "" {
		opts.Spectrum, err = config.ReadSpectrum(path)
		if err != nil {
			return ringdown.Options{}, err
		}
	}

	if opts.Spectrum == nil && cmd.Bool("spectrum-from-signal") && len(samples) > 0 {
		opts.Spectrum, err = spectrum.FromWaveform(samples, sampleRate)
		if err != nil {
			return ringdown.Options{}, err
		}
	}

	return opts, nil
}

func newEngine(cmd *cli.Command) *ringdown.Engine {
	level := slog.LevelInfo
	if cmd.Bool("debug") {
		level = slog.LevelDebug
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	return ringdown.New(logger)
}
