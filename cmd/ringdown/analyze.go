//nolint:wrapcheck
package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/farcloser/ringdown/internal/media"
	"github.com/farcloser/ringdown/internal/types"
	"github.com/farcloser/ringdown/internal/wavfile"
)

var (
	errInvalidArgCount = errors.New("expected exactly one argument: file path or \"-\" for stdin")
	errMissingRate     = errors.New("--sample-rate is required for raw PCM input")
	errInvalidBitDepth = errors.New("must be 16, 24, or 32")
)

func analyzeCommand() *cli.Command {
	return &cli.Command{
		Name:      "analyze",
		Usage:     "Analyze a WAV file or raw PCM ring-down recording",
		ArgsUsage: "<file | ->",
		Flags: append([]cli.Flag{
			// Raw PCM format flags, ignored for WAV input.
			&cli.IntFlag{
				Name:    "sample-rate",
				Aliases: []string{"s"},
				Usage:   "Sample rate in Hz of raw PCM input (e.g., 44100, 48000, 96000)",
			},
			&cli.IntFlag{
				Name:    "bit-depth",
				Aliases: []string{"b"},
				Usage:   "Bit depth of raw PCM input (16, 24, or 32)",
				Value:   16,
			},
			&cli.IntFlag{
				Name:    "channels",
				Aliases: []string{"c"},
				Usage:   "Number of channels of raw PCM input, mixed down to mono",
				Value:   1,
			},
		}, analysisFlags()...),
		Action: func(_ context.Context, cmd *cli.Command) error {
			if cmd.NArg() != 1 {
				return fmt.Errorf("%w: got %d", errInvalidArgCount, cmd.NArg())
			}

			inputPath := cmd.Args().First()
			engine := newEngine(cmd)

			recording, err := readInput(cmd, inputPath)
			if err != nil {
				return err
			}

			opts, err := buildOptions(cmd, recording.Samples, recording.SampleRate)
			if err != nil {
				return err
			}

			result, err := engine.Analyze(recording.Samples, recording.SampleRate, opts)
			if err != nil {
				return fmt.Errorf("analysis failed: %w", err)
			}

			return outputResult(inputPath, result, cmd)
		},
	}
}

// readInput loads a file or stdin. WAV content is recognized by its header; anything else is
// treated as raw PCM described by the format flags.
func readInput(cmd *cli.Command, source string) (*media.Recording, error) {
	var (
		data []byte
		err  error
	)

	if source == "-" {
		data, err = io.ReadAll(os.Stdin)
		if err != nil {
			return nil, fmt.Errorf("reading stdin: %w", err)
		}
	} else {
		data, err = os.ReadFile(source) //nolint:gosec // CLI tool opens user-specified audio files
		if err != nil {
			return nil, fmt.Errorf("cannot access %s: %w", source, err)
		}
	}

	if wavfile.Sniff(data) {
		return media.FromWAV(bytes.NewReader(data))
	}

	format, err := parsePCMFormat(cmd)
	if err != nil {
		return nil, err
	}

	return media.FromPCM(bytes.NewReader(data), format)
}

func parsePCMFormat(cmd *cli.Command) (types.PCMFormat, error) {
	sampleRate := cmd.Int("sample-rate")
	if sampleRate <= 0 {
		return types.PCMFormat{}, errMissingRate
	}

	bitDepth, err := toBitDepth(cmd.Int("bit-depth"))
	if err != nil {
		return types.PCMFormat{}, fmt.Errorf("--bit-depth: %w", err)
	}

	channels := cmd.Int("channels")
	if channels <= 0 {
		return types.PCMFormat{}, fmt.Errorf("--channels: %w: %d", types.ErrInvalidInput, channels)
	}

	return types.PCMFormat{
		SampleRate: sampleRate,
		BitDepth:   bitDepth,
		Channels:   uint(channels), //nolint:gosec // validated positive value
	}, nil
}

func toBitDepth(v int) (types.BitDepth, error) {
	switch v {
	case 16:
		return types.Depth16, nil
	case 24:
		return types.Depth24, nil
	case 32:
		return types.Depth32, nil
	default:
		return 0, errInvalidBitDepth
	}
}
