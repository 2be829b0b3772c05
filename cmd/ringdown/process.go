//nolint:wrapcheck
package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/farcloser/ringdown/internal/media"
)

var errProcessArgs = errors.New("expected exactly one argument: file path")

func processCommand() *cli.Command {
	return &cli.Command{
		Name:      "process",
		Usage:     "Decode any audio file (via ffprobe and ffmpeg) and analyze its ring-down",
		ArgsUsage: "<file>",
		Flags: append([]cli.Flag{
			&cli.IntFlag{
				Name:  "stream",
				Usage: "Audio stream index (0-based)",
				Value: 0,
			},
		}, analysisFlags()...),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			if cmd.NArg() != 1 {
				return fmt.Errorf("%w: got %d", errProcessArgs, cmd.NArg())
			}

			filePath := cmd.Args().First()
			engine := newEngine(cmd)

			recording, _, err := media.Load(ctx, filePath, cmd.Int("stream"))
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

			return outputResult(filePath, result, cmd)
		},
	}
}
