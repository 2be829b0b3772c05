//nolint:wrapcheck
package main

import (
	"compress/gzip"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"slices"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/farcloser/ringdown"
	"github.com/farcloser/ringdown/internal/config"
	"github.com/farcloser/ringdown/internal/media"
	"github.com/farcloser/ringdown/internal/output"
	"github.com/farcloser/ringdown/spectrum"
)

const defaultOutputFile = "ringdown-report.jsonl"

var (
	errReportArgs   = errors.New("expected exactly one argument: folder path")
	errNotDirectory = errors.New("not a directory")
	errNoAudioFiles = errors.New("no .wav, .flac, .aiff or .m4a files found")
)

//nolint:gochecknoglobals // configuration data, effectively const
var audioExtensions = []string{".wav", ".flac", ".aiff", ".aif", ".m4a"}

// reportSettings carries the command line through the worker pool.
type reportSettings struct {
	folder       string
	outputFile   string
	redact       bool
	fromSignal   bool
	workers      int
	analysisOpts ringdown.Options
}

func reportCommand() *cli.Command {
	return &cli.Command{
		Name:      "report",
		Usage:     "Analyze every recording in a folder and write a ringdown JSONL report",
		ArgsUsage: "<folder>",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "redact-path",
				Usage: "Strip file paths from the report",
			},
			&cli.StringFlag{
				Name:  "config",
				Usage: "YAML configuration file applied to every recording",
			},
			&cli.BoolFlag{
				Name:  "spectrum-from-signal",
				Usage: "Derive each recording's spectrum from its own waveform when the config supplies none",
			},
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "Report file (a gzip copy is written next to it)",
				Value:   defaultOutputFile,
			},
			&cli.IntFlag{
				Name:    "workers",
				Aliases: []string{"j"},
				Usage:   "Number of concurrent workers",
				Value:   runtime.NumCPU(),
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			if cmd.NArg() != 1 {
				return errReportArgs
			}

			cfg, err := config.Load(cmd.String("config"))
			if err != nil {
				return err
			}

			opts, err := cfg.Options()
			if err != nil {
				return err
			}

			settings := &reportSettings{
				folder:       cmd.Args().First(),
				outputFile:   cmd.String("output"),
				redact:       cmd.Bool("redact-path"),
				fromSignal:   cmd.Bool("spectrum-from-signal"),
				workers:      max(cmd.Int("workers"), 1),
				analysisOpts: opts,
			}

			return runReport(ctx, settings)
		},
	}
}

func runReport(ctx context.Context, settings *reportSettings) error {
	info, err := os.Stat(settings.folder)
	if err != nil || !info.IsDir() {
		return fmt.Errorf("%q: %w", settings.folder, errNotDirectory)
	}

	files, err := collectAudioFiles(settings.folder)
	if err != nil {
		return fmt.Errorf("scanning folder: %w", err)
	}

	if len(files) == 0 {
		return fmt.Errorf("%q: %w", settings.folder, errNoAudioFiles)
	}

	fmt.Fprintf(os.Stderr, "Found %d files to analyze (%d workers)\n", len(files), settings.workers)

	startTime := time.Now()
	results := make([]Record, len(files))

	var progress atomic.Int64

	sem := make(chan struct{}, settings.workers)

	var waitGroup sync.WaitGroup

	for idx, filePath := range files {
		waitGroup.Add(1)

		go func(idx int, filePath string) {
			defer waitGroup.Done()

			sem <- struct{}{}

			defer func() { <-sem }()

			results[idx] = processFile(ctx, filePath, settings)

			done := progress.Add(1)
			fmt.Fprintf(os.Stderr, "[%d/%d] %s\n", done, len(files), filePath)
		}(idx, filePath)
	}

	waitGroup.Wait()

	out, err := os.Create(settings.outputFile)
	if err != nil {
		return fmt.Errorf("creating output file: %w", err)
	}
	defer out.Close()

	enc := json.NewEncoder(out)
	failed := 0

	var totalProbe, totalDecode, totalAnalyze time.Duration

	for idx := range results {
		record := &results[idx]

		if record.Error != "" {
			failed++
		}

		if record.Timing != nil {
			totalProbe += millisToDuration(record.Timing.ProbeMs)
			totalDecode += millisToDuration(record.Timing.DecodeMs)
			totalAnalyze += millisToDuration(record.Timing.AnalyzeMs)
		}

		if settings.redact {
			record.File = ""
			record.Probe = redactProbe(record.Probe)
		}

		if err := enc.Encode(record); err != nil {
			slog.Error("writing record", "file", files[idx], "error", err)

			if record.Error == "" {
				failed++
			}
		}
	}

	out.Close()

	if err := compressFile(settings.outputFile); err != nil {
		slog.Error("compressing report", "error", err)
	}

	elapsed := time.Since(startTime)

	fmt.Fprintf(os.Stderr, "\nDone: %d files in %s (%d failed)\n", len(files), elapsed.Truncate(time.Millisecond), failed)
	fmt.Fprintf(os.Stderr, "Report written to %s (and %s.gz)\n", settings.outputFile, settings.outputFile)

	analyzed := len(files) - failed
	fmt.Fprintf(os.Stderr, "\n--- Timing ---\n")
	fmt.Fprintf(os.Stderr, "  ffprobe:     %s (cumulative)\n", totalProbe.Truncate(time.Millisecond))
	fmt.Fprintf(os.Stderr, "  decode:      %s (cumulative)\n", totalDecode.Truncate(time.Millisecond))
	fmt.Fprintf(os.Stderr, "  analysis:    %s (cumulative)\n", totalAnalyze.Truncate(time.Millisecond))

	if analyzed > 0 {
		fmt.Fprintf(os.Stderr, "  avg/file:    %s\n",
			(totalProbe+totalDecode+totalAnalyze)/time.Duration(analyzed))
	}

	fmt.Fprintln(os.Stderr)

	return runDigest(settings.outputFile, "")
}

func processFile(ctx context.Context, filePath string, settings *reportSettings) Record {
	fileStart := time.Now()
	timing := &RecordTiming{}

	recording, loadTiming, err := media.Load(ctx, filePath, 0)
	if loadTiming != nil {
		timing.ProbeMs = durationMs(loadTiming.Probe)
		timing.DecodeMs = durationMs(loadTiming.Decode)
	}

	if err != nil {
		return Record{File: filePath, Error: fmt.Sprintf("loading failed: %v", err), Timing: timing}
	}

	opts := settings.analysisOpts
	if opts.Spectrum == nil && settings.fromSignal && len(recording.Samples) > 0 {
		opts.Spectrum, err = spectrum.FromWaveform(recording.Samples, recording.SampleRate)
		if err != nil {
			return Record{File: filePath, Error: fmt.Sprintf("spectrum failed: %v", err), Timing: timing}
		}
	}

	analyzeStart := time.Now()

	result, err := ringdown.Analyze(recording.Samples, recording.SampleRate, opts)

	timing.AnalyzeMs = durationMs(time.Since(analyzeStart))
	timing.TotalMs = durationMs(time.Since(fileStart))

	if err != nil {
		return Record{File: filePath, Error: fmt.Sprintf("analysis failed: %v", err), Timing: timing}
	}

	record := Record{
		File:     filePath,
		Analysis: output.ResultToMap(result),
		Timing:   timing,
	}

	// WAV files are read without ffprobe.
	if recording.Probe != nil {
		probeJSON, err := json.Marshal(recording.Probe)
		if err == nil {
			record.Probe = probeJSON
		} else {
			record.ProbeError = "probe serialization failed"
		}
	}

	return record
}

func durationMs(d time.Duration) float64 {
	return float64(d.Microseconds()) / 1000.0
}

func millisToDuration(ms float64) time.Duration {
	return time.Duration(ms * float64(time.Millisecond))
}

func collectAudioFiles(root string) ([]string, error) {
	var files []string

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if d.IsDir() {
			return nil
		}

		if slices.Contains(audioExtensions, strings.ToLower(filepath.Ext(path))) {
			files = append(files, path)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	slices.Sort(files)

	return files, nil
}

func compressFile(path string) error {
	data, err := os.ReadFile(path) //nolint:gosec // reading our own output file
	if err != nil {
		return err
	}

	gzFile, err := os.Create(path + ".gz")
	if err != nil {
		return err
	}
	defer gzFile.Close()

	gzWriter := gzip.NewWriter(gzFile)

	if _, err := gzWriter.Write(data); err != nil {
		return err
	}

	return gzWriter.Close()
}

func redactProbe(raw json.RawMessage) json.RawMessage {
	if raw == nil {
		return nil
	}

	var probe map[string]any
	if err := json.Unmarshal(raw, &probe); err != nil {
		return raw
	}

	if format, ok := probe["format"].(map[string]any); ok {
		delete(format, "filename")
	}

	redacted, err := json.Marshal(probe)
	if err != nil {
		return raw
	}

	return redacted
}
