// Package media turns audio files into mono sample buffers ready for analysis.
//
// WAV files are decoded in-process. Every other container goes through ffprobe (stream discovery)
// and ffmpeg (32-bit PCM extraction).
package media

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/farcloser/ringdown/internal/integration/ffmpeg"
	"github.com/farcloser/ringdown/internal/integration/ffprobe"
	"github.com/farcloser/ringdown/internal/pcm"
	"github.com/farcloser/ringdown/internal/types"
	"github.com/farcloser/ringdown/internal/wavfile"
)

// Recording is a decoded, mono-mixed audio stream.
type Recording struct {
	Samples    []float64
	SampleRate float64
	Channels   int

	// Probe is set when the file went through ffprobe.
	Probe *ffprobe.Result
}

// Timing captures how long each loading stage took.
type Timing struct {
	Probe  time.Duration
	Decode time.Duration
}

// Load decodes the audio stream at streamIndex of filePath. WAV files with stream 0 are read
// directly; anything else requires ffprobe and ffmpeg.
func Load(ctx context.Context, filePath string, streamIndex int) (*Recording, *Timing, error) {
	timing := &Timing{}

	if streamIndex == 0 {
		if recording, ok, err := loadWAV(filePath, timing); ok || err != nil {
			return recording, timing, err
		}
	}

	probeStart := time.Now()

	probe, err := ffprobe.Probe(ctx, filePath)

	timing.Probe = time.Since(probeStart)

	if err != nil {
		return nil, timing, fmt.Errorf("probing file: %w", err)
	}

	stream, err := probe.AudioStream(streamIndex)
	if err != nil {
		return nil, timing, err //nolint:wrapcheck
	}

	format, err := stream.PCMFormat(types.Depth32)
	if err != nil {
		return nil, timing, err //nolint:wrapcheck
	}

	decodeStart := time.Now()
	defer func() { timing.Decode = time.Since(decodeStart) }()

	file, err := os.Open(filePath) //nolint:gosec // CLI tool opens user-specified audio files
	if err != nil {
		return nil, timing, fmt.Errorf("opening file: %w", err)
	}
	defer file.Close()

	var pcmBuf bytes.Buffer

	if err = ffmpeg.ExtractStream(ctx, file, &pcmBuf, streamIndex, &format); err != nil {
		return nil, timing, fmt.Errorf("extracting PCM: %w", err)
	}

	samples, err := pcm.Decode(&pcmBuf, format)
	if err != nil {
		return nil, timing, fmt.Errorf("decoding PCM: %w", err)
	}

	slog.Debug("media.Load", "file", filePath, "stage", "extracted",
		"samples", len(samples), "sample_rate", format.SampleRate, "channels", format.Channels)

	return &Recording{
		Samples:    samples,
		SampleRate: float64(format.SampleRate),
		Channels:   int(format.Channels), //nolint:gosec // channel count is small
		Probe:      probe,
	}, timing, nil
}

// loadWAV decodes filePath in-process when it is an integer PCM WAV file. It reports false, without
// error, when the file is something else, float WAV included, so ffmpeg can take over.
func loadWAV(filePath string, timing *Timing) (*Recording, bool, error) {
	file, err := os.Open(filePath) //nolint:gosec // CLI tool opens user-specified audio files
	if err != nil {
		return nil, false, fmt.Errorf("opening file: %w", err)
	}
	defer file.Close()

	header := make([]byte, 12)
	if _, err := io.ReadFull(file, header); err != nil || !wavfile.Sniff(header) {
		return nil, false, nil
	}

	if _, err := file.Seek(0, io.SeekStart); err != nil {
		return nil, false, fmt.Errorf("rewinding file: %w", err)
	}

	decodeStart := time.Now()

	decoded, err := FromWAV(file)

	timing.Decode = time.Since(decodeStart)

	if errors.Is(err, wavfile.ErrUnsupportedFormat) || errors.Is(err, wavfile.ErrUnsupportedDepth) {
		slog.Debug("media.Load", "file", filePath, "stage", "wav", "fallback", "ffmpeg", "reason", err)

		return nil, false, nil
	}

	if err != nil {
		return nil, true, err
	}

	slog.Debug("media.Load", "file", filePath, "stage", "wav",
		"samples", len(decoded.Samples), "sample_rate", decoded.SampleRate)

	return decoded, true, nil
}

// FromWAV decodes a WAV stream.
func FromWAV(reader io.ReadSeeker) (*Recording, error) {
	decoded, err := wavfile.Read(reader)
	if err != nil {
		return nil, err //nolint:wrapcheck
	}

	return &Recording{
		Samples:    decoded.Samples,
		SampleRate: float64(decoded.SampleRate),
		Channels:   decoded.Channels,
	}, nil
}

// FromPCM decodes raw PCM described by format.
func FromPCM(reader io.Reader, format types.PCMFormat) (*Recording, error) {
	samples, err := pcm.Decode(reader, format)
	if err != nil {
		return nil, err //nolint:wrapcheck
	}

	return &Recording{
		Samples:    samples,
		SampleRate: float64(format.SampleRate),
		Channels:   int(format.Channels), //nolint:gosec // channel count is small
	}, nil
}
