// Package wavfile reads and writes WAV recordings as mono float samples.
package wavfile

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/farcloser/primordium/fault"
	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

const (
	formatPCM        = 1
	formatExtensible = 0xFFFE
)

var errNotWAV = errors.New("not a RIFF/WAVE file")

var (
	// ErrUnsupportedFormat is returned for WAV encodings other than integer PCM (float, A-law, ...).
	ErrUnsupportedFormat = errors.New("unsupported WAV encoding")
	// ErrUnsupportedDepth is returned for integer PCM that is not 16, 24 or 32 bits.
	ErrUnsupportedDepth = errors.New("unsupported bit depth")
)

// Audio is a decoded recording, mixed down to mono.
type Audio struct {
	Samples    []float64
	SampleRate int
	Channels   int
	BitDepth   int
}

// Sniff reports whether header starts like a RIFF/WAVE file. It needs at least 12 bytes.
func Sniff(header []byte) bool {
	return len(header) >= 12 && bytes.Equal(header[0:4], []byte("RIFF")) && bytes.Equal(header[8:12], []byte("WAVE"))
}

// Read decodes an integer PCM WAV file and returns the mean of its channels, scaled to [-1, 1).
func Read(reader io.ReadSeeker) (*Audio, error) {
	decoder := wav.NewDecoder(reader)
	if !decoder.IsValidFile() {
		return nil, fmt.Errorf("%w: %w", fault.ErrReadFailure, errNotWAV)
	}

	if decoder.WavAudioFormat != formatPCM && decoder.WavAudioFormat != formatExtensible {
		return nil, fmt.Errorf("%w: %w: format tag %d", fault.ErrReadFailure, ErrUnsupportedFormat, decoder.WavAudioFormat)
	}

	buffer, err := decoder.FullPCMBuffer()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", fault.ErrReadFailure, err)
	}

	bitDepth := int(decoder.BitDepth)
	channels := int(decoder.NumChans)

	if channels <= 0 {
		return nil, fmt.Errorf("%w: %d channels", fault.ErrReadFailure, channels)
	}

	scale, err := sampleScale(bitDepth)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", fault.ErrReadFailure, err)
	}

	scale /= float64(channels)
	frames := len(buffer.Data) / channels
	samples := make([]float64, frames)

	for frame := range frames {
		var sum float64
		for _, v := range buffer.Data[frame*channels : (frame+1)*channels] {
			sum += float64(v)
		}

		samples[frame] = sum * scale
	}

	return &Audio{
		Samples:    samples,
		SampleRate: int(decoder.SampleRate),
		Channels:   channels,
		BitDepth:   bitDepth,
	}, nil
}

// Write encodes mono samples in [-1, 1] as integer PCM at the given bit depth. Values outside the
// range are clipped.
func Write(writer io.WriteSeeker, samples []float64, sampleRate, bitDepth int) error {
	scale, err := sampleScale(bitDepth)
	if err != nil {
		return err
	}

	peak := 1/scale - 1
	data := make([]int, len(samples))

	for i, v := range samples {
		data[i] = int(math.Max(-peak-1, math.Min(peak, math.Round(v/scale))))
	}

	encoder := wav.NewEncoder(writer, sampleRate, bitDepth, 1, formatPCM)

	buffer := &audio.IntBuffer{
		Format:         &audio.Format{NumChannels: 1, SampleRate: sampleRate},
		Data:           data,
		SourceBitDepth: bitDepth,
	}

	if err := encoder.Write(buffer); err != nil {
		return err //nolint:wrapcheck
	}

	return encoder.Close() //nolint:wrapcheck
}

// sampleScale returns the factor mapping signed integer samples to [-1, 1).
func sampleScale(bitDepth int) (float64, error) {
	switch bitDepth {
	case 16, 24, 32:
		return 1 / math.Ldexp(1, bitDepth-1), nil
	default:
		return 0, fmt.Errorf("%w: %d", ErrUnsupportedDepth, bitDepth)
	}
}
