// Package pcm decodes raw interleaved PCM into mono float samples.
package pcm

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/farcloser/primordium/fault"

	"github.com/farcloser/ringdown/internal/types"
)

var errTrailingBytes = errors.New("stream ends with a partial frame")

// Validate checks that format can be decoded.
func Validate(format types.PCMFormat) error {
	switch format.BitDepth {
	case types.Depth16, types.Depth24, types.Depth32:
	default:
		return fmt.Errorf("%w: bit depth %d (must be 16, 24, or 32)", types.ErrInvalidInput, format.BitDepth)
	}

	if format.Channels == 0 {
		return fmt.Errorf("%w: zero channels", types.ErrInvalidInput)
	}

	if format.SampleRate <= 0 {
		return fmt.Errorf("%w: sample rate %d", types.ErrInvalidInput, format.SampleRate)
	}

	return nil
}

// Decode reads signed little-endian PCM from reader and returns one sample per frame, the mean of
// its channels, scaled to [-1, 1).
func Decode(reader io.Reader, format types.PCMFormat) ([]float64, error) {
	if err := Validate(format); err != nil {
		return nil, err
	}

	bytesPerSample := int(format.BitDepth / 8) //nolint:gosec // bit depth and channel count are small constants
	numChannels := int(format.Channels)        //nolint:gosec // channel count is small
	frameSize := bytesPerSample * numChannels
	buf := make([]byte, frameSize*readFrames)

	var (
		maxVal float64
		read   func(data []byte) int32
	)

	switch format.BitDepth {
	case types.Depth16:
		maxVal = MaxValue16
		read = func(data []byte) int32 {
			return int32(int16(binary.LittleEndian.Uint16(data))) //nolint:gosec // two's complement conversion for signed PCM samples
		}
	case types.Depth24:
		maxVal = MaxValue24
		read = func(data []byte) int32 {
			raw := int32(data[0]) | int32(data[1])<<8 | int32(data[2])<<16
			if raw&0x800000 != 0 {
				raw |= ^0xFFFFFF
			}

			return raw
		}
	case types.Depth32:
		maxVal = MaxValue32
		read = func(data []byte) int32 {
			return int32(binary.LittleEndian.Uint32(data)) //nolint:gosec // two's complement conversion for signed PCM samples
		}
	}

	scale := 1 / (maxVal * float64(numChannels))
	samples := []float64{}

	for {
		n, err := io.ReadFull(reader, buf)
		completeFrames := (n / frameSize) * frameSize

		for i := 0; i < completeFrames; i += frameSize {
			var sum float64
			for channel := range numChannels {
				sum += float64(read(buf[i+channel*bytesPerSample:]))
			}

			samples = append(samples, sum*scale)
		}

		if errors.Is(err, io.EOF) {
			break
		}

		if errors.Is(err, io.ErrUnexpectedEOF) {
			if n != completeFrames {
				return nil, fmt.Errorf("%w: %w (%d bytes)", fault.ErrReadFailure, errTrailingBytes, n-completeFrames)
			}

			break
		}

		if err != nil {
			return nil, fmt.Errorf("%w: %w", fault.ErrReadFailure, err)
		}
	}

	return samples, nil
}
