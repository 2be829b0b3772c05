package media_test

import (
	"bytes"
	"context"
	"encoding/binary"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/farcloser/primordium/fault"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	tools "github.com/farcloser/ringdown/internal/integration/binary"
	"github.com/farcloser/ringdown/internal/media"
	"github.com/farcloser/ringdown/internal/types"
	"github.com/farcloser/ringdown/internal/wavfile"
)

func writeWAV(t *testing.T, samples []float64, sampleRate int) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "tap.wav")

	file, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, wavfile.Write(file, samples, sampleRate, 24))
	require.NoError(t, file.Close())

	return path
}

func TestLoadWAV(t *testing.T) {
	samples := make([]float64, 2400)
	for i := range samples {
		samples[i] = 0.5 * math.Sin(2*math.Pi*float64(i)/24)
	}

	recording, timing, err := media.Load(context.Background(), writeWAV(t, samples, 48000), 0)
	require.NoError(t, err)
	require.NotNil(t, timing)

	assert.InDelta(t, 48000.0, recording.SampleRate, 0)
	assert.Equal(t, 1, recording.Channels)
	assert.Nil(t, recording.Probe)
	assert.InDeltaSlice(t, samples, recording.Samples, 1e-6)
}

func TestLoadMissingFile(t *testing.T) {
	_, _, err := media.Load(context.Background(), filepath.Join(t.TempDir(), "missing.wav"), 0)
	require.Error(t, err)
}

func TestFromPCM(t *testing.T) {
	var buf bytes.Buffer
	for _, v := range []int16{16384, -16384, 0, 8192} {
		require.NoError(t, binary.Write(&buf, binary.LittleEndian, v))
	}

	recording, err := media.FromPCM(&buf, types.PCMFormat{SampleRate: 8000, BitDepth: types.Depth16, Channels: 2})
	require.NoError(t, err)

	assert.InDelta(t, 8000.0, recording.SampleRate, 0)
	assert.Equal(t, 2, recording.Channels)
	assert.InDeltaSlice(t, []float64{0, 0.125}, recording.Samples, 1e-12)
}

func TestFromWAVRejectsGarbage(t *testing.T) {
	_, err := media.FromWAV(bytes.NewReader([]byte("RIFF\x00\x00\x00\x00WAVEjunkjunkjunk")))
	require.Error(t, err)
}

// writeFloatWAV hand-builds a mono IEEE float (format tag 3) WAV file.
func writeFloatWAV(t *testing.T, samples []float32, sampleRate uint32) string {
	t.Helper()

	var buf bytes.Buffer

	dataSize := uint32(4 * len(samples)) //nolint:gosec // small test buffer
	fields := []any{
		[]byte("RIFF"), 36 + dataSize, []byte("WAVE"),
		[]byte("fmt "), uint32(16),
		uint16(3), uint16(1), sampleRate, 4 * sampleRate, uint16(4), uint16(32),
		[]byte("data"), dataSize, samples,
	}

	for _, field := range fields {
		require.NoError(t, binary.Write(&buf, binary.LittleEndian, field))
	}

	path := filepath.Join(t.TempDir(), "float.wav")
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o600))

	return path
}

func TestLoadFloatWAVGoesThroughFFmpeg(t *testing.T) {
	samples := make([]float32, 4800)
	for i := range samples {
		samples[i] = float32(0.5 * math.Sin(2*math.Pi*float64(i)/48))
	}

	recording, timing, err := media.Load(context.Background(), writeFloatWAV(t, samples, 48000), 0)
	require.NotErrorIs(t, err, wavfile.ErrUnsupportedFormat)
	require.NotNil(t, timing)

	_, hasProbe := tools.Available("ffprobe")
	_, hasFFmpeg := tools.Available("ffmpeg")

	if !hasProbe || !hasFFmpeg {
		require.ErrorIs(t, err, fault.ErrMissingRequirements)

		return
	}

	require.NoError(t, err)
	require.NotNil(t, recording.Probe)
	assert.InDelta(t, 48000.0, recording.SampleRate, 0)
	require.Len(t, recording.Samples, len(samples))

	for i, v := range samples {
		assert.InDelta(t, float64(v), recording.Samples[i], 1e-6)
	}
}
