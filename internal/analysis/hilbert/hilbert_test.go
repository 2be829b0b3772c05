package hilbert_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/farcloser/ringdown/internal/analysis/hilbert"
)

func TestMask(t *testing.T) {
	assert.Equal(t, []float64{1, 2, 2, 2, 1, 0, 0, 0}, hilbert.Mask(8))
	assert.Equal(t, []float64{1, 1}, hilbert.Mask(2))
	assert.Equal(t, []float64{1}, hilbert.Mask(1))
	assert.Empty(t, hilbert.Mask(0))
}

func TestEnvelopeEmpty(t *testing.T) {
	env := hilbert.Envelope(nil)
	require.NotNil(t, env)
	assert.Empty(t, env)
}

func TestEnvelopeOfWholeCycleSinusoidIsFlat(t *testing.T) {
	const (
		n         = 4096
		amplitude = 0.7
		cycles    = 64
	)

	signal := make([]float64, n)
	for i := range signal {
		signal[i] = amplitude * math.Sin(2*math.Pi*cycles*float64(i)/n)
	}

	env := hilbert.Envelope(signal)
	require.Len(t, env, n)

	for i, v := range env {
		require.InDelta(t, amplitude, v, 1e-9, "index %d", i)
	}
}

func TestEnvelopeTrimsPadding(t *testing.T) {
	signal := make([]float64, 3000)
	for i := range signal {
		signal[i] = math.Cos(2 * math.Pi * 440 * float64(i) / 48000)
	}

	env := hilbert.Envelope(signal)
	require.Len(t, env, len(signal))

	// Away from the edges the envelope of a unit cosine stays close to 1.
	for i := 1000; i < 2000; i++ {
		assert.InDelta(t, 1.0, env[i], 0.05, "index %d", i)
	}

	for _, v := range env {
		assert.GreaterOrEqual(t, v, 0.0)
		assert.False(t, math.IsNaN(v))
	}
}

func TestEnvelopeOfSilence(t *testing.T) {
	env := hilbert.Envelope(make([]float64, 1000))
	require.Len(t, env, 1000)

	for _, v := range env {
		assert.Zero(t, v)
	}
}

func TestEnvelopeFollowsDecay(t *testing.T) {
	const (
		sampleRate = 48000.0
		n          = 8192
		tau        = 0.05
	)

	signal := make([]float64, n)
	for i := range signal {
		ts := float64(i) / sampleRate
		signal[i] = math.Exp(-ts/tau) * math.Sin(2*math.Pi*1000*ts)
	}

	env := hilbert.Envelope(signal)

	for _, i := range []int{1000, 2000, 4000} {
		want := math.Exp(-float64(i) / sampleRate / tau)
		assert.InDelta(t, want, env[i], 0.02*want+1e-3, "index %d", i)
	}
}
