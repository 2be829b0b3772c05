package output_test

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/farcloser/ringdown"
	"github.com/farcloser/ringdown/internal/output"
)

func TestResultToMapKeepsAbsentDistinct(t *testing.T) {
	buffer := make([]float64, 4096)
	for i := range buffer {
		ts := float64(i) / 48000
		buffer[i] = math.Exp(-ts/0.3) * math.Sin(2*math.Pi*200*ts)
	}

	result, err := ringdown.Analyze(buffer, 48000, ringdown.DefaultOptions())
	require.NoError(t, err)

	data, err := json.Marshal(output.ResultToMap(result))
	require.NoError(t, err)

	var decoded struct {
		Summary struct {
			IssueCount int      `json:"issue_count"`
			Flags      []string `json:"flags"`
		} `json:"summary"`
		Estimates map[string]*float64 `json:"estimates"`
		Issues    []struct {
			Flag     string `json:"flag"`
			Detected bool   `json:"detected"`
		} `json:"issues"`
		Fit struct {
			FitStart int `json:"fit_start"`
		} `json:"fit"`
	}

	require.NoError(t, json.Unmarshal(data, &decoded))

	require.Contains(t, decoded.Estimates, "f0_hz")
	assert.Nil(t, decoded.Estimates["f0_hz"], "no hint and no spectrum")
	assert.Nil(t, decoded.Estimates["q"])
	assert.Nil(t, decoded.Estimates["bandwidth_hz"])
	require.NotNil(t, decoded.Estimates["tau_s"])
	assert.InDelta(t, 0.3, *decoded.Estimates["tau_s"], 0.03)

	assert.Empty(t, decoded.Summary.Flags)
	require.Len(t, decoded.Issues, 1)
	assert.Equal(t, "unstable_decay", decoded.Issues[0].Flag)
	assert.False(t, decoded.Issues[0].Detected)
	assert.Equal(t, result.FitStart, decoded.Fit.FitStart)
}

func TestResultToMapNonFiniteEstimate(t *testing.T) {
	// A huge f0 hint overflows Q = pi*f0*tau.
	result := &ringdown.Result{
		F0:        ringdown.Some(math.MaxFloat64),
		Tau:       ringdown.Some(0.5),
		Q:         ringdown.Some(math.Inf(1)),
		Intercept: ringdown.Some(math.NaN()),
	}

	estimates := output.EstimatesToMap(result)
	assert.Nil(t, estimates["q"])
	assert.InDelta(t, 0.5, estimates["tau_s"], 0)
	assert.Nil(t, output.FitToMap(result)["intercept"])

	_, err := json.Marshal(output.ResultToMap(result))
	require.NoError(t, err)
}

func TestPreviewAndEnvelopeMaps(t *testing.T) {
	result, err := ringdown.Analyze(make([]float64, 1200), 8000, ringdown.DefaultOptions())
	require.NoError(t, err)

	preview := output.PreviewToMap(result)
	assert.Equal(t, 3, preview["stride"])
	assert.Len(t, preview["envelope"], 400)
	assert.Len(t, preview["time"], 400)

	envelope := output.EnvelopeToMap(result)
	assert.Len(t, envelope["envelope"], 1200)
	assert.InDelta(t, 1.0/8000, envelope["dt"], 0)
}
