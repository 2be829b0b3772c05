package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/farcloser/ringdown"
	"github.com/farcloser/ringdown/internal/config"
	"github.com/farcloser/ringdown/spectrum"
)

func writeTemp(t *testing.T, name, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	return path
}

func TestLoadEmptyPathReturnsDefaults(t *testing.T) {
	cfg, err := config.Load("")
	require.NoError(t, err)
	assert.Equal(t, config.Default(), cfg)

	opts, err := cfg.Options()
	require.NoError(t, err)
	assert.Equal(t, ringdown.DefaultOptions(), opts)
}

func TestLoadKeepsExplicitZeros(t *testing.T) {
	cfg, err := config.Load(writeTemp(t, "zero.yaml", "smooth_window_ms: 0\nattack_skip_ms: 0\n"))
	require.NoError(t, err)

	opts, err := cfg.Options()
	require.NoError(t, err)
	assert.Equal(t, ringdown.Config{}, opts.Config)
}

func TestLoadFileNotFound(t *testing.T) {
	cfg, err := config.Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.Nil(t, cfg)
}

func TestLoadUnmarshalError(t *testing.T) {
	_, err := config.Load(writeTemp(t, "bad.yaml", ":\n:bad"))
	require.ErrorContains(t, err, "failed to parse config file")
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := writeTemp(t, "ringdown.yaml", `
smooth_window_ms: 2.5
f0_hint: 196
thresholds:
  low_q: 90
`)

	cfg, err := config.Load(path)
	require.NoError(t, err)

	assert.InDelta(t, 2.5, cfg.SmoothWindowMs, 0)
	assert.InDelta(t, 40.0, cfg.AttackSkipMs, 0, "unset keys keep their default")
	assert.InDelta(t, 90.0, cfg.Thresholds.LowQ, 0)
	assert.InDelta(t, 0.85, cfg.Thresholds.MinRSquared, 0)

	opts, err := cfg.Options()
	require.NoError(t, err)

	f0, ok := opts.F0Hint.Get()
	require.True(t, ok)
	assert.InDelta(t, 196.0, f0, 0)
	assert.Nil(t, opts.Spectrum)
}

func TestLoadValidation(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{name: "negative smoothing", content: "smooth_window_ms: -1\n"},
		{name: "zero low Q", content: "thresholds:\n  low_q: 0\n"},
		{name: "R² above one", content: "thresholds:\n  min_r_squared: 1.5\n"},
		{name: "negative f0", content: "f0_hint: -200\n"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := config.Load(writeTemp(t, "ringdown.yaml", tc.content))
			require.ErrorIs(t, err, config.ErrInvalidConfig)
		})
	}
}

func TestSpectrumRelativeToConfig(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "plate.csv"),
		[]byte("frequency_hz,level_db\n190,-20\n200,0\n210,-20\n"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "ringdown.yaml"), []byte("spectrum: plate.csv\n"), 0o600))

	cfg, err := config.Load(filepath.Join(dir, "ringdown.yaml"))
	require.NoError(t, err)

	opts, err := cfg.Options()
	require.NoError(t, err)
	require.NotNil(t, opts.Spectrum)

	peak, ok := spectrum.PeakFrequency(opts.Spectrum)
	require.True(t, ok)
	assert.InDelta(t, 200.0, peak, 0)
}

func TestSpectrumMissing(t *testing.T) {
	cfg, err := config.Load(writeTemp(t, "ringdown.yaml", "spectrum: nowhere.csv\n"))
	require.NoError(t, err)

	_, err = cfg.Options()
	require.Error(t, err)
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("RINGDOWN_ATTACK_SKIP_MS", "12")
	t.Setenv("RINGDOWN_SMOOTH_WINDOW_MS", "not-a-number")

	cfg, err := config.Load("")
	require.NoError(t, err)
	assert.InDelta(t, 12.0, cfg.AttackSkipMs, 0)
	assert.InDelta(t, 5.0, cfg.SmoothWindowMs, 0)
}
