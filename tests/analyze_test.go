package tests_test

import (
	"testing"

	"github.com/containerd/nerdctl/mod/tigron/expect"
	"github.com/containerd/nerdctl/mod/tigron/test"

	"github.com/farcloser/ringdown/tests/testutils"
)

func TestAnalyzeCLI(t *testing.T) {
	dir := t.TempDir()

	clean := testutils.RingDown(440, 0.3, 1)
	cleanWAV := testutils.WriteWAV(t, dir, "clean.wav", clean, 16)
	cleanPCM := testutils.WritePCM16(t, dir, "clean.raw", clean)
	damped := testutils.WriteWAV(t, dir, "damped.wav", testutils.RingDown(440, 0.03, 0.25), 32)
	spectrumCSV := testutils.WriteFile(t, dir, "spectrum.csv", testutils.LorentzianCSV(440, 1))
	strictConfig := testutils.WriteFile(t, dir, "strict.yaml", "thresholds:\n  low_q: 1000\n")
	brokenConfig := testutils.WriteFile(t, dir, "broken.yaml", "thresholds: [\n")

	testCase := testutils.Setup()

	testCase.SubTests = []*test.Case{
		{
			Description: "analyze without arguments fails",
			Command:     test.Command("analyze"),
			Expected:    test.Expects(expect.ExitCodeGenericFail, nil, nil),
		},
		{
			Description: "analyze nonexistent file fails",
			Command:     test.Command("analyze", "/nonexistent/path/tap.wav"),
			Expected:    test.Expects(expect.ExitCodeGenericFail, nil, nil),
		},
		{
			Description: "raw PCM without sample rate fails",
			Command:     test.Command("analyze", cleanPCM),
			Expected:    test.Expects(expect.ExitCodeGenericFail, nil, nil),
		},
		{
			Description: "unknown output format fails",
			Command:     test.Command("analyze", "--f0", "440", "--format", "nope", cleanWAV),
			Expected:    test.Expects(expect.ExitCodeGenericFail, nil, nil),
		},
		{
			Description: "malformed config fails",
			Command:     test.Command("analyze", "--config", brokenConfig, cleanWAV),
			Expected:    test.Expects(expect.ExitCodeGenericFail, nil, nil),
		},
		{
			Description: "clean ring-down with a known frequency",
			Command:     test.Command("analyze", "--f0", "440", cleanWAV),
			Expected: test.Expects(expect.ExitCodeSuccess, nil, expect.All(
				expectClean(),
				expectContains("440.00 Hz"),
			)),
		},
		{
			Description: "raw PCM with format flags",
			Command: test.Command(
				"analyze", "--sample-rate", "48000", "--bit-depth", "16", "--f0", "440", cleanPCM,
			),
			Expected: test.Expects(expect.ExitCodeSuccess, nil, expectClean()),
		},
		{
			Description: "frequency and bandwidth from a spectrum file",
			Command:     test.Command("analyze", "--spectrum", spectrumCSV, cleanWAV),
			Expected: test.Expects(expect.ExitCodeSuccess, nil, expect.All(
				expectClean(),
				expectContains("440.00 Hz"),
				expectContains("broad_peak"),
			)),
		},
		{
			Description: "strongly damped mode raises low_Q",
			Command:     test.Command("analyze", "--f0", "440", damped),
			Expected:    test.Expects(expect.ExitCodeSuccess, nil, expectFlagRaised("low_Q")),
		},
		{
			Description: "config thresholds apply",
			Command:     test.Command("analyze", "--config", strictConfig, "--f0", "440", cleanWAV),
			Expected:    test.Expects(expect.ExitCodeSuccess, nil, expectFlagRaised("low_Q")),
		},
		{
			Description: "json output",
			Command:     test.Command("analyze", "--f0", "440", "--format", "json", cleanWAV),
			Expected: test.Expects(expect.ExitCodeSuccess, nil, expect.All(
				expectContains("\"summary\""),
				expectContains("\"properties\""),
			)),
		},
		{
			Description: "debug output carries the fit window",
			Command:     test.Command("analyze", "--f0", "440", "--debug", "--format", "json", cleanWAV),
			Expected: test.Expects(expect.ExitCodeSuccess, nil, expect.All(
				expectContains("fit_start"),
				expectContains("r_squared"),
				expectContains("preview"),
			)),
		},
		{
			Description: "envelope output",
			Command:     test.Command("analyze", "--f0", "440", "--envelope", "--format", "json", cleanWAV),
			Expected:    test.Expects(expect.ExitCodeSuccess, nil, expectContains("envelope")),
		},
		{
			Description: "frequency from the recording itself",
			Command:     test.Command("analyze", "--spectrum-from-signal", cleanWAV),
			Expected:    test.Expects(expect.ExitCodeSuccess, nil, expectContains("properties")),
		},
	}

	testCase.Run(t)
}
