package tests_test

import (
	"path/filepath"
	"testing"

	"github.com/containerd/nerdctl/mod/tigron/expect"
	"github.com/containerd/nerdctl/mod/tigron/test"

	"github.com/farcloser/ringdown/tests/testutils"
)

func TestReportCLI(t *testing.T) {
	collection := t.TempDir()
	testutils.WriteWAV(t, collection, "a.wav", testutils.RingDown(440, 0.3, 1), 16)
	testutils.WriteWAV(t, collection, "b.wav", testutils.RingDown(220, 0.2, 1), 16)
	testutils.WriteFile(t, collection, "notes.txt", "not audio")

	empty := t.TempDir()
	reportPath := filepath.Join(t.TempDir(), "report.jsonl")
	config := testutils.WriteFile(t, t.TempDir(), "config.yaml", "f0_hint: 440\n")

	testCase := testutils.SetupReport()

	testCase.SubTests = []*test.Case{
		{
			Description: "report without arguments fails",
			Command:     test.Command("report"),
			Expected:    test.Expects(expect.ExitCodeGenericFail, nil, nil),
		},
		{
			Description: "report on a folder without recordings fails",
			Command:     test.Command("report", "-o", filepath.Join(empty, "out.jsonl"), empty),
			Expected:    test.Expects(expect.ExitCodeGenericFail, nil, nil),
		},
		{
			Description: "digest of a missing report fails",
			Command:     test.Command("digest", "/nonexistent/report.jsonl"),
			Expected:    test.Expects(expect.ExitCodeGenericFail, nil, nil),
		},
		{
			Description: "report analyzes every recording and prints the digest",
			Command:     test.Command("report", "--config", config, "-j", "2", "-o", reportPath, collection),
			Expected: test.Expects(expect.ExitCodeSuccess, nil, expect.All(
				expectContains("=== Ringdown Report Digest ==="),
				expectContains("Analyzed:          2"),
				expectContains("Q "),
			)),
		},
	}

	testCase.Run(t)
}
