//nolint:tagliatelle
package main

import "encoding/json"

// Record is a single line in the JSONL report file.
type Record struct {
	File       string          `json:"file,omitempty"`
	Analysis   map[string]any  `json:"analysis,omitempty"`
	Probe      json.RawMessage `json:"probe,omitempty"`
	ProbeError string          `json:"probe_error,omitempty"`
	Error      string          `json:"error,omitempty"`
	Timing     *RecordTiming   `json:"timing,omitempty"`
}

// RecordTiming captures per-file processing durations in milliseconds.
type RecordTiming struct {
	ProbeMs   float64 `json:"probe_ms"`
	DecodeMs  float64 `json:"decode_ms"`
	AnalyzeMs float64 `json:"analyze_ms"`
	TotalMs   float64 `json:"total_ms"`
}

// digestRecord holds the typed fields needed by the digest command.
type digestRecord struct {
	File     string          `json:"file,omitempty"`
	Analysis *digestAnalysis `json:"analysis,omitempty"`
	Error    string          `json:"error,omitempty"`
}

type digestAnalysis struct {
	Summary   digestSummary   `json:"summary"`
	Estimates digestEstimates `json:"estimates"`
	Issues    []digestIssue   `json:"issues"`
}

type digestSummary struct {
	IssueCount int      `json:"issue_count"`
	Flags      []string `json:"flags"`
}

// digestEstimates mirrors the estimates block; null values stay nil.
type digestEstimates struct {
	F0        *float64 `json:"f0_hz"`
	Tau       *float64 `json:"tau_s"`
	Q         *float64 `json:"q"`
	Bandwidth *float64 `json:"bandwidth_hz"`
	RSquared  *float64 `json:"r_squared"`
}

type digestIssue struct {
	Flag     string `json:"flag"`
	Detected bool   `json:"detected"`
	Summary  string `json:"summary"`
}

// flagBreakdown tracks how often each flag was evaluated and raised.
type flagBreakdown struct {
	Flag      string
	Evaluated int
	Detected  int
}
