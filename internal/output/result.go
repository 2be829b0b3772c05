// Package output provides shared result serialization for ringdown JSON output.
package output

import (
	"github.com/farcloser/ringdown"
)

// ResultToMap converts an analysis result into the canonical map structure
// used for JSON and JSONL serialization. Absent estimates map to nil.
func ResultToMap(result *ringdown.Result) map[string]any {
	meta := map[string]any{
		"summary": map[string]any{
			"issue_count": result.IssueCount,
			"flags":       result.Flags.Names(),
		},
		"estimates": EstimatesToMap(result),
	}

	issues := make([]any, 0, len(result.Issues))
	for _, issue := range result.Issues {
		issues = append(issues, map[string]any{
			"flag":     issue.Flag.String(),
			"detected": issue.Detected,
			"summary":  issue.Summary,
		})
	}

	meta["issues"] = issues
	meta["fit"] = FitToMap(result)
	meta["config"] = map[string]any{
		"smooth_window_ms": result.Config.SmoothWindowMs,
		"attack_skip_ms":   result.Config.AttackSkipMs,
		"low_q":            result.Thresholds.LowQ,
		"broad_peak_ratio": result.Thresholds.BroadPeakRatio,
		"min_r_squared":    result.Thresholds.MinRSquared,
	}

	return meta
}

// EstimatesToMap converts the ring-down estimates to a map.
func EstimatesToMap(result *ringdown.Result) map[string]any {
	return map[string]any{
		"f0_hz":        optional(result.F0),
		"tau_s":        optional(result.Tau),
		"q":            optional(result.Q),
		"bandwidth_hz": optional(result.Bandwidth),
		"r_squared":    optional(result.RSquared),
		"slope":        optional(result.Slope),
	}
}

// FitToMap converts the decay fit window to a map.
func FitToMap(result *ringdown.Result) map[string]any {
	return map[string]any{
		"peak_index":  result.PeakIndex,
		"fit_start":   result.FitStart,
		"fit_points":  result.FitPoints,
		"intercept":   optional(result.Intercept),
		"sample_rate": result.SampleRate,
		"dt":          result.Dt,
		"samples":     len(result.Envelope),
	}
}

// PreviewToMap converts the downsampled envelope to a map.
func PreviewToMap(result *ringdown.Result) map[string]any {
	return map[string]any{
		"stride":   result.PreviewStride,
		"time":     result.PreviewTime,
		"envelope": result.Preview,
	}
}

// EnvelopeToMap converts the full-resolution envelope to a map.
func EnvelopeToMap(result *ringdown.Result) map[string]any {
	return map[string]any{
		"dt":       result.Dt,
		"envelope": result.Envelope,
	}
}

// optional maps absent and non-finite values to nil, matching ringdown.Optional's JSON encoding.
func optional(value ringdown.Optional) any {
	if v, ok := value.Finite(); ok {
		return v
	}

	return nil
}
