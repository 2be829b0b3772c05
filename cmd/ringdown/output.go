//nolint:wrapcheck
package main

import (
	"fmt"
	"os"

	"github.com/farcloser/primordium/format"
	"github.com/urfave/cli/v3"

	"github.com/farcloser/ringdown"
	"github.com/farcloser/ringdown/internal/output"
)

// flagDescription explains what each flag means for the measured mode.
//
//nolint:gochecknoglobals // configuration data, effectively const
var flagDescription = map[ringdown.Flag]string{
	ringdown.FlagLowQ:          "strongly damped mode",
	ringdown.FlagBroadPeak:     "spectral peak wider than expected",
	ringdown.FlagUnstableDecay: "envelope does not follow a single exponential",
}

func outputResult(source string, result *ringdown.Result, cmd *cli.Command) error {
	formatter, err := format.GetFormatter(cmd.String("format"))
	if err != nil {
		return err
	}

	var meta map[string]any
	if cmd.Bool("debug") {
		meta = output.ResultToMap(result)
		meta["preview"] = output.PreviewToMap(result)
	} else {
		meta = buildFriendlyOutput(result)
	}

	if cmd.Bool("envelope") {
		meta["envelope"] = output.EnvelopeToMap(result)
	}

	data := &format.Data{
		Object: source,
		Meta:   meta,
	}

	return formatter.PrintAll([]*format.Data{data}, os.Stdout)
}

// buildFriendlyOutput creates a user-friendly summary of the analysis results.
func buildFriendlyOutput(result *ringdown.Result) map[string]any {
	meta := map[string]any{
		"summary": fmt.Sprintf("%d issues found (flags: %s)", result.IssueCount, result.Flags),
	}

	if len(result.Issues) > 0 {
		lines := make([]any, 0, len(result.Issues))

		for _, issue := range result.Issues {
			marker := "  "
			if issue.Detected {
				marker = "!!"
			}

			lines = append(lines, fmt.Sprintf("%s %s: %s (%s)",
				marker, issue.Flag, issue.Summary, flagDescription[issue.Flag]))
		}

		meta["issues"] = lines
	}

	meta["properties"] = buildProperties(result)

	return meta
}

func buildProperties(result *ringdown.Result) map[string]any {
	props := map[string]any{
		"f0":        measure(result.F0, "%.2f Hz"),
		"tau":       measure(result.Tau, "%.4f s"),
		"q":         measure(result.Q, "%.1f"),
		"bandwidth": measure(result.Bandwidth, "%.3f Hz"),
		"r_squared": measure(result.RSquared, "%.4f"),
	}

	if tau, ok := result.Tau.Get(); ok {
		// Time for the amplitude to fall by 60 dB.
		props["t60"] = fmt.Sprintf("%.3f s", tau*t60Factor)
	}

	props["fit"] = fmt.Sprintf("%d points from %.1f ms",
		result.FitPoints, float64(result.FitStart)*result.Dt*1000)

	return props
}

// t60Factor is ln(1000): amplitude decays by 60 dB over tau*ln(1000).
const t60Factor = 6.907755278982137

func measure(value ringdown.Optional, layout string) string {
	v, ok := value.Get()
	if !ok {
		return "n/a"
	}

	return fmt.Sprintf(layout, v)
}
