package main

import (
	"bufio"
	"cmp"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"slices"

	"github.com/urfave/cli/v3"
	"gonum.org/v1/gonum/stat"

	"github.com/farcloser/ringdown"
)

var errDigestArgs = errors.New("expected exactly one argument: path to report.jsonl")

func digestCommand() *cli.Command {
	return &cli.Command{
		Name:      "digest",
		Usage:     "Produce a summary digest from a ringdown JSONL report",
		ArgsUsage: "<report.jsonl>",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "flag",
				Usage: "Show recordings raising a specific flag (low_Q, broad_peak, unstable_decay)",
			},
		},
		Action: func(_ context.Context, cmd *cli.Command) error {
			if cmd.NArg() != 1 {
				return errDigestArgs
			}

			return runDigest(cmd.Args().First(), cmd.String("flag"))
		},
	}
}

func runDigest(reportPath, flagFilter string) error {
	if flagFilter != "" {
		flag, err := ringdown.ParseFlag(flagFilter)
		if err != nil {
			return err
		}

		flagFilter = flag.String()
	}

	records, err := readRecords(reportPath)
	if err != nil {
		return err
	}

	printDigest(records)

	if flagFilter != "" {
		printFlagDetail(records, flagFilter)
	}

	return nil
}

func readRecords(path string) ([]digestRecord, error) {
	file, err := os.Open(path) //nolint:gosec // CLI tool opens user-specified report files
	if err != nil {
		return nil, fmt.Errorf("opening report: %w", err)
	}
	defer file.Close()

	var records []digestRecord

	scanner := bufio.NewScanner(file)

	const maxLineSize = 1024 * 1024 // 1MB
	scanner.Buffer(make([]byte, 0, maxLineSize), maxLineSize)

	for scanner.Scan() {
		var rec digestRecord
		if err := json.Unmarshal(scanner.Bytes(), &rec); err != nil {
			records = append(records, digestRecord{Error: "parse error"})

			continue
		}

		records = append(records, rec)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading report: %w", err)
	}

	return records, nil
}

func printDigest(records []digestRecord) {
	total := len(records)
	failed := 0
	clean := 0
	issueDist := map[int]int{}
	flagStats := map[string]*flagBreakdown{}

	var qValues, tauValues, f0Values []float64

	for _, rec := range records {
		if rec.Error != "" || rec.Analysis == nil {
			failed++

			continue
		}

		if len(rec.Analysis.Summary.Flags) == 0 {
			clean++
		}

		issueDist[len(rec.Analysis.Summary.Flags)]++

		for _, issue := range rec.Analysis.Issues {
			breakdown, ok := flagStats[issue.Flag]
			if !ok {
				breakdown = &flagBreakdown{Flag: issue.Flag}
				flagStats[issue.Flag] = breakdown
			}

			breakdown.Evaluated++

			if issue.Detected {
				breakdown.Detected++
			}
		}

		est := rec.Analysis.Estimates
		qValues = appendPresent(qValues, est.Q)
		tauValues = appendPresent(tauValues, est.Tau)
		f0Values = appendPresent(f0Values, est.F0)
	}

	fmt.Println("=== Ringdown Report Digest ===")
	fmt.Println()
	fmt.Printf("Total recordings:  %d\n", total)
	fmt.Printf("Failed:            %d\n", failed)
	fmt.Printf("Analyzed:          %d\n", total-failed)
	fmt.Printf("Clean:             %d\n", clean)
	fmt.Println()

	fmt.Println("--- Flags Per Recording ---")

	counts := make([]int, 0, len(issueDist))
	for k := range issueDist {
		counts = append(counts, k)
	}

	slices.Sort(counts)

	for _, count := range counts {
		fmt.Printf("  %d flags:  %d recordings\n", count, issueDist[count])
	}

	fmt.Println()

	fmt.Println("--- Flags By Type ---")

	breakdowns := make([]*flagBreakdown, 0, len(flagStats))
	for _, bd := range flagStats {
		breakdowns = append(breakdowns, bd)
	}

	slices.SortFunc(breakdowns, func(a, b *flagBreakdown) int {
		if a.Detected != b.Detected {
			return b.Detected - a.Detected
		}

		return cmp.Compare(a.Flag, b.Flag)
	})

	for _, bd := range breakdowns {
		fmt.Printf("  %s\n", bd.Flag)
		fmt.Printf("    detected: %d  evaluated: %d\n", bd.Detected, bd.Evaluated)
	}

	fmt.Println()

	fmt.Println("--- Estimates ---")
	printDistribution("f0 (Hz)", f0Values)
	printDistribution("tau (s)", tauValues)
	printDistribution("Q", qValues)
}

func appendPresent(values []float64, value *float64) []float64 {
	if value == nil {
		return values
	}

	return append(values, *value)
}

func printDistribution(label string, values []float64) {
	if len(values) == 0 {
		fmt.Printf("  %-8s n/a\n", label)

		return
	}

	sorted := slices.Clone(values)
	slices.Sort(sorted)

	fmt.Printf("  %-8s n=%d  min=%.4g  p25=%.4g  median=%.4g  p75=%.4g  max=%.4g\n",
		label,
		len(sorted),
		sorted[0],
		stat.Quantile(0.25, stat.Empirical, sorted, nil),
		stat.Quantile(0.5, stat.Empirical, sorted, nil),
		stat.Quantile(0.75, stat.Empirical, sorted, nil),
		sorted[len(sorted)-1],
	)
}

type flagEntry struct {
	file    string
	summary string
	q       *float64
	tau     *float64
}

func printFlagDetail(records []digestRecord, flag string) {
	fmt.Println()

	var entries []flagEntry

	for _, rec := range records {
		if rec.Error != "" || rec.Analysis == nil {
			continue
		}

		for _, issue := range rec.Analysis.Issues {
			if !issue.Detected || issue.Flag != flag {
				continue
			}

			entry := flagEntry{
				file:    rec.File,
				summary: issue.Summary,
				q:       rec.Analysis.Estimates.Q,
				tau:     rec.Analysis.Estimates.Tau,
			}

			if entry.file == "" {
				entry.file = "(redacted)"
			}

			entries = append(entries, entry)
		}
	}

	if len(entries) == 0 {
		fmt.Printf("No recordings raise %s\n", flag)

		return
	}

	fmt.Printf("=== %s: %d recordings ===\n\n", flag, len(entries))

	for _, entry := range entries {
		fmt.Printf("  %s\n", entry.file)
		fmt.Printf("    Q: %s  tau: %s\n", formatEstimate(entry.q), formatEstimate(entry.tau))
		fmt.Printf("    %s\n", entry.summary)
		fmt.Println()
	}
}

func formatEstimate(value *float64) string {
	if value == nil {
		return "n/a"
	}

	return fmt.Sprintf("%.4g", *value)
}
