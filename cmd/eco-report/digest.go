package main

import (
	"bufio"
	"cmp"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"

	"github.com/urfave/cli/v3"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/farcloser/ecoguard"
)

func digestCommand() *cli.Command {
	return &cli.Command{
		Name:      "digest",
		Usage:     "Produce a summary digest from an ecoguard JSONL report",
		ArgsUsage: "<report.jsonl>",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "rule",
				Usage: "Show files affected by a specific rule (e.g., hardcoded-secret, long-line)",
			},
		},
		Action: func(_ context.Context, cmd *cli.Command) error {
			if cmd.NArg() != 1 {
				return errors.New("expected exactly one argument: path to report.jsonl")
			}

			return runDigest(os.Stdout, cmd.Args().First(), cmd.String("rule"))
		},
	}
}

func runDigest(w io.Writer, reportPath, ruleFilter string) error {
	results, unreadable, err := readResults(reportPath)
	if err != nil {
		return err
	}

	printDigest(w, results, unreadable)

	if ruleFilter != "" {
		printRuleDetail(w, results, ruleFilter)
	}

	return nil
}

// readResults parses every line of a report. Lines that do not hold a valid result are counted, not fatal.
func readResults(path string) ([]*ecoguard.AnalysisResult, int, error) {
	file, err := os.Open(path) //nolint:gosec // CLI tool opens user-specified report files
	if err != nil {
		return nil, 0, fmt.Errorf("opening report: %w", err)
	}
	defer file.Close()

	var (
		results    []*ecoguard.AnalysisResult
		unreadable int
	)

	scanner := bufio.NewScanner(file)

	const maxLineSize = 1024 * 1024 // 1MB
	scanner.Buffer(make([]byte, 0, maxLineSize), maxLineSize)

	for scanner.Scan() {
		if len(scanner.Bytes()) == 0 {
			continue
		}

		result, err := ecoguard.AnalysisResultFromJSON(scanner.Text())
		if err != nil {
			unreadable++

			continue
		}

		results = append(results, result)
	}

	if err := scanner.Err(); err != nil {
		return nil, 0, fmt.Errorf("reading report: %w", err)
	}

	return results, unreadable, nil
}

func worstSeverity(result *ecoguard.AnalysisResult) ecoguard.Severity {
	var worst ecoguard.Severity

	for _, issue := range result.Issues {
		worst = max(worst, issue.Severity)
	}

	return worst
}

func unanalyzable(result *ecoguard.AnalysisResult) bool {
	return len(result.IssuesByRule(ecoguard.SyntaxErrorRuleID)) > 0 ||
		len(result.IssuesByRule(ecoguard.ReadErrorRuleID)) > 0
}

func printDigest(w io.Writer, results []*ecoguard.AnalysisResult, unreadable int) {
	failed := 0
	worstDist := map[ecoguard.Severity]int{}
	issueDist := map[int]int{}
	ruleStats := map[string]*ruleBreakdown{}
	green := make([]float64, 0, len(results))
	security := make([]float64, 0, len(results))

	for _, result := range results {
		if unanalyzable(result) {
			failed++

			continue
		}

		worstDist[worstSeverity(result)]++
		issueDist[result.IssueCount()]++
		green = append(green, result.GreenScore())
		security = append(security, result.SecurityScore())

		seen := map[string]bool{}

		for _, issue := range result.Issues {
			breakdown, ok := ruleStats[issue.RuleID]
			if !ok {
				breakdown = &ruleBreakdown{RuleID: issue.RuleID}
				ruleStats[issue.RuleID] = breakdown
			}

			breakdown.add(issue.Severity)

			if !seen[issue.RuleID] {
				seen[issue.RuleID] = true
				breakdown.Files++
			}
		}
	}

	fmt.Fprintln(w, "=== EcoGuard Report Digest ===")
	fmt.Fprintln(w)
	fmt.Fprintf(w, "Total files:   %d\n", len(results)+unreadable)
	fmt.Fprintf(w, "Failed:        %d\n", failed+unreadable)
	fmt.Fprintf(w, "Analyzed:      %d\n", len(green))
	fmt.Fprintln(w)

	fmt.Fprintln(w, "--- Worst Severity ---")
	fmt.Fprintf(w, "  %-10s %d\n", "Clean:", worstDist[0])

	for _, severity := range ecoguard.Severities {
		fmt.Fprintf(w, "  %-10s %d\n", severity.String()+":", worstDist[severity])
	}

	fmt.Fprintln(w)

	fmt.Fprintln(w, "--- Issues Per File ---")

	counts := make([]int, 0, len(issueDist))
	for count := range issueDist {
		counts = append(counts, count)
	}

	slices.Sort(counts)

	for _, count := range counts {
		fmt.Fprintf(w, "  %d issues:  %d files\n", count, issueDist[count])
	}

	fmt.Fprintln(w)

	fmt.Fprintln(w, "--- Scores ---")
	printScores(w, "Green:", green)
	printScores(w, "Security:", security)
	fmt.Fprintln(w)

	fmt.Fprintln(w, "--- Issues By Rule ---")

	breakdowns := make([]*ruleBreakdown, 0, len(ruleStats))
	for _, breakdown := range ruleStats {
		breakdowns = append(breakdowns, breakdown)
	}

	slices.SortFunc(breakdowns, func(a, b *ruleBreakdown) int {
		return cmp.Or(b.Total-a.Total, cmp.Compare(a.RuleID, b.RuleID))
	})

	for _, breakdown := range breakdowns {
		fmt.Fprintf(w, "  %s (%d files)\n", breakdown.RuleID, breakdown.Files)
		fmt.Fprintf(w, "    total: %d  critical: %d  error: %d  warning: %d  info: %d\n",
			breakdown.Total,
			breakdown.counts[ecoguard.SeverityCritical],
			breakdown.counts[ecoguard.SeverityError],
			breakdown.counts[ecoguard.SeverityWarning],
			breakdown.counts[ecoguard.SeverityInfo],
		)
	}
}

func printScores(w io.Writer, label string, scores []float64) {
	if len(scores) == 0 {
		fmt.Fprintf(w, "  %-10s n/a\n", label)

		return
	}

	mean, stddev := stat.MeanStdDev(scores, nil)
	if len(scores) < 2 { //nolint:mnd // sample deviation needs two values
		stddev = 0
	}

	fmt.Fprintf(w, "  %-10s mean %.1f  min %.1f  stddev %.1f\n", label, mean, floats.Min(scores), stddev)
}

func printRuleDetail(w io.Writer, results []*ecoguard.AnalysisResult, ruleID string) {
	fmt.Fprintln(w)

	var entries []digestEntry

	for _, result := range results {
		issues := result.IssuesByRule(ruleID)
		if len(issues) == 0 {
			continue
		}

		entry := digestEntry{file: result.FilePath, issues: issues}
		for _, issue := range issues {
			entry.worst = max(entry.worst, issue.Severity)
		}

		entries = append(entries, entry)
	}

	if len(entries) == 0 {
		fmt.Fprintf(w, "No files affected by %s\n", ruleID)

		return
	}

	slices.SortStableFunc(entries, func(a, b digestEntry) int {
		return cmp.Compare(b.worst, a.worst)
	})

	fmt.Fprintf(w, "=== %s: %d files ===\n\n", ruleID, len(entries))

	for _, entry := range entries {
		fmt.Fprintf(w, "  %s\n", entry.file)

		for _, issue := range entry.issues {
			fmt.Fprintf(w, "    line %d [%s] %s\n", issue.Line, issue.Severity, issue.Message)
		}

		fmt.Fprintln(w)
	}
}
