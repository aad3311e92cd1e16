//nolint:wrapcheck
package main

import (
	"compress/gzip"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"runtime"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/farcloser/ecoguard"
	"github.com/farcloser/ecoguard/internal/audit/catalog"
	"github.com/farcloser/ecoguard/internal/config"
	"github.com/farcloser/ecoguard/internal/rulesdsl"
)

const defaultReport = "ecoguard-report.jsonl"

var (
	errNotDirectory  = errors.New("not a directory")
	errNoSourceFiles = errors.New("no .go files found")
)

type reportOptions struct {
	redact  bool
	workers int
	output  string
	config  string
}

func reportCommand() *cli.Command {
	return &cli.Command{
		Name:      "report",
		Usage:     "Scan a source tree and write an ecoguard JSONL report",
		ArgsUsage: "<folder>",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "redact-path",
				Usage: "Replace file paths in the report with stable placeholders",
			},
			&cli.IntFlag{
				Name:    "workers",
				Aliases: []string{"j"},
				Usage:   "Number of concurrent workers",
				Value:   runtime.NumCPU(),
			},
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "Report file to write (a .gz copy is written next to it)",
				Value:   defaultReport,
			},
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "ecoguard configuration file",
				Sources: cli.EnvVars("ECOGUARD_CONFIG"),
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			if cmd.NArg() != 1 {
				return errors.New("expected exactly one argument: folder path")
			}

			return runReport(ctx, cmd.Args().First(), reportOptions{
				redact:  cmd.Bool("redact-path"),
				workers: max(cmd.Int("workers"), 1),
				output:  cmd.String("output"),
				config:  cmd.String("config"),
			})
		},
	}
}

func runReport(ctx context.Context, folder string, opts reportOptions) error {
	info, err := os.Stat(folder)
	if err != nil || !info.IsDir() {
		return fmt.Errorf("%q: %w", folder, errNotDirectory)
	}

	cfg, err := config.Load(opts.config)
	if err != nil {
		return err
	}

	custom, err := rulesdsl.LoadAll(cfg.CustomRules)
	if err != nil {
		return err
	}

	scan := cfg.ScanOptions()
	scan.Workers = opts.workers
	scan.Progress = func(done, total int, path string) {
		fmt.Fprintf(os.Stderr, "[%d/%d] %s\n", done, total, path)
	}

	startTime := time.Now()

	project, err := ecoguard.AnalyzeDirectory(ctx, folder, catalog.Factory(cfg, custom), scan)
	if err != nil {
		return err
	}

	if project.TotalFiles() == 0 {
		return fmt.Errorf("%q: %w", folder, errNoSourceFiles)
	}

	if err = writeReport(opts.output, project, opts.redact); err != nil {
		return err
	}

	if err = compressFile(opts.output); err != nil {
		slog.Error("compressing report", "error", err)
	}

	elapsed := time.Since(startTime)

	fmt.Fprintf(os.Stderr, "\nDone: %d files in %s (%d issues)\n",
		project.TotalFiles(), elapsed.Truncate(time.Millisecond), project.TotalIssues())
	fmt.Fprintf(os.Stderr, "Report written to %s (and %s.gz)\n\n", opts.output, opts.output)

	return runDigest(os.Stdout, opts.output, "")
}

// writeReport writes one result per line, in file order.
func writeReport(path string, project *ecoguard.ProjectAnalysisResult, redact bool) error {
	out, err := os.Create(path) //nolint:gosec // report path is user-specified
	if err != nil {
		return fmt.Errorf("creating output file: %w", err)
	}
	defer out.Close()

	enc := json.NewEncoder(out)

	for idx, result := range project.FileResults {
		if redact {
			result = redactResult(result, idx)
		}

		if err := enc.Encode(result.ToMap()); err != nil {
			slog.Error("writing record", "file", result.FilePath, "error", err)
		}
	}

	return out.Close()
}

// redactResult returns a copy of result with its paths replaced by a placeholder
// derived from the file position.
func redactResult(result *ecoguard.AnalysisResult, idx int) *ecoguard.AnalysisResult {
	placeholder := fmt.Sprintf("file-%05d.go", idx+1)

	redacted := *result
	redacted.FilePath = placeholder
	redacted.Issues = make([]ecoguard.Issue, len(result.Issues))

	for pos, issue := range result.Issues {
		issue.FilePath = placeholder
		redacted.Issues[pos] = issue
	}

	return &redacted
}

func compressFile(path string) error {
	src, err := os.Open(path) //nolint:gosec // reading our own output file
	if err != nil {
		return err
	}
	defer src.Close()

	gzFile, err := os.Create(path + ".gz")
	if err != nil {
		return err
	}
	defer gzFile.Close()

	gzWriter := gzip.NewWriter(gzFile)

	if _, err := io.Copy(gzWriter, src); err != nil {
		return err
	}

	if err := gzWriter.Close(); err != nil {
		return err
	}

	return gzFile.Close()
}
