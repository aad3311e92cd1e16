//nolint:wrapcheck
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"runtime"
	"time"

	"github.com/briandowns/spinner"
	"github.com/fatih/color"
	"github.com/urfave/cli/v3"

	"github.com/farcloser/ecoguard"
	"github.com/farcloser/ecoguard/internal/audit/catalog"
	"github.com/farcloser/ecoguard/internal/config"
	"github.com/farcloser/ecoguard/internal/output"
	"github.com/farcloser/ecoguard/internal/rulesdsl"
	"github.com/farcloser/ecoguard/internal/store"
)

var (
	errInvalidArgCount = errors.New("expected exactly one argument: file or directory path")
	errIssuesFound     = errors.New("issues at error severity or above")
)

func analyzeCommand() *cli.Command {
	return &cli.Command{
		Name:      "analyze",
		Usage:     "Analyze a Go file or source tree",
		ArgsUsage: "<file | directory>",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "format",
				Aliases: []string{"f"},
				Usage:   "Output format: table, text, json",
				Value:   "table",
				Sources: cli.EnvVars("ECOGUARD_FORMAT"),
			},
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "Write results to this file instead of stdout",
				Sources: cli.EnvVars("ECOGUARD_OUTPUT"),
			},
			&cli.StringFlag{
				Name:    "severity",
				Aliases: []string{"s"},
				Usage:   "Minimum severity to display: debug, info, warning, error, critical",
				Value:   "info",
				Sources: cli.EnvVars("ECOGUARD_MIN_SEVERITY"),
			},
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "YAML configuration file",
				Sources: cli.EnvVars("ECOGUARD_CONFIG"),
			},
			&cli.IntFlag{
				Name:    "workers",
				Aliases: []string{"j"},
				Usage:   "Number of files analyzed concurrently",
				Value:   runtime.NumCPU(),
				Sources: cli.EnvVars("ECOGUARD_WORKERS"),
			},
			&cli.StringSliceFlag{
				Name:  "exclude",
				Usage: "Glob of paths to skip (repeatable)",
			},
			&cli.StringSliceFlag{
				Name:  "rules",
				Usage: "YAML rule pack to load (repeatable)",
			},
			&cli.BoolFlag{Name: "no-quality", Usage: "Disable the quality analyzer"},
			&cli.BoolFlag{Name: "no-security", Usage: "Disable the security analyzer"},
			&cli.BoolFlag{Name: "no-green", Usage: "Disable the green analyzer"},
			&cli.BoolFlag{Name: "no-ai-code", Usage: "Disable the ai_code analyzer"},
			&cli.StringFlag{
				Name:    "db",
				Usage:   "Record the run in this SQLite history database",
				Sources: cli.EnvVars("ECOGUARD_DB"),
			},
			&cli.BoolFlag{
				Name:  "progress",
				Usage: "Show a spinner while scanning directories",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			if cmd.NArg() != 1 {
				return fmt.Errorf("%w: got %d", errInvalidArgCount, cmd.NArg())
			}

			cfg, err := resolveConfig(cmd)
			if err != nil {
				return err
			}

			custom, err := rulesdsl.LoadAll(cfg.CustomRules)
			if err != nil {
				return err
			}

			for _, id := range catalog.UnknownRules(cfg, custom) {
				slog.Warn("configured rule does not exist", "rule", id)
			}

			startedAt := time.Now()

			project, single, err := runAnalysis(ctx, cmd.Args().First(), cfg, custom, cmd.Bool("progress"))
			if err != nil {
				return err
			}

			if err = render(cfg, project, single); err != nil {
				return err
			}

			if dbPath := cmd.String("db"); dbPath != "" {
				if err = record(ctx, dbPath, startedAt, project); err != nil {
					return err
				}
			}

			if project.HasErrors() {
				return errIssuesFound
			}

			return nil
		},
	}
}

// resolveConfig layers explicitly set flags over the configuration file over the defaults.
func resolveConfig(cmd *cli.Command) (ecoguard.Config, error) {
	cfg, err := config.Load(cmd.String("config"))
	if err != nil {
		return cfg, err
	}

	if cmd.IsSet("format") {
		if cfg.OutputFormat, err = ecoguard.ParseFormat(cmd.String("format")); err != nil {
			return cfg, err
		}
	}

	if cmd.IsSet("severity") {
		if cfg.MinSeverity, err = ecoguard.ParseSeverity(cmd.String("severity")); err != nil {
			return cfg, err
		}
	}

	if cmd.IsSet("output") {
		cfg.OutputFile = cmd.String("output")
	}

	if cmd.IsSet("workers") {
		cfg.Workers = cmd.Int("workers")
	}

	cfg.Exclude = append(cfg.Exclude, cmd.StringSlice("exclude")...)
	cfg.CustomRules = append(cfg.CustomRules, cmd.StringSlice("rules")...)

	switches := map[string]*bool{
		"no-quality":  &cfg.EnableQuality,
		"no-security": &cfg.EnableSecurity,
		"no-green":    &cfg.EnableGreen,
		"no-ai-code":  &cfg.EnableAICode,
	}

	for name, enabled := range switches {
		if cmd.Bool(name) {
			*enabled = false
		}
	}

	return cfg, cfg.Validate()
}

// runAnalysis analyzes a file or a tree. A single file is still returned as a one-file project.
func runAnalysis(
	ctx context.Context,
	target string,
	cfg ecoguard.Config,
	custom []rulesdsl.Definition,
	progress bool,
) (*ecoguard.ProjectAnalysisResult, *ecoguard.AnalysisResult, error) {
	info, err := os.Stat(target)
	if err != nil {
		return nil, nil, fmt.Errorf("cannot access %s: %w", target, err)
	}

	factory := catalog.Factory(cfg, custom)

	if !info.IsDir() {
		result, err := ecoguard.AnalyzeFile(target, factory)
		if err != nil {
			return nil, nil, err
		}

		project := ecoguard.NewProjectAnalysisResult(target)
		project.Add(result)

		return project, result, nil
	}

	opts := cfg.ScanOptions()

	if progress {
		spin := spinner.New(spinner.CharSets[11], 100*time.Millisecond, spinner.WithWriter(os.Stderr))
		spin.Suffix = " Discovering files..."
		spin.Start()

		defer spin.Stop()

		// Progress is called from the scan workers.
		opts.Progress = func(done, total int, _ string) {
			spin.Lock()
			spin.Suffix = fmt.Sprintf(" Analyzing files [%d/%d]", done, total)
			spin.Unlock()
		}
	}

	project, err := ecoguard.AnalyzeDirectory(ctx, target, factory, opts)
	if err != nil {
		return nil, nil, err
	}

	return project, nil, nil
}

func render(cfg ecoguard.Config, project *ecoguard.ProjectAnalysisResult, single *ecoguard.AnalysisResult) error {
	var (
		writer io.Writer = os.Stdout
		file   *os.File
	)

	if cfg.OutputFile != "" {
		var err error

		file, err = os.Create(cfg.OutputFile)
		if err != nil {
			return fmt.Errorf("creating output file: %w", err)
		}
		defer file.Close()

		writer = file
	}

	opts := output.Options{
		Format:      cfg.OutputFormat,
		MinSeverity: cfg.MinSeverity,
		Color:       file == nil && !color.NoColor,
	}

	var err error
	if single != nil {
		err = output.WriteResult(writer, single, opts)
	} else {
		err = output.WriteProject(writer, project, opts)
	}

	if err != nil {
		return err
	}

	if file != nil {
		if err = file.Close(); err != nil {
			return err
		}

		fmt.Fprintf(os.Stderr, "Results saved to %s\n", cfg.OutputFile)
	}

	return nil
}

func record(ctx context.Context, path string, startedAt time.Time, project *ecoguard.ProjectAnalysisResult) error {
	db, err := store.Open(ctx, path)
	if err != nil {
		return err
	}
	defer db.Close()

	id := store.NewRunID()
	if err = db.SaveRun(ctx, id, startedAt, project); err != nil {
		return err
	}

	slog.Info("run recorded", "id", id, "db", path)

	return nil
}
