//nolint:wrapcheck
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/farcloser/primordium/format"
	"github.com/urfave/cli/v3"

	"github.com/farcloser/ecoguard/internal/output"
	"github.com/farcloser/ecoguard/internal/store"
)

const defaultHistoryLimit = 20

func historyCommand() *cli.Command {
	return &cli.Command{
		Name:  "history",
		Usage: "List runs recorded with analyze --db",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "db",
				Usage:    "SQLite history database",
				Sources:  cli.EnvVars("ECOGUARD_DB"),
				Required: true,
			},
			&cli.IntFlag{
				Name:    "limit",
				Aliases: []string{"n"},
				Usage:   "Number of runs to list, most recent first (0 for all)",
				Value:   defaultHistoryLimit,
			},
			&cli.StringFlag{
				Name:  "run",
				Usage: "Show the per-rule issue counts of one run",
			},
			&cli.StringFlag{
				Name:    "format",
				Aliases: []string{"f"},
				Usage:   "Output format: console, json, markdown",
				Value:   "console",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			formatter, err := format.GetFormatter(cmd.String("format"))
			if err != nil {
				return err
			}

			db, err := store.Open(ctx, cmd.String("db"))
			if err != nil {
				return err
			}
			defer db.Close()

			if runID := cmd.String("run"); runID != "" {
				project, err := db.LoadRun(ctx, runID)
				if err != nil {
					return err
				}

				counts, err := db.RuleCounts(ctx, runID)
				if err != nil {
					return err
				}

				data := make([]*format.Data, 0, len(counts))
				for _, count := range counts {
					data = append(data, &format.Data{
						Object: count.RuleID,
						Meta:   map[string]any{"severity": count.Severity, "issues": count.Count},
					})
				}

				fmt.Fprintf(os.Stderr, "run %s: %s, %d files, %d issues\n",
					runID, project.ProjectPath, project.TotalFiles(), project.TotalIssues())

				return formatter.PrintAll(data, os.Stdout)
			}

			runs, err := db.ListRuns(ctx, cmd.Int("limit"))
			if err != nil {
				return err
			}

			return formatter.PrintAll(output.HistoryData(runs), os.Stdout)
		},
	}
}
