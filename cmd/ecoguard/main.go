package main

import (
	"context"
	"errors"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v3"

	"github.com/farcloser/ecoguard/internal/logging"
	"github.com/farcloser/ecoguard/version"
)

func main() {
	_ = godotenv.Load()

	ctx := context.Background()

	appl := &cli.Command{
		Name:    version.Name(),
		Usage:   "Static analysis for Go code quality, security and energy efficiency",
		Version: version.Version() + " " + version.Commit(),
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-format",
				Usage:   "Log format on stderr: text, json",
				Value:   "text",
				Sources: cli.EnvVars("ECOGUARD_LOG_FORMAT"),
			},
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "Log level: debug, info, warn, error",
				Value:   "warn",
				Sources: cli.EnvVars("ECOGUARD_LOG_LEVEL"),
			},
		},
		Before: func(ctx context.Context, cmd *cli.Command) (context.Context, error) {
			_, err := logging.Init(cmd.String("log-format"), cmd.String("log-level"))

			return ctx, err
		},
		Commands: []*cli.Command{
			analyzeCommand(),
			rulesCommand(),
			historyCommand(),
			versionCommand(),
		},
	}

	if err := appl.Run(ctx, os.Args); err != nil {
		// Findings were already reported; only the exit code is left to set.
		if !errors.Is(err, errIssuesFound) {
			slog.Error("failed to run", "error", err)
		}

		os.Exit(1)
	}
}
