//nolint:wrapcheck
package main

import (
	"context"
	"os"

	"github.com/farcloser/primordium/format"
	"github.com/urfave/cli/v3"

	"github.com/farcloser/ecoguard/internal/audit/catalog"
	"github.com/farcloser/ecoguard/internal/config"
	"github.com/farcloser/ecoguard/internal/output"
	"github.com/farcloser/ecoguard/internal/rulesdsl"
)

func rulesCommand() *cli.Command {
	return &cli.Command{
		Name:  "rules",
		Usage: "List the available rules and their configured state",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "format",
				Aliases: []string{"f"},
				Usage:   "Output format: console, json, markdown",
				Value:   "console",
			},
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "YAML configuration file",
				Sources: cli.EnvVars("ECOGUARD_CONFIG"),
			},
			&cli.StringSliceFlag{
				Name:  "rules",
				Usage: "YAML rule pack to load (repeatable)",
			},
		},
		Action: func(_ context.Context, cmd *cli.Command) error {
			formatter, err := format.GetFormatter(cmd.String("format"))
			if err != nil {
				return err
			}

			cfg, err := config.Load(cmd.String("config"))
			if err != nil {
				return err
			}

			custom, err := rulesdsl.LoadAll(append(cfg.CustomRules, cmd.StringSlice("rules")...))
			if err != nil {
				return err
			}

			return formatter.PrintAll(output.RulesData(catalog.Entries(cfg, custom)), os.Stdout)
		},
	}
}
