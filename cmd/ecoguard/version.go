package main

import (
	"context"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/farcloser/ecoguard/version"
)

func versionCommand() *cli.Command {
	return &cli.Command{
		Name:  "version",
		Usage: "Print version information",
		Action: func(_ context.Context, _ *cli.Command) error {
			_, err := fmt.Fprintf(os.Stdout, "%s %s (%s)\n", version.Name(), version.Version(), version.Commit())

			return err //nolint:wrapcheck // plain writer error
		},
	}
}
