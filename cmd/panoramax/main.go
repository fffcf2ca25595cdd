package main

import (
	"context"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"
)

const (
	flagURL        = "url"
	flagTimeout    = "timeout"
	flagConfig     = "config"
	flagToken      = "token"
	flagLogLevel   = "log-level"
	flagMaxBackoff = "max-backoff"
	flagFormat     = "format"
)

// globalFlags builds fresh flag values for every root command.
func globalFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    flagURL,
			Aliases: []string{"u"},
			Usage:   "Panoramax API base URL (defaults to api.base_url from the config file)",
			Sources: cli.EnvVars("PANORAMAX_URL"),
		},
		&cli.DurationFlag{
			Name:    flagTimeout,
			Aliases: []string{"t"},
			Usage:   "per-request timeout (e.g. 30s, 1m)",
		},
		&cli.StringFlag{
			Name:    flagConfig,
			Aliases: []string{"c"},
			Usage:   "path to the TOML config file",
			Sources: cli.EnvVars("PANORAMAX_CONFIG"),
		},
		&cli.StringFlag{
			Name:    flagToken,
			Usage:   "bearer token sent to the API host",
			Sources: cli.EnvVars("PANORAMAX_TOKEN"),
		},
		&cli.StringFlag{
			Name:  flagLogLevel,
			Usage: "debug, info, warn or error",
		},
		&cli.DurationFlag{
			Name:  flagMaxBackoff,
			Usage: "longest wait between probes of a dead endpoint",
		},
	}
}

func newFormatFlag() cli.Flag {
	return &cli.StringFlag{
		Name:  flagFormat,
		Usage: "output format: summary or stac",
		Value: formatSummary,
		Validator: func(v string) error {
			switch v {
			case formatSummary, formatSTAC:
				return nil
			default:
				return fmt.Errorf("unsupported format %q", v)
			}
		},
	}
}

func newRootCommand() *cli.Command {
	return &cli.Command{
		Name:  "panoramax",
		Usage: "Browse Panoramax street-level imagery catalogs",
		Flags: globalFlags(),
		Commands: []*cli.Command{
			newLiveCommand(),
			newCollectionsCommand(),
			newItemsCommand(),
			newImagesCommand(),
		},
	}
}

func main() {
	if err := newRootCommand().Run(context.Background(), os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
