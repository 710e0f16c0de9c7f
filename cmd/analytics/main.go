package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/rxtech-lab/argo-analytics/internal/report"
	"github.com/rxtech-lab/argo-analytics/internal/version"
	"github.com/urfave/cli/v3"
)

var dateLayouts = cli.TimestampConfig{
	Layouts: []string{"2006-01-02", "2006-01-02T15:04:05Z07:00"},
}

// keyFlags select the balance cache key.
func keyFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:  "key-account",
			Usage: "Restrict the key to one account",
		},
		&cli.StringFlag{
			Name:  "symbol",
			Usage: "Only count trades on this symbol",
		},
		&cli.StringFlag{
			Name:  "direction",
			Usage: "Only count LONG or SHORT trades",
		},
		&cli.StringFlag{
			Name:  "asset-type",
			Usage: "Only count trades of this asset type (STOCK, CRYPTO, FOREX, INDICES)",
		},
		&cli.IntFlag{
			Name:  "hour",
			Usage: "Only count trades opened in this UTC hour (0-23)",
		},
		&cli.IntFlag{
			Name:  "weekday",
			Usage: "Only count trades on this weekday (0=Monday ... 6=Sunday)",
		},
	}
}

func newCommand() *cli.Command {
	return &cli.Command{
		Name:    "analytics",
		Usage:   "Compute performance analytics over a trade ledger",
		Version: version.GetVersion(),
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to the YAML config file",
			},
			&cli.StringFlag{
				Name:  "env-file",
				Usage: "Dotenv file loaded before the environment is read",
				Value: ".env",
			},
			&cli.StringFlag{
				Name:    "ledger",
				Aliases: []string{"l"},
				Usage:   "Ledger file (.csv, or .parquet read through DuckDB)",
			},
			&cli.StringFlag{
				Name:  "log-level",
				Usage: "Log level (debug, info, warn, error)",
			},
			&cli.IntFlag{
				Name:  "window-days",
				Usage: "Rolling window width in calendar days",
			},
			&cli.StringFlag{
				Name:  "cache-dsn",
				Usage: "Enable the balance cache at this DSN",
			},
			&cli.TimestampFlag{
				Name:   "start",
				Usage:  "Ignore ledger rows before `YYYY-MM-DD`",
				Config: dateLayouts,
			},
			&cli.TimestampFlag{
				Name:   "end",
				Usage:  "Ignore ledger rows after `YYYY-MM-DD`",
				Config: dateLayouts,
			},
		},
		Commands: []*cli.Command{
			{
				Name:  "compute",
				Usage: "Compute metrics and write them to a report folder",
				Flags: []cli.Flag{
					&cli.StringSliceFlag{
						Name:    "metric",
						Aliases: []string{"m"},
						Usage:   "Metric to compute, repeatable. Defaults to every metric",
					},
					&cli.StringSliceFlag{
						Name:    "account",
						Aliases: []string{"a"},
						Usage:   "Restrict the ledger to these accounts",
					},
					&cli.BoolFlag{
						Name:  "ungrouped",
						Usage: "Reduce every group into a single portfolio series",
					},
					&cli.BoolFlag{
						Name:  "by-account",
						Usage: "Group results by account",
						Value: true,
					},
					&cli.BoolFlag{
						Name:  "by-symbol",
						Usage: "Group results by symbol",
					},
					&cli.StringFlag{
						Name:    "out",
						Aliases: []string{"o"},
						Usage:   "Report output directory",
						Value:   "reports",
					},
					&cli.StringFlag{
						Name:    "format",
						Aliases: []string{"f"},
						Usage:   fmt.Sprintf("Table format (%s, %s)", report.FormatParquet, report.FormatCSV),
						Value:   string(report.FormatParquet),
					},
					&cli.BoolFlag{
						Name:  "summary",
						Usage: "Also write the performance summary",
					},
					&cli.BoolFlag{
						Name:    "quiet",
						Aliases: []string{"q"},
						Usage:   "Hide the progress bar",
					},
				},
				Action: computeAction,
			},
			{
				Name:  "summary",
				Usage: "Print the performance summary as YAML",
				Flags: []cli.Flag{
					&cli.StringSliceFlag{
						Name:    "account",
						Aliases: []string{"a"},
						Usage:   "Restrict the ledger to these accounts",
					},
					&cli.BoolFlag{
						Name:  "per-account",
						Usage: "One summary per account instead of a portfolio summary",
					},
					&cli.StringFlag{
						Name:    "out",
						Aliases: []string{"o"},
						Usage:   "Write the summary to this file instead of stdout",
					},
				},
				Action: summaryAction,
			},
			{
				Name:   "balance",
				Usage:  "Print the cached balance curve for a key",
				Flags:  keyFlags(),
				Action: balanceAction,
			},
			{
				Name:  "cache",
				Usage: "Manage the balance cache",
				Commands: []*cli.Command{
					{
						Name:  "invalidate",
						Usage: "Delete cached balances matching the key",
						Flags: append(keyFlags(), &cli.BoolFlag{
							Name:  "exact",
							Usage: "Unset key flags must be absent instead of matching anything",
						}),
						Action: invalidateAction,
					},
				},
			},
			{
				Name:  "serve",
				Usage: "Serve the HTTP and websocket API",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "addr",
						Usage: "Listen address, overrides server.addr",
					},
				},
				Action: serveAction,
			},
			{
				Name:   "metrics",
				Usage:  "List the metric names",
				Action: metricsAction,
			},
			{
				Name:   "schema",
				Usage:  "Print the JSON schema of the config file",
				Action: schemaAction,
			},
		},
	}
}

func main() {
	if err := newCommand().Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}
