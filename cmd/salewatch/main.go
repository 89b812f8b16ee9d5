package main

import (
	"os"

	cli "github.com/jawher/mow.cli"

	"salewatch/pkg/config"
	"salewatch/pkg/logx"
)

func main() {
	app := cli.App("salewatch", "Track retail sale prices across scrape runs")
	app.Spec = "[-c] [-v]"

	var (
		configDir = app.StringOpt("c config", ".", "directory containing config.yaml")
		verbose   = app.BoolOpt("v verbose", false, "enable debug logging")
	)

	var cfg config.Config
	app.Before = func() {
		logx.Init(*verbose)

		var err error
		cfg, err = config.LoadConfig(*configDir)
		if err != nil {
			logx.Error().Err(err).Msg("cannot load config")
			cli.Exit(1)
		}
	}

	app.Command("scrape", "fetch sale pages and persist a snapshot", cmdScrape(&cfg))
	app.Command("compare", "diff two snapshots and print price deltas", cmdCompare(&cfg))
	app.Command("summary", "print the discount summary for a snapshot", cmdSummary(&cfg))

	if err := app.Run(os.Args); err != nil {
		logx.Error().Err(err).Msg("run failed")
		os.Exit(1)
	}
}
