package main

import (
	"os"

	cli "github.com/jawher/mow.cli"

	"salewatch/pkg/config"
	"salewatch/pkg/logx"
	"salewatch/pkg/report"
	"salewatch/pkg/snapshot"
)

func cmdSummary(cfg *config.Config) func(*cli.Cmd) {
	return func(cmd *cli.Cmd) {
		cmd.Spec = "[FILE] [--top] [--flag-high]"

		var (
			fileArg  = cmd.StringArg("FILE", "", "snapshot CSV (default: newest)")
			topN     = cmd.IntOpt("top", 10, "show the top N discounts")
			flagHigh = cmd.BoolOpt("flag-high", false, "flag discounts of 60% or more")
		)

		cmd.Action = func() {
			if err := runSummary(*cfg, *fileArg, *topN, *flagHigh); err != nil {
				logx.Error().Err(err).Msg("summary failed")
				cli.Exit(1)
			}
		}
	}
}

func runSummary(cfg config.Config, path string, topN int, flagHigh bool) error {
	store := snapshot.Store{DataDir: cfg.DataDir, ArchiveDir: cfg.ArchiveDir}

	if path == "" {
		var err error
		path, err = store.LatestPath()
		if err != nil {
			return err
		}
	}

	snap, err := snapshot.LoadSnapshot(path)
	if err != nil {
		return err
	}

	return report.WriteDiscountSummary(os.Stdout, path, report.Summarize(snap, topN), flagHigh)
}
