package main

import (
	"context"
	"os"

	cli "github.com/jawher/mow.cli"

	"salewatch/pkg/compare"
	"salewatch/pkg/config"
	"salewatch/pkg/logx"
	"salewatch/pkg/report"
	"salewatch/pkg/snapshot"
)

func cmdCompare(cfg *config.Config) func(*cli.Cmd) {
	return func(cmd *cli.Cmd) {
		cmd.Spec = "[OLD NEW]"

		var (
			oldArg = cmd.StringArg("OLD", "", "previous snapshot CSV (default: auto-discover)")
			newArg = cmd.StringArg("NEW", "", "current snapshot CSV (default: auto-discover)")
		)

		cmd.Action = func() {
			if err := runCompare(*cfg, *oldArg, *newArg); err != nil {
				logx.Error().Err(err).Msg("compare failed")
				cli.Exit(1)
			}
		}
	}
}

func runCompare(cfg config.Config, oldPath, newPath string) error {
	store := snapshot.Store{DataDir: cfg.DataDir, ArchiveDir: cfg.ArchiveDir}

	if oldPath == "" || newPath == "" {
		var err error
		oldPath, newPath, err = store.NewestPair()
		if err != nil {
			return err
		}
	}

	previous, err := snapshot.LoadSnapshot(oldPath)
	if err != nil {
		return err
	}
	current, err := snapshot.LoadSnapshot(newPath)
	if err != nil {
		return err
	}

	logx.Info().Str("old", oldPath).Str("new", newPath).Msg("comparing snapshots")
	deltas := compare.Compare(current, previous)
	return report.ConsoleNotifier{Out: os.Stdout}.Notify(context.Background(), deltas)
}
