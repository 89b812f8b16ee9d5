package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	cli "github.com/jawher/mow.cli"

	"salewatch/pkg/compare"
	"salewatch/pkg/config"
	"salewatch/pkg/extract"
	"salewatch/pkg/fetch"
	"salewatch/pkg/logx"
	"salewatch/pkg/model"
	"salewatch/pkg/report"
	"salewatch/pkg/snapshot"
)

func cmdScrape(cfg *config.Config) func(*cli.Cmd) {
	return func(cmd *cli.Cmd) {
		cmd.Spec = "[--url...] [--from-file...] [--drops]"

		var (
			urls  = cmd.StringsOpt("u url", nil, "sale post URL (repeatable; defaults to configured URLs)")
			files = cmd.StringsOpt("f from-file", nil, "read saved markup from a local file instead of fetching")
			drops = cmd.BoolOpt("drops", false, "also write DROP deltas to a dated CSV")
		)

		cmd.Action = func() {
			if err := runScrape(*cfg, *urls, *files, *drops); err != nil {
				logx.Error().Err(err).Msg("scrape failed")
				cli.Exit(1)
			}
		}
	}
}

// runScrape is one full pipeline pass: fetch, extract, archive the old
// latest snapshot, write the new one, compare, report. Each run is a
// single-threaded batch beyond the parallel fetches; no state survives in
// memory between runs.
func runScrape(cfg config.Config, urls, files []string, writeDrops bool) error {
	store := snapshot.Store{DataDir: cfg.DataDir, ArchiveDir: cfg.ArchiveDir}

	if cfg.RunLock {
		if err := store.AcquireLock(); err != nil {
			return err
		}
		defer store.ReleaseLock()
	}

	fetcher, targets, err := pickFetcher(cfg, urls, files)
	if err != nil {
		return err
	}

	pages, skipped, err := fetcher.FetchAll(targets)
	if err != nil {
		return err
	}
	for _, s := range skipped {
		logx.Warn().Str("source", s).Msg("page skipped")
	}

	// snapshot cells carry second precision; truncating keeps the written
	// timestamp identical to the in-memory one
	capturedAt := time.Now().Truncate(time.Second)
	snap := model.Snapshot{CapturedAt: capturedAt}
	summary := report.RunSummary{PagesFetched: len(pages), PagesSkipped: len(skipped)}

	pagesParsed := 0
	for _, page := range pages {
		records, stats, err := extract.Extract(page.HTML, page.URL, capturedAt)
		if err != nil {
			logx.Error().Str("url", page.URL).Err(err).Msg("page not parseable, skipping")
			summary.PagesSkipped++
			continue
		}
		pagesParsed++
		snap.Records = append(snap.Records, records...)
		summary.Records += stats.Records
		summary.FieldsNulled += stats.FieldsNulled
		summary.Violations += stats.InvariantViolations
	}
	if pagesParsed == 0 {
		return errors.New("no page could be parsed")
	}

	// the previous snapshot is loaded before the archiver rotates it away,
	// then passed explicitly into the comparator
	previous, err := store.LoadPrevious()
	if err != nil && !errors.Is(err, snapshot.ErrNoSnapshot) {
		return err
	}

	if _, err := store.ArchiveLatest(); err != nil {
		return err
	}

	path, err := store.WriteSnapshot(snap)
	if err != nil {
		return fmt.Errorf("writing snapshot: %w", err)
	}
	logx.Info().Str("path", path).Int("records", len(snap.Records)).Msg("snapshot written")

	deltas := compare.Compare(snap, previous)
	summary.ApplyTally(compare.Tally(deltas))

	notifier := report.ConsoleNotifier{Out: os.Stdout}
	if err := notifier.Notify(context.Background(), deltas); err != nil {
		return err
	}

	if writeDrops {
		p, err := report.WriteDrops(cfg.DataDir, deltas, capturedAt)
		if err != nil {
			return err
		}
		if p != "" {
			logx.Info().Str("path", p).Msg("price drops written")
		}
	}

	terms, err := report.LoadWatchlist(cfg.Watchlist)
	if err != nil {
		return err
	}
	if hits := report.FilterWatchlist(snap.Records, terms); len(hits) > 0 {
		if err := report.WriteWatchlist(os.Stdout, hits); err != nil {
			return err
		}
	}

	return report.WriteRunSummary(os.Stdout, summary)
}

// pickFetcher chooses offline file reading when --from-file was given,
// otherwise the live fetcher against the configured or passed URLs.
func pickFetcher(cfg config.Config, urls, files []string) (fetch.Fetcher, []string, error) {
	if len(files) > 0 {
		return fetch.FileFetcher{}, files, nil
	}

	if len(urls) == 0 {
		var err error
		urls, err = cfg.TargetURLs()
		if err != nil {
			return nil, nil, err
		}
	}
	if len(urls) == 0 {
		return nil, nil, errors.New("no target URLs: set urls in config.yaml or pass --url")
	}

	f := fetch.NewCollyFetcher(fetch.Options{
		Threads:   cfg.Fetch.Threads,
		Timeout:   time.Duration(cfg.Fetch.TimeoutSeconds) * time.Second,
		UserAgent: cfg.Fetch.UserAgent,
		CacheDir:  cfg.Fetch.CacheDir,
	})
	return f, urls, nil
}
