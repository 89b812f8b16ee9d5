package fetch

import (
	"os"
	"path/filepath"
	"time"

	"salewatch/pkg/logx"
)

// FileFetcher reads saved markup from local files so the pipeline can run
// offline (and so tests can feed it fixed pages). The extractor sees the
// exact same contract as with live fetching; the file path stands in for
// the source URL.
type FileFetcher struct{}

func (FileFetcher) FetchAll(paths []string) ([]Page, []string, error) {
	var pages []Page
	var skipped []string

	for _, p := range paths {
		b, err := os.ReadFile(p)
		if err != nil {
			logx.Warn().Str("path", p).Err(err).Msg("skipping unreadable file")
			skipped = append(skipped, p)
			continue
		}
		pages = append(pages, Page{
			URL:       filepath.ToSlash(p),
			HTML:      string(b),
			FetchedAt: time.Now(),
		})
	}

	if len(pages) == 0 && len(paths) > 0 {
		return nil, skipped, ErrNothingFetched
	}
	return pages, skipped, nil
}
