package fetch

import (
	"errors"
	"time"
)

// Page is the raw markup returned for one source.
type Page struct {
	URL       string
	HTML      string
	FetchedAt time.Time
}

// Fetcher hands back raw markup for a list of sources. A source that cannot
// be fetched is skipped and named in the skipped slice rather than failing
// the whole batch; err is reserved for total failure.
type Fetcher interface {
	FetchAll(sources []string) (pages []Page, skipped []string, err error)
}

// ErrNothingFetched is returned when every requested source failed.
var ErrNothingFetched = errors.New("no pages could be fetched")
