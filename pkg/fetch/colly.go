package fetch

import (
	"errors"
	"sync"
	"time"

	"github.com/gocolly/colly/v2"

	"salewatch/pkg/logx"
)

// maxNumRetries is the retry budget per URL: the original request plus one
// retry with backoff, then the page is given up on.
const maxNumRetries = 1

// Options tunes the live fetcher.
type Options struct {
	Threads   int
	Timeout   time.Duration
	UserAgent string
	CacheDir  string        // empty disables caching
	Backoff   time.Duration // wait before the retry
}

// CollyFetcher fetches live pages with bounded parallelism. Fetches are
// independent and read-only against the remote site, so they run
// concurrently; everything downstream of fetching stays sequential.
type CollyFetcher struct {
	opts Options
}

func NewCollyFetcher(opts Options) *CollyFetcher {
	if opts.Threads <= 0 {
		opts.Threads = 1
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 20 * time.Second
	}
	if opts.Backoff <= 0 {
		opts.Backoff = time.Second
	}
	return &CollyFetcher{opts: opts}
}

func (f *CollyFetcher) FetchAll(urls []string) ([]Page, []string, error) {
	options := []colly.CollectorOption{colly.Async(true)}
	if f.opts.UserAgent != "" {
		options = append(options, colly.UserAgent(f.opts.UserAgent))
	}
	if f.opts.CacheDir != "" {
		options = append(options, colly.CacheDir(f.opts.CacheDir))
	}

	c := colly.NewCollector(options...)
	c.SetRequestTimeout(f.opts.Timeout)
	c.Limit(&colly.LimitRule{
		DomainGlob:  "*",
		Parallelism: f.opts.Threads,
	})

	var (
		mutex    sync.Mutex
		pages    []Page
		retries  = make(map[string]int)
		failures = make(map[string]bool)
	)

	c.OnRequest(func(r *colly.Request) {
		logx.Debug().Str("url", r.URL.String()).Msg("visiting")
	})

	c.OnResponse(func(r *colly.Response) {
		mutex.Lock()
		defer mutex.Unlock()
		pages = append(pages, Page{
			URL:       r.Request.URL.String(),
			HTML:      string(r.Body),
			FetchedAt: time.Now(),
		})
	})

	c.OnError(func(r *colly.Response, err error) {
		url := r.Request.URL.String()

		mutex.Lock()
		retries[url]++
		numRetries := retries[url]
		mutex.Unlock()

		if numRetries > maxNumRetries {
			logx.Warn().Str("url", url).Err(err).Msg("giving up on page after retry")
			mutex.Lock()
			failures[url] = true
			mutex.Unlock()
			return
		}

		logx.Warn().Str("url", url).Err(err).Dur("backoff", f.opts.Backoff).Msg("request failed, retrying")
		time.Sleep(f.opts.Backoff)
		if err := r.Request.Retry(); err != nil {
			logx.Error().Str("url", url).Err(err).Msg("retry failed to start")
			mutex.Lock()
			failures[url] = true
			mutex.Unlock()
		}
	})

	visitErrs := make(map[string]bool)
	for _, u := range urls {
		if err := c.Visit(u); err != nil && !errors.Is(err, colly.ErrAlreadyVisited) {
			logx.Warn().Str("url", u).Err(err).Msg("skipping unvisitable URL")
			visitErrs[u] = true
		}
	}
	c.Wait()

	var skipped []string
	for _, u := range urls {
		if failures[u] || visitErrs[u] {
			skipped = append(skipped, u)
		}
	}

	if len(pages) == 0 && len(urls) > 0 {
		return nil, skipped, ErrNothingFetched
	}
	return pages, skipped, nil
}
