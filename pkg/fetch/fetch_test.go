package fetch

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSite(t *testing.T) *httptest.Server {
	t.Helper()

	var mu sync.Mutex
	flakyAttempts := 0

	mux := http.NewServeMux()
	mux.HandleFunc("/good", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte("<html><body><p>good page</p></body></html>"))
	})
	mux.HandleFunc("/flaky", func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		flakyAttempts++
		n := flakyAttempts
		mu.Unlock()

		if n == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte("<html><body><p>flaky page</p></body></html>"))
	})
	mux.HandleFunc("/broken", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	ts := httptest.NewServer(mux)
	t.Cleanup(ts.Close)
	return ts
}

func testFetcher() *CollyFetcher {
	return NewCollyFetcher(Options{
		Threads: 2,
		Timeout: 5 * time.Second,
		Backoff: 10 * time.Millisecond,
	})
}

func TestCollyFetcherFetchesPages(t *testing.T) {
	ts := newTestSite(t)

	pages, skipped, err := testFetcher().FetchAll([]string{ts.URL + "/good"})
	require.NoError(t, err)
	require.Len(t, pages, 1)
	assert.Empty(t, skipped)
	assert.Equal(t, ts.URL+"/good", pages[0].URL)
	assert.Contains(t, pages[0].HTML, "good page")
	assert.False(t, pages[0].FetchedAt.IsZero())
}

func TestCollyFetcherRetriesOnce(t *testing.T) {
	ts := newTestSite(t)

	// first attempt 503s, the single retry succeeds
	pages, skipped, err := testFetcher().FetchAll([]string{ts.URL + "/flaky"})
	require.NoError(t, err)
	require.Len(t, pages, 1)
	assert.Empty(t, skipped)
	assert.Contains(t, pages[0].HTML, "flaky page")
}

func TestCollyFetcherSkipsBrokenPages(t *testing.T) {
	ts := newTestSite(t)

	pages, skipped, err := testFetcher().FetchAll([]string{ts.URL + "/good", ts.URL + "/broken"})
	require.NoError(t, err)
	require.Len(t, pages, 1)
	assert.Equal(t, []string{ts.URL + "/broken"}, skipped)
}

func TestCollyFetcherTotalFailure(t *testing.T) {
	ts := newTestSite(t)

	_, skipped, err := testFetcher().FetchAll([]string{ts.URL + "/broken"})
	assert.ErrorIs(t, err, ErrNothingFetched)
	assert.Equal(t, []string{ts.URL + "/broken"}, skipped)
}

func TestFileFetcher(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "saved.html")
	require.NoError(t, os.WriteFile(path, []byte("<html><body>saved</body></html>"), 0644))

	pages, skipped, err := FileFetcher{}.FetchAll([]string{path, filepath.Join(dir, "missing.html")})
	require.NoError(t, err)
	require.Len(t, pages, 1)
	assert.Len(t, skipped, 1)
	assert.Contains(t, pages[0].HTML, "saved")
}

func TestFileFetcherTotalFailure(t *testing.T) {
	_, _, err := FileFetcher{}.FetchAll([]string{filepath.Join(t.TempDir(), "nope.html")})
	assert.ErrorIs(t, err, ErrNothingFetched)
}
