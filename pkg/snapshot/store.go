package snapshot

import (
	"errors"
	"path/filepath"
	"sort"
	"time"
)

const (
	filePrefix = "sales_"
	fileExt    = ".csv"
	masterName = "master_log.csv"
	lockName   = ".salewatch.lock"

	timeFormat = time.RFC3339
	// archive filename suffixes must stay filesystem-safe, so no colons
	suffixFormat = "2006-01-02T15-04-05"
)

var header = []string{"name", "regular_price", "sale_price", "discount_percent", "url", "captured_at"}

// ErrNoSnapshot means no dated snapshot file is present yet. This is the
// expected first-run condition, not a failure.
var ErrNoSnapshot = errors.New("no snapshot file present")

// Store persists snapshots as flat CSV files under DataDir and keeps
// superseded dated files in ArchiveDir. All cross-run state lives in these
// files; nothing is held in memory between invocations.
type Store struct {
	DataDir    string
	ArchiveDir string
}

// DatedPath returns the deterministic dated filename for a capture time.
func (s Store) DatedPath(t time.Time) string {
	return filepath.Join(s.DataDir, filePrefix+t.Format("2006-01-02")+fileExt)
}

// MasterPath returns the append-only master log path.
func (s Store) MasterPath() string {
	return filepath.Join(s.DataDir, masterName)
}

// ListSnapshots returns the dated snapshot files in DataDir, newest first.
// The filename encodes the capture date, so reverse-lexical order is
// newest-first.
func (s Store) ListSnapshots() ([]string, error) {
	matches, err := filepath.Glob(filepath.Join(s.DataDir, filePrefix+"*"+fileExt))
	if err != nil {
		return nil, err
	}
	sort.Sort(sort.Reverse(sort.StringSlice(matches)))
	return matches, nil
}

// LatestPath returns the newest dated snapshot file.
func (s Store) LatestPath() (string, error) {
	files, err := s.ListSnapshots()
	if err != nil {
		return "", err
	}
	if len(files) == 0 {
		return "", ErrNoSnapshot
	}
	return files[0], nil
}

func (s Store) listArchived() ([]string, error) {
	matches, err := filepath.Glob(filepath.Join(s.ArchiveDir, filePrefix+"*"+fileExt))
	if err != nil {
		return nil, err
	}
	sort.Sort(sort.Reverse(sort.StringSlice(matches)))
	return matches, nil
}

// NewestPair returns the two newest snapshot files (previous, current) for
// comparison: the two newest dated files, or the newest dated file plus the
// newest archived one.
func (s Store) NewestPair() (previous, current string, err error) {
	files, err := s.ListSnapshots()
	if err != nil {
		return "", "", err
	}
	if len(files) >= 2 {
		return files[1], files[0], nil
	}
	if len(files) == 0 {
		return "", "", ErrNoSnapshot
	}

	archived, err := s.listArchived()
	if err != nil {
		return "", "", err
	}
	if len(archived) == 0 {
		return "", "", ErrNoSnapshot
	}
	return archived[0], files[0], nil
}
