package snapshot

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/kennygrant/sanitize"

	"salewatch/pkg/logx"
)

// ArchiveLatest moves the newest dated snapshot file into the archive
// directory, suffixed with its capture timestamp so repeated runs on the
// same day never collide. With no dated file present it is a no-op, not an
// error, so calling it twice in a row changes nothing. The archive is
// strictly additive; nothing is ever deleted.
func (s Store) ArchiveLatest() (string, error) {
	latest, err := s.LatestPath()
	if errors.Is(err, ErrNoSnapshot) {
		return "", nil
	}
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(s.ArchiveDir, os.ModeDir|0755); err != nil {
		return "", err
	}

	// the sales_ prefix stays out of the sanitized part so archived files
	// keep matching the snapshot glob
	ts := s.captureTimeOf(latest)
	base := strings.TrimPrefix(strings.TrimSuffix(filepath.Base(latest), fileExt), filePrefix)
	name := filePrefix + sanitize.BaseName(base+"-"+ts.Format(suffixFormat)) + fileExt

	dst := filepath.Join(s.ArchiveDir, name)
	for i := 1; ; i++ {
		if _, err := os.Stat(dst); errors.Is(err, os.ErrNotExist) {
			break
		} else if err != nil {
			return "", err
		}
		dst = filepath.Join(s.ArchiveDir, fmt.Sprintf("%s-%d%s", strings.TrimSuffix(name, fileExt), i, fileExt))
	}

	if err := os.Rename(latest, dst); err != nil {
		return "", err
	}
	logx.Debug().Str("from", latest).Str("to", dst).Msg("archived snapshot")
	return dst, nil
}

// captureTimeOf reads the capture timestamp out of a snapshot file,
// falling back to the file's modification time when the file has no rows.
func (s Store) captureTimeOf(path string) time.Time {
	if snap, err := LoadSnapshot(path); err == nil && !snap.CapturedAt.IsZero() {
		return snap.CapturedAt
	}
	if fi, err := os.Stat(path); err == nil {
		return fi.ModTime()
	}
	return time.Now()
}
