package snapshot

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"
)

// ErrLocked means a prior run's lock file is still present.
var ErrLocked = errors.New("another run appears to be in progress")

// AcquireLock creates the run sentinel file. This is an optional safety
// check: the external scheduler remains responsible for keeping runs from
// overlapping; the sentinel just makes an accidental overlap fail fast.
func (s Store) AcquireLock() error {
	if err := os.MkdirAll(s.DataDir, os.ModeDir|0755); err != nil {
		return err
	}

	f, err := os.OpenFile(filepath.Join(s.DataDir, lockName), os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0644)
	if errors.Is(err, fs.ErrExist) {
		return ErrLocked
	}
	if err != nil {
		return err
	}

	fmt.Fprintf(f, "%d %s\n", os.Getpid(), time.Now().Format(timeFormat))
	return f.Close()
}

// ReleaseLock removes the sentinel. A missing sentinel is fine.
func (s Store) ReleaseLock() error {
	err := os.Remove(filepath.Join(s.DataDir, lockName))
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}
