package snapshot

import (
	"encoding/csv"
	"errors"
	"io"
	"io/fs"
	"os"

	"github.com/shopspring/decimal"

	"salewatch/pkg/model"
)

// WriteSnapshot writes the dated snapshot file atomically (temp file, then
// rename) and appends the same rows to the master log. From the caller's
// perspective the dated file is either fully written or absent; an
// interrupted run never leaves a partial latest file.
func (s Store) WriteSnapshot(snap model.Snapshot) (string, error) {
	if err := os.MkdirAll(s.DataDir, os.ModeDir|0755); err != nil {
		return "", err
	}

	path := s.DatedPath(snap.CapturedAt)

	tmp, err := os.CreateTemp(s.DataDir, filePrefix+"*.tmp")
	if err != nil {
		return "", err
	}
	defer os.Remove(tmp.Name())

	if err := writeRows(tmp, snap, true); err != nil {
		tmp.Close()
		return "", err
	}
	if err := tmp.Close(); err != nil {
		return "", err
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return "", err
	}

	if err := s.appendMaster(snap); err != nil {
		return path, err
	}
	return path, nil
}

// appendMaster appends the snapshot's rows to the master log. The header
// is written exactly once, when the file is created.
func (s Store) appendMaster(snap model.Snapshot) error {
	path := s.MasterPath()

	withHeader := false
	fi, err := os.Stat(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		withHeader = true
	case err != nil:
		return err
	case fi.Size() == 0:
		withHeader = true
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return err
	}
	defer f.Close()

	return writeRows(f, snap, withHeader)
}

func writeRows(w io.Writer, snap model.Snapshot, withHeader bool) error {
	cw := csv.NewWriter(w)
	if withHeader {
		if err := cw.Write(header); err != nil {
			return err
		}
	}
	for _, r := range snap.Records {
		if err := cw.Write(row(r)); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func row(r model.ProductRecord) []string {
	return []string{
		r.Name,
		formatDecimal(r.RegularPrice),
		formatDecimal(r.SalePrice),
		formatDecimal(r.DiscountPercent),
		r.URL,
		r.CapturedAt.Format(timeFormat),
	}
}

// formatDecimal renders a nullable decimal as a CSV cell; null is an empty
// cell, never the string "null".
func formatDecimal(d decimal.NullDecimal) string {
	if !d.Valid {
		return ""
	}
	return d.Decimal.StringFixed(2)
}
