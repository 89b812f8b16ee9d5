package snapshot

import (
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/shopspring/decimal"

	"salewatch/pkg/model"
)

// LoadSnapshot reads a snapshot CSV back into memory. The snapshot's
// capture time is taken from its first row.
func LoadSnapshot(path string) (model.Snapshot, error) {
	f, err := os.Open(path)
	if err != nil {
		return model.Snapshot{}, err
	}
	defer f.Close()

	cr := csv.NewReader(f)
	rows, err := cr.ReadAll()
	if err != nil {
		return model.Snapshot{}, fmt.Errorf("reading %s: %w", path, err)
	}

	var snap model.Snapshot
	for i, r := range rows {
		if i == 0 && len(r) > 0 && r[0] == header[0] {
			continue
		}
		if len(r) != len(header) {
			return model.Snapshot{}, fmt.Errorf("%s row %d: expected %d columns, got %d", path, i+1, len(header), len(r))
		}

		capturedAt, err := time.Parse(timeFormat, r[5])
		if err != nil {
			return model.Snapshot{}, fmt.Errorf("%s row %d: %w", path, i+1, err)
		}

		snap.Records = append(snap.Records, model.ProductRecord{
			Name:            r[0],
			RegularPrice:    parseDecimal(r[1]),
			SalePrice:       parseDecimal(r[2]),
			DiscountPercent: parseDecimal(r[3]),
			URL:             r[4],
			CapturedAt:      capturedAt,
		})
		if snap.CapturedAt.IsZero() {
			snap.CapturedAt = capturedAt
		}
	}
	return snap, nil
}

// LoadPrevious loads the snapshot a new run should be compared against:
// the newest dated file, or, when the latest slot is empty, the newest
// archived file. ErrNoSnapshot signals a first run.
func (s Store) LoadPrevious() (model.Snapshot, error) {
	path, err := s.LatestPath()
	if err == nil {
		return LoadSnapshot(path)
	}
	if !errors.Is(err, ErrNoSnapshot) {
		return model.Snapshot{}, err
	}

	archived, err := s.listArchived()
	if err != nil {
		return model.Snapshot{}, err
	}
	if len(archived) == 0 {
		return model.Snapshot{}, ErrNoSnapshot
	}
	return LoadSnapshot(archived[0])
}

func parseDecimal(s string) decimal.NullDecimal {
	if s == "" {
		return decimal.NullDecimal{}
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.NullDecimal{}
	}
	return decimal.NewNullDecimal(d)
}
