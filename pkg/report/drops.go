package report

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"time"

	"salewatch/pkg/model"
)

// WriteDrops persists the DROP deltas to a timestamped CSV next to the
// snapshots. Deltas stay derived data that is recomputed every run; this
// file is a convenience export, not primary storage.
func WriteDrops(dir string, deltas []model.PriceDelta, now time.Time) (string, error) {
	var drops []model.PriceDelta
	for _, d := range deltas {
		if d.Classification == model.Drop {
			drops = append(drops, d)
		}
	}
	if len(drops) == 0 {
		return "", nil
	}

	if err := os.MkdirAll(dir, os.ModeDir|0755); err != nil {
		return "", err
	}

	path := filepath.Join(dir, "price_drops_"+now.Format("20060102_150405")+".csv")
	f, err := os.Create(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	cw := csv.NewWriter(f)
	if err := cw.Write([]string{"name", "previous_price", "current_price", "absolute_change", "percent_change", "url"}); err != nil {
		return "", err
	}
	for _, d := range drops {
		row := []string{
			d.Name,
			formatMoney(d.PreviousPrice),
			formatMoney(d.CurrentPrice),
			formatMoney(d.AbsoluteChange),
			formatMoney(d.PercentChange),
			d.URL,
		}
		if err := cw.Write(row); err != nil {
			return "", err
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return "", err
	}
	return path, nil
}
