package compare

import (
	"sort"

	"github.com/shopspring/decimal"

	"salewatch/pkg/logx"
	"salewatch/pkg/model"
)

var hundred = decimal.NewFromInt(100)

// Compare diffs the current snapshot against the previous one, matching
// records by identity key. Current-only keys classify NEW, previous-only
// keys REMOVED. An entirely absent previous snapshot is the expected
// first-run condition: every current record classifies NEW and no changes
// are computed.
//
// Output order is deterministic: current-snapshot order first, then the
// REMOVED entries sorted by name.
func Compare(current, previous model.Snapshot) []model.PriceDelta {
	if len(previous.Records) == 0 {
		logx.Warn().Msg("no previous snapshot to compare against, treating every record as new")
		deltas := make([]model.PriceDelta, 0, len(current.Records))
		for _, r := range current.Records {
			deltas = append(deltas, newDelta(r))
		}
		return deltas
	}

	prev := make(map[model.Key]model.ProductRecord, len(previous.Records))
	for _, r := range previous.Records {
		prev[r.Key()] = r
	}

	deltas := make([]model.PriceDelta, 0, len(current.Records))
	matched := make(map[model.Key]bool, len(current.Records))

	for _, cur := range current.Records {
		old, ok := prev[cur.Key()]
		if !ok {
			deltas = append(deltas, newDelta(cur))
			continue
		}
		matched[cur.Key()] = true
		deltas = append(deltas, diff(cur, old))
	}

	var removedKeys []model.Key
	for key := range prev {
		if !matched[key] {
			removedKeys = append(removedKeys, key)
		}
	}
	sort.Slice(removedKeys, func(i, j int) bool {
		return removedKeys[i].Name < removedKeys[j].Name
	})
	for _, key := range removedKeys {
		old := prev[key]
		deltas = append(deltas, model.PriceDelta{
			Key:            key,
			Name:           old.Name,
			URL:            old.URL,
			PreviousPrice:  effectivePrice(old),
			Classification: model.Removed,
		})
	}

	return deltas
}

// Tally counts deltas per classification for the run summary.
func Tally(deltas []model.PriceDelta) map[model.Classification]int {
	counts := make(map[model.Classification]int)
	for _, d := range deltas {
		counts[d.Classification]++
	}
	return counts
}

// diff computes the delta for a product present in both snapshots.
func diff(cur, old model.ProductRecord) model.PriceDelta {
	d := model.PriceDelta{Key: cur.Key(), Name: cur.Name, URL: cur.URL}

	curPrice, oldPrice := pricePair(cur, old)
	d.CurrentPrice = curPrice
	d.PreviousPrice = oldPrice

	if !curPrice.Valid || !oldPrice.Valid {
		// no usable price on one side: no movement to report
		d.Classification = model.Unchanged
		return d
	}

	change := curPrice.Decimal.Sub(oldPrice.Decimal)
	d.AbsoluteChange = decimal.NewNullDecimal(change)

	// percent change is undefined against a null or zero previous price;
	// the classification still follows the sign of the absolute change
	if !oldPrice.Decimal.IsZero() {
		d.PercentChange = decimal.NewNullDecimal(change.Div(oldPrice.Decimal).Mul(hundred).Round(2))
	}

	switch {
	case change.IsNegative():
		d.Classification = model.Drop
	case change.IsPositive():
		d.Classification = model.Increase
	default:
		d.Classification = model.Unchanged
	}
	return d
}

// pricePair picks the prices to compare: the sale price when both sides
// have one, otherwise the regular price on both sides so the comparison
// stays like-for-like.
func pricePair(cur, old model.ProductRecord) (decimal.NullDecimal, decimal.NullDecimal) {
	if cur.SalePrice.Valid && old.SalePrice.Valid {
		return cur.SalePrice, old.SalePrice
	}
	return cur.RegularPrice, old.RegularPrice
}

// effectivePrice is the price reported on one-sided deltas (NEW/REMOVED).
func effectivePrice(r model.ProductRecord) decimal.NullDecimal {
	if r.SalePrice.Valid {
		return r.SalePrice
	}
	return r.RegularPrice
}

func newDelta(r model.ProductRecord) model.PriceDelta {
	return model.PriceDelta{
		Key:            r.Key(),
		Name:           r.Name,
		URL:            r.URL,
		CurrentPrice:   effectivePrice(r),
		Classification: model.New,
	}
}
