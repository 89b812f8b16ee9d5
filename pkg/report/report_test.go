package report

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"salewatch/pkg/model"
)

func record(name, sale, discount string) model.ProductRecord {
	r := model.ProductRecord{Name: name, URL: "https://example.com/post"}
	if sale != "" {
		r.SalePrice = decimal.NewNullDecimal(decimal.RequireFromString(sale))
	}
	if discount != "" {
		r.DiscountPercent = decimal.NewNullDecimal(decimal.RequireFromString(discount))
	}
	return r
}

func TestFilterWatchlist(t *testing.T) {
	records := []model.ProductRecord{
		record("Mattress X Queen", "299.99", ""),
		record("Blender Pro 900", "89.99", ""),
		record("Organic Honey 1kg", "12.49", ""),
	}

	hits := FilterWatchlist(records, []string{"mattress", "HONEY"})
	require.Len(t, hits, 2)
	assert.Equal(t, "Mattress X Queen", hits[0].Name)
	assert.Equal(t, "Organic Honey 1kg", hits[1].Name)

	assert.Nil(t, FilterWatchlist(records, nil))
}

func TestLoadWatchlist(t *testing.T) {
	path := filepath.Join(t.TempDir(), "watchlist.txt")
	require.NoError(t, os.WriteFile(path, []byte("mattress\n\n# a comment\nhoney\n"), 0644))

	terms, err := LoadWatchlist(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"mattress", "honey"}, terms)
}

func TestLoadWatchlistMissingFile(t *testing.T) {
	terms, err := LoadWatchlist(filepath.Join(t.TempDir(), "nope.txt"))
	require.NoError(t, err)
	assert.Nil(t, terms)

	terms, err = LoadWatchlist("")
	require.NoError(t, err)
	assert.Nil(t, terms)
}

func TestSummarize(t *testing.T) {
	snap := model.Snapshot{Records: []model.ProductRecord{
		record("Big Deal", "10.00", "70.00"),
		record("Small Deal", "20.00", "10.00"),
		record("No Deal", "30.00", ""),
	}}

	sum := Summarize(snap, 1)
	assert.Equal(t, 3, sum.Total)
	assert.Equal(t, 2, sum.Discounted)
	assert.Equal(t, "40.0", sum.Average.StringFixed(1))
	assert.Equal(t, "70.00", sum.Highest.StringFixed(2))
	assert.Equal(t, "10.00", sum.Lowest.StringFixed(2))
	require.Len(t, sum.Top, 1)
	assert.Equal(t, "Big Deal", sum.Top[0].Name)
	require.Len(t, sum.Flagged, 1)
	assert.Equal(t, "Big Deal", sum.Flagged[0].Name)
}

func TestSummarizeNoDiscounts(t *testing.T) {
	sum := Summarize(model.Snapshot{Records: []model.ProductRecord{record("No Deal", "30.00", "")}}, 10)
	assert.Equal(t, 1, sum.Total)
	assert.Equal(t, 0, sum.Discounted)
	assert.Empty(t, sum.Top)
}

func TestWriteDiscountSummary(t *testing.T) {
	snap := model.Snapshot{Records: []model.ProductRecord{
		record("Big Deal", "10.00", "70.00"),
		record("Small Deal", "20.00", "10.00"),
	}}

	var b strings.Builder
	err := WriteDiscountSummary(&b, "sales_2025-10-21.csv", Summarize(snap, 10), true)
	require.NoError(t, err)

	out := b.String()
	assert.Contains(t, out, "Total items: 2")
	assert.Contains(t, out, "Average discount: 40.0%")
	assert.Contains(t, out, "Big Deal")
	assert.Contains(t, out, "Unusually high discounts")
}

func TestConsoleNotifier(t *testing.T) {
	deltas := []model.PriceDelta{
		{
			Name:           "Mattress X",
			URL:            "https://example.com/post",
			PreviousPrice:  decimal.NewNullDecimal(decimal.RequireFromString("339.99")),
			CurrentPrice:   decimal.NewNullDecimal(decimal.RequireFromString("299.99")),
			AbsoluteChange: decimal.NewNullDecimal(decimal.RequireFromString("-40.00")),
			PercentChange:  decimal.NewNullDecimal(decimal.RequireFromString("-11.77")),
			Classification: model.Drop,
		},
		{
			Name:           "Brand New Thing",
			URL:            "https://example.com/post",
			CurrentPrice:   decimal.NewNullDecimal(decimal.RequireFromString("59.99")),
			Classification: model.New,
		},
	}

	var b strings.Builder
	require.NoError(t, ConsoleNotifier{Out: &b}.Notify(context.Background(), deltas))

	out := b.String()
	assert.Contains(t, out, "DROP")
	assert.Contains(t, out, "Mattress X")
	assert.Contains(t, out, "-40.00")
	assert.Contains(t, out, "-11.77%")
	assert.Contains(t, out, "NEW")
	assert.Contains(t, out, "- -> 59.99")
}

func TestWriteRunSummary(t *testing.T) {
	s := RunSummary{PagesFetched: 2, PagesSkipped: 1, Records: 40, FieldsNulled: 3}
	s.ApplyTally(map[model.Classification]int{model.Drop: 5, model.New: 7})

	var b strings.Builder
	require.NoError(t, WriteRunSummary(&b, s))

	out := b.String()
	assert.Contains(t, out, "pages fetched:    2")
	assert.Contains(t, out, "5 drop")
	assert.Contains(t, out, "7 new")
}

func TestWriteDrops(t *testing.T) {
	dir := t.TempDir()
	deltas := []model.PriceDelta{
		{
			Name:           "Mattress X",
			URL:            "https://example.com/post",
			PreviousPrice:  decimal.NewNullDecimal(decimal.RequireFromString("339.99")),
			CurrentPrice:   decimal.NewNullDecimal(decimal.RequireFromString("299.99")),
			AbsoluteChange: decimal.NewNullDecimal(decimal.RequireFromString("-40.00")),
			PercentChange:  decimal.NewNullDecimal(decimal.RequireFromString("-11.77")),
			Classification: model.Drop,
		},
		{Name: "Steady Item", Classification: model.Unchanged},
	}

	path, err := WriteDrops(dir, deltas, time.Date(2025, 10, 21, 9, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	require.NotEmpty(t, path)

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	content := string(b)
	assert.Contains(t, content, "Mattress X")
	assert.NotContains(t, content, "Steady Item")
	assert.Equal(t, 2, strings.Count(content, "\n"))
}

func TestWriteDropsNoDrops(t *testing.T) {
	path, err := WriteDrops(t.TempDir(), []model.PriceDelta{{Classification: model.Increase}}, time.Now())
	require.NoError(t, err)
	assert.Empty(t, path)
}
