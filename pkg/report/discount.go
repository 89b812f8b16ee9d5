package report

import (
	"io"
	"sort"
	"text/template"

	"github.com/shopspring/decimal"

	"salewatch/pkg/model"
)

// highDiscountFlag marks discounts that usually mean an extraction mistake
// rather than a genuine deal.
var highDiscountFlag = decimal.NewFromInt(60)

// DiscountSummary aggregates the discounts across one snapshot.
type DiscountSummary struct {
	Total      int
	Discounted int
	Average    decimal.Decimal
	Highest    decimal.Decimal
	Lowest     decimal.Decimal
	Top        []model.ProductRecord // sorted by discount, best first
	Flagged    []model.ProductRecord // at or above highDiscountFlag
}

// Summarize computes the discount summary for one snapshot, keeping the
// top topN discounted items.
func Summarize(snap model.Snapshot, topN int) DiscountSummary {
	sum := DiscountSummary{Total: len(snap.Records)}

	var discounted []model.ProductRecord
	total := decimal.Zero
	for _, r := range snap.Records {
		if !r.DiscountPercent.Valid || r.DiscountPercent.Decimal.IsZero() {
			continue
		}
		discounted = append(discounted, r)
		total = total.Add(r.DiscountPercent.Decimal)
	}

	sum.Discounted = len(discounted)
	if len(discounted) == 0 {
		return sum
	}

	sort.SliceStable(discounted, func(i, j int) bool {
		return discounted[i].DiscountPercent.Decimal.GreaterThan(discounted[j].DiscountPercent.Decimal)
	})

	sum.Average = total.Div(decimal.NewFromInt(int64(len(discounted)))).Round(1)
	sum.Highest = discounted[0].DiscountPercent.Decimal
	sum.Lowest = discounted[len(discounted)-1].DiscountPercent.Decimal

	if topN < 0 {
		topN = 0
	}
	if topN > len(discounted) {
		topN = len(discounted)
	}
	sum.Top = discounted[:topN]

	for _, r := range discounted {
		if r.DiscountPercent.Decimal.GreaterThanOrEqual(highDiscountFlag) {
			sum.Flagged = append(sum.Flagged, r)
		}
	}
	return sum
}

type discountContext struct {
	Path     string
	FlagHigh bool
	DiscountSummary
}

var discountTemplate = template.Must(template.New("discountTemplate").Funcs(template.FuncMap{
	"pct": func(d decimal.Decimal) string { return d.StringFixed(1) },
	"inc": func(i int) int { return i + 1 },
}).Parse(
	`Summary for {{ .Path }}
Total items: {{ .Total }}
Items with a discount: {{ .Discounted }}
{{ if gt .Discounted 0 -}}
Average discount: {{ pct .Average }}%
Highest discount: {{ pct .Highest }}%
Lowest discount:  {{ pct .Lowest }}%
Top discounts:
{{ range $i, $r := .Top }}{{ printf "%2d" (inc $i) }}. {{ $r.Name }} - {{ pct $r.DiscountPercent.Decimal }}% off
{{ end -}}
{{ if .FlagHigh }}{{ if .Flagged -}}
Unusually high discounts (>= 60%):
{{ range .Flagged }}- {{ .Name }} - {{ pct .DiscountPercent.Decimal }}% off
{{ end -}}
{{ else -}}
No suspicious discounts (>= 60%) found.
{{ end }}{{ end -}}
{{ else -}}
No discount data available.
{{ end -}}
`))

// WriteDiscountSummary renders the summary as plain text.
func WriteDiscountSummary(w io.Writer, path string, sum DiscountSummary, flagHigh bool) error {
	return discountTemplate.Execute(w, discountContext{Path: path, FlagHigh: flagHigh, DiscountSummary: sum})
}
