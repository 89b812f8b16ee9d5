package report

import (
	"context"
	"io"
	"text/template"

	"github.com/shopspring/decimal"

	"salewatch/pkg/model"
)

// Notifier delivers a computed delta sequence somewhere. Console output is
// the only implementation today; an email or chat channel slots in behind
// the same interface without touching the pipeline.
type Notifier interface {
	Notify(ctx context.Context, deltas []model.PriceDelta) error
}

var deltaTemplate = template.Must(template.New("deltaTemplate").Funcs(template.FuncMap{
	"money": formatMoney,
}).Parse(
	`{{ range . -}}
{{ printf "%-9s" .Classification }} {{ .Name }}  {{ money .PreviousPrice }} -> {{ money .CurrentPrice }}{{ if .AbsoluteChange.Valid }}  ({{ money .AbsoluteChange }}{{ if .PercentChange.Valid }}, {{ money .PercentChange }}%{{ end }}){{ end }}
{{ end }}`))

// ConsoleNotifier renders deltas as plain text.
type ConsoleNotifier struct {
	Out io.Writer
}

func (n ConsoleNotifier) Notify(_ context.Context, deltas []model.PriceDelta) error {
	return deltaTemplate.Execute(n.Out, deltas)
}

func formatMoney(d decimal.NullDecimal) string {
	if !d.Valid {
		return "-"
	}
	return d.Decimal.StringFixed(2)
}
