package report

import (
	"errors"
	"io"
	"io/fs"
	"os"
	"strings"
	"text/template"

	"salewatch/pkg/model"
)

// LoadWatchlist reads keyword terms, one per line. Blank lines and
// #-comments are skipped, and a missing file yields an empty watchlist
// rather than an error.
func LoadWatchlist(path string) ([]string, error) {
	if path == "" {
		return nil, nil
	}

	b, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var terms []string
	for _, line := range strings.Split(string(b), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		terms = append(terms, line)
	}
	return terms, nil
}

// FilterWatchlist returns the records whose name contains any watch term,
// case-insensitively.
func FilterWatchlist(records []model.ProductRecord, terms []string) []model.ProductRecord {
	if len(terms) == 0 {
		return nil
	}

	var hits []model.ProductRecord
	for _, r := range records {
		name := strings.ToLower(r.Name)
		for _, t := range terms {
			if strings.Contains(name, strings.ToLower(t)) {
				hits = append(hits, r)
				break
			}
		}
	}
	return hits
}

var watchlistTemplate = template.Must(template.New("watchlistTemplate").Funcs(template.FuncMap{
	"money": formatMoney,
}).Parse(
	`
=== WATCHLIST MATCHES ===
{{ range . }}- {{ .Name }}{{ if .SalePrice.Valid }} - {{ money .SalePrice }}{{ end }} ({{ .URL }})
{{ end }}`))

// WriteWatchlist renders the matched records as plain text.
func WriteWatchlist(w io.Writer, hits []model.ProductRecord) error {
	return watchlistTemplate.Execute(w, hits)
}
