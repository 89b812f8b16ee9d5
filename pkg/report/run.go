package report

import (
	"io"
	"text/template"

	"salewatch/pkg/model"
)

// RunSummary is the user-visible account of one scrape run: what was
// fetched, what was extracted, what was skipped, and how prices moved.
type RunSummary struct {
	PagesFetched int
	PagesSkipped int
	Records      int
	FieldsNulled int
	Violations   int

	Drops     int
	Increases int
	Unchanged int
	New       int
	Removed   int
}

// ApplyTally copies classification counts into the summary.
func (s *RunSummary) ApplyTally(counts map[model.Classification]int) {
	s.Drops = counts[model.Drop]
	s.Increases = counts[model.Increase]
	s.Unchanged = counts[model.Unchanged]
	s.New = counts[model.New]
	s.Removed = counts[model.Removed]
}

var runSummaryTemplate = template.Must(template.New("runSummaryTemplate").Parse(
	`
Run summary
  pages fetched:    {{ .PagesFetched }}
  pages skipped:    {{ .PagesSkipped }}
  records:          {{ .Records }}
  fields nulled:    {{ .FieldsNulled }}
  invariant flags:  {{ .Violations }}
  deltas:           {{ .Drops }} drop / {{ .Increases }} increase / {{ .Unchanged }} unchanged / {{ .New }} new / {{ .Removed }} removed
`))

// WriteRunSummary renders the summary as plain text.
func WriteRunSummary(w io.Writer, s RunSummary) error {
	return runSummaryTemplate.Execute(w, s)
}
