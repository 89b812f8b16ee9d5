package extract

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/shopspring/decimal"

	"salewatch/pkg/logx"
	"salewatch/pkg/model"
)

// ErrUnparseable reports markup that cannot be parsed at all (empty or
// malformed input). Anything less severe degrades per field instead of
// failing the page.
var ErrUnparseable = errors.New("markup is not parseable")

// Stats counts what happened while extracting one page. The run summary
// aggregates these across pages.
type Stats struct {
	Records             int
	FieldsNulled        int
	InvariantViolations int
}

var (
	// pricePattern matches a displayed price with its currency marker,
	// e.g. "$339.99", "CAD $1,299.00".
	pricePattern = regexp.MustCompile(`(?:\$|CAD\s*\$?)\s*\d{1,3}(?:,\d{3})*(?:\.\d{2})?`)

	// savingsPattern captures the "($40.00 INSTANT SAVINGS" amount sale
	// posts print next to the sale price.
	savingsPattern = regexp.MustCompile(`(?i)\(\s*\$(\d+(?:\.\d{2})?)\s+INSTANT\s+SAVINGS`)

	// regularPattern captures an explicitly printed regular price,
	// e.g. "Regular price: $15.99".
	regularPattern = regexp.MustCompile(`(?i)(?:reg|regular)\s*price\s*:?\s*((?:\$|CAD\s*\$?)\s*[\d,]+(?:\.\d{2})?)`)

	nameSplitRegex  = regexp.MustCompile(`[•\-–—|:\n]`)
	whitespaceRegex = regexp.MustCompile(`\s+`)
)

// contentScopes are the containers blog-style sale posts render into, most
// specific first. Extraction falls back to the whole body when none match.
var contentScopes = []string{".entry-content", ".post-content", "article", ".post", ".content"}

// candidateSelector picks the leaf-ish elements worth scanning for prices.
const candidateSelector = "p, li, td, h3, h4, figcaption"

const maxNameChars = 180

// Extract parses one sale post into product records. A missing or
// malformed field nulls out with a warning instead of dropping the record;
// only wholly unparseable markup returns an error.
func Extract(html string, sourceURL string, capturedAt time.Time) ([]model.ProductRecord, Stats, error) {
	var stats Stats

	if strings.TrimSpace(html) == "" {
		return nil, stats, fmt.Errorf("%s: empty input: %w", sourceURL, ErrUnparseable)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, stats, fmt.Errorf("%s: %v: %w", sourceURL, err, ErrUnparseable)
	}

	logPostMeta(doc, sourceURL)

	scope := findScope(doc)
	if scope.Length() == 0 {
		return nil, stats, fmt.Errorf("%s: no document body: %w", sourceURL, ErrUnparseable)
	}

	var records []model.ProductRecord
	seen := make(map[string]bool)

	scope.Find(candidateSelector).Each(func(_ int, sel *goquery.Selection) {
		text := cleanText(sel.Text())
		if text == "" || !pricePattern.MatchString(text) {
			return
		}

		rec, ok := recordFrom(sel, text, sourceURL, capturedAt, &stats)
		if !ok {
			return
		}

		// nested scopes and repeated post sections produce duplicates
		dedupeKey := strings.ToLower(rec.Name) + "|" + formatDedupe(rec.SalePrice)
		if seen[dedupeKey] {
			return
		}
		seen[dedupeKey] = true

		records = append(records, rec)
		stats.Records++
	})

	return records, stats, nil
}

// recordFrom builds one record out of a price-bearing element.
func recordFrom(sel *goquery.Selection, text, sourceURL string, capturedAt time.Time, stats *Stats) (model.ProductRecord, bool) {
	// the regular-price and instant-savings phrases carry their own price
	// tokens; strip them so the last remaining price is the sale price
	saleText := regularPattern.ReplaceAllString(text, "")
	saleText = savingsPattern.ReplaceAllString(saleText, "(")

	prices := pricePattern.FindAllString(saleText, -1)
	var sale decimal.NullDecimal
	if len(prices) > 0 {
		sale = NormalizePrice(prices[len(prices)-1])
		if !sale.Valid {
			stats.FieldsNulled++
			logx.Warn().Str("value", prices[len(prices)-1]).Str("url", sourceURL).
				Msg("unparseable sale price, field nulled")
		}
	}

	name := nameFor(sel, saleText)
	if name == "" {
		return model.ProductRecord{}, false
	}

	rec := model.ProductRecord{
		Name:       name,
		SalePrice:  sale,
		URL:        sourceURL,
		CapturedAt: capturedAt,
	}

	if m := regularPattern.FindStringSubmatch(text); m != nil {
		rec.RegularPrice = NormalizePrice(m[1])
		if !rec.RegularPrice.Valid {
			logx.Warn().Str("value", m[1]).Str("url", sourceURL).
				Msg("unparseable regular price, field nulled")
		}
	}

	var savings decimal.NullDecimal
	if m := savingsPattern.FindStringSubmatch(text); m != nil {
		savings = NormalizePrice(m[1])
	}

	// posts often print only the sale price and the instant-savings
	// amount; the regular price is their sum
	if !rec.RegularPrice.Valid && savings.Valid && sale.Valid {
		rec.RegularPrice = decimal.NewNullDecimal(sale.Decimal.Add(savings.Decimal))
	}

	if rec.RegularPrice.Valid && sale.Valid && !rec.RegularPrice.Decimal.IsZero() {
		discount := rec.RegularPrice.Decimal.Sub(sale.Decimal).
			Div(rec.RegularPrice.Decimal).
			Mul(decimal.NewFromInt(100)).
			Round(2)
		rec.DiscountPercent = decimal.NewNullDecimal(discount)
	}

	if !rec.RegularPrice.Valid {
		stats.FieldsNulled++
	}
	if !rec.DiscountPercent.Valid {
		stats.FieldsNulled++
	}

	if rec.RegularPrice.Valid && rec.SalePrice.Valid &&
		rec.SalePrice.Decimal.GreaterThan(rec.RegularPrice.Decimal) {
		stats.InvariantViolations++
		logx.Warn().Str("name", rec.Name).Str("url", sourceURL).
			Str("sale", rec.SalePrice.Decimal.StringFixed(2)).
			Str("regular", rec.RegularPrice.Decimal.StringFixed(2)).
			Msg("sale price exceeds regular price")
	}

	return rec, true
}

// nameFor derives a product name for a price-bearing element. A nearby
// product image's alt text is the most reliable source; failing that, the
// text left of the first price.
func nameFor(sel *goquery.Selection, text string) string {
	if alt := cleanText(sel.Find("img[alt]").First().AttrOr("alt", "")); alt != "" {
		return alt
	}
	// figcaptions carry the price; the product image sits next to them
	if alt := cleanText(sel.Closest("figure").Find("img[alt]").First().AttrOr("alt", "")); alt != "" {
		return alt
	}
	return nearestTextBefore(text)
}

// nearestTextBefore takes the text left of the first price and returns its
// last chunk after any list punctuation.
func nearestTextBefore(text string) string {
	left := text
	if loc := pricePattern.FindStringIndex(text); loc != nil {
		left = text[:loc[0]]
	}

	chunks := nameSplitRegex.Split(left, -1)
	for i := len(chunks) - 1; i >= 0; i-- {
		c := cleanText(chunks[i])
		if c == "" {
			continue
		}
		if len(c) > maxNameChars {
			c = c[len(c)-maxNameChars:]
		}
		return c
	}
	return ""
}

func findScope(doc *goquery.Document) *goquery.Selection {
	for _, s := range contentScopes {
		if scope := doc.Find(s); scope.Length() > 0 {
			return scope
		}
	}
	return doc.Find("body")
}

// logPostMeta records the post's own title and publish date; useful when
// reading the logs of a scheduled run.
func logPostMeta(doc *goquery.Document, sourceURL string) {
	var title string
	for _, s := range []string{"h1.entry-title", "h1.post-title", "h1", "title"} {
		if t := cleanText(doc.Find(s).First().Text()); t != "" {
			title = t
			break
		}
	}

	date := doc.Find(`meta[property="article:published_time"]`).AttrOr("content", "")
	if date == "" {
		date = doc.Find(`meta[name="date"]`).AttrOr("content", "")
	}

	logx.Debug().Str("url", sourceURL).Str("title", title).Str("date", date).Msg("post metadata")
}

func cleanText(s string) string {
	return strings.TrimSpace(whitespaceRegex.ReplaceAllString(s, " "))
}

func formatDedupe(d decimal.NullDecimal) string {
	if !d.Valid {
		return ""
	}
	return d.Decimal.StringFixed(2)
}
