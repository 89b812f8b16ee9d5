package extract

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

// priceTokenRegex finds the first number-like token in a price string.
// It handles integers, decimals and thousands separators.
var priceTokenRegex = regexp.MustCompile(`[\d,]+(?:\.\d+)?`)

// NormalizePrice strips currency symbols and thousands separators from a
// displayed price and parses the remainder to a decimal with two fixed
// places. Strings with no usable number ("N/A", "see in store") normalize
// to null; this function never fails.
func NormalizePrice(s string) decimal.NullDecimal {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.NullDecimal{}
	}

	found := priceTokenRegex.FindString(s)
	if found == "" {
		return decimal.NullDecimal{}
	}

	d, err := decimal.NewFromString(strings.ReplaceAll(found, ",", ""))
	if err != nil {
		return decimal.NullDecimal{}
	}
	return decimal.NewNullDecimal(d.Round(2))
}
