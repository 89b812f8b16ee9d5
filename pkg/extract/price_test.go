package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizePrice(t *testing.T) {
	testCases := []struct {
		name     string
		input    string
		expected string // "" means null
	}{
		{"dollar with thousands separator", "$1,299.00", "1299.00"},
		{"plain dollar price", "$339.99", "339.99"},
		{"currency-prefixed", "CAD $2,550.50", "2550.50"},
		{"price inside a phrase", "Save: $40.00", "40.00"},
		{"integer price", "$99", "99.00"},
		{"bare number", "12", "12.00"},
		{"not available", "N/A", ""},
		{"words only", "see price in store", ""},
		{"empty string", "", ""},
		{"whitespace only", "   ", ""},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := NormalizePrice(tc.input)
			if tc.expected == "" {
				assert.False(t, got.Valid, "expected null for %q", tc.input)
				return
			}
			assert.True(t, got.Valid, "expected a value for %q", tc.input)
			assert.Equal(t, tc.expected, got.Decimal.StringFixed(2))
		})
	}
}
