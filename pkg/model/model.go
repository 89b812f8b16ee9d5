package model

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Classification labels the direction of a price movement between two
// snapshots of the same product.
type Classification string

const (
	Drop      Classification = "DROP"
	Increase  Classification = "INCREASE"
	Unchanged Classification = "UNCHANGED"
	New       Classification = "NEW"
	Removed   Classification = "REMOVED"
)

// ProductRecord is one extracted sale listing. Price fields are nullable:
// a listing that does not print a regular price still produces a record.
type ProductRecord struct {
	Name            string
	RegularPrice    decimal.NullDecimal
	SalePrice       decimal.NullDecimal
	DiscountPercent decimal.NullDecimal
	URL             string
	CapturedAt      time.Time
}

// Key identifies a product across runs.
type Key struct {
	Name string
	URL  string
}

// KeyOf is the single place the identity rule lives. The upstream pages
// expose no stable product ID, so identity is the normalized product name
// plus the source URL.
func KeyOf(name, url string) Key {
	return Key{
		Name: strings.ToLower(strings.TrimSpace(name)),
		URL:  strings.TrimSpace(url),
	}
}

// Key returns the record's identity key.
func (r ProductRecord) Key() Key {
	return KeyOf(r.Name, r.URL)
}

// Snapshot is the full set of records captured in a single run.
// Snapshots are immutable once written.
type Snapshot struct {
	CapturedAt time.Time
	Records    []ProductRecord
}

// PriceDelta is the computed difference for one product between two
// snapshots. Deltas are derived on demand and never persisted as primary
// data.
type PriceDelta struct {
	Key            Key
	Name           string
	URL            string
	PreviousPrice  decimal.NullDecimal
	CurrentPrice   decimal.NullDecimal
	AbsoluteChange decimal.NullDecimal
	PercentChange  decimal.NullDecimal
	Classification Classification
}
