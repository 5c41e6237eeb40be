package model

import (
	"github.com/shopspring/decimal"
)

// LedgerKey identifies one row of the aged receivables report.
type LedgerKey struct {
	BusinessUnit string
	Company      string
	Contact      string
}

// BucketItem is one itemized contribution inside a bucket, kept for the
// audit commentary. Amount is signed.
type BucketItem struct {
	Number     string
	ID         string
	Amount     decimal.Decimal
	IsNegative bool
	Kind       ItemKind
}

// LedgerEntry is the per-contact aggregate of bucketed amounts and their
// itemized breakdown. Every bucket is zero-initialized on creation so a
// rendered row always has a value for every column.
type LedgerEntry struct {
	BusinessUnit string
	Company      string
	Contact      string

	BucketAmounts map[string]decimal.Decimal
	BucketItems   map[string][]BucketItem
}

// NewLedgerEntry creates an entry for a key with all buckets zeroed.
func NewLedgerEntry(key LedgerKey, bucketNames []string) *LedgerEntry {
	e := &LedgerEntry{
		BusinessUnit:  key.BusinessUnit,
		Company:       key.Company,
		Contact:       key.Contact,
		BucketAmounts: make(map[string]decimal.Decimal, len(bucketNames)),
		BucketItems:   make(map[string][]BucketItem, len(bucketNames)),
	}
	for _, name := range bucketNames {
		e.BucketAmounts[name] = decimal.Zero
		e.BucketItems[name] = nil
	}
	return e
}

// Total sums the entry's bucket amounts.
func (e *LedgerEntry) Total() decimal.Decimal {
	total := decimal.Zero
	for _, amt := range e.BucketAmounts {
		total = total.Add(amt)
	}
	return total
}

// FailureDescriptor records a connection whose fetch or reconcile step
// failed. Failures never abort the run; they accumulate alongside the result.
type FailureDescriptor struct {
	ConnectionID string `json:"connection_id"`
	Tenant       string `json:"tenant"`
	Reason       string `json:"reason"`
}
