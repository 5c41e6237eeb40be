// Package ledger folds reconciled financial items into per-contact bucketed
// totals. Add is a pure reducer over an entry map and Merge combines
// per-connection partial maps, so per-connection work can run in parallel
// and be folded afterwards without locking.
package ledger

import (
	"time"

	"github.com/agewise-dev/agewise/internal/bucket"
	"github.com/agewise-dev/agewise/internal/model"
)

// Map holds the report rows being built, one entry per ledger key.
type Map map[model.LedgerKey]*model.LedgerEntry

// Add posts one item's contribution to the entry for key, creating the entry
// with zeroed buckets on first sight. Items with nothing to contribute are
// ignored. Call order does not affect bucket sums, only the order of the
// itemized breakdown lists.
func (m Map) Add(item model.FinancialItem, key model.LedgerKey, scheme bucket.Scheme, reportDate time.Time) {
	if !item.Contributes() {
		return
	}

	entry, ok := m[key]
	if !ok {
		entry = model.NewLedgerEntry(key, scheme.Names())
		m[key] = entry
	}

	name := scheme.Classify(reportDate, item.ReferenceDate)
	amount := item.ReportedAmount
	if item.IsNegative {
		amount = amount.Neg()
	}
	entry.BucketAmounts[name] = entry.BucketAmounts[name].Add(amount)

	if item.Number != "" {
		entry.BucketItems[name] = append(entry.BucketItems[name], model.BucketItem{
			Number:     item.Number,
			ID:         item.ID,
			Amount:     amount,
			IsNegative: item.IsNegative,
			Kind:       item.Kind,
		})
	}
}

// Merge folds src into dst, summing bucket amounts for matching keys and
// concatenating itemized breakdowns. Run it single-threaded after all
// per-connection maps are complete.
func Merge(dst, src Map) {
	for key, se := range src {
		de, ok := dst[key]
		if !ok {
			dst[key] = se
			continue
		}
		for name, amt := range se.BucketAmounts {
			de.BucketAmounts[name] = de.BucketAmounts[name].Add(amt)
		}
		for name, items := range se.BucketItems {
			de.BucketItems[name] = append(de.BucketItems[name], items...)
		}
	}
}
