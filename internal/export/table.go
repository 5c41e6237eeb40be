// Package export renders a reconciled report into its delivery formats:
// tabular rows, summary responses, CSV, and the styled Excel workbook.
package export

import (
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/agewise-dev/agewise/internal/bucket"
	"github.com/agewise-dev/agewise/internal/commentary"
	"github.com/agewise-dev/agewise/internal/model"
	"github.com/agewise-dev/agewise/internal/report"
)

const combinedBucket = "Current & < 1 Month"

// Row is one rendered report line: fixed identity columns, one amount per
// display bucket, and the itemized commentary.
type Row struct {
	BusinessUnit string
	Company      string
	Contact      string
	Buckets      map[string]decimal.Decimal
	Total        decimal.Decimal
	Commentary   string
}

// Table is the rendered report: ordered display bucket names and one row per
// ledger entry, sorted by company then contact.
type Table struct {
	BucketNames []string
	Rows        []Row
}

// displayNames maps the scheme's bucket names to the display columns. With
// ShowCurrent off, Current and the first aged bucket collapse into one
// combined column.
func displayNames(s bucket.Scheme) []string {
	names := s.Names()
	if s.ShowCurrent {
		return names
	}
	display := make([]string, 0, len(names)-1)
	display = append(display, combinedBucket)
	display = append(display, names[2:]...)
	return display
}

// sourceBuckets returns the scheme bucket names feeding one display column.
func sourceBuckets(display string, s bucket.Scheme) []string {
	if display == combinedBucket {
		return s.Names()[:2]
	}
	return []string{display}
}

// BuildTable renders a report result into sorted display rows.
func BuildTable(res *report.Result) *Table {
	display := displayNames(res.Scheme)
	rows := make([]Row, 0, len(res.Entries))

	for _, entry := range res.Entries {
		row := Row{
			BusinessUnit: entry.BusinessUnit,
			Company:      entry.Company,
			Contact:      entry.Contact,
			Buckets:      make(map[string]decimal.Decimal, len(display)),
			Total:        entry.Total(),
		}

		items := make(map[string][]model.BucketItem, len(display))
		for _, name := range display {
			amount := decimal.Zero
			for _, src := range sourceBuckets(name, res.Scheme) {
				amount = amount.Add(entry.BucketAmounts[src])
				items[name] = append(items[name], entry.BucketItems[src]...)
			}
			row.Buckets[name] = amount
		}
		row.Commentary = commentary.Render(items, display)

		rows = append(rows, row)
	}

	sort.Slice(rows, func(i, j int) bool {
		ci, cj := strings.ToLower(rows[i].Company), strings.ToLower(rows[j].Company)
		if ci != cj {
			return ci < cj
		}
		return strings.ToLower(rows[i].Contact) < strings.ToLower(rows[j].Contact)
	})

	return &Table{BucketNames: display, Rows: rows}
}

// hasAmounts reports whether any column of the row is non-zero. All-zero
// rows are kept in responses but dropped from exported files.
func (r Row) hasAmounts() bool {
	if !r.Total.IsZero() {
		return true
	}
	for _, amt := range r.Buckets {
		if !amt.IsZero() {
			return true
		}
	}
	return false
}
