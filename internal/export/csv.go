package export

import (
	"encoding/csv"
	"fmt"
	"io"
)

// WriteCSV writes the table as CSV: a header row, one row per contact, and a
// trailing totals row. Amounts use plain two-decimal strings so the file
// loads cleanly into spreadsheets and pipelines alike.
func WriteCSV(w io.Writer, table *Table) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	header := []string{"Business Unit", "Company", "Contact"}
	header = append(header, table.BucketNames...)
	header = append(header, "Total", "System Comments")
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	totals := make(map[string]float64, len(table.BucketNames))
	var grandTotal float64

	for i, row := range table.Rows {
		if !row.hasAmounts() {
			continue
		}
		rec := []string{row.BusinessUnit, row.Company, row.Contact}
		for _, name := range table.BucketNames {
			amount := row.Buckets[name]
			totals[name] += amount.InexactFloat64()
			rec = append(rec, amount.StringFixed(2))
		}
		grandTotal += row.Total.InexactFloat64()
		rec = append(rec, row.Total.StringFixed(2), row.Commentary)
		if err := cw.Write(rec); err != nil {
			return fmt.Errorf("writing row %d: %w", i+2, err)
		}
	}

	rec := []string{"Total", "", ""}
	for _, name := range table.BucketNames {
		rec = append(rec, fmt.Sprintf("%.2f", totals[name]))
	}
	rec = append(rec, fmt.Sprintf("%.2f", grandTotal), "")
	if err := cw.Write(rec); err != nil {
		return fmt.Errorf("writing totals row: %w", err)
	}

	return cw.Error()
}
