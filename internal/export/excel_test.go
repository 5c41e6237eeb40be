package export

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/agewise-dev/agewise/internal/bucket"
)

func TestWriteExcel(t *testing.T) {
	res := testResult(bucket.Default())
	table := BuildTable(res)

	path, err := WriteExcel(res, table, t.TempDir())
	require.NoError(t, err)
	assert.Regexp(t, `aged_receivables_report_\d{8}_\d{6}\.xlsx$`, path)

	f, err := excelize.OpenFile(path, excelize.Options{RawCellValue: true})
	require.NoError(t, err)
	defer f.Close()

	get := func(cell string) string {
		v, err := f.GetCellValue("Aged Receivables", cell)
		require.NoError(t, err)
		return v
	}

	assert.Equal(t, "Aged Receivables Summary", get("A1"))
	assert.Equal(t, "As at 31 August 2025", get("A2"))
	assert.Equal(t, "Ageing by due date", get("A3"))

	// Header row.
	assert.Equal(t, "Business Unit", get("A4"))
	assert.Equal(t, "Current", get("D4"))
	assert.Equal(t, "Total", get("J4"))
	assert.Equal(t, "System Comments", get("L4"))

	// Data rows, sorted by company.
	assert.Equal(t, "alpha Ltd", get("B5"))
	assert.Equal(t, "100", get("D5"))
	assert.Equal(t, "Beta Pty", get("B6"))

	// Totals then percentage rows.
	assert.Equal(t, "Total", get("A7"))
	assert.Equal(t, "225", get("J7"))
	assert.Equal(t, "Percentage", get("A8"))
	assert.Equal(t, "1", get("J8"))
}

func TestWriteExcel_SkipsZeroRows(t *testing.T) {
	res := testResult(bucket.Default())
	table := BuildTable(res)
	table.Rows = append(table.Rows, Row{
		BusinessUnit: "Sydney",
		Company:      "Empty Co",
		Contact:      "Nobody",
		Buckets:      zeroBuckets(table.BucketNames),
	})

	path, err := WriteExcel(res, table, t.TempDir())
	require.NoError(t, err)

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("Aged Receivables")
	require.NoError(t, err)
	for _, row := range rows {
		if len(row) > 1 {
			assert.NotEqual(t, "Empty Co", row[1])
		}
	}
}
