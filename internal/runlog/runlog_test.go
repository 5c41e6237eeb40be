package runlog

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testEntry(reportDate string) Entry {
	return Entry{
		Timestamp:   time.Date(2025, 8, 31, 10, 30, 0, 0, time.UTC),
		ReportDate:  reportDate,
		Connections: 3,
		Failed:      1,
		Invoices:    142,
		Duration:    2300 * time.Millisecond,
		ExcelFile:   "tmp/aged_receivables_report_20250831_103002.xlsx",
	}
}

func TestMarshalUnmarshalEntry(t *testing.T) {
	e := testEntry("2025-08-31")

	row := MarshalEntry(e)
	assert.Equal(t, "2025-08-31T10:30:00Z", row[0])
	assert.Equal(t, "2300", row[5])

	got, err := UnmarshalEntry(row)
	require.NoError(t, err)
	assert.Equal(t, e, got)
}

func TestUnmarshalEntry_BadRows(t *testing.T) {
	_, err := UnmarshalEntry([]string{"too", "short"})
	require.Error(t, err)

	row := MarshalEntry(testEntry("2025-08-31"))
	row[2] = "many"
	_, err = UnmarshalEntry(row)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parsing connections")
}

func TestAppendRead(t *testing.T) {
	dir := t.TempDir()

	require.NoError(t, Append(dir, []Entry{testEntry("2025-08-31")}))
	require.NoError(t, Append(dir, []Entry{testEntry("2025-07-31")}))

	entries, err := Read(dir)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "2025-08-31", entries[0].ReportDate)
	assert.Equal(t, "2025-07-31", entries[1].ReportDate)

	// Header written once.
	data, err := os.ReadFile(filepath.Join(dir, "run-log.csv"))
	require.NoError(t, err)
	assert.Equal(t, 1, strings.Count(string(data), "timestamp,report_date"))
}

func TestRead_MissingFile(t *testing.T) {
	entries, err := Read(t.TempDir())
	require.NoError(t, err)
	assert.Empty(t, entries)
}
