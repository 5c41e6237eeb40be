// Package runlog keeps an append-only CSV history of report runs, one row
// per run, next to the generated output files.
package runlog

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// Entry is one row in the run log.
type Entry struct {
	Timestamp   time.Time
	ReportDate  string
	Connections int
	Failed      int
	Invoices    int
	Duration    time.Duration
	ExcelFile   string
}

// Header is the CSV header for run-log.csv.
const Header = "timestamp,report_date,connections,failed,invoices,duration_ms,excel_file"

const (
	numFields    = 7
	logFile      = "run-log.csv"
	colTimestamp = 0
	colDate      = 1
	colConns     = 2
	colFailed    = 3
	colInvoices  = 4
	colDuration  = 5
	colExcel     = 6
)

// MarshalEntry converts an Entry to a CSV row.
func MarshalEntry(e Entry) []string {
	row := make([]string, numFields)
	row[colTimestamp] = e.Timestamp.Format(time.RFC3339)
	row[colDate] = e.ReportDate
	row[colConns] = strconv.Itoa(e.Connections)
	row[colFailed] = strconv.Itoa(e.Failed)
	row[colInvoices] = strconv.Itoa(e.Invoices)
	row[colDuration] = strconv.FormatInt(e.Duration.Milliseconds(), 10)
	row[colExcel] = e.ExcelFile
	return row
}

// UnmarshalEntry converts a CSV row to an Entry.
func UnmarshalEntry(record []string) (Entry, error) {
	if len(record) != numFields {
		return Entry{}, fmt.Errorf("expected %d fields, got %d", numFields, len(record))
	}

	ts, err := time.Parse(time.RFC3339, record[colTimestamp])
	if err != nil {
		return Entry{}, fmt.Errorf("parsing timestamp %q: %w", record[colTimestamp], err)
	}
	conns, err := strconv.Atoi(record[colConns])
	if err != nil {
		return Entry{}, fmt.Errorf("parsing connections %q: %w", record[colConns], err)
	}
	failed, err := strconv.Atoi(record[colFailed])
	if err != nil {
		return Entry{}, fmt.Errorf("parsing failed %q: %w", record[colFailed], err)
	}
	invoices, err := strconv.Atoi(record[colInvoices])
	if err != nil {
		return Entry{}, fmt.Errorf("parsing invoices %q: %w", record[colInvoices], err)
	}
	ms, err := strconv.ParseInt(record[colDuration], 10, 64)
	if err != nil {
		return Entry{}, fmt.Errorf("parsing duration %q: %w", record[colDuration], err)
	}

	return Entry{
		Timestamp:   ts,
		ReportDate:  record[colDate],
		Connections: conns,
		Failed:      failed,
		Invoices:    invoices,
		Duration:    time.Duration(ms) * time.Millisecond,
		ExcelFile:   record[colExcel],
	}, nil
}

// Append writes entries to <dir>/run-log.csv, creating the file and header
// if needed.
func Append(dir string, entries []Entry) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating log dir: %w", err)
	}

	path := filepath.Join(dir, logFile)
	needsHeader := false
	if _, err := os.Stat(path); os.IsNotExist(err) {
		needsHeader = true
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("opening run log: %w", err)
	}
	defer f.Close()

	cw := csv.NewWriter(f)
	defer cw.Flush()

	if needsHeader {
		if err := cw.Write(strings.Split(Header, ",")); err != nil {
			return fmt.Errorf("writing header: %w", err)
		}
	}

	for i, e := range entries {
		if err := cw.Write(MarshalEntry(e)); err != nil {
			return fmt.Errorf("writing entry %d: %w", i, err)
		}
	}

	return cw.Error()
}

// Read returns all entries from <dir>/run-log.csv. Returns an empty slice if
// the file does not exist.
func Read(dir string) ([]Entry, error) {
	f, err := os.Open(filepath.Join(dir, logFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("opening run log: %w", err)
	}
	defer f.Close()

	return readEntries(f)
}

func readEntries(r io.Reader) ([]Entry, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = numFields

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading run log CSV: %w", err)
	}

	if len(records) <= 1 {
		return nil, nil
	}

	var entries []Entry
	for i, rec := range records[1:] {
		e, err := UnmarshalEntry(rec)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		entries = append(entries, e)
	}
	return entries, nil
}
