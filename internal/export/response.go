package export

import (
	"fmt"
	"math"
	"time"

	"github.com/agewise-dev/agewise/internal/model"
	"github.com/agewise-dev/agewise/internal/report"
)

// BucketShare is one bucket's slice of the aging distribution.
type BucketShare struct {
	Amount     float64 `json:"amount"`
	Percentage float64 `json:"percentage"`
}

// Summary aggregates the whole report into headline numbers.
type Summary struct {
	TotalOutstanding   float64                `json:"total_outstanding"`
	CompaniesCount     int                    `json:"companies_count"`
	ContactsCount      int                    `json:"contacts_count"`
	HighestAgingBucket string                 `json:"highest_aging_bucket"`
	HighestAgingAmount float64                `json:"highest_aging_amount"`
	AgingDistribution  map[string]BucketShare `json:"aging_distribution"`
}

// TableResponse is the table-format API payload: every row as a column-keyed
// record plus the report summary.
type TableResponse struct {
	Format        string           `json:"format"`
	Data          []map[string]any `json:"data"`
	Columns       []string         `json:"columns"`
	Shape         [2]int           `json:"shape"`
	GeneratedAt   string           `json:"generated_at"`
	ReportDate    string           `json:"report_date"`
	TotalInvoices int              `json:"total_invoices"`
	Summary       Summary          `json:"summary"`
	ExcelFile     string           `json:"excel_file,omitempty"`
}

// ConnectionSummary reports how many connections the run covered.
type ConnectionSummary struct {
	TotalConnectionsAttempted int    `json:"total_connections_attempted"`
	SuccessfulConnections     int    `json:"successful_connections"`
	FailedConnectionsCount    int    `json:"failed_connections_count"`
	SuccessRate               string `json:"success_rate"`
}

// JSONResponse is the default API payload: run metadata and failures without
// the row data.
type JSONResponse struct {
	GeneratedAt       string                    `json:"generated_at"`
	TotalInvoices     int                       `json:"total_invoices"`
	FailedConnections []model.FailureDescriptor `json:"failed_connections"`
	ConnectionSummary ConnectionSummary         `json:"connection_summary"`
	ExcelFile         string                    `json:"excel_file,omitempty"`
}

// NewTableResponse renders a result and its table into the table payload.
func NewTableResponse(res *report.Result, table *Table) *TableResponse {
	columns := []string{"Business Unit", "Company", "Contact"}
	columns = append(columns, table.BucketNames...)
	columns = append(columns, "Total", "Invoice Breakdown")

	data := make([]map[string]any, 0, len(table.Rows))
	summary := Summary{
		AgingDistribution: make(map[string]BucketShare, len(table.BucketNames)),
	}
	bucketTotals := make(map[string]float64, len(table.BucketNames))
	companies := make(map[string]struct{})
	contacts := make(map[string]struct{})

	for _, row := range table.Rows {
		record := map[string]any{
			"Business Unit":     row.BusinessUnit,
			"Company":           row.Company,
			"Contact":           row.Contact,
			"Total":             row.Total.InexactFloat64(),
			"Invoice Breakdown": row.Commentary,
		}
		for _, name := range table.BucketNames {
			amount := row.Buckets[name].InexactFloat64()
			record[name] = amount
			bucketTotals[name] += amount
		}
		data = append(data, record)

		summary.TotalOutstanding += row.Total.InexactFloat64()
		companies[row.Company] = struct{}{}
		contacts[row.Contact] = struct{}{}
	}

	summary.CompaniesCount = len(companies)
	summary.ContactsCount = len(contacts)
	for _, name := range table.BucketNames {
		total := bucketTotals[name]
		if total > summary.HighestAgingAmount {
			summary.HighestAgingAmount = total
			summary.HighestAgingBucket = name
		}
		share := BucketShare{Amount: round2(total)}
		if summary.TotalOutstanding > 0 {
			share.Percentage = round1(total / summary.TotalOutstanding * 100)
		}
		summary.AgingDistribution[name] = share
	}
	summary.TotalOutstanding = round2(summary.TotalOutstanding)
	summary.HighestAgingAmount = round2(summary.HighestAgingAmount)

	return &TableResponse{
		Format:        "table",
		Data:          data,
		Columns:       columns,
		Shape:         [2]int{len(data), len(columns)},
		GeneratedAt:   res.ReportDate.Format(time.RFC3339),
		ReportDate:    res.ReportDate.Format("02 January 2006"),
		TotalInvoices: res.TotalInvoices,
		Summary:       summary,
	}
}

// NewJSONResponse renders a result into the metadata payload.
func NewJSONResponse(res *report.Result) *JSONResponse {
	failures := res.Failures
	if failures == nil {
		failures = []model.FailureDescriptor{}
	}
	cs := ConnectionSummary{
		TotalConnectionsAttempted: res.Attempted,
		SuccessfulConnections:     res.Succeeded,
		FailedConnectionsCount:    len(failures),
		SuccessRate:               "0%",
	}
	if res.Attempted > 0 {
		cs.SuccessRate = fmt.Sprintf("%.1f%%", float64(res.Succeeded)/float64(res.Attempted)*100)
	}
	return &JSONResponse{
		GeneratedAt:       res.ReportDate.Format(time.RFC3339),
		TotalInvoices:     res.TotalInvoices,
		FailedConnections: failures,
		ConnectionSummary: cs,
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
