// Package source fetches candidate records from the accounting provider.
// It owns pagination, authentication headers, retries, and caching; the
// computation core only sees complete result sets.
package source

import (
	"context"
	"time"

	"github.com/agewise-dev/agewise/internal/model"
)

// Fetcher is the record-fetching contract the report generator consumes.
// The HTTP client, the cache decorator, and the file snapshot source all
// implement it.
type Fetcher interface {
	OutstandingInvoices(ctx context.Context, conn model.Connection, reportDate time.Time, futureDate bool) ([]model.Invoice, error)
	PaidInvoicesDueLater(ctx context.Context, conn model.Connection, reportDate time.Time) ([]model.Invoice, error)
	InvoicesIssuedAfter(ctx context.Context, conn model.Connection, reportDate time.Time) ([]model.Invoice, error)
	CreditNotes(ctx context.Context, conn model.Connection, reportDate time.Time) ([]model.CreditNote, error)
	Overpayments(ctx context.Context, conn model.Connection, reportDate time.Time) ([]model.Overpayment, error)
	BankTransactions(ctx context.Context, conn model.Connection, reportDate time.Time) ([]model.BankTransaction, error)
}

// CacheTTL picks how long fetched record sets stay cached. Positions near
// today move as payments land, so they expire quickly; positions deep in the
// past are effectively settled history.
func CacheTTL(reportDate, now time.Time) time.Duration {
	today := model.DateOnly(now)
	rd := model.DateOnly(reportDate)
	switch {
	case !rd.Before(today):
		return time.Hour
	case rd.After(today.AddDate(0, 0, -31)):
		return 24 * time.Hour
	default:
		return 7 * 24 * time.Hour
	}
}
