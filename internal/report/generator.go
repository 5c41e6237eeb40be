// Package report orchestrates one aged receivables run: resolving
// connections, fetching candidate records per connection, reconciling and
// aggregating them, and merging the per-connection results.
package report

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/agewise-dev/agewise/internal/bucket"
	"github.com/agewise-dev/agewise/internal/ledger"
	"github.com/agewise-dev/agewise/internal/model"
	"github.com/agewise-dev/agewise/internal/normalize"
	"github.com/agewise-dev/agewise/internal/reconcile"
)

// Source fetches candidate record sets from the accounting provider. It must
// return complete result sets or fail; pagination, auth, and caching are its
// concern.
type Source interface {
	OutstandingInvoices(ctx context.Context, conn model.Connection, reportDate time.Time, futureDate bool) ([]model.Invoice, error)
	PaidInvoicesDueLater(ctx context.Context, conn model.Connection, reportDate time.Time) ([]model.Invoice, error)
	InvoicesIssuedAfter(ctx context.Context, conn model.Connection, reportDate time.Time) ([]model.Invoice, error)
	CreditNotes(ctx context.Context, conn model.Connection, reportDate time.Time) ([]model.CreditNote, error)
	Overpayments(ctx context.Context, conn model.Connection, reportDate time.Time) ([]model.Overpayment, error)
	BankTransactions(ctx context.Context, conn model.Connection, reportDate time.Time) ([]model.BankTransaction, error)
}

// ConnectionStore resolves provider connections.
type ConnectionStore interface {
	ByID(ctx context.Context, id int) (model.Connection, error)
	ByTenantID(ctx context.Context, tenantID string) (model.Connection, error)
	AllActive(ctx context.Context) ([]model.Connection, error)
}

// Params configures one report run.
type Params struct {
	// ReportDate is "YYYY-MM-DD"; empty means today.
	ReportDate string
	// ConnectionIDs optionally restricts the run to a comma-separated list
	// of connection ids or tenant ids. Empty means all active connections.
	ConnectionIDs string
	Scheme        bucket.Scheme
}

// Result is the outcome of one report run.
type Result struct {
	Entries    ledger.Map
	Failures   []model.FailureDescriptor
	ReportDate time.Time
	FutureDate bool
	Scheme     bucket.Scheme

	TotalInvoices int
	Attempted     int
	Succeeded     int
}

// Generator wires the source collaborator and connection store to the pure
// computation core.
type Generator struct {
	source Source
	store  ConnectionStore
	log    *zap.Logger
	now    func() time.Time
}

// NewGenerator creates a Generator.
func NewGenerator(source Source, store ConnectionStore, log *zap.Logger) *Generator {
	return &Generator{source: source, store: store, log: log, now: time.Now}
}

// Generate runs a full report. An unparsable report date fails fast, before
// any connection is touched. A failure on one connection never aborts the
// others; it is recorded as a FailureDescriptor in the result.
func (g *Generator) Generate(ctx context.Context, p Params) (*Result, error) {
	reportDate, err := parseReportDate(p.ReportDate, g.now)
	if err != nil {
		return nil, err
	}
	future := reportDate.After(model.DateOnly(g.now()))

	conns, failures, err := g.resolveConnections(ctx, p.ConnectionIDs)
	if err != nil {
		return nil, err
	}
	if len(conns) == 0 && len(failures) == 0 {
		return nil, fmt.Errorf("no active connections found")
	}

	res := &Result{
		Entries:    make(ledger.Map),
		Failures:   failures,
		ReportDate: reportDate,
		FutureDate: future,
		Scheme:     p.Scheme,
		Attempted:  len(conns) + len(failures),
	}

	// Each connection reconciles into its own local map; the merge below is
	// the only step that touches shared state.
	type outcome struct {
		conn     model.Connection
		entries  ledger.Map
		invoices int
		err      error
	}
	results := make(chan outcome, len(conns))
	var wg sync.WaitGroup
	for _, conn := range conns {
		wg.Add(1)
		go func(conn model.Connection) {
			defer wg.Done()
			entries, invoices, err := g.processConnection(ctx, conn, reportDate, future, p.Scheme)
			results <- outcome{conn: conn, entries: entries, invoices: invoices, err: err}
		}(conn)
	}
	wg.Wait()
	close(results)

	for o := range results {
		if o.err != nil {
			g.log.Warn("connection failed",
				zap.String("tenant", o.conn.TenantName),
				zap.Error(o.err))
			res.Failures = append(res.Failures, model.FailureDescriptor{
				ConnectionID: strconv.Itoa(o.conn.ID),
				Tenant:       o.conn.TenantName,
				Reason:       o.err.Error(),
			})
			continue
		}
		ledger.Merge(res.Entries, o.entries)
		res.TotalInvoices += o.invoices
		res.Succeeded++
	}

	g.log.Info("report generated",
		zap.Time("report_date", reportDate),
		zap.Int("connections", res.Succeeded),
		zap.Int("failed", len(res.Failures)),
		zap.Int("invoices", res.TotalInvoices))
	return res, nil
}

// parseReportDate validates the report date up front; defaulting to today.
func parseReportDate(s string, now func() time.Time) (time.Time, error) {
	if s == "" {
		return model.DateOnly(now()), nil
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid report_date %q: use YYYY-MM-DD", s)
	}
	return model.DateOnly(t), nil
}

// resolveConnections turns the connection selector into connection records.
// Selector entries that cannot be resolved become failures, not fatal errors.
func (g *Generator) resolveConnections(ctx context.Context, selector string) ([]model.Connection, []model.FailureDescriptor, error) {
	if selector == "" {
		conns, err := g.store.AllActive(ctx)
		if err != nil {
			return nil, nil, fmt.Errorf("listing connections: %w", err)
		}
		return conns, nil, nil
	}

	var conns []model.Connection
	var failures []model.FailureDescriptor
	for _, part := range strings.Split(selector, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		var conn model.Connection
		var err error
		if id, convErr := strconv.Atoi(part); convErr == nil {
			conn, err = g.store.ByID(ctx, id)
		} else {
			conn, err = g.store.ByTenantID(ctx, part)
		}
		if err != nil {
			failures = append(failures, model.FailureDescriptor{
				ConnectionID: part,
				Tenant:       "Unknown",
				Reason:       err.Error(),
			})
			continue
		}
		conns = append(conns, conn)
	}
	return conns, failures, nil
}

// processConnection fetches, reconciles, and aggregates one connection's
// records into a local ledger map.
func (g *Generator) processConnection(ctx context.Context, conn model.Connection, reportDate time.Time, future bool, scheme bucket.Scheme) (ledger.Map, int, error) {
	outstanding, err := g.source.OutstandingInvoices(ctx, conn, reportDate, future)
	if err != nil {
		return nil, 0, fmt.Errorf("fetching outstanding invoices: %w", err)
	}

	var paidDueLater, issuedAfter []model.Invoice
	if !future {
		if paidDueLater, err = g.source.PaidInvoicesDueLater(ctx, conn, reportDate); err != nil {
			return nil, 0, fmt.Errorf("fetching paid invoices: %w", err)
		}
		if issuedAfter, err = g.source.InvoicesIssuedAfter(ctx, conn, reportDate); err != nil {
			return nil, 0, fmt.Errorf("fetching invoices issued after report date: %w", err)
		}
	}

	creditNotes, err := g.source.CreditNotes(ctx, conn, reportDate)
	if err != nil {
		return nil, 0, fmt.Errorf("fetching credit notes: %w", err)
	}
	overpayments, err := g.source.Overpayments(ctx, conn, reportDate)
	if err != nil {
		return nil, 0, fmt.Errorf("fetching overpayments: %w", err)
	}
	bankTxns, err := g.source.BankTransactions(ctx, conn, reportDate)
	if err != nil {
		return nil, 0, fmt.Errorf("fetching bank transactions: %w", err)
	}

	candidates := reconcile.Candidates{
		Outstanding:  normalizeInvoices(outstanding, reportDate),
		PaidDueLater: normalizeInvoices(paidDueLater, reportDate),
		IssuedAfter:  normalizeInvoices(issuedAfter, reportDate),
	}
	invoices := reconcile.Invoices(candidates, reportDate, future)

	entries := make(ledger.Map)
	for _, item := range invoices {
		entries.Add(item, g.keyFor(conn, item), scheme, reportDate)
	}
	for _, raw := range creditNotes {
		item := normalize.CreditNote(raw, reportDate)
		if item, ok := reconcile.CreditNote(item, reportDate); ok {
			entries.Add(item, g.keyFor(conn, item), scheme, reportDate)
		}
	}
	for _, raw := range overpayments {
		item := normalize.Overpayment(raw, reportDate)
		entries.Add(item, g.keyFor(conn, item), scheme, reportDate)
	}
	for _, raw := range bankTxns {
		item := normalize.BankTransaction(raw, reportDate)
		entries.Add(item, g.keyFor(conn, item), scheme, reportDate)
	}

	return entries, len(invoices), nil
}

func (g *Generator) keyFor(conn model.Connection, item model.FinancialItem) model.LedgerKey {
	return model.LedgerKey{
		BusinessUnit: conn.BusinessUnit,
		Company:      conn.TenantName,
		Contact:      item.Contact,
	}
}

func normalizeInvoices(raw []model.Invoice, reportDate time.Time) []model.FinancialItem {
	if len(raw) == 0 {
		return nil
	}
	items := make([]model.FinancialItem, 0, len(raw))
	for _, inv := range raw {
		items = append(items, normalize.Invoice(inv, reportDate))
	}
	return items
}
