package source

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/agewise-dev/agewise/internal/model"
)

// Snapshot is a JSON export of current-state records keyed by tenant id,
// with the connection metadata the report needs. It lets reports run offline
// from a captured data set and backs the end-to-end tests.
type Snapshot struct {
	Connections []model.Connection       `json:"connections"`
	Tenants     map[string]TenantRecords `json:"tenants"`
}

// TenantRecords holds one tenant's raw record sets.
type TenantRecords struct {
	Invoices         []model.Invoice         `json:"invoices"`
	CreditNotes      []model.CreditNote      `json:"credit_notes"`
	Overpayments     []model.Overpayment     `json:"overpayments"`
	BankTransactions []model.BankTransaction `json:"bank_transactions"`
}

// FileSource serves records from a snapshot file, applying the same
// candidate filters the provider queries would.
type FileSource struct {
	snapshot Snapshot
}

// LoadSnapshot reads a snapshot file into a FileSource.
func LoadSnapshot(path string) (*FileSource, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading snapshot: %w", err)
	}
	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("parsing snapshot: %w", err)
	}
	return &FileSource{snapshot: snap}, nil
}

// NewFileSource creates a FileSource from an in-memory snapshot.
func NewFileSource(snap Snapshot) *FileSource {
	return &FileSource{snapshot: snap}
}

// Connections returns the connection metadata captured in the snapshot.
func (f *FileSource) Connections() []model.Connection {
	return f.snapshot.Connections
}

func (f *FileSource) records(conn model.Connection) TenantRecords {
	return f.snapshot.Tenants[conn.TenantID]
}

func (f *FileSource) OutstandingInvoices(_ context.Context, conn model.Connection, reportDate time.Time, futureDate bool) ([]model.Invoice, error) {
	rd := model.DateOnly(reportDate)
	var out []model.Invoice
	for _, inv := range f.records(conn).Invoices {
		if inv.Type != "ACCREC" {
			continue
		}
		issue := model.ParseDate(inv.Date)
		if issue.IsZero() || issue.After(rd) {
			continue
		}
		if futureDate {
			if inv.Status == "AUTHORISED" && inv.AmountDue > 0 {
				out = append(out, inv)
			}
			continue
		}
		if inv.Status == "AUTHORISED" || inv.Status == "PAID" {
			out = append(out, inv)
		}
	}
	return out, nil
}

func (f *FileSource) PaidInvoicesDueLater(_ context.Context, conn model.Connection, reportDate time.Time) ([]model.Invoice, error) {
	rd := model.DateOnly(reportDate)
	var out []model.Invoice
	for _, inv := range f.records(conn).Invoices {
		if inv.Type != "ACCREC" || inv.Status != "PAID" {
			continue
		}
		if due := model.ParseDate(inv.DueDate); due.After(rd) {
			out = append(out, inv)
		}
	}
	return out, nil
}

func (f *FileSource) InvoicesIssuedAfter(_ context.Context, conn model.Connection, reportDate time.Time) ([]model.Invoice, error) {
	rd := model.DateOnly(reportDate)
	var out []model.Invoice
	for _, inv := range f.records(conn).Invoices {
		if inv.Type != "ACCREC" {
			continue
		}
		if inv.Status != "AUTHORISED" && inv.Status != "PAID" {
			continue
		}
		if issue := model.ParseDate(inv.Date); issue.After(rd) {
			out = append(out, inv)
		}
	}
	return out, nil
}

func (f *FileSource) CreditNotes(_ context.Context, conn model.Connection, reportDate time.Time) ([]model.CreditNote, error) {
	rd := model.DateOnly(reportDate)
	var out []model.CreditNote
	for _, cn := range f.records(conn).CreditNotes {
		if cn.Status != "AUTHORISED" && cn.Status != "PAID" {
			continue
		}
		if date := model.ParseDate(cn.Date); !date.IsZero() && !date.After(rd) {
			out = append(out, cn)
		}
	}
	return out, nil
}

func (f *FileSource) Overpayments(_ context.Context, conn model.Connection, reportDate time.Time) ([]model.Overpayment, error) {
	rd := model.DateOnly(reportDate)
	var out []model.Overpayment
	for _, op := range f.records(conn).Overpayments {
		if op.Status != "AUTHORISED" {
			continue
		}
		if date := model.ParseDate(op.Date); !date.IsZero() && !date.After(rd) {
			out = append(out, op)
		}
	}
	return out, nil
}

func (f *FileSource) BankTransactions(_ context.Context, conn model.Connection, reportDate time.Time) ([]model.BankTransaction, error) {
	rd := model.DateOnly(reportDate)
	var out []model.BankTransaction
	for _, bt := range f.records(conn).BankTransactions {
		if bt.Type != "RECEIVE-OVERPAYMENT" || bt.Status != "AUTHORISED" || bt.IsReconciled {
			continue
		}
		if date := model.ParseDate(bt.Date); !date.IsZero() && !date.After(rd) {
			out = append(out, bt)
		}
	}
	return out, nil
}
