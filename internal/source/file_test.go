package source

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agewise-dev/agewise/internal/model"
)

var fileConn = model.Connection{ID: 1, TenantID: "tenant-a", TenantName: "Acme Ltd", BusinessUnit: "Sydney"}

func snapshotFixture() Snapshot {
	return Snapshot{
		Connections: []model.Connection{fileConn},
		Tenants: map[string]TenantRecords{
			"tenant-a": {
				Invoices: []model.Invoice{
					{InvoiceNumber: "INV-1", Type: "ACCREC", Status: "AUTHORISED", Date: "2025-08-01T00:00:00", DueDate: "2025-08-15T00:00:00", AmountDue: 100},
					{InvoiceNumber: "INV-2", Type: "ACCREC", Status: "PAID", Date: "2025-08-05T00:00:00", DueDate: "2025-09-20T00:00:00"},
					{InvoiceNumber: "INV-3", Type: "ACCREC", Status: "PAID", Date: "2025-09-10T00:00:00", DueDate: "2025-09-25T00:00:00"},
					{InvoiceNumber: "INV-4", Type: "ACCREC", Status: "DRAFT", Date: "2025-08-01T00:00:00"},
					{InvoiceNumber: "BILL-1", Type: "ACCPAY", Status: "AUTHORISED", Date: "2025-08-01T00:00:00"},
				},
				CreditNotes: []model.CreditNote{
					{CreditNoteNumber: "CN-1", Status: "AUTHORISED", Date: "2025-08-10T00:00:00"},
					{CreditNoteNumber: "CN-2", Status: "AUTHORISED", Date: "2025-09-10T00:00:00"},
					{CreditNoteNumber: "CN-3", Status: "DRAFT", Date: "2025-08-10T00:00:00"},
				},
				Overpayments: []model.Overpayment{
					{OverpaymentID: "op-1", Status: "AUTHORISED", Date: "2025-08-10T00:00:00"},
					{OverpaymentID: "op-2", Status: "VOIDED", Date: "2025-08-10T00:00:00"},
				},
				BankTransactions: []model.BankTransaction{
					{BankTransactionID: "bt-1", Type: "RECEIVE-OVERPAYMENT", Status: "AUTHORISED", Date: "2025-08-10T00:00:00"},
					{BankTransactionID: "bt-2", Type: "RECEIVE-OVERPAYMENT", Status: "AUTHORISED", Date: "2025-08-10T00:00:00", IsReconciled: true},
					{BankTransactionID: "bt-3", Type: "SPEND", Status: "AUTHORISED", Date: "2025-08-10T00:00:00"},
				},
			},
		},
	}
}

var fileRD = time.Date(2025, 8, 31, 0, 0, 0, 0, time.UTC)

func invoiceNumbers(invoices []model.Invoice) []string {
	var out []string
	for _, inv := range invoices {
		out = append(out, inv.InvoiceNumber)
	}
	return out
}

func TestFileSource_OutstandingInvoices(t *testing.T) {
	fs := NewFileSource(snapshotFixture())

	got, err := fs.OutstandingInvoices(context.Background(), fileConn, fileRD, false)
	require.NoError(t, err)
	// Sales invoices issued on or before the report date, authorised or paid.
	assert.Equal(t, []string{"INV-1", "INV-2"}, invoiceNumbers(got))
}

func TestFileSource_OutstandingInvoicesFutureDate(t *testing.T) {
	fs := NewFileSource(snapshotFixture())

	got, err := fs.OutstandingInvoices(context.Background(), fileConn, time.Date(2025, 12, 31, 0, 0, 0, 0, time.UTC), true)
	require.NoError(t, err)
	// Only currently-authorised invoices with a balance owing.
	assert.Equal(t, []string{"INV-1"}, invoiceNumbers(got))
}

func TestFileSource_PaidInvoicesDueLater(t *testing.T) {
	fs := NewFileSource(snapshotFixture())

	got, err := fs.PaidInvoicesDueLater(context.Background(), fileConn, fileRD)
	require.NoError(t, err)
	assert.Equal(t, []string{"INV-2", "INV-3"}, invoiceNumbers(got))
}

func TestFileSource_InvoicesIssuedAfter(t *testing.T) {
	fs := NewFileSource(snapshotFixture())

	got, err := fs.InvoicesIssuedAfter(context.Background(), fileConn, fileRD)
	require.NoError(t, err)
	assert.Equal(t, []string{"INV-3"}, invoiceNumbers(got))
}

func TestFileSource_CreditNotes(t *testing.T) {
	fs := NewFileSource(snapshotFixture())

	got, err := fs.CreditNotes(context.Background(), fileConn, fileRD)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "CN-1", got[0].CreditNoteNumber)
}

func TestFileSource_Overpayments(t *testing.T) {
	fs := NewFileSource(snapshotFixture())

	got, err := fs.Overpayments(context.Background(), fileConn, fileRD)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "op-1", got[0].OverpaymentID)
}

func TestFileSource_BankTransactions(t *testing.T) {
	fs := NewFileSource(snapshotFixture())

	got, err := fs.BankTransactions(context.Background(), fileConn, fileRD)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "bt-1", got[0].BankTransactionID)
}

func TestFileSource_UnknownTenantIsEmpty(t *testing.T) {
	fs := NewFileSource(snapshotFixture())

	got, err := fs.OutstandingInvoices(context.Background(), model.Connection{TenantID: "nope"}, fileRD, false)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestLoadSnapshot(t *testing.T) {
	path := filepath.Join(t.TempDir(), "snapshot.json")
	require.NoError(t, os.WriteFile(path, []byte(`{
		"connections": [{"id": 1, "tenant_id": "tenant-a", "tenant_name": "Acme Ltd", "business_unit": "Sydney", "active": true}],
		"tenants": {
			"tenant-a": {
				"invoices": [{"InvoiceNumber": "INV-1", "Type": "ACCREC", "Status": "AUTHORISED", "Date": "2025-08-01T00:00:00", "Total": "100.50"}]
			}
		}
	}`), 0o644))

	fs, err := LoadSnapshot(path)
	require.NoError(t, err)

	conns := fs.Connections()
	require.Len(t, conns, 1)
	assert.Equal(t, "Acme Ltd", conns[0].TenantName)

	got, err := fs.OutstandingInvoices(context.Background(), conns[0], fileRD, false)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.InDelta(t, 100.50, float64(got[0].Total), 0.001)
}

func TestLoadSnapshot_BadFile(t *testing.T) {
	_, err := LoadSnapshot(filepath.Join(t.TempDir(), "missing.json"))
	require.Error(t, err)

	path := filepath.Join(t.TempDir(), "snapshot.json")
	require.NoError(t, os.WriteFile(path, []byte("{broken"), 0o644))
	_, err = LoadSnapshot(path)
	require.Error(t, err)
}
