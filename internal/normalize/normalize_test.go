package normalize

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agewise-dev/agewise/internal/model"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

var fallback = date(2025, 8, 31)

func TestInvoice_Basic(t *testing.T) {
	raw := model.Invoice{
		InvoiceNumber:   "INV-0042",
		InvoiceID:       "b3f1",
		Status:          "AUTHORISED",
		Date:            "2025-07-01",
		DueDate:         "2025-07-31",
		FullyPaidOnDate: "",
		AmountDue:       150.25,
		Total:           200,
		AmountPaid:      49.75,
		Contact:         model.Contact{Name: "Acme Pty Ltd"},
	}

	item := Invoice(raw, fallback)
	assert.Equal(t, model.KindInvoice, item.Kind)
	assert.Equal(t, "INV-0042", item.Number)
	assert.Equal(t, "Acme Pty Ltd", item.Contact)
	assert.Equal(t, date(2025, 7, 1), item.IssueDate)
	assert.Equal(t, date(2025, 7, 31), item.DueDate)
	assert.True(t, item.PaymentDate.IsZero())
	assert.Equal(t, "150.25", item.AmountDue.StringFixed(2))
	assert.Equal(t, "150.25", item.ReportedAmount.StringFixed(2))
	assert.False(t, item.IsNegative)
	// Invoices bucket on the due date.
	assert.Equal(t, date(2025, 7, 31), item.ReferenceDate)
}

func TestInvoice_MissingContact(t *testing.T) {
	item := Invoice(model.Invoice{Date: "2025-07-01", DueDate: "2025-07-31"}, fallback)
	assert.Equal(t, "Unknown Contact", item.Contact)
}

func TestInvoice_ReferenceDateFallback(t *testing.T) {
	// No due date, no allocations: the caller-supplied fallback wins.
	item := Invoice(model.Invoice{}, fallback)
	assert.Equal(t, fallback, item.ReferenceDate)
}

func TestInvoice_AllocationsUseOwnDate(t *testing.T) {
	raw := model.Invoice{
		Date:        "2025-07-01",
		DueDate:     "2025-07-31",
		Allocations: []model.Allocation{{Date: "2025-07-10", Amount: 25}},
	}
	item := Invoice(raw, fallback)
	assert.Equal(t, date(2025, 7, 1), item.ReferenceDate)
}

func TestInvoice_DropsUnparsablePaymentDates(t *testing.T) {
	raw := model.Invoice{
		Date:    "2025-07-01",
		DueDate: "2025-07-31",
		Payments: []model.Payment{
			{Date: "2025-07-15", Amount: 50},
			{Date: "garbage", Amount: 10},
		},
	}
	item := Invoice(raw, fallback)
	require.Len(t, item.Payments, 1)
	assert.Equal(t, date(2025, 7, 15), item.Payments[0].Date)
}

func TestCreditNote_NegativeByDefault(t *testing.T) {
	raw := model.CreditNote{
		CreditNoteNumber: "CN-0007",
		CreditNoteID:     "c9d2",
		Status:           "AUTHORISED",
		Date:             "2025-06-15",
		RemainingCredit:  80,
		Total:            100,
	}
	item := CreditNote(raw, fallback)
	assert.Equal(t, model.KindCreditNote, item.Kind)
	assert.True(t, item.IsNegative)
	assert.Equal(t, "80.00", item.ReportedAmount.StringFixed(2))
	// Without a due date the note buckets on its own issue date.
	assert.Equal(t, date(2025, 6, 15), item.ReferenceDate)
}

func TestCreditNote_DueDateWins(t *testing.T) {
	raw := model.CreditNote{Date: "2025-06-15", DueDate: "2025-06-30"}
	item := CreditNote(raw, fallback)
	assert.Equal(t, date(2025, 6, 30), item.ReferenceDate)
}

func TestOverpayment(t *testing.T) {
	raw := model.Overpayment{
		OverpaymentID:   "op-1234",
		Status:          "AUTHORISED",
		Date:            "2025-08-01",
		RemainingCredit: 45.5,
	}
	item := Overpayment(raw, fallback)
	assert.Equal(t, model.KindOverpayment, item.Kind)
	assert.Equal(t, "op-1234", item.Number)
	assert.True(t, item.IsNegative)
	assert.Equal(t, date(2025, 8, 1), item.ReferenceDate)
}

func TestBankTransaction_ShortNumber(t *testing.T) {
	raw := model.BankTransaction{
		BankTransactionID: "abcdef1234567890",
		Type:              "RECEIVE-OVERPAYMENT",
		Status:            "AUTHORISED",
		Date:              "2025-08-10",
		Total:             300,
	}
	item := BankTransaction(raw, fallback)
	assert.Equal(t, model.KindBankTransaction, item.Kind)
	assert.Equal(t, "abcdef12", item.Number)
	assert.Equal(t, "abcdef1234567890", item.ID)
	assert.True(t, item.IsNegative)
	assert.Equal(t, "300.00", item.ReportedAmount.StringFixed(2))
}
