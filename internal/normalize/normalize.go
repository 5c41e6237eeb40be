// Package normalize converts the provider's heterogeneous raw records into
// the canonical FinancialItem shape. Malformed or missing optional fields
// resolve through fallback chains; nothing here returns an error.
package normalize

import (
	"time"

	"github.com/agewise-dev/agewise/internal/model"
)

// Invoice normalizes a raw sales invoice. The reported amount starts as the
// current amount due; the reconciler may override it later. The reference
// date is the due date unless the invoice carries allocations with an issue
// date, and falls back to the supplied date (typically the report date) when
// both are absent.
func Invoice(raw model.Invoice, fallback time.Time) model.FinancialItem {
	item := model.FinancialItem{
		Kind:            model.KindInvoice,
		Number:          raw.InvoiceNumber,
		ID:              raw.InvoiceID,
		Contact:         raw.Contact.DisplayName(),
		IssueDate:       model.ParseDate(raw.Date),
		DueDate:         model.ParseDate(raw.DueDate),
		PaymentDate:     model.ParseDate(raw.FullyPaidOnDate),
		AmountDue:       raw.AmountDue.Decimal(),
		TotalAmount:     raw.Total.Decimal(),
		AmountPaid:      raw.AmountPaid.Decimal(),
		Status:          raw.Status,
		Allocations:     allocationEvents(raw.Allocations),
		Payments:        paymentEvents(raw.Payments),
		UpdatedAt:       model.ParseDate(raw.UpdatedDateUTC),
		CreditNoteDates: creditNoteDates(raw.CreditNotes),
	}
	item.ReportedAmount = item.AmountDue
	item.ReferenceDate = referenceDate(item, raw.Date, raw.DueDate, fallback)
	return item
}

// CreditNote normalizes a raw credit note. Credit notes reduce receivables,
// so the contribution sign is negative. The reported amount is the remaining
// credit; the reconciliation filter may override it for notes completed
// after the report date.
func CreditNote(raw model.CreditNote, fallback time.Time) model.FinancialItem {
	item := model.FinancialItem{
		Kind:        model.KindCreditNote,
		Number:      raw.CreditNoteNumber,
		ID:          raw.CreditNoteID,
		Contact:     raw.Contact.DisplayName(),
		IssueDate:   model.ParseDate(raw.Date),
		DueDate:     model.ParseDate(raw.DueDate),
		PaymentDate: model.ParseDate(raw.FullyPaidOnDate),
		AmountDue:   raw.RemainingCredit.Decimal(),
		TotalAmount: raw.Total.Decimal(),
		Status:      raw.Status,
		Allocations: allocationEvents(raw.Allocations),
		Payments:    paymentEvents(raw.Payments),
		IsNegative:  true,
	}
	item.ReportedAmount = item.AmountDue
	item.ReferenceDate = referenceDate(item, raw.Date, raw.DueDate, fallback)
	return item
}

// Overpayment normalizes a raw overpayment. Only the overpayment id is
// available as a display identifier.
func Overpayment(raw model.Overpayment, fallback time.Time) model.FinancialItem {
	item := model.FinancialItem{
		Kind:        model.KindOverpayment,
		Number:      raw.OverpaymentID,
		ID:          raw.OverpaymentID,
		Contact:     raw.Contact.DisplayName(),
		IssueDate:   model.ParseDate(raw.Date),
		AmountDue:   raw.RemainingCredit.Decimal(),
		Status:      raw.Status,
		Allocations: allocationEvents(raw.Allocations),
		IsNegative:  true,
	}
	item.ReportedAmount = item.AmountDue
	item.ReferenceDate = referenceDate(item, raw.Date, "", fallback)
	return item
}

// BankTransaction normalizes an unreconciled receive-overpayment bank line.
// The provider records these as positive amounts; downstream they always
// post as credits. The short display number is the first 8 characters of
// the transaction id.
func BankTransaction(raw model.BankTransaction, fallback time.Time) model.FinancialItem {
	number := raw.BankTransactionID
	if len(number) > 8 {
		number = number[:8]
	}
	item := model.FinancialItem{
		Kind:       model.KindBankTransaction,
		Number:     number,
		ID:         raw.BankTransactionID,
		Contact:    raw.Contact.DisplayName(),
		IssueDate:  model.ParseDate(raw.Date),
		AmountDue:  raw.Total.Decimal(),
		Status:     raw.Status,
		IsNegative: true,
	}
	item.ReportedAmount = item.AmountDue
	item.ReferenceDate = referenceDate(item, raw.Date, "", fallback)
	return item
}

// referenceDate selects the date the bucket classifier uses, in priority
// order: the record's own date when allocations exist, the due date for
// invoices and for credit notes without allocations, the record's own date,
// and finally the caller-supplied fallback.
func referenceDate(item model.FinancialItem, rawDate, rawDueDate string, fallback time.Time) time.Time {
	ownDate := model.ParseDate(rawDate)
	dueDate := model.ParseDate(rawDueDate)

	var ref time.Time
	switch {
	case len(item.Allocations) > 0 && !ownDate.IsZero():
		ref = ownDate
	case item.Kind == model.KindInvoice:
		ref = dueDate
	case item.Kind == model.KindCreditNote && !dueDate.IsZero():
		ref = dueDate
	default:
		ref = ownDate
	}

	if ref.IsZero() {
		ref = model.DateOnly(fallback)
	}
	return ref
}

func paymentEvents(raw []model.Payment) []model.PaymentEvent {
	if len(raw) == 0 {
		return nil
	}
	events := make([]model.PaymentEvent, 0, len(raw))
	for _, p := range raw {
		d := model.ParseDate(p.Date)
		if d.IsZero() {
			// Unparsable payment dates are dropped, matching the
			// provider's own report behavior.
			continue
		}
		events = append(events, model.PaymentEvent{Date: d, Amount: p.Amount.Decimal()})
	}
	return events
}

func allocationEvents(raw []model.Allocation) []model.AllocationEvent {
	if len(raw) == 0 {
		return nil
	}
	events := make([]model.AllocationEvent, 0, len(raw))
	for _, a := range raw {
		d := model.ParseDate(a.Date)
		if d.IsZero() {
			continue
		}
		events = append(events, model.AllocationEvent{Date: d, Amount: a.Amount.Decimal()})
	}
	return events
}

func creditNoteDates(refs []model.CreditNoteRef) []time.Time {
	if len(refs) == 0 {
		return nil
	}
	dates := make([]time.Time, 0, len(refs))
	for _, r := range refs {
		if d := model.ParseDate(r.Date); !d.IsZero() {
			dates = append(dates, d)
		}
	}
	return dates
}
