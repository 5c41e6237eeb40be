// Package reconcile decides, per current-state record, whether it belongs in
// a report as of an arbitrary report date, with what sign, and at what
// amount. Upstream records reflect today's status, so a historical position
// has to be inferred from issue, due, and payment evidence.
package reconcile

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/agewise-dev/agewise/internal/model"
)

// Decision is one reconciliation outcome for an invoice.
type Decision struct {
	Include  bool
	Negative bool
	Amount   decimal.Decimal
}

// Candidates are the three invoice sets fetched with kind-specific filters:
// Outstanding holds authorised-or-paid invoices issued on or before the
// report date, PaidDueLater holds currently-paid invoices whose due date is
// after the report date, and IssuedAfter holds invoices issued after the
// report date (candidates for payment ahead of issuance).
type Candidates struct {
	Outstanding  []model.FinancialItem
	PaidDueLater []model.FinancialItem
	IssuedAfter  []model.FinancialItem
}

// Invoices reconciles all candidate invoices against the report date and
// returns the items that belong in the report, reported amounts and signs
// already applied.
func Invoices(c Candidates, reportDate time.Time, futureDate bool) []model.FinancialItem {
	reportDate = model.DateOnly(reportDate)
	var out []model.FinancialItem

	if futureDate {
		// Nothing after a future report date has happened yet, so the
		// current state is already the point-in-time state.
		for _, item := range c.Outstanding {
			if item.Status == StatusAuthorised &&
				item.AmountDue.IsPositive() &&
				onOrBefore(item.IssueDate, reportDate) {
				out = append(out, item)
			}
		}
		return out
	}

	for _, item := range c.Outstanding {
		d := decideOutstanding(item, reportDate)
		if d.Include {
			out = append(out, item.WithOverride(d.Amount, d.Negative))
		}
	}
	for _, item := range c.PaidDueLater {
		if includePaidDueLater(item, reportDate) {
			out = append(out, item)
		}
	}
	for _, item := range c.IssuedAfter {
		if d, ok := decideIssuedAfter(item, reportDate); ok {
			out = append(out, item.WithOverride(d.Amount, d.Negative))
		}
	}
	return out
}

// Upstream lifecycle labels.
const (
	StatusAuthorised = "AUTHORISED"
	StatusPaid       = "PAID"
)

// decideOutstanding applies the ordered decision table to one Set-A invoice.
// The rules overlap deliberately; the first satisfied rule wins and the order
// must not change, because reference behavior depends on it.
func decideOutstanding(item model.FinancialItem, rd time.Time) Decision {
	issue := item.IssueDate
	due := item.DueDate
	paid := resolvePaymentDate(item, rd)
	amountDue := item.AmountDue
	total := item.TotalAmount

	exclude := Decision{}
	include := func(amount decimal.Decimal, negative bool) Decision {
		return Decision{Include: true, Negative: negative, Amount: amount}
	}

	switch {
	// Rule 1: paid before the report date but not yet due; shown only if a
	// balance was still owing.
	case onOrBefore(issue, rd) && onOrBefore(paid, rd) && after(due, rd):
		if amountDue.IsPositive() {
			return include(amountDue, false)
		}
		return exclude

	// Rule 2: paid and due before the report date, nothing owing.
	case onOrBefore(issue, rd) && onOrBefore(paid, rd) && onOrBefore(due, rd) && amountDue.IsZero():
		return exclude

	// Rule 3: issued but unpaid as of the report date, due later: Current.
	case onOrBefore(issue, rd) && (paid.IsZero() || paid.After(rd)) && after(due, rd):
		if creditNoteAfter(item, rd) {
			return include(total, false)
		}
		if amountDue.IsPositive() {
			return include(amountDue, false)
		}
		return include(total, false)

	// Rule 4: issued after the report date yet already paid: a credit.
	case after(issue, rd) && onOrBefore(paid, rd) && onOrAfter(due, rd):
		return include(total, true)

	// Rule 5: fully settled before the report date.
	case onOrBefore(issue, rd) && onOrBefore(paid, rd) && amountDue.IsZero():
		return exclude

	// Rule 6: paid only after the report date, so it was still owed then.
	// The amount owed is reconstructed from the post-report payments plus
	// today's balance.
	case onOrBefore(issue, rd) && !paid.IsZero() && paid.After(rd):
		if len(item.Payments) > 0 {
			owed := decimal.Zero
			for _, p := range item.Payments {
				if p.Date.After(rd) {
					owed = owed.Add(p.Amount)
				}
			}
			owed = owed.Add(amountDue)
			if owed.IsPositive() {
				return include(owed, false)
			}
		}
		if amountDue.IsZero() {
			return include(total, false)
		}
		return include(amountDue, false)

	// Rule 7: overdue with partial payments; the open balance is shown.
	case onOrBefore(issue, rd) && onOrBefore(due, rd) && item.AmountPaid.IsPositive() && amountDue.IsPositive():
		return include(amountDue, false)

	// Rule 8: outstanding as of the report date with no payment evidence.
	case onOrBefore(issue, rd) && (paid.IsZero() || paid.After(rd)):
		if amountDue.IsPositive() {
			return include(amountDue, false)
		}
		return include(total, false)

	// Rule 9: paid exactly on the report date.
	case onOrBefore(issue, rd) && !paid.IsZero() && paid.Equal(rd):
		return exclude

	// Rule 10: paid on or before the report date (catch-all).
	case onOrBefore(issue, rd) && onOrBefore(paid, rd):
		return exclude
	}

	return exclude
}

// resolvePaymentDate reconstructs when an invoice was paid, in priority
// order: the explicit completion timestamp, the latest individual payment
// record, the last-modified timestamp when money was received but no date
// survives, and finally the issue date for old invoices that are evidently
// settled. Returns zero when no evidence exists.
func resolvePaymentDate(item model.FinancialItem, rd time.Time) time.Time {
	paid := item.PaymentDate

	if paid.IsZero() {
		paid = latestPayment(item.Payments)
	}
	if paid.IsZero() && item.AmountPaid.IsPositive() {
		paid = item.UpdatedAt
	}
	if paid.IsZero() && item.AmountPaid.IsPositive() && item.AmountDue.IsZero() &&
		!item.IssueDate.IsZero() && onOrBefore(item.IssueDate, rd) {
		paid = item.IssueDate
	}
	return paid
}

func latestPayment(payments []model.PaymentEvent) time.Time {
	var latest time.Time
	for _, p := range payments {
		if p.Date.After(latest) {
			latest = p.Date
		}
	}
	return latest
}

// creditNoteAfter reports whether a credit note was raised against the
// invoice after the report date.
func creditNoteAfter(item model.FinancialItem, rd time.Time) bool {
	for _, d := range item.CreditNoteDates {
		if d.After(rd) {
			return true
		}
	}
	return false
}

// includePaidDueLater filters Set B. A currently-paid invoice due after the
// report date counts only when its issue and due dates share a calendar
// month and it was already issued; straddling a month boundary is treated as
// not genuinely advance-billed.
func includePaidDueLater(item model.FinancialItem, rd time.Time) bool {
	return item.Status == StatusPaid &&
		!item.DueDate.IsZero() && item.DueDate.After(rd) &&
		!item.IssueDate.IsZero() &&
		model.SameMonth(item.IssueDate, item.DueDate) &&
		onOrBefore(item.IssueDate, rd)
}

// decideIssuedAfter filters Set C, invoices issued after the report date but
// paid (wholly or partly) before it. They represent cash received in
// advance and post as credits; the due date is necessarily on or after the
// report date, so they land in Current.
func decideIssuedAfter(item model.FinancialItem, rd time.Time) (Decision, bool) {
	if item.IssueDate.IsZero() || !item.IssueDate.After(rd) {
		return Decision{}, false
	}

	paid := item.PaymentDate
	paidUpToReport := decimal.Zero
	hasEarlyPayments := false
	for _, p := range item.Payments {
		if onOrBefore(p.Date, rd) {
			paidUpToReport = paidUpToReport.Add(p.Amount)
			hasEarlyPayments = true
		}
	}
	if hasEarlyPayments {
		paid = rd
	}

	paidEarly := !paid.IsZero() && onOrBefore(paid, rd) &&
		!item.DueDate.IsZero() && onOrAfter(item.DueDate, rd)
	authorisedEarly := item.Status == StatusAuthorised &&
		item.AmountPaid.IsPositive() &&
		!item.DueDate.IsZero() && onOrAfter(item.DueDate, rd) &&
		hasEarlyPayments

	if !paidEarly && !authorisedEarly {
		return Decision{}, false
	}
	if !paid.IsZero() && paid.After(rd) {
		return Decision{}, false
	}

	amount := item.TotalAmount
	if hasEarlyPayments {
		amount = paidUpToReport
	}
	return Decision{Include: true, Negative: true, Amount: amount}, true
}

// onOrBefore reports d <= ref, treating a zero date as absent (false).
func onOrBefore(d, ref time.Time) bool {
	return !d.IsZero() && !d.After(ref)
}

// onOrAfter reports d >= ref, treating a zero date as absent (false).
func onOrAfter(d, ref time.Time) bool {
	return !d.IsZero() && !d.Before(ref)
}

// after reports d > ref, treating a zero date as absent (false).
func after(d, ref time.Time) bool {
	return !d.IsZero() && d.After(ref)
}
