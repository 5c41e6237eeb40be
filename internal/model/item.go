package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// ItemKind classifies a canonical financial record.
type ItemKind string

const (
	KindInvoice         ItemKind = "invoice"
	KindCreditNote      ItemKind = "credit_note"
	KindOverpayment     ItemKind = "overpayment"
	KindBankTransaction ItemKind = "bank_transaction"
)

// PaymentEvent is a dated cash receipt on a canonical item.
type PaymentEvent struct {
	Date   time.Time
	Amount decimal.Decimal
}

// AllocationEvent is a dated credit allocation on a canonical item.
type AllocationEvent struct {
	Date   time.Time
	Amount decimal.Decimal
}

// FinancialItem is the canonical shape every raw record normalizes into.
// Instances are immutable once built; the reconciler derives adjusted copies
// through WithOverride instead of mutating in place. Amount fields are
// non-negative; the sign of the item's contribution is carried by IsNegative.
type FinancialItem struct {
	Kind    ItemKind
	Number  string
	ID      string
	Contact string

	IssueDate   time.Time // zero when the provider omitted it
	DueDate     time.Time
	PaymentDate time.Time // completion date as reported, before resolution

	AmountDue   decimal.Decimal
	TotalAmount decimal.Decimal
	AmountPaid  decimal.Decimal
	Status      string

	Allocations []AllocationEvent
	Payments    []PaymentEvent

	// UpdatedAt is the record's last-modified timestamp, used as a proxy
	// payment date when the provider reports money received but no date.
	UpdatedAt time.Time

	// CreditNoteDates are issue dates of credit notes raised against an
	// invoice, consulted when deciding a historical reported amount.
	CreditNoteDates []time.Time

	// ReportedAmount is what the item contributes to the report, always
	// non-negative. ReferenceDate is the date the bucket classifier uses.
	ReportedAmount decimal.Decimal
	IsNegative     bool
	ReferenceDate  time.Time
}

// WithOverride returns a copy of the item with only the reported amount and
// contribution sign replaced. Every other field still describes the original
// normalized record.
func (i FinancialItem) WithOverride(amount decimal.Decimal, negative bool) FinancialItem {
	i.ReportedAmount = amount
	i.AmountDue = amount
	i.IsNegative = negative
	return i
}

// Contributes reports whether the item carries anything into the ledger.
// Zero and negative reported amounts are dropped, except bank transactions,
// which arrive positive upstream but always post as credits.
func (i FinancialItem) Contributes() bool {
	if i.Kind == KindBankTransaction {
		return true
	}
	return i.ReportedAmount.IsPositive()
}
