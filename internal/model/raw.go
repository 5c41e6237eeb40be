package model

import (
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// Amount is a wire-format money value. The provider usually sends JSON
// numbers, but legacy records occasionally carry strings or null; anything
// non-numeric decodes to zero rather than failing the record.
type Amount float64

// UnmarshalJSON implements lenient numeric decoding.
func (a *Amount) UnmarshalJSON(b []byte) error {
	s := strings.Trim(strings.TrimSpace(string(b)), `"`)
	if s == "" || s == "null" {
		*a = 0
		return nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		*a = 0
		return nil
	}
	*a = Amount(f)
	return nil
}

// Decimal converts the wire amount into an exact decimal.
func (a Amount) Decimal() decimal.Decimal {
	return decimal.NewFromFloat(float64(a))
}

// Contact is the counterparty a receivable belongs to.
type Contact struct {
	Name string `json:"Name"`
}

// DisplayName returns the contact name or a placeholder when the provider
// omitted the contact block.
func (c Contact) DisplayName() string {
	if c.Name == "" {
		return "Unknown Contact"
	}
	return c.Name
}

// Payment is one cash receipt applied to an invoice or credit note.
type Payment struct {
	Date   string `json:"Date"`
	Amount Amount `json:"Amount"`
}

// Allocation is a credit applied from one document to another.
type Allocation struct {
	Date   string `json:"Date"`
	Amount Amount `json:"Amount"`
}

// CreditNoteRef is the shallow credit-note reference embedded in an invoice.
type CreditNoteRef struct {
	Date string `json:"Date"`
}

// Invoice is the provider's current-state sales invoice record.
type Invoice struct {
	InvoiceNumber   string          `json:"InvoiceNumber"`
	InvoiceID       string          `json:"InvoiceID"`
	Type            string          `json:"Type"`
	Status          string          `json:"Status"`
	Date            string          `json:"Date"`
	DueDate         string          `json:"DueDate"`
	FullyPaidOnDate string          `json:"FullyPaidOnDate"`
	UpdatedDateUTC  string          `json:"UpdatedDateUTC"`
	AmountDue       Amount          `json:"AmountDue"`
	AmountPaid      Amount          `json:"AmountPaid"`
	Total           Amount          `json:"Total"`
	Contact         Contact         `json:"Contact"`
	Payments        []Payment       `json:"Payments"`
	Allocations     []Allocation    `json:"Allocations"`
	CreditNotes     []CreditNoteRef `json:"CreditNotes"`
}

// CreditNote is the provider's current-state credit note record.
type CreditNote struct {
	CreditNoteNumber string       `json:"CreditNoteNumber"`
	CreditNoteID     string       `json:"CreditNoteID"`
	Status           string       `json:"Status"`
	Date             string       `json:"Date"`
	DueDate          string       `json:"DueDate"`
	FullyPaidOnDate  string       `json:"FullyPaidOnDate"`
	RemainingCredit  Amount       `json:"RemainingCredit"`
	Total            Amount       `json:"Total"`
	Contact          Contact      `json:"Contact"`
	Payments         []Payment    `json:"Payments"`
	Allocations      []Allocation `json:"Allocations"`
}

// Overpayment is the provider's current-state overpayment record.
type Overpayment struct {
	OverpaymentID   string       `json:"OverpaymentID"`
	Status          string       `json:"Status"`
	Date            string       `json:"Date"`
	RemainingCredit Amount       `json:"RemainingCredit"`
	Contact         Contact      `json:"Contact"`
	Allocations     []Allocation `json:"Allocations"`
}

// BankTransaction is a RECEIVE-OVERPAYMENT bank line that has not been
// reconciled against a document yet.
type BankTransaction struct {
	BankTransactionID string  `json:"BankTransactionID"`
	Type              string  `json:"Type"`
	Status            string  `json:"Status"`
	Date              string  `json:"Date"`
	Total             Amount  `json:"Total"`
	Contact           Contact `json:"Contact"`
	IsReconciled      bool    `json:"IsReconciled"`
}

// InvoicePage is the provider's paged invoice response wrapper.
type InvoicePage struct {
	Invoices []Invoice `json:"Invoices"`
}

// CreditNotePage is the provider's paged credit note response wrapper.
type CreditNotePage struct {
	CreditNotes []CreditNote `json:"CreditNotes"`
}

// OverpaymentPage is the provider's paged overpayment response wrapper.
type OverpaymentPage struct {
	Overpayments []Overpayment `json:"Overpayments"`
}

// BankTransactionPage is the provider's bank transaction response wrapper.
type BankTransactionPage struct {
	BankTransactions []BankTransaction `json:"BankTransactions"`
}
