// Package commentary renders a ledger entry's itemized breakdown into the
// human-readable audit text shown in the report's system-comments column.
package commentary

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/agewise-dev/agewise/internal/model"
)

// overpaymentSentinel marks synthetic rollup lines for cash received ahead
// of invoicing; they get a dedicated phrase instead of a document id.
const overpaymentSentinel = "Invoice Overpayments"

// Render emits, for each bucket with contributions, a header line followed
// by one line per item. Deterministic given the input list order.
func Render(bucketItems map[string][]model.BucketItem, bucketNames []string) string {
	var lines []string
	for _, name := range bucketNames {
		items := bucketItems[name]
		if len(items) == 0 {
			continue
		}
		lines = append(lines, name+":")
		for _, item := range items {
			lines = append(lines, itemLine(item))
		}
		lines = append(lines, "")
	}
	return strings.Join(lines, "\n")
}

func itemLine(item model.BucketItem) string {
	amount := FormatAmount(item.Amount)
	switch item.Kind {
	case model.KindCreditNote:
		return fmt.Sprintf("%s (Credit Note, ID: %s) = %s", item.Number, item.ID, amount)
	case model.KindOverpayment:
		return fmt.Sprintf("%s (Overpayment, ID: %s) = %s", item.Number, item.ID, amount)
	case model.KindBankTransaction:
		return fmt.Sprintf("%s (Bank Transaction, ID: %s) = %s", item.Number, item.ID, amount)
	default:
		if item.IsNegative {
			if item.Number == overpaymentSentinel {
				return fmt.Sprintf("%s (Paid upfront for future invoices) = %s", overpaymentSentinel, amount)
			}
			return fmt.Sprintf("%s (Credit/Overpayment, ID: %s) = %s", item.Number, item.ID, amount)
		}
		return fmt.Sprintf("%s (Invoice, ID: %s) = %s", item.Number, item.ID, amount)
	}
}

// FormatAmount renders a signed amount with thousands separators and two
// decimal places, e.g. -12,345.60.
func FormatAmount(d decimal.Decimal) string {
	s := d.StringFixed(2)

	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}
	intPart, fracPart, _ := strings.Cut(s, ".")

	var b strings.Builder
	if neg {
		b.WriteByte('-')
	}
	for i, c := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(c)
	}
	b.WriteByte('.')
	b.WriteString(fracPart)
	return b.String()
}
