package reconcile

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/agewise-dev/agewise/internal/model"
)

// CreditNote decides whether a normalized credit note belongs in the report
// and returns it with the reported amount adjusted where needed. A note
// completed after the report date was still open then, but only the portion
// allocated after that date counts; a note with no completion signal at all
// is treated as still open and included as is.
func CreditNote(item model.FinancialItem, reportDate time.Time) (model.FinancialItem, bool) {
	rd := model.DateOnly(reportDate)

	switch {
	case !item.PaymentDate.IsZero():
		if !item.PaymentDate.After(rd) {
			return item, false
		}
		if len(item.Allocations) > 0 {
			future := decimal.Zero
			for _, a := range item.Allocations {
				if a.Date.After(rd) {
					future = future.Add(a.Amount)
				}
			}
			return item.WithOverride(future, true), true
		}
		return item.WithOverride(item.TotalAmount, true), true

	case len(item.Payments) > 0:
		return item, latestPayment(item.Payments).After(rd)

	case len(item.Allocations) > 0:
		latest := latestAllocation(item.Allocations)
		return item, !latest.IsZero() && !latest.After(rd)

	default:
		// No completion date, payments, or allocations: still open.
		return item, true
	}
}

func latestAllocation(allocations []model.AllocationEvent) time.Time {
	var latest time.Time
	for _, a := range allocations {
		if a.Date.After(latest) {
			latest = a.Date
		}
	}
	return latest
}
