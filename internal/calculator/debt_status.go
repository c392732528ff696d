package calculator

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/mariafernandaa20/prexun-caja/internal/models"
)

// DebtStatus derives the status of a debt from its amounts and due date.
//
//	paid >= total       -> paid
//	0 < paid < total    -> partial
//	paid == 0, now<due  -> pending
//	otherwise           -> overdue
func DebtStatus(paid, total decimal.Decimal, due, now time.Time) models.DebtStatus {
	switch {
	case paid.GreaterThanOrEqual(total):
		return models.DebtPaid
	case paid.IsPositive():
		return models.DebtPartial
	case now.Before(due):
		return models.DebtPending
	default:
		return models.DebtOverdue
	}
}

// Balance returns the remaining and overpaid amounts of a debt. Exactly one of them
// is non-zero unless the debt is settled to the cent.
func Balance(paid, total decimal.Decimal) (remaining, overpaid decimal.Decimal) {
	diff := total.Sub(paid)
	if diff.IsNegative() {
		return decimal.Zero, diff.Neg()
	}
	return diff, decimal.Zero
}

// RefreshDebt recomputes the derived fields of d in place.
func RefreshDebt(d *models.Debt, now time.Time) {
	d.RemainingAmount, d.OverpaidAmount = Balance(d.PaidAmount, d.TotalAmount)
	d.Status = DebtStatus(d.PaidAmount, d.TotalAmount, d.DueDate, now)
}
