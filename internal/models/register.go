package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// RegisterStatus is the lifecycle state of a cash register.
type RegisterStatus string

const (
	RegisterOpen   RegisterStatus = "open"
	RegisterClosed RegisterStatus = "closed"
)

// CashRegister is one open/close session of a campus cash drawer.
// A new record is created on every open; closed records are never deleted.
type CashRegister struct {
	// ID is the unique identifier of the register session (UUID format).
	ID string `json:"id"`

	// CampusID is the campus owning the drawer.
	CampusID int64 `json:"campus_id"`

	Status RegisterStatus `json:"status"`

	// InitialAmount is the cash float the drawer was opened with.
	InitialAmount        decimal.Decimal `json:"initial_amount"`
	InitialDenominations Denominations   `json:"initial_denominations,omitempty"`

	// FinalAmount is the counted cash at close. Nil while open.
	FinalAmount        *decimal.Decimal `json:"final_amount,omitempty"`
	FinalDenominations Denominations    `json:"final_denominations,omitempty"`

	// NextDayAmount is the cash left in the drawer for the next session.
	NextDayAmount        *decimal.Decimal `json:"next_day_amount,omitempty"`
	NextDayDenominations Denominations    `json:"next_day_denominations,omitempty"`

	// ExpectedCash is initial + cash income - cash expense, computed at close.
	ExpectedCash *decimal.Decimal `json:"expected_cash,omitempty"`

	// CashDifference is FinalAmount - ExpectedCash, computed at close.
	// Negative means the drawer came up short.
	CashDifference *decimal.Decimal `json:"cash_difference,omitempty"`

	// Totals are the running totals of paid transactions linked to this register.
	Totals RegisterTotals `json:"totals"`

	Notes    string `json:"notes,omitempty"`
	OpenedBy string `json:"opened_by,omitempty"`
	ClosedBy string `json:"closed_by,omitempty"`

	OpenedAt time.Time  `json:"opened_at"`
	ClosedAt *time.Time `json:"closed_at,omitempty"`
}

// IsOpen reports whether the register still accepts movements.
func (r *CashRegister) IsOpen() bool {
	return r.Status == RegisterOpen
}

// RegisterTotals accumulates paid movements per method and direction.
type RegisterTotals struct {
	IncomeCash      decimal.Decimal `json:"income_cash"`
	IncomeCard      decimal.Decimal `json:"income_card"`
	IncomeTransfer  decimal.Decimal `json:"income_transfer"`
	ExpenseCash     decimal.Decimal `json:"expense_cash"`
	ExpenseCard     decimal.Decimal `json:"expense_card"`
	ExpenseTransfer decimal.Decimal `json:"expense_transfer"`
}

// Add records one movement. Unknown methods or types are ignored.
func (t *RegisterTotals) Add(txType TransactionType, method PaymentMethod, amount decimal.Decimal) {
	var slot *decimal.Decimal
	switch {
	case txType == TransactionIncome && method == MethodCash:
		slot = &t.IncomeCash
	case txType == TransactionIncome && method == MethodCard:
		slot = &t.IncomeCard
	case txType == TransactionIncome && method == MethodTransfer:
		slot = &t.IncomeTransfer
	case txType == TransactionExpense && method == MethodCash:
		slot = &t.ExpenseCash
	case txType == TransactionExpense && method == MethodCard:
		slot = &t.ExpenseCard
	case txType == TransactionExpense && method == MethodTransfer:
		slot = &t.ExpenseTransfer
	default:
		return
	}
	*slot = slot.Add(amount)
}
