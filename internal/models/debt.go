package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// DebtStatus is derived from paid amount, total and due date.
type DebtStatus string

const (
	DebtPending DebtStatus = "pending"
	DebtPartial DebtStatus = "partial"
	DebtPaid    DebtStatus = "paid"
	DebtOverdue DebtStatus = "overdue"
)

// Debt is an amount a student owes by a due date.
type Debt struct {
	// ID is the unique identifier (UUID format).
	ID string `json:"id"`

	StudentID int64 `json:"student_id"`

	// AssignmentID links the debt to an academic assignment (period/group). Zero if none.
	AssignmentID int64 `json:"assignment_id,omitempty"`

	Concept     string `json:"concept"`
	Description string `json:"description,omitempty"`

	TotalAmount decimal.Decimal `json:"total_amount"`

	// PaidAmount is the sum of the amounts of all applied payments (reversals are negative).
	PaidAmount decimal.Decimal `json:"paid_amount"`

	// RemainingAmount is max(TotalAmount - PaidAmount, 0).
	RemainingAmount decimal.Decimal `json:"remaining_amount"`

	// OverpaidAmount is max(PaidAmount - TotalAmount, 0).
	// Overpayment is accepted and surfaced, never clamped away.
	OverpaidAmount decimal.Decimal `json:"overpaid_amount"`

	DueDate time.Time  `json:"due_date"`
	Status  DebtStatus `json:"status"`

	// Transactions are embedded for display by ListByStudent. Not persisted with the debt.
	Transactions []*Transaction `json:"transactions,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// IsSettled reports whether nothing remains to be paid.
func (d *Debt) IsSettled() bool {
	return d.PaidAmount.GreaterThanOrEqual(d.TotalAmount)
}
