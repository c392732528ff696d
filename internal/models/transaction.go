package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionType is the direction of a money movement.
type TransactionType string

const (
	TransactionIncome  TransactionType = "income"
	TransactionExpense TransactionType = "expense"
)

// Valid reports whether t is a known transaction type.
func (t TransactionType) Valid() bool {
	return t == TransactionIncome || t == TransactionExpense
}

// Opposite returns the type used by an offsetting entry.
func (t TransactionType) Opposite() TransactionType {
	if t == TransactionIncome {
		return TransactionExpense
	}
	return TransactionIncome
}

// PaymentMethod is how the money moved.
type PaymentMethod string

const (
	MethodCash     PaymentMethod = "cash"
	MethodCard     PaymentMethod = "card"
	MethodTransfer PaymentMethod = "transfer"
)

// Valid reports whether m is a known payment method.
func (m PaymentMethod) Valid() bool {
	switch m {
	case MethodCash, MethodCard, MethodTransfer:
		return true
	}
	return false
}

// Transaction is a single recorded money movement.
//
// A paid transaction is immutable except for receipt metadata (ImageURL,
// SignatureURL) and correction links (ReversedByID, VoidedAt). Corrections
// are modelled as new offsetting transactions.
type Transaction struct {
	// ID is the internal identifier (UUID format).
	ID string `json:"id"`

	// UUID is the public reference printed on receipts.
	UUID string `json:"uuid"`

	CampusID int64 `json:"campus_id"`

	// StudentID is zero for pure expenses.
	StudentID int64 `json:"student_id,omitempty"`

	// CashRegisterID is set only when the transaction was settled while a register was open.
	CashRegisterID string `json:"cash_register_id,omitempty"`

	DebtID string `json:"debt_id,omitempty"`

	Type          TransactionType `json:"transaction_type"`
	Amount        decimal.Decimal `json:"amount"`
	PaymentMethod PaymentMethod   `json:"payment_method"`

	// Denominations is required and reconciled iff PaymentMethod is cash and Paid is true.
	Denominations Denominations `json:"denominations,omitempty"`

	// Paid is false for pending charges to be collected later.
	Paid bool `json:"paid"`

	PaymentDate *time.Time `json:"payment_date,omitempty"`
	Notes       string     `json:"notes,omitempty"`

	// Folio is the sequential receipt number, unique per campus.
	Folio int64 `json:"folio"`

	ImageURL     string `json:"image_url,omitempty"`
	SignatureURL string `json:"signature_url,omitempty"`

	// ReversesID points to the transaction this entry offsets.
	ReversesID string `json:"reverses_id,omitempty"`

	// ReversedByID points to the offsetting entry created when this one was voided.
	ReversedByID string `json:"reversed_by_id,omitempty"`

	VoidedAt *time.Time `json:"voided_at,omitempty"`

	CreatedBy string    `json:"created_by,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// IsReversal reports whether t is an offsetting entry.
func (t *Transaction) IsReversal() bool {
	return t.ReversesID != ""
}

// IsVoided reports whether t was cancelled or offset.
func (t *Transaction) IsVoided() bool {
	return t.VoidedAt != nil
}
