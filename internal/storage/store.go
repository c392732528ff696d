// Package storage provides abstractions for persistent ledger storage.
package storage

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"

	"github.com/mariafernandaa20/prexun-caja/internal/audit"
	"github.com/mariafernandaa20/prexun-caja/internal/models"
)

var (
	// ErrNotFound is returned when a requested row does not exist.
	ErrNotFound = errors.New("record not found")

	// ErrOpenRegisterExists is returned when inserting a second open register for a campus.
	ErrOpenRegisterExists = errors.New("campus already has an open cash register")

	// ErrDuplicateFolio is returned when a folio is already taken in a campus.
	ErrDuplicateFolio = errors.New("folio already issued for campus")
)

// Queries defines the ledger persistence operations.
// The same set is available on the Store (autocommit) and inside WithinTx.
// Inside a transaction, reads of registers and debts lock the row where the
// backend supports it.
type Queries interface {
	// CreateRegister persists a new register. Returns ErrOpenRegisterExists when
	// the register is open and the campus already has an open one.
	CreateRegister(ctx context.Context, r *models.CashRegister) error

	// GetRegister retrieves a register by ID. Returns ErrNotFound if missing.
	GetRegister(ctx context.Context, id string) (*models.CashRegister, error)

	// GetOpenRegister retrieves the open register of a campus. Returns ErrNotFound if none.
	GetOpenRegister(ctx context.Context, campusID int64) (*models.CashRegister, error)

	// GetLastClosedRegister retrieves the most recently opened closed register of a campus.
	GetLastClosedRegister(ctx context.Context, campusID int64) (*models.CashRegister, error)

	// UpdateRegister overwrites the mutable fields of a register.
	UpdateRegister(ctx context.Context, r *models.CashRegister) error

	// ListRegisters returns the registers of a campus ordered by opened_at descending.
	ListRegisters(ctx context.Context, campusID int64) ([]*models.CashRegister, error)

	// NextFolio atomically increments and returns the folio counter of a campus.
	NextFolio(ctx context.Context, campusID int64) (int64, error)

	// CreateTransaction persists a new transaction. Returns ErrDuplicateFolio on a folio clash.
	CreateTransaction(ctx context.Context, t *models.Transaction) error

	// GetTransaction retrieves a transaction by internal ID.
	GetTransaction(ctx context.Context, id string) (*models.Transaction, error)

	// GetTransactionByUUID retrieves a transaction by its public receipt UUID.
	GetTransactionByUUID(ctx context.Context, uuid string) (*models.Transaction, error)

	// UpdateTransaction overwrites the mutable fields of a transaction.
	UpdateTransaction(ctx context.Context, t *models.Transaction) error

	// ListTransactionsByRegister returns the transactions linked to a register, oldest first.
	ListTransactionsByRegister(ctx context.Context, registerID string) ([]*models.Transaction, error)

	// ListTransactionsByDebt returns the transactions linked to a debt, oldest first.
	ListTransactionsByDebt(ctx context.Context, debtID string) ([]*models.Transaction, error)

	// CreateDebt persists a new debt.
	CreateDebt(ctx context.Context, d *models.Debt) error

	// GetDebt retrieves a debt by ID.
	GetDebt(ctx context.Context, id string) (*models.Debt, error)

	// UpdateDebt overwrites the paid amount, status and timestamps of a debt.
	UpdateDebt(ctx context.Context, d *models.Debt) error

	// DeleteDebt removes a debt. Callers must ensure no transaction references it.
	DeleteDebt(ctx context.Context, id string) error

	// ListDebtsByStudent returns the debts of a student ordered by due date.
	ListDebtsByStudent(ctx context.Context, studentID int64) ([]*models.Debt, error)

	// RecordDebtPayment registers that a transaction contributed amount to a debt.
	// Returns false without error if the pair was already recorded.
	RecordDebtPayment(ctx context.Context, debtID, transactionID string, amount decimal.Decimal) (bool, error)
}

// Store defines the interface for ledger storage.
// This abstraction allows swapping storage backends (SQLite, PostgreSQL)
// without changing the ledger layer.
type Store interface {
	Queries

	// WithinTx runs fn inside a single store transaction. The transaction is
	// committed when fn returns nil and rolled back otherwise.
	WithinTx(ctx context.Context, fn func(q Queries) error) error

	// SaveEvent persists an audit event.
	SaveEvent(ctx context.Context, e audit.Event) error

	// ListEventsByType returns audit events of a type, oldest first.
	ListEventsByType(ctx context.Context, eventType string) ([]audit.Event, error)

	// Close releases any resources held by the store.
	Close() error
}
