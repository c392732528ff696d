// Package apperr defines the business error taxonomy of the ledger.
//
// Four kinds are recoverable by the caller with corrected input: validation,
// denomination mismatch, conflict and not found. Any error that does not wrap
// one of the sentinels below is an infrastructure error (store connectivity,
// driver failures) and should be retried later rather than fixed.
package apperr

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

var (
	// ErrValidation is returned for malformed or missing fields and non-positive amounts.
	ErrValidation = errors.New("validation error")

	// ErrMismatch is returned when counted denominations do not add up to the stated amount.
	ErrMismatch = errors.New("denomination mismatch")

	// ErrConflict is returned when the operation contradicts current ledger state,
	// e.g. opening a register while another one is open.
	ErrConflict = errors.New("conflict")

	// ErrNotFound is returned for unknown campuses, registers, debts, students or transactions.
	ErrNotFound = errors.New("not found")
)

// Error wraps one of the sentinel errors with human-readable details.
type Error struct {
	Err     error
	Details string
}

func (e *Error) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("%s: %s", e.Err.Error(), e.Details)
	}
	return e.Err.Error()
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Validation returns an ErrValidation with formatted details.
func Validation(format string, args ...any) error {
	return &Error{Err: ErrValidation, Details: fmt.Sprintf(format, args...)}
}

// Conflict returns an ErrConflict with formatted details.
func Conflict(format string, args ...any) error {
	return &Error{Err: ErrConflict, Details: fmt.Sprintf(format, args...)}
}

// NotFound returns an ErrNotFound with formatted details.
func NotFound(format string, args ...any) error {
	return &Error{Err: ErrNotFound, Details: fmt.Sprintf(format, args...)}
}

// MismatchError reports a denomination breakdown that does not reconcile.
type MismatchError struct {
	Expected decimal.Decimal
	Actual   decimal.Decimal
}

func (e *MismatchError) Error() string {
	return fmt.Sprintf("denominations total $%s, expected $%s",
		e.Actual.StringFixed(2), e.Expected.StringFixed(2))
}

func (e *MismatchError) Unwrap() error {
	return ErrMismatch
}

// Kind names the category of err for transports and logs.
type Kind string

const (
	KindValidation     Kind = "validation"
	KindMismatch       Kind = "mismatch"
	KindConflict       Kind = "conflict"
	KindNotFound       Kind = "not_found"
	KindInfrastructure Kind = "infrastructure"
)

// KindOf classifies err. A nil error has no kind.
func KindOf(err error) Kind {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrMismatch):
		return KindMismatch
	case errors.Is(err, ErrValidation):
		return KindValidation
	case errors.Is(err, ErrConflict):
		return KindConflict
	case errors.Is(err, ErrNotFound):
		return KindNotFound
	default:
		return KindInfrastructure
	}
}

// IsBusiness reports whether err is one of the four recoverable business errors.
func IsBusiness(err error) bool {
	k := KindOf(err)
	return k != "" && k != KindInfrastructure
}
