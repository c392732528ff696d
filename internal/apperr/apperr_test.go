package apperr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/shopspring/decimal"
)

func TestKindOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Kind
	}{
		{"nil", nil, ""},
		{"validation", Validation("amount must be positive"), KindValidation},
		{"conflict", Conflict("register already open"), KindConflict},
		{"not found", NotFound("debt %s", "abc"), KindNotFound},
		{"mismatch", &MismatchError{Expected: decimal.NewFromInt(200), Actual: decimal.NewFromInt(100)}, KindMismatch},
		{"wrapped mismatch", fmt.Errorf("open register: %w", &MismatchError{}), KindMismatch},
		{"infrastructure", errors.New("connection refused"), KindInfrastructure},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := KindOf(tt.err); got != tt.want {
				t.Errorf("KindOf(%v) = %q, want %q", tt.err, got, tt.want)
			}
		})
	}
}

func TestMismatchErrorMessage(t *testing.T) {
	err := &MismatchError{Expected: decimal.NewFromInt(500), Actual: decimal.NewFromInt(480)}
	want := "denominations total $480.00, expected $500.00"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
	if !errors.Is(err, ErrMismatch) {
		t.Error("expected MismatchError to unwrap to ErrMismatch")
	}
}

func TestErrorDetails(t *testing.T) {
	err := Validation("due date is required")
	if err.Error() != "validation error: due date is required" {
		t.Errorf("unexpected message: %q", err.Error())
	}
	if !IsBusiness(err) {
		t.Error("expected validation error to be a business error")
	}
	if IsBusiness(errors.New("disk full")) {
		t.Error("expected plain error to be an infrastructure error")
	}
}
