package calculator

import (
	"github.com/shopspring/decimal"

	"github.com/mariafernandaa20/prexun-caja/internal/apperr"
	"github.com/mariafernandaa20/prexun-caja/internal/models"
)

// cent is the tolerance below which two rounded amounts are considered equal.
var cent = decimal.New(1, -2)

// SumDenominations adds face value times count for every entry.
// It fails on non-positive face values and negative counts.
func SumDenominations(d models.Denominations) (decimal.Decimal, error) {
	for face, count := range d {
		if face <= 0 {
			return decimal.Zero, apperr.Validation("denomination face value must be positive, got %d", face)
		}
		if count < 0 {
			return decimal.Zero, apperr.Validation("denomination %d has negative count %d", face, count)
		}
	}
	return d.Total(), nil
}

// Reconcile verifies that the counted denominations add up exactly to amount.
// Both sides are rounded to two decimals before comparing.
func Reconcile(amount decimal.Decimal, d models.Denominations) error {
	sum, err := SumDenominations(d)
	if err != nil {
		return err
	}

	expected := amount.Round(2)
	actual := sum.Round(2)
	if expected.Sub(actual).Abs().GreaterThanOrEqual(cent) {
		return &apperr.MismatchError{Expected: expected, Actual: actual}
	}
	return nil
}
