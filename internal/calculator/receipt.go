package calculator

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// TaxRate is the IVA rate shown on receipts. Amounts are tax-inclusive.
var TaxRate = decimal.NewFromFloat(0.16)

// TaxBreakdown splits a tax-inclusive total into subtotal and tax for display.
// Tax is the rounded difference so subtotal + tax always equals total.
func TaxBreakdown(total decimal.Decimal) (subtotal, tax decimal.Decimal) {
	subtotal = total.Div(decimal.NewFromInt(1).Add(TaxRate)).Round(2)
	tax = total.Sub(subtotal)
	return subtotal, tax
}

// FormatFolio renders a folio for display, e.g. FormatFolio("P", 123, 6) = "P-000123".
// An empty prefix renders the zero-padded number only.
func FormatFolio(prefix string, folio int64, width int) string {
	if width < 1 {
		width = 1
	}
	if prefix == "" {
		return fmt.Sprintf("%0*d", width, folio)
	}
	return fmt.Sprintf("%s-%0*d", prefix, width, folio)
}
