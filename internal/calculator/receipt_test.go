package calculator

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestTaxBreakdown(t *testing.T) {
	tests := []struct {
		total        string
		wantSubtotal string
		wantTax      string
	}{
		{"116", "100", "16"},
		{"1000", "862.07", "137.93"},
		{"0", "0", "0"},
	}

	for _, tt := range tests {
		t.Run(tt.total, func(t *testing.T) {
			total := decimal.RequireFromString(tt.total)
			subtotal, tax := TaxBreakdown(total)
			if !subtotal.Equal(decimal.RequireFromString(tt.wantSubtotal)) {
				t.Errorf("subtotal = %s, want %s", subtotal, tt.wantSubtotal)
			}
			if !tax.Equal(decimal.RequireFromString(tt.wantTax)) {
				t.Errorf("tax = %s, want %s", tax, tt.wantTax)
			}
			if !subtotal.Add(tax).Equal(total) {
				t.Errorf("subtotal + tax = %s, want %s", subtotal.Add(tax), total)
			}
		})
	}
}

func TestFormatFolio(t *testing.T) {
	tests := []struct {
		prefix string
		folio  int64
		width  int
		want   string
	}{
		{"P", 123, 6, "P-000123"},
		{"", 42, 4, "0042"},
		{"CU", 1234567, 6, "CU-1234567"},
		{"P", 7, 0, "P-7"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := FormatFolio(tt.prefix, tt.folio, tt.width); got != tt.want {
				t.Errorf("FormatFolio(%q, %d, %d) = %q, want %q", tt.prefix, tt.folio, tt.width, got, tt.want)
			}
		})
	}
}
