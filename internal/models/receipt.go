package models

import "github.com/shopspring/decimal"

// Receipt is a read-only snapshot of a transaction for printable receipts.
// Rendering happens outside the ledger.
type Receipt struct {
	Transaction *Transaction `json:"transaction"`

	// Debt is the linked debt as of the lookup, if any.
	Debt *Debt `json:"debt,omitempty"`

	// FolioDisplay is the formatted folio, e.g. "P-000123".
	FolioDisplay string `json:"folio_display"`

	Subtotal decimal.Decimal `json:"subtotal"`
	Tax      decimal.Decimal `json:"tax"`
	Total    decimal.Decimal `json:"total"`
}
