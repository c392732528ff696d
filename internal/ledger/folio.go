package ledger

import (
	"context"
	"fmt"

	"github.com/mariafernandaa20/prexun-caja/internal/storage"
)

// FolioGenerator issues receipt numbers, one monotonic counter per campus.
//
// Next must be called with the Queries of the store transaction that inserts
// the transaction: the increment commits or rolls back with it, so a failed
// operation never consumes a folio.
type FolioGenerator struct{}

// Next returns the next folio of campusID.
func (g *FolioGenerator) Next(ctx context.Context, q storage.Queries, campusID int64) (int64, error) {
	folio, err := q.NextFolio(ctx, campusID)
	if err != nil {
		return 0, err
	}
	if folio <= 0 {
		return 0, fmt.Errorf("folio counter for campus %d returned %d", campusID, folio)
	}
	return folio, nil
}
