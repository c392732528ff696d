package sqlstore

import (
	"context"
	"fmt"
)

// NextFolio increments the campus counter in a single statement and returns the new value.
// The first call for a campus seeds the counter from the highest folio already issued,
// so imported history keeps its numbering.
func (q *queries) NextFolio(ctx context.Context, campusID int64) (int64, error) {
	var folio int64
	err := q.queryRow(ctx,
		`INSERT INTO folio_counters (campus_id, last_folio)
		 VALUES (?, (SELECT COALESCE(MAX(folio), 0) + 1 FROM transactions WHERE campus_id = ?))
		 ON CONFLICT (campus_id) DO UPDATE SET last_folio = folio_counters.last_folio + 1
		 RETURNING last_folio`,
		campusID, campusID,
	).Scan(&folio)
	if err != nil {
		return 0, fmt.Errorf("failed to allocate folio: %w", err)
	}
	return folio, nil
}
