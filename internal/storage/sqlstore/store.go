// Package sqlstore implements storage.Store on top of database/sql.
//
// The SQL is written once with "?" placeholders and rewritten per Dialect, so the
// SQLite and PostgreSQL backends share every query. Driver registration and
// schema creation live in the backend packages.
package sqlstore

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/mariafernandaa20/prexun-caja/internal/storage"
)

// Ensure Store implements storage.Store
var _ storage.Store = (*Store)(nil)

// Store implements storage.Store using a *sql.DB.
type Store struct {
	*queries
	db *sql.DB
}

// querier is satisfied by both *sql.DB and *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// queries implements storage.Queries against a querier.
type queries struct {
	q    querier
	d    Dialect
	inTx bool
}

// New wraps an open database. The schema must already exist.
func New(db *sql.DB, d Dialect) *Store {
	return &Store{
		queries: &queries{q: db, d: d},
		db:      db,
	}
}

// Migrate executes the schema setup.
func Migrate(ctx context.Context, db *sql.DB, schema string) error {
	_, err := db.ExecContext(ctx, schema)
	return err
}

// DB exposes the underlying handle for backend-specific maintenance.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// WithinTx runs fn in a transaction, committing on success.
func (s *Store) WithinTx(ctx context.Context, fn func(q storage.Queries) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := fn(&queries{q: tx, d: s.d, inTx: true}); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func (q *queries) exec(ctx context.Context, query string, args ...any) (sql.Result, error) {
	return q.q.ExecContext(ctx, q.d.rebind(query), args...)
}

func (q *queries) query(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	return q.q.QueryContext(ctx, q.d.rebind(query), args...)
}

func (q *queries) queryRow(ctx context.Context, query string, args ...any) *sql.Row {
	return q.q.QueryRowContext(ctx, q.d.rebind(query), args...)
}

// forUpdate returns the row-locking suffix when running inside a transaction.
func (q *queries) forUpdate() string {
	if q.inTx && q.d.ForUpdate != "" {
		return " " + q.d.ForUpdate
	}
	return ""
}
