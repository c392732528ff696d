package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/mariafernandaa20/prexun-caja/internal/models"
	"github.com/mariafernandaa20/prexun-caja/internal/storage"
)

const transactionColumns = `id, uuid, campus_id, student_id, cash_register_id, debt_id,
	transaction_type, amount, payment_method, denominations, paid, payment_date, notes, folio,
	image_url, signature_url, reverses_id, reversed_by_id, voided_at, created_by, created_at, updated_at`

// CreateTransaction persists a new transaction.
func (q *queries) CreateTransaction(ctx context.Context, t *models.Transaction) error {
	if t.ID == "" {
		t.ID = uuid.New().String()
	}
	if t.UUID == "" {
		t.UUID = uuid.New().String()
	}
	if t.CreatedAt.IsZero() {
		t.CreatedAt = time.Now().UTC()
	}
	if t.UpdatedAt.IsZero() {
		t.UpdatedAt = t.CreatedAt
	}

	denoms, err := encodeDenominations(t.Denominations)
	if err != nil {
		return err
	}

	_, err = q.exec(ctx,
		`INSERT INTO transactions (`+transactionColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.ID, t.UUID, t.CampusID, nullInt(t.StudentID), nullString(t.CashRegisterID), nullString(t.DebtID),
		string(t.Type), t.Amount, string(t.PaymentMethod), denoms, boolToInt(t.Paid), nullMicros(t.PaymentDate),
		t.Notes, t.Folio, t.ImageURL, t.SignatureURL, nullString(t.ReversesID), nullString(t.ReversedByID),
		nullMicros(t.VoidedAt), t.CreatedBy, micros(t.CreatedAt), micros(t.UpdatedAt),
	)
	if err != nil {
		if q.d.uniqueViolation(err) {
			return storage.ErrDuplicateFolio
		}
		return fmt.Errorf("failed to insert transaction: %w", err)
	}
	return nil
}

// GetTransaction retrieves a transaction by internal ID.
func (q *queries) GetTransaction(ctx context.Context, id string) (*models.Transaction, error) {
	return q.getTransaction(ctx, "id", id)
}

// GetTransactionByUUID retrieves a transaction by its receipt UUID.
func (q *queries) GetTransactionByUUID(ctx context.Context, receiptUUID string) (*models.Transaction, error) {
	return q.getTransaction(ctx, "uuid", receiptUUID)
}

func (q *queries) getTransaction(ctx context.Context, column, value string) (*models.Transaction, error) {
	row := q.queryRow(ctx,
		`SELECT `+transactionColumns+` FROM transactions WHERE `+column+` = ?`+q.forUpdate(),
		value,
	)
	t, err := scanTransaction(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get transaction: %w", err)
	}
	return t, nil
}

// UpdateTransaction overwrites every mutable column. Folio, uuid and campus never change.
func (q *queries) UpdateTransaction(ctx context.Context, t *models.Transaction) error {
	t.UpdatedAt = time.Now().UTC()

	denoms, err := encodeDenominations(t.Denominations)
	if err != nil {
		return err
	}

	result, err := q.exec(ctx,
		`UPDATE transactions
		 SET student_id = ?, cash_register_id = ?, debt_id = ?, transaction_type = ?, amount = ?,
		     payment_method = ?, denominations = ?, paid = ?, payment_date = ?, notes = ?,
		     image_url = ?, signature_url = ?, reversed_by_id = ?, voided_at = ?, updated_at = ?
		 WHERE id = ?`,
		nullInt(t.StudentID), nullString(t.CashRegisterID), nullString(t.DebtID), string(t.Type), t.Amount,
		string(t.PaymentMethod), denoms, boolToInt(t.Paid), nullMicros(t.PaymentDate), t.Notes,
		t.ImageURL, t.SignatureURL, nullString(t.ReversedByID), nullMicros(t.VoidedAt), micros(t.UpdatedAt),
		t.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update transaction: %w", err)
	}
	return expectOneRow(result, "transaction", t.ID)
}

// ListTransactionsByRegister returns the movements of one register session.
func (q *queries) ListTransactionsByRegister(ctx context.Context, registerID string) ([]*models.Transaction, error) {
	return q.listTransactions(ctx, "cash_register_id", registerID)
}

// ListTransactionsByDebt returns the transactions linked to a debt.
func (q *queries) ListTransactionsByDebt(ctx context.Context, debtID string) ([]*models.Transaction, error) {
	return q.listTransactions(ctx, "debt_id", debtID)
}

func (q *queries) listTransactions(ctx context.Context, column, value string) ([]*models.Transaction, error) {
	rows, err := q.query(ctx,
		`SELECT `+transactionColumns+` FROM transactions
		 WHERE `+column+` = ?
		 ORDER BY created_at ASC, folio ASC`,
		value,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}
	defer rows.Close()

	var txs []*models.Transaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		txs = append(txs, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate transactions: %w", err)
	}
	return txs, nil
}

func scanTransaction(s scanner) (*models.Transaction, error) {
	t := &models.Transaction{}
	var (
		studentID                sql.NullInt64
		registerID, debtID       sql.NullString
		txType, method           string
		denoms                   sql.NullString
		paid                     int64
		paymentDate, voidedAt    sql.NullInt64
		reversesID, reversedByID sql.NullString
		createdAt, updatedAt     int64
	)
	err := s.Scan(&t.ID, &t.UUID, &t.CampusID, &studentID, &registerID, &debtID,
		&txType, &t.Amount, &method, &denoms, &paid, &paymentDate, &t.Notes, &t.Folio,
		&t.ImageURL, &t.SignatureURL, &reversesID, &reversedByID, &voidedAt, &t.CreatedBy, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}

	t.StudentID = studentID.Int64
	t.CashRegisterID = registerID.String
	t.DebtID = debtID.String
	t.Type = models.TransactionType(txType)
	t.PaymentMethod = models.PaymentMethod(method)
	t.Paid = paid == 1
	t.PaymentDate = timePtr(paymentDate)
	t.ReversesID = reversesID.String
	t.ReversedByID = reversedByID.String
	t.VoidedAt = timePtr(voidedAt)
	t.CreatedAt = fromMicros(createdAt)
	t.UpdatedAt = fromMicros(updatedAt)

	if t.Denominations, err = decodeDenominations(denoms); err != nil {
		return nil, err
	}
	return t, nil
}
