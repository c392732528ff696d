package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/mariafernandaa20/prexun-caja/internal/models"
	"github.com/mariafernandaa20/prexun-caja/internal/storage"
)

const debtColumns = `id, student_id, assignment_id, concept, description, total_amount,
	paid_amount, status, due_date, created_at, updated_at`

// CreateDebt persists a new debt.
func (q *queries) CreateDebt(ctx context.Context, d *models.Debt) error {
	if d.ID == "" {
		d.ID = uuid.New().String()
	}
	if d.CreatedAt.IsZero() {
		d.CreatedAt = time.Now().UTC()
	}
	if d.UpdatedAt.IsZero() {
		d.UpdatedAt = d.CreatedAt
	}

	_, err := q.exec(ctx,
		`INSERT INTO debts (`+debtColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		d.ID, d.StudentID, nullInt(d.AssignmentID), d.Concept, d.Description, d.TotalAmount,
		d.PaidAmount, string(d.Status), micros(d.DueDate), micros(d.CreatedAt), micros(d.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to insert debt: %w", err)
	}
	return nil
}

// GetDebt retrieves a debt by ID. Inside a transaction the row is locked.
func (q *queries) GetDebt(ctx context.Context, id string) (*models.Debt, error) {
	row := q.queryRow(ctx,
		`SELECT `+debtColumns+` FROM debts WHERE id = ?`+q.forUpdate(),
		id,
	)
	d, err := scanDebt(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get debt: %w", err)
	}
	return d, nil
}

// UpdateDebt writes back the derived payment state of a debt.
func (q *queries) UpdateDebt(ctx context.Context, d *models.Debt) error {
	d.UpdatedAt = time.Now().UTC()

	result, err := q.exec(ctx,
		`UPDATE debts SET paid_amount = ?, status = ?, updated_at = ? WHERE id = ?`,
		d.PaidAmount, string(d.Status), micros(d.UpdatedAt), d.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update debt: %w", err)
	}
	return expectOneRow(result, "debt", d.ID)
}

// DeleteDebt removes a debt by ID.
func (q *queries) DeleteDebt(ctx context.Context, id string) error {
	result, err := q.exec(ctx, "DELETE FROM debts WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete debt: %w", err)
	}
	return expectOneRow(result, "debt", id)
}

// ListDebtsByStudent returns a student's debts, earliest due first.
func (q *queries) ListDebtsByStudent(ctx context.Context, studentID int64) ([]*models.Debt, error) {
	rows, err := q.query(ctx,
		`SELECT `+debtColumns+` FROM debts
		 WHERE student_id = ?
		 ORDER BY due_date ASC, created_at ASC`,
		studentID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list debts by student: %w", err)
	}
	defer rows.Close()

	var debts []*models.Debt
	for rows.Next() {
		d, err := scanDebt(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan debt: %w", err)
		}
		debts = append(debts, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate debts: %w", err)
	}
	return debts, nil
}

// RecordDebtPayment inserts the (debt, transaction) pair once.
func (q *queries) RecordDebtPayment(ctx context.Context, debtID, transactionID string, amount decimal.Decimal) (bool, error) {
	result, err := q.exec(ctx,
		`INSERT INTO debt_payments (debt_id, transaction_id, amount, applied_at)
		 VALUES (?, ?, ?, ?)
		 ON CONFLICT (debt_id, transaction_id) DO NOTHING`,
		debtID, transactionID, amount, micros(time.Now()),
	)
	if err != nil {
		return false, fmt.Errorf("failed to record debt payment: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to check debt payment insert: %w", err)
	}
	return n == 1, nil
}

func scanDebt(s scanner) (*models.Debt, error) {
	d := &models.Debt{}
	var (
		assignmentID                  sql.NullInt64
		status                        string
		dueDate, createdAt, updatedAt int64
	)
	err := s.Scan(&d.ID, &d.StudentID, &assignmentID, &d.Concept, &d.Description, &d.TotalAmount,
		&d.PaidAmount, &status, &dueDate, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}
	d.AssignmentID = assignmentID.Int64
	d.Status = models.DebtStatus(status)
	d.DueDate = fromMicros(dueDate)
	d.CreatedAt = fromMicros(createdAt)
	d.UpdatedAt = fromMicros(updatedAt)
	return d, nil
}
