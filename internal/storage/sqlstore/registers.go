package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/mariafernandaa20/prexun-caja/internal/models"
	"github.com/mariafernandaa20/prexun-caja/internal/storage"
)

const registerColumns = `id, campus_id, status, initial_amount, initial_denominations,
	final_amount, final_denominations, next_day_amount, next_day_denominations,
	expected_cash, cash_difference, totals, notes, opened_by, closed_by, opened_at, closed_at`

// CreateRegister persists a new cash register.
func (q *queries) CreateRegister(ctx context.Context, r *models.CashRegister) error {
	if r.ID == "" {
		r.ID = uuid.New().String()
	}

	initialDenoms, err := encodeDenominations(r.InitialDenominations)
	if err != nil {
		return err
	}
	finalDenoms, err := encodeDenominations(r.FinalDenominations)
	if err != nil {
		return err
	}
	nextDayDenoms, err := encodeDenominations(r.NextDayDenominations)
	if err != nil {
		return err
	}
	totals, err := encodeTotals(r.Totals)
	if err != nil {
		return err
	}

	_, err = q.exec(ctx,
		`INSERT INTO cash_registers (`+registerColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ID, r.CampusID, string(r.Status), r.InitialAmount, initialDenoms,
		nullDecimal(r.FinalAmount), finalDenoms, nullDecimal(r.NextDayAmount), nextDayDenoms,
		nullDecimal(r.ExpectedCash), nullDecimal(r.CashDifference), totals, r.Notes,
		r.OpenedBy, r.ClosedBy, micros(r.OpenedAt), nullMicros(r.ClosedAt),
	)
	if err != nil {
		if q.d.uniqueViolation(err) {
			return storage.ErrOpenRegisterExists
		}
		return fmt.Errorf("failed to insert cash register: %w", err)
	}
	return nil
}

// GetRegister retrieves a register by ID.
func (q *queries) GetRegister(ctx context.Context, id string) (*models.CashRegister, error) {
	row := q.queryRow(ctx,
		`SELECT `+registerColumns+` FROM cash_registers WHERE id = ?`+q.forUpdate(),
		id,
	)
	r, err := scanRegister(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get cash register: %w", err)
	}
	return r, nil
}

// GetOpenRegister retrieves the open register of a campus.
func (q *queries) GetOpenRegister(ctx context.Context, campusID int64) (*models.CashRegister, error) {
	row := q.queryRow(ctx,
		`SELECT `+registerColumns+` FROM cash_registers
		 WHERE campus_id = ? AND status = 'open'`+q.forUpdate(),
		campusID,
	)
	r, err := scanRegister(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get open cash register: %w", err)
	}
	return r, nil
}

// GetLastClosedRegister retrieves the latest closed register of a campus.
func (q *queries) GetLastClosedRegister(ctx context.Context, campusID int64) (*models.CashRegister, error) {
	row := q.queryRow(ctx,
		`SELECT `+registerColumns+` FROM cash_registers
		 WHERE campus_id = ? AND status = 'closed'
		 ORDER BY opened_at DESC
		 LIMIT 1`,
		campusID,
	)
	r, err := scanRegister(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get last closed cash register: %w", err)
	}
	return r, nil
}

// UpdateRegister writes back status, closing fields and running totals.
func (q *queries) UpdateRegister(ctx context.Context, r *models.CashRegister) error {
	finalDenoms, err := encodeDenominations(r.FinalDenominations)
	if err != nil {
		return err
	}
	nextDayDenoms, err := encodeDenominations(r.NextDayDenominations)
	if err != nil {
		return err
	}
	totals, err := encodeTotals(r.Totals)
	if err != nil {
		return err
	}

	result, err := q.exec(ctx,
		`UPDATE cash_registers
		 SET status = ?, final_amount = ?, final_denominations = ?, next_day_amount = ?,
		     next_day_denominations = ?, expected_cash = ?, cash_difference = ?, totals = ?,
		     notes = ?, closed_by = ?, closed_at = ?
		 WHERE id = ?`,
		string(r.Status), nullDecimal(r.FinalAmount), finalDenoms, nullDecimal(r.NextDayAmount),
		nextDayDenoms, nullDecimal(r.ExpectedCash), nullDecimal(r.CashDifference), totals,
		r.Notes, r.ClosedBy, nullMicros(r.ClosedAt),
		r.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update cash register: %w", err)
	}
	return expectOneRow(result, "cash register", r.ID)
}

// ListRegisters returns every register of a campus, newest first.
func (q *queries) ListRegisters(ctx context.Context, campusID int64) ([]*models.CashRegister, error) {
	rows, err := q.query(ctx,
		`SELECT `+registerColumns+` FROM cash_registers
		 WHERE campus_id = ?
		 ORDER BY opened_at DESC`,
		campusID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list cash registers: %w", err)
	}
	defer rows.Close()

	var registers []*models.CashRegister
	for rows.Next() {
		r, err := scanRegister(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan cash register: %w", err)
		}
		registers = append(registers, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate cash registers: %w", err)
	}
	return registers, nil
}

func scanRegister(s scanner) (*models.CashRegister, error) {
	r := &models.CashRegister{}
	var (
		status                                 string
		initialDenoms, finalDenoms, nextDenoms sql.NullString
		finalAmount, nextDayAmount             decimal.NullDecimal
		expectedCash, cashDifference           decimal.NullDecimal
		totals                                 string
		openedBy, closedBy                     sql.NullString
		openedAt                               int64
		closedAt                               sql.NullInt64
	)
	err := s.Scan(&r.ID, &r.CampusID, &status, &r.InitialAmount, &initialDenoms,
		&finalAmount, &finalDenoms, &nextDayAmount, &nextDenoms,
		&expectedCash, &cashDifference, &totals, &r.Notes, &openedBy, &closedBy, &openedAt, &closedAt)
	if err != nil {
		return nil, err
	}

	r.Status = models.RegisterStatus(status)
	r.FinalAmount = decimalPtr(finalAmount)
	r.NextDayAmount = decimalPtr(nextDayAmount)
	r.ExpectedCash = decimalPtr(expectedCash)
	r.CashDifference = decimalPtr(cashDifference)
	r.OpenedBy = openedBy.String
	r.ClosedBy = closedBy.String
	r.OpenedAt = fromMicros(openedAt)
	r.ClosedAt = timePtr(closedAt)

	if r.InitialDenominations, err = decodeDenominations(initialDenoms); err != nil {
		return nil, err
	}
	if r.FinalDenominations, err = decodeDenominations(finalDenoms); err != nil {
		return nil, err
	}
	if r.NextDayDenominations, err = decodeDenominations(nextDenoms); err != nil {
		return nil, err
	}
	if r.Totals, err = decodeTotals(totals); err != nil {
		return nil, err
	}
	return r, nil
}

func expectOneRow(result sql.Result, entity, id string) error {
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check affected rows: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%s %s: %w", entity, id, storage.ErrNotFound)
	}
	return nil
}
