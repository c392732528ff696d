package ledger

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"

	"github.com/mariafernandaa20/prexun-caja/internal/apperr"
	"github.com/mariafernandaa20/prexun-caja/internal/audit"
	"github.com/mariafernandaa20/prexun-caja/internal/calculator"
	"github.com/mariafernandaa20/prexun-caja/internal/models"
	"github.com/mariafernandaa20/prexun-caja/internal/storage"
)

// Registers manages the open/close lifecycle of campus cash drawers.
type Registers struct {
	*deps
}

// OpenRegisterInput describes a drawer being opened.
type OpenRegisterInput struct {
	CampusID             int64
	InitialAmount        decimal.Decimal
	InitialDenominations models.Denominations
	Notes                string
	OpenedBy             string

	// CarryForward takes the initial cash from the next-day amounts of the
	// campus's last closed register, ignoring InitialAmount and InitialDenominations.
	CarryForward bool
}

// CloseRegisterInput describes the final count of a drawer.
type CloseRegisterInput struct {
	RegisterID           string
	FinalAmount          decimal.Decimal
	FinalDenominations   models.Denominations
	NextDayAmount        decimal.Decimal
	NextDayDenominations models.Denominations
	Notes                string
	ClosedBy             string
}

// Open creates a new open register for a campus.
// Fails with a conflict when the campus already has one open.
func (r *Registers) Open(ctx context.Context, in OpenRegisterInput) (*models.CashRegister, error) {
	if err := r.checkCampus(ctx, in.CampusID); err != nil {
		return nil, err
	}
	if !in.CarryForward {
		if err := r.checkOpeningCash(in.InitialAmount, in.InitialDenominations); err != nil {
			return nil, err
		}
	}

	var reg *models.CashRegister
	err := r.store.WithinTx(ctx, func(q storage.Queries) error {
		if _, err := q.GetOpenRegister(ctx, in.CampusID); err == nil {
			return apperr.Conflict("campus %d already has an open cash register", in.CampusID)
		} else if !errors.Is(err, storage.ErrNotFound) {
			return err
		}

		amount, denoms := in.InitialAmount, in.InitialDenominations.Clone()
		if in.CarryForward {
			last, err := q.GetLastClosedRegister(ctx, in.CampusID)
			if err != nil {
				return notFound(err, "closed cash register for campus", formatID(in.CampusID))
			}
			amount, denoms = decimal.Zero, last.NextDayDenominations.Clone()
			if last.NextDayAmount != nil {
				amount = *last.NextDayAmount
			}
			if err := r.checkOpeningCash(amount, denoms); err != nil {
				return err
			}
		}

		reg = &models.CashRegister{
			CampusID:             in.CampusID,
			Status:               models.RegisterOpen,
			InitialAmount:        amount,
			InitialDenominations: denoms,
			Notes:                in.Notes,
			OpenedBy:             in.OpenedBy,
			OpenedAt:             r.now(),
		}
		if err := q.CreateRegister(ctx, reg); err != nil {
			if errors.Is(err, storage.ErrOpenRegisterExists) {
				return apperr.Conflict("campus %d already has an open cash register", in.CampusID)
			}
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	r.metrics.RegisterOpened(reg.CampusID)
	r.emit(audit.RegisterOpened, *reg, in.OpenedBy)
	return reg, nil
}

func (r *Registers) checkOpeningCash(amount decimal.Decimal, denoms models.Denominations) error {
	if amount.IsNegative() {
		return apperr.Validation("initial_amount cannot be negative")
	}
	if err := checkCents("initial_amount", amount); err != nil {
		return err
	}
	if len(denoms) > 0 {
		if err := calculator.Reconcile(amount, denoms); err != nil {
			r.metrics.ReconcileFailed("open")
			return err
		}
	}
	return nil
}

// GetCurrent returns the open register of a campus.
func (r *Registers) GetCurrent(ctx context.Context, campusID int64) (*models.CashRegister, error) {
	if campusID <= 0 {
		return nil, apperr.Validation("campus_id must be positive")
	}
	reg, err := r.store.GetOpenRegister(ctx, campusID)
	if err != nil {
		return nil, notFound(err, "open cash register for campus", formatID(campusID))
	}
	return reg, nil
}

// Close counts the drawer and closes the register.
func (r *Registers) Close(ctx context.Context, in CloseRegisterInput) (*models.CashRegister, error) {
	if in.RegisterID == "" {
		return nil, apperr.Validation("register_id is required")
	}
	if in.FinalAmount.IsNegative() {
		return nil, apperr.Validation("final_amount cannot be negative")
	}
	if in.NextDayAmount.IsNegative() {
		return nil, apperr.Validation("next_day amount cannot be negative")
	}
	if err := checkCents("final_amount", in.FinalAmount); err != nil {
		return nil, err
	}
	if err := checkCents("next_day amount", in.NextDayAmount); err != nil {
		return nil, err
	}
	if in.NextDayAmount.GreaterThan(in.FinalAmount) {
		return nil, apperr.Validation("next_day amount $%s exceeds final amount $%s",
			in.NextDayAmount.StringFixed(2), in.FinalAmount.StringFixed(2))
	}
	for _, count := range []struct {
		amount decimal.Decimal
		denoms models.Denominations
	}{
		{in.FinalAmount, in.FinalDenominations},
		{in.NextDayAmount, in.NextDayDenominations},
	} {
		if len(count.denoms) == 0 {
			continue
		}
		if err := calculator.Reconcile(count.amount, count.denoms); err != nil {
			r.metrics.ReconcileFailed("close")
			return nil, err
		}
	}

	var reg *models.CashRegister
	err := r.store.WithinTx(ctx, func(q storage.Queries) error {
		var err error
		reg, err = q.GetRegister(ctx, in.RegisterID)
		if err != nil {
			return notFound(err, "cash register", in.RegisterID)
		}
		if !reg.IsOpen() {
			return apperr.Conflict("cash register %s is already closed", reg.ID)
		}

		final, nextDay := in.FinalAmount, in.NextDayAmount
		expected := calculator.ExpectedCash(reg)
		difference := final.Sub(expected)
		closedAt := r.now()

		reg.Status = models.RegisterClosed
		reg.FinalAmount = &final
		reg.FinalDenominations = in.FinalDenominations.Clone()
		reg.NextDayAmount = &nextDay
		reg.NextDayDenominations = in.NextDayDenominations.Clone()
		reg.ExpectedCash = &expected
		reg.CashDifference = &difference
		reg.ClosedBy = in.ClosedBy
		reg.ClosedAt = &closedAt
		if in.Notes != "" {
			reg.Notes = in.Notes
		}
		return q.UpdateRegister(ctx, reg)
	})
	if err != nil {
		return nil, err
	}

	r.metrics.RegisterClosed(reg.CampusID, reg.CashDifference.InexactFloat64())
	r.emit(audit.RegisterClosed, *reg, in.ClosedBy)
	return reg, nil
}

// History returns every register of a campus, newest first.
func (r *Registers) History(ctx context.Context, campusID int64) ([]*models.CashRegister, error) {
	if campusID <= 0 {
		return nil, apperr.Validation("campus_id must be positive")
	}
	registers, err := r.store.ListRegisters(ctx, campusID)
	if err != nil {
		return nil, err
	}
	if registers == nil {
		registers = []*models.CashRegister{}
	}
	return registers, nil
}

// Summary recomputes the totals of a register from its transactions.
func (r *Registers) Summary(ctx context.Context, registerID string) (*calculator.RegisterSummary, error) {
	if registerID == "" {
		return nil, apperr.Validation("register_id is required")
	}
	reg, err := r.store.GetRegister(ctx, registerID)
	if err != nil {
		return nil, notFound(err, "cash register", registerID)
	}
	txs, err := r.store.ListTransactionsByRegister(ctx, reg.ID)
	if err != nil {
		return nil, err
	}
	summary := calculator.SummarizeRegister(reg.ID, reg.InitialAmount, txs)
	return &summary, nil
}
