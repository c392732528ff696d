package ledger

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mariafernandaa20/prexun-caja/internal/apperr"
	"github.com/mariafernandaa20/prexun-caja/internal/audit"
	"github.com/mariafernandaa20/prexun-caja/internal/calculator"
	"github.com/mariafernandaa20/prexun-caja/internal/models"
	"github.com/mariafernandaa20/prexun-caja/internal/storage"
)

// Allocator records money movements and propagates them to the open register
// and the linked debt in the same store transaction.
type Allocator struct {
	*deps
	debts *Debts
}

// RecordInput describes a money movement.
type RecordInput struct {
	CampusID      int64
	StudentID     int64
	DebtID        string
	Type          models.TransactionType
	Amount        decimal.Decimal
	PaymentMethod models.PaymentMethod
	Denominations models.Denominations
	Notes         string
	PaymentDate   *time.Time

	// Pending records a charge to be collected later (paid=0).
	Pending bool

	CreatedBy string
}

// TransactionChanges lists the fields to update. Nil fields are left unchanged.
type TransactionChanges struct {
	Amount        *decimal.Decimal
	PaymentMethod *models.PaymentMethod
	Denominations *models.Denominations
	Notes         *string
	PaymentDate   *time.Time
	DebtID        *string

	// MarkPaid settles a pending charge.
	MarkPaid bool

	ImageURL     *string
	SignatureURL *string

	UpdatedBy string
}

func (c TransactionChanges) touchesLedger() bool {
	return c.Amount != nil || c.PaymentMethod != nil || c.Denominations != nil ||
		c.Notes != nil || c.PaymentDate != nil || c.DebtID != nil || c.MarkPaid
}

// Allocation is the result of a write through the Allocator.
type Allocation struct {
	Transaction *models.Transaction

	// Reversed is the original transaction when Transaction offsets it.
	Reversed *models.Transaction

	// Debt is the linked debt after the write, if any.
	Debt *models.Debt

	// Warnings carry conflict-kind errors that did not stop the write.
	Warnings []error

	// payments are the debt_payments rows written, reported after commit.
	payments []appliedPayment
}

type appliedPayment struct {
	debtID        string
	transactionID string
	amount        decimal.Decimal
}

// Record validates and persists a transaction, assigning its folio.
// Validation and denomination checks happen before anything is written.
func (a *Allocator) Record(ctx context.Context, in RecordInput) (*Allocation, error) {
	if err := a.validate(ctx, in); err != nil {
		return nil, err
	}

	var alloc *Allocation
	err := a.store.WithinTx(ctx, func(q storage.Queries) error {
		var err error
		alloc, err = a.record(ctx, q, in)
		return err
	})
	if err != nil {
		return nil, err
	}

	a.recorded(alloc)
	return alloc, nil
}

func (a *Allocator) validate(ctx context.Context, in RecordInput) error {
	if err := a.checkFields(in); err != nil {
		return err
	}
	if err := a.checkCampus(ctx, in.CampusID); err != nil {
		return err
	}
	return a.checkStudent(ctx, in.StudentID)
}

// checkFields runs the pure checks of a movement.
func (a *Allocator) checkFields(in RecordInput) error {
	switch {
	case !in.Amount.IsPositive():
		return apperr.Validation("amount must be positive")
	case !wholeCents(in.Amount):
		return checkCents("amount", in.Amount)
	case !in.Type.Valid():
		return apperr.Validation("unknown transaction_type %q", in.Type)
	case !in.PaymentMethod.Valid():
		return apperr.Validation("unknown payment_method %q", in.PaymentMethod)
	case in.DebtID != "" && in.Type != models.TransactionIncome:
		return apperr.Validation("only income transactions can be linked to a debt")
	case in.PaymentMethod != models.MethodCash && len(in.Denominations) > 0:
		return apperr.Validation("denominations are only accepted for cash payments")
	case in.PaymentMethod == models.MethodCash && !in.Pending && len(in.Denominations) == 0:
		return apperr.Validation("cash payments require a denomination breakdown")
	}

	if in.PaymentMethod == models.MethodCash && len(in.Denominations) > 0 {
		if err := calculator.Reconcile(in.Amount, in.Denominations); err != nil {
			a.metrics.ReconcileFailed("record")
			return err
		}
	}
	return nil
}

// record writes a validated movement with q. The caller owns the transaction.
func (a *Allocator) record(ctx context.Context, q storage.Queries, in RecordInput) (*Allocation, error) {
	var debt *models.Debt
	studentID := in.StudentID
	if in.DebtID != "" {
		var err error
		debt, err = lockDebt(ctx, q, in.DebtID)
		if err != nil {
			return nil, err
		}
		if studentID != 0 && studentID != debt.StudentID {
			return nil, apperr.Validation("debt %s belongs to student %d, not %d", debt.ID, debt.StudentID, studentID)
		}
		studentID = debt.StudentID
	}

	now := a.now()
	t := &models.Transaction{
		CampusID:      in.CampusID,
		StudentID:     studentID,
		DebtID:        in.DebtID,
		Type:          in.Type,
		Amount:        in.Amount,
		PaymentMethod: in.PaymentMethod,
		Denominations: in.Denominations.Clone(),
		Paid:          !in.Pending,
		PaymentDate:   in.PaymentDate,
		Notes:         in.Notes,
		CreatedBy:     in.CreatedBy,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	var reg *models.CashRegister
	if t.Paid {
		if t.PaymentDate == nil {
			t.PaymentDate = &now
		}
		var err error
		if reg, err = openRegister(ctx, q, t.CampusID); err != nil {
			return nil, err
		}
		if reg != nil {
			t.CashRegisterID = reg.ID
		}
	}

	if err := a.insert(ctx, q, t); err != nil {
		return nil, err
	}

	alloc := &Allocation{Transaction: t, Debt: debt}
	if t.Paid {
		if err := a.post(ctx, q, alloc, reg, t.Amount); err != nil {
			return nil, err
		}
	}
	return alloc, nil
}

// insert assigns the next folio and persists t.
func (a *Allocator) insert(ctx context.Context, q storage.Queries, t *models.Transaction) error {
	folio, err := a.folios.Next(ctx, q, t.CampusID)
	if err != nil {
		return err
	}
	t.Folio = folio
	return q.CreateTransaction(ctx, t)
}

// post adds a settled transaction to the register totals and to its debt.
// debtAmount is negative for reversals.
func (a *Allocator) post(ctx context.Context, q storage.Queries, alloc *Allocation, reg *models.CashRegister, debtAmount decimal.Decimal) error {
	t := alloc.Transaction
	if reg != nil {
		reg.Totals.Add(t.Type, t.PaymentMethod, t.Amount)
		if err := q.UpdateRegister(ctx, reg); err != nil {
			return err
		}
	}

	if alloc.Debt != nil {
		result, err := a.debts.apply(ctx, q, alloc.Debt, t.ID, debtAmount)
		if err != nil {
			return err
		}
		alloc.Debt = result.Debt
		alloc.Warnings = append(alloc.Warnings, result.Warnings...)
		if result.Applied {
			alloc.payments = append(alloc.payments, appliedPayment{
				debtID:        result.Debt.ID,
				transactionID: t.ID,
				amount:        debtAmount,
			})
		}
	}
	return nil
}

// openRegister returns the locked open register of a campus, or nil when the drawer is closed.
func openRegister(ctx context.Context, q storage.Queries, campusID int64) (*models.CashRegister, error) {
	reg, err := q.GetOpenRegister(ctx, campusID)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return reg, nil
}

func (a *Allocator) recorded(alloc *Allocation) {
	t := alloc.Transaction
	a.metrics.TransactionRecorded(string(t.Type), string(t.PaymentMethod), t.Paid)
	a.emit(audit.TransactionCreated, *t, t.CreatedBy)
	a.paymentsApplied(alloc, t.CreatedBy)
}

// paymentsApplied reports the debt applications of a committed write.
func (a *Allocator) paymentsApplied(alloc *Allocation, operator string) {
	for _, p := range alloc.payments {
		a.debts.paymentApplied(p.debtID, p.transactionID, p.amount, operator)
	}
}

// Update amends a transaction. Pending charges may change freely and are settled
// with MarkPaid; settled ones only accept receipt image and signature changes.
func (a *Allocator) Update(ctx context.Context, id string, changes TransactionChanges) (*Allocation, error) {
	if id == "" {
		return nil, apperr.Validation("transaction id is required")
	}

	var (
		alloc   *Allocation
		settled bool
	)
	err := a.store.WithinTx(ctx, func(q storage.Queries) error {
		t, err := q.GetTransaction(ctx, id)
		if err != nil {
			return notFound(err, "transaction", id)
		}
		if t.IsVoided() {
			return apperr.Conflict("transaction %s is voided", t.ID)
		}
		if t.Paid && changes.touchesLedger() {
			return apperr.Conflict("transaction %s is settled; void or correct it instead of editing", t.ID)
		}

		if changes.ImageURL != nil {
			t.ImageURL = *changes.ImageURL
		}
		if changes.SignatureURL != nil {
			t.SignatureURL = *changes.SignatureURL
		}

		alloc = &Allocation{Transaction: t}
		if t.Paid {
			return q.UpdateTransaction(ctx, t)
		}

		in := applyChanges(t, changes)
		if err := a.checkFields(in); err != nil {
			return err
		}

		if in.DebtID != "" {
			if alloc.Debt, err = lockDebt(ctx, q, in.DebtID); err != nil {
				return err
			}
			if in.StudentID != 0 && in.StudentID != alloc.Debt.StudentID {
				return apperr.Validation("debt %s belongs to student %d, not %d",
					alloc.Debt.ID, alloc.Debt.StudentID, in.StudentID)
			}
			in.StudentID = alloc.Debt.StudentID
		}

		t.StudentID = in.StudentID
		t.DebtID = in.DebtID
		t.Amount = in.Amount
		t.PaymentMethod = in.PaymentMethod
		t.Denominations = in.Denominations
		t.Notes = in.Notes
		t.PaymentDate = in.PaymentDate

		var reg *models.CashRegister
		if changes.MarkPaid {
			settled = true
			t.Paid = true
			if t.PaymentDate == nil {
				now := a.now()
				t.PaymentDate = &now
			}
			if reg, err = openRegister(ctx, q, t.CampusID); err != nil {
				return err
			}
			if reg != nil {
				t.CashRegisterID = reg.ID
			}
		}

		if err := q.UpdateTransaction(ctx, t); err != nil {
			return err
		}
		if settled {
			return a.post(ctx, q, alloc, reg, t.Amount)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if settled {
		a.metrics.TransactionRecorded(string(alloc.Transaction.Type), string(alloc.Transaction.PaymentMethod), true)
	}
	a.emit(audit.TransactionUpdated, *alloc.Transaction, changes.UpdatedBy)
	a.paymentsApplied(alloc, changes.UpdatedBy)
	return alloc, nil
}

// applyChanges returns the movement t would describe after changes.
func applyChanges(t *models.Transaction, c TransactionChanges) RecordInput {
	in := RecordInput{
		CampusID:      t.CampusID,
		StudentID:     t.StudentID,
		DebtID:        t.DebtID,
		Type:          t.Type,
		Amount:        t.Amount,
		PaymentMethod: t.PaymentMethod,
		Denominations: t.Denominations,
		Notes:         t.Notes,
		PaymentDate:   t.PaymentDate,
		Pending:       !c.MarkPaid,
	}
	if c.Amount != nil {
		in.Amount = *c.Amount
	}
	if c.PaymentMethod != nil {
		in.PaymentMethod = *c.PaymentMethod
		if in.PaymentMethod != models.MethodCash && c.Denominations == nil {
			in.Denominations = nil
		}
	}
	if c.Denominations != nil {
		in.Denominations = c.Denominations.Clone()
	}
	if c.Notes != nil {
		in.Notes = *c.Notes
	}
	if c.PaymentDate != nil {
		date := *c.PaymentDate
		in.PaymentDate = &date
	}
	if c.DebtID != nil {
		in.DebtID = *c.DebtID
	}
	return in
}

// Void cancels a transaction. A pending charge is only marked voided; a settled
// one is offset by a new entry of the opposite type, so history stays append-only.
func (a *Allocator) Void(ctx context.Context, id, reason, operator string) (*Allocation, error) {
	if id == "" {
		return nil, apperr.Validation("transaction id is required")
	}
	if strings.TrimSpace(reason) == "" {
		return nil, apperr.Validation("a reason is required to void a transaction")
	}

	var alloc *Allocation
	err := a.store.WithinTx(ctx, func(q storage.Queries) error {
		var err error
		alloc, err = a.void(ctx, q, id, reason, operator)
		return err
	})
	if err != nil {
		return nil, err
	}

	a.voided(alloc, operator)
	return alloc, nil
}

func (a *Allocator) void(ctx context.Context, q storage.Queries, id, reason, operator string) (*Allocation, error) {
	orig, err := q.GetTransaction(ctx, id)
	if err != nil {
		return nil, notFound(err, "transaction", id)
	}
	if orig.IsVoided() {
		return nil, apperr.Conflict("transaction %s is already voided", orig.ID)
	}
	if orig.IsReversal() {
		return nil, apperr.Conflict("transaction %s is a reversal and cannot be voided", orig.ID)
	}

	now := a.now()
	note := "void: " + strings.TrimSpace(reason)

	if !orig.Paid {
		orig.VoidedAt = &now
		orig.Notes = appendNote(orig.Notes, note)
		if err := q.UpdateTransaction(ctx, orig); err != nil {
			return nil, err
		}
		return &Allocation{Transaction: orig}, nil
	}

	offset := &models.Transaction{
		CampusID:      orig.CampusID,
		StudentID:     orig.StudentID,
		DebtID:        orig.DebtID,
		Type:          orig.Type.Opposite(),
		Amount:        orig.Amount,
		PaymentMethod: orig.PaymentMethod,
		Denominations: orig.Denominations.Clone(),
		Paid:          true,
		PaymentDate:   &now,
		Notes:         note,
		ReversesID:    orig.ID,
		CreatedBy:     operator,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	reg, err := openRegister(ctx, q, offset.CampusID)
	if err != nil {
		return nil, err
	}
	if reg != nil {
		offset.CashRegisterID = reg.ID
	}
	if err := a.insert(ctx, q, offset); err != nil {
		return nil, err
	}

	orig.ReversedByID = offset.ID
	orig.VoidedAt = &now
	if err := q.UpdateTransaction(ctx, orig); err != nil {
		return nil, err
	}

	alloc := &Allocation{Transaction: offset, Reversed: orig}
	if orig.DebtID != "" {
		if alloc.Debt, err = lockDebt(ctx, q, orig.DebtID); err != nil {
			return nil, err
		}
	}
	if err := a.post(ctx, q, alloc, reg, orig.Amount.Neg()); err != nil {
		return nil, err
	}
	return alloc, nil
}

func (a *Allocator) voided(alloc *Allocation, operator string) {
	offset := alloc.Reversed != nil
	a.metrics.TransactionVoided(offset)
	original := alloc.Transaction
	if offset {
		original = alloc.Reversed
		a.metrics.TransactionRecorded(string(alloc.Transaction.Type), string(alloc.Transaction.PaymentMethod), true)
	}
	a.emit(audit.TransactionVoided, map[string]any{
		"transaction_id": original.ID,
		"folio":          original.Folio,
		"reversed_by_id": original.ReversedByID,
	}, operator)
	a.paymentsApplied(alloc, operator)
}

// Correct voids a transaction and records its replacement in one store transaction.
func (a *Allocator) Correct(ctx context.Context, id string, in RecordInput, reason string) (*Allocation, error) {
	if id == "" {
		return nil, apperr.Validation("transaction id is required")
	}
	if strings.TrimSpace(reason) == "" {
		return nil, apperr.Validation("a reason is required to correct a transaction")
	}
	if err := a.validate(ctx, in); err != nil {
		return nil, err
	}

	var voided, alloc *Allocation
	err := a.store.WithinTx(ctx, func(q storage.Queries) error {
		var err error
		if voided, err = a.void(ctx, q, id, reason, in.CreatedBy); err != nil {
			return err
		}
		if voided.Reversed != nil {
			if voided.Reversed.CampusID != in.CampusID {
				return apperr.Validation("a correction must stay in campus %d", voided.Reversed.CampusID)
			}
		} else if voided.Transaction.CampusID != in.CampusID {
			return apperr.Validation("a correction must stay in campus %d", voided.Transaction.CampusID)
		}
		if alloc, err = a.record(ctx, q, in); err != nil {
			return err
		}
		alloc.Warnings = append(voided.Warnings, alloc.Warnings...)
		return nil
	})
	if err != nil {
		return nil, err
	}

	a.voided(voided, in.CreatedBy)
	a.recorded(alloc)
	if voided.Reversed != nil {
		alloc.Reversed = voided.Reversed
	} else {
		alloc.Reversed = voided.Transaction
	}
	return alloc, nil
}

// Receipt returns the printable snapshot of a transaction by its public uuid.
func (a *Allocator) Receipt(ctx context.Context, receiptUUID, prefix string) (*models.Receipt, error) {
	if receiptUUID == "" {
		return nil, apperr.Validation("uuid is required")
	}
	t, err := a.store.GetTransactionByUUID(ctx, receiptUUID)
	if err != nil {
		return nil, notFound(err, "receipt", receiptUUID)
	}

	receipt := &models.Receipt{
		Transaction:  t,
		FolioDisplay: calculator.FormatFolio(prefix, t.Folio, a.folioWidth),
		Total:        t.Amount,
	}
	receipt.Subtotal, receipt.Tax = calculator.TaxBreakdown(t.Amount)

	if t.DebtID != "" {
		d, err := a.store.GetDebt(ctx, t.DebtID)
		if err != nil {
			return nil, notFound(err, "debt", t.DebtID)
		}
		calculator.RefreshDebt(d, a.now())
		receipt.Debt = d
	}
	return receipt, nil
}

func appendNote(notes, note string) string {
	if notes == "" {
		return note
	}
	return notes + "\n" + note
}
