package ledger

import (
	"context"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mariafernandaa20/prexun-caja/internal/apperr"
	"github.com/mariafernandaa20/prexun-caja/internal/audit"
	"github.com/mariafernandaa20/prexun-caja/internal/calculator"
	"github.com/mariafernandaa20/prexun-caja/internal/models"
	"github.com/mariafernandaa20/prexun-caja/internal/storage"
)

// Debts owns debt records and the application of payments to them.
type Debts struct {
	*deps
}

// CreateDebtInput describes a new debt.
type CreateDebtInput struct {
	StudentID    int64
	AssignmentID int64
	Concept      string
	Description  string
	TotalAmount  decimal.Decimal
	DueDate      time.Time
	CreatedBy    string
}

// PaymentResult is the outcome of applying a transaction to a debt.
type PaymentResult struct {
	Debt *models.Debt

	// Applied is false when the transaction had already been applied.
	Applied bool

	// Warnings carry conflict-kind errors that did not stop the payment, e.g. overpayment.
	Warnings []error
}

// CreateDebt records a new debt with nothing paid.
func (l *Debts) CreateDebt(ctx context.Context, in CreateDebtInput) (*models.Debt, error) {
	concept := strings.TrimSpace(in.Concept)
	switch {
	case in.StudentID <= 0:
		return nil, apperr.Validation("student_id must be positive")
	case concept == "":
		return nil, apperr.Validation("concept is required")
	case !in.TotalAmount.IsPositive():
		return nil, apperr.Validation("total_amount must be positive")
	case !wholeCents(in.TotalAmount):
		return nil, checkCents("total_amount", in.TotalAmount)
	case in.DueDate.IsZero():
		return nil, apperr.Validation("due_date is required")
	case in.AssignmentID < 0:
		return nil, apperr.Validation("assignment_id cannot be negative")
	}
	if err := l.checkStudent(ctx, in.StudentID); err != nil {
		return nil, err
	}

	now := l.now()
	d := &models.Debt{
		StudentID:    in.StudentID,
		AssignmentID: in.AssignmentID,
		Concept:      concept,
		Description:  in.Description,
		TotalAmount:  in.TotalAmount,
		PaidAmount:   decimal.Zero,
		DueDate:      in.DueDate.UTC(),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	calculator.RefreshDebt(d, now)

	if err := l.store.CreateDebt(ctx, d); err != nil {
		return nil, err
	}

	l.emit(audit.DebtCreated, *d, in.CreatedBy)
	return d, nil
}

// Get returns a debt with its linked transactions and status recomputed for now.
func (l *Debts) Get(ctx context.Context, debtID string) (*models.Debt, error) {
	if debtID == "" {
		return nil, apperr.Validation("debt_id is required")
	}
	d, err := l.store.GetDebt(ctx, debtID)
	if err != nil {
		return nil, notFound(err, "debt", debtID)
	}
	if err := l.embedTransactions(ctx, l.store, d); err != nil {
		return nil, err
	}
	return d, nil
}

// ListByStudent returns the debts of a student, earliest due first, each with
// its linked transactions.
func (l *Debts) ListByStudent(ctx context.Context, studentID int64) ([]*models.Debt, error) {
	if studentID <= 0 {
		return nil, apperr.Validation("student_id must be positive")
	}
	debts, err := l.store.ListDebtsByStudent(ctx, studentID)
	if err != nil {
		return nil, err
	}
	for _, d := range debts {
		if err := l.embedTransactions(ctx, l.store, d); err != nil {
			return nil, err
		}
	}
	if debts == nil {
		debts = []*models.Debt{}
	}
	return debts, nil
}

func (l *Debts) embedTransactions(ctx context.Context, q storage.Queries, d *models.Debt) error {
	txs, err := q.ListTransactionsByDebt(ctx, d.ID)
	if err != nil {
		return err
	}
	d.Transactions = txs
	calculator.RefreshDebt(d, l.now())
	return nil
}

// ApplyPayment applies a paid income transaction to a debt, linking it first
// when it is not linked yet. Applying the same transaction twice is a no-op.
func (l *Debts) ApplyPayment(ctx context.Context, debtID, transactionID string) (*PaymentResult, error) {
	if debtID == "" || transactionID == "" {
		return nil, apperr.Validation("debt_id and transaction_id are required")
	}

	var (
		result *PaymentResult
		tx     *models.Transaction
	)
	err := l.store.WithinTx(ctx, func(q storage.Queries) error {
		var err error
		tx, err = q.GetTransaction(ctx, transactionID)
		if err != nil {
			return notFound(err, "transaction", transactionID)
		}
		switch {
		case !tx.Paid:
			return apperr.Validation("transaction %s is pending and cannot pay a debt until settled", tx.ID)
		case tx.Type != models.TransactionIncome:
			return apperr.Validation("only income transactions can pay a debt")
		case tx.IsVoided() || tx.IsReversal():
			return apperr.Conflict("transaction %s is voided or a reversal", tx.ID)
		case tx.DebtID != "" && tx.DebtID != debtID:
			return apperr.Conflict("transaction %s is already linked to debt %s", tx.ID, tx.DebtID)
		}

		debt, err := lockDebt(ctx, q, debtID)
		if err != nil {
			return err
		}
		if tx.StudentID != 0 && tx.StudentID != debt.StudentID {
			return apperr.Validation("transaction %s belongs to student %d, debt %s to student %d",
				tx.ID, tx.StudentID, debt.ID, debt.StudentID)
		}

		if tx.DebtID == "" {
			tx.DebtID = debt.ID
			if tx.StudentID == 0 {
				tx.StudentID = debt.StudentID
			}
			if err := q.UpdateTransaction(ctx, tx); err != nil {
				return err
			}
		}

		result, err = l.apply(ctx, q, debt, tx.ID, tx.Amount)
		if err != nil {
			return err
		}
		return l.embedTransactions(ctx, q, result.Debt)
	})
	if err != nil {
		return nil, err
	}

	if result.Applied {
		l.paymentApplied(result.Debt.ID, tx.ID, tx.Amount, tx.CreatedBy)
	}
	return result, nil
}

// paymentApplied reports a committed debt_payments row. amount is negative for reversals.
func (l *Debts) paymentApplied(debtID, transactionID string, amount decimal.Decimal, operator string) {
	l.metrics.DebtPaymentApplied()
	l.emit(audit.DebtPaymentApplied, map[string]any{
		"debt_id":        debtID,
		"transaction_id": transactionID,
		"amount":         amount,
	}, operator)
}

// Delete removes a debt that no transaction references.
func (l *Debts) Delete(ctx context.Context, debtID, operator string) error {
	if debtID == "" {
		return apperr.Validation("debt_id is required")
	}
	err := l.store.WithinTx(ctx, func(q storage.Queries) error {
		d, err := lockDebt(ctx, q, debtID)
		if err != nil {
			return err
		}
		txs, err := q.ListTransactionsByDebt(ctx, d.ID)
		if err != nil {
			return err
		}
		if len(txs) > 0 {
			return apperr.Conflict("debt %s has %d linked transactions", d.ID, len(txs))
		}
		return q.DeleteDebt(ctx, d.ID)
	})
	if err != nil {
		return err
	}

	l.emit(audit.DebtDeleted, map[string]string{"debt_id": debtID}, operator)
	return nil
}

func lockDebt(ctx context.Context, q storage.Queries, debtID string) (*models.Debt, error) {
	d, err := q.GetDebt(ctx, debtID)
	if err != nil {
		return nil, notFound(err, "debt", debtID)
	}
	return d, nil
}

// apply records amount from transactionID against a locked debt.
// Negative amounts come from reversals.
func (l *Debts) apply(ctx context.Context, q storage.Queries, d *models.Debt, transactionID string, amount decimal.Decimal) (*PaymentResult, error) {
	wasSettled := d.IsSettled()

	applied, err := q.RecordDebtPayment(ctx, d.ID, transactionID, amount)
	if err != nil {
		return nil, err
	}
	result := &PaymentResult{Debt: d, Applied: applied}
	if !applied {
		calculator.RefreshDebt(d, l.now())
		return result, nil
	}

	d.PaidAmount = d.PaidAmount.Add(amount)
	calculator.RefreshDebt(d, l.now())
	if err := q.UpdateDebt(ctx, d); err != nil {
		return nil, err
	}

	if amount.IsPositive() && d.OverpaidAmount.IsPositive() {
		if wasSettled {
			result.Warnings = append(result.Warnings,
				apperr.Conflict("debt %s was already paid; $%s is a pure overpayment", d.ID, amount.StringFixed(2)))
		} else {
			result.Warnings = append(result.Warnings,
				apperr.Conflict("debt %s overpaid by $%s", d.ID, d.OverpaidAmount.StringFixed(2)))
		}
	}
	return result, nil
}
