package ledger

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/mariafernandaa20/prexun-caja/internal/apperr"
	"github.com/mariafernandaa20/prexun-caja/internal/models"
)

func TestRecordValidation(t *testing.T) {
	l, _ := newTestLedger(t)
	ctx := context.Background()
	debt := createTestDebt(t, l, 7, "100", testEpoch.AddDate(0, 1, 0))

	tests := []struct {
		name string
		in   RecordInput
		kind apperr.Kind
	}{
		{"zero amount", RecordInput{CampusID: 1, Type: models.TransactionIncome, Amount: decimal.Zero, PaymentMethod: models.MethodCard}, apperr.KindValidation},
		{"negative amount", RecordInput{CampusID: 1, Type: models.TransactionIncome, Amount: dec("-5"), PaymentMethod: models.MethodCard}, apperr.KindValidation},
		{"unknown type", RecordInput{CampusID: 1, Type: "refund", Amount: dec("5"), PaymentMethod: models.MethodCard}, apperr.KindValidation},
		{"unknown method", RecordInput{CampusID: 1, Type: models.TransactionIncome, Amount: dec("5"), PaymentMethod: "cheque"}, apperr.KindValidation},
		{"missing campus", RecordInput{Type: models.TransactionIncome, Amount: dec("5"), PaymentMethod: models.MethodCard}, apperr.KindValidation},
		{"cash without denominations", RecordInput{CampusID: 1, Type: models.TransactionIncome, Amount: dec("5"), PaymentMethod: models.MethodCash}, apperr.KindValidation},
		{"card with denominations", RecordInput{CampusID: 1, Type: models.TransactionIncome, Amount: dec("5"), PaymentMethod: models.MethodCard, Denominations: models.Denominations{5: 1}}, apperr.KindValidation},
		{"expense against a debt", RecordInput{CampusID: 1, DebtID: debt.ID, Type: models.TransactionExpense, Amount: dec("5"), PaymentMethod: models.MethodCard}, apperr.KindValidation},
		{"debt of another student", RecordInput{CampusID: 1, StudentID: 8, DebtID: debt.ID, Type: models.TransactionIncome, Amount: dec("5"), PaymentMethod: models.MethodCard}, apperr.KindValidation},
		{"unknown debt", RecordInput{CampusID: 1, DebtID: "missing", Type: models.TransactionIncome, Amount: dec("5"), PaymentMethod: models.MethodCard}, apperr.KindNotFound},
		{"sub-cent cash", RecordInput{CampusID: 1, Type: models.TransactionIncome, Amount: dec("199.996"), PaymentMethod: models.MethodCash, Denominations: models.Denominations{200: 1}}, apperr.KindValidation},
		{"sub-cent card", RecordInput{CampusID: 1, Type: models.TransactionIncome, Amount: dec("10.005"), PaymentMethod: models.MethodCard}, apperr.KindValidation},
		{"invalid face value", RecordInput{CampusID: 1, Type: models.TransactionIncome, Amount: dec("5"), PaymentMethod: models.MethodCash, Denominations: models.Denominations{0: 5}}, apperr.KindValidation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := l.Transactions.Record(ctx, tt.in)
			expectKind(t, err, tt.kind)
		})
	}

	// None of the rejected records consumed a folio.
	alloc, err := l.Transactions.Record(ctx, cardIncome(1, "5"))
	if err != nil {
		t.Fatalf("Record failed: %v", err)
	}
	if alloc.Transaction.Folio != 1 {
		t.Errorf("Expected folio 1, got %d", alloc.Transaction.Folio)
	}
}

func TestRecordWithoutOpenRegister(t *testing.T) {
	l, _ := newTestLedger(t)
	ctx := context.Background()

	alloc, err := l.Transactions.Record(ctx, RecordInput{
		CampusID:      1,
		Type:          models.TransactionIncome,
		Amount:        dec("100"),
		PaymentMethod: models.MethodCash,
		Denominations: models.Denominations{100: 1},
	})
	if err != nil {
		t.Fatalf("Record failed: %v", err)
	}
	if alloc.Transaction.CashRegisterID != "" {
		t.Errorf("Expected no register link, got %q", alloc.Transaction.CashRegisterID)
	}
	if alloc.Transaction.PaymentDate == nil {
		t.Error("Expected payment date to default to now")
	}
}

func TestPendingCharge(t *testing.T) {
	l, store := newTestLedger(t)
	ctx := context.Background()
	reg := openTestRegister(t, l, 1)
	debt := createTestDebt(t, l, 9, "300", testEpoch.AddDate(0, 1, 0))

	alloc, err := l.Transactions.Record(ctx, RecordInput{
		CampusID:      1,
		DebtID:        debt.ID,
		Type:          models.TransactionIncome,
		Amount:        dec("250"),
		PaymentMethod: models.MethodCash,
		Pending:       true,
	})
	if err != nil {
		t.Fatalf("Record failed: %v", err)
	}
	charge := alloc.Transaction
	if charge.Paid || charge.CashRegisterID != "" || charge.Folio == 0 {
		t.Fatalf("Expected an unpaid charge with a folio and no register, got %+v", charge)
	}
	if !alloc.Debt.PaidAmount.IsZero() {
		t.Errorf("Expected the debt untouched by a pending charge, got %s", alloc.Debt.PaidAmount)
	}

	t.Run("pending charge can change", func(t *testing.T) {
		amount := dec("300")
		notes := "ajuste"
		updated, err := l.Transactions.Update(ctx, charge.ID, TransactionChanges{Amount: &amount, Notes: &notes})
		if err != nil {
			t.Fatalf("Update failed: %v", err)
		}
		if !updated.Transaction.Amount.Equal(amount) || updated.Transaction.Notes != notes {
			t.Errorf("Expected amount and notes to change, got %+v", updated.Transaction)
		}
		if updated.Transaction.Paid {
			t.Error("Expected the charge to stay pending")
		}
	})

	t.Run("settling cash requires reconciled denominations", func(t *testing.T) {
		_, err := l.Transactions.Update(ctx, charge.ID, TransactionChanges{MarkPaid: true})
		expectKind(t, err, apperr.KindValidation)

		short := models.Denominations{200: 1}
		_, err = l.Transactions.Update(ctx, charge.ID, TransactionChanges{MarkPaid: true, Denominations: &short})
		expectKind(t, err, apperr.KindMismatch)
	})

	t.Run("mark paid settles against register and debt", func(t *testing.T) {
		denoms := models.Denominations{200: 1, 100: 1}
		settled, err := l.Transactions.Update(ctx, charge.ID, TransactionChanges{MarkPaid: true, Denominations: &denoms})
		if err != nil {
			t.Fatalf("Update failed: %v", err)
		}
		if !settled.Transaction.Paid || settled.Transaction.CashRegisterID != reg.ID {
			t.Errorf("Expected a paid transaction linked to %s, got paid=%v register=%q",
				reg.ID, settled.Transaction.Paid, settled.Transaction.CashRegisterID)
		}
		if settled.Debt == nil || settled.Debt.Status != models.DebtPaid {
			t.Fatalf("Expected the debt to be paid, got %+v", settled.Debt)
		}

		current, err := store.GetRegister(ctx, reg.ID)
		if err != nil {
			t.Fatalf("GetRegister failed: %v", err)
		}
		if !current.Totals.IncomeCash.Equal(dec("300")) {
			t.Errorf("Expected cash income 300, got %s", current.Totals.IncomeCash)
		}
	})

	t.Run("settled transaction only accepts receipt metadata", func(t *testing.T) {
		amount := dec("1")
		_, err := l.Transactions.Update(ctx, charge.ID, TransactionChanges{Amount: &amount})
		expectKind(t, err, apperr.KindConflict)

		method := models.MethodCard
		_, err = l.Transactions.Update(ctx, charge.ID, TransactionChanges{PaymentMethod: &method})
		expectKind(t, err, apperr.KindConflict)

		image, signature := "https://files.example/r.png", "https://files.example/s.png"
		updated, err := l.Transactions.Update(ctx, charge.ID, TransactionChanges{ImageURL: &image, SignatureURL: &signature})
		if err != nil {
			t.Fatalf("Update failed: %v", err)
		}
		if updated.Transaction.ImageURL != image || updated.Transaction.SignatureURL != signature {
			t.Errorf("Expected receipt metadata to change, got %+v", updated.Transaction)
		}
		if !updated.Transaction.Amount.Equal(dec("300")) {
			t.Errorf("Expected amount untouched, got %s", updated.Transaction.Amount)
		}
	})

	t.Run("unknown transaction", func(t *testing.T) {
		_, err := l.Transactions.Update(ctx, "missing", TransactionChanges{})
		expectKind(t, err, apperr.KindNotFound)
	})
}

func TestSwitchingPendingChargeToCard(t *testing.T) {
	l, _ := newTestLedger(t)
	ctx := context.Background()

	alloc, err := l.Transactions.Record(ctx, RecordInput{
		CampusID:      1,
		Type:          models.TransactionIncome,
		Amount:        dec("100"),
		PaymentMethod: models.MethodCash,
		Denominations: models.Denominations{100: 1},
		Pending:       true,
	})
	if err != nil {
		t.Fatalf("Record failed: %v", err)
	}

	method := models.MethodCard
	updated, err := l.Transactions.Update(ctx, alloc.Transaction.ID, TransactionChanges{PaymentMethod: &method, MarkPaid: true})
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if updated.Transaction.PaymentMethod != models.MethodCard || len(updated.Transaction.Denominations) != 0 {
		t.Errorf("Expected a card payment without denominations, got %+v", updated.Transaction)
	}
}

func TestVoid(t *testing.T) {
	ctx := context.Background()

	t.Run("settled payment is offset", func(t *testing.T) {
		l, store := newTestLedger(t)
		reg := openTestRegister(t, l, 1)
		debt := createTestDebt(t, l, 11, "500", testEpoch.AddDate(0, 1, 0))

		alloc, err := l.Transactions.Record(ctx, RecordInput{
			CampusID:      1,
			DebtID:        debt.ID,
			Type:          models.TransactionIncome,
			Amount:        dec("200"),
			PaymentMethod: models.MethodCash,
			Denominations: models.Denominations{200: 1},
		})
		if err != nil {
			t.Fatalf("Record failed: %v", err)
		}
		orig := alloc.Transaction

		voided, err := l.Transactions.Void(ctx, orig.ID, "cobro duplicado", "supervisor")
		if err != nil {
			t.Fatalf("Void failed: %v", err)
		}
		offset := voided.Transaction
		if offset.Type != models.TransactionExpense || offset.ReversesID != orig.ID {
			t.Errorf("Expected an expense reversing %s, got %s reversing %q", orig.ID, offset.Type, offset.ReversesID)
		}
		if offset.Folio != orig.Folio+1 {
			t.Errorf("Expected offset folio %d, got %d", orig.Folio+1, offset.Folio)
		}
		if offset.CashRegisterID != reg.ID {
			t.Errorf("Expected offset in the open register, got %q", offset.CashRegisterID)
		}
		if voided.Reversed.ReversedByID != offset.ID || voided.Reversed.VoidedAt == nil {
			t.Errorf("Expected original to point to its offset, got %+v", voided.Reversed)
		}
		if !voided.Debt.PaidAmount.IsZero() || voided.Debt.Status != models.DebtPending {
			t.Errorf("Expected the debt back to pending with nothing paid, got %s / %s",
				voided.Debt.PaidAmount, voided.Debt.Status)
		}

		current, err := store.GetRegister(ctx, reg.ID)
		if err != nil {
			t.Fatalf("GetRegister failed: %v", err)
		}
		summary, err := l.Registers.Summary(ctx, reg.ID)
		if err != nil {
			t.Fatalf("Summary failed: %v", err)
		}
		if !summary.ExpectedCash.Equal(dec("500")) || !current.Totals.ExpenseCash.Equal(dec("200")) {
			t.Errorf("Expected the drawer back to 500, got %s", summary.ExpectedCash)
		}

		_, err = l.Transactions.Void(ctx, orig.ID, "otra vez", "supervisor")
		expectKind(t, err, apperr.KindConflict)
		_, err = l.Transactions.Void(ctx, offset.ID, "revertir", "supervisor")
		expectKind(t, err, apperr.KindConflict)
	})

	t.Run("pending charge is only marked voided", func(t *testing.T) {
		l, _ := newTestLedger(t)
		in := cardIncome(1, "75")
		in.Pending = true
		alloc, err := l.Transactions.Record(ctx, in)
		if err != nil {
			t.Fatalf("Record failed: %v", err)
		}

		voided, err := l.Transactions.Void(ctx, alloc.Transaction.ID, "cancelado", "supervisor")
		if err != nil {
			t.Fatalf("Void failed: %v", err)
		}
		if voided.Reversed != nil || voided.Transaction.VoidedAt == nil {
			t.Errorf("Expected no offset and a voided charge, got %+v", voided)
		}

		_, err = l.Transactions.Update(ctx, alloc.Transaction.ID, TransactionChanges{})
		expectKind(t, err, apperr.KindConflict)

		next, err := l.Transactions.Record(ctx, cardIncome(1, "5"))
		if err != nil {
			t.Fatalf("Record failed: %v", err)
		}
		if next.Transaction.Folio != alloc.Transaction.Folio+1 {
			t.Errorf("Expected voided folios never to be reused, got %d", next.Transaction.Folio)
		}
	})

	t.Run("reason is required", func(t *testing.T) {
		l, _ := newTestLedger(t)
		_, err := l.Transactions.Void(ctx, "any", " ", "supervisor")
		expectKind(t, err, apperr.KindValidation)
		_, err = l.Transactions.Void(ctx, "missing", "typo", "supervisor")
		expectKind(t, err, apperr.KindNotFound)
	})
}

func TestCorrect(t *testing.T) {
	l, _ := newTestLedger(t)
	ctx := context.Background()
	debt := createTestDebt(t, l, 12, "1000", testEpoch.AddDate(0, 1, 0))

	in := cardIncome(1, "400")
	in.DebtID = debt.ID
	orig, err := l.Transactions.Record(ctx, in)
	if err != nil {
		t.Fatalf("Record failed: %v", err)
	}

	fixed := in
	fixed.Amount = dec("450")
	corrected, err := l.Transactions.Correct(ctx, orig.Transaction.ID, fixed, "monto equivocado")
	if err != nil {
		t.Fatalf("Correct failed: %v", err)
	}
	if corrected.Reversed == nil || corrected.Reversed.ID != orig.Transaction.ID {
		t.Fatalf("Expected the original to be reported as reversed, got %+v", corrected.Reversed)
	}
	if !corrected.Transaction.Amount.Equal(dec("450")) {
		t.Errorf("Expected replacement of 450, got %s", corrected.Transaction.Amount)
	}
	if !corrected.Debt.PaidAmount.Equal(dec("450")) {
		t.Errorf("Expected debt paid 450 after correction, got %s", corrected.Debt.PaidAmount)
	}
	// original, offset, replacement
	if corrected.Transaction.Folio != orig.Transaction.Folio+2 {
		t.Errorf("Expected replacement folio %d, got %d", orig.Transaction.Folio+2, corrected.Transaction.Folio)
	}

	t.Run("failed replacement keeps the original", func(t *testing.T) {
		bad := fixed
		bad.CampusID = 2
		_, err := l.Transactions.Correct(ctx, corrected.Transaction.ID, bad, "campus equivocado")
		expectKind(t, err, apperr.KindValidation)

		got, err := l.Debts.Get(ctx, debt.ID)
		if err != nil {
			t.Fatalf("Get failed: %v", err)
		}
		if !got.PaidAmount.Equal(dec("450")) {
			t.Errorf("Expected the debt untouched, got %s", got.PaidAmount)
		}
	})
}

func TestReceipt(t *testing.T) {
	l, _ := newTestLedger(t, WithFolioWidth(5))
	ctx := context.Background()
	debt := createTestDebt(t, l, 13, "1160", testEpoch.AddDate(0, 1, 0))

	in := cardIncome(1, "1160")
	in.DebtID = debt.ID
	alloc, err := l.Transactions.Record(ctx, in)
	if err != nil {
		t.Fatalf("Record failed: %v", err)
	}

	receipt, err := l.Transactions.Receipt(ctx, alloc.Transaction.UUID, "P")
	if err != nil {
		t.Fatalf("Receipt failed: %v", err)
	}
	if receipt.FolioDisplay != "P-00001" {
		t.Errorf("Expected folio P-00001, got %s", receipt.FolioDisplay)
	}
	if !receipt.Subtotal.Equal(dec("1000")) || !receipt.Tax.Equal(dec("160")) || !receipt.Total.Equal(dec("1160")) {
		t.Errorf("Expected 1000 + 160 = 1160, got %s + %s = %s", receipt.Subtotal, receipt.Tax, receipt.Total)
	}
	if receipt.Debt == nil || receipt.Debt.Status != models.DebtPaid {
		t.Errorf("Expected the paid debt on the receipt, got %+v", receipt.Debt)
	}

	_, err = l.Transactions.Receipt(ctx, "00000000-0000-0000-0000-000000000000", "P")
	expectKind(t, err, apperr.KindNotFound)
}
