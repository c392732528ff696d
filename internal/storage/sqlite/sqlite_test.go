package sqlite

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mariafernandaa20/prexun-caja/internal/audit"
	"github.com/mariafernandaa20/prexun-caja/internal/models"
	"github.com/mariafernandaa20/prexun-caja/internal/storage"
	"github.com/mariafernandaa20/prexun-caja/internal/storage/sqlstore"
)

func newTestStore(t *testing.T) *sqlstore.Store {
	t.Helper()

	// Create temp directory for test database
	tempDir, err := os.MkdirTemp("", "caja-test-*")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}
	t.Cleanup(func() { os.RemoveAll(tempDir) })

	store, err := New(filepath.Join(tempDir, "test.db"))
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func openRegister(campusID int64) *models.CashRegister {
	return &models.CashRegister{
		CampusID:             campusID,
		Status:               models.RegisterOpen,
		InitialAmount:        decimal.NewFromInt(500),
		InitialDenominations: models.Denominations{500: 1},
		OpenedAt:             time.Now().UTC(),
		OpenedBy:             "op-1",
	}
}

func TestSQLiteStore(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	t.Run("CreateRegister round trip", func(t *testing.T) {
		r := openRegister(1)
		r.Totals.Add(models.TransactionIncome, models.MethodCash, decimal.NewFromInt(20))
		if err := store.CreateRegister(ctx, r); err != nil {
			t.Fatalf("CreateRegister failed: %v", err)
		}
		if r.ID == "" {
			t.Fatal("Expected register ID to be generated")
		}

		got, err := store.GetRegister(ctx, r.ID)
		if err != nil {
			t.Fatalf("GetRegister failed: %v", err)
		}
		if !got.InitialAmount.Equal(r.InitialAmount) {
			t.Errorf("Expected initial amount %s, got %s", r.InitialAmount, got.InitialAmount)
		}
		if got.InitialDenominations[500] != 1 {
			t.Errorf("Expected denominations to round trip, got %v", got.InitialDenominations)
		}
		if !got.Totals.IncomeCash.Equal(decimal.NewFromInt(20)) {
			t.Errorf("Expected cash income 20, got %s", got.Totals.IncomeCash)
		}
		if got.FinalAmount != nil || got.ClosedAt != nil {
			t.Error("Expected closing fields to be empty on an open register")
		}
		if got.OpenedBy != "op-1" {
			t.Errorf("Expected opened_by op-1, got %q", got.OpenedBy)
		}
	})

	t.Run("second open register for a campus is rejected", func(t *testing.T) {
		if err := store.CreateRegister(ctx, openRegister(2)); err != nil {
			t.Fatalf("CreateRegister failed: %v", err)
		}
		err := store.CreateRegister(ctx, openRegister(2))
		if !errors.Is(err, storage.ErrOpenRegisterExists) {
			t.Fatalf("Expected ErrOpenRegisterExists, got %v", err)
		}
	})

	t.Run("closed registers allow a new open one", func(t *testing.T) {
		r := openRegister(3)
		if err := store.CreateRegister(ctx, r); err != nil {
			t.Fatalf("CreateRegister failed: %v", err)
		}

		final := decimal.NewFromInt(700)
		closedAt := time.Now().UTC()
		r.Status = models.RegisterClosed
		r.FinalAmount = &final
		r.FinalDenominations = models.Denominations{500: 1, 200: 1}
		r.ClosedAt = &closedAt
		if err := store.UpdateRegister(ctx, r); err != nil {
			t.Fatalf("UpdateRegister failed: %v", err)
		}

		next := openRegister(3)
		next.OpenedAt = closedAt.Add(time.Second)
		if err := store.CreateRegister(ctx, next); err != nil {
			t.Fatalf("Expected a new register to open after close, got %v", err)
		}

		last, err := store.GetLastClosedRegister(ctx, 3)
		if err != nil {
			t.Fatalf("GetLastClosedRegister failed: %v", err)
		}
		if last.ID != r.ID || !last.FinalAmount.Equal(final) {
			t.Errorf("Expected last closed register %s with final %s, got %s", r.ID, final, last.ID)
		}

		history, err := store.ListRegisters(ctx, 3)
		if err != nil {
			t.Fatalf("ListRegisters failed: %v", err)
		}
		if len(history) != 2 || history[0].ID != next.ID {
			t.Errorf("Expected newest register first, got %d registers", len(history))
		}
	})

	t.Run("GetOpenRegister returns ErrNotFound when none", func(t *testing.T) {
		_, err := store.GetOpenRegister(ctx, 999)
		if !errors.Is(err, storage.ErrNotFound) {
			t.Fatalf("Expected ErrNotFound, got %v", err)
		}
	})

	t.Run("UpdateRegister on missing register", func(t *testing.T) {
		err := store.UpdateRegister(ctx, &models.CashRegister{ID: "missing", Status: models.RegisterClosed})
		if !errors.Is(err, storage.ErrNotFound) {
			t.Fatalf("Expected ErrNotFound, got %v", err)
		}
	})
}

func TestNextFolio(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	t.Run("increments per campus", func(t *testing.T) {
		for want := int64(1); want <= 3; want++ {
			got, err := store.NextFolio(ctx, 10)
			if err != nil {
				t.Fatalf("NextFolio failed: %v", err)
			}
			if got != want {
				t.Errorf("Expected folio %d, got %d", want, got)
			}
		}

		got, err := store.NextFolio(ctx, 11)
		if err != nil {
			t.Fatalf("NextFolio failed: %v", err)
		}
		if got != 1 {
			t.Errorf("Expected a new campus to start at 1, got %d", got)
		}
	})

	t.Run("seeds from existing folios", func(t *testing.T) {
		tx := &models.Transaction{
			CampusID:      12,
			Type:          models.TransactionIncome,
			Amount:        decimal.NewFromInt(10),
			PaymentMethod: models.MethodCard,
			Paid:          true,
			Folio:         41,
		}
		if err := store.CreateTransaction(ctx, tx); err != nil {
			t.Fatalf("CreateTransaction failed: %v", err)
		}

		got, err := store.NextFolio(ctx, 12)
		if err != nil {
			t.Fatalf("NextFolio failed: %v", err)
		}
		if got != 42 {
			t.Errorf("Expected folio 42 after imported folio 41, got %d", got)
		}
	})

	t.Run("rolled back increment is not consumed", func(t *testing.T) {
		errBoom := errors.New("boom")
		err := store.WithinTx(ctx, func(q storage.Queries) error {
			if _, err := q.NextFolio(ctx, 13); err != nil {
				return err
			}
			return errBoom
		})
		if !errors.Is(err, errBoom) {
			t.Fatalf("Expected errBoom, got %v", err)
		}

		got, err := store.NextFolio(ctx, 13)
		if err != nil {
			t.Fatalf("NextFolio failed: %v", err)
		}
		if got != 1 {
			t.Errorf("Expected folio 1 after rollback, got %d", got)
		}
	})
}

func TestTransactions(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	r := openRegister(1)
	if err := store.CreateRegister(ctx, r); err != nil {
		t.Fatalf("CreateRegister failed: %v", err)
	}

	paidAt := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	tx := &models.Transaction{
		CampusID:       1,
		StudentID:      77,
		CashRegisterID: r.ID,
		Type:           models.TransactionIncome,
		Amount:         decimal.RequireFromString("150.50"),
		PaymentMethod:  models.MethodCash,
		Denominations:  models.Denominations{100: 1, 50: 1},
		Paid:           true,
		PaymentDate:    &paidAt,
		Notes:          "colegiatura",
		Folio:          1,
	}

	t.Run("CreateTransaction round trip", func(t *testing.T) {
		if err := store.CreateTransaction(ctx, tx); err != nil {
			t.Fatalf("CreateTransaction failed: %v", err)
		}
		if tx.ID == "" || tx.UUID == "" {
			t.Fatal("Expected ID and UUID to be generated")
		}

		got, err := store.GetTransactionByUUID(ctx, tx.UUID)
		if err != nil {
			t.Fatalf("GetTransactionByUUID failed: %v", err)
		}
		if got.ID != tx.ID || !got.Amount.Equal(tx.Amount) || !got.Paid {
			t.Errorf("Expected %s paid %s, got %s paid=%v %s", tx.ID, tx.Amount, got.ID, got.Paid, got.Amount)
		}
		if got.PaymentDate == nil || !got.PaymentDate.Equal(paidAt) {
			t.Errorf("Expected payment date %v, got %v", paidAt, got.PaymentDate)
		}
		if got.Denominations[100] != 1 || got.Denominations[50] != 1 {
			t.Errorf("Expected denominations to round trip, got %v", got.Denominations)
		}
		if got.DebtID != "" || got.ReversesID != "" {
			t.Error("Expected empty optional links")
		}
	})

	t.Run("duplicate folio in a campus is rejected", func(t *testing.T) {
		dup := &models.Transaction{
			CampusID:      1,
			Type:          models.TransactionExpense,
			Amount:        decimal.NewFromInt(5),
			PaymentMethod: models.MethodTransfer,
			Folio:         1,
		}
		err := store.CreateTransaction(ctx, dup)
		if !errors.Is(err, storage.ErrDuplicateFolio) {
			t.Fatalf("Expected ErrDuplicateFolio, got %v", err)
		}
	})

	t.Run("UpdateTransaction and list by register", func(t *testing.T) {
		tx.ImageURL = "https://files.example/receipt.png"
		if err := store.UpdateTransaction(ctx, tx); err != nil {
			t.Fatalf("UpdateTransaction failed: %v", err)
		}

		txs, err := store.ListTransactionsByRegister(ctx, r.ID)
		if err != nil {
			t.Fatalf("ListTransactionsByRegister failed: %v", err)
		}
		if len(txs) != 1 || txs[0].ImageURL != tx.ImageURL {
			t.Fatalf("Expected one transaction with image url, got %d", len(txs))
		}
	})

	t.Run("GetTransaction returns ErrNotFound", func(t *testing.T) {
		_, err := store.GetTransaction(ctx, "missing")
		if !errors.Is(err, storage.ErrNotFound) {
			t.Fatalf("Expected ErrNotFound, got %v", err)
		}
	})
}

func TestDebts(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	due := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	debt := &models.Debt{
		StudentID:   5,
		Concept:     "Inscripción",
		TotalAmount: decimal.NewFromInt(1000),
		PaidAmount:  decimal.Zero,
		Status:      models.DebtPending,
		DueDate:     due,
	}

	t.Run("CreateDebt round trip", func(t *testing.T) {
		if err := store.CreateDebt(ctx, debt); err != nil {
			t.Fatalf("CreateDebt failed: %v", err)
		}
		got, err := store.GetDebt(ctx, debt.ID)
		if err != nil {
			t.Fatalf("GetDebt failed: %v", err)
		}
		if got.Concept != debt.Concept || !got.TotalAmount.Equal(debt.TotalAmount) || !got.DueDate.Equal(due) {
			t.Errorf("Expected %+v, got %+v", debt, got)
		}
		if got.AssignmentID != 0 {
			t.Errorf("Expected no assignment, got %d", got.AssignmentID)
		}
	})

	t.Run("due dates far in the future round trip", func(t *testing.T) {
		for _, far := range []time.Time{
			time.Date(2300, 1, 1, 0, 0, 0, 0, time.UTC),
			time.Date(9999, 12, 31, 23, 59, 59, 0, time.UTC),
		} {
			d := &models.Debt{
				StudentID:   6,
				Concept:     "Plan largo",
				TotalAmount: decimal.NewFromInt(10),
				PaidAmount:  decimal.Zero,
				Status:      models.DebtPending,
				DueDate:     far,
			}
			if err := store.CreateDebt(ctx, d); err != nil {
				t.Fatalf("CreateDebt failed: %v", err)
			}
			got, err := store.GetDebt(ctx, d.ID)
			if err != nil {
				t.Fatalf("GetDebt failed: %v", err)
			}
			if !got.DueDate.Equal(far) {
				t.Errorf("Expected due date %s, got %s", far, got.DueDate)
			}
		}
	})

	t.Run("RecordDebtPayment is idempotent", func(t *testing.T) {
		tx := &models.Transaction{
			CampusID:      1,
			StudentID:     5,
			DebtID:        debt.ID,
			Type:          models.TransactionIncome,
			Amount:        decimal.NewFromInt(400),
			PaymentMethod: models.MethodCard,
			Paid:          true,
			Folio:         1,
		}
		if err := store.CreateTransaction(ctx, tx); err != nil {
			t.Fatalf("CreateTransaction failed: %v", err)
		}

		applied, err := store.RecordDebtPayment(ctx, debt.ID, tx.ID, tx.Amount)
		if err != nil {
			t.Fatalf("RecordDebtPayment failed: %v", err)
		}
		if !applied {
			t.Error("Expected first payment to be applied")
		}

		applied, err = store.RecordDebtPayment(ctx, debt.ID, tx.ID, tx.Amount)
		if err != nil {
			t.Fatalf("RecordDebtPayment failed: %v", err)
		}
		if applied {
			t.Error("Expected second payment of the same transaction to be ignored")
		}

		linked, err := store.ListTransactionsByDebt(ctx, debt.ID)
		if err != nil {
			t.Fatalf("ListTransactionsByDebt failed: %v", err)
		}
		if len(linked) != 1 {
			t.Errorf("Expected 1 linked transaction, got %d", len(linked))
		}
	})

	t.Run("UpdateDebt and ListDebtsByStudent", func(t *testing.T) {
		debt.PaidAmount = decimal.NewFromInt(400)
		debt.Status = models.DebtPartial
		if err := store.UpdateDebt(ctx, debt); err != nil {
			t.Fatalf("UpdateDebt failed: %v", err)
		}

		later := &models.Debt{
			StudentID:   5,
			Concept:     "Mensualidad",
			TotalAmount: decimal.NewFromInt(800),
			Status:      models.DebtPending,
			DueDate:     due.AddDate(0, 1, 0),
		}
		if err := store.CreateDebt(ctx, later); err != nil {
			t.Fatalf("CreateDebt failed: %v", err)
		}

		debts, err := store.ListDebtsByStudent(ctx, 5)
		if err != nil {
			t.Fatalf("ListDebtsByStudent failed: %v", err)
		}
		if len(debts) != 2 {
			t.Fatalf("Expected 2 debts, got %d", len(debts))
		}
		if debts[0].ID != debt.ID || debts[0].Status != models.DebtPartial {
			t.Errorf("Expected earliest due debt first with partial status, got %s %s", debts[0].ID, debts[0].Status)
		}
	})

	t.Run("DeleteDebt", func(t *testing.T) {
		d := &models.Debt{
			StudentID:   6,
			Concept:     "Libro",
			TotalAmount: decimal.NewFromInt(300),
			Status:      models.DebtPending,
			DueDate:     due,
		}
		if err := store.CreateDebt(ctx, d); err != nil {
			t.Fatalf("CreateDebt failed: %v", err)
		}
		if err := store.DeleteDebt(ctx, d.ID); err != nil {
			t.Fatalf("DeleteDebt failed: %v", err)
		}
		if _, err := store.GetDebt(ctx, d.ID); !errors.Is(err, storage.ErrNotFound) {
			t.Fatalf("Expected ErrNotFound after delete, got %v", err)
		}
		if err := store.DeleteDebt(ctx, d.ID); !errors.Is(err, storage.ErrNotFound) {
			t.Fatalf("Expected ErrNotFound deleting twice, got %v", err)
		}
	})
}

func TestEvents(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	e := audit.NewEvent(
		audit.WithType(audit.RegisterOpened),
		audit.WithData(map[string]any{"campus_id": 1}),
		audit.WithMetadata(map[string]string{"operator": "op-1"}),
	)
	if err := store.SaveEvent(ctx, e); err != nil {
		t.Fatalf("SaveEvent failed: %v", err)
	}

	events, err := store.ListEventsByType(ctx, audit.RegisterOpened)
	if err != nil {
		t.Fatalf("ListEventsByType failed: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("Expected 1 event, got %d", len(events))
	}
	if events[0].ID != e.ID || events[0].Metadata["operator"] != "op-1" {
		t.Errorf("Expected event %s with operator metadata, got %+v", e.ID, events[0])
	}

	other, err := store.ListEventsByType(ctx, audit.RegisterClosed)
	if err != nil {
		t.Fatalf("ListEventsByType failed: %v", err)
	}
	if len(other) != 0 {
		t.Errorf("Expected no events of another type, got %d", len(other))
	}
}
