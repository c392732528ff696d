package calculator

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mariafernandaa20/prexun-caja/internal/models"
)

func TestDebtStatus(t *testing.T) {
	now := time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)
	future := now.AddDate(0, 0, 30)
	past := now.AddDate(0, 0, -1)

	tests := []struct {
		name  string
		paid  int64
		total int64
		due   time.Time
		want  models.DebtStatus
	}{
		{"nothing paid before due date", 0, 1000, future, models.DebtPending},
		{"nothing paid after due date", 0, 1000, past, models.DebtOverdue},
		{"nothing paid exactly at due date", 0, 1000, now, models.DebtOverdue},
		{"partially paid before due date", 400, 1000, future, models.DebtPartial},
		{"partially paid after due date", 400, 1000, past, models.DebtPartial},
		{"fully paid", 1000, 1000, future, models.DebtPaid},
		{"fully paid after due date", 1000, 1000, past, models.DebtPaid},
		{"overpaid", 1200, 1000, future, models.DebtPaid},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DebtStatus(decimal.NewFromInt(tt.paid), decimal.NewFromInt(tt.total), tt.due, now)
			if got != tt.want {
				t.Errorf("DebtStatus() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestRefreshDebt(t *testing.T) {
	now := time.Now()

	t.Run("partial payment", func(t *testing.T) {
		d := &models.Debt{
			TotalAmount: decimal.NewFromInt(1000),
			PaidAmount:  decimal.NewFromInt(400),
			DueDate:     now.AddDate(0, 1, 0),
		}
		RefreshDebt(d, now)
		if !d.RemainingAmount.Equal(decimal.NewFromInt(600)) {
			t.Errorf("RemainingAmount = %s, want 600", d.RemainingAmount)
		}
		if !d.OverpaidAmount.IsZero() {
			t.Errorf("OverpaidAmount = %s, want 0", d.OverpaidAmount)
		}
		if d.Status != models.DebtPartial {
			t.Errorf("Status = %s, want partial", d.Status)
		}
	})

	t.Run("overpayment is surfaced not clamped", func(t *testing.T) {
		d := &models.Debt{
			TotalAmount: decimal.NewFromInt(1000),
			PaidAmount:  decimal.NewFromInt(1150),
			DueDate:     now.AddDate(0, 1, 0),
		}
		RefreshDebt(d, now)
		if !d.RemainingAmount.IsZero() {
			t.Errorf("RemainingAmount = %s, want 0", d.RemainingAmount)
		}
		if !d.OverpaidAmount.Equal(decimal.NewFromInt(150)) {
			t.Errorf("OverpaidAmount = %s, want 150", d.OverpaidAmount)
		}
		if !d.PaidAmount.Equal(decimal.NewFromInt(1150)) {
			t.Errorf("PaidAmount changed to %s", d.PaidAmount)
		}
	})
}
