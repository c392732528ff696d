package calculator

import (
	"github.com/shopspring/decimal"

	"github.com/mariafernandaa20/prexun-caja/internal/models"
)

// RegisterSummary aggregates the paid transactions of one register session.
type RegisterSummary struct {
	RegisterID    string          `json:"register_id"`
	InitialAmount decimal.Decimal `json:"initial_amount"`

	// CashIncome and CashExpense only count cash movements.
	CashIncome  decimal.Decimal `json:"cash_income"`
	CashExpense decimal.Decimal `json:"cash_expense"`

	CardIncome     decimal.Decimal `json:"card_income"`
	TransferIncome decimal.Decimal `json:"transfer_income"`
	NonCashExpense decimal.Decimal `json:"non_cash_expense"`
	TotalIncome    decimal.Decimal `json:"total_income"`
	TotalExpense   decimal.Decimal `json:"total_expense"`

	// NetBalance is TotalIncome - TotalExpense over every method.
	NetBalance decimal.Decimal `json:"net_balance"`

	// CashBalance is CashIncome - CashExpense.
	CashBalance decimal.Decimal `json:"cash_balance"`

	// ExpectedCash is what the drawer should hold: InitialAmount + CashBalance.
	ExpectedCash decimal.Decimal `json:"expected_cash"`

	TransactionCount int `json:"transaction_count"`
}

// SummarizeRegister recomputes register totals from raw transactions.
// Pending (unpaid) transactions are ignored.
func SummarizeRegister(registerID string, initial decimal.Decimal, txs []*models.Transaction) RegisterSummary {
	s := RegisterSummary{
		RegisterID:    registerID,
		InitialAmount: initial,
	}

	for _, t := range txs {
		if !t.Paid {
			continue
		}
		s.TransactionCount++

		switch t.Type {
		case models.TransactionIncome:
			s.TotalIncome = s.TotalIncome.Add(t.Amount)
			switch t.PaymentMethod {
			case models.MethodCash:
				s.CashIncome = s.CashIncome.Add(t.Amount)
			case models.MethodCard:
				s.CardIncome = s.CardIncome.Add(t.Amount)
			case models.MethodTransfer:
				s.TransferIncome = s.TransferIncome.Add(t.Amount)
			}
		case models.TransactionExpense:
			s.TotalExpense = s.TotalExpense.Add(t.Amount)
			if t.PaymentMethod == models.MethodCash {
				s.CashExpense = s.CashExpense.Add(t.Amount)
			} else {
				s.NonCashExpense = s.NonCashExpense.Add(t.Amount)
			}
		}
	}

	s.NetBalance = s.TotalIncome.Sub(s.TotalExpense)
	s.CashBalance = s.CashIncome.Sub(s.CashExpense)
	s.ExpectedCash = initial.Add(s.CashBalance)
	return s
}

// ExpectedCash returns the cash a register should hold based on its running totals.
func ExpectedCash(r *models.CashRegister) decimal.Decimal {
	return r.InitialAmount.Add(r.Totals.IncomeCash).Sub(r.Totals.ExpenseCash)
}
