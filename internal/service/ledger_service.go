package service

import (
	"context"
	"log/slog"

	"connectrpc.com/connect"

	"github.com/mariafernandaa20/prexun-caja/internal/api"
	"github.com/mariafernandaa20/prexun-caja/internal/ledger"
	"github.com/mariafernandaa20/prexun-caja/internal/middleware"
)

// LedgerService implements the Connect LedgerService
type LedgerService struct {
	debts        *ledger.Debts
	transactions *ledger.Allocator
}

var _ api.LedgerServiceHandler = (*LedgerService)(nil)

// NewLedgerService creates a new LedgerService over the ledger's debts and allocator.
func NewLedgerService(l *ledger.Ledger) *LedgerService {
	return &LedgerService{debts: l.Debts, transactions: l.Transactions}
}

func recordInput(ctx context.Context, msg *api.RecordTransactionRequest) ledger.RecordInput {
	return ledger.RecordInput{
		CampusID:      msg.CampusID,
		StudentID:     msg.StudentID,
		DebtID:        msg.DebtID,
		Type:          msg.Type,
		Amount:        msg.Amount,
		PaymentMethod: msg.PaymentMethod,
		Denominations: msg.Denominations,
		Notes:         msg.Notes,
		PaymentDate:   msg.PaymentDate,
		Pending:       msg.Pending,
		CreatedBy:     middleware.GetOperatorID(ctx),
	}
}

func transactionResponse(alloc *ledger.Allocation) *connect.Response[api.TransactionResponse] {
	return connect.NewResponse(&api.TransactionResponse{
		Transaction: api.NewTransactionView(alloc.Transaction),
		Reversed:    api.NewTransactionView(alloc.Reversed),
		Debt:        alloc.Debt,
		Warnings:    warningMessages(alloc.Warnings),
	})
}

func logWarnings(op string, warnings []error) {
	for _, w := range warnings {
		slog.Warn(op+" completed with warning", "warning", w)
	}
}

// RecordTransaction records an income or expense and propagates it to the open
// register and the linked debt.
func (s *LedgerService) RecordTransaction(ctx context.Context, req *connect.Request[api.RecordTransactionRequest]) (*connect.Response[api.TransactionResponse], error) {
	msg := req.Msg
	slog.Info("RecordTransaction request received",
		"campus_id", msg.CampusID,
		"student_id", msg.StudentID,
		"debt_id", msg.DebtID,
		"type", msg.Type,
		"method", msg.PaymentMethod,
		"amount", msg.Amount,
		"pending", msg.Pending,
	)

	alloc, err := s.transactions.Record(ctx, recordInput(ctx, msg))
	if err != nil {
		return nil, toConnectError("RecordTransaction", err)
	}
	logWarnings("RecordTransaction", alloc.Warnings)

	slog.Info("Transaction recorded",
		"transaction_id", alloc.Transaction.ID,
		"folio", alloc.Transaction.Folio,
		"cash_register_id", alloc.Transaction.CashRegisterID,
	)
	return transactionResponse(alloc), nil
}

// UpdateTransaction edits a pending charge, settles it, or attaches receipt media.
func (s *LedgerService) UpdateTransaction(ctx context.Context, req *connect.Request[api.UpdateTransactionRequest]) (*connect.Response[api.TransactionResponse], error) {
	msg := req.Msg
	slog.Info("UpdateTransaction request received",
		"transaction_id", msg.TransactionID,
		"mark_paid", msg.MarkPaid,
	)

	alloc, err := s.transactions.Update(ctx, msg.TransactionID, ledger.TransactionChanges{
		Amount:        msg.Amount,
		PaymentMethod: msg.PaymentMethod,
		Denominations: msg.Denominations,
		Notes:         msg.Notes,
		PaymentDate:   msg.PaymentDate,
		DebtID:        msg.DebtID,
		MarkPaid:      msg.MarkPaid,
		ImageURL:      msg.ImageURL,
		SignatureURL:  msg.SignatureURL,
		UpdatedBy:     middleware.GetOperatorID(ctx),
	})
	if err != nil {
		return nil, toConnectError("UpdateTransaction", err)
	}
	logWarnings("UpdateTransaction", alloc.Warnings)

	slog.Info("Transaction updated", "transaction_id", alloc.Transaction.ID, "paid", alloc.Transaction.Paid)
	return transactionResponse(alloc), nil
}

// VoidTransaction cancels a transaction, writing an offsetting entry when it was paid.
func (s *LedgerService) VoidTransaction(ctx context.Context, req *connect.Request[api.VoidTransactionRequest]) (*connect.Response[api.TransactionResponse], error) {
	msg := req.Msg
	slog.Info("VoidTransaction request received", "transaction_id", msg.TransactionID, "reason", msg.Reason)

	alloc, err := s.transactions.Void(ctx, msg.TransactionID, msg.Reason, middleware.GetOperatorID(ctx))
	if err != nil {
		return nil, toConnectError("VoidTransaction", err)
	}
	logWarnings("VoidTransaction", alloc.Warnings)

	slog.Info("Transaction voided",
		"transaction_id", msg.TransactionID,
		"offset", alloc.Reversed != nil,
	)
	return transactionResponse(alloc), nil
}

// CorrectTransaction voids a transaction and records its replacement atomically.
func (s *LedgerService) CorrectTransaction(ctx context.Context, req *connect.Request[api.CorrectTransactionRequest]) (*connect.Response[api.TransactionResponse], error) {
	msg := req.Msg
	slog.Info("CorrectTransaction request received", "transaction_id", msg.TransactionID, "reason", msg.Reason)

	alloc, err := s.transactions.Correct(ctx, msg.TransactionID, recordInput(ctx, &msg.Replacement), msg.Reason)
	if err != nil {
		return nil, toConnectError("CorrectTransaction", err)
	}
	logWarnings("CorrectTransaction", alloc.Warnings)

	slog.Info("Transaction corrected",
		"original_id", msg.TransactionID,
		"replacement_id", alloc.Transaction.ID,
		"folio", alloc.Transaction.Folio,
	)
	return transactionResponse(alloc), nil
}

func (s *LedgerService) CreateDebt(ctx context.Context, req *connect.Request[api.CreateDebtRequest]) (*connect.Response[api.DebtResponse], error) {
	msg := req.Msg
	slog.Info("CreateDebt request received",
		"student_id", msg.StudentID,
		"concept", msg.Concept,
		"total_amount", msg.TotalAmount,
		"due_date", msg.DueDate,
	)

	debt, err := s.debts.CreateDebt(ctx, ledger.CreateDebtInput{
		StudentID:    msg.StudentID,
		AssignmentID: msg.AssignmentID,
		Concept:      msg.Concept,
		Description:  msg.Description,
		TotalAmount:  msg.TotalAmount,
		DueDate:      msg.DueDate,
		CreatedBy:    middleware.GetOperatorID(ctx),
	})
	if err != nil {
		return nil, toConnectError("CreateDebt", err)
	}

	slog.Info("Debt created", "debt_id", debt.ID, "status", debt.Status)
	return connect.NewResponse(&api.DebtResponse{Debt: debt}), nil
}

func (s *LedgerService) GetDebt(ctx context.Context, req *connect.Request[api.GetDebtRequest]) (*connect.Response[api.DebtResponse], error) {
	slog.Debug("GetDebt request received", "debt_id", req.Msg.DebtID)

	debt, err := s.debts.Get(ctx, req.Msg.DebtID)
	if err != nil {
		return nil, toConnectError("GetDebt", err)
	}
	return connect.NewResponse(&api.DebtResponse{Debt: debt}), nil
}

func (s *LedgerService) DeleteDebt(ctx context.Context, req *connect.Request[api.DeleteDebtRequest]) (*connect.Response[api.DeleteDebtResponse], error) {
	slog.Info("DeleteDebt request received", "debt_id", req.Msg.DebtID)

	if err := s.debts.Delete(ctx, req.Msg.DebtID, middleware.GetOperatorID(ctx)); err != nil {
		return nil, toConnectError("DeleteDebt", err)
	}

	slog.Info("Debt deleted", "debt_id", req.Msg.DebtID)
	return connect.NewResponse(&api.DeleteDebtResponse{}), nil
}

// ApplyPayment applies a paid income transaction to a debt. Repeated calls with the
// same transaction leave the debt unchanged.
func (s *LedgerService) ApplyPayment(ctx context.Context, req *connect.Request[api.ApplyPaymentRequest]) (*connect.Response[api.ApplyPaymentResponse], error) {
	msg := req.Msg
	slog.Info("ApplyPayment request received", "debt_id", msg.DebtID, "transaction_id", msg.TransactionID)

	res, err := s.debts.ApplyPayment(ctx, msg.DebtID, msg.TransactionID)
	if err != nil {
		return nil, toConnectError("ApplyPayment", err)
	}
	logWarnings("ApplyPayment", res.Warnings)

	slog.Info("Payment applied",
		"debt_id", res.Debt.ID,
		"applied", res.Applied,
		"paid_amount", res.Debt.PaidAmount,
		"status", res.Debt.Status,
	)
	return connect.NewResponse(&api.ApplyPaymentResponse{
		Debt:     res.Debt,
		Applied:  res.Applied,
		Warnings: warningMessages(res.Warnings),
	}), nil
}

func (s *LedgerService) ListDebtsByStudent(ctx context.Context, req *connect.Request[api.ListDebtsByStudentRequest]) (*connect.Response[api.ListDebtsResponse], error) {
	slog.Debug("ListDebtsByStudent request received", "student_id", req.Msg.StudentID)

	debts, err := s.debts.ListByStudent(ctx, req.Msg.StudentID)
	if err != nil {
		return nil, toConnectError("ListDebtsByStudent", err)
	}

	slog.Debug("Debts retrieved", "student_id", req.Msg.StudentID, "count", len(debts))
	return connect.NewResponse(&api.ListDebtsResponse{Debts: debts}), nil
}

func (s *LedgerService) GetReceipt(ctx context.Context, req *connect.Request[api.GetReceiptRequest]) (*connect.Response[api.ReceiptResponse], error) {
	slog.Debug("GetReceipt request received", "uuid", req.Msg.UUID)

	receipt, err := s.transactions.Receipt(ctx, req.Msg.UUID, req.Msg.Prefix)
	if err != nil {
		return nil, toConnectError("GetReceipt", err)
	}
	return connect.NewResponse(&api.ReceiptResponse{Receipt: receipt}), nil
}
