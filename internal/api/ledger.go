package api

import (
	"context"
	"net/http"
	"strings"
	"time"

	"connectrpc.com/connect"
	"github.com/shopspring/decimal"

	"github.com/mariafernandaa20/prexun-caja/internal/models"
)

// LedgerServiceName is the fully-qualified name of the LedgerService service.
const LedgerServiceName = "prexun.caja.v1.LedgerService"

// Procedures of LedgerService.
const (
	LedgerServiceRecordTransactionProcedure  = "/prexun.caja.v1.LedgerService/RecordTransaction"
	LedgerServiceUpdateTransactionProcedure  = "/prexun.caja.v1.LedgerService/UpdateTransaction"
	LedgerServiceVoidTransactionProcedure    = "/prexun.caja.v1.LedgerService/VoidTransaction"
	LedgerServiceCorrectTransactionProcedure = "/prexun.caja.v1.LedgerService/CorrectTransaction"
	LedgerServiceCreateDebtProcedure         = "/prexun.caja.v1.LedgerService/CreateDebt"
	LedgerServiceGetDebtProcedure            = "/prexun.caja.v1.LedgerService/GetDebt"
	LedgerServiceDeleteDebtProcedure         = "/prexun.caja.v1.LedgerService/DeleteDebt"
	LedgerServiceApplyPaymentProcedure       = "/prexun.caja.v1.LedgerService/ApplyPayment"
	LedgerServiceListDebtsByStudentProcedure = "/prexun.caja.v1.LedgerService/ListDebtsByStudent"
	LedgerServiceGetReceiptProcedure         = "/prexun.caja.v1.LedgerService/GetReceipt"
)

type RecordTransactionRequest struct {
	CampusID      int64                  `json:"campus_id"`
	StudentID     int64                  `json:"student_id,omitempty"`
	DebtID        string                 `json:"debt_id,omitempty"`
	Type          models.TransactionType `json:"transaction_type"`
	Amount        decimal.Decimal        `json:"amount"`
	PaymentMethod models.PaymentMethod   `json:"payment_method"`
	Denominations models.Denominations   `json:"denominations,omitempty"`
	Notes         string                 `json:"notes,omitempty"`
	PaymentDate   *time.Time             `json:"payment_date,omitempty"`

	// Pending records an unpaid charge to be settled with UpdateTransaction.
	Pending bool `json:"pending,omitempty"`
}

// UpdateTransactionRequest changes the fields that are set. After settlement only
// image_url and signature_url are accepted.
type UpdateTransactionRequest struct {
	TransactionID string                `json:"transaction_id"`
	Amount        *decimal.Decimal      `json:"amount,omitempty"`
	PaymentMethod *models.PaymentMethod `json:"payment_method,omitempty"`
	Denominations *models.Denominations `json:"denominations,omitempty"`
	Notes         *string               `json:"notes,omitempty"`
	PaymentDate   *time.Time            `json:"payment_date,omitempty"`
	DebtID        *string               `json:"debt_id,omitempty"`
	MarkPaid      bool                  `json:"mark_paid,omitempty"`
	ImageURL      *string               `json:"image_url,omitempty"`
	SignatureURL  *string               `json:"signature_url,omitempty"`
}

type VoidTransactionRequest struct {
	TransactionID string `json:"transaction_id"`
	Reason        string `json:"reason"`
}

type CorrectTransactionRequest struct {
	TransactionID string                   `json:"transaction_id"`
	Reason        string                   `json:"reason"`
	Replacement   RecordTransactionRequest `json:"replacement"`
}

// TransactionView is a transaction as served to clients, with the per-method
// folio fields older receipt screens read.
type TransactionView struct {
	*models.Transaction
	FolioCash     int64 `json:"folio_cash"`
	FolioTransfer int64 `json:"folio_transfer"`
}

// NewTransactionView wraps t; it returns nil for a nil transaction.
func NewTransactionView(t *models.Transaction) *TransactionView {
	if t == nil {
		return nil
	}
	v := &TransactionView{Transaction: t}
	switch t.PaymentMethod {
	case models.MethodCash:
		v.FolioCash = t.Folio
	case models.MethodTransfer:
		v.FolioTransfer = t.Folio
	}
	return v
}

type TransactionResponse struct {
	Transaction *TransactionView `json:"transaction"`

	// Reversed is the original entry when Transaction offsets it.
	Reversed *TransactionView `json:"reversed,omitempty"`
	Debt     *models.Debt     `json:"debt,omitempty"`
	Warnings []string         `json:"warnings,omitempty"`
}

type CreateDebtRequest struct {
	StudentID    int64           `json:"student_id"`
	AssignmentID int64           `json:"assignment_id,omitempty"`
	Concept      string          `json:"concept"`
	Description  string          `json:"description,omitempty"`
	TotalAmount  decimal.Decimal `json:"total_amount"`
	DueDate      time.Time       `json:"due_date"`
}

type GetDebtRequest struct {
	DebtID string `json:"debt_id"`
}

type DebtResponse struct {
	Debt *models.Debt `json:"debt"`
}

type DeleteDebtRequest struct {
	DebtID string `json:"debt_id"`
}

type DeleteDebtResponse struct{}

type ApplyPaymentRequest struct {
	DebtID        string `json:"debt_id"`
	TransactionID string `json:"transaction_id"`
}

type ApplyPaymentResponse struct {
	Debt *models.Debt `json:"debt"`

	// Applied is false when the transaction had already been applied to the debt.
	Applied  bool     `json:"applied"`
	Warnings []string `json:"warnings,omitempty"`
}

type ListDebtsByStudentRequest struct {
	StudentID int64 `json:"student_id"`
}

type ListDebtsResponse struct {
	Debts []*models.Debt `json:"debts"`
}

type GetReceiptRequest struct {
	UUID string `json:"uuid"`

	// Prefix is prepended to the folio, e.g. "P" renders P-000123.
	Prefix string `json:"prefix,omitempty"`
}

type ReceiptResponse struct {
	Receipt *models.Receipt `json:"receipt"`
}

// LedgerServiceHandler is implemented by the transaction and debt service.
type LedgerServiceHandler interface {
	RecordTransaction(context.Context, *connect.Request[RecordTransactionRequest]) (*connect.Response[TransactionResponse], error)
	UpdateTransaction(context.Context, *connect.Request[UpdateTransactionRequest]) (*connect.Response[TransactionResponse], error)
	VoidTransaction(context.Context, *connect.Request[VoidTransactionRequest]) (*connect.Response[TransactionResponse], error)
	CorrectTransaction(context.Context, *connect.Request[CorrectTransactionRequest]) (*connect.Response[TransactionResponse], error)
	CreateDebt(context.Context, *connect.Request[CreateDebtRequest]) (*connect.Response[DebtResponse], error)
	GetDebt(context.Context, *connect.Request[GetDebtRequest]) (*connect.Response[DebtResponse], error)
	DeleteDebt(context.Context, *connect.Request[DeleteDebtRequest]) (*connect.Response[DeleteDebtResponse], error)
	ApplyPayment(context.Context, *connect.Request[ApplyPaymentRequest]) (*connect.Response[ApplyPaymentResponse], error)
	ListDebtsByStudent(context.Context, *connect.Request[ListDebtsByStudentRequest]) (*connect.Response[ListDebtsResponse], error)
	GetReceipt(context.Context, *connect.Request[GetReceiptRequest]) (*connect.Response[ReceiptResponse], error)
}

// NewLedgerServiceHandler builds an HTTP handler from the service implementation.
// It returns the path on which to mount the handler and the handler itself.
func NewLedgerServiceHandler(svc LedgerServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = handlerOptions(opts)
	handlers := map[string]http.Handler{
		LedgerServiceRecordTransactionProcedure:  connect.NewUnaryHandler(LedgerServiceRecordTransactionProcedure, svc.RecordTransaction, opts...),
		LedgerServiceUpdateTransactionProcedure:  connect.NewUnaryHandler(LedgerServiceUpdateTransactionProcedure, svc.UpdateTransaction, opts...),
		LedgerServiceVoidTransactionProcedure:    connect.NewUnaryHandler(LedgerServiceVoidTransactionProcedure, svc.VoidTransaction, opts...),
		LedgerServiceCorrectTransactionProcedure: connect.NewUnaryHandler(LedgerServiceCorrectTransactionProcedure, svc.CorrectTransaction, opts...),
		LedgerServiceCreateDebtProcedure:         connect.NewUnaryHandler(LedgerServiceCreateDebtProcedure, svc.CreateDebt, opts...),
		LedgerServiceGetDebtProcedure:            connect.NewUnaryHandler(LedgerServiceGetDebtProcedure, svc.GetDebt, opts...),
		LedgerServiceDeleteDebtProcedure:         connect.NewUnaryHandler(LedgerServiceDeleteDebtProcedure, svc.DeleteDebt, opts...),
		LedgerServiceApplyPaymentProcedure:       connect.NewUnaryHandler(LedgerServiceApplyPaymentProcedure, svc.ApplyPayment, opts...),
		LedgerServiceListDebtsByStudentProcedure: connect.NewUnaryHandler(LedgerServiceListDebtsByStudentProcedure, svc.ListDebtsByStudent, opts...),
		LedgerServiceGetReceiptProcedure:         connect.NewUnaryHandler(LedgerServiceGetReceiptProcedure, svc.GetReceipt, opts...),
	}
	return servicePath(LedgerServiceName), route(handlers)
}

// LedgerServiceClient is a client for the prexun.caja.v1.LedgerService service.
type LedgerServiceClient interface {
	RecordTransaction(context.Context, *connect.Request[RecordTransactionRequest]) (*connect.Response[TransactionResponse], error)
	UpdateTransaction(context.Context, *connect.Request[UpdateTransactionRequest]) (*connect.Response[TransactionResponse], error)
	VoidTransaction(context.Context, *connect.Request[VoidTransactionRequest]) (*connect.Response[TransactionResponse], error)
	CorrectTransaction(context.Context, *connect.Request[CorrectTransactionRequest]) (*connect.Response[TransactionResponse], error)
	CreateDebt(context.Context, *connect.Request[CreateDebtRequest]) (*connect.Response[DebtResponse], error)
	GetDebt(context.Context, *connect.Request[GetDebtRequest]) (*connect.Response[DebtResponse], error)
	DeleteDebt(context.Context, *connect.Request[DeleteDebtRequest]) (*connect.Response[DeleteDebtResponse], error)
	ApplyPayment(context.Context, *connect.Request[ApplyPaymentRequest]) (*connect.Response[ApplyPaymentResponse], error)
	ListDebtsByStudent(context.Context, *connect.Request[ListDebtsByStudentRequest]) (*connect.Response[ListDebtsResponse], error)
	GetReceipt(context.Context, *connect.Request[GetReceiptRequest]) (*connect.Response[ReceiptResponse], error)
}

// NewLedgerServiceClient constructs a client for the prexun.caja.v1.LedgerService service.
func NewLedgerServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) LedgerServiceClient {
	baseURL = strings.TrimRight(baseURL, "/")
	opts = clientOptions(opts)
	return &ledgerServiceClient{
		recordTransaction:  connect.NewClient[RecordTransactionRequest, TransactionResponse](httpClient, baseURL+LedgerServiceRecordTransactionProcedure, opts...),
		updateTransaction:  connect.NewClient[UpdateTransactionRequest, TransactionResponse](httpClient, baseURL+LedgerServiceUpdateTransactionProcedure, opts...),
		voidTransaction:    connect.NewClient[VoidTransactionRequest, TransactionResponse](httpClient, baseURL+LedgerServiceVoidTransactionProcedure, opts...),
		correctTransaction: connect.NewClient[CorrectTransactionRequest, TransactionResponse](httpClient, baseURL+LedgerServiceCorrectTransactionProcedure, opts...),
		createDebt:         connect.NewClient[CreateDebtRequest, DebtResponse](httpClient, baseURL+LedgerServiceCreateDebtProcedure, opts...),
		getDebt:            connect.NewClient[GetDebtRequest, DebtResponse](httpClient, baseURL+LedgerServiceGetDebtProcedure, opts...),
		deleteDebt:         connect.NewClient[DeleteDebtRequest, DeleteDebtResponse](httpClient, baseURL+LedgerServiceDeleteDebtProcedure, opts...),
		applyPayment:       connect.NewClient[ApplyPaymentRequest, ApplyPaymentResponse](httpClient, baseURL+LedgerServiceApplyPaymentProcedure, opts...),
		listDebtsByStudent: connect.NewClient[ListDebtsByStudentRequest, ListDebtsResponse](httpClient, baseURL+LedgerServiceListDebtsByStudentProcedure, opts...),
		getReceipt:         connect.NewClient[GetReceiptRequest, ReceiptResponse](httpClient, baseURL+LedgerServiceGetReceiptProcedure, opts...),
	}
}

type ledgerServiceClient struct {
	recordTransaction  *connect.Client[RecordTransactionRequest, TransactionResponse]
	updateTransaction  *connect.Client[UpdateTransactionRequest, TransactionResponse]
	voidTransaction    *connect.Client[VoidTransactionRequest, TransactionResponse]
	correctTransaction *connect.Client[CorrectTransactionRequest, TransactionResponse]
	createDebt         *connect.Client[CreateDebtRequest, DebtResponse]
	getDebt            *connect.Client[GetDebtRequest, DebtResponse]
	deleteDebt         *connect.Client[DeleteDebtRequest, DeleteDebtResponse]
	applyPayment       *connect.Client[ApplyPaymentRequest, ApplyPaymentResponse]
	listDebtsByStudent *connect.Client[ListDebtsByStudentRequest, ListDebtsResponse]
	getReceipt         *connect.Client[GetReceiptRequest, ReceiptResponse]
}

func (c *ledgerServiceClient) RecordTransaction(ctx context.Context, req *connect.Request[RecordTransactionRequest]) (*connect.Response[TransactionResponse], error) {
	return c.recordTransaction.CallUnary(ctx, req)
}

func (c *ledgerServiceClient) UpdateTransaction(ctx context.Context, req *connect.Request[UpdateTransactionRequest]) (*connect.Response[TransactionResponse], error) {
	return c.updateTransaction.CallUnary(ctx, req)
}

func (c *ledgerServiceClient) VoidTransaction(ctx context.Context, req *connect.Request[VoidTransactionRequest]) (*connect.Response[TransactionResponse], error) {
	return c.voidTransaction.CallUnary(ctx, req)
}

func (c *ledgerServiceClient) CorrectTransaction(ctx context.Context, req *connect.Request[CorrectTransactionRequest]) (*connect.Response[TransactionResponse], error) {
	return c.correctTransaction.CallUnary(ctx, req)
}

func (c *ledgerServiceClient) CreateDebt(ctx context.Context, req *connect.Request[CreateDebtRequest]) (*connect.Response[DebtResponse], error) {
	return c.createDebt.CallUnary(ctx, req)
}

func (c *ledgerServiceClient) GetDebt(ctx context.Context, req *connect.Request[GetDebtRequest]) (*connect.Response[DebtResponse], error) {
	return c.getDebt.CallUnary(ctx, req)
}

func (c *ledgerServiceClient) DeleteDebt(ctx context.Context, req *connect.Request[DeleteDebtRequest]) (*connect.Response[DeleteDebtResponse], error) {
	return c.deleteDebt.CallUnary(ctx, req)
}

func (c *ledgerServiceClient) ApplyPayment(ctx context.Context, req *connect.Request[ApplyPaymentRequest]) (*connect.Response[ApplyPaymentResponse], error) {
	return c.applyPayment.CallUnary(ctx, req)
}

func (c *ledgerServiceClient) ListDebtsByStudent(ctx context.Context, req *connect.Request[ListDebtsByStudentRequest]) (*connect.Response[ListDebtsResponse], error) {
	return c.listDebtsByStudent.CallUnary(ctx, req)
}

func (c *ledgerServiceClient) GetReceipt(ctx context.Context, req *connect.Request[GetReceiptRequest]) (*connect.Response[ReceiptResponse], error) {
	return c.getReceipt.CallUnary(ctx, req)
}
