package api

import (
	"context"
	"net/http"
	"strings"

	"connectrpc.com/connect"
	"github.com/shopspring/decimal"

	"github.com/mariafernandaa20/prexun-caja/internal/calculator"
	"github.com/mariafernandaa20/prexun-caja/internal/models"
)

// CajaServiceName is the fully-qualified name of the CajaService service.
const CajaServiceName = "prexun.caja.v1.CajaService"

// Procedures of CajaService.
const (
	CajaServiceOpenRegisterProcedure       = "/prexun.caja.v1.CajaService/OpenRegister"
	CajaServiceCloseRegisterProcedure      = "/prexun.caja.v1.CajaService/CloseRegister"
	CajaServiceGetCurrentRegisterProcedure = "/prexun.caja.v1.CajaService/GetCurrentRegister"
	CajaServiceGetRegisterHistoryProcedure = "/prexun.caja.v1.CajaService/GetRegisterHistory"
	CajaServiceGetRegisterSummaryProcedure = "/prexun.caja.v1.CajaService/GetRegisterSummary"
)

type OpenRegisterRequest struct {
	CampusID             int64                `json:"campus_id"`
	InitialAmount        decimal.Decimal      `json:"initial_amount"`
	InitialDenominations models.Denominations `json:"initial_denominations,omitempty"`
	Notes                string               `json:"notes,omitempty"`

	// CarryForward opens with the next-day cash of the previous closed register.
	CarryForward bool `json:"carry_forward,omitempty"`
}

type CloseRegisterRequest struct {
	RegisterID           string               `json:"register_id"`
	FinalAmount          decimal.Decimal      `json:"final_amount"`
	FinalDenominations   models.Denominations `json:"final_denominations,omitempty"`
	NextDayAmount        decimal.Decimal      `json:"next_day"`
	NextDayDenominations models.Denominations `json:"next_day_denominations,omitempty"`
	Notes                string               `json:"notes,omitempty"`
}

type GetCurrentRegisterRequest struct {
	CampusID int64 `json:"campus_id"`
}

type GetRegisterHistoryRequest struct {
	CampusID int64 `json:"campus_id"`
}

type GetRegisterSummaryRequest struct {
	RegisterID string `json:"register_id"`
}

type RegisterResponse struct {
	Register *models.CashRegister `json:"register"`
}

type RegisterHistoryResponse struct {
	Registers []*models.CashRegister `json:"registers"`
}

type RegisterSummaryResponse struct {
	Summary *calculator.RegisterSummary `json:"summary"`
}

// CajaServiceHandler is implemented by the cash register service.
type CajaServiceHandler interface {
	OpenRegister(context.Context, *connect.Request[OpenRegisterRequest]) (*connect.Response[RegisterResponse], error)
	CloseRegister(context.Context, *connect.Request[CloseRegisterRequest]) (*connect.Response[RegisterResponse], error)
	GetCurrentRegister(context.Context, *connect.Request[GetCurrentRegisterRequest]) (*connect.Response[RegisterResponse], error)
	GetRegisterHistory(context.Context, *connect.Request[GetRegisterHistoryRequest]) (*connect.Response[RegisterHistoryResponse], error)
	GetRegisterSummary(context.Context, *connect.Request[GetRegisterSummaryRequest]) (*connect.Response[RegisterSummaryResponse], error)
}

// NewCajaServiceHandler builds an HTTP handler from the service implementation.
// It returns the path on which to mount the handler and the handler itself.
func NewCajaServiceHandler(svc CajaServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = handlerOptions(opts)
	handlers := map[string]http.Handler{
		CajaServiceOpenRegisterProcedure:       connect.NewUnaryHandler(CajaServiceOpenRegisterProcedure, svc.OpenRegister, opts...),
		CajaServiceCloseRegisterProcedure:      connect.NewUnaryHandler(CajaServiceCloseRegisterProcedure, svc.CloseRegister, opts...),
		CajaServiceGetCurrentRegisterProcedure: connect.NewUnaryHandler(CajaServiceGetCurrentRegisterProcedure, svc.GetCurrentRegister, opts...),
		CajaServiceGetRegisterHistoryProcedure: connect.NewUnaryHandler(CajaServiceGetRegisterHistoryProcedure, svc.GetRegisterHistory, opts...),
		CajaServiceGetRegisterSummaryProcedure: connect.NewUnaryHandler(CajaServiceGetRegisterSummaryProcedure, svc.GetRegisterSummary, opts...),
	}
	return servicePath(CajaServiceName), route(handlers)
}

// CajaServiceClient is a client for the prexun.caja.v1.CajaService service.
type CajaServiceClient interface {
	OpenRegister(context.Context, *connect.Request[OpenRegisterRequest]) (*connect.Response[RegisterResponse], error)
	CloseRegister(context.Context, *connect.Request[CloseRegisterRequest]) (*connect.Response[RegisterResponse], error)
	GetCurrentRegister(context.Context, *connect.Request[GetCurrentRegisterRequest]) (*connect.Response[RegisterResponse], error)
	GetRegisterHistory(context.Context, *connect.Request[GetRegisterHistoryRequest]) (*connect.Response[RegisterHistoryResponse], error)
	GetRegisterSummary(context.Context, *connect.Request[GetRegisterSummaryRequest]) (*connect.Response[RegisterSummaryResponse], error)
}

// NewCajaServiceClient constructs a client for the prexun.caja.v1.CajaService service.
// baseURL is the scheme and host of the server, e.g. http://localhost:8080.
func NewCajaServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) CajaServiceClient {
	baseURL = strings.TrimRight(baseURL, "/")
	opts = clientOptions(opts)
	return &cajaServiceClient{
		openRegister:       connect.NewClient[OpenRegisterRequest, RegisterResponse](httpClient, baseURL+CajaServiceOpenRegisterProcedure, opts...),
		closeRegister:      connect.NewClient[CloseRegisterRequest, RegisterResponse](httpClient, baseURL+CajaServiceCloseRegisterProcedure, opts...),
		getCurrentRegister: connect.NewClient[GetCurrentRegisterRequest, RegisterResponse](httpClient, baseURL+CajaServiceGetCurrentRegisterProcedure, opts...),
		getRegisterHistory: connect.NewClient[GetRegisterHistoryRequest, RegisterHistoryResponse](httpClient, baseURL+CajaServiceGetRegisterHistoryProcedure, opts...),
		getRegisterSummary: connect.NewClient[GetRegisterSummaryRequest, RegisterSummaryResponse](httpClient, baseURL+CajaServiceGetRegisterSummaryProcedure, opts...),
	}
}

type cajaServiceClient struct {
	openRegister       *connect.Client[OpenRegisterRequest, RegisterResponse]
	closeRegister      *connect.Client[CloseRegisterRequest, RegisterResponse]
	getCurrentRegister *connect.Client[GetCurrentRegisterRequest, RegisterResponse]
	getRegisterHistory *connect.Client[GetRegisterHistoryRequest, RegisterHistoryResponse]
	getRegisterSummary *connect.Client[GetRegisterSummaryRequest, RegisterSummaryResponse]
}

func (c *cajaServiceClient) OpenRegister(ctx context.Context, req *connect.Request[OpenRegisterRequest]) (*connect.Response[RegisterResponse], error) {
	return c.openRegister.CallUnary(ctx, req)
}

func (c *cajaServiceClient) CloseRegister(ctx context.Context, req *connect.Request[CloseRegisterRequest]) (*connect.Response[RegisterResponse], error) {
	return c.closeRegister.CallUnary(ctx, req)
}

func (c *cajaServiceClient) GetCurrentRegister(ctx context.Context, req *connect.Request[GetCurrentRegisterRequest]) (*connect.Response[RegisterResponse], error) {
	return c.getCurrentRegister.CallUnary(ctx, req)
}

func (c *cajaServiceClient) GetRegisterHistory(ctx context.Context, req *connect.Request[GetRegisterHistoryRequest]) (*connect.Response[RegisterHistoryResponse], error) {
	return c.getRegisterHistory.CallUnary(ctx, req)
}

func (c *cajaServiceClient) GetRegisterSummary(ctx context.Context, req *connect.Request[GetRegisterSummaryRequest]) (*connect.Response[RegisterSummaryResponse], error) {
	return c.getRegisterSummary.CallUnary(ctx, req)
}

func servicePath(name string) string {
	return "/" + name + "/"
}

func route(handlers map[string]http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h, ok := handlers[r.URL.Path]
		if !ok {
			http.NotFound(w, r)
			return
		}
		h.ServeHTTP(w, r)
	})
}
