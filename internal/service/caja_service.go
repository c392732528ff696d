// Package service implements the Connect handlers of the cash register and ledger APIs.
package service

import (
	"context"
	"log/slog"

	"connectrpc.com/connect"

	"github.com/mariafernandaa20/prexun-caja/internal/api"
	"github.com/mariafernandaa20/prexun-caja/internal/ledger"
	"github.com/mariafernandaa20/prexun-caja/internal/middleware"
)

// CajaService implements the Connect CajaService
type CajaService struct {
	registers *ledger.Registers
}

var _ api.CajaServiceHandler = (*CajaService)(nil)

// NewCajaService creates a new CajaService over the ledger's register manager.
func NewCajaService(l *ledger.Ledger) *CajaService {
	return &CajaService{registers: l.Registers}
}

// OpenRegister opens the campus drawer with its initial count.
func (s *CajaService) OpenRegister(ctx context.Context, req *connect.Request[api.OpenRegisterRequest]) (*connect.Response[api.RegisterResponse], error) {
	msg := req.Msg
	slog.Info("OpenRegister request received",
		"campus_id", msg.CampusID,
		"initial_amount", msg.InitialAmount,
		"carry_forward", msg.CarryForward,
	)

	reg, err := s.registers.Open(ctx, ledger.OpenRegisterInput{
		CampusID:             msg.CampusID,
		InitialAmount:        msg.InitialAmount,
		InitialDenominations: msg.InitialDenominations,
		Notes:                msg.Notes,
		OpenedBy:             middleware.GetOperatorID(ctx),
		CarryForward:         msg.CarryForward,
	})
	if err != nil {
		return nil, toConnectError("OpenRegister", err)
	}

	slog.Info("Register opened", "register_id", reg.ID, "campus_id", reg.CampusID)
	return connect.NewResponse(&api.RegisterResponse{Register: reg}), nil
}

// CloseRegister counts the drawer and closes the session.
func (s *CajaService) CloseRegister(ctx context.Context, req *connect.Request[api.CloseRegisterRequest]) (*connect.Response[api.RegisterResponse], error) {
	msg := req.Msg
	slog.Info("CloseRegister request received",
		"register_id", msg.RegisterID,
		"final_amount", msg.FinalAmount,
		"next_day", msg.NextDayAmount,
	)

	reg, err := s.registers.Close(ctx, ledger.CloseRegisterInput{
		RegisterID:           msg.RegisterID,
		FinalAmount:          msg.FinalAmount,
		FinalDenominations:   msg.FinalDenominations,
		NextDayAmount:        msg.NextDayAmount,
		NextDayDenominations: msg.NextDayDenominations,
		Notes:                msg.Notes,
		ClosedBy:             middleware.GetOperatorID(ctx),
	})
	if err != nil {
		return nil, toConnectError("CloseRegister", err)
	}

	slog.Info("Register closed",
		"register_id", reg.ID,
		"expected_cash", reg.ExpectedCash,
		"cash_difference", reg.CashDifference,
	)
	return connect.NewResponse(&api.RegisterResponse{Register: reg}), nil
}

func (s *CajaService) GetCurrentRegister(ctx context.Context, req *connect.Request[api.GetCurrentRegisterRequest]) (*connect.Response[api.RegisterResponse], error) {
	slog.Debug("GetCurrentRegister request received", "campus_id", req.Msg.CampusID)

	reg, err := s.registers.GetCurrent(ctx, req.Msg.CampusID)
	if err != nil {
		return nil, toConnectError("GetCurrentRegister", err)
	}
	return connect.NewResponse(&api.RegisterResponse{Register: reg}), nil
}

func (s *CajaService) GetRegisterHistory(ctx context.Context, req *connect.Request[api.GetRegisterHistoryRequest]) (*connect.Response[api.RegisterHistoryResponse], error) {
	slog.Debug("GetRegisterHistory request received", "campus_id", req.Msg.CampusID)

	regs, err := s.registers.History(ctx, req.Msg.CampusID)
	if err != nil {
		return nil, toConnectError("GetRegisterHistory", err)
	}

	slog.Debug("Register history retrieved", "campus_id", req.Msg.CampusID, "count", len(regs))
	return connect.NewResponse(&api.RegisterHistoryResponse{Registers: regs}), nil
}

func (s *CajaService) GetRegisterSummary(ctx context.Context, req *connect.Request[api.GetRegisterSummaryRequest]) (*connect.Response[api.RegisterSummaryResponse], error) {
	slog.Debug("GetRegisterSummary request received", "register_id", req.Msg.RegisterID)

	summary, err := s.registers.Summary(ctx, req.Msg.RegisterID)
	if err != nil {
		return nil, toConnectError("GetRegisterSummary", err)
	}
	return connect.NewResponse(&api.RegisterSummaryResponse{Summary: summary}), nil
}
