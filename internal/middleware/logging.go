package middleware

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"connectrpc.com/connect"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/mariafernandaa20/prexun-caja/internal/api"
	"github.com/mariafernandaa20/prexun-caja/internal/apperr"
)

// LoggingInterceptor returns a Connect interceptor that logs every RPC call with its
// procedure, operator, request ID and duration.
//
// Failed calls also carry the Connect code and the ledger error kind. Rejected input
// (validation, mismatch, conflict, not found) and auth failures log at warn; outages
// and errors without a kind log at error.
// Install it after the auth interceptor so the operator is known.
func LoggingInterceptor() connect.UnaryInterceptorFunc {
	return func(next connect.UnaryFunc) connect.UnaryFunc {
		return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
			start := time.Now()
			resp, err := next(ctx, req)

			attrs := []any{
				"procedure", req.Spec().Procedure,
				"operator_id", GetOperatorID(ctx),
				"request_id", chimiddleware.GetReqID(ctx),
				"duration_ms", time.Since(start).Milliseconds(),
			}
			if err == nil {
				slog.InfoContext(ctx, "RPC ok", attrs...)
				return resp, nil
			}

			var connectErr *connect.Error
			if !errors.As(err, &connectErr) {
				slog.ErrorContext(ctx, "RPC error", append(attrs, "error", err)...)
				return resp, err
			}

			kind := connectErr.Meta().Get(api.ErrorKindHeader)
			attrs = append(attrs,
				"code", connectErr.Code(),
				"kind", kind,
				"error", connectErr.Message(),
			)
			switch {
			case kind != "" && kind != string(apperr.KindInfrastructure):
				slog.WarnContext(ctx, "RPC rejected", attrs...)
			case connectErr.Code() == connect.CodeUnauthenticated:
				slog.WarnContext(ctx, "RPC unauthenticated", attrs...)
			default:
				slog.ErrorContext(ctx, "RPC failed", attrs...)
			}
			return resp, err
		}
	}
}
