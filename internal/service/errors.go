package service

import (
	"errors"
	"log/slog"

	"connectrpc.com/connect"

	"github.com/mariafernandaa20/prexun-caja/internal/api"
	"github.com/mariafernandaa20/prexun-caja/internal/apperr"
)

var errUnavailable = errors.New("ledger temporarily unavailable, try again later")

// toConnectError maps a ledger error to a Connect error. Infrastructure errors are
// logged and replaced by a generic message.
func toConnectError(op string, err error) error {
	kind := apperr.KindOf(err)

	var connectErr *connect.Error
	switch kind {
	case apperr.KindValidation:
		connectErr = connect.NewError(connect.CodeInvalidArgument, err)
	case apperr.KindMismatch:
		connectErr = connect.NewError(connect.CodeFailedPrecondition, err)
	case apperr.KindConflict:
		connectErr = connect.NewError(connect.CodeAlreadyExists, err)
	case apperr.KindNotFound:
		connectErr = connect.NewError(connect.CodeNotFound, err)
	default:
		slog.Error(op+" failed", "error", err)
		connectErr = connect.NewError(connect.CodeUnavailable, errUnavailable)
	}

	if apperr.IsBusiness(err) {
		slog.Warn(op+" rejected", "kind", kind, "error", err)
	}
	connectErr.Meta().Set(api.ErrorKindHeader, string(kind))
	return connectErr
}

func warningMessages(warnings []error) []string {
	if len(warnings) == 0 {
		return nil
	}
	out := make([]string, len(warnings))
	for i, w := range warnings {
		out[i] = w.Error()
	}
	return out
}
