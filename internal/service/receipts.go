package service

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/mariafernandaa20/prexun-caja/internal/api"
	"github.com/mariafernandaa20/prexun-caja/internal/apperr"
	"github.com/mariafernandaa20/prexun-caja/internal/ledger"
)

// ReceiptHandler serves GET /receipts/{uuid} as plain JSON for the receipt renderer.
// The optional ?prefix= query sets the folio prefix.
func ReceiptHandler(l *ledger.Ledger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		receiptUUID := chi.URLParam(r, "uuid")
		receipt, err := l.Transactions.Receipt(r.Context(), receiptUUID, r.URL.Query().Get("prefix"))
		if err != nil {
			status := http.StatusServiceUnavailable
			message := errUnavailable.Error()
			switch apperr.KindOf(err) {
			case apperr.KindNotFound:
				status, message = http.StatusNotFound, err.Error()
			case apperr.KindValidation:
				status, message = http.StatusBadRequest, err.Error()
			default:
				slog.Error("Receipt lookup failed", "uuid", receiptUUID, "error", err)
			}
			w.Header().Set(api.ErrorKindHeader, string(apperr.KindOf(err)))
			http.Error(w, message, status)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(receipt); err != nil {
			slog.Error("Failed to write receipt", "uuid", receiptUUID, "error", err)
		}
	}
}
