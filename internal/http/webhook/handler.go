package webhook

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/nocodeinfolab/ledgersync/internal/history"
	"github.com/nocodeinfolab/ledgersync/internal/reconcile"
)

const maxPayloadBytes = 1 << 20

type Handler struct {
	svc        *reconcile.Service
	historySvc *history.Service
}

func NewHandler(svc *reconcile.Service, historySvc *history.Service) *Handler {
	return &Handler{svc: svc, historySvc: historySvc}
}

func (h *Handler) Routes(r chi.Router) {
	r.Post("/", h.receive)
}

type messageResponse struct {
	Message string `json:"message"`
	Error   string `json:"error,omitempty"`
}

func (h *Handler) receive(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxPayloadBytes))
	if err != nil {
		respond(w, http.StatusBadRequest, messageResponse{
			Message: "failed to read request body",
			Error:   err.Error(),
		})

		return
	}

	tx, err := parseTransaction(body)
	if err != nil {
		respond(w, http.StatusBadRequest, messageResponse{
			Message: "invalid webhook payload",
			Error:   err.Error(),
		})

		return
	}

	result, err := h.svc.Reconcile(r.Context(), tx)
	if err != nil {
		slog.Error("reconciliation failed", "transaction_id", tx.TransactionID, "error", err)

		h.record(r.Context(), &history.Record{
			TransactionID: tx.TransactionID,
			Action:        "failed",
			Message:       err.Error(),
		})

		respond(w, http.StatusInternalServerError, messageResponse{
			Message: "reconciliation failed",
			Error:   err.Error(),
		})

		return
	}

	h.record(r.Context(), &history.Record{
		TransactionID: tx.TransactionID,
		Action:        string(result.Action),
		InvoiceID:     result.InvoiceID,
		PaymentID:     result.PaymentID,
		CreditNoteID:  result.CreditNoteID,
		Message:       result.Message,
	})

	respond(w, http.StatusOK, messageResponse{Message: result.Message})
}

// record persists the outcome for audit. History failures never fail the
// webhook; the ledger is already consistent at this point.
func (h *Handler) record(ctx context.Context, rec *history.Record) {
	if err := h.historySvc.Record(ctx, rec); err != nil {
		slog.Error("failed to record reconciliation", "transaction_id", rec.TransactionID, "error", err)
	}
}

func respond(w http.ResponseWriter, status int, body messageResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(body); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}
