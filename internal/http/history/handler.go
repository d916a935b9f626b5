package history

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/nocodeinfolab/ledgersync/internal/history"
)

type Handler struct {
	svc *history.Service
}

func NewHandler(svc *history.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/", h.list)
}

type recordResponse struct {
	ID            uuid.UUID `json:"id"`
	TransactionID string    `json:"transaction_id"`
	Action        string    `json:"action"`
	InvoiceID     string    `json:"invoice_id,omitempty"`
	PaymentID     string    `json:"payment_id,omitempty"`
	CreditNoteID  string    `json:"credit_note_id,omitempty"`
	Message       string    `json:"message"`
	CreatedAt     time.Time `json:"created_at"`
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	filter := history.ListFilter{
		TransactionID: r.URL.Query().Get("transaction_id"),
	}

	if s := r.URL.Query().Get("limit"); s != "" {
		limit, err := strconv.Atoi(s)
		if err != nil || limit <= 0 {
			http.Error(w, "limit must be a positive integer", http.StatusBadRequest)
			return
		}

		filter.Limit = limit
	}

	records, err := h.svc.List(r.Context(), filter)
	if err != nil {
		if errors.Is(err, history.ErrDisabled) {
			http.Error(w, "reconciliation history is not configured", http.StatusServiceUnavailable)
			return
		}

		http.Error(w, err.Error(), http.StatusInternalServerError)

		return
	}

	resp := make([]recordResponse, len(records))
	for i, rec := range records {
		resp[i] = recordResponse{
			ID:            rec.ID,
			TransactionID: rec.TransactionID,
			Action:        rec.Action,
			InvoiceID:     rec.InvoiceID,
			PaymentID:     rec.PaymentID,
			CreditNoteID:  rec.CreditNoteID,
			Message:       rec.Message,
			CreatedAt:     rec.CreatedAt,
		}
	}

	w.Header().Set("Content-Type", "application/json")

	if err := json.NewEncoder(w).Encode(resp); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}
