package webhook

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/harvest/internal/advance"
	"github.com/MrJamesThe3rd/harvest/internal/webhook"
)

const maxPayloadBytes = 1 << 20

type Handler struct {
	processor *webhook.Processor
}

func NewHandler(processor *webhook.Processor) *Handler {
	return &Handler{processor: processor}
}

func (h *Handler) Routes(r chi.Router) {
	r.Post("/{provider}", h.receive)
}

type receiveResponse struct {
	Status     string          `json:"status"`
	NewBalance decimal.Decimal `json:"new_balance"`
	FullyPaid  bool            `json:"fully_paid"`
}

// receive acknowledges non-payment events with 202 so providers stop retrying them.
func (h *Handler) receive(w http.ResponseWriter, r *http.Request) {
	provider := chi.URLParam(r, "provider")

	payload, err := io.ReadAll(io.LimitReader(r.Body, maxPayloadBytes))
	if err != nil {
		http.Error(w, "failed to read body", http.StatusBadRequest)
		return
	}

	res, err := h.processor.Handle(r.Context(), provider, payload)
	if err != nil {
		switch {
		case errors.Is(err, webhook.ErrIgnoredEvent):
			w.WriteHeader(http.StatusAccepted)
		case errors.Is(err, webhook.ErrUnknownProvider), errors.Is(err, advance.ErrNotFound):
			http.Error(w, err.Error(), http.StatusNotFound)
		case errors.Is(err, webhook.ErrInvalidPayload), errors.Is(err, advance.ErrInvalidAmount),
			errors.Is(err, advance.ErrInvalidProcessedAt):
			http.Error(w, err.Error(), http.StatusUnprocessableEntity)
		case errors.Is(err, advance.ErrInvalidState), errors.Is(err, advance.ErrDuplicatePayment):
			http.Error(w, err.Error(), http.StatusConflict)
		default:
			slog.Error("webhook processing failed", "module", "http", "provider", provider, "error", err)
			http.Error(w, "internal error", http.StatusInternalServerError)
		}

		return
	}

	w.Header().Set("Content-Type", "application/json")

	if err := json.NewEncoder(w).Encode(receiveResponse{
		Status:     string(res.Status),
		NewBalance: res.NewBalance,
		FullyPaid:  res.FullyPaid,
	}); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}
