package advance

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/harvest/internal/advance"
	"github.com/MrJamesThe3rd/harvest/internal/collection"
	"github.com/MrJamesThe3rd/harvest/internal/http/auth"
)

type AttemptLister interface {
	ListAttempts(ctx context.Context, advanceID uuid.UUID) ([]*collection.Attempt, error)
}

type Handler struct {
	svc      *advance.Service
	attempts AttemptLister
	validate *validator.Validate
}

func NewHandler(svc *advance.Service, attempts AttemptLister) *Handler {
	return &Handler{svc: svc, attempts: attempts, validate: validator.New()}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/{id}", h.get)
	r.Get("/{id}/balance", h.balance)
	r.Get("/{id}/schedule", h.schedule)
	r.Get("/{id}/history", h.history)
	r.Post("/{id}/payments", h.recordPayment)
	r.Post("/{id}/extend", h.extend)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	adv, err := h.svc.Get(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toAdvanceResponse(adv))
}

func (h *Handler) balance(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	asOf, ok := h.parseAsOf(w, r)
	if !ok {
		return
	}

	b, err := h.svc.Balance(r.Context(), id, asOf)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, b)
}

func (h *Handler) schedule(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	asOf, ok := h.parseAsOf(w, r)
	if !ok {
		return
	}

	s, err := h.svc.Schedule(r.Context(), id, asOf)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, s)
}

func (h *Handler) history(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	hist, err := h.svc.History(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}

	attempts, err := h.attempts.ListAttempts(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toHistoryResponse(hist, attempts))
}

type paymentRequest struct {
	Amount      decimal.Decimal `json:"amount"`
	Method      string          `json:"method" validate:"required,max=32"`
	Reference   string          `json:"reference" validate:"max=128"`
	ProcessedAt *time.Time      `json:"processed_at,omitempty"`
}

func (h *Handler) recordPayment(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	var req paymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}

	if err := h.validate.Struct(req); err != nil {
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
		return
	}

	params := advance.PaymentParams{
		AdvanceID: id,
		Amount:    req.Amount,
		Method:    req.Method,
		Reference: req.Reference,
		Actor:     auth.ActorFrom(r.Context()),
	}

	if req.ProcessedAt != nil {
		params.ProcessedAt = *req.ProcessedAt
	}

	res, err := h.svc.RecordPayment(r.Context(), params)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, toPaymentResponse(res))
}

type extendRequest struct {
	NewDueDate string `json:"new_due_date" validate:"required,datetime=2006-01-02"`
	Reason     string `json:"reason" validate:"required,max=500"`
}

func (h *Handler) extend(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	var req extendRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}

	if err := h.validate.Struct(req); err != nil {
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
		return
	}

	due, _ := time.Parse(time.DateOnly, req.NewDueDate)

	res, err := h.svc.ExtendDueDate(r.Context(), advance.ExtensionParams{
		AdvanceID:  id,
		NewDueDate: due,
		Reason:     req.Reason,
		Actor:      auth.ActorFrom(r.Context()),
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toExtensionResponse(res))
}

func parseID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return uuid.Nil, false
	}

	return id, true
}

// parseAsOf reads ?as_of=YYYY-MM-DD on the ledger's calendar, defaulting to now.
func (h *Handler) parseAsOf(w http.ResponseWriter, r *http.Request) (time.Time, bool) {
	loc := h.svc.Location()

	s := r.URL.Query().Get("as_of")
	if s == "" {
		return time.Now().In(loc), true
	}

	t, err := time.ParseInLocation(time.DateOnly, s, loc)
	if err != nil {
		http.Error(w, "as_of must be YYYY-MM-DD", http.StatusBadRequest)
		return time.Time{}, false
	}

	return t, true
}

func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, advance.ErrNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, advance.ErrInvalidState), errors.Is(err, advance.ErrDuplicatePayment):
		http.Error(w, err.Error(), http.StatusConflict)
	case errors.Is(err, advance.ErrInvalidAmount), errors.Is(err, advance.ErrInvalidDueDate),
		errors.Is(err, advance.ErrInvalidProcessedAt):
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
	default:
		slog.Error("advance request failed", "module", "http", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}
