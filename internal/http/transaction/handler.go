package transaction

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/gestobra/internal/transaction"
)

type Handler struct {
	svc *transaction.Service
}

func NewHandler(svc *transaction.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Routes(r chi.Router) {
	r.Post("/", h.create)
	r.Get("/", h.list)
	r.Get("/categories", h.categories)
	r.Get("/{id}", h.get)
	r.Delete("/{id}", h.delete)
	r.Patch("/{id}/payment-status", h.updatePaymentStatus)
	r.Patch("/{id}", h.update)
}

type createTransactionRequest struct {
	ProjectID     *uuid.UUID                `json:"project_id,omitempty"`
	Date          time.Time                 `json:"date"`
	Value         decimal.Decimal           `json:"value"`
	Type          transaction.Type          `json:"type"`
	Category      string                    `json:"category"`
	Description   string                    `json:"description"`
	PaymentStatus transaction.PaymentStatus `json:"payment_status,omitempty"`
	MaterialID    *uuid.UUID                `json:"material_id,omitempty"`
	StageID       *uuid.UUID                `json:"stage_id,omitempty"`
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req createTransactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	tx, err := h.svc.Create(r.Context(), transaction.CreateParams{
		ProjectID:     req.ProjectID,
		Date:          req.Date,
		Value:         req.Value,
		Type:          req.Type,
		Category:      req.Category,
		Description:   req.Description,
		PaymentStatus: req.PaymentStatus,
		MaterialID:    req.MaterialID,
		StageID:       req.StageID,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)

	if err := json.NewEncoder(w).Encode(toResponse(tx)); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	filter := transaction.ListFilter{}
	q := r.URL.Query()

	if s := q.Get("project_id"); s != "" {
		id, err := uuid.Parse(s)
		if err != nil {
			http.Error(w, "invalid project_id", http.StatusBadRequest)
			return
		}

		filter.ProjectID = &id
	}

	if s := q.Get("type"); s != "" {
		filter.Type = new(transaction.Type(s))
	}

	if s := q.Get("category"); s != "" {
		filter.Category = new(s)
	}

	if s := q.Get("payment_status"); s != "" {
		filter.PaymentStatus = new(transaction.PaymentStatus(s))
	}

	if s := q.Get("start_date"); s != "" {
		if t, err := time.Parse(time.DateOnly, s); err == nil {
			filter.StartDate = new(t)
		}
	}

	if s := q.Get("end_date"); s != "" {
		if t, err := time.Parse(time.DateOnly, s); err == nil {
			filter.EndDate = new(t)
		}
	}

	txs, err := h.svc.List(r.Context(), filter)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")

	if err := json.NewEncoder(w).Encode(toResponseList(txs)); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func (h *Handler) categories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.svc.Categories(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	if categories == nil {
		categories = []string{}
	}

	w.Header().Set("Content-Type", "application/json")

	if err := json.NewEncoder(w).Encode(categories); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	tx, err := h.svc.Get(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")

	if err := json.NewEncoder(w).Encode(toResponse(tx)); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	if err := h.svc.Delete(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

type updateTransactionRequest struct {
	ProjectID   *uuid.UUID        `json:"project_id,omitempty"`
	Date        *time.Time        `json:"date,omitempty"`
	Value       *decimal.Decimal  `json:"value,omitempty"`
	Type        *transaction.Type `json:"type,omitempty"`
	Category    *string           `json:"category,omitempty"`
	Description *string           `json:"description,omitempty"`
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	var req updateTransactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	tx, err := h.svc.Get(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}

	if req.ProjectID != nil {
		tx.ProjectID = req.ProjectID
	}

	if req.Date != nil {
		tx.Date = *req.Date
	}

	if req.Value != nil {
		tx.Value = *req.Value
	}

	if req.Type != nil {
		tx.Type = *req.Type
	}

	if req.Category != nil {
		tx.Category = *req.Category
	}

	if req.Description != nil {
		tx.Description = *req.Description
	}

	if err := h.svc.Update(r.Context(), tx); err != nil {
		writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")

	if err := json.NewEncoder(w).Encode(toResponse(tx)); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

type updatePaymentStatusRequest struct {
	PaymentStatus transaction.PaymentStatus `json:"payment_status"`
}

func (h *Handler) updatePaymentStatus(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	var req updatePaymentStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := h.svc.UpdatePaymentStatus(r.Context(), id, req.PaymentStatus); err != nil {
		writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, transaction.ErrNotFound):
		http.Error(w, "transaction not found", http.StatusNotFound)
	case errors.Is(err, transaction.ErrNegativeValue),
		errors.Is(err, transaction.ErrInvalidType),
		errors.Is(err, transaction.ErrInvalidPaymentStatus),
		errors.Is(err, transaction.ErrProjectNotFound):
		http.Error(w, err.Error(), http.StatusBadRequest)
	default:
		slog.Error("transaction request failed", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}
