package material

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/gestobra/internal/material"
)

type Handler struct {
	svc *material.Service
}

func NewHandler(svc *material.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Routes(r chi.Router) {
	r.Post("/", h.create)
	r.Get("/", h.list)

	r.Route("/movements", func(r chi.Router) {
		r.Post("/", h.recordMovement)
		r.Get("/", h.listMovements)
		r.Delete("/{id}", h.deleteMovement)
	})

	r.Get("/{id}", h.get)
	r.Patch("/{id}", h.update)
	r.Delete("/{id}", h.delete)
}

type materialResponse struct {
	ID        uuid.UUID        `json:"id"`
	Name      string           `json:"name"`
	Unit      string           `json:"unit"`
	UnitPrice decimal.Decimal  `json:"unit_price"`
	Category  string           `json:"category"`
	MinStock  *decimal.Decimal `json:"min_stock,omitempty"`
	MaxStock  *decimal.Decimal `json:"max_stock,omitempty"`
	CreatedAt time.Time        `json:"created_at"`
	UpdatedAt *time.Time       `json:"updated_at,omitempty"`
}

func toResponse(m *material.Material) materialResponse {
	return materialResponse{
		ID:        m.ID,
		Name:      m.Name,
		Unit:      m.Unit,
		UnitPrice: m.UnitPrice,
		Category:  m.Category,
		MinStock:  m.MinStock,
		MaxStock:  m.MaxStock,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}

type movementResponse struct {
	ID          uuid.UUID          `json:"id"`
	MaterialID  uuid.UUID          `json:"material_id"`
	ProjectID   *uuid.UUID         `json:"project_id,omitempty"`
	Date        time.Time          `json:"date"`
	Quantity    decimal.Decimal    `json:"quantity"`
	Direction   material.Direction `json:"direction"`
	UnitValue   decimal.Decimal    `json:"unit_value"`
	Total       decimal.Decimal    `json:"total"`
	Responsible string             `json:"responsible"`
	Note        string             `json:"note"`
	CreatedAt   time.Time          `json:"created_at"`
}

func toMovementResponse(mv *material.Movement) movementResponse {
	return movementResponse{
		ID:          mv.ID,
		MaterialID:  mv.MaterialID,
		ProjectID:   mv.ProjectID,
		Date:        mv.Date,
		Quantity:    mv.Quantity,
		Direction:   mv.Direction,
		UnitValue:   mv.UnitValue,
		Total:       mv.Total(),
		Responsible: mv.Responsible,
		Note:        mv.Note,
		CreatedAt:   mv.CreatedAt,
	}
}

type createMaterialRequest struct {
	Name      string           `json:"name"`
	Unit      string           `json:"unit"`
	UnitPrice decimal.Decimal  `json:"unit_price"`
	Category  string           `json:"category"`
	MinStock  *decimal.Decimal `json:"min_stock,omitempty"`
	MaxStock  *decimal.Decimal `json:"max_stock,omitempty"`
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req createMaterialRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	m, err := h.svc.Create(r.Context(), material.CreateParams{
		Name:      req.Name,
		Unit:      req.Unit,
		UnitPrice: req.UnitPrice,
		Category:  req.Category,
		MinStock:  req.MinStock,
		MaxStock:  req.MaxStock,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)

	if err := json.NewEncoder(w).Encode(toResponse(m)); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	filter := material.ListFilter{Search: r.URL.Query().Get("search")}

	if s := r.URL.Query().Get("category"); s != "" {
		filter.Category = new(s)
	}

	materials, err := h.svc.List(r.Context(), filter)
	if err != nil {
		writeError(w, err)
		return
	}

	resp := make([]materialResponse, len(materials))
	for i, m := range materials {
		resp[i] = toResponse(m)
	}

	w.Header().Set("Content-Type", "application/json")

	if err := json.NewEncoder(w).Encode(resp); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	m, err := h.svc.Get(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")

	if err := json.NewEncoder(w).Encode(toResponse(m)); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

type updateMaterialRequest struct {
	Name      *string          `json:"name,omitempty"`
	Unit      *string          `json:"unit,omitempty"`
	UnitPrice *decimal.Decimal `json:"unit_price,omitempty"`
	Category  *string          `json:"category,omitempty"`
	MinStock  *decimal.Decimal `json:"min_stock,omitempty"`
	MaxStock  *decimal.Decimal `json:"max_stock,omitempty"`
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	var req updateMaterialRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	m, err := h.svc.Get(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}

	if req.Name != nil {
		m.Name = *req.Name
	}

	if req.Unit != nil {
		m.Unit = *req.Unit
	}

	if req.UnitPrice != nil {
		m.UnitPrice = *req.UnitPrice
	}

	if req.Category != nil {
		m.Category = *req.Category
	}

	if req.MinStock != nil {
		m.MinStock = req.MinStock
	}

	if req.MaxStock != nil {
		m.MaxStock = req.MaxStock
	}

	if err := h.svc.Update(r.Context(), m); err != nil {
		writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")

	if err := json.NewEncoder(w).Encode(toResponse(m)); err != nil {
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

type recordMovementRequest struct {
	MaterialID  uuid.UUID          `json:"material_id"`
	ProjectID   *uuid.UUID         `json:"project_id,omitempty"`
	Date        time.Time          `json:"date"`
	Quantity    decimal.Decimal    `json:"quantity"`
	Direction   material.Direction `json:"direction"`
	UnitValue   *decimal.Decimal   `json:"unit_value,omitempty"`
	Responsible string             `json:"responsible"`
	Note        string             `json:"note"`
}

func (h *Handler) recordMovement(w http.ResponseWriter, r *http.Request) {
	var req recordMovementRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	mv, err := h.svc.RecordMovement(r.Context(), material.MovementParams{
		MaterialID:  req.MaterialID,
		ProjectID:   req.ProjectID,
		Date:        req.Date,
		Quantity:    req.Quantity,
		Direction:   req.Direction,
		UnitValue:   req.UnitValue,
		Responsible: req.Responsible,
		Note:        req.Note,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)

	if err := json.NewEncoder(w).Encode(toMovementResponse(mv)); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func (h *Handler) listMovements(w http.ResponseWriter, r *http.Request) {
	var filter material.MovementFilter

	q := r.URL.Query()

	for param, dst := range map[string]**uuid.UUID{
		"material_id": &filter.MaterialID,
		"project_id":  &filter.ProjectID,
	} {
		s := q.Get(param)
		if s == "" {
			continue
		}

		id, err := uuid.Parse(s)
		if err != nil {
			http.Error(w, "invalid "+param, http.StatusBadRequest)
			return
		}

		*dst = &id
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

	movements, err := h.svc.Movements(r.Context(), filter)
	if err != nil {
		writeError(w, err)
		return
	}

	resp := make([]movementResponse, len(movements))
	for i, mv := range movements {
		resp[i] = toMovementResponse(mv)
	}

	w.Header().Set("Content-Type", "application/json")

	if err := json.NewEncoder(w).Encode(resp); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func (h *Handler) deleteMovement(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	if err := h.svc.DeleteMovement(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, material.ErrNotFound), errors.Is(err, material.ErrMovementNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, material.ErrInUse):
		http.Error(w, err.Error(), http.StatusConflict)
	case errors.Is(err, material.ErrMovementsUnavailable):
		http.Error(w, err.Error(), http.StatusServiceUnavailable)
	case errors.Is(err, material.ErrEmptyName),
		errors.Is(err, material.ErrNegativePrice),
		errors.Is(err, material.ErrInvalidStockRange),
		errors.Is(err, material.ErrInvalidDirection),
		errors.Is(err, material.ErrInvalidQuantity),
		errors.Is(err, material.ErrUnknownReference):
		http.Error(w, err.Error(), http.StatusBadRequest)
	default:
		slog.Error("material request failed", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}
