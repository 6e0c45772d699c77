package project

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/gestobra/internal/project"
)

type Handler struct {
	svc *project.Service
}

func NewHandler(svc *project.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Routes(r chi.Router) {
	r.Post("/", h.create)
	r.Get("/", h.list)
	r.Get("/{id}", h.get)
	r.Patch("/{id}", h.update)
	r.Delete("/{id}", h.delete)
}

type projectResponse struct {
	ID          uuid.UUID       `json:"id"`
	Name        string          `json:"name"`
	Status      project.Status  `json:"status"`
	StatusLabel string          `json:"status_label"`
	Budget      decimal.Decimal `json:"budget"`
	Progress    int             `json:"progress"`
	Address     string          `json:"address"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   *time.Time      `json:"updated_at,omitempty"`
}

func toResponse(p *project.Project) projectResponse {
	return projectResponse{
		ID:          p.ID,
		Name:        p.Name,
		Status:      p.Status,
		StatusLabel: p.Status.Label(),
		Budget:      p.Budget,
		Progress:    p.Progress,
		Address:     p.Address,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

type createProjectRequest struct {
	Name     string          `json:"name"`
	Status   project.Status  `json:"status"`
	Budget   decimal.Decimal `json:"budget"`
	Progress int             `json:"progress"`
	Address  string          `json:"address"`
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req createProjectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	p, err := h.svc.Create(r.Context(), project.CreateParams{
		Name:     req.Name,
		Status:   req.Status,
		Budget:   req.Budget,
		Progress: req.Progress,
		Address:  req.Address,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)

	if err := json.NewEncoder(w).Encode(toResponse(p)); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	filter := project.ListFilter{Search: r.URL.Query().Get("search")}

	if s := r.URL.Query().Get("status"); s != "" {
		filter.Status = new(project.Status(s))
	}

	projects, err := h.svc.List(r.Context(), filter)
	if err != nil {
		writeError(w, err)
		return
	}

	resp := make([]projectResponse, len(projects))
	for i, p := range projects {
		resp[i] = toResponse(p)
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

	p, err := h.svc.Get(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")

	if err := json.NewEncoder(w).Encode(toResponse(p)); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

type updateProjectRequest struct {
	Name     *string          `json:"name,omitempty"`
	Status   *project.Status  `json:"status,omitempty"`
	Budget   *decimal.Decimal `json:"budget,omitempty"`
	Progress *int             `json:"progress,omitempty"`
	Address  *string          `json:"address,omitempty"`
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	var req updateProjectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	p, err := h.svc.Get(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}

	if req.Name != nil {
		p.Name = *req.Name
	}

	if req.Status != nil {
		p.Status = *req.Status
	}

	if req.Budget != nil {
		p.Budget = *req.Budget
	}

	if req.Progress != nil {
		p.Progress = *req.Progress
	}

	if req.Address != nil {
		p.Address = *req.Address
	}

	if err := h.svc.Update(r.Context(), p); err != nil {
		writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")

	if err := json.NewEncoder(w).Encode(toResponse(p)); err != nil {
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

func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, project.ErrNotFound):
		http.Error(w, "project not found", http.StatusNotFound)
	case errors.Is(err, project.ErrInUse):
		http.Error(w, err.Error(), http.StatusConflict)
	case errors.Is(err, project.ErrEmptyName),
		errors.Is(err, project.ErrInvalidStatus),
		errors.Is(err, project.ErrInvalidProgress),
		errors.Is(err, project.ErrNegativeBudget):
		http.Error(w, err.Error(), http.StatusBadRequest)
	default:
		slog.Error("project request failed", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}
