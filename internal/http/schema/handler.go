package schema

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/MrJamesThe3rd/gestobra/internal/schema"
)

type resolver interface {
	Resolve(ctx context.Context) (schema.Resolution, error)
}

// Handler reports which physical table backs the material movement log.
type Handler struct {
	movements resolver
}

func NewHandler(movements resolver) *Handler {
	return &Handler{movements: movements}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/movements", h.movementTable)
}

type resolutionResponse struct {
	Exists bool   `json:"exists"`
	Table  string `json:"table,omitempty"`
	Reason string `json:"reason,omitempty"`
}

func (h *Handler) movementTable(w http.ResponseWriter, r *http.Request) {
	res, err := h.movements.Resolve(r.Context())
	if err != nil {
		slog.Error("failed to probe movement table", "error", err)
		http.Error(w, "failed to probe schema", http.StatusInternalServerError)

		return
	}

	w.Header().Set("Content-Type", "application/json")

	if err := json.NewEncoder(w).Encode(resolutionResponse(res)); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}
