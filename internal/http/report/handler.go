package report

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/gestobra/internal/project"
	"github.com/MrJamesThe3rd/gestobra/internal/report"
)

type Handler struct {
	svc *report.Service
	loc *time.Location
}

// NewHandler serves reports; date query parameters are read in loc.
func NewHandler(svc *report.Service, loc *time.Location) *Handler {
	if loc == nil {
		loc = time.UTC
	}

	return &Handler{svc: svc, loc: loc}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/", h.kinds)
	r.Get("/{kind}", h.generate)
}

type kindResponse struct {
	Kind  report.Kind `json:"kind"`
	Title string      `json:"title"`
}

func (h *Handler) kinds(w http.ResponseWriter, _ *http.Request) {
	resp := make([]kindResponse, len(report.Kinds))
	for i, k := range report.Kinds {
		resp[i] = kindResponse{Kind: k, Title: k.Title()}
	}

	w.Header().Set("Content-Type", "application/json")

	if err := json.NewEncoder(w).Encode(resp); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func (h *Handler) generate(w http.ResponseWriter, r *http.Request) {
	req, err := h.parseRequest(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	out, err := h.svc.Generate(r.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, report.ErrUnknownKind),
			errors.Is(err, report.ErrUnknownFormat),
			errors.Is(err, report.ErrInvalidPeriod):
			http.Error(w, err.Error(), http.StatusBadRequest)
		case errors.Is(err, project.ErrNotFound):
			http.Error(w, "project not found", http.StatusNotFound)
		default:
			http.Error(w, "failed to generate report", http.StatusInternalServerError)
		}

		return
	}

	w.Header().Set("Content-Type", out.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", out.FileName))
	w.Header().Set("Content-Length", strconv.Itoa(len(out.Data)))

	if _, err := w.Write(out.Data); err != nil {
		slog.Error("failed to write report", "file", out.FileName, "error", err)
	}
}

func (h *Handler) parseRequest(r *http.Request) (report.Request, error) {
	q := r.URL.Query()

	kind, err := report.ParseKind(chi.URLParam(r, "kind"))
	if err != nil {
		return report.Request{}, err
	}

	format := report.FormatPDF
	if s := q.Get("format"); s != "" {
		if format, err = report.ParseFormat(s); err != nil {
			return report.Request{}, err
		}
	}

	req := report.Request{
		Kind:     kind,
		Format:   format,
		Category: q.Get("category"),
	}

	if s := q.Get("start_date"); s != "" {
		t, err := time.ParseInLocation(time.DateOnly, s, h.loc)
		if err != nil {
			return report.Request{}, fmt.Errorf("invalid start_date %q", s)
		}

		req.Start = &t
	}

	if s := q.Get("end_date"); s != "" {
		t, err := time.ParseInLocation(time.DateOnly, s, h.loc)
		if err != nil {
			return report.Request{}, fmt.Errorf("invalid end_date %q", s)
		}

		req.End = &t
	}

	if s := q.Get("project_id"); s != "" {
		id, err := uuid.Parse(s)
		if err != nil {
			return report.Request{}, fmt.Errorf("invalid project_id %q", s)
		}

		req.ProjectID = &id
	}

	return req, nil
}
