package report

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/gestobra/internal/material"
	"github.com/MrJamesThe3rd/gestobra/internal/metrics"
	"github.com/MrJamesThe3rd/gestobra/internal/project"
	"github.com/MrJamesThe3rd/gestobra/internal/transaction"
)

//go:generate mockgen -source=service.go -destination=service_mock.go -package=report
type ProjectSource interface {
	Get(ctx context.Context, id uuid.UUID) (*project.Project, error)
	List(ctx context.Context, filter project.ListFilter) ([]*project.Project, error)
}

type TransactionSource interface {
	List(ctx context.Context, filter transaction.ListFilter) ([]*transaction.Transaction, error)
}

type MaterialSource interface {
	List(ctx context.Context, filter material.ListFilter) ([]*material.Material, error)
	Movements(ctx context.Context, filter material.MovementFilter) ([]*material.Movement, error)
}

// Renderer serialises a model into one file format. Implementations must not modify the model.
type Renderer interface {
	Render(model *Model) ([]byte, error)
	ContentType() string
	Extension() string
}

type Sources struct {
	Projects     ProjectSource
	Transactions TransactionSource
	Materials    MaterialSource
}

type Service struct {
	projects     ProjectSource
	transactions TransactionSource
	materials    MaterialSource
	renderers    map[Format]Renderer
	metrics      *metrics.Reports
	loc          *time.Location
	now          func() time.Time
}

func NewService(src Sources, renderers map[Format]Renderer, m *metrics.Reports, loc *time.Location) *Service {
	if loc == nil {
		loc = time.UTC
	}

	return &Service{
		projects:     src.Projects,
		transactions: src.Transactions,
		materials:    src.Materials,
		renderers:    renderers,
		metrics:      m,
		loc:          loc,
		now:          time.Now,
	}
}

// Output is a rendered report ready to be written or served.
type Output struct {
	FileName    string
	ContentType string
	Data        []byte
	Model       *Model
}

// Generate aggregates and renders one report. Failed queries and render errors are returned; a
// missing movement table yields an empty movement section instead.
func (s *Service) Generate(ctx context.Context, req Request) (*Output, error) {
	started := time.Now()

	out, err := s.generate(ctx, req)

	elapsed := time.Since(started)
	s.metrics.ObserveReport(string(req.Kind), string(req.Format), err, elapsed)

	if err != nil {
		slog.Error("report generation failed", "kind", req.Kind, "format", req.Format, "error", err)
		return nil, err
	}

	slog.Info("report generated",
		"kind", req.Kind,
		"format", req.Format,
		"file", out.FileName,
		"bytes", len(out.Data),
		"duration", elapsed,
	)

	return out, nil
}

// scope is what a report is about: one project, one category, or everything.
type scope struct {
	project *project.Project
	label   string
}

func (s *Service) generate(ctx context.Context, req Request) (*Output, error) {
	if _, err := ParseKind(string(req.Kind)); err != nil {
		return nil, err
	}

	renderer, ok := s.renderers[req.Format]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, req.Format)
	}

	period, err := NewPeriod(req.Start, req.End)
	if err != nil {
		return nil, err
	}

	sc, err := s.scope(ctx, req)
	if err != nil {
		return nil, err
	}

	model, err := s.build(ctx, req, period, sc)
	if err != nil {
		return nil, err
	}

	model.Period = period
	model.Context = sc.label
	model.GeneratedAt = s.now().In(s.loc)

	data, err := renderer.Render(model)
	if err != nil {
		return nil, fmt.Errorf("rendering %s report as %s: %w", req.Kind, req.Format, err)
	}

	fileContext := "geral"
	if sc.project != nil {
		fileContext = sc.project.Name
	} else if req.Category != "" {
		fileContext = req.Category
	}

	return &Output{
		FileName:    FileName(req.Kind, fileContext, model.GeneratedAt, renderer.Extension()),
		ContentType: renderer.ContentType(),
		Data:        data,
		Model:       model,
	}, nil
}

func (s *Service) scope(ctx context.Context, req Request) (scope, error) {
	if req.ProjectID != nil {
		p, err := s.projects.Get(ctx, *req.ProjectID)
		if err != nil {
			return scope{}, fmt.Errorf("loading project: %w", err)
		}

		return scope{project: p, label: "Obra: " + p.Name}, nil
	}

	if req.Category != "" {
		return scope{label: "Categoria: " + req.Category}, nil
	}

	return scope{label: "Geral"}, nil
}

func (s *Service) build(ctx context.Context, req Request, period Period, sc scope) (*Model, error) {
	switch req.Kind {
	case KindProjects:
		projects, txs, err := s.projectsWithTransactions(ctx, req, period, sc, nil)
		if err != nil {
			return nil, err
		}

		return AggregateProjects(projects, txs).Model(), nil

	case KindPerformance:
		expense := transaction.TypeExpense

		projects, txs, err := s.projectsWithTransactions(ctx, req, period, sc, &expense)
		if err != nil {
			return nil, err
		}

		return AggregatePerformance(projects, txs).Model(), nil

	case KindFinancial:
		txs, err := s.transactions.List(ctx, transactionFilter(req, period, nil))
		if err != nil {
			return nil, fmt.Errorf("listing transactions: %w", err)
		}

		projects, err := s.projectLookup(ctx)
		if err != nil {
			return nil, err
		}

		return AggregateFinancial(txs, projects).Model(), nil

	case KindMaterials:
		filter := material.ListFilter{}
		if req.Category != "" {
			filter.Category = &req.Category
		}

		materials, err := s.materials.List(ctx, filter)
		if err != nil {
			return nil, fmt.Errorf("listing materials: %w", err)
		}

		movements, err := s.movements(ctx, req, period)
		if err != nil {
			return nil, err
		}

		return AggregateMaterials(materials, movements).Model(), nil

	case KindMovements:
		movements, err := s.movements(ctx, req, period)
		if err != nil {
			return nil, err
		}

		materials, err := s.materials.List(ctx, material.ListFilter{})
		if err != nil {
			return nil, fmt.Errorf("listing materials: %w", err)
		}

		byID := make(map[uuid.UUID]*material.Material, len(materials))
		for _, m := range materials {
			byID[m.ID] = m
		}

		projects, err := s.projectLookup(ctx)
		if err != nil {
			return nil, err
		}

		return AggregateMovements(movements, byID, projects, req.Category).Model(), nil
	}

	return nil, fmt.Errorf("%w: %q", ErrUnknownKind, req.Kind)
}

// projectsWithTransactions loads the projects in scope and, in a single query, every transaction of
// the period for them.
func (s *Service) projectsWithTransactions(
	ctx context.Context,
	req Request,
	period Period,
	sc scope,
	typ *transaction.Type,
) ([]*project.Project, []*transaction.Transaction, error) {
	var projects []*project.Project

	if sc.project != nil {
		projects = []*project.Project{sc.project}
	} else {
		var err error

		projects, err = s.projects.List(ctx, project.ListFilter{})
		if err != nil {
			return nil, nil, fmt.Errorf("listing projects: %w", err)
		}
	}

	txs, err := s.transactions.List(ctx, transactionFilter(req, period, typ))
	if err != nil {
		return nil, nil, fmt.Errorf("listing transactions: %w", err)
	}

	return projects, txs, nil
}

func (s *Service) projectLookup(ctx context.Context) (map[uuid.UUID]*project.Project, error) {
	projects, err := s.projects.List(ctx, project.ListFilter{})
	if err != nil {
		return nil, fmt.Errorf("listing projects: %w", err)
	}

	byID := make(map[uuid.UUID]*project.Project, len(projects))
	for _, p := range projects {
		byID[p.ID] = p
	}

	return byID, nil
}

func (s *Service) movements(ctx context.Context, req Request, period Period) ([]*material.Movement, error) {
	filter := material.MovementFilter{
		ProjectID: req.ProjectID,
		StartDate: &period.Start,
		EndDate:   &period.End,
	}

	movements, err := s.materials.Movements(ctx, filter)
	if err != nil {
		if errors.Is(err, material.ErrMovementsUnavailable) {
			slog.Warn("movement log unavailable, reporting no movements", "kind", req.Kind)
			return nil, nil
		}

		return nil, fmt.Errorf("listing movements: %w", err)
	}

	return movements, nil
}

func transactionFilter(req Request, period Period, typ *transaction.Type) transaction.ListFilter {
	filter := transaction.ListFilter{
		ProjectID: req.ProjectID,
		Type:      typ,
		StartDate: &period.Start,
		EndDate:   &period.End,
	}

	if req.Category != "" {
		filter.Category = &req.Category
	}

	return filter
}
