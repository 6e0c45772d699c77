package project

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=project
type Repository interface {
	CreateProject(ctx context.Context, p *Project) error
	GetProject(ctx context.Context, id uuid.UUID) (*Project, error)
	ListProjects(ctx context.Context, filter ListFilter) ([]*Project, error)
	UpdateProject(ctx context.Context, p *Project) error
	DeleteProject(ctx context.Context, id uuid.UUID) error
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

type CreateParams struct {
	Name     string
	Status   Status
	Budget   decimal.Decimal
	Progress int
	Address  string
}

type ListFilter struct {
	Status *Status
	Search string
}

func (s *Service) Create(ctx context.Context, params CreateParams) (*Project, error) {
	if params.Status == "" {
		params.Status = StatusPlanned
	}

	p := &Project{
		Name:     strings.TrimSpace(params.Name),
		Status:   params.Status,
		Budget:   params.Budget,
		Progress: params.Progress,
		Address:  params.Address,
	}
	if err := validate(p); err != nil {
		return nil, err
	}

	if err := s.repo.CreateProject(ctx, p); err != nil {
		return nil, err
	}

	return p, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Project, error) {
	return s.repo.GetProject(ctx, id)
}

func (s *Service) List(ctx context.Context, filter ListFilter) ([]*Project, error) {
	return s.repo.ListProjects(ctx, filter)
}

func (s *Service) Update(ctx context.Context, p *Project) error {
	if err := validate(p); err != nil {
		return err
	}

	return s.repo.UpdateProject(ctx, p)
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	return s.repo.DeleteProject(ctx, id)
}

// Lookup returns the projects indexed by id.
func (s *Service) Lookup(ctx context.Context) (map[uuid.UUID]*Project, error) {
	projects, err := s.repo.ListProjects(ctx, ListFilter{})
	if err != nil {
		return nil, err
	}

	byID := make(map[uuid.UUID]*Project, len(projects))
	for _, p := range projects {
		byID[p.ID] = p
	}

	return byID, nil
}

func validate(p *Project) error {
	if p.Name == "" {
		return ErrEmptyName
	}

	if !p.Status.Valid() {
		return ErrInvalidStatus
	}

	if p.Progress < 0 || p.Progress > 100 {
		return ErrInvalidProgress
	}

	if p.Budget.IsNegative() {
		return ErrNegativeBudget
	}

	return nil
}
