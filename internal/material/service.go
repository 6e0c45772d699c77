package material

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=material
type Repository interface {
	CreateMaterial(ctx context.Context, mat *Material) error
	GetMaterial(ctx context.Context, id uuid.UUID) (*Material, error)
	ListMaterials(ctx context.Context, filter ListFilter) ([]*Material, error)
	UpdateMaterial(ctx context.Context, mat *Material) error
	DeleteMaterial(ctx context.Context, id uuid.UUID) error

	CreateMovement(ctx context.Context, mv *Movement) error
	ListMovements(ctx context.Context, filter MovementFilter) ([]*Movement, error)
	DeleteMovement(ctx context.Context, id uuid.UUID) error
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

type ListFilter struct {
	Category *string
	Search   string
}

// MovementFilter narrows the movement log. Date bounds are inclusive.
type MovementFilter struct {
	MaterialID *uuid.UUID
	ProjectID  *uuid.UUID
	StartDate  *time.Time
	EndDate    *time.Time
}

type CreateParams struct {
	Name      string
	Unit      string
	UnitPrice decimal.Decimal
	Category  string
	MinStock  *decimal.Decimal
	MaxStock  *decimal.Decimal
}

type MovementParams struct {
	MaterialID  uuid.UUID
	ProjectID   *uuid.UUID
	Date        time.Time
	Quantity    decimal.Decimal
	Direction   Direction
	UnitValue   *decimal.Decimal // defaults to the material's unit price
	Responsible string
	Note        string
}

func (s *Service) Create(ctx context.Context, params CreateParams) (*Material, error) {
	m := &Material{
		Name:      strings.TrimSpace(params.Name),
		Unit:      params.Unit,
		UnitPrice: params.UnitPrice,
		Category:  strings.TrimSpace(params.Category),
		MinStock:  params.MinStock,
		MaxStock:  params.MaxStock,
	}
	if err := validate(m); err != nil {
		return nil, err
	}

	if err := s.repo.CreateMaterial(ctx, m); err != nil {
		return nil, err
	}

	return m, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Material, error) {
	return s.repo.GetMaterial(ctx, id)
}

func (s *Service) List(ctx context.Context, filter ListFilter) ([]*Material, error) {
	return s.repo.ListMaterials(ctx, filter)
}

func (s *Service) Update(ctx context.Context, m *Material) error {
	if err := validate(m); err != nil {
		return err
	}

	return s.repo.UpdateMaterial(ctx, m)
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	return s.repo.DeleteMaterial(ctx, id)
}

// RecordMovement appends a movement to the stock log.
func (s *Service) RecordMovement(ctx context.Context, params MovementParams) (*Movement, error) {
	if !params.Direction.Valid() {
		return nil, ErrInvalidDirection
	}

	if !params.Quantity.IsPositive() {
		return nil, ErrInvalidQuantity
	}

	mv := &Movement{
		MaterialID:  params.MaterialID,
		ProjectID:   params.ProjectID,
		Date:        params.Date,
		Quantity:    params.Quantity,
		Direction:   params.Direction,
		Responsible: params.Responsible,
		Note:        params.Note,
	}

	if params.UnitValue != nil {
		if params.UnitValue.IsNegative() {
			return nil, ErrNegativePrice
		}

		mv.UnitValue = *params.UnitValue
	} else {
		m, err := s.repo.GetMaterial(ctx, params.MaterialID)
		if err != nil {
			return nil, err
		}

		mv.UnitValue = m.UnitPrice
	}

	if err := s.repo.CreateMovement(ctx, mv); err != nil {
		return nil, err
	}

	return mv, nil
}

func (s *Service) Movements(ctx context.Context, filter MovementFilter) ([]*Movement, error) {
	return s.repo.ListMovements(ctx, filter)
}

func (s *Service) DeleteMovement(ctx context.Context, id uuid.UUID) error {
	return s.repo.DeleteMovement(ctx, id)
}

// Lookup returns every material indexed by id.
func (s *Service) Lookup(ctx context.Context) (map[uuid.UUID]*Material, error) {
	materials, err := s.repo.ListMaterials(ctx, ListFilter{})
	if err != nil {
		return nil, err
	}

	byID := make(map[uuid.UUID]*Material, len(materials))
	for _, m := range materials {
		byID[m.ID] = m
	}

	return byID, nil
}

func validate(m *Material) error {
	if m.Name == "" {
		return ErrEmptyName
	}

	if m.UnitPrice.IsNegative() {
		return ErrNegativePrice
	}

	if m.MinStock != nil && m.MaxStock != nil && m.MinStock.GreaterThan(*m.MaxStock) {
		return ErrInvalidStockRange
	}

	return nil
}
