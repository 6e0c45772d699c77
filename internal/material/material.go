package material

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	ErrNotFound          = errors.New("material not found")
	ErrMovementNotFound  = errors.New("movement not found")
	ErrInUse             = errors.New("material has movements or transactions")
	ErrEmptyName         = errors.New("material name is required")
	ErrNegativePrice     = errors.New("unit price must not be negative")
	ErrInvalidStockRange = errors.New("minimum stock must not exceed maximum stock")
	ErrInvalidDirection  = errors.New("invalid movement direction")
	ErrInvalidQuantity   = errors.New("movement quantity must be positive")
	ErrUnknownReference  = errors.New("referenced material or project does not exist")

	// ErrMovementsUnavailable is returned when no movement table exists under any known name.
	ErrMovementsUnavailable = errors.New("material movement table not available")
)

type Material struct {
	ID        uuid.UUID
	Name      string
	Unit      string
	UnitPrice decimal.Decimal
	Category  string
	MinStock  *decimal.Decimal
	MaxStock  *decimal.Decimal
	CreatedAt time.Time
	UpdatedAt *time.Time
}

// Direction says whether a movement brings stock in or takes it out.
type Direction string

const (
	DirectionIn  Direction = "entrada"
	DirectionOut Direction = "saida"
)

func (d Direction) Valid() bool {
	return d == DirectionIn || d == DirectionOut
}

func (d Direction) Label() string {
	switch d {
	case DirectionIn:
		return "Entrada"
	case DirectionOut:
		return "Saída"
	}

	return string(d)
}

// Movement is one entry in the stock log of a material.
type Movement struct {
	ID          uuid.UUID
	MaterialID  uuid.UUID
	ProjectID   *uuid.UUID
	Date        time.Time
	Quantity    decimal.Decimal
	Direction   Direction
	UnitValue   decimal.Decimal
	Responsible string
	Note        string
	CreatedAt   time.Time
}

// Signed returns the quantity as a stock delta: positive in, negative out.
func (m *Movement) Signed() decimal.Decimal {
	if m.Direction == DirectionOut {
		return m.Quantity.Neg()
	}

	return m.Quantity
}

func (m *Movement) Total() decimal.Decimal {
	return m.Quantity.Mul(m.UnitValue)
}
