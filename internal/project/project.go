package project

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	ErrNotFound        = errors.New("project not found")
	ErrInUse           = errors.New("project is referenced by other records")
	ErrInvalidStatus   = errors.New("invalid project status")
	ErrInvalidProgress = errors.New("progress must be between 0 and 100")
	ErrNegativeBudget  = errors.New("budget must not be negative")
	ErrEmptyName       = errors.New("project name is required")
)

// Status is the lifecycle state of a construction project.
type Status string

const (
	StatusPlanned    Status = "planejada"
	StatusInProgress Status = "em_andamento"
	StatusPaused     Status = "pausada"
	StatusCompleted  Status = "concluida"
)

// Statuses lists every valid status in lifecycle order.
var Statuses = []Status{StatusPlanned, StatusInProgress, StatusPaused, StatusCompleted}

func (s Status) Valid() bool {
	switch s {
	case StatusPlanned, StatusInProgress, StatusPaused, StatusCompleted:
		return true
	}

	return false
}

// Label returns the display name used in reports and screens.
func (s Status) Label() string {
	switch s {
	case StatusPlanned:
		return "Planejada"
	case StatusInProgress:
		return "Em andamento"
	case StatusPaused:
		return "Pausada"
	case StatusCompleted:
		return "Concluída"
	}

	return string(s)
}

// Project is a construction work (obra).
type Project struct {
	ID        uuid.UUID
	Name      string
	Status    Status
	Budget    decimal.Decimal
	Progress  int // 0-100
	Address   string
	CreatedAt time.Time
	UpdatedAt *time.Time
}
