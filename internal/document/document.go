package document

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrNotFound        = errors.New("document not found")
	ErrEmptyTitle      = errors.New("document title is required")
	ErrEmptyFile       = errors.New("document file is empty")
	ErrProjectNotFound = errors.New("referenced project does not exist")
)

// Document is a file attached to a project: plans, permits, contracts, receipts.
type Document struct {
	ID          uuid.UUID
	ProjectID   uuid.UUID
	Title       string
	Description string
	Type        string
	FileURL     string
	FileName    string
	Owner       string
	CreatedAt   time.Time
	UpdatedAt   *time.Time
}
