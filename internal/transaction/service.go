package transaction

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=transaction
type Repository interface {
	CreateTransaction(ctx context.Context, tx *Transaction) error
	GetTransaction(ctx context.Context, id uuid.UUID) (*Transaction, error)
	UpdateTransaction(ctx context.Context, tx *Transaction) error
	UpdatePaymentStatus(ctx context.Context, id uuid.UUID, status PaymentStatus) error

	ListTransactions(ctx context.Context, filter ListFilter) ([]*Transaction, error)
	ListCategories(ctx context.Context) ([]string, error)
	DeleteTransaction(ctx context.Context, id uuid.UUID) error

	BeginImport(ctx context.Context, minDate, maxDate time.Time) (ImportTx, error)
}

type ImportTx interface {
	FindDuplicates(ctx context.Context, params []CreateParams) ([]*Transaction, error)
	CreateTransactions(ctx context.Context, txs []*Transaction) error
	Commit() error
	Rollback() error
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

type CreateParams struct {
	ProjectID     *uuid.UUID
	Date          time.Time
	Value         decimal.Decimal
	Type          Type
	Category      string
	Description   string
	PaymentStatus PaymentStatus
	MaterialID    *uuid.UUID
	StageID       *uuid.UUID
}

// ListFilter narrows a listing. Nil fields are ignored; date bounds are inclusive.
type ListFilter struct {
	ProjectID     *uuid.UUID
	Type          *Type
	Category      *string
	PaymentStatus *PaymentStatus
	StartDate     *time.Time
	EndDate       *time.Time
}

func (s *Service) Create(ctx context.Context, params CreateParams) (*Transaction, error) {
	tx := newTransaction(params)
	if err := validate(tx); err != nil {
		return nil, err
	}

	if err := s.repo.CreateTransaction(ctx, tx); err != nil {
		return nil, err
	}

	return tx, nil
}

func (s *Service) List(ctx context.Context, filter ListFilter) ([]*Transaction, error) {
	return s.repo.ListTransactions(ctx, filter)
}

func (s *Service) Categories(ctx context.Context) ([]string, error) {
	return s.repo.ListCategories(ctx)
}

func (s *Service) Update(ctx context.Context, tx *Transaction) error {
	if err := validate(tx); err != nil {
		return err
	}

	return s.repo.UpdateTransaction(ctx, tx)
}

func (s *Service) UpdatePaymentStatus(ctx context.Context, id uuid.UUID, status PaymentStatus) error {
	if !status.Valid() {
		return ErrInvalidPaymentStatus
	}

	return s.repo.UpdatePaymentStatus(ctx, id, status)
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Transaction, error) {
	return s.repo.GetTransaction(ctx, id)
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	return s.repo.DeleteTransaction(ctx, id)
}

type ImportResult struct {
	Imported  []*Transaction
	New       []CreateParams
	Conflicts []Conflict
}

type Conflict struct {
	Incoming CreateParams
	Existing *Transaction
}

// ImportKey identifies a statement line for duplicate detection.
type ImportKey struct {
	Date        string
	Value       string
	Type        Type
	Description string
}

func NewImportKey(date time.Time, value decimal.Decimal, typ Type, description string) ImportKey {
	return ImportKey{
		Date:        date.Format(time.DateOnly),
		Value:       value.StringFixed(2),
		Type:        typ,
		Description: strings.ToLower(strings.TrimSpace(description)),
	}
}

// ImportBatch inserts statement lines in one database transaction. When any line matches an
// existing transaction nothing is written and the split between new lines and conflicts is returned.
func (s *Service) ImportBatch(ctx context.Context, params []CreateParams) (*ImportResult, error) {
	if len(params) == 0 {
		return &ImportResult{}, nil
	}

	if err := validateLines(params); err != nil {
		return nil, err
	}

	minDate, maxDate := dateRange(params)

	itx, err := s.repo.BeginImport(ctx, minDate, maxDate)
	if err != nil {
		return nil, fmt.Errorf("begin import: %w", err)
	}
	defer itx.Rollback()

	duplicates, err := itx.FindDuplicates(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("find duplicates: %w", err)
	}

	lookup := make(map[ImportKey]*Transaction, len(duplicates))
	for _, d := range duplicates {
		lookup[NewImportKey(d.Date, d.Value, d.Type, d.Description)] = d
	}

	var newParams []CreateParams

	var conflicts []Conflict

	for _, p := range params {
		existing, found := lookup[NewImportKey(p.Date, p.Value, p.Type, p.Description)]
		if found {
			conflicts = append(conflicts, Conflict{Incoming: p, Existing: existing})
			continue
		}

		newParams = append(newParams, p)
	}

	if len(conflicts) > 0 {
		return &ImportResult{New: newParams, Conflicts: conflicts}, nil
	}

	txs := paramsToTransactions(newParams)
	if err := itx.CreateTransactions(ctx, txs); err != nil {
		return nil, fmt.Errorf("create transactions: %w", err)
	}

	if err := itx.Commit(); err != nil {
		return nil, fmt.Errorf("commit import: %w", err)
	}

	return &ImportResult{Imported: txs}, nil
}

// CreateBatch inserts the given lines without duplicate detection, used after the caller resolved conflicts.
func (s *Service) CreateBatch(ctx context.Context, params []CreateParams) ([]*Transaction, error) {
	if len(params) == 0 {
		return nil, nil
	}

	if err := validateLines(params); err != nil {
		return nil, err
	}

	minDate, maxDate := dateRange(params)

	itx, err := s.repo.BeginImport(ctx, minDate, maxDate)
	if err != nil {
		return nil, fmt.Errorf("begin import: %w", err)
	}
	defer itx.Rollback()

	txs := paramsToTransactions(params)
	if err := itx.CreateTransactions(ctx, txs); err != nil {
		return nil, fmt.Errorf("create transactions: %w", err)
	}

	if err := itx.Commit(); err != nil {
		return nil, fmt.Errorf("commit import: %w", err)
	}

	return txs, nil
}

func validate(tx *Transaction) error {
	if tx.Value.IsNegative() {
		return ErrNegativeValue
	}

	if !tx.Type.Valid() {
		return ErrInvalidType
	}

	if !tx.PaymentStatus.Valid() {
		return ErrInvalidPaymentStatus
	}

	return nil
}

func validateLines(params []CreateParams) error {
	for i := range params {
		if err := validate(newTransaction(params[i])); err != nil {
			return fmt.Errorf("line %d: %w", i+1, err)
		}
	}

	return nil
}

func newTransaction(p CreateParams) *Transaction {
	status := p.PaymentStatus
	if status == "" {
		status = PaymentPending
	}

	return &Transaction{
		ProjectID:     p.ProjectID,
		Date:          p.Date,
		Value:         p.Value,
		Type:          p.Type,
		Category:      strings.TrimSpace(p.Category),
		Description:   p.Description,
		PaymentStatus: status,
		MaterialID:    p.MaterialID,
		StageID:       p.StageID,
	}
}

func dateRange(params []CreateParams) (time.Time, time.Time) {
	minDate := params[0].Date
	maxDate := params[0].Date

	for _, p := range params[1:] {
		if p.Date.Before(minDate) {
			minDate = p.Date
		}

		if p.Date.After(maxDate) {
			maxDate = p.Date
		}
	}

	return minDate, maxDate
}

func paramsToTransactions(params []CreateParams) []*Transaction {
	txs := make([]*Transaction, len(params))
	for i, p := range params {
		txs[i] = newTransaction(p)
	}

	return txs
}
