package transaction

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	ErrNotFound             = errors.New("transaction not found")
	ErrNegativeValue        = errors.New("transaction value must not be negative")
	ErrInvalidType          = errors.New("invalid transaction type")
	ErrInvalidPaymentStatus = errors.New("invalid payment status")
	ErrProjectNotFound      = errors.New("referenced project or material does not exist")
)

// Type separates money coming in from money going out.
type Type string

const (
	TypeExpense Type = "despesa"
	TypeIncome  Type = "receita"
)

func (t Type) Valid() bool {
	return t == TypeExpense || t == TypeIncome
}

func (t Type) Label() string {
	switch t {
	case TypeExpense:
		return "Despesa"
	case TypeIncome:
		return "Receita"
	}

	return string(t)
}

// PaymentStatus tracks whether the transaction has been settled.
type PaymentStatus string

const (
	PaymentPending PaymentStatus = "pendente"
	PaymentPaid    PaymentStatus = "pago"
)

func (s PaymentStatus) Valid() bool {
	return s == PaymentPending || s == PaymentPaid
}

func (s PaymentStatus) Label() string {
	switch s {
	case PaymentPending:
		return "Pendente"
	case PaymentPaid:
		return "Pago"
	}

	return string(s)
}

// Transaction is a financial entry, optionally attached to a project.
type Transaction struct {
	ID            uuid.UUID
	ProjectID     *uuid.UUID
	Date          time.Time
	Value         decimal.Decimal // always non-negative; Type carries the sign
	Type          Type
	Category      string
	Description   string
	PaymentStatus PaymentStatus
	MaterialID    *uuid.UUID
	StageID       *uuid.UUID
	CreatedAt     time.Time
	UpdatedAt     *time.Time
}

// Signed returns the value with income positive and expenses negative.
func (t *Transaction) Signed() decimal.Decimal {
	if t.Type == TypeExpense {
		return t.Value.Neg()
	}

	return t.Value
}
