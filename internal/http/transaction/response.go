package transaction

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/gestobra/internal/transaction"
)

type transactionResponse struct {
	ID            uuid.UUID                 `json:"id"`
	ProjectID     *uuid.UUID                `json:"project_id,omitempty"`
	Date          time.Time                 `json:"date"`
	Value         decimal.Decimal           `json:"value"`
	Type          transaction.Type          `json:"type"`
	Category      string                    `json:"category"`
	Description   string                    `json:"description"`
	PaymentStatus transaction.PaymentStatus `json:"payment_status"`
	MaterialID    *uuid.UUID                `json:"material_id,omitempty"`
	StageID       *uuid.UUID                `json:"stage_id,omitempty"`
	CreatedAt     time.Time                 `json:"created_at"`
	UpdatedAt     *time.Time                `json:"updated_at,omitempty"`
}

func toResponse(tx *transaction.Transaction) transactionResponse {
	return transactionResponse{
		ID:            tx.ID,
		ProjectID:     tx.ProjectID,
		Date:          tx.Date,
		Value:         tx.Value,
		Type:          tx.Type,
		Category:      tx.Category,
		Description:   tx.Description,
		PaymentStatus: tx.PaymentStatus,
		MaterialID:    tx.MaterialID,
		StageID:       tx.StageID,
		CreatedAt:     tx.CreatedAt,
		UpdatedAt:     tx.UpdatedAt,
	}
}

func toResponseList(txs []*transaction.Transaction) []transactionResponse {
	resp := make([]transactionResponse, len(txs))
	for i, tx := range txs {
		resp[i] = toResponse(tx)
	}

	return resp
}
