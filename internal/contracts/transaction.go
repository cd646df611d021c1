package contracts

import (
	"time"

	"MyFinance/internal/domain/transaction"
)

type TransactionCreateRequest struct {
	CategoryId      *string                `json:"category_id"`
	BudgetId        *string                `json:"budget_id"`
	PotId           *string                `json:"pot_id"`
	Description     string                 `json:"description" binding:"required,max=255"`
	Recipient       string                 `json:"recipient" binding:"omitempty,max=100"`
	Sender          string                 `json:"sender" binding:"omitempty,max=100"`
	Amount          int64                  `json:"amount" binding:"gte=0"`
	Type            string                 `json:"type" binding:"required,oneof=DEBIT CREDIT"`
	TransactionDate *time.Time             `json:"transaction_date"`
	Metadata        map[string]interface{} `json:"metadata"`
}

type TransactionUpdateRequest struct {
	CategoryId      NullableID              `json:"category_id"`
	BudgetId        NullableID              `json:"budget_id"`
	PotId           NullableID              `json:"pot_id"`
	Description     *string                 `json:"description" binding:"omitempty,min=1,max=255"`
	Recipient       *string                 `json:"recipient" binding:"omitempty,max=100"`
	Sender          *string                 `json:"sender" binding:"omitempty,max=100"`
	Amount          *int64                  `json:"amount" binding:"omitempty,gte=0"`
	Type            *string                 `json:"type" binding:"omitempty,oneof=DEBIT CREDIT"`
	TransactionDate *time.Time              `json:"transaction_date"`
	Metadata        *map[string]interface{} `json:"metadata"`
}

type TransactionSingleResponse struct {
	Transaction *transaction.Transaction `json:"transaction"`
}

type TransactionSummaryResponse struct {
	Summary *transaction.Summary `json:"summary"`
}
