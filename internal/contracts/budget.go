package contracts

import (
	"time"

	"MyFinance/internal/domain/budget"
)

type BudgetCreateRequest struct {
	Name        string    `json:"name" binding:"required,max=100"`
	Description string    `json:"description" binding:"omitempty,max=255"`
	Color       string    `json:"color" binding:"omitempty,hexcolor"`
	CategoryId  *string   `json:"category_id"`
	TotalAmount int64     `json:"total_amount" binding:"required,gt=0"`
	StartDate   time.Time `json:"start_date" binding:"required"`
	EndDate     time.Time `json:"end_date" binding:"required"`
}

type BudgetUpdateRequest struct {
	Name        *string    `json:"name" binding:"omitempty,min=1,max=100"`
	Description *string    `json:"description" binding:"omitempty,max=255"`
	Color       *string    `json:"color" binding:"omitempty,hexcolor"`
	CategoryId  NullableID `json:"category_id"`
	TotalAmount *int64     `json:"total_amount" binding:"omitempty,gt=0"`
	StartDate   *time.Time `json:"start_date"`
	EndDate     *time.Time `json:"end_date"`
	IsActive    *bool      `json:"is_active"`
}

type BudgetSingleResponse struct {
	Budget *budget.Budget `json:"budget"`
}

type BudgetSummaryResponse struct {
	Summary *budget.Summary `json:"summary"`
}
