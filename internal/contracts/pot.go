package contracts

import "MyFinance/internal/domain/pot"

type PotCreateRequest struct {
	Name         string `json:"name" binding:"required,max=100"`
	Description  string `json:"description" binding:"omitempty,max=255"`
	Color        string `json:"color" binding:"omitempty,hexcolor"`
	TargetAmount int64  `json:"target_amount" binding:"required,gt=0"`
}

type PotUpdateRequest struct {
	Name         *string `json:"name" binding:"omitempty,min=1,max=100"`
	Description  *string `json:"description" binding:"omitempty,max=255"`
	Color        *string `json:"color" binding:"omitempty,hexcolor"`
	TargetAmount *int64  `json:"target_amount" binding:"omitempty,gt=0"`
}

// PotAdjustRequest moves money into (positive) or out of (negative) a pot.
type PotAdjustRequest struct {
	Amount int64  `json:"amount" binding:"required,ne=0"`
	Reason string `json:"reason" binding:"required,max=255"`
}

type PotSingleResponse struct {
	Pot *pot.Pot `json:"pot"`
}

type PotSummaryResponse struct {
	Summary *pot.Summary `json:"summary"`
}
