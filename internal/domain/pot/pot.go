package pot

import (
	"time"

	appErrors "MyFinance/internal/errors"

	"github.com/oklog/ulid/v2"
)

// SelfParty names the user's own side of a pot transfer.
const SelfParty = "Self"

// Pot is a savings sub-balance. SavedAmount stays within [0, TargetAmount].
type Pot struct {
	Id           ulid.ULID `json:"id"`
	UserId       ulid.ULID `json:"userId"`
	Name         string    `json:"name"`
	Description  string    `json:"description"`
	Color        string    `json:"color"`
	TargetAmount int64     `json:"targetAmount"`
	SavedAmount  int64     `json:"savedAmount"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// CanAdjust checks the floor first, then the ceiling.
func (p *Pot) CanAdjust(signed int64) error {
	next := p.SavedAmount + signed
	if next < 0 {
		return appErrors.ErrPotFloorViolation
	}
	if next > p.TargetAmount {
		return appErrors.ErrPotCeilingViolation
	}
	return nil
}

type Summary struct {
	TotalSaved      int64   `json:"totalSaved"`
	TotalTarget     int64   `json:"totalTarget"`
	AverageProgress float64 `json:"averageProgress"`
	Pots            []*Pot  `json:"pots"`
}

type CreateRequest struct {
	UserId       ulid.ULID
	Name         string
	Description  string
	Color        string
	TargetAmount int64
}

type UpdateRequest struct {
	Name         *string
	Description  *string
	Color        *string
	TargetAmount *int64
}
