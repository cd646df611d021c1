package budget

import (
	"time"

	"github.com/oklog/ulid/v2"
)

// Budget is a spending ceiling over a window. SpentAmount grows with linked debits
// and shrinks with linked credits; RemainingAmount is always TotalAmount - SpentAmount.
type Budget struct {
	Id              ulid.ULID  `json:"id"`
	UserId          ulid.ULID  `json:"userId"`
	CategoryId      *ulid.ULID `json:"categoryId,omitempty"`
	Name            string     `json:"name"`
	Description     string     `json:"description"`
	Color           string     `json:"color"`
	TotalAmount     int64      `json:"totalAmount"`
	SpentAmount     int64      `json:"spentAmount"`
	RemainingAmount int64      `json:"remainingAmount"`
	StartDate       time.Time  `json:"startDate"`
	EndDate         time.Time  `json:"endDate"`
	IsActive        bool       `json:"isActive"`
	IsDeleted       bool       `json:"isDeleted"`
	CreatedAt       time.Time  `json:"createdAt"`
	UpdatedAt       time.Time  `json:"updatedAt"`
}

// ApplyChange moves spent by change and recomputes remaining. No clamping: spent
// may go negative when credits outweigh debits.
func (b *Budget) ApplyChange(change int64) {
	b.SpentAmount += change
	b.Recompute()
}

func (b *Budget) Recompute() {
	b.RemainingAmount = b.TotalAmount - b.SpentAmount
}

// Change converts a magnitude into the signed spent delta: debits add, credits subtract.
func Change(amount int64, isDebit bool) int64 {
	if isDebit {
		return amount
	}
	return -amount
}

type ChartEntry struct {
	Label  string `json:"label"`
	Amount int64  `json:"amount"`
	Color  string `json:"color"`
}

type Summary struct {
	TotalBudget    int64        `json:"totalBudget"`
	TotalSpent     int64        `json:"totalSpent"`
	TotalRemaining int64        `json:"totalRemaining"`
	Chart          []ChartEntry `json:"chart"`
}

type CreateRequest struct {
	UserId      ulid.ULID
	CategoryId  *ulid.ULID
	Name        string
	Description string
	Color       string
	TotalAmount int64
	StartDate   time.Time
	EndDate     time.Time
}

// UpdateRequest carries optional changes. ClearCategory unlinks the category.
type UpdateRequest struct {
	Name          *string
	Description   *string
	Color         *string
	TotalAmount   *int64
	CategoryId    *ulid.ULID
	ClearCategory bool
	StartDate     *time.Time
	EndDate       *time.Time
	IsActive      *bool
}
