package category

import (
	"time"

	"github.com/oklog/ulid/v2"
)

// Category is a user owned label referenced by budgets and transactions.
type Category struct {
	Id        ulid.ULID `json:"id"`
	UserId    ulid.ULID `json:"userId"`
	Name      string    `json:"name"`
	Color     string    `json:"color"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type UpdateRequest struct {
	Name  *string
	Color *string
}
