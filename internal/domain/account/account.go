package account

import (
	"time"

	"github.com/oklog/ulid/v2"
)

// Account is the single running balance of a user. Balance is in minor units and
// only moves through ApplyBalanceDelta, driven by transaction mutations.
type Account struct {
	Id        ulid.ULID `json:"id"`
	UserId    ulid.ULID `json:"userId"`
	Balance   int64     `json:"balance"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
