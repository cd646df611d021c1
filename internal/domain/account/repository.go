package account

import (
	"context"

	"github.com/oklog/ulid/v2"
)

type Repository interface {
	// CreateIfMissing inserts a for its user unless the user already has an account.
	// It reports whether a row was inserted.
	CreateIfMissing(ctx context.Context, a *Account) (bool, error)
	GetByUserID(ctx context.Context, userID ulid.ULID) (*Account, error)
	GetByID(ctx context.Context, accountID ulid.ULID) (*Account, error)
	ApplyBalanceDelta(ctx context.Context, accountID ulid.ULID, delta int64) error
}
