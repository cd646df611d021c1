package pot

import (
	"context"

	"MyFinance/internal/domain/transaction"
	"MyFinance/internal/pkg"

	"github.com/oklog/ulid/v2"
)

type Repository interface {
	Create(ctx context.Context, pot *Pot) error
	Update(ctx context.Context, pot *Pot) error
	Delete(ctx context.Context, potID, userID ulid.ULID) error
	GetByID(ctx context.Context, potID, userID ulid.ULID) (*Pot, error)
	// GetForUpdate locks the row until the surrounding transaction ends.
	GetForUpdate(ctx context.Context, potID, userID ulid.ULID) (*Pot, error)
	GetByName(ctx context.Context, name string, userID ulid.ULID) (*Pot, error)
	List(ctx context.Context, userID ulid.ULID, pagination *pkg.PaginationParams) ([]*Pot, int64, error)
	ListFirst(ctx context.Context, userID ulid.ULID, limit int) ([]*Pot, error)
	Totals(ctx context.Context, userID ulid.ULID) (saved int64, target int64, err error)
	AddSavedAmount(ctx context.Context, potID ulid.ULID, delta int64) error
}

// Transactions is the slice of transaction.Service the pot engine drives.
type Transactions interface {
	CreateTransaction(ctx context.Context, draft *transaction.Draft, actor transaction.Actor) (*transaction.Transaction, error)
	DeleteByPot(ctx context.Context, potID ulid.ULID) (int64, error)
}
