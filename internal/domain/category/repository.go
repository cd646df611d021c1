package category

import (
	"context"

	"MyFinance/internal/pkg"

	"github.com/oklog/ulid/v2"
)

type Repository interface {
	Create(ctx context.Context, category *Category) error
	Update(ctx context.Context, category *Category) error
	Delete(ctx context.Context, categoryID, userID ulid.ULID) error
	GetByID(ctx context.Context, categoryID, userID ulid.ULID) (*Category, error)
	GetByName(ctx context.Context, name string, userID ulid.ULID) (*Category, error)
	List(ctx context.Context, userID ulid.ULID, pagination *pkg.PaginationParams) ([]*Category, int64, error)
	BelongsToUser(ctx context.Context, categoryID, userID ulid.ULID) (bool, error)
}
