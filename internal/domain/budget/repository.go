package budget

import (
	"context"

	"MyFinance/internal/pkg"

	"github.com/oklog/ulid/v2"
)

type Repository interface {
	Create(ctx context.Context, budget *Budget) error
	Update(ctx context.Context, budget *Budget) error
	SoftDelete(ctx context.Context, budgetID, userID ulid.ULID) error
	// GetByID ignores soft-deleted budgets.
	GetByID(ctx context.Context, budgetID, userID ulid.ULID) (*Budget, error)
	// GetForUpdate loads by id alone, deleted or not, and locks the row until the
	// surrounding transaction ends.
	GetForUpdate(ctx context.Context, budgetID ulid.ULID) (*Budget, error)
	// SaveAmounts persists spent and remaining only.
	SaveAmounts(ctx context.Context, budget *Budget) error
	List(ctx context.Context, userID ulid.ULID, pagination *pkg.PaginationParams) ([]*Budget, int64, error)
	ListActive(ctx context.Context, userID ulid.ULID) ([]*Budget, error)
	ExistsByName(ctx context.Context, userID ulid.ULID, categoryID *ulid.ULID, name string, excludeID *ulid.ULID) (bool, error)
	// BelongsToUser counts soft-deleted budgets too.
	BelongsToUser(ctx context.Context, budgetID, userID ulid.ULID) (bool, error)
}

// CategoryChecker is satisfied by category.Service.
type CategoryChecker interface {
	EnsureOwned(ctx context.Context, categoryID, userID ulid.ULID) error
}
