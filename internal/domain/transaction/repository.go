package transaction

import (
	"context"

	"MyFinance/internal/domain/account"
	"MyFinance/internal/domain/budget"
	"MyFinance/internal/pkg"

	"github.com/oklog/ulid/v2"
)

type Repository interface {
	Create(ctx context.Context, transaction *Transaction) error
	Update(ctx context.Context, transaction *Transaction) error
	Delete(ctx context.Context, transactionID ulid.ULID) error
	GetByID(ctx context.Context, transactionID, userID ulid.ULID) (*Transaction, error)
	// GetForUpdate locks the row until the surrounding transaction ends.
	GetForUpdate(ctx context.Context, transactionID, userID ulid.ULID) (*Transaction, error)
	ExistsDuplicate(ctx context.Context, key DuplicateKey) (bool, error)
	List(ctx context.Context, userID ulid.ULID, filter *Filter, sort Sort, pagination *pkg.PaginationParams) ([]*Transaction, int64, error)
	ListAll(ctx context.Context, userID ulid.ULID, filter *Filter, sort Sort) ([]*Transaction, error)
	ListByAccount(ctx context.Context, accountID ulid.ULID, pagination *pkg.PaginationParams) ([]*Transaction, int64, error)
	ListByBudget(ctx context.Context, budgetID ulid.ULID, pagination *pkg.PaginationParams) ([]*Transaction, int64, error)
	ListByPot(ctx context.Context, potID ulid.ULID, pagination *pkg.PaginationParams) ([]*Transaction, int64, error)
	ListByCategory(ctx context.Context, categoryID ulid.ULID, pagination *pkg.PaginationParams) ([]*Transaction, int64, error)
	SummaryByType(ctx context.Context, userID ulid.ULID, window Window) ([]TypeTotal, error)
	DeleteByPot(ctx context.Context, potID ulid.ULID) (int64, error)
}

// Accounts is satisfied by account.Service.
type Accounts interface {
	GetOrCreate(ctx context.Context, userID ulid.ULID) (*account.Account, error)
	ApplyBalanceDelta(ctx context.Context, accountID ulid.ULID, delta int64) error
}

// Budgets is satisfied by budget.Service.
type Budgets interface {
	ApplyDelta(ctx context.Context, budgetID ulid.ULID, amount int64, isDebit bool) (*budget.Budget, error)
	EnsureOwned(ctx context.Context, budgetID, userID ulid.ULID) error
}

// OwnershipChecker is satisfied by category.Service.
type OwnershipChecker interface {
	EnsureOwned(ctx context.Context, id, userID ulid.ULID) error
}

// Pots is satisfied by pot.Service. ApplySavedDelta fails with a floor or ceiling
// violation when the pot would leave [0, target].
type Pots interface {
	EnsureOwned(ctx context.Context, potID, userID ulid.ULID) error
	ApplySavedDelta(ctx context.Context, potID, userID ulid.ULID, delta int64) error
}
