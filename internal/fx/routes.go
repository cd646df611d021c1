package fx

import (
	"MyFinance/internal/domain/account"
	"MyFinance/internal/domain/auth"
	"MyFinance/internal/domain/budget"
	"MyFinance/internal/domain/category"
	"MyFinance/internal/domain/pot"
	"MyFinance/internal/domain/transaction"
	"MyFinance/internal/infrastructure"
	"MyFinance/internal/pkg"
	"MyFinance/internal/routes"

	"go.uber.org/fx"
)

var RoutesModule = fx.Module("routes",
	fx.Provide(
		newHandler,
	),
)

type handlerParams struct {
	fx.In

	AuthService        *auth.Service
	AccountService     *account.Service
	CategoryService    *category.Service
	BudgetService      *budget.Service
	PotService         *pot.Service
	TransactionService *transaction.Service
	Sheet              infrastructure.TransactionSheet
	Limits             pkg.ListLimits
}

func newHandler(p handlerParams) *routes.Handler {
	return &routes.Handler{
		AuthService:        p.AuthService,
		AccountService:     p.AccountService,
		CategoryService:    p.CategoryService,
		BudgetService:      p.BudgetService,
		PotService:         p.PotService,
		TransactionService: p.TransactionService,
		Sheet:              p.Sheet,
		Limits:             p.Limits,
	}
}
