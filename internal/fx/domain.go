package fx

import (
	"MyFinance/config"
	"MyFinance/internal/domain/account"
	"MyFinance/internal/domain/auth"
	"MyFinance/internal/domain/budget"
	"MyFinance/internal/domain/category"
	"MyFinance/internal/domain/pot"
	"MyFinance/internal/domain/shared"
	"MyFinance/internal/domain/transaction"
	"MyFinance/internal/domain/user"
	"MyFinance/internal/infrastructure"
	"MyFinance/internal/middleware"
	"MyFinance/internal/pkg"

	"go.uber.org/fx"
)

var DomainModule = fx.Module("domain",
	fx.Provide(
		newUserService,
		newUserCheckerService,
		newAuthService,
		newAccountService,
		newCategoryService,
		newBudgetService,
		newPotService,
		newListLimits,
		newTransactionService,
	),
	fx.Invoke(
		wirePotTransactions,
	),
)

// wirePotTransactions closes the pot <-> transaction loop once both services exist.
func wirePotTransactions(potSvc *pot.Service, transactionSvc *transaction.Service) {
	potSvc.Transactions = transactionSvc
}

func newUserService(repo *infrastructure.UserRepository) *user.Service {
	return user.NewService(repo)
}

func newUserCheckerService(userSvc *user.Service) *shared.UserCheckerService {
	return shared.NewUserCheckerService(userSvc)
}

func newAuthService(
	repo *infrastructure.UserRepository,
	userSvc *user.Service,
	jwtSvc *middleware.JwtService,
) *auth.Service {
	return auth.NewService(repo, userSvc, jwtSvc)
}

func newAccountService(
	repo *infrastructure.AccountRepository,
	userChecker *shared.UserCheckerService,
) *account.Service {
	return account.NewService(repo, userChecker)
}

func newCategoryService(
	repo *infrastructure.CategoryRepository,
	userChecker *shared.UserCheckerService,
) *category.Service {
	return category.NewService(repo, userChecker)
}

func newBudgetService(
	repo *infrastructure.BudgetRepository,
	categorySvc *category.Service,
	uow shared.UnitOfWork,
	userChecker *shared.UserCheckerService,
) *budget.Service {
	return budget.NewService(repo, categorySvc, uow, userChecker)
}

func newPotService(
	cfg *config.Config,
	repo *infrastructure.PotRepository,
	uow shared.UnitOfWork,
	userChecker *shared.UserCheckerService,
) *pot.Service {
	return pot.NewService(repo, uow, cfg.Ledger.PotSummaryLimit, userChecker)
}

func newListLimits(cfg *config.Config) pkg.ListLimits {
	return pkg.ListLimits{
		Default: cfg.Ledger.DefaultListLimit,
		Max:     cfg.Ledger.MaxListLimit,
	}
}

func newTransactionService(
	repo *infrastructure.TransactionRepository,
	accountSvc *account.Service,
	budgetSvc *budget.Service,
	categorySvc *category.Service,
	potSvc *pot.Service,
	uow shared.UnitOfWork,
	publisher transaction.EventPublisher,
	limits pkg.ListLimits,
) *transaction.Service {
	return transaction.NewService(repo, accountSvc, budgetSvc, categorySvc, potSvc, uow, publisher, limits)
}
