package fx

import (
	"context"

	"MyFinance/config"
	"MyFinance/internal/domain/shared"
	"MyFinance/internal/domain/transaction"
	"MyFinance/internal/infrastructure"
	"MyFinance/internal/logger"

	"github.com/go-redis/redis/v8"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

var InfrastructureModule = fx.Module("infrastructure",
	fx.Provide(
		newDatabase,
		newUnitOfWork,
		newUserRepository,
		newAccountRepository,
		newCategoryRepository,
		newBudgetRepository,
		newPotRepository,
		newTransactionRepository,
		newRedisClient,
		newEventPublisher,
		newTransactionSheet,
	),
)

func newDatabase(lc fx.Lifecycle, cfg *config.Config) (*gorm.DB, error) {
	db, err := infrastructure.NewDb(cfg)
	if err != nil {
		return nil, err
	}
	lc.Append(fx.Hook{
		OnStop: func(context.Context) error {
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			return sqlDB.Close()
		},
	})
	return db, nil
}

func newUnitOfWork(db *gorm.DB) shared.UnitOfWork {
	return infrastructure.NewUnitOfWork(db)
}

func newUserRepository(db *gorm.DB) *infrastructure.UserRepository {
	return &infrastructure.UserRepository{DB: db}
}

func newAccountRepository(db *gorm.DB) *infrastructure.AccountRepository {
	return &infrastructure.AccountRepository{DB: db}
}

func newCategoryRepository(db *gorm.DB) *infrastructure.CategoryRepository {
	return &infrastructure.CategoryRepository{DB: db}
}

func newBudgetRepository(db *gorm.DB) *infrastructure.BudgetRepository {
	return &infrastructure.BudgetRepository{DB: db}
}

func newPotRepository(db *gorm.DB) *infrastructure.PotRepository {
	return &infrastructure.PotRepository{DB: db}
}

func newTransactionRepository(db *gorm.DB) *infrastructure.TransactionRepository {
	return &infrastructure.TransactionRepository{DB: db}
}

// newRedisClient returns nil when redis is disabled; idempotency is then skipped.
func newRedisClient(lc fx.Lifecycle, cfg *config.Config) (*redis.Client, error) {
	if !cfg.Redis.Enabled {
		logger.Info().Msg("redis disabled, idempotency keys are ignored")
		return nil, nil
	}
	client, err := infrastructure.NewRedisClient(cfg.Redis)
	if err != nil {
		return nil, err
	}
	lc.Append(fx.Hook{
		OnStop: func(context.Context) error {
			return client.Close()
		},
	})
	return client, nil
}

func newEventPublisher(lc fx.Lifecycle, cfg *config.Config) (transaction.EventPublisher, error) {
	if !cfg.Broker.Enabled {
		logger.Info().Msg("broker disabled, ledger events are not published")
		return transaction.NoopPublisher{}, nil
	}
	publisher, err := infrastructure.NewAMQPPublisher(cfg.Broker)
	if err != nil {
		return nil, err
	}
	lc.Append(fx.Hook{
		OnStop: func(context.Context) error {
			return publisher.Close()
		},
	})
	return publisher, nil
}

func newTransactionSheet() infrastructure.TransactionSheet {
	return infrastructure.TransactionSheet{}
}
