package infrastructure

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"

	"MyFinance/config"
	"MyFinance/internal/logger"

	"github.com/golang-migrate/migrate/v4"
	migratepostgres "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

//go:embed migrations/*.sql
var migrationFiles embed.FS

func NewDb(cfg *config.Config) (*gorm.DB, error) {
	dialector, err := dialectorFor(cfg.Database)
	if err != nil {
		return nil, err
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		logger.Error().
			Err(err).
			Str("driver", cfg.Database.Driver).
			Str("host", cfg.Database.Host).
			Int("port", cfg.Database.Port).
			Str("database", cfg.Database.DBName).
			Msg("Failed to connect to database")
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		logger.Error().Err(err).Msg("Failed to get database handle")
		return nil, err
	}

	sqlDB.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.Database.ConnMaxLifetime)

	logger.Info().
		Str("driver", cfg.Database.Driver).
		Str("database", cfg.Database.DBName).
		Msg("Database connection established")

	if !cfg.Database.AutoMigrate {
		return db, nil
	}

	if cfg.Database.Driver == config.DriverPostgres {
		err = RunMigrations(sqlDB)
	} else {
		err = autoMigrate(db)
	}
	if err != nil {
		return nil, err
	}

	return db, nil
}

func dialectorFor(cfg config.DatabaseConfig) (gorm.Dialector, error) {
	switch cfg.Driver {
	case config.DriverPostgres:
		return postgres.Open(cfg.DSN), nil
	case config.DriverSQLite:
		dsn := cfg.DSN
		if dsn == "" {
			dsn = "file:myfinance.db?_foreign_keys=on"
		}
		return sqlite.Open(dsn), nil
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}
}

// RunMigrations applies the embedded SQL migrations to a postgres database.
// The source and driver are not closed since that would close sqlDB as well.
func RunMigrations(sqlDB *sql.DB) error {
	logger.Info().Msg("Running migrations...")

	source, err := iofs.New(migrationFiles, "migrations")
	if err != nil {
		return err
	}

	driver, err := migratepostgres.WithInstance(sqlDB, &migratepostgres.Config{})
	if err != nil {
		return err
	}

	m, err := migrate.NewWithInstance("iofs", source, "postgres", driver)
	if err != nil {
		return err
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		logger.Error().Err(err).Msg("Migration failed")
		return err
	}

	version, dirty, _ := m.Version()
	logger.Info().Uint("version", version).Bool("dirty", dirty).Msg("Migrations applied")
	return nil
}

// autoMigrate builds the schema from the row structs. Used for sqlite.
func autoMigrate(db *gorm.DB) error {
	entities := []interface{}{
		&userDB{},
		&accountDB{},
		&categoryDB{},
		&budgetDB{},
		&potDB{},
		&transactionDB{},
	}

	for _, entity := range entities {
		if err := db.AutoMigrate(entity); err != nil {
			logger.Error().
				Err(err).
				Str("entity", getEntityName(entity)).
				Msg("Failed to migrate entity")
			return err
		}
	}

	logger.Info().Msg("Schema migrated")
	return nil
}

func getEntityName(entity interface{}) string {
	switch entity.(type) {
	case *userDB:
		return "User"
	case *accountDB:
		return "Account"
	case *categoryDB:
		return "Category"
	case *budgetDB:
		return "Budget"
	case *potDB:
		return "Pot"
	case *transactionDB:
		return "Transaction"
	default:
		return "Unknown"
	}
}
