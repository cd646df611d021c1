package infrastructure

import (
	"context"
	"errors"
	"testing"
	"time"

	"MyFinance/internal/domain/account"
	"MyFinance/internal/domain/budget"
	"MyFinance/internal/domain/shared"
	"MyFinance/internal/domain/transaction"
	"MyFinance/internal/pkg"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()

	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		SkipDefaultTransaction: true,
		Logger:                 gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	return db, mock
}

func TestAccountRepository_ApplyBalanceDelta(t *testing.T) {
	db, mock := newMockDB(t)
	repo := &AccountRepository{DB: db}
	accountID := pkg.GenerateULIDObject()

	mock.ExpectExec(`UPDATE "accounts" SET "balance"=balance \+ \$1,"updated_at"=\$2 WHERE id = \$3`).
		WithArgs(int64(-500), sqlmock.AnyArg(), accountID.String()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.ApplyBalanceDelta(context.Background(), accountID, -500))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAccountRepository_ApplyBalanceDeltaMissingRow(t *testing.T) {
	db, mock := newMockDB(t)
	repo := &AccountRepository{DB: db}

	mock.ExpectExec(`UPDATE "accounts" SET`).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.ApplyBalanceDelta(context.Background(), pkg.GenerateULIDObject(), 100)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAccountRepository_CreateIfMissing(t *testing.T) {
	tests := []struct {
		name     string
		affected int64
		inserted bool
	}{
		{name: "new row", affected: 1, inserted: true},
		{name: "user already has an account", affected: 0, inserted: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock := newMockDB(t)
			repo := &AccountRepository{DB: db}
			now := time.Now().UTC()

			mock.ExpectExec(`INSERT INTO "accounts" .*ON CONFLICT \("user_id"\) DO NOTHING`).
				WillReturnResult(sqlmock.NewResult(0, tt.affected))

			inserted, err := repo.CreateIfMissing(context.Background(), &account.Account{
				Id:        pkg.GenerateULIDObject(),
				UserId:    pkg.GenerateULIDObject(),
				CreatedAt: now,
				UpdatedAt: now,
			})
			require.NoError(t, err)
			assert.Equal(t, tt.inserted, inserted)
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestBudgetRepository_GetForUpdateLocksRow(t *testing.T) {
	db, mock := newMockDB(t)
	repo := &BudgetRepository{DB: db}
	budgetID := pkg.GenerateULIDObject()
	userID := pkg.GenerateULIDObject()
	now := time.Now().UTC()

	rows := sqlmock.NewRows([]string{
		"id", "user_id", "category_id", "name", "description", "color", "total_amount",
		"spent_amount", "remaining_amount", "start_date", "end_date", "is_active", "is_deleted",
		"created_at", "updated_at",
	}).AddRow(budgetID.String(), userID.String(), nil, "Groceries", "", "#00ff00", int64(10000),
		int64(2500), int64(7500), now, now.AddDate(0, 1, 0), false, true, now, now)

	mock.ExpectQuery(`SELECT \* FROM "budgets" WHERE id = \$1 .*FOR UPDATE`).
		WillReturnRows(rows)

	got, err := repo.GetForUpdate(context.Background(), budgetID)
	require.NoError(t, err)
	assert.Equal(t, budgetID, got.Id)
	assert.Nil(t, got.CategoryId)
	assert.Equal(t, int64(2500), got.SpentAmount)
	assert.True(t, got.IsDeleted)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBudgetRepository_UpdateDerivesRemainingFromStoredSpent(t *testing.T) {
	db, mock := newMockDB(t)
	repo := &BudgetRepository{DB: db}
	now := time.Now().UTC()
	b := &budget.Budget{
		Id:          pkg.GenerateULIDObject(),
		UserId:      pkg.GenerateULIDObject(),
		Name:        "Groceries",
		TotalAmount: 12000,
		StartDate:   now,
		EndDate:     now.AddDate(0, 1, 0),
		IsActive:    true,
		UpdatedAt:   now,
	}

	mock.ExpectExec(`UPDATE "budgets" SET .*"remaining_amount"=\$\d+ - spent_amount.*WHERE id = \$\d+ AND user_id = \$\d+`).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Update(context.Background(), b))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPotRepository_Totals(t *testing.T) {
	db, mock := newMockDB(t)
	repo := &PotRepository{DB: db}
	userID := pkg.GenerateULIDObject()

	mock.ExpectQuery(`SELECT COALESCE\(SUM\(saved_amount\), 0\) AS saved, COALESCE\(SUM\(target_amount\), 0\) AS target FROM "pots" WHERE user_id = \$1`).
		WithArgs(userID.String()).
		WillReturnRows(sqlmock.NewRows([]string{"saved", "target"}).AddRow(int64(700), int64(3300)))

	saved, target, err := repo.Totals(context.Background(), userID)
	require.NoError(t, err)
	assert.Equal(t, int64(700), saved)
	assert.Equal(t, int64(3300), target)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPotRepository_AddSavedAmount(t *testing.T) {
	db, mock := newMockDB(t)
	repo := &PotRepository{DB: db}
	potID := pkg.GenerateULIDObject()

	mock.ExpectExec(`UPDATE "pots" SET "saved_amount"=saved_amount \+ \$1,"updated_at"=\$2 WHERE id = \$3`).
		WithArgs(int64(-300), sqlmock.AnyArg(), potID.String()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.AddSavedAmount(context.Background(), potID, -300))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTransactionRepository_SummaryByType(t *testing.T) {
	db, mock := newMockDB(t)
	repo := &TransactionRepository{DB: db}
	userID := pkg.GenerateULIDObject()
	from := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`SELECT type, COUNT\(\*\) AS count, COALESCE\(SUM\(amount\), 0\) AS total FROM "transactions" WHERE user_id = \$1 AND transaction_date >= \$2 GROUP BY`).
		WithArgs(userID.String(), from).
		WillReturnRows(sqlmock.NewRows([]string{"type", "count", "total"}).
			AddRow("CREDIT", int64(2), int64(2500)).
			AddRow("DEBIT", int64(2), int64(1200)))

	totals, err := repo.SummaryByType(context.Background(), userID, transaction.Window{From: &from})
	require.NoError(t, err)
	require.Len(t, totals, 2)

	summary := transaction.NewSummary(totals)
	assert.Equal(t, int64(4), summary.TotalTransactions)
	assert.Equal(t, int64(1300), summary.NetAmount)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTransactionRepository_ListAppliesFiltersAndSort(t *testing.T) {
	db, mock := newMockDB(t)
	repo := &TransactionRepository{DB: db}
	userID := pkg.GenerateULIDObject()
	accountID := pkg.GenerateULIDObject()
	txID := pkg.GenerateULIDObject()
	debit := transaction.Debit
	when := time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`SELECT count\(\*\) FROM "transactions" WHERE user_id = \$1 AND type = \$2 AND LOWER\(sender\) LIKE LOWER\(\$3\)`).
		WithArgs(userID.String(), "DEBIT", "%ali%").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(int64(1)))

	mock.ExpectQuery(`SELECT \* FROM "transactions" WHERE .* ORDER BY amount ASC, id ASC LIMIT`).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "user_id", "account_id", "category_id", "budget_id", "pot_id", "description",
			"recipient", "sender", "amount", "type", "transaction_date", "metadata", "created_at", "updated_at",
		}).AddRow(txID.String(), userID.String(), accountID.String(), nil, nil, nil, "Coffee",
			"Cafe", "alice", int64(350), "DEBIT", when, `{"source":"card"}`, when, when))

	items, total, err := repo.List(context.Background(), userID,
		&transaction.Filter{Type: &debit, Sender: "ali"},
		transaction.NewSort("amount", "asc"),
		&pkg.PaginationParams{Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, items, 1)
	assert.Equal(t, txID, items[0].Id)
	assert.Equal(t, int64(350), items[0].Amount)
	assert.Equal(t, "card", items[0].Metadata["source"])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTransactionRepository_DeleteByPot(t *testing.T) {
	db, mock := newMockDB(t)
	repo := &TransactionRepository{DB: db}
	potID := pkg.GenerateULIDObject()

	mock.ExpectExec(`DELETE FROM "transactions" WHERE pot_id = \$1`).
		WithArgs(potID.String()).
		WillReturnResult(sqlmock.NewResult(0, 3))

	removed, err := repo.DeleteByPot(context.Background(), potID)
	require.NoError(t, err)
	assert.Equal(t, int64(3), removed)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_GetByUsernameIgnoresCase(t *testing.T) {
	db, mock := newMockDB(t)
	repo := &UserRepository{DB: db}
	userID := pkg.GenerateULIDObject()
	now := time.Now().UTC()

	mock.ExpectQuery(`SELECT \* FROM "users" WHERE LOWER\(username\) = LOWER\(\$1\)`).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "username", "email", "full_name", "password", "is_active", "created_at", "updated_at",
		}).AddRow(userID.String(), "alice", "alice@example.com", "Alice", "hash", true, now, now))

	got, err := repo.GetByUsername(context.Background(), "ALICE")
	require.NoError(t, err)
	assert.Equal(t, userID, got.Id)
	assert.Equal(t, "alice", got.Username)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUnitOfWork_CommitsThenRunsHooks(t *testing.T) {
	db, mock := newMockDB(t)
	uow := NewUnitOfWork(db)
	accounts := &AccountRepository{DB: db}
	accountID := pkg.GenerateULIDObject()

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE "accounts" SET`).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`UPDATE "accounts" SET`).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	var hookRan bool
	err := uow.Do(context.Background(), func(ctx context.Context) error {
		if err := accounts.ApplyBalanceDelta(ctx, accountID, 100); err != nil {
			return err
		}
		shared.AfterCommit(ctx, func() { hookRan = true })

		// nested calls join the open transaction
		return uow.Do(ctx, func(ctx context.Context) error {
			assert.False(t, hookRan)
			return accounts.ApplyBalanceDelta(ctx, accountID, -40)
		})
	})
	require.NoError(t, err)
	assert.True(t, hookRan)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUnitOfWork_RollbackSkipsHooks(t *testing.T) {
	db, mock := newMockDB(t)
	uow := NewUnitOfWork(db)
	boom := errors.New("boom")

	mock.ExpectBegin()
	mock.ExpectRollback()

	var hookRan bool
	err := uow.Do(context.Background(), func(ctx context.Context) error {
		shared.AfterCommit(ctx, func() { hookRan = true })
		return boom
	})
	assert.ErrorIs(t, err, boom)
	assert.False(t, hookRan)
	assert.NoError(t, mock.ExpectationsWereMet())
}
