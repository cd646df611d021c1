package infrastructure

import (
	"context"
	"time"

	"MyFinance/internal/domain/account"
	"MyFinance/internal/pkg"
	"MyFinance/internal/pkg/query"

	"github.com/oklog/ulid/v2"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type AccountRepository struct {
	DB *gorm.DB
}

type accountDB struct {
	Id        string    `gorm:"type:varchar(26);primaryKey"`
	UserId    string    `gorm:"type:varchar(26);uniqueIndex;not null"`
	Balance   int64     `gorm:"type:bigint;not null;default:0"`
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

func (accountDB) TableName() string {
	return "accounts"
}

func toDomainAccount(adb *accountDB) (*account.Account, error) {
	id, err := pkg.ParseULID(adb.Id)
	if err != nil {
		return nil, err
	}

	userID, err := pkg.ParseULID(adb.UserId)
	if err != nil {
		return nil, err
	}

	return &account.Account{
		Id:        id,
		UserId:    userID,
		Balance:   adb.Balance,
		CreatedAt: adb.CreatedAt,
		UpdatedAt: adb.UpdatedAt,
	}, nil
}

func toDBAccount(a *account.Account) *accountDB {
	return &accountDB{
		Id:        a.Id.String(),
		UserId:    a.UserId.String(),
		Balance:   a.Balance,
		CreatedAt: a.CreatedAt,
		UpdatedAt: a.UpdatedAt,
	}
}

// CreateIfMissing relies on the unique user_id index, so concurrent first requests
// of one user converge on a single row.
func (r *AccountRepository) CreateIfMissing(ctx context.Context, a *account.Account) (bool, error) {
	result := conn(ctx, r.DB).Table("accounts").
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "user_id"}}, DoNothing: true}).
		Create(toDBAccount(a))
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *AccountRepository) GetByUserID(ctx context.Context, userID ulid.ULID) (*account.Account, error) {
	q := query.New[accountDB](conn(ctx, r.DB), "accounts").
		Context(ctx).
		Where("user_id = ?", userID.String())
	return query.ExecuteFirst(q, toDomainAccount)
}

func (r *AccountRepository) GetByID(ctx context.Context, accountID ulid.ULID) (*account.Account, error) {
	q := query.New[accountDB](conn(ctx, r.DB), "accounts").
		Context(ctx).
		Where("id = ?", accountID.String())
	return query.ExecuteFirst(q, toDomainAccount)
}

// ApplyBalanceDelta increments in SQL so the read-modify-write happens under the row lock.
func (r *AccountRepository) ApplyBalanceDelta(ctx context.Context, accountID ulid.ULID, delta int64) error {
	result := conn(ctx, r.DB).Model(&accountDB{}).
		Where("id = ?", accountID.String()).
		UpdateColumns(map[string]interface{}{
			"balance":    gorm.Expr("balance + ?", delta),
			"updated_at": time.Now().UTC(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
