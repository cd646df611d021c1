package infrastructure

import (
	"context"
	"strings"
	"time"

	"MyFinance/internal/domain/user"
	appErrors "MyFinance/internal/errors"
	"MyFinance/internal/pkg"
	"MyFinance/internal/pkg/query"

	"github.com/oklog/ulid/v2"
	"gorm.io/gorm"
)

type UserRepository struct {
	DB *gorm.DB
}

type userDB struct {
	Id        string    `gorm:"type:varchar(26);primaryKey"`
	Username  string    `gorm:"type:varchar(50);uniqueIndex:idx_users_username;not null"`
	Email     string    `gorm:"type:varchar(100);uniqueIndex:idx_users_email;not null"`
	FullName  string    `gorm:"type:varchar(100)"`
	Password  string    `gorm:"type:varchar(255);not null"`
	IsActive  bool      `gorm:"not null;default:true"`
	CreatedAt time.Time `gorm:"autoCreateTime;not null"`
	UpdatedAt time.Time `gorm:"autoUpdateTime;not null"`
}

func (userDB) TableName() string {
	return "users"
}

func toDomainUser(udb *userDB) (*user.User, error) {
	id, err := pkg.ParseULID(udb.Id)
	if err != nil {
		return nil, appErrors.ErrInternalServer.WithError(err)
	}

	return &user.User{
		Id:        id,
		Username:  udb.Username,
		Email:     udb.Email,
		FullName:  udb.FullName,
		Password:  udb.Password,
		IsActive:  udb.IsActive,
		CreatedAt: udb.CreatedAt,
		UpdatedAt: udb.UpdatedAt,
	}, nil
}

func toDBUser(u *user.User) *userDB {
	return &userDB{
		Id:        u.Id.String(),
		Username:  u.Username,
		Email:     u.Email,
		FullName:  u.FullName,
		Password:  u.Password,
		IsActive:  u.IsActive,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

func (r *UserRepository) Create(ctx context.Context, u *user.User) error {
	if err := conn(ctx, r.DB).Table("users").Create(toDBUser(u)).Error; err != nil {
		return appErrors.NewDatabaseError(err)
	}
	return nil
}

func (r *UserRepository) GetByID(ctx context.Context, id ulid.ULID) (*user.User, error) {
	return r.first(ctx, "id = ?", id.String())
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*user.User, error) {
	return r.first(ctx, "email = ?", strings.ToLower(email))
}

// GetByUsername matches regardless of case.
func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*user.User, error) {
	return r.first(ctx, "LOWER(username) = LOWER(?)", username)
}

func (r *UserRepository) first(ctx context.Context, cond string, arg interface{}) (*user.User, error) {
	q := query.New[userDB](conn(ctx, r.DB), "users").Context(ctx).Where(cond, arg)
	return query.ExecuteFirst(q, toDomainUser)
}
