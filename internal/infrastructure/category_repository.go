package infrastructure

import (
	"context"
	"time"

	"MyFinance/internal/domain/category"
	"MyFinance/internal/pkg"
	"MyFinance/internal/pkg/query"

	"github.com/oklog/ulid/v2"
	"gorm.io/gorm"
)

type CategoryRepository struct {
	DB *gorm.DB
}

type categoryDB struct {
	Id        string    `gorm:"type:varchar(26);primaryKey"`
	UserId    string    `gorm:"type:varchar(26);index;not null"`
	Name      string    `gorm:"type:varchar(100);not null"`
	Color     string    `gorm:"type:varchar(7)"`
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

func (categoryDB) TableName() string {
	return "categories"
}

func toDomainCategory(cdb *categoryDB) (*category.Category, error) {
	id, err := pkg.ParseULID(cdb.Id)
	if err != nil {
		return nil, err
	}
	userID, err := pkg.ParseULID(cdb.UserId)
	if err != nil {
		return nil, err
	}
	return &category.Category{
		Id:        id,
		UserId:    userID,
		Name:      cdb.Name,
		Color:     cdb.Color,
		CreatedAt: cdb.CreatedAt,
		UpdatedAt: cdb.UpdatedAt,
	}, nil
}

func toDBCategory(c *category.Category) *categoryDB {
	return &categoryDB{
		Id:        c.Id.String(),
		UserId:    c.UserId.String(),
		Name:      c.Name,
		Color:     c.Color,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}

func (r *CategoryRepository) Create(ctx context.Context, c *category.Category) error {
	return conn(ctx, r.DB).Table("categories").Create(toDBCategory(c)).Error
}

func (r *CategoryRepository) Update(ctx context.Context, c *category.Category) error {
	cdb := toDBCategory(c)
	return conn(ctx, r.DB).Model(&categoryDB{}).
		Where("id = ? AND user_id = ?", cdb.Id, cdb.UserId).
		Updates(map[string]interface{}{
			"name":       cdb.Name,
			"color":      cdb.Color,
			"updated_at": cdb.UpdatedAt,
		}).Error
}

func (r *CategoryRepository) Delete(ctx context.Context, categoryID, userID ulid.ULID) error {
	return conn(ctx, r.DB).
		Where("id = ? AND user_id = ?", categoryID.String(), userID.String()).
		Delete(&categoryDB{}).Error
}

func (r *CategoryRepository) GetByID(ctx context.Context, categoryID, userID ulid.ULID) (*category.Category, error) {
	q := query.New[categoryDB](conn(ctx, r.DB), "categories").
		Context(ctx).
		Where("id = ? AND user_id = ?", categoryID.String(), userID.String())
	return query.ExecuteFirst(q, toDomainCategory)
}

func (r *CategoryRepository) GetByName(ctx context.Context, name string, userID ulid.ULID) (*category.Category, error) {
	q := query.New[categoryDB](conn(ctx, r.DB), "categories").
		Context(ctx).
		Where("user_id = ? AND LOWER(name) = LOWER(?)", userID.String(), name)
	return query.ExecuteFirst(q, toDomainCategory)
}

func (r *CategoryRepository) List(ctx context.Context, userID ulid.ULID, pagination *pkg.PaginationParams) ([]*category.Category, int64, error) {
	baseQuery := conn(ctx, r.DB).Table("categories").Where("user_id = ?", userID.String())
	return pkg.Paginate(baseQuery, pagination, "name ASC", toDomainCategory)
}

func (r *CategoryRepository) BelongsToUser(ctx context.Context, categoryID, userID ulid.ULID) (bool, error) {
	return query.New[categoryDB](conn(ctx, r.DB), "categories").
		Context(ctx).
		Where("id = ? AND user_id = ?", categoryID.String(), userID.String()).
		Exists()
}
