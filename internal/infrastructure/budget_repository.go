package infrastructure

import (
	"context"
	"strings"
	"time"

	"MyFinance/internal/domain/budget"
	"MyFinance/internal/pkg"
	"MyFinance/internal/pkg/query"

	"github.com/oklog/ulid/v2"
	"gorm.io/gorm"
)

type BudgetRepository struct {
	DB *gorm.DB
}

type budgetDB struct {
	Id              string    `gorm:"type:varchar(26);primaryKey"`
	UserId          string    `gorm:"type:varchar(26);index;not null"`
	CategoryId      *string   `gorm:"type:varchar(26);index"`
	Name            string    `gorm:"type:varchar(100);not null"`
	Description     string    `gorm:"type:varchar(255)"`
	Color           string    `gorm:"type:varchar(7)"`
	TotalAmount     int64     `gorm:"type:bigint;not null"`
	SpentAmount     int64     `gorm:"type:bigint;not null;default:0"`
	RemainingAmount int64     `gorm:"type:bigint;not null"`
	StartDate       time.Time `gorm:"not null"`
	EndDate         time.Time `gorm:"not null"`
	IsActive        bool      `gorm:"not null;default:true"`
	IsDeleted       bool      `gorm:"not null;default:false;index"`
	CreatedAt       time.Time `gorm:"not null"`
	UpdatedAt       time.Time `gorm:"not null"`
}

func (budgetDB) TableName() string {
	return "budgets"
}

func toDomainBudget(bdb *budgetDB) (*budget.Budget, error) {
	id, err := pkg.ParseULID(bdb.Id)
	if err != nil {
		return nil, err
	}

	userID, err := pkg.ParseULID(bdb.UserId)
	if err != nil {
		return nil, err
	}

	categoryID, err := pkg.ParseULIDPtr(bdb.CategoryId)
	if err != nil {
		return nil, err
	}

	return &budget.Budget{
		Id:              id,
		UserId:          userID,
		CategoryId:      categoryID,
		Name:            bdb.Name,
		Description:     bdb.Description,
		Color:           bdb.Color,
		TotalAmount:     bdb.TotalAmount,
		SpentAmount:     bdb.SpentAmount,
		RemainingAmount: bdb.RemainingAmount,
		StartDate:       bdb.StartDate,
		EndDate:         bdb.EndDate,
		IsActive:        bdb.IsActive,
		IsDeleted:       bdb.IsDeleted,
		CreatedAt:       bdb.CreatedAt,
		UpdatedAt:       bdb.UpdatedAt,
	}, nil
}

func toDBBudget(b *budget.Budget) *budgetDB {
	return &budgetDB{
		Id:              b.Id.String(),
		UserId:          b.UserId.String(),
		CategoryId:      pkg.ULIDPtrString(b.CategoryId),
		Name:            b.Name,
		Description:     b.Description,
		Color:           b.Color,
		TotalAmount:     b.TotalAmount,
		SpentAmount:     b.SpentAmount,
		RemainingAmount: b.RemainingAmount,
		StartDate:       b.StartDate,
		EndDate:         b.EndDate,
		IsActive:        b.IsActive,
		IsDeleted:       b.IsDeleted,
		CreatedAt:       b.CreatedAt,
		UpdatedAt:       b.UpdatedAt,
	}
}

func (r *BudgetRepository) Create(ctx context.Context, b *budget.Budget) error {
	return conn(ctx, r.DB).Table("budgets").Create(toDBBudget(b)).Error
}

// Update writes every editable column. A map is used so a cleared category and a false
// is_active are persisted too. Remaining is derived from the stored spent amount, never
// from the caller's copy.
func (r *BudgetRepository) Update(ctx context.Context, b *budget.Budget) error {
	bdb := toDBBudget(b)
	return conn(ctx, r.DB).Model(&budgetDB{}).
		Where("id = ? AND user_id = ?", bdb.Id, bdb.UserId).
		Updates(map[string]interface{}{
			"category_id":      bdb.CategoryId,
			"name":             bdb.Name,
			"description":      bdb.Description,
			"color":            bdb.Color,
			"total_amount":     bdb.TotalAmount,
			"remaining_amount": gorm.Expr("? - spent_amount", bdb.TotalAmount),
			"start_date":       bdb.StartDate,
			"end_date":         bdb.EndDate,
			"is_active":        bdb.IsActive,
			"updated_at":       bdb.UpdatedAt,
		}).Error
}

func (r *BudgetRepository) SoftDelete(ctx context.Context, budgetID, userID ulid.ULID) error {
	result := conn(ctx, r.DB).Model(&budgetDB{}).
		Where("id = ? AND user_id = ?", budgetID.String(), userID.String()).
		Updates(map[string]interface{}{
			"is_deleted": true,
			"is_active":  false,
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

func (r *BudgetRepository) GetByID(ctx context.Context, budgetID, userID ulid.ULID) (*budget.Budget, error) {
	q := query.New[budgetDB](conn(ctx, r.DB), "budgets").
		Context(ctx).
		Where("id = ? AND user_id = ? AND is_deleted = ?", budgetID.String(), userID.String(), false)
	return query.ExecuteFirst(q, toDomainBudget)
}

func (r *BudgetRepository) GetForUpdate(ctx context.Context, budgetID ulid.ULID) (*budget.Budget, error) {
	q := query.New[budgetDB](conn(ctx, r.DB), "budgets").
		Context(ctx).
		Where("id = ?", budgetID.String()).
		ForUpdate()
	return query.ExecuteFirst(q, toDomainBudget)
}

func (r *BudgetRepository) SaveAmounts(ctx context.Context, b *budget.Budget) error {
	return conn(ctx, r.DB).Model(&budgetDB{}).
		Where("id = ?", b.Id.String()).
		UpdateColumns(map[string]interface{}{
			"spent_amount":     b.SpentAmount,
			"remaining_amount": b.RemainingAmount,
			"updated_at":       b.UpdatedAt,
		}).Error
}

func (r *BudgetRepository) List(ctx context.Context, userID ulid.ULID, pagination *pkg.PaginationParams) ([]*budget.Budget, int64, error) {
	baseQuery := conn(ctx, r.DB).Table("budgets").
		Where("user_id = ? AND is_deleted = ?", userID.String(), false)
	return pkg.Paginate(baseQuery, pagination, "created_at DESC", toDomainBudget)
}

func (r *BudgetRepository) ListActive(ctx context.Context, userID ulid.ULID) ([]*budget.Budget, error) {
	q := query.New[budgetDB](conn(ctx, r.DB), "budgets").
		Context(ctx).
		Where("user_id = ? AND is_deleted = ?", userID.String(), false).
		Order("created_at DESC")
	return query.ExecuteAll(q, toDomainBudget)
}

// ExistsByName matches names case-insensitively inside one category; a nil category
// only collides with other uncategorized budgets.
func (r *BudgetRepository) ExistsByName(ctx context.Context, userID ulid.ULID, categoryID *ulid.ULID, name string, excludeID *ulid.ULID) (bool, error) {
	q := query.New[budgetDB](conn(ctx, r.DB), "budgets").
		Context(ctx).
		Where("user_id = ? AND is_deleted = ? AND LOWER(name) = ?", userID.String(), false, strings.ToLower(strings.TrimSpace(name))).
		WhereIf(categoryID == nil, "category_id IS NULL")
	if categoryID != nil {
		q = q.Where("category_id = ?", categoryID.String())
	}
	if excludeID != nil {
		q = q.Where("id <> ?", excludeID.String())
	}
	return q.Exists()
}

func (r *BudgetRepository) BelongsToUser(ctx context.Context, budgetID, userID ulid.ULID) (bool, error) {
	return query.New[budgetDB](conn(ctx, r.DB), "budgets").
		Context(ctx).
		Where("id = ? AND user_id = ?", budgetID.String(), userID.String()).
		Exists()
}
