package infrastructure

import (
	"context"
	"time"

	"MyFinance/internal/domain/pot"
	"MyFinance/internal/pkg"
	"MyFinance/internal/pkg/query"

	"github.com/oklog/ulid/v2"
	"gorm.io/gorm"
)

type PotRepository struct {
	DB *gorm.DB
}

type potDB struct {
	Id           string    `gorm:"type:varchar(26);primaryKey"`
	UserId       string    `gorm:"type:varchar(26);index;not null"`
	Name         string    `gorm:"type:varchar(100);not null"`
	Description  string    `gorm:"type:varchar(255)"`
	Color        string    `gorm:"type:varchar(7)"`
	TargetAmount int64     `gorm:"type:bigint;not null"`
	SavedAmount  int64     `gorm:"type:bigint;not null;default:0"`
	CreatedAt    time.Time `gorm:"not null"`
	UpdatedAt    time.Time `gorm:"not null"`
}

func (potDB) TableName() string {
	return "pots"
}

type potTotalsRow struct {
	Saved  int64
	Target int64
}

func toDomainPot(pdb *potDB) (*pot.Pot, error) {
	id, err := pkg.ParseULID(pdb.Id)
	if err != nil {
		return nil, err
	}
	uid, err := pkg.ParseULID(pdb.UserId)
	if err != nil {
		return nil, err
	}
	return &pot.Pot{
		Id:           id,
		UserId:       uid,
		Name:         pdb.Name,
		Description:  pdb.Description,
		Color:        pdb.Color,
		TargetAmount: pdb.TargetAmount,
		SavedAmount:  pdb.SavedAmount,
		CreatedAt:    pdb.CreatedAt,
		UpdatedAt:    pdb.UpdatedAt,
	}, nil
}

func toDBPot(p *pot.Pot) *potDB {
	return &potDB{
		Id:           p.Id.String(),
		UserId:       p.UserId.String(),
		Name:         p.Name,
		Description:  p.Description,
		Color:        p.Color,
		TargetAmount: p.TargetAmount,
		SavedAmount:  p.SavedAmount,
		CreatedAt:    p.CreatedAt,
		UpdatedAt:    p.UpdatedAt,
	}
}

func (r *PotRepository) Create(ctx context.Context, p *pot.Pot) error {
	return conn(ctx, r.DB).Table("pots").Create(toDBPot(p)).Error
}

// Update leaves saved_amount alone; it only moves through AddSavedAmount.
func (r *PotRepository) Update(ctx context.Context, p *pot.Pot) error {
	pdb := toDBPot(p)
	return conn(ctx, r.DB).Model(&potDB{}).
		Where("id = ? AND user_id = ?", pdb.Id, pdb.UserId).
		Updates(map[string]interface{}{
			"name":          pdb.Name,
			"description":   pdb.Description,
			"color":         pdb.Color,
			"target_amount": pdb.TargetAmount,
			"updated_at":    pdb.UpdatedAt,
		}).Error
}

func (r *PotRepository) Delete(ctx context.Context, potID, userID ulid.ULID) error {
	result := conn(ctx, r.DB).
		Where("id = ? AND user_id = ?", potID.String(), userID.String()).
		Delete(&potDB{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *PotRepository) GetByID(ctx context.Context, potID, userID ulid.ULID) (*pot.Pot, error) {
	q := query.New[potDB](conn(ctx, r.DB), "pots").
		Context(ctx).
		Where("id = ? AND user_id = ?", potID.String(), userID.String())
	return query.ExecuteFirst(q, toDomainPot)
}

func (r *PotRepository) GetForUpdate(ctx context.Context, potID, userID ulid.ULID) (*pot.Pot, error) {
	q := query.New[potDB](conn(ctx, r.DB), "pots").
		Context(ctx).
		Where("id = ? AND user_id = ?", potID.String(), userID.String()).
		ForUpdate()
	return query.ExecuteFirst(q, toDomainPot)
}

func (r *PotRepository) GetByName(ctx context.Context, name string, userID ulid.ULID) (*pot.Pot, error) {
	q := query.New[potDB](conn(ctx, r.DB), "pots").
		Context(ctx).
		Where("user_id = ? AND LOWER(name) = LOWER(?)", userID.String(), name)
	return query.ExecuteFirst(q, toDomainPot)
}

func (r *PotRepository) List(ctx context.Context, userID ulid.ULID, pagination *pkg.PaginationParams) ([]*pot.Pot, int64, error) {
	baseQuery := conn(ctx, r.DB).Table("pots").Where("user_id = ?", userID.String())
	return pkg.Paginate(baseQuery, pagination, "created_at DESC", toDomainPot)
}

func (r *PotRepository) ListFirst(ctx context.Context, userID ulid.ULID, limit int) ([]*pot.Pot, error) {
	q := query.New[potDB](conn(ctx, r.DB), "pots").
		Context(ctx).
		Where("user_id = ?", userID.String()).
		Order("created_at ASC, id ASC")
	return query.ExecuteWithLimit(q, limit, toDomainPot)
}

func (r *PotRepository) Totals(ctx context.Context, userID ulid.ULID) (int64, int64, error) {
	var row potTotalsRow
	err := conn(ctx, r.DB).Table("pots").
		Select("COALESCE(SUM(saved_amount), 0) AS saved, COALESCE(SUM(target_amount), 0) AS target").
		Where("user_id = ?", userID.String()).
		Scan(&row).Error
	return row.Saved, row.Target, err
}

func (r *PotRepository) AddSavedAmount(ctx context.Context, potID ulid.ULID, delta int64) error {
	result := conn(ctx, r.DB).Model(&potDB{}).
		Where("id = ?", potID.String()).
		UpdateColumns(map[string]interface{}{
			"saved_amount": gorm.Expr("saved_amount + ?", delta),
			"updated_at":   time.Now().UTC(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
