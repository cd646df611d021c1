package infrastructure

import (
	"context"
	"time"

	"MyFinance/internal/domain/transaction"
	"MyFinance/internal/pkg"
	"MyFinance/internal/pkg/query"

	"github.com/oklog/ulid/v2"
	"gorm.io/gorm"
)

type TransactionRepository struct {
	DB *gorm.DB
}

var _ transaction.Repository = (*TransactionRepository)(nil)

type transactionDB struct {
	Id              string               `gorm:"type:varchar(26);primaryKey;column:id"`
	UserId          string               `gorm:"type:varchar(26);index;not null;column:user_id"`
	AccountId       string               `gorm:"type:varchar(26);index:idx_transactions_duplicate,priority:1;not null;column:account_id"`
	CategoryId      *string              `gorm:"type:varchar(26);index;column:category_id"`
	BudgetId        *string              `gorm:"type:varchar(26);index;column:budget_id"`
	PotId           *string              `gorm:"type:varchar(26);index;column:pot_id"`
	Description     string               `gorm:"type:varchar(255);not null;column:description"`
	Recipient       string               `gorm:"type:varchar(100);column:recipient"`
	Sender          string               `gorm:"type:varchar(100);column:sender"`
	Amount          int64                `gorm:"type:bigint;not null;column:amount"`
	Type            string               `gorm:"type:varchar(10);not null;column:type"`
	TransactionDate time.Time            `gorm:"not null;index:idx_transactions_duplicate,priority:2;column:transaction_date"`
	Metadata        transaction.Metadata `gorm:"type:text;serializer:json;column:metadata"`
	CreatedAt       time.Time            `gorm:"not null;column:created_at"`
	UpdatedAt       time.Time            `gorm:"not null;column:updated_at"`
}

func (transactionDB) TableName() string {
	return "transactions"
}

type typeTotalRow struct {
	Type  string
	Count int64
	Total int64
}

func toDomainTransaction(tdb *transactionDB) (*transaction.Transaction, error) {
	id, err := pkg.ParseULID(tdb.Id)
	if err != nil {
		return nil, err
	}
	uid, err := pkg.ParseULID(tdb.UserId)
	if err != nil {
		return nil, err
	}
	aid, err := pkg.ParseULID(tdb.AccountId)
	if err != nil {
		return nil, err
	}
	cid, err := pkg.ParseULIDPtr(tdb.CategoryId)
	if err != nil {
		return nil, err
	}
	bid, err := pkg.ParseULIDPtr(tdb.BudgetId)
	if err != nil {
		return nil, err
	}
	pid, err := pkg.ParseULIDPtr(tdb.PotId)
	if err != nil {
		return nil, err
	}

	return &transaction.Transaction{
		Id:              id,
		UserId:          uid,
		AccountId:       aid,
		CategoryId:      cid,
		BudgetId:        bid,
		PotId:           pid,
		Description:     tdb.Description,
		Recipient:       tdb.Recipient,
		Sender:          tdb.Sender,
		Amount:          tdb.Amount,
		Type:            transaction.Type(tdb.Type),
		TransactionDate: tdb.TransactionDate,
		Metadata:        tdb.Metadata,
		CreatedAt:       tdb.CreatedAt,
		UpdatedAt:       tdb.UpdatedAt,
	}, nil
}

func toDBTransaction(t *transaction.Transaction) *transactionDB {
	return &transactionDB{
		Id:              t.Id.String(),
		UserId:          t.UserId.String(),
		AccountId:       t.AccountId.String(),
		CategoryId:      pkg.ULIDPtrString(t.CategoryId),
		BudgetId:        pkg.ULIDPtrString(t.BudgetId),
		PotId:           pkg.ULIDPtrString(t.PotId),
		Description:     t.Description,
		Recipient:       t.Recipient,
		Sender:          t.Sender,
		Amount:          t.Amount,
		Type:            string(t.Type),
		TransactionDate: t.TransactionDate,
		Metadata:        t.Metadata,
		CreatedAt:       t.CreatedAt,
		UpdatedAt:       t.UpdatedAt,
	}
}

func (r *TransactionRepository) Create(ctx context.Context, t *transaction.Transaction) error {
	return conn(ctx, r.DB).Table("transactions").Create(toDBTransaction(t)).Error
}

// Update saves the full row so cleared links and zero amounts are written as well.
func (r *TransactionRepository) Update(ctx context.Context, t *transaction.Transaction) error {
	return conn(ctx, r.DB).Save(toDBTransaction(t)).Error
}

func (r *TransactionRepository) Delete(ctx context.Context, transactionID ulid.ULID) error {
	return conn(ctx, r.DB).Where("id = ?", transactionID.String()).Delete(&transactionDB{}).Error
}

func (r *TransactionRepository) GetByID(ctx context.Context, transactionID, userID ulid.ULID) (*transaction.Transaction, error) {
	q := query.New[transactionDB](conn(ctx, r.DB), "transactions").
		Context(ctx).
		Where("id = ? AND user_id = ?", transactionID.String(), userID.String())
	return query.ExecuteFirst(q, toDomainTransaction)
}

func (r *TransactionRepository) GetForUpdate(ctx context.Context, transactionID, userID ulid.ULID) (*transaction.Transaction, error) {
	q := query.New[transactionDB](conn(ctx, r.DB), "transactions").
		Context(ctx).
		Where("id = ? AND user_id = ?", transactionID.String(), userID.String()).
		ForUpdate()
	return query.ExecuteFirst(q, toDomainTransaction)
}

func (r *TransactionRepository) ExistsDuplicate(ctx context.Context, key transaction.DuplicateKey) (bool, error) {
	return query.New[transactionDB](conn(ctx, r.DB), "transactions").
		Context(ctx).
		Where("account_id = ? AND description = ? AND recipient = ? AND amount = ? AND transaction_date = ?",
			key.AccountId.String(), key.Description, key.Recipient, key.Amount, key.TransactionDate).
		Exists()
}

func (r *TransactionRepository) filtered(ctx context.Context, userID ulid.ULID, filter *transaction.Filter) *query.Query[transactionDB] {
	q := query.New[transactionDB](conn(ctx, r.DB), "transactions").
		Context(ctx).
		Where("user_id = ?", userID.String())
	if filter == nil {
		return q
	}
	if filter.From != nil {
		q = q.Where("transaction_date >= ?", *filter.From)
	}
	if filter.To != nil {
		q = q.Where("transaction_date <= ?", *filter.To)
	}
	if filter.Type != nil {
		q = q.Where("type = ?", string(*filter.Type))
	}
	if filter.CategoryId != nil {
		q = q.Where("category_id = ?", filter.CategoryId.String())
	}
	if filter.BudgetId != nil {
		q = q.Where("budget_id = ?", filter.BudgetId.String())
	}
	if filter.PotId != nil {
		q = q.Where("pot_id = ?", filter.PotId.String())
	}
	if filter.MinAmount != nil {
		q = q.Where("amount >= ?", *filter.MinAmount)
	}
	if filter.MaxAmount != nil {
		q = q.Where("amount <= ?", *filter.MaxAmount)
	}
	return q.
		WhereIf(filter.Sender != "", "LOWER(sender) LIKE LOWER(?)", "%"+filter.Sender+"%").
		WhereIf(filter.Recipient != "", "LOWER(recipient) LIKE LOWER(?)", "%"+filter.Recipient+"%")
}

func (r *TransactionRepository) List(ctx context.Context, userID ulid.ULID, filter *transaction.Filter, sort transaction.Sort, pagination *pkg.PaginationParams) ([]*transaction.Transaction, int64, error) {
	q := r.filtered(ctx, userID, filter).Order(sort.OrderClause())
	return query.Paginate(q, pagination, toDomainTransaction)
}

func (r *TransactionRepository) ListAll(ctx context.Context, userID ulid.ULID, filter *transaction.Filter, sort transaction.Sort) ([]*transaction.Transaction, error) {
	q := r.filtered(ctx, userID, filter).Order(sort.OrderClause())
	return query.ExecuteAll(q, toDomainTransaction)
}

func (r *TransactionRepository) ListByAccount(ctx context.Context, accountID ulid.ULID, pagination *pkg.PaginationParams) ([]*transaction.Transaction, int64, error) {
	return r.listBy(ctx, "account_id", accountID, pagination)
}

func (r *TransactionRepository) ListByBudget(ctx context.Context, budgetID ulid.ULID, pagination *pkg.PaginationParams) ([]*transaction.Transaction, int64, error) {
	return r.listBy(ctx, "budget_id", budgetID, pagination)
}

func (r *TransactionRepository) ListByPot(ctx context.Context, potID ulid.ULID, pagination *pkg.PaginationParams) ([]*transaction.Transaction, int64, error) {
	return r.listBy(ctx, "pot_id", potID, pagination)
}

func (r *TransactionRepository) ListByCategory(ctx context.Context, categoryID ulid.ULID, pagination *pkg.PaginationParams) ([]*transaction.Transaction, int64, error) {
	return r.listBy(ctx, "category_id", categoryID, pagination)
}

// listBy is only called with the fixed column names above.
func (r *TransactionRepository) listBy(ctx context.Context, column string, id ulid.ULID, pagination *pkg.PaginationParams) ([]*transaction.Transaction, int64, error) {
	q := query.New[transactionDB](conn(ctx, r.DB), "transactions").
		Context(ctx).
		Where(column+" = ?", id.String()).
		Order(transaction.NewSort("", "").OrderClause())
	return query.Paginate(q, pagination, toDomainTransaction)
}

func (r *TransactionRepository) SummaryByType(ctx context.Context, userID ulid.ULID, window transaction.Window) ([]transaction.TypeTotal, error) {
	db := conn(ctx, r.DB).Table("transactions").
		Select("type, COUNT(*) AS count, COALESCE(SUM(amount), 0) AS total").
		Where("user_id = ?", userID.String())
	if window.From != nil {
		db = db.Where("transaction_date >= ?", *window.From)
	}
	if window.To != nil {
		db = db.Where("transaction_date <= ?", *window.To)
	}

	var rows []typeTotalRow
	if err := db.Group("type").Scan(&rows).Error; err != nil {
		return nil, err
	}

	totals := make([]transaction.TypeTotal, 0, len(rows))
	for _, row := range rows {
		totals = append(totals, transaction.TypeTotal{
			Type:  transaction.Type(row.Type),
			Count: row.Count,
			Total: row.Total,
		})
	}
	return totals, nil
}

func (r *TransactionRepository) DeleteByPot(ctx context.Context, potID ulid.ULID) (int64, error) {
	result := conn(ctx, r.DB).Where("pot_id = ?", potID.String()).Delete(&transactionDB{})
	return result.RowsAffected, result.Error
}
