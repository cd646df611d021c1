package query

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Scope func(*gorm.DB) *gorm.DB

// Query is a small typed builder over a table. T is the row struct.
type Query[T any] struct {
	db        *gorm.DB
	ctx       context.Context
	table     string
	orderBy   string
	forUpdate bool
	scopes    []Scope
}

func New[T any](db *gorm.DB, table string) *Query[T] {
	return &Query[T]{
		db:     db,
		ctx:    context.Background(),
		table:  table,
		scopes: make([]Scope, 0),
	}
}

func (q *Query[T]) Context(ctx context.Context) *Query[T] {
	q.ctx = ctx
	return q
}

func (q *Query[T]) Where(query interface{}, args ...interface{}) *Query[T] {
	q.scopes = append(q.scopes, func(db *gorm.DB) *gorm.DB {
		return db.Where(query, args...)
	})
	return q
}

// WhereIf only adds the condition when ok is true, which keeps optional filters flat.
func (q *Query[T]) WhereIf(ok bool, query interface{}, args ...interface{}) *Query[T] {
	if !ok {
		return q
	}
	return q.Where(query, args...)
}

func (q *Query[T]) Order(order string) *Query[T] {
	q.orderBy = order
	return q
}

// ForUpdate locks the selected rows until the surrounding transaction ends.
func (q *Query[T]) ForUpdate() *Query[T] {
	q.forUpdate = true
	return q
}

func (q *Query[T]) OrderBy() string {
	return q.orderBy
}

func (q *Query[T]) build() *gorm.DB {
	db := q.db.WithContext(q.ctx).Table(q.table)
	for _, scope := range q.scopes {
		db = scope(db)
	}
	if q.forUpdate {
		db = db.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	return db
}

func (q *Query[T]) DB() *gorm.DB {
	return q.build()
}

func (q *Query[T]) Count() (int64, error) {
	var count int64
	err := q.build().Count(&count).Error
	return count, err
}

func (q *Query[T]) Exists() (bool, error) {
	var rows []T
	err := q.build().Limit(1).Find(&rows).Error
	if err != nil {
		return false, err
	}
	return len(rows) > 0, nil
}

func (q *Query[T]) First() (*T, error) {
	var result T
	err := q.build().Take(&result).Error
	if err != nil {
		return nil, err
	}
	return &result, nil
}

func (q *Query[T]) Find() ([]T, error) {
	var results []T
	db := q.build()
	if q.orderBy != "" {
		db = db.Order(q.orderBy)
	}
	err := db.Find(&results).Error
	return results, err
}

func (q *Query[T]) FindWithLimit(limit int) ([]T, error) {
	var results []T
	db := q.build()
	if q.orderBy != "" {
		db = db.Order(q.orderBy)
	}
	err := db.Limit(limit).Find(&results).Error
	return results, err
}
