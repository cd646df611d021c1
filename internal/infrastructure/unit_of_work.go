package infrastructure

import (
	"context"

	"MyFinance/internal/domain/shared"

	"gorm.io/gorm"
)

type txKey struct{}

// UnitOfWork runs callbacks inside one gorm transaction carried by ctx.
type UnitOfWork struct {
	DB *gorm.DB
}

func NewUnitOfWork(db *gorm.DB) *UnitOfWork {
	return &UnitOfWork{DB: db}
}

// Do joins the transaction already in ctx or opens a new one. Hooks registered with
// shared.AfterCommit fire once the outermost transaction committed.
func (u *UnitOfWork) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, ok := ctx.Value(txKey{}).(*gorm.DB); ok {
		return fn(ctx)
	}

	ctx, runHooks := shared.WithCommitHooks(ctx)
	err := u.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(context.WithValue(ctx, txKey{}, tx))
	})
	if err != nil {
		return err
	}

	runHooks()
	return nil
}

// conn returns the transaction stored in ctx, or db bound to ctx when there is none.
func conn(ctx context.Context, db *gorm.DB) *gorm.DB {
	if tx, ok := ctx.Value(txKey{}).(*gorm.DB); ok {
		return tx.WithContext(ctx)
	}
	return db.WithContext(ctx)
}
