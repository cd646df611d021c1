package shared

import (
	"context"

	"github.com/oklog/ulid/v2"
)

type UserChecker interface {
	Exists(ctx context.Context, userID ulid.ULID) error
}

// UnitOfWork runs fn inside one database transaction. The ctx handed to fn carries
// the transaction; repositories called with it join it. Do calls nested inside fn
// reuse the outer transaction. A returned error rolls everything back.
type UnitOfWork interface {
	Do(ctx context.Context, fn func(ctx context.Context) error) error
}

// UnitOfWorkFunc adapts a plain function, handy for tests and for running without a database.
type UnitOfWorkFunc func(ctx context.Context, fn func(ctx context.Context) error) error

func (f UnitOfWorkFunc) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	return f(ctx, fn)
}

// Direct runs fn without any transaction.
var Direct UnitOfWork = UnitOfWorkFunc(func(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
})
