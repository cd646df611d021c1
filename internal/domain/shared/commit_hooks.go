package shared

import (
	"context"
	"sync"
)

type commitHooksKey struct{}

type commitHooks struct {
	mu  sync.Mutex
	fns []func()
}

// WithCommitHooks prepares ctx to collect AfterCommit callbacks. The returned
// function runs them in registration order and must only be called once the
// outermost transaction committed. A ctx that already collects hooks is reused
// and the returned function is a no-op, so nested units of work defer to the outer one.
func WithCommitHooks(ctx context.Context) (context.Context, func()) {
	if _, ok := ctx.Value(commitHooksKey{}).(*commitHooks); ok {
		return ctx, func() {}
	}

	hooks := &commitHooks{}
	ctx = context.WithValue(ctx, commitHooksKey{}, hooks)
	return ctx, func() {
		hooks.mu.Lock()
		fns := hooks.fns
		hooks.fns = nil
		hooks.mu.Unlock()

		for _, fn := range fns {
			fn()
		}
	}
}

// AfterCommit schedules fn for after the surrounding unit of work commits. Outside a
// unit of work fn runs immediately. Callbacks of a rolled back unit never run.
func AfterCommit(ctx context.Context, fn func()) {
	hooks, ok := ctx.Value(commitHooksKey{}).(*commitHooks)
	if !ok {
		fn()
		return
	}

	hooks.mu.Lock()
	hooks.fns = append(hooks.fns, fn)
	hooks.mu.Unlock()
}
