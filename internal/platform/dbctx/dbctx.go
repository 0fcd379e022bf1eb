package dbctx

import (
	"context"

	"github.com/yungbote/sessioncache/internal/data/uow"
)

// Context bundles a request context with the unit-of-work scope it runs in.
// Scope is nil when the caller is outside any transaction.
type Context struct {
	Ctx   context.Context
	Scope *uow.Scope
}

// FromContext picks up the active scope carried by ctx, if any.
func FromContext(ctx context.Context) Context {
	if ctx == nil {
		ctx = context.Background()
	}
	scope, _ := uow.FromContext(ctx)
	return Context{Ctx: ctx, Scope: scope}
}

func (c Context) InScope() bool {
	return c.Scope != nil && c.Scope.Active()
}

func (c Context) Context() context.Context {
	if c.Ctx == nil {
		return context.Background()
	}
	return c.Ctx
}
