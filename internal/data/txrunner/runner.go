// Package txrunner owns transaction boundaries: every InTx either commits or
// rolls back its scope before returning, panics included.
package txrunner

import (
	"context"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/yungbote/sessioncache/internal/data/store"
	"github.com/yungbote/sessioncache/internal/data/uow"
	"github.com/yungbote/sessioncache/internal/domain/errs"
	"github.com/yungbote/sessioncache/internal/observability"
	"github.com/yungbote/sessioncache/internal/platform/dbctx"
	"github.com/yungbote/sessioncache/internal/platform/logger"
)

// TxRunner provides the shared transaction boundary primitive.
type TxRunner interface {
	InTx(ctx context.Context, fn func(dbc dbctx.Context) error) error
	InTxNamed(ctx context.Context, op string, fn func(dbc dbctx.Context) error) error
}

type Deps struct {
	Store  store.RecordStore
	Policy uow.Policy
	Log    *logger.Logger
	Hooks  Hooks
	Tracer trace.Tracer
	// RollbackOnlyOnJoinError marks the enclosing scope rollback-only when a
	// joined call returns an error, even if the outer caller swallows it.
	RollbackOnlyOnJoinError bool
}

type Runner struct {
	store        store.RecordStore
	policy       uow.Policy
	log          *logger.Logger
	hooks        Hooks
	tracer       trace.Tracer
	rollbackOnly bool
}

var _ TxRunner = (*Runner)(nil)

func NewRunner(d Deps) *Runner {
	if !d.Policy.Valid() {
		d.Policy = uow.DefaultPolicy
	}
	if d.Hooks == nil {
		d.Hooks = noopHooks{}
	}
	if d.Tracer == nil {
		d.Tracer = observability.Tracer("sessioncache/uow")
	}
	return &Runner{
		store:        d.Store,
		policy:       d.Policy,
		log:          d.Log.With("component", "TxRunner"),
		hooks:        d.Hooks,
		tracer:       d.Tracer,
		rollbackOnly: d.RollbackOnlyOnJoinError,
	}
}

func (r *Runner) Policy() uow.Policy { return r.policy }

func (r *Runner) InTx(ctx context.Context, fn func(dbc dbctx.Context) error) error {
	return r.InTxNamed(ctx, "uow.tx", fn)
}

// InTxNamed runs fn inside a scope. When ctx already carries an active scope
// fn joins it and the outermost caller decides the outcome; otherwise a new
// scope is begun and committed when fn returns nil, rolled back otherwise.
// Errors leaving the outermost boundary carry an errs.Code.
func (r *Runner) InTxNamed(ctx context.Context, op string, fn func(dbc dbctx.Context) error) error {
	if fn == nil {
		return nil
	}
	if ctx == nil {
		ctx = context.Background()
	}
	op = strings.TrimSpace(op)
	if op == "" {
		op = "uow.tx"
	}
	if r == nil || r.store == nil {
		return errs.NewError(errs.CodeInternal, op, "transaction runner has nil store", nil)
	}

	if scope, ok := uow.FromContext(ctx); ok {
		return r.join(ctx, op, scope, fn)
	}

	policy := r.policy
	if p, ok := uow.PolicyFromContext(ctx); ok {
		policy = p
	}
	ctx, span := r.tracer.Start(ctx, op, trace.WithAttributes(attribute.String("uow.policy", string(policy))))
	defer span.End()

	scope := uow.Begin(r.store, policy, r.log)
	span.SetAttributes(attribute.String("uow.scope_id", scope.ID()))

	err := MapError(op, r.execute(uow.WithScope(ctx, scope), op, scope, fn))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, string(errs.CodeOf(err)))
	}
	return err
}

func (r *Runner) join(ctx context.Context, op string, scope *uow.Scope, fn func(dbc dbctx.Context) error) error {
	r.hooks.IncJoin(op)
	r.log.Debug("scope join", "op", op, "scope", scope.ID())
	err := fn(dbctx.Context{Ctx: ctx, Scope: scope})
	if err != nil && r.rollbackOnly {
		scope.MarkRollbackOnly(err)
	}
	return err
}

func (r *Runner) execute(ctx context.Context, op string, scope *uow.Scope, fn func(dbc dbctx.Context) error) (err error) {
	start := time.Now()
	defer func() {
		if p := recover(); p != nil {
			if scope.Active() {
				_ = scope.Rollback()
			}
			r.observe(op, scope, "panic", start)
			panic(p)
		}
	}()

	pending := 0
	err = fn(dbctx.Context{Ctx: ctx, Scope: scope})
	if scope.Active() {
		pending = len(scope.Pending())
		if err != nil {
			_ = scope.Rollback()
		} else {
			err = scope.Commit(ctx)
		}
	}
	if pending > 0 {
		status := "committed"
		if scope.Status() != uow.StatusCommitted {
			status = "discarded"
		}
		r.hooks.ObserveWrites(string(r.store.Driver()), status, pending)
	}
	r.observe(op, scope, string(scope.Status()), start)
	return err
}

func (r *Runner) observe(op string, scope *uow.Scope, outcome string, start time.Time) {
	stats := scope.Cache().Stats()
	r.hooks.ObserveScope(op, outcome, time.Since(start))
	r.hooks.ObserveCache(string(scope.Policy()), stats.Hits, stats.Misses)
}
