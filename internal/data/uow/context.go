package uow

import "context"

type scopeCtxKey struct{}
type policyCtxKey struct{}

// WithScope attaches s so nested calls on the same chain join it.
func WithScope(ctx context.Context, s *Scope) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, scopeCtxKey{}, s)
}

// FromContext returns the scope carried by ctx, only while it is still active.
func FromContext(ctx context.Context) (*Scope, bool) {
	if ctx == nil {
		return nil, false
	}
	s, ok := ctx.Value(scopeCtxKey{}).(*Scope)
	if !ok || s == nil || !s.Active() {
		return nil, false
	}
	return s, true
}

// WithPolicy overrides the cache policy for scopes begun under ctx.
func WithPolicy(ctx context.Context, p Policy) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, policyCtxKey{}, p)
}

func PolicyFromContext(ctx context.Context) (Policy, bool) {
	if ctx == nil {
		return "", false
	}
	p, ok := ctx.Value(policyCtxKey{}).(Policy)
	if !ok || !p.Valid() {
		return "", false
	}
	return p, true
}
