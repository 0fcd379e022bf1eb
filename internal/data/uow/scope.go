// Package uow implements the unit of work: a transaction scope that owns an
// identity cache and an ordered list of pending writes.
package uow

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/sessioncache/internal/data/store"
	"github.com/yungbote/sessioncache/internal/domain"
	"github.com/yungbote/sessioncache/internal/platform/logger"
)

var (
	// ErrScopeClosed is returned by every operation on a committed or rolled
	// back scope.
	ErrScopeClosed = errors.New("transaction scope closed")
	// ErrRollbackOnly is returned by Commit after a participant marked the
	// scope rollback-only.
	ErrRollbackOnly = errors.New("transaction scope marked rollback-only")
)

type Status string

const (
	StatusActive     Status = "active"
	StatusCommitted  Status = "committed"
	StatusRolledBack Status = "rolled_back"
)

// Scope is one unit of work. A scope is driven by a single goroutine and is
// never shared across requests.
type Scope struct {
	id        string
	store     store.RecordStore
	cache     *IdentityCache
	status    Status
	pending   []store.Write
	startedAt time.Time
	rbReason  error
	log       *logger.Logger
}

// Begin opens an active scope with an empty cache.
func Begin(st store.RecordStore, policy Policy, baseLog *logger.Logger) *Scope {
	id := uuid.NewString()
	s := &Scope{
		id:        id,
		store:     st,
		cache:     NewIdentityCache(policy),
		status:    StatusActive,
		startedAt: time.Now(),
		log:       baseLog.With("scope", id),
	}
	s.log.Debug("scope begin", "policy", s.cache.Policy())
	return s
}

func (s *Scope) ID() string { return s.id }

func (s *Scope) Status() Status { return s.status }

func (s *Scope) Policy() Policy { return s.cache.Policy() }

func (s *Scope) Active() bool { return s != nil && s.status == StatusActive }

func (s *Scope) StartedAt() time.Time { return s.startedAt }

func (s *Scope) Cache() *IdentityCache { return s.cache }

// Pending returns a copy of the queued writes in issue order.
func (s *Scope) Pending() []store.Write {
	out := make([]store.Write, len(s.pending))
	copy(out, s.pending)
	return out
}

func (s *Scope) RollbackOnly() bool { return s.rbReason != nil }

// MarkRollbackOnly forces the eventual Commit to roll back instead.
func (s *Scope) MarkRollbackOnly(reason error) {
	if !s.Active() || s.rbReason != nil {
		return
	}
	if reason == nil {
		reason = ErrRollbackOnly
	}
	s.rbReason = reason
	s.log.Debug("scope marked rollback-only", "reason", reason.Error())
}

func (s *Scope) closedErr(op string) error {
	return errors.Join(ErrScopeClosed, fmt.Errorf("%s: scope %s is %s", op, s.id, s.status))
}

// Resolve looks key up in the scope's identity cache, fetching it from the
// store on a miss.
func (s *Scope) Resolve(ctx context.Context, key domain.EntityKey) (domain.Record, error) {
	if !s.Active() {
		return nil, s.closedErr("resolve")
	}
	return s.cache.Resolve(ctx, key, s.store.Fetch)
}

// Register makes rec the canonical instance for key.
func (s *Scope) Register(key domain.EntityKey, rec domain.Record) error {
	if !s.Active() {
		return s.closedErr("register")
	}
	return s.cache.Put(key, rec)
}

// Enqueue queues a write for commit. The record is cloned now, so later
// in-memory mutations do not change what gets written.
func (s *Scope) Enqueue(op store.Op, key domain.EntityKey, rec domain.Record) error {
	if !s.Active() {
		return s.closedErr("enqueue")
	}
	if rec == nil {
		return fmt.Errorf("enqueue %s %s: nil record", op, key)
	}
	s.pending = append(s.pending, store.Write{Op: op, Key: key, Record: rec.CloneRecord()})
	s.log.Debug("write queued", "op", op, "key", key.String(), "pending", len(s.pending))
	return nil
}

// Commit flushes pending writes as one atomic batch. Any failure rolls the
// scope back and leaves the store untouched.
func (s *Scope) Commit(ctx context.Context) error {
	if !s.Active() {
		return s.closedErr("commit")
	}
	if s.rbReason != nil {
		reason := s.rbReason
		s.finish(StatusRolledBack)
		return errors.Join(ErrRollbackOnly, reason)
	}
	if err := ctx.Err(); err != nil {
		s.finish(StatusRolledBack)
		return errors.Join(store.ErrStoreFailure, fmt.Errorf("commit: %w", err))
	}
	if len(s.pending) > 0 {
		if err := s.store.Apply(ctx, s.pending); err != nil {
			s.finish(StatusRolledBack)
			if !errors.Is(err, store.ErrStoreFailure) {
				err = errors.Join(store.ErrStoreFailure, err)
			}
			return err
		}
	}
	s.finish(StatusCommitted)
	return nil
}

// Rollback discards pending writes and the cache.
func (s *Scope) Rollback() error {
	if !s.Active() {
		return s.closedErr("rollback")
	}
	s.finish(StatusRolledBack)
	return nil
}

func (s *Scope) finish(status Status) {
	writes := len(s.pending)
	stats := s.cache.Stats()
	s.status = status
	s.pending = nil
	s.cache.seal()
	s.log.Debug("scope end",
		"status", status,
		"writes", writes,
		"cache_hits", stats.Hits,
		"cache_misses", stats.Misses,
		"duration_ms", time.Since(s.startedAt).Milliseconds(),
	)
}
