package uow

import (
	"context"
	"errors"
	"fmt"

	"github.com/yungbote/sessioncache/internal/domain"
)

// Loader fetches a record that is not yet cached.
type Loader func(ctx context.Context, key domain.EntityKey) (domain.Record, error)

// CacheEntry binds a key to its canonical instance. The key is fixed when the
// entry is created; changing the record's primary key afterwards does not
// move the entry.
type CacheEntry struct {
	Key    domain.EntityKey
	Record domain.Record
}

type CacheStats struct {
	Hits   int64
	Misses int64
}

// IdentityCache maps keys to one canonical instance per scope.
// Not safe for concurrent use; it belongs to a single Scope.
type IdentityCache struct {
	policy  Policy
	entries map[domain.EntityKey]*CacheEntry
	stats   CacheStats
	sealed  bool
}

func NewIdentityCache(policy Policy) *IdentityCache {
	if !policy.Valid() {
		policy = DefaultPolicy
	}
	return &IdentityCache{
		policy:  policy,
		entries: make(map[domain.EntityKey]*CacheEntry),
	}
}

func (c *IdentityCache) Policy() Policy { return c.policy }

// Resolve returns the record for key, loading and caching it on a miss.
// Under PolicyShared every call returns the same pointer; under PolicyCopy
// each call returns a fresh clone of the canonical instance.
func (c *IdentityCache) Resolve(ctx context.Context, key domain.EntityKey, load Loader) (domain.Record, error) {
	if c.sealed {
		return nil, errors.Join(ErrScopeClosed, fmt.Errorf("resolve %s: cache sealed", key))
	}
	if e, ok := c.entries[key]; ok {
		c.stats.Hits++
		return c.hand(e.Record), nil
	}
	c.stats.Misses++
	if load == nil {
		return nil, fmt.Errorf("resolve %s: no loader", key)
	}
	rec, err := load(ctx, key)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, fmt.Errorf("resolve %s: loader returned nil record", key)
	}
	c.entries[key] = &CacheEntry{Key: key, Record: rec}
	return c.hand(rec), nil
}

// Put registers rec as the canonical instance for key, replacing any prior
// entry. Under PolicyCopy the cache keeps its own clone. A sealed cache
// rejects every Put.
func (c *IdentityCache) Put(key domain.EntityKey, rec domain.Record) error {
	if c.sealed {
		return errors.Join(ErrScopeClosed, fmt.Errorf("put %s: cache sealed", key))
	}
	if rec == nil {
		return fmt.Errorf("put %s: nil record", key)
	}
	if c.policy == PolicyCopy {
		rec = rec.CloneRecord()
	}
	c.entries[key] = &CacheEntry{Key: key, Record: rec}
	return nil
}

// Entry exposes the raw entry for key without counting a lookup.
func (c *IdentityCache) Entry(key domain.EntityKey) (CacheEntry, bool) {
	e, ok := c.entries[key]
	if !ok {
		return CacheEntry{}, false
	}
	return *e, true
}

func (c *IdentityCache) Len() int { return len(c.entries) }

func (c *IdentityCache) Stats() CacheStats { return c.stats }

func (c *IdentityCache) Sealed() bool { return c.sealed }

// seal drops every entry and refuses further loads and registrations. Stats
// are kept.
func (c *IdentityCache) seal() {
	c.entries = make(map[domain.EntityKey]*CacheEntry)
	c.sealed = true
}

func (c *IdentityCache) hand(rec domain.Record) domain.Record {
	if c.policy == PolicyShared {
		return rec
	}
	return rec.CloneRecord()
}
