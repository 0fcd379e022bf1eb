package store

import (
	"context"
	"fmt"
	"sync"

	"github.com/yungbote/sessioncache/internal/domain"
	"github.com/yungbote/sessioncache/internal/platform/logger"
)

// MemoryStore keeps rows in process memory. Rows are cloned on the way in and
// out so no caller ever aliases stored state.
type MemoryStore struct {
	mu     sync.RWMutex
	rows   map[domain.EntityKey]domain.Record
	fault  func(Write) error
	log    *logger.Logger
	closed bool
}

var (
	_ RecordStore = (*MemoryStore)(nil)
	_ KeyRange    = (*MemoryStore)(nil)
)

func NewMemoryStore(baseLog *logger.Logger) *MemoryStore {
	return &MemoryStore{
		rows: make(map[domain.EntityKey]domain.Record),
		log:  baseLog.With("store", "MemoryStore"),
	}
}

func (s *MemoryStore) Driver() Driver { return DriverMemory }

// Seed upserts records directly, bypassing write validation.
func (s *MemoryStore) Seed(records ...domain.Record) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range records {
		if r == nil {
			continue
		}
		s.rows[domain.KeyOf(r)] = r.CloneRecord()
	}
}

// InjectFault installs fn to be consulted for every write in Apply; a non-nil
// return fails the whole batch. Pass nil to clear.
func (s *MemoryStore) InjectFault(fn func(Write) error) {
	s.mu.Lock()
	s.fault = fn
	s.mu.Unlock()
}

func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.rows)
}

func (s *MemoryStore) Fetch(ctx context.Context, key domain.EntityKey) (domain.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.rows[key]
	if !ok {
		return nil, NotFound(key)
	}
	return rec.CloneRecord(), nil
}

// Apply stages the batch against a private overlay and only swaps it in when
// every write validated.
func (s *MemoryStore) Apply(ctx context.Context, writes []Write) error {
	if len(writes) == 0 {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return Failure("apply", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return Failure("apply", fmt.Errorf("memory store closed"))
	}

	staged := make(map[domain.EntityKey]domain.Record, len(writes))
	exists := func(k domain.EntityKey) bool {
		if _, ok := staged[k]; ok {
			return true
		}
		_, ok := s.rows[k]
		return ok
	}
	for i, w := range writes {
		if err := validateWrite(i, w); err != nil {
			return err
		}
		switch w.Op {
		case OpInsert:
			if exists(w.Key) {
				return Failure(fmt.Sprintf("write %d: duplicate key %s", i, w.Key), nil)
			}
		case OpUpdate:
			if !exists(w.Key) {
				return Failure(fmt.Sprintf("write %d: update of missing %s", i, w.Key), nil)
			}
		}
		if s.fault != nil {
			if err := s.fault(w); err != nil {
				return Failure(fmt.Sprintf("write %d", i), err)
			}
		}
		staged[w.Key] = w.Record.CloneRecord()
	}
	for k, rec := range staged {
		s.rows[k] = rec
	}
	s.log.Debug("batch applied", "writes", len(writes))
	return nil
}

func (s *MemoryStore) MaxID(ctx context.Context, t domain.EntityType) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	var highest int64
	for k := range s.rows {
		if k.Type == t && k.ID > highest {
			highest = k.ID
		}
	}
	return highest, nil
}

func (s *MemoryStore) Close() error {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
	return nil
}
