// Package store holds the record store boundary the unit of work flushes to.
//
// A RecordStore fetches single rows by EntityKey and applies an ordered batch
// of writes atomically: either every write lands or none does.
package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/yungbote/sessioncache/internal/domain"
)

var (
	// ErrNotFound tags lookups with no row for the key.
	ErrNotFound = errors.New("record not found")
	// ErrStoreFailure tags a batch that could not be applied.
	ErrStoreFailure = errors.New("store write failed")
)

// Driver identifies a concrete store implementation.
type Driver string

const (
	DriverMemory   Driver = "memory"
	DriverSQLite   Driver = "sqlite"
	DriverPostgres Driver = "postgres"
	DriverRedis    Driver = "redis"
)

func ParseDriver(raw string) (Driver, error) {
	switch d := Driver(raw); d {
	case DriverMemory, DriverSQLite, DriverPostgres, DriverRedis:
		return d, nil
	default:
		return "", fmt.Errorf("unknown store driver %q", raw)
	}
}

// Op is the kind of a queued write.
type Op string

const (
	OpInsert Op = "insert"
	OpUpdate Op = "update"
)

// Write is one queued mutation. Record is owned by the write: callers hand
// over a copy taken when the write was issued.
type Write struct {
	Op     Op
	Key    domain.EntityKey
	Record domain.Record
}

type RecordStore interface {
	Driver() Driver
	Fetch(ctx context.Context, key domain.EntityKey) (domain.Record, error)
	Apply(ctx context.Context, writes []Write) error
	Close() error
}

// KeyRange is implemented by stores that can report the highest primary key
// already used for an entity type. Key sequences start above it so a restart
// never reissues a stored id.
type KeyRange interface {
	MaxID(ctx context.Context, t domain.EntityType) (int64, error)
}

// NotFound builds an ErrNotFound-tagged error for key.
func NotFound(key domain.EntityKey) error {
	return errors.Join(ErrNotFound, fmt.Errorf("no row for %s", key))
}

// Failure builds an ErrStoreFailure-tagged error.
func Failure(msg string, cause error) error {
	if cause == nil {
		return errors.Join(ErrStoreFailure, errors.New(msg))
	}
	return errors.Join(ErrStoreFailure, fmt.Errorf("%s: %w", msg, cause))
}

func validateWrite(i int, w Write) error {
	if w.Record == nil {
		return Failure(fmt.Sprintf("write %d: nil record", i), nil)
	}
	if w.Op != OpInsert && w.Op != OpUpdate {
		return Failure(fmt.Sprintf("write %d: unknown op %q", i, w.Op), nil)
	}
	if w.Key.ID <= 0 {
		return Failure(fmt.Sprintf("write %d: invalid key %s", i, w.Key), nil)
	}
	if got := domain.KeyOf(w.Record); got != w.Key {
		return Failure(fmt.Sprintf("write %d: record key %s does not match write key %s", i, got, w.Key), nil)
	}
	return nil
}
