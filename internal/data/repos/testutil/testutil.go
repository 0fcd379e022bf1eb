package testutil

import (
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/yungbote/sessioncache/internal/data/store"
	"github.com/yungbote/sessioncache/internal/platform/logger"
)

var errMissingDSN = errors.New("missing TEST_POSTGRES_DSN")

var (
	pgOnce  sync.Once
	pgStore *store.GormStore
	pgErr   error

	logOnce sync.Once
	logg    *logger.Logger
	logErr  error
)

func Logger(tb testing.TB) *logger.Logger {
	tb.Helper()
	logOnce.Do(func() {
		logg, logErr = logger.New("test")
	})
	if logErr != nil {
		tb.Fatalf("failed to init logger: %v", logErr)
	}
	return logg
}

// MemoryStore returns an empty in-memory store.
func MemoryStore(tb testing.TB) *store.MemoryStore {
	tb.Helper()
	return store.NewMemoryStore(Logger(tb))
}

// SQLiteStore opens a gorm/sqlite store in a per-test temp dir.
func SQLiteStore(tb testing.TB) *store.GormStore {
	tb.Helper()
	st, err := store.OpenSQLite(filepath.Join(tb.TempDir(), "test.db"), Logger(tb))
	if err != nil {
		tb.Fatalf("open sqlite store: %v", err)
	}
	tb.Cleanup(func() { _ = st.Close() })
	return st
}

// PostgresStore shares one gorm/postgres store across the test binary and
// skips when TEST_POSTGRES_DSN is unset.
func PostgresStore(tb testing.TB) *store.GormStore {
	tb.Helper()
	pgOnce.Do(func() {
		dsn := os.Getenv("TEST_POSTGRES_DSN")
		if dsn == "" {
			pgErr = errMissingDSN
			return
		}
		pgStore, pgErr = store.OpenPostgres(dsn, Logger(tb))
	})
	if errors.Is(pgErr, errMissingDSN) {
		tb.Skip("set TEST_POSTGRES_DSN to run repo integration tests")
	}
	if pgErr != nil {
		tb.Fatalf("failed to init test db: %v", pgErr)
	}
	return pgStore
}
