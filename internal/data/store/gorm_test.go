package store

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/yungbote/sessioncache/internal/domain"
)

func openTestSQLite(t *testing.T) *GormStore {
	t.Helper()
	s, err := OpenSQLite(filepath.Join(t.TempDir(), "store.db"), nil)
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestGormStoreSQLiteRoundTrip(t *testing.T) {
	s := openTestSQLite(t)
	ctx := context.Background()

	if err := s.Apply(ctx, []Write{{Op: OpInsert, Key: domain.ProductKey(1), Record: widget()}}); err != nil {
		t.Fatalf("insert: %v", err)
	}
	rec, err := s.Fetch(ctx, domain.ProductKey(1))
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if got := rec.(*domain.Product).View(); got != widget().View() {
		t.Fatalf("row: want=%+v got=%+v", widget().View(), got)
	}

	upd := &domain.Product{ID: 1, CategoryID: 0, Name: ""}
	if err := s.Apply(ctx, []Write{{Op: OpUpdate, Key: domain.ProductKey(1), Record: upd}}); err != nil {
		t.Fatalf("update: %v", err)
	}
	rec, _ = s.Fetch(ctx, domain.ProductKey(1))
	if got := rec.(*domain.Product); got.CategoryID != 0 || got.Name != "" {
		t.Fatalf("zero-value update not persisted: %+v", got)
	}
}

func TestGormStoreSQLiteAtomicBatch(t *testing.T) {
	s := openTestSQLite(t)
	ctx := context.Background()
	if err := s.Apply(ctx, []Write{{Op: OpInsert, Key: domain.ProductKey(1), Record: widget()}}); err != nil {
		t.Fatalf("seed: %v", err)
	}

	err := s.Apply(ctx, []Write{
		{Op: OpInsert, Key: domain.ProductKey(2), Record: &domain.Product{ID: 2, Name: "two"}},
		{Op: OpUpdate, Key: domain.ProductKey(99), Record: &domain.Product{ID: 99, Name: "ghost"}},
	})
	if !errors.Is(err, ErrStoreFailure) {
		t.Fatalf("expected ErrStoreFailure, got=%v", err)
	}
	if _, err := s.Fetch(ctx, domain.ProductKey(2)); !errors.Is(err, ErrNotFound) {
		t.Fatalf("insert from failed batch leaked: %v", err)
	}
}

func TestGormStorePostgres(t *testing.T) {
	dsn := os.Getenv("TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("set TEST_POSTGRES_DSN to run postgres store tests")
	}
	s, err := OpenPostgres(dsn, nil)
	if err != nil {
		t.Fatalf("open postgres: %v", err)
	}
	t.Cleanup(func() {
		_ = s.DB().Exec("DELETE FROM product WHERE id = ?", 900001).Error
		_ = s.Close()
	})
	ctx := context.Background()
	rec := &domain.Product{ID: 900001, CategoryID: 1, Name: "pg"}
	if err := s.Apply(ctx, []Write{{Op: OpInsert, Key: domain.KeyOf(rec), Record: rec}}); err != nil {
		t.Fatalf("insert: %v", err)
	}
	err = s.Apply(ctx, []Write{{Op: OpInsert, Key: domain.KeyOf(rec), Record: rec}})
	if !errors.Is(err, ErrStoreFailure) {
		t.Fatalf("duplicate insert: expected store failure, got=%v", err)
	}
}

func TestGormStoreSQLiteMaxID(t *testing.T) {
	s := openTestSQLite(t)
	ctx := context.Background()
	got, err := s.MaxID(ctx, domain.EntityProduct)
	if err != nil {
		t.Fatalf("max id on empty table: %v", err)
	}
	if got != 0 {
		t.Fatalf("empty max id: want=0 got=%d", got)
	}
	err = s.Apply(ctx, []Write{
		{Op: OpInsert, Key: domain.ProductKey(1), Record: widget()},
		{Op: OpInsert, Key: domain.ProductKey(10007), Record: &domain.Product{ID: 10007, Name: "snap"}},
	})
	if err != nil {
		t.Fatalf("insert: %v", err)
	}
	if got, _ = s.MaxID(ctx, domain.EntityProduct); got != 10007 {
		t.Fatalf("max id: want=10007 got=%d", got)
	}
}
