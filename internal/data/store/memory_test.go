package store

import (
	"context"
	"errors"
	"testing"

	"github.com/yungbote/sessioncache/internal/domain"
)

func widget() *domain.Product {
	return &domain.Product{ID: 1, CategoryID: 10, Name: "Widget"}
}

func TestMemoryStoreFetchReturnsIndependentCopies(t *testing.T) {
	s := NewMemoryStore(nil)
	s.Seed(widget())

	a, err := s.Fetch(context.Background(), domain.ProductKey(1))
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	b, err := s.Fetch(context.Background(), domain.ProductKey(1))
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if a == b {
		t.Fatalf("expected distinct instances from store fetches")
	}
	a.(*domain.Product).Name = "mutated"
	c, _ := s.Fetch(context.Background(), domain.ProductKey(1))
	if c.(*domain.Product).Name != "Widget" {
		t.Fatalf("store state leaked through fetched record: %q", c.(*domain.Product).Name)
	}
}

func TestMemoryStoreFetchMissing(t *testing.T) {
	s := NewMemoryStore(nil)
	_, err := s.Fetch(context.Background(), domain.ProductKey(42))
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got=%v", err)
	}
}

func TestMemoryStoreApplyIsAllOrNothing(t *testing.T) {
	s := NewMemoryStore(nil)
	s.Seed(widget())

	err := s.Apply(context.Background(), []Write{
		{Op: OpInsert, Key: domain.ProductKey(2), Record: &domain.Product{ID: 2, Name: "ok"}},
		{Op: OpInsert, Key: domain.ProductKey(1), Record: widget()},
	})
	if !errors.Is(err, ErrStoreFailure) {
		t.Fatalf("expected ErrStoreFailure, got=%v", err)
	}
	if s.Len() != 1 {
		t.Fatalf("rows: want=1 got=%d", s.Len())
	}
	if _, err := s.Fetch(context.Background(), domain.ProductKey(2)); !errors.Is(err, ErrNotFound) {
		t.Fatalf("first write of failed batch must not be applied, got=%v", err)
	}
}

func TestMemoryStoreApplyInOrder(t *testing.T) {
	s := NewMemoryStore(nil)
	err := s.Apply(context.Background(), []Write{
		{Op: OpInsert, Key: domain.ProductKey(5), Record: &domain.Product{ID: 5, Name: "first"}},
		{Op: OpUpdate, Key: domain.ProductKey(5), Record: &domain.Product{ID: 5, Name: "second"}},
	})
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	rec, _ := s.Fetch(context.Background(), domain.ProductKey(5))
	if got := rec.(*domain.Product).Name; got != "second" {
		t.Fatalf("name: want=second got=%s", got)
	}
}

func TestMemoryStoreInjectedFault(t *testing.T) {
	s := NewMemoryStore(nil)
	boom := errors.New("disk full")
	s.InjectFault(func(w Write) error {
		if w.Key.ID == 7 {
			return boom
		}
		return nil
	})
	err := s.Apply(context.Background(), []Write{
		{Op: OpInsert, Key: domain.ProductKey(6), Record: &domain.Product{ID: 6}},
		{Op: OpInsert, Key: domain.ProductKey(7), Record: &domain.Product{ID: 7}},
	})
	if !errors.Is(err, ErrStoreFailure) || !errors.Is(err, boom) {
		t.Fatalf("expected store failure wrapping fault, got=%v", err)
	}
	if s.Len() != 0 {
		t.Fatalf("rows: want=0 got=%d", s.Len())
	}
}

func TestValidateWriteRejectsKeyMismatch(t *testing.T) {
	err := validateWrite(0, Write{Op: OpInsert, Key: domain.ProductKey(1), Record: &domain.Product{ID: 2}})
	if !errors.Is(err, ErrStoreFailure) {
		t.Fatalf("expected store failure, got=%v", err)
	}
}

func TestParseDriver(t *testing.T) {
	if d, err := ParseDriver("sqlite"); err != nil || d != DriverSQLite {
		t.Fatalf("ParseDriver sqlite: %v %v", d, err)
	}
	if _, err := ParseDriver("mongo"); err == nil {
		t.Fatalf("expected error for unknown driver")
	}
}

func TestMemoryStoreMaxID(t *testing.T) {
	s := NewMemoryStore(nil)
	ctx := context.Background()
	if got, _ := s.MaxID(ctx, domain.EntityProduct); got != 0 {
		t.Fatalf("empty max id: want=0 got=%d", got)
	}
	s.Seed(widget(), &domain.Product{ID: 10004, Name: "snap"})
	if got, _ := s.MaxID(ctx, domain.EntityProduct); got != 10004 {
		t.Fatalf("max id: want=10004 got=%d", got)
	}
	if got, _ := s.MaxID(ctx, domain.EntityType("order")); got != 0 {
		t.Fatalf("other type max id: want=0 got=%d", got)
	}
}
