package uow

import (
	"context"
	"errors"
	"testing"

	"github.com/yungbote/sessioncache/internal/domain"
)

func countingLoader(calls *int, p *domain.Product) Loader {
	return func(ctx context.Context, key domain.EntityKey) (domain.Record, error) {
		*calls++
		return p.Clone(), nil
	}
}

func TestIdentityCacheSharedReturnsSameInstance(t *testing.T) {
	c := NewIdentityCache(PolicyShared)
	calls := 0
	load := countingLoader(&calls, &domain.Product{ID: 1, CategoryID: 10, Name: "Widget"})
	key := domain.ProductKey(1)

	a, err := c.Resolve(context.Background(), key, load)
	if err != nil {
		t.Fatalf("resolve a: %v", err)
	}
	b, err := c.Resolve(context.Background(), key, load)
	if err != nil {
		t.Fatalf("resolve b: %v", err)
	}
	if a != b {
		t.Fatalf("shared policy: want identical instances")
	}
	if calls != 1 {
		t.Fatalf("loader calls: want=1 got=%d", calls)
	}
	if st := c.Stats(); st.Hits != 1 || st.Misses != 1 {
		t.Fatalf("stats: want=1/1 got=%d/%d", st.Hits, st.Misses)
	}
}

func TestIdentityCacheCopyReturnsIndependentClones(t *testing.T) {
	c := NewIdentityCache(PolicyCopy)
	calls := 0
	load := countingLoader(&calls, &domain.Product{ID: 1, CategoryID: 10, Name: "Widget"})
	key := domain.ProductKey(1)

	a, _ := c.Resolve(context.Background(), key, load)
	b, _ := c.Resolve(context.Background(), key, load)
	if a == b {
		t.Fatalf("copy policy: want distinct instances")
	}
	a.(*domain.Product).Name = "mutated"
	a.SetPrimaryKey(99)

	e, ok := c.Entry(key)
	if !ok {
		t.Fatalf("expected entry for %s", key)
	}
	if got := e.Record.(*domain.Product); got.Name != "Widget" || got.ID != 1 {
		t.Fatalf("canonical instance changed: %+v", got)
	}
	if got := b.(*domain.Product); got.Name != "Widget" {
		t.Fatalf("sibling clone changed: %+v", got)
	}
	if calls != 1 {
		t.Fatalf("loader calls: want=1 got=%d", calls)
	}
}

func TestIdentityCachePutCopyKeepsOwnClone(t *testing.T) {
	c := NewIdentityCache(PolicyCopy)
	p := &domain.Product{ID: 5, CategoryID: 1, Name: "a"}
	if err := c.Put(domain.ProductKey(5), p); err != nil {
		t.Fatalf("put: %v", err)
	}
	p.Name = "b"

	e, _ := c.Entry(domain.ProductKey(5))
	if e.Record == domain.Record(p) {
		t.Fatalf("copy policy: cache must not hold the caller's pointer")
	}
	if e.Record.(*domain.Product).Name != "a" {
		t.Fatalf("canonical name: want=a got=%s", e.Record.(*domain.Product).Name)
	}
}

func TestIdentityCacheKeyFixedAtInsertion(t *testing.T) {
	c := NewIdentityCache(PolicyShared)
	key := domain.ProductKey(1)
	rec, _ := c.Resolve(context.Background(), key, func(context.Context, domain.EntityKey) (domain.Record, error) {
		return &domain.Product{ID: 1}, nil
	})
	rec.SetPrimaryKey(10001)

	e, ok := c.Entry(key)
	if !ok {
		t.Fatalf("entry for original key must survive pk reassignment")
	}
	if e.Key != key {
		t.Fatalf("entry key: want=%s got=%s", key, e.Key)
	}
	if e.Record.PrimaryKey() != 10001 {
		t.Fatalf("entry record pk: want=10001 got=%d", e.Record.PrimaryKey())
	}
	if _, ok := c.Entry(domain.ProductKey(10001)); ok {
		t.Fatalf("pk reassignment must not create a new entry")
	}
}

func TestIdentityCacheLoaderErrorNotCached(t *testing.T) {
	c := NewIdentityCache(PolicyShared)
	boom := errors.New("boom")
	_, err := c.Resolve(context.Background(), domain.ProductKey(1), func(context.Context, domain.EntityKey) (domain.Record, error) {
		return nil, boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("err: want=%v got=%v", boom, err)
	}
	if c.Len() != 0 {
		t.Fatalf("len: want=0 got=%d", c.Len())
	}
}

func TestParsePolicy(t *testing.T) {
	if p, err := ParsePolicy(""); err != nil || p != PolicyCopy {
		t.Fatalf("empty: want=copy got=%v err=%v", p, err)
	}
	if p, err := ParsePolicy(" Shared "); err != nil || p != PolicyShared {
		t.Fatalf("shared: want=shared got=%v err=%v", p, err)
	}
	if _, err := ParsePolicy("lru"); err == nil {
		t.Fatalf("expected error for unknown policy")
	}
}
