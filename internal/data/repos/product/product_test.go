package product

import (
	"context"
	"errors"
	"testing"

	"github.com/yungbote/sessioncache/internal/data/repos/testutil"
	"github.com/yungbote/sessioncache/internal/data/sequence"
	"github.com/yungbote/sessioncache/internal/data/store"
	"github.com/yungbote/sessioncache/internal/data/txrunner"
	"github.com/yungbote/sessioncache/internal/data/uow"
	"github.com/yungbote/sessioncache/internal/domain"
	"github.com/yungbote/sessioncache/internal/domain/errs"
	"github.com/yungbote/sessioncache/internal/platform/dbctx"
)

func setup(t *testing.T, st store.RecordStore, policy uow.Policy) (ProductRepo, *txrunner.Runner) {
	t.Helper()
	testutil.SeedProducts(t, st, testutil.Widget())
	log := testutil.Logger(t)
	repo := NewProductRepo(st, sequence.NewCounter(10000), log)
	runner := txrunner.NewRunner(txrunner.Deps{Store: st, Policy: policy, Log: log})
	return repo, runner
}

func TestProductRepoLoadByIDSharedIsPointerIdentical(t *testing.T) {
	repo, runner := setup(t, testutil.MemoryStore(t), uow.PolicyShared)
	err := runner.InTx(context.Background(), func(dbc dbctx.Context) error {
		a, err := repo.LoadByID(dbc, 1)
		if err != nil {
			return err
		}
		b, err := repo.LoadByID(dbc, 1)
		if err != nil {
			return err
		}
		if a != b {
			t.Fatalf("shared: want identical pointers")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("InTx: %v", err)
	}
}

func TestProductRepoLoadByIDCopyIsIndependent(t *testing.T) {
	repo, runner := setup(t, testutil.MemoryStore(t), uow.PolicyCopy)
	_ = runner.InTx(context.Background(), func(dbc dbctx.Context) error {
		a, _ := repo.LoadByID(dbc, 1)
		b, _ := repo.LoadByID(dbc, 1)
		if a == b {
			t.Fatalf("copy: want distinct pointers")
		}
		a.Name = "changed"
		if b.Name != "Widget" {
			t.Fatalf("copy: sibling changed to %q", b.Name)
		}
		return nil
	})
}

func TestProductRepoLoadByIDOutsideScope(t *testing.T) {
	st := testutil.MemoryStore(t)
	repo, _ := setup(t, st, uow.PolicyShared)
	dbc := dbctx.FromContext(context.Background())
	a, err := repo.LoadByID(dbc, 1)
	if err != nil {
		t.Fatalf("LoadByID: %v", err)
	}
	b, _ := repo.LoadByID(dbc, 1)
	if a == b {
		t.Fatalf("outside a scope every load must return a fresh instance")
	}
}

func TestProductRepoLoadByIDNotFoundRollsBack(t *testing.T) {
	st := testutil.MemoryStore(t)
	repo, runner := setup(t, st, uow.PolicyCopy)
	err := runner.InTx(context.Background(), func(dbc dbctx.Context) error {
		if _, err := repo.Insert(dbc, &domain.Product{Name: "queued"}); err != nil {
			return err
		}
		_, err := repo.LoadByID(dbc, 42)
		return err
	})
	if !errs.IsCode(err, errs.CodeNotFound) || !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("err: want not_found got=%v", err)
	}
	if st.Len() != 1 {
		t.Fatalf("rows: want=1 got=%d", st.Len())
	}
}

func TestProductRepoInsertAssignsFromSequence(t *testing.T) {
	st := testutil.MemoryStore(t)
	repo, runner := setup(t, st, uow.PolicyCopy)
	var key domain.EntityKey
	err := runner.InTx(context.Background(), func(dbc dbctx.Context) error {
		var err error
		key, err = repo.Insert(dbc, &domain.Product{CategoryID: 2, Name: "fresh"})
		if err != nil {
			return err
		}
		got, err := repo.LoadByID(dbc, key.ID)
		if err != nil {
			return err
		}
		if got.Name != "fresh" {
			t.Fatalf("in-scope read must see queued insert, got=%+v", got)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("InTx: %v", err)
	}
	if key != domain.ProductKey(10001) {
		t.Fatalf("key: want=%s got=%s", domain.ProductKey(10001), key)
	}
	rec, err := st.Fetch(context.Background(), key)
	if err != nil || rec.(*domain.Product).Name != "fresh" {
		t.Fatalf("stored: got=%+v err=%v", rec, err)
	}
}

func TestProductRepoUpdate(t *testing.T) {
	st := testutil.SQLiteStore(t)
	repo, runner := setup(t, st, uow.PolicyCopy)
	err := runner.InTx(context.Background(), func(dbc dbctx.Context) error {
		p, err := repo.LoadByID(dbc, 1)
		if err != nil {
			return err
		}
		p.Name = "Gadget"
		return repo.Update(dbc, p)
	})
	if err != nil {
		t.Fatalf("InTx: %v", err)
	}
	got, err := repo.LoadByID(dbctx.FromContext(context.Background()), 1)
	if err != nil || got.Name != "Gadget" || got.CategoryID != 10 {
		t.Fatalf("updated row: got=%+v err=%v", got, err)
	}
}

func TestProductRepoWritesRequireScope(t *testing.T) {
	repo, _ := setup(t, testutil.MemoryStore(t), uow.PolicyCopy)
	dbc := dbctx.FromContext(context.Background())
	if _, err := repo.Insert(dbc, &domain.Product{Name: "x"}); !errs.IsCode(err, errs.CodeValidation) {
		t.Fatalf("insert: want validation got=%v", err)
	}
	if err := repo.Update(dbc, testutil.Widget()); !errs.IsCode(err, errs.CodeValidation) {
		t.Fatalf("update: want validation got=%v", err)
	}
}

func TestProductRepoInsertSharedKeepsOldKeyEntry(t *testing.T) {
	repo, runner := setup(t, testutil.MemoryStore(t), uow.PolicyShared)
	_ = runner.InTx(context.Background(), func(dbc dbctx.Context) error {
		p, _ := repo.LoadByID(dbc, 1)
		p.ID = 0
		key, err := repo.Insert(dbc, p)
		if err != nil {
			t.Fatalf("Insert: %v", err)
		}
		old, ok := dbc.Scope.Cache().Entry(domain.ProductKey(1))
		if !ok {
			t.Fatalf("entry for original key must remain")
		}
		if old.Record.PrimaryKey() != key.ID {
			t.Fatalf("shared: old entry should hold the re-keyed instance, pk=%d", old.Record.PrimaryKey())
		}
		return errors.New("discard")
	})
}

func TestProductRepoPostgresUpdateAndInsert(t *testing.T) {
	st := testutil.PostgresStore(t)
	ctx := context.Background()
	base, err := st.MaxID(ctx, domain.EntityProduct)
	if err != nil {
		t.Fatalf("max id: %v", err)
	}
	seeded := &domain.Product{ID: base + 1, CategoryID: 10, Name: "Widget"}
	testutil.SeedProducts(t, st, seeded)

	log := testutil.Logger(t)
	repo := NewProductRepo(st, sequence.NewCounter(base+1), log)
	runner := txrunner.NewRunner(txrunner.Deps{Store: st, Policy: uow.PolicyCopy, Log: log})

	var key domain.EntityKey
	err = runner.InTx(ctx, func(dbc dbctx.Context) error {
		p, err := repo.LoadByID(dbc, seeded.ID)
		if err != nil {
			return err
		}
		p.Name = "Gadget"
		if err := repo.Update(dbc, p); err != nil {
			return err
		}
		key, err = repo.Insert(dbc, &domain.Product{CategoryID: 888, Name: "Snapshot Copy"})
		return err
	})
	if err != nil {
		t.Fatalf("InTx: %v", err)
	}
	if key.ID != base+2 {
		t.Fatalf("inserted id: want=%d got=%d", base+2, key.ID)
	}
	rec, err := st.Fetch(ctx, domain.ProductKey(seeded.ID))
	if err != nil || rec.(*domain.Product).Name != "Gadget" {
		t.Fatalf("updated row: got=%+v err=%v", rec, err)
	}
	if _, err := st.Fetch(ctx, key); err != nil {
		t.Fatalf("inserted row: %v", err)
	}
}
