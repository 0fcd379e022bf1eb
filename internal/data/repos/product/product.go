package product

import (
	"fmt"

	"github.com/yungbote/sessioncache/internal/data/sequence"
	"github.com/yungbote/sessioncache/internal/data/store"
	"github.com/yungbote/sessioncache/internal/domain"
	"github.com/yungbote/sessioncache/internal/domain/errs"
	"github.com/yungbote/sessioncache/internal/platform/dbctx"
	"github.com/yungbote/sessioncache/internal/platform/logger"
)

type ProductRepo interface {
	LoadByID(dbc dbctx.Context, id int64) (*domain.Product, error)
	Insert(dbc dbctx.Context, p *domain.Product) (domain.EntityKey, error)
	Update(dbc dbctx.Context, p *domain.Product) error
	NextID(dbc dbctx.Context) (int64, error)
}

type productRepo struct {
	store store.RecordStore
	seq   sequence.Sequence
	log   *logger.Logger
}

func NewProductRepo(st store.RecordStore, seq sequence.Sequence, baseLog *logger.Logger) ProductRepo {
	repoLog := baseLog.With("repo", "ProductRepo")
	return &productRepo{store: st, seq: seq, log: repoLog}
}

// LoadByID resolves through the scope's identity cache. Outside a scope it
// reads the store directly and every call returns a fresh instance.
func (r *productRepo) LoadByID(dbc dbctx.Context, id int64) (*domain.Product, error) {
	if id <= 0 {
		return nil, errs.NewError(errs.CodeValidation, "ProductRepo.LoadByID", fmt.Sprintf("invalid id %d", id), nil)
	}
	key := domain.ProductKey(id)

	var (
		rec domain.Record
		err error
	)
	if dbc.InScope() {
		rec, err = dbc.Scope.Resolve(dbc.Context(), key)
	} else {
		rec, err = r.store.Fetch(dbc.Context(), key)
	}
	if err != nil {
		return nil, err
	}
	p, ok := rec.(*domain.Product)
	if !ok {
		return nil, errs.NewError(errs.CodeInternal, "ProductRepo.LoadByID", fmt.Sprintf("%s resolved to %T", key, rec), nil)
	}
	return p, nil
}

// Insert queues p for insertion and registers it under its key. A zero ID is
// filled from the sequence; a pre-assigned ID is kept.
func (r *productRepo) Insert(dbc dbctx.Context, p *domain.Product) (domain.EntityKey, error) {
	const op = "ProductRepo.Insert"
	if err := requireScope(dbc, op); err != nil {
		return domain.EntityKey{}, err
	}
	if p == nil {
		return domain.EntityKey{}, errs.NewError(errs.CodeValidation, op, "nil product", nil)
	}
	if p.ID < 0 {
		return domain.EntityKey{}, errs.NewError(errs.CodeValidation, op, fmt.Sprintf("invalid id %d", p.ID), nil)
	}
	if p.ID == 0 {
		id, err := r.NextID(dbc)
		if err != nil {
			return domain.EntityKey{}, err
		}
		p.ID = id
	}
	key := domain.ProductKey(p.ID)
	if err := dbc.Scope.Enqueue(store.OpInsert, key, p); err != nil {
		return domain.EntityKey{}, err
	}
	if err := dbc.Scope.Register(key, p); err != nil {
		return domain.EntityKey{}, err
	}
	r.log.Debug("product insert queued", "key", key.String(), "scope", dbc.Scope.ID())
	return key, nil
}

// Update queues a full-row update for p's current key.
func (r *productRepo) Update(dbc dbctx.Context, p *domain.Product) error {
	const op = "ProductRepo.Update"
	if err := requireScope(dbc, op); err != nil {
		return err
	}
	if p == nil || p.ID <= 0 {
		return errs.NewError(errs.CodeValidation, op, "product with a positive id required", nil)
	}
	key := domain.ProductKey(p.ID)
	if err := dbc.Scope.Enqueue(store.OpUpdate, key, p); err != nil {
		return err
	}
	return dbc.Scope.Register(key, p)
}

func (r *productRepo) NextID(dbc dbctx.Context) (int64, error) {
	if r.seq == nil {
		return 0, errs.NewError(errs.CodeInternal, "ProductRepo.NextID", "no sequence configured", nil)
	}
	id, err := r.seq.Next(dbc.Context())
	if err != nil {
		return 0, errs.Wrap(errs.CodeRetryable, "ProductRepo.NextID", err)
	}
	return id, nil
}

func requireScope(dbc dbctx.Context, op string) error {
	if dbc.InScope() {
		return nil
	}
	return errs.NewError(errs.CodeValidation, op, "write requires an active transaction scope", nil)
}
