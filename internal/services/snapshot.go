package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/yungbote/sessioncache/internal/data/repos"
	"github.com/yungbote/sessioncache/internal/data/txrunner"
	"github.com/yungbote/sessioncache/internal/domain"
	"github.com/yungbote/sessioncache/internal/observability"
	"github.com/yungbote/sessioncache/internal/platform/dbctx"
	"github.com/yungbote/sessioncache/internal/platform/logger"
)

// Strategy selects how a snapshot is derived from its source product.
type Strategy string

const (
	// StrategyInPlace mutates the resolved source instance and inserts it.
	StrategyInPlace Strategy = "in_place"
	// StrategyClone clones the source first and mutates only the clone.
	StrategyClone Strategy = "clone"
)

const DefaultStrategy = StrategyInPlace

const (
	SnapshotCategoryID int64 = 888
	SnapshotName             = "Snapshot Copy"
)

func (s Strategy) Valid() bool {
	return s == StrategyInPlace || s == StrategyClone
}

func ParseStrategy(raw string) (Strategy, error) {
	raw = strings.ToLower(strings.TrimSpace(raw))
	if raw == "" {
		return DefaultStrategy, nil
	}
	s := Strategy(raw)
	if !s.Valid() {
		return "", fmt.Errorf("unknown snapshot strategy %q (want in_place|clone)", raw)
	}
	return s, nil
}

type SnapshotService interface {
	// CreateSnapshot derives a new product from productID without touching
	// any instance another caller may hold.
	CreateSnapshot(ctx context.Context, productID int64) (domain.EntityKey, error)
	// CreateSnapshotInPlace mutates whatever instance LoadByID resolves.
	// Under a shared cache policy that instance is the one outer callers hold.
	CreateSnapshotInPlace(ctx context.Context, productID int64) (domain.EntityKey, error)
	Create(ctx context.Context, productID int64, strategy Strategy) (domain.EntityKey, error)
}

type snapshotService struct {
	log      *logger.Logger
	runner   txrunner.TxRunner
	products repos.ProductRepo
	metrics  *observability.Metrics
}

func NewSnapshotService(log *logger.Logger, runner txrunner.TxRunner, products repos.ProductRepo, metrics *observability.Metrics) SnapshotService {
	return &snapshotService{
		log:      log.With("service", "SnapshotService"),
		runner:   runner,
		products: products,
		metrics:  metrics,
	}
}

func (s *snapshotService) Create(ctx context.Context, productID int64, strategy Strategy) (domain.EntityKey, error) {
	switch strategy {
	case StrategyClone:
		return s.CreateSnapshot(ctx, productID)
	case StrategyInPlace, "":
		return s.CreateSnapshotInPlace(ctx, productID)
	default:
		return domain.EntityKey{}, fmt.Errorf("unknown snapshot strategy %q", strategy)
	}
}

func (s *snapshotService) CreateSnapshot(ctx context.Context, productID int64) (domain.EntityKey, error) {
	return s.create(ctx, productID, StrategyClone, func(src *domain.Product) *domain.Product {
		return src.Clone()
	})
}

func (s *snapshotService) CreateSnapshotInPlace(ctx context.Context, productID int64) (domain.EntityKey, error) {
	return s.create(ctx, productID, StrategyInPlace, func(src *domain.Product) *domain.Product {
		return src
	})
}

func (s *snapshotService) create(ctx context.Context, productID int64, strategy Strategy, derive func(*domain.Product) *domain.Product) (domain.EntityKey, error) {
	var key domain.EntityKey
	err := s.runner.InTxNamed(ctx, "snapshot.create", func(dbc dbctx.Context) error {
		src, err := s.products.LoadByID(dbc, productID)
		if err != nil {
			return err
		}
		snap := derive(src)
		id, err := s.products.NextID(dbc)
		if err != nil {
			return err
		}
		snap.ID = id
		snap.CategoryID = SnapshotCategoryID
		snap.Name = SnapshotName
		key, err = s.products.Insert(dbc, snap)
		return err
	})
	if err != nil {
		return domain.EntityKey{}, err
	}
	s.metrics.IncSnapshot(string(strategy))
	s.log.Debug("snapshot created", "source", productID, "snapshot", key.String(), "strategy", strategy)
	return key, nil
}
