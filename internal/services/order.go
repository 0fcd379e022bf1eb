package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/yungbote/sessioncache/internal/data/repos"
	"github.com/yungbote/sessioncache/internal/data/store"
	"github.com/yungbote/sessioncache/internal/data/txrunner"
	"github.com/yungbote/sessioncache/internal/data/uow"
	"github.com/yungbote/sessioncache/internal/domain/errs"
	"github.com/yungbote/sessioncache/internal/observability"
	"github.com/yungbote/sessioncache/internal/platform/dbctx"
	"github.com/yungbote/sessioncache/internal/platform/logger"
)

// PlaceOrderOptions overrides the configured defaults for one call. Zero
// values mean "use the default".
type PlaceOrderOptions struct {
	Policy   uow.Policy
	Strategy Strategy
}

type OrderService interface {
	PlaceOrder(ctx context.Context, productID int64, opts PlaceOrderOptions) (*DemoResult, error)
}

type OrderServiceDeps struct {
	Log             *logger.Logger
	Runner          txrunner.TxRunner
	Products        repos.ProductRepo
	Snapshots       SnapshotService
	Metrics         *observability.Metrics
	DefaultPolicy   uow.Policy
	DefaultStrategy Strategy
}

type orderService struct {
	log       *logger.Logger
	runner    txrunner.TxRunner
	products  repos.ProductRepo
	snapshots SnapshotService
	metrics   *observability.Metrics
	policy    uow.Policy
	strategy  Strategy
}

func NewOrderService(deps OrderServiceDeps) OrderService {
	if !deps.DefaultPolicy.Valid() {
		deps.DefaultPolicy = uow.DefaultPolicy
	}
	if !deps.DefaultStrategy.Valid() {
		deps.DefaultStrategy = DefaultStrategy
	}
	return &orderService{
		log:       deps.Log.With("service", "OrderService"),
		runner:    deps.Runner,
		products:  deps.Products,
		snapshots: deps.Snapshots,
		metrics:   deps.Metrics,
		policy:    deps.DefaultPolicy,
		strategy:  deps.DefaultStrategy,
	}
}

// PlaceOrder loads the product, keeps the reference, then lets the nested
// snapshot call run in the same scope and reports whether the retained
// reference changed underneath it.
func (s *orderService) PlaceOrder(ctx context.Context, productID int64, opts PlaceOrderOptions) (*DemoResult, error) {
	const op = "OrderService.PlaceOrder"
	if productID <= 0 {
		return nil, errs.NewError(errs.CodeValidation, op, fmt.Sprintf("invalid product id %d", productID), nil)
	}
	policy := s.policy
	if opts.Policy != "" {
		if !opts.Policy.Valid() {
			return nil, errs.NewError(errs.CodeValidation, op, fmt.Sprintf("unknown cache policy %q", opts.Policy), nil)
		}
		policy = opts.Policy
	}
	strategy := s.strategy
	if opts.Strategy != "" {
		if !opts.Strategy.Valid() {
			return nil, errs.NewError(errs.CodeValidation, op, fmt.Sprintf("unknown snapshot strategy %q", opts.Strategy), nil)
		}
		strategy = opts.Strategy
	}

	var res *DemoResult
	err := s.runner.InTxNamed(uow.WithPolicy(ctx, policy), "orders.place", func(dbc dbctx.Context) error {
		p, err := s.products.LoadByID(dbc, productID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return errs.NewError(errs.CodeNotFound, op, fmt.Sprintf("product %d does not exist", productID), err)
			}
			return err
		}
		before := p.View()

		key, err := s.snapshots.Create(dbc.Ctx, productID, strategy)
		if err != nil {
			return err
		}

		res = newDemoResult(before, p.View())
		res.Policy = string(dbc.Scope.Policy())
		res.Strategy = string(strategy)
		res.SnapshotID = key.ID
		return nil
	})
	if err != nil {
		return nil, err
	}

	if res.DataCorrupted {
		s.metrics.IncDataCorruption(res.Policy, res.Strategy)
		s.log.Warn("retained product changed during nested snapshot",
			"product_id", productID,
			"policy", res.Policy,
			"strategy", res.Strategy,
			"before", res.Before(),
			"after", res.After(),
		)
	}
	return res, nil
}
