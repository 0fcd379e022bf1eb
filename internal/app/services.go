package app

import (
	"github.com/yungbote/sessioncache/internal/data/txrunner"
	"github.com/yungbote/sessioncache/internal/observability"
	"github.com/yungbote/sessioncache/internal/platform/logger"
	"github.com/yungbote/sessioncache/internal/services"
)

type Services struct {
	Snapshots services.SnapshotService
	Orders    services.OrderService
}

func wireServices(cfg Config, log *logger.Logger, runner txrunner.TxRunner, reposet Repos, metrics *observability.Metrics) Services {
	log.Info("Wiring services...")
	snapshots := services.NewSnapshotService(log, runner, reposet.Product, metrics)
	orders := services.NewOrderService(services.OrderServiceDeps{
		Log:             log,
		Runner:          runner,
		Products:        reposet.Product,
		Snapshots:       snapshots,
		Metrics:         metrics,
		DefaultPolicy:   cfg.CachePolicy,
		DefaultStrategy: cfg.SnapshotStrategy,
	})
	return Services{Snapshots: snapshots, Orders: orders}
}
