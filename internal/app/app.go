package app

import (
	"context"
	"fmt"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/yungbote/sessioncache/internal/data/store"
	"github.com/yungbote/sessioncache/internal/data/txrunner"
	apphttp "github.com/yungbote/sessioncache/internal/http"
	httpH "github.com/yungbote/sessioncache/internal/http/handlers"
	"github.com/yungbote/sessioncache/internal/observability"
	"github.com/yungbote/sessioncache/internal/platform/logger"
)

type App struct {
	Log      *logger.Logger
	Cfg      Config
	Store    store.RecordStore
	Metrics  *observability.Metrics
	Runner   *txrunner.Runner
	Repos    Repos
	Services Services
	Server   *apphttp.Server

	closers      []func() error
	otelShutdown func(context.Context) error
}

func New(ctx context.Context) (*App, error) {
	logMode := os.Getenv("LOG_MODE")
	if logMode == "" {
		logMode = "development"
	}
	log, err := logger.New(logMode)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	log.Info("Loading configuration...")
	cfg, err := LoadConfig(log)
	if err != nil {
		log.Sync()
		return nil, err
	}

	return NewWithConfig(ctx, cfg, log)
}

// NewWithConfig wires every component from an already loaded config.
func NewWithConfig(ctx context.Context, cfg Config, log *logger.Logger) (*App, error) {
	a := &App{Log: log, Cfg: cfg}
	a.otelShutdown = observability.InitOTel(ctx, log, cfg.Otel)
	a.Metrics = observability.Init(log, cfg.MetricsEnabled)

	st, err := openStore(cfg, log)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("open %s store: %w", cfg.StoreDriver, err)
	}
	a.Store = st
	a.closers = append(a.closers, st.Close)

	seq, closeSeq, err := openSequence(ctx, cfg, st)
	if err != nil {
		a.Close()
		return nil, err
	}
	if closeSeq != nil {
		a.closers = append(a.closers, closeSeq)
	}

	a.Runner = txrunner.NewRunner(txrunner.Deps{
		Store:                   st,
		Policy:                  cfg.CachePolicy,
		Log:                     log,
		Hooks:                   txrunner.NewObservabilityHooks(a.Metrics),
		RollbackOnlyOnJoinError: cfg.RollbackOnlyOnJoinError,
	})
	a.Repos = wireRepos(st, seq, log)
	a.Services = wireServices(cfg, log, a.Runner, a.Repos, a.Metrics)

	if cfg.SeedDemoData {
		if err := seedDemoData(ctx, a.Runner, a.Repos.Product, log); err != nil {
			a.Close()
			return nil, fmt.Errorf("seed demo data: %w", err)
		}
	}

	a.Server = apphttp.NewServer(apphttp.RouterConfig{
		Log:            log,
		ServiceName:    otelServiceName(cfg),
		CORSOrigins:    cfg.CORSOrigins,
		Metrics:        a.Metrics,
		DemoHandler:    httpH.NewDemoHandler(a.Services.Orders),
		HealthHandler:  httpH.NewHealthHandler(st),
		MetricsHandler: httpH.NewMetricsHandler(a.Metrics),
	})

	log.Info("app wired",
		"store", cfg.StoreDriver,
		"sequence", cfg.SequenceDriver,
		"cache_policy", cfg.CachePolicy,
		"snapshot_strategy", cfg.SnapshotStrategy,
	)
	return a, nil
}

func otelServiceName(cfg Config) string {
	if !cfg.Otel.Enabled {
		return ""
	}
	return cfg.Otel.ServiceName
}

// Run serves HTTP until ctx is cancelled, then shuts the server down.
func (a *App) Run(ctx context.Context) error {
	if a == nil || a.Server == nil {
		return fmt.Errorf("app not initialized")
	}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		a.Log.Info("http server listening", "addr", a.Cfg.HTTPAddr)
		return a.Server.Run(a.Cfg.HTTPAddr)
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		a.Log.Info("http server shutting down")
		return a.Server.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

func (a *App) Close() {
	if a == nil {
		return
	}
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			a.Log.Warn("close failed", "error", err)
		}
	}
	a.closers = nil
	if a.otelShutdown != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		_ = a.otelShutdown(ctx)
		cancel()
	}
	a.Log.Sync()
}
