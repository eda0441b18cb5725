package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/okian/burden/internal/adapters/http/api"
	"github.com/okian/burden/internal/adapters/http/site"
	"github.com/okian/burden/internal/adapters/http/swagger"
	"github.com/okian/burden/internal/adapters/render/vegalite"
	"github.com/okian/burden/internal/adapters/repository"
	"github.com/okian/burden/internal/adapters/source"
	app "github.com/okian/burden/internal/app"
	"github.com/okian/burden/internal/config"
	"github.com/okian/burden/internal/domain/model"
	"github.com/okian/burden/internal/domain/view"
	"github.com/okian/burden/pkg/logger"
	"github.com/okian/burden/pkg/metrics"
)

// HTTP server timeout constants.
const (
	readTimeout           = 10 * time.Second
	writeTimeout          = 30 * time.Second
	idleTimeout           = 60 * time.Second
	readHeaderTimeout     = 5 * time.Second
	shutdownTimeout       = 30 * time.Second
	systemMetricsInterval = 10 * time.Second
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)

	if err := run(ctx); err != nil {
		stop()
		_, _ = os.Stderr.WriteString("burden: " + err.Error() + "\n")
		os.Exit(1)
	}
	stop()
}

func run(ctx context.Context) error {
	cfg, err := config.Load(ctx)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	if err := logger.Init(logger.WithFormat(cfg.LogFormat)); err != nil {
		return fmt.Errorf("init logging: %w", err)
	}
	defer func() { _ = logger.Sync() }()
	log := logger.Get()

	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		log.Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	ds, err := loadDataset(ctx, cfg)
	if err != nil {
		log.Error(ctx, "failed to load dataset", logger.Error(err))
		return err
	}
	log.Info(ctx, "dataset loaded",
		logger.Int("records", len(ds.Records)),
		logger.Int("shapes", len(ds.Shapes)),
		logger.Int("codes", len(ds.Codes)),
		logger.Int("dropped_incomplete", ds.Stats.DroppedIncomplete),
		logger.Int("dropped_duplicate", ds.Stats.DroppedDuplicate),
		logger.String("drop_policy", string(ds.Policy)),
	)

	store, closeStore, err := newSessionStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	svc, err := newService(cfg, ds, store)
	if err != nil {
		return err
	}
	if cfg.WarmupWorkers > 0 {
		if err := svc.Warmup(ctx); err != nil {
			log.Warn(ctx, "join cache warmup incomplete", logger.Error(err))
		}
	}

	go startSystemMetricsUpdater(ctx)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           newMux(ctx, svc),
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info(ctx, "starting HTTP server", logger.String("addr", cfg.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
	case <-ctx.Done():
	}
	log.Info(ctx, "shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error(ctx, "server shutdown failed", logger.Error(err))
	}

	log.Info(ctx, "server stopped")
	return nil
}

func loadDataset(ctx context.Context, cfg *config.Config) (*model.Dataset, error) {
	start := time.Now()
	ds, err := source.LoadDataset(ctx, source.NewFetcher(source.WithTimeout(cfg.FetchTimeout())), source.Sources{
		Burden:         cfg.DataPath,
		CountryCodes:   cfg.CountryCodesURL,
		Topology:       cfg.TopologyURL,
		TopologyObject: cfg.TopologyObject,
		Policy:         cfg.Policy(),
	})
	if err != nil {
		return nil, err
	}
	metrics.RecordFetchLatency("dataset", float64(time.Since(start).Milliseconds()))
	return ds, nil
}

// newSessionStore builds the configured session backend and a func releasing it.
func newSessionStore(ctx context.Context, cfg *config.Config) (repository.Store, func(), error) {
	if cfg.SessionBackend == config.SessionBackendRedis {
		client, err := repository.NewRedisClient(ctx, cfg.RedisURL)
		if err != nil {
			return nil, func() {}, fmt.Errorf("redis: %w", err)
		}
		store := repository.NewRedisStore(client, repository.WithTTL(cfg.SessionTTL()))
		return store, func() { _ = client.Close() }, nil
	}
	store, err := repository.NewMemoryStore(repository.WithCapacity(cfg.SessionCacheSize))
	if err != nil {
		return nil, func() {}, err
	}
	return store, func() {}, nil
}

func newService(cfg *config.Config, ds *model.Dataset, store repository.Store) (*app.Service, error) {
	return app.New(ds,
		app.WithLogger(logger.Named("service")),
		app.WithSessionStore(store),
		app.WithJoinCacheSize(cfg.JoinCacheSize),
		app.WithWarmupWorkers(cfg.WarmupWorkers),
		app.WithViewOptions(view.WithTopN(cfg.TopN)),
		app.WithVegaLiteOptions(vegalite.WithTopologyObject(cfg.TopologyObject)),
	)
}

func newMux(ctx context.Context, svc *app.Service) *http.ServeMux {
	mux := http.NewServeMux()
	swagger.Register(ctx, mux)
	api.NewServer(svc, svc).Register(ctx, mux)
	site.Register(ctx, mux)
	return mux
}

// startSystemMetricsUpdater samples runtime gauges until ctx is done.
func startSystemMetricsUpdater(ctx context.Context) {
	ticker := time.NewTicker(systemMetricsInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			metrics.CollectRuntime()
		}
	}
}
