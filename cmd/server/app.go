package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	httpAdapter "github.com/iho/ledgersync/internal/adapter/http"
	"github.com/iho/ledgersync/internal/adapter/http/handler"
	"github.com/iho/ledgersync/internal/adapter/http/middleware"
	postgresRepo "github.com/iho/ledgersync/internal/adapter/repository/postgres"
	redisRepo "github.com/iho/ledgersync/internal/adapter/repository/redis"
	sqliteRepo "github.com/iho/ledgersync/internal/adapter/repository/sqlite"
	"github.com/iho/ledgersync/internal/domain"
	"github.com/iho/ledgersync/internal/infrastructure/auth"
	"github.com/iho/ledgersync/internal/infrastructure/cache"
	"github.com/iho/ledgersync/internal/infrastructure/config"
	"github.com/iho/ledgersync/internal/infrastructure/erp"
	"github.com/iho/ledgersync/internal/infrastructure/metrics"
	"github.com/iho/ledgersync/internal/infrastructure/postgres"
	"github.com/iho/ledgersync/internal/infrastructure/redis"
	"github.com/iho/ledgersync/internal/infrastructure/syncqueue"
	"github.com/iho/ledgersync/internal/usecase"
)

// app is the wired server: the HTTP handler plus the resources and
// background loops it owns.
type app struct {
	Handler http.Handler

	cfg         *config.Config
	logger      zerolog.Logger
	pool        *pgxpool.Pool
	redis       *goredis.Client
	sqlite      *sql.DB
	dispatcher  *syncqueue.Dispatcher
	rateLimiter *middleware.RateLimiter

	wg sync.WaitGroup
}

func newApp(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (a *app, err error) {
	a = &app{cfg: cfg, logger: logger}
	defer func() {
		if err != nil {
			a.Close()
		}
	}()

	poolCfg := postgres.PoolConfig{
		DatabaseURL:    cfg.DatabaseURL,
		MaxConns:       cfg.DatabaseMaxConns,
		MinConns:       cfg.DatabaseMinConns,
		ConnectTimeout: cfg.DatabaseTimeout,
	}
	if logger.GetLevel() <= zerolog.DebugLevel {
		poolCfg.Logger = &logger
	}
	a.pool, err = postgres.NewPool(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to postgres: %w", err)
	}
	logger.Info().Msg("connected to postgres")

	if cfg.RedisURL != "" {
		a.redis, err = redis.NewClient(ctx, redis.Options{
			URL:      cfg.RedisURL,
			PoolSize: cfg.RedisPoolSize,
			Timeout:  cfg.RedisTimeout,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to connect to redis: %w", err)
		}
		logger.Info().Msg("connected to redis")
	}

	mappings, err := a.mappingStore()
	if err != nil {
		return nil, err
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.New(registry)

	client := erp.New(erp.Config{
		URL:        cfg.ERPURL,
		Database:   cfg.ERPDatabase,
		Username:   cfg.ERPUsername,
		Password:   cfg.ERPPassword,
		Timeout:    cfg.ERPTimeout,
		MaxRetries: cfg.ERPMaxRetries,
		Rate:       cfg.ERPRateLimit,
		Burst:      cfg.ERPRateBurst,
	}, m, logger.With().Str("component", "erp").Logger())

	lookup := usecase.NewLookup(mappings, client, cache.NewReferenceCache(cfg.ReferenceCacheTTL), m, usecase.LookupDefaults{
		CompanyID:           cfg.DefaultCompanyID,
		CurrencyID:          cfg.DefaultCurrencyID,
		JournalID:           cfg.DefaultJournalID,
		ClearingAccountID:   cfg.DefaultClearingID,
		AnalyticPlanID:      cfg.DefaultPlanID,
		ClearingAccountCode: cfg.ClearingAccountCode,
	}, logger)
	coordinator := usecase.NewCoordinator(client, mappings, lookup, m, logger.With().Str("component", "coordinator").Logger())

	var (
		scheduler usecase.SyncScheduler
		tasks     usecase.SyncTaskRepository
	)
	switch cfg.SyncMode {
	case config.SyncModeAsync:
		tasks = postgresRepo.NewSyncTaskRepository(a.pool)
		a.dispatcher = syncqueue.NewDispatcher(syncqueue.Config{
			Repo:            tasks,
			Processor:       coordinator,
			Logger:          logger,
			Workers:         cfg.SyncWorkers,
			BatchSize:       cfg.SyncBatchSize,
			Interval:        cfg.SyncPollInterval,
			Lease:           cfg.SyncLease,
			Retention:       cfg.SyncRetention,
			CleanupInterval: cfg.SyncCleanupInterval,
		})
		scheduler = syncqueue.NewOutboxScheduler(tasks, a.dispatcher, cfg.SyncDrainTimeout, logger)
	default:
		scheduler = usecase.NewInlineScheduler(coordinator)
	}

	retryPolicy := postgresRepo.DefaultRetryPolicy()
	retryPolicy.MaxRetries = cfg.DatabaseRetries

	deps := usecase.SyncDeps{
		TxManager:   postgresRepo.NewTxManager(a.pool),
		Scheduler:   scheduler,
		Coordinator: coordinator,
		Mappings:    mappings,
		IDGen:       postgresRepo.NewULIDGenerator(),
		Retrier:     postgresRepo.NewRetrier(retryPolicy, logger),
		Logger:      logger,
	}

	health := handler.NewHealthHandler().WithCheck("postgres", a.pool.Ping)
	if a.redis != nil {
		health = health.WithCheck("redis", func(ctx context.Context) error { return redis.Ping(ctx, a.redis) })
	}
	if a.sqlite != nil {
		health = health.WithCheck("sqlite", a.sqlite.PingContext)
	}

	a.rateLimiter = middleware.NewRateLimiter(cfg.HTTPRateLimit, cfg.HTTPRateBurst).WithMetrics(m)

	routerCfg := httpAdapter.RouterConfig{
		Resources:      resources(deps, a.pool),
		SyncHandler:    handler.NewSyncHandler(usecase.NewSyncAdminUseCase(mappings, tasks, logger)),
		HealthHandler:  health,
		IdempotencyTTL: cfg.IdempotencyTTL,
		RateLimiter:    a.rateLimiter,
		Metrics:        m,
		MetricsHandler: promhttp.HandlerFor(registry, promhttp.HandlerOpts{Registry: registry}),
		Logger:         logger,
	}
	if a.redis != nil {
		routerCfg.IdempotencyStore = redisRepo.NewIdempotencyStore(a.redis)
	}
	if cfg.AuthEnabled {
		routerCfg.JWTManager = auth.NewJWTManager(cfg.JWTSecret, 24*time.Hour)
	}
	a.Handler = httpAdapter.NewRouter(routerCfg)

	return a, nil
}

// mappingStore opens the configured mapping store, fronted by the Redis
// cache when Redis is available.
func (a *app) mappingStore() (usecase.MappingStore, error) {
	var store usecase.MappingStore

	switch a.cfg.MappingDriver {
	case config.MappingDriverSQLite:
		db, err := sqliteRepo.Open(a.cfg.SQLitePath)
		if err != nil {
			return nil, fmt.Errorf("failed to open sqlite mapping store: %w", err)
		}
		a.sqlite = db
		store = sqliteRepo.NewMappingRepository(db)
		a.logger.Info().Str("path", a.cfg.SQLitePath).Msg("using sqlite mapping store")
	default:
		store = postgresRepo.NewMappingRepository(a.pool)
	}

	if a.redis != nil && a.cfg.MappingCacheTTL > 0 {
		store = redisRepo.NewCachedMappingStore(store, a.redis, a.cfg.MappingCacheTTL, a.logger)
	}
	return store, nil
}

// resources mounts the eight synchronized entity types.
func resources(deps usecase.SyncDeps, db postgresRepo.DBTX) []httpAdapter.Resource {
	return []httpAdapter.Resource{
		resource[domain.Account](deps, "accounts", "account", postgresRepo.NewAccountRepository(db)),
		resource[domain.Category](deps, "categories", "category", postgresRepo.NewCategoryRepository(db)),
		resource[domain.Portfolio](deps, "portfolios", "portfolio", postgresRepo.NewPortfolioRepository(db)),
		resource[domain.PaymentFlow](deps, "payment-flows", "payment flow", postgresRepo.NewPaymentFlowRepository(db)),
		resource[domain.Budget](deps, "budgets", "budget", postgresRepo.NewBudgetRepository(db)),
		resource[domain.BudgetLine](deps, "budget-lines", "budget line", postgresRepo.NewBudgetLineRepository(db)),
		resource[domain.ForecastEvent](deps, "forecast-events", "forecast event", postgresRepo.NewForecastEventRepository(db)),
		resource[domain.Transaction](deps, "transactions", "transaction", postgresRepo.NewTransactionRepository(db)),
	}
}

func resource[E any, T interface {
	*E
	domain.Entity
}](deps usecase.SyncDeps, path, name string, repo usecase.EntityRepository[T]) httpAdapter.Resource {
	return httpAdapter.Resource{
		Path:    path,
		Handler: handler.NewEntityHandler[E, T](usecase.NewEntityUseCase[T](deps, repo), name),
	}
}

// StartBackground starts the sync dispatcher when running in async mode.
func (a *app) StartBackground(ctx context.Context) {
	if a.dispatcher != nil {
		a.wg.Add(1)
		go func() {
			defer a.wg.Done()
			if err := a.dispatcher.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
				a.logger.Error().Err(err).Msg("sync dispatcher stopped")
			}
		}()
	}
}

// Wait blocks until the background loops exit or ctx expires.
func (a *app) Wait(ctx context.Context) {
	done := make(chan struct{})
	go func() {
		a.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-ctx.Done():
		a.logger.Warn().Msg("background loops did not stop in time")
	}
}

// Close releases the connections opened by newApp.
func (a *app) Close() {
	if a.sqlite != nil {
		a.sqlite.Close()
	}
	if a.redis != nil {
		a.redis.Close()
	}
	if a.pool != nil {
		a.pool.Close()
	}
}
