// Package app wires together all dependencies and runs the browse service.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/berkaykaya07/BerkayKayaCase/internal/browse"
	"github.com/berkaykaya07/BerkayKayaCase/internal/catalog"
	"github.com/berkaykaya07/BerkayKayaCase/internal/checkout"
	"github.com/berkaykaya07/BerkayKayaCase/internal/config"
	"github.com/berkaykaya07/BerkayKayaCase/internal/event"
	handler "github.com/berkaykaya07/BerkayKayaCase/internal/handler/http"
	"github.com/berkaykaya07/BerkayKayaCase/internal/store"
	"github.com/berkaykaya07/BerkayKayaCase/internal/store/memstore"
	"github.com/berkaykaya07/BerkayKayaCase/internal/store/redisstore"
	"github.com/berkaykaya07/BerkayKayaCase/pkg/health"
	"github.com/berkaykaya07/BerkayKayaCase/pkg/httpclient"
	pkgkafka "github.com/berkaykaya07/BerkayKayaCase/pkg/kafka"
	"github.com/berkaykaya07/BerkayKayaCase/pkg/tracing"
)

// App holds the running components of the browse service.
type App struct {
	cfg             *config.Config
	logger          *slog.Logger
	rdb             *redis.Client
	producer        *pkgkafka.Producer
	coordinator     *browse.Coordinator
	httpServer      *http.Server
	tracingShutdown func(context.Context) error
}

// NewApp creates a new application instance, initializing all dependencies.
func NewApp(cfg *config.Config, logger *slog.Logger) (*App, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Tracing.
	tracingShutdown, err := tracing.InitTracer(ctx, tracing.Config{
		ServiceName:    "browse-service",
		ServiceVersion: "0.1.0",
		Environment:    cfg.Environment,
		OTLPEndpoint:   cfg.OTELEndpoint,
		SampleRate:     cfg.OTELSampleRate,
		Enabled:        cfg.TracingEnabled,
	})
	if err != nil {
		return nil, fmt.Errorf("init tracer: %w", err)
	}

	// Catalog HTTP client, optionally behind a circuit breaker.
	clientCfg := httpclient.DefaultConfig()
	clientCfg.Timeout = cfg.CatalogTimeout()
	baseClient := httpclient.New(clientCfg)

	var doer httpclient.Doer = baseClient
	if cfg.BreakerEnabled {
		doer = httpclient.NewCircuitBreakerClient(
			baseClient,
			httpclient.DefaultCircuitBreakerConfig("catalog"),
			logger,
		)
	}

	catalogClient, err := catalog.NewClient(cfg.CatalogBaseURL, doer, logger)
	if err != nil {
		return nil, fmt.Errorf("create catalog client: %w", err)
	}

	// Persistent store backend.
	var (
		backend store.Backend
		rdb     *redis.Client
	)
	switch cfg.StoreBackend {
	case "redis":
		rdb = redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPass,
			DB:       cfg.RedisDB,
		})
		if err := rdb.Ping(ctx).Err(); err != nil {
			return nil, fmt.Errorf("connect to redis: %w", err)
		}
		logger.Info("connected to Redis",
			slog.String("addr", cfg.RedisAddr),
			slog.Int("db", cfg.RedisDB),
		)
		backend = redisstore.New(rdb, cfg.StoreKeyPrefix)
	case "memory":
		backend = memstore.New()
		logger.Info("using in-memory store backend")
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.StoreBackend)
	}

	st := store.New(ctx, backend, logger)

	// Kafka producer, optional.
	var (
		producer  *pkgkafka.Producer
		publisher event.Publisher = event.NoopPublisher{}
	)
	if cfg.KafkaEnabled {
		producer = pkgkafka.NewProducer(pkgkafka.DefaultProducerConfig(cfg.KafkaBrokers), logger)
		publisher = event.NewKafkaPublisher(producer, logger)
		logger.Info("kafka producer initialized", slog.Any("brokers", cfg.KafkaBrokers))
	}

	// Core services.
	coordinator := browse.NewCoordinator(catalogClient, browse.Config{
		PageSize:       cfg.PageSize,
		SearchDebounce: cfg.SearchDebounce(),
	}, logger)

	checkoutService := checkout.NewService(st, publisher, cfg.TaxRate, logger)

	// Health checks.
	healthHandler := health.NewHandler()
	healthHandler.Register("catalog", func(ctx context.Context) error {
		_, err := catalogClient.Categories(ctx)
		return err
	})
	if rdb != nil {
		healthHandler.Register("redis", func(ctx context.Context) error {
			return rdb.Ping(ctx).Err()
		})
	}
	if producer != nil {
		healthHandler.Register("kafka", producer.Ping)
	}

	router := handler.NewRouter(handler.Deps{
		Coordinator: coordinator,
		Catalog:     catalogClient,
		Store:       st,
		Checkout:    checkoutService,
		Publisher:   publisher,
		Health:      healthHandler,
		Logger:      logger,
	})

	httpServer := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 0, // SSE streams write indefinitely
		IdleTimeout:  60 * time.Second,
	}

	return &App{
		cfg:             cfg,
		logger:          logger,
		rdb:             rdb,
		producer:        producer,
		coordinator:     coordinator,
		httpServer:      httpServer,
		tracingShutdown: tracingShutdown,
	}, nil
}

// Run starts the HTTP server, issues the initial catalog load, and blocks
// until the context is canceled.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)

	a.coordinator.LoadInitial()

	go func() {
		a.logger.Info("starting HTTP server",
			slog.String("addr", a.httpServer.Addr),
		)
		if err := a.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- fmt.Errorf("http server: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		a.logger.Info("shutdown signal received")
	case err := <-errCh:
		return err
	}

	return a.Shutdown()
}

// Shutdown gracefully stops all components.
func (a *App) Shutdown() error {
	a.logger.Info("shutting down application...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := a.httpServer.Shutdown(shutdownCtx); err != nil {
		a.logger.Error("http server shutdown error", slog.String("error", err.Error()))
	}

	a.coordinator.Close()

	if a.producer != nil {
		if err := a.producer.Close(); err != nil {
			a.logger.Error("kafka producer close error", slog.String("error", err.Error()))
		}
	}

	if a.rdb != nil {
		if err := a.rdb.Close(); err != nil {
			a.logger.Error("redis close error", slog.String("error", err.Error()))
		}
	}

	if err := a.tracingShutdown(shutdownCtx); err != nil {
		a.logger.Error("tracer shutdown error", slog.String("error", err.Error()))
	}

	a.logger.Info("application shutdown complete")
	return nil
}
