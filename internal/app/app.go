// Package app assembles and runs the storefront service.
package app

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"

	"github.com/partsunlimited/storefront/internal/cache"
	"github.com/partsunlimited/storefront/internal/config"
	"github.com/partsunlimited/storefront/internal/event"
	storehttp "github.com/partsunlimited/storefront/internal/handler/http"
	"github.com/partsunlimited/storefront/internal/pricing"
	"github.com/partsunlimited/storefront/internal/repository/postgres"
	redisrepo "github.com/partsunlimited/storefront/internal/repository/redis"
	"github.com/partsunlimited/storefront/internal/service"
	"github.com/partsunlimited/storefront/pkg/database"
	"github.com/partsunlimited/storefront/pkg/health"
	"github.com/partsunlimited/storefront/pkg/kafka"
)

//go:embed migrations/*.sql
var migrations embed.FS

// App is the assembled storefront service.
type App struct {
	cfg      *config.Config
	logger   *slog.Logger
	server   *http.Server
	pool     *pgxpool.Pool
	redis    *redis.Client
	producer *kafka.Producer
}

// New connects to the backing stores, runs migrations, and wires the service.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	pgCfg := cfg.Postgres()
	pool, err := database.NewPostgresPool(ctx, &pgCfg, logger)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}

	if err := database.RunMigrations(ctx, pool, migrations, "migrations", logger); err != nil {
		pool.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	redisClient, err := database.NewRedisClient(ctx, cfg.Redis())
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("connect redis: %w", err)
	}

	producer := kafka.NewProducer(kafka.DefaultProducerConfig(cfg.KafkaBrokers), logger)

	prometheus.MustRegister(database.NewPoolStatsCollector(pool, cfg.ServiceName))

	calculator := pricing.NewCalculator()
	publisher := event.NewPublisher(producer)

	cartRepo := redisrepo.NewCartRepository(redisClient, cfg.CartTTL)
	productRepo := postgres.NewProductRepository(pool)
	categoryRepo := postgres.NewCategoryRepository(pool)
	orderRepo := postgres.NewOrderRepository(pool)
	raincheckRepo := postgres.NewRaincheckRepository(pool)

	showcase := cache.NewShowcaseCache(productRepo, redisClient, cfg.ShowcaseTTL, logger)

	cartSvc := service.NewCartService(cartRepo, productRepo, calculator, publisher, logger)
	checkoutSvc := service.NewCheckoutService(cartRepo, productRepo, orderRepo, calculator, publisher, logger)
	catalogSvc := service.NewCatalogService(productRepo, categoryRepo, showcase, publisher, cfg.ShowRecommendations, logger)
	orderSvc := service.NewOrderService(orderRepo, calculator, logger)
	raincheckSvc := service.NewRaincheckService(raincheckRepo, productRepo, logger)

	healthHandler := health.NewHandler()
	healthHandler.Register("postgres", func(ctx context.Context) error {
		return pool.Ping(ctx)
	})
	healthHandler.Register("redis", func(ctx context.Context) error {
		return redisClient.Ping(ctx).Err()
	})
	healthHandler.Register("kafka", producer.Ping)

	router := storehttp.NewRouter(storehttp.RouterConfig{
		Cart:       storehttp.NewCartHandler(cartSvc, logger),
		Checkout:   storehttp.NewCheckoutHandler(checkoutSvc, logger),
		Catalog:    storehttp.NewCatalogHandler(catalogSvc, logger),
		Orders:     storehttp.NewOrderHandler(orderSvc, logger),
		Rainchecks: storehttp.NewRaincheckHandler(raincheckSvc, logger),
		Health:     healthHandler,
		Logger:     logger,
		SessionTTL: cfg.CartTTL,
	})

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       2 * time.Minute,
	}

	return &App{
		cfg:      cfg,
		logger:   logger,
		server:   server,
		pool:     pool,
		redis:    redisClient,
		producer: producer,
	}, nil
}

// Run serves HTTP until the context is canceled, then shuts down gracefully.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("http server listening", slog.String("addr", a.server.Addr))
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
	defer cancel()

	a.logger.Info("shutting down")
	if err := a.server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown http server: %w", err)
	}

	a.Close()
	return nil
}

// Close releases all backing connections.
func (a *App) Close() {
	if err := a.producer.Close(); err != nil {
		a.logger.Warn("close kafka producer", slog.String("error", err.Error()))
	}
	if err := a.redis.Close(); err != nil {
		a.logger.Warn("close redis client", slog.String("error", err.Error()))
	}
	a.pool.Close()
}
