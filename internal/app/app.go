package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"github.com/sony/gobreaker/v2"

	"github.com/utafrali/variantcatalog/internal/catalog"
	"github.com/utafrali/variantcatalog/internal/client"
	"github.com/utafrali/variantcatalog/internal/combination"
	"github.com/utafrali/variantcatalog/internal/config"
	"github.com/utafrali/variantcatalog/internal/event"
	handler "github.com/utafrali/variantcatalog/internal/handler/http"
	"github.com/utafrali/variantcatalog/internal/repository/postgres"
	rediscache "github.com/utafrali/variantcatalog/internal/repository/redis"
	"github.com/utafrali/variantcatalog/internal/resolver"
	"github.com/utafrali/variantcatalog/internal/service"
	"github.com/utafrali/variantcatalog/internal/variant"
	"github.com/utafrali/variantcatalog/migrations"
	"github.com/utafrali/variantcatalog/pkg/database"
	"github.com/utafrali/variantcatalog/pkg/health"
	"github.com/utafrali/variantcatalog/pkg/httpclient"
	pkgkafka "github.com/utafrali/variantcatalog/pkg/kafka"
	"github.com/utafrali/variantcatalog/pkg/middleware"
	"github.com/utafrali/variantcatalog/pkg/tracing"
)

// App wires together all dependencies and runs the variant service.
type App struct {
	cfg            *config.Config
	logger         *slog.Logger
	pool           *pgxpool.Pool
	redis          *redis.Client
	producer       *pkgkafka.Producer
	dlq            *pkgkafka.DLQProducer
	productDeleted *pkgkafka.Consumer
	httpServer     *http.Server
	tracerShutdown func(context.Context) error
}

// NewApp creates a new application instance, initializing all dependencies.
func NewApp(cfg *config.Config, logger *slog.Logger) (*App, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	tracerShutdown, err := tracing.InitTracer(ctx, cfg.Tracing())
	if err != nil {
		return nil, fmt.Errorf("init tracer: %w", err)
	}

	// The catalog is static; build it before touching the network so a bad
	// seed fails fast.
	registry, err := catalog.New(catalog.DefaultSeed())
	if err != nil {
		return nil, fmt.Errorf("build catalog: %w", err)
	}
	logger.Info("catalog loaded",
		slog.Int("categories", len(registry.ListCategories())),
		slog.Int("product_types", len(registry.ListProductTypes())),
		slog.Int("variant_templates", len(registry.ListVariantTemplates())),
	)

	pool, err := database.NewPostgresPool(ctx, cfg.Postgres(), logger)
	if err != nil {
		return nil, fmt.Errorf("connect to postgres: %w", err)
	}
	logger.Info("connected to PostgreSQL",
		slog.String("host", cfg.PostgresHost),
		slog.Int("port", cfg.PostgresPort),
		slog.String("database", cfg.PostgresDB),
	)
	if err := database.RegisterPoolMetrics(prometheus.DefaultRegisterer, pool, config.ServiceName); err != nil {
		logger.Warn("pool metrics not registered", slog.String("error", err.Error()))
	}

	if err := database.RunMigrations(ctx, pool, migrations.FS, logger); err != nil {
		pool.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	logger.Info("database migrations completed")

	if threshold := cfg.SlowQueryThreshold(); threshold > 0 {
		database.SetSlowQueryLogging(threshold, logger)
	}

	redisClient, err := database.NewRedisClient(ctx, cfg.Redis())
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("connect to redis: %w", err)
	}
	logger.Info("connected to Redis", slog.String("addr", cfg.Redis().Addr()))

	producer := pkgkafka.NewProducer(pkgkafka.DefaultProducerConfig(cfg.KafkaBrokers), logger)
	if err := pingKafkaWithRetry(ctx, producer, logger); err != nil {
		logger.Warn("kafka producer ping failed after retries, continuing in degraded mode",
			slog.String("error", err.Error()),
		)
	} else {
		logger.Info("kafka producer initialized", slog.Any("brokers", cfg.KafkaBrokers))
	}

	// Build the dependency graph.
	encoder := variant.NewEncoder(registry)
	generator := combination.NewGenerator(encoder, combination.WithStrict(cfg.StrictVariantEncoding))
	catalogService := service.NewCatalogService(registry, resolver.New(registry, logger), encoder)

	opts := []service.CombinationOption{
		service.WithCache(rediscache.NewCombinationCache(redisClient, cfg.CombinationCacheTTL)),
		service.WithLimits(cfg.MaxCombinations, cfg.StrictVariantEncoding),
	}
	var productHTTP *httpclient.CircuitBreakerClient
	if cfg.ProductServiceURL != "" {
		productHTTP = httpclient.NewCircuitBreakerClient(
			httpclient.New(httpclient.DefaultConfig()),
			httpclient.DefaultCircuitBreakerConfig("product-service"),
			logger,
		)
		opts = append(opts, service.WithProductLookup(client.NewProductClient(productHTTP, cfg.ProductServiceURL)))
		logger.Info("product service lookups enabled", slog.String("url", cfg.ProductServiceURL))
	}

	combinationService := service.NewCombinationService(
		generator,
		registry,
		postgres.NewCombinationRepository(pool),
		event.NewProducer(producer, logger),
		logger,
		opts...,
	)

	// Remove combinations of deleted products. Redelivered events are
	// skipped by id; failures end up in the dead letter topic.
	dlq := pkgkafka.NewDLQProducer(cfg.KafkaBrokers, logger)
	dedup := pkgkafka.NewRedisIdempotencyStore(redisClient, config.ServiceName+":events:", cfg.EventDedupTTL)
	productDeleted := pkgkafka.NewConsumer(pkgkafka.ConsumerConfig{
		Brokers:  cfg.KafkaBrokers,
		GroupID:  cfg.KafkaConsumerGroup + "-product-deleted",
		Topic:    event.TopicProductDeleted,
		MinBytes: 1,
		MaxBytes: 10e6,
	}, pkgkafka.IdempotentHandler(dedup, event.NewConsumer(combinationService, logger).Handle, logger), logger,
		pkgkafka.WithDLQ(dlq),
	)

	healthHandler := health.NewHandler()
	healthHandler.Register("postgres", func(ctx context.Context) error {
		return pool.Ping(ctx)
	})
	healthHandler.Register("redis", func(ctx context.Context) error {
		return redisClient.Ping(ctx).Err()
	})
	healthHandler.RegisterOptional("kafka", func(ctx context.Context) error {
		return producer.Ping(ctx)
	})
	if productHTTP != nil {
		healthHandler.RegisterOptional("product-service", func(context.Context) error {
			if productHTTP.State() == gobreaker.StateOpen {
				return httpclient.ErrCircuitOpen
			}
			return nil
		})
	}

	if cfg.JWTSecret == "" {
		logger.Warn("AUTH_JWT_SECRET is empty, admin routes will reject every request")
	}
	corsCfg := middleware.DefaultCORSConfig()
	corsCfg.AllowedOrigins = cfg.CORSAllowedOrigins
	corsCfg.Environment = cfg.Environment

	router := handler.NewRouter(catalogService, combinationService, healthHandler, handler.RouterConfig{
		ServiceName:       config.ServiceName,
		CORS:              corsCfg,
		CatalogMaxAge:     cfg.CatalogCacheMaxAge,
		RateLimitRPS:      cfg.RateLimitRPS,
		RateLimitBurst:    cfg.RateLimitBurst,
		TokenValidator:    middleware.NewJWTValidator([]byte(cfg.JWTSecret), cfg.JWTIssuer),
		PprofEnabled:      cfg.PprofEnabled,
		PprofAllowedCIDRs: cfg.PprofAllowedCIDRs,
	}, logger)

	httpServer := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           router,
		ReadTimeout:       cfg.HTTPReadTimeout,
		WriteTimeout:      cfg.HTTPWriteTimeout,
		IdleTimeout:       60 * time.Second,
		ReadHeaderTimeout: 10 * time.Second,
	}

	return &App{
		cfg:            cfg,
		logger:         logger,
		pool:           pool,
		redis:          redisClient,
		producer:       producer,
		dlq:            dlq,
		productDeleted: productDeleted,
		httpServer:     httpServer,
		tracerShutdown: tracerShutdown,
	}, nil
}

// Run starts the HTTP server and the Kafka consumer, then blocks until the
// context is canceled or one of them fails.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 2)

	go func() {
		a.logger.Info("starting HTTP server", slog.String("addr", a.httpServer.Addr))
		if err := a.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("http server: %w", err)
		}
	}()

	go func() {
		if err := a.productDeleted.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
			errCh <- fmt.Errorf("product deleted consumer: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		a.logger.Info("shutdown signal received")
	case err := <-errCh:
		_ = a.Shutdown()
		return err
	}

	return a.Shutdown()
}

// Shutdown stops components in dependency order: HTTP server, tracer, Kafka
// consumer, Kafka producers, Redis, PostgreSQL.
func (a *App) Shutdown() error {
	a.logger.Info("shutting down application...")

	var errs []error
	record := func(component string, err error) {
		if err != nil {
			a.logger.Error(component+" shutdown error", slog.String("error", err.Error()))
			errs = append(errs, err)
		}
	}

	httpCtx, httpCancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
	defer httpCancel()
	record("http server", a.httpServer.Shutdown(httpCtx))

	// Flush after the HTTP drain so spans of in-flight requests are kept.
	if a.tracerShutdown != nil {
		tracerCtx, tracerCancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer tracerCancel()
		record("tracer", a.tracerShutdown(tracerCtx))
	}

	record("product deleted consumer", a.productDeleted.Close())
	record("dlq producer", a.dlq.Close())
	record("kafka producer", a.producer.Close())
	record("redis", a.redis.Close())
	a.pool.Close()

	a.logger.Info("application shutdown complete")
	return errors.Join(errs...)
}

// pingKafkaWithRetry pings the brokers up to three times with 1s/2s backoff
// and ±25% jitter.
func pingKafkaWithRetry(ctx context.Context, producer *pkgkafka.Producer, logger *slog.Logger) error {
	const attempts = 3
	var lastErr error
	for attempt := range attempts {
		if lastErr = producer.Ping(ctx); lastErr == nil {
			return nil
		}
		if attempt == attempts-1 {
			break
		}
		base := time.Duration(1<<attempt) * time.Second
		wait := base + time.Duration(float64(base)*0.25*(2*rand.Float64()-1)) // #nosec G404 -- retry jitter
		logger.Warn("kafka producer ping failed, retrying",
			slog.Int("attempt", attempt+1),
			slog.Int("max_attempts", attempts),
			slog.Duration("backoff", wait),
			slog.String("error", lastErr.Error()),
		)
		select {
		case <-ctx.Done():
			return fmt.Errorf("kafka ping: %w", ctx.Err())
		case <-time.After(wait):
		}
	}
	return fmt.Errorf("kafka producer ping failed after %d attempts: %w", attempts, lastErr)
}
