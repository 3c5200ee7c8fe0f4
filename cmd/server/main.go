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

	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	httpAdapter "github.com/iho/goclosing/internal/adapter/http"
	"github.com/iho/goclosing/internal/adapter/http/handler"
	"github.com/iho/goclosing/internal/adapter/http/middleware"
	postgresRepo "github.com/iho/goclosing/internal/adapter/repository/postgres"
	redisRepo "github.com/iho/goclosing/internal/adapter/repository/redis"
	"github.com/iho/goclosing/internal/infrastructure/auth"
	"github.com/iho/goclosing/internal/infrastructure/config"
	"github.com/iho/goclosing/internal/infrastructure/eventpublisher"
	"github.com/iho/goclosing/internal/infrastructure/logger"
	"github.com/iho/goclosing/internal/infrastructure/metrics"
	"github.com/iho/goclosing/internal/infrastructure/postgres"
	"github.com/iho/goclosing/internal/infrastructure/redis"
	"github.com/iho/goclosing/internal/usecase"
)

const (
	rateLimiterCleanupInterval = 10 * time.Minute
	rateLimiterMaxIdle         = time.Hour
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(logger.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Fatal().Err(err).Msg("server failed")
	}

	log.Info().Msg("server stopped")
}

func run(ctx context.Context, cfg *config.Config, log zerolog.Logger) error {
	if cfg.AutoMigrate {
		if err := postgres.NewMigrator(cfg.DatabaseURL, cfg.MigrationsPath, log).Up(); err != nil {
			return err
		}
	}

	pool, err := postgres.NewPoolWithConfig(ctx, postgres.PoolConfig{
		DatabaseURL: cfg.DatabaseURL,
		MaxConns:    cfg.DatabaseMaxConns,
		MinConns:    cfg.DatabaseMinConns,
	})
	if err != nil {
		return fmt.Errorf("connect to postgres: %w", err)
	}
	defer pool.Close()
	log.Info().Msg("connected to postgres")

	var redisClient *goredis.Client
	if cfg.RedisEnabled {
		redisClient, err = redis.NewClient(ctx, redis.ClientConfig{URL: cfg.RedisURL})
		if err != nil {
			return fmt.Errorf("connect to redis: %w", err)
		}
		defer redisClient.Close()
		log.Info().Msg("connected to redis")
	}

	verifier, err := tokenVerifier(cfg)
	if err != nil {
		return err
	}

	m := metrics.New()

	// Repositories
	txManager := postgresRepo.NewTxManager(pool)
	closureRepo := postgresRepo.NewClosureRepository(pool)
	ledgerRepo := postgresRepo.NewLedgerRepository(pool, log)
	outboxRepo := postgresRepo.NewOutboxRepository(pool)
	idGen := postgresRepo.NewULIDGenerator()

	var idempotencyRepo usecase.IdempotencyRepository = postgresRepo.NewIdempotencyRepository(pool)
	var locker usecase.DeclarationLocker
	if redisClient != nil {
		idempotencyRepo = redisRepo.NewCachedIdempotencyStore(idempotencyRepo, redisClient, cfg.IdempotencyCacheTTL, m, log)
		locker = redisRepo.NewDeclarationLocker(redisClient, cfg.DeclarationLockTTL, cfg.DeclarationLockWait, log)
	}

	reconciliationUC := usecase.NewReconciliationUseCase(usecase.ReconciliationConfig{
		TxManager:      txManager,
		Ledger:         ledgerRepo,
		ClosureRepo:    closureRepo,
		Idempotency:    idempotencyRepo,
		IDGen:          idGen,
		Emitter:        postgresRepo.NewOutboxEmitter(outboxRepo, idGen),
		Locker:         locker,
		Retrier:        postgresRepo.NewRetrier(log),
		Metrics:        m,
		Logger:         &log,
		LedgerTimeout:  cfg.LedgerReadTimeout,
		PersistTimeout: cfg.PersistTimeout,
	})

	rateLimiter := middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst, m)

	router := httpAdapter.NewRouter(httpAdapter.RouterConfig{
		ClosureHandler: handler.NewClosureHandler(reconciliationUC),
		HealthHandler:  handler.NewHealthHandler(pool, redisClient),
		Logger:         log,
		Metrics:        m,
		RateLimiter:    rateLimiter,
		TokenVerifier:  verifier,
	})

	publisher := eventpublisher.NewEventPublisher(eventpublisher.Config{
		OutboxRepo: outboxRepo,
		Publisher:  newPublisher(cfg, redisClient, log),
		Metrics:    m,
		Logger:     &log,
		BatchSize:  cfg.OutboxBatchSize,
		Interval:   cfg.OutboxPollInterval,
		Retention:  cfg.OutboxRetention,
	})

	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.HTTPPort),
		Handler:      router,
		ReadTimeout:  cfg.HTTPReadTimeout,
		WriteTimeout: cfg.HTTPWriteTimeout,
		IdleTimeout:  cfg.HTTPIdleTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Info().Str("port", cfg.HTTPPort).Bool("auth_enabled", verifier != nil).Msg("starting server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		if err := publisher.Start(gctx); err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		rateLimiter.RunCleanup(gctx, rateLimiterCleanupInterval, rateLimiterMaxIdle)
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		log.Info().Msg("shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPShutdownTimeout)
		defer cancel()

		return server.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

// tokenVerifier returns nil when authentication is disabled.
func tokenVerifier(cfg *config.Config) (middleware.TokenVerifier, error) {
	if !cfg.AuthEnabled {
		return nil, nil
	}
	if cfg.JWTSecret == "" {
		return nil, errors.New("AUTH_ENABLED requires JWT_SECRET")
	}
	return auth.NewJWTManager(cfg.JWTSecret, cfg.JWTExpiration), nil
}

func newPublisher(cfg *config.Config, client *goredis.Client, log zerolog.Logger) eventpublisher.Publisher {
	if client == nil {
		return eventpublisher.NewLogPublisher(log)
	}
	return redisRepo.NewEventPublisher(client, cfg.EventChannel)
}
