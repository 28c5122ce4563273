package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	httpAdapter "github.com/lfmartins/contas/internal/adapter/http"
	"github.com/lfmartins/contas/internal/adapter/http/handler"
	"github.com/lfmartins/contas/internal/adapter/http/middleware"
	postgresRepo "github.com/lfmartins/contas/internal/adapter/repository/postgres"
	redisRepo "github.com/lfmartins/contas/internal/adapter/repository/redis"
	"github.com/lfmartins/contas/internal/infrastructure/config"
	"github.com/lfmartins/contas/internal/infrastructure/eventpublisher"
	"github.com/lfmartins/contas/internal/infrastructure/logger"
	"github.com/lfmartins/contas/internal/infrastructure/metrics"
	"github.com/lfmartins/contas/internal/infrastructure/postgres"
	"github.com/lfmartins/contas/internal/infrastructure/redis"
	"github.com/lfmartins/contas/internal/usecase"
)

func main() {
	// .env is optional, real deployments set the environment directly
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		panic(fmt.Sprintf("failed to load configuration: %v", err))
	}

	log := logger.New(logger.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil && !errors.Is(err, context.Canceled) {
		log.Fatal().Err(err).Msg("server exited with error")
	}

	log.Info().Msg("server stopped")
}

func run(ctx context.Context, cfg *config.Config, log zerolog.Logger) error {
	// Migrations first, the pool is useless against an empty schema
	if err := postgres.RunMigrations(cfg.DatabaseURL, cfg.MigrationsPath); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}

	pool, err := postgres.NewPool(ctx, cfg.DatabaseURL, cfg.DatabaseMaxConns, cfg.DatabaseMinConns, cfg.DatabaseTimeout)
	if err != nil {
		return fmt.Errorf("connecting to postgres: %w", err)
	}
	defer pool.Close()
	log.Info().Msg("connected to postgres")

	redisClient, err := redis.NewClient(ctx, cfg.RedisURL)
	if err != nil {
		return fmt.Errorf("connecting to redis: %w", err)
	}
	defer redisClient.Close()
	log.Info().Msg("connected to redis")

	m := metrics.New()

	// Repositories
	accountRepo := postgresRepo.NewAccountRepository(pool)
	cardRepo := postgresRepo.NewCardRepository(pool)
	entryRepo := postgresRepo.NewEntryRepository(pool, postgresRepo.NewRetrier(log))
	goalRepo := postgresRepo.NewGoalRepository(pool)
	outboxRepo := postgresRepo.NewOutboxRepository(pool)
	cache := redisRepo.NewCache(redisClient)
	idempotencyStore := redisRepo.NewIdempotencyStore(redisClient)
	idGen := postgresRepo.NewULIDGenerator()
	clock := usecase.SystemClock{}

	// Use cases
	accountUC := usecase.NewAccountUseCase(accountRepo, idGen, clock, log)
	cardUC := usecase.NewCardUseCase(cardRepo, accountRepo, idGen, clock, log)
	entryUC := usecase.NewEntryUseCase(entryRepo, accountRepo, cardRepo, goalRepo, outboxRepo, cache, idGen, clock, log, m)
	seriesUC := usecase.NewSeriesUseCase(entryRepo, accountRepo, cardRepo, goalRepo, outboxRepo, cache, idGen, clock, log, m)
	anticipationUC := usecase.NewAnticipationUseCase(entryRepo, cardRepo, goalRepo, outboxRepo, cache, idGen, clock, log, m)
	billUC := usecase.NewBillUseCase(entryRepo, cardRepo, accountRepo, outboxRepo, cache, idGen, clock, log, m)
	goalUC := usecase.NewGoalUseCase(goalRepo, entryRepo, cache, idGen, clock, log, m)
	balanceUC := usecase.NewBalanceUseCase(entryRepo, accountRepo, outboxRepo, idGen, clock, log, m)

	// HTTP layer
	router := httpAdapter.NewRouter(httpAdapter.RouterConfig{
		AccountHandler:   handler.NewAccountHandler(accountUC, balanceUC),
		CardHandler:      handler.NewCardHandler(cardUC, billUC),
		EntryHandler:     handler.NewEntryHandler(entryUC, anticipationUC),
		SeriesHandler:    handler.NewSeriesHandler(seriesUC),
		GoalHandler:      handler.NewGoalHandler(goalUC),
		HealthHandler:    handler.NewHealthHandler(pool, redisClient),
		IdempotencyStore: idempotencyStore,
		RateLimiter:      middleware.NewRateLimiter(cfg.RateLimitPerSecond, cfg.RateLimitBurst),
		Logger:           log,
	})

	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.HTTPPort),
		Handler:      router,
		ReadTimeout:  cfg.HTTPReadTimeout,
		WriteTimeout: cfg.HTTPWriteTimeout,
		IdleTimeout:  cfg.HTTPIdleTimeout,
	}

	// Outbox publisher, RabbitMQ when configured, logging otherwise
	var publisher eventpublisher.Publisher
	if cfg.AMQPURL != "" {
		amqpPublisher, err := eventpublisher.NewAMQPPublisher(cfg.AMQPURL, cfg.AMQPExchange)
		if err != nil {
			return fmt.Errorf("connecting to rabbitmq: %w", err)
		}
		defer amqpPublisher.Close()
		log.Info().Str("exchange", cfg.AMQPExchange).Msg("connected to rabbitmq")
		publisher = amqpPublisher
	} else {
		publisher = eventpublisher.NewLogPublisher(log)
	}

	outboxPublisher := eventpublisher.NewEventPublisher(eventpublisher.Config{
		OutboxRepo: outboxRepo,
		Publisher:  publisher,
		Logger:     log,
		Metrics:    m,
		BatchSize:  cfg.OutboxBatchSize,
		Interval:   cfg.OutboxPollInterval,
	})

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Info().Str("port", cfg.HTTPPort).Msg("starting http server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		log.Info().Msg("shutting down http server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPShutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	g.Go(func() error {
		return outboxPublisher.Start(ctx)
	})

	g.Go(func() error {
		return cleanupOutbox(ctx, outboxRepo, cfg.OutboxRetainFor, log)
	})

	g.Go(func() error {
		return reportPoolSize(ctx, pool, m)
	})

	return g.Wait()
}

// cleanupOutbox prunes published events older than the retention window.
func cleanupOutbox(ctx context.Context, outboxRepo usecase.OutboxRepository, retainFor time.Duration, log zerolog.Logger) error {
	ticker := time.NewTicker(time.Hour)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			cutoff := time.Now().Add(-retainFor)
			if err := outboxRepo.DeletePublished(ctx, cutoff); err != nil {
				log.Error().Err(err).Msg("failed to prune published outbox events")
			}
		}
	}
}

// reportPoolSize exports the pgx pool size as a gauge.
func reportPoolSize(ctx context.Context, pool *pgxpool.Pool, m *metrics.Metrics) error {
	ticker := time.NewTicker(15 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			m.DBConnections.Set(float64(pool.Stat().TotalConns()))
		}
	}
}
