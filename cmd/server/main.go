package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"

	httpAdapter "github.com/satistakip/cariledger/internal/adapter/http"
	"github.com/satistakip/cariledger/internal/adapter/http/handler"
	"github.com/satistakip/cariledger/internal/adapter/http/middleware"
	postgresRepo "github.com/satistakip/cariledger/internal/adapter/repository/postgres"
	redisRepo "github.com/satistakip/cariledger/internal/adapter/repository/redis"
	"github.com/satistakip/cariledger/internal/infrastructure/auth"
	"github.com/satistakip/cariledger/internal/infrastructure/config"
	"github.com/satistakip/cariledger/internal/infrastructure/logger"
	"github.com/satistakip/cariledger/internal/infrastructure/metrics"
	"github.com/satistakip/cariledger/internal/infrastructure/outbox"
	"github.com/satistakip/cariledger/internal/infrastructure/postgres"
	"github.com/satistakip/cariledger/internal/infrastructure/redis"
	"github.com/satistakip/cariledger/internal/usecase"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	// Setup logger
	log.Logger = logger.New(logger.Config{
		Level:  cfg.LogLevel,
		Format: cfg.LogFormat,
	})

	ctx := context.Background()

	// Connect to PostgreSQL
	pool, err := postgres.NewPoolWithConfig(ctx, postgres.PoolConfig{
		DatabaseURL: cfg.DatabaseURL,
		MaxConns:    cfg.DatabaseMaxConns,
		MinConns:    cfg.DatabaseMinConns,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to postgres")
	}
	defer pool.Close()
	log.Info().Msg("connected to postgres")

	// Connect to Redis
	redisClient, err := redis.NewClient(ctx, cfg.RedisURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to redis")
	}
	defer redisClient.Close()
	log.Info().Msg("connected to redis")

	m := metrics.New()

	// Initialize repositories
	txManager := postgresRepo.NewTxManager(pool)
	accountRepo := postgresRepo.NewAccountRepository(pool)
	productRepo := postgresRepo.NewProductRepository(pool)
	entryRepo := postgresRepo.NewEntryRepository(pool)
	outboxRepo := postgresRepo.NewOutboxRepository(pool)
	auditRepo := postgresRepo.NewAuditRepository(pool)
	idempotencyStore := redisRepo.NewIdempotencyStore(redisClient)
	balanceCache := redisRepo.NewCache(redisClient)
	idGen := postgresRepo.NewULIDGenerator()
	retrier := postgresRepo.NewRetrier()

	// Initialize use cases
	accountUC := usecase.NewAccountUseCase(accountRepo, idGen).WithMetrics(m)
	productUC := usecase.NewProductUseCase(productRepo, idGen)
	postingUC := usecase.NewPostingUseCase(txManager, entryRepo, accountRepo, productRepo, outboxRepo, idGen, balanceCache).
		WithRetrier(retrier).
		WithMetrics(m)
	reversalUC := usecase.NewReversalUseCase(txManager, entryRepo, accountRepo, productRepo, outboxRepo, idGen, balanceCache).
		WithRetrier(retrier).
		WithMetrics(m)
	balanceUC := usecase.NewBalanceUseCase(entryRepo, accountRepo, balanceCache).WithMetrics(m)
	statementUC := usecase.NewStatementUseCase(entryRepo, accountRepo)
	reconciliationUC := usecase.NewReconciliationUseCase(entryRepo, accountRepo).WithMetrics(m)

	// Initialize handlers
	accountHandler := handler.NewAccountHandler(accountUC)
	productHandler := handler.NewProductHandler(productUC)
	postingHandler := handler.NewPostingHandler(postingUC)
	reversalHandler := handler.NewReversalHandler(reversalUC)
	ledgerHandler := handler.NewLedgerHandler(balanceUC, statementUC, reconciliationUC)
	healthHandler := handler.NewHealthHandler(pool, redisClient)

	// JWT auth is optional; without it tenants come from dev headers
	var jwtManager *auth.JWTManager
	if cfg.AuthEnabled && cfg.JWTSecret != "" {
		jwtManager = auth.NewJWTManager(cfg.JWTSecret, cfg.JWTExpiration)
		log.Info().Msg("jwt authentication enabled")
	} else {
		log.Warn().Msg("jwt authentication disabled, resolving tenants from headers")
	}

	// Create router
	router := httpAdapter.NewRouter(httpAdapter.RouterConfig{
		AccountHandler:   accountHandler,
		ProductHandler:   productHandler,
		PostingHandler:   postingHandler,
		ReversalHandler:  reversalHandler,
		LedgerHandler:    ledgerHandler,
		HealthHandler:    healthHandler,
		JWTManager:       jwtManager,
		IdempotencyStore: idempotencyStore,
		AuditRepo:        auditRepo,
		RateLimiter:      middleware.NewRateLimiter(100, 200),
	})

	// Start outbox publisher
	publisherCtx, stopPublisher := context.WithCancel(ctx)
	defer stopPublisher()

	eventPublisher := outbox.NewEventPublisher(outbox.Config{
		OutboxRepo: outboxRepo,
		Publisher:  outbox.NewLogPublisher(nil),
		BatchSize:  cfg.OutboxBatchSize,
		Interval:   cfg.OutboxInterval,
	})
	go func() {
		if err := eventPublisher.Start(publisherCtx); err != nil && err != context.Canceled {
			log.Error().Err(err).Msg("outbox publisher stopped")
		}
	}()

	// Create server
	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.HTTPPort),
		Handler:      router,
		ReadTimeout:  cfg.HTTPReadTimeout,
		WriteTimeout: cfg.HTTPWriteTimeout,
		IdleTimeout:  cfg.HTTPIdleTimeout,
	}

	// Start server in goroutine
	go func() {
		log.Info().Str("port", cfg.HTTPPort).Msg("starting server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server...")
	stopPublisher()

	// Graceful shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server stopped")
}
