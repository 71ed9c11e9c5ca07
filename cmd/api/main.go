package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	coreport "github.com/amirhossein-jamali/bank-ledger/internal/domain/port/core"
	"github.com/amirhossein-jamali/bank-ledger/internal/domain/port/persistence"
	"github.com/amirhossein-jamali/bank-ledger/internal/domain/usecase/ledger"
	"github.com/amirhossein-jamali/bank-ledger/internal/domain/usecase/query"
	"github.com/amirhossein-jamali/bank-ledger/internal/infrastructure/adapter/api/handler"
	"github.com/amirhossein-jamali/bank-ledger/internal/infrastructure/adapter/api/middleware"
	"github.com/amirhossein-jamali/bank-ledger/internal/infrastructure/adapter/api/routes"
	"github.com/amirhossein-jamali/bank-ledger/internal/infrastructure/adapter/api/validation"
	"github.com/amirhossein-jamali/bank-ledger/internal/infrastructure/adapter/cache"
	"github.com/amirhossein-jamali/bank-ledger/internal/infrastructure/adapter/database"
	"github.com/amirhossein-jamali/bank-ledger/internal/infrastructure/adapter/logger"
	"github.com/amirhossein-jamali/bank-ledger/internal/infrastructure/adapter/memory"
	timeProvider "github.com/amirhossein-jamali/bank-ledger/internal/infrastructure/adapter/time"
	"github.com/amirhossein-jamali/bank-ledger/internal/infrastructure/config"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Configuration validation failed: %v", err)
	}

	if cfg.Environment == config.Production {
		gin.SetMode(gin.ReleaseMode)
	}

	appLogger := logger.NewZapLoggerWithOptions(logger.Options{
		Level:      cfg.Logger.Level,
		Format:     cfg.Logger.Format,
		Output:     cfg.Logger.Output,
		CallerInfo: cfg.Logger.CallerInfo,
	})
	defer func() { _ = appLogger.Flush() }()

	tp := timeProvider.NewRealTimeProvider()

	store, err := openStore(cfg, appLogger, tp)
	if err != nil {
		appLogger.Error("Failed to open ledger store", map[string]any{
			"driver": cfg.Database.Driver,
			"error":  err.Error(),
		})
		os.Exit(1)
	}
	defer store.close()

	balanceCache, redisClient := openCache(cfg, appLogger)
	if redisClient != nil {
		defer redisClient.Close()
	}

	ledgerService := ledger.NewLedgerService(store.uow, balanceCache, tp, appLogger, cfg.LedgerPolicy())
	queryService := query.NewQueryService(store.uow, balanceCache, tp, appLogger, cfg.QueryLimits())

	if err := validation.RegisterWithGin(); err != nil {
		appLogger.Error("Failed to register validators", map[string]any{"error": err.Error()})
		os.Exit(1)
	}

	middlewareOptions := routes.MiddlewareOptions{AllowedOrigins: cfg.CORS.AllowedOrigins}
	if cfg.RateLimit.Enabled {
		// Validate already parsed the rate
		middlewareOptions.RateLimiter, _ = middleware.NewRateLimiter(cfg.RateLimit.Rate)
	}

	router := gin.New()
	routes.SetupMiddlewares(router, appLogger, tp, middlewareOptions)
	routes.SetupRoutes(router, routes.Handlers{
		Account: handler.NewAccountHandler(ledgerService, queryService, appLogger),
		Ledger:  handler.NewLedgerHandler(ledgerService, appLogger),
		Report:  handler.NewReportHandler(queryService, appLogger),
		Health:  handler.NewHealthHandler(store.health, cfg.Database.Driver, tp),
	})

	server := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:           router,
		ReadTimeout:       cfg.Server.ReadTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
		ReadHeaderTimeout: cfg.Server.ReadHeaderTimeout,
		IdleTimeout:       cfg.Server.IdleTimeout,
	}

	go func() {
		appLogger.Info("Starting server", map[string]any{
			"addr":   server.Addr,
			"env":    cfg.Environment,
			"driver": cfg.Database.Driver,
		})

		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			appLogger.Error("Failed to start server", map[string]any{
				"error": err.Error(),
			})
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	appLogger.Info("Shutting down server...", nil)

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	// in-flight requests finish their commit units before the store closes
	if err := server.Shutdown(ctx); err != nil {
		appLogger.Error("Server forced to shutdown", map[string]any{
			"error": err.Error(),
		})
	}

	appLogger.Info("Server exited gracefully", nil)
}

// ledgerStore is the storage backend selected by database.driver
type ledgerStore struct {
	uow    persistence.UnitOfWork
	health handler.HealthChecker
	close  func()
}

func openStore(cfg *config.Config, appLogger coreport.Logger, tp coreport.TimeProvider) (*ledgerStore, error) {
	dbConfig := cfg.ToDatabaseConfig()

	if dbConfig.Driver == database.DriverMemory {
		appLogger.Warn("Using the in-memory store; balances are lost on restart", nil)
		return &ledgerStore{
			uow:   memory.NewUnitOfWork(memory.NewStore(), appLogger),
			close: func() {},
		}, nil
	}

	dbManager := database.NewManager(dbConfig, appLogger, tp)
	if _, err := dbManager.Connect(context.Background()); err != nil {
		return nil, err
	}
	if err := dbManager.Migrate(); err != nil {
		_ = dbManager.Close()
		return nil, err
	}
	uow, err := dbManager.CreateUnitOfWork()
	if err != nil {
		_ = dbManager.Close()
		return nil, err
	}

	return &ledgerStore{
		uow:    uow,
		health: dbManager,
		close: func() {
			if err := dbManager.Close(); err != nil {
				appLogger.Error("Failed to close database", map[string]any{"error": err.Error()})
			}
		},
	}, nil
}

// openCache connects the optional Redis balance cache. The ledger runs without it when Redis is unreachable.
func openCache(cfg *config.Config, appLogger coreport.Logger) (persistence.BalanceCache, *redis.Client) {
	if !cfg.Cache.Enabled {
		return nil, nil
	}

	cacheConfig := cfg.ToCacheConfig()
	client, err := cache.NewRedisClient(context.Background(), cacheConfig)
	if err != nil {
		appLogger.Warn("Redis unavailable, balance cache disabled", map[string]any{
			"addr":  cacheConfig.Addr,
			"error": err.Error(),
		})
		return nil, nil
	}
	return cache.NewRedisBalanceCache(client, cacheConfig.TTL, appLogger), client
}
