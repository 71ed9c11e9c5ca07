package routes

import (
	"net/http"

	domainerr "github.com/amirhossein-jamali/bank-ledger/internal/domain/error"
	coreport "github.com/amirhossein-jamali/bank-ledger/internal/domain/port/core"
	"github.com/amirhossein-jamali/bank-ledger/internal/infrastructure/adapter/api/dto"
	"github.com/amirhossein-jamali/bank-ledger/internal/infrastructure/adapter/api/handler"
	"github.com/amirhossein-jamali/bank-ledger/internal/infrastructure/adapter/api/middleware"
	"github.com/gin-gonic/gin"
	"github.com/ulule/limiter/v3"
)

// Handlers groups the HTTP handlers mounted by SetupRoutes
type Handlers struct {
	Account *handler.AccountHandler
	Ledger  *handler.LedgerHandler
	Report  *handler.ReportHandler
	Health  *handler.HealthHandler
}

// MiddlewareOptions configures the global middleware chain
type MiddlewareOptions struct {
	AllowedOrigins []string
	// RateLimiter is optional; nil disables rate limiting
	RateLimiter *limiter.Limiter
}

// SetupRoutes configures all the routes for the API
func SetupRoutes(router *gin.Engine, handlers Handlers) {
	router.GET("/", handlers.Health.Index)

	api := router.Group("/api")
	{
		api.GET("/health", handlers.Health.Health)

		api.POST("/create_account", handlers.Account.CreateAccount)
		api.GET("/balance/:acc_no", handlers.Account.GetBalance)
		api.GET("/transactions/:acc_no", handlers.Account.ListTransactions)
		api.GET("/accounts", handlers.Account.ListAccounts)

		api.POST("/deposit", handlers.Ledger.Deposit)
		api.POST("/withdraw", handlers.Ledger.Withdraw)

		api.GET("/summary", handlers.Report.Summary)
		api.GET("/reconcile/:acc_no", handlers.Report.Reconcile)
	}

	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, dto.ErrorResponse{
			Code:  domainerr.CodeNotFound,
			Error: "Endpoint not found",
		})
	})
}

// SetupMiddlewares configures global middlewares for the API
func SetupMiddlewares(router *gin.Engine, logger coreport.Logger, timeProvider coreport.TimeProvider, options MiddlewareOptions) {
	router.Use(middleware.ErrorHandler(logger))
	router.Use(middleware.RequestID(logger))
	router.Use(middleware.Logger(logger, timeProvider))
	router.Use(middleware.CORS(options.AllowedOrigins))
	if options.RateLimiter != nil {
		router.Use(middleware.RateLimit(options.RateLimiter, logger))
	}
}
