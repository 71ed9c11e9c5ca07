package handler

import (
	"context"
	"net/http"

	coreport "github.com/amirhossein-jamali/bank-ledger/internal/domain/port/core"
	"github.com/amirhossein-jamali/bank-ledger/internal/infrastructure/adapter/api/dto"
	"github.com/amirhossein-jamali/bank-ledger/internal/infrastructure/adapter/database"
	"github.com/gin-gonic/gin"
)

// HealthChecker reports database reachability
type HealthChecker interface {
	Health(ctx context.Context) database.HealthStatus
}

// HealthHandler serves the index and health endpoints
type HealthHandler struct {
	checker      HealthChecker // nil for the in-memory store
	driver       string
	timeProvider coreport.TimeProvider
}

// NewHealthHandler creates a new health handler instance
func NewHealthHandler(checker HealthChecker, driver string, timeProvider coreport.TimeProvider) *HealthHandler {
	return &HealthHandler{
		checker:      checker,
		driver:       driver,
		timeProvider: timeProvider,
	}
}

// Health handles GET /api/health
func (h *HealthHandler) Health(c *gin.Context) {
	response := dto.HealthResponse{
		Status:    "healthy",
		Database:  "connected",
		Driver:    h.driver,
		Timestamp: h.timeProvider.Now(),
	}

	if h.checker == nil {
		c.JSON(http.StatusOK, response)
		return
	}

	status := h.checker.Health(c.Request.Context())
	response.LatencyMs = float64(status.Latency.Microseconds()) / 1000
	response.Pool = status.Pool
	if !status.Healthy {
		response.Status = "unhealthy"
		response.Database = "disconnected"
		response.Error = status.Error
		c.JSON(http.StatusServiceUnavailable, response)
		return
	}
	c.JSON(http.StatusOK, response)
}

// Index handles GET / and lists the available endpoints
func (h *HealthHandler) Index(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"message": "Bank ledger API",
		"endpoints": []string{
			"POST /api/create_account",
			"POST /api/deposit",
			"POST /api/withdraw",
			"GET /api/balance/:acc_no",
			"GET /api/transactions/:acc_no",
			"GET /api/accounts",
			"GET /api/summary",
			"GET /api/reconcile/:acc_no",
			"GET /api/health",
		},
	})
}
