package handler

import (
	"net/http"

	coreport "github.com/amirhossein-jamali/bank-ledger/internal/domain/port/core"
	"github.com/amirhossein-jamali/bank-ledger/internal/domain/port/usecase"
	"github.com/amirhossein-jamali/bank-ledger/internal/infrastructure/adapter/api/dto"
	"github.com/gin-gonic/gin"
)

// ReportHandler serves aggregate and audit views
type ReportHandler struct {
	query  usecase.QueryUseCase
	logger coreport.Logger
}

// NewReportHandler creates a new report handler instance
func NewReportHandler(query usecase.QueryUseCase, logger coreport.Logger) *ReportHandler {
	return &ReportHandler{
		query:  query,
		logger: logger,
	}
}

// Summary handles GET /api/summary
func (h *ReportHandler) Summary(c *gin.Context) {
	summary, err := h.query.Summary(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, "Failed to build summary", err)
		return
	}
	c.JSON(http.StatusOK, dto.NewSummaryResponse(summary))
}

// Reconcile handles GET /api/reconcile/:acc_no
func (h *ReportHandler) Reconcile(c *gin.Context) {
	accountNumber, err := parseAccountNumber(c)
	if err != nil {
		respondError(c, h.logger, "Invalid account number", err)
		return
	}

	reconciliation, err := h.query.Reconcile(c.Request.Context(), accountNumber)
	if err != nil {
		respondError(c, h.logger, "Failed to reconcile account", err)
		return
	}

	if !reconciliation.Consistent() {
		h.logger.Error("Ledger drift detected", map[string]any{
			"account_number": reconciliation.AccountNumber,
			"difference":     reconciliation.Difference().String(),
		})
	}
	c.JSON(http.StatusOK, dto.NewReconcileResponse(reconciliation))
}
