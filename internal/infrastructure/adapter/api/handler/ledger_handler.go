package handler

import (
	"context"
	"fmt"
	"net/http"

	"github.com/amirhossein-jamali/bank-ledger/internal/domain/entity"
	coreport "github.com/amirhossein-jamali/bank-ledger/internal/domain/port/core"
	"github.com/amirhossein-jamali/bank-ledger/internal/domain/port/usecase"
	"github.com/amirhossein-jamali/bank-ledger/internal/infrastructure/adapter/api/dto"
	"github.com/gin-gonic/gin"
)

// LedgerHandler serves the balance-mutating endpoints
type LedgerHandler struct {
	ledger usecase.LedgerUseCase
	logger coreport.Logger
}

// NewLedgerHandler creates a new ledger handler instance
func NewLedgerHandler(ledger usecase.LedgerUseCase, logger coreport.Logger) *LedgerHandler {
	return &LedgerHandler{
		ledger: ledger,
		logger: logger,
	}
}

// Deposit handles POST /api/deposit
func (h *LedgerHandler) Deposit(c *gin.Context) {
	h.mutate(c, h.ledger.Deposit, "Successfully deposited $%s")
}

// Withdraw handles POST /api/withdraw
func (h *LedgerHandler) Withdraw(c *gin.Context) {
	h.mutate(c, h.ledger.Withdraw, "Successfully withdrew $%s")
}

type mutationFunc func(ctx context.Context, req usecase.MutationRequest) (*usecase.MutationResult, error)

func (h *LedgerHandler) mutate(c *gin.Context, apply mutationFunc, messageFormat string) {
	var req dto.MutationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindingError(c, h.logger, err)
		return
	}

	result, err := apply(c.Request.Context(), usecase.MutationRequest{
		AccountNumber: req.AccountNumber,
		Amount:        req.Amount,
		Reference:     req.Reference,
	})
	if err != nil {
		respondError(c, h.logger, "Ledger mutation failed", err)
		return
	}

	message := fmt.Sprintf(messageFormat, entity.FormatAmount(result.Amount))
	c.JSON(http.StatusOK, dto.NewMutationResponse(message, result))
}
