package handler

import (
	"net/http"

	coreport "github.com/amirhossein-jamali/bank-ledger/internal/domain/port/core"
	"github.com/amirhossein-jamali/bank-ledger/internal/domain/port/persistence"
	"github.com/amirhossein-jamali/bank-ledger/internal/domain/port/usecase"
	"github.com/amirhossein-jamali/bank-ledger/internal/infrastructure/adapter/api/dto"
	"github.com/gin-gonic/gin"
)

// AccountHandler serves account creation and the per-account read endpoints
type AccountHandler struct {
	ledger usecase.LedgerUseCase
	query  usecase.QueryUseCase
	logger coreport.Logger
}

// NewAccountHandler creates a new account handler instance
func NewAccountHandler(
	ledger usecase.LedgerUseCase,
	query usecase.QueryUseCase,
	logger coreport.Logger,
) *AccountHandler {
	return &AccountHandler{
		ledger: ledger,
		query:  query,
		logger: logger,
	}
}

// CreateAccount handles POST /api/create_account
func (h *AccountHandler) CreateAccount(c *gin.Context) {
	var req dto.CreateAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindingError(c, h.logger, err)
		return
	}

	account, err := h.ledger.CreateAccount(c.Request.Context(), usecase.CreateAccountRequest{
		Name:           req.Name,
		InitialBalance: req.Balance,
	})
	if err != nil {
		respondError(c, h.logger, "Failed to create account", err)
		return
	}

	c.JSON(http.StatusCreated, dto.CreateAccountResponse{
		Success:         true,
		Message:         "Account created successfully!",
		AccountResponse: dto.NewAccountResponse(account),
	})
}

// GetBalance handles GET /api/balance/:acc_no
func (h *AccountHandler) GetBalance(c *gin.Context) {
	accountNumber, err := parseAccountNumber(c)
	if err != nil {
		respondError(c, h.logger, "Invalid account number", err)
		return
	}

	account, err := h.query.GetBalance(c.Request.Context(), accountNumber)
	if err != nil {
		respondError(c, h.logger, "Failed to get balance", err)
		return
	}

	c.JSON(http.StatusOK, dto.BalanceResponse{
		Success:         true,
		AccountResponse: dto.NewAccountResponse(account),
	})
}

// ListTransactions handles GET /api/transactions/:acc_no
func (h *AccountHandler) ListTransactions(c *gin.Context) {
	accountNumber, err := parseAccountNumber(c)
	if err != nil {
		respondError(c, h.logger, "Invalid account number", err)
		return
	}

	var query dto.ListTransactionsQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		respondBindingError(c, h.logger, err)
		return
	}

	ctx := c.Request.Context()
	account, err := h.query.GetBalance(ctx, accountNumber)
	if err != nil {
		respondError(c, h.logger, "Failed to list transactions", err)
		return
	}

	entries, err := h.query.ListTransactions(ctx, accountNumber, query.Limit)
	if err != nil {
		respondError(c, h.logger, "Failed to list transactions", err)
		return
	}

	c.JSON(http.StatusOK, dto.TransactionListResponse{
		Success:       true,
		AccountNumber: account.Number,
		Name:          account.Name,
		Transactions:  dto.NewTransactionResponses(entries),
		Count:         len(entries),
	})
}

// ListAccounts handles GET /api/accounts?name=&limit=&offset=
func (h *AccountHandler) ListAccounts(c *gin.Context) {
	var query dto.ListAccountsQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		respondBindingError(c, h.logger, err)
		return
	}

	accounts, err := h.query.ListAccounts(c.Request.Context(), persistence.AccountFilter{
		NameContains: query.Name,
		Limit:        query.Limit,
		Offset:       query.Offset,
	})
	if err != nil {
		respondError(c, h.logger, "Failed to list accounts", err)
		return
	}

	c.JSON(http.StatusOK, dto.AccountListResponse{
		Success:  true,
		Accounts: dto.NewAccountResponses(accounts),
		Count:    len(accounts),
		Limit:    query.Limit,
		Offset:   query.Offset,
	})
}
