package dto

import (
	"time"

	"github.com/amirhossein-jamali/bank-ledger/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// CreateAccountRequest is the body of POST /api/create_account.
// Balance accepts a JSON number or string.
type CreateAccountRequest struct {
	Name    string          `json:"name" binding:"required,max=100"`
	Balance decimal.Decimal `json:"balance" binding:"required,money"`
}

// AccountResponse describes one account
type AccountResponse struct {
	AccountNumber uint64    `json:"account_number"`
	Name          string    `json:"name"`
	Balance       string    `json:"balance"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// CreateAccountResponse is returned by POST /api/create_account
type CreateAccountResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	AccountResponse
}

// BalanceResponse is returned by GET /api/balance/:acc_no
type BalanceResponse struct {
	Success bool `json:"success"`
	AccountResponse
}

// AccountListResponse is returned by GET /api/accounts
type AccountListResponse struct {
	Success  bool              `json:"success"`
	Accounts []AccountResponse `json:"accounts"`
	Count    int               `json:"count"`
	Limit    int               `json:"limit"`
	Offset   int               `json:"offset"`
}

// ListAccountsQuery holds the query string of GET /api/accounts
type ListAccountsQuery struct {
	Name   string `form:"name" binding:"max=100"`
	Limit  int    `form:"limit" binding:"gte=0"`
	Offset int    `form:"offset" binding:"gte=0"`
}

// NewAccountResponse maps an account for the API
func NewAccountResponse(account *entity.Account) AccountResponse {
	return AccountResponse{
		AccountNumber: account.Number,
		Name:          account.Name,
		Balance:       account.FormattedBalance(),
		CreatedAt:     account.CreatedAt,
		UpdatedAt:     account.UpdatedAt,
	}
}

// NewAccountResponses maps a page of accounts
func NewAccountResponses(accounts []*entity.Account) []AccountResponse {
	out := make([]AccountResponse, len(accounts))
	for i, a := range accounts {
		out[i] = NewAccountResponse(a)
	}
	return out
}
