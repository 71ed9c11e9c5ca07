package dto

import (
	"time"

	"github.com/amirhossein-jamali/bank-ledger/internal/domain/entity"
	"github.com/amirhossein-jamali/bank-ledger/internal/domain/port/usecase"
	"github.com/shopspring/decimal"
)

// MutationRequest is the body of POST /api/deposit and POST /api/withdraw
type MutationRequest struct {
	AccountNumber uint64          `json:"acc_no" binding:"required"`
	Amount        decimal.Decimal `json:"amount" binding:"required,money"`
	Reference     string          `json:"reference" binding:"max=64"`
}

// MutationResponse is returned by a committed deposit or withdrawal
type MutationResponse struct {
	Success       bool      `json:"success"`
	Message       string    `json:"message"`
	AccountNumber uint64    `json:"account_number"`
	Amount        string    `json:"amount"`
	NewBalance    string    `json:"new_balance"`
	TransactionID uint64    `json:"transaction_id"`
	Timestamp     time.Time `json:"timestamp"`
	Replayed      bool      `json:"replayed,omitempty"`
}

// TransactionResponse describes one ledger entry
type TransactionResponse struct {
	TransactionID uint64    `json:"transaction_id"`
	Type          string    `json:"type"`
	Amount        string    `json:"amount"`
	BalanceAfter  string    `json:"balance_after"`
	Reference     string    `json:"reference,omitempty"`
	DateTime      time.Time `json:"date_time"`
}

// TransactionListResponse is returned by GET /api/transactions/:acc_no
type TransactionListResponse struct {
	Success       bool                  `json:"success"`
	AccountNumber uint64                `json:"account_number"`
	Name          string                `json:"name"`
	Transactions  []TransactionResponse `json:"transactions"`
	Count         int                   `json:"count"`
}

// ListTransactionsQuery holds the query string of GET /api/transactions/:acc_no
type ListTransactionsQuery struct {
	Limit int `form:"limit" binding:"gte=0"`
}

// NewMutationResponse maps a mutation result for the API
func NewMutationResponse(message string, result *usecase.MutationResult) MutationResponse {
	return MutationResponse{
		Success:       true,
		Message:       message,
		AccountNumber: result.AccountNumber,
		Amount:        entity.FormatAmount(result.Amount),
		NewBalance:    entity.FormatAmount(result.NewBalance),
		TransactionID: result.TransactionID,
		Timestamp:     result.Timestamp,
		Replayed:      result.Replayed,
	}
}

// NewTransactionResponses maps ledger entries for the API
func NewTransactionResponses(entries []*entity.Transaction) []TransactionResponse {
	out := make([]TransactionResponse, len(entries))
	for i, e := range entries {
		out[i] = TransactionResponse{
			TransactionID: e.ID,
			Type:          string(e.Type),
			Amount:        entity.FormatAmount(e.Amount),
			BalanceAfter:  entity.FormatAmount(e.BalanceAfter),
			Reference:     e.Reference,
			DateTime:      e.CreatedAt,
		}
	}
	return out
}
