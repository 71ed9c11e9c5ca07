package usecase

import (
	"context"
	"time"

	"github.com/amirhossein-jamali/bank-ledger/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// CreateAccountRequest carries the inputs of CreateAccount
type CreateAccountRequest struct {
	Name           string
	InitialBalance decimal.Decimal
}

// MutationRequest carries the inputs of Deposit and Withdraw
type MutationRequest struct {
	AccountNumber uint64
	Amount        decimal.Decimal
	// Reference is an optional idempotency key; repeating it replays the original result
	Reference string
}

// MutationResult describes a committed deposit or withdrawal
type MutationResult struct {
	AccountNumber uint64
	Type          entity.TransactionType
	Amount        decimal.Decimal
	NewBalance    decimal.Decimal
	TransactionID uint64
	Timestamp     time.Time
	// Replayed is true when the result was recovered from an earlier request with the same reference
	Replayed bool
}

// LedgerUseCase is the only path that mutates balances. Every change is committed together with its ledger entry.
type LedgerUseCase interface {
	// CreateAccount opens an account and records its Initial entry in one commit unit
	CreateAccount(ctx context.Context, req CreateAccountRequest) (*entity.Account, error)

	// Deposit credits an account and appends a Deposit entry
	Deposit(ctx context.Context, req MutationRequest) (*MutationResult, error)

	// Withdraw debits an account and appends a Withdrawal entry, refusing to overdraw
	Withdraw(ctx context.Context, req MutationRequest) (*MutationResult, error)
}
