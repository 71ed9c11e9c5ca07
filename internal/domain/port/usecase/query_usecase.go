package usecase

import (
	"context"

	"github.com/amirhossein-jamali/bank-ledger/internal/domain/entity"
	"github.com/amirhossein-jamali/bank-ledger/internal/domain/port/persistence"
)

// QueryUseCase provides read-only projections over accounts and the transaction log
type QueryUseCase interface {
	// GetBalance returns the current account snapshot
	GetBalance(ctx context.Context, accountNumber uint64) (*entity.Account, error)

	// ListTransactions returns the account's entries, most recent first.
	// A limit of zero or less selects the configured default.
	ListTransactions(ctx context.Context, accountNumber uint64, limit int) ([]*entity.Transaction, error)

	// ListAccounts returns accounts in a stable order
	ListAccounts(ctx context.Context, filter persistence.AccountFilter) ([]*entity.Account, error)

	// Summary aggregates account and transaction counts and the total balance
	Summary(ctx context.Context) (*entity.Summary, error)

	// Reconcile compares an account's balance with the fold of its ledger entries
	Reconcile(ctx context.Context, accountNumber uint64) (*entity.Reconciliation, error)
}
