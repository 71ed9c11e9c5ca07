package persistence

import (
	"context"

	"github.com/amirhossein-jamali/bank-ledger/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// LedgerTotals is the fold of one account's entries
type LedgerTotals struct {
	Balance decimal.Decimal
	Count   int64
}

// TransactionRepository defines essential methods to interact with the append-only transaction log
type TransactionRepository interface {
	// Append saves a new entry and sets its ID from the store
	//
	// Possible errors:
	// - ErrDuplicateReference: If the account already has an entry with the same reference
	// - NotFoundError: If the referenced account does not exist
	// - ErrDatabaseConnection: If database connection fails
	Append(ctx context.Context, transaction *entity.Transaction) error

	// ListByAccount returns up to limit entries for the account, most recent first
	ListByAccount(ctx context.Context, accountNumber uint64, limit int) ([]*entity.Transaction, error)

	// FindByReference returns the account's entry carrying reference, or nil if there is none
	FindByReference(ctx context.Context, accountNumber uint64, reference string) (*entity.Transaction, error)

	// Count returns the number of entries across all accounts
	Count(ctx context.Context) (int64, error)

	// LedgerTotals folds the account's entries into the balance they imply
	LedgerTotals(ctx context.Context, accountNumber uint64) (LedgerTotals, error)
}
