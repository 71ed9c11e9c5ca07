package persistence

import (
	"context"
	"time"

	"github.com/amirhossein-jamali/bank-ledger/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// AccountFilter narrows and pages ListAccounts results
type AccountFilter struct {
	// NameContains matches a case-insensitive substring of the account name; empty means all accounts
	NameContains string
	Limit        int
	Offset       int
}

// AccountTotals aggregates the account table
type AccountTotals struct {
	Count        int64
	TotalBalance decimal.Decimal
}

// AccountRepository defines essential methods to interact with account data
type AccountRepository interface {
	// Create inserts a new account and sets its Number from the store
	//
	// Possible errors:
	// - ErrConstraintViolation: If the row breaks a table constraint
	// - ErrDatabaseConnection: If database connection fails
	Create(ctx context.Context, account *entity.Account) error

	// GetByNumber retrieves an account without locking it
	//
	// Possible errors:
	// - NotFoundError: If no account has the given number
	// - ErrDatabaseConnection: If database connection fails
	GetByNumber(ctx context.Context, number uint64) (*entity.Account, error)

	// GetForUpdate retrieves an account and locks its row until the surrounding unit of work ends.
	// Must be called with a transactional context from UnitOfWork.
	//
	// Possible errors:
	// - NotFoundError: If no account has the given number
	// - ErrDatabaseConnection: If database connection fails or the lock wait times out
	GetForUpdate(ctx context.Context, number uint64) (*entity.Account, error)

	// UpdateBalance writes the account's balance and updated_at
	//
	// Possible errors:
	// - NotFoundError: If the account no longer exists
	// - ErrConstraintViolation: If the balance would break the non-negative check
	UpdateBalance(ctx context.Context, account *entity.Account) error

	// List returns accounts ordered by number, or by name when filtering by name
	List(ctx context.Context, filter AccountFilter) ([]*entity.Account, error)

	// Totals returns the account count and balance sum
	Totals(ctx context.Context) (AccountTotals, error)

	// CountCreatedSince counts accounts created at or after since
	CountCreatedSince(ctx context.Context, since time.Time) (int64, error)
}
