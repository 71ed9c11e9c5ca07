package persistence

import (
	"context"
)

// UnitOfWork coordinates one atomic commit unit across the account and transaction repositories
type UnitOfWork interface {
	// Begin starts a new transaction and returns a transactional context
	Begin(ctx context.Context) (context.Context, error)

	// Commit commits the transaction in the given context
	Commit(ctx context.Context) error

	// Rollback rolls back the transaction in the given context
	Rollback(ctx context.Context) error

	// Execute runs fn inside a transaction, committing when it returns nil and rolling back otherwise.
	// The whole unit is retried when the store reports a transient failure, so fn must be safe to re-run.
	Execute(ctx context.Context, fn func(txCtx context.Context) error) error

	// ExecuteReadOnly runs fn in a read-only transaction whose reads all observe the same committed snapshot
	ExecuteReadOnly(ctx context.Context, fn func(txCtx context.Context) error) error

	// Accounts returns an account repository bound to the context's transaction, if any
	Accounts(ctx context.Context) AccountRepository

	// Transactions returns a transaction repository bound to the context's transaction, if any
	Transactions(ctx context.Context) TransactionRepository
}
