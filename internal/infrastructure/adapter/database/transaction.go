package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	coreport "github.com/amirhossein-jamali/bank-ledger/internal/domain/port/core"
	"github.com/amirhossein-jamali/bank-ledger/internal/domain/port/persistence"
	"github.com/amirhossein-jamali/bank-ledger/internal/infrastructure/adapter/repository"
	"gorm.io/gorm"
)

type contextKey string

const txKey contextKey = "tx"

var errNoTransaction = errors.New("no transaction found in context")

// UnitOfWorkOptions tunes how units of work begin and retry
type UnitOfWorkOptions struct {
	Isolation sql.IsolationLevel
	Retry     RetryConfig
}

// UnitOfWork implements the unit of work pattern for database transactions
type UnitOfWork struct {
	db           *gorm.DB
	logger       coreport.Logger
	timeProvider coreport.TimeProvider
	errorMapper  *ErrorMapper
	options      UnitOfWorkOptions
}

// NewUnitOfWork creates a new UnitOfWork instance
func NewUnitOfWork(db *gorm.DB, logger coreport.Logger, timeProvider coreport.TimeProvider, options UnitOfWorkOptions) *UnitOfWork {
	return &UnitOfWork{
		db:           db,
		logger:       logger,
		timeProvider: timeProvider,
		errorMapper:  NewErrorMapper(),
		options:      options,
	}
}

var _ persistence.UnitOfWork = (*UnitOfWork)(nil)

func txFromContext(ctx context.Context) (*gorm.DB, bool) {
	tx, ok := ctx.Value(txKey).(*gorm.DB)
	return tx, ok && tx != nil
}

// Begin starts a new database transaction
func (u *UnitOfWork) Begin(ctx context.Context) (context.Context, error) {
	return u.begin(ctx, &sql.TxOptions{Isolation: u.options.Isolation})
}

func (u *UnitOfWork) begin(ctx context.Context, opts *sql.TxOptions) (context.Context, error) {
	if _, ok := txFromContext(ctx); ok {
		return ctx, errors.New("transaction already started in context")
	}

	tx := u.db.WithContext(ctx).Begin(opts)
	if tx.Error != nil {
		u.logger.Error("Failed to begin transaction", map[string]any{"error": tx.Error.Error()})
		return ctx, u.errorMapper.MapError(fmt.Errorf("failed to begin transaction: %w", tx.Error), "begin")
	}

	return context.WithValue(ctx, txKey, tx), nil
}

// Commit commits the current transaction
func (u *UnitOfWork) Commit(ctx context.Context) error {
	tx, ok := txFromContext(ctx)
	if !ok {
		return errNoTransaction
	}

	if err := tx.Commit().Error; err != nil {
		u.logger.Error("Failed to commit transaction", map[string]any{"error": err.Error()})
		return u.errorMapper.MapCommitError(err)
	}
	return nil
}

// Rollback rolls back the current transaction
func (u *UnitOfWork) Rollback(ctx context.Context) error {
	tx, ok := txFromContext(ctx)
	if !ok {
		return errNoTransaction
	}

	err := tx.Rollback().Error
	if errors.Is(err, sql.ErrTxDone) {
		u.logger.Warn("Transaction has already been committed or rolled back", map[string]any{
			"error": err.Error(),
		})
		return nil
	}
	if err != nil {
		u.logger.Error("Failed to rollback transaction", map[string]any{"error": err.Error()})
		return fmt.Errorf("failed to rollback transaction: %w", err)
	}
	return nil
}

// Execute runs fn in one transaction and re-runs the whole unit when the database reports a
// transient failure such as a serialization failure or deadlock.
// Called with a context that already holds a transaction, fn joins it instead.
func (u *UnitOfWork) Execute(ctx context.Context, fn func(txCtx context.Context) error) error {
	if _, ok := txFromContext(ctx); ok {
		return fn(ctx)
	}

	opts := &sql.TxOptions{Isolation: u.options.Isolation}
	return RetryOnTransientError(ctx, u.options.Retry, func() error {
		return u.runOnce(ctx, opts, fn)
	}, u.errorMapper, u.timeProvider, u.logger)
}

// ExecuteReadOnly runs fn in a read-only REPEATABLE READ transaction, so every read observes one snapshot.
// Called with a context that already holds a transaction, fn joins it instead.
func (u *UnitOfWork) ExecuteReadOnly(ctx context.Context, fn func(txCtx context.Context) error) error {
	if _, ok := txFromContext(ctx); ok {
		return fn(ctx)
	}

	opts := &sql.TxOptions{Isolation: sql.LevelRepeatableRead, ReadOnly: true}
	return RetryOnTransientError(ctx, u.options.Retry, func() error {
		return u.runOnce(ctx, opts, fn)
	}, u.errorMapper, u.timeProvider, u.logger)
}

func (u *UnitOfWork) runOnce(ctx context.Context, opts *sql.TxOptions, fn func(txCtx context.Context) error) error {
	txCtx, err := u.begin(ctx, opts)
	if err != nil {
		return err
	}

	defer func() {
		if p := recover(); p != nil {
			_ = u.Rollback(txCtx)
			panic(p)
		}
	}()

	if err := fn(txCtx); err != nil {
		if rbErr := u.Rollback(txCtx); rbErr != nil {
			u.logger.Error("Rollback after failed unit of work also failed", map[string]any{
				"error":          err.Error(),
				"rollback_error": rbErr.Error(),
			})
		}
		return err
	}

	return u.Commit(txCtx)
}

// Accounts returns an account repository bound to the context's transaction, if any
func (u *UnitOfWork) Accounts(ctx context.Context) persistence.AccountRepository {
	return repository.NewAccountRepository(u.getDbFromContext(ctx), u.logger)
}

// Transactions returns a transaction repository bound to the context's transaction, if any
func (u *UnitOfWork) Transactions(ctx context.Context) persistence.TransactionRepository {
	return repository.NewTransactionRepository(u.getDbFromContext(ctx), u.logger)
}

// getDbFromContext retrieves the database instance from context
func (u *UnitOfWork) getDbFromContext(ctx context.Context) *gorm.DB {
	if tx, ok := txFromContext(ctx); ok {
		return tx.WithContext(ctx)
	}
	return u.db.WithContext(ctx)
}
