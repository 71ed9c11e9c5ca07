package memory

import (
	"context"
	"errors"
	"fmt"

	"github.com/amirhossein-jamali/bank-ledger/internal/domain/entity"
	coreport "github.com/amirhossein-jamali/bank-ledger/internal/domain/port/core"
	"github.com/amirhossein-jamali/bank-ledger/internal/domain/port/persistence"
)

type contextKey string

const txKey contextKey = "memory-tx"

var errNoTransaction = errors.New("no transaction found in context")

// memTx buffers writes and tracks held row locks until commit or rollback
type memTx struct {
	accounts map[uint64]*entity.Account
	entries  []*entity.Transaction
	held     map[uint64]chan struct{}
	done     bool
	frozen   *Store // set for read-only units of work
}

func (tx *memTx) release() {
	for n, ch := range tx.held {
		<-ch
		delete(tx.held, n)
	}
}

// UnitOfWork runs commit units against a Store
type UnitOfWork struct {
	store  *Store
	logger coreport.Logger
}

// NewUnitOfWork creates a UnitOfWork backed by store
func NewUnitOfWork(store *Store, logger coreport.Logger) *UnitOfWork {
	return &UnitOfWork{store: store, logger: logger}
}

var _ persistence.UnitOfWork = (*UnitOfWork)(nil)

// Begin starts a transaction and returns a transactional context
func (u *UnitOfWork) Begin(ctx context.Context) (context.Context, error) {
	if err := ctx.Err(); err != nil {
		return ctx, fmt.Errorf("failed to begin transaction: %w", err)
	}
	tx := &memTx{
		accounts: make(map[uint64]*entity.Account),
		held:     make(map[uint64]chan struct{}),
	}
	return context.WithValue(ctx, txKey, tx), nil
}

// Commit publishes the buffered writes and releases the row locks
func (u *UnitOfWork) Commit(ctx context.Context) error {
	tx, ok := ctx.Value(txKey).(*memTx)
	if !ok || tx == nil {
		return errNoTransaction
	}
	if tx.done {
		return fmt.Errorf("transaction has already been committed or rolled back")
	}

	u.store.publish(tx)
	tx.done = true
	tx.release()
	return nil
}

// Rollback discards the buffered writes and releases the row locks
func (u *UnitOfWork) Rollback(ctx context.Context) error {
	tx, ok := ctx.Value(txKey).(*memTx)
	if !ok || tx == nil {
		return errNoTransaction
	}
	if tx.done {
		return nil
	}

	tx.done = true
	tx.accounts = nil
	tx.entries = nil
	tx.release()
	return nil
}

// Execute runs fn in one transaction. The memory store has no transient failures, so there is no retry.
func (u *UnitOfWork) Execute(ctx context.Context, fn func(txCtx context.Context) error) (err error) {
	txCtx, err := u.Begin(ctx)
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
			u.logger.Error("Failed to rollback transaction", map[string]any{"error": rbErr.Error()})
		}
		return err
	}

	return u.Commit(txCtx)
}

// ExecuteReadOnly runs fn against a copy of the committed state taken when it starts
func (u *UnitOfWork) ExecuteReadOnly(ctx context.Context, fn func(txCtx context.Context) error) error {
	if tx := txFrom(ctx); tx != nil {
		return fn(ctx)
	}

	txCtx, err := u.Begin(ctx)
	if err != nil {
		return err
	}
	tx := txCtx.Value(txKey).(*memTx)
	tx.frozen = u.store.freeze()

	err = fn(txCtx)
	_ = u.Rollback(txCtx)
	return err
}

// Accounts returns an account repository bound to the context's transaction
func (u *UnitOfWork) Accounts(ctx context.Context) persistence.AccountRepository {
	tx := txFrom(ctx)
	return &AccountRepository{store: u.storeFor(tx), tx: tx}
}

// Transactions returns a transaction repository bound to the context's transaction
func (u *UnitOfWork) Transactions(ctx context.Context) persistence.TransactionRepository {
	tx := txFrom(ctx)
	return &TransactionRepository{store: u.storeFor(tx), tx: tx}
}

func (u *UnitOfWork) storeFor(tx *memTx) *Store {
	if tx != nil && tx.frozen != nil {
		return tx.frozen
	}
	return u.store
}

func txFrom(ctx context.Context) *memTx {
	tx, _ := ctx.Value(txKey).(*memTx)
	if tx != nil && tx.done {
		return nil
	}
	return tx
}
