package memory

import (
	"context"
	"fmt"
	"sort"

	"github.com/amirhossein-jamali/bank-ledger/internal/domain/entity"
	errs "github.com/amirhossein-jamali/bank-ledger/internal/domain/error"
	"github.com/amirhossein-jamali/bank-ledger/internal/domain/port/persistence"
	"github.com/shopspring/decimal"
)

// TransactionRepository is the append-only ledger of a Store
type TransactionRepository struct {
	store *Store
	tx    *memTx
}

var _ persistence.TransactionRepository = (*TransactionRepository)(nil)

// entriesFor returns committed entries of the account followed by the transaction's pending ones
func (r *TransactionRepository) entriesFor(accountNumber uint64) []*entity.Transaction {
	r.store.mu.RLock()
	committed := r.store.entries[accountNumber]
	out := make([]*entity.Transaction, len(committed))
	copy(out, committed)
	r.store.mu.RUnlock()

	if r.tx != nil {
		for _, e := range r.tx.entries {
			if e.AccountNumber == accountNumber {
				out = append(out, e)
			}
		}
	}
	return out
}

func (r *TransactionRepository) accountExists(number uint64) bool {
	if r.tx != nil {
		if _, ok := r.tx.accounts[number]; ok {
			return true
		}
	}
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	_, ok := r.store.accounts[number]
	return ok
}

// Append stores an entry and assigns its ID
func (r *TransactionRepository) Append(ctx context.Context, transaction *entity.Transaction) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if !r.accountExists(transaction.AccountNumber) {
		return errs.NewNotFoundError(transaction.AccountNumber)
	}
	if transaction.Reference != "" {
		existing, err := r.FindByReference(ctx, transaction.AccountNumber, transaction.Reference)
		if err != nil {
			return err
		}
		if existing != nil {
			return fmt.Errorf("%w: %q", errs.ErrDuplicateReference, transaction.Reference)
		}
	}

	transaction.ID = r.store.nextEntry.Add(1)
	stored := cloneEntry(transaction)

	if r.tx != nil {
		r.tx.entries = append(r.tx.entries, stored)
		return nil
	}

	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	r.store.entries[stored.AccountNumber] = append(r.store.entries[stored.AccountNumber], stored)
	if stored.Reference != "" {
		r.store.refs[referenceKey{stored.AccountNumber, stored.Reference}] = stored
	}
	return nil
}

// ListByAccount returns up to limit entries, most recent first
func (r *TransactionRepository) ListByAccount(ctx context.Context, accountNumber uint64, limit int) ([]*entity.Transaction, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	entries := r.entriesFor(accountNumber)
	sort.SliceStable(entries, func(i, j int) bool {
		if !entries[i].CreatedAt.Equal(entries[j].CreatedAt) {
			return entries[i].CreatedAt.After(entries[j].CreatedAt)
		}
		return entries[i].ID > entries[j].ID
	})
	if limit > 0 && limit < len(entries) {
		entries = entries[:limit]
	}

	out := make([]*entity.Transaction, len(entries))
	for i, e := range entries {
		out[i] = cloneEntry(e)
	}
	return out, nil
}

// FindByReference returns the account's entry carrying reference, or nil
func (r *TransactionRepository) FindByReference(ctx context.Context, accountNumber uint64, reference string) (*entity.Transaction, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if r.tx != nil {
		for _, e := range r.tx.entries {
			if e.AccountNumber == accountNumber && e.Reference == reference {
				return cloneEntry(e), nil
			}
		}
	}

	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	if e, ok := r.store.refs[referenceKey{accountNumber, reference}]; ok {
		return cloneEntry(e), nil
	}
	return nil, nil
}

// Count returns the number of entries across all accounts
func (r *TransactionRepository) Count(ctx context.Context) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	r.store.mu.RLock()
	var n int64
	for _, entries := range r.store.entries {
		n += int64(len(entries))
	}
	r.store.mu.RUnlock()

	if r.tx != nil {
		n += int64(len(r.tx.entries))
	}
	return n, nil
}

// LedgerTotals folds the account's entries
func (r *TransactionRepository) LedgerTotals(ctx context.Context, accountNumber uint64) (persistence.LedgerTotals, error) {
	if err := ctx.Err(); err != nil {
		return persistence.LedgerTotals{Balance: decimal.Zero}, err
	}

	entries := r.entriesFor(accountNumber)
	return persistence.LedgerTotals{
		Balance: entity.FoldLedger(entries),
		Count:   int64(len(entries)),
	}, nil
}
