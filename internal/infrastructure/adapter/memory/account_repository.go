package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/amirhossein-jamali/bank-ledger/internal/domain/entity"
	errs "github.com/amirhossein-jamali/bank-ledger/internal/domain/error"
	"github.com/amirhossein-jamali/bank-ledger/internal/domain/port/persistence"
	"github.com/shopspring/decimal"
)

// AccountRepository reads committed accounts and, inside a transaction, that transaction's own writes
type AccountRepository struct {
	store *Store
	tx    *memTx
}

var _ persistence.AccountRepository = (*AccountRepository)(nil)

func (r *AccountRepository) lookup(number uint64) (*entity.Account, bool) {
	if r.tx != nil {
		if a, ok := r.tx.accounts[number]; ok {
			return a, true
		}
	}
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	a, ok := r.store.accounts[number]
	return a, ok
}

// snapshot merges committed accounts with the transaction's pending ones
func (r *AccountRepository) snapshot() []*entity.Account {
	r.store.mu.RLock()
	merged := make(map[uint64]*entity.Account, len(r.store.accounts))
	for n, a := range r.store.accounts {
		merged[n] = a
	}
	r.store.mu.RUnlock()

	if r.tx != nil {
		for n, a := range r.tx.accounts {
			merged[n] = a
		}
	}

	out := make([]*entity.Account, 0, len(merged))
	for _, a := range merged {
		out = append(out, a)
	}
	return out
}

func (r *AccountRepository) write(account *entity.Account) {
	stored := cloneAccount(account)
	if r.tx != nil {
		r.tx.accounts[account.Number] = stored
		return
	}
	r.store.mu.Lock()
	r.store.accounts[account.Number] = stored
	r.store.mu.Unlock()
}

// Create assigns the next account number and stores the account
func (r *AccountRepository) Create(ctx context.Context, account *entity.Account) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if account.Balance().IsNegative() {
		return fmt.Errorf("%w: balance cannot be negative", errs.ErrConstraintViolation)
	}

	account.Number = r.store.nextAccount.Add(1)
	r.write(account)
	return nil
}

// GetByNumber returns a copy of the account
func (r *AccountRepository) GetByNumber(ctx context.Context, number uint64) (*entity.Account, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	a, ok := r.lookup(number)
	if !ok {
		return nil, errs.NewNotFoundError(number)
	}
	return cloneAccount(a), nil
}

// GetForUpdate waits for the account's row lock and holds it until the transaction ends
func (r *AccountRepository) GetForUpdate(ctx context.Context, number uint64) (*entity.Account, error) {
	if r.tx == nil {
		return nil, fmt.Errorf("row lock on account %d: %w", number, errNoTransaction)
	}

	if _, held := r.tx.held[number]; !held {
		// no lock entry for accounts that do not exist
		if _, ok := r.lookup(number); !ok {
			return nil, errs.NewNotFoundError(number)
		}
		ch := r.store.lockFor(number)
		select {
		case ch <- struct{}{}:
			r.tx.held[number] = ch
		case <-ctx.Done():
			return nil, fmt.Errorf("waiting for lock on account %d: %w", number, ctx.Err())
		}
	}

	return r.GetByNumber(ctx, number)
}

// UpdateBalance stores the account's balance and updated_at
func (r *AccountRepository) UpdateBalance(ctx context.Context, account *entity.Account) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if account.Balance().IsNegative() {
		return fmt.Errorf("%w: balance cannot be negative", errs.ErrConstraintViolation)
	}

	current, ok := r.lookup(account.Number)
	if !ok {
		return errs.NewNotFoundError(account.Number)
	}
	r.write(entity.RestoreAccount(current.Number, current.Name, account.Balance(), current.CreatedAt, account.UpdatedAt))
	return nil
}

// List returns accounts ordered by number, or by name then number when filtered by name
func (r *AccountRepository) List(ctx context.Context, filter persistence.AccountFilter) ([]*entity.Account, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	needle := strings.ToLower(strings.TrimSpace(filter.NameContains))
	var out []*entity.Account
	for _, a := range r.snapshot() {
		if needle != "" && !strings.Contains(strings.ToLower(a.Name), needle) {
			continue
		}
		out = append(out, cloneAccount(a))
	}

	sort.Slice(out, func(i, j int) bool {
		if needle != "" && out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].Number < out[j].Number
	})

	if filter.Offset > 0 {
		if filter.Offset >= len(out) {
			return []*entity.Account{}, nil
		}
		out = out[filter.Offset:]
	}
	if filter.Limit > 0 && filter.Limit < len(out) {
		out = out[:filter.Limit]
	}
	return out, nil
}

// Totals returns the account count and balance sum
func (r *AccountRepository) Totals(ctx context.Context) (persistence.AccountTotals, error) {
	if err := ctx.Err(); err != nil {
		return persistence.AccountTotals{}, err
	}

	totals := persistence.AccountTotals{TotalBalance: decimal.Zero}
	for _, a := range r.snapshot() {
		totals.Count++
		totals.TotalBalance = totals.TotalBalance.Add(a.Balance())
	}
	return totals, nil
}

// CountCreatedSince counts accounts created at or after since
func (r *AccountRepository) CountCreatedSince(ctx context.Context, since time.Time) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	var n int64
	for _, a := range r.snapshot() {
		if !a.CreatedAt.Before(since) {
			n++
		}
	}
	return n, nil
}
