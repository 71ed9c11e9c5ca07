package persistence

import (
	"context"

	"github.com/amirhossein-jamali/bank-ledger/internal/domain/entity"
)

// BalanceCache holds account snapshots for balance lookups.
// Implementations must treat failures as misses; the store stays the source of truth.
type BalanceCache interface {
	// Get returns the cached snapshot and whether it was found
	Get(ctx context.Context, accountNumber uint64) (*entity.Account, bool, error)

	// Generation returns the account's invalidation counter. Read it before loading the snapshot to be cached.
	Generation(ctx context.Context, accountNumber uint64) (uint64, error)

	// Set stores a snapshot loaded at generation. It is discarded when the account was invalidated since,
	// so a read that raced a mutation never overwrites the newer state. stored reports whether it was kept.
	Set(ctx context.Context, account *entity.Account, generation uint64) (stored bool, err error)

	// Invalidate drops the snapshot and advances the generation after the account was mutated
	Invalidate(ctx context.Context, accountNumber uint64) error
}
