package memory

import (
	"maps"
	"sync"
	"sync/atomic"

	"github.com/amirhossein-jamali/bank-ledger/internal/domain/entity"
)

// Store keeps accounts and ledger entries in process memory.
// It gives the same guarantees the engine relies on from PostgreSQL: a per-account
// row lock held until the unit of work ends, and all-or-nothing publication of writes.
type Store struct {
	mu       sync.RWMutex
	accounts map[uint64]*entity.Account
	entries  map[uint64][]*entity.Transaction // by account, in insertion order
	refs     map[referenceKey]*entity.Transaction

	locksMu sync.Mutex
	locks   map[uint64]chan struct{}

	nextAccount atomic.Uint64
	nextEntry   atomic.Uint64
}

type referenceKey struct {
	account   uint64
	reference string
}

// NewStore creates an empty store
func NewStore() *Store {
	return &Store{
		accounts: make(map[uint64]*entity.Account),
		entries:  make(map[uint64][]*entity.Transaction),
		refs:     make(map[referenceKey]*entity.Transaction),
		locks:    make(map[uint64]chan struct{}),
	}
}

// freeze copies the committed state. Entry slices are only ever appended to, so sharing them is safe.
func (s *Store) freeze() *Store {
	s.mu.RLock()
	defer s.mu.RUnlock()

	frozen := &Store{
		accounts: maps.Clone(s.accounts),
		entries:  maps.Clone(s.entries),
		refs:     maps.Clone(s.refs),
		locks:    make(map[uint64]chan struct{}),
	}
	frozen.nextAccount.Store(s.nextAccount.Load())
	frozen.nextEntry.Store(s.nextEntry.Load())
	return frozen
}

// lockFor returns the single-slot channel guarding an account row
func (s *Store) lockFor(accountNumber uint64) chan struct{} {
	s.locksMu.Lock()
	defer s.locksMu.Unlock()

	ch, ok := s.locks[accountNumber]
	if !ok {
		ch = make(chan struct{}, 1)
		s.locks[accountNumber] = ch
	}
	return ch
}

// publish applies a committed transaction's writes
func (s *Store) publish(tx *memTx) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for n, a := range tx.accounts {
		s.accounts[n] = a
	}
	for _, e := range tx.entries {
		s.entries[e.AccountNumber] = append(s.entries[e.AccountNumber], e)
		if e.Reference != "" {
			s.refs[referenceKey{e.AccountNumber, e.Reference}] = e
		}
	}
}

func cloneAccount(a *entity.Account) *entity.Account {
	return entity.RestoreAccount(a.Number, a.Name, a.Balance(), a.CreatedAt, a.UpdatedAt)
}

func cloneEntry(t *entity.Transaction) *entity.Transaction {
	c := *t
	return &c
}
