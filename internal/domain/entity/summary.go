package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Summary is a read-only aggregate over all accounts and ledger entries
type Summary struct {
	AccountCount     int64
	TotalBalance     decimal.Decimal
	TransactionCount int64
	RecentAccounts   int64         // Accounts created within RecentWindow
	RecentWindow     time.Duration
	GeneratedAt      time.Time
}

// Reconciliation compares an account's stored balance with the balance implied by its ledger
type Reconciliation struct {
	AccountNumber uint64
	Balance       decimal.Decimal
	LedgerBalance decimal.Decimal
	EntryCount    int64
}

// Consistent reports whether the stored balance equals the ledger fold
func (r *Reconciliation) Consistent() bool {
	return r.Balance.Equal(r.LedgerBalance)
}

// Difference returns stored balance minus ledger balance
func (r *Reconciliation) Difference() decimal.Decimal {
	return r.Balance.Sub(r.LedgerBalance)
}
