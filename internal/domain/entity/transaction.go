package entity

import (
	"fmt"
	"strings"
	"time"

	errs "github.com/amirhossein-jamali/bank-ledger/internal/domain/error"
	coreport "github.com/amirhossein-jamali/bank-ledger/internal/domain/port/core"
	"github.com/shopspring/decimal"
)

// TransactionType is the closed set of balance-affecting events
type TransactionType string

// Transaction types
const (
	TypeInitial    TransactionType = "Initial"
	TypeDeposit    TransactionType = "Deposit"
	TypeWithdrawal TransactionType = "Withdrawal"
)

// MaxReferenceLength matches the width of the transactions.reference column
const MaxReferenceLength = 64

// ParseTransactionType converts a stored value back into a TransactionType
func ParseTransactionType(value string) (TransactionType, error) {
	switch t := TransactionType(value); t {
	case TypeInitial, TypeDeposit, TypeWithdrawal:
		return t, nil
	default:
		return "", fmt.Errorf("unknown transaction type %q", value)
	}
}

// IsCredit returns true if this type increases the balance
func (t TransactionType) IsCredit() bool {
	return t == TypeInitial || t == TypeDeposit
}

// Transaction is an immutable ledger entry. The amount is always positive; the sign comes from Type.
type Transaction struct {
	ID            uint64          // Assigned by the store
	AccountNumber uint64          // Owning account
	Type          TransactionType // Initial, Deposit or Withdrawal
	Amount        decimal.Decimal // Strictly positive
	BalanceAfter  decimal.Decimal // Account balance produced by this entry
	Reference     string          // Optional client idempotency key
	CreatedAt     time.Time
}

// NormalizeReference trims a client reference and checks its length
func NormalizeReference(reference string) (string, error) {
	reference = strings.TrimSpace(reference)
	if len(reference) > MaxReferenceLength {
		return "", fmt.Errorf("reference exceeds %d characters", MaxReferenceLength)
	}
	return reference, nil
}

// NewTransaction creates a ledger entry for an account mutation
func NewTransaction(
	accountNumber uint64,
	txType TransactionType,
	amount decimal.Decimal,
	balanceAfter decimal.Decimal,
	reference string,
	timeProvider coreport.TimeProvider,
) (*Transaction, error) {
	if accountNumber == 0 {
		return nil, errs.ErrInvalidAccountNumber
	}
	if _, err := ParseTransactionType(string(txType)); err != nil {
		return nil, err
	}
	if err := ValidatePositiveAmount(amount); err != nil {
		return nil, err
	}
	if balanceAfter.IsNegative() {
		return nil, fmt.Errorf("%w: balance after %s cannot be negative", errs.ErrConstraintViolation, FormatAmount(balanceAfter))
	}

	return &Transaction{
		AccountNumber: accountNumber,
		Type:          txType,
		Amount:        amount,
		BalanceAfter:  balanceAfter,
		Reference:     reference,
		CreatedAt:     timeProvider.Now(),
	}, nil
}

// SignedAmount returns the amount with the sign implied by its type
func (t *Transaction) SignedAmount() decimal.Decimal {
	if t.Type.IsCredit() {
		return t.Amount
	}
	return t.Amount.Neg()
}

// Matches reports whether this entry records the same operation, used when replaying a reference
func (t *Transaction) Matches(txType TransactionType, amount decimal.Decimal) bool {
	return t.Type == txType && t.Amount.Equal(amount)
}

// FoldLedger sums the signed amounts of entries, giving the balance they imply
func FoldLedger(entries []*Transaction) decimal.Decimal {
	total := decimal.Zero
	for _, e := range entries {
		total = total.Add(e.SignedAmount())
	}
	return total
}
