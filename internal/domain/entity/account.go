package entity

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	errs "github.com/amirhossein-jamali/bank-ledger/internal/domain/error"
	coreport "github.com/amirhossein-jamali/bank-ledger/internal/domain/port/core"
	"github.com/shopspring/decimal"
)

// MaxNameLength matches the width of the accounts.name column
const MaxNameLength = 100

// Account is a named holder of a balance, identified by a store-assigned number
type Account struct {
	Number    uint64          // Assigned by the store on creation, zero until persisted
	Name      string          // Display name, trimmed
	balance   decimal.Decimal // Never negative once committed (private)
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NormalizeName trims the name and checks it against the column limits
func NormalizeName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", fmt.Errorf("%w: name is required", errs.ErrInvalidName)
	}
	if utf8.RuneCountInString(name) > MaxNameLength {
		return "", fmt.Errorf("%w: name exceeds %d characters", errs.ErrInvalidName, MaxNameLength)
	}
	return name, nil
}

// NewAccount creates an unsaved account holding the opening balance
func NewAccount(name string, initialBalance decimal.Decimal, timeProvider coreport.TimeProvider) (*Account, error) {
	normalized, err := NormalizeName(name)
	if err != nil {
		return nil, err
	}
	if err := ValidatePositiveAmount(initialBalance); err != nil {
		return nil, err
	}

	now := timeProvider.Now()
	return &Account{
		Name:      normalized,
		balance:   initialBalance,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// RestoreAccount rebuilds an account from persisted state
func RestoreAccount(number uint64, name string, balance decimal.Decimal, createdAt, updatedAt time.Time) *Account {
	return &Account{
		Number:    number,
		Name:      name,
		balance:   balance,
		CreatedAt: createdAt,
		UpdatedAt: updatedAt,
	}
}

// Balance returns the current balance
func (a *Account) Balance() decimal.Decimal {
	return a.balance
}

// FormattedBalance returns the balance as a string with 2 decimal places
func (a *Account) FormattedBalance() string {
	return FormatAmount(a.balance)
}

// CanDebit checks if the account holds at least amount
func (a *Account) CanDebit(amount decimal.Decimal) bool {
	return a.balance.GreaterThanOrEqual(amount)
}

// Credit adds amount to the balance
func (a *Account) Credit(amount decimal.Decimal, timeProvider coreport.TimeProvider) error {
	if err := ValidatePositiveAmount(amount); err != nil {
		return err
	}
	next := a.balance.Add(amount)
	if next.GreaterThan(MaxAmount) {
		return fmt.Errorf("%w: balance would exceed %s", errs.ErrAmountOverflow, FormatAmount(MaxAmount))
	}
	a.balance = next
	a.UpdatedAt = timeProvider.Now()
	return nil
}

// Debit subtracts amount from the balance, refusing to go below zero
func (a *Account) Debit(amount decimal.Decimal, timeProvider coreport.TimeProvider) error {
	if err := ValidatePositiveAmount(amount); err != nil {
		return err
	}
	if !a.CanDebit(amount) {
		return errs.NewInsufficientFundsError(a.Number, FormatAmount(amount), a.FormattedBalance())
	}
	a.balance = a.balance.Sub(amount)
	a.UpdatedAt = timeProvider.Now()
	return nil
}
