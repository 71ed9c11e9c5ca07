package entity

import (
	"strings"
	"testing"
	"time"

	errs "github.com/amirhossein-jamali/bank-ledger/internal/domain/error"
	coremocks "github.com/amirhossein-jamali/bank-ledger/mocks/port/core"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewAccount(t *testing.T) {
	fixedTime := time.Date(2023, 1, 1, 12, 0, 0, 0, time.UTC)
	mockTime := coremocks.NewMockTimeProvider(t)
	mockTime.On("Now").Return(fixedTime).Maybe()

	t.Run("Valid account creation", func(t *testing.T) {
		account, err := NewAccount("  John Doe ", decimal.RequireFromString("500.00"), mockTime)

		require.NoError(t, err)
		assert.Equal(t, uint64(0), account.Number)
		assert.Equal(t, "John Doe", account.Name)
		assert.Equal(t, "500.00", account.FormattedBalance())
		assert.Equal(t, fixedTime, account.CreatedAt)
		assert.Equal(t, fixedTime, account.UpdatedAt)
	})

	t.Run("Empty name", func(t *testing.T) {
		for _, name := range []string{"", "   ", "\t\n"} {
			account, err := NewAccount(name, decimal.NewFromInt(100), mockTime)
			assert.ErrorIs(t, err, errs.ErrInvalidName)
			assert.Nil(t, account)
		}
	})

	t.Run("Name too long", func(t *testing.T) {
		_, err := NewAccount(strings.Repeat("a", MaxNameLength+1), decimal.NewFromInt(100), mockTime)
		assert.ErrorIs(t, err, errs.ErrInvalidName)

		account, err := NewAccount(strings.Repeat("a", MaxNameLength), decimal.NewFromInt(100), mockTime)
		require.NoError(t, err)
		assert.Len(t, account.Name, MaxNameLength)
	})

	t.Run("Invalid opening balance", func(t *testing.T) {
		_, err := NewAccount("Alice", decimal.Zero, mockTime)
		assert.ErrorIs(t, err, errs.ErrInvalidAmount)

		_, err = NewAccount("Alice", decimal.RequireFromString("10.001"), mockTime)
		assert.ErrorIs(t, err, errs.ErrInvalidAmount)
	})
}

func TestAccount_CreditDebit(t *testing.T) {
	created := time.Date(2023, 1, 1, 12, 0, 0, 0, time.UTC)
	later := created.Add(time.Hour)
	mockTime := coremocks.NewMockTimeProvider(t)
	mockTime.On("Now").Return(later).Maybe()

	t.Run("Credit increases balance and refreshes UpdatedAt", func(t *testing.T) {
		account := RestoreAccount(1, "John Doe", decimal.RequireFromString("500.00"), created, created)

		require.NoError(t, account.Credit(decimal.RequireFromString("100.00"), mockTime))

		assert.Equal(t, "600.00", account.FormattedBalance())
		assert.Equal(t, later, account.UpdatedAt)
		assert.Equal(t, created, account.CreatedAt)
	})

	t.Run("Credit rejects overflow", func(t *testing.T) {
		account := RestoreAccount(1, "Rich", MaxAmount, created, created)

		err := account.Credit(decimal.RequireFromString("0.01"), mockTime)

		assert.ErrorIs(t, err, errs.ErrAmountOverflow)
		assert.True(t, account.Balance().Equal(MaxAmount))
	})

	t.Run("Debit to exactly zero", func(t *testing.T) {
		account := RestoreAccount(1, "John Doe", decimal.RequireFromString("600.00"), created, created)

		require.NoError(t, account.Debit(decimal.RequireFromString("600.00"), mockTime))

		assert.Equal(t, "0.00", account.FormattedBalance())
	})

	t.Run("Debit beyond balance leaves account untouched", func(t *testing.T) {
		account := RestoreAccount(7, "John Doe", decimal.RequireFromString("600.00"), created, created)

		err := account.Debit(decimal.RequireFromString("700.00"), mockTime)

		require.Error(t, err)
		assert.True(t, errs.IsInsufficientFundsError(err))
		var fundsErr *errs.InsufficientFundsError
		require.ErrorAs(t, err, &fundsErr)
		assert.Equal(t, uint64(7), fundsErr.AccountNumber)
		assert.Equal(t, "700.00", fundsErr.Requested)
		assert.Equal(t, "600.00", fundsErr.Available)
		assert.Equal(t, "600.00", account.FormattedBalance())
		assert.Equal(t, created, account.UpdatedAt)
	})

	t.Run("Non-positive amounts are rejected", func(t *testing.T) {
		account := RestoreAccount(1, "John Doe", decimal.RequireFromString("10.00"), created, created)

		assert.ErrorIs(t, account.Credit(decimal.Zero, mockTime), errs.ErrInvalidAmount)
		assert.ErrorIs(t, account.Debit(decimal.NewFromInt(-1), mockTime), errs.ErrInvalidAmount)
		assert.Equal(t, "10.00", account.FormattedBalance())
	})
}
