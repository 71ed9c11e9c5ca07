package query

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/amirhossein-jamali/bank-ledger/internal/domain/entity"
	errs "github.com/amirhossein-jamali/bank-ledger/internal/domain/error"
	"github.com/amirhossein-jamali/bank-ledger/internal/domain/port/persistence"
	coremocks "github.com/amirhossein-jamali/bank-ledger/mocks/port/core"
	persistencemocks "github.com/amirhossein-jamali/bank-ledger/mocks/port/persistence"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var fixedTime = time.Date(2023, 1, 8, 12, 0, 0, 0, time.UTC)

type fixture struct {
	uow      *persistencemocks.MockUnitOfWork
	accounts *persistencemocks.MockAccountRepository
	entries  *persistencemocks.MockTransactionRepository
	cache    *persistencemocks.MockBalanceCache
	logger   *coremocks.MockLogger
}

func newFixture(t *testing.T) *fixture {
	f := &fixture{
		uow:      persistencemocks.NewMockUnitOfWork(t),
		accounts: persistencemocks.NewMockAccountRepository(t),
		entries:  persistencemocks.NewMockTransactionRepository(t),
		cache:    persistencemocks.NewMockBalanceCache(t),
		logger:   coremocks.NewMockLogger(t),
	}
	f.logger.On("With", mock.Anything).Return(f.logger)
	f.logger.On("Debug", mock.Anything, mock.Anything).Maybe()
	f.logger.On("Warn", mock.Anything, mock.Anything).Maybe()
	f.logger.On("Error", mock.Anything, mock.Anything).Maybe()
	f.uow.On("Accounts", mock.Anything).Return(f.accounts).Maybe()
	f.uow.On("Transactions", mock.Anything).Return(f.entries).Maybe()
	f.uow.On("Execute", mock.Anything, mock.Anything).
		Return(func(ctx context.Context, fn func(context.Context) error) error { return fn(ctx) }).Maybe()
	f.uow.On("ExecuteReadOnly", mock.Anything, mock.Anything).
		Return(func(ctx context.Context, fn func(context.Context) error) error { return fn(ctx) }).Maybe()
	return f
}

func (f *fixture) service(t *testing.T, withCache bool) *Service {
	clock := coremocks.NewMockTimeProvider(t)
	clock.On("Now").Return(fixedTime).Maybe()

	var cache persistence.BalanceCache
	if withCache {
		cache = f.cache
	}
	return NewQueryService(f.uow, cache, clock, f.logger, DefaultLimits())
}

func account(number uint64, balance string) *entity.Account {
	return entity.RestoreAccount(number, "John Doe", decimal.RequireFromString(balance), fixedTime, fixedTime)
}

func TestGetBalance(t *testing.T) {
	ctx := context.Background()

	t.Run("Reads from the store without a cache", func(t *testing.T) {
		f := newFixture(t)
		f.accounts.On("GetByNumber", mock.Anything, uint64(1)).Return(account(1, "600.00"), nil).Once()

		got, err := f.service(t, false).GetBalance(ctx, 1)

		require.NoError(t, err)
		assert.Equal(t, "600.00", got.FormattedBalance())
	})

	t.Run("Cache hit skips the store", func(t *testing.T) {
		f := newFixture(t)
		f.cache.On("Get", mock.Anything, uint64(1)).Return(account(1, "42.00"), true, nil).Once()

		got, err := f.service(t, true).GetBalance(ctx, 1)

		require.NoError(t, err)
		assert.Equal(t, "42.00", got.FormattedBalance())
		f.accounts.AssertNotCalled(t, "GetByNumber", mock.Anything, mock.Anything)
	})

	t.Run("Cache miss fills the cache", func(t *testing.T) {
		f := newFixture(t)
		stored := account(1, "600.00")
		f.cache.On("Get", mock.Anything, uint64(1)).Return(nil, false, nil).Once()
		f.cache.On("Generation", mock.Anything, uint64(1)).Return(uint64(4), nil).Once()
		f.accounts.On("GetByNumber", mock.Anything, uint64(1)).Return(stored, nil).Once()
		f.cache.On("Set", mock.Anything, stored, uint64(4)).Return(true, nil).Once()

		got, err := f.service(t, true).GetBalance(ctx, 1)

		require.NoError(t, err)
		assert.Same(t, stored, got)
	})

	t.Run("Write-back discarded after a concurrent mutation", func(t *testing.T) {
		f := newFixture(t)
		stored := account(1, "600.00")
		f.cache.On("Get", mock.Anything, uint64(1)).Return(nil, false, nil).Once()
		f.cache.On("Generation", mock.Anything, uint64(1)).Return(uint64(4), nil).Once()
		f.accounts.On("GetByNumber", mock.Anything, uint64(1)).Return(stored, nil).Once()
		f.cache.On("Set", mock.Anything, stored, uint64(4)).Return(false, nil).Once()

		got, err := f.service(t, true).GetBalance(ctx, 1)

		require.NoError(t, err)
		assert.Same(t, stored, got)
		f.logger.AssertCalled(t, "Debug", "Balance cache write skipped after concurrent mutation", mock.Anything)
	})

	t.Run("Cache errors fall back to the store", func(t *testing.T) {
		f := newFixture(t)
		f.cache.On("Get", mock.Anything, uint64(1)).Return(nil, false, errors.New("redis down")).Once()
		f.cache.On("Generation", mock.Anything, uint64(1)).Return(uint64(0), nil).Once()
		f.accounts.On("GetByNumber", mock.Anything, uint64(1)).Return(account(1, "1.00"), nil).Once()
		f.cache.On("Set", mock.Anything, mock.Anything, uint64(0)).Return(false, errors.New("redis down")).Once()

		got, err := f.service(t, true).GetBalance(ctx, 1)

		require.NoError(t, err)
		assert.Equal(t, "1.00", got.FormattedBalance())
	})

	t.Run("Unknown generation skips the write-back", func(t *testing.T) {
		f := newFixture(t)
		f.cache.On("Get", mock.Anything, uint64(1)).Return(nil, false, nil).Once()
		f.cache.On("Generation", mock.Anything, uint64(1)).Return(uint64(0), errors.New("redis down")).Once()
		f.accounts.On("GetByNumber", mock.Anything, uint64(1)).Return(account(1, "1.00"), nil).Once()

		got, err := f.service(t, true).GetBalance(ctx, 1)

		require.NoError(t, err)
		assert.Equal(t, "1.00", got.FormattedBalance())
		f.cache.AssertNotCalled(t, "Set", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Unknown account", func(t *testing.T) {
		f := newFixture(t)
		f.accounts.On("GetByNumber", mock.Anything, uint64(9)).Return(nil, errs.NewNotFoundError(9)).Once()

		_, err := f.service(t, false).GetBalance(ctx, 9)

		assert.True(t, errs.IsNotFoundError(err))
	})

	t.Run("Store failure", func(t *testing.T) {
		f := newFixture(t)
		f.accounts.On("GetByNumber", mock.Anything, uint64(1)).Return(nil, errs.ErrDatabaseConnection).Once()

		_, err := f.service(t, false).GetBalance(ctx, 1)

		assert.True(t, errs.IsStorageError(err))
	})

	t.Run("Zero account number", func(t *testing.T) {
		f := newFixture(t)

		_, err := f.service(t, false).GetBalance(ctx, 0)

		assert.ErrorIs(t, err, errs.ErrInvalidAccountNumber)
		assert.True(t, errs.IsValidationError(err))
		assert.False(t, errs.IsNotFoundError(err))
		f.accounts.AssertNotCalled(t, "GetByNumber", mock.Anything, mock.Anything)
	})
}

func TestListTransactions(t *testing.T) {
	ctx := context.Background()

	testCases := []struct {
		name          string
		requested     int
		expectedLimit int
	}{
		{"default limit", 0, 20},
		{"negative means default", -3, 20},
		{"explicit limit", 5, 5},
		{"capped limit", 1000, 100},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture(t)
			f.accounts.On("GetByNumber", mock.Anything, uint64(1)).Return(account(1, "10"), nil).Once()
			f.entries.On("ListByAccount", mock.Anything, uint64(1), tc.expectedLimit).Return([]*entity.Transaction{}, nil).Once()

			entries, err := f.service(t, false).ListTransactions(ctx, 1, tc.requested)

			require.NoError(t, err)
			assert.Empty(t, entries)
		})
	}

	t.Run("Unknown account", func(t *testing.T) {
		f := newFixture(t)
		f.accounts.On("GetByNumber", mock.Anything, uint64(2)).Return(nil, errs.NewNotFoundError(2)).Once()

		_, err := f.service(t, false).ListTransactions(ctx, 2, 0)

		assert.True(t, errs.IsNotFoundError(err))
		f.entries.AssertNotCalled(t, "ListByAccount", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestListAccounts(t *testing.T) {
	ctx := context.Background()

	t.Run("Passes the filter through", func(t *testing.T) {
		f := newFixture(t)
		filter := persistence.AccountFilter{NameContains: "doe", Limit: 10, Offset: 5}
		f.accounts.On("List", mock.Anything, filter).Return([]*entity.Account{account(1, "1")}, nil).Once()

		got, err := f.service(t, false).ListAccounts(ctx, filter)

		require.NoError(t, err)
		assert.Len(t, got, 1)
	})

	t.Run("Clamps paging", func(t *testing.T) {
		f := newFixture(t)
		f.accounts.On("List", mock.Anything, persistence.AccountFilter{Limit: 100, Offset: 0}).Return(nil, nil).Once()

		_, err := f.service(t, false).ListAccounts(ctx, persistence.AccountFilter{Limit: 5000, Offset: -1})

		assert.NoError(t, err)
	})
}

func TestSummary(t *testing.T) {
	ctx := context.Background()

	t.Run("Reads one snapshot", func(t *testing.T) {
		f := newFixture(t)
		f.accounts.On("Totals", mock.Anything).Return(persistence.AccountTotals{
			Count:        3,
			TotalBalance: decimal.RequireFromString("1234.56"),
		}, nil).Once()
		f.entries.On("Count", mock.Anything).Return(int64(9), nil).Once()
		f.accounts.On("CountCreatedSince", mock.Anything, fixedTime.Add(-7*24*time.Hour)).Return(int64(2), nil).Once()

		summary, err := f.service(t, false).Summary(ctx)

		require.NoError(t, err)
		assert.Equal(t, int64(3), summary.AccountCount)
		assert.Equal(t, "1234.56", entity.FormatAmount(summary.TotalBalance))
		assert.Equal(t, int64(9), summary.TransactionCount)
		assert.Equal(t, int64(2), summary.RecentAccounts)
		assert.Equal(t, fixedTime, summary.GeneratedAt)
		f.uow.AssertNumberOfCalls(t, "ExecuteReadOnly", 1)
		f.uow.AssertNotCalled(t, "Execute", mock.Anything, mock.Anything)
	})

	t.Run("Store failure", func(t *testing.T) {
		f := newFixture(t)
		f.accounts.On("Totals", mock.Anything).Return(persistence.AccountTotals{}, errs.ErrDatabaseConnection).Once()

		_, err := f.service(t, false).Summary(ctx)

		assert.True(t, errs.IsStorageError(err))
		f.entries.AssertNotCalled(t, "Count", mock.Anything)
	})
}

func TestReconcile(t *testing.T) {
	ctx := context.Background()

	t.Run("Consistent ledger", func(t *testing.T) {
		f := newFixture(t)
		f.accounts.On("GetForUpdate", mock.Anything, uint64(1)).Return(account(1, "600.00"), nil).Once()
		f.entries.On("LedgerTotals", mock.Anything, uint64(1)).Return(persistence.LedgerTotals{
			Balance: decimal.RequireFromString("600"),
			Count:   2,
		}, nil).Once()

		report, err := f.service(t, false).Reconcile(ctx, 1)

		require.NoError(t, err)
		assert.True(t, report.Consistent())
		assert.Equal(t, int64(2), report.EntryCount)
		f.logger.AssertNotCalled(t, "Error", mock.Anything, mock.Anything)
	})

	t.Run("Drift is reported and logged", func(t *testing.T) {
		f := newFixture(t)
		f.accounts.On("GetForUpdate", mock.Anything, uint64(1)).Return(account(1, "600.00"), nil).Once()
		f.entries.On("LedgerTotals", mock.Anything, uint64(1)).Return(persistence.LedgerTotals{
			Balance: decimal.RequireFromString("500"),
			Count:   1,
		}, nil).Once()

		report, err := f.service(t, false).Reconcile(ctx, 1)

		require.NoError(t, err)
		assert.False(t, report.Consistent())
		assert.Equal(t, "100.00", entity.FormatAmount(report.Difference()))
		f.logger.AssertCalled(t, "Error", "Ledger does not match stored balance", mock.Anything)
	})
}
