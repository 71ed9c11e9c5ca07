package query

import (
	"context"
	"time"

	"github.com/amirhossein-jamali/bank-ledger/internal/domain/entity"
	errs "github.com/amirhossein-jamali/bank-ledger/internal/domain/error"
	coreport "github.com/amirhossein-jamali/bank-ledger/internal/domain/port/core"
	"github.com/amirhossein-jamali/bank-ledger/internal/domain/port/persistence"
	"github.com/amirhossein-jamali/bank-ledger/internal/domain/port/usecase"
)

// Limits bounds history and listing queries
type Limits struct {
	HistoryLimit         int
	MaxHistoryLimit      int
	MaxListLimit         int
	RecentAccountsWindow time.Duration
}

// DefaultLimits returns the limits used when nothing is configured
func DefaultLimits() Limits {
	return Limits{
		HistoryLimit:         20,
		MaxHistoryLimit:      100,
		MaxListLimit:         100,
		RecentAccountsWindow: 7 * 24 * time.Hour,
	}
}

// Service answers read-only questions about accounts and the transaction log
type Service struct {
	uow          persistence.UnitOfWork
	cache        persistence.BalanceCache
	timeProvider coreport.TimeProvider
	logger       coreport.Logger
	limits       Limits
}

// NewQueryService creates the query service. cache may be nil.
func NewQueryService(
	uow persistence.UnitOfWork,
	cache persistence.BalanceCache,
	timeProvider coreport.TimeProvider,
	logger coreport.Logger,
	limits Limits,
) *Service {
	return &Service{
		uow:          uow,
		cache:        cache,
		timeProvider: timeProvider,
		logger:       logger.With(map[string]any{"component": "query"}),
		limits:       limits,
	}
}

var _ usecase.QueryUseCase = (*Service)(nil)

// GetBalance returns the account snapshot, reading through the cache when one is configured
func (s *Service) GetBalance(ctx context.Context, accountNumber uint64) (*entity.Account, error) {
	if accountNumber == 0 {
		return nil, errs.NewValidationError("acc_no", "0", errs.ErrInvalidAccountNumber)
	}

	cacheable := false
	var generation uint64
	if s.cache != nil {
		account, found, err := s.cache.Get(ctx, accountNumber)
		if err != nil {
			s.logger.Warn("Balance cache read failed", map[string]any{
				"account_number": accountNumber,
				"error":          err.Error(),
			})
		} else if found {
			return account, nil
		}

		// read before the store so a mutation committed meanwhile voids the write-back
		generation, err = s.cache.Generation(ctx, accountNumber)
		if err != nil {
			s.logger.Warn("Balance cache generation read failed", map[string]any{
				"account_number": accountNumber,
				"error":          err.Error(),
			})
		} else {
			cacheable = true
		}
	}

	account, err := s.uow.Accounts(ctx).GetByNumber(ctx, accountNumber)
	if err != nil {
		return nil, s.fail("get_balance", err, accountNumber)
	}

	if cacheable {
		stored, err := s.cache.Set(ctx, account, generation)
		if err != nil {
			s.logger.Warn("Balance cache write failed", map[string]any{
				"account_number": accountNumber,
				"error":          err.Error(),
			})
		} else if !stored {
			s.logger.Debug("Balance cache write skipped after concurrent mutation", map[string]any{
				"account_number": accountNumber,
			})
		}
	}

	return account, nil
}

// ListTransactions returns up to limit entries for the account, most recent first
func (s *Service) ListTransactions(ctx context.Context, accountNumber uint64, limit int) ([]*entity.Transaction, error) {
	if accountNumber == 0 {
		return nil, errs.NewValidationError("acc_no", "0", errs.ErrInvalidAccountNumber)
	}

	if _, err := s.uow.Accounts(ctx).GetByNumber(ctx, accountNumber); err != nil {
		return nil, s.fail("list_transactions", err, accountNumber)
	}

	entries, err := s.uow.Transactions(ctx).ListByAccount(ctx, accountNumber, s.historyLimit(limit))
	if err != nil {
		return nil, s.fail("list_transactions", err, accountNumber)
	}
	return entries, nil
}

// ListAccounts returns accounts ordered by number, or by name when a name filter is set
func (s *Service) ListAccounts(ctx context.Context, filter persistence.AccountFilter) ([]*entity.Account, error) {
	if filter.Offset < 0 {
		filter.Offset = 0
	}
	if filter.Limit < 0 || (s.limits.MaxListLimit > 0 && filter.Limit > s.limits.MaxListLimit) {
		filter.Limit = s.limits.MaxListLimit
	}

	accounts, err := s.uow.Accounts(ctx).List(ctx, filter)
	if err != nil {
		return nil, s.fail("list_accounts", err, 0)
	}
	return accounts, nil
}

// Summary aggregates the whole ledger from one read-only snapshot
func (s *Service) Summary(ctx context.Context) (*entity.Summary, error) {
	now := s.timeProvider.Now()
	summary := &entity.Summary{
		RecentWindow: s.limits.RecentAccountsWindow,
		GeneratedAt:  now,
	}

	err := s.uow.ExecuteReadOnly(ctx, func(txCtx context.Context) error {
		accounts := s.uow.Accounts(txCtx)

		totals, err := accounts.Totals(txCtx)
		if err != nil {
			return err
		}
		summary.AccountCount = totals.Count
		summary.TotalBalance = totals.TotalBalance

		if summary.TransactionCount, err = s.uow.Transactions(txCtx).Count(txCtx); err != nil {
			return err
		}

		summary.RecentAccounts, err = accounts.CountCreatedSince(txCtx, now.Add(-s.limits.RecentAccountsWindow))
		return err
	})
	if err != nil {
		return nil, s.fail("summary", err, 0)
	}

	return summary, nil
}

// Reconcile compares the stored balance with the fold of the account's entries.
// Both reads run in one unit of work so they observe the same committed state.
func (s *Service) Reconcile(ctx context.Context, accountNumber uint64) (*entity.Reconciliation, error) {
	if accountNumber == 0 {
		return nil, errs.NewValidationError("acc_no", "0", errs.ErrInvalidAccountNumber)
	}

	var result *entity.Reconciliation
	err := s.uow.Execute(ctx, func(txCtx context.Context) error {
		account, err := s.uow.Accounts(txCtx).GetForUpdate(txCtx, accountNumber)
		if err != nil {
			return err
		}

		totals, err := s.uow.Transactions(txCtx).LedgerTotals(txCtx, accountNumber)
		if err != nil {
			return err
		}

		result = &entity.Reconciliation{
			AccountNumber: accountNumber,
			Balance:       account.Balance(),
			LedgerBalance: totals.Balance,
			EntryCount:    totals.Count,
		}
		return nil
	})
	if err != nil {
		return nil, s.fail("reconcile", err, accountNumber)
	}

	if !result.Consistent() {
		s.logger.Error("Ledger does not match stored balance", map[string]any{
			"account_number": accountNumber,
			"balance":        entity.FormatAmount(result.Balance),
			"ledger_balance": entity.FormatAmount(result.LedgerBalance),
			"difference":     entity.FormatAmount(result.Difference()),
		})
	}

	return result, nil
}

func (s *Service) historyLimit(limit int) int {
	if limit <= 0 {
		limit = s.limits.HistoryLimit
	}
	if s.limits.MaxHistoryLimit > 0 && limit > s.limits.MaxHistoryLimit {
		limit = s.limits.MaxHistoryLimit
	}
	return limit
}

func (s *Service) fail(operation string, err error, accountNumber uint64) error {
	if errs.IsDomainError(err) {
		return err
	}

	s.logger.Error("Query failed", map[string]any{
		"operation":      operation,
		"account_number": accountNumber,
		"error":          err.Error(),
	})
	return errs.NewStorageError(operation, err)
}
