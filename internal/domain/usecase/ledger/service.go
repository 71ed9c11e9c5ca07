package ledger

import (
	"context"
	"errors"

	"github.com/amirhossein-jamali/bank-ledger/internal/domain/entity"
	errs "github.com/amirhossein-jamali/bank-ledger/internal/domain/error"
	coreport "github.com/amirhossein-jamali/bank-ledger/internal/domain/port/core"
	"github.com/amirhossein-jamali/bank-ledger/internal/domain/port/persistence"
	"github.com/amirhossein-jamali/bank-ledger/internal/domain/port/usecase"
	"github.com/shopspring/decimal"
)

// Policy holds the business limits applied by the ledger engine
type Policy struct {
	// MinimumOpeningBalance is the smallest initial balance CreateAccount accepts
	MinimumOpeningBalance decimal.Decimal
}

// DefaultPolicy returns the limits used when nothing is configured
func DefaultPolicy() Policy {
	return Policy{
		MinimumOpeningBalance: decimal.RequireFromString("10.00"),
	}
}

// Service is the ledger engine. It is the only component that mutates balances,
// and every mutation is committed together with its ledger entry.
type Service struct {
	uow          persistence.UnitOfWork
	cache        persistence.BalanceCache
	timeProvider coreport.TimeProvider
	logger       coreport.Logger
	policy       Policy
}

// NewLedgerService creates the ledger engine. cache may be nil.
func NewLedgerService(
	uow persistence.UnitOfWork,
	cache persistence.BalanceCache,
	timeProvider coreport.TimeProvider,
	logger coreport.Logger,
	policy Policy,
) *Service {
	return &Service{
		uow:          uow,
		cache:        cache,
		timeProvider: timeProvider,
		logger:       logger.With(map[string]any{"component": "ledger"}),
		policy:       policy,
	}
}

var _ usecase.LedgerUseCase = (*Service)(nil)

// classify keeps outcomes the caller can act on and turns everything else into a StorageError
func classify(operation string, err error) error {
	switch {
	case errs.IsDomainError(err):
		return err
	case errors.Is(err, errs.ErrDuplicateReference):
		return errs.NewValidationError("reference", "", err)
	default:
		return errs.NewStorageError(operation, err)
	}
}

// logFailure logs expected rejections at warn and storage failures at error
func (s *Service) logFailure(operation string, err error, fields map[string]any) {
	for k, v := range errs.LogFields(err) {
		fields[k] = v
	}
	fields["operation"] = operation

	if errs.IsDomainError(err) {
		s.logger.Warn("Ledger operation rejected", fields)
		return
	}
	s.logger.Error("Ledger operation failed", fields)
}

// invalidate drops the cached snapshot after a commit. Failures only cost a stale read until the TTL.
func (s *Service) invalidate(ctx context.Context, accountNumber uint64) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, accountNumber); err != nil {
		s.logger.Warn("Failed to invalidate cached balance", map[string]any{
			"account_number": accountNumber,
			"error":          err.Error(),
		})
	}
}

func resultFromEntry(entry *entity.Transaction, replayed bool) *usecase.MutationResult {
	return &usecase.MutationResult{
		AccountNumber: entry.AccountNumber,
		Type:          entry.Type,
		Amount:        entry.Amount,
		NewBalance:    entry.BalanceAfter,
		TransactionID: entry.ID,
		Timestamp:     entry.CreatedAt,
		Replayed:      replayed,
	}
}
