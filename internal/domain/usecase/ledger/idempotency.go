package ledger

import (
	"context"
	"fmt"

	"github.com/amirhossein-jamali/bank-ledger/internal/domain/entity"
	errs "github.com/amirhossein-jamali/bank-ledger/internal/domain/error"
	"github.com/amirhossein-jamali/bank-ledger/internal/domain/port/persistence"
	"github.com/amirhossein-jamali/bank-ledger/internal/domain/port/usecase"
	"github.com/shopspring/decimal"
)

// checkReference looks for an earlier entry carrying the same reference.
// It must run after the account row is locked so two requests with one reference cannot both pass.
//
// It returns the original result when the earlier entry records the same operation,
// and a duplicate-reference validation error when it records a different one.
func checkReference(
	ctx context.Context,
	transactions persistence.TransactionRepository,
	accountNumber uint64,
	txType entity.TransactionType,
	amount decimal.Decimal,
	reference string,
) (*usecase.MutationResult, error) {
	if reference == "" {
		return nil, nil
	}

	existing, err := transactions.FindByReference(ctx, accountNumber, reference)
	if err != nil {
		return nil, fmt.Errorf("failed to look up reference: %w", err)
	}
	if existing == nil {
		return nil, nil
	}

	if !existing.Matches(txType, amount) {
		return nil, errs.NewValidationError("reference", reference,
			fmt.Errorf("%w: already recorded as %s of %s", errs.ErrDuplicateReference, existing.Type, entity.FormatAmount(existing.Amount)))
	}

	return resultFromEntry(existing, true), nil
}
