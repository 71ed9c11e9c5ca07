package ledger

import (
	"context"
	"errors"

	"github.com/amirhossein-jamali/bank-ledger/internal/domain/entity"
	errs "github.com/amirhossein-jamali/bank-ledger/internal/domain/error"
	"github.com/amirhossein-jamali/bank-ledger/internal/domain/port/usecase"
)

// Deposit credits an account and appends a Deposit entry
func (s *Service) Deposit(ctx context.Context, req usecase.MutationRequest) (*usecase.MutationResult, error) {
	return s.mutate(ctx, "deposit", entity.TypeDeposit, req)
}

// Withdraw debits an account and appends a Withdrawal entry.
// A balance smaller than the amount yields an InsufficientFundsError and leaves the account untouched.
func (s *Service) Withdraw(ctx context.Context, req usecase.MutationRequest) (*usecase.MutationResult, error) {
	return s.mutate(ctx, "withdraw", entity.TypeWithdrawal, req)
}

func (s *Service) mutate(
	ctx context.Context,
	operation string,
	txType entity.TransactionType,
	req usecase.MutationRequest,
) (*usecase.MutationResult, error) {
	fields := map[string]any{
		"account_number": req.AccountNumber,
		"amount":         req.Amount.String(),
		"reference":      req.Reference,
	}

	reference, err := validateMutation(req)
	if err != nil {
		s.logFailure(operation, err, fields)
		return nil, err
	}

	var result *usecase.MutationResult
	err = s.uow.Execute(ctx, func(txCtx context.Context) error {
		result = nil
		accounts := s.uow.Accounts(txCtx)
		transactions := s.uow.Transactions(txCtx)

		account, err := accounts.GetForUpdate(txCtx, req.AccountNumber)
		if err != nil {
			return err
		}

		replayed, err := checkReference(txCtx, transactions, account.Number, txType, req.Amount, reference)
		if err != nil {
			return err
		}
		if replayed != nil {
			result = replayed
			return nil
		}

		if txType.IsCredit() {
			err = account.Credit(req.Amount, s.timeProvider)
		} else {
			err = account.Debit(req.Amount, s.timeProvider)
		}
		if err != nil {
			if errors.Is(err, errs.ErrAmountOverflow) {
				return errs.NewValidationError("amount", req.Amount.String(), err)
			}
			return err
		}

		if err := accounts.UpdateBalance(txCtx, account); err != nil {
			return err
		}

		entry, err := entity.NewTransaction(account.Number, txType, req.Amount, account.Balance(), reference, s.timeProvider)
		if err != nil {
			return err
		}
		if err := transactions.Append(txCtx, entry); err != nil {
			return err
		}

		result = resultFromEntry(entry, false)
		return nil
	})
	if err != nil {
		err = classify(operation, err)
		s.logFailure(operation, err, fields)
		return nil, err
	}

	if result.Replayed {
		s.logger.Info("Replayed earlier result for reference", map[string]any{
			"account_number": result.AccountNumber,
			"reference":      reference,
			"transaction_id": result.TransactionID,
		})
		return result, nil
	}

	s.invalidate(ctx, result.AccountNumber)

	s.logger.Info("Ledger entry committed", map[string]any{
		"operation":      operation,
		"account_number": result.AccountNumber,
		"amount":         entity.FormatAmount(result.Amount),
		"new_balance":    entity.FormatAmount(result.NewBalance),
		"transaction_id": result.TransactionID,
	})

	return result, nil
}
