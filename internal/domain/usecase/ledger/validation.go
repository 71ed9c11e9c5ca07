package ledger

import (
	"fmt"

	"github.com/amirhossein-jamali/bank-ledger/internal/domain/entity"
	errs "github.com/amirhossein-jamali/bank-ledger/internal/domain/error"
	"github.com/amirhossein-jamali/bank-ledger/internal/domain/port/usecase"
	"github.com/shopspring/decimal"
)

// validateOpening checks a CreateAccount request and returns the normalized name
func (s *Service) validateOpening(req usecase.CreateAccountRequest) (string, error) {
	name, err := entity.NormalizeName(req.Name)
	if err != nil {
		return "", errs.NewValidationError("name", req.Name, err)
	}

	if err := entity.ValidatePositiveAmount(req.InitialBalance); err != nil {
		return "", errs.NewValidationError("initial_balance", req.InitialBalance.String(), err)
	}

	if req.InitialBalance.LessThan(s.policy.MinimumOpeningBalance) {
		return "", errs.NewValidationError("initial_balance", req.InitialBalance.String(),
			fmt.Errorf("%w: minimum is %s", errs.ErrBelowMinimumBalance, entity.FormatAmount(s.policy.MinimumOpeningBalance)))
	}

	return name, nil
}

// validateMutation checks a Deposit or Withdraw request and returns the normalized reference
func validateMutation(req usecase.MutationRequest) (string, error) {
	if req.AccountNumber == 0 {
		return "", errs.NewValidationError("acc_no", "0", errs.ErrInvalidAccountNumber)
	}

	if err := validateAmount(req.Amount); err != nil {
		return "", err
	}

	reference, err := entity.NormalizeReference(req.Reference)
	if err != nil {
		return "", errs.NewValidationError("reference", "", err)
	}

	return reference, nil
}

func validateAmount(amount decimal.Decimal) error {
	if err := entity.ValidatePositiveAmount(amount); err != nil {
		return errs.NewValidationError("amount", amount.String(), err)
	}
	return nil
}

