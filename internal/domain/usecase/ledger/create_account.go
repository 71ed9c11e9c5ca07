package ledger

import (
	"context"

	"github.com/amirhossein-jamali/bank-ledger/internal/domain/entity"
	"github.com/amirhossein-jamali/bank-ledger/internal/domain/port/usecase"
)

// CreateAccount opens an account and writes its Initial entry in one commit unit
func (s *Service) CreateAccount(ctx context.Context, req usecase.CreateAccountRequest) (*entity.Account, error) {
	name, err := s.validateOpening(req)
	if err != nil {
		s.logFailure("create_account", err, map[string]any{"name": req.Name})
		return nil, err
	}

	var created *entity.Account
	err = s.uow.Execute(ctx, func(txCtx context.Context) error {
		// Built per attempt so a retried unit never sees a number assigned by a rolled-back insert
		account, err := entity.NewAccount(name, req.InitialBalance, s.timeProvider)
		if err != nil {
			return err
		}

		if err := s.uow.Accounts(txCtx).Create(txCtx, account); err != nil {
			return err
		}

		entry, err := entity.NewTransaction(
			account.Number,
			entity.TypeInitial,
			req.InitialBalance,
			account.Balance(),
			"",
			s.timeProvider,
		)
		if err != nil {
			return err
		}
		if err := s.uow.Transactions(txCtx).Append(txCtx, entry); err != nil {
			return err
		}

		created = account
		return nil
	})
	if err != nil {
		err = classify("create_account", err)
		s.logFailure("create_account", err, map[string]any{"name": name})
		return nil, err
	}

	s.logger.Info("Account created", map[string]any{
		"account_number":  created.Number,
		"name":            created.Name,
		"initial_balance": created.FormattedBalance(),
	})

	return created, nil
}
