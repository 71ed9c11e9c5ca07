package repository

import (
	"context"
	"fmt"

	"github.com/amirhossein-jamali/bank-ledger/internal/domain/entity"
	errs "github.com/amirhossein-jamali/bank-ledger/internal/domain/error"
	coreport "github.com/amirhossein-jamali/bank-ledger/internal/domain/port/core"
	"github.com/amirhossein-jamali/bank-ledger/internal/domain/port/persistence"
	"github.com/amirhossein-jamali/bank-ledger/internal/infrastructure/adapter/model"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// TransactionRepository implements TransactionRepository interface using GORM
type TransactionRepository struct {
	db              *gorm.DB
	logger          coreport.Logger
	errorClassifier *ErrorClassifier
}

// NewTransactionRepository creates a new TransactionRepository instance
func NewTransactionRepository(db *gorm.DB, logger coreport.Logger) *TransactionRepository {
	return &TransactionRepository{
		db:              db,
		logger:          logger,
		errorClassifier: NewErrorClassifier(),
	}
}

var _ persistence.TransactionRepository = (*TransactionRepository)(nil)

// entityToModel converts a ledger entry to a database model
func (r *TransactionRepository) entityToModel(transaction *entity.Transaction) model.Transaction {
	m := model.Transaction{
		AccountNumber: transaction.AccountNumber,
		Type:          string(transaction.Type),
		Amount:        transaction.Amount,
		BalanceAfter:  transaction.BalanceAfter,
		CreatedAt:     transaction.CreatedAt,
	}
	if transaction.Reference != "" {
		ref := transaction.Reference
		m.Reference = &ref
	}
	return m
}

// modelToEntity converts a database model to a ledger entry
func (r *TransactionRepository) modelToEntity(m *model.Transaction) (*entity.Transaction, error) {
	txType, err := entity.ParseTransactionType(m.Type)
	if err != nil {
		r.logger.Error("Stored transaction has an unknown type", map[string]any{
			"transaction_id": m.TransactionID,
			"type":           m.Type,
		})
		return nil, fmt.Errorf("%w: %s", errs.ErrInternalServer, err.Error())
	}

	transaction := &entity.Transaction{
		ID:            m.TransactionID,
		AccountNumber: m.AccountNumber,
		Type:          txType,
		Amount:        m.Amount,
		BalanceAfter:  m.BalanceAfter,
		CreatedAt:     m.CreatedAt,
	}
	if m.Reference != nil {
		transaction.Reference = *m.Reference
	}
	return transaction, nil
}

func (r *TransactionRepository) modelsToEntities(models []model.Transaction) ([]*entity.Transaction, error) {
	out := make([]*entity.Transaction, len(models))
	for i := range models {
		t, err := r.modelToEntity(&models[i])
		if err != nil {
			return nil, err
		}
		out[i] = t
	}
	return out, nil
}

// Append inserts a ledger entry and sets its ID from the generated key
func (r *TransactionRepository) Append(ctx context.Context, transaction *entity.Transaction) error {
	transactionModel := r.entityToModel(transaction)

	result := r.db.WithContext(ctx).Create(&transactionModel)
	if result.Error != nil {
		switch r.errorClassifier.Classify(result.Error) {
		case DuplicateKeyError:
			r.logger.Warn("Duplicate reference detected", map[string]any{
				"account_number": transaction.AccountNumber,
				"reference":      transaction.Reference,
			})
			return fmt.Errorf("%w: %q", errs.ErrDuplicateReference, transaction.Reference)
		case ForeignKeyError:
			return errs.NewNotFoundError(transaction.AccountNumber)
		case ConstraintError:
			return fmt.Errorf("%w: %s", errs.ErrConstraintViolation, result.Error.Error())
		}

		r.logger.Error("Failed to append transaction", map[string]any{
			"account_number": transaction.AccountNumber,
			"type":           transaction.Type,
			"error":          result.Error.Error(),
		})
		return wrapStorage(result.Error)
	}

	transaction.ID = transactionModel.TransactionID
	r.logger.Debug("Transaction appended", map[string]any{
		"transaction_id": transaction.ID,
		"account_number": transaction.AccountNumber,
		"type":           transaction.Type,
	})
	return nil
}

// ListByAccount returns up to limit entries, most recent first
func (r *TransactionRepository) ListByAccount(ctx context.Context, accountNumber uint64, limit int) ([]*entity.Transaction, error) {
	query := r.db.WithContext(ctx).
		Where("account_number = ?", accountNumber).
		Order("created_at DESC, transaction_id DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}

	var models []model.Transaction
	if err := query.Find(&models).Error; err != nil {
		r.logger.Error("Failed to list transactions", map[string]any{
			"account_number": accountNumber,
			"error":          err.Error(),
		})
		return nil, wrapStorage(err)
	}
	return r.modelsToEntities(models)
}

// FindByReference returns the entry with the given reference, or nil when there is none
func (r *TransactionRepository) FindByReference(ctx context.Context, accountNumber uint64, reference string) (*entity.Transaction, error) {
	var models []model.Transaction
	err := r.db.WithContext(ctx).
		Where("account_number = ? AND reference = ?", accountNumber, reference).
		Limit(1).
		Find(&models).Error
	if err != nil {
		return nil, wrapStorage(err)
	}
	if len(models) == 0 {
		return nil, nil
	}
	return r.modelToEntity(&models[0])
}

// Count returns the number of entries across all accounts
func (r *TransactionRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&model.Transaction{}).Count(&count).Error; err != nil {
		return 0, wrapStorage(err)
	}
	return count, nil
}

// LedgerTotals folds the account's entries in the database
func (r *TransactionRepository) LedgerTotals(ctx context.Context, accountNumber uint64) (persistence.LedgerTotals, error) {
	var row struct {
		Balance decimal.Decimal
		Count   int64
	}

	err := r.db.WithContext(ctx).Model(&model.Transaction{}).
		Select("COALESCE(SUM(CASE WHEN type = ? THEN -amount ELSE amount END), 0) AS balance, COUNT(*) AS count",
			string(entity.TypeWithdrawal)).
		Where("account_number = ?", accountNumber).
		Scan(&row).Error
	if err != nil {
		return persistence.LedgerTotals{}, wrapStorage(err)
	}

	return persistence.LedgerTotals{Balance: row.Balance, Count: row.Count}, nil
}
