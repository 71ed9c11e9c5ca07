package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/amirhossein-jamali/bank-ledger/internal/domain/entity"
	errs "github.com/amirhossein-jamali/bank-ledger/internal/domain/error"
	coreport "github.com/amirhossein-jamali/bank-ledger/internal/domain/port/core"
	"github.com/amirhossein-jamali/bank-ledger/internal/domain/port/persistence"
	"github.com/amirhossein-jamali/bank-ledger/internal/infrastructure/adapter/model"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// AccountRepository implements AccountRepository interface using GORM
type AccountRepository struct {
	db              *gorm.DB
	logger          coreport.Logger
	errorClassifier *ErrorClassifier
}

// NewAccountRepository creates a new AccountRepository instance
func NewAccountRepository(db *gorm.DB, logger coreport.Logger) *AccountRepository {
	return &AccountRepository{
		db:              db,
		logger:          logger,
		errorClassifier: NewErrorClassifier(),
	}
}

var _ persistence.AccountRepository = (*AccountRepository)(nil)

func accountToEntity(m *model.Account) *entity.Account {
	return entity.RestoreAccount(m.AccountNumber, m.Name, m.Balance, m.CreatedAt, m.UpdatedAt)
}

// handleDatabaseError standardizes database error handling
func (r *AccountRepository) handleDatabaseError(operation string, err error, accountNumber uint64) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return errs.NewNotFoundError(accountNumber)
	}

	switch r.errorClassifier.Classify(err) {
	case ConstraintError:
		r.logger.Warn("Account constraint violated", map[string]any{
			"account_number": accountNumber,
			"error":          err.Error(),
		})
		return fmt.Errorf("%w: %s", errs.ErrConstraintViolation, err.Error())
	case LockError:
		r.logger.Warn("Account row contended", map[string]any{
			"account_number": accountNumber,
			"operation":      operation,
			"error":          err.Error(),
		})
		return wrapStorage(err)
	}

	r.logger.Error(fmt.Sprintf("Database error when %s", operation), map[string]any{
		"account_number": accountNumber,
		"error":          err.Error(),
	})
	return wrapStorage(err)
}

// Create inserts the account and sets its number from the generated key
func (r *AccountRepository) Create(ctx context.Context, account *entity.Account) error {
	accountModel := model.Account{
		Name:      account.Name,
		Balance:   account.Balance(),
		CreatedAt: account.CreatedAt,
		UpdatedAt: account.UpdatedAt,
	}

	if err := r.db.WithContext(ctx).Create(&accountModel).Error; err != nil {
		return r.handleDatabaseError("creating account", err, 0)
	}

	account.Number = accountModel.AccountNumber
	r.logger.Debug("Account row inserted", map[string]any{
		"account_number": account.Number,
	})
	return nil
}

// GetByNumber retrieves an account without locking it
func (r *AccountRepository) GetByNumber(ctx context.Context, number uint64) (*entity.Account, error) {
	var accountModel model.Account
	if err := r.db.WithContext(ctx).Where("account_number = ?", number).Take(&accountModel).Error; err != nil {
		return nil, r.handleDatabaseError("getting account", err, number)
	}
	return accountToEntity(&accountModel), nil
}

// GetForUpdate retrieves an account with SELECT ... FOR UPDATE
func (r *AccountRepository) GetForUpdate(ctx context.Context, number uint64) (*entity.Account, error) {
	var accountModel model.Account
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("account_number = ?", number).
		Take(&accountModel).Error
	if err != nil {
		return nil, r.handleDatabaseError("locking account", err, number)
	}
	return accountToEntity(&accountModel), nil
}

// UpdateBalance writes balance and updated_at
func (r *AccountRepository) UpdateBalance(ctx context.Context, account *entity.Account) error {
	result := r.db.WithContext(ctx).Model(&model.Account{}).
		Where("account_number = ?", account.Number).
		Updates(map[string]any{
			"balance":    account.Balance(),
			"updated_at": account.UpdatedAt,
		})

	if result.Error != nil {
		return r.handleDatabaseError("updating balance", result.Error, account.Number)
	}
	if result.RowsAffected == 0 {
		return errs.NewNotFoundError(account.Number)
	}
	return nil
}

// List returns accounts in a stable order
func (r *AccountRepository) List(ctx context.Context, filter persistence.AccountFilter) ([]*entity.Account, error) {
	query := r.db.WithContext(ctx).Model(&model.Account{})

	if name := strings.TrimSpace(filter.NameContains); name != "" {
		query = query.Where("name ILIKE ?", "%"+escapeLike(name)+"%").Order("name ASC, account_number ASC")
	} else {
		query = query.Order("account_number ASC")
	}
	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}
	if filter.Offset > 0 {
		query = query.Offset(filter.Offset)
	}

	var models []model.Account
	if err := query.Find(&models).Error; err != nil {
		return nil, r.handleDatabaseError("listing accounts", err, 0)
	}

	accounts := make([]*entity.Account, len(models))
	for i := range models {
		accounts[i] = accountToEntity(&models[i])
	}
	return accounts, nil
}

// Totals returns the account count and balance sum in one query
func (r *AccountRepository) Totals(ctx context.Context) (persistence.AccountTotals, error) {
	var row struct {
		Count        int64
		TotalBalance decimal.Decimal
	}

	err := r.db.WithContext(ctx).Model(&model.Account{}).
		Select("COUNT(*) AS count, COALESCE(SUM(balance), 0) AS total_balance").
		Scan(&row).Error
	if err != nil {
		return persistence.AccountTotals{}, r.handleDatabaseError("summing accounts", err, 0)
	}

	return persistence.AccountTotals{Count: row.Count, TotalBalance: row.TotalBalance}, nil
}

// CountCreatedSince counts accounts created at or after since
func (r *AccountRepository) CountCreatedSince(ctx context.Context, since time.Time) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Account{}).
		Where("created_at >= ?", since).
		Count(&count).Error
	if err != nil {
		return 0, r.handleDatabaseError("counting recent accounts", err, 0)
	}
	return count, nil
}
