package database

import (
	"context"
	"errors"
	"fmt"

	errs "github.com/amirhossein-jamali/bank-ledger/internal/domain/error"
	"github.com/amirhossein-jamali/bank-ledger/internal/infrastructure/adapter/repository"
	"gorm.io/gorm"
)

// ErrCommitOutcomeUnknown marks a COMMIT that failed without the server confirming a rollback.
// The unit of work may have been applied, so it is never re-run.
var ErrCommitOutcomeUnknown = errors.New("commit outcome unknown")

// ErrorMapper maps database errors to domain errors and decides which ones are worth retrying
type ErrorMapper struct {
	classifier *repository.ErrorClassifier
}

// NewErrorMapper creates a new ErrorMapper
func NewErrorMapper() *ErrorMapper {
	return &ErrorMapper{classifier: repository.NewErrorClassifier()}
}

// MapError maps a database error to a domain error.
// Errors that already carry a domain meaning are returned unchanged.
func (m *ErrorMapper) MapError(err error, operation string) error {
	if err == nil {
		return nil
	}

	if errs.IsDomainError(err) ||
		errors.Is(err, errs.ErrDatabaseConnection) ||
		errors.Is(err, context.Canceled) ||
		errors.Is(err, context.DeadlineExceeded) {
		return err
	}

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return errs.ErrNotFound
	}

	switch m.classifier.Classify(err) {
	case repository.DuplicateKeyError:
		return fmt.Errorf("%w: %w", errs.ErrDuplicateReference, err)
	case repository.ConstraintError, repository.ForeignKeyError:
		return fmt.Errorf("%w: %w", errs.ErrConstraintViolation, err)
	case repository.LockError, repository.TransientError, repository.ConnectionError:
		return fmt.Errorf("%w: %s: %w", errs.ErrDatabaseConnection, operation, err)
	default:
		return fmt.Errorf("%w: %s: %w", errs.ErrInternalServer, operation, err)
	}
}

// IsRetryable reports whether the failed unit of work can be run again from the start
func (m *ErrorMapper) IsRetryable(err error) bool {
	if errors.Is(err, ErrCommitOutcomeUnknown) {
		return false
	}
	return m.classifier.IsRetryable(err)
}

// MapCommitError maps a failed COMMIT. Unless the server reported a serialization failure or
// deadlock the error wraps both ErrCommitOutcomeUnknown and ErrDatabaseConnection.
func (m *ErrorMapper) MapCommitError(err error) error {
	if err == nil {
		return nil
	}
	wrapped := fmt.Errorf("failed to commit transaction: %w", err)
	if m.classifier.IsRolledBackOnCommit(err) {
		return m.MapError(wrapped, "commit")
	}
	return fmt.Errorf("%w: %w: %w", errs.ErrDatabaseConnection, ErrCommitOutcomeUnknown, wrapped)
}
