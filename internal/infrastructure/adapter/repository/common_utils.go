package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	errs "github.com/amirhossein-jamali/bank-ledger/internal/domain/error"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// ErrorType represents the type of database error that occurred
type ErrorType string

const (
	DuplicateKeyError ErrorType = "duplicate_key"
	ForeignKeyError   ErrorType = "foreign_key"
	TransientError    ErrorType = "transient"
	LockError         ErrorType = "lock"
	ConnectionError   ErrorType = "connection"
	ConstraintError   ErrorType = "constraint"
)

// PostgreSQL SQLSTATE codes the ledger reacts to
const (
	sqlStateUniqueViolation      = "23505"
	sqlStateForeignKeyViolation  = "23503"
	sqlStateCheckViolation       = "23514"
	sqlStateNotNullViolation     = "23502"
	sqlStateSerializationFailure = "40001"
	sqlStateDeadlockDetected     = "40P01"
	sqlStateLockNotAvailable     = "55P03"
	sqlStateAdminShutdown        = "57P01"
	sqlStateConnectionClass      = "08"
)

// ErrorClassifier provides methods to classify database errors.
// SQLSTATE codes from pgconn decide when present; message matching covers errors raised below the protocol.
type ErrorClassifier struct{}

// NewErrorClassifier creates a new ErrorClassifier
func NewErrorClassifier() *ErrorClassifier {
	return &ErrorClassifier{}
}

// SQLState returns the PostgreSQL error code carried by err, or ""
func (c *ErrorClassifier) SQLState(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}

// Classify returns the type of error
func (c *ErrorClassifier) Classify(err error) ErrorType {
	if err == nil {
		return ""
	}

	switch code := c.SQLState(err); {
	case code == sqlStateUniqueViolation:
		return DuplicateKeyError
	case code == sqlStateForeignKeyViolation:
		return ForeignKeyError
	case code == sqlStateCheckViolation, code == sqlStateNotNullViolation:
		return ConstraintError
	case code == sqlStateSerializationFailure, code == sqlStateDeadlockDetected, code == sqlStateLockNotAvailable:
		return LockError
	case code == sqlStateAdminShutdown, strings.HasPrefix(code, sqlStateConnectionClass):
		return ConnectionError
	case code != "":
		return ""
	}

	if c.IsDuplicateKeyError(err) {
		return DuplicateKeyError
	}
	if c.IsLockError(err) {
		return LockError
	}
	if c.IsTransientError(err) {
		return TransientError
	}
	if c.IsConnectionError(err) {
		return ConnectionError
	}
	if c.IsConstraintError(err) {
		return ConstraintError
	}

	return ""
}

// IsRetryable reports whether re-running the whole unit of work may succeed
func (c *ErrorClassifier) IsRetryable(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	switch c.Classify(err) {
	case LockError, TransientError, ConnectionError:
		return true
	default:
		return false
	}
}

// IsRolledBackOnCommit reports whether a failed COMMIT is known to have rolled back.
// Only serialization failures and deadlocks guarantee that; any other commit error leaves the outcome unknown.
func (c *ErrorClassifier) IsRolledBackOnCommit(err error) bool {
	switch c.SQLState(err) {
	case sqlStateSerializationFailure, sqlStateDeadlockDetected:
		return true
	default:
		return false
	}
}

// IsDuplicateKeyError checks if the error is a duplicate key error
func (c *ErrorClassifier) IsDuplicateKeyError(err error) bool {
	if err == nil {
		return false
	}
	if code := c.SQLState(err); code != "" {
		return code == sqlStateUniqueViolation
	}
	return errors.Is(err, gorm.ErrDuplicatedKey) ||
		strings.Contains(err.Error(), "duplicate key") ||
		strings.Contains(err.Error(), "UNIQUE constraint")
}

// IsTransientError checks if an error is transient and can be retried
func (c *ErrorClassifier) IsTransientError(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "connection reset") ||
		strings.Contains(msg, "connection refused") ||
		strings.Contains(msg, "EOF") ||
		strings.Contains(msg, "server closed") ||
		strings.Contains(msg, "broken pipe")
}

// IsLockError checks if the error is due to locking
func (c *ErrorClassifier) IsLockError(err error) bool {
	if err == nil {
		return false
	}
	switch c.SQLState(err) {
	case sqlStateSerializationFailure, sqlStateDeadlockDetected, sqlStateLockNotAvailable:
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "deadlock") ||
		strings.Contains(msg, "lock timeout") ||
		strings.Contains(msg, "could not serialize access") ||
		strings.Contains(msg, "serialization failure")
}

// IsConnectionError checks if the error is related to database connectivity
func (c *ErrorClassifier) IsConnectionError(err error) bool {
	if err == nil {
		return false
	}
	if strings.HasPrefix(c.SQLState(err), sqlStateConnectionClass) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "dial") ||
		strings.Contains(msg, "no connection") ||
		c.IsTransientError(err)
}

// IsConstraintError checks if the error is related to constraint violations
func (c *ErrorClassifier) IsConstraintError(err error) bool {
	if err == nil {
		return false
	}
	switch c.SQLState(err) {
	case sqlStateCheckViolation, sqlStateNotNullViolation, sqlStateForeignKeyViolation, sqlStateUniqueViolation:
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "violates") ||
		strings.Contains(msg, "check constraint")
}

// wrapStorage keeps the driver error in the chain so the unit of work can still classify it for retry
func wrapStorage(err error) error {
	return fmt.Errorf("%w: %w", errs.ErrDatabaseConnection, err)
}

// escapeLike escapes LIKE wildcards in user input
func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
