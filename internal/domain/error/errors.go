package error

import (
	"errors"
	"fmt"
)

// Error codes for standardized API responses
const (
	// 4xxx - Client errors
	CodeValidation          = 4000
	CodeInsufficientFunds   = 4001
	CodeInvalidAmount       = 4002
	CodeInvalidAccountNo    = 4003
	CodeDuplicateReference  = 4004
	CodeConstraintViolation = 4005
	CodeAmountOverflow      = 4006
	CodeInvalidName         = 4007
	CodeBelowMinimum        = 4008
	CodeNotFound            = 4040
	CodeRateLimited         = 4290

	// 5xxx - Server errors
	CodeInternalServer = 5000
	CodeStorage        = 5030
)

// Base error types
var (
	// ErrValidation is the parent of every input or policy violation
	ErrValidation = errors.New("validation failed")

	// ErrInvalidAmount is returned when an amount is not a positive value with at most two decimal places
	ErrInvalidAmount = errors.New("invalid amount")

	// ErrInvalidName is returned when an account name is empty or too long
	ErrInvalidName = errors.New("invalid account name")

	// ErrBelowMinimumBalance is returned when the opening deposit is under the configured minimum
	ErrBelowMinimumBalance = errors.New("initial balance below minimum")

	// ErrInvalidAccountNumber is returned when the account number is not a positive integer
	ErrInvalidAccountNumber = errors.New("account number must be positive")

	// ErrAmountOverflow is returned when an amount or resulting balance does not fit the storage column
	ErrAmountOverflow = errors.New("amount exceeds the supported range")

	// ErrDuplicateReference is returned when a reference was already used for a different operation
	ErrDuplicateReference = errors.New("reference already used for a different operation")

	// ErrAccountNotFound is returned when the requested account doesn't exist
	ErrAccountNotFound = errors.New("account not found")

	// ErrNotFound is returned when a generic resource is not found
	ErrNotFound = errors.New("resource not found")

	// ErrInsufficientFunds is returned when a withdrawal exceeds the current balance
	ErrInsufficientFunds = errors.New("insufficient funds")

	// ErrStorage is returned when the atomic commit unit could not be applied
	ErrStorage = errors.New("storage error")

	// ErrDatabaseConnection is returned when there's a problem reaching the database
	ErrDatabaseConnection = errors.New("database connection error")

	// ErrConstraintViolation is returned when a database constraint is violated
	ErrConstraintViolation = errors.New("database constraint violation")

	// ErrInternalServer is returned for unexpected server-side errors
	ErrInternalServer = errors.New("internal server error")

	// ErrRateLimited is returned when a client exceeds the request rate
	ErrRateLimited = errors.New("too many requests")
)

// ErrorCode returns standardized error codes for known errors.
// Specific causes are checked before their parent kinds.
func ErrorCode(err error) int {
	switch {
	case errors.Is(err, ErrInsufficientFunds):
		return CodeInsufficientFunds
	case errors.Is(err, ErrInvalidAmount):
		return CodeInvalidAmount
	case errors.Is(err, ErrInvalidAccountNumber):
		return CodeInvalidAccountNo
	case errors.Is(err, ErrDuplicateReference):
		return CodeDuplicateReference
	case errors.Is(err, ErrAmountOverflow):
		return CodeAmountOverflow
	case errors.Is(err, ErrInvalidName):
		return CodeInvalidName
	case errors.Is(err, ErrBelowMinimumBalance):
		return CodeBelowMinimum
	case errors.Is(err, ErrValidation):
		return CodeValidation
	case errors.Is(err, ErrAccountNotFound), errors.Is(err, ErrNotFound):
		return CodeNotFound
	case errors.Is(err, ErrRateLimited):
		return CodeRateLimited
	case errors.Is(err, ErrConstraintViolation):
		return CodeConstraintViolation
	case errors.Is(err, ErrStorage), errors.Is(err, ErrDatabaseConnection):
		return CodeStorage
	default:
		return CodeInternalServer
	}
}

// ValidationError describes malformed or out-of-policy input
type ValidationError struct {
	Field string
	Value string
	Err   error
}

// NewValidationError creates a validation error for the given field
func NewValidationError(field, value string, err error) error {
	return &ValidationError{Field: field, Value: value, Err: err}
}

// Error implements the error interface for ValidationError
func (e *ValidationError) Error() string {
	if e.Value == "" {
		return fmt.Sprintf("invalid %s: %v", e.Field, e.Err)
	}
	return fmt.Sprintf("invalid %s %q: %v", e.Field, e.Value, e.Err)
}

// Is reports every validation error as ErrValidation
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// Unwrap returns the underlying error
func (e *ValidationError) Unwrap() error {
	return e.Err
}

// LogFields returns a map of fields for structured logging
func (e *ValidationError) LogFields() map[string]any {
	return map[string]any{
		"error_type": "validation_error",
		"field":      e.Field,
		"value":      e.Value,
		"error":      e.Err.Error(),
		"error_code": ErrorCode(e),
	}
}

// NotFoundError identifies the account that could not be found
type NotFoundError struct {
	AccountNumber uint64
}

// NewNotFoundError creates a not-found error for the given account
func NewNotFoundError(accountNumber uint64) error {
	return &NotFoundError{AccountNumber: accountNumber}
}

// Error implements the error interface
func (e *NotFoundError) Error() string {
	return fmt.Sprintf("account %d not found", e.AccountNumber)
}

// Is matches both ErrAccountNotFound and the generic ErrNotFound
func (e *NotFoundError) Is(target error) bool {
	return target == ErrAccountNotFound || target == ErrNotFound
}

// LogFields returns a map of fields for structured logging
func (e *NotFoundError) LogFields() map[string]any {
	return map[string]any{
		"error_type":     "not_found",
		"account_number": e.AccountNumber,
		"error_code":     CodeNotFound,
	}
}

// InsufficientFundsError provides detailed error information for a rejected withdrawal
type InsufficientFundsError struct {
	AccountNumber uint64
	Requested     string
	Available     string
}

// NewInsufficientFundsError creates a new detailed insufficient funds error
func NewInsufficientFundsError(accountNumber uint64, requested, available string) error {
	return &InsufficientFundsError{
		AccountNumber: accountNumber,
		Requested:     requested,
		Available:     available,
	}
}

// Error implements the error interface
func (e *InsufficientFundsError) Error() string {
	return fmt.Sprintf("insufficient funds in account %d: requested %s, available %s",
		e.AccountNumber, e.Requested, e.Available)
}

// Is checks if the target error is an ErrInsufficientFunds
func (e *InsufficientFundsError) Is(target error) bool {
	return target == ErrInsufficientFunds
}

// LogFields returns a map of fields for structured logging
func (e *InsufficientFundsError) LogFields() map[string]any {
	return map[string]any{
		"error_type":       "insufficient_funds",
		"account_number":   e.AccountNumber,
		"requested_amount": e.Requested,
		"current_balance":  e.Available,
		"error_code":       CodeInsufficientFunds,
	}
}

// StorageError reports that an operation's commit unit was rolled back by the store
type StorageError struct {
	Operation string
	Err       error
}

// NewStorageError wraps err as a storage failure of the named operation
func NewStorageError(operation string, err error) error {
	return &StorageError{Operation: operation, Err: err}
}

// Error implements the error interface
func (e *StorageError) Error() string {
	return fmt.Sprintf("storage error during %s: %v", e.Operation, e.Err)
}

// Is checks if the target error is an ErrStorage
func (e *StorageError) Is(target error) bool {
	return target == ErrStorage
}

// Unwrap returns the underlying error
func (e *StorageError) Unwrap() error {
	return e.Err
}

// LogFields returns a map of fields for structured logging
func (e *StorageError) LogFields() map[string]any {
	return map[string]any{
		"error_type": "storage_error",
		"operation":  e.Operation,
		"error":      e.Err.Error(),
		"error_code": CodeStorage,
	}
}

// IsValidationError checks if the error is any validation error
func IsValidationError(err error) bool {
	return errors.Is(err, ErrValidation)
}

// IsNotFoundError checks if the error is any "not found" type of error
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound) || errors.Is(err, ErrAccountNotFound)
}

// IsInsufficientFundsError checks if the error is related to insufficient funds
func IsInsufficientFundsError(err error) bool {
	return errors.Is(err, ErrInsufficientFunds)
}

// IsStorageError checks if the error is a storage failure
func IsStorageError(err error) bool {
	return errors.Is(err, ErrStorage)
}

// IsDomainError reports whether err is one of the outcomes the ledger signals on purpose
// rather than an unexpected failure
func IsDomainError(err error) bool {
	return IsValidationError(err) || IsNotFoundError(err) || IsInsufficientFundsError(err)
}

// LogFields extracts structured fields from err when it provides them
func LogFields(err error) map[string]any {
	var lf interface{ LogFields() map[string]any }
	if errors.As(err, &lf) {
		return lf.LogFields()
	}
	return map[string]any{"error": err.Error(), "error_code": ErrorCode(err)}
}
