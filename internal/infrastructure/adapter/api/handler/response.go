package handler

import (
	"errors"
	"net/http"
	"strconv"

	domainerr "github.com/amirhossein-jamali/bank-ledger/internal/domain/error"
	coreport "github.com/amirhossein-jamali/bank-ledger/internal/domain/port/core"
	"github.com/amirhossein-jamali/bank-ledger/internal/infrastructure/adapter/api/dto"
	"github.com/amirhossein-jamali/bank-ledger/internal/infrastructure/adapter/api/middleware"
	"github.com/amirhossein-jamali/bank-ledger/internal/infrastructure/adapter/api/validation"
	"github.com/gin-gonic/gin"
)

// StatusFor maps a domain error to its HTTP status code.
// Duplicate references are validation errors too, so they are checked first.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, domainerr.ErrDuplicateReference):
		return http.StatusConflict
	case domainerr.IsInsufficientFundsError(err), domainerr.IsValidationError(err):
		return http.StatusBadRequest
	case domainerr.IsNotFoundError(err):
		return http.StatusNotFound
	case errors.Is(err, domainerr.ErrRateLimited):
		return http.StatusTooManyRequests
	case domainerr.IsStorageError(err), errors.Is(err, domainerr.ErrDatabaseConnection):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// messageFor returns the client-facing message for err.
// Server-side failures never leak their cause.
func messageFor(err error) string {
	switch StatusFor(err) {
	case http.StatusServiceUnavailable:
		return "Service temporarily unavailable"
	case http.StatusInternalServerError:
		return "Internal server error"
	}

	var validationErr *domainerr.ValidationError
	switch {
	case domainerr.IsInsufficientFundsError(err):
		return "Insufficient balance"
	case errors.As(err, &validationErr):
		return validationErr.Error()
	case domainerr.IsNotFoundError(err):
		return "Account not found"
	default:
		return err.Error()
	}
}

// detailsFor returns structured details for errors that carry them
func detailsFor(err error) map[string]any {
	var fundsErr *domainerr.InsufficientFundsError
	if errors.As(err, &fundsErr) {
		return map[string]any{
			"account_number":   fundsErr.AccountNumber,
			"current_balance":  fundsErr.Available,
			"requested_amount": fundsErr.Requested,
		}
	}
	var validationErr *domainerr.ValidationError
	if errors.As(err, &validationErr) {
		return map[string]any{"field": validationErr.Field}
	}
	return nil
}

// respondError writes err as an ErrorResponse and logs it at a level matching its severity
func respondError(c *gin.Context, logger coreport.Logger, message string, err error) {
	logger = middleware.GetLoggerFromContext(c, logger)
	status := StatusFor(err)
	fields := domainerr.LogFields(err)
	fields["path"] = c.FullPath()
	fields["status"] = status

	if status >= http.StatusInternalServerError {
		logger.Error(message, fields)
	} else {
		logger.Warn(message, fields)
	}

	c.JSON(status, dto.ErrorResponse{
		Code:    domainerr.ErrorCode(err),
		Error:   messageFor(err),
		Details: detailsFor(err),
	})
}

// respondBindingError reports a request that failed decoding or tag validation
func respondBindingError(c *gin.Context, logger coreport.Logger, err error) {
	middleware.GetLoggerFromContext(c, logger).Warn("Request binding failed", map[string]any{
		"path":  c.FullPath(),
		"error": err.Error(),
	})

	c.JSON(http.StatusBadRequest, dto.ErrorResponse{
		Code:    domainerr.CodeValidation,
		Error:   bindingMessage(err),
		Details: validation.FieldErrors(err),
	})
}

func bindingMessage(err error) string {
	fields := validation.FieldErrors(err)
	if fields == nil {
		return "Invalid request body"
	}
	if fields["name"] == "required" {
		return "Name is required"
	}
	return "Invalid request: one or more fields are invalid"
}

// parseAccountNumber reads the :acc_no path parameter
func parseAccountNumber(c *gin.Context) (uint64, error) {
	raw := c.Param("acc_no")
	number, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || number == 0 {
		return 0, domainerr.NewValidationError("account number", raw, domainerr.ErrInvalidAccountNumber)
	}
	return number, nil
}
