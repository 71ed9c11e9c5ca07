package entity

import (
	"fmt"
	"strings"

	errs "github.com/amirhossein-jamali/bank-ledger/internal/domain/error"
	"github.com/shopspring/decimal"
)

// MaxDecimalPlaces defines the maximum number of decimal places allowed for money amounts
const MaxDecimalPlaces = 2

// MaxAmount is the largest value a NUMERIC(15,2) column can hold
var MaxAmount = decimal.RequireFromString("9999999999999.99")

// ParseAmount parses a plain decimal string such as "10", "10.5" or "10.50".
// Currency symbols, thousands separators and exponents are rejected.
func ParseAmount(amount string) (decimal.Decimal, error) {
	amount = strings.TrimSpace(amount)
	if amount == "" {
		return decimal.Zero, fmt.Errorf("%w: empty value", errs.ErrInvalidAmount)
	}
	if strings.ContainsAny(amount, "eE,$") {
		return decimal.Zero, fmt.Errorf("%w: %q is not a plain decimal", errs.ErrInvalidAmount, amount)
	}

	value, err := decimal.NewFromString(amount)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %s", errs.ErrInvalidAmount, err.Error())
	}
	if err := CheckAmountFormat(value); err != nil {
		return decimal.Zero, err
	}
	return value, nil
}

// CheckAmountFormat verifies that a value has at most two decimal places and fits the storage column.
// Sign is not checked.
func CheckAmountFormat(amount decimal.Decimal) error {
	if !amount.Equal(amount.Truncate(MaxDecimalPlaces)) {
		return fmt.Errorf("%w: maximum %d decimal places allowed", errs.ErrInvalidAmount, MaxDecimalPlaces)
	}
	if amount.Abs().GreaterThan(MaxAmount) {
		return fmt.Errorf("%w: maximum is %s", errs.ErrAmountOverflow, FormatAmount(MaxAmount))
	}
	return nil
}

// ValidatePositiveAmount checks that a transaction amount is strictly positive and well formed
func ValidatePositiveAmount(amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return fmt.Errorf("%w: amount must be greater than zero", errs.ErrInvalidAmount)
	}
	return CheckAmountFormat(amount)
}

// FormatAmount renders an amount with exactly two decimal places
func FormatAmount(amount decimal.Decimal) string {
	return amount.StringFixed(MaxDecimalPlaces)
}
