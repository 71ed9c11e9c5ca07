package entity

import (
	"testing"

	errs "github.com/amirhossein-jamali/bank-ledger/internal/domain/error"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAmount(t *testing.T) {
	t.Run("Valid amounts", func(t *testing.T) {
		testCases := []struct {
			input    string
			expected string
		}{
			{"100.00", "100.00"},
			{"0.01", "0.01"},
			{"1", "1.00"},
			{"1.5", "1.50"},
			{" 42.10 ", "42.10"},
			{"1234567.89", "1234567.89"},
			{"9999999999999.99", "9999999999999.99"},
			{"-5.00", "-5.00"},
		}

		for _, tc := range testCases {
			t.Run(tc.input, func(t *testing.T) {
				value, err := ParseAmount(tc.input)
				require.NoError(t, err)
				assert.Equal(t, tc.expected, FormatAmount(value))
			})
		}
	})

	t.Run("Invalid amounts", func(t *testing.T) {
		testCases := []struct {
			input       string
			errorType   error
			description string
		}{
			{"", errs.ErrInvalidAmount, "Empty string"},
			{"   ", errs.ErrInvalidAmount, "Whitespace only"},
			{"1.234", errs.ErrInvalidAmount, "Too many decimal places"},
			{"abc", errs.ErrInvalidAmount, "Non-numeric"},
			{"1,000.00", errs.ErrInvalidAmount, "Comma as thousands separator"},
			{"1.00.00", errs.ErrInvalidAmount, "Multiple decimal points"},
			{"$100", errs.ErrInvalidAmount, "Currency symbol"},
			{"1e3", errs.ErrInvalidAmount, "Exponent"},
			{"10000000000000.00", errs.ErrAmountOverflow, "Wider than the column"},
		}

		for _, tc := range testCases {
			t.Run(tc.description, func(t *testing.T) {
				_, err := ParseAmount(tc.input)
				assert.ErrorIs(t, err, tc.errorType)
			})
		}
	})
}

func TestValidatePositiveAmount(t *testing.T) {
	assert.NoError(t, ValidatePositiveAmount(decimal.RequireFromString("0.01")))
	assert.NoError(t, ValidatePositiveAmount(decimal.RequireFromString("10.500")), "trailing zeros keep two places")

	assert.ErrorIs(t, ValidatePositiveAmount(decimal.Zero), errs.ErrInvalidAmount)
	assert.ErrorIs(t, ValidatePositiveAmount(decimal.RequireFromString("-1")), errs.ErrInvalidAmount)
	assert.ErrorIs(t, ValidatePositiveAmount(decimal.RequireFromString("0.001")), errs.ErrInvalidAmount)
}

func TestFormatAmount(t *testing.T) {
	testCases := []struct {
		input    string
		expected string
	}{
		{"0", "0.00"},
		{"10", "10.00"},
		{"10.1", "10.10"},
		{"600.00", "600.00"},
	}

	for _, tc := range testCases {
		t.Run(tc.input, func(t *testing.T) {
			assert.Equal(t, tc.expected, FormatAmount(decimal.RequireFromString(tc.input)))
		})
	}
}

func TestDecimalArithmeticIsExact(t *testing.T) {
	// 0.10 added ten times must be exactly 1.00, which binary floats cannot guarantee
	total := decimal.Zero
	step := decimal.RequireFromString("0.10")
	for i := 0; i < 10; i++ {
		total = total.Add(step)
	}
	assert.True(t, total.Equal(decimal.NewFromInt(1)))
}
