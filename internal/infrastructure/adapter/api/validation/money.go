package validation

import (
	"reflect"
	"strings"
	"sync"

	"github.com/amirhossein-jamali/bank-ledger/internal/domain/entity"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

// MoneyTag validates a positive amount with at most two decimal places
const MoneyTag = "money"

var registerOnce sync.Once

// Register adds the ledger rules to a validator instance
func Register(v *validator.Validate) error {
	// report fields by their JSON names
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	// decimals are validated through their string form
	v.RegisterCustomTypeFunc(func(field reflect.Value) any {
		if d, ok := field.Interface().(decimal.Decimal); ok {
			return d.String()
		}
		return nil
	}, decimal.Decimal{})

	return v.RegisterValidation(MoneyTag, validateMoney)
}

// RegisterWithGin installs the ledger rules on gin's binding validator
func RegisterWithGin() error {
	var err error
	registerOnce.Do(func() {
		if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
			err = Register(v)
		}
	})
	return err
}

func validateMoney(fl validator.FieldLevel) bool {
	amount, err := decimal.NewFromString(fl.Field().String())
	if err != nil {
		return false
	}
	return entity.ValidatePositiveAmount(amount) == nil
}

// FieldErrors flattens validator errors into field -> failed rule
func FieldErrors(err error) map[string]any {
	validationErrors, ok := err.(validator.ValidationErrors)
	if !ok {
		return nil
	}

	details := make(map[string]any, len(validationErrors))
	for _, fe := range validationErrors {
		details[fe.Field()] = fe.Tag()
	}
	return details
}
