// Package validator provides custom validation functions for Gin's binding engine.
package validator

import (
	"reflect"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"hearth/internal/models"
)

// Register registers all custom validators with the Gin binding engine.
func Register() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		v.RegisterCustomTypeFunc(decimalValue, decimal.Decimal{}, decimal.NullDecimal{})
		_ = v.RegisterValidation("transaction_type", validateTransactionType)
		_ = v.RegisterValidation("split_type", validateSplitType)
		_ = v.RegisterValidation("paid_by_type", validatePaidByType)
		_ = v.RegisterValidation("decimal_positive", validateDecimalPositive)
		_ = v.RegisterValidation("decimal_nonnegative", validateDecimalNonNegative)
	}
}

// decimalValue exposes decimals to validation tags as their string form;
// a null decimal becomes nil so omitempty applies.
func decimalValue(field reflect.Value) interface{} {
	switch d := field.Interface().(type) {
	case decimal.Decimal:
		return d.String()
	case decimal.NullDecimal:
		if !d.Valid {
			return nil
		}
		return d.Decimal.String()
	}
	return nil
}

func validateTransactionType(fl validator.FieldLevel) bool {
	return models.TransactionType(fl.Field().String()).Valid()
}

func validateSplitType(fl validator.FieldLevel) bool {
	return models.SplitType(fl.Field().String()).Valid()
}

func validatePaidByType(fl validator.FieldLevel) bool {
	return models.PaidByType(fl.Field().String()).Valid()
}

func validateDecimalPositive(fl validator.FieldLevel) bool {
	d, err := decimal.NewFromString(fl.Field().String())
	return err == nil && d.IsPositive()
}

func validateDecimalNonNegative(fl validator.FieldLevel) bool {
	d, err := decimal.NewFromString(fl.Field().String())
	return err == nil && !d.IsNegative()
}
