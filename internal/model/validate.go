package model

import (
	"errors"
	"fmt"
	"reflect"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if d, ok := field.Interface().(decimal.Decimal); ok {
			f, _ := d.Float64()
			return f
		}
		return nil
	}, decimal.Decimal{})
	return v
}

// Validate checks the tagged field constraints of an entity and returns an
// error naming the first offending field.
func Validate(entity interface{}) error {
	err := validate.Struct(entity)
	if err == nil {
		return nil
	}
	var fields validator.ValidationErrors
	if errors.As(err, &fields) && len(fields) > 0 {
		fe := fields[0]
		return fmt.Errorf("field %s failed on %s", fe.Field(), fe.Tag())
	}
	return err
}

// ValidateState checks the cross-field rules tags cannot express.
func (p Payment) ValidateState() error {
	switch p.Status {
	case PaymentStatusPaid:
		if p.PaymentDate == nil {
			return errors.New("field PaymentDate is required when status is paid")
		}
	default:
		if p.PaymentDate != nil {
			return fmt.Errorf("field PaymentDate must be empty when status is %s", p.Status)
		}
	}
	if !p.Month.Equal(MonthOf(p.Month)) {
		return errors.New("field Month must be the first day of a month")
	}
	return nil
}

// ValidateState checks that the rate snapshot matches the calculation type.
func (e Estimate) ValidateState() error {
	if e.CalculationType == CalculationTypeUSD {
		if e.USDRate == nil || !e.USDRate.IsPositive() {
			return errors.New("field USDRate is required for usd calculation")
		}
	}
	return nil
}
