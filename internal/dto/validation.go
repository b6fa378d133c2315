package dto

import (
	"fmt"

	"github.com/SscSPs/fx_rates_service/internal/core/domain"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// RegisterValidations adds the currency, source and frequency tags to gin's validator.
func RegisterValidations() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return fmt.Errorf("unexpected validator engine %T", binding.Validator.Engine())
	}
	return RegisterValidationsOn(v)
}

// RegisterValidationsOn adds the custom tags to v.
func RegisterValidationsOn(v *validator.Validate) error {
	tags := map[string]validator.Func{
		"currency": func(fl validator.FieldLevel) bool {
			_, err := domain.ParseCurrencyCode(fl.Field().String())
			return err == nil
		},
		"source": func(fl validator.FieldLevel) bool {
			_, err := domain.ParseSource(fl.Field().String())
			return err == nil
		},
		"frequency": func(fl validator.FieldLevel) bool {
			_, err := domain.ParseFrequency(fl.Field().String())
			return err == nil
		},
	}
	for tag, fn := range tags {
		if err := v.RegisterValidation(tag, fn); err != nil {
			return fmt.Errorf("register %s validation: %w", tag, err)
		}
	}
	return nil
}
