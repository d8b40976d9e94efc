package httpapi

import (
	"subscription_tracker/internal/domain/subscription"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

func registerValidators() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return nil
	}
	if err := v.RegisterValidation("billing_cycle", func(fl validator.FieldLevel) bool {
		return subscription.BillingCycle(fl.Field().String()).Valid()
	}); err != nil {
		return err
	}
	return v.RegisterValidation("payment_method", func(fl validator.FieldLevel) bool {
		return subscription.PaymentMethod(fl.Field().String()).Valid()
	})
}
