package accountdelivery

import (
	"github.com/gin-gonic/gin/binding"
	"github.com/go-petr/pet-account/internal/domain"
	"github.com/go-playground/validator/v10"
)

// AccountNumberLength is the width of account numbers accepted from clients.
const AccountNumberLength = 10

// ValidAccountNumber validates whether the field holds a ten digit account number.
var ValidAccountNumber validator.Func = func(fl validator.FieldLevel) bool {
	if n, ok := fl.Field().Interface().(string); ok {
		return len(n) == AccountNumberLength && domain.IsValidAccountNumber(n)
	}

	return false
}

// RegisterValidators adds the "accountnumber" rule to the gin binding validator.
func RegisterValidators() error {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		return v.RegisterValidation("accountnumber", ValidAccountNumber)
	}

	return nil
}
