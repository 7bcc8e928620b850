package customvalidator

import (
	"strings"

	"github.com/go-playground/validator/v10"
)

// RegisterCustomValidations adds the project's validation tags to v.
func RegisterCustomValidations(v *validator.Validate) error {
	if err := v.RegisterValidation("notblank", isNotBlank); err != nil {
		return err
	}
	return nil
}

// isNotBlank rejects strings made only of whitespace.
func isNotBlank(fl validator.FieldLevel) bool {
	return strings.TrimSpace(fl.Field().String()) != ""
}
