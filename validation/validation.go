// Package validation contains custom validation functions for the application to use for input validation.
package validation

import (
	"strings"

	"github.com/go-playground/validator/v10"
)

// StatusValidator checks that the field holds one of the two task statuses.
func StatusValidator(fl validator.FieldLevel) bool {
	value := fl.Field().String()

	if value == "pendiente" || value == "completada" {
		return true
	}
	return false
}

// FieldValidator is a validation function that checks if the field value is empty.
// It returns true if the field value is not blank, and false otherwise.
func FieldValidator(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	if strings.TrimSpace(value) == "" {
		return false
	}
	return true
}
