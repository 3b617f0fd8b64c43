package validator

import (
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

var phonePattern = regexp.MustCompile(`^[0-9]{9,11}$`)

// New creates a new validator instance with custom validations registered.
// This ensures consistent validation across the application and tests.
func New() *validator.Validate {
	v := validator.New()

	// Register custom "notblank" validator - rejects whitespace-only strings
	// This is used for fields like receiver names that must have meaningful content
	_ = v.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		str, ok := fl.Field().Interface().(string)
		if !ok {
			return true // Not a string, let other validators handle it
		}
		return strings.TrimSpace(str) != ""
	})

	// Register custom "phone" validator - 9 to 11 digits once whitespace
	// is stripped, matching the receiver phone contract
	_ = v.RegisterValidation("phone", func(fl validator.FieldLevel) bool {
		str, ok := fl.Field().Interface().(string)
		if !ok {
			return true
		}
		return phonePattern.MatchString(StripSpaces(str))
	})

	return v
}

// StripSpaces removes all whitespace from s. Phone numbers are normalized
// with it before both validation and persistence.
func StripSpaces(s string) string {
	return strings.Join(strings.Fields(s), "")
}
