package auth

import (
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"
)

const passwordSpecials = "!@#$%?&"

// newValidator returns a validator with the password complexity rule registered.
func newValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("password", func(fl validator.FieldLevel) bool {
		var upper, lower, digit, special bool
		for _, r := range fl.Field().String() {
			switch {
			case unicode.IsUpper(r):
				upper = true
			case unicode.IsLower(r):
				lower = true
			case unicode.IsDigit(r):
				digit = true
			case strings.ContainsRune(passwordSpecials, r):
				special = true
			}
		}
		return upper && lower && digit && special
	})
	return v
}

// formErrors flattens validator errors into a field → message map.
func formErrors(err error) map[string]string {
	out := make(map[string]string)
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		out["general"] = "Please fix the errors below."
		return out
	}
	for _, fe := range verrs {
		out[fe.Field()] = fieldMessage(fe)
	}
	return out
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Field() {
	case "FullName":
		return "Full name must be at least 5 characters long"
	case "Email":
		if fe.Tag() == "required" {
			return "Email is required"
		}
		return "Invalid email address"
	case "Password":
		switch fe.Tag() {
		case "required":
			return "Password is required"
		case "min":
			return "Password must be at least 8 characters long"
		case "max":
			return "Password must be at most 20 characters long"
		default:
			return "Password must contain uppercase, lowercase, a number and a special character (" + passwordSpecials + ")"
		}
	case "ConfirmPassword":
		if fe.Tag() == "eqfield" {
			return "Passwords do not match"
		}
		return "Confirm Password must be at least 8 characters long"
	default:
		return "Invalid value"
	}
}
