// Package validation holds the custom binding rules used by request DTOs.
package validation

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"
)

// Tags registered by Register
const (
	TagAdmissionNumber = "admission"
	TagPassword        = "password"
)

// PasswordMinLength is the shortest password accepted anywhere
const PasswordMinLength = 8

// AdmissionPattern matches slash-separated alphanumeric segments such as ST/001/21
var AdmissionPattern = regexp.MustCompile(`^[A-Za-z0-9]+(?:/[A-Za-z0-9]+)+$`)

// Register adds the custom rules to v
func Register(v *validator.Validate) error {
	if err := v.RegisterValidation(TagAdmissionNumber, validAdmissionNumber); err != nil {
		return err
	}
	return v.RegisterValidation(TagPassword, validPassword)
}

func validAdmissionNumber(fl validator.FieldLevel) bool {
	return IsAdmissionNumber(fl.Field().String())
}

func validPassword(fl validator.FieldLevel) bool {
	return IsStrongPassword(fl.Field().String())
}

// IsAdmissionNumber reports whether s, ignoring surrounding space, looks like an admission number
func IsAdmissionNumber(s string) bool {
	s = strings.TrimSpace(s)
	return len(s) <= 32 && AdmissionPattern.MatchString(s)
}

// IsStrongPassword requires the minimum length plus at least one letter and one digit
func IsStrongPassword(s string) bool {
	if len(s) < PasswordMinLength {
		return false
	}
	var letter, digit bool
	for _, r := range s {
		switch {
		case unicode.IsLetter(r):
			letter = true
		case unicode.IsDigit(r):
			digit = true
		}
	}
	return letter && digit
}
