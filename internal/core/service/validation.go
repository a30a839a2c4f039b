package service

import (
	"errors"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/flywinger/bolt-user-auth/internal/core/domain"
)

// emailPattern requires local@host.tld: no whitespace or extra @, and a
// dotted domain. The stock email rule accepts dotless hosts like "a@b".
var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// newValidator builds the validator instance with the email rule replaced
// by the form-level pattern.
func newValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("email", func(fl validator.FieldLevel) bool {
		return emailPattern.MatchString(fl.Field().String())
	})
	return v
}

// checkStruct runs validator tags against a form input struct and converts
// the first violation into a field-keyed error. Fields are validated in
// struct declaration order, so the check order is deterministic: presence
// before length before format, username before password before email.
func checkStruct(v *validator.Validate, in any) error {
	err := v.Struct(in)
	if err == nil {
		return nil
	}

	var ve validator.ValidationErrors
	if !errors.As(err, &ve) || len(ve) == 0 {
		return err
	}

	field, msg := fieldViolation(ve[0])
	return domain.FieldErrors{field: msg}
}

func fieldViolation(fe validator.FieldError) (field, msg string) {
	field = strings.ToLower(fe.Field()[:1]) + fe.Field()[1:]

	switch {
	case fe.Field() == "Username" && fe.Tag() == "required":
		return field, "Username is required"
	case fe.Field() == "Username" && fe.Tag() == "min":
		return field, "Username must be at least 3 characters"
	case fe.Field() == "Password" && fe.Tag() == "required":
		return field, "Password is required"
	case fe.Field() == "Password" && fe.Tag() == "min":
		return field, "Password must be at least 6 characters"
	case fe.Tag() == "email":
		return field, "Invalid email address"
	default:
		return field, "Invalid value"
	}
}
