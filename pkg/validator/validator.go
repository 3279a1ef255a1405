// Package validator registers the domain's custom binding tags on gin's validator engine.
package validator

import (
	"errors"
	"reflect"
	"regexp"
	"strings"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

var (
	nicOld    = regexp.MustCompile(`^\d{9}[vV]$`)
	nicNew    = regexp.MustCompile(`^\d{12}$`)
	contactRe = regexp.MustCompile(`^\d{10}$`)
	emailRe   = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)
	genders   = map[string]struct{}{"Male": {}, "Female": {}, "Other": {}}
	statuses  = map[string]struct{}{"Upcoming": {}, "Ongoing": {}, "Completed": {}, "Cancelled": {}, "Postponed": {}}
	respTypes = map[string]struct{}{"paragraph": {}, "checkbox": {}, "rating": {}, "text": {}, "multiple_choice": {}, "yes_no": {}, "scale": {}}
)

const (
	ErrInvalidFormat = "invalid format"
	ErrFieldRequired = "field is required"
)

// Register installs custom tags on gin's default validator and makes error
// namespaces use json field names.
func Register() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return errors.New("gin validator engine is not go-playground/validator/v10")
	}
	return Configure(v)
}

// Configure installs custom tags on v.
func Configure(v *validator.Validate) error {
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return f.Name
		}
		return name
	})
	for tag, fn := range map[string]validator.Func{
		"nic":            func(fl validator.FieldLevel) bool { return IsValidNIC(fl.Field().String()) },
		"contact":        func(fl validator.FieldLevel) bool { return IsValidContact(fl.Field().String()) },
		"gender":         func(fl validator.FieldLevel) bool { return inSet(genders, fl.Field().String()) },
		"session_status": func(fl validator.FieldLevel) bool { return inSet(statuses, fl.Field().String()) },
		"response_type":  func(fl validator.FieldLevel) bool { return inSet(respTypes, fl.Field().String()) },
	} {
		if err := v.RegisterValidation(tag, fn); err != nil {
			return err
		}
	}
	return nil
}

// IsValidNIC accepts the old (9 digits + V) and new (12 digits) national ID formats.
func IsValidNIC(s string) bool {
	return nicOld.MatchString(s) || nicNew.MatchString(s)
}

// IsValidContact accepts a 10 digit phone number.
func IsValidContact(s string) bool {
	return contactRe.MatchString(s)
}

// IsValidEmail is a loose local@domain.tld check.
func IsValidEmail(s string) bool {
	return emailRe.MatchString(s)
}

func inSet(set map[string]struct{}, s string) bool {
	_, ok := set[s]
	return ok
}

// FieldErrors flattens validator errors into json field -> message.
// Returns nil when err is not a validation error.
func FieldErrors(err error) map[string]string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return nil
	}
	out := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		out[fe.Field()] = message(fe)
	}
	return out
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return ErrFieldRequired
	case "email":
		return "must be a valid email address"
	case "nic":
		return "must be 9 digits followed by V, or 12 digits"
	case "contact":
		return "must be exactly 10 digits"
	case "gender":
		return "must be one of Male, Female, Other"
	case "session_status":
		return "must be one of Upcoming, Ongoing, Completed, Cancelled, Postponed"
	case "response_type":
		return "unsupported response type"
	case "min":
		return "must be at least " + fe.Param()
	case "max":
		return "must be at most " + fe.Param()
	case "gt", "gte":
		return "must be greater than " + fe.Param()
	default:
		return ErrInvalidFormat
	}
}
