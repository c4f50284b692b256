// Package validation checks form input before it reaches a repository.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"linkdesk/internal/domain"
)

// MinPasswordLength is the shortest password accepted by the login form.
const MinPasswordLength = 7

// Result holds field-level messages keyed by JSON field path.
type Result struct {
	Fields map[string]string
}

// OK reports whether validation passed.
func (r Result) OK() bool { return len(r.Fields) == 0 }

// Err returns a *domain.ValidationError, or nil when the result is OK.
func (r Result) Err() error {
	if r.OK() {
		return nil
	}
	return &domain.ValidationError{Fields: r.Fields}
}

func (r *Result) add(field, msg string) {
	if r.Fields == nil {
		r.Fields = make(map[string]string)
	}
	if _, exists := r.Fields[field]; !exists {
		r.Fields[field] = msg
	}
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	err := v.RegisterValidation("hostname_shape", func(fl validator.FieldLevel) bool {
		return domain.IsValidHost(fl.Field().String())
	})
	if err != nil {
		panic(fmt.Sprintf("validation: register hostname_shape: %v", err))
	}
	v.RegisterStructValidation(publisherRules, domain.Publisher{})
	return v
}

func publisherRules(sl validator.StructLevel) {
	p := sl.Current().Interface().(domain.Publisher)
	if p.Priced() && strings.TrimSpace(p.Currency) == "" {
		sl.ReportError(p.Currency, "currency", "Currency", "currency_required", "")
	}
	if p.IsReseller && strings.TrimSpace(p.Notes) == "" {
		sl.ReportError(p.Notes, "notes", "Notes", "reseller_notes", "")
	}
}

// Domain validates a normalized domain record.
func Domain(d domain.Domain) Result {
	return check(d)
}

// Publisher validates a normalized publisher record.
func Publisher(p domain.Publisher) Result {
	return check(p)
}

// Login validates sign-in form input.
func Login(email, password string) Result {
	var r Result
	if err := validate.Var(email, "required,email"); err != nil {
		r.add("email", "must be a valid email address")
	}
	if len(password) < MinPasswordLength {
		r.add("password", fmt.Sprintf("must contain at least %d characters", MinPasswordLength))
	}
	return r
}

func check(v any) Result {
	var r Result
	err := validate.Struct(v)
	if err == nil {
		return r
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		r.add("_", err.Error())
		return r
	}
	for _, fe := range fieldErrs {
		r.add(fieldPath(fe), message(fe))
	}
	return r
}

// fieldPath drops the root struct name from the namespace and any slice index,
// e.g. "Domain.seoMetricsRequirements.minDomainRating".
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if _, rest, ok := strings.Cut(ns, "."); ok {
		ns = rest
	}
	if i := strings.Index(ns, "["); i >= 0 {
		ns = ns[:i]
	}
	return ns
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "min":
		if fe.Kind() == reflect.Slice {
			return "must contain at least one entry"
		}
		return "must be at least " + fe.Param()
	case "max":
		return "must be at most " + fe.Param()
	case "email":
		return "must be a valid email address"
	case "hostname_shape":
		return "must be a valid domain name (e.g. example.com)"
	case "currency_required":
		return "is required when a price is set"
	case "reseller_notes":
		return "are required for resellers"
	default:
		return "is invalid"
	}
}
