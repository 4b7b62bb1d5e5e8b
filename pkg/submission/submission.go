// Package submission holds the contact form payload and the rules it must
// satisfy. The same rules run in the client before sending and in the server
// before anything is delivered or stored.
package submission

import (
	"errors"
	"reflect"
	"sort"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

// Submission is the in-flight contact form payload. It is never stored as is.
type Submission struct {
	Name    string `json:"name" validate:"required,min=2,max=100"`
	Email   string `json:"email" validate:"required,email,max=254"`
	Subject string `json:"subject" validate:"required,min=2,max=200"`
	Message string `json:"message" validate:"required,min=10,max=5000"`
}

// FieldErrors maps a JSON field name to a human readable problem.
type FieldErrors map[string]string

func (fe FieldErrors) Error() string {
	fields := make([]string, 0, len(fe))
	for f := range fe {
		fields = append(fields, f)
	}
	sort.Strings(fields)

	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		parts = append(parts, f+": "+fe[f])
	}
	return "invalid submission: " + strings.Join(parts, "; ")
}

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

func validatorInstance() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		validate.RegisterTagNameFunc(func(f reflect.StructField) string {
			name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
			return name
		})
	})
	return validate
}

// Normalize trims every field and lower-cases the email, which is the user identity.
func (s Submission) Normalize() Submission {
	return Submission{
		Name:    strings.TrimSpace(s.Name),
		Email:   strings.ToLower(strings.TrimSpace(s.Email)),
		Subject: strings.TrimSpace(s.Subject),
		Message: strings.TrimSpace(s.Message),
	}
}

// Validate returns nil when s satisfies every rule, otherwise one entry per
// offending field.
func Validate(s Submission) FieldErrors {
	err := validatorInstance().Struct(s)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return FieldErrors{"_": err.Error()}
	}

	fe := FieldErrors{}
	for _, v := range verrs {
		if _, seen := fe[v.Field()]; seen {
			continue
		}
		fe[v.Field()] = describe(v)
	}
	return fe
}

func describe(v validator.FieldError) string {
	switch v.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "min":
		return "must be at least " + v.Param() + " characters"
	case "max":
		return "must be at most " + v.Param() + " characters"
	default:
		return "is invalid"
	}
}
