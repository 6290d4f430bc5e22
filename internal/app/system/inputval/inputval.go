// Package inputval validates form input with struct tags.
//
// Each field carries a `validate` tag (go-playground/validator rules) and a
// `label` tag naming it for users. Validate returns one FieldError per
// failing field, in struct order, with a human message built from the label.
package inputval

import (
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"sync"

	"github.com/dalemusser/takeandeat/internal/app/system/normalize"
	"github.com/go-playground/validator/v10"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// FieldError is a single failing field.
type FieldError struct {
	Field   string // struct field name
	Key     string // form key (the `form` tag, or lower-cased field name)
	Tag     string // validator rule that failed
	Message string
}

// Result collects the failures from Validate.
type Result struct {
	Errors []FieldError
}

// HasErrors reports whether any field failed.
func (r Result) HasErrors() bool { return len(r.Errors) > 0 }

// First returns the first message, or "".
func (r Result) First() string {
	if len(r.Errors) == 0 {
		return ""
	}
	return r.Errors[0].Message
}

// All joins every message with "; ".
func (r Result) All() string {
	msgs := make([]string, 0, len(r.Errors))
	for _, e := range r.Errors {
		msgs = append(msgs, e.Message)
	}
	return strings.Join(msgs, "; ")
}

// For returns the first message for the given form key, or "".
func (r Result) For(key string) string {
	for _, e := range r.Errors {
		if e.Key == key {
			return e.Message
		}
	}
	return ""
}

var (
	once     sync.Once
	validate *validator.Validate
)

func engine() *validator.Validate {
	once.Do(func() {
		v := validator.New(validator.WithRequiredStructEnabled())
		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			if name := f.Tag.Get("form"); name != "" && name != "-" {
				return name
			}
			return strings.ToLower(f.Name)
		})
		_ = v.RegisterValidation("intlphone", func(fl validator.FieldLevel) bool {
			return IsValidPhone(fl.Field().String())
		})
		_ = v.RegisterValidation("objectid", func(fl validator.FieldLevel) bool {
			return primitive.IsValidObjectID(fl.Field().String())
		})
		_ = v.RegisterValidation("simpleemail", func(fl validator.FieldLevel) bool {
			return IsValidEmail(fl.Field().String())
		})
		validate = v
	})
	return validate
}

// Validate checks s (a struct or pointer to struct) against its tags.
func Validate(s any) Result {
	err := engine().Struct(s)
	if err == nil {
		return Result{}
	}
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return Result{Errors: []FieldError{{Message: err.Error()}}}
	}

	t := reflect.TypeOf(s)
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}

	out := Result{Errors: make([]FieldError, 0, len(verrs))}
	for _, fe := range verrs {
		label := fe.StructField()
		if sf, ok := t.FieldByName(fe.StructField()); ok {
			if l := sf.Tag.Get("label"); l != "" {
				label = l
			}
		}
		out.Errors = append(out.Errors, FieldError{
			Field:   fe.StructField(),
			Key:     fe.Field(),
			Tag:     fe.Tag(),
			Message: message(label, fe),
		})
	}
	return out
}

func message(label string, fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return label + " is required."
	case "max":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("%s must be at most %s characters.", label, fe.Param())
		}
		return fmt.Sprintf("%s must be at most %s.", label, fe.Param())
	case "min":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("%s must be at least %s characters.", label, fe.Param())
		}
		return fmt.Sprintf("%s must be at least %s.", label, fe.Param())
	case "email", "simpleemail":
		return "A valid email address is required."
	case "intlphone":
		return "Please enter a valid phone number with country code (e.g., +1234567890)"
	case "objectid":
		return label + " is not a valid identifier."
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s.", label, fe.Param())
	case "datetime":
		return label + " must be a valid date."
	default:
		return label + " is invalid."
	}
}

var emailRE = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// IsValidEmail applies the site-wide email shape rule: something, an @,
// something, a dot, something, and no whitespace anywhere.
func IsValidEmail(s string) bool {
	return emailRE.MatchString(s)
}

// IsValidPhone reports whether s normalizes to an E.164 number.
func IsValidPhone(s string) bool {
	_, ok := normalize.Phone(s)
	return ok
}
