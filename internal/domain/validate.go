package domain

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

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
	return v
}

// FieldError is one failed constraint, addressed by JSON property name.
type FieldError struct {
	ObjectName string `json:"objectName"`
	Field      string `json:"field"`
	Message    string `json:"message"`
}

type ValidationError struct {
	Object string
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.Field+": "+f.Message)
	}
	return e.Object + " is invalid: " + strings.Join(parts, "; ")
}

// Field returns the message for one property, or "" if it passed.
func (e *ValidationError) Field(name string) string {
	for _, f := range e.Fields {
		if f.Field == name {
			return f.Message
		}
	}
	return ""
}

// Validate checks the struct tags of v and reports every failing field.
func Validate(objectName string, v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("failed to validate %s: %w", objectName, err)
	}
	out := &ValidationError{Object: objectName}
	for _, fe := range verrs {
		out.Fields = append(out.Fields, FieldError{
			ObjectName: objectName,
			Field:      fe.Field(),
			Message:    message(fe),
		})
	}
	return out
}

func message(fe validator.FieldError) string {
	kind := fe.Kind()
	if kind == reflect.Pointer {
		kind = fe.Type().Elem().Kind()
	}
	switch fe.Tag() {
	case "required":
		return "This field is required."
	case "max":
		if kind == reflect.String {
			return fmt.Sprintf("This field cannot be longer than %s characters.", fe.Param())
		}
		return fmt.Sprintf("This field cannot be more than %s.", fe.Param())
	case "min":
		if kind == reflect.String {
			return fmt.Sprintf("This field is required to be at least %s characters.", fe.Param())
		}
		return fmt.Sprintf("This field should be at least %s.", fe.Param())
	case "oneof":
		return fmt.Sprintf("This field should be one of %s.", strings.ReplaceAll(fe.Param(), " ", ", "))
	case "email":
		return "Your email is invalid."
	}
	return "This field is invalid."
}
