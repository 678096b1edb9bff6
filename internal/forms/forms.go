// Package forms binds, validates and encodes the dashboard's edit forms.
// Validation runs before any upstream call; a form with errors is never sent.
package forms

import (
	"errors"
	"fmt"
	"net/url"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := f.Tag.Get("form")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

type FieldError struct {
	Field   string
	Message string
}

// Errors lists failing fields in form declaration order.
type Errors []FieldError

func (e Errors) Error() string {
	parts := make([]string, len(e))
	for i, fe := range e {
		parts[i] = fe.Message
	}
	return strings.Join(parts, "; ")
}

// First is the error that blocks submission, nil when the form is valid.
func (e Errors) First() *FieldError {
	if len(e) == 0 {
		return nil
	}
	return &e[0]
}

// For is the inline message for field, empty when it passed.
func (e Errors) For(field string) string {
	for _, fe := range e {
		if fe.Field == field {
			return fe.Message
		}
	}
	return ""
}

// check validates form and merges parse failures, ordering the result by
// the struct's field order.
func check(form any, parseErrs map[string]string) Errors {
	msgs := map[string]string{}
	for k, v := range parseErrs {
		msgs[k] = v
	}
	if err := validate.Struct(form); err != nil {
		var ves validator.ValidationErrors
		if !errors.As(err, &ves) {
			return Errors{{Field: "", Message: err.Error()}}
		}
		t := reflect.Indirect(reflect.ValueOf(form)).Type()
		for _, fe := range ves {
			if _, seen := msgs[fe.Field()]; seen {
				continue
			}
			msgs[fe.Field()] = message(t, fe)
		}
	}
	if len(msgs) == 0 {
		return nil
	}

	var out Errors
	t := reflect.Indirect(reflect.ValueOf(form)).Type()
	for i := 0; i < t.NumField(); i++ {
		name := t.Field(i).Tag.Get("form")
		if m, ok := msgs[name]; ok {
			out = append(out, FieldError{Field: name, Message: m})
		}
	}
	return out
}

func labelOf(t reflect.Type, structField string) string {
	if f, ok := t.FieldByName(structField); ok {
		if l := f.Tag.Get("label"); l != "" {
			return l
		}
		return f.Tag.Get("form")
	}
	return structField
}

func message(t reflect.Type, fe validator.FieldError) string {
	label := labelOf(t, fe.StructField())
	numeric := fe.Kind() == reflect.Float64 || fe.Kind() == reflect.Int
	switch fe.Tag() {
	case "required", "required_if":
		return fmt.Sprintf("%s is required", label)
	case "min":
		if numeric {
			return fmt.Sprintf("%s must be at least %s", label, fe.Param())
		}
		return fmt.Sprintf("%s must be at least %s characters", label, fe.Param())
	case "max":
		if numeric {
			return fmt.Sprintf("%s must be at most %s", label, fe.Param())
		}
		return fmt.Sprintf("%s must be at most %s characters", label, fe.Param())
	case "gte":
		return fmt.Sprintf("%s must be greater than or equal to %s", label, fe.Param())
	case "gtefield":
		return fmt.Sprintf("%s must be greater than or equal to %s", label, labelOf(t, fe.Param()))
	case "eqfield":
		return fmt.Sprintf("%s must match %s", label, labelOf(t, fe.Param()))
	case "email":
		return fmt.Sprintf("%s must be a valid email address", label)
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", label, fe.Param())
	}
	return fmt.Sprintf("%s is invalid", label)
}

func text(v url.Values, key string) string { return strings.TrimSpace(v.Get(key)) }

// number parses a numeric field, recording a message under key on failure.
func number(v url.Values, key, label string, errs map[string]string) float64 {
	s := text(v, key)
	if s == "" {
		errs[key] = fmt.Sprintf("%s is required", label)
		return 0
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		errs[key] = fmt.Sprintf("%s must be a number", label)
		return 0
	}
	return f
}

func checkbox(v url.Values, key string) bool {
	switch strings.ToLower(text(v, key)) {
	case "on", "true", "1", "yes":
		return true
	}
	return false
}

// Choices is the option list for a select. A stored value outside the list
// is appended so an unchanged record can be saved again.
func Choices(list []string, current string) []string {
	if current == "" {
		return list
	}
	for _, s := range list {
		if s == current {
			return list
		}
	}
	out := make([]string, 0, len(list)+1)
	return append(append(out, list...), current)
}

// Key identifies a form instance for staging: "product:new", "store:12".
func Key(kind, id string) string {
	if id == "" {
		id = "new"
	}
	return kind + ":" + id
}
