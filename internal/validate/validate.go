// Package validate turns go-playground struct tags into field-keyed messages.
package validate

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

var (
	once sync.Once
	v    *validator.Validate
)

func instance() *validator.Validate {
	once.Do(func() {
		v = validator.New()
		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			if name == "" {
				return f.Name
			}
			return name
		})
	})
	return v
}

// Struct validates s and returns nil or a map from dotted json path to message.
func Struct(s any) (map[string]string, error) {
	err := instance().Struct(s)
	if err == nil {
		return nil, nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return nil, err
	}

	out := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		field := fieldPath(fe.Namespace())
		if _, seen := out[field]; !seen {
			out[field] = message(field, fe)
		}
	}
	return out, nil
}

// fieldPath drops the root struct name from the namespace.
func fieldPath(ns string) string {
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		return ns[i+1:]
	}
	return ns
}

func humanize(field string) string {
	if i := strings.LastIndexByte(field, '.'); i >= 0 {
		field = field[i+1:]
	}
	return strings.ReplaceAll(field, "_", " ")
}

func message(field string, fe validator.FieldError) string {
	name := humanize(field)
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("The %s field is required.", name)
	case "email":
		return fmt.Sprintf("The %s must be a valid email address.", name)
	case "max":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("The %s may not be greater than %s characters.", name, fe.Param())
		}
		return fmt.Sprintf("The %s may not be greater than %s.", name, fe.Param())
	case "min":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("The %s must be at least %s characters.", name, fe.Param())
		}
		return fmt.Sprintf("The %s must be at least %s.", name, fe.Param())
	case "oneof":
		return fmt.Sprintf("The selected %s is invalid.", name)
	default:
		return fmt.Sprintf("The %s is invalid.", name)
	}
}
