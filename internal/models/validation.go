package models

import (
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// ErrValidation is matched by every *ValidationError.
var ErrValidation = errors.New("validation error")

// ValidationError reports invalid payload fields by their JSON names.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return "invalid fields: " + strings.Join(parts, ", ")
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

var validate *validator.Validate

func init() {
	validate = validator.New(validator.WithRequiredStructEnabled())

	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	_ = validate.RegisterValidation("notblank", notBlank)
	_ = validate.RegisterValidation("httpurl", httpURL)
	_ = validate.RegisterValidation("opturl", func(fl validator.FieldLevel) bool {
		return fl.Field().String() == "" || httpURL(fl)
	})
	_ = validate.RegisterValidation("optdate", func(fl validator.FieldLevel) bool {
		v := fl.Field().String()
		if v == "" {
			return true
		}
		_, err := time.Parse(time.DateOnly, v)
		return err == nil
	})
}

func notBlank(fl validator.FieldLevel) bool {
	return strings.TrimSpace(fl.Field().String()) != ""
}

func httpURL(fl validator.FieldLevel) bool {
	v := fl.Field().String()
	return strings.HasPrefix(v, "http://") || strings.HasPrefix(v, "https://")
}

// Validate checks a payload struct and returns a *ValidationError listing the
// offending fields, or nil.
func Validate(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("failed to validate payload: %w", err)
	}

	fields := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		fields[fe.Field()] = fieldMessage(fe)
	}
	return &ValidationError{Fields: fields}
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "notblank", "required":
		return "required"
	case "httpurl", "opturl":
		return "must be an http(s) URL"
	case "optdate":
		return "must use YYYY-MM-DD"
	case "oneof":
		return "must be one of " + strings.ReplaceAll(fe.Param(), " ", ", ")
	case "contains":
		return "valid email required"
	case "eqfield":
		return "passwords do not match"
	case "uuid":
		return "must be a UUID"
	case "min":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("minimum %s characters required", fe.Param())
		}
		return "must be a positive integer"
	default:
		return "invalid value"
	}
}
