package api

import (
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
)

var formValidator = newFormValidator()

func newFormValidator() *validator.Validate {
	v := validator.New()
	// Report failures under the JSON field name the form renders
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// LocaleForm carries the user-submitted fields of the locale create/edit
// modal. Validation runs before any request is sent; failures stay on the
// form as field-level messages.
type LocaleForm struct {
	Name        string  `json:"name" validate:"required,min=2,max=120"`
	CountryCode string  `json:"countryCode" validate:"required,iso3166_1_alpha2"`
	City        string  `json:"city" validate:"required,max=120"`
	Latitude    float64 `json:"latitude" validate:"gte=-90,lte=90"`
	Longitude   float64 `json:"longitude" validate:"gte=-180,lte=180"`
	Category    string  `json:"category" validate:"required,oneof=city landmark museum nature beach food nightlife other"`
	Active      bool    `json:"active"`
}

// Validate checks the form. On failure it returns FieldErrors keyed by JSON
// field name.
func (f LocaleForm) Validate() error {
	return asFieldErrors(formValidator.Struct(f))
}

// FieldErrors maps form field names to validation messages.
type FieldErrors map[string]string

func (e FieldErrors) Error() string {
	fields := make([]string, 0, len(e))
	for field := range e {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	parts := make([]string, 0, len(fields))
	for _, field := range fields {
		parts = append(parts, fmt.Sprintf("%s %s", field, e[field]))
	}
	return strings.Join(parts, "; ")
}

func asFieldErrors(err error) error {
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	fields := make(FieldErrors, len(verrs))
	for _, fe := range verrs {
		fields[fe.Field()] = fieldMessage(fe)
	}
	return fields
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "min":
		return fmt.Sprintf("must be at least %s characters", fe.Param())
	case "max":
		return fmt.Sprintf("must be at most %s characters", fe.Param())
	case "gte":
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "lte":
		return fmt.Sprintf("must be at most %s", fe.Param())
	case "oneof":
		return fmt.Sprintf("must be one of: %s", fe.Param())
	case "iso3166_1_alpha2":
		return "must be a two-letter country code"
	default:
		return fmt.Sprintf("failed %s validation", fe.Tag())
	}
}
