// Vidrank - Video Search and Feed Ranking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vidrank

package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

// singleton validator instance
var (
	validate     *validator.Validate
	validateOnce sync.Once
)

// FieldError represents a single field validation failure.
type FieldError struct {
	field   string
	tag     string
	param   string
	value   interface{}
	message string
}

// Field returns the dotted koanf path of the field that failed validation.
func (e *FieldError) Field() string {
	return e.field
}

// Tag returns the validation tag that failed.
func (e *FieldError) Tag() string {
	return e.tag
}

// Param returns the parameter for the validation tag (e.g., "100" for "max=100").
func (e *FieldError) Param() string {
	return e.param
}

// Value returns the actual value that failed validation.
func (e *FieldError) Value() interface{} {
	return e.value
}

// Error returns a human-readable error message.
func (e *FieldError) Error() string {
	return e.message
}

// Error is a collection of field validation failures.
type Error struct {
	fields []FieldError
}

// Fields returns the individual failures.
func (ve *Error) Fields() []FieldError {
	return ve.fields
}

// Error implements the error interface, returning a combined error message.
func (ve *Error) Error() string {
	if len(ve.fields) == 0 {
		return "validation failed"
	}

	messages := make([]string, 0, len(ve.fields))
	for i := range ve.fields {
		messages = append(messages, ve.fields[i].Error())
	}

	return strings.Join(messages, "; ")
}

// GetValidator returns the singleton validator instance.
// This function is thread-safe.
func GetValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		validate.RegisterTagNameFunc(koanfTagName)
	})

	return validate
}

// koanfTagName reports a field by its koanf key so messages match config files.
func koanfTagName(fld reflect.StructField) string {
	name, _, _ := strings.Cut(fld.Tag.Get("koanf"), ",")
	if name == "-" {
		return ""
	}
	if name == "" {
		return fld.Name
	}
	return name
}

// ValidateStruct validates a struct using the singleton validator.
// Returns nil if validation passes, or *Error if validation fails.
func ValidateStruct(s interface{}) error {
	err := GetValidator().Struct(s)
	if err == nil {
		return nil
	}

	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		// InvalidValidationError: s was not a struct
		return &Error{
			fields: []FieldError{{
				field:   "unknown",
				tag:     "unknown",
				message: err.Error(),
			}},
		}
	}

	fields := make([]FieldError, len(validationErrs))
	for i, fe := range validationErrs {
		path := fieldPath(fe.Namespace())
		fields[i] = FieldError{
			field:   path,
			tag:     fe.Tag(),
			param:   fe.Param(),
			value:   fe.Value(),
			message: translateError(fe, path),
		}
	}

	return &Error{fields: fields}
}

// fieldPath drops the root type name from a validator namespace.
func fieldPath(namespace string) string {
	if _, rest, ok := strings.Cut(namespace, "."); ok {
		return rest
	}
	return namespace
}

// errorMessageTemplates maps validation tags to message templates.
var errorMessageTemplates = map[string]string{
	"required": "%s is required",
	"url":      "%s must be a valid URL",
	"http_url": "%s must be a valid http or https URL",
}

// errorMessageWithParam maps validation tags to templates that include param.
var errorMessageWithParam = map[string]string{
	"oneof":           "%s must be one of: %s",
	"gte":             "%s must be greater than or equal to %s",
	"lte":             "%s must be less than or equal to %s",
	"gt":              "%s must be greater than %s",
	"lt":              "%s must be less than %s",
	"required_if":     "%s is required when %s",
	"gtefield":        "%s must be greater than or equal to %s",
	"excluded_unless": "%s must be empty unless %s",
}

// translateError converts a validator.FieldError to a human-readable message.
func translateError(fe validator.FieldError, field string) string {
	tag := fe.Tag()
	param := fe.Param()

	if template, ok := errorMessageTemplates[tag]; ok {
		return fmt.Sprintf(template, field)
	}

	if template, ok := errorMessageWithParam[tag]; ok {
		return fmt.Sprintf(template, field, param)
	}

	return translateMinMax(fe, field, tag, param)
}

// translateMinMax handles min/max validation with type-specific messages.
func translateMinMax(fe validator.FieldError, field, tag, param string) string {
	isString := fe.Kind() == reflect.String

	switch tag {
	case "min":
		if isString {
			return fmt.Sprintf("%s must be at least %s characters", field, param)
		}
		return fmt.Sprintf("%s must be at least %s", field, param)
	case "max":
		if isString {
			return fmt.Sprintf("%s must be at most %s characters", field, param)
		}
		return fmt.Sprintf("%s must be at most %s", field, param)
	default:
		return fmt.Sprintf("%s failed %s validation", field, tag)
	}
}
