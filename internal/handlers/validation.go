package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

const (
	validationFailedMessage = "Request validation failed. Please check your request body format."
	invalidJSONMessage      = "Invalid JSON in request body. Please check your JSON format."
	trailingDataHint        = "This usually means there's extra content after a valid JSON object. Make sure you're sending only one JSON object and no trailing characters."
	syntaxHint              = "The JSON structure is invalid. Please check for missing commas, brackets, or quotes."
	emptyExpensesExample    = `{"food": 15000}`
	modeChoices             = "simple indepth concise detailed"
)

type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Type    string `json:"type"`
}

// ValidationError is rendered as the 422 body and lists every offending field.
type ValidationError struct {
	Detail  []FieldError `json:"detail"`
	Message string       `json:"message"`
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Detail))
	for _, field := range e.Detail {
		parts = append(parts, field.Field+": "+field.Message)
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func newValidationError(fields ...FieldError) *ValidationError {
	return &ValidationError{Detail: fields, Message: validationFailedMessage}
}

func unprocessable(c echo.Context, err *ValidationError) error {
	return c.JSON(http.StatusUnprocessableEntity, err)
}

// decodeJSON reads exactly one JSON object from the request body into target.
// Type mismatches do not stop decoding; they are returned as field errors so that
// validateRequest can report them alongside the schema failures.
func decodeJSON(c echo.Context, target any) ([]FieldError, *ValidationError) {
	body, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return nil, newValidationError(FieldError{Field: "body", Message: "Unable to read request body.", Type: "body_unreadable"})
	}

	if len(bytes.TrimSpace(body)) == 0 {
		return nil, newValidationError(FieldError{Field: "body", Message: "Field required", Type: "missing"})
	}

	var typeErrors []FieldError
	decoder := json.NewDecoder(bytes.NewReader(body))
	if err := decoder.Decode(target); err != nil {
		var typeErr *json.UnmarshalTypeError
		if !errors.As(err, &typeErr) {
			return nil, newValidationError(invalidJSON(err.Error(), syntaxHint))
		}
		mismatch := typeMismatch(typeErr)
		if mismatch.Field == "body" {
			return nil, newValidationError(mismatch)
		}
		typeErrors = append(typeErrors, mismatch)
	}

	if _, err := decoder.Token(); !errors.Is(err, io.EOF) {
		return nil, newValidationError(invalidJSON(fmt.Sprintf("extra data after the JSON object at offset %d", decoder.InputOffset()), trailingDataHint))
	}

	return typeErrors, nil
}

// validateRequest runs the struct validator and merges its failures with the decode-time
// type errors. Fields that already carry a type error are not reported twice.
func validateRequest(c echo.Context, target any, typeErrors []FieldError) *ValidationError {
	fields := append([]FieldError{}, typeErrors...)

	if err := c.Validate(target); err != nil {
		for _, field := range translateValidation(err).Detail {
			if !coveredBy(field.Field, typeErrors) {
				fields = append(fields, field)
			}
		}
	}

	if len(fields) == 0 {
		return nil
	}
	return newValidationError(fields...)
}

func coveredBy(path string, typeErrors []FieldError) bool {
	for _, typeErr := range typeErrors {
		if typeErr.Field == path ||
			strings.HasPrefix(typeErr.Field, path+".") ||
			strings.HasPrefix(typeErr.Field, path+"[") {
			return true
		}
	}
	return false
}

func invalidJSON(reason, hint string) FieldError {
	return FieldError{
		Field:   "body",
		Message: fmt.Sprintf("%s Error: %s. %s", invalidJSONMessage, reason, hint),
		Type:    "json_invalid",
	}
}

func typeMismatch(err *json.UnmarshalTypeError) FieldError {
	field := "body"
	if err.Field != "" {
		field += "." + err.Field
	}

	kind := err.Type.Kind()
	if kind == reflect.Pointer {
		kind = err.Type.Elem().Kind()
	}

	switch kind {
	case reflect.Float32, reflect.Float64, reflect.Int, reflect.Int64:
		return FieldError{Field: field, Message: "Input should be a valid number", Type: "float_type"}
	case reflect.String:
		return FieldError{Field: field, Message: "Input should be a valid string", Type: "string_type"}
	case reflect.Bool:
		return FieldError{Field: field, Message: "Input should be a valid boolean", Type: "bool_type"}
	case reflect.Map:
		return FieldError{Field: field, Message: "Input should be a valid dictionary", Type: "dict_type"}
	case reflect.Struct:
		return FieldError{Field: field, Message: "Input should be a valid dictionary or object to extract fields from", Type: "model_attributes_type"}
	default:
		return FieldError{Field: field, Message: fmt.Sprintf("Input should be a valid %s", err.Type), Type: "type_error"}
	}
}

// translateValidation converts validator errors into the 422 field list.
func translateValidation(err error) *ValidationError {
	var errs validator.ValidationErrors
	if !errors.As(err, &errs) {
		return newValidationError(FieldError{Field: "body", Message: err.Error(), Type: "value_error"})
	}

	fields := make([]FieldError, 0, len(errs))
	for _, fieldErr := range errs {
		fields = append(fields, translateFieldError(fieldErr))
	}

	return newValidationError(fields...)
}

func translateFieldError(err validator.FieldError) FieldError {
	path := err.Namespace()
	if idx := strings.Index(path, "."); idx >= 0 {
		path = path[idx+1:]
	}
	path = "body." + path

	switch err.Tag() {
	case "required":
		return FieldError{Field: path, Message: "Field required", Type: "missing"}
	case "min":
		if err.Kind() == reflect.Map && err.Param() == "1" {
			return FieldError{
				Field:   path,
				Message: fmt.Sprintf("%s cannot be empty. Provide at least one expense category like %s", err.Field(), emptyExpensesExample),
				Type:    "value_error",
			}
		}
		return FieldError{Field: path, Message: fmt.Sprintf("Input should have at least %s items", err.Param()), Type: "too_short"}
	case "gte":
		return FieldError{Field: path, Message: fmt.Sprintf("Input should be greater than or equal to %s", err.Param()), Type: "greater_than_equal"}
	case "oneof":
		return FieldError{Field: path, Message: "Input should be " + quotedChoices(err.Param()), Type: "literal_error"}
	case "mode":
		return FieldError{Field: path, Message: "Input should be " + quotedChoices(modeChoices), Type: "literal_error"}
	default:
		return FieldError{Field: path, Message: fmt.Sprintf("Value failed the %q check", err.Tag()), Type: err.Tag()}
	}
}

// quotedChoices renders "a b c" as "'a', 'b' or 'c'".
func quotedChoices(param string) string {
	choices := strings.Fields(param)
	for i, choice := range choices {
		choices[i] = "'" + choice + "'"
	}

	if len(choices) < 2 {
		return strings.Join(choices, "")
	}
	return strings.Join(choices[:len(choices)-1], ", ") + " or " + choices[len(choices)-1]
}
