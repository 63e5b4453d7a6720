package server

import (
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"example.com/paisa-sahayogi/backend/internal/advisor"
)

type CustomValidator struct {
	validator *validator.Validate
}

// NewValidator builds the request validator. Field names in errors follow the json tags.
func NewValidator() *CustomValidator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name, _, _ := strings.Cut(field.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		if name == "" {
			return field.Name
		}
		return name
	})

	// "mode" accepts what advisor.ParseMode accepts, in any letter case.
	if err := v.RegisterValidation("mode", func(fl validator.FieldLevel) bool {
		_, ok := advisor.ParseMode(fl.Field().String())
		return ok
	}); err != nil {
		panic(err)
	}

	return &CustomValidator{validator: v}
}

func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.validator.Struct(i)
}
