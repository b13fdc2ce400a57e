package dto

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"
	"unicode"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

var (
	ErrValidation = errors.New("validation failed")
	ErrBinding    = errors.New("binding failed")
)

// Validator returns the shared validator. Field errors are reported under
// their JSON (or form) names.
var Validator = sync.OnceValue(func() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		for _, key := range []string{"json", "form"} {
			if name, _, _ := strings.Cut(f.Tag.Get(key), ","); name != "" && name != "-" {
				return name
			}
		}

		return f.Name
	})

	_ = v.RegisterValidation("notempty", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})

	// Categories are shown in a picker; control characters would break it.
	_ = v.RegisterValidation("printable", func(fl validator.FieldLevel) bool {
		return !strings.ContainsFunc(fl.Field().String(), unicode.IsControl)
	})

	return v
})

// Validate checks v's struct tags.
func Validate(v any) error {
	if err := Validator().Struct(v); err != nil {
		return fmt.Errorf("%w: %w", ErrValidation, err)
	}

	return nil
}

// BindAndValidate decodes the JSON body into v and validates it.
func BindAndValidate(c *gin.Context, v any) error {
	if err := c.ShouldBindJSON(v); err != nil {
		return fmt.Errorf("%w: %w", ErrBinding, err)
	}

	return Validate(v)
}

// BindQueryAndValidate decodes the query string into v and validates it.
func BindQueryAndValidate(c *gin.Context, v any) error {
	if err := c.ShouldBindQuery(v); err != nil {
		return fmt.Errorf("%w: %w", ErrBinding, err)
	}

	return Validate(v)
}

// IsValidationError reports whether err carries field errors from the validator.
func IsValidationError(err error) bool {
	var fe validator.ValidationErrors
	return errors.As(err, &fe)
}

// ValidationErrors maps each failing field to a readable message.
func ValidationErrors(err error) map[string]string {
	out := map[string]string{}

	var fe validator.ValidationErrors
	if !errors.As(err, &fe) {
		return out
	}

	for _, f := range fe {
		out[f.Field()] = describe(f)
	}

	return out
}

func describe(f validator.FieldError) string {
	unit := ""
	if f.Kind() == reflect.String {
		unit = " characters"
	}

	switch f.Tag() {
	case "required":
		return "this field is required"
	case "notempty":
		return "must not be empty"
	case "printable":
		return "must not contain control characters"
	case "max", "lte":
		return "must be at most " + f.Param() + unit
	case "min", "gte":
		return "must be at least " + f.Param() + unit
	case "oneof":
		return "must be one of: " + f.Param()
	default:
		return "failed validation: " + f.Tag()
	}
}
