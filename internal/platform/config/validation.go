package config

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// validate reports fields by their koanf keys so a message names the same
// key an operator would put in YAML or an APP_ variable.
var validate = func() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		if key := f.Tag.Get("koanf"); key != "" {
			return key
		}

		return strings.ToLower(f.Name)
	})

	return v
}()

// Validate checks the whole configuration and lists every violation.
// The service refuses to start on any of them.
func (c *Config) Validate() error {
	err := validate.Struct(c)

	var violations validator.ValidationErrors
	if !errors.As(err, &violations) {
		return err
	}

	lines := make([]string, len(violations))
	for i, v := range violations {
		lines[i] = describe(v)
	}

	return fmt.Errorf("config validation failed:\n  %s", strings.Join(lines, "\n  "))
}

func describe(v validator.FieldError) string {
	key := configKey(v.Namespace())

	switch v.Tag() {
	case "required":
		return key + " is required"
	case "required_if":
		field, value, _ := strings.Cut(v.Param(), " ")
		return fmt.Sprintf("%s is required when %s is %s", key, strings.ToLower(field), value)
	case "required_unless":
		field, value, _ := strings.Cut(v.Param(), " ")
		return fmt.Sprintf("%s is required unless %s is %s", key, strings.ToLower(field), value)
	case "min":
		return key + " must be at least " + v.Param()
	case "max":
		return key + " must be at most " + v.Param()
	case "gtefield":
		return key + " must not be below " + sibling(key, v.Param())
	case "oneof":
		return key + " must be one of: " + v.Param()
	case "startswith":
		return key + " must start with " + v.Param()
	case "url":
		return key + " must be a valid URL"
	default:
		return key + " failed validation: " + v.Tag()
	}
}

// configKey drops the root type from a validator namespace:
// "Config.sync.poll_interval" becomes "sync.poll_interval".
func configKey(namespace string) string {
	_, key, found := strings.Cut(namespace, ".")
	if !found {
		return namespace
	}

	return key
}

// sibling names a field next to key. validator reports cross-field
// parameters by Go field name, so it is rendered as a config key by hand.
func sibling(key, goField string) string {
	var b strings.Builder

	for i, r := range goField {
		if i > 0 && r >= 'A' && r <= 'Z' {
			b.WriteByte('_')
		}

		b.WriteString(strings.ToLower(string(r)))
	}

	if i := strings.LastIndexByte(key, '.'); i >= 0 {
		return key[:i+1] + b.String()
	}

	return b.String()
}
