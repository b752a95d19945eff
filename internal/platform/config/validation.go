package config

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

// newValidator reports fields by their koanf keys so messages name the
// setting an operator would edit.
func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("koanf"), ",")
		if name == "" || name == "-" {
			return f.Name
		}

		return name
	})

	v.RegisterStructValidation(distinctStorageKeys, StorageKeysConfig{})

	return v
}

// distinctStorageKeys rejects slot names that collide; all slots share one table.
func distinctStorageKeys(sl validator.StructLevel) {
	keys, _ := sl.Current().Interface().(StorageKeysConfig)

	if keys.Filter != "" && keys.Filter == keys.Quotes {
		sl.ReportError(keys.Filter, "filter", "Filter", "distinct", "quotes")
	}

	if keys.LastViewed != "" && (keys.LastViewed == keys.Quotes || keys.LastViewed == keys.Filter) {
		sl.ReportError(keys.LastViewed, "last_viewed", "LastViewed", "distinct", "quotes and filter")
	}
}

// ValidationError lists every setting that failed validation.
type ValidationError struct {
	Problems []string
}

func (e *ValidationError) Error() string {
	return "config validation failed:\n  " + strings.Join(e.Problems, "\n  ")
}

// Validate checks c against its struct tags. The service refuses to start
// when it fails.
func (c *Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}

	problems := make([]string, len(fieldErrs))
	for i, fe := range fieldErrs {
		problems[i] = describe(fe)
	}

	return &ValidationError{Problems: problems}
}

func describe(fe validator.FieldError) string {
	key := settingKey(fe.Namespace())

	switch fe.Tag() {
	case "required":
		return key + " is required"
	case "required_if":
		field, value, _ := strings.Cut(fe.Param(), " ")
		return fmt.Sprintf("%s is required when %s is %s", key, strings.ToLower(field), value)
	case "min":
		return fmt.Sprintf("%s must be at least %s", key, fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s", key, fe.Param())
	case "gtefield":
		return fmt.Sprintf("%s must not be less than %s", key, fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", key, fe.Param())
	case "ne":
		return fmt.Sprintf("%s must not be %q", key, fe.Param())
	case "url":
		return key + " must be a valid URL"
	case "distinct":
		return fmt.Sprintf("%s must differ from %s", key, fe.Param())
	default:
		return fmt.Sprintf("%s failed %q", key, fe.Tag())
	}
}

// settingKey drops the root type from a namespace: Config.server.port
// becomes server.port.
func settingKey(namespace string) string {
	if _, rest, ok := strings.Cut(namespace, "."); ok {
		return rest
	}

	return namespace
}
