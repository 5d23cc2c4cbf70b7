package config

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// validate reports fields by their koanf keys, so a failure names the same
// path a YAML profile or APP_ variable would set.
var validate = func() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("koanf"), ",")
		if name == "-" {
			return ""
		}

		return name
	})

	return v
}()

// FieldError is one invalid setting.
type FieldError struct {
	Key     string // dotted koanf key, e.g. sync.pull_limit
	Problem string
}

// ValidationError lists every invalid setting found in one pass.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	var b strings.Builder

	b.WriteString("config validation failed:")

	for _, f := range e.Fields {
		b.WriteString("\n  ")
		b.WriteString(f.Key)
		b.WriteByte(' ')
		b.WriteString(f.Problem)
	}

	return b.String()
}

// Validate checks struct tags and then the rules that span several
// settings. The service refuses to start on any failure.
func (c *Config) Validate() error {
	var fields []FieldError

	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return err
		}

		for _, fe := range verrs {
			fields = append(fields, FieldError{Key: keyOf(fe.Namespace()), Problem: describe(fe)})
		}
	}

	fields = append(fields, c.crossFieldErrors()...)

	if len(fields) == 0 {
		return nil
	}

	return &ValidationError{Fields: fields}
}

func (c *Config) crossFieldErrors() []FieldError {
	var fields []FieldError

	retry := c.Client.Retry
	if retry.MaxInterval > 0 && retry.MaxInterval < retry.InitialInterval {
		fields = append(fields, FieldError{
			Key:     "client.retry.max_interval",
			Problem: fmt.Sprintf("must not be below initial_interval (%s)", retry.InitialInterval),
		})
	}

	// "All" is the list filter that selects every quote, so no pulled quote
	// may be filed under it.
	if c.Sync.CategoryMode == CategoryModeFixed && strings.EqualFold(strings.TrimSpace(c.Sync.FixedCategory), "all") {
		fields = append(fields, FieldError{
			Key:     "sync.fixed_category",
			Problem: "must not be the reserved category All",
		})
	}

	return fields
}

// keyOf drops the root struct name: "Config.sync.pull_limit" becomes
// "sync.pull_limit".
func keyOf(namespace string) string {
	_, key, found := strings.Cut(namespace, ".")
	if !found {
		return namespace
	}

	return key
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "required_if":
		return "is required when " + fe.Param()
	case "required_unless":
		return "is required unless " + fe.Param()
	case "startswith":
		return "must start with " + fe.Param()
	case "min":
		return "must be at least " + fe.Param()
	case "max":
		return "must be at most " + fe.Param()
	case "oneof":
		return "must be one of: " + fe.Param()
	case "url":
		return "must be a valid URL"
	default:
		return "failed the " + fe.Tag() + " check"
	}
}
