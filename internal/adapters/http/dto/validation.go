package dto

import (
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/jsamuelsen/quotesync/internal/domain"
)

// Request decoding failures. BindAndValidate and BindQueryAndValidate wrap
// exactly one of them.
var (
	ErrValidation = errors.New("validation failed")
	ErrBinding    = errors.New("binding failed")
)

// Validator returns the validator shared by every request type. It reports
// fields by their JSON name and knows two extra tags: notempty rejects
// blank strings and category rejects blank names and the reserved "all".
var Validator = sync.OnceValue(func() *validator.Validate {
	v := validator.New()

	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}

		return name
	})

	must(v.RegisterValidation("notempty", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	}))
	must(v.RegisterValidation("category", func(fl validator.FieldLevel) bool {
		name := strings.TrimSpace(fl.Field().String())
		return name != "" && !strings.EqualFold(name, domain.CategoryAll)
	}))

	return v
})

func must(err error) {
	if err != nil {
		panic(err)
	}
}

// Validate checks v against its validate tags.
func Validate(v any) error {
	if err := Validator().Struct(v); err != nil {
		return fmt.Errorf("%w: %w", ErrValidation, err)
	}

	return nil
}

// BindAndValidate decodes the JSON body into v and validates it.
func BindAndValidate(c *gin.Context, v any) error {
	return bind(c.ShouldBindJSON, v)
}

// BindQueryAndValidate decodes the query string into v and validates it.
func BindQueryAndValidate(c *gin.Context, v any) error {
	return bind(c.ShouldBindQuery, v)
}

func bind(decode func(any) error, v any) error {
	if err := decode(v); err != nil {
		return fmt.Errorf("%w: %w", ErrBinding, err)
	}

	return Validate(v)
}

// IsValidationError reports whether err carries tag violations.
func IsValidationError(err error) bool {
	var verrs validator.ValidationErrors
	return errors.As(err, &verrs)
}

// ValidationErrors maps each offending JSON field to a readable problem. It
// returns an empty map for errors without tag violations.
func ValidationErrors(err error) map[string]string {
	fields := make(map[string]string)

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fields
	}

	for _, fe := range verrs {
		fields[fe.Field()] = problem(fe)
	}

	return fields
}

func problem(fe validator.FieldError) string {
	unit := ""
	if fe.Kind() == reflect.String {
		unit = " characters"
	}

	switch fe.Tag() {
	case "required":
		return "this field is required"
	case "notempty":
		return "must not be empty"
	case "category":
		return `must name a category other than "` + domain.CategoryAll + `"`
	case "min":
		return "must be at least " + fe.Param() + unit
	case "max":
		return "must be at most " + fe.Param() + unit
	case "oneof":
		return "must be one of: " + fe.Param()
	case "url":
		return "must be a valid URL"
	default:
		return "failed validation: " + fe.Tag()
	}
}

// HandleBindError answers 400 for a failed bind. Tag violations are listed
// field by field; anything else is reported as a malformed request.
func HandleBindError(c *gin.Context, err error) {
	resp := NewErrorResponse(ErrorCodeBadRequest, "malformed request")

	if IsValidationError(err) {
		resp = NewErrorResponseWithDetails(ErrorCodeValidation, "request validation failed", ValidationErrors(err))
	}

	c.JSON(http.StatusBadRequest, resp.WithTraceID(GetTraceID(c)))
}
