// Package dto provides Data Transfer Objects for HTTP request/response handling.
package dto

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/trace"

	"github.com/jsamuelsen/quotesync/internal/domain"
	"github.com/jsamuelsen/quotesync/internal/platform/logging"
)

// TraceIDKey is the gin context key checked first by GetTraceID.
const TraceIDKey = "trace_id"

// RequestIDHeader is the header GetTraceID falls back to.
const RequestIDHeader = "X-Request-ID"

// ErrorResponse is the body of every non-2xx answer.
type ErrorResponse struct {
	Error   ErrorDetail `json:"error"`
	TraceID string      `json:"traceId,omitempty"`
}

// ErrorDetail carries a stable code for clients and a message for people.
// Details holds per-field problems for validation failures.
type ErrorDetail struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Details map[string]string `json:"details,omitempty"`
}

const (
	ErrorCodeNotFound     = "NOT_FOUND"
	ErrorCodeConflict     = "CONFLICT"
	ErrorCodeValidation   = "VALIDATION_ERROR"
	ErrorCodeForbidden    = "FORBIDDEN"
	ErrorCodeUnauthorized = "UNAUTHORIZED"
	ErrorCodeUnavailable  = "SERVICE_UNAVAILABLE"
	ErrorCodeInternal     = "INTERNAL_ERROR"
	ErrorCodeTimeout      = "TIMEOUT"
	ErrorCodeBadRequest   = "BAD_REQUEST"
)

var codeStatus = map[string]int{
	ErrorCodeNotFound:     http.StatusNotFound,
	ErrorCodeConflict:     http.StatusConflict,
	ErrorCodeValidation:   http.StatusBadRequest,
	ErrorCodeBadRequest:   http.StatusBadRequest,
	ErrorCodeForbidden:    http.StatusForbidden,
	ErrorCodeUnauthorized: http.StatusUnauthorized,
	ErrorCodeUnavailable:  http.StatusServiceUnavailable,
	ErrorCodeTimeout:      http.StatusGatewayTimeout,
}

func NewErrorResponse(code, message string) *ErrorResponse {
	return NewErrorResponseWithDetails(code, message, nil)
}

func NewErrorResponseWithDetails(code, message string, details map[string]string) *ErrorResponse {
	return &ErrorResponse{Error: ErrorDetail{Code: code, Message: message, Details: details}}
}

// WithTraceID sets the trace ID and returns e for chaining.
func (e *ErrorResponse) WithTraceID(traceID string) *ErrorResponse {
	e.TraceID = traceID
	return e
}

// HTTPStatusFromCode returns the status a code is served with. Unknown codes
// are internal errors.
func HTTPStatusFromCode(code string) int {
	if status, ok := codeStatus[code]; ok {
		return status
	}

	return http.StatusInternalServerError
}

// Abort stops the handler chain and writes resp, stamped with the request's
// trace ID, as the response.
func Abort(c *gin.Context, status int, resp *ErrorResponse) {
	c.AbortWithStatusJSON(status, resp.WithTraceID(GetTraceID(c)))
}

// FromError maps an error to an HTTP status and error envelope. Domain
// errors keep their message; anything else gets a generic one so internals
// are not leaked. A nil error maps to 200 and a nil envelope.
func FromError(err error) (int, *ErrorResponse) {
	if err == nil {
		return http.StatusOK, nil
	}

	switch {
	case domain.IsNotFound(err):
		return http.StatusNotFound, NewErrorResponse(ErrorCodeNotFound, err.Error())

	case domain.IsConflict(err):
		return http.StatusConflict, NewErrorResponse(ErrorCodeConflict, err.Error())

	case domain.IsValidation(err):
		resp := NewErrorResponse(ErrorCodeValidation, err.Error())

		var validationErr *domain.ValidationError
		if errors.As(err, &validationErr) && validationErr.Field != "" {
			resp.Error.Details = map[string]string{
				validationErr.Field: validationErr.Message,
			}
		}

		return http.StatusBadRequest, resp

	case domain.IsForbidden(err):
		return http.StatusForbidden, NewErrorResponse(ErrorCodeForbidden, err.Error())

	case domain.IsUnavailable(err):
		service := "a dependency"

		var unavailableErr *domain.UnavailableError
		if errors.As(err, &unavailableErr) && unavailableErr.Service != "" {
			service = unavailableErr.Service
		}

		return http.StatusServiceUnavailable, NewErrorResponse(
			ErrorCodeUnavailable,
			fmt.Sprintf("%s is temporarily unavailable", service),
		)

	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, NewErrorResponse(ErrorCodeTimeout, "request timeout exceeded")

	default:
		return http.StatusInternalServerError, NewErrorResponse(
			ErrorCodeInternal,
			"an internal error occurred",
		)
	}
}

// GetTraceID returns the identifier used to correlate an error response with
// logs: an explicit trace_id set on the context, then the active span's
// trace ID, then the request ID header.
func GetTraceID(c *gin.Context) string {
	if v, ok := c.Get(TraceIDKey); ok {
		id, _ := v.(string)
		return id
	}

	if c.Request == nil {
		return ""
	}

	if sc := trace.SpanFromContext(c.Request.Context()).SpanContext(); sc.HasTraceID() {
		return sc.TraceID().String()
	}

	return c.Request.Header.Get(RequestIDHeader)
}

// HandleError writes the envelope for err. Internal errors are logged with
// the full cause since the response hides it; unavailable dependencies are
// logged at warn.
func HandleError(c *gin.Context, err error) {
	status, resp := FromError(err)
	resp.WithTraceID(GetTraceID(c))

	switch status {
	case http.StatusInternalServerError:
		logging.FromContext(c.Request.Context()).Error("internal error",
			slog.Any("error", err),
			slog.String("trace_id", resp.TraceID),
		)
	case http.StatusServiceUnavailable:
		logging.FromContext(c.Request.Context()).Warn("dependency unavailable",
			slog.Any("error", err),
			slog.String("trace_id", resp.TraceID),
		)
	}

	c.JSON(status, resp)
}
