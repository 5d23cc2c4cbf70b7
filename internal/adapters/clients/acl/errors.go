package acl

import (
	"cmp"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"maps"
	"net/http"
	"slices"

	"github.com/jsamuelsen/quotesync/internal/adapters/clients"
	"github.com/jsamuelsen/quotesync/internal/domain"
)

// maxErrorBody caps how much of an error body is read.
const maxErrorBody = 64 << 10

// ErrorResponse is what the remote said about a failure. JSON-server style
// remotes send {"error":"text"}, others nest {"error":{"code","message"}}
// or put code and message at the top level. All three decode here.
type ErrorResponse struct {
	Code    string
	Message string
	Details map[string]string
}

// GetCode returns the remote's error code, if any.
func (e *ErrorResponse) GetCode() string { return e.Code }

// GetMessage returns the remote's error text, if any.
func (e *ErrorResponse) GetMessage() string { return e.Message }

type errorBody struct {
	Error   json.RawMessage `json:"error"`
	Code    string          `json:"code"`
	Message string          `json:"message"`
}

type nestedError struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Details map[string]string `json:"details"`
}

// ParseErrorResponse decodes an error body. It returns nil when there is
// no body, it is not JSON, or it carries neither code nor message.
func ParseErrorResponse(body io.Reader) *ErrorResponse {
	if body == nil {
		return nil
	}

	var raw errorBody
	if err := json.NewDecoder(io.LimitReader(body, maxErrorBody)).Decode(&raw); err != nil {
		return nil
	}

	out := &ErrorResponse{Code: raw.Code, Message: raw.Message}

	var nested nestedError

	var text string

	switch {
	case len(raw.Error) == 0:
	case json.Unmarshal(raw.Error, &text) == nil:
		out.Message = cmp.Or(text, out.Message)
	case json.Unmarshal(raw.Error, &nested) == nil:
		out.Code = cmp.Or(nested.Code, out.Code)
		out.Message = cmp.Or(nested.Message, out.Message)
		out.Details = nested.Details
	}

	if out.Code == "" && out.Message == "" {
		return nil
	}

	return out
}

// MapHTTPError turns a failed exchange with the remote into a domain error.
// clientErr is what the client returned, if it returned no response at all.
// operation names what was attempted ("pull quotes") and entityID the
// record addressed, if one was. A 2xx response maps to nil.
func MapHTTPError(resp *http.Response, clientErr error, serviceName, operation, entityID string) error {
	switch {
	case clientErr != nil:
		return unavailable(serviceName, operation, clientErr)
	case resp == nil:
		return domain.NewUnavailableError(serviceName, "no response received")
	case resp.StatusCode >= http.StatusOK && resp.StatusCode < http.StatusMultipleChoices:
		return nil
	}

	var said *ErrorResponse
	if resp.Body != nil {
		said = ParseErrorResponse(resp.Body)
	}

	message := fmt.Sprintf("%s failed with status %d", operation, resp.StatusCode)
	if said != nil && said.Message != "" {
		message = said.Message
	}

	switch status := resp.StatusCode; {
	case status == http.StatusNotFound:
		return domain.NewNotFoundError(serviceName, entityID)
	case status == http.StatusConflict:
		return domain.NewConflictError(serviceName, message)
	case status == http.StatusUnauthorized:
		return domain.NewForbiddenError(operation, "authentication required")
	case status == http.StatusForbidden:
		return domain.NewForbiddenError(operation, message)
	case status == http.StatusTooManyRequests:
		reason := "rate limit exceeded"
		if after := resp.Header.Get("Retry-After"); after != "" {
			reason += ", retry after " + after
		}

		return domain.NewUnavailableError(serviceName, reason)
	case status >= http.StatusInternalServerError:
		return domain.NewUnavailableError(serviceName, message)
	case said != nil && len(said.Details) > 0:
		// The first field in key order, so the same body always names the same field.
		field := slices.Sorted(maps.Keys(said.Details))[0]

		return domain.NewValidationError(field, said.Details[field])
	default:
		return domain.NewValidationError("", message)
	}
}

// unavailable describes a call that produced no usable response.
func unavailable(serviceName, operation string, err error) error {
	var statusErr *clients.StatusError

	var reason string

	switch {
	case errors.Is(err, clients.ErrCircuitOpen):
		reason = "circuit breaker open during " + operation
	case errors.As(err, &statusErr):
		reason = fmt.Sprintf("%s failed with status %d", operation, statusErr.StatusCode)
	default:
		reason = operation + ": " + err.Error()
	}

	return domain.NewUnavailableError(serviceName, reason)
}
