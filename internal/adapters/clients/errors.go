// Package clients provides the instrumented HTTP client used to reach the
// remote quote service.
package clients

import (
	"errors"
	"fmt"
)

// Client errors represent failures in the HTTP client layer.
// They are infrastructure failures; the acl package translates them to
// domain errors.
var (
	// ErrCircuitOpen is returned when the circuit breaker is open.
	ErrCircuitOpen = errors.New("circuit breaker open")

	// ErrMaxRetriesExceeded is returned after all attempts have failed.
	// The last attempt's error is wrapped alongside it.
	ErrMaxRetriesExceeded = errors.New("max retries exceeded")
)

// StatusError reports a 5xx response that exhausted the retry budget.
type StatusError struct {
	StatusCode int
}

// Error implements the error interface.
func (e *StatusError) Error() string {
	return fmt.Sprintf("server error: %d", e.StatusCode)
}
