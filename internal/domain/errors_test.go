package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var kinds = []struct {
	name     string
	sentinel error
	is       func(error) bool
}{
	{"not found", ErrNotFound, IsNotFound},
	{"conflict", ErrConflict, IsConflict},
	{"validation", ErrValidation, IsValidation},
	{"forbidden", ErrForbidden, IsForbidden},
	{"unavailable", ErrUnavailable, IsUnavailable},
}

func TestErrors(t *testing.T) {
	tests := []struct {
		err  error
		kind string
		msg  string
	}{
		{NewNotFoundError("quote", "loc-1"), "not found", `quote with id "loc-1" not found`},
		{NewNotFoundError("quote", ""), "not found", "quote not found"},
		{NewNotFoundError("category", "Travel"), "not found", `category with id "Travel" not found`},
		{NewConflictError("sync", "cycle already in progress"), "conflict", "sync conflict: cycle already in progress"},
		{NewValidationError("text", "must not be empty"), "validation", "validation failed for text: must not be empty"},
		{NewValidationError("", "bad input"), "validation", "validation failed: bad input"},
		{NewForbiddenError("create quote", ""), "forbidden", "create quote forbidden"},
		{NewForbiddenError("create quote", "read only"), "forbidden", "create quote forbidden: read only"},
		{NewUnavailableError("quote-remote", ""), "unavailable", "quote-remote unavailable"},
		{NewUnavailableError("quote-remote", "timeout"), "unavailable", "quote-remote unavailable: timeout"},
		{NewUnavailableError("", "down"), "unavailable", "dependency unavailable: down"},
	}

	for _, tt := range tests {
		t.Run(tt.msg, func(t *testing.T) {
			assert.EqualError(t, tt.err, tt.msg)

			wrapped := fmt.Errorf("sync cycle: %w", fmt.Errorf("pull: %w", tt.err))

			for _, k := range kinds {
				want := k.name == tt.kind
				assert.Equal(t, want, errors.Is(tt.err, k.sentinel), "errors.Is %s", k.name)
				assert.Equal(t, want, k.is(wrapped), "helper %s through wrapping", k.name)
			}
		})
	}
}

func TestErrors_KeepTheirFields(t *testing.T) {
	wrap := func(err error) error { return fmt.Errorf("handler: %w", err) }

	var nf *NotFoundError
	require.ErrorAs(t, wrap(NewNotFoundError("quote", "srv-3")), &nf)
	assert.Equal(t, NotFoundError{Entity: "quote", ID: "srv-3"}, *nf)

	var ve *ValidationError
	require.ErrorAs(t, wrap(NewValidationError("category", "is reserved")), &ve)
	assert.Equal(t, ValidationError{Field: "category", Message: "is reserved"}, *ve)

	var ue *UnavailableError
	require.ErrorAs(t, wrap(NewUnavailableError("quote-remote", "connection refused")), &ue)
	assert.Equal(t, UnavailableError{Service: "quote-remote", Reason: "connection refused"}, *ue)

	var ce *ConflictError
	require.ErrorAs(t, wrap(NewConflictError("sync", "busy")), &ce)
	assert.Equal(t, "busy", ce.Reason)

	var fe *ForbiddenError
	require.ErrorAs(t, wrap(NewForbiddenError("push", "no key")), &fe)
	assert.Equal(t, "push", fe.Operation)
}

func TestErrors_SentinelsAreDistinct(t *testing.T) {
	for _, a := range kinds {
		for _, b := range kinds {
			if a.name != b.name {
				assert.NotErrorIs(t, a.sentinel, b.sentinel)
			}
		}
	}
}

func TestErrors_NilAndPlain(t *testing.T) {
	for _, k := range kinds {
		assert.False(t, k.is(nil), k.name)
		assert.False(t, k.is(errors.New(k.sentinel.Error()+" lookalike")), k.name)
	}
}
