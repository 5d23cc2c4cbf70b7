// Package domain holds the quote model, the merge rules and the errors they
// produce. The errors describe what went wrong with a quote, a category or
// the remote; adapters decide how to surface them as HTTP statuses or CLI
// exit messages.
package domain

import (
	"errors"
	"fmt"
)

// Error kinds. Every typed error below matches exactly one of them under
// errors.Is, also through wrapping.
var (
	ErrNotFound    = errors.New("not found")
	ErrConflict    = errors.New("conflict")
	ErrValidation  = errors.New("validation failed")
	ErrForbidden   = errors.New("forbidden")
	ErrUnavailable = errors.New("unavailable")
)

// NotFoundError reports a quote or category that is not in the list.
type NotFoundError struct {
	Entity string
	ID     string
}

func NewNotFoundError(entity, id string) error {
	return &NotFoundError{Entity: entity, ID: id}
}

func (e *NotFoundError) Error() string {
	if e.ID == "" {
		return e.Entity + " not found"
	}

	return fmt.Sprintf("%s with id %q not found", e.Entity, e.ID)
}

func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

// ConflictError reports state that forbids the operation right now, such as
// a sync cycle already holding the guard.
type ConflictError struct {
	Entity string
	Reason string
}

func NewConflictError(entity, reason string) error {
	return &ConflictError{Entity: entity, Reason: reason}
}

func (e *ConflictError) Error() string {
	return e.Entity + " conflict: " + e.Reason
}

func (e *ConflictError) Is(target error) bool { return target == ErrConflict }

// ValidationError reports input that breaks a quote rule. Field names the
// offending input when there is one.
type ValidationError struct {
	Field   string
	Message string
}

func NewValidationError(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return "validation failed: " + e.Message
	}

	return "validation failed for " + e.Field + ": " + e.Message
}

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

// ForbiddenError reports that the remote refused an operation, e.g. a create
// rejected with 401 or 403.
type ForbiddenError struct {
	Operation string
	Reason    string
}

func NewForbiddenError(operation, reason string) error {
	return &ForbiddenError{Operation: operation, Reason: reason}
}

func (e *ForbiddenError) Error() string {
	msg := fmt.Sprintf("%s forbidden", e.Operation)
	if e.Reason != "" {
		msg += ": " + e.Reason
	}

	return msg
}

func (e *ForbiddenError) Is(target error) bool { return target == ErrForbidden }

// UnavailableError reports that the remote, or the store, could not be
// reached. Reason is diagnostic detail and is not shown to API clients.
type UnavailableError struct {
	Service string
	Reason  string
}

func NewUnavailableError(service, reason string) error {
	return &UnavailableError{Service: service, Reason: reason}
}

func (e *UnavailableError) Error() string {
	msg := e.Service + " unavailable"
	if e.Service == "" {
		msg = "dependency unavailable"
	}

	if e.Reason != "" {
		msg += ": " + e.Reason
	}

	return msg
}

func (e *UnavailableError) Is(target error) bool { return target == ErrUnavailable }

func IsNotFound(err error) bool    { return errors.Is(err, ErrNotFound) }
func IsConflict(err error) bool    { return errors.Is(err, ErrConflict) }
func IsValidation(err error) bool  { return errors.Is(err, ErrValidation) }
func IsForbidden(err error) bool   { return errors.Is(err, ErrForbidden) }
func IsUnavailable(err error) bool { return errors.Is(err, ErrUnavailable) }
