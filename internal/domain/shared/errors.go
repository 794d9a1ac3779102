// Package shared contains common domain types, errors, events, and value objects
// that are used across all domain packages. This package has zero external dependencies.
package shared

import (
	"errors"
	"fmt"
)

// Base domain errors that can be used for error checking with errors.Is().
var (
	// Entity errors
	ErrNotFound      = errors.New("entity not found")
	ErrAlreadyExists = errors.New("entity already exists")

	// Validation errors
	ErrValidation      = errors.New("validation error")
	ErrInvalidID       = errors.New("invalid ID")
	ErrEmptyValue      = errors.New("value cannot be empty")
	ErrValueOutOfRange = errors.New("value out of range")

	// Authorization errors
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("caller does not own the target profile")

	// Cap errors
	ErrCapExceeded = errors.New("daily cap exceeded")

	// Persistence errors
	ErrTransientStore = errors.New("transient store error")

	// Concurrency errors
	ErrConcurrentModification = errors.New("concurrent modification detected")
)

// DomainError represents a domain-specific error with context.
type DomainError struct {
	Domain  string // e.g., "student", "activity", "achievement"
	Op      string // operation that failed, e.g., "record", "rotate"
	Kind    error  // one of the base errors above
	Message string
	Err     error
}

// Error implements the error interface.
func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s.%s: %s: %v", e.Domain, e.Op, e.Message, e.Err)
	}
	return fmt.Sprintf("%s.%s: %s", e.Domain, e.Op, e.Message)
}

// Unwrap returns the wrapped error for errors.Is/As chains.
func (e *DomainError) Unwrap() error {
	if e.Err != nil {
		return e.Err
	}
	return e.Kind
}

// Is reports whether the error matches the target base error.
func (e *DomainError) Is(target error) bool {
	return errors.Is(e.Kind, target) || errors.Is(e.Err, target)
}

// NewDomainError creates a new DomainError.
func NewDomainError(domain, op string, kind error, message string) *DomainError {
	return &DomainError{Domain: domain, Op: op, Kind: kind, Message: message}
}

// WrapDomainError wraps an underlying error into a DomainError.
func WrapDomainError(domain, op string, kind error, message string, err error) *DomainError {
	return &DomainError{Domain: domain, Op: op, Kind: kind, Message: message, Err: err}
}

// CapExceededError carries current usage so the caller can render it.
// Returned when the daily activity-count or total-minutes guard rejects
// a submission before any state is touched.
type CapExceededError struct {
	// Limit - the cap that was hit.
	Limit int

	// Current - usage already accumulated today.
	Current int

	// Requested - the amount the submission asked for (0 for count caps).
	Requested int

	// Resource - what is capped: "daily_activities" or "daily_minutes".
	Resource string
}

// Error implements the error interface.
func (e *CapExceededError) Error() string {
	return fmt.Sprintf("cap exceeded: %s limit %d, current %d, requested %d",
		e.Resource, e.Limit, e.Current, e.Requested)
}

// Is makes errors.Is(err, ErrCapExceeded) work.
func (e *CapExceededError) Is(target error) bool {
	return target == ErrCapExceeded
}

// IsRetryable reports whether the error represents a transient condition
// the caller may retry (storage failures, serialization conflicts).
func IsRetryable(err error) bool {
	return errors.Is(err, ErrTransientStore) || errors.Is(err, ErrConcurrentModification)
}
