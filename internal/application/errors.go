package application

import (
	"errors"
	"fmt"
)

var (
	// ErrUnauthorized is returned when the acting principal lacks permission for an operation.
	ErrUnauthorized = errors.New("application: unauthorized")
	// ErrNotFound is returned when the requested resource does not exist.
	ErrNotFound = errors.New("application: not found")
	// ErrAlreadyExists is returned when a create collides with an existing resource.
	ErrAlreadyExists = errors.New("application: already exists")
	// ErrInvalidCredentials is returned when a sign-in token cannot be verified.
	ErrInvalidCredentials = errors.New("application: invalid credentials")
	// ErrAccountBlocked is returned when a blocked account attempts to act.
	ErrAccountBlocked = errors.New("application: account blocked")
	// ErrSessionExpired is returned when a session token is past its validity window.
	ErrSessionExpired = errors.New("application: session expired")
	// ErrSessionRevoked is returned when a session token has been revoked.
	ErrSessionRevoked = errors.New("application: session revoked")
)

// ValidationError captures field level validation issues that callers can surface to users.
type ValidationError struct {
	FieldErrors map[string]string
}

// Error implements the error interface.
func (v *ValidationError) Error() string {
	if v == nil {
		return ""
	}
	return "validation failed"
}

// HasErrors reports whether any field level issues were recorded.
func (v *ValidationError) HasErrors() bool {
	return v != nil && len(v.FieldErrors) > 0
}

// add records a field level validation error.
func (v *ValidationError) add(field, message string) {
	if v.FieldErrors == nil {
		v.FieldErrors = make(map[string]string)
	}
	v.FieldErrors[field] = message
}

// merge copies entries from another validation error into the receiver.
func (v *ValidationError) merge(other *ValidationError) {
	if other == nil || len(other.FieldErrors) == 0 {
		return
	}
	for field, msg := range other.FieldErrors {
		v.add(field, msg)
	}
}

// ConflictError reports that the requested slot is already held by another
// booking. WithBookingID identifies the holder when it is known.
type ConflictError struct {
	WithBookingID string
	RoomID        string
	Date          string
	StartTime     string
}

// Error implements the error interface.
func (c *ConflictError) Error() string {
	if c == nil {
		return ""
	}
	return fmt.Sprintf("slot %s %s already booked for room %s", c.Date, c.StartTime, c.RoomID)
}

// ExternalServiceError wraps a failure reported by a backing service such as
// the database or the identity provider.
type ExternalServiceError struct {
	Op  string
	Err error
}

// Error implements the error interface.
func (e *ExternalServiceError) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("external service failure during %s: %v", e.Op, e.Err)
}

// Unwrap exposes the underlying cause.
func (e *ExternalServiceError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}
