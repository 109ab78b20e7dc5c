package model

import (
	"errors"
	"fmt"
)

var (
	ErrValidation       = errors.New("validation failed")
	ErrCollision        = errors.New("short code already in use")
	ErrExhaustedRetries = errors.New("could not allocate a unique short code")
	ErrNotFound         = errors.New("link not found")
	ErrInactiveLink     = errors.New("link is inactive")
	ErrPasswordRequired = errors.New("password required")
	ErrPasswordRejected = errors.New("password rejected")
	ErrRateLimited      = errors.New("too many password attempts")
	ErrStoreUnavailable = errors.New("store unavailable")
	// ErrDegradedData marks statistics that could not be computed reliably.
	ErrDegradedData = errors.New("statistics unavailable")
)

// ValidationError describes a malformed or missing input field.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s %s", e.Field, e.Reason)
}

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

// PasswordRequiredError is returned when a protected link is resolved
// without a password. It carries the owner's challenge message.
type PasswordRequiredError struct {
	CustomMessage string
}

func (e *PasswordRequiredError) Error() string { return ErrPasswordRequired.Error() }

func (e *PasswordRequiredError) Is(target error) bool { return target == ErrPasswordRequired }

// StoreUnavailableError wraps a transport or engine failure of the store.
type StoreUnavailableError struct {
	Op  string
	Err error
}

func (e *StoreUnavailableError) Error() string {
	return fmt.Sprintf("store %s: %v", e.Op, e.Err)
}

func (e *StoreUnavailableError) Unwrap() error { return e.Err }

func (e *StoreUnavailableError) Is(target error) bool { return target == ErrStoreUnavailable }

// Unavailable wraps err as a StoreUnavailableError for op. Nil stays nil.
func Unavailable(op string, err error) error {
	if err == nil {
		return nil
	}
	return &StoreUnavailableError{Op: op, Err: err}
}
