package catalog

import (
	"errors"
	"fmt"
)

// ErrNotConfigured is wrapped in an UpstreamError when no credential is set.
var ErrNotConfigured = errors.New("catalog api key not configured")

// ValidationError is a bad path or query value. No upstream call is made.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

func invalid(format string, args ...any) error {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// NotFoundError means the resource exists upstream but has nothing to offer,
// e.g. an item without a trailer. Callers present it as "unavailable".
type NotFoundError struct {
	Message string
}

func (e *NotFoundError) Error() string { return e.Message }

// UpstreamError is a network failure, timeout, non-2xx status or unreadable
// body from the catalog API. Message is safe to show in production; Err is
// the redacted underlying failure.
type UpstreamError struct {
	Message string
	Status  int
	Err     error
}

func (e *UpstreamError) Error() string {
	if e.Err == nil {
		return e.Message
	}
	return e.Message + ": " + e.Err.Error()
}

func (e *UpstreamError) Unwrap() error { return e.Err }

func IsValidation(err error) bool {
	var target *ValidationError
	return errors.As(err, &target)
}

func IsNotFound(err error) bool {
	var target *NotFoundError
	return errors.As(err, &target)
}
