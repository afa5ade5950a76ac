package gateway

import (
	"errors"
	"fmt"
)

// ValidationError is returned when a query is rejected before reaching the backend.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return "gateway: invalid query: " + e.Reason
}

// ConfigurationError is returned when the backend endpoint or credential is missing or invalid.
type ConfigurationError struct {
	Field  string
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("gateway: invalid configuration: %s %s", e.Field, e.Reason)
}

// Causes reported by BackendError.
const (
	CauseConnectionFailed  = "connection failed"
	CauseRequestFailed     = "request failed"
	CauseTimeout           = "timeout"
	CauseCancelled         = "cancelled"
	CauseMalformedResponse = "malformed response"
	CauseCloseFailed       = "session close failed"
)

// BackendError wraps a failure of the external search service. Cause is safe
// to show in logs and status lines, Err carries the full detail.
type BackendError struct {
	Cause string
	Err   error
}

func (e *BackendError) Error() string {
	if e.Err == nil {
		return "gateway: backend error: " + e.Cause
	}
	return fmt.Sprintf("gateway: backend error: %s: %v", e.Cause, e.Err)
}

func (e *BackendError) Unwrap() error {
	return e.Err
}

// ErrMalformedResponse is returned by a Session when the backend payload
// doesn't have the expected shape.
var ErrMalformedResponse = errors.New("malformed response")
