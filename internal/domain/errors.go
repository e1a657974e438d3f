package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound means the response was well formed but lacked the expected payload
	ErrNotFound = errors.New("not found")

	// ErrCircuitOpen is returned while outgoing requests are suspended
	ErrCircuitOpen = errors.New("circuit breaker is open")
)

// APIError is an error reported by the Ravebox API through the errorCode
// field of the response envelope or through an HTTP error status.
type APIError struct {
	StatusCode int
	Code       string
}

func (e *APIError) Error() string {
	if e.Code == "" {
		return fmt.Sprintf("api error: HTTP %d", e.StatusCode)
	}
	return fmt.Sprintf("api error: %s (HTTP %d)", e.Code, e.StatusCode)
}
