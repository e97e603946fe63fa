package client

import (
	"errors"
	"fmt"
)

// HTTPError represents a non-2xx response, or a 2xx response whose envelope
// reported success=false. Message is the backend's own text and may be empty.
type HTTPError struct {
	StatusCode int
	Message    string
}

func (e *HTTPError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("HTTP %d", e.StatusCode)
	}
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Message)
}

// IsStatus returns true if err (or any wrapped error) is an HTTPError with the given status code.
func IsStatus(err error, code int) bool {
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.StatusCode == code
	}
	return false
}

// IsUnauthorized reports a 401 or 403 from the backend.
func IsUnauthorized(err error) bool {
	return IsStatus(err, 401) || IsStatus(err, 403)
}

// Message returns the backend-provided message carried by err, or fallback when
// err is not an HTTPError or the backend sent none.
func Message(err error, fallback string) string {
	var httpErr *HTTPError
	if errors.As(err, &httpErr) && httpErr.Message != "" {
		return httpErr.Message
	}
	return fallback
}
