// Package http provides shared error types for the integration clients.
//
// Every remote client in octoeb (jira, hosting) reports failures the same
// way: a non-2xx response becomes an *APIError carrying the remote status
// and body verbatim, and a transport-level failure becomes an
// *UnavailableError. Both unwrap to sentinel errors for errors.Is tests.
package http

import (
	"errors"
	"fmt"
)

// Standard sentinel errors for integration clients.
var (
	// ErrNotFound indicates the requested resource does not exist.
	ErrNotFound = errors.New("resource not found")

	// ErrUnauthorized indicates invalid or missing authentication.
	ErrUnauthorized = errors.New("authentication failed")

	// ErrForbidden indicates the user lacks permission for the operation.
	ErrForbidden = errors.New("permission denied")

	// ErrBadRequest indicates the request was malformed.
	ErrBadRequest = errors.New("bad request")

	// ErrServerError indicates a server-side error occurred.
	ErrServerError = errors.New("server error")

	// ErrUnavailable indicates the service could not be reached at all.
	ErrUnavailable = errors.New("service unavailable")
)

// APIError represents a non-2xx response from an external API. The remote
// status and body are preserved so the CLI can surface them verbatim.
type APIError struct {
	// Service is the name of the integration (e.g., "jira", "github").
	Service string

	// StatusCode is the HTTP status code returned.
	StatusCode int

	// Message is the error message parsed from the response, if any.
	Message string

	// Body is the raw response body.
	Body string

	// Endpoint is the API endpoint that was called.
	Endpoint string
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if e.Endpoint != "" {
		return fmt.Sprintf("%s API error (%d) at %s: %s",
			e.Service, e.StatusCode, e.Endpoint, e.Message)
	}
	return fmt.Sprintf("%s API error (%d): %s", e.Service, e.StatusCode, e.Message)
}

// Unwrap returns the underlying sentinel error based on status code.
func (e *APIError) Unwrap() error {
	switch e.StatusCode {
	case 400:
		return ErrBadRequest
	case 401:
		return ErrUnauthorized
	case 403:
		return ErrForbidden
	case 404:
		return ErrNotFound
	default:
		if e.StatusCode >= 500 {
			return ErrServerError
		}
		return nil
	}
}

// UnavailableError wraps a transport-level failure reaching a service.
type UnavailableError struct {
	// Service is the integration that could not be reached.
	Service string

	// Err is the underlying network error.
	Err error
}

// Error implements the error interface.
func (e *UnavailableError) Error() string {
	return fmt.Sprintf("%s unavailable: %v", e.Service, e.Err)
}

// Unwrap returns ErrUnavailable so callers can test with errors.Is.
func (e *UnavailableError) Unwrap() error {
	return ErrUnavailable
}

// IsNotFound reports whether the error indicates a resource was not found.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsUnauthorized reports whether the error indicates authentication failed.
func IsUnauthorized(err error) bool {
	return errors.Is(err, ErrUnauthorized)
}

// IsUnavailable reports whether the error indicates the service was
// unreachable at the transport level.
func IsUnavailable(err error) bool {
	return errors.Is(err, ErrUnavailable)
}
