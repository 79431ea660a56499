package api

import (
	"errors"
	"fmt"
)

// NetworkError means the request never produced a response: DNS failure,
// refused connection, timeout. The transport cause is wrapped.
type NetworkError struct {
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("network error: %v", e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// ServerError means the backend answered with a non-2xx status.
type ServerError struct {
	Status int
	Body   string
}

func (e *ServerError) Error() string {
	return fmt.Sprintf("server returned %d: %s", e.Status, e.Body)
}

// ValidationError means client-side input was rejected before any request
// was sent, e.g. a rating outside 1-10.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func IsNetworkError(err error) bool {
	var ne *NetworkError
	return errors.As(err, &ne)
}

func IsServerError(err error) bool {
	var se *ServerError
	return errors.As(err, &se)
}

func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
