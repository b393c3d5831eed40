// Package errs defines the error taxonomy for remitter API responses.
package errs

import "fmt"

// ErrorMessage is embedded by every error type in this package.
// Detail holds the server-supplied detail text, if the response carried one.
type ErrorMessage struct {
	Message string
	Detail  string
}

func (e *ErrorMessage) Error() string { return e.Message }

// ServerDetail returns the detail text reported by the server.
func (e *ErrorMessage) ServerDetail() string { return e.Detail }

// withDetail makes a non-empty server detail both the message and the detail.
func (e *ErrorMessage) withDetail(detail string) {
	if detail != "" {
		e.Message = detail
		e.Detail = detail
	}
}

// NotFoundError means the user has no stored record yet.
type NotFoundError struct {
	ErrorMessage
}

// UnauthorizedError means the session token was missing or rejected.
type UnauthorizedError struct {
	ErrorMessage
}

// ForbiddenError means the session is valid but may not perform the request.
type ForbiddenError struct {
	ErrorMessage
}

// ValidationError carries the individual messages of a validation failure
// in the order the server reported them.
type ValidationError struct {
	ErrorMessage
	Details []string
}

// UnknownError covers transport failures and unexpected status codes.
// Status is zero when no response was received.
type UnknownError struct {
	ErrorMessage
	Status int
	Err    error
}

func (e *UnknownError) Unwrap() error { return e.Err }

// DecodeError means a successful response did not carry a JSON object.
type DecodeError struct {
	ErrorMessage
	Err error
}

func (e *DecodeError) Unwrap() error { return e.Err }

// NewNotFoundError returns a NotFoundError with the given message.
func NewNotFoundError(message string) *NotFoundError {
	return &NotFoundError{
		ErrorMessage: ErrorMessage{Message: message},
	}
}

// NewUnauthorizedError returns an UnauthorizedError with the given message.
func NewUnauthorizedError(message string) *UnauthorizedError {
	return &UnauthorizedError{
		ErrorMessage: ErrorMessage{Message: message},
	}
}

// NewForbiddenError returns a ForbiddenError with the given message.
func NewForbiddenError(message string) *ForbiddenError {
	return &ForbiddenError{
		ErrorMessage: ErrorMessage{Message: message},
	}
}

// NewValidationError builds a ValidationError from the server's messages.
// With no messages the error reads "validation failed" and carries no detail.
func NewValidationError(details ...string) *ValidationError {
	e := &ValidationError{Details: details}
	e.Message = "validation failed"
	if len(details) > 0 {
		e.Message = joinDetails(details)
		e.Detail = e.Message
	}
	return e
}

// NewUnknownError wraps a failure that produced no usable response.
func NewUnknownError(err error) *UnknownError {
	return &UnknownError{
		ErrorMessage: ErrorMessage{Message: fmt.Sprintf("request failed: %v", err)},
		Err:          err,
	}
}

// NewStatusError returns an UnknownError for an unexpected response status.
func NewStatusError(status int) *UnknownError {
	return &UnknownError{
		ErrorMessage: ErrorMessage{Message: fmt.Sprintf("unexpected status %d", status)},
		Status:       status,
	}
}

// NewDecodeError wraps a successful response whose body is not an object.
func NewDecodeError(message string, err error) *DecodeError {
	return &DecodeError{
		ErrorMessage: ErrorMessage{Message: message},
		Err:          err,
	}
}
