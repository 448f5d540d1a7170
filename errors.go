package tutorkit

import (
	"errors"
	"fmt"
	"time"
)

// ErrEmptyInput is returned when a required input is empty.
var ErrEmptyInput = errors.New("empty input")

// ErrorCategory classifies errors by how they should be handled.
type ErrorCategory string

const (
	// ErrorTransient marks a temporary failure worth retrying:
	// rate limits, overloaded backends, dropped connections.
	ErrorTransient ErrorCategory = "transient"

	// ErrorPermanent marks a failure retrying cannot fix, such as a
	// rejected API key or an unknown model.
	ErrorPermanent ErrorCategory = "permanent"

	// ErrorUserInput marks a request the backend refused as malformed.
	ErrorUserInput ErrorCategory = "user_input"
)

// CategorizedError is an error that knows how it should be handled.
type CategorizedError interface {
	error
	Category() ErrorCategory
	Retryable() bool
	StatusCode() int
	RetryAfter() time.Duration
}

// Error is a categorized backend error.
type Error struct {
	Provider   Provider
	Msg        string
	Cat        ErrorCategory
	Code       int           // HTTP status code, 0 if not applicable
	RetryDelay time.Duration // from Retry-After, 0 if not sent
	Cause      error
}

func (e *Error) Error() string {
	msg := e.Msg
	if e.Provider != "" {
		msg = fmt.Sprintf("%s: %s", e.Provider, msg)
	}
	if e.Cause != nil && e.Cause.Error() != e.Msg {
		return fmt.Sprintf("%s: %v", msg, e.Cause)
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Cause }

// Category returns the error category.
func (e *Error) Category() ErrorCategory { return e.Cat }

// Retryable reports whether the error is transient.
func (e *Error) Retryable() bool { return e.Cat == ErrorTransient }

// StatusCode returns the HTTP status code, or 0.
func (e *Error) StatusCode() int { return e.Code }

// RetryAfter returns the server-suggested retry delay, or 0.
func (e *Error) RetryAfter() time.Duration { return e.RetryDelay }

// NewTransientError creates a retryable error.
func NewTransientError(p Provider, msg string, statusCode int, cause error) *Error {
	return &Error{Provider: p, Msg: msg, Cat: ErrorTransient, Code: statusCode, Cause: cause}
}

// NewTransientErrorWithRetry creates a retryable error carrying the delay
// the server asked for.
func NewTransientErrorWithRetry(p Provider, msg string, statusCode int, retryAfter time.Duration, cause error) *Error {
	e := NewTransientError(p, msg, statusCode, cause)
	e.RetryDelay = retryAfter
	return e
}

// NewPermanentError creates an error that should not be retried.
func NewPermanentError(p Provider, msg string, statusCode int, cause error) *Error {
	return &Error{Provider: p, Msg: msg, Cat: ErrorPermanent, Code: statusCode, Cause: cause}
}

// NewUserInputError creates an error for a request the backend rejected.
func NewUserInputError(p Provider, msg string, statusCode int, cause error) *Error {
	return &Error{Provider: p, Msg: msg, Cat: ErrorUserInput, Code: statusCode, Cause: cause}
}

// CategorizeStatusCode maps an HTTP status code to an error category.
// 429 and 5xx are transient, 401 and 403 permanent, 400/404/422 user input.
// Anything else is treated as permanent.
func CategorizeStatusCode(code int) ErrorCategory {
	switch {
	case code == 429:
		return ErrorTransient
	case code >= 500 && code < 600:
		return ErrorTransient
	case code == 401 || code == 403:
		return ErrorPermanent
	case code == 400 || code == 404 || code == 422:
		return ErrorUserInput
	default:
		return ErrorPermanent
	}
}

// NewStatusError builds a categorized error from an HTTP status code.
func NewStatusError(p Provider, msg string, code int, retryAfter time.Duration, cause error) *Error {
	return &Error{
		Provider:   p,
		Msg:        msg,
		Cat:        CategorizeStatusCode(code),
		Code:       code,
		RetryDelay: retryAfter,
		Cause:      cause,
	}
}

// IsTransient reports whether err, or anything it wraps, is transient.
func IsTransient(err error) bool {
	var ce CategorizedError
	if errors.As(err, &ce) {
		return ce.Category() == ErrorTransient
	}
	return false
}

// IsPermanent reports whether err, or anything it wraps, is permanent.
func IsPermanent(err error) bool {
	var ce CategorizedError
	if errors.As(err, &ce) {
		return ce.Category() == ErrorPermanent
	}
	return false
}

// IsUserInput reports whether err, or anything it wraps, is a user input error.
func IsUserInput(err error) bool {
	var ce CategorizedError
	if errors.As(err, &ce) {
		return ce.Category() == ErrorUserInput
	}
	return false
}

// StatusCodeOf returns the HTTP status code carried by err, or 0.
func StatusCodeOf(err error) int {
	var ce CategorizedError
	if errors.As(err, &ce) {
		return ce.StatusCode()
	}
	return 0
}

// RetryAfterOf returns the retry delay carried by err, or 0.
func RetryAfterOf(err error) time.Duration {
	var ce CategorizedError
	if errors.As(err, &ce) {
		return ce.RetryAfter()
	}
	return 0
}
