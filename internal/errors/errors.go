package apperrors

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/cockroachdb/errors"
)

// Application exit codes define the standard exit statuses for the application.
// These codes are used to signal the outcome of the program execution to the OS.
const (
	ExitSuccess       = 0   // Indicates successful execution.
	ExitErrorGeneric  = 1   // Indicates a generic error.
	ExitErrorTimeout  = 2   // Indicates the operation timed out.
	ExitErrorUpstream = 3   // Indicates an upstream data provider failed.
	ExitErrorConfig   = 4   // Indicates a configuration error.
	ExitErrorCanceled = 130 // Indicates the operation was canceled (e.g., SIGINT).
)

// ConfigError represents a user configuration error, such as invalid flags or
// values. It indicates that the application cannot proceed due to incorrect user input.
type ConfigError struct {
	// Message explains the specific configuration error.
	Message string
}

// Error returns the error message for a ConfigError.
func (e ConfigError) Error() string { return e.Message }

// NewConfigError creates a new ConfigError with a formatted message.
//
// Parameters:
//   - format: A format string (see fmt.Sprintf).
//   - a: Arguments to be formatted into the string.
//
// Returns:
//   - error: A new ConfigError instance containing the formatted message.
func NewConfigError(format string, a ...any) error {
	return ConfigError{Message: fmt.Sprintf(format, a...)}
}

// NotFoundError reports a metadata lookup that matched nothing. Kind names
// the catalog collection ("Geo Type", "Data Variable", ...) and ID the key.
type NotFoundError struct {
	Kind    string
	ID      string
	Message string
}

// Error returns Message when set, otherwise "<Kind> <ID> not found".
func (e NotFoundError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("%s %s not found", e.Kind, e.ID)
}

// NewNotFoundError builds a NotFoundError with the default message.
func NewNotFoundError(kind, id string) error {
	return NotFoundError{Kind: kind, ID: id}
}

// TransportError describes a failed call to an upstream data provider. Status
// is zero when the request never produced an HTTP response.
type TransportError struct {
	// Service names the upstream ("data-api", "feature-query").
	Service string
	// URL is the request URL without credentials.
	URL string
	// Status is the HTTP status code returned by the upstream.
	Status int
	// Cause is the underlying transport error, if any.
	Cause error
}

// Error returns "status (text)" for HTTP failures and the cause otherwise.
func (e TransportError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("%s: %d (%s)", e.Service, e.Status, http.StatusText(e.Status))
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s", e.Service, e.Cause.Error())
	}
	return e.Service + ": request failed"
}

// Unwrap returns the underlying cause.
func (e TransportError) Unwrap() error { return e.Cause }

// TabulationError encapsulates an error raised while computing estimates
// while preserving the original cause.
type TabulationError struct {
	// Cause is the underlying error that triggered this tabulation error.
	Cause error
}

// Error returns the error message from the underlying cause.
func (e TabulationError) Error() string { return e.Cause.Error() }

// Unwrap returns the original wrapped error, allowing for error chain
// inspection (e.g., using errors.Is or errors.As).
func (e TabulationError) Unwrap() error { return e.Cause }

// ExhaustivenessError is returned when a closed set of tags (source kinds,
// processors, strategies) meets a value it does not handle.
type ExhaustivenessError struct {
	Message string
}

// Error returns the error message.
func (e ExhaustivenessError) Error() string { return e.Message }

// Fail reports an unhandled case in an exhaustive switch.
func Fail(format string, a ...any) error {
	return errors.WithStack(ExhaustivenessError{Message: fmt.Sprintf(format, a...)})
}

// TimeoutError represents an operation timeout. It captures the operation
// name and the duration limit that was exceeded.
type TimeoutError struct {
	// Operation is the name of the operation that timed out.
	Operation string
	// Limit is the duration after which the operation was considered timed out.
	Limit time.Duration
}

// Error returns a formatted message describing the timeout.
func (e TimeoutError) Error() string {
	return fmt.Sprintf("operation %q timed out after %s", e.Operation, e.Limit)
}

// ValidationError represents an input validation failure. It identifies which
// field failed validation and provides a human-readable explanation.
type ValidationError struct {
	// Field is the name of the field that failed validation.
	Field string
	// Message explains the validation failure.
	Message string
}

// Error returns a formatted message describing the validation failure.
func (e ValidationError) Error() string {
	return fmt.Sprintf("validation error for %q: %s", e.Field, e.Message)
}

// WrapError wraps an error with additional context. The wrapped error can
// still be inspected with errors.Is() and errors.As().
//
// Parameters:
//   - err: The error to wrap.
//   - format: A format string for the context message.
//   - args: Arguments for the format string.
//
// Returns:
//   - error: The wrapped error, or nil if err is nil.
func WrapError(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	return errors.Wrapf(err, format, args...)
}

// IsContextError checks if the error is a context cancellation or deadline exceeded error.
func IsContextError(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

// ExitCodeFor maps an error to the process exit code.
func ExitCodeFor(err error) int {
	if err == nil {
		return ExitSuccess
	}
	var (
		cfgErr       ConfigError
		validErr     ValidationError
		timeoutErr   TimeoutError
		transportErr TransportError
	)
	switch {
	case errors.Is(err, context.DeadlineExceeded), errors.As(err, &timeoutErr):
		return ExitErrorTimeout
	case errors.Is(err, context.Canceled):
		return ExitErrorCanceled
	case errors.As(err, &cfgErr), errors.As(err, &validErr):
		return ExitErrorConfig
	case errors.As(err, &transportErr):
		return ExitErrorUpstream
	default:
		return ExitErrorGeneric
	}
}
