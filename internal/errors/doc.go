// Package apperrors defines structured application error types,
// allowing for a clear distinction between error classes (configuration,
// metadata lookup, upstream transport, etc.) and for carrying the
// underlying cause.
//
// Error Wrapping Guidelines:
// Wrapping goes through github.com/cockroachdb/errors so stack traces are
// kept. All cause-carrying types implement Unwrap() to support errors.Is()
// and errors.As().
package apperrors
