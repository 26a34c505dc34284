// Package errors provides custom error types for the sheetsync system.
// These errors enable programmatic error classification — in particular
// deciding whether a failed remote call should be retried, recorded as a
// per-record failure, or should abort the whole sync cycle.
package errors

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// New returns an error that formats as the given text.
// It's an alias for the standard library errors.New for convenience.
var New = errors.New

// Is reports whether any error in err's chain matches target.
// It's an alias for the standard library errors.Is for convenience.
var Is = errors.Is

// As finds the first error in err's chain that matches target.
// It's an alias for the standard library errors.As for convenience.
var As = errors.As

// Common sentinel errors for the sheetsync system
var (
	// ErrNotFound indicates that the remote spreadsheet or sheet was not found
	ErrNotFound = errors.New("not found")

	// ErrPermissionDenied indicates the credentials lack access to the remote table
	ErrPermissionDenied = errors.New("permission denied")

	// ErrRateLimited indicates that the remote API rate limit has been exceeded
	ErrRateLimited = errors.New("rate limited")

	// ErrTransient indicates a temporary remote failure that may succeed on retry
	ErrTransient = errors.New("transient failure")

	// ErrTimeout indicates that an operation timed out
	ErrTimeout = errors.New("operation timed out")

	// ErrCanceled indicates that an operation was canceled
	ErrCanceled = errors.New("operation canceled")

	// ErrMissingIdentityField indicates a record lacks a field needed to derive its identity key
	ErrMissingIdentityField = errors.New("missing identity field")

	// ErrInvalidInput indicates that provided input was invalid
	ErrInvalidInput = errors.New("invalid input")

	// ErrReadOnly indicates an attempt to mutate the remote table in dry-run mode
	ErrReadOnly = errors.New("read only")
)

// MissingFieldError represents a record missing a required identity field.
type MissingFieldError struct {
	Field string
}

// Error implements the error interface
func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("record is missing required field %q", e.Field)
}

// Is implements errors.Is support
func (e *MissingFieldError) Is(target error) bool {
	return target == ErrMissingIdentityField
}

// NewMissingFieldError creates a new MissingFieldError
func NewMissingFieldError(field string) *MissingFieldError {
	return &MissingFieldError{Field: field}
}

// ValidationError represents a validation failure
type ValidationError struct {
	Field   string
	Value   interface{}
	Message string
}

// Error implements the error interface
func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation failed for field %s: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation failed: %s", e.Message)
}

// Is implements errors.Is support
func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidInput
}

// RateLimitedError represents a rate-limit rejection from the remote table API.
// RetryAfter carries the server-advised wait, when the response included one.
type RateLimitedError struct {
	RetryAfter time.Duration
	Message    string
}

// Error implements the error interface
func (e *RateLimitedError) Error() string {
	if e.RetryAfter > 0 {
		return fmt.Sprintf("rate limited (retry after %s): %s", e.RetryAfter, e.Message)
	}
	return fmt.Sprintf("rate limited: %s", e.Message)
}

// Is implements errors.Is support
func (e *RateLimitedError) Is(target error) bool {
	return target == ErrRateLimited
}

// TransientError represents a temporary remote failure (5xx, connection reset,
// deadline exceeded) that is safe to retry.
type TransientError struct {
	Reason string
	Err    error
}

// Error implements the error interface
func (e *TransientError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("transient failure: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("transient failure: %s", e.Reason)
}

// Unwrap implements errors.Unwrap
func (e *TransientError) Unwrap() error {
	return e.Err
}

// Is implements errors.Is support
func (e *TransientError) Is(target error) bool {
	return target == ErrTransient
}

// APIError represents an error response from the remote table API.
type APIError struct {
	StatusCode int
	Message    string
	Endpoint   string
	Err        error
}

// Error implements the error interface
func (e *APIError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("table API error (status %d): %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("table API error: %s", e.Message)
}

// Unwrap implements errors.Unwrap
func (e *APIError) Unwrap() error {
	return e.Err
}

// Is implements errors.Is support, mapping HTTP status codes onto the
// sync error taxonomy.
func (e *APIError) Is(target error) bool {
	switch {
	case e.StatusCode == 429:
		return target == ErrRateLimited
	case e.StatusCode == 403:
		return target == ErrPermissionDenied
	case e.StatusCode == 404:
		return target == ErrNotFound
	case e.StatusCode >= 500:
		return target == ErrTransient
	}
	return false
}

// NewAPIError creates a new APIError
func NewAPIError(statusCode int, message string) *APIError {
	return &APIError{
		StatusCode: statusCode,
		Message:    message,
	}
}

// SyncError represents an error during a sync cycle, carrying the identity
// keys of the records that were affected.
type SyncError struct {
	Operation string
	Keys      []string
	Err       error
}

// Error implements the error interface
func (e *SyncError) Error() string {
	if len(e.Keys) > 0 {
		return fmt.Sprintf("sync error during %s (affected keys: %v): %v", e.Operation, e.Keys, e.Err)
	}
	return fmt.Sprintf("sync error during %s: %v", e.Operation, e.Err)
}

// Unwrap implements errors.Unwrap
func (e *SyncError) Unwrap() error {
	return e.Err
}

// NewSyncError creates a new SyncError
func NewSyncError(operation string, keys []string, err error) *SyncError {
	return &SyncError{
		Operation: operation,
		Keys:      keys,
		Err:       err,
	}
}

// ConfigError represents a configuration error
type ConfigError struct {
	Component string
	Message   string
	Err       error
}

// Error implements the error interface
func (e *ConfigError) Error() string {
	if e.Component != "" {
		return fmt.Sprintf("configuration error in %s: %s", e.Component, e.Message)
	}
	return fmt.Sprintf("configuration error: %s", e.Message)
}

// Unwrap implements errors.Unwrap
func (e *ConfigError) Unwrap() error {
	return e.Err
}

// NewConfigError creates a new ConfigError
func NewConfigError(component, message string, err error) *ConfigError {
	return &ConfigError{
		Component: component,
		Message:   message,
		Err:       err,
	}
}

// ParseError represents an error when parsing data formats
type ParseError struct {
	Format  string // "json", "yaml"
	File    string
	Message string
	Err     error
}

// Error implements the error interface
func (e *ParseError) Error() string {
	if e.File != "" {
		return fmt.Sprintf("parse error in %s file %s: %s", e.Format, e.File, e.Message)
	}
	return fmt.Sprintf("%s parse error: %s", e.Format, e.Message)
}

// Unwrap implements errors.Unwrap
func (e *ParseError) Unwrap() error {
	return e.Err
}

// IOError represents an error during I/O operations
type IOError struct {
	Operation string // "read", "write", "open"
	Path      string
	Err       error
}

// Error implements the error interface
func (e *IOError) Error() string {
	return fmt.Sprintf("IO error during %s of %s: %v", e.Operation, e.Path, e.Err)
}

// Unwrap implements errors.Unwrap
func (e *IOError) Unwrap() error {
	return e.Err
}

// Helper functions for error checking

// IsRateLimited checks if an error is a rate limit error
func IsRateLimited(err error) bool {
	return errors.Is(err, ErrRateLimited)
}

// IsTransient checks if an error is retryable: rate limited, tagged
// transient, or a timeout.
func IsTransient(err error) bool {
	return errors.Is(err, ErrTransient) || errors.Is(err, ErrRateLimited) ||
		errors.Is(err, ErrTimeout) || errors.Is(err, context.DeadlineExceeded)
}

// IsFatal checks if an error should abort the whole sync cycle.
// Retrying cannot fix missing permissions or a missing spreadsheet.
func IsFatal(err error) bool {
	return errors.Is(err, ErrPermissionDenied) || errors.Is(err, ErrNotFound)
}

// IsTimeout checks if an error is a timeout error
func IsTimeout(err error) bool {
	return errors.Is(err, ErrTimeout) || errors.Is(err, context.DeadlineExceeded)
}

// IsCanceled checks if an error is a cancellation error
func IsCanceled(err error) bool {
	return errors.Is(err, ErrCanceled) || errors.Is(err, context.Canceled)
}

// IsMissingIdentityField checks if an error is a normalization failure
// caused by a missing identity field
func IsMissingIdentityField(err error) bool {
	return errors.Is(err, ErrMissingIdentityField)
}

// RetryAfter extracts the server-advised retry delay from an error chain,
// or zero when none was provided.
func RetryAfter(err error) time.Duration {
	var rl *RateLimitedError
	if errors.As(err, &rl) {
		return rl.RetryAfter
	}
	return 0
}

// Helper wrapping functions for common patterns

// WrapValidation wraps an error as a ValidationError
func WrapValidation(field string, err error) error {
	if err == nil {
		return nil
	}
	return &ValidationError{Field: field, Message: err.Error()}
}

// WrapTransient wraps an error as a TransientError
func WrapTransient(reason string, err error) error {
	if err == nil {
		return nil
	}
	return &TransientError{Reason: reason, Err: err}
}

// WrapIO wraps an error as an IOError
func WrapIO(operation, path string, err error) error {
	if err == nil {
		return nil
	}
	return &IOError{Operation: operation, Path: path, Err: err}
}

// WrapParse wraps an error as a ParseError
func WrapParse(format, file string, err error) error {
	if err == nil {
		return nil
	}
	return &ParseError{Format: format, File: file, Message: err.Error(), Err: err}
}
