// Package constants provides shared constants used throughout the sheetsync
// codebase: timeouts, retry limits, batch sizes, and file permissions.
package constants

import "time"

// Timeout constants define various timeout durations used in the application
const (
	// DefaultHTTPTimeout is the standard timeout for HTTP requests to the table API
	DefaultHTTPTimeout = 30 * time.Second

	// CallTimeout is the timeout applied to a single remote table call
	CallTimeout = 30 * time.Second

	// SyncTimeout is the timeout for a whole sync cycle
	SyncTimeout = 10 * time.Minute

	// RetryBackoff is the base backoff duration for retries
	RetryBackoff = 1 * time.Second

	// MaxRetryBackoff is the maximum backoff duration for retries
	MaxRetryBackoff = 30 * time.Second
)

// Limit constants define various limits and capacities
const (
	// MaxRetries is the maximum number of retry attempts for a failed batch call
	MaxRetries = 3

	// MaxBatchRows is the maximum number of rows sent in one append or update call
	MaxBatchRows = 100

	// MaxConcurrentBatches is the worker pool bound for dispatching update batches
	MaxConcurrentBatches = 4

	// DefaultRateLimit is the default number of table API calls allowed per RateWindow
	DefaultRateLimit = 60

	// RateWindow is the refill window for the shared rate-limit budget
	RateWindow = time.Minute
)

// File permission constants define standard Unix file permissions
const (
	// DirPermissions is the default permission for created directories (rwxr-xr-x)
	DirPermissions = 0755

	// FilePermissions is the default permission for created files (rw-r--r--)
	FilePermissions = 0644

	// SecureFilePermissions is for sensitive files like credentials (rw-------)
	SecureFilePermissions = 0600
)
