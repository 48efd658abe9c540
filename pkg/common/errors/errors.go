package errors

import "errors"

// Common error types used across the neosched library

var (
	// ErrNilCallback indicates a submission carrying a nil callback
	ErrNilCallback = errors.New("callback is nil")

	// ErrNegativeTicks indicates a negative delay or period tick count
	ErrNegativeTicks = errors.New("tick count is negative")

	// ErrNilTarget indicates an affinity submission with a nil target
	ErrNilTarget = errors.New("affinity target is nil")

	// ErrNoTargetScheduler indicates an affinity target that does not expose
	// a region scheduler on a partitioned host
	ErrNoTargetScheduler = errors.New("target exposes no region scheduler")

	// ErrClosed indicates that an operation was attempted on a closed resource
	ErrClosed = errors.New("resource is closed")

	// ErrCapacityExceeded indicates that a capacity limit was exceeded
	ErrCapacityExceeded = errors.New("capacity exceeded")

	// ErrInvalidConfiguration indicates invalid configuration parameters
	ErrInvalidConfiguration = errors.New("invalid configuration")

	// ErrDriverNotRegistered indicates a database driver that has not been
	// linked into the binary
	ErrDriverNotRegistered = errors.New("database driver not registered")
)

// IsBadSubmission returns true if the error indicates arguments that the
// scheduler rejected before any work was queued
func IsBadSubmission(err error) bool {
	return errors.Is(err, ErrNilCallback) ||
		errors.Is(err, ErrNegativeTicks) ||
		errors.Is(err, ErrNilTarget) ||
		errors.Is(err, ErrNoTargetScheduler)
}

// IsRetryable returns true if the error indicates a condition that might
// be resolved by retrying the operation
func IsRetryable(err error) bool {
	return errors.Is(err, ErrCapacityExceeded)
}
