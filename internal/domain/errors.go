// Package domain defines domain-specific errors.
// These errors represent transport failures and are independent of infrastructure.
package domain

import (
	"errors"
	"fmt"
)

// Common errors that services can return.
var (
	// ErrEmptySequence is returned when a sequence with no events is loaded.
	ErrEmptySequence = errors.New("sequence has no events")

	// ErrNoSequence is returned when an operation needs a loaded sequence.
	ErrNoSequence = errors.New("no sequence loaded")

	// ErrNilSource is returned when a nil event source is passed to Load.
	ErrNilSource = errors.New("event source is nil")

	// ErrInvalidTempo is returned when a non-positive tempo ratio is used.
	ErrInvalidTempo = errors.New("invalid tempo: must be positive")

	// ErrInvalidTempoBounds is returned when tempo bounds are degenerate.
	ErrInvalidTempoBounds = errors.New("invalid tempo bounds")

	// ErrAlreadyStarted is returned when a loop is started twice.
	ErrAlreadyStarted = errors.New("already started")

	// ErrNotStarted is returned when stopping a loop that never started.
	ErrNotStarted = errors.New("not started")

	// ErrShutdownTimeout is returned when the scheduler loop does not exit in time.
	ErrShutdownTimeout = errors.New("shutdown timed out")

	// ErrSessionNotFound is returned when a session id is unknown to the registry.
	ErrSessionNotFound = errors.New("session not found")

	// ErrRegistryClosed is returned when opening sessions on a closed registry.
	ErrRegistryClosed = errors.New("session registry closed")

	// ErrPortNotFound is returned when a MIDI output port cannot be resolved.
	ErrPortNotFound = errors.New("output port not found")
)

// ValidationError represents a configuration error.
type ValidationError struct {
	Field   string      // Field that failed validation
	Value   interface{} // Value that failed validation
	Message string      // Error message
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error for %s: %s (value: %v)", e.Field, e.Message, e.Value)
}

// NewValidationError creates a new ValidationError.
func NewValidationError(field string, value interface{}, message string) *ValidationError {
	return &ValidationError{
		Field:   field,
		Value:   value,
		Message: message,
	}
}

// ServiceError represents an error from a service layer operation.
type ServiceError struct {
	Service string // Service name (e.g., "Scheduler", "Session")
	Op      string // Operation that failed
	Message string // Error message
	Err     error  // Underlying error
}

// Error implements the error interface.
func (e *ServiceError) Error() string {
	return fmt.Sprintf("service %s.%s failed: %s", e.Service, e.Op, e.Message)
}

// Unwrap returns the underlying error.
func (e *ServiceError) Unwrap() error {
	return e.Err
}

// NewServiceError creates a new ServiceError.
func NewServiceError(service, op, message string, err error) *ServiceError {
	return &ServiceError{
		Service: service,
		Op:      op,
		Message: message,
		Err:     err,
	}
}

// SourceError represents a failure to build an event source from a file.
type SourceError struct {
	Op   string // Operation that failed (e.g., "read", "convert")
	Path string // File path (if applicable)
	Err  error  // Underlying error
}

// Error implements the error interface.
func (e *SourceError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("event source %s failed for '%s': %v", e.Op, e.Path, e.Err)
	}
	return fmt.Sprintf("event source %s failed: %v", e.Op, e.Err)
}

// Unwrap returns the underlying error.
func (e *SourceError) Unwrap() error {
	return e.Err
}

// NewSourceError creates a new SourceError.
func NewSourceError(op, path string, err error) *SourceError {
	return &SourceError{Op: op, Path: path, Err: err}
}

// SinkError represents a delivery failure inside an output sink.
// Sinks never surface it to the scheduler; it is only logged and counted.
type SinkError struct {
	Port string
	Err  error
}

// Error implements the error interface.
func (e *SinkError) Error() string {
	return fmt.Sprintf("output sink '%s': %v", e.Port, e.Err)
}

// Unwrap returns the underlying error.
func (e *SinkError) Unwrap() error {
	return e.Err
}
