package errorwrapper

import (
	"errors"
	"fmt"
)

// Common error types used across the application
var (
	// ErrInvalidConfiguration indicates configuration issues
	ErrInvalidConfiguration = errors.New("invalid configuration")
	// ErrStaleHandle indicates an NFS stale file handle condition; the mount
	// should be refreshed and the operation retried once
	ErrStaleHandle = errors.New("stale file handle")
	// ErrFileVanished indicates a file disappeared between detection and
	// processing; the path must not be marked processed
	ErrFileVanished = errors.New("file vanished before processing")
	// ErrUnstableFile indicates a file is still being written; processing is
	// deferred to a later poll tick
	ErrUnstableFile = errors.New("file still being written")
)

// WrapError wraps an error with additional context information
func WrapError(err error, message string) error {
	if err == nil {
		return fmt.Errorf("%s: <nil>", message)
	}
	return fmt.Errorf("%s: %w", message, err)
}

// NewError creates a new error with a formatted message
func NewError(format string, args ...interface{}) error {
	return fmt.Errorf(format, args...)
}

// ValidationError represents validation errors with field-specific information
type ValidationError struct {
	Field   string
	Value   any
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error: field '%s' with value '%v': %s", e.Field, e.Value, e.Message)
}

// NewValidationError creates a new validation error
func NewValidationError(field string, value any, message string) *ValidationError {
	return &ValidationError{
		Field:   field,
		Value:   value,
		Message: message,
	}
}

// CommandError represents a failed external toolkit invocation.
type CommandError struct {
	Command string
	Stderr  string
	Wrapped error
}

func (e *CommandError) Error() string {
	if e.Stderr != "" {
		return fmt.Sprintf("command '%s' failed: %s", e.Command, e.Stderr)
	}
	return fmt.Sprintf("command '%s' failed", e.Command)
}

func (e *CommandError) Unwrap() error {
	return e.Wrapped
}

// NewCommandError creates a new command error
func NewCommandError(command, stderr string, wrapped error) *CommandError {
	return &CommandError{
		Command: command,
		Stderr:  stderr,
		Wrapped: wrapped,
	}
}
