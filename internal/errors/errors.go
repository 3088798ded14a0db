// Package errors provides structured error types for periodic.
//
// Every failure in the program is fatal. The error category decides the
// process exit code: configuration, spawn and interruption errors exit with 1,
// resource acquisition errors exit with the underlying OS errno.
package errors

import (
	"context"
	stderrors "errors"
	"fmt"
	"log/slog"
	"syscall"
	"time"
)

// ErrorType represents the category of error
type ErrorType string

const (
	ErrorTypeConfig      ErrorType = "config"
	ErrorTypeResource    ErrorType = "resource"
	ErrorTypeSpawn       ErrorType = "spawn"
	ErrorTypeInterrupted ErrorType = "interrupted"
	ErrorTypeInternal    ErrorType = "internal"
)

// Error codes
const (
	CodeUsage       = "USAGE"
	CodeConfigLoad  = "CONFIG_LOAD"
	CodeTimerArm    = "TIMER_ARM_FAILED"
	CodeSpawnFailed = "SPAWN_FAILED"
	CodeInterrupted = "INTERRUPTED"
	CodeSelfLookup  = "SELF_LOOKUP_FAILED"
)

// PeriodicError is the base error type for all periodic errors
type PeriodicError struct {
	Type       ErrorType
	Code       string
	Message    string
	Underlying error
	Details    map[string]interface{}
	Timestamp  time.Time
}

// Error implements the error interface
func (e *PeriodicError) Error() string {
	if e.Underlying != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Underlying)
	}
	return e.Message
}

// Unwrap returns the underlying error
func (e *PeriodicError) Unwrap() error {
	return e.Underlying
}

// Is checks if the error matches another error
func (e *PeriodicError) Is(target error) bool {
	if t, ok := target.(*PeriodicError); ok {
		return e.Type == t.Type && e.Code == t.Code
	}
	return false
}

// WithDetails adds details to the error
func (e *PeriodicError) WithDetails(key string, value interface{}) *PeriodicError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

func newError(errorType ErrorType, code, message string, underlying error) *PeriodicError {
	return &PeriodicError{
		Type:       errorType,
		Code:       code,
		Message:    message,
		Underlying: underlying,
		Timestamp:  time.Now(),
	}
}

// ConfigError creates a configuration error
func ConfigError(code, message string, underlying error) *PeriodicError {
	return newError(ErrorTypeConfig, code, message, underlying)
}

// ResourceError creates a resource acquisition error (timer, signal handler)
func ResourceError(code, message string, underlying error) *PeriodicError {
	return newError(ErrorTypeResource, code, message, underlying)
}

// SpawnError creates a child process creation error
func SpawnError(code, message string, underlying error) *PeriodicError {
	return newError(ErrorTypeSpawn, code, message, underlying)
}

// InterruptedError creates an error for a cancelled run
func InterruptedError(message string, underlying error) *PeriodicError {
	return newError(ErrorTypeInterrupted, CodeInterrupted, message, underlying)
}

// InternalError creates an internal error
func InternalError(code, message string, underlying error) *PeriodicError {
	return newError(ErrorTypeInternal, code, message, underlying)
}

// Predefined error instances, used as errors.Is targets

var (
	ErrUsage       = ConfigError(CodeUsage, "Invalid number of arguments", nil)
	ErrTimerArm    = ResourceError(CodeTimerArm, "Failed to arm interval timer", nil)
	ErrSpawnFailed = SpawnError(CodeSpawnFailed, "Failed to create child process", nil)
	ErrInterrupted = InterruptedError("Interrupted", nil)
)

// IsType checks if an error is of a specific type
func IsType(err error, errorType ErrorType) bool {
	var pe *PeriodicError
	if stderrors.As(err, &pe) {
		return pe.Type == errorType
	}
	return false
}

// GetCode extracts the error code from an error
func GetCode(err error) string {
	var pe *PeriodicError
	if stderrors.As(err, &pe) {
		return pe.Code
	}
	return "UNKNOWN_ERROR"
}

// Errno returns the OS error number wrapped somewhere in err.
func Errno(err error) (syscall.Errno, bool) {
	var errno syscall.Errno
	if stderrors.As(err, &errno) && errno != 0 {
		return errno, true
	}
	return 0, false
}

// ExitCode maps an error to the process exit status.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	if IsType(err, ErrorTypeResource) {
		if errno, ok := Errno(err); ok {
			return int(errno)
		}
	}
	return 1
}

// FromContext converts a context error into an interruption error.
func FromContext(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return InterruptedError("Run interrupted", err)
	}
	return nil
}

// LogAttrs returns slog attributes for the error
func (e *PeriodicError) LogAttrs() []slog.Attr {
	attrs := []slog.Attr{
		slog.String("error_type", string(e.Type)),
		slog.String("error_code", e.Code),
		slog.String("error_message", e.Message),
		slog.Time("error_timestamp", e.Timestamp),
	}

	if e.Underlying != nil {
		attrs = append(attrs, slog.String("underlying_error", e.Underlying.Error()))
	}

	for key, value := range e.Details {
		attrs = append(attrs, slog.Any(fmt.Sprintf("error_detail_%s", key), value))
	}

	return attrs
}
