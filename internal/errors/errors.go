// Package errors provides centralized error definitions and error handling utilities
// for the Firefly codebase. It defines the transport and engine error taxonomy,
// error constructors with context wrapping, and error classification helpers.
//
// # Error Types
//
// Domain-specific errors represent failures of a specific subsystem:
//   - ChannelError: a shared-memory region could not be created or opened
//   - PayloadError: an encoded message does not fit the mailbox capacity
//   - DecodeError: mailbox bytes did not decode to a valid message
//   - ProcessError: the engine process could not be spawned or stopped
//
// Semantic errors represent common error conditions:
//   - ValidationError: invalid input or configuration
//
// # Usage
//
//	err := errors.NewChannelError("open region", cause).WithName(name)
//	if errors.Is(err, errors.ErrChannelUnavailable) { ... }
//
//	var payloadErr *errors.PayloadError
//	if errors.As(err, &payloadErr) { ... }
//
// # Error Classification
//
// Errors carry a severity and are classified as retryable or fatal:
//   - ChannelError and ProcessError are fatal at startup
//   - DecodeError is recovered locally by the poll loops
//   - ErrSlotFull is retryable: the consumer will eventually clear the slot
package errors

import (
	"errors"
	"fmt"
	"strings"
)

// Re-export standard library functions for convenience.
// This allows callers to import only this package for all error handling.
var (
	Is     = errors.Is
	As     = errors.As
	Unwrap = errors.Unwrap
	New    = errors.New
	Join   = errors.Join
)

// Severity represents the severity level of an error.
type Severity int

const (
	// SeverityDebug is for errors that are useful for debugging but not critical.
	SeverityDebug Severity = iota
	// SeverityInfo is for informational errors that don't indicate a problem.
	SeverityInfo
	// SeverityWarning is for errors that might indicate a problem but aren't critical.
	SeverityWarning
	// SeverityError is for errors that indicate a real problem.
	SeverityError
	// SeverityCritical is for errors that terminate the process.
	SeverityCritical
)

// String returns the string representation of the severity level.
func (s Severity) String() string {
	switch s {
	case SeverityDebug:
		return "debug"
	case SeverityInfo:
		return "info"
	case SeverityWarning:
		return "warning"
	case SeverityError:
		return "error"
	case SeverityCritical:
		return "critical"
	default:
		return "unknown"
	}
}

// -----------------------------------------------------------------------------
// Sentinel Errors
// -----------------------------------------------------------------------------

// Transport sentinel errors
var (
	// ErrChannelUnavailable indicates a named shared region cannot be created or opened.
	ErrChannelUnavailable = New("channel unavailable")
	// ErrPayloadTooLarge indicates an encoded message would not fit the mailbox.
	ErrPayloadTooLarge = New("payload too large")
	// ErrSlotFull indicates a handshake write found an unconsumed message.
	ErrSlotFull = New("mailbox slot full")
	// ErrMailboxClosed indicates use of a mailbox after Close.
	ErrMailboxClosed = New("mailbox closed")
)

// Protocol sentinel errors
var (
	// ErrDecodeFailed indicates payload bytes do not decode to a valid message.
	ErrDecodeFailed = New("decode failed")
	// ErrUnknownKind indicates a well-formed envelope with an unrecognized tag.
	ErrUnknownKind = New("unknown message kind")
)

// Process sentinel errors
var (
	// ErrEngineStartFailed indicates the engine process could not be spawned.
	ErrEngineStartFailed = New("engine failed to start")
	// ErrEngineNotRunning indicates the engine process is not running.
	ErrEngineNotRunning = New("engine not running")
)

// General sentinel errors
var (
	// ErrInvalidInput indicates that input validation failed.
	ErrInvalidInput = New("invalid input")
)

// -----------------------------------------------------------------------------
// Base Error Interface
// -----------------------------------------------------------------------------

// FireflyError is the base interface for all Firefly errors.
type FireflyError interface {
	error

	// Unwrap returns the underlying error, if any.
	Unwrap() error

	// Is reports whether this error matches the target error.
	Is(target error) bool

	// Severity returns the severity level of this error.
	Severity() Severity

	// IsRetryable returns true if the operation may succeed on retry.
	IsRetryable() bool

	// IsFatal returns true if the error must terminate the process.
	IsFatal() bool
}

// baseError provides common functionality for all error types.
type baseError struct {
	message   string
	cause     error
	severity  Severity
	retryable bool
	fatal     bool
}

// Error returns the error message.
func (e *baseError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.message, e.cause)
	}
	return e.message
}

// Unwrap returns the underlying error.
func (e *baseError) Unwrap() error {
	return e.cause
}

// Is checks if this error matches the target.
func (e *baseError) Is(target error) bool {
	if e.cause != nil {
		return errors.Is(e.cause, target)
	}
	return false
}

// Severity returns the error severity.
func (e *baseError) Severity() Severity {
	return e.severity
}

// IsRetryable returns whether the error is retryable.
func (e *baseError) IsRetryable() bool {
	return e.retryable
}

// IsFatal returns whether the error terminates the process.
func (e *baseError) IsFatal() bool {
	return e.fatal
}

// format renders "kind [k=v, ...]: message: cause".
func (e *baseError) format(kind string, parts []string) string {
	prefix := kind
	if len(parts) > 0 {
		prefix = fmt.Sprintf("%s [%s]", kind, strings.Join(parts, ", "))
	}
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", prefix, e.message, e.cause)
	}
	return fmt.Sprintf("%s: %s", prefix, e.message)
}

// -----------------------------------------------------------------------------
// Domain-Specific Errors
// -----------------------------------------------------------------------------

// ChannelError represents a failure to create or open a shared-memory region.
// It always matches ErrChannelUnavailable.
//
// Example:
//
//	err := errors.NewChannelError("open region", cause).WithName("ff-1234")
//	fmt.Println(err) // "channel error [name=ff-1234]: open region: ..."
type ChannelError struct {
	baseError
	Name string
	Path string
}

// NewChannelError creates a new ChannelError.
func NewChannelError(message string, cause error) *ChannelError {
	return &ChannelError{
		baseError: baseError{
			message:  message,
			cause:    cause,
			severity: SeverityCritical,
			fatal:    true,
		},
	}
}

// WithName adds the channel identifier to the error context.
func (e *ChannelError) WithName(name string) *ChannelError {
	e.Name = name
	return e
}

// WithPath adds the backing file path to the error context.
func (e *ChannelError) WithPath(path string) *ChannelError {
	e.Path = path
	return e
}

// Error returns the formatted error message.
func (e *ChannelError) Error() string {
	var parts []string
	if e.Name != "" {
		parts = append(parts, fmt.Sprintf("name=%s", e.Name))
	}
	if e.Path != "" {
		parts = append(parts, fmt.Sprintf("path=%s", e.Path))
	}
	return e.format("channel error", parts)
}

// Is checks if this error matches the target.
func (e *ChannelError) Is(target error) bool {
	if _, ok := target.(*ChannelError); ok {
		return true
	}
	if target == ErrChannelUnavailable {
		return true
	}
	return e.baseError.Is(target)
}

// PayloadError reports a message that does not fit the mailbox.
// It always matches ErrPayloadTooLarge.
type PayloadError struct {
	baseError
	Size int
	Max  int
}

// NewPayloadError creates a PayloadError for a payload of size bytes where
// at most max bytes fit.
func NewPayloadError(size, max int) *PayloadError {
	return &PayloadError{
		baseError: baseError{
			message:  "payload does not fit mailbox",
			severity: SeverityWarning,
		},
		Size: size,
		Max:  max,
	}
}

// Error returns the formatted error message.
func (e *PayloadError) Error() string {
	return e.format("payload error", []string{
		fmt.Sprintf("size=%d", e.Size),
		fmt.Sprintf("max=%d", e.Max),
	})
}

// Is checks if this error matches the target.
func (e *PayloadError) Is(target error) bool {
	if _, ok := target.(*PayloadError); ok {
		return true
	}
	if target == ErrPayloadTooLarge {
		return true
	}
	return e.baseError.Is(target)
}

// DecodeError reports bytes that did not decode to a valid message.
// It always matches ErrDecodeFailed.
type DecodeError struct {
	baseError
	Kind string // message family: "operation" or "draw_command"
	Size int
}

// NewDecodeError creates a new DecodeError.
func NewDecodeError(kind string, size int, cause error) *DecodeError {
	return &DecodeError{
		baseError: baseError{
			message:  "malformed payload",
			cause:    cause,
			severity: SeverityWarning,
		},
		Kind: kind,
		Size: size,
	}
}

// Error returns the formatted error message.
func (e *DecodeError) Error() string {
	var parts []string
	if e.Kind != "" {
		parts = append(parts, fmt.Sprintf("kind=%s", e.Kind))
	}
	parts = append(parts, fmt.Sprintf("size=%d", e.Size))
	return e.format("decode error", parts)
}

// Is checks if this error matches the target.
func (e *DecodeError) Is(target error) bool {
	if _, ok := target.(*DecodeError); ok {
		return true
	}
	if target == ErrDecodeFailed {
		return true
	}
	return e.baseError.Is(target)
}

// ProcessError represents a failure managing the engine process.
type ProcessError struct {
	baseError
	Executable string
	PID        int
}

// NewProcessError creates a new ProcessError.
func NewProcessError(message string, cause error) *ProcessError {
	return &ProcessError{
		baseError: baseError{
			message:  message,
			cause:    cause,
			severity: SeverityCritical,
			fatal:    true,
		},
	}
}

// WithExecutable adds the executable path to the error context.
func (e *ProcessError) WithExecutable(path string) *ProcessError {
	e.Executable = path
	return e
}

// WithPID adds the process ID to the error context.
func (e *ProcessError) WithPID(pid int) *ProcessError {
	e.PID = pid
	return e
}

// Error returns the formatted error message.
func (e *ProcessError) Error() string {
	var parts []string
	if e.Executable != "" {
		parts = append(parts, fmt.Sprintf("exe=%s", e.Executable))
	}
	if e.PID > 0 {
		parts = append(parts, fmt.Sprintf("pid=%d", e.PID))
	}
	return e.format("process error", parts)
}

// Is checks if this error matches the target.
func (e *ProcessError) Is(target error) bool {
	if _, ok := target.(*ProcessError); ok {
		return true
	}
	return e.baseError.Is(target)
}

// -----------------------------------------------------------------------------
// Semantic Errors
// -----------------------------------------------------------------------------

// ValidationError represents invalid input or state.
//
// Example:
//
//	err := errors.NewValidationError("must be at least 64").WithField("mailbox.capacity").WithValue(8)
type ValidationError struct {
	baseError
	Field string
	Value any
}

// NewValidationError creates a new ValidationError.
func NewValidationError(message string) *ValidationError {
	return &ValidationError{
		baseError: baseError{
			message:  message,
			severity: SeverityWarning,
		},
	}
}

// WithField adds a field name to the error context.
func (e *ValidationError) WithField(field string) *ValidationError {
	e.Field = field
	return e
}

// WithValue adds the invalid value to the error context.
func (e *ValidationError) WithValue(value any) *ValidationError {
	e.Value = value
	return e
}

// WithCause adds a cause to the error.
func (e *ValidationError) WithCause(cause error) *ValidationError {
	e.cause = cause
	return e
}

// Error returns the formatted error message.
func (e *ValidationError) Error() string {
	var parts []string
	if e.Field != "" {
		parts = append(parts, fmt.Sprintf("field=%s", e.Field))
	}
	if e.Value != nil {
		parts = append(parts, fmt.Sprintf("value=%v", e.Value))
	}
	return e.format("validation error", parts)
}

// Is checks if this error matches the target.
func (e *ValidationError) Is(target error) bool {
	if _, ok := target.(*ValidationError); ok {
		return true
	}
	if target == ErrInvalidInput {
		return true
	}
	return e.baseError.Is(target)
}

// -----------------------------------------------------------------------------
// Error Classification Helpers
// -----------------------------------------------------------------------------

// IsRetryable returns true if the error represents a transient condition.
// ErrSlotFull is retryable: the consumer clears the slot on its next poll.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}

	var fireflyErr FireflyError
	if As(err, &fireflyErr) {
		return fireflyErr.IsRetryable()
	}

	return Is(err, ErrSlotFull)
}

// IsFatal returns true if the error must terminate the process.
// Channel and process failures are fatal; per-message failures are not.
func IsFatal(err error) bool {
	if err == nil {
		return false
	}

	var fireflyErr FireflyError
	if As(err, &fireflyErr) {
		return fireflyErr.IsFatal()
	}

	return Is(err, ErrChannelUnavailable)
}

// GetSeverity returns the severity level of the error.
// Returns SeverityError for errors that don't implement FireflyError.
func GetSeverity(err error) Severity {
	if err == nil {
		return SeverityDebug
	}

	var fireflyErr FireflyError
	if As(err, &fireflyErr) {
		return fireflyErr.Severity()
	}

	return SeverityError
}

// -----------------------------------------------------------------------------
// Convenience Constructors
// -----------------------------------------------------------------------------

// Wrap wraps an error with additional context message.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// Wrapf wraps an error with a formatted context message.
func Wrapf(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), err)
}
