package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
)

// AppError is the unified error type returned by the registry.
type AppError struct {
	// Code is a machine-readable error code.
	Code ErrorCode `json:"code"`
	// Message is a human-readable error message.
	Message string `json:"message"`
	// Retryable indicates if the operation can be retried.
	Retryable bool `json:"retryable"`
	// Details contains additional context for the error.
	Details map[string]any `json:"details,omitempty"`
	// Cause is the underlying error that caused this error.
	Cause error `json:"-"`
}

// Error returns the string representation of the error.
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (cause: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause of the error.
func (e *AppError) Unwrap() error { return e.Cause }

// WithCause sets the underlying cause of the error and returns the receiver.
func (e *AppError) WithCause(cause error) *AppError {
	e.Cause = cause
	return e
}

// WithDetails merges the provided details into the error and returns the receiver.
func (e *AppError) WithDetails(details map[string]any) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	for k, v := range details {
		e.Details[k] = v
	}
	return e
}

// WithDetail sets a single detail key-value pair and returns the receiver.
func (e *AppError) WithDetail(key string, value any) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	e.Details[key] = value
	return e
}

// New creates a new AppError with automatic retryable detection.
func New(code ErrorCode, message string) *AppError {
	return &AppError{
		Code:      code,
		Message:   message,
		Retryable: IsRetryableCode(code),
	}
}

// --- Common Error Constructors ---

// UnknownImplementation creates a new AppError for a name with no registration.
func UnknownImplementation(name string) *AppError {
	return &AppError{
		Code: ErrCodeUnknownImplementation, Message: fmt.Sprintf("Unknown implementation: %s", name),
		Details: map[string]any{"name": name},
	}
}

// CyclicDependency creates a new AppError for a resolution path that revisits a name.
// path holds the names being resolved, outermost first, ending with the repeated name.
func CyclicDependency(path []string) *AppError {
	return &AppError{
		Code: ErrCodeCyclicDependency, Message: fmt.Sprintf("Cyclic dependency: %s", strings.Join(path, " -> ")),
		Details: map[string]any{"path": path},
	}
}

// TypeMismatch creates a new AppError for a value of an unexpected type.
// want is the name of the expected type.
func TypeMismatch(name string, got any, want string) *AppError {
	return &AppError{
		Code: ErrCodeTypeMismatch, Message: fmt.Sprintf("%s is %T, expected %s", name, got, want),
		Details: map[string]any{"name": name, "got": fmt.Sprintf("%T", got), "want": want},
	}
}

// InvalidConstructor creates a new AppError for a constructor that cannot be called.
func InvalidConstructor(name, reason string) *AppError {
	return &AppError{
		Code: ErrCodeInvalidConstructor, Message: fmt.Sprintf("Invalid constructor for %s: %s", name, reason),
		Details: map[string]any{"name": name},
	}
}

// ArgumentMismatch creates a new AppError for arguments that do not fit a constructor.
func ArgumentMismatch(name, reason string) *AppError {
	return &AppError{
		Code: ErrCodeArgumentMismatch, Message: fmt.Sprintf("Cannot construct %s: %s", name, reason),
		Details: map[string]any{"name": name},
	}
}

// InvalidConfig creates a new AppError for configuration that failed validation.
func InvalidConfig(message string) *AppError {
	return &AppError{
		Code: ErrCodeInvalidConfig, Message: message,
	}
}

// MissingParam creates a new AppError for a keyword parameter that was not supplied.
func MissingParam(key string) *AppError {
	return &AppError{
		Code: ErrCodeMissingParam, Message: fmt.Sprintf("Missing parameter: %s", key),
		Details: map[string]any{"key": key},
	}
}

// Internal creates a new AppError for an unexpected failure.
func Internal(cause error) *AppError {
	return &AppError{
		Code: ErrCodeInternal, Message: "An unexpected error occurred.",
		Retryable: true, Cause: cause,
	}
}

// --- Inspection ---

// IsAppError checks if an error is an AppError.
func IsAppError(err error) bool {
	var appErr *AppError
	return stderrors.As(err, &appErr)
}

// AsAppError converts an error to an AppError if possible.
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// HasCode reports whether err is, or wraps, an AppError with the given code.
func HasCode(err error, code ErrorCode) bool {
	appErr, ok := AsAppError(err)
	return ok && appErr.Code == code
}

// IsUnknownImplementation reports whether err signals an unregistered name.
func IsUnknownImplementation(err error) bool {
	return HasCode(err, ErrCodeUnknownImplementation)
}

// IsCyclicDependency reports whether err signals a resolution cycle.
func IsCyclicDependency(err error) bool {
	return HasCode(err, ErrCodeCyclicDependency)
}

// IsTypeMismatch reports whether err signals a value of an unexpected type.
func IsTypeMismatch(err error) bool {
	return HasCode(err, ErrCodeTypeMismatch)
}
