package errors

// ErrorCode represents a machine-readable error code.
type ErrorCode string

// Resolution errors
const (
	// ErrCodeUnknownImplementation indicates no implementation is registered under the requested name.
	ErrCodeUnknownImplementation ErrorCode = "UNKNOWN_IMPLEMENTATION"
	// ErrCodeCyclicDependency indicates a name was requested while it was already being resolved.
	ErrCodeCyclicDependency ErrorCode = "CYCLIC_DEPENDENCY"
	// ErrCodeTypeMismatch indicates a resolved value is not of the type the caller asked for.
	ErrCodeTypeMismatch ErrorCode = "TYPE_MISMATCH"
)

// Constructor errors
const (
	// ErrCodeInvalidConstructor indicates the registered constructor is not callable.
	ErrCodeInvalidConstructor ErrorCode = "INVALID_CONSTRUCTOR"
	// ErrCodeArgumentMismatch indicates the arguments do not fit the constructor signature.
	ErrCodeArgumentMismatch ErrorCode = "ARGUMENT_MISMATCH"
)

// Configuration errors
const (
	// ErrCodeInvalidConfig indicates a configuration value failed validation.
	ErrCodeInvalidConfig ErrorCode = "INVALID_CONFIG"
	// ErrCodeMissingParam indicates a keyword parameter is absent from a call.
	ErrCodeMissingParam ErrorCode = "MISSING_PARAM"
)

// Internal errors
const (
	// ErrCodeInternal indicates an unexpected failure.
	ErrCodeInternal ErrorCode = "INTERNAL_ERROR"
)

// None of the registry failures go away by retrying the same call, with the
// exception of constructor failures surfaced as internal errors.
var retryableCodes = map[ErrorCode]bool{
	ErrCodeInternal: true,
}

// IsRetryableCode returns true if the error code indicates a retryable error.
func IsRetryableCode(code ErrorCode) bool {
	return retryableCodes[code]
}
