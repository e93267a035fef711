// Package errors provides the structured error type used across microdi.
// Every failure carries a machine-readable ErrorCode, so callers can branch
// on IsUnknownImplementation and friends instead of matching messages.
package errors
