// Package errors defines the error taxonomy of the swap relay.
//
// Local validation failures (InvalidAccountRole, ZeroAmount) indicate a caller or
// integration bug and are raised before any cross-program call is attempted.
// ExternalCallFailed wraps a rejection from the external swap program and keeps
// the program's own error code untouched so callers can branch on it.
package errors

import (
	"errors"
	"fmt"

	"github.com/gagliardetto/solana-go"
)

// Error codes for the swap relay.
const (
	ErrCodeInvalidAccountRole = "INVALID_ACCOUNT_ROLE"
	ErrCodeZeroAmount         = "ZERO_AMOUNT"
	ErrCodeExternalCallFailed = "EXTERNAL_CALL_FAILED"
	ErrCodeDecodeFailed       = "DECODE_FAILED"
	ErrCodeCustom             = "CUSTOM"
)

// RelayError represents an error raised by the swap relay.
type RelayError struct {
	// Code is a unique error code for this error type.
	Code string

	// Message is a human-readable error message.
	Message string

	// Cause is the underlying error, if any.
	Cause error

	// Details contains additional error context.
	Details map[string]any
}

// Error implements the error interface.
func (e *RelayError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying error.
func (e *RelayError) Unwrap() error {
	return e.Cause
}

// Is reports whether the error matches the target by code.
func (e *RelayError) Is(target error) bool {
	t, ok := target.(*RelayError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// WithCause adds a cause to the error.
func (e *RelayError) WithCause(cause error) *RelayError {
	e.Cause = cause
	return e
}

// WithDetails merges details into the error.
func (e *RelayError) WithDetails(details map[string]any) *RelayError {
	if e.Details == nil {
		e.Details = make(map[string]any, len(details))
	}
	for k, v := range details {
		e.Details[k] = v
	}
	return e
}

// NewError creates a new RelayError.
func NewError(code, message string) *RelayError {
	return &RelayError{
		Code:    code,
		Message: message,
	}
}

// Sentinels for errors.Is. Never mutate these; constructors below return fresh values.
var (
	// ErrInvalidAccountRole is returned when a required account is missing, has the
	// wrong type or ownership class, or fails a cross-field check.
	ErrInvalidAccountRole = NewError(ErrCodeInvalidAccountRole, "invalid account role")

	// ErrZeroAmount is returned when amount_in is zero.
	ErrZeroAmount = NewError(ErrCodeZeroAmount, "amount_in must be greater than zero")

	// ErrExternalCallFailed is returned when the external swap program rejected the swap.
	ErrExternalCallFailed = NewError(ErrCodeExternalCallFailed, "external call failed")

	// ErrDecodeFailed is returned when instruction or account data cannot be decoded.
	ErrDecodeFailed = NewError(ErrCodeDecodeFailed, "decode failed")
)

// InvalidAccountRole creates an error for a role that failed validation.
func InvalidAccountRole(role string, reason string) *RelayError {
	return NewError(ErrCodeInvalidAccountRole, fmt.Sprintf("%s: %s", role, reason)).
		WithDetails(map[string]any{"role": role})
}

// ZeroAmount creates a zero amount error.
func ZeroAmount() *RelayError {
	return NewError(ErrCodeZeroAmount, ErrZeroAmount.Message)
}

// ExternalCallFailed wraps the failure returned by the external program.
// The cause is kept as-is so its error code survives unwrapping.
func ExternalCallFailed(programID solana.PublicKey, cause error) *RelayError {
	e := NewError(ErrCodeExternalCallFailed, fmt.Sprintf("program %s rejected the swap", programID)).
		WithCause(cause).
		WithDetails(map[string]any{"program_id": programID.String()})
	var coded CodedError
	if errors.As(cause, &coded) {
		if code, ok := coded.CustomCode(); ok {
			e.Details["code"] = code
		}
	}
	return e
}

// DecodeFailed creates an error for decoding failures.
func DecodeFailed(what string, cause error) *RelayError {
	return NewError(ErrCodeDecodeFailed, fmt.Sprintf("failed to decode %s", what)).WithCause(cause)
}

// Custom creates a custom error with the given message.
func Custom(message string) *RelayError {
	return NewError(ErrCodeCustom, message)
}

// CodedError is implemented by program errors that carry a numeric custom code.
type CodedError interface {
	error
	CustomCode() (uint32, bool)
}

// IsLocal reports whether err was raised by local validation, before any external call.
func IsLocal(err error) bool {
	return errors.Is(err, ErrInvalidAccountRole) || errors.Is(err, ErrZeroAmount)
}

// ExternalCode returns the external program's raw custom error code, if err is an
// ExternalCallFailed whose cause carries one.
func ExternalCode(err error) (uint32, bool) {
	if !errors.Is(err, ErrExternalCallFailed) {
		return 0, false
	}
	var coded CodedError
	if !errors.As(err, &coded) {
		return 0, false
	}
	return coded.CustomCode()
}
