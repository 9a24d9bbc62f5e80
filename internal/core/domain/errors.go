// Package domain defines the core domain models for NFTMesh.
package domain

import (
	"errors"
	"fmt"
)

// DomainError represents a business domain error with a structured error code.
type DomainError struct {
	Code    string // Error code (e.g., "NM-LEDG-4040")
	Message string // Human-readable message
	Details string // Optional additional details
	Cause   error  // Underlying error (if any)
}

// Error implements the error interface.
func (e *DomainError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("[%s] %s: %s", e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error for errors.Unwrap() support.
func (e *DomainError) Unwrap() error {
	return e.Cause
}

// Is implements errors.Is() support for error comparison.
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// NewDomainError creates a new DomainError with the given code and message.
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// WithDetails returns a copy of the error with additional details.
func (e *DomainError) WithDetails(details string) *DomainError {
	return &DomainError{
		Code:    e.Code,
		Message: e.Message,
		Details: details,
		Cause:   e.Cause,
	}
}

// WithCause returns a copy of the error wrapping the given cause.
func (e *DomainError) WithCause(cause error) *DomainError {
	return &DomainError{
		Code:    e.Code,
		Message: e.Message,
		Details: e.Details,
		Cause:   cause,
	}
}

// IsDomainError checks if an error is a DomainError with the given code.
// If code is empty, it only checks if the error is a DomainError.
func IsDomainError(err error, code string) bool {
	var de *DomainError
	if errors.As(err, &de) {
		if code == "" {
			return true
		}
		return de.Code == code
	}
	return false
}

// GetErrorCode extracts the error code from an error if it's a DomainError.
func GetErrorCode(err error) string {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Code
	}
	return ""
}

// ============================================================================
// Ledger Errors (LEDG)
//
// The ledger error set is closed and flat. Codes in the 4xxx range are
// policy violations a caller can provoke and recover from; codes in the
// 5xxx range signal internal ledger corruption (a broken balance counter,
// an impossible duplicate entry) and should be unreachable under correct
// sequential use.
// ============================================================================

var (
	// ErrNotOwner indicates the caller is not the recorded owner of the token.
	ErrNotOwner = NewDomainError("NM-LEDG-4030", "caller is not the token owner")

	// ErrNotApproved indicates the caller is neither owner, approved
	// spender, nor approved operator for the token.
	ErrNotApproved = NewDomainError("NM-LEDG-4031", "caller is not approved for this token")

	// ErrNotAllowed indicates the operation is forbidden regardless of
	// ledger state (zero-account caller or target, self-approval).
	ErrNotAllowed = NewDomainError("NM-LEDG-4032", "operation not allowed")

	// ErrTokenNotFound indicates the token has no owner entry.
	ErrTokenNotFound = NewDomainError("NM-LEDG-4040", "token not found")

	// ErrTokenExists indicates the token already has an owner entry.
	ErrTokenExists = NewDomainError("NM-LEDG-4090", "token already exists")

	// ErrCannotInsert indicates an insert found an unexpected prior entry.
	// Corruption signal, not a normal user error.
	ErrCannotInsert = NewDomainError("NM-LEDG-5001", "cannot insert ledger entry")

	// ErrCannotRemove indicates a remove found no entry to delete.
	// Corruption signal, not a normal user error.
	ErrCannotRemove = NewDomainError("NM-LEDG-5002", "cannot remove ledger entry")

	// ErrCannotFetchValue indicates an expected ledger value was missing,
	// e.g. the balance counter of an account that owns a token.
	// Corruption signal, not a normal user error.
	ErrCannotFetchValue = NewDomainError("NM-LEDG-5003", "cannot fetch ledger value")
)

// ============================================================================
// System Errors (SYS)
// ============================================================================

var (
	// ErrInternalServer indicates an internal server error.
	ErrInternalServer = NewDomainError("NM-SYS-5000", "internal server error")

	// ErrStorageError indicates a storage layer error.
	ErrStorageError = NewDomainError("NM-SYS-5001", "storage error")

	// ErrBadRequest indicates a malformed request.
	ErrBadRequest = NewDomainError("NM-SYS-4000", "bad request")

	// ErrRateLimited indicates too many requests.
	ErrRateLimited = NewDomainError("NM-SYS-4290", "too many requests")
)

// ============================================================================
// Argument Errors (ARG)
// ============================================================================

var (
	// ErrInvalidArgument indicates an invalid argument.
	ErrInvalidArgument = NewDomainError("NM-ARG-1001", "invalid argument")

	// ErrMissingArgument indicates a required argument is missing.
	ErrMissingArgument = NewDomainError("NM-ARG-1002", "missing required argument")
)

// IsCorruption reports whether err is one of the internal-consistency
// ledger errors (CannotInsert, CannotRemove, CannotFetchValue). These are
// distinct from policy violations: observing one means the ledger's
// derived state disagrees with its ownership map.
func IsCorruption(err error) bool {
	return errors.Is(err, ErrCannotInsert) ||
		errors.Is(err, ErrCannotRemove) ||
		errors.Is(err, ErrCannotFetchValue)
}
