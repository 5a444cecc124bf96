// Package domain defines the core domain models for the Config Store client.
package domain

import (
	"errors"
	"fmt"
)

// DomainError represents a client domain error with a structured error code.
// Codes have the form CS-<AREA>-<NNNN>.
type DomainError struct {
	Code    string // Error code (e.g., "CS-CFG-4040")
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
// Resolution Errors (RES)
// ============================================================================

var (
	// ErrResolution indicates no reachable endpoint could be determined.
	// It is fatal and never retried.
	ErrResolution = NewDomainError("CS-RES-5000", "cannot resolve config store endpoint")
)

// ============================================================================
// Transport Errors (NET)
// ============================================================================

var (
	// ErrTransport indicates a socket or connection failure (no listener,
	// connection refused, broken pipe).
	ErrTransport = NewDomainError("CS-NET-5030", "config store unreachable")

	// ErrTimeout indicates no response arrived within the configured bound.
	ErrTimeout = NewDomainError("CS-NET-5040", "config store request timed out")
)

// ============================================================================
// Protocol Errors (PROTO)
// ============================================================================

var (
	// ErrSchemaMismatch indicates the decoded payload disagrees with the
	// expected kind or wire format. It points at client/server protocol skew.
	ErrSchemaMismatch = NewDomainError("CS-PROTO-4220", "schema mismatch")
)

// ============================================================================
// Config Errors (CFG)
// ============================================================================

var (
	// ErrNotFound indicates the requested key or config is absent.
	ErrNotFound = NewDomainError("CS-CFG-4040", "config key not found")
)

// ============================================================================
// Argument Errors (ARG)
// ============================================================================

var (
	// ErrInvalidArgument indicates an invalid caller-supplied argument.
	ErrInvalidArgument = NewDomainError("CS-ARG-4000", "invalid argument")
)

// ============================================================================
// Remote Errors (REM)
// ============================================================================

var (
	// ErrRemote indicates the daemon answered with a failure status.
	ErrRemote = NewDomainError("CS-REM-5000", "config store reported failure")
)
