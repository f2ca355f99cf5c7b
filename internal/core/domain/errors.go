// Package domain defines the core domain models for GhostTape.
package domain

import (
	"errors"
	"fmt"
)

// DomainError represents a business domain error with a structured error code.
type DomainError struct {
	Code    string // Error code (e.g., "GT-FILE-4000")
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
// I/O Errors (IO)
// ============================================================================

var (
	// ErrIO indicates a filesystem failure (open/read/write/flush).
	ErrIO = NewDomainError("GT-IO-5000", "filesystem i/o failure")

	// ErrIOWrite indicates a write failure during an active recording.
	// The recording session is not usable after this error.
	ErrIOWrite = NewDomainError("GT-IO-5001", "trace write failure")
)

// ============================================================================
// Argument Errors (ARG)
// ============================================================================

var (
	// ErrInvalidArgument indicates a caller-supplied field is out of contract.
	ErrInvalidArgument = NewDomainError("GT-ARG-1001", "invalid argument")

	// ErrNameTooLong indicates a bounded-length name field exceeds its limit.
	ErrNameTooLong = NewDomainError("GT-ARG-1002", "name exceeds bounded length")

	// ErrSizeDisagreement indicates the caller's expected chunk size does not
	// match the stored payload length. This is a protocol-usage error, the
	// file itself is intact.
	ErrSizeDisagreement = NewDomainError("GT-ARG-1003", "declared chunk size disagreement")

	// ErrReservedChunkType indicates chunk type 0, which is reserved for the
	// end-of-stream marker.
	ErrReservedChunkType = NewDomainError("GT-ARG-1004", "chunk type 0 is reserved")
)

// ============================================================================
// State Errors (STATE)
// ============================================================================

var (
	// ErrNotRecording indicates WriteData/Stop was called outside Recording state.
	ErrNotRecording = NewDomainError("GT-STATE-2001", "recorder is not recording")

	// ErrAlreadyRecording indicates Start was called while Recording.
	ErrAlreadyRecording = NewDomainError("GT-STATE-2002", "recorder already recording")

	// ErrNotLoaded indicates a read operation was called outside Loaded state.
	ErrNotLoaded = NewDomainError("GT-STATE-2003", "no trace loaded")

	// ErrReadOutOfOrder indicates ReadData without a preceding ReadNextType.
	ErrReadOutOfOrder = NewDomainError("GT-STATE-2004", "ReadData requires a preceding ReadNextType")
)

// ============================================================================
// File Errors (FILE)
// ============================================================================

var (
	// ErrCorruptFile indicates the header, chunk framing, or trailer cannot
	// be parsed per the schema.
	ErrCorruptFile = NewDomainError("GT-FILE-4000", "trace file is corrupt")

	// ErrIdentityMismatch indicates the file's bound map identity disagrees
	// with the caller's expected identity. Distinct from ErrCorruptFile: the
	// file is well-formed, just for a different map.
	ErrIdentityMismatch = NewDomainError("GT-FILE-4090", "trace is bound to a different map")

	// ErrUnsupportedSchema indicates a magic/version marker this build does
	// not understand.
	ErrUnsupportedSchema = NewDomainError("GT-FILE-4001", "unsupported trace schema version")
)
