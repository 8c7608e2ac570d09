// Package errors provides structured error types for the BNDL toolchain.
//
// This package defines error codes and types that enable:
//   - Consistent error handling across the library, CLI, and API
//   - Machine-readable error codes for programmatic handling
//   - User-friendly error messages
//   - Error wrapping with context preservation
//   - Warning accumulation for recoverable, report-and-continue conditions
//
// # Error Codes
//
// The format pipeline distinguishes four failure classes:
//   - INVALID_FORMAT: header missing or garbled; recoverable per caller policy
//   - PARSE_ERROR: malformed statement or unmatched group block; fatal per file
//   - RESOLUTION_ERROR: unknown node type, socket index, or datablock; recoverable per item
//   - EXPORT_PRECONDITION: empty or nodeless source graph; fatal to that export call
//
// # Usage
//
//	err := errors.New(errors.ErrCodeParse, "line %d: malformed Connect statement", n)
//	if errors.Is(err, errors.ErrCodeParse) {
//	    // Handle parse failure
//	}
//
//	// Wrap existing errors
//	err := errors.Wrap(errors.ErrCodeInternal, origErr, "writing %s", path)
//
// Recoverable conditions are collected as [Warning] values rather than
// aborting; parse and replay return the best-effort result plus the list.
package errors

import (
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Format pipeline errors
	ErrCodeFormat             Code = "INVALID_FORMAT"
	ErrCodeParse              Code = "PARSE_ERROR"
	ErrCodeResolution         Code = "RESOLUTION_ERROR"
	ErrCodeExportPrecondition Code = "EXPORT_PRECONDITION"

	// Input validation errors
	ErrCodeInvalidInput Code = "INVALID_INPUT"
	ErrCodeInvalidPath  Code = "INVALID_PATH"

	// Resource not found errors
	ErrCodeNotFound     Code = "NOT_FOUND"
	ErrCodeFileNotFound Code = "FILE_NOT_FOUND"

	// Internal errors
	ErrCodeInternal    Code = "INTERNAL_ERROR"
	ErrCodeUnsupported Code = "UNSUPPORTED"
)

// Error is a structured error with a code and optional cause.
type Error struct {
	Code    Code   // Machine-readable error code
	Message string // Human-readable message
	Cause   error  // Underlying error (optional)
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for errors.Is/As compatibility.
func (e *Error) Unwrap() error {
	return e.Cause
}

// New creates a new Error with the given code and formatted message.
func New(code Code, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

// Wrap creates a new Error wrapping an existing error.
func Wrap(code Code, cause error, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Cause:   cause,
	}
}

// Is reports whether err has the given error code.
// It unwraps the error chain looking for an *Error with a matching code.
func Is(err error, code Code) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}

// GetCode extracts the error code from an error, if available.
// Returns empty string if the error is not an *Error.
func GetCode(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// UserMessage returns a user-friendly message for the error.
// For *Error types, returns the message without the code prefix.
// For other errors, returns the error string as-is.
func UserMessage(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return err.Error()
}

// Warning records a recoverable condition that did not abort the operation.
// Parse and replay collect warnings and return them alongside the result so
// callers can report "applied / skipped / warned" counts instead of a binary
// outcome.
type Warning struct {
	Code    Code   `json:"code"`
	Message string `json:"message"`
}

// String implements fmt.Stringer.
func (w Warning) String() string {
	return fmt.Sprintf("%s: %s", w.Code, w.Message)
}

// Warnings is an accumulating list of recoverable conditions.
type Warnings []Warning

// Add appends a formatted warning to the list.
func (ws *Warnings) Add(code Code, format string, args ...any) {
	*ws = append(*ws, Warning{Code: code, Message: fmt.Sprintf(format, args...)})
}

// Strings returns the warnings as display strings, in order.
func (ws Warnings) Strings() []string {
	out := make([]string, len(ws))
	for i, w := range ws {
		out[i] = w.String()
	}
	return out
}
