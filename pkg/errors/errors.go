// Package errors provides structured error types for codescope.
//
// This package defines error codes and types that enable:
//   - Consistent error handling across the CLI and the HTTP API
//   - Machine-readable error codes for programmatic handling
//   - Error wrapping with context preservation
//
// # Error Codes
//
// Error codes follow a hierarchical naming convention:
//   - INVALID_*: Input validation failures
//   - NOT_FOUND_*: Resource not found
//   - ATTRIBUTION_*: Bundle attribution gaps (warnings, never fatal)
//   - INTERNAL_*: Unexpected internal errors
//
// # Domain Errors
//
// Three typed errors carry analysis-specific context:
//   - [ManifestError]: a malformed manifest entry; aborts that manifest only
//   - [AttributionMismatch]: a bundled module that maps to no graph node
//   - [ConfigError]: an invalid threshold or estimator setting; fails fast
//
// All of them report a [Code], so [Is] works uniformly:
//
//	if errors.Is(err, errors.ErrCodeInvalidManifest) {
//	    // skip this workspace member
//	}
package errors

import (
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Input validation errors
	ErrCodeInvalidInput    Code = "INVALID_INPUT"
	ErrCodeInvalidPackage  Code = "INVALID_PACKAGE"
	ErrCodeInvalidFormat   Code = "INVALID_FORMAT"
	ErrCodeInvalidManifest Code = "INVALID_MANIFEST"
	ErrCodeInvalidConfig   Code = "INVALID_CONFIG"

	// Resource not found errors
	ErrCodeNotFound     Code = "NOT_FOUND"
	ErrCodeFileNotFound Code = "FILE_NOT_FOUND"

	// Analysis warnings
	ErrCodeAttributionMismatch Code = "ATTRIBUTION_MISMATCH"

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

// coder is implemented by the typed domain errors.
type coder interface {
	Code() Code
}

// Is reports whether err has the given error code.
// It unwraps the error chain looking for an *Error or a typed domain
// error with a matching code.
func Is(err error, code Code) bool {
	return code != "" && GetCode(err) == code
}

// GetCode extracts the error code from an error, if available.
// Returns empty string if the chain holds no coded error.
func GetCode(err error) Code {
	if err == nil {
		return ""
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	var c coder
	if errors.As(err, &c) {
		return c.Code()
	}
	return ""
}

// As is errors.As from the standard library, re-exported so callers need
// only one errors import.
func As(err error, target any) bool {
	return errors.As(err, target)
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

// =============================================================================
// Domain Errors
// =============================================================================

// ManifestError reports a malformed manifest entry. Graph construction for
// the affected manifest aborts; sibling manifests in a workspace continue.
type ManifestError struct {
	Manifest string // root package name of the manifest
	Relation string // declaration list the entry came from
	Entry    string // offending package name (may be empty)
	Reason   string
}

// Error implements the error interface.
func (e *ManifestError) Error() string {
	where := e.Manifest
	if where == "" {
		where = "<unnamed>"
	}
	if e.Relation != "" {
		where += " (" + e.Relation + ")"
	}
	return fmt.Sprintf("manifest %s: entry %q: %s", where, e.Entry, e.Reason)
}

// Code returns the error code for this error type.
func (e *ManifestError) Code() Code { return ErrCodeInvalidManifest }

// AttributionMismatch records a bundled module that could not be mapped to
// a package in the graph. It is a warning: the module's bytes stay
// unattributed.
type AttributionMismatch struct {
	Module string
	Size   int64
	Reason string
}

// Error implements the error interface.
func (e *AttributionMismatch) Error() string {
	return fmt.Sprintf("unattributed module %s (%d bytes): %s", e.Module, e.Size, e.Reason)
}

// Code returns the error code for this error type.
func (e *AttributionMismatch) Code() Code { return ErrCodeAttributionMismatch }

// ConfigError reports an invalid configuration value. It is returned before
// any graph work starts.
type ConfigError struct {
	Field  string
	Reason string
}

// Error implements the error interface.
func (e *ConfigError) Error() string {
	return fmt.Sprintf("config %s: %s", e.Field, e.Reason)
}

// Code returns the error code for this error type.
func (e *ConfigError) Code() Code { return ErrCodeInvalidConfig }
