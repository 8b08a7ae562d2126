// Package errors provides coded errors for the I/O boundary of shelfsort.
//
// The normalizer and grouper never return errors; only readers, writers
// and the SQLite sink do. Callers match on the code:
//
//	if errors.Is(err, errors.ErrSourceNotFound) {
//	    ...
//	}
package errors

import (
	"errors"
	"fmt"
)

var (
	Is  = errors.Is
	New = errors.New
)

// Code is a machine-readable error code.
type Code string

const (
	CodeSourceNotFound    Code = "SOURCE_NOT_FOUND"
	CodeMalformedSource   Code = "MALFORMED_SOURCE"
	CodeUnsupportedFormat Code = "UNSUPPORTED_FORMAT"
	CodeInvalidConfig     Code = "INVALID_CONFIG"
	CodeInternal          Code = "INTERNAL"
)

// ExitCode maps an error code to the process exit status used by the CLI.
func (c Code) ExitCode() int {
	switch c {
	case CodeSourceNotFound:
		return 2
	case CodeMalformedSource, CodeUnsupportedFormat:
		return 3
	case CodeInvalidConfig:
		return 4
	default:
		return 1
	}
}

// Error is a coded error with an optional cause.
type Error struct {
	Code    Code
	Message string
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.cause)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.cause
}

// Is matches any *Error carrying the same code.
func (e *Error) Is(target error) bool {
	var t *Error
	if errors.As(target, &t) {
		return e.Code == t.Code
	}
	return false
}

// Sentinels for errors.Is checks.
var (
	ErrSourceNotFound    = &Error{Code: CodeSourceNotFound, Message: "source not found"}
	ErrMalformedSource   = &Error{Code: CodeMalformedSource, Message: "malformed source"}
	ErrUnsupportedFormat = &Error{Code: CodeUnsupportedFormat, Message: "unsupported format"}
	ErrInvalidConfig     = &Error{Code: CodeInvalidConfig, Message: "invalid configuration"}
	ErrInternal          = &Error{Code: CodeInternal, Message: "internal error"}
)

func SourceNotFound(path string, cause error) *Error {
	return &Error{Code: CodeSourceNotFound, Message: fmt.Sprintf("source not found: %s", path), cause: cause}
}

func MalformedSource(path string, cause error) *Error {
	return &Error{Code: CodeMalformedSource, Message: fmt.Sprintf("malformed source %s", path), cause: cause}
}

func UnsupportedFormat(format string) *Error {
	return &Error{Code: CodeUnsupportedFormat, Message: fmt.Sprintf("unsupported format: %s", format)}
}

func InvalidConfig(cause error) *Error {
	return &Error{Code: CodeInvalidConfig, Message: "invalid configuration", cause: cause}
}

// Internal wraps an unexpected failure with a description of what was
// being attempted.
func Internal(message string, cause error) *Error {
	return &Error{Code: CodeInternal, Message: message, cause: cause}
}

// CodeOf returns the code of the first *Error in err's chain, or
// CodeInternal.
func CodeOf(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return CodeInternal
}
