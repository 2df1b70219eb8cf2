// Package errors gives flowcanvas failures a machine-readable code.
//
// The core packages (flow, reducer, history, layout) report failures with
// sentinel errors and [flow.Violation] values. The CLI and the HTTP API need
// a coarser view: is this the caller's fault, a broken flow, a history
// action out of order, or a bug? [Classify] answers that by attaching a
// [Code]; the surfaces then pick an exit message or a status from it.
//
// # Codes
//
//   - INVALID_INPUT, INVALID_FORMAT, INVALID_ID: the request itself is bad
//   - STRUCTURAL: the edit would break a flow invariant
//   - HISTORY_MISUSE: undo, redo or session actions out of order
//   - CONVERSION: a canvas conversion did not round-trip
//   - NOT_FOUND: an element or stored flow does not exist
//   - UNSUPPORTED: a valid request this build cannot serve
//   - INTERNAL: anything else
//
// # Usage
//
//	if err := s.Dispatch(a); err != nil {
//	    err = errors.Classify(err)
//	    if errors.Is(err, errors.ErrCodeHistoryMisuse) {
//	        // nothing to undo, no open session, ...
//	    }
//	    fmt.Println(errors.Detail(err))
//	}
//
// [flow.Violation]: github.com/matzehuels/flowcanvas/pkg/flow.Violation
package errors

import (
	"errors"
	"fmt"
)

// Code is a machine-readable failure class.
type Code string

const (
	ErrCodeInvalidInput  Code = "INVALID_INPUT"
	ErrCodeInvalidFormat Code = "INVALID_FORMAT"
	ErrCodeInvalidID     Code = "INVALID_ID"

	ErrCodeStructural    Code = "STRUCTURAL"
	ErrCodeHistoryMisuse Code = "HISTORY_MISUSE"
	ErrCodeConversion    Code = "CONVERSION"

	ErrCodeNotFound    Code = "NOT_FOUND"
	ErrCodeUnsupported Code = "UNSUPPORTED"
	ErrCodeInternal    Code = "INTERNAL"
)

// IsCallerFault reports whether the code blames the request rather than the
// program. Only INTERNAL and the empty code do not.
func (c Code) IsCallerFault() bool {
	return c != "" && c != ErrCodeInternal
}

// Error is a coded error. Message describes the failure in the caller's
// terms; Cause, when set, is the error it was derived from.
type Error struct {
	Code    Code
	Message string
	Cause   error
}

// Error renders "CODE: message" followed by ": cause" when there is one.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// New returns a coded error with a formatted message.
func New(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap returns a coded error whose cause is cause.
func Wrap(code Code, cause error, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...), Cause: cause}
}

// Is reports whether the outermost coded error in err's chain has code.
func Is(err error, code Code) bool {
	return GetCode(err) == code && code != ""
}

// GetCode returns the code of the outermost coded error in err's chain, or
// "" when there is none.
func GetCode(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// UserMessage returns the message of the outermost coded error in err's
// chain without the code prefix or cause. Uncoded errors render as-is.
func UserMessage(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return err.Error()
}

// Detail is like [UserMessage] for a coded err but keeps the cause unless
// the message already repeats it. Classified errors carry their cause's
// text as message, so Detail(Classify(err)) == err.Error().
func Detail(err error) string {
	e, ok := err.(*Error)
	if !ok {
		return err.Error()
	}
	if e.Cause != nil && e.Message != e.Cause.Error() {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}
