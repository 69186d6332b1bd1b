package rrule

import (
	"errors"
	"fmt"
)

// Error kinds
type ErrorKind string

const (
	ErrMalformedText  ErrorKind = "malformed_text"  // lexical failure in strict parsing
	ErrInvalidRule    ErrorKind = "invalid_rule"    // structural cross-field violation
	ErrInvalidMoment  ErrorKind = "invalid_moment"  // malformed date or time literal
	ErrMissingDtstart ErrorKind = "missing_dtstart" // generator invoked without an anchor
	ErrMaxIterations  ErrorKind = "max_iterations"  // safety bound hit
	ErrUnsupported    ErrorKind = "unsupported"     // value outside declared ranges in strict mode
)

// Error represents a recurrence-related error
type Error struct {
	Kind    ErrorKind
	Key     string // offending selector or parameter, when known
	Message string
	Err     error
}

func (e *Error) Error() string {
	msg := e.Message
	if e.Key != "" {
		msg = fmt.Sprintf("%s: %s", e.Key, msg)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, msg, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, msg)
}

func (e *Error) Unwrap() error { return e.Err }

// IsKind reports whether err is a *Error of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	var re *Error
	if errors.As(err, &re) {
		return re.Kind == kind
	}
	return false
}

func newError(kind ErrorKind, key, format string, args ...any) *Error {
	return &Error{Kind: kind, Key: key, Message: fmt.Sprintf(format, args...)}
}
