// Package vsserr defines the error taxonomy the versioning engine uses
// to signal outcomes to its callers. A Kind maps one-to-one onto an HTTP
// status and a wire ErrorCode; callers should inspect Kind (via
// errors.As) rather than match on message text.
package vsserr

import (
	"errors"
	"fmt"
)

// Kind classifies why an operation failed.
type Kind int

const (
	// Unknown is the zero value; it should never be constructed directly.
	Unknown Kind = iota
	// Conflict signals a conditional write affected zero rows: the
	// caller's view is stale and the operation should be retried after
	// a fresh read.
	Conflict
	// InvalidRequest signals a malformed payload or an illegal argument.
	InvalidRequest
	// NoSuchKey signals a get miss on a non-reserved key.
	NoSuchKey
	// Auth signals that the upstream authorizer rejected the request.
	Auth
	// Internal signals a backend I/O failure or other unexpected state.
	Internal
)

func (k Kind) String() string {
	switch k {
	case Conflict:
		return "CONFLICT"
	case InvalidRequest:
		return "INVALID_REQUEST"
	case NoSuchKey:
		return "NO_SUCH_KEY"
	case Auth:
		return "AUTH"
	case Internal:
		return "INTERNAL"
	default:
		return "UNKNOWN"
	}
}

// Error is the concrete error type returned by the engine and its
// collaborators. Op names the operation that failed (e.g. "engine.Put");
// it is informational only and never part of the wire response.
type Error struct {
	Kind  Kind
	Op    string
	Cause error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Op, e.Kind, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Op, e.Kind)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// New constructs an Error of the given kind with no wrapped cause.
func New(op string, kind Kind, msg string) *Error {
	var cause error
	if msg != "" {
		cause = fmt.Errorf("%s", msg)
	}
	return &Error{Kind: kind, Op: op, Cause: cause}
}

// Wrap constructs an Error of the given kind wrapping cause.
func Wrap(op string, kind Kind, cause error) *Error {
	return &Error{Kind: kind, Op: op, Cause: cause}
}

// Conflictf builds a Conflict error with a formatted message.
func Conflictf(op, format string, args ...interface{}) *Error {
	return &Error{Kind: Conflict, Op: op, Cause: fmt.Errorf(format, args...)}
}

// Invalidf builds an InvalidRequest error with a formatted message.
func Invalidf(op, format string, args ...interface{}) *Error {
	return &Error{Kind: InvalidRequest, Op: op, Cause: fmt.Errorf(format, args...)}
}

// Internalf builds an Internal error with a formatted message.
func Internalf(op, format string, args ...interface{}) *Error {
	return &Error{Kind: Internal, Op: op, Cause: fmt.Errorf(format, args...)}
}

// Authf builds an Auth error with a formatted message.
func Authf(op, format string, args ...interface{}) *Error {
	return &Error{Kind: Auth, Op: op, Cause: fmt.Errorf(format, args...)}
}

// KindOf extracts the Kind from err, returning Internal if err is not
// (or does not wrap) a *Error — any error that escapes the engine
// without being classified is treated as an internal failure rather than
// silently surfaced as a 200.
func KindOf(err error) Kind {
	if err == nil {
		return Unknown
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return Internal
}
