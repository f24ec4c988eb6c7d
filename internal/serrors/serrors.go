// Package serrors defines the semantic error kinds of a digest run and a
// wrapper that lets callers match either the kind or the underlying cause
// with errors.Is / errors.As.
package serrors

import (
	"errors"
	"fmt"
)

// Kind is a marker interface implemented by all semantic error kinds created
// with NewKind.
type Kind interface {
	error
	isKind()
}

type kind struct{ s string }

func (k kind) Error() string { return k.s }
func (k kind) isKind()       {}

// NewKind creates a new semantic error kind (a sentinel).
func NewKind(name string) Kind { return kind{s: name} }

var (
	// ErrTransport marks a network or API failure talking to a job board.
	// The source is skipped, the run continues.
	ErrTransport = NewKind("TRANSPORT")
	// ErrMalformedRecord marks a single listing that could not be normalised.
	// The record is skipped, the run continues.
	ErrMalformedRecord = NewKind("MALFORMED_RECORD")
	// ErrConfig marks a missing or invalid configuration value. Fatal.
	ErrConfig = NewKind("CONFIG")
	// ErrPersistence marks an unreadable or corrupt stats log. Fatal, never repaired.
	ErrPersistence = NewKind("PERSISTENCE")
	// ErrPublish marks a failed hand-off to the issue tracker. Reported, not retried.
	ErrPublish = NewKind("PUBLISH")
)

// Error represents a semantic error carrying a kind, an optional wrapped
// cause and an optional message.
//
// Error string formatting:
//   - If both msg and err are set: "<msg>: <err>"
//   - If only msg is set: "<msg>"
//   - If only err is set: "<err>"
//   - If neither set: the kind's Error() string.
type Error struct {
	kind Kind
	err  error
	msg  string
}

// With constructs a new semantic error with the given kind and message.
func With(k Kind, msgFmt string, args ...any) *Error {
	return &Error{kind: k, msg: fmt.Sprintf(msgFmt, args...)}
}

// Wrap constructs a new semantic error with the given kind wrapping err.
func Wrap(k Kind, err error, msgFmt string, args ...any) *Error {
	return &Error{kind: k, err: err, msg: fmt.Sprintf(msgFmt, args...)}
}

func (e *Error) Error() string {
	switch {
	case e == nil:
		return "<nil>"
	case e.msg != "" && e.err != nil:
		return e.msg + ": " + e.err.Error()
	case e.msg != "":
		return e.msg
	case e.err != nil:
		return e.err.Error()
	default:
		if e.kind != nil {
			return e.kind.Error()
		}

		return "unknown error"
	}
}

func (e *Error) Unwrap() error { return e.err }

// Is matches against either the kind sentinel or the wrapped error.
func (e *Error) Is(target error) bool {
	if e == nil || target == nil {
		return e == nil && target == nil
	}
	if e.kind != nil && errors.Is(e.kind, target) {
		return true
	}
	if e.err != nil && errors.Is(e.err, target) {
		return true
	}

	return false
}

// As extracts either the kind sentinel or a type from the wrapped chain.
func (e *Error) As(target any) bool {
	if e == nil || target == nil {
		return false
	}
	if e.kind != nil && errors.As(e.kind, target) {
		return true
	}
	if e.err != nil && errors.As(e.err, target) {
		return true
	}

	return false
}

// Kind returns the semantic kind associated with this error.
func (e *Error) Kind() Kind { return e.kind }

// KindOf walks the chain and returns the first semantic kind found, or nil.
func KindOf(err error) Kind {
	var se *Error
	if errors.As(err, &se) {
		return se.kind
	}

	return nil
}
