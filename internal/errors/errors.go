// Package errors defines the kinded error type used across vaultsearch.
//
// Every failure that crosses a component boundary carries a Kind so that
// callers can decide between retrying later, treating the result as empty,
// rejecting input, or aborting the process.
package errors

import (
	"errors"
	"fmt"
)

// Kind classifies an error by how the caller should react to it.
type Kind int

const (
	// KindUnknown is the zero value; errors not produced by this package report it.
	KindUnknown Kind = iota
	// KindTransient covers index or I/O failures that are safe to retry later.
	KindTransient
	// KindNotFound means the requested entity does not exist.
	KindNotFound
	// KindInvalid means the caller supplied unusable input or configuration.
	KindInvalid
	// KindFatal means a required resource could not be opened; the process should stop.
	KindFatal
)

// String returns the lowercase name of the kind.
func (k Kind) String() string {
	switch k {
	case KindTransient:
		return "transient"
	case KindNotFound:
		return "not found"
	case KindInvalid:
		return "invalid"
	case KindFatal:
		return "fatal"
	default:
		return "unknown"
	}
}

// Error is the structured error type for vaultsearch.
type Error struct {
	// Kind is the error classification.
	Kind Kind

	// Op names the operation that failed, e.g. "indexer.SyncDocument".
	Op string

	// Subject identifies the entity involved, usually a document id or path.
	Subject string

	// Err is the underlying cause.
	Err error
}

// Error implements the error interface.
func (e *Error) Error() string {
	msg := e.Op
	if e.Subject != "" {
		msg += " " + e.Subject
	}
	if e.Err != nil {
		if msg != "" {
			return fmt.Sprintf("%s: %v", msg, e.Err)
		}
		return e.Err.Error()
	}
	if msg == "" {
		return e.Kind.String()
	}
	return fmt.Sprintf("%s: %s", msg, e.Kind)
}

// Unwrap returns the underlying cause for error chain support.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target is an *Error of the same Kind. Op and Subject are
// ignored so that the package sentinels match any error of their kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind
}

// Sentinels for use with errors.Is.
var (
	ErrTransient = &Error{Kind: KindTransient}
	ErrNotFound  = &Error{Kind: KindNotFound}
	ErrInvalid   = &Error{Kind: KindInvalid}
	ErrFatal     = &Error{Kind: KindFatal}
)

// E builds an *Error. A nil cause is allowed.
func E(kind Kind, op string, subject string, err error) *Error {
	return &Error{Kind: kind, Op: op, Subject: subject, Err: err}
}

// Transient wraps err as a retryable failure.
func Transient(op, subject string, err error) error {
	if err == nil {
		return nil
	}
	return E(KindTransient, op, subject, err)
}

// NotFound reports that subject does not exist.
func NotFound(op, subject string) error {
	return E(KindNotFound, op, subject, nil)
}

// Invalid reports unusable input.
func Invalid(op, format string, args ...any) error {
	return E(KindInvalid, op, "", fmt.Errorf(format, args...))
}

// Fatal wraps err as an unrecoverable startup failure.
func Fatal(op, subject string, err error) error {
	if err == nil {
		return nil
	}
	return E(KindFatal, op, subject, err)
}

// KindOf returns the Kind of the first *Error in err's chain.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// IsTransient reports whether err is a retryable failure.
func IsTransient(err error) bool { return KindOf(err) == KindTransient }

// IsNotFound reports whether err means the entity does not exist.
func IsNotFound(err error) bool { return KindOf(err) == KindNotFound }

// IsInvalid reports whether err was caused by unusable input.
func IsInvalid(err error) bool { return KindOf(err) == KindInvalid }

// IsFatal reports whether err should stop the process.
func IsFatal(err error) bool { return KindOf(err) == KindFatal }
