// Package apperr defines the application error taxonomy.
//
// Handlers and services return *Error values (or wrap them); the HTTP
// layer maps each Kind to a status code via pkg/response. Wrapping with
// fmt.Errorf("...: %w", err) preserves the kind for errors.As.
package apperr

import (
	"errors"
	"fmt"
)

// Kind classifies an error for HTTP status mapping and logging.
type Kind int

const (
	KindInternal     Kind = iota // 500 — unexpected failure
	KindValidation               // 400 — malformed input or identifier
	KindNotFound                 // 404 — entity does not exist
	KindConflict                 // 409 — e.g. insufficient stock, duplicate in-flight request
	KindUnauthorized             // 401 — missing/invalid credentials
	KindForbidden                // 403 — blocked user or missing admin role
	KindUpstream                 // 502 — external dependency failed
	KindTimeout                  // 503 — retryable, operation timed out
)

// Error carries a Kind and a user-presentable message.
type Error struct {
	Kind Kind
	Msg  string
	Err  error // optional cause
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Msg, e.Err)
	}
	return e.Msg
}

func (e *Error) Unwrap() error { return e.Err }

// Is lets errors.Is match two *Error values by kind, so sentinel
// comparisons like errors.Is(err, apperr.New(KindConflict, "...")) work
// without exact message equality.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return e.Kind == t.Kind
}

// New builds a plain taxonomy error.
func New(kind Kind, msg string) *Error {
	return &Error{Kind: kind, Msg: msg}
}

// Newf builds a taxonomy error with a formatted message.
func Newf(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

// Wrap attaches a kind and message to an underlying cause.
func Wrap(kind Kind, msg string, err error) *Error {
	return &Error{Kind: kind, Msg: msg, Err: err}
}

// KindOf extracts the Kind from err, defaulting to KindInternal for
// untyped errors.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// Message returns the user-presentable message for err. Untyped errors
// are masked with a generic message so internals never leak to clients.
func Message(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Msg
	}
	return "Internal Server Error"
}

// Convenience constructors for the common kinds.

func Validation(msg string) *Error   { return New(KindValidation, msg) }
func NotFound(msg string) *Error     { return New(KindNotFound, msg) }
func Conflict(msg string) *Error     { return New(KindConflict, msg) }
func Unauthorized(msg string) *Error { return New(KindUnauthorized, msg) }
func Forbidden(msg string) *Error    { return New(KindForbidden, msg) }
func Upstream(msg string, err error) *Error {
	return Wrap(KindUpstream, msg, err)
}
func Timeout(msg string) *Error { return New(KindTimeout, msg) }
