// Package apperror classifies boundary-crossing failures into the small set
// of kinds the HTTP layer knows how to render. Every error that reaches a
// handler is either an *Error or treated as internal.
package apperror

import (
	"errors"
	"net/http"
)

// Kind enumerates the failure classes exposed to callers.
type Kind int

const (
	KindBadRequest Kind = iota
	KindUnauthorized
	KindForbidden
	KindNotFound
	KindUnprocessable
	KindInternal
)

// Status maps a kind to its HTTP status code.
func (k Kind) Status() int {
	switch k {
	case KindBadRequest:
		return http.StatusBadRequest
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	case KindUnprocessable:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// Error carries a classified, user-visible failure. Msg is safe to return to
// clients; Err (optional) holds the underlying cause for logs only.
type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Msg != "" {
		return e.Msg
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return "unknown error"
}

func (e *Error) Unwrap() error { return e.Err }

func BadRequest(msg string) *Error    { return &Error{Kind: KindBadRequest, Msg: msg} }
func Unauthorized(msg string) *Error  { return &Error{Kind: KindUnauthorized, Msg: msg} }
func Forbidden(msg string) *Error     { return &Error{Kind: KindForbidden, Msg: msg} }
func NotFound(msg string) *Error      { return &Error{Kind: KindNotFound, Msg: msg} }
func Unprocessable(msg string) *Error { return &Error{Kind: KindUnprocessable, Msg: msg} }

// Internal wraps a lower-level failure. The client sees msg, never err.
func Internal(msg string, err error) *Error {
	return &Error{Kind: KindInternal, Msg: msg, Err: err}
}

// KindOf extracts the classification of err. Unclassified errors are
// internal: persistence and signing failures must never leak detail.
func KindOf(err error) Kind {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Kind
	}
	return KindInternal
}
