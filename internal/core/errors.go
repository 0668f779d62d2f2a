package core

import (
	"errors"
	"fmt"
)

type ErrorKind string

const (
	KindAuth       ErrorKind = "auth_error"
	KindValidation ErrorKind = "validation_error"
	KindConflict   ErrorKind = "conflict_error"
	KindNotFound   ErrorKind = "not_found"
	KindProtocol   ErrorKind = "protocol_error"
)

// Error is a signaling failure reported back to the connection that caused it.
type Error struct {
	Kind ErrorKind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Msg, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches sentinels of the same kind, so errors.Is(err, ErrNotFound) works
// for any not-found error regardless of message.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Msg == "" && t.Kind == e.Kind
}

var (
	ErrAuth       = &Error{Kind: KindAuth}
	ErrValidation = &Error{Kind: KindValidation}
	ErrConflict   = &Error{Kind: KindConflict}
	ErrNotFound   = &Error{Kind: KindNotFound}
	ErrProtocol   = &Error{Kind: KindProtocol}
)

func AuthError(msg string) error       { return &Error{Kind: KindAuth, Msg: msg} }
func ValidationError(msg string) error { return &Error{Kind: KindValidation, Msg: msg} }
func ConflictError(msg string) error   { return &Error{Kind: KindConflict, Msg: msg} }
func NotFoundError(msg string) error   { return &Error{Kind: KindNotFound, Msg: msg} }
func ProtocolError(msg string) error   { return &Error{Kind: KindProtocol, Msg: msg} }

// ErrInvalidTransition is wrapped when an event does not apply to the
// session's current state.
var ErrInvalidTransition = errors.New("invalid transition")

// KindOf returns the kind of err, or "" if err is not a signaling error.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// Message returns the client-facing text of err.
func Message(err error) string {
	var e *Error
	if errors.As(err, &e) && e.Msg != "" {
		return e.Msg
	}
	return "internal error"
}
