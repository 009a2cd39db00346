package domain

import (
	"errors"
	"fmt"
)

// Kind classifies a failure independently of its message.
type Kind string

const (
	KindInvalidInput       Kind = "invalid_input"
	KindInvalidCredentials Kind = "invalid_credentials"
	KindUnauthenticated    Kind = "unauthenticated"
	KindInvalidToken       Kind = "invalid_token"
	KindTokenExpired       Kind = "token_expired"
	KindForbidden          Kind = "forbidden"
	KindConflict           Kind = "conflict"
	KindNotFound           Kind = "not_found"
	KindTooManyAttempts    Kind = "too_many_attempts"
	KindInternal           Kind = "internal"
)

// Error is the structured error returned by the core. Err holds an optional
// diagnostic cause; whether it reaches a client is decided at the boundary.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches any *Error of the same kind, so errors.Is(err, ErrConflict)
// holds for every conflict regardless of message.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Kind == e.Kind
}

var (
	ErrInvalidInput       = &Error{Kind: KindInvalidInput, Message: "invalid input"}
	ErrInvalidCredentials = &Error{Kind: KindInvalidCredentials, Message: "invalid credentials"}
	ErrUnauthenticated    = &Error{Kind: KindUnauthenticated, Message: "authentication required"}
	ErrInvalidToken       = &Error{Kind: KindInvalidToken, Message: "invalid token"}
	ErrTokenExpired       = &Error{Kind: KindTokenExpired, Message: "token expired"}
	ErrForbidden          = &Error{Kind: KindForbidden, Message: "access forbidden"}
	ErrConflict           = &Error{Kind: KindConflict, Message: "admin already exists"}
	ErrNotFound           = &Error{Kind: KindNotFound, Message: "admin not found"}
	ErrTooManyAttempts    = &Error{Kind: KindTooManyAttempts, Message: "too many login attempts, try again later"}
)

// Errorf builds an *Error of the given kind with a formatted message.
func Errorf(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Wrap attaches cause to a copy of sentinel.
func Wrap(sentinel *Error, cause error) *Error {
	return &Error{Kind: sentinel.Kind, Message: sentinel.Message, Err: cause}
}

// KindOf returns the kind of the first *Error in err's chain, or KindInternal.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}
