// Package common defines the closed error taxonomy shared by every server
// layer, plus small helpers for random values. Domain errors carry a Kind and
// propagate unchanged to the API boundary; infrastructure failures are wrapped
// as KindInternal before they leave a repository.
package common

import (
	"errors"
	"fmt"
)

// Kind classifies an error for the API boundary. The set is closed: callers
// switch on these values and no layer may invent new ones.
type Kind string

const (
	KindUnauthorized     Kind = "Unauthorized"
	KindNoPermission     Kind = "NoPermission"
	KindInvalidInput     Kind = "InvalidInput"
	KindMissingParameter Kind = "MissingParameter"
	KindNotFound         Kind = "ResourceNotFound"
	KindUserExists       Kind = "UserExists"
	KindUserDisabled     Kind = "UserDisabled"
	KindInternal         Kind = "InternalError"
)

// HTTPStatus returns the transport status code conventionally paired with
// the kind.
func (k Kind) HTTPStatus() int {
	switch k {
	case KindInvalidInput, KindMissingParameter:
		return 400
	case KindUnauthorized:
		return 401
	case KindNoPermission, KindUserDisabled:
		return 403
	case KindNotFound:
		return 404
	case KindUserExists:
		return 409
	default:
		return 500
	}
}

// Error is the single error type crossing layer boundaries. It wraps an
// optional cause; the cause is for logs only and is never serialized.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// Is lets errors.Is match two taxonomy errors by kind, so sentinel-style
// comparisons keep working across wrapping.
func (e *Error) Is(target error) bool {
	var t *Error
	if errors.As(target, &t) {
		return t.Kind == e.Kind
	}
	return false
}

// E builds a taxonomy error with the given kind and message.
func E(kind Kind, msg string) *Error {
	return &Error{Kind: kind, Message: msg}
}

// Wrap attaches a cause to a taxonomy error. Used at repository boundaries
// to keep infrastructure detail out of client-visible messages.
func Wrap(kind Kind, msg string, err error) *Error {
	return &Error{Kind: kind, Message: msg, Err: err}
}

// KindOf extracts the kind from err, defaulting to KindInternal for anything
// outside the taxonomy.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// IsKind reports whether err carries the given kind.
func IsKind(err error, kind Kind) bool {
	return KindOf(err) == kind
}

// Default messages mirror the public API contract; resolvers reuse them so
// denied and missing credentials stay indistinguishable in shape.
var (
	ErrUnauthorized = E(KindUnauthorized, "server failed to authenticate the request")
	ErrNoPermission = E(KindNoPermission, "insufficient permissions for the resource")
	ErrInternal     = E(KindInternal, "internal error, please retry the request")
)
