// Package apperror defines the error kinds shared by the domain, application
// and transport layers. Handlers translate a Kind to an HTTP status; anything
// that is not an *Error is treated as KindInternal.
package apperror

import (
	"errors"
	"net/http"
)

type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindAuthentication
	KindForbidden
	KindInvalidToken
	KindExpiredToken
	KindAlreadyVerified
	KindNotFound
	KindConflict
	KindDependency
)

// InternalMessage is the only text an unclassified failure ever shows a caller.
const InternalMessage = "An unexpected error occurred. Please try again later."

var kindNames = map[Kind]string{
	KindInternal:        "internal",
	KindValidation:      "validation",
	KindAuthentication:  "authentication",
	KindForbidden:       "forbidden",
	KindInvalidToken:    "invalid_token",
	KindExpiredToken:    "expired_token",
	KindAlreadyVerified: "already_verified",
	KindNotFound:        "not_found",
	KindConflict:        "conflict",
	KindDependency:      "dependency",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return "unknown"
}

// HTTPStatus maps a kind to the status code the API answers with.
func (k Kind) HTTPStatus() int {
	switch k {
	case KindValidation, KindInvalidToken, KindExpiredToken, KindAlreadyVerified:
		return http.StatusBadRequest
	case KindAuthentication:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict:
		return http.StatusConflict
	case KindDependency:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

type Error struct {
	Kind    Kind
	Message string
	Details map[string]string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Kind.String() + ": " + e.Message + ": " + e.Err.Error()
	}
	return e.Kind.String() + ": " + e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches another *Error of the same kind, so sentinel values like
// ErrInvalidToken work with errors.Is regardless of message.
func (e *Error) Is(target error) bool {
	var t *Error
	if errors.As(target, &t) {
		return t.Kind == e.Kind && (t.Message == "" || t.Message == e.Message)
	}
	return false
}

func New(kind Kind, msg string) *Error {
	return &Error{Kind: kind, Message: msg}
}

func Wrap(kind Kind, msg string, err error) *Error {
	return &Error{Kind: kind, Message: msg, Err: err}
}

func Validation(msg string, details map[string]string) *Error {
	return &Error{Kind: KindValidation, Message: msg, Details: details}
}

func Authentication(msg string) *Error { return New(KindAuthentication, msg) }
func Forbidden(msg string) *Error      { return New(KindForbidden, msg) }
func InvalidToken(msg string) *Error   { return New(KindInvalidToken, msg) }
func ExpiredToken(msg string) *Error   { return New(KindExpiredToken, msg) }
func AlreadyVerified(msg string) *Error {
	return New(KindAlreadyVerified, msg)
}
func NotFound(msg string) *Error { return New(KindNotFound, msg) }
func Conflict(msg string, err error) *Error {
	return Wrap(KindConflict, msg, err)
}
func Dependency(msg string, err error) *Error {
	return Wrap(KindDependency, msg, err)
}
func Internal(err error) *Error {
	return Wrap(KindInternal, InternalMessage, err)
}

// KindOf reports the kind of err, KindInternal when err is unclassified.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// IsKind reports whether err carries the given kind anywhere in its chain.
func IsKind(err error, kind Kind) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == kind
}

// Sentinels for comparisons with errors.Is; they carry no message so they
// match any error of the same kind.
var (
	ErrValidation      = &Error{Kind: KindValidation}
	ErrAuthentication  = &Error{Kind: KindAuthentication}
	ErrForbidden       = &Error{Kind: KindForbidden}
	ErrInvalidToken    = &Error{Kind: KindInvalidToken}
	ErrExpiredToken    = &Error{Kind: KindExpiredToken}
	ErrAlreadyVerified = &Error{Kind: KindAlreadyVerified}
	ErrNotFound        = &Error{Kind: KindNotFound}
	ErrConflict        = &Error{Kind: KindConflict}
	ErrDependency      = &Error{Kind: KindDependency}
)
