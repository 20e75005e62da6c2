// Package apperr is the marketplace error taxonomy shared by services, the
// HTTP layer and the API client.
//
// Services return *Error values (or wrap them); pkg/ctx turns them into
// response envelopes with the matching status, and pkg/client turns
// response statuses back into *Error.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind is the coarse class of a failure.
type Kind string

const (
	KindNetwork    Kind = "network"
	KindAuth       Kind = "auth"
	KindForbidden  Kind = "forbidden"
	KindValidation Kind = "validation"
	KindNotFound   Kind = "not_found"
	KindConflict   Kind = "conflict"
	KindServer     Kind = "server"
)

// Code is the fine-grained reason, stable across the wire.
type Code string

const (
	CodeInvalidCredentials    Code = "InvalidCredentials"
	CodeInvalidOrExpiredToken Code = "InvalidOrExpiredToken"
	CodeNotAuthorized         Code = "NotAuthorized"
	CodeAccountInactive       Code = "AccountInactive"
	CodeInvalidTransition     Code = "InvalidTransition"
	CodeInvalidInput          Code = "InvalidInput"
	CodeOutOfStock            Code = "OutOfStock"
	CodeProductUnavailable    Code = "ProductUnavailable"
	CodeEmptyCart             Code = "EmptyCart"
	CodeNotFound              Code = "NotFound"
	CodeDuplicate             Code = "Duplicate"
	CodeInUse                 Code = "InUse"
	CodeUnavailable           Code = "Unavailable"
	CodeInternal              Code = "Internal"
)

// Error is a classified failure.
type Error struct {
	Kind    Kind
	Code    Code
	Message string
	// Fields carries per-field validation messages.
	Fields map[string]string
	// Redirect is set on NotAuthorized errors produced by access checks.
	Redirect string
	Err      error
}

func (e *Error) Error() string {
	msg := e.Message
	if msg == "" {
		msg = string(e.Code)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches on Code when the target has one, otherwise on Kind, so
// errors.Is(err, apperr.ErrOutOfStock) holds for any out-of-stock error.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	if t.Code != "" {
		return e.Code == t.Code
	}
	return e.Kind == t.Kind
}

// Status is the HTTP status for the error's kind.
func (e *Error) Status() int {
	switch e.Kind {
	case KindAuth:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	case KindValidation:
		return http.StatusUnprocessableEntity
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict:
		return http.StatusConflict
	case KindNetwork:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// WithMessage returns a copy of e with msg.
func (e *Error) WithMessage(msg string) *Error {
	c := *e
	c.Message = msg
	return &c
}

// Sentinels for errors.Is.
var (
	ErrInvalidCredentials    = &Error{Kind: KindAuth, Code: CodeInvalidCredentials, Message: "invalid email or password"}
	ErrInvalidOrExpiredToken = &Error{Kind: KindAuth, Code: CodeInvalidOrExpiredToken, Message: "session is invalid or has expired"}
	ErrNotAuthorized         = &Error{Kind: KindForbidden, Code: CodeNotAuthorized, Message: "not authorized"}
	ErrInvalidTransition     = &Error{Kind: KindValidation, Code: CodeInvalidTransition, Message: "invalid status transition"}
	ErrOutOfStock            = &Error{Kind: KindConflict, Code: CodeOutOfStock, Message: "not enough stock"}
	ErrProductUnavailable    = &Error{Kind: KindValidation, Code: CodeProductUnavailable, Message: "product is not available"}
	ErrEmptyCart             = &Error{Kind: KindValidation, Code: CodeEmptyCart, Message: "cart is empty"}
	ErrNotFound              = &Error{Kind: KindNotFound, Code: CodeNotFound, Message: "not found"}

	// Kind-only targets.
	ErrNetwork    = &Error{Kind: KindNetwork}
	ErrAuth       = &Error{Kind: KindAuth}
	ErrForbidden  = &Error{Kind: KindForbidden}
	ErrValidation = &Error{Kind: KindValidation}
	ErrConflict   = &Error{Kind: KindConflict}
	ErrServer     = &Error{Kind: KindServer}
)

// ── Constructors ─────────────────────────────────────────────────────────────

// NotAuthorized is a 403 carrying the redirect computed by access control.
// A redirect to the login route is an auth failure instead.
func NotAuthorized(redirect string, loginRoute bool) *Error {
	if loginRoute {
		return &Error{Kind: KindAuth, Code: CodeNotAuthorized, Message: "authentication required", Redirect: redirect}
	}
	return &Error{Kind: KindForbidden, Code: CodeNotAuthorized, Message: "not authorized", Redirect: redirect}
}

// Inactive is a 403 for an account whose status does not allow the operation.
func Inactive(redirect string) *Error {
	return &Error{Kind: KindForbidden, Code: CodeAccountInactive, Message: "account is not active", Redirect: redirect}
}

// Invalid is a validation failure with a message.
func Invalid(code Code, format string, args ...any) *Error {
	return &Error{Kind: KindValidation, Code: code, Message: fmt.Sprintf(format, args...)}
}

// InvalidFields is a validation failure with per-field messages.
func InvalidFields(fields map[string]string) *Error {
	return &Error{Kind: KindValidation, Code: CodeInvalidInput, Message: "validation failed", Fields: fields}
}

// Transition wraps a state-machine error as InvalidTransition.
func Transition(err error) *Error {
	return &Error{Kind: KindValidation, Code: CodeInvalidTransition, Message: err.Error(), Err: err}
}

// NotFound names the missing entity.
func NotFound(entity string) *Error {
	return &Error{Kind: KindNotFound, Code: CodeNotFound, Message: entity + " not found"}
}

// Conflict is a 409 with code.
func Conflict(code Code, format string, args ...any) *Error {
	return &Error{Kind: KindConflict, Code: code, Message: fmt.Sprintf(format, args...)}
}

// Server wraps an unexpected failure.
func Server(err error) *Error {
	return &Error{Kind: KindServer, Code: CodeInternal, Message: "internal server error", Err: err}
}

// Network wraps a transport failure seen by the client.
func Network(err error) *Error {
	return &Error{Kind: KindNetwork, Code: CodeUnavailable, Message: "service unreachable", Err: err}
}

// FromStatus classifies an HTTP response. message is shown verbatim.
func FromStatus(status int, code Code, message string) *Error {
	e := &Error{Code: code, Message: message}
	switch {
	case status == http.StatusUnauthorized:
		e.Kind = KindAuth
		if e.Code == "" {
			e.Code = CodeInvalidOrExpiredToken
		}
	case status == http.StatusForbidden:
		e.Kind = KindForbidden
		if e.Code == "" {
			e.Code = CodeNotAuthorized
		}
	case status == http.StatusNotFound:
		e.Kind = KindNotFound
		if e.Code == "" {
			e.Code = CodeNotFound
		}
	case status == http.StatusConflict:
		e.Kind = KindConflict
	case status >= 400 && status < 500:
		e.Kind = KindValidation
	default:
		e.Kind = KindServer
	}
	return e
}

// ── Inspection ───────────────────────────────────────────────────────────────

// As extracts the *Error in err's chain.
func As(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// KindOf returns err's kind; unclassified errors are server errors.
func KindOf(err error) Kind {
	if e, ok := As(err); ok {
		return e.Kind
	}
	return KindServer
}

// CodeOf returns err's code, or "".
func CodeOf(err error) Code {
	if e, ok := As(err); ok {
		return e.Code
	}
	return ""
}
