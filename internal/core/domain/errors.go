package domain

import "errors"

// Error kinds. Every error returned by a service wraps exactly one of these.
var (
	ErrValidation   = errors.New("validation error")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrNotFound     = errors.New("resource not found")
	ErrConflict     = errors.New("conflict")
	ErrInternal     = errors.New("internal server error")
	ErrUpstream     = errors.New("upstream provider error")
)

// Error pairs a kind with a message that is safe to show to clients
type Error struct {
	Kind    error
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

// Is lets errors.Is match on the kind
func (e *Error) Is(target error) bool {
	return e.Kind == target
}

func (e *Error) Unwrap() error {
	return e.Err
}

func newError(kind error, msg string) *Error {
	return &Error{Kind: kind, Message: msg}
}

// Validation reports malformed or missing input
func Validation(msg string) *Error { return newError(ErrValidation, msg) }

// Unauthorized reports a missing, invalid or expired credential
func Unauthorized(msg string) *Error { return newError(ErrUnauthorized, msg) }

// Forbidden reports an authenticated caller lacking permission
func Forbidden(msg string) *Error { return newError(ErrForbidden, msg) }

// NotFound reports a referenced entity that does not exist
func NotFound(msg string) *Error { return newError(ErrNotFound, msg) }

// Conflict reports a duplicate unique key or a lost concurrent update
func Conflict(msg string) *Error { return newError(ErrConflict, msg) }

// Upstream reports a failing third-party provider
func Upstream(msg string, err error) *Error {
	return &Error{Kind: ErrUpstream, Message: msg, Err: err}
}

// Internal wraps an unexpected failure
func Internal(msg string, err error) *Error {
	return &Error{Kind: ErrInternal, Message: msg, Err: err}
}

// PublicMessage returns the client-safe message for err
func PublicMessage(err error) string {
	var e *Error
	if errors.As(err, &e) && !errors.Is(e.Kind, ErrInternal) {
		return e.Message
	}
	return ErrInternal.Error()
}

// Common errors
var (
	ErrInvalidCredentials = Unauthorized("invalid credentials")
	ErrEmailNotVerified   = Forbidden("please verify your email first")
	ErrUserNotFound       = NotFound("user not found")
	ErrUserAlreadyExists  = Conflict("user already exists")
)
