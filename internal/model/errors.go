package model

import (
	"errors"
)

// Store level sentinels. Services translate them into AuthError kinds.
var (
	ErrNotFound         = errors.New("not found")
	ErrAlreadyExists    = errors.New("already exists")
	ErrPasswordMismatch = errors.New("password mismatch")
)

// ErrorKind classifies failures surfaced to the transport layer.
type ErrorKind int

const (
	KindInternal ErrorKind = iota
	KindAlreadyExists
	KindInvalidCredentials
	KindInvalidCurrentPassword
	KindInvalidToken
	KindNotFound
	KindInvalidArgument
)

func (k ErrorKind) String() string {
	switch k {
	case KindAlreadyExists:
		return "already_exists"
	case KindInvalidCredentials:
		return "invalid_credentials"
	case KindInvalidCurrentPassword:
		return "invalid_current_password"
	case KindInvalidToken:
		return "invalid_token"
	case KindNotFound:
		return "not_found"
	case KindInvalidArgument:
		return "invalid_argument"
	default:
		return "internal"
	}
}

// AuthError is a classified domain error. Message is safe to show to clients;
// Err carries the underlying cause for server side logs.
type AuthError struct {
	Kind    ErrorKind
	Message string
	Err     error
}

// NewAuthError creates an AuthError of the given kind.
func NewAuthError(kind ErrorKind, message string, err error) *AuthError {
	return &AuthError{Kind: kind, Message: message, Err: err}
}

func (e *AuthError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *AuthError) Unwrap() error {
	return e.Err
}

// Is reports whether target is an AuthError of the same kind.
func (e *AuthError) Is(target error) bool {
	t, ok := target.(*AuthError)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

// Sentinels for errors.Is matching by kind.
var (
	ErrUserExists             = NewAuthError(KindAlreadyExists, "user with this email already exists", nil)
	ErrEmailTaken             = NewAuthError(KindAlreadyExists, "email is already taken", nil)
	ErrInvalidCredentials     = NewAuthError(KindInvalidCredentials, "invalid credentials", nil)
	ErrInvalidCurrentPassword = NewAuthError(KindInvalidCurrentPassword, "invalid current password", nil)
	ErrInvalidToken           = NewAuthError(KindInvalidToken, "invalid token", nil)
	ErrInvalidRefreshToken    = NewAuthError(KindInvalidToken, "invalid refresh token", nil)
	ErrUserNotFound           = NewAuthError(KindNotFound, "user not found", nil)
	ErrPasswordTooLong        = NewAuthError(KindInvalidArgument, "password must be at most 72 bytes", nil)
)

// KindOf returns the kind of err. Unclassified errors are internal.
func KindOf(err error) ErrorKind {
	var ae *AuthError
	if errors.As(err, &ae) {
		return ae.Kind
	}
	return KindInternal
}

// PublicMessage returns the client facing message for err.
func PublicMessage(err error) string {
	var ae *AuthError
	if errors.As(err, &ae) && ae.Kind != KindInternal {
		return ae.Message
	}
	return "internal server error"
}
