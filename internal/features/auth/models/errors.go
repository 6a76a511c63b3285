package models

import (
	"errors"
	"fmt"
)

// Kind - вид отказа в аутентификации. Наружу не отдается, только в лог.
type Kind int

const (
	KindInvalidSignature Kind = iota + 1
	KindExpired
	KindMalformedPayload
	KindUserNotFound
	KindTokenInvalid
	KindTokenExpired
)

func (k Kind) String() string {
	switch k {
	case KindInvalidSignature:
		return "invalid_signature"
	case KindExpired:
		return "expired"
	case KindMalformedPayload:
		return "malformed_payload"
	case KindUserNotFound:
		return "user_not_found"
	case KindTokenInvalid:
		return "token_invalid"
	case KindTokenExpired:
		return "token_expired"
	default:
		return "unknown"
	}
}

// AuthError - типизированный отказ одного из компонентов аутентификации.
type AuthError struct {
	Kind   Kind
	Reason string
	Cause  error
}

// Sentinel-значения для errors.Is: сравнение идет только по Kind.
var (
	ErrInvalidSignature = &AuthError{Kind: KindInvalidSignature}
	ErrExpired          = &AuthError{Kind: KindExpired}
	ErrMalformedPayload = &AuthError{Kind: KindMalformedPayload}
	ErrUserNotFound     = &AuthError{Kind: KindUserNotFound}
	ErrTokenInvalid     = &AuthError{Kind: KindTokenInvalid}
	ErrTokenExpired     = &AuthError{Kind: KindTokenExpired}
)

func NewAuthError(kind Kind, reason string, cause error) *AuthError {
	return &AuthError{Kind: kind, Reason: reason, Cause: cause}
}

func (e *AuthError) Error() string {
	msg := e.Kind.String()
	if e.Reason != "" {
		msg += ": " + e.Reason
	}
	if e.Cause != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Cause)
	}
	return msg
}

func (e *AuthError) Unwrap() error {
	return e.Cause
}

func (e *AuthError) Is(target error) bool {
	t, ok := target.(*AuthError)
	return ok && t.Kind == e.Kind
}

// KindOf возвращает вид отказа из цепочки ошибок
func KindOf(err error) (Kind, bool) {
	var authErr *AuthError
	if errors.As(err, &authErr) {
		return authErr.Kind, true
	}
	return 0, false
}
