package pipeline

import (
	"errors"
	"fmt"
)

// Rejection kinds. Match them with errors.Is.
var (
	ErrOriginForbidden    = errors.New("origin not allowed")
	ErrCaptchaRequired    = errors.New("captcha token required")
	ErrCaptchaFailed      = errors.New("captcha verification failed")
	ErrFormNotFound       = errors.New("form not found")
	ErrMissingField       = errors.New("missing required field")
	ErrMailDispatchFailed = errors.New("mail dispatch failed")
)

// Error is a terminal pipeline outcome. Kind is one of the sentinels above;
// Field names the missing field for ErrMissingField; Err carries the
// underlying cause, which is never shown to clients.
type Error struct {
	Kind  error
	Field string
	Err   error
}

func (e *Error) Error() string {
	msg := e.Kind.Error()
	if e.Field != "" {
		msg = fmt.Sprintf("%s: %s", msg, e.Field)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *Error) Is(target error) bool {
	return target == e.Kind
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Message is the short reason safe to return to a client.
func (e *Error) Message() string {
	switch e.Kind {
	case ErrOriginForbidden:
		return "Origin not allowed"
	case ErrCaptchaRequired:
		return "CAPTCHA token required"
	case ErrCaptchaFailed:
		return "CAPTCHA verification failed"
	case ErrFormNotFound:
		return "Form not found"
	case ErrMissingField:
		return "Missing required field: " + e.Field
	default:
		return "Submission failed"
	}
}

func reject(kind error) *Error {
	return &Error{Kind: kind}
}
