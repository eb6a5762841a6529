package domain

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound   = errors.New("not found")
	ErrBadRequest = errors.New("bad request")
)

// Error is a classified failure with a message that is safe to show to
// API callers. It unwraps to one of the sentinel errors above.
type Error struct {
	Kind    error
	Message string
}

func (e *Error) Error() string { return e.Message }

func (e *Error) Unwrap() error { return e.Kind }

// NotFound returns an error classified as ErrNotFound.
func NotFound(msg string) error {
	return &Error{Kind: ErrNotFound, Message: msg}
}

// BadRequest returns an error classified as ErrBadRequest.
func BadRequest(msg string) error {
	return &Error{Kind: ErrBadRequest, Message: msg}
}

func BadRequestf(format string, args ...any) error {
	return BadRequest(fmt.Sprintf(format, args...))
}

// Message returns the caller-facing message carried by err, or fallback
// when err is not a classified error.
func Message(err error, fallback string) string {
	var de *Error
	if errors.As(err, &de) {
		return de.Message
	}
	return fallback
}
