package model

import (
	"errors"
	"fmt"
)

type ErrorKind string

const (
	TransportError          ErrorKind = "TransportError"
	TimeoutError            ErrorKind = "TimeoutError"
	NotFoundError           ErrorKind = "NotFoundError"
	SignatureNotFoundError  ErrorKind = "SignatureNotFoundError"
	MalformedSignatureError ErrorKind = "MalformedSignatureError"
	DecodeError             ErrorKind = "DecodeError"
)

// Error is the user-visible failure of a decode stage. Kind is what a caller
// switches on, Message is what gets displayed.
type Error struct {
	Kind    ErrorKind `json:"kind"`
	Message string    `json:"message"`

	Err error `json:"-"`
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// NewError builds an *Error of the given kind. cause may be nil.
func NewError(kind ErrorKind, cause error, format string, args ...interface{}) *Error {
	return &Error{
		Kind:    kind,
		Message: fmt.Sprintf(format, args...),
		Err:     cause,
	}
}

// AsError extracts the *Error from an error chain, or nil.
func AsError(err error) *Error {
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return nil
}

// KindOf returns the kind of the first *Error in the chain, or "" if there is none.
func KindOf(err error) ErrorKind {
	if e := AsError(err); e != nil {
		return e.Kind
	}
	return ""
}

func IsKind(err error, kind ErrorKind) bool {
	return KindOf(err) == kind
}
