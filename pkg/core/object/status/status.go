// Package apistatus contains object status errors shared by the local
// storage, the object services and the transport.
package apistatus

import (
	"errors"
)

// Code is a numeric status transmitted over the wire.
type Code uint32

// Status codes of object operations.
const (
	CodeOK             Code = 0
	CodeInternal       Code = 1024
	CodeObjectNotFound Code = 2049
	CodeAlreadyRemoved Code = 2052
	CodeOutOfRange     Code = 2053
)

var (
	// ErrObjectNotFound is returned when requested object is missing.
	ErrObjectNotFound = errors.New("object not found")

	// ErrObjectAlreadyRemoved is returned when requested object is marked
	// as removed by a tombstone.
	ErrObjectAlreadyRemoved = errors.New("object already removed")

	// ErrObjectOutOfRange is returned when requested payload range exceeds
	// the payload length.
	ErrObjectOutOfRange = errors.New("out of range")
)

// ErrorToCode returns status code of the error. Unknown non-nil errors are
// CodeInternal.
func ErrorToCode(err error) Code {
	switch {
	case err == nil:
		return CodeOK
	case errors.Is(err, ErrObjectNotFound):
		return CodeObjectNotFound
	case errors.Is(err, ErrObjectAlreadyRemoved):
		return CodeAlreadyRemoved
	case errors.Is(err, ErrObjectOutOfRange):
		return CodeOutOfRange
	default:
		return CodeInternal
	}
}

// ErrorFromCode restores status error from the code and message received
// over the wire. Returns nil for CodeOK.
func ErrorFromCode(c Code, msg string) error {
	var base error

	switch c {
	case CodeOK:
		return nil
	case CodeObjectNotFound:
		base = ErrObjectNotFound
	case CodeAlreadyRemoved:
		base = ErrObjectAlreadyRemoved
	case CodeOutOfRange:
		base = ErrObjectOutOfRange
	default:
		return errors.New(msg)
	}

	if msg == "" || msg == base.Error() {
		return base
	}

	return &statusError{base: base, msg: msg}
}

type statusError struct {
	base error
	msg  string
}

func (e *statusError) Error() string { return e.msg }

func (e *statusError) Unwrap() error { return e.base }
