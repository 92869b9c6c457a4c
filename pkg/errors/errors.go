package errors

import (
	"errors"
	"fmt"
)

// LookupFailure is returned when the registry answers a tag listing with
// anything other than 200, usually because the image or username is wrong.
type LookupFailure struct {
	error

	StatusCode int
}

func NewLookupFailure(statusCode int, format string, a ...interface{}) *LookupFailure {
	return &LookupFailure{error: newError(format, a...), StatusCode: statusCode}
}

// IsLookupFailure checks if the error is of type LookupFailure.
func IsLookupFailure(err error) bool {
	var lookup *LookupFailure
	return errors.As(err, &lookup)
}

// TransportFailure is returned once every attempt of a request failed at the
// network level.
type TransportFailure struct {
	error
}

func NewTransportFailure(err error) *TransportFailure {
	return &TransportFailure{err}
}

func (t *TransportFailure) Unwrap() error {
	return t.error
}

func IsTransportFailure(err error) bool {
	var transport *TransportFailure
	return errors.As(err, &transport)
}

// ConflictingFilterError is returned when mutually exclusive filters were
// given together.
type ConflictingFilterError struct {
	error
}

func NewConflictingFilterError(format string, a ...interface{}) *ConflictingFilterError {
	return &ConflictingFilterError{newError(format, a...)}
}

func IsConflictingFilter(err error) bool {
	var conflict *ConflictingFilterError
	return errors.As(err, &conflict)
}

func newError(format string, a ...interface{}) error {
	if len(a) == 0 {
		return errors.New(format)
	}

	return fmt.Errorf(format, a...)
}
