package settings

import (
	"errors"
	"fmt"
)

var (
	// ErrMalformed indicates a payload that is not a well-formed object or
	// holds a value of the wrong type.
	ErrMalformed = errors.New("settings: malformed payload")

	// ErrOutOfRange indicates a well-typed value outside its valid range.
	ErrOutOfRange = errors.New("settings: value out of range")
)

// ParseError reports why a payload was rejected.
type ParseError struct {
	Field string
	Value any
	Err   error
	Cause error
}

func (e *ParseError) Error() string {
	msg := e.Err.Error()
	if e.Field != "" {
		msg = fmt.Sprintf("%s: %s=%v", msg, e.Field, e.Value)
	}
	if e.Cause != nil {
		msg += " (caused by: " + e.Cause.Error() + ")"
	}
	return msg
}

func (e *ParseError) Unwrap() []error {
	if e.Cause == nil {
		return []error{e.Err}
	}
	return []error{e.Err, e.Cause}
}

func outOfRange(field string, value any) error {
	return &ParseError{Field: field, Value: value, Err: ErrOutOfRange}
}
