package geometry

import (
	"errors"
	"fmt"
)

// ErrInvalidGeometry is wrapped by every validation failure in this package.
var ErrInvalidGeometry = errors.New("geometry: invalid surface geometry")

type Error struct {
	Field  string
	Value  float64
	Reason string
}

func (e *Error) Error() string {
	return fmt.Sprintf("geometry: %s %v: %s", e.Field, e.Value, e.Reason)
}

func (e *Error) Unwrap() error {
	return ErrInvalidGeometry
}
