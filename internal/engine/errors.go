package engine

import "errors"

var (
	// ErrDestroyed is the panic value for any call on a destroyed engine.
	ErrDestroyed = errors.New("engine: use of destroyed engine")

	// ErrInvalidTimestamp indicates a NaN or infinite animate timestamp.
	ErrInvalidTimestamp = errors.New("engine: invalid timestamp")
)

// Error records which lifecycle operation failed.
type Error struct {
	Op  string
	Err error
}

func (e *Error) Error() string {
	return "engine: " + e.Op + ": " + e.Err.Error()
}

func (e *Error) Unwrap() error {
	return e.Err
}
