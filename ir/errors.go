package ir

import (
	"github.com/cockroachdb/errors"
)

var (
	// ErrInvalidType is returned when a type is constructed from parts that
	// do not form a valid type, or a handle refers to the wrong kind of type.
	ErrInvalidType = errors.New("invalid type")

	// ErrUnregisteredOperation is returned when an operation's dialect is not
	// registered and the Context does not allow unregistered dialects.
	ErrUnregisteredOperation = errors.New("unregistered operation")

	// ErrWrongTarget is returned when an insertion point is asked to insert a
	// construct that does not belong at its position.
	ErrWrongTarget = errors.New("wrong insertion target")

	// ErrForeignValue is returned when a value is used outside the function
	// that defines it.
	ErrForeignValue = errors.New("value belongs to another function")
)

func errorf(kind error, format string, args ...any) error {
	return errors.Wrapf(kind, format, args...)
}
