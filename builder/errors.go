package builder

import (
	"github.com/cockroachdb/errors"
)

var (
	// ErrUnsupportedConversion is returned when an abstract value, element
	// kind or type has no counterpart on the other side of a conversion.
	ErrUnsupportedConversion = errors.New("unsupported conversion")

	// ErrNotRanked is returned when a shape is requested from a type that has
	// no rank.
	ErrNotRanked = errors.New("type is not ranked")

	// ErrNotOpen is returned when a function builder is asked to emit after
	// its body was closed by a return.
	ErrNotOpen = errors.New("function builder is not open")

	// ErrDoubleReturn marks ErrNotOpen errors caused by a second return.
	ErrDoubleReturn = errors.New("return already emitted")

	// ErrInvalidName is returned when a function is declared without a name.
	ErrInvalidName = errors.New("invalid function name")

	// ErrVerification is returned when the built module does not verify.
	ErrVerification = errors.New("module verification failed")
)
