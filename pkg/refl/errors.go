package refl

import (
	"errors"
	"fmt"
)

// ErrorKind classifies the outcome of a value assignment. Every kind except
// ErrNone is an error value that can be matched with errors.Is.
type ErrorKind uint8

const (
	ErrNone ErrorKind = iota
	// ErrSignMismatch reports a negative literal stored into an unsigned
	// destination. The value is still written as its two's complement.
	ErrSignMismatch
	// ErrOutOfRange reports a value that was clamped, or an array with too
	// many elements.
	ErrOutOfRange
	ErrInvalidFormat
	// ErrInvalidDestination reports a member, class or enum that could not be
	// resolved.
	ErrInvalidDestination
	ErrEmptyInput
	// ErrShortInput reports an array that received fewer elements than it
	// holds.
	ErrShortInput
)

var errorKindNames = [...]string{
	ErrNone:               "none",
	ErrSignMismatch:       "sign mismatch",
	ErrOutOfRange:         "out of range",
	ErrInvalidFormat:      "invalid format",
	ErrInvalidDestination: "invalid destination",
	ErrEmptyInput:         "empty input",
	ErrShortInput:         "short input",
}

func (e ErrorKind) Error() string {
	if int(e) < len(errorKindNames) {
		return errorKindNames[e]
	}
	return fmt.Sprintf("error kind %d", uint8(e))
}

// Err returns nil for ErrNone and e otherwise.
func (e ErrorKind) Err() error {
	if e == ErrNone {
		return nil
	}
	return e
}

// SetError is returned by Member.Set and Member.SetAt.
type SetError struct {
	Member string
	Input  string
	Kind   ErrorKind
}

func (e *SetError) Error() string {
	return fmt.Sprintf("set %s to %q: %s", e.Member, e.Input, e.Kind)
}

func (e *SetError) Unwrap() error { return e.Kind }

// KindOf extracts the ErrorKind carried by err. A nil error yields ErrNone
// and an unrelated error yields ErrInvalidDestination.
func KindOf(err error) ErrorKind {
	if err == nil {
		return ErrNone
	}
	var k ErrorKind
	if errors.As(err, &k) {
		return k
	}
	return ErrInvalidDestination
}

var (
	// ErrUnsupportedType is returned when a Go type has no reflected kind.
	ErrUnsupportedType = errors.New("unsupported type")
	// ErrNotRegistered is returned when a Go type has no class descriptor.
	ErrNotRegistered = errors.New("type not registered")
	// ErrNotVector is returned by vector edits on a member without a
	// dynamic container.
	ErrNotVector = errors.New("member is not a dynamic vector")
)
