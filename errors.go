package genarena

import (
	"errors"
	"fmt"
)

// ErrDecode is matched by every error caused by a malformed arena encoding.
var ErrDecode = errors.New("genarena: malformed arena encoding")

// DecodeError describes a structural problem in an encoded arena.
//
// It satisfies errors.Is(err, ErrDecode).
type DecodeError struct {
	// Index is the offending entry in values, or -1 for the record itself.
	Index int
	// Field names the offending field ("tag", "value", "next_free", "next", "values").
	Field  string
	Reason string
}

func (e *DecodeError) Error() string {
	if e.Index < 0 {
		return fmt.Sprintf("genarena: decode %s: %s", e.Field, e.Reason)
	}
	return fmt.Sprintf("genarena: decode values[%d].%s: %s", e.Index, e.Field, e.Reason)
}

func (e *DecodeError) Unwrap() error { return ErrDecode }

func decodeErrorf(index int, field, format string, args ...any) *DecodeError {
	return &DecodeError{Index: index, Field: field, Reason: fmt.Sprintf(format, args...)}
}
