package wire

import (
	"errors"
	"fmt"
)

// ErrorKind is the closed set of decode failure classes. All kinds are
// non-retryable for the same input: the batch's declarations could not be
// loaded and no partial graph is produced.
type ErrorKind uint8

const (
	// ErrMalformed: structurally invalid input (wrong tag, wrong arity,
	// broken framing).
	ErrMalformed ErrorKind = iota
	// ErrWrongPhase: a type node of the wrong resolution phase appeared
	// where the other phase was required.
	ErrWrongPhase
	// ErrNotSupported: the shape was recognized but is intentionally not
	// reconstructible (not enough information was retained).
	ErrNotSupported
)

func (k ErrorKind) String() string {
	switch k {
	case ErrMalformed:
		return "malformed input"
	case ErrWrongPhase:
		return "wrong phase"
	case ErrNotSupported:
		return "not supported"
	default:
		return fmt.Sprintf("ErrorKind(%d)", k)
	}
}

// DeserializationError describes why a wire graph could not be decoded.
type DeserializationError struct {
	Kind ErrorKind
	Msg  string
}

func (e *DeserializationError) Error() string {
	return "wire: " + e.Kind.String() + ": " + e.Msg
}

// KindOf extracts the failure class from an error returned by Decode.
func KindOf(err error) (ErrorKind, bool) {
	var de *DeserializationError
	if errors.As(err, &de) {
		return de.Kind, true
	}
	return 0, false
}

func malformedf(format string, args ...any) error {
	return &DeserializationError{Kind: ErrMalformed, Msg: fmt.Sprintf(format, args...)}
}

func wrongPhasef(format string, args ...any) error {
	return &DeserializationError{Kind: ErrWrongPhase, Msg: fmt.Sprintf(format, args...)}
}

func notSupportedf(format string, args ...any) error {
	return &DeserializationError{Kind: ErrNotSupported, Msg: fmt.Sprintf(format, args...)}
}
