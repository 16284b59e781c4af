// Package errs classifies pager failures so the controller can decide how to
// report them without inspecting error strings.
package errs

import (
	"errors"
	"fmt"
)

// Kind is the failure class of an error.
type Kind int

const (
	Other Kind = iota
	IO
	InvalidPattern
	ResourceExhausted
	InvalidEscapeSequence
	Encoding
)

func (k Kind) String() string {
	switch k {
	case IO:
		return "io"
	case InvalidPattern:
		return "invalid pattern"
	case ResourceExhausted:
		return "resource exhausted"
	case InvalidEscapeSequence:
		return "invalid escape sequence"
	case Encoding:
		return "encoding"
	default:
		return "other"
	}
}

var (
	// ErrEmptyInput is returned when a source has no bytes to page.
	ErrEmptyInput = errors.New("empty input")
	// ErrPairsExhausted is returned when the color pair table is full.
	ErrPairsExhausted = errors.New("color pair table exhausted")
)

// Error carries a Kind and the operation that failed.
type Error struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	if e.Op == "" {
		return e.Err.Error()
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// E wraps err with a kind and operation. A nil err yields nil.
func E(kind Kind, op string, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: kind, Op: op, Err: err}
}

// KindOf reports the outermost Kind found in err's chain.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return Other
}

// Is reports whether err carries the given kind.
func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}
