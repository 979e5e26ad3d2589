// Package errors defines the sentinel errors shared by the index, the query
// parser and the command-line layer, plus a wrapper that attaches the failing
// operation and a human-readable detail.
package errors

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidID        = errors.New("invalid document id")
	ErrInvalidWord      = errors.New("invalid word")
	ErrInvalidQuery     = errors.New("invalid query")
	ErrDocumentNotFound = errors.New("document not found")
	ErrInvalidConfig    = errors.New("invalid configuration")
)

// IndexError records which operation rejected its input and why.
type IndexError struct {
	Op      string
	Err     error
	Message string
}

func (e *IndexError) Error() string {
	if e.Op == "" {
		return fmt.Sprintf("%s: %s", e.Err.Error(), e.Message)
	}
	return fmt.Sprintf("%s: %s: %s", e.Op, e.Err.Error(), e.Message)
}

func (e *IndexError) Unwrap() error {
	return e.Err
}

func New(op string, sentinel error, message string) *IndexError {
	return &IndexError{
		Op:      op,
		Err:     sentinel,
		Message: message,
	}
}

func Newf(op string, sentinel error, format string, args ...any) *IndexError {
	return &IndexError{
		Op:      op,
		Err:     sentinel,
		Message: fmt.Sprintf(format, args...),
	}
}

// IsInputError reports whether err was caused by malformed caller input
// rather than by an infrastructure failure.
func IsInputError(err error) bool {
	return errors.Is(err, ErrInvalidID) ||
		errors.Is(err, ErrInvalidWord) ||
		errors.Is(err, ErrInvalidQuery) ||
		errors.Is(err, ErrDocumentNotFound)
}

// ExitCode maps an error to the process exit status used by the CLI.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return 0
	case errors.Is(err, ErrInvalidID), errors.Is(err, ErrInvalidWord):
		return 65
	case errors.Is(err, ErrInvalidQuery):
		return 64
	case errors.Is(err, ErrDocumentNotFound):
		return 66
	case errors.Is(err, ErrInvalidConfig):
		return 78
	default:
		return 1
	}
}
