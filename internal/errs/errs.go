// Package errs defines the error kinds used across the scan engine and the
// recovery policy attached to each kind.
package errs

import (
	"errors"
	"fmt"
)

// Kind classifies a failure so callers can apply the right recovery policy.
type Kind string

const (
	TransientFetch  Kind = "transient_fetch"
	PermanentFetch  Kind = "permanent_fetch"
	StoreIO         Kind = "store_io"
	StoreCorruption Kind = "store_corruption"
	Config          Kind = "config"
	Internal        Kind = "internal"
)

// Error wraps an underlying error with a Kind and optional symbol context.
type Error struct {
	Kind   Kind
	Symbol string
	Err    error
}

func (e *Error) Error() string {
	if e.Symbol != "" {
		return fmt.Sprintf("%s[%s]: %v", e.Kind, e.Symbol, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Kind, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

func New(kind Kind, symbol string, err error) *Error {
	return &Error{Kind: kind, Symbol: symbol, Err: err}
}

func Wrap(kind Kind, symbol, msg string, err error) *Error {
	return &Error{Kind: kind, Symbol: symbol, Err: fmt.Errorf("%s: %w", msg, err)}
}

// Is reports whether err carries the given Kind anywhere in its chain.
func Is(err error, kind Kind) bool {
	for err != nil {
		var e *Error
		if !errors.As(err, &e) {
			return false
		}
		if e.Kind == kind {
			return true
		}
		err = e.Err
	}
	return false
}
