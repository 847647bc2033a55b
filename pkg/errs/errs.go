// Package errs defines the ledger error taxonomy. Every failure the core can
// produce is tagged with one of these kinds so the transport layer can map it
// to a status code without string matching.
package errs

import (
	"fmt"

	"github.com/pkg/errors"
)

type Kind int

const (
	Validation Kind = iota + 1
	NotFound
	InvalidTransition
	InsufficientFunds
	WrongKind
	Conflict
	Unauthorized
)

func (k Kind) String() string {
	switch k {
	case Validation:
		return "validation"
	case NotFound:
		return "not_found"
	case InvalidTransition:
		return "invalid_transition"
	case InsufficientFunds:
		return "insufficient_funds"
	case WrongKind:
		return "wrong_kind"
	case Conflict:
		return "conflict"
	case Unauthorized:
		return "unauthorized"
	}
	return "internal"
}

type Error struct {
	Kind Kind
	Err  error
}

func (e *Error) Error() string { return e.Err.Error() }
func (e *Error) Unwrap() error { return e.Err }

func New(kind Kind, msg string) error {
	return &Error{Kind: kind, Err: errors.New(msg)}
}

func Newf(kind Kind, format string, args ...interface{}) error {
	return &Error{Kind: kind, Err: fmt.Errorf(format, args...)}
}

// Wrap tags err with kind, keeping the original cause chain.
func Wrap(kind Kind, err error, msg string) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: kind, Err: errors.Wrap(err, msg)}
}

// KindOf walks the cause chain and returns the first taxonomy kind found,
// or 0 for untagged (internal) errors.
func KindOf(err error) Kind {
	for err != nil {
		if e, ok := err.(*Error); ok {
			return e.Kind
		}
		err = errors.Unwrap(err)
	}
	return 0
}

func IsKind(err error, kind Kind) bool {
	return KindOf(err) == kind
}
