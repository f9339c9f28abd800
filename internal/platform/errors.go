package platform

import (
	"errors"
	"fmt"
)

// ErrorKind classifies delivery failures the marketplace reacts to.
type ErrorKind int

const (
	KindUnknown ErrorKind = iota
	KindForbidden
	KindNotFound
	KindUnavailable
)

func (k ErrorKind) String() string {
	switch k {
	case KindForbidden:
		return "forbidden"
	case KindNotFound:
		return "not found"
	case KindUnavailable:
		return "unavailable"
	default:
		return "unknown"
	}
}

// Error is a failed call to the chat platform. Callers use errors.As or
// the Is* helpers:
//
//	if platform.IsForbidden(err) { ... }
type Error struct {
	Kind ErrorKind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("platform: %s: %s", e.Op, e.Kind)
	}
	return fmt.Sprintf("platform: %s: %s: %v", e.Op, e.Kind, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// NewError builds an *Error.
func NewError(kind ErrorKind, op string, err error) error {
	return &Error{Kind: kind, Op: op, Err: err}
}

// KindOf returns the kind of the first *Error in err's chain.
func KindOf(err error) ErrorKind {
	var perr *Error
	if errors.As(err, &perr) {
		return perr.Kind
	}
	return KindUnknown
}

func IsForbidden(err error) bool { return KindOf(err) == KindForbidden }
func IsNotFound(err error) bool  { return KindOf(err) == KindNotFound }
