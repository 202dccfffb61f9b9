package eos

import (
	"errors"
	"fmt"
)

// Kind is the high-level category of a kernel error, matching the error
// kinds the user error callback is documented to receive.
type Kind string

const (
	KindCreatingTask      Kind = "CREATING_TASK"
	KindCreatingSemaphore Kind = "CREATING_SEMAPHORE"
	KindCreatingQueue     Kind = "CREATING_QUEUE"
	KindTakingSemaphore   Kind = "TAKING_SEMAPHORE"
	KindDelayInHandler    Kind = "DELAY_IN_HANDLER"
	KindYieldInHandler    Kind = "YIELD_IN_HANDLER"
	KindInstallingHandler Kind = "INSTALLING_HANDLER"
)

// Error is a structured kernel error with the operation that failed and
// the high-level kind, so callers can branch on Kind rather than parsing
// strings.
type Error struct {
	Op    string // e.g. "TaskCreate", "SemaphoreTake"
	Kind  Kind
	Msg   string
	Inner error
}

func (e *Error) Error() string {
	msg := e.Msg
	if msg == "" {
		msg = string(e.Kind)
	}
	if e.Op != "" {
		return fmt.Sprintf("eos: %s: %s", e.Op, msg)
	}
	return fmt.Sprintf("eos: %s", msg)
}

// Unwrap supports errors.Is/errors.As over the wrapped cause.
func (e *Error) Unwrap() error {
	return e.Inner
}

// Is reports equality by Kind, so errors.Is(err, &Error{Kind: KindCreatingTask})
// matches any *Error of that kind regardless of Op or Msg.
func (e *Error) Is(target error) bool {
	te, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == te.Kind
}

// NewError constructs a structured error of the given kind.
func NewError(op string, kind Kind, msg string) *Error {
	return &Error{Op: op, Kind: kind, Msg: msg}
}

// WrapError wraps inner with op context, preserving inner's Kind if it is
// itself an *Error.
func WrapError(op string, inner error) *Error {
	if inner == nil {
		return nil
	}
	if e, ok := inner.(*Error); ok {
		return &Error{Op: op, Kind: e.Kind, Msg: e.Msg, Inner: e.Inner}
	}
	return &Error{Op: op, Msg: inner.Error(), Inner: inner}
}

// IsKind reports whether err is an *Error of the given kind.
func IsKind(err error, kind Kind) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind == kind
	}
	return false
}
