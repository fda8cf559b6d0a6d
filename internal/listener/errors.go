package listener

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidPath  = errors.New("invalid socket path")
	ErrPathConflict = errors.New("path exists and is not a socket")
	ErrIO           = errors.New("socket i/o error")
	ErrAccept       = errors.New("accept failed")
)

// Describes a listener failure.
//
// Kind is one of the package sentinels and Err the underlying cause, if any.
// Both are reachable through [errors.Is] and [errors.As].
type Error struct {
	Kind error
	Op   string
	Path string
	Err  error
}

func (e *Error) Error() string {
	msg := fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Kind)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}
