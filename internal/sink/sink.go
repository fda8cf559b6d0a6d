package sink

import (
	"errors"

	"github.com/cruciblehq/tracebackd/internal/frame"
)

// Receives decoded messages.
type Sink interface {
	Emit(msg frame.Message) error
}

// Adapts an ordinary function to a [Sink].
type Func func(msg frame.Message) error

// Calls f(msg).
func (f Func) Emit(msg frame.Message) error {
	return f(msg)
}

type multi []Sink

// Returns a sink that emits to every given sink in order.
//
// All sinks are tried even if one fails; the failures are joined.
func Multi(sinks ...Sink) Sink {
	return multi(sinks)
}

func (m multi) Emit(msg frame.Message) error {
	var errs []error
	for _, s := range m {
		if err := s.Emit(msg); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
