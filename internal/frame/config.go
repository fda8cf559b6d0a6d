package frame

import (
	"time"

	"github.com/pkg/errors"
)

const (

	// Default upper bound on the payload length. Senders must respect it too.
	DefaultMaxLen uint64 = 16384

	// Default lower bound on the payload length in the strict variant. Three
	// bytes leave room for at least one character, a line ending and the
	// terminating NUL.
	DefaultMinLen uint64 = 3

	// Hard ceiling for MaxLen, keeping every accepted length addressable.
	maxAllowedLen uint64 = 1 << 30
)

// Holds the framing parameters shared by sender and receiver.
//
// The zero value is not usable; start from [DefaultConfig].
type Config struct {
	MaxLen      uint64        // Largest accepted payload length.
	MinLen      uint64        // Smallest accepted payload length (strict variant only).
	Lenient     bool          // Accept unterminated payloads and any non-zero length.
	ReadTimeout time.Duration // Per-connection read deadline. Zero blocks indefinitely.
}

// Returns the strict configuration with the reference limits.
func DefaultConfig() Config {
	return Config{
		MaxLen: DefaultMaxLen,
		MinLen: DefaultMinLen,
	}
}

// Checks that the configuration describes a usable length window.
func (c Config) Validate() error {
	if c.MaxLen == 0 || c.MaxLen > maxAllowedLen {
		return errors.Wrapf(ErrConfig, "max length %d outside [1, %d]", c.MaxLen, maxAllowedLen)
	}
	if c.ReadTimeout < 0 {
		return errors.Wrapf(ErrConfig, "negative read timeout %s", c.ReadTimeout)
	}
	if c.Lenient {
		return nil
	}
	if c.MinLen < 1 {
		return errors.Wrap(ErrConfig, "strict framing requires a minimum length of at least 1")
	}
	if c.MinLen > c.MaxLen {
		return errors.Wrapf(ErrConfig, "min length %d exceeds max length %d", c.MinLen, c.MaxLen)
	}
	return nil
}

// Effective lower bound. The lenient variant only rejects empty payloads.
func (c Config) minLen() uint64 {
	if c.Lenient {
		return 1
	}
	return c.MinLen
}

// Size of the payload buffer for a message of length n. The strict variant
// reserves one extra byte so the text is always followed by a terminator.
func (c Config) bufferSize(n uint64) int {
	if c.Lenient {
		return int(n)
	}
	return int(n) + 1
}

// Checks the header fields against the configured bounds.
func (c Config) check(h Header) error {
	if h.PID < 1 {
		return errors.Wrapf(ErrInvalidPID, "pid %d", h.PID)
	}
	if h.Len < c.minLen() || h.Len > c.MaxLen {
		return errors.Wrapf(ErrLength, "length %d outside [%d, %d]", h.Len, c.minLen(), c.MaxLen)
	}
	return nil
}
