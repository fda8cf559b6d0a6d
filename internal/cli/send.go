package cli

import (
	"context"
	"io"
	"net"
	"os"

	"github.com/cruciblehq/tracebackd/internal/frame"
	"github.com/pkg/errors"
)

// Source of the message when none is given on the command line.
var stdin io.Reader = os.Stdin

// Represents the 'tracebackd send' command.
type SendCmd struct {
	PID     int32  `help:"Process ID to report. Defaults to the sender's own." default:"0"`
	MaxLen  uint64 `name:"max-len" env:"TRACEBACKD_MAX_LEN" default:"16384" help:"Largest message the daemon accepts, in bytes."`
	MinLen  uint64 `name:"min-len" env:"TRACEBACKD_MIN_LEN" default:"3" help:"Smallest message the daemon accepts, in bytes, terminator included."`
	Lenient bool   `help:"Send without a NUL terminator."`
	Message string `arg:"" optional:"" help:"Message text. Read from standard input when omitted."`
}

// Executes the send command.
//
// Frames the message the way the daemon expects and writes it on a single
// connection. The daemon never replies, so success only means the message
// was written.
func (c *SendCmd) Run(ctx context.Context) error {
	text := []byte(c.Message)
	if c.Message == "" {
		b, err := io.ReadAll(io.LimitReader(stdin, int64(c.MaxLen)+1))
		if err != nil {
			return errors.Wrap(err, "read message")
		}
		text = b
	}

	pid := c.PID
	if pid == 0 {
		pid = int32(os.Getpid())
	}

	// The daemon drops out-of-range messages without telling the sender.
	minLen := c.MinLen
	if c.Lenient || minLen == 0 {
		minLen = 1
	}

	msg := frame.Encode(pid, text, c.Lenient)
	if size := uint64(len(msg) - frame.HeaderSize); size < minLen || size > c.MaxLen {
		return errors.Errorf("message of %d bytes outside [%d, %d]", size, minLen, c.MaxLen)
	}

	var d net.Dialer
	conn, err := d.DialContext(ctx, "unix", socketPath())
	if err != nil {
		return errors.Wrap(err, "connect to daemon")
	}
	defer conn.Close()

	if _, err := conn.Write(msg); err != nil {
		return errors.Wrap(err, "send message")
	}
	return nil
}
