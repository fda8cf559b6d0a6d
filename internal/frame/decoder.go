package frame

import (
	"bytes"
	"io"
	"time"

	"github.com/awnumar/memguard"
	"github.com/pkg/errors"
)

// The read side of an accepted connection.
//
// Connections that also implement SetReadDeadline get a deadline when
// [Config.ReadTimeout] is set.
type Conn interface {
	io.Reader
}

// Allocates payload buffers. Replaced in tests.
var newBuffer = memguard.NewBuffer

type readDeadliner interface {
	SetReadDeadline(t time.Time) error
}

// A decoded message.
type Message struct {
	PID  int32  // Process ID of the sender.
	Len  uint64 // Declared payload length.
	Text string // Payload up to its terminator, without trailing line endings.
}

// Tagged result of [Decoder.Decode].
//
// Message is only meaningful when Reason is [ReasonOK]. Header is set once
// the header has been read, including on discards. Err holds the underlying
// cause of a failure and is meant for local diagnostics only.
type Result struct {
	Reason  Reason
	Header  Header
	Message Message
	Err     error
}

// Whether a message was decoded.
func (r Result) OK() bool {
	return r.Reason == ReasonOK
}

// Decodes one message per connection.
type Decoder struct {
	cfg Config
}

// Creates a decoder for the given configuration.
func NewDecoder(cfg Config) (*Decoder, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Decoder{cfg: cfg}, nil
}

// Returns the decoder's configuration.
func (d *Decoder) Config() Config {
	return d.cfg
}

// Reads and validates a single message from conn.
//
// The header is bounds-checked before the payload buffer is allocated. The
// payload lives in locked memory that is wiped and released before Decode
// returns, whatever the outcome. Decode does not close conn.
func (d *Decoder) Decode(conn Conn) Result {
	if err := d.open(conn); err != nil {
		return Result{Reason: ReasonStreamSetup, Err: err}
	}

	hdr, err := ReadHeader(conn)
	if err != nil {
		return Result{Reason: ReasonHeaderMalformed, Err: errors.Wrap(err, "read header")}
	}

	if err := d.cfg.check(hdr); err != nil {
		return Result{Reason: ReasonHeaderMalformed, Header: hdr, Err: err}
	}

	buf, err := allocate(d.cfg.bufferSize(hdr.Len))
	if err != nil {
		return Result{Reason: ReasonAllocation, Header: hdr, Err: err}
	}
	defer buf.Destroy()

	payload := buf.Bytes()[:hdr.Len]
	if _, err := io.ReadFull(conn, payload); err != nil {
		return Result{Reason: ReasonPayloadShort, Header: hdr, Err: errors.Wrap(err, "read payload")}
	}

	if !d.cfg.Lenient && payload[len(payload)-1] != 0 {
		return Result{Reason: ReasonPayloadUnterminated, Header: hdr}
	}

	return Result{
		Reason: ReasonOK,
		Header: hdr,
		Message: Message{
			PID:  hdr.PID,
			Len:  hdr.Len,
			Text: string(Trim(terminated(payload))),
		},
	}
}

// Applies the read deadline, if one is configured and supported.
func (d *Decoder) open(conn Conn) error {
	if d.cfg.ReadTimeout <= 0 {
		return nil
	}
	rd, ok := conn.(readDeadliner)
	if !ok {
		return nil
	}
	return errors.Wrap(rd.SetReadDeadline(time.Now().Add(d.cfg.ReadTimeout)), "set read deadline")
}

// Allocates a zeroed locked buffer. memguard panics when it cannot obtain
// memory, which is turned into an error here.
func allocate(size int) (buf *memguard.LockedBuffer, err error) {
	defer func() {
		if r := recover(); r != nil {
			buf, err = nil, errors.Errorf("allocate %d bytes: %v", size, r)
		}
	}()

	buf = newBuffer(size)
	if buf == nil || !buf.IsAlive() || buf.Size() < size {
		return nil, errors.Errorf("allocate %d bytes", size)
	}
	return buf, nil
}

// Cuts b at its first NUL byte.
func terminated(b []byte) []byte {
	if i := bytes.IndexByte(b, 0); i >= 0 {
		return b[:i]
	}
	return b
}

// Strips trailing carriage returns and line feeds.
//
// The scan runs backward from the end and stops at the first other byte.
// Trim is idempotent and returns a subslice of b.
func Trim(b []byte) []byte {
	i := len(b)
	for i > 0 && (b[i-1] == '\r' || b[i-1] == '\n') {
		i--
	}
	return b[:i]
}
