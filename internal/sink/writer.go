package sink

import (
	"fmt"
	"io"
	"os"
	"sync"

	rotate "github.com/Psiphon-Inc/rotate-safe-writer"
	"github.com/cruciblehq/tracebackd/internal/frame"
	"github.com/pkg/errors"
)

const (

	// Permission mode for record files created by [OpenFile].
	fileMode os.FileMode = 0600

	// Times a rotated record file is reopened before a write fails.
	fileRetries = 3
)

// Writes one text record per message.
//
// A record is the sender's pid and the declared length on one line,
// followed by the text on the next:
//
//	1234:6:
//	hi
type Writer struct {
	mu sync.Mutex
	w  io.Writer
}

// Creates a record writer over w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: w}
}

// Writes the record for msg.
func (s *Writer) Emit(msg frame.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := fmt.Fprintf(s.w, "%d:%d:\n%s\n", msg.PID, msg.Len, msg.Text); err != nil {
		return errors.Wrap(err, "write record")
	}
	return nil
}

// Closes the underlying writer if it is an [io.Closer].
func (s *Writer) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if c, ok := s.w.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

// Opens a record file for appending.
//
// The file is created if missing and reopened transparently when it is
// moved or removed by log rotation.
func OpenFile(path string) (*Writer, error) {
	f, err := rotate.NewRotatableFileWriter(path, fileRetries, true, fileMode)
	if err != nil {
		return nil, errors.Wrapf(err, "open record file %s", path)
	}
	return NewWriter(f), nil
}
