package listener

import (
	"io/fs"
	"net"
	"os"

	"github.com/pkg/errors"
	"golang.org/x/sys/unix"
)

const (

	// Number of pending connections the kernel queues before refusing more.
	DefaultBacklog = 5

	// Longest accepted socket path. POSIX leaves sun_path's size open; 4.4BSD
	// uses 104 bytes, glibc 108 and some systems 92. The smallest is used.
	MaxPathLen = 92
)

// Holds listener configuration.
type Config struct {
	Path    string // Filesystem path of the socket.
	Backlog int    // Listen backlog. Zero or negative uses [DefaultBacklog].
}

// A bound and listening Unix domain socket.
type Endpoint struct {
	path string
	ln   *net.UnixListener
}

// Binds and listens on the socket described by cfg.
//
// A stale socket at the path is removed. Any other existing file makes
// Create fail with [ErrPathConflict] without touching it.
func Create(cfg Config) (*Endpoint, error) {
	path := cfg.Path
	if len(path) == 0 || len(path) > MaxPathLen {
		return nil, fail(ErrInvalidPath, "create", path, errors.Errorf("length %d outside [1, %d]", len(path), MaxPathLen))
	}

	if err := clearStale(path); err != nil {
		return nil, err
	}

	backlog := cfg.Backlog
	if backlog <= 0 {
		backlog = DefaultBacklog
	}

	ln, err := bind(path, backlog)
	if err != nil {
		return nil, err
	}

	return &Endpoint{path: path, ln: ln}, nil
}

// Inspects the path and removes a leftover socket.
func clearStale(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fail(ErrIO, "stat", path, err)
	}

	if info.Mode()&fs.ModeSocket == 0 {
		return fail(ErrPathConflict, "create", path, nil)
	}

	if err := os.Remove(path); err != nil {
		return fail(ErrIO, "remove stale socket", path, err)
	}
	return nil
}

// Creates the socket descriptor directly so the backlog is exactly the one
// requested rather than the system default used by [net.Listen].
func bind(path string, backlog int) (*net.UnixListener, error) {
	fd, err := unix.Socket(unix.AF_UNIX, unix.SOCK_STREAM, 0)
	if err != nil {
		return nil, fail(ErrIO, "socket", path, err)
	}
	unix.CloseOnExec(fd)

	if err := unix.Bind(fd, &unix.SockaddrUnix{Name: path}); err != nil {
		unix.Close(fd)
		return nil, fail(ErrIO, "bind", path, err)
	}

	if err := unix.Listen(fd, backlog); err != nil {
		unix.Close(fd)
		return nil, fail(ErrIO, "listen", path, err)
	}

	// FileListener duplicates the descriptor; the original is released with f.
	f := os.NewFile(uintptr(fd), path)
	defer f.Close()

	ln, err := net.FileListener(f)
	if err != nil {
		return nil, fail(ErrIO, "listen", path, err)
	}

	ul, ok := ln.(*net.UnixListener)
	if !ok {
		ln.Close()
		return nil, fail(ErrIO, "listen", path, errors.Errorf("unexpected listener type %T", ln))
	}
	return ul, nil
}

// Accepts connections until an accept fails.
//
// Each connection is handed to h synchronously; the next accept only happens
// after h returns. There is no retry: the first accept error is returned
// wrapped in [ErrAccept].
func (e *Endpoint) Serve(h Handler) error {
	for {
		conn, err := e.ln.Accept()
		if err != nil {
			return fail(ErrAccept, "accept", e.path, err)
		}
		h.Handle(conn)
	}
}

// Closes the listening descriptor. A blocked [Endpoint.Serve] returns.
//
// The socket file is left in place; the next [Create] on the same path
// replaces it.
func (e *Endpoint) Close() error {
	return e.ln.Close()
}

// Returns the socket path.
func (e *Endpoint) Path() string {
	return e.path
}

// Returns the listener's network address.
func (e *Endpoint) Addr() net.Addr {
	return e.ln.Addr()
}

func fail(kind error, op, path string, err error) error {
	return errors.WithStack(&Error{Kind: kind, Op: op, Path: path, Err: err})
}
