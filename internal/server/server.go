package server

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/cruciblehq/tracebackd/internal/frame"
	"github.com/cruciblehq/tracebackd/internal/listener"
	"github.com/cruciblehq/tracebackd/internal/paths"
	"github.com/cruciblehq/tracebackd/internal/sink"
	"github.com/pkg/errors"
)

// Holds server configuration.
type Config struct {
	SocketPath string       // Override for the Unix socket path. Empty uses the default.
	PIDFile    string       // Override for the PID file path. Empty uses the default.
	Backlog    int          // Listen backlog. Zero uses [listener.DefaultBacklog].
	Frame      frame.Config // Framing limits and variant.
	Sink       sink.Sink    // Destination for decoded messages. Nil writes records to stdout.
	Logger     *slog.Logger // Diagnostics logger. Nil uses [slog.Default].
}

// Snapshot of the server's counters.
type Stats struct {
	Received  int           // Messages emitted to the sink.
	Discarded int           // Messages dropped after a valid header.
	Rejected  int           // Connections dropped before the header was trusted.
	Uptime    time.Duration // Time since Start.
}

// Accepts connections on a Unix domain socket and decodes one message from
// each.
type Server struct {
	socketPath    string             // Path to the Unix socket file.
	pidFile       string             // Path to the PID file.
	defaultSocket bool               // Whether the socket lives in the default runtime directory.
	backlog       int                // Listen backlog.
	decoder       *frame.Decoder     // Per-connection message decoder.
	sink          sink.Sink          // Destination for decoded messages.
	logger        *slog.Logger       // Diagnostics logger.
	endpoint      *listener.Endpoint // Listening socket, set by Start.
	startedAt     time.Time          // Timestamp when the server started.
	stats         Stats              // Message counters.
	stopped       bool               // Whether Stop has been called.
	mu            sync.Mutex         // Mutex to protect shared state.
}

// Creates a new server instance.
//
// The socket is not opened until [Server.Start] is called.
func New(cfg Config) (*Server, error) {
	decoder, err := frame.NewDecoder(cfg.Frame)
	if err != nil {
		return nil, errors.WithMessage(err, ErrServer.Error())
	}

	socketPath := cfg.SocketPath
	defaultSocket := socketPath == ""
	if defaultSocket {
		socketPath = paths.Socket()
	}

	pidFile := cfg.PIDFile
	if pidFile == "" {
		pidFile = paths.PIDFile()
	}

	out := cfg.Sink
	if out == nil {
		out = sink.NewWriter(os.Stdout)
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Server{
		socketPath:    socketPath,
		pidFile:       pidFile,
		defaultSocket: defaultSocket,
		backlog:       cfg.Backlog,
		decoder:       decoder,
		sink:          out,
		logger:        logger,
	}, nil
}

// Opens the Unix socket.
//
// Any failure here is fatal: the path is invalid, occupied by something that
// is not a socket, or the socket cannot be bound.
func (s *Server) Start() error {
	if s.defaultSocket {
		if err := os.MkdirAll(paths.Runtime(), paths.DefaultDirMode); err != nil {
			return errors.Wrapf(err, "create runtime directory %s", paths.Runtime())
		}
	}

	ep, err := listener.Create(listener.Config{
		Path:    s.socketPath,
		Backlog: s.backlog,
	})
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.endpoint = ep
	s.startedAt = time.Now()
	s.mu.Unlock()

	if err := s.writePID(); err != nil {
		s.logger.Warn("failed to write PID file", "path", s.pidFile, "error", err)
	}

	cfg := s.decoder.Config()
	s.logger.Info("server listening on socket",
		"path", s.socketPath,
		"max_len", cfg.MaxLen,
		"lenient", cfg.Lenient,
	)

	return nil
}

// Accepts connections until the server is stopped or an accept fails.
//
// Connections are handled sequentially on the calling goroutine. Serve
// returns nil after [Server.Stop] and the accept error otherwise.
func (s *Server) Serve() error {
	s.mu.Lock()
	ep := s.endpoint
	s.mu.Unlock()

	if ep == nil {
		return ErrNotStarted
	}

	err := ep.Serve(s)

	if s.isStopped() {
		s.logger.Info("server stopped", "path", s.socketPath)
		return nil
	}

	s.logger.Error("accept error", "error", err)
	return err
}

// Closes the socket and removes the socket and PID files.
//
// Safe to call more than once and before [Server.Start].
func (s *Server) Stop() error {
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return nil
	}
	s.stopped = true
	ep := s.endpoint
	s.mu.Unlock()

	if ep == nil {
		return nil
	}

	err := ep.Close()
	os.Remove(s.socketPath)
	os.Remove(s.pidFile)

	return err
}

// Returns the socket path.
func (s *Server) SocketPath() string {
	return s.socketPath
}

// Returns a snapshot of the message counters.
func (s *Server) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := s.stats
	if !s.startedAt.IsZero() {
		st.Uptime = time.Since(s.startedAt).Truncate(time.Second)
	}
	return st
}

func (s *Server) isStopped() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stopped
}

// Writes the daemon PID so other tools can find and signal it.
func (s *Server) writePID() error {
	if err := os.MkdirAll(filepath.Dir(s.pidFile), paths.DefaultDirMode); err != nil {
		return err
	}
	return os.WriteFile(s.pidFile, []byte(fmt.Sprintf("%d", os.Getpid())), paths.DefaultFileMode)
}
