package server

import (
	"bytes"
	"errors"
	"io"
	"log/slog"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"syscall"
	"testing"
	"time"

	"github.com/cruciblehq/tracebackd/internal/frame"
	"github.com/cruciblehq/tracebackd/internal/listener"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Collects emitted messages.
type recorder struct {
	mu   sync.Mutex
	msgs []frame.Message
}

func (r *recorder) Emit(msg frame.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.msgs = append(r.msgs, msg)
	return nil
}

func (r *recorder) messages() []frame.Message {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]frame.Message(nil), r.msgs...)
}

type testServer struct {
	*Server
	rec  *recorder
	logs *syncBuffer
	done chan error
}

// Starts a server on a fresh socket and serves it in the background.
func startServer(t *testing.T, cfg frame.Config) *testServer {
	t.Helper()

	dir, err := os.MkdirTemp("", "tbd")
	require.NoError(t, err)
	t.Cleanup(func() { os.RemoveAll(dir) })

	rec := &recorder{}
	logs := &syncBuffer{}
	srv, err := New(Config{
		SocketPath: filepath.Join(dir, "s.sock"),
		PIDFile:    filepath.Join(dir, "s.pid"),
		Frame:      cfg,
		Sink:       rec,
		Logger:     slog.New(slog.NewTextHandler(logs, &slog.HandlerOptions{Level: slog.LevelDebug})),
	})
	require.NoError(t, err)
	require.NoError(t, srv.Start())

	ts := &testServer{Server: srv, rec: rec, logs: logs, done: make(chan error, 1)}
	go func() { ts.done <- srv.Serve() }()
	t.Cleanup(func() { srv.Stop() })

	return ts
}

type syncBuffer struct {
	mu sync.Mutex
	bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.Buffer.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.Buffer.String()
}

// Sends raw bytes on a new connection and waits for the server to close it.
func (ts *testServer) send(t *testing.T, raw []byte) {
	t.Helper()

	conn, err := net.Dial("unix", ts.SocketPath())
	require.NoError(t, err)
	defer conn.Close()

	_, err = conn.Write(raw)
	require.NoError(t, err)
	require.NoError(t, conn.(*net.UnixConn).CloseWrite())

	// The server never answers. Once it closes its side a read returns EOF,
	// or a reset when it left part of the frame unread.
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	n, err := conn.Read(make([]byte, 1))
	assert.Equal(t, 0, n)
	assert.True(t, err == io.EOF || errors.Is(err, syscall.ECONNRESET), "read error = %v", err)
}

func rawFrame(pid int32, n uint64, payload []byte) []byte {
	hdr := frame.EncodeHeader(frame.Header{PID: pid, Len: n})
	return append(hdr[:], payload...)
}

func TestServerEmitsMessage(t *testing.T) {
	ts := startServer(t, frame.DefaultConfig())

	ts.send(t, rawFrame(1234, 6, []byte("hi\r\n\x00\x00")))

	msgs := ts.rec.messages()
	require.Len(t, msgs, 1)
	assert.Equal(t, frame.Message{PID: 1234, Len: 6, Text: "hi"}, msgs[0])
	assert.Equal(t, 1, ts.Stats().Received)
}

func TestServerDropsMalformed(t *testing.T) {
	ts := startServer(t, frame.DefaultConfig())

	ts.send(t, rawFrame(-5, 10, []byte("aaaaaaaaa\x00")))
	ts.send(t, rawFrame(10, 20000, []byte("aaaa\x00")))
	ts.send(t, rawFrame(10, 0, nil))
	ts.send(t, []byte{1, 2, 3})
	ts.send(t, rawFrame(10, 8192, append(bytes.Repeat([]byte{'a'}, 32), 0)))
	ts.send(t, rawFrame(10, 23, []byte("not properly terminated")))
	ts.send(t, frame.Encode(42, []byte("properly terminated"), false))

	msgs := ts.rec.messages()
	require.Len(t, msgs, 1)
	assert.Equal(t, int32(42), msgs[0].PID)
	assert.Equal(t, "properly terminated", msgs[0].Text)

	st := ts.Stats()
	assert.Equal(t, 1, st.Received)
	assert.Equal(t, 2, st.Discarded)
	assert.Equal(t, 4, st.Rejected)

	logs := ts.logs.String()
	assert.Contains(t, logs, "short message discarded")
	assert.Contains(t, logs, "improperly terminated message discarded")
	assert.Contains(t, logs, "connection rejected")
}

func TestServerLenient(t *testing.T) {
	cfg := frame.DefaultConfig()
	cfg.Lenient = true
	ts := startServer(t, cfg)

	ts.send(t, rawFrame(10, 23, []byte("not properly terminated")))

	msgs := ts.rec.messages()
	require.Len(t, msgs, 1)
	assert.Equal(t, "not properly terminated", msgs[0].Text)
}

func TestServerReadTimeout(t *testing.T) {
	cfg := frame.DefaultConfig()
	cfg.ReadTimeout = 50 * time.Millisecond
	ts := startServer(t, cfg)

	// A silent peer no longer blocks the next sender.
	idle, err := net.Dial("unix", ts.SocketPath())
	require.NoError(t, err)
	defer idle.Close()

	ts.send(t, frame.Encode(7, []byte("after idle peer"), false))

	msgs := ts.rec.messages()
	require.Len(t, msgs, 1)
	assert.Equal(t, "after idle peer", msgs[0].Text)
	assert.Equal(t, 1, ts.Stats().Rejected)
}

func TestServerPIDFile(t *testing.T) {
	ts := startServer(t, frame.DefaultConfig())

	data, err := os.ReadFile(ts.pidFile)
	require.NoError(t, err)
	assert.Equal(t, strconv.Itoa(os.Getpid()), string(data))
}

func TestServerStop(t *testing.T) {
	ts := startServer(t, frame.DefaultConfig())

	require.NoError(t, ts.Stop())
	require.NoError(t, ts.Stop())

	select {
	case err := <-ts.done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Serve did not return after Stop")
	}

	_, err := os.Stat(ts.SocketPath())
	assert.True(t, errors.Is(err, os.ErrNotExist))
	_, err = os.Stat(ts.pidFile)
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestServerStartPathConflict(t *testing.T) {
	path := filepath.Join(t.TempDir(), "occupied")
	require.NoError(t, os.WriteFile(path, []byte("keep"), 0o644))

	srv, err := New(Config{SocketPath: path, PIDFile: path + ".pid", Frame: frame.DefaultConfig()})
	require.NoError(t, err)

	err = srv.Start()
	assert.True(t, errors.Is(err, listener.ErrPathConflict))
}

func TestServerServeBeforeStart(t *testing.T) {
	srv, err := New(Config{SocketPath: "/tmp/unused.sock", Frame: frame.DefaultConfig()})
	require.NoError(t, err)

	assert.Equal(t, ErrNotStarted, srv.Serve())
	assert.NoError(t, srv.Stop())
}

func TestNewRejectsFrameConfig(t *testing.T) {
	_, err := New(Config{Frame: frame.Config{}})
	assert.True(t, errors.Is(err, frame.ErrConfig))
}

func TestHandleSinkFailure(t *testing.T) {
	var logs bytes.Buffer
	srv, err := New(Config{
		SocketPath: "/tmp/unused.sock",
		Frame:      frame.DefaultConfig(),
		Sink:       failingSink{},
		Logger:     slog.New(slog.NewTextHandler(&logs, nil)),
	})
	require.NoError(t, err)

	server, client := net.Pipe()
	go func() {
		client.Write(frame.Encode(3, []byte("boom"), false))
		client.Close()
	}()

	srv.Handle(server)

	assert.Equal(t, 1, srv.Stats().Received)
	assert.Contains(t, logs.String(), "failed to emit message")
}

type failingSink struct{}

func (failingSink) Emit(frame.Message) error {
	return errors.New("sink down")
}
