package server

import (
	"net"

	"github.com/cruciblehq/tracebackd/internal/frame"
)

// Processes a single connection.
//
// Decodes one message and emits it, or records why it was dropped. The
// connection is always closed and nothing is ever written back.
func (s *Server) Handle(conn net.Conn) {
	defer conn.Close()

	res := s.decoder.Decode(conn)

	switch {
	case res.OK():
		s.count(&s.stats.Received)
		s.emit(res.Message)

	case res.Reason.Discard():
		s.count(&s.stats.Discarded)
		s.logger.Info(res.Reason.String(), "pid", res.Header.PID, "len", res.Header.Len)

	default:
		s.count(&s.stats.Rejected)
		s.logger.Debug("connection rejected", "reason", res.Reason, "error", res.Err)
	}
}

// Hands a message to the sink. Sink failures are logged and otherwise
// ignored; they never stop the server.
func (s *Server) emit(msg frame.Message) {
	s.logger.Debug("message received", "pid", msg.PID, "len", msg.Len)

	if err := s.sink.Emit(msg); err != nil {
		s.logger.Warn("failed to emit message", "pid", msg.PID, "error", err)
	}
}

func (s *Server) count(n *int) {
	s.mu.Lock()
	*n++
	s.mu.Unlock()
}
