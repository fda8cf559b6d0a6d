// Package server implements the tracebackd daemon.
//
// The daemon listens on a Unix domain socket for tracebacks sent by local
// processes. Each connection carries a single message: a fixed binary
// header with the sender's pid and the payload length, followed by the
// payload. Connections are handled one at a time; the server decodes the
// message, emits it to the configured sink and closes the connection. The
// peer never receives a response, whether the message was accepted or not.
//
// Malformed messages are dropped. Discards of otherwise recognized messages
// (short or unterminated payloads) are logged at info level; headers that
// fail validation are only visible at debug level.
//
// Example usage:
//
//	srv, err := server.New(server.Config{
//	    SocketPath: "/tmp/tracebackd.sock",
//	    Frame:      frame.DefaultConfig(),
//	    Sink:       sink.NewWriter(os.Stdout),
//	})
//	if err != nil {
//	    return err
//	}
//
//	if err := srv.Start(); err != nil {
//	    return err
//	}
//	defer srv.Stop()
//
//	return srv.Serve()
package server
