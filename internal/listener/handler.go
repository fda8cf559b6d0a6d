package listener

import "net"

// Handles one accepted connection.
//
// The handler owns conn and must close it before returning.
type Handler interface {
	Handle(conn net.Conn)
}

// Adapts an ordinary function to a [Handler].
type HandlerFunc func(conn net.Conn)

// Calls f(conn).
func (f HandlerFunc) Handle(conn net.Conn) {
	f(conn)
}
