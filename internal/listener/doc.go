// Package listener owns the daemon's Unix domain socket.
//
// [Create] binds a stream socket at a filesystem path with a fixed listen
// backlog. A socket file left behind by a previous run is removed first;
// any other file at the path is left alone and reported as
// [ErrPathConflict]. [Endpoint.Serve] then accepts connections one at a time
// and hands each to a [Handler], waiting for it to return before accepting
// the next. A failed accept ends the loop.
//
// Example usage:
//
//	ep, err := listener.Create(listener.Config{Path: "/tmp/tracebackd.sock"})
//	if err != nil {
//	    return err
//	}
//
//	err = ep.Serve(listener.HandlerFunc(func(conn net.Conn) {
//	    defer conn.Close()
//	    // ...
//	}))
package listener
