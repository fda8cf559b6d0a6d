// Package frame decodes the traceback wire format.
//
// Each connection carries exactly one message: a fixed 12 byte header
// followed by a payload of the declared length. The header holds the
// sender's process ID as a signed 32-bit integer and the payload length as
// an unsigned 64-bit integer, both in host byte order with no padding.
//
//	offset 0  : int32  pid
//	offset 4  : uint64 len
//	offset 12 : byte[len] payload
//
// The header is validated before any length-dependent allocation. The
// payload is read into locked memory which is wiped on every exit path. In
// the strict variant the sender must NUL-terminate the payload; the lenient
// variant accepts raw bytes and only rejects empty messages.
//
// A [Decoder] never writes to the connection and never returns an error for
// malformed input. It returns a [Result] tagged with a [Reason] and leaves
// logging to the caller.
//
// Example usage:
//
//	dec, err := frame.NewDecoder(frame.DefaultConfig())
//	if err != nil {
//	    return err
//	}
//
//	res := dec.Decode(conn)
//	if res.OK() {
//	    fmt.Println(res.Message.PID, res.Message.Text)
//	}
package frame
