package frame

import (
	"encoding/binary"
	"io"
)

// Size of the packed wire header: a 4 byte pid followed by an 8 byte length.
const HeaderSize = 12

// The fixed-size message header.
type Header struct {
	PID int32  // Process ID of the sender.
	Len uint64 // Declared payload length in bytes.
}

// Reads exactly [HeaderSize] bytes from r and parses them.
//
// Fewer bytes yield [io.EOF] or [io.ErrUnexpectedEOF].
func ReadHeader(r io.Reader) (Header, error) {
	var buf [HeaderSize]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return Header{}, err
	}
	return ParseHeader(buf), nil
}

// Parses a packed header in host byte order.
func ParseHeader(buf [HeaderSize]byte) Header {
	return Header{
		PID: int32(binary.NativeEndian.Uint32(buf[0:4])),
		Len: binary.NativeEndian.Uint64(buf[4:12]),
	}
}

// Packs a header in host byte order.
func EncodeHeader(h Header) [HeaderSize]byte {
	var buf [HeaderSize]byte
	binary.NativeEndian.PutUint32(buf[0:4], uint32(h.PID))
	binary.NativeEndian.PutUint64(buf[4:12], h.Len)
	return buf
}
