package frame

import (
	"io"
)

// Builds the wire form of a message: header followed by payload.
//
// In the strict variant a NUL terminator is appended unless text already
// ends with one, and the declared length includes it.
func Encode(pid int32, text []byte, lenient bool) []byte {
	payload := text
	if !lenient && (len(text) == 0 || text[len(text)-1] != 0) {
		payload = append(append(make([]byte, 0, len(text)+1), text...), 0)
	}

	hdr := EncodeHeader(Header{PID: pid, Len: uint64(len(payload))})

	out := make([]byte, 0, HeaderSize+len(payload))
	out = append(out, hdr[:]...)
	return append(out, payload...)
}

// Writes one encoded message to w in a single call.
func WriteMessage(w io.Writer, pid int32, text []byte, lenient bool) error {
	_, err := w.Write(Encode(pid, text, lenient))
	return err
}
