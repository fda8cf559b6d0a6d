package frame

// Outcome of decoding one connection.
type Reason int

const (
	ReasonOK                  Reason = iota // A message was decoded.
	ReasonStreamSetup                       // The connection could not be prepared for reading.
	ReasonHeaderMalformed                   // Short header, invalid pid or out of range length.
	ReasonAllocation                        // The payload buffer could not be allocated.
	ReasonPayloadShort                      // Fewer payload bytes than declared.
	ReasonPayloadUnterminated               // The payload does not end in a NUL byte.
)

func (r Reason) String() string {
	switch r {
	case ReasonOK:
		return "ok"
	case ReasonStreamSetup:
		return "stream setup failed"
	case ReasonHeaderMalformed:
		return "malformed header"
	case ReasonAllocation:
		return "allocation failed"
	case ReasonPayloadShort:
		return "short message discarded"
	case ReasonPayloadUnterminated:
		return "improperly terminated message discarded"
	default:
		return "unknown"
	}
}

// Whether the reason is a discard of a message from an otherwise recognized
// sender, as opposed to an abort before the declared length was trusted.
func (r Reason) Discard() bool {
	return r == ReasonPayloadShort || r == ReasonPayloadUnterminated
}
