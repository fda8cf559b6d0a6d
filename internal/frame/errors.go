package frame

import "errors"

var (
	ErrConfig     = errors.New("invalid frame configuration")
	ErrLength     = errors.New("invalid message length")
	ErrInvalidPID = errors.New("invalid pid")
)
