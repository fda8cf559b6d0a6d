package server

import "errors"

var (
	ErrServer     = errors.New("server error")
	ErrNotStarted = errors.New("server not started")
)
