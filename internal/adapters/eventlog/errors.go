package eventlog

import "errors"

// Sentinel kinds for event log errors.
var (
	ErrClosed      = errors.New("event log is closed")
	ErrAppend      = errors.New("event log append failed")
	ErrInvalidPath = errors.New("invalid event log path")
)
