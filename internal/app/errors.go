package app

import "errors"

var (
	// ErrNoState means the service was started without a draft aggregate.
	ErrNoState = errors.New("no draft state configured")

	// ErrInvalidCommand means a command produced a structurally invalid event.
	ErrInvalidCommand = errors.New("invalid command")

	// ErrQueueFull means the ingest queue rejected the event.
	ErrQueueFull = errors.New("event queue full")

	// ErrUnknownPlayer means a name resolved to no player in the pool.
	ErrUnknownPlayer = errors.New("unknown player")
)
