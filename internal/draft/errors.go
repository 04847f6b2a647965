package draft

import "errors"

// Sentinel kinds for draft state errors. Rejected events leave the
// state untouched.
var (
	ErrNotLoaded          = errors.New("player pool not loaded")
	ErrUnresolvedIdentity = errors.New("player not found")
	ErrAlreadyDrafted     = errors.New("player already drafted")
	ErrInsufficientBudget = errors.New("insufficient budget")
	ErrUnknownTeam        = errors.New("unknown team")
	ErrInvalidEvent       = errors.New("invalid event")
)
