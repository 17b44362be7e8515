package brackets

import "errors"

var (
	ErrInvalidSize      = errors.New("bracket needs at least one leaf slot")
	ErrCapacityExceeded = errors.New("more competitors than bracket slots")
	ErrNoActiveBracket  = errors.New("no active bracket for this session")
	ErrNoHistory        = errors.New("no bracket history to revert to")
	ErrMalformedBracket = errors.New("malformed bracket")
)
