package filter

import "errors"

// Sentinel kinds for intent decoding errors.
var (
	ErrUnknownIntent = errors.New("unknown intent")
	ErrInvalidValue  = errors.New("invalid intent value")
)
