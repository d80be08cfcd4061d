package bus

import "errors"

// Sentinel kinds for bus errors.
var (
	ErrClosed             = errors.New("bus closed")
	ErrNilHandler         = errors.New("nil handler")
	ErrTooManySubscribers = errors.New("too many subscribers")
)
