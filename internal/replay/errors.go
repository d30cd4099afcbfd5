package replay

import "errors"

// ErrInvalidOrdering is returned when event sequences are not contiguous.
var ErrInvalidOrdering = errors.New("events are not in deterministic order")

// ErrInvalidEvent is returned when an event cannot be applied to state.
var ErrInvalidEvent = errors.New("invalid event")
