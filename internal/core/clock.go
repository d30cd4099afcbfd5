package core

import "time"

// Clock supplies the current time once per operation.
type Clock interface {
	Now() time.Time
}

// ClockFunc adapts a function to Clock.
type ClockFunc func() time.Time

// Now calls f().
func (f ClockFunc) Now() time.Time {
	return f()
}

// SystemClock reads the wall clock.
var SystemClock Clock = ClockFunc(time.Now)

// normalize drops sub-microsecond precision and the location so that times
// survive a round trip through the event log unchanged.
func normalize(t time.Time) time.Time {
	return t.UTC().Truncate(time.Microsecond)
}
