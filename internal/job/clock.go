package job

import "time"

// Clock abstracts time for the polling loop so tests can drive poll
// intervals without real delays.
type Clock interface {
	// Now returns the current time.
	Now() time.Time
	// After waits for the duration and then sends the current time.
	After(d time.Duration) <-chan time.Time
}

// realClock implements Clock with the time package.
type realClock struct{}

func (realClock) Now() time.Time                         { return time.Now() }
func (realClock) After(d time.Duration) <-chan time.Time { return time.After(d) }

// NewRealClock returns a Clock backed by the system clock.
func NewRealClock() Clock {
	return realClock{}
}
