package sync

import "time"

// Clock supplies the waits between ticks
type Clock interface {
	// After returns a channel that receives once d has elapsed.
	After(d time.Duration) <-chan time.Time
}

type realClock struct{}

func (realClock) After(d time.Duration) <-chan time.Time {
	return time.After(d)
}

// RealClock returns a Clock backed by the time package
func RealClock() Clock {
	return realClock{}
}
