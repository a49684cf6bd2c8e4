// Package clock abstracts "now" so booking-window and edit-window
// checks are deterministic under test.
package clock

import (
	"time"
)

// Clock supplies the current reference instant.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time {
	return time.Now()
}

// New returns the wall clock.
func New() Clock {
	return systemClock{}
}

// Fixed is a clock pinned to one instant, for tests.
type Fixed struct {
	T time.Time
}

func (f Fixed) Now() time.Time {
	return f.T
}
