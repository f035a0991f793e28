package domain

import (
	"time"

	"github.com/jonboulle/clockwork"
)

// clock is the package-level time source for callers that do not inject one.
// The engine functions themselves only ever take explicit instants.
var clock = clockwork.NewRealClock()

// SetClock swaps the time source. Pass nil to reset to real time.
func SetClock(c clockwork.Clock) {
	if c == nil {
		clock = clockwork.NewRealClock()
		return
	}
	clock = c
}

// Now returns the current instant in loc.
func Now(loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	return clock.Now().In(loc)
}
