package domain

import (
	"time"

	"github.com/jonboulle/clockwork"
)

// clock is a package-level time source so tests can freeze time via SetClock.
// It stamps ingestion times for payloads that carry no meta.timestamp.
var clock = clockwork.NewRealClock()

// SetClock swaps the ingestion time source. Pass nil to reset to real time.
func SetClock(c clockwork.Clock) {
	if c == nil {
		clock = clockwork.NewRealClock()
		return
	}
	clock = c
}

// Now returns the current time of the ingestion clock in UTC.
func Now() time.Time {
	return clock.Now().UTC()
}
