package domain

import "github.com/jonboulle/clockwork"

// clock stamps ProcessedAt on attributed events. Tests swap in a fake clock
// through SetClock.
var clock = clockwork.NewRealClock()

// SetClock swaps the time source. Pass nil to reset to real time.
func SetClock(c clockwork.Clock) {
	if c == nil {
		clock = clockwork.NewRealClock()
		return
	}
	clock = c
}
