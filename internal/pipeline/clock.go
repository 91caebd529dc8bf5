package pipeline

import "github.com/jonboulle/clockwork"

// clock is the time source for stage timings, the last-success gauge and the
// archive timestamp. Tests freeze it with SetClock.
var clock = clockwork.NewRealClock()

// SetClock swaps the pipeline time source. Pass nil to reset to real time.
func SetClock(c clockwork.Clock) {
	if c == nil {
		clock = clockwork.NewRealClock()
		return
	}
	clock = c
}
