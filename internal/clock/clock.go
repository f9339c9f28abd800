// Package clock lets time-dependent code (cooldown windows, the ticket
// close grace delay, broadcast pacing) run against a fake time source in
// tests.
package clock

import "time"

// Clock is the subset of the time package the bot depends on.
type Clock interface {
	Now() time.Time
	// After delivers the current time once d has elapsed. d <= 0 fires
	// immediately.
	After(d time.Duration) <-chan time.Time
}

// Real returns a Clock backed by the time package.
func Real() Clock { return realClock{} }

type realClock struct{}

func (realClock) Now() time.Time                         { return time.Now() }
func (realClock) After(d time.Duration) <-chan time.Time { return time.After(d) }
