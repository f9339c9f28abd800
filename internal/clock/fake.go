package clock

import (
	"sort"
	"sync"
	"time"
)

// FakeClock only moves when Advance is called. Pending After channels
// fire once the clock passes their deadline. Safe for concurrent use.
type FakeClock struct {
	mu      sync.Mutex
	current time.Time
	pending []*fakeTimer
	changed *sync.Cond
}

type fakeTimer struct {
	deadline time.Time
	ch       chan time.Time
}

// Fake returns a FakeClock frozen at initial.
func Fake(initial time.Time) *FakeClock {
	c := &FakeClock{current: initial}
	c.changed = sync.NewCond(&c.mu)
	return c
}

func (c *FakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current
}

func (c *FakeClock) After(d time.Duration) <-chan time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()

	ch := make(chan time.Time, 1)
	if d <= 0 {
		ch <- c.current
		return ch
	}
	c.pending = append(c.pending, &fakeTimer{deadline: c.current.Add(d), ch: ch})
	c.changed.Broadcast()
	return ch
}

// Set moves the clock to t, firing whatever falls due on the way.
func (c *FakeClock) Set(t time.Time) {
	c.mu.Lock()
	d := t.Sub(c.current)
	c.mu.Unlock()
	c.Advance(d)
}

// Advance moves the clock forward by d and fires every timer whose
// deadline is now due, earliest first.
func (c *FakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.current = c.current.Add(d)
	now := c.current

	var due, rest []*fakeTimer
	for _, t := range c.pending {
		if t.deadline.After(now) {
			rest = append(rest, t)
		} else {
			due = append(due, t)
		}
	}
	c.pending = rest
	c.mu.Unlock()

	sort.Slice(due, func(i, j int) bool { return due[i].deadline.Before(due[j].deadline) })
	for _, t := range due {
		t.ch <- now
	}
}

// WaitForTimers blocks until at least n timers are pending. Tests call it
// before Advance so a goroutine has registered its wait.
func (c *FakeClock) WaitForTimers(n int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for len(c.pending) < n {
		c.changed.Wait()
	}
}

// PendingCount reports how many timers have not fired yet.
func (c *FakeClock) PendingCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.pending)
}
