package cooldown

import (
	"fmt"
	"sync"
	"time"
)

// DefaultWindow is how long a seller waits between two listings.
const DefaultWindow = 12 * time.Hour

// Tracker remembers when each user last posted a listing.
//
// Entries are never evicted: once a window has passed an entry is inert,
// and the number of entries is bounded by the community's member count.
// Check and RecordPost are not atomic together; concurrent posts by the
// same user resolve as last writer wins.
type Tracker struct {
	mu       sync.RWMutex
	window   time.Duration
	lastPost map[string]time.Time // userID -> last successful post
}

// Decision is the answer to "may this user post now?".
type Decision struct {
	Allowed   bool
	Remaining time.Duration // zero when Allowed
}

// DeniedError is returned by Check while a user is cooling down.
type DeniedError struct {
	Remaining time.Duration
}

func (e *DeniedError) Error() string {
	return fmt.Sprintf("cooldown active, %s remaining", FormatRemaining(e.Remaining))
}

// NewTracker creates a tracker. A non-positive window falls back to
// DefaultWindow.
func NewTracker(window time.Duration) *Tracker {
	if window <= 0 {
		window = DefaultWindow
	}
	return &Tracker{
		window:   window,
		lastPost: make(map[string]time.Time),
	}
}

// CanPost is denied iff now - lastPost < window. A lastPost in the
// future (clock step backwards) counts as zero elapsed time.
func (t *Tracker) CanPost(userID string, now time.Time) Decision {
	t.mu.RLock()
	last, ok := t.lastPost[userID]
	t.mu.RUnlock()

	if !ok {
		return Decision{Allowed: true}
	}

	elapsed := now.Sub(last)
	if elapsed < 0 {
		elapsed = 0
	}
	if elapsed >= t.window {
		return Decision{Allowed: true}
	}
	return Decision{Remaining: t.window - elapsed}
}

// Check is CanPost as an error: nil when allowed, *DeniedError otherwise.
func (t *Tracker) Check(userID string, now time.Time) error {
	d := t.CanPost(userID, now)
	if d.Allowed {
		return nil
	}
	return &DeniedError{Remaining: d.Remaining}
}

// RecordPost overwrites the user's last post time.
func (t *Tracker) RecordPost(userID string, now time.Time) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.lastPost[userID] = now
}

// Len returns the number of users ever recorded.
func (t *Tracker) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()

	return len(t.lastPost)
}

// Window returns the configured cooldown window.
func (t *Tracker) Window() time.Duration { return t.window }

// FormatRemaining renders d as whole hours and minutes, floored:
// 10h59m59s -> "10h 59m".
func FormatRemaining(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	hours := int(d / time.Hour)
	minutes := int((d % time.Hour) / time.Minute)
	return fmt.Sprintf("%dh %dm", hours, minutes)
}
