package cooldown

import (
	"errors"
	"sync"
	"testing"
	"time"
)

var t0 = time.Date(2026, 5, 4, 9, 0, 0, 0, time.UTC)

func TestCanPostUnknownUser(t *testing.T) {
	tr := NewTracker(DefaultWindow)
	if d := tr.CanPost("1", t0); !d.Allowed {
		t.Errorf("CanPost() for new user = %+v, want allowed", d)
	}
}

func TestCanPostWindow(t *testing.T) {
	tests := []struct {
		name          string
		elapsed       time.Duration
		wantAllowed   bool
		wantRemaining time.Duration
	}{
		{"immediately after", 0, false, 12 * time.Hour},
		{"one hour later", time.Hour, false, 11 * time.Hour},
		{"one second before expiry", 12*time.Hour - time.Second, false, time.Second},
		{"exactly at expiry", 12 * time.Hour, true, 0},
		{"long after", 48 * time.Hour, true, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr := NewTracker(DefaultWindow)
			tr.RecordPost("7", t0)

			d := tr.CanPost("7", t0.Add(tt.elapsed))
			if d.Allowed != tt.wantAllowed {
				t.Errorf("Allowed = %v, want %v", d.Allowed, tt.wantAllowed)
			}
			if d.Remaining != tt.wantRemaining {
				t.Errorf("Remaining = %v, want %v", d.Remaining, tt.wantRemaining)
			}
		})
	}
}

func TestCanPostClockBackwards(t *testing.T) {
	tr := NewTracker(DefaultWindow)
	tr.RecordPost("7", t0)

	d := tr.CanPost("7", t0.Add(-time.Minute))
	if d.Allowed || d.Remaining != DefaultWindow {
		t.Errorf("CanPost() before last post = %+v, want denied with full window", d)
	}
}

func TestRecordPostOverwrites(t *testing.T) {
	tr := NewTracker(time.Hour)
	tr.RecordPost("7", t0)
	tr.RecordPost("7", t0.Add(2*time.Hour))

	if d := tr.CanPost("7", t0.Add(2*time.Hour+30*time.Minute)); d.Allowed {
		t.Error("second RecordPost should restart the window")
	}
	if tr.Len() != 1 {
		t.Errorf("Len() = %d, want 1", tr.Len())
	}
}

func TestCheckReturnsDeniedError(t *testing.T) {
	tr := NewTracker(DefaultWindow)
	tr.RecordPost("7", t0)

	err := tr.Check("7", t0.Add(time.Hour))
	var denied *DeniedError
	if !errors.As(err, &denied) {
		t.Fatalf("Check() error = %v, want *DeniedError", err)
	}
	if got := FormatRemaining(denied.Remaining); got != "11h 0m" {
		t.Errorf("FormatRemaining() = %q, want %q", got, "11h 0m")
	}
	if err := tr.Check("8", t0); err != nil {
		t.Errorf("Check() for new user = %v, want nil", err)
	}
}

func TestFormatRemaining(t *testing.T) {
	tests := []struct {
		in   time.Duration
		want string
	}{
		{12 * time.Hour, "12h 0m"},
		{11*time.Hour + 59*time.Minute + 59*time.Second, "11h 59m"},
		{59 * time.Second, "0h 0m"},
		{90 * time.Minute, "1h 30m"},
		{-time.Second, "0h 0m"},
	}

	for _, tt := range tests {
		if got := FormatRemaining(tt.in); got != tt.want {
			t.Errorf("FormatRemaining(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestNewTrackerDefaultsWindow(t *testing.T) {
	if w := NewTracker(0).Window(); w != DefaultWindow {
		t.Errorf("Window() = %v, want %v", w, DefaultWindow)
	}
}

func TestConcurrentAccess(t *testing.T) {
	tr := NewTracker(DefaultWindow)
	var wg sync.WaitGroup

	for i := 0; i < 100; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			tr.RecordPost("7", t0)
		}()
		go func() {
			defer wg.Done()
			_ = tr.CanPost("7", t0)
		}()
	}
	wg.Wait()

	if tr.Len() != 1 {
		t.Errorf("Len() = %d, want 1", tr.Len())
	}
}
