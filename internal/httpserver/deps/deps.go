package deps

import (
	"context"
	"time"

	"github.com/MrSnakeDoc/marketbot/internal/domain"
	"github.com/MrSnakeDoc/marketbot/internal/logger"
)

// GatewayStatus reports whether the chat gateway session is up.
type GatewayStatus interface {
	Connected() bool
}

// EventStore is the optional Redis event publisher.
type EventStore interface {
	Ping(ctx context.Context) error
	Stats(ctx context.Context) (map[string]int64, error)
	Recent(ctx context.Context, n int) ([]domain.Event, error)
}

// ListingCounter exposes the in-memory listing registry.
type ListingCounter interface {
	Counts() (open, claimed int)
}

// CooldownCounter exposes the number of tracked sellers.
type CooldownCounter interface {
	Len() int
}

// PanelReloader reloads the dashboard copy from disk.
type PanelReloader interface {
	Reload() error
}

type Deps struct {
	Logger       logger.Logger
	StartTime    time.Time
	Version      string
	Commit       string
	BuildDate    string
	GoVersion    string
	TimeNow      func() time.Time // for testing, defaults to time.Now
	AllowedCIDRS []string         // IPs allowed to access readyz, infra and reload
	TrustProxy   bool             // true if running behind a trusted reverse proxy (e.g., cloudflared)
	PingTimeout  time.Duration    // bound on dependency checks, defaults to 2s

	Gateway   GatewayStatus
	Events    EventStore // nil when Redis is disabled
	Listings  ListingCounter
	Cooldowns CooldownCounter
	Panel     PanelReloader
}

// Now returns the current time using TimeNow when set.
func (d Deps) Now() time.Time {
	if d.TimeNow != nil {
		return d.TimeNow()
	}
	return time.Now()
}

// CheckTimeout returns PingTimeout or its default.
func (d Deps) CheckTimeout() time.Duration {
	if d.PingTimeout > 0 {
		return d.PingTimeout
	}
	return 2 * time.Second
}
