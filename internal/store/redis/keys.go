package redis

import "github.com/MrSnakeDoc/marketbot/internal/domain"

const (
	// KeyPrefix namespaces every key the bot writes.
	KeyPrefix = "marketbot:"
	// KeyStats is a hash of event type -> count.
	KeyStats = KeyPrefix + "stats"
	// KeyRecent is a capped list of the latest encoded events, newest first.
	KeyRecent = KeyPrefix + "events:recent"

	// DefaultChannel is the pub/sub channel events are published on.
	DefaultChannel = KeyPrefix + "events"
	// RecentLimit bounds KeyRecent.
	RecentLimit = 100
)

// StatsField returns the KeyStats hash field for an event type.
func StatsField(t domain.EventType) string {
	return string(t)
}
