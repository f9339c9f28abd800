package redis

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/MrSnakeDoc/marketbot/internal/domain"
	"github.com/redis/go-redis/v9"
)

// Store publishes marketplace events and keeps running counters for the
// ops endpoints. It implements domain.EventSink.
type Store struct {
	client  *redis.Client
	channel string
}

// NewStore creates a new Redis store publishing on channel.
func NewStore(client *redis.Client, channel string) *Store {
	if channel == "" {
		channel = DefaultChannel
	}
	return &Store{
		client:  client,
		channel: channel,
	}
}

// Channel returns the pub/sub channel events go to.
func (s *Store) Channel() string { return s.channel }

// Publish sends evt to subscribers, bumps its counter and records it in the
// recent list. All three writes go in one round trip.
func (s *Store) Publish(ctx context.Context, evt domain.Event) error {
	data, err := json.Marshal(evt)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	pipe := s.client.TxPipeline()
	pipe.Publish(ctx, s.channel, data)
	pipe.HIncrBy(ctx, KeyStats, StatsField(evt.Type), 1)
	pipe.LPush(ctx, KeyRecent, data)
	pipe.LTrim(ctx, KeyRecent, 0, RecentLimit-1)

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to publish %s: %w", evt.Type, err)
	}
	return nil
}

// Stats returns the number of events published per type.
func (s *Store) Stats(ctx context.Context) (map[string]int64, error) {
	raw, err := s.client.HGetAll(ctx, KeyStats).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get event stats: %w", err)
	}
	return parseStats(raw)
}

// Recent returns up to n of the latest events, newest first.
func (s *Store) Recent(ctx context.Context, n int) ([]domain.Event, error) {
	if n <= 0 || n > RecentLimit {
		n = RecentLimit
	}
	raw, err := s.client.LRange(ctx, KeyRecent, 0, int64(n-1)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get recent events: %w", err)
	}
	return decodeEvents(raw)
}

// Ping checks that Redis answers.
func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

func parseStats(raw map[string]string) (map[string]int64, error) {
	stats := make(map[string]int64, len(raw))
	for field, v := range raw {
		var n int64
		if _, err := fmt.Sscan(v, &n); err != nil {
			return nil, fmt.Errorf("invalid counter %s=%q: %w", field, v, err)
		}
		stats[field] = n
	}
	return stats, nil
}

func decodeEvents(raw []string) ([]domain.Event, error) {
	events := make([]domain.Event, 0, len(raw))
	for _, item := range raw {
		var evt domain.Event
		if err := json.Unmarshal([]byte(item), &evt); err != nil {
			return nil, fmt.Errorf("failed to unmarshal event: %w", err)
		}
		events = append(events, evt)
	}
	return events, nil
}

var _ domain.EventSink = (*Store)(nil)
