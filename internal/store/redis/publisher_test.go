package redis

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/MrSnakeDoc/marketbot/internal/domain"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewStoreDefaultsChannel(t *testing.T) {
	s := NewStore(nil, "")
	assert.Equal(t, "marketbot:events", s.Channel())

	s = NewStore(nil, "custom")
	assert.Equal(t, "custom", s.Channel())
}

func TestParseStats(t *testing.T) {
	stats, err := parseStats(map[string]string{
		StatsField(domain.EventListingPosted): "3",
		StatsField(domain.EventTradeStarted):  "1",
	})
	require.NoError(t, err)
	assert.Equal(t, map[string]int64{"listing.posted": 3, "trade.started": 1}, stats)

	_, err = parseStats(map[string]string{"listing.posted": "many"})
	assert.Error(t, err)
}

func TestDecodeEvents(t *testing.T) {
	at := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	data, err := json.Marshal(domain.Event{Type: domain.EventTicketOpened, UserID: "42", ChannelID: "7", At: at})
	require.NoError(t, err)

	events, err := decodeEvents([]string{string(data)})
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, domain.EventTicketOpened, events[0].Type)
	assert.Equal(t, "42", events[0].UserID)
	assert.True(t, at.Equal(events[0].At))

	_, err = decodeEvents([]string{"{"})
	assert.Error(t, err)
}

func TestPublishReportsUnreachableServer(t *testing.T) {
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 100 * time.Millisecond,
		MaxRetries:  -1,
	})
	defer client.Close()

	s := NewStore(client, "")
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	err := s.Publish(ctx, domain.Event{Type: domain.EventListingPosted})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "listing.posted")
}
