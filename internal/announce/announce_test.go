package announce

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrSnakeDoc/marketbot/internal/logger"
	"github.com/MrSnakeDoc/marketbot/internal/platform"
	"github.com/MrSnakeDoc/marketbot/internal/platform/platformtest"
)

const roleID = "700"

func guild() *platformtest.Fake {
	fake := platformtest.New("100")
	fake.AddMember(platform.Member{User: platform.User{ID: "1", Handle: "a"}, RoleIDs: []string{roleID}})
	fake.AddMember(platform.Member{User: platform.User{ID: "2", Handle: "b"}, RoleIDs: []string{roleID, "701"}})
	fake.AddMember(platform.Member{User: platform.User{ID: "3", Handle: "c"}, RoleIDs: []string{"701"}})
	fake.AddMember(platform.Member{User: platform.User{ID: "4", Handle: "bot"}, RoleIDs: []string{roleID}, Bot: true})
	return fake
}

func TestNotifyTally(t *testing.T) {
	tests := []struct {
		name     string
		disabled []string
		want     Tally
	}{
		{name: "all delivered", want: Tally{Sent: 2, Skipped: 1}},
		{name: "one closed DMs", disabled: []string{"2"}, want: Tally{Sent: 1, Failed: 1, Skipped: 1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := guild()
			for _, id := range tt.disabled {
				fake.DMDisabled[id] = true
			}
			b := NewBroadcaster("100", fake, 0, logger.Nop())

			got, err := b.Notify(context.Background(), roleID, "  Market closes at noon  ")
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)

			for _, dm := range fake.DMs() {
				assert.Equal(t, "Market closes at noon", dm.Message.Content)
				assert.NotEqual(t, "3", dm.UserID)
				assert.NotEqual(t, "4", dm.UserID)
			}
		})
	}
}

func TestNotifyEmptyMessage(t *testing.T) {
	fake := guild()
	b := NewBroadcaster("100", fake, 0, logger.Nop())

	_, err := b.Notify(context.Background(), roleID, "   ")
	assert.Error(t, err)
	assert.Empty(t, fake.DMs())
}

func TestNotifyPaces(t *testing.T) {
	fake := guild()
	const interval = 30 * time.Millisecond
	b := NewBroadcaster("100", fake, interval, logger.Nop())

	start := time.Now()
	got, err := b.Notify(context.Background(), roleID, "hello")
	require.NoError(t, err)
	assert.Equal(t, 2, got.Sent)

	// The first send uses the burst token; the second waits one interval.
	assert.GreaterOrEqual(t, time.Since(start), interval-5*time.Millisecond)
}

func TestNotifyCancelled(t *testing.T) {
	fake := guild()
	b := NewBroadcaster("100", fake, time.Hour, logger.Nop())

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	got, err := b.Notify(ctx, roleID, "hello")
	assert.Error(t, err)
	assert.Equal(t, 1, got.Sent)
}

func TestTallyString(t *testing.T) {
	assert.Equal(t, "Message sent to 3 member(s), failed for 1.", Tally{Sent: 3, Failed: 1}.String())
}
