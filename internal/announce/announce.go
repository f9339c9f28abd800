// Package announce broadcasts a staff message to every member of a role.
package announce

import (
	"context"
	"fmt"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/MrSnakeDoc/marketbot/internal/logger"
	"github.com/MrSnakeDoc/marketbot/internal/platform"
)

// DefaultInterval is the pause between two direct messages.
const DefaultInterval = time.Second

// Tally counts the outcome of one broadcast. Bots are skipped.
type Tally struct {
	Sent    int
	Failed  int
	Skipped int
}

func (t Tally) String() string {
	return fmt.Sprintf("Message sent to %d member(s), failed for %d.", t.Sent, t.Failed)
}

// Platform is what a broadcast needs from the delivery collaborator.
type Platform interface {
	platform.Directory
	platform.Messenger
}

// Broadcaster sends paced direct messages. One limiter is shared by every
// broadcast so two staff members notifying at once still respect the pace.
type Broadcaster struct {
	guildID  string
	platform Platform
	limiter  *rate.Limiter
	log      logger.Logger
}

// NewBroadcaster builds a Broadcaster. interval <= 0 disables pacing.
func NewBroadcaster(guildID string, p Platform, interval time.Duration, log logger.Logger) *Broadcaster {
	limit := rate.Inf
	if interval > 0 {
		limit = rate.Every(interval)
	}
	return &Broadcaster{
		guildID:  guildID,
		platform: p,
		limiter:  rate.NewLimiter(limit, 1),
		log:      log,
	}
}

// Notify direct-messages text to every human member holding roleID.
// Individual delivery failures are counted, not returned; an error means
// the member list could not be read or ctx ended mid-broadcast, in which
// case the tally so far is still returned.
func (b *Broadcaster) Notify(ctx context.Context, roleID, text string) (Tally, error) {
	var tally Tally

	text = strings.TrimSpace(text)
	if text == "" {
		return tally, fmt.Errorf("notify: empty message")
	}

	members, err := b.platform.MembersWithRole(ctx, b.guildID, roleID)
	if err != nil {
		return tally, fmt.Errorf("list role members: %w", err)
	}

	log := b.log.With(logger.String("role_id", roleID))
	log.Info("broadcast started", logger.Int("members", len(members)))

	for _, m := range members {
		if m.Bot {
			tally.Skipped++
			continue
		}
		if err := b.limiter.Wait(ctx); err != nil {
			return tally, err
		}
		if err := b.platform.DirectMessage(ctx, m.ID, platform.Message{Content: text}); err != nil {
			tally.Failed++
			log.Warn("broadcast delivery failed", logger.String("user_id", m.ID), logger.Error(err))
			continue
		}
		tally.Sent++
	}

	log.Info("broadcast finished",
		logger.Int("sent", tally.Sent),
		logger.Int("failed", tally.Failed),
		logger.Int("skipped", tally.Skipped),
	)
	return tally, nil
}
