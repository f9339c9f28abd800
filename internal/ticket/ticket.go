// Package ticket provisions private support channels, one per requester.
//
// A ticket has no record of its own: it exists while a channel named
// "ticket-<handle>" exists in the guild.
package ticket

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/MrSnakeDoc/marketbot/internal/clock"
	"github.com/MrSnakeDoc/marketbot/internal/domain"
	"github.com/MrSnakeDoc/marketbot/internal/logger"
	"github.com/MrSnakeDoc/marketbot/internal/platform"
)

const (
	// NamePrefix marks every ticket channel.
	NamePrefix = "ticket-"

	// DefaultCloseDelay leaves the close acknowledgement on screen before
	// the channel disappears.
	DefaultCloseDelay = 5 * time.Second
)

// Config places tickets in the guild.
type Config struct {
	GuildID        string
	CategoryID     string
	SupportRoleIDs []string
	CloseDelay     time.Duration
}

// Outcome tells a fresh ticket from one the requester already had.
type Outcome int

const (
	Created Outcome = iota
	AlreadyOpen
)

func (o Outcome) String() string {
	if o == AlreadyOpen {
		return "already_open"
	}
	return "created"
}

// Result is the ticket channel an Open call resolved to.
type Result struct {
	Outcome Outcome
	Channel platform.Channel
}

// Platform is the subset of the delivery collaborator tickets need.
type Platform interface {
	platform.Messenger
	platform.Channels
}

// Service opens and closes ticket channels.
type Service struct {
	cfg      Config
	platform Platform
	clock    clock.Clock
	events   domain.EventSink
	log      logger.Logger

	// Open is serialised per channel name so two quick clicks cannot both
	// pass the scan. Entries live only while a call holds or waits on them.
	mu    sync.Mutex
	locks map[string]*nameLock
}

type nameLock struct {
	sync.Mutex
	refs int
}

// NewService builds a Service. A nil clock means the wall clock; a nil
// sink drops events.
func NewService(cfg Config, p Platform, clk clock.Clock, events domain.EventSink, log logger.Logger) *Service {
	if cfg.CloseDelay <= 0 {
		cfg.CloseDelay = DefaultCloseDelay
	}
	if clk == nil {
		clk = clock.Real()
	}
	if events == nil {
		events = domain.NopSink{}
	}
	return &Service{
		cfg:      cfg,
		platform: p,
		clock:    clk,
		events:   events,
		log:      log,
		locks:    make(map[string]*nameLock),
	}
}

var lower = cases.Lower(language.Und)

// ChannelName is the canonical ticket channel name for a handle.
// Whitespace becomes '-' because the platform does not allow spaces in
// text channel names.
func ChannelName(handle string) string {
	name := lower.String(strings.TrimSpace(handle))
	return NamePrefix + strings.Join(strings.Fields(name), "-")
}

// IsTicketChannel reports whether a channel name follows the ticket
// convention.
func IsTicketChannel(name string) bool {
	return strings.HasPrefix(name, NamePrefix)
}

// lock serialises callers on name and returns the matching unlock.
func (s *Service) lock(name string) (unlock func()) {
	s.mu.Lock()
	l, ok := s.locks[name]
	if !ok {
		l = &nameLock{}
		s.locks[name] = l
	}
	l.refs++
	s.mu.Unlock()

	l.Lock()
	return func() {
		l.Unlock()

		s.mu.Lock()
		defer s.mu.Unlock()
		if l.refs--; l.refs == 0 {
			delete(s.locks, name)
		}
	}
}

// Open returns the requester's ticket channel, creating it if none exists.
// The channel is visible to the requester and the support roles only; if
// those permissions cannot be applied the channel is not created.
func (s *Service) Open(ctx context.Context, requester platform.User) (*Result, error) {
	name := ChannelName(requester.Handle)

	defer s.lock(name)()

	channels, err := s.platform.GuildChannels(ctx, s.cfg.GuildID)
	if err != nil {
		return nil, fmt.Errorf("list channels: %w", err)
	}
	for _, ch := range channels {
		if ch.Name == name {
			return &Result{Outcome: AlreadyOpen, Channel: ch}, nil
		}
	}

	parent, err := s.platform.Channel(ctx, s.cfg.CategoryID)
	if err != nil {
		if platform.IsNotFound(err) {
			return nil, domain.ErrCategoryUnavailable
		}
		return nil, fmt.Errorf("resolve ticket category: %w", err)
	}
	if parent.Kind != platform.ChannelCategory {
		return nil, fmt.Errorf("%w: %s is not a category", domain.ErrCategoryUnavailable, parent.ID)
	}

	ch, err := s.platform.CreateChannel(ctx, s.cfg.GuildID, platform.ChannelSpec{
		Name:       name,
		ParentID:   parent.ID,
		Topic:      "Support ticket for " + requester.Handle,
		Overwrites: s.overwrites(requester.ID),
	})
	if err != nil {
		return nil, fmt.Errorf("create ticket channel: %w", err)
	}

	log := s.log.With(
		logger.String("user_id", requester.ID),
		logger.String("channel", ch.Name),
	)

	if _, err := s.platform.Send(ctx, ch.ID, platform.Message{Content: s.welcome(requester.ID)}); err != nil {
		log.Warn("could not post ticket greeting", logger.Error(err))
	}

	log.Info("ticket opened")
	s.publish(ctx, domain.Event{
		Type:      domain.EventTicketOpened,
		UserID:    requester.ID,
		ChannelID: ch.ID,
		At:        s.clock.Now(),
	})

	return &Result{Outcome: Created, Channel: *ch}, nil
}

// Close deletes a ticket channel. ack is called first to tell the user;
// the channel is removed once the close delay has passed. Channels outside
// the naming convention are rejected with domain.ErrNotATicketChannel and
// left alone.
func (s *Service) Close(ctx context.Context, ch platform.Channel, ack func(context.Context) error) error {
	if !IsTicketChannel(ch.Name) {
		return domain.ErrNotATicketChannel
	}

	if ack != nil {
		if err := ack(ctx); err != nil {
			return fmt.Errorf("acknowledge close: %w", err)
		}
	}

	select {
	case <-s.clock.After(s.cfg.CloseDelay):
	case <-ctx.Done():
		return ctx.Err()
	}

	if err := s.platform.DeleteChannel(ctx, ch.ID); err != nil {
		return fmt.Errorf("delete ticket channel: %w", err)
	}

	s.log.Info("ticket closed", logger.String("channel", ch.Name))
	s.publish(ctx, domain.Event{
		Type:      domain.EventTicketClosed,
		ChannelID: ch.ID,
		At:        s.clock.Now(),
	})
	return nil
}

// CloseDelay is how long Close waits after acknowledging.
func (s *Service) CloseDelay() time.Duration { return s.cfg.CloseDelay }

func (s *Service) overwrites(requesterID string) []platform.Overwrite {
	ows := []platform.Overwrite{
		{ID: s.cfg.GuildID, Kind: platform.PrincipalRole, Deny: platform.PermViewChannel},
		{ID: requesterID, Kind: platform.PrincipalMember, Allow: platform.ReadWrite},
	}
	for _, role := range s.cfg.SupportRoleIDs {
		ows = append(ows, platform.Overwrite{ID: role, Kind: platform.PrincipalRole, Allow: platform.ReadWrite})
	}
	return ows
}

func (s *Service) welcome(requesterID string) string {
	var b strings.Builder
	b.WriteString(domain.Mention(requesterID))
	b.WriteString(" thanks for reaching out. Describe your issue and staff will be with you shortly.")
	if len(s.cfg.SupportRoleIDs) > 0 {
		b.WriteString("\n")
		for i, role := range s.cfg.SupportRoleIDs {
			if i > 0 {
				b.WriteString(" ")
			}
			b.WriteString(domain.RoleMention(role))
		}
	}
	return b.String()
}

func (s *Service) publish(ctx context.Context, evt domain.Event) {
	if err := s.events.Publish(ctx, evt); err != nil && !errors.Is(err, context.Canceled) {
		s.log.Warn("publish event failed", logger.String("type", string(evt.Type)), logger.Error(err))
	}
}
