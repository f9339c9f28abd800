// Package market owns the listing lifecycle: posting anonymous listings to
// the feed and turning a buy click into an escrow hand-off.
package market

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/MrSnakeDoc/marketbot/internal/clock"
	"github.com/MrSnakeDoc/marketbot/internal/cooldown"
	"github.com/MrSnakeDoc/marketbot/internal/domain"
	"github.com/MrSnakeDoc/marketbot/internal/logger"
	"github.com/MrSnakeDoc/marketbot/internal/platform"
)

// Config locates the marketplace on the platform.
type Config struct {
	GuildID         string
	FeedChannelID   string
	EscrowChannelID string
}

// MessageRef points at a message already on the platform.
type MessageRef struct {
	ChannelID string
	MessageID string
}

// Lifecycle drives listings from Open to Claimed.
type Lifecycle struct {
	cfg       Config
	platform  platform.Platform
	registry  *Registry
	cooldowns *cooldown.Tracker
	events    domain.EventSink
	clock     clock.Clock
	log       logger.Logger
	newID     func() string
}

// Option customises a Lifecycle.
type Option func(*Lifecycle)

// WithClock replaces the wall clock.
func WithClock(c clock.Clock) Option {
	return func(l *Lifecycle) { l.clock = c }
}

// WithEvents publishes lifecycle events to sink.
func WithEvents(sink domain.EventSink) Option {
	return func(l *Lifecycle) { l.events = sink }
}

// WithIDGenerator replaces the uuid generator for listing and trade ids.
func WithIDGenerator(fn func() string) Option {
	return func(l *Lifecycle) { l.newID = fn }
}

// New builds a Lifecycle.
func New(cfg Config, p platform.Platform, reg *Registry, cooldowns *cooldown.Tracker, log logger.Logger, opts ...Option) *Lifecycle {
	l := &Lifecycle{
		cfg:       cfg,
		platform:  p,
		registry:  reg,
		cooldowns: cooldowns,
		events:    domain.NopSink{},
		clock:     clock.Real(),
		log:       log,
		newID:     uuid.NewString,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Cooldowns exposes the tracker so the dispatcher can check it before
// showing the sell form.
func (l *Lifecycle) Cooldowns() *cooldown.Tracker { return l.cooldowns }

// Now is the lifecycle's current time.
func (l *Lifecycle) Now() time.Time { return l.clock.Now() }

// Registry exposes the listing registry.
func (l *Lifecycle) Registry() *Registry { return l.registry }

// Post publishes a new listing to the feed. The seller's cooldown is checked
// again here because the form may have been open for a while, and it is
// only recorded once the feed message exists.
func (l *Lifecycle) Post(ctx context.Context, sellerID string, category domain.Category, name, description, price string) (*domain.Listing, error) {
	now := l.clock.Now()

	if err := l.cooldowns.Check(sellerID, now); err != nil {
		return nil, err
	}

	listing, err := domain.NewListing(l.newID(), sellerID, category, name, description, price, now)
	if err != nil {
		return nil, err
	}

	if l.cfg.FeedChannelID == "" {
		return nil, domain.ErrFeedChannelUnavailable
	}
	if _, err := l.platform.Channel(ctx, l.cfg.FeedChannelID); err != nil {
		if platform.IsNotFound(err) {
			return nil, domain.ErrFeedChannelUnavailable
		}
		return nil, fmt.Errorf("resolve feed channel: %w", err)
	}

	msgID, err := l.platform.Send(ctx, l.cfg.FeedChannelID, platform.Message{
		Records: []domain.DisplayRecord{listing.Record()},
		Buttons: []platform.Button{BuyButton(listing.ID, false)},
	})
	if err != nil {
		return nil, fmt.Errorf("post listing: %w", err)
	}

	listing.ChannelID = l.cfg.FeedChannelID
	listing.MessageID = msgID
	l.registry.Add(listing)
	l.cooldowns.RecordPost(sellerID, now)

	l.log.Info("listing posted",
		logger.String("listing_id", listing.ID),
		logger.String("category", string(listing.Category)),
		logger.String("message_id", msgID),
	)
	l.publish(ctx, domain.Event{
		Type:      domain.EventListingPosted,
		UserID:    sellerID,
		ListingID: listing.ID,
		ChannelID: listing.ChannelID,
		At:        now,
	})

	return listing, nil
}

// AttemptBuy validates a buy against the listing record and claims the
// listing. Checks run in a fixed order and nothing is mutated until all of
// them pass:
//
//  1. the record has a listing id and a name, description and price
//     that are non-empty after trimming
//  2. the footer carries a well-formed seller reference
//  3. the seller is still a guild member
//  4. the escrow channel exists
//
// A listing that was already claimed yields domain.ErrAlreadyClaimed.
func (l *Lifecycle) AttemptBuy(ctx context.Context, rec domain.DisplayRecord, buyerID string) (*domain.EscrowPayload, error) {
	if rec.ListingID == "" {
		return nil, domain.ErrMalformedListing
	}
	// Covers steps 1 and 2 without touching the platform.
	fallback, err := domain.ListingFromRecord(rec)
	if err != nil {
		return nil, err
	}
	sellerID := fallback.SellerID

	if _, err := l.platform.Member(ctx, l.cfg.GuildID, sellerID); err != nil {
		if platform.IsNotFound(err) {
			return nil, domain.ErrSellerUnresolvable
		}
		return nil, fmt.Errorf("resolve seller: %w", err)
	}

	if l.cfg.EscrowChannelID == "" {
		return nil, domain.ErrEscrowChannelUnavailable
	}
	if _, err := l.platform.Channel(ctx, l.cfg.EscrowChannelID); err != nil {
		if platform.IsNotFound(err) {
			return nil, domain.ErrEscrowChannelUnavailable
		}
		return nil, fmt.Errorf("resolve escrow channel: %w", err)
	}

	now := l.clock.Now()
	claimed, err := l.registry.Claim(rec.ListingID, fallback, buyerID, now)
	if err != nil {
		return nil, err
	}

	return &domain.EscrowPayload{
		TradeID:         l.newID(),
		ListingID:       claimed.ID,
		ItemName:        claimed.Name,
		ItemDescription: claimed.Description,
		Price:           claimed.Price,
		SellerID:        claimed.SellerID,
		BuyerID:         buyerID,
		CreatedAt:       now,
	}, nil
}

// Buy runs AttemptBuy and then performs the hand-off: the escrow channel
// gets the trade, the feed message is marked sold and the seller is told.
// Only the escrow notification is required; if it fails the claim is
// released and the error returned.
func (l *Lifecycle) Buy(ctx context.Context, ref MessageRef, rec domain.DisplayRecord, buyerID string) (*domain.EscrowPayload, error) {
	payload, err := l.AttemptBuy(ctx, rec, buyerID)
	if err != nil {
		return nil, err
	}

	log := l.log.With(
		logger.String("listing_id", payload.ListingID),
		logger.String("trade_id", payload.TradeID),
	)

	if _, err := l.platform.Send(ctx, l.cfg.EscrowChannelID, platform.Message{
		Records: []domain.DisplayRecord{payload.Record()},
	}); err != nil {
		l.registry.Release(payload.ListingID, buyerID)
		return nil, fmt.Errorf("notify escrow: %w", err)
	}

	if ref.MessageID != "" {
		sold := rec
		sold.Sold = true
		if err := l.platform.Edit(ctx, ref.ChannelID, ref.MessageID, platform.Message{
			Records: []domain.DisplayRecord{sold},
			Buttons: []platform.Button{BuyButton(payload.ListingID, true)},
		}); err != nil {
			log.Warn("could not mark listing sold", logger.Error(err))
		}
	}

	notice := fmt.Sprintf("Your item '%s' is being purchased by %s.", payload.ItemName, domain.Mention(buyerID))
	if err := l.platform.DirectMessage(ctx, payload.SellerID, platform.Message{Content: notice}); err != nil {
		log.Warn("could not notify seller", logger.Error(err))
	}

	log.Info("trade started")
	l.publish(ctx, domain.Event{
		Type:      domain.EventTradeStarted,
		UserID:    buyerID,
		ListingID: payload.ListingID,
		ChannelID: l.cfg.EscrowChannelID,
		Trade:     payload,
		At:        payload.CreatedAt,
	})

	return payload, nil
}

// BuyButton is the control attached to a feed message. A sold listing
// shows a disabled "Sold" button.
func BuyButton(listingID string, sold bool) platform.Button {
	if sold {
		return platform.Button{
			Label:    domain.SoldLabel,
			CustomID: domain.BuyControlID(listingID),
			Style:    platform.ButtonSecondary,
			Disabled: true,
		}
	}
	return platform.Button{
		Label:    domain.BuyLabel,
		CustomID: domain.BuyControlID(listingID),
		Style:    platform.ButtonSuccess,
	}
}

func (l *Lifecycle) publish(ctx context.Context, evt domain.Event) {
	if err := l.events.Publish(ctx, evt); err != nil && !errors.Is(err, context.Canceled) {
		l.log.Warn("publish event failed",
			logger.String("type", string(evt.Type)),
			logger.Error(err),
		)
	}
}
