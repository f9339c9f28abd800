package domain

import (
	"context"
	"time"
)

// EventType names something that happened in the marketplace.
type EventType string

const (
	EventListingPosted EventType = "listing.posted"
	EventTradeStarted  EventType = "trade.started"
	EventTicketOpened  EventType = "ticket.opened"
	EventTicketClosed  EventType = "ticket.closed"
)

// Event is published for downstream consumers (audit, dashboards).
// Publishing is best effort and never changes an operation's outcome.
type Event struct {
	Type      EventType      `json:"type"`
	UserID    string         `json:"user_id,omitempty"`
	ListingID string         `json:"listing_id,omitempty"`
	ChannelID string         `json:"channel_id,omitempty"`
	Trade     *EscrowPayload `json:"trade,omitempty"`
	At        time.Time      `json:"at"`
}

// EventSink receives marketplace events.
type EventSink interface {
	Publish(ctx context.Context, evt Event) error
}

// NopSink drops every event.
type NopSink struct{}

func (NopSink) Publish(context.Context, Event) error { return nil }
