package domain

import (
	"fmt"
	"strings"
	"time"
)

// Status is the lifecycle state of a listing. A listing starts Open and
// moves to Claimed exactly once.
type Status string

const (
	StatusOpen    Status = "open"
	StatusClaimed Status = "claimed"
)

// Listing is an anonymous sell offer posted to the marketplace feed.
//
// The feed message is the public face of a listing; the Listing value is
// what the coordinator keeps in memory for the lifetime of the process.
type Listing struct {
	// ─────────────────────────────
	// Identity (immutable)
	// ─────────────────────────────

	// ID is generated when the listing is posted and carried by the
	// feed message's buy control.
	ID string

	// SellerID is the platform user id of the seller. Never shown by
	// name; only embedded in the record footer.
	SellerID string

	// ─────────────────────────────
	// Offer
	// ─────────────────────────────

	Category    Category
	Name        string
	Description string
	Price       string

	// ─────────────────────────────
	// Lifecycle
	// ─────────────────────────────

	Status    Status
	CreatedAt time.Time

	// BuyerID and ClaimedAt are set on the Open -> Claimed transition.
	BuyerID   string
	ClaimedAt time.Time

	// ChannelID and MessageID locate the feed message once posted.
	ChannelID string
	MessageID string
}

// NewListing validates the submitted form values and returns an Open
// listing. Every text field is trimmed and must be non-empty.
func NewListing(id, sellerID string, category Category, name, description, price string, now time.Time) (*Listing, error) {
	if !isDigits(sellerID) {
		return nil, fmt.Errorf("%w: seller id %q", ErrInvalidListingField, sellerID)
	}
	if _, err := ParseCategory(string(category)); err != nil {
		return nil, err
	}

	fields := []struct {
		label string
		value *string
	}{
		{"name", &name},
		{"description", &description},
		{"price", &price},
	}
	for _, f := range fields {
		*f.value = strings.TrimSpace(*f.value)
		if *f.value == "" {
			return nil, fmt.Errorf("%w: %s", ErrInvalidListingField, f.label)
		}
	}

	return &Listing{
		ID:          id,
		SellerID:    sellerID,
		Category:    category,
		Name:        name,
		Description: description,
		Price:       price,
		Status:      StatusOpen,
		CreatedAt:   now,
	}, nil
}

// Record renders the listing for the marketplace feed.
func (l *Listing) Record() DisplayRecord {
	rec := Render(l.SellerID, l.Category, l.Name, l.Description, l.Price)
	rec.ListingID = l.ID
	rec.Sold = l.Status == StatusClaimed
	return rec
}

// IsOpen reports whether the listing can still be bought.
func (l *Listing) IsOpen() bool { return l.Status == StatusOpen }

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
