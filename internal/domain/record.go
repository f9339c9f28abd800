package domain

import (
	"fmt"
	"strings"
	"time"
)

const (
	// SellerIDMarker prefixes the seller id in a listing footer.
	SellerIDMarker = "SellerID:"

	FieldCategory        = "Category"
	FieldPrice           = "Price"
	FieldItemName        = "Item Name"
	FieldItemDescription = "Item Description"
	FieldSeller          = "Seller"
	FieldBuyer           = "Buyer"

	// Colours follow the platform's 0xRRGGBB convention.
	ColorListing = 0x3498DB
	ColorEscrow  = 0xF1C40F
	ColorInfo    = 0x2ECC71
)

// Field is a labelled value inside a DisplayRecord.
type Field struct {
	Name   string
	Value  string
	Inline bool
}

// DisplayRecord is the rich message the chat platform shows for a
// listing, an escrow notification or the dashboard.
type DisplayRecord struct {
	Title       string
	Description string
	Fields      []Field
	Footer      string
	Color       int
	Timestamp   time.Time

	// ListingID and Sold describe the buy control attached to a listing
	// record. Both are empty for other records.
	ListingID string
	Sold      bool
}

// Field returns the value of the first field named name.
func (r DisplayRecord) Field(name string) (string, bool) {
	for _, f := range r.Fields {
		if f.Name == name {
			return f.Value, true
		}
	}
	return "", false
}

// Render builds the feed record for a listing. The seller is anonymous to
// readers but recoverable through ParseSellerID(record.Footer).
func Render(sellerID string, category Category, name, description, price string) DisplayRecord {
	return DisplayRecord{
		Title:       name,
		Description: description,
		Fields: []Field{
			{Name: FieldCategory, Value: string(category), Inline: true},
			{Name: FieldPrice, Value: price, Inline: true},
		},
		Footer: SellerIDMarker + sellerID,
		Color:  ColorListing,
	}
}

// ParseSellerID recovers the seller id Render embedded in a footer.
// A footer without the marker yields ErrMissingSellerReference; a marker
// not followed by digits only yields ErrMalformedSellerReference.
func ParseSellerID(footer string) (string, error) {
	idx := strings.Index(footer, SellerIDMarker)
	if idx < 0 {
		return "", ErrMissingSellerReference
	}
	id := strings.TrimSpace(footer[idx+len(SellerIDMarker):])
	if !isDigits(id) {
		return "", fmt.Errorf("%w: %q", ErrMalformedSellerReference, id)
	}
	return id, nil
}

// ListingFromRecord rebuilds a listing from its feed record. Used when a
// buy arrives for a listing this process did not post (for example after
// a restart).
func ListingFromRecord(rec DisplayRecord) (*Listing, error) {
	price, ok := rec.Field(FieldPrice)
	if strings.TrimSpace(rec.Title) == "" || strings.TrimSpace(rec.Description) == "" || !ok || strings.TrimSpace(price) == "" {
		return nil, ErrMalformedListing
	}
	sellerID, err := ParseSellerID(rec.Footer)
	if err != nil {
		return nil, err
	}

	category := CategoryProduct
	if raw, ok := rec.Field(FieldCategory); ok {
		if c, err := ParseCategory(raw); err == nil {
			category = c
		}
	}

	status := StatusOpen
	if rec.Sold {
		status = StatusClaimed
	}

	return &Listing{
		ID:          rec.ListingID,
		SellerID:    sellerID,
		Category:    category,
		Name:        rec.Title,
		Description: rec.Description,
		Price:       price,
		Status:      status,
	}, nil
}

// Mention renders a user mention the platform turns into a clickable name.
func Mention(userID string) string {
	return "<@" + userID + ">"
}

// RoleMention renders a role mention.
func RoleMention(roleID string) string {
	return "<@&" + roleID + ">"
}
