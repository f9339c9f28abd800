package domain

import "strings"

const (
	// BuyControlPrefix starts the custom id of every listing's buy button.
	BuyControlPrefix = "buy:"

	// LegacyBuyControlID is the fixed id older listings were posted with.
	// Their listing id falls back to the message id.
	LegacyBuyControlID = "buy_now_button"

	BuyLabel  = "Buy Now"
	SoldLabel = "Sold"
)

// BuyControlID returns the buy button id for a listing.
func BuyControlID(listingID string) string {
	return BuyControlPrefix + listingID
}

// ParseBuyControlID extracts the listing id from a buy button id. ok is
// false for ids that are not buy controls. The legacy id yields "".
func ParseBuyControlID(customID string) (listingID string, ok bool) {
	if customID == LegacyBuyControlID {
		return "", true
	}
	if !strings.HasPrefix(customID, BuyControlPrefix) {
		return "", false
	}
	return strings.TrimPrefix(customID, BuyControlPrefix), true
}
