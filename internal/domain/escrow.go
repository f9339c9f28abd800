package domain

import (
	"fmt"
	"time"
)

const (
	EscrowTitle       = "Trade Initiated"
	EscrowDescription = "A buyer has clicked the 'Buy' button. Please facilitate the trade."
	EscrowFooter      = "Trade Bot"
)

// EscrowPayload is what the escrow staff need to broker a trade.
type EscrowPayload struct {
	TradeID         string    `json:"trade_id"`
	ListingID       string    `json:"listing_id"`
	ItemName        string    `json:"item_name"`
	ItemDescription string    `json:"item_description"`
	Price           string    `json:"price"`
	SellerID        string    `json:"seller_id"`
	BuyerID         string    `json:"buyer_id"`
	CreatedAt       time.Time `json:"created_at"`
}

// Record renders the escrow channel notification.
func (p EscrowPayload) Record() DisplayRecord {
	return DisplayRecord{
		Title:       EscrowTitle,
		Description: EscrowDescription,
		Fields: []Field{
			{Name: FieldItemName, Value: p.ItemName},
			{Name: FieldItemDescription, Value: p.ItemDescription},
			{Name: FieldPrice, Value: p.Price},
			{Name: FieldSeller, Value: userReference(p.SellerID), Inline: true},
			{Name: FieldBuyer, Value: userReference(p.BuyerID), Inline: true},
		},
		Footer:    EscrowFooter,
		Color:     ColorEscrow,
		Timestamp: p.CreatedAt,
	}
}

func userReference(id string) string {
	return fmt.Sprintf("%s (`%s`)", Mention(id), id)
}
