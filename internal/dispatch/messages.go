package dispatch

import (
	"errors"
	"fmt"
	"time"

	"github.com/MrSnakeDoc/marketbot/internal/cooldown"
	"github.com/MrSnakeDoc/marketbot/internal/domain"
	"github.com/MrSnakeDoc/marketbot/internal/platform"
)

const (
	msgListingPosted     = "Your anonymous listing has been posted!"
	msgListingFailed     = "There was an error posting your listing."
	msgPurchaseSent      = "Your purchase request has been sent to the third party for processing."
	msgMissingPermission = "An error occurred. The bot may be missing permissions."
	msgUnexpected        = "An unexpected error occurred."
	msgAdminOnly         = "You need administrator permission to use this command."
	msgManageOnly        = "You need the Manage Channels permission to use this command."
	msgPanelPosted       = "Dashboard posted."
	msgTicketClosing     = "This ticket will be closed in %d seconds."
)

var validationMessages = []struct {
	err error
	msg string
}{
	{domain.ErrFeedChannelUnavailable, "Error: Marketplace channel not found. Please contact an admin."},
	{domain.ErrEscrowChannelUnavailable, "Error: Third-party channel not found. Please contact an admin."},
	{domain.ErrCategoryUnavailable, "Error: Ticket category not found. Please contact an admin."},
	{domain.ErrAlreadyClaimed, "This item has already been sold."},
	{domain.ErrSellerUnresolvable, "The seller of this item is no longer a member of this server."},
	{domain.ErrMissingSellerReference, "This listing has no seller reference and cannot be bought."},
	{domain.ErrMalformedSellerReference, "This listing has an invalid seller reference and cannot be bought."},
	{domain.ErrMalformedListing, "This listing is incomplete and cannot be bought."},
	{domain.ErrNotATicketChannel, "This command can only be used in a ticket channel."},
	{domain.ErrInvalidListingField, "Every field is required. Please fill in the name, description and price."},
	{domain.ErrUnknownCategory, "Unknown listing category."},
}

// CooldownMessage tells a seller how long they must wait.
func CooldownMessage(remaining time.Duration) string {
	return fmt.Sprintf("You must wait %s before posting again.", cooldown.FormatRemaining(remaining))
}

// userMessage maps an action error to what the user is told. expected is
// false when the error is not part of the known taxonomy and deserves an
// error-level log.
func userMessage(err error, fallback string) (msg string, expected bool) {
	var denied *cooldown.DeniedError
	if errors.As(err, &denied) {
		return CooldownMessage(denied.Remaining), true
	}
	for _, vm := range validationMessages {
		if errors.Is(err, vm.err) {
			return vm.msg, true
		}
	}
	if platform.IsForbidden(err) {
		return msgMissingPermission, true
	}
	if fallback != "" {
		return fallback, false
	}
	return msgUnexpected, false
}
