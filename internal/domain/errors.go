package domain

import "errors"

// Listing validation.
var (
	ErrInvalidListingField = errors.New("listing field is empty or invalid")
	ErrUnknownCategory     = errors.New("unknown listing category")
)

// Buy validation, in the order AttemptBuy checks them.
var (
	ErrMalformedListing         = errors.New("listing record is missing title, description or price")
	ErrMissingSellerReference   = errors.New("listing record has no seller reference")
	ErrMalformedSellerReference = errors.New("listing record seller reference is malformed")
	ErrSellerUnresolvable       = errors.New("seller is no longer a community member")
	ErrEscrowChannelUnavailable = errors.New("escrow channel is not available")
	ErrAlreadyClaimed           = errors.New("listing has already been claimed")
	ErrFeedChannelUnavailable   = errors.New("marketplace channel is not available")
)

// Ticket validation.
var (
	ErrCategoryUnavailable = errors.New("ticket category is missing or not a category")
	ErrNotATicketChannel   = errors.New("channel is not a ticket channel")
)
