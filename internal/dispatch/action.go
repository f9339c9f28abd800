package dispatch

import (
	"github.com/MrSnakeDoc/marketbot/internal/domain"
	"github.com/MrSnakeDoc/marketbot/internal/platform"
)

// Action is one user-initiated event. The set of variants is closed.
type Action interface {
	// Name is used in logs.
	Name() string
	// Actor is the user who triggered the action.
	Actor() platform.User
}

// SellRequested is a press on a dashboard sell button or the /sell command.
type SellRequested struct {
	User     platform.User
	Category domain.Category
}

// ListingSubmitted is a completed sell form.
type ListingSubmitted struct {
	User        platform.User
	Category    domain.Category
	ItemName    string
	Description string
	Price       string
}

// BuyRequested is a press on a listing's buy button. Record is the listing
// as currently shown in the feed.
type BuyRequested struct {
	User      platform.User
	ChannelID string
	MessageID string
	Record    domain.DisplayRecord
}

// SupportRequested is a press on the dashboard support button.
type SupportRequested struct {
	User platform.User
}

// InfoRequested is a press on the dashboard info button.
type InfoRequested struct {
	User platform.User
}

// PanelCommand posts the dashboard to the feed channel.
type PanelCommand struct {
	User    platform.User
	IsAdmin bool
}

// NotifyCommand broadcasts Message to every member holding RoleID.
type NotifyCommand struct {
	User    platform.User
	IsAdmin bool
	RoleID  string
	Message string
}

// CloseCommand closes the ticket channel it was issued in.
type CloseCommand struct {
	User              platform.User
	Channel           platform.Channel
	CanManageChannels bool
}

// Rejected carries an interaction that could not be turned into any
// other action. Err is reported to the user like any action failure.
type Rejected struct {
	User platform.User
	Err  error
}

func (SellRequested) Name() string    { return "sell" }
func (ListingSubmitted) Name() string { return "submit_listing" }
func (BuyRequested) Name() string     { return "buy" }
func (SupportRequested) Name() string { return "support" }
func (InfoRequested) Name() string    { return "info" }
func (PanelCommand) Name() string     { return "panel" }
func (NotifyCommand) Name() string    { return "notify" }
func (CloseCommand) Name() string     { return "close" }
func (Rejected) Name() string         { return "rejected" }

func (a SellRequested) Actor() platform.User    { return a.User }
func (a ListingSubmitted) Actor() platform.User { return a.User }
func (a BuyRequested) Actor() platform.User     { return a.User }
func (a SupportRequested) Actor() platform.User { return a.User }
func (a InfoRequested) Actor() platform.User    { return a.User }
func (a PanelCommand) Actor() platform.User     { return a.User }
func (a NotifyCommand) Actor() platform.User    { return a.User }
func (a CloseCommand) Actor() platform.User     { return a.User }
func (a Rejected) Actor() platform.User         { return a.User }
