// Package dispatch routes dashboard actions and commands to the market,
// ticket and announce services and turns their outcomes into replies.
package dispatch

import (
	"context"
	"fmt"
	"runtime/debug"

	"github.com/MrSnakeDoc/marketbot/internal/announce"
	"github.com/MrSnakeDoc/marketbot/internal/domain"
	"github.com/MrSnakeDoc/marketbot/internal/logger"
	"github.com/MrSnakeDoc/marketbot/internal/market"
	"github.com/MrSnakeDoc/marketbot/internal/panel"
	"github.com/MrSnakeDoc/marketbot/internal/platform"
	"github.com/MrSnakeDoc/marketbot/internal/ticket"
)

// Dispatcher holds no state of its own; cooldowns and listings live in
// the services it was built with.
type Dispatcher struct {
	market        *market.Lifecycle
	tickets       *ticket.Service
	broadcaster   *announce.Broadcaster
	copies        *panel.Store
	messenger     platform.Messenger
	feedChannelID string
	log           logger.Logger
}

// Deps are the collaborators a Dispatcher routes to.
type Deps struct {
	Market        *market.Lifecycle
	Tickets       *ticket.Service
	Broadcaster   *announce.Broadcaster
	Copies        *panel.Store
	Messenger     platform.Messenger
	FeedChannelID string
	Logger        logger.Logger
}

// New builds a Dispatcher.
func New(d Deps) *Dispatcher {
	copies := d.Copies
	if copies == nil {
		copies = panel.Static(panel.Default())
	}
	return &Dispatcher{
		market:        d.Market,
		tickets:       d.Tickets,
		broadcaster:   d.Broadcaster,
		copies:        copies,
		messenger:     d.Messenger,
		feedChannelID: d.FeedChannelID,
		log:           d.Logger,
	}
}

// Dispatch handles one action. Every failure, panics included, is reported
// to the actor through r; the returned error is for the caller's logs only.
func (d *Dispatcher) Dispatch(ctx context.Context, action Action, r Responder) (err error) {
	log := d.log.With(
		logger.String("action", action.Name()),
		logger.String("user_id", action.Actor().ID),
	)

	defer func() {
		if rec := recover(); rec != nil {
			log.Error("action panicked",
				logger.Any("panic", rec),
				logger.String("stack", string(debug.Stack())),
			)
			_ = r.Reply(ctx, text(msgUnexpected))
			err = fmt.Errorf("panic in %s: %v", action.Name(), rec)
		}
	}()

	switch a := action.(type) {
	case SellRequested:
		err = d.sell(ctx, a, r)
	case ListingSubmitted:
		err = d.submit(ctx, a, r, log)
	case BuyRequested:
		err = d.buy(ctx, a, r, log)
	case SupportRequested:
		err = d.support(ctx, a, r, log)
	case InfoRequested:
		err = r.Reply(ctx, platform.Message{Records: []domain.DisplayRecord{d.currentCopy().InfoRecord()}})
	case PanelCommand:
		err = d.postPanel(ctx, a, r, log)
	case NotifyCommand:
		err = d.notify(ctx, a, r, log)
	case CloseCommand:
		err = d.closeTicket(ctx, a, r, log)
	case Rejected:
		err = d.fail(ctx, r, log, a.Err, "")
	default:
		log.Error("unknown action")
		err = r.Reply(ctx, text(msgUnexpected))
	}
	return err
}

func (d *Dispatcher) sell(ctx context.Context, a SellRequested, r Responder) error {
	dec := d.market.Cooldowns().CanPost(a.User.ID, d.market.Now())
	if !dec.Allowed {
		return r.Reply(ctx, text(CooldownMessage(dec.Remaining)))
	}
	return r.ShowForm(ctx, d.SellForm(a.Category))
}

func (d *Dispatcher) submit(ctx context.Context, a ListingSubmitted, r Responder, log logger.Logger) error {
	if err := r.Defer(ctx); err != nil {
		return err
	}

	listing, err := d.market.Post(ctx, a.User.ID, a.Category, a.ItemName, a.Description, a.Price)
	if err != nil {
		return d.fail(ctx, r, log, err, msgListingFailed)
	}

	log.Debug("listing submitted", logger.String("listing_id", listing.ID))
	return r.Reply(ctx, text(msgListingPosted))
}

func (d *Dispatcher) buy(ctx context.Context, a BuyRequested, r Responder, log logger.Logger) error {
	if err := r.Defer(ctx); err != nil {
		return err
	}

	ref := market.MessageRef{ChannelID: a.ChannelID, MessageID: a.MessageID}
	if _, err := d.market.Buy(ctx, ref, a.Record, a.User.ID); err != nil {
		return d.fail(ctx, r, log.With(logger.String("listing_id", a.Record.ListingID)), err, "")
	}
	return r.Reply(ctx, text(msgPurchaseSent))
}

func (d *Dispatcher) support(ctx context.Context, a SupportRequested, r Responder, log logger.Logger) error {
	if err := r.Defer(ctx); err != nil {
		return err
	}

	res, err := d.tickets.Open(ctx, a.User)
	if err != nil {
		return d.fail(ctx, r, log, err, "")
	}

	if res.Outcome == ticket.AlreadyOpen {
		return r.Reply(ctx, text(fmt.Sprintf("You already have an open ticket: %s", channelMention(res.Channel.ID))))
	}
	return r.Reply(ctx, text(fmt.Sprintf("Your ticket has been created: %s", channelMention(res.Channel.ID))))
}

func (d *Dispatcher) postPanel(ctx context.Context, a PanelCommand, r Responder, log logger.Logger) error {
	if !a.IsAdmin {
		return r.Reply(ctx, text(msgAdminOnly))
	}

	if _, err := d.messenger.Send(ctx, d.feedChannelID, d.Dashboard()); err != nil {
		if platform.IsNotFound(err) {
			err = fmt.Errorf("%w: %v", domain.ErrFeedChannelUnavailable, err)
		}
		return d.fail(ctx, r, log, err, "")
	}

	log.Info("dashboard posted", logger.String("channel", d.feedChannelID))
	return r.Reply(ctx, text(msgPanelPosted))
}

func (d *Dispatcher) notify(ctx context.Context, a NotifyCommand, r Responder, log logger.Logger) error {
	if !a.IsAdmin {
		return r.Reply(ctx, text(msgAdminOnly))
	}
	if err := r.Defer(ctx); err != nil {
		return err
	}

	tally, err := d.broadcaster.Notify(ctx, a.RoleID, a.Message)
	if err != nil {
		return d.fail(ctx, r, log.With(logger.String("role_id", a.RoleID)), err, "")
	}
	return r.Reply(ctx, text(tally.String()))
}

func (d *Dispatcher) closeTicket(ctx context.Context, a CloseCommand, r Responder, log logger.Logger) error {
	if !a.CanManageChannels {
		return r.Reply(ctx, text(msgManageOnly))
	}

	ack := func(ctx context.Context) error {
		secs := int(d.tickets.CloseDelay().Seconds())
		return r.Announce(ctx, text(fmt.Sprintf(msgTicketClosing, secs)))
	}
	if err := d.tickets.Close(ctx, a.Channel, ack); err != nil {
		return d.fail(ctx, r, log.With(logger.String("channel", a.Channel.Name)), err, "")
	}
	return nil
}

// fail reports err to the actor. Known outcomes log at Info or Warn;
// anything else at Error.
func (d *Dispatcher) fail(ctx context.Context, r Responder, log logger.Logger, err error, fallback string) error {
	msg, expected := userMessage(err, fallback)
	switch {
	case !expected:
		log.Error("action failed", logger.Error(err))
	case platform.IsForbidden(err):
		log.Warn("action forbidden by platform", logger.Error(err))
	default:
		log.Info("action rejected", logger.Error(err))
	}

	if rerr := r.Reply(ctx, text(msg)); rerr != nil {
		log.Warn("could not report failure", logger.Error(rerr))
	}
	return err
}

// SellForm builds the sell form for a category.
func (d *Dispatcher) SellForm(cat domain.Category) Form {
	cp := d.currentCopy()
	c := cp.SellForm
	return Form{
		ID:    panel.SellFormID(cat),
		Title: cp.FormTitle(cat),
		Fields: []FormField{
			{ID: panel.FieldName, Label: c.NameLabel, Placeholder: c.NamePlaceholder, Required: true, MaxLength: 256},
			{ID: panel.FieldDescription, Label: c.DescriptionLabel, Placeholder: c.DescriptionPlaceholder, Paragraph: true, Required: true, MaxLength: 1024},
			{ID: panel.FieldPrice, Label: c.PriceLabel, Placeholder: c.PricePlaceholder, Required: true, MaxLength: 100},
		},
	}
}

// Dashboard builds the panel message: one sell button per category, then
// support and info.
func (d *Dispatcher) Dashboard() platform.Message {
	cp := d.currentCopy()
	buttons := make([]platform.Button, 0, len(domain.Categories())+2)
	for _, cat := range domain.Categories() {
		buttons = append(buttons, platform.Button{
			Label:    cp.ButtonLabel(string(cat)),
			CustomID: panel.SellControlID(cat),
			Style:    platform.ButtonPrimary,
		})
	}
	buttons = append(buttons,
		platform.Button{Label: cp.ButtonLabel("support"), CustomID: panel.SupportControlID, Style: platform.ButtonSecondary},
		platform.Button{Label: cp.ButtonLabel("info"), CustomID: panel.InfoControlID, Style: platform.ButtonSecondary},
	)
	return platform.Message{
		Records: []domain.DisplayRecord{cp.DashboardRecord()},
		Buttons: buttons,
	}
}

func (d *Dispatcher) currentCopy() *panel.Copy { return d.copies.Current() }

func text(s string) platform.Message { return platform.Message{Content: s} }

func channelMention(id string) string { return "<#" + id + ">" }
