package discord

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"

	"github.com/MrSnakeDoc/marketbot/internal/dispatch"
	"github.com/MrSnakeDoc/marketbot/internal/domain"
	"github.com/MrSnakeDoc/marketbot/internal/panel"
	"github.com/MrSnakeDoc/marketbot/internal/platform"
)

// errIgnored marks interactions the marketplace does not handle.
var errIgnored = errors.New("interaction not handled")

// channelResolver looks up the channel a command was issued in.
type channelResolver interface {
	Channel(ctx context.Context, channelID string) (*platform.Channel, error)
}

// interpret is translate for the gateway: an interaction the marketplace
// handles but cannot read becomes a dispatch.Rejected so the user gets the
// same reply as any other failure. The error is non-nil only for
// interactions that get no reply at all.
func interpret(ctx context.Context, channels channelResolver, i *discordgo.InteractionCreate) (dispatch.Action, error) {
	action, err := translate(ctx, channels, i)
	if err == nil {
		return action, nil
	}
	if errors.Is(err, errIgnored) {
		return nil, err
	}
	user, _, _ := actor(i)
	return dispatch.Rejected{User: user, Err: err}, nil
}

// translate turns an interaction into a dispatcher action.
func translate(ctx context.Context, channels channelResolver, i *discordgo.InteractionCreate) (dispatch.Action, error) {
	user, perms, ok := actor(i)
	if !ok {
		return nil, fmt.Errorf("%w: no user", errIgnored)
	}

	switch i.Type {
	case discordgo.InteractionApplicationCommand:
		return translateCommand(ctx, channels, i, user, perms)
	case discordgo.InteractionMessageComponent:
		return translateComponent(i, user)
	case discordgo.InteractionModalSubmit:
		return translateModal(i, user)
	default:
		return nil, fmt.Errorf("%w: type %d", errIgnored, i.Type)
	}
}

func actor(i *discordgo.InteractionCreate) (platform.User, int64, bool) {
	switch {
	case i.Member != nil && i.Member.User != nil:
		return platform.User{ID: i.Member.User.ID, Handle: i.Member.User.Username}, i.Member.Permissions, true
	case i.User != nil:
		return platform.User{ID: i.User.ID, Handle: i.User.Username}, 0, true
	default:
		return platform.User{}, 0, false
	}
}

func translateCommand(ctx context.Context, channels channelResolver, i *discordgo.InteractionCreate, user platform.User, perms int64) (dispatch.Action, error) {
	data := i.ApplicationCommandData()
	opts := make(map[string]string, len(data.Options))
	for _, o := range data.Options {
		opts[o.Name] = fmt.Sprint(o.Value)
	}

	switch data.Name {
	case cmdSell:
		cat := domain.CategoryProduct
		if raw, ok := opts[optCategory]; ok {
			parsed, err := domain.ParseCategory(raw)
			if err != nil {
				return nil, err
			}
			cat = parsed
		}
		return dispatch.SellRequested{User: user, Category: cat}, nil

	case cmdPanel:
		return dispatch.PanelCommand{User: user, IsAdmin: perms&discordgo.PermissionAdministrator != 0}, nil

	case cmdNotify:
		return dispatch.NotifyCommand{
			User:    user,
			IsAdmin: perms&discordgo.PermissionAdministrator != 0,
			RoleID:  opts[optRole],
			Message: opts[optMessage],
		}, nil

	case cmdClose:
		ch, err := channels.Channel(ctx, i.ChannelID)
		if err != nil {
			return nil, err
		}
		return dispatch.CloseCommand{
			User:              user,
			Channel:           *ch,
			CanManageChannels: perms&(discordgo.PermissionManageChannels|discordgo.PermissionAdministrator) != 0,
		}, nil
	}
	return nil, fmt.Errorf("%w: command %q", errIgnored, data.Name)
}

func translateComponent(i *discordgo.InteractionCreate, user platform.User) (dispatch.Action, error) {
	id := i.MessageComponentData().CustomID

	if listingID, ok := domain.ParseBuyControlID(id); ok {
		if i.Message == nil || len(i.Message.Embeds) == 0 {
			return nil, domain.ErrMalformedListing
		}
		rec := fromEmbed(i.Message.Embeds[0])
		if listingID == "" {
			listingID = i.Message.ID
		}
		rec.ListingID = listingID
		rec.Sold = buttonDisabled(i.Message.Components, id)
		return dispatch.BuyRequested{
			User:      user,
			ChannelID: i.Message.ChannelID,
			MessageID: i.Message.ID,
			Record:    rec,
		}, nil
	}

	if cat, ok := panel.ParseSellControlID(id); ok {
		return dispatch.SellRequested{User: user, Category: cat}, nil
	}

	switch id {
	case panel.SupportControlID:
		return dispatch.SupportRequested{User: user}, nil
	case panel.InfoControlID:
		return dispatch.InfoRequested{User: user}, nil
	}
	return nil, fmt.Errorf("%w: component %q", errIgnored, id)
}

func translateModal(i *discordgo.InteractionCreate, user platform.User) (dispatch.Action, error) {
	data := i.ModalSubmitData()

	cat, ok := panel.ParseSellFormID(data.CustomID)
	if !ok {
		return nil, fmt.Errorf("%w: form %q", errIgnored, data.CustomID)
	}

	values := textInputs(data.Components)
	return dispatch.ListingSubmitted{
		User:        user,
		Category:    cat,
		ItemName:    values[panel.FieldName],
		Description: values[panel.FieldDescription],
		Price:       values[panel.FieldPrice],
	}, nil
}

// buttonDisabled reports whether the button with customID is greyed out.
// A sold listing keeps its buy id on a disabled button.
func buttonDisabled(components []discordgo.MessageComponent, customID string) bool {
	for _, c := range components {
		var row []discordgo.MessageComponent
		switch r := c.(type) {
		case *discordgo.ActionsRow:
			row = r.Components
		case discordgo.ActionsRow:
			row = r.Components
		}
		for _, inner := range row {
			switch b := inner.(type) {
			case *discordgo.Button:
				if b.CustomID == customID {
					return b.Disabled
				}
			case discordgo.Button:
				if b.CustomID == customID {
					return b.Disabled
				}
			}
		}
	}
	return false
}

// textInputs flattens the rows of a submitted form into id -> value.
func textInputs(components []discordgo.MessageComponent) map[string]string {
	out := make(map[string]string)
	for _, c := range components {
		var row []discordgo.MessageComponent
		switch r := c.(type) {
		case *discordgo.ActionsRow:
			row = r.Components
		case discordgo.ActionsRow:
			row = r.Components
		}
		for _, inner := range row {
			switch in := inner.(type) {
			case *discordgo.TextInput:
				out[in.CustomID] = strings.TrimSpace(in.Value)
			case discordgo.TextInput:
				out[in.CustomID] = strings.TrimSpace(in.Value)
			}
		}
	}
	return out
}
