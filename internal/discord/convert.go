package discord

import (
	"errors"
	"net/http"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/MrSnakeDoc/marketbot/internal/domain"
	"github.com/MrSnakeDoc/marketbot/internal/platform"
)

const buttonsPerRow = 5

func toEmbed(rec domain.DisplayRecord) *discordgo.MessageEmbed {
	e := &discordgo.MessageEmbed{
		Title:       rec.Title,
		Description: rec.Description,
		Color:       rec.Color,
	}
	for _, f := range rec.Fields {
		e.Fields = append(e.Fields, &discordgo.MessageEmbedField{Name: f.Name, Value: f.Value, Inline: f.Inline})
	}
	if rec.Footer != "" {
		e.Footer = &discordgo.MessageEmbedFooter{Text: rec.Footer}
	}
	if !rec.Timestamp.IsZero() {
		e.Timestamp = rec.Timestamp.UTC().Format(time.RFC3339)
	}
	return e
}

// fromEmbed rebuilds the record a listing message carries. ListingID and
// Sold come from the message's buttons, not the embed; translateComponent
// fills them in.
func fromEmbed(e *discordgo.MessageEmbed) domain.DisplayRecord {
	if e == nil {
		return domain.DisplayRecord{}
	}
	rec := domain.DisplayRecord{
		Title:       e.Title,
		Description: e.Description,
		Color:       e.Color,
	}
	for _, f := range e.Fields {
		if f == nil {
			continue
		}
		rec.Fields = append(rec.Fields, domain.Field{Name: f.Name, Value: f.Value, Inline: f.Inline})
	}
	if e.Footer != nil {
		rec.Footer = e.Footer.Text
	}
	if e.Timestamp != "" {
		if ts, err := time.Parse(time.RFC3339, e.Timestamp); err == nil {
			rec.Timestamp = ts
		}
	}
	return rec
}

func toEmbeds(recs []domain.DisplayRecord) []*discordgo.MessageEmbed {
	if len(recs) == 0 {
		return nil
	}
	out := make([]*discordgo.MessageEmbed, 0, len(recs))
	for _, r := range recs {
		out = append(out, toEmbed(r))
	}
	return out
}

var buttonStyles = map[platform.ButtonStyle]discordgo.ButtonStyle{
	platform.ButtonPrimary:   discordgo.PrimaryButton,
	platform.ButtonSecondary: discordgo.SecondaryButton,
	platform.ButtonSuccess:   discordgo.SuccessButton,
	platform.ButtonDanger:    discordgo.DangerButton,
}

func toComponents(buttons []platform.Button) []discordgo.MessageComponent {
	if len(buttons) == 0 {
		return nil
	}
	var rows []discordgo.MessageComponent
	for start := 0; start < len(buttons); start += buttonsPerRow {
		end := min(start+buttonsPerRow, len(buttons))
		row := discordgo.ActionsRow{}
		for _, b := range buttons[start:end] {
			row.Components = append(row.Components, discordgo.Button{
				Label:    b.Label,
				CustomID: b.CustomID,
				Style:    buttonStyles[b.Style],
				Disabled: b.Disabled,
			})
		}
		rows = append(rows, row)
	}
	return rows
}

func toSend(msg platform.Message) *discordgo.MessageSend {
	return &discordgo.MessageSend{
		Content:    msg.Content,
		Embeds:     toEmbeds(msg.Records),
		Components: toComponents(msg.Buttons),
	}
}

var permissionBits = []struct {
	ours   platform.Permission
	theirs int64
}{
	{platform.PermViewChannel, discordgo.PermissionViewChannel},
	{platform.PermSendMessages, discordgo.PermissionSendMessages},
	{platform.PermReadMessageHistory, discordgo.PermissionReadMessageHistory},
	{platform.PermAttachFiles, discordgo.PermissionAttachFiles},
}

func toPermissions(p platform.Permission) int64 {
	var out int64
	for _, b := range permissionBits {
		if p&b.ours != 0 {
			out |= b.theirs
		}
	}
	return out
}

func toOverwrites(ows []platform.Overwrite) []*discordgo.PermissionOverwrite {
	out := make([]*discordgo.PermissionOverwrite, 0, len(ows))
	for _, ow := range ows {
		typ := discordgo.PermissionOverwriteTypeRole
		if ow.Kind == platform.PrincipalMember {
			typ = discordgo.PermissionOverwriteTypeMember
		}
		out = append(out, &discordgo.PermissionOverwrite{
			ID:    ow.ID,
			Type:  typ,
			Allow: toPermissions(ow.Allow),
			Deny:  toPermissions(ow.Deny),
		})
	}
	return out
}

func toChannel(c *discordgo.Channel) platform.Channel {
	kind := platform.ChannelOther
	switch c.Type {
	case discordgo.ChannelTypeGuildText:
		kind = platform.ChannelText
	case discordgo.ChannelTypeGuildCategory:
		kind = platform.ChannelCategory
	}
	return platform.Channel{
		ID:       c.ID,
		GuildID:  c.GuildID,
		Name:     c.Name,
		ParentID: c.ParentID,
		Kind:     kind,
	}
}

func toMember(m *discordgo.Member) platform.Member {
	out := platform.Member{RoleIDs: m.Roles}
	if m.User != nil {
		out.ID = m.User.ID
		out.Handle = m.User.Username
		out.Bot = m.User.Bot
	}
	return out
}

// classify wraps a discordgo error into a *platform.Error so callers can
// tell missing permissions from missing objects.
func classify(op string, err error) error {
	if err == nil {
		return nil
	}

	kind := platform.KindUnknown
	var rest *discordgo.RESTError
	switch {
	case errors.As(err, &rest) && rest.Response != nil:
		switch code := rest.Response.StatusCode; {
		case code == http.StatusForbidden:
			kind = platform.KindForbidden
		case code == http.StatusNotFound:
			kind = platform.KindNotFound
		case code == http.StatusTooManyRequests || code >= http.StatusInternalServerError:
			kind = platform.KindUnavailable
		}
	case errors.Is(err, discordgo.ErrStateNotFound):
		kind = platform.KindNotFound
	}
	return platform.NewError(kind, op, err)
}
