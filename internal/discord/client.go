// Package discord adapts discordgo to the platform interfaces and turns
// gateway interactions into dispatcher actions.
package discord

import (
	"context"

	"github.com/bwmarrin/discordgo"

	"github.com/MrSnakeDoc/marketbot/internal/platform"
)

const membersPageSize = 1000

// Client implements platform.Platform over a discordgo session. The
// session's own rate limiter paces REST calls; ctx is attached to each
// request so shutdown cancels in-flight calls.
type Client struct {
	s *discordgo.Session
}

// NewClient wraps an existing session.
func NewClient(s *discordgo.Session) *Client {
	return &Client{s: s}
}

func (c *Client) Send(ctx context.Context, channelID string, msg platform.Message) (string, error) {
	m, err := c.s.ChannelMessageSendComplex(channelID, toSend(msg), discordgo.WithContext(ctx))
	if err != nil {
		return "", classify("send", err)
	}
	return m.ID, nil
}

func (c *Client) Edit(ctx context.Context, channelID, messageID string, msg platform.Message) error {
	edit := discordgo.NewMessageEdit(channelID, messageID)
	if msg.Content != "" {
		edit.SetContent(msg.Content)
	}
	if len(msg.Records) > 0 {
		edit.SetEmbeds(toEmbeds(msg.Records))
	}
	components := toComponents(msg.Buttons)
	edit.Components = &components

	_, err := c.s.ChannelMessageEditComplex(edit, discordgo.WithContext(ctx))
	return classify("edit", err)
}

func (c *Client) DirectMessage(ctx context.Context, userID string, msg platform.Message) error {
	ch, err := c.s.UserChannelCreate(userID, discordgo.WithContext(ctx))
	if err != nil {
		return classify("open direct channel", err)
	}
	_, err = c.s.ChannelMessageSendComplex(ch.ID, toSend(msg), discordgo.WithContext(ctx))
	return classify("direct message", err)
}

func (c *Client) Member(ctx context.Context, guildID, userID string) (*platform.Member, error) {
	m, err := c.s.GuildMember(guildID, userID, discordgo.WithContext(ctx))
	if err != nil {
		return nil, classify("member", err)
	}
	out := toMember(m)
	return &out, nil
}

// MembersWithRole pages through the whole member list; the API has no
// server-side role filter.
func (c *Client) MembersWithRole(ctx context.Context, guildID, roleID string) ([]platform.Member, error) {
	var (
		out   []platform.Member
		after string
	)
	for {
		page, err := c.s.GuildMembers(guildID, after, membersPageSize, discordgo.WithContext(ctx))
		if err != nil {
			return nil, classify("list members", err)
		}
		for _, m := range page {
			for _, r := range m.Roles {
				if r == roleID {
					out = append(out, toMember(m))
					break
				}
			}
		}
		if len(page) < membersPageSize {
			return out, nil
		}
		after = page[len(page)-1].User.ID
	}
}

func (c *Client) Channel(ctx context.Context, channelID string) (*platform.Channel, error) {
	if ch, err := c.s.State.Channel(channelID); err == nil {
		out := toChannel(ch)
		return &out, nil
	}
	ch, err := c.s.Channel(channelID, discordgo.WithContext(ctx))
	if err != nil {
		return nil, classify("channel", err)
	}
	out := toChannel(ch)
	return &out, nil
}

// GuildChannels always asks the API so a ticket deleted by hand is not
// still seen through a stale cache.
func (c *Client) GuildChannels(ctx context.Context, guildID string) ([]platform.Channel, error) {
	chs, err := c.s.GuildChannels(guildID, discordgo.WithContext(ctx))
	if err != nil {
		return nil, classify("list channels", err)
	}
	out := make([]platform.Channel, 0, len(chs))
	for _, ch := range chs {
		out = append(out, toChannel(ch))
	}
	return out, nil
}

// CreateChannel sends the overwrites with the create request, so the
// channel never exists without them.
func (c *Client) CreateChannel(ctx context.Context, guildID string, spec platform.ChannelSpec) (*platform.Channel, error) {
	ch, err := c.s.GuildChannelCreateComplex(guildID, discordgo.GuildChannelCreateData{
		Name:                 spec.Name,
		Type:                 discordgo.ChannelTypeGuildText,
		Topic:                spec.Topic,
		ParentID:             spec.ParentID,
		PermissionOverwrites: toOverwrites(spec.Overwrites),
	}, discordgo.WithContext(ctx))
	if err != nil {
		return nil, classify("create channel", err)
	}
	out := toChannel(ch)
	return &out, nil
}

func (c *Client) DeleteChannel(ctx context.Context, channelID string) error {
	_, err := c.s.ChannelDelete(channelID, discordgo.WithContext(ctx))
	return classify("delete channel", err)
}

var _ platform.Platform = (*Client)(nil)
