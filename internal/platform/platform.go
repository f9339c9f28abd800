// Package platform describes what the marketplace needs from the chat
// platform: sending and editing messages, resolving members and managing
// channels. The discord package provides the production implementation;
// platformtest provides an in-memory one.
package platform

import (
	"context"

	"github.com/MrSnakeDoc/marketbot/internal/domain"
)

// User is whoever triggered an interaction.
type User struct {
	ID     string
	Handle string // platform username, used for ticket channel names
}

// Member is a user in the context of the community.
type Member struct {
	User
	RoleIDs []string
	Bot     bool
}

// ChannelKind distinguishes text channels from the category groupings
// that hold them.
type ChannelKind int

const (
	ChannelText ChannelKind = iota
	ChannelCategory
	ChannelOther
)

// Channel is a guild channel.
type Channel struct {
	ID       string
	GuildID  string
	Name     string
	ParentID string
	Kind     ChannelKind
}

// ButtonStyle selects the visual weight of a button.
type ButtonStyle int

const (
	ButtonPrimary ButtonStyle = iota
	ButtonSecondary
	ButtonSuccess
	ButtonDanger
)

// Button is an interactive control attached to a message.
type Button struct {
	Label    string
	CustomID string
	Style    ButtonStyle
	Disabled bool
}

// Message is an outbound message. Buttons are laid out in rows of five.
type Message struct {
	Content string
	Records []domain.DisplayRecord
	Buttons []Button
}

// Permission is a bit set of channel permissions.
type Permission uint64

const (
	PermViewChannel Permission = 1 << iota
	PermSendMessages
	PermReadMessageHistory
	PermAttachFiles
)

// ReadWrite is the grant given to ticket participants.
const ReadWrite = PermViewChannel | PermSendMessages | PermReadMessageHistory | PermAttachFiles

// PrincipalKind says whether an overwrite targets a role or a member.
type PrincipalKind int

const (
	PrincipalRole PrincipalKind = iota
	PrincipalMember
)

// Overwrite grants or denies permissions to one principal on a channel.
// The guild id doubles as the id of the everyone role.
type Overwrite struct {
	ID    string
	Kind  PrincipalKind
	Allow Permission
	Deny  Permission
}

// ChannelSpec describes a channel to create.
type ChannelSpec struct {
	Name       string
	ParentID   string
	Topic      string
	Overwrites []Overwrite
}

// Messenger delivers messages.
type Messenger interface {
	Send(ctx context.Context, channelID string, msg Message) (messageID string, err error)
	Edit(ctx context.Context, channelID, messageID string, msg Message) error
	DirectMessage(ctx context.Context, userID string, msg Message) error
}

// Directory resolves community members.
type Directory interface {
	// Member returns a NotFound error when the user is not in the guild.
	Member(ctx context.Context, guildID, userID string) (*Member, error)
	MembersWithRole(ctx context.Context, guildID, roleID string) ([]Member, error)
}

// Channels manages guild channels.
type Channels interface {
	// Channel returns a NotFound error for unknown ids.
	Channel(ctx context.Context, channelID string) (*Channel, error)
	GuildChannels(ctx context.Context, guildID string) ([]Channel, error)
	// CreateChannel must apply every overwrite or fail.
	CreateChannel(ctx context.Context, guildID string, spec ChannelSpec) (*Channel, error)
	DeleteChannel(ctx context.Context, channelID string) error
}

// Platform is the whole delivery collaborator.
type Platform interface {
	Messenger
	Directory
	Channels
}
