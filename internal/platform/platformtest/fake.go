// Package platformtest provides an in-memory platform.Platform for tests.
package platformtest

import (
	"context"
	"errors"
	"sort"
	"strconv"
	"sync"

	"github.com/MrSnakeDoc/marketbot/internal/platform"
)

// SentMessage is a message recorded by Send or Edit.
type SentMessage struct {
	ChannelID string
	MessageID string
	Message   platform.Message
}

// DirectMessage is a message recorded by DirectMessage.
type DirectMessage struct {
	UserID  string
	Message platform.Message
}

// Fake is an in-memory guild. Zero value is not usable; call New.
type Fake struct {
	mu sync.Mutex

	GuildID string

	channels []*platform.Channel
	members  map[string]*platform.Member
	specs    map[string]platform.ChannelSpec

	sent    []SentMessage
	edits   []SentMessage
	dms     []DirectMessage
	deleted []string

	// Failure injection.
	ForbiddenChannels map[string]bool // Send/Edit to these channels is forbidden
	DMDisabled        map[string]bool // DirectMessage to these users is forbidden
	CreateErr         error
	DeleteErr         error

	nextID int
}

// New returns an empty guild.
func New(guildID string) *Fake {
	return &Fake{
		GuildID:           guildID,
		members:           make(map[string]*platform.Member),
		specs:             make(map[string]platform.ChannelSpec),
		ForbiddenChannels: make(map[string]bool),
		DMDisabled:        make(map[string]bool),
		nextID:            1000,
	}
}

// AddChannel registers an existing channel.
func (f *Fake) AddChannel(ch platform.Channel) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if ch.GuildID == "" {
		ch.GuildID = f.GuildID
	}
	c := ch
	f.channels = append(f.channels, &c)
}

// AddMember registers a guild member.
func (f *Fake) AddMember(m platform.Member) {
	f.mu.Lock()
	defer f.mu.Unlock()

	mm := m
	f.members[m.ID] = &mm
}

// RemoveMember simulates a member leaving the guild.
func (f *Fake) RemoveMember(userID string) {
	f.mu.Lock()
	defer f.mu.Unlock()

	delete(f.members, userID)
}

func (f *Fake) newID() string {
	f.nextID++
	return strconv.Itoa(f.nextID)
}

func (f *Fake) Send(_ context.Context, channelID string, msg platform.Message) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.ForbiddenChannels[channelID] {
		return "", platform.NewError(platform.KindForbidden, "send", errors.New("missing access"))
	}
	if f.findLocked(channelID) == nil {
		return "", platform.NewError(platform.KindNotFound, "send", nil)
	}
	id := f.newID()
	f.sent = append(f.sent, SentMessage{ChannelID: channelID, MessageID: id, Message: msg})
	return id, nil
}

func (f *Fake) Edit(_ context.Context, channelID, messageID string, msg platform.Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.ForbiddenChannels[channelID] {
		return platform.NewError(platform.KindForbidden, "edit", nil)
	}
	f.edits = append(f.edits, SentMessage{ChannelID: channelID, MessageID: messageID, Message: msg})
	return nil
}

func (f *Fake) DirectMessage(_ context.Context, userID string, msg platform.Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.DMDisabled[userID] {
		return platform.NewError(platform.KindForbidden, "direct message", errors.New("cannot send messages to this user"))
	}
	f.dms = append(f.dms, DirectMessage{UserID: userID, Message: msg})
	return nil
}

func (f *Fake) Member(_ context.Context, _ string, userID string) (*platform.Member, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	m, ok := f.members[userID]
	if !ok {
		return nil, platform.NewError(platform.KindNotFound, "member", nil)
	}
	cp := *m
	return &cp, nil
}

func (f *Fake) MembersWithRole(_ context.Context, _ string, roleID string) ([]platform.Member, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var out []platform.Member
	for _, m := range f.members {
		for _, r := range m.RoleIDs {
			if r == roleID {
				out = append(out, *m)
				break
			}
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *Fake) Channel(_ context.Context, channelID string) (*platform.Channel, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	ch := f.findLocked(channelID)
	if ch == nil {
		return nil, platform.NewError(platform.KindNotFound, "channel", nil)
	}
	cp := *ch
	return &cp, nil
}

func (f *Fake) GuildChannels(_ context.Context, guildID string) ([]platform.Channel, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	out := make([]platform.Channel, 0, len(f.channels))
	for _, ch := range f.channels {
		if ch.GuildID == guildID {
			out = append(out, *ch)
		}
	}
	return out, nil
}

func (f *Fake) CreateChannel(_ context.Context, guildID string, spec platform.ChannelSpec) (*platform.Channel, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.CreateErr != nil {
		return nil, f.CreateErr
	}
	ch := &platform.Channel{
		ID:       f.newID(),
		GuildID:  guildID,
		Name:     spec.Name,
		ParentID: spec.ParentID,
		Kind:     platform.ChannelText,
	}
	f.channels = append(f.channels, ch)
	f.specs[ch.ID] = spec
	cp := *ch
	return &cp, nil
}

func (f *Fake) DeleteChannel(_ context.Context, channelID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.DeleteErr != nil {
		return f.DeleteErr
	}
	for i, ch := range f.channels {
		if ch.ID == channelID {
			f.channels = append(f.channels[:i], f.channels[i+1:]...)
			f.deleted = append(f.deleted, channelID)
			return nil
		}
	}
	return platform.NewError(platform.KindNotFound, "delete channel", nil)
}

func (f *Fake) findLocked(id string) *platform.Channel {
	for _, ch := range f.channels {
		if ch.ID == id {
			return ch
		}
	}
	return nil
}

// Sent returns every message delivered with Send.
func (f *Fake) Sent() []SentMessage {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]SentMessage(nil), f.sent...)
}

// SentTo returns messages delivered to one channel.
func (f *Fake) SentTo(channelID string) []SentMessage {
	var out []SentMessage
	for _, m := range f.Sent() {
		if m.ChannelID == channelID {
			out = append(out, m)
		}
	}
	return out
}

// Edits returns every Edit call.
func (f *Fake) Edits() []SentMessage {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]SentMessage(nil), f.edits...)
}

// DMs returns every delivered direct message.
func (f *Fake) DMs() []DirectMessage {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]DirectMessage(nil), f.dms...)
}

// Deleted returns ids of deleted channels.
func (f *Fake) Deleted() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.deleted...)
}

// Spec returns the spec a channel was created with.
func (f *Fake) Spec(channelID string) (platform.ChannelSpec, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.specs[channelID]
	return s, ok
}

var _ platform.Platform = (*Fake)(nil)
