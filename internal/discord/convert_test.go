package discord

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrSnakeDoc/marketbot/internal/domain"
	"github.com/MrSnakeDoc/marketbot/internal/platform"
)

func TestEmbedRoundTrip(t *testing.T) {
	rec := domain.Render("42", domain.CategoryTool, "Drone Repair", "Fixes quadcopters", "$30")
	rec.Timestamp = time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)

	e := toEmbed(rec)
	assert.Equal(t, "SellerID:42", e.Footer.Text)
	assert.Equal(t, "2024-05-01T09:00:00Z", e.Timestamp)
	require.Len(t, e.Fields, 2)

	back := fromEmbed(e)
	assert.Equal(t, rec, back)

	id, err := domain.ParseSellerID(back.Footer)
	require.NoError(t, err)
	assert.Equal(t, "42", id)
}

func TestFromEmbedNil(t *testing.T) {
	assert.Equal(t, domain.DisplayRecord{}, fromEmbed(nil))
}

func TestComponentsRows(t *testing.T) {
	buttons := make([]platform.Button, 7)
	for i := range buttons {
		buttons[i] = platform.Button{Label: fmt.Sprint(i), CustomID: fmt.Sprint("b", i), Style: platform.ButtonSuccess}
	}

	rows := toComponents(buttons)
	require.Len(t, rows, 2)
	assert.Len(t, rows[0].(discordgo.ActionsRow).Components, 5)
	assert.Len(t, rows[1].(discordgo.ActionsRow).Components, 2)

	first := rows[0].(discordgo.ActionsRow).Components[0].(discordgo.Button)
	assert.Equal(t, discordgo.SuccessButton, first.Style)
	assert.Equal(t, "b0", first.CustomID)

	assert.Nil(t, toComponents(nil))
}

func TestOverwrites(t *testing.T) {
	ows := toOverwrites([]platform.Overwrite{
		{ID: "100", Kind: platform.PrincipalRole, Deny: platform.PermViewChannel},
		{ID: "55", Kind: platform.PrincipalMember, Allow: platform.ReadWrite},
	})
	require.Len(t, ows, 2)

	assert.Equal(t, discordgo.PermissionOverwriteTypeRole, ows[0].Type)
	assert.Equal(t, int64(discordgo.PermissionViewChannel), ows[0].Deny)
	assert.Zero(t, ows[0].Allow)

	assert.Equal(t, discordgo.PermissionOverwriteTypeMember, ows[1].Type)
	want := int64(discordgo.PermissionViewChannel | discordgo.PermissionSendMessages |
		discordgo.PermissionReadMessageHistory | discordgo.PermissionAttachFiles)
	assert.Equal(t, want, ows[1].Allow)
}

func TestToChannelKinds(t *testing.T) {
	tests := []struct {
		typ  discordgo.ChannelType
		want platform.ChannelKind
	}{
		{discordgo.ChannelTypeGuildText, platform.ChannelText},
		{discordgo.ChannelTypeGuildCategory, platform.ChannelCategory},
		{discordgo.ChannelTypeGuildVoice, platform.ChannelOther},
	}
	for _, tt := range tests {
		got := toChannel(&discordgo.Channel{ID: "1", Type: tt.typ})
		assert.Equal(t, tt.want, got.Kind, "type %d", tt.typ)
	}
}

func TestClassify(t *testing.T) {
	rest := func(code int) error {
		return &discordgo.RESTError{Response: &http.Response{StatusCode: code}}
	}

	tests := []struct {
		name string
		err  error
		want platform.ErrorKind
	}{
		{"forbidden", rest(http.StatusForbidden), platform.KindForbidden},
		{"not found", rest(http.StatusNotFound), platform.KindNotFound},
		{"rate limited", rest(http.StatusTooManyRequests), platform.KindUnavailable},
		{"server error", rest(http.StatusBadGateway), platform.KindUnavailable},
		{"bad request", rest(http.StatusBadRequest), platform.KindUnknown},
		{"state miss", discordgo.ErrStateNotFound, platform.KindNotFound},
		{"other", errors.New("socket closed"), platform.KindUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := classify("op", tt.err)
			assert.Equal(t, tt.want, platform.KindOf(err))
			assert.ErrorIs(t, err, tt.err)
		})
	}

	assert.NoError(t, classify("op", nil))
}
