package dispatch

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrSnakeDoc/marketbot/internal/announce"
	"github.com/MrSnakeDoc/marketbot/internal/clock"
	"github.com/MrSnakeDoc/marketbot/internal/cooldown"
	"github.com/MrSnakeDoc/marketbot/internal/domain"
	"github.com/MrSnakeDoc/marketbot/internal/logger"
	"github.com/MrSnakeDoc/marketbot/internal/market"
	"github.com/MrSnakeDoc/marketbot/internal/panel"
	"github.com/MrSnakeDoc/marketbot/internal/platform"
	"github.com/MrSnakeDoc/marketbot/internal/platform/platformtest"
	"github.com/MrSnakeDoc/marketbot/internal/ticket"
)

const (
	guildID    = "100"
	feedID     = "200"
	escrowID   = "300"
	categoryID = "400"
	supportID  = "900"
)

var (
	seller = platform.User{ID: "42", Handle: "seller"}
	buyer  = platform.User{ID: "77", Handle: "Buyer"}
)

type recorder struct {
	mu        sync.Mutex
	deferred  int
	replies   []platform.Message
	announced []platform.Message
	forms     []Form
}

func (r *recorder) Defer(context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.deferred++
	return nil
}

func (r *recorder) Reply(_ context.Context, msg platform.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.replies = append(r.replies, msg)
	return nil
}

func (r *recorder) Announce(_ context.Context, msg platform.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.announced = append(r.announced, msg)
	return nil
}

func (r *recorder) ShowForm(_ context.Context, f Form) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.forms = append(r.forms, f)
	return nil
}

func (r *recorder) lastReply(t *testing.T) string {
	t.Helper()
	r.mu.Lock()
	defer r.mu.Unlock()
	require.NotEmpty(t, r.replies)
	return r.replies[len(r.replies)-1].Content
}

type harness struct {
	fake *platformtest.Fake
	clk  *clock.FakeClock
	d    *Dispatcher
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	fake := platformtest.New(guildID)
	fake.AddChannel(platform.Channel{ID: feedID, Name: "marketplace"})
	fake.AddChannel(platform.Channel{ID: escrowID, Name: "escrow"})
	fake.AddChannel(platform.Channel{ID: categoryID, Name: "Tickets", Kind: platform.ChannelCategory})
	fake.AddMember(platform.Member{User: seller, RoleIDs: []string{"1"}})
	fake.AddMember(platform.Member{User: buyer, RoleIDs: []string{"1"}})

	clk := clock.Fake(time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC))
	log := logger.Nop()

	life := market.New(
		market.Config{GuildID: guildID, FeedChannelID: feedID, EscrowChannelID: escrowID},
		fake, market.NewRegistry(), cooldown.NewTracker(cooldown.DefaultWindow), log,
		market.WithClock(clk),
	)
	tickets := ticket.NewService(ticket.Config{
		GuildID:        guildID,
		CategoryID:     categoryID,
		SupportRoleIDs: []string{supportID},
	}, fake, clk, nil, log)

	d := New(Deps{
		Market:        life,
		Tickets:       tickets,
		Broadcaster:   announce.NewBroadcaster(guildID, fake, 0, log),
		Messenger:     fake,
		FeedChannelID: feedID,
		Logger:        log,
	})
	return &harness{fake: fake, clk: clk, d: d}
}

func (h *harness) submit(t *testing.T) *recorder {
	t.Helper()
	r := &recorder{}
	err := h.d.Dispatch(context.Background(), ListingSubmitted{
		User: seller, Category: domain.CategoryTool,
		ItemName: "Drone Repair", Description: "Fixes quadcopters", Price: "$30",
	}, r)
	require.NoError(t, err)
	return r
}

func TestSellShowsFormThenCooldown(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	r := &recorder{}
	require.NoError(t, h.d.Dispatch(ctx, SellRequested{User: seller, Category: domain.CategoryTool}, r))
	require.Len(t, r.forms, 1)
	assert.Equal(t, panel.SellFormID(domain.CategoryTool), r.forms[0].ID)
	assert.Equal(t, "List a Tool for Sale", r.forms[0].Title)
	assert.Len(t, r.forms[0].Fields, 3)

	posted := h.submit(t)
	assert.Equal(t, 1, posted.deferred)
	assert.Equal(t, msgListingPosted, posted.lastReply(t))

	h.clk.Advance(time.Hour)
	r = &recorder{}
	require.NoError(t, h.d.Dispatch(ctx, SellRequested{User: seller, Category: domain.CategoryService}, r))
	assert.Empty(t, r.forms)
	assert.Equal(t, "You must wait 11h 0m before posting again.", r.lastReply(t))
}

func TestBuyFlow(t *testing.T) {
	h := newHarness(t)
	h.submit(t)

	feed := h.fake.SentTo(feedID)
	require.Len(t, feed, 1)
	rec := feed[0].Message.Records[0]

	h.clk.Advance(time.Minute)
	r := &recorder{}
	err := h.d.Dispatch(context.Background(), BuyRequested{
		User: buyer, ChannelID: feedID, MessageID: feed[0].MessageID, Record: rec,
	}, r)
	require.NoError(t, err)
	assert.Equal(t, msgPurchaseSent, r.lastReply(t))

	escrow := h.fake.SentTo(escrowID)
	require.Len(t, escrow, 1)
	item, _ := escrow[0].Message.Records[0].Field(domain.FieldItemName)
	assert.Equal(t, "Drone Repair", item)

	again := &recorder{}
	err = h.d.Dispatch(context.Background(), BuyRequested{
		User: buyer, ChannelID: feedID, MessageID: feed[0].MessageID, Record: rec,
	}, again)
	assert.ErrorIs(t, err, domain.ErrAlreadyClaimed)
	assert.Equal(t, "This item has already been sold.", again.lastReply(t))
}

func TestFailureMessages(t *testing.T) {
	tests := []struct {
		name  string
		setup func(*harness)
		act   Action
		want  string
	}{
		{
			name:  "feed missing",
			setup: func(h *harness) { h.d.market = marketWithFeed(h, "999") },
			act:   ListingSubmitted{User: seller, Category: domain.CategoryProduct, ItemName: "a", Description: "b", Price: "c"},
			want:  "Error: Marketplace channel not found. Please contact an admin.",
		},
		{
			name:  "feed forbidden",
			setup: func(h *harness) { h.fake.ForbiddenChannels[feedID] = true },
			act:   ListingSubmitted{User: seller, Category: domain.CategoryProduct, ItemName: "a", Description: "b", Price: "c"},
			want:  msgMissingPermission,
		},
		{
			name:  "blank field",
			setup: func(*harness) {},
			act:   ListingSubmitted{User: seller, Category: domain.CategoryProduct, ItemName: "a", Description: "", Price: "c"},
			want:  "Every field is required. Please fill in the name, description and price.",
		},
		{
			name:  "record without price",
			setup: func(*harness) {},
			act: BuyRequested{User: buyer, Record: domain.DisplayRecord{
				Title: "x", Description: "y", Footer: "SellerID:42", ListingID: "l1",
			}},
			want: "This listing is incomplete and cannot be bought.",
		},
		{
			name:  "seller left",
			setup: func(h *harness) { h.fake.RemoveMember(seller.ID) },
			act:   BuyRequested{User: buyer, Record: listingRecord("l1")},
			want:  "The seller of this item is no longer a member of this server.",
		},
		{
			name:  "escrow forbidden",
			setup: func(h *harness) { h.fake.ForbiddenChannels[escrowID] = true },
			act:   BuyRequested{User: buyer, Record: listingRecord("l1")},
			want:  msgMissingPermission,
		},
		{
			name:  "ticket creation error",
			setup: func(h *harness) { h.fake.CreateErr = errors.New("boom") },
			act:   SupportRequested{User: buyer},
			want:  msgUnexpected,
		},
		{
			name:  "close outside ticket",
			setup: func(*harness) {},
			act:   CloseCommand{User: buyer, Channel: platform.Channel{ID: feedID, Name: "marketplace"}, CanManageChannels: true},
			want:  "This command can only be used in a ticket channel.",
		},
		{
			name:  "close without permission",
			setup: func(*harness) {},
			act:   CloseCommand{User: buyer, Channel: platform.Channel{ID: "5", Name: "ticket-buyer"}},
			want:  msgManageOnly,
		},
		{
			name:  "panel by non admin",
			setup: func(*harness) {},
			act:   PanelCommand{User: buyer},
			want:  msgAdminOnly,
		},
		{
			name:  "notify by non admin",
			setup: func(*harness) {},
			act:   NotifyCommand{User: buyer, RoleID: "1", Message: "hi"},
			want:  msgAdminOnly,
		},
		{
			name:  "unknown sell category",
			setup: func(*harness) {},
			act:   Rejected{User: seller, Err: fmt.Errorf("sell option: %w", domain.ErrUnknownCategory)},
			want:  "Unknown listing category.",
		},
		{
			name:  "unreadable interaction",
			setup: func(*harness) {},
			act:   Rejected{User: buyer, Err: errors.New("channel lookup timed out")},
			want:  msgUnexpected,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t)
			tt.setup(h)

			r := &recorder{}
			_ = h.d.Dispatch(context.Background(), tt.act, r)
			assert.Equal(t, tt.want, r.lastReply(t))
		})
	}
}

func marketWithFeed(h *harness, feed string) *market.Lifecycle {
	return market.New(
		market.Config{GuildID: guildID, FeedChannelID: feed, EscrowChannelID: escrowID},
		h.fake, market.NewRegistry(), cooldown.NewTracker(0), logger.Nop(),
		market.WithClock(h.clk),
	)
}

func listingRecord(id string) domain.DisplayRecord {
	rec := domain.Render(seller.ID, domain.CategoryTool, "Drone Repair", "Fixes quadcopters", "$30")
	rec.ListingID = id
	return rec
}

func TestSupportCreatesOnce(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	first := &recorder{}
	require.NoError(t, h.d.Dispatch(ctx, SupportRequested{User: buyer}, first))
	assert.Contains(t, first.lastReply(t), "Your ticket has been created: <#")

	second := &recorder{}
	require.NoError(t, h.d.Dispatch(ctx, SupportRequested{User: buyer}, second))
	assert.Contains(t, second.lastReply(t), "You already have an open ticket: <#")

	var tickets int
	channels, _ := h.fake.GuildChannels(ctx, guildID)
	for _, ch := range channels {
		if ch.Name == "ticket-buyer" {
			tickets++
		}
	}
	assert.Equal(t, 1, tickets)
}

func TestCloseAnnouncesThenDeletes(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	require.NoError(t, h.d.Dispatch(ctx, SupportRequested{User: buyer}, &recorder{}))
	channels, _ := h.fake.GuildChannels(ctx, guildID)
	var ch platform.Channel
	for _, c := range channels {
		if c.Name == "ticket-buyer" {
			ch = c
		}
	}
	require.NotEmpty(t, ch.ID)

	r := &recorder{}
	done := make(chan error, 1)
	go func() {
		done <- h.d.Dispatch(ctx, CloseCommand{User: buyer, Channel: ch, CanManageChannels: true}, r)
	}()

	h.clk.WaitForTimers(1)
	r.mu.Lock()
	require.Len(t, r.announced, 1)
	assert.Equal(t, "This ticket will be closed in 5 seconds.", r.announced[0].Content)
	r.mu.Unlock()

	h.clk.Advance(ticket.DefaultCloseDelay)
	require.NoError(t, <-done)
	assert.Equal(t, []string{ch.ID}, h.fake.Deleted())
}

func TestPanelAndNotify(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	r := &recorder{}
	require.NoError(t, h.d.Dispatch(ctx, PanelCommand{User: seller, IsAdmin: true}, r))
	assert.Equal(t, msgPanelPosted, r.lastReply(t))

	feed := h.fake.SentTo(feedID)
	require.Len(t, feed, 1)
	assert.Len(t, feed[0].Message.Buttons, len(domain.Categories())+2)
	assert.Equal(t, panel.SupportControlID, feed[0].Message.Buttons[4].CustomID)

	r = &recorder{}
	require.NoError(t, h.d.Dispatch(ctx, NotifyCommand{User: seller, IsAdmin: true, RoleID: "1", Message: "Market day!"}, r))
	assert.Equal(t, "Message sent to 2 member(s), failed for 0.", r.lastReply(t))
	assert.Len(t, h.fake.DMs(), 2)
}

func TestInfo(t *testing.T) {
	h := newHarness(t)

	r := &recorder{}
	require.NoError(t, h.d.Dispatch(context.Background(), InfoRequested{User: buyer}, r))
	require.Len(t, r.replies, 1)
	require.Len(t, r.replies[0].Records, 1)
	assert.Equal(t, "How the marketplace works", r.replies[0].Records[0].Title)
}

type unknownAction struct{ InfoRequested }

func TestDispatchRecoversPanics(t *testing.T) {
	h := newHarness(t)
	h.d.copies = panel.Static(nil)

	r := &recorder{}
	err := h.d.Dispatch(context.Background(), InfoRequested{User: buyer}, r)
	require.Error(t, err)
	assert.Equal(t, msgUnexpected, r.lastReply(t))
}

func TestUnknownAction(t *testing.T) {
	h := newHarness(t)

	r := &recorder{}
	require.NoError(t, h.d.Dispatch(context.Background(), unknownAction{}, r))
	assert.Equal(t, msgUnexpected, r.lastReply(t))
}
