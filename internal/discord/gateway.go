package discord

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/MrSnakeDoc/marketbot/internal/dispatch"
	"github.com/MrSnakeDoc/marketbot/internal/logger"
)

// actionTimeout bounds one interaction, close delay included.
const actionTimeout = 2 * time.Minute

// Gateway receives interactions and hands them to the dispatcher. Each
// interaction runs in its own goroutine.
type Gateway struct {
	session    *discordgo.Session
	client     *Client
	dispatcher *dispatch.Dispatcher
	guildID    string
	log        logger.Logger

	connected atomic.Bool
	inflight  inflight
}

// NewSession creates a bot session with the intents the marketplace needs.
// Listing role members requires the privileged members intent.
func NewSession(token string) (*discordgo.Session, error) {
	s, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, fmt.Errorf("create discord session: %w", err)
	}
	s.Identify.Intents = discordgo.IntentsGuilds | discordgo.IntentsGuildMembers
	return s, nil
}

// NewGateway builds a gateway over session. client must wrap the same
// session.
func NewGateway(session *discordgo.Session, client *Client, d *dispatch.Dispatcher, guildID string, log logger.Logger) *Gateway {
	return &Gateway{
		session:    session,
		client:     client,
		dispatcher: d,
		guildID:    guildID,
		log:        log,
	}
}

// Connected reports whether the gateway websocket is up. Used by /readyz.
func (g *Gateway) Connected() bool { return g.connected.Load() }

// Run opens the gateway and blocks until ctx ends, then waits for
// in-flight interactions before closing the session.
func (g *Gateway) Run(ctx context.Context) error {
	removeReady := g.session.AddHandler(func(s *discordgo.Session, r *discordgo.Ready) {
		g.connected.Store(true)
		g.log.Info("discord gateway ready",
			logger.String("bot", r.User.Username),
			logger.Int("guilds", len(r.Guilds)),
		)
		if err := g.registerCommands(ctx, r.User.ID); err != nil {
			g.log.Error("command registration failed", logger.Error(err))
		}
	})
	defer removeReady()

	removeDisconnect := g.session.AddHandler(func(_ *discordgo.Session, _ *discordgo.Disconnect) {
		g.connected.Store(false)
		g.log.Warn("discord gateway disconnected")
	})
	defer removeDisconnect()

	removeResumed := g.session.AddHandler(func(_ *discordgo.Session, _ *discordgo.Resumed) {
		g.connected.Store(true)
		g.log.Info("discord gateway resumed")
	})
	defer removeResumed()

	removeInteraction := g.session.AddHandler(func(s *discordgo.Session, i *discordgo.InteractionCreate) {
		if !g.inflight.Go(func() { g.handle(ctx, s, i) }) {
			g.log.Debug("interaction dropped during shutdown")
		}
	})

	if err := g.session.Open(); err != nil {
		removeInteraction()
		return fmt.Errorf("open discord gateway: %w", err)
	}

	<-ctx.Done()
	g.log.Info("discord gateway shutting down")

	removeInteraction()
	g.inflight.Drain()
	g.connected.Store(false)
	if err := g.session.Close(); err != nil {
		return fmt.Errorf("close discord gateway: %w", err)
	}
	return nil
}

// inflight tracks interaction goroutines. Once Drain has started, Go
// refuses new work, so the WaitGroup never gains members while it is
// being waited on.
type inflight struct {
	mu      sync.Mutex
	closing bool
	wg      sync.WaitGroup
}

// Go runs fn in a goroutine unless Drain was called. It reports whether
// fn was started.
func (f *inflight) Go(fn func()) bool {
	f.mu.Lock()
	if f.closing {
		f.mu.Unlock()
		return false
	}
	f.wg.Add(1)
	f.mu.Unlock()

	go func() {
		defer f.wg.Done()
		fn()
	}()
	return true
}

// Drain stops accepting work and waits for what is running.
func (f *inflight) Drain() {
	f.mu.Lock()
	f.closing = true
	f.mu.Unlock()
	f.wg.Wait()
}

func (g *Gateway) registerCommands(ctx context.Context, appID string) error {
	cmds, err := g.session.ApplicationCommandBulkOverwrite(appID, g.guildID, commands(), discordgo.WithContext(ctx))
	if err != nil {
		return classify("register commands", err)
	}
	g.log.Info("slash commands registered", logger.Int("count", len(cmds)), logger.String("guild_id", g.guildID))
	return nil
}

// handle runs after ctx may already be cancelled; an interaction that
// arrived before shutdown is still answered.
func (g *Gateway) handle(parent context.Context, s *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(parent), actionTimeout)
	defer cancel()

	if i.GuildID != "" && i.GuildID != g.guildID {
		return
	}

	r := newResponder(s, i.Interaction)

	action, err := interpret(ctx, g.client, i)
	if err != nil {
		g.log.Debug("interaction ignored", logger.Error(err))
		return
	}

	start := time.Now()
	err = g.dispatcher.Dispatch(ctx, action, r)
	g.log.Debug("interaction handled",
		logger.String("action", action.Name()),
		logger.Duration("took", time.Since(start)),
		logger.Bool("ok", err == nil),
	)
}
