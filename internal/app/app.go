package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"github.com/MrSnakeDoc/marketbot/internal/announce"
	"github.com/MrSnakeDoc/marketbot/internal/clock"
	"github.com/MrSnakeDoc/marketbot/internal/config"
	"github.com/MrSnakeDoc/marketbot/internal/cooldown"
	"github.com/MrSnakeDoc/marketbot/internal/discord"
	"github.com/MrSnakeDoc/marketbot/internal/dispatch"
	"github.com/MrSnakeDoc/marketbot/internal/domain"
	"github.com/MrSnakeDoc/marketbot/internal/httpserver"
	"github.com/MrSnakeDoc/marketbot/internal/httpserver/deps"
	"github.com/MrSnakeDoc/marketbot/internal/logger"
	"github.com/MrSnakeDoc/marketbot/internal/market"
	"github.com/MrSnakeDoc/marketbot/internal/panel"
	"github.com/MrSnakeDoc/marketbot/internal/redis"
	redisstore "github.com/MrSnakeDoc/marketbot/internal/store/redis"
	"github.com/MrSnakeDoc/marketbot/internal/ticket"
	"github.com/MrSnakeDoc/marketbot/internal/version"
)

type App struct {
	cfg         *config.Config
	logger      logger.Logger
	gateway     *discord.Gateway
	server      *httpserver.Server // nil when the ops server is disabled
	redisClient *goredis.Client    // nil when Redis is disabled
}

// New wires every component. Redis, when configured, must answer before
// ConnectTimeout or New fails.
func New(ctx context.Context, cfg *config.Config, loggerClient logger.Logger) (*App, error) {
	panels, err := panel.NewStore(panel.NewLoader(cfg.PanelFile))
	if err != nil {
		return nil, fmt.Errorf("failed to load panel copy: %w", err)
	}

	var (
		redisClient *goredis.Client
		events      domain.EventSink = domain.NopSink{}
		eventStore  *redisstore.Store
	)
	if cfg.RedisEnabled() {
		redisClient, err = redis.New(ctx, redis.OptionsFromConfig(cfg), loggerClient)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to redis: %w", err)
		}
		eventStore = redisstore.NewStore(redisClient, cfg.RedisChannel)
		events = eventStore
		loggerClient.Info("event publishing enabled", logger.String("channel", eventStore.Channel()))
	} else {
		loggerClient.Info("redis not configured, event publishing disabled")
	}

	session, err := discord.NewSession(cfg.BotToken)
	if err != nil {
		closeRedis(redisClient, loggerClient)
		return nil, err
	}
	client := discord.NewClient(session)
	clk := clock.Real()

	registry := market.NewRegistry()
	cooldowns := cooldown.NewTracker(cfg.Cooldown)
	lifecycle := market.New(market.Config{
		GuildID:         cfg.GuildID,
		FeedChannelID:   cfg.MarketChannelID,
		EscrowChannelID: cfg.EscrowChannelID,
	}, client, registry, cooldowns, loggerClient.With(logger.String("component", "market")),
		market.WithClock(clk),
		market.WithEvents(events),
	)

	tickets := ticket.NewService(ticket.Config{
		GuildID:        cfg.GuildID,
		CategoryID:     cfg.TicketCategoryID,
		SupportRoleIDs: cfg.SupportRoleIDs,
		CloseDelay:     cfg.TicketCloseDelay,
	}, client, clk, events, loggerClient.With(logger.String("component", "ticket")))

	broadcaster := announce.NewBroadcaster(cfg.GuildID, client, cfg.NotifyInterval,
		loggerClient.With(logger.String("component", "announce")))

	dispatcher := dispatch.New(dispatch.Deps{
		Market:        lifecycle,
		Tickets:       tickets,
		Broadcaster:   broadcaster,
		Copies:        panels,
		Messenger:     client,
		FeedChannelID: cfg.MarketChannelID,
		Logger:        loggerClient.With(logger.String("component", "dispatch")),
	})

	gateway := discord.NewGateway(session, client, dispatcher, cfg.GuildID,
		loggerClient.With(logger.String("component", "gateway")))

	a := &App{
		cfg:         cfg,
		logger:      loggerClient,
		gateway:     gateway,
		redisClient: redisClient,
	}

	if cfg.OpsListen != "" {
		d := deps.Deps{
			Logger:       loggerClient,
			StartTime:    time.Now(),
			Version:      version.Version,
			Commit:       version.Commit,
			BuildDate:    version.BuildDate,
			GoVersion:    version.GoVersion,
			TimeNow:      time.Now,
			AllowedCIDRS: cfg.AllowedCIDRS,
			TrustProxy:   cfg.TrustProxy,
			PingTimeout:  cfg.RedisPingTimeout,
			Gateway:      gateway,
			Listings:     registry,
			Cooldowns:    cooldowns,
			Panel:        panels,
		}
		if eventStore != nil {
			d.Events = eventStore
		}
		a.server = httpserver.New(cfg, loggerClient, d)
	} else {
		loggerClient.Info("ops server disabled")
	}

	return a, nil
}

// Run blocks until SIGINT/SIGTERM, ctx ends, or a component fails.
func (a *App) Run(ctx context.Context) error {
	a.logger.Infof("🚀 Starting marketbot %s", version.String())

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := a.gateway.Run(gctx); err != nil {
			return fmt.Errorf("discord gateway: %w", err)
		}
		return nil
	})

	if a.server != nil {
		g.Go(func() error {
			if err := a.server.Start(); err != nil {
				return fmt.Errorf("ops server: %w", err)
			}
			return nil
		})
		g.Go(func() error {
			<-gctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(gctx), a.cfg.ShutdownTimeout)
			defer cancel()
			if err := a.server.Stop(shutdownCtx); err != nil {
				return fmt.Errorf("failed to stop ops server: %w", err)
			}
			return nil
		})
	}

	<-gctx.Done()
	a.logger.Info("⏳ Shutting down gracefully...")

	err := g.Wait()
	closeRedis(a.redisClient, a.logger)
	if err != nil {
		return err
	}

	a.logger.Info("✅ marketbot stopped cleanly")
	return nil
}

func closeRedis(c *goredis.Client, log logger.Logger) {
	if c == nil {
		return
	}
	if err := c.Close(); err != nil {
		log.Warnf("failed to close redis: %v", err)
	} else {
		log.Info("✅ Redis closed cleanly")
	}
}
