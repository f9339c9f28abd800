package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	// Discord
	BotToken         string   // DISCORD_BOT_TOKEN
	GuildID          string   // community the bot serves
	MarketChannelID  string   // listings feed
	EscrowChannelID  string   // third-party channel receiving trades
	SupportRoleIDs   []string // roles added to every ticket
	TicketCategoryID string   // category that holds ticket channels

	LogLevel  string // "debug" | "info" | "warn" | "error"
	PrettyLog bool   // true => zap dev (color), false => zap prod (JSON)

	// Marketplace behaviour
	Cooldown         time.Duration // time between two listings of one seller (default: 12h)
	TicketCloseDelay time.Duration // grace delay before a ticket channel is deleted (default: 5s)
	NotifyInterval   time.Duration // pause between broadcast DMs (default: 1s)
	PanelFile        string        // optional YAML overriding the dashboard copy

	// Ops HTTP
	OpsListen       string        // ex: ":8080", empty disables the ops server
	ShutdownTimeout time.Duration // ex: 5s
	AllowedCIDRS    []string      // optional, restrict /readyz, /infra and /panel/reload
	TrustProxy      bool          // true => trust X-Forwarded-For headers

	// Redis (optional, empty addr disables event publishing)
	RedisAddr           string        // ex: "localhost:6379"
	RedisUser           string        // optional
	RedisPassword       string        // optional
	RedisDB             int           // Redis DB number
	RedisDT             time.Duration // Redis dial timeout (ex: 5s)
	RedisRT             time.Duration // Redis read timeout (ex: 3s)
	RedisWT             time.Duration // Redis write timeout (ex: 3s)
	RedisMaxWait        time.Duration // max wait between retries (ex: 10s)
	RedisPingTimeout    time.Duration // timeout for each ping attempt (ex: 5s)
	RedisPoolSize       int           // Redis connection pool size
	RedisConnectTimeout time.Duration // Total time to retry connecting (ex: 30s)
	RedisRetryInterval  time.Duration // Initial wait between retries (ex: 2s, grows exponentially)
	RedisWarnThreshold  int           // warn after this many attempts
	RedisChannel        string        // pub/sub channel for marketplace events
}

// Load reads the configuration from the environment, after loading a .env
// file from the working directory if there is one. The first missing or
// invalid variable is reported by name.
func Load() (cfg *Config, err error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("❌ FATAL: cannot read .env file: %w", err)
	}

	defer func() {
		if r := recover(); r != nil {
			cfg = nil
			err = fmt.Errorf("%v", r)
		}
	}()

	return load(), nil
}

func load() *Config {
	return &Config{
		// Discord
		BotToken:         requireEnv("DISCORD_BOT_TOKEN"),
		MarketChannelID:  requireEnvID("MARKETPLACE_CHANNEL_ID"),
		EscrowChannelID:  requireEnvID("THIRD_PARTY_CHANNEL_ID"),
		GuildID:          requireEnvID("GUILD_ID"),
		SupportRoleIDs:   requireEnvIDs("SUPPORT_ROLE_IDS"),
		TicketCategoryID: requireEnvID("TICKET_CATEGORY_ID"),

		// Logging
		LogLevel:  getenv("MARKET_LOG_LEVEL", "info"),
		PrettyLog: mustBool("MARKET_PRETTY_LOG", true),

		// Marketplace
		Cooldown:         mustDuration("MARKET_COOLDOWN", 12*time.Hour),
		TicketCloseDelay: mustDuration("MARKET_TICKET_CLOSE_DELAY", 5*time.Second),
		NotifyInterval:   mustDuration("MARKET_NOTIFY_INTERVAL", time.Second),
		PanelFile:        getenv("MARKET_PANEL_FILE", ""),

		// Ops server
		OpsListen:       getenvAllowEmpty("MARKET_OPS_LISTEN", ":8080"),
		ShutdownTimeout: mustDuration("MARKET_SHUTDOWN_TIMEOUT", 5*time.Second),
		AllowedCIDRS:    splitAndTrim(getenv("MARKET_OPS_ALLOWED_CIDRS", "")),
		TrustProxy:      mustBool("MARKET_TRUST_PROXY", false),

		// Redis settings
		RedisAddr:           getenv("MARKET_REDIS_ADDR", ""),
		RedisUser:           getenv("MARKET_REDIS_USERNAME", ""),
		RedisPassword:       getenv("MARKET_REDIS_PASSWORD", ""),
		RedisDB:             getenvInt("MARKET_REDIS_DB", 0),
		RedisDT:             mustDuration("REDIS_DIAL_TIMEOUT", 5*time.Second),
		RedisRT:             mustDuration("REDIS_READ_TIMEOUT", 3*time.Second),
		RedisWT:             mustDuration("REDIS_WRITE_TIMEOUT", 3*time.Second),
		RedisMaxWait:        mustDuration("REDIS_MAX_WAIT", 10*time.Second),
		RedisPingTimeout:    mustDuration("REDIS_PING_TIMEOUT", 5*time.Second),
		RedisPoolSize:       getenvInt("REDIS_POOL_SIZE", 10),
		RedisConnectTimeout: mustDuration("MARKET_REDIS_CONNECT_TIMEOUT", 30*time.Second),
		RedisRetryInterval:  mustDuration("REDIS_RETRY_INTERVAL", 2*time.Second),
		RedisWarnThreshold:  getenvInt("REDIS_WARN_THRESHOLD", 3),
		RedisChannel:        getenv("MARKET_REDIS_CHANNEL", "marketbot:events"),
	}
}

// RedisEnabled reports whether event publishing is configured.
func (c *Config) RedisEnabled() bool { return c.RedisAddr != "" }

// Redacted returns a copy safe to print.
func (c *Config) Redacted() Config {
	cp := *c
	cp.BotToken = redact(cp.BotToken)
	cp.RedisPassword = redact(cp.RedisPassword)
	if cp.RedisUser != "" {
		cp.RedisUser = "***REDACTED***"
	}
	return cp
}

func redact(s string) string {
	if s == "" {
		return ""
	}
	return "***REDACTED***"
}

// helpers
func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// getenvAllowEmpty returns def only when key is unset; an empty value is
// kept so it can switch a feature off.
func getenvAllowEmpty(key, def string) string {
	if v, ok := os.LookupEnv(key); ok {
		return strings.TrimSpace(v)
	}
	return def
}

func requireEnv(key string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		panic(fmt.Sprintf("❌ FATAL: Required environment variable %s is not set", key))
	}
	return v
}

// requireEnvID returns a platform id. Ids are decimal integers; they stay
// strings because they do not fit every consumer's integer type.
func requireEnvID(key string) string {
	v := requireEnv(key)
	if _, err := strconv.ParseUint(v, 10, 64); err != nil {
		panic(fmt.Sprintf("❌ FATAL: Invalid integer value for %s: %s", key, v))
	}
	return v
}

func requireEnvIDs(key string) []string {
	ids := splitAndTrim(requireEnv(key))
	if len(ids) == 0 {
		panic(fmt.Sprintf("❌ FATAL: Required environment variable %s is not set", key))
	}
	for _, id := range ids {
		if _, err := strconv.ParseUint(id, 10, 64); err != nil {
			panic(fmt.Sprintf("❌ FATAL: Invalid integer value in %s: %s", key, id))
		}
	}
	return ids
}

func getenvInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		panic(fmt.Sprintf("❌ FATAL: Invalid integer value for %s: %s", key, v))
	}
	return i
}

func mustBool(key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		panic(fmt.Sprintf("❌ FATAL: Invalid boolean value for %s: %s", key, v))
	}
	return b
}

func mustDuration(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil || d < 0 {
		panic(fmt.Sprintf("❌ FATAL: Invalid duration value for %s: %s", key, v))
	}
	return d
}

func splitAndTrim(s string) []string {
	if s == "" {
		return nil
	}
	raw := strings.Split(s, ",")
	parts := make([]string, 0, len(raw))
	for _, part := range raw {
		trimmed := strings.TrimSpace(part)
		// Remove surrounding quotes if present
		trimmed = strings.Trim(trimmed, `"'`)
		if trimmed != "" {
			parts = append(parts, trimmed)
		}
	}
	return parts
}
