package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/MrSnakeDoc/marketbot/internal/config"
	"github.com/MrSnakeDoc/marketbot/internal/panel"
)

// NewConfigCommand creates the config command group.
func NewConfigCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect the configuration",
	}
	cmd.AddCommand(newConfigCheckCommand())
	return cmd
}

func newConfigCheckCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Validate the environment and panel file without connecting",
		Long: `Load the configuration exactly as run does, load the panel copy file
if one is configured, and print the result with secrets redacted.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if _, err := panel.NewLoader(cfg.PanelFile).Load(); err != nil {
				return err
			}
			printConfig(cmd.OutOrStdout(), cfg.Redacted())
			return nil
		},
	}
}

func printConfig(w io.Writer, c config.Config) {
	rows := []struct {
		key, value string
	}{
		{"DISCORD_BOT_TOKEN", c.BotToken},
		{"GUILD_ID", c.GuildID},
		{"MARKETPLACE_CHANNEL_ID", c.MarketChannelID},
		{"THIRD_PARTY_CHANNEL_ID", c.EscrowChannelID},
		{"TICKET_CATEGORY_ID", c.TicketCategoryID},
		{"SUPPORT_ROLE_IDS", strings.Join(c.SupportRoleIDs, ",")},
		{"MARKET_COOLDOWN", c.Cooldown.String()},
		{"MARKET_TICKET_CLOSE_DELAY", c.TicketCloseDelay.String()},
		{"MARKET_NOTIFY_INTERVAL", c.NotifyInterval.String()},
		{"MARKET_PANEL_FILE", orNone(c.PanelFile)},
		{"MARKET_OPS_LISTEN", orNone(c.OpsListen)},
		{"MARKET_REDIS_ADDR", orNone(c.RedisAddr)},
		{"MARKET_REDIS_PASSWORD", orNone(c.RedisPassword)},
		{"MARKET_REDIS_CHANNEL", c.RedisChannel},
	}
	for _, r := range rows {
		fmt.Fprintf(w, "%-26s %s\n", r.key, r.value)
	}
	fmt.Fprintln(w, "✅ configuration is valid")
}

func orNone(s string) string {
	if s == "" {
		return "(none)"
	}
	return s
}
