// Package cli holds the marketbot command tree.
package cli

import (
	"github.com/spf13/cobra"
)

// NewRootCommand creates the root command. Without a subcommand it runs
// the bot.
func NewRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "marketbot",
		Short: "Anonymous community marketplace bot",
		Long: `marketbot runs an anonymous marketplace inside a chat community:
sellers post listings from a dashboard, buyers claim them through a
third-party escrow channel, and members open private support tickets.

Configuration is read from the environment and an optional .env file.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBot(cmd.Context())
		},
	}

	cmd.AddCommand(NewRunCommand())
	cmd.AddCommand(NewVersionCommand())
	cmd.AddCommand(NewConfigCommand())

	return cmd
}
