package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/MrSnakeDoc/marketbot/internal/app"
	"github.com/MrSnakeDoc/marketbot/internal/config"
	"github.com/MrSnakeDoc/marketbot/internal/logger"
)

// NewRunCommand creates the run command.
func NewRunCommand() *cobra.Command {
	return &cobra.Command{
		Use:           "run",
		Short:         "Connect to the chat platform and serve interactions",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBot(cmd.Context())
		},
	}
}

func runBot(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	log := logger.New(cfg.LogLevel, cfg.PrettyLog)
	defer func() { _ = log.Sync() }()

	a, err := app.New(ctx, cfg, log)
	if err != nil {
		log.Error("startup failed", logger.Error(err))
		return err
	}
	return a.Run(ctx)
}
