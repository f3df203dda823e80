package cli

import (
	"log/slog"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/tleroux/attune/internal/config"
	"github.com/tleroux/attune/internal/watcher"
)

func newWatchCommand(configFlag *string, logger func() *slog.Logger) *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Watch libraries and sort files as they appear",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			log := logger()

			cfg, err := config.Load(*configFlag, log)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			return watcher.New(cfg, log).Run(ctx)
		},
	}
}
