// Package cli wires the attune commands: a one-shot sort and a watch
// daemon, both driven by the same configuration file.
package cli

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/tleroux/attune/internal/logging"
)

// DefaultFormat organizes files when neither a flag nor the config names
// a format for the target folder.
const DefaultFormat = "{artist}/{album}/{track} - {title}.{ext}"

// Execute runs the root command.
func Execute() error {
	return newRootCommand().Execute()
}

func newRootCommand() *cobra.Command {
	var (
		configFlag  string
		verboseFlag bool
	)

	root := &cobra.Command{
		Use:           "attune",
		Short:         "Organize music libraries from their tags",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	root.PersistentFlags().StringVarP(&configFlag, "config", "c", "", "path to config file")
	root.PersistentFlags().BoolVarP(&verboseFlag, "verbose", "v", false, "enable debug logging")

	// Resolved inside each RunE so the flag values are final.
	logger := func() *slog.Logger {
		return logging.New(os.Stderr, verboseFlag)
	}

	root.AddCommand(newSortCommand(&configFlag, logger))
	root.AddCommand(newWatchCommand(&configFlag, logger))

	return root
}
