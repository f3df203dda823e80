package cli

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/tleroux/attune/internal/config"
	"github.com/tleroux/attune/internal/format"
	"github.com/tleroux/attune/internal/sorter"
)

func newSortCommand(configFlag *string, logger func() *slog.Logger) *cobra.Command {
	var (
		formatFlag  string
		dryrun      bool
		recursive   bool
		removeEmpty bool
		exfatCompat bool
	)

	cmd := &cobra.Command{
		Use:   "sort PATH",
		Short: "Sort a music directory",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			log := logger()

			path, err := filepath.Abs(args[0])
			if err != nil {
				return err
			}

			f, exfat, err := resolveFormat(*configFlag, path, formatFlag, log)
			if err != nil {
				return err
			}

			opts := sorter.Options{
				Format:      f,
				DryRun:      dryrun,
				Recursive:   recursive,
				ExfatCompat: exfatCompat || exfat,
				RemoveEmpty: removeEmpty,
				Logger:      log,
			}

			report, err := sorter.SortFolder(path, path, opts)
			if err != nil {
				return err
			}

			fmt.Printf("%d successful out of %d (%d failed)\n",
				report.Success, report.Total, report.Total-report.Success)
			return nil
		},
	}

	cmd.Flags().StringVarP(&formatFlag, "format", "f", "", "custom format string")
	cmd.Flags().BoolVarP(&dryrun, "dryrun", "d", false, "don't move anything, simulated run")
	cmd.Flags().BoolVarP(&recursive, "recursive", "r", false, "sort files in subdirectories too")
	cmd.Flags().BoolVarP(&removeEmpty, "remove-empty", "e", false, "remove directories emptied by sorting")
	cmd.Flags().BoolVarP(&exfatCompat, "exfat-compat", "x", false, "keep file names compatible with FAT32/exFAT")

	return cmd
}

// resolveFormat picks the format for a sort: an explicit flag wins, then
// the configured library owning the path, then DefaultFormat. The config
// file is optional here; it only has to exist when it is actually named.
func resolveFormat(configPath, path, flag string, log *slog.Logger) (*format.Format, bool, error) {
	if flag != "" {
		f, err := format.Parse(flag)
		if err != nil {
			return nil, false, err
		}
		return f, false, nil
	}

	cfg, err := config.Load(configPath, log)
	if err != nil {
		if configPath == "" && errors.Is(err, os.ErrNotExist) {
			f, parseErr := format.Parse(DefaultFormat)
			return f, false, parseErr
		}
		return nil, false, err
	}

	if lib, ok := cfg.LibraryFor(path); ok {
		return lib.Format, lib.ExfatCompat, nil
	}

	f, err := format.Parse(DefaultFormat)
	return f, false, err
}
