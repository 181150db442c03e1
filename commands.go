package main

import (
	"fmt"
	"io"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"tarkit/config"
	"tarkit/logging"
	"tarkit/tarfile"
)

var version = "dev"

type rootFlags struct {
	configFile string
	verbosity  int
}

func newRootCmd() *cobra.Command {
	flags := &rootFlags{}
	cmd := &cobra.Command{
		Use:   "tarkit",
		Short: "Create, list and extract tar archives",
		Long: `tarkit reads and writes ustar archives, optionally gzip compressed.
Settings come from tarkit.toml, TARKIT_* environment variables and flags,
in increasing order of precedence.`,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logging.SetupLoggerTo(cmd.ErrOrStderr(), flags.verbosity)
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().StringVar(&flags.configFile, "config", "", "config file (default ./tarkit.toml when present)")
	cmd.PersistentFlags().CountVarP(&flags.verbosity, "verbose", "v", "Increase verbosity (-v status lines, -vv DEBUG, -vvv TRACE)")

	cmd.AddCommand(newCreateCmd(flags))
	cmd.AddCommand(newExtractCmd(flags))
	cmd.AddCommand(newListCmd(flags))
	cmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "tarkit version %s\n", version)
		},
	})
	return cmd
}

// loadOptions merges the configuration with the flags the user set
// explicitly on cmd.
func loadOptions(cmd *cobra.Command, flags *rootFlags, apply func(*config.Config)) ([]tarfile.Option, zerolog.Logger, error) {
	logger := logging.GetLogger("tarfile")
	cfg, err := config.Load(flags.configFile)
	if err != nil {
		return nil, logger, err
	}
	if flags.verbosity > 0 {
		cfg.Verbose = true
	}
	apply(cfg)
	opts, err := cfg.TarOptions(cmd.OutOrStdout(), logger)
	return opts, logger, err
}

func newCreateCmd(flags *rootFlags) *cobra.Command {
	var (
		archive string
		gzip    bool
		follow  bool
	)
	cmd := &cobra.Command{
		Use:   "create -f ARCHIVE PATH...",
		Short: "Create an archive from files and directories",
		Args:  cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, logger, err := loadOptions(cmd, flags, func(cfg *config.Config) {
				if cmd.Flags().Changed("gzip") {
					cfg.Compression = tarfile.CompressionNone.String()
					if gzip {
						cfg.Compression = tarfile.CompressionGzip.String()
					}
				}
				if cmd.Flags().Changed("follow-symlinks") {
					cfg.FollowSymlinks = follow
				}
			})
			if err != nil {
				return err
			}
			defer logging.LogOperationStart(logger, "create")()
			return tarfile.CreateArchive(archive, args, opts...)
		},
	}
	cmd.Flags().StringVarP(&archive, "file", "f", "", "archive to create")
	cmd.Flags().BoolVarP(&gzip, "gzip", "z", false, "compress the archive with gzip")
	cmd.Flags().BoolVarP(&follow, "follow-symlinks", "L", false, "archive what symlinked directories point to")
	return cmd
}

func newExtractCmd(flags *rootFlags) *cobra.Command {
	var (
		archive   string
		directory string
		overwrite bool
		noTimes   bool
	)
	cmd := &cobra.Command{
		Use:   "extract -f ARCHIVE",
		Short: "Extract an archive",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, logger, err := loadOptions(cmd, flags, func(cfg *config.Config) {
				if cmd.Flags().Changed("directory") {
					cfg.Destination = directory
				}
				if cmd.Flags().Changed("overwrite") {
					cfg.Overwrite = overwrite
				}
				if cmd.Flags().Changed("no-timestamps") {
					cfg.SkipTimestamps = noTimes
				}
			})
			if err != nil {
				return err
			}
			defer logging.LogOperationStart(logger, "extract")()
			entries, err := tarfile.Extract(archive, opts...)
			if err != nil {
				return err
			}
			logger.Info().Int("entries", len(entries)).Str("archive", archive).Msg("extracted")
			return nil
		},
	}
	cmd.Flags().StringVarP(&archive, "file", "f", "", "archive to extract")
	cmd.Flags().StringVarP(&directory, "directory", "C", ".", "extract into this directory")
	cmd.Flags().BoolVar(&overwrite, "overwrite", false, "replace existing files")
	cmd.Flags().BoolVarP(&noTimes, "no-timestamps", "m", false, "do not restore modification times")
	return cmd
}

func newListCmd(flags *rootFlags) *cobra.Command {
	var archive string
	cmd := &cobra.Command{
		Use:   "list -f ARCHIVE",
		Short: "List the members of an archive",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, logger, err := loadOptions(cmd, flags, func(*config.Config) {})
			if err != nil {
				return err
			}
			defer logging.LogOperationStart(logger, "list")()
			entries, err := tarfile.List(archive, opts...)
			if err != nil {
				return err
			}
			printEntries(cmd.OutOrStdout(), entries, flags.verbosity > 0)
			return nil
		},
	}
	cmd.Flags().StringVarP(&archive, "file", "f", "", "archive to list")
	return cmd
}

func printEntries(w io.Writer, entries []*tarfile.TarInfo, long bool) {
	for _, e := range entries {
		if !long {
			fmt.Fprintln(w, e.Name)
			continue
		}
		fmt.Fprintf(w, "%c %12d %s %s\n", e.TypeChar(), e.Size, e.Mtime.Format("2006-01-02 15:04"), e.Name)
	}
}
