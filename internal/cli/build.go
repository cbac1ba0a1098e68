package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/ridcache/internal/registry"
	"github.com/roach88/ridcache/internal/syncer"
)

// BuildOptions holds flags for the build command.
type BuildOptions struct {
	*RootOptions
	Force bool
}

// NewBuildCommand creates the build command.
func NewBuildCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &BuildOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "build",
		Short: "Build the cache from the full registry catalogue",
		Long: `Build the local cache by listing the entire registry catalogue.

The catalogue is listed completely before anything is written, so a
listing failure leaves an existing database untouched. Once listing
succeeds the old database is replaced; pass --force to allow replacing
an existing file.

A full build makes one API call per registry record and throttles
between calls, so expect it to take a while.

Example:
  ridcache build --db ./rid.db --force`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBuild(opts, cmd)
		},
	}

	cmd.Flags().BoolVar(&opts.Force, "force", false, "replace an existing database")

	return cmd
}

func runBuild(opts *BuildOptions, cmd *cobra.Command) error {
	cfg, err := loadConfig(opts.RootOptions)
	if err != nil {
		return err
	}
	logger := setupLogging(opts.RootOptions, cfg)
	out := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout()}

	if _, err := os.Stat(cfg.Database.Path); err == nil && !opts.Force {
		return NewExitError(ExitCommandError,
			fmt.Sprintf("database %s already exists, pass --force to rebuild it", cfg.Database.Path))
	}

	client := registry.NewHTTPClient(cfg.Registry.BaseURL, cfg.Timeout())
	s := syncer.New(client, syncer.Config{
		PageSize: cfg.Registry.PageSize,
		Throttle: cfg.Throttle(),
	}, logger)

	rep, err := s.FullBuild(cmd.Context(), cfg.Database.Path)
	if err != nil {
		return WrapExitError(ExitCommandError, "full build failed", err)
	}

	if out.JSON() {
		return out.Success(rep)
	}
	rep.Render(out.Writer)
	return nil
}
