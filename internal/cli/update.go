package cli

import (
	"errors"
	"time"

	"github.com/spf13/cobra"

	"github.com/roach88/ridcache/internal/registry"
	"github.com/roach88/ridcache/internal/syncer"
)

// UpdateOptions holds flags for the update command.
type UpdateOptions struct {
	*RootOptions
	Count    int
	Since    string
	DaysBack int
	DryRun   bool
}

// NewUpdateCommand creates the update command.
func NewUpdateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &UpdateOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "update",
		Short: "Merge recently changed registry records into the cache",
		Long: `Merge the most recently changed registry records into an existing
cache. The database must already exist; run build first.

By default only records changed since the last sync are examined. An
explicit --since timestamp or --days window overrides that watermark.
--dry-run reports what would change without writing anything.

Example:
  ridcache update --db ./rid.db
  ridcache update --db ./rid.db --days 7 --dry-run`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runUpdate(opts, cmd)
		},
	}

	cmd.Flags().IntVar(&opts.Count, "count", 0, "how many recent records to examine (default from config)")
	cmd.Flags().StringVar(&opts.Since, "since", "", "cutoff timestamp (RFC 3339), overrides the sync watermark")
	cmd.Flags().IntVar(&opts.DaysBack, "days", 0, "cutoff of N days ago, overrides the sync watermark")
	cmd.Flags().BoolVar(&opts.DryRun, "dry-run", false, "classify and count without writing")
	cmd.MarkFlagsMutuallyExclusive("since", "days")

	return cmd
}

func runUpdate(opts *UpdateOptions, cmd *cobra.Command) error {
	cfg, err := loadConfig(opts.RootOptions)
	if err != nil {
		return err
	}
	logger := setupLogging(opts.RootOptions, cfg)
	out := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout()}

	if opts.Since != "" {
		if _, err := time.Parse(time.RFC3339, opts.Since); err != nil {
			return WrapExitError(ExitCommandError, "invalid --since timestamp", err)
		}
	}

	client := registry.NewHTTPClient(cfg.Registry.BaseURL, cfg.Timeout())
	s := syncer.New(client, syncer.Config{
		UpdateCount: cfg.Registry.UpdateCount,
		Throttle:    cfg.Throttle(),
	}, logger)

	rep, err := s.Update(cmd.Context(), cfg.Database.Path, syncer.UpdateOptions{
		Count:    opts.Count,
		Since:    opts.Since,
		DaysBack: opts.DaysBack,
		DryRun:   opts.DryRun,
	})
	if err != nil {
		if errors.Is(err, syncer.ErrNoDatabase) {
			return WrapExitError(ExitCommandError, "no database to update", err)
		}
		return WrapExitError(ExitCommandError, "update failed", err)
	}

	if out.JSON() {
		return out.Success(rep)
	}
	rep.Render(out.Writer)
	return nil
}
