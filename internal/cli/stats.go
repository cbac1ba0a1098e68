package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/ridcache/internal/store"
	"github.com/roach88/ridcache/internal/syncer"
)

// StatsOptions holds flags for the stats command.
type StatsOptions struct {
	*RootOptions
}

// cacheStats is the stats command payload.
type cacheStats struct {
	DatabasePath  string `json:"database_path"`
	ExactSerials  int64  `json:"exact_serials"`
	SerialRanges  int64  `json:"serial_ranges"`
	BuildDate     string `json:"build_date,omitempty"`
	BuildMethod   string `json:"build_method,omitempty"`
	TotalRecords  string `json:"total_records,omitempty"`
	LastSyncDate  string `json:"last_sync_date,omitempty"`
	LastSyncRunID string `json:"last_sync_run_id,omitempty"`
}

// NewStatsCommand creates the stats command.
func NewStatsCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &StatsOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:           "stats",
		Short:         "Show cache contents and sync history",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStats(opts, cmd)
		},
	}

	return cmd
}

func runStats(opts *StatsOptions, cmd *cobra.Command) error {
	cfg, err := loadConfig(opts.RootOptions)
	if err != nil {
		return err
	}
	setupLogging(opts.RootOptions, cfg)
	out := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout()}

	st, err := store.Open(cfg.Database.Path)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open database", err)
	}
	defer st.Close()

	ctx := cmd.Context()
	exacts, ranges, err := st.Counts(ctx)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to count records", err)
	}
	meta, err := st.AllMetadata(ctx)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to read metadata", err)
	}

	stats := cacheStats{
		DatabasePath:  cfg.Database.Path,
		ExactSerials:  exacts,
		SerialRanges:  ranges,
		BuildDate:     meta[syncer.MetaBuildDate],
		BuildMethod:   meta[syncer.MetaBuildMethod],
		TotalRecords:  meta[syncer.MetaTotalRecords],
		LastSyncDate:  meta[syncer.MetaLastSyncDate],
		LastSyncRunID: meta[syncer.MetaLastSyncRunID],
	}

	if out.JSON() {
		return out.Success(stats)
	}
	renderStats(out, stats)
	return nil
}

func renderStats(out *OutputFormatter, stats cacheStats) {
	w := out.Writer
	fmt.Fprintf(w, "Database:       %s\n", stats.DatabasePath)
	fmt.Fprintf(w, "Exact Serials:  %d\n", stats.ExactSerials)
	fmt.Fprintf(w, "Serial Ranges:  %d\n", stats.SerialRanges)
	if stats.BuildDate != "" {
		fmt.Fprintf(w, "Built:          %s (%s from %s records)\n",
			stats.BuildDate, stats.BuildMethod, stats.TotalRecords)
	}
	if stats.LastSyncDate != "" {
		fmt.Fprintf(w, "Last Sync:      %s\n", stats.LastSyncDate)
	}
	if stats.LastSyncRunID != "" {
		fmt.Fprintf(w, "Last Sync Run:  %s\n", stats.LastSyncRunID)
	}
}
