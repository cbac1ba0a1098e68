package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/ridcache/internal/registry"
	"github.com/roach88/ridcache/internal/resolve"
	"github.com/roach88/ridcache/internal/store"
)

// LookupOptions holds flags for the lookup command.
type LookupOptions struct {
	*RootOptions
	LocalOnly bool
	NoCache   bool
}

// NewLookupCommand creates the lookup command.
func NewLookupCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &LookupOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "lookup <serial>",
		Short: "Resolve a drone serial number",
		Long: `Resolve a drone serial number against the local cache.

The cascade tries an exact match, then the serial ranges, then falls back
to the live registry unless --local-only is set. Remote hits are written
back into the cache so the next lookup is local.

Exit code 0 means the serial resolved, 1 means it did not, 2 means the
lookup itself failed.

Example:
  ridcache lookup 1581F3KJD9020011
  ridcache lookup 1581F3KJD9020011 --local-only --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLookup(opts, args[0], cmd)
		},
	}

	cmd.Flags().BoolVar(&opts.LocalOnly, "local-only", false, "never query the live registry")
	cmd.Flags().BoolVar(&opts.NoCache, "no-cache", false, "do not write remote hits back to the cache")

	return cmd
}

func runLookup(opts *LookupOptions, serial string, cmd *cobra.Command) error {
	cfg, err := loadConfig(opts.RootOptions)
	if err != nil {
		return err
	}
	logger := setupLogging(opts.RootOptions, cfg)
	out := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout()}

	st, err := store.Open(cfg.Database.Path)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open database", err)
	}
	defer st.Close()

	var client registry.Client
	if !opts.LocalOnly {
		client = registry.NewHTTPClient(cfg.Registry.BaseURL, cfg.Timeout())
	}

	resolver := resolve.New(st, client, logger)
	res, err := resolver.Resolve(cmd.Context(), serial, resolve.Options{
		AllowRemoteFallback: !opts.LocalOnly,
		CacheRemoteResult:   !opts.LocalOnly && !opts.NoCache,
	})
	if err != nil {
		return WrapExitError(ExitCommandError, "lookup failed", err)
	}

	if out.JSON() {
		if err := out.Success(res.Lookup); err != nil {
			return err
		}
	} else {
		renderLookup(out, res)
	}

	if !res.Found {
		return NewExitError(ExitNotFound, fmt.Sprintf("serial %q not found", serial))
	}
	return nil
}

func renderLookup(out *OutputFormatter, res resolve.Resolution) {
	w := out.Writer
	if !res.Found {
		fmt.Fprintf(w, "Serial %s: not found\n", res.SerialNumber)
		return
	}
	fmt.Fprintf(w, "Serial:      %s\n", res.SerialNumber)
	fmt.Fprintf(w, "Make:        %s\n", res.Make)
	fmt.Fprintf(w, "Model:       %s\n", res.Model)
	fmt.Fprintf(w, "Tracking ID: %s\n", res.TrackingID)
	fmt.Fprintf(w, "Status:      %s\n", res.Status)
	fmt.Fprintf(w, "Source:      %s\n", res.Source)
	if res.MfrSerial != "" && res.MfrSerial != res.SerialNumber {
		fmt.Fprintf(w, "Mfr Serial:  %s\n", res.MfrSerial)
	}
}
