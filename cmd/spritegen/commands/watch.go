package commands

import (
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/teranos/spritegen/devhost"
	"github.com/teranos/spritegen/logger"
)

// WatchCmd rebuilds whenever icons change
var WatchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Rebuild on every change to the icons directory",
	Long: `Run an initial build, then rebuild whenever a file under a context
dependency changes. Bursts of changes are debounced and rebuilds are rate
limited (watch.debounce_ms, watch.max_rebuilds_per_second).

A failed build is reported and watching continues. Stop with Ctrl+C.

Examples:
  spritegen watch
  SPRITEGEN_WATCH_DEBOUNCE_MS=250 spritegen watch`,
	Args: cobra.NoArgs,
	RunE: runWatch,
}

func runWatch(cmd *cobra.Command, args []string) error {
	s, err := openSession(cmd)
	if err != nil {
		return err
	}
	h, err := s.host()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	out := cmd.OutOrStdout()
	v := verbosity(cmd)
	pterm.Info.WithWriter(out).Printfln("Watching %s (Ctrl+C to stop)", h.Context())

	return h.Watch(ctx, s.cfg.WatchOptions(), func(stats *devhost.Stats, err error) {
		if logger.ShouldOutput(v, logger.OutputWatchEvents) {
			pterm.Info.WithWriter(out).Printfln("rebuild at %s", time.Now().Format(time.TimeOnly))
		}
		if err != nil {
			PrintError(cmd.ErrOrStderr(), err)
			return
		}
		printStats(out, stats, v)
	})
}
