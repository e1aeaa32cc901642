package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/you-not-fish/scl/internal/render"
	"github.com/you-not-fish/scl/internal/watch"
)

func newWatchCmd(c *cli) *cobra.Command {
	var delay time.Duration
	cmd := &cobra.Command{
		Use:   "watch <file>...",
		Short: "Re-check files whenever they change",
		Long: `Tokenize and parse each file once, then again every time it is written,
printing a summary and the diagnostics. Runs until interrupted.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("delay") {
				delay = c.cfg.Watch.Debounce.Duration
			}
			w, err := watch.New(args, delay, c.logger)
			if err != nil {
				return err
			}

			out, errOut := cmd.OutOrStdout(), cmd.ErrOrStderr()
			report := func(path string) {
				u, err := c.compile(path)
				if err != nil {
					fmt.Fprintf(errOut, "%s: %v\n", path, err)
					return
				}
				render.Summary(out, path, len(u.toks), u.diags)
				render.Diagnostics(errOut, u.diags)
			}
			for _, path := range args {
				report(path)
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return w.Run(ctx, report)
		},
	}
	cmd.Flags().DurationVar(&delay, "delay", watch.DefaultDelay, "quiet period before a change is reported")
	return cmd
}
