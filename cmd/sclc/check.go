package main

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/you-not-fish/scl/internal/render"
)

type checkResult struct {
	unit *unit
	err  error
}

func newCheckCmd(c *cli) *cobra.Command {
	var (
		jobs    int
		verbose bool
	)
	cmd := &cobra.Command{
		Use:   "check <file>...",
		Short: "Tokenize and parse several files and summarize the results",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if jobs < 1 {
				jobs = runtime.NumCPU()
			}

			results := make([]checkResult, len(args))
			g, ctx := errgroup.WithContext(cmd.Context())
			g.SetLimit(jobs)
			for i, path := range args {
				i, path := i, path
				g.Go(func() error {
					if err := ctx.Err(); err != nil {
						return err
					}
					u, err := c.compile(path)
					results[i] = checkResult{unit: u, err: err}
					return nil
				})
			}
			if err := g.Wait(); err != nil {
				return err
			}

			out, errOut := cmd.OutOrStdout(), cmd.ErrOrStderr()
			var unreadable, failed int
			for i, r := range results {
				if r.err != nil {
					fmt.Fprintf(errOut, "%s: %v\n", args[i], r.err)
					unreadable++
					continue
				}
				render.Summary(out, r.unit.path, len(r.unit.toks), r.unit.diags)
				if verbose {
					render.Diagnostics(errOut, r.unit.diags)
				}
				if r.unit.failed(c.cfg.Parser.KeepGoing) {
					failed++
				}
			}
			c.logger.Debug("checked files", "files", len(args), "failed", failed, "unreadable", unreadable)

			switch {
			case unreadable > 0:
				return fmt.Errorf("%d of %d files could not be read", unreadable, len(args))
			case failed > 0:
				return errFailed
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&jobs, "jobs", "j", 0, "files checked in parallel (default: number of CPUs)")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "print every diagnostic")
	return cmd
}
