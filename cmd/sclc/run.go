package main

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/you-not-fish/scl/internal/interchange"
	"github.com/you-not-fish/scl/internal/interp"
	"github.com/you-not-fish/scl/internal/render"
	"github.com/you-not-fish/scl/internal/srcfile"
)

func newRunCmd(c *cli) *cobra.Command {
	var (
		maxSteps int
		timeout  time.Duration
		trace    bool
		fromTree bool
		record   bool
	)
	cmd := &cobra.Command{
		Use:   "run <file>",
		Short: "Parse and execute a program",
		Long: `Parse a source file and execute it, then print the final value of every
declared variable. With --from-tree the input is a tree file written by
"sclc parse --save" (JSON, YAML or the list form).`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]

			var (
				u   *unit
				err error
			)
			if fromTree {
				u, err = loadTree(path)
			} else {
				u, err = c.compile(path)
			}
			if err != nil {
				return err
			}

			render.Diagnostics(cmd.ErrOrStderr(), u.diags)
			if u.prog == nil || u.failed(c.cfg.Parser.KeepGoing) {
				return errFailed
			}

			if !cmd.Flags().Changed("max-steps") {
				maxSteps = c.cfg.Exec.MaxSteps
			}
			if !cmd.Flags().Changed("timeout") {
				timeout = c.cfg.Exec.Timeout.Duration
			}
			ctx := cmd.Context()
			if timeout > 0 {
				var cancel context.CancelFunc
				ctx, cancel = context.WithTimeout(ctx, timeout)
				defer cancel()
			}

			var traceW io.Writer
			if trace {
				traceW = cmd.ErrOrStderr()
			}
			in := interp.New(interp.Options{
				MaxSteps: maxSteps,
				Logger:   c.logger,
				Trace:    traceW,
			})
			mem, runErr := in.Run(ctx, u.prog)
			c.logger.Debug("executed", "file", path, "steps", in.Steps(), "error", runErr)

			if record {
				if _, err := c.record(cmd, u, mem); err != nil {
					return err
				}
			}
			if runErr != nil {
				return runErr
			}
			render.Memory(cmd.OutOrStdout(), mem)
			return nil
		},
	}

	f := cmd.Flags()
	f.IntVar(&maxSteps, "max-steps", interp.DefaultMaxSteps, "step budget for the program")
	f.DurationVar(&timeout, "timeout", 0, "stop the program after this long (default from config)")
	f.BoolVar(&trace, "trace", false, "print each executed statement to stderr")
	f.BoolVar(&fromTree, "from-tree", false, "read a saved tree file instead of source")
	f.BoolVar(&record, "record", false, "record the run in the history database")
	return cmd
}

// loadTree reads a saved tree file. Trees carry no tokens, so the unit
// has none.
func loadTree(path string) (*unit, error) {
	data, err := srcfile.Read(path)
	if err != nil {
		return nil, err
	}
	prog, err := interchange.DecodeTree(strings.NewReader(data), treeFormat(path, data))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return &unit{path: path, src: data, prog: prog}, nil
}
