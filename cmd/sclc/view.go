package main

import (
	"github.com/spf13/cobra"

	"github.com/you-not-fish/scl/internal/srcfile"
	"github.com/you-not-fish/scl/internal/viewer"
)

func newViewCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "view <file>",
		Short: "Browse tokens, tree and diagnostics interactively",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			src, err := srcfile.Read(args[0])
			if err != nil {
				return err
			}
			// The viewer always shows a tree, even for files with lexical errors.
			u := c.compileSource(args[0], src, true)
			return viewer.Run(viewer.New(u.path, u.toks, u.prog, u.diags))
		},
	}
}
