package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/you-not-fish/scl/internal/render"
	"github.com/you-not-fish/scl/internal/server"
	"github.com/you-not-fish/scl/internal/srcfile"
)

// remote holds the flags shared by the remote subcommands.
type remote struct {
	*cli
	addr    string
	timeout time.Duration
}

func newRemoteCmd(c *cli) *cobra.Command {
	r := &remote{cli: c}
	cmd := &cobra.Command{
		Use:   "remote",
		Short: "Use a running sclc server",
	}
	cmd.PersistentFlags().StringVar(&r.addr, "addr", "", "server address (default from config)")
	cmd.PersistentFlags().DurationVar(&r.timeout, "timeout", 10*time.Second, "request timeout")
	cmd.AddCommand(r.tokensCmd(), r.parseCmd(), r.healthCmd())
	return cmd
}

// dial connects to the server. The caller closes the client and calls cancel.
func (r *remote) dial(cmd *cobra.Command) (*server.Client, context.Context, context.CancelFunc, error) {
	if r.addr == "" {
		r.addr = r.cfg.Server.Addr
	}
	client, err := server.Dial(r.addr)
	if err != nil {
		return nil, nil, nil, err
	}
	ctx, cancel := context.WithTimeout(cmd.Context(), r.timeout)
	return client, ctx, cancel, nil
}

func (r *remote) tokensCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tokens <file>",
		Short: "Tokenize a file on the server",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			src, err := srcfile.Read(args[0])
			if err != nil {
				return err
			}
			client, ctx, cancel, err := r.dial(cmd)
			if err != nil {
				return err
			}
			defer client.Close()
			defer cancel()

			toks, diags, err := client.Tokenize(ctx, args[0], src)
			if err != nil {
				return err
			}
			render.Tokens(cmd.OutOrStdout(), toks)
			render.Diagnostics(cmd.ErrOrStderr(), diags)
			if len(diags) > 0 && !r.cfg.Parser.KeepGoing {
				return errFailed
			}
			return nil
		},
	}
}

func (r *remote) parseCmd() *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "parse <file>",
		Short: "Parse a file on the server",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if format == "" {
				format = r.cfg.Output.TreeFormat
			}
			encode, err := treeEncoder(format)
			if err != nil {
				return err
			}
			src, err := srcfile.Read(args[0])
			if err != nil {
				return err
			}
			client, ctx, cancel, err := r.dial(cmd)
			if err != nil {
				return err
			}
			defer client.Close()
			defer cancel()

			res, err := client.Parse(ctx, args[0], src)
			if err != nil {
				return err
			}
			if res.Program != nil {
				if err := encode(cmd.OutOrStdout(), res.Program); err != nil {
					return err
				}
			}
			render.Diagnostics(cmd.ErrOrStderr(), res.Diagnostics)

			u := &unit{path: args[0], toks: res.Tokens, diags: res.Diagnostics}
			if u.failed(r.cfg.Parser.KeepGoing) {
				return errFailed
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "", "output format: text, json, yaml, list")
	return cmd
}

func (r *remote) healthCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Check that the server is serving",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, ctx, cancel, err := r.dial(cmd)
			if err != nil {
				return err
			}
			defer client.Close()
			defer cancel()

			ok, err := client.Health(ctx)
			if err != nil {
				return err
			}
			if !ok {
				return fmt.Errorf("%s: not serving", r.addr)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: serving\n", r.addr)
			return nil
		},
	}
}
