package main

import (
	"io"

	"github.com/spf13/cobra"

	"github.com/you-not-fish/scl/internal/interchange"
	"github.com/you-not-fish/scl/internal/render"
	"github.com/you-not-fish/scl/internal/srcfile"
	"github.com/you-not-fish/scl/internal/syntax"
)

func newTokensCmd(c *cli) *cobra.Command {
	var (
		format string
		out    string
		save   bool
	)
	cmd := &cobra.Command{
		Use:   "tokens <file>",
		Short: "Print the token stream of a source file",
		Long: `Tokenize a source file and print its tokens as a table, or encode them
as json, yaml or list records. With --save the tokens are also written as
JSON next to the source, e.g. prog.scl -> prog_tokens.json.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			if format == "" {
				format = c.cfg.Output.TokenFormat
			}
			encode, err := tokenEncoder(format)
			if err != nil {
				return err
			}

			src, err := srcfile.Read(path)
			if err != nil {
				return err
			}
			toks, diags := syntax.TokenizeFile(path, src)
			c.logger.Debug("tokenized", "file", path, "tokens", len(toks), "errors", len(diags))

			if err := output(cmd, out, func(w io.Writer) error { return encode(w, toks) }); err != nil {
				return err
			}
			if save {
				err := output(cmd, interchange.TokensPath(path), func(w io.Writer) error {
					return interchange.EncodeTokens(w, interchange.JSON, toks)
				})
				if err != nil {
					return err
				}
			}

			render.Diagnostics(cmd.ErrOrStderr(), diags)
			if len(diags) > 0 && !c.cfg.Parser.KeepGoing {
				return errFailed
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "", "output format: table, json, yaml, list")
	cmd.Flags().StringVarP(&out, "output", "o", "", "write to file instead of stdout")
	cmd.Flags().BoolVar(&save, "save", false, "also write <base>_tokens.json")
	return cmd
}

func tokenEncoder(format string) (func(io.Writer, []syntax.Token) error, error) {
	if format == "table" {
		return func(w io.Writer, toks []syntax.Token) error {
			render.Tokens(w, toks)
			return nil
		}, nil
	}
	f, err := interchange.ParseFormat(format)
	if err != nil {
		return nil, err
	}
	return func(w io.Writer, toks []syntax.Token) error {
		return interchange.EncodeTokens(w, f, toks)
	}, nil
}
