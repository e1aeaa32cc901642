package main

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/you-not-fish/scl/internal/interchange"
	"github.com/you-not-fish/scl/internal/render"
	"github.com/you-not-fish/scl/internal/srcfile"
	"github.com/you-not-fish/scl/internal/syntax"
)

func newParseCmd(c *cli) *cobra.Command {
	var (
		format     string
		out        string
		fromTokens bool
		save       bool
		record     bool
		symbols    bool
	)
	cmd := &cobra.Command{
		Use:   "parse <file>",
		Short: "Parse a source file and print its syntax tree",
		Long: `Tokenize and parse a source file, then print the tree as text, json,
yaml or list. With --from-tokens the input is a token file written by
"sclc tokens --save" instead of source. With --save the tree is also
written as JSON, e.g. prog.scl -> prog_parse_tree.json.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			if format == "" {
				format = c.cfg.Output.TreeFormat
			}
			encode, err := treeEncoder(format)
			if err != nil {
				return err
			}

			var u *unit
			if fromTokens {
				u, err = c.loadTokens(path)
			} else {
				u, err = c.compile(path)
			}
			if err != nil {
				return err
			}

			if u.prog != nil {
				if err := output(cmd, out, func(w io.Writer) error { return encode(w, u.prog) }); err != nil {
					return err
				}
				if symbols {
					fmt.Fprintln(cmd.OutOrStdout(), u.syms)
				}
				if save {
					err := output(cmd, interchange.TreePath(path), func(w io.Writer) error {
						return interchange.EncodeTree(w, interchange.JSON, u.prog)
					})
					if err != nil {
						return err
					}
				}
			}
			if record {
				if _, err := c.record(cmd, u, nil); err != nil {
					return err
				}
			}

			render.Diagnostics(cmd.ErrOrStderr(), u.diags)
			if u.failed(c.cfg.Parser.KeepGoing) {
				return errFailed
			}
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVarP(&format, "format", "f", "", "output format: text, json, yaml, list")
	f.StringVarP(&out, "output", "o", "", "write to file instead of stdout")
	f.BoolVar(&fromTokens, "from-tokens", false, "read a token file instead of source")
	f.BoolVar(&save, "save", false, "also write <base>_parse_tree.json")
	f.BoolVar(&record, "record", false, "record the run in the history database")
	f.BoolVar(&symbols, "symbols", false, "print the symbol table after the tree")
	return cmd
}

func treeEncoder(format string) (func(io.Writer, *syntax.Program) error, error) {
	if format == "text" {
		return func(w io.Writer, prog *syntax.Program) error {
			syntax.Fprint(w, prog)
			return nil
		}, nil
	}
	f, err := interchange.ParseFormat(format)
	if err != nil {
		return nil, err
	}
	return func(w io.Writer, prog *syntax.Program) error {
		return interchange.EncodeTree(w, f, prog)
	}, nil
}

// loadTokens parses a token file. The file contents stand in for the
// source when the run is recorded.
func (c *cli) loadTokens(path string) (*unit, error) {
	data, err := srcfile.Read(path)
	if err != nil {
		return nil, err
	}
	toks, err := interchange.DecodeTokens(strings.NewReader(data), fileFormat(path), path)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	u := &unit{path: path, src: data, toks: toks}
	c.parse(u)
	return u, nil
}

// fileFormat picks the interchange format of a saved file by extension.
func fileFormat(path string) interchange.Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return interchange.YAML
	}
	return interchange.JSON
}

// treeFormat is fileFormat for tree files, where a top-level JSON array
// is the list form.
func treeFormat(path, data string) interchange.Format {
	f := fileFormat(path)
	if f == interchange.JSON && strings.HasPrefix(strings.TrimSpace(data), "[") {
		return interchange.List
	}
	return f
}
