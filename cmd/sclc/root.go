package main

import (
	"bytes"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/you-not-fish/scl/internal/config"
	"github.com/you-not-fish/scl/internal/logging"
	"github.com/you-not-fish/scl/internal/render"
	"github.com/you-not-fish/scl/internal/srcfile"
	"github.com/you-not-fish/scl/internal/syntax"
)

// cli holds the global flags and the state built from them before a
// command runs.
type cli struct {
	cfgFile   string
	logLevel  string
	logFormat string
	noColor   bool
	keepGoing bool

	cfg    *config.Config
	logger *slog.Logger
}

func newRootCmd(c *cli) *cobra.Command {
	root := &cobra.Command{
		Use:   "sclc",
		Short: "SCL front end and executor",
		Long: `sclc tokenizes, parses and runs programs written in SCL, a small
language with int declarations, assignments, if/else and while.

Pipeline stages:
  tokens  - source to token stream
  parse   - tokens to syntax tree
  run     - execute the tree and print the final variables`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: c.setup,
	}

	pf := root.PersistentFlags()
	pf.StringVar(&c.cfgFile, "config", "", "config file (default: $SCL_CONFIG, ./sclc.toml)")
	pf.StringVar(&c.logLevel, "log-level", "", "log level: debug, info, warn, error")
	pf.StringVar(&c.logFormat, "log-format", "", "log format: text or json")
	pf.BoolVar(&c.noColor, "no-color", false, "disable colored output")
	pf.BoolVar(&c.keepGoing, "keep-going", false, "parse and run despite lexical errors")

	root.AddCommand(
		newTokensCmd(c),
		newParseCmd(c),
		newRunCmd(c),
		newCheckCmd(c),
		newHistoryCmd(c),
		newShowCmd(c),
		newServeCmd(c),
		newRemoteCmd(c),
		newViewCmd(c),
		newWatchCmd(c),
		newVersionCmd(),
	)
	return root
}

// setup loads the configuration, applies flag overrides and builds the logger.
func (c *cli) setup(cmd *cobra.Command, args []string) error {
	var (
		cfg *config.Config
		err error
	)
	if c.cfgFile != "" {
		cfg, err = config.Load(c.cfgFile)
	} else {
		cfg, err = config.LoadFromEnv()
	}
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	if flags.Changed("log-level") {
		cfg.Log.Level = c.logLevel
	}
	if flags.Changed("log-format") {
		cfg.Log.Format = c.logFormat
	}
	if c.noColor {
		cfg.Output.NoColor = true
	}
	if c.keepGoing {
		cfg.Parser.KeepGoing = true
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	c.cfg = cfg
	c.logger = logging.New(logging.Config{
		Service: "sclc",
		Level:   cfg.Log.Level,
		Format:  cfg.Log.Format,
		Output:  cmd.ErrOrStderr(),
	})
	render.NoColor = cfg.Output.NoColor
	return nil
}

// unit is the result of running the front end over one file.
type unit struct {
	path  string
	src   string
	toks  []syntax.Token
	prog  *syntax.Program // nil when lexical errors stopped the pass
	syms  *syntax.SymbolTable
	diags []syntax.Diagnostic
}

// compile reads path and runs the front end over it.
func (c *cli) compile(path string) (*unit, error) {
	src, err := srcfile.Read(path)
	if err != nil {
		return nil, err
	}
	return c.compileSource(path, src, c.cfg.Parser.KeepGoing), nil
}

// compileSource tokenizes and parses src. Lexical errors stop before
// parsing unless keepGoing is set.
func (c *cli) compileSource(path, src string, keepGoing bool) *unit {
	u := &unit{path: path, src: src}
	u.toks, u.diags = syntax.TokenizeFile(path, src)
	if len(u.diags) > 0 && !keepGoing {
		c.logger.Debug("lexical errors, not parsing", "file", path, "errors", len(u.diags))
		return u
	}
	c.parse(u)
	return u
}

func (c *cli) parse(u *unit) {
	p := syntax.NewParser(u.toks, syntax.WithMaxDepth(c.cfg.Parser.MaxDepth))
	prog, diags := p.Parse()
	u.prog, u.syms = prog, p.Symbols()
	u.diags = append(u.diags, diags...)
	c.logger.Debug("parsed", "file", u.path, "tokens", len(u.toks), "statements", len(prog.Stmts), "errors", len(diags))
}

// failed reports whether u is a failed compilation. Lexical errors do not
// count under keep-going.
func (u *unit) failed(keepGoing bool) bool {
	for _, d := range u.diags {
		if d.Kind != syntax.LexicalError || !keepGoing {
			return true
		}
	}
	return false
}

// output writes through fn to stdout, or to the file named by path when
// it is set.
func output(cmd *cobra.Command, path string, fn func(w io.Writer) error) error {
	if path == "" {
		return fn(cmd.OutOrStdout())
	}
	var buf bytes.Buffer
	if err := fn(&buf); err != nil {
		return err
	}
	return srcfile.Write(path, buf.Bytes())
}
