// Package render formats tokens, diagnostics and program state for the
// terminal.
package render

import (
	"fmt"
	"io"
	"strings"

	"github.com/you-not-fish/scl/internal/syntax"
)

// NoColor forces plain output regardless of the terminal.
var NoColor bool

// Diagnostics writes one line per diagnostic followed by a count.
// Nothing is written for an empty list.
func Diagnostics(w io.Writer, diags []syntax.Diagnostic) {
	if len(diags) == 0 {
		return
	}
	s := newStyles(w)
	for _, d := range diags {
		if d.Pos.IsValid() {
			fmt.Fprintf(w, "%s: ", s.pos.Render(d.Pos.String()))
		}
		fmt.Fprintf(w, "%s: %s\n", s.errKind.Render(d.Kind.String()), s.message.Render(d.Msg))
	}
	fmt.Fprintln(w, s.errKind.Render(plural(len(diags), "error")))
}

// Tokens writes toks as a table of position, kind and lexeme.
func Tokens(w io.Writer, toks []syntax.Token) {
	s := newStyles(w)
	fmt.Fprintln(w, s.header.Render(fmt.Sprintf("%-10s %-12s %s", "POS", "KIND", "LEXEME")))
	for _, t := range toks {
		pos := "-"
		if t.Pos.IsValid() {
			pos = fmt.Sprintf("%d:%d", t.Pos.Line(), t.Pos.Col())
		}
		kind := fmt.Sprintf("%-12s", t.Kind)
		if int(t.Kind) < len(s.kinds) {
			kind = s.kinds[t.Kind].Render(kind)
		}
		fmt.Fprintf(w, "%s %s %s\n", s.pos.Render(fmt.Sprintf("%-10s", pos)), kind, t.Lexeme)
	}
	fmt.Fprintln(w, s.pos.Render(plural(len(toks), "token")))
}

// Values is a read-only view of program variables.
type Values interface {
	Names() []string // in declaration order
	Get(name string) (int64, bool)
}

// Memory writes each variable and its value, one per line.
func Memory(w io.Writer, mem Values) {
	s := newStyles(w)
	names := mem.Names()
	width := 0
	for _, name := range names {
		if len(name) > width {
			width = len(name)
		}
	}
	for _, name := range names {
		v, _ := mem.Get(name)
		fmt.Fprintf(w, "%s = %s\n",
			s.name.Render(name+strings.Repeat(" ", width-len(name))),
			s.value.Render(fmt.Sprint(v)))
	}
}

// Summary writes a one-line result for a checked file.
func Summary(w io.Writer, file string, tokens int, diags []syntax.Diagnostic) {
	s := newStyles(w)
	if len(diags) == 0 {
		fmt.Fprintf(w, "%s: %s (%s)\n", file, s.ok.Render("ok"), plural(tokens, "token"))
		return
	}
	fmt.Fprintf(w, "%s: %s\n", file, s.errKind.Render(plural(len(diags), "error")))
}

func plural(n int, word string) string {
	if n == 1 {
		return "1 " + word
	}
	return fmt.Sprintf("%d %ss", n, word)
}
