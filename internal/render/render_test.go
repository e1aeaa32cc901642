package render

import (
	"bytes"
	"strings"
	"testing"

	"github.com/you-not-fish/scl/internal/syntax"
)

func init() {
	NoColor = true
}

type memory struct {
	names []string
	vals  map[string]int64
}

func (m memory) Names() []string { return m.names }

func (m memory) Get(name string) (int64, bool) {
	v, ok := m.vals[name]
	return v, ok
}

func TestTokens(t *testing.T) {
	toks, _ := syntax.TokenizeFile("a.scl", "int x;\nx = 10;")

	var buf bytes.Buffer
	Tokens(&buf, toks)

	want := strings.Join([]string{
		"POS        KIND         LEXEME",
		"1:1        KEYWORD      int",
		"1:5        IDENTIFIER   x",
		"1:6        PUNCTUATION  ;",
		"2:1        IDENTIFIER   x",
		"2:3        OPERATOR     =",
		"2:5        INTEGER      10",
		"2:7        PUNCTUATION  ;",
		"7 tokens",
		"",
	}, "\n")
	if buf.String() != want {
		t.Errorf("got:\n%s\nwant:\n%s", buf.String(), want)
	}
}

func TestTokensWithoutPositions(t *testing.T) {
	var buf bytes.Buffer
	Tokens(&buf, []syntax.Token{{Kind: syntax.Integer, Lexeme: "7"}})
	if !strings.Contains(buf.String(), "-          INTEGER      7\n1 token\n") {
		t.Errorf("got:\n%s", buf.String())
	}
}

func TestDiagnostics(t *testing.T) {
	toks, lexDiags := syntax.TokenizeFile("a.scl", "int x; int x; y = 1 @;")
	_, diags := syntax.Parse(toks)
	all := append(lexDiags, diags...)

	var buf bytes.Buffer
	Diagnostics(&buf, all)

	out := buf.String()
	lines := strings.Split(strings.TrimSuffix(out, "\n"), "\n")
	if len(lines) != len(all)+1 {
		t.Fatalf("got %d lines, want %d:\n%s", len(lines), len(all)+1, out)
	}
	for i, d := range all {
		if lines[i] != d.String() {
			t.Errorf("line %d = %q, want %q", i, lines[i], d.String())
		}
	}
	if want := plural(len(all), "error"); lines[len(lines)-1] != want {
		t.Errorf("summary = %q, want %q", lines[len(lines)-1], want)
	}
}

func TestDiagnosticsEmpty(t *testing.T) {
	var buf bytes.Buffer
	Diagnostics(&buf, nil)
	if buf.Len() != 0 {
		t.Errorf("got %q, want nothing", buf.String())
	}
}

func TestMemory(t *testing.T) {
	var buf bytes.Buffer
	Memory(&buf, memory{
		names: []string{"count", "x"},
		vals:  map[string]int64{"count": 3, "x": -14},
	})
	want := "count = 3\nx     = -14\n"
	if buf.String() != want {
		t.Errorf("got:\n%q\nwant:\n%q", buf.String(), want)
	}
}

func TestSummary(t *testing.T) {
	var buf bytes.Buffer
	Summary(&buf, "a.scl", 11, nil)
	Summary(&buf, "b.scl", 4, []syntax.Diagnostic{{Kind: syntax.SyntaxError, Msg: "x"}})
	want := "a.scl: ok (11 tokens)\nb.scl: 1 error\n"
	if buf.String() != want {
		t.Errorf("got %q, want %q", buf.String(), want)
	}
}
