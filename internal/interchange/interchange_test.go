package interchange

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/you-not-fish/scl/internal/syntax"
)

func parse(t *testing.T, src string) (*syntax.Program, []syntax.Token) {
	t.Helper()
	toks, lexDiags := syntax.TokenizeFile("test.scl", src)
	if len(lexDiags) > 0 {
		t.Fatalf("lexical errors: %v", lexDiags)
	}
	prog, diags := syntax.Parse(toks)
	if len(diags) > 0 {
		t.Fatalf("parse errors: %v", diags)
	}
	return prog, toks
}

var sources = []string{
	"",
	"int x; x = 2 + 3 * 4;",
	"int x = (1 + 2) * 3 - 4 / 5;",
	"int x; if (x > 0) { x = 1; } else { x = 2; }",
	"int i; while (i < 10) { if (i == 5) { int j = i; } i = i + 1; }",
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in   string
		want Format
	}{
		{"json", JSON},
		{"JSON", JSON},
		{"yaml", YAML},
		{"yml", YAML},
		{"list", List},
	}
	for _, tt := range tests {
		got, err := ParseFormat(tt.in)
		if err != nil || got != tt.want {
			t.Errorf("ParseFormat(%q) = %q, %v; want %q", tt.in, got, err, tt.want)
		}
	}
	if _, err := ParseFormat("xml"); !errors.Is(err, ErrUnknownFormat) {
		t.Errorf("ParseFormat(xml) error = %v", err)
	}
}

func TestPaths(t *testing.T) {
	tests := []struct {
		fn   func(string) string
		in   string
		want string
	}{
		{TokensPath, "prog.scl", "prog_tokens.json"},
		{TokensPath, "dir/prog.scl", "dir/prog_tokens.json"},
		{TokensPath, "noext", "noext_tokens.json"},
		{TreePath, "dir/prog.scl", "dir/prog_parse_tree.json"},
		{TreePath, "dir/prog_tokens.json", "dir/prog_parse_tree.json"},
	}
	for _, tt := range tests {
		if got := tt.fn(tt.in); got != tt.want {
			t.Errorf("path(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestTokensRoundTrip(t *testing.T) {
	_, toks := parse(t, sources[1])

	for _, format := range []Format{JSON, YAML} {
		t.Run(string(format), func(t *testing.T) {
			var buf bytes.Buffer
			if err := EncodeTokens(&buf, format, toks); err != nil {
				t.Fatal(err)
			}
			back, err := DecodeTokens(&buf, format, "test.scl")
			if err != nil {
				t.Fatal(err)
			}
			if len(back) != len(toks) {
				t.Fatalf("got %d tokens, want %d", len(back), len(toks))
			}
			for i := range toks {
				if back[i] != toks[i] {
					t.Errorf("token %d = %v at %s, want %v at %s", i, back[i], back[i].Pos, toks[i], toks[i].Pos)
				}
			}
		})
	}
}

func TestTokensListForm(t *testing.T) {
	_, toks := parse(t, "int x;")

	var buf bytes.Buffer
	if err := EncodeTokens(&buf, List, toks); err != nil {
		t.Fatal(err)
	}
	var records []map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &records); err != nil {
		t.Fatal(err)
	}
	want := []map[string]interface{}{
		{"type": "KEYWORD", "value": "int"},
		{"type": "IDENTIFIER", "value": "x"},
		{"type": "PUNCTUATION", "value": ";"},
	}
	if len(records) != len(want) {
		t.Fatalf("records = %v", records)
	}
	for i := range want {
		if len(records[i]) != 2 || records[i]["type"] != want[i]["type"] || records[i]["value"] != want[i]["value"] {
			t.Errorf("record %d = %v, want %v", i, records[i], want[i])
		}
	}

	back, err := DecodeTokens(&buf, List, "test.scl")
	if err != nil {
		t.Fatal(err)
	}
	for _, tok := range back {
		if tok.Pos.IsValid() {
			t.Errorf("token %v has position %s", tok, tok.Pos)
		}
	}
}

func TestDecodeTokensPlainRecords(t *testing.T) {
	in := `[{"type": "INTEGER", "value": "2"}, {"type": "OPERATOR", "value": "+"}]`
	toks, err := DecodeTokens(strings.NewReader(in), JSON, "")
	if err != nil {
		t.Fatal(err)
	}
	if len(toks) != 2 || !toks[0].Is(syntax.Integer, "2") || !toks[1].Is(syntax.Operator, "+") {
		t.Errorf("tokens = %v", toks)
	}
}

func TestDecodeTokensErrors(t *testing.T) {
	tests := []struct {
		name, in, want string
	}{
		{"not_json", `{`, "decode tokens"},
		{"not_list", `{"type": "INTEGER"}`, "decode tokens"},
		{"not_record", `[1]`, "element 0 is not a record"},
		{"bad_kind", `[{"type": "FLOAT", "value": "1.5"}]`, "unknown token type"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeTokens(strings.NewReader(tt.in), JSON, "")
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("err = %v, want %q", err, tt.want)
			}
		})
	}
}

func TestTreeRoundTrip(t *testing.T) {
	for _, format := range []Format{JSON, YAML, List} {
		for _, src := range sources {
			t.Run(string(format)+"/"+src, func(t *testing.T) {
				prog, _ := parse(t, src)

				var buf bytes.Buffer
				if err := EncodeTree(&buf, format, prog); err != nil {
					t.Fatal(err)
				}
				back, err := DecodeTree(&buf, format)
				if err != nil {
					t.Fatalf("DecodeTree: %v\n%s", err, buf.String())
				}
				if syntax.String(back) != syntax.String(prog) {
					t.Errorf("round trip:\n got  %s\n want %s", syntax.String(back), syntax.String(prog))
				}
				if format != List && back.Pos() != prog.Pos() {
					t.Errorf("pos = %s, want %s", back.Pos(), prog.Pos())
				}
			})
		}
	}
}

func TestTreeListShape(t *testing.T) {
	prog, _ := parse(t, "int x = 2; if (x > 0) { x = x * 3; }")

	var buf bytes.Buffer
	if err := EncodeTree(&buf, List, prog); err != nil {
		t.Fatal(err)
	}
	var compact bytes.Buffer
	if err := json.Compact(&compact, buf.Bytes()); err != nil {
		t.Fatal(err)
	}
	want := `["PROGRAM",["DECLARATION_INIT","int","x",["INT","2"]],` +
		`["IF",["RELOP",">",["IDENTIFIER","x"],["INT","0"]],` +
		`["BLOCK",[["ASSIGNMENT","x",["BINOP","*",["IDENTIFIER","x"],["INT","3"]]]]],null]]`
	if compact.String() != want {
		t.Errorf("list form:\n got  %s\n want %s", compact.String(), want)
	}
}

func TestFromListErrors(t *testing.T) {
	tests := []struct {
		name, in, want string
	}{
		{"empty", `[]`, "$: empty list"},
		{"no_tag", `[1]`, "$: missing tag"},
		{"unknown", `["FOR"]`, `unknown tag "FOR"`},
		{"arity", `["INT"]`, "INT has 1 elements, want 2"},
		{"expr_stmt", `["PROGRAM", ["INT", "1"]]`, "$[1]: not a statement"},
		{"bad_op", `["BINOP", "<", ["INT", "1"], ["INT", "2"]]`, `invalid BINOP operator "<"`},
		{"bad_cond", `["WHILE", ["INT", "1"], ["BLOCK", []]]`, "$[1]: not a condition"},
		{"bad_block", `["BLOCK", 3]`, "BLOCK body is not a list"},
		{"nested", `["PROGRAM", ["BLOCK", [["ASSIGNMENT", "x", "y"]]]]`, "$[1][1][0][2]: not a list"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var raw []interface{}
			if err := json.Unmarshal([]byte(tt.in), &raw); err != nil {
				t.Fatal(err)
			}
			_, err := FromList(raw)
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("err = %v, want %q", err, tt.want)
			}
		})
	}
}

func TestDecodeTreeNotProgram(t *testing.T) {
	_, err := DecodeTree(strings.NewReader(`{"type": "Block", "stmts": []}`), JSON)
	if err == nil || !strings.Contains(err.Error(), "want a program") {
		t.Errorf("err = %v", err)
	}
}

func TestDiagnosticsRoundTrip(t *testing.T) {
	toks, _ := syntax.TokenizeFile("test.scl", "int x; int x; y = 1;")
	_, diags := syntax.Parse(toks)
	if len(diags) != 2 {
		t.Fatalf("diags = %v", diags)
	}

	for _, format := range []Format{JSON, YAML, List} {
		t.Run(string(format), func(t *testing.T) {
			var buf bytes.Buffer
			if err := EncodeDiagnostics(&buf, format, diags); err != nil {
				t.Fatal(err)
			}
			back, err := DecodeDiagnostics(&buf, format)
			if err != nil {
				t.Fatal(err)
			}
			if syntax.Diagnostics(back).Format() != syntax.Diagnostics(diags).Format() {
				t.Errorf("got\n%s\nwant\n%s", syntax.Diagnostics(back).Format(), syntax.Diagnostics(diags).Format())
			}
		})
	}
}

func TestUnknownFormat(t *testing.T) {
	var buf bytes.Buffer
	if err := EncodeTree(&buf, Format("xml"), syntax.NewProgram(syntax.Pos{}, nil)); !errors.Is(err, ErrUnknownFormat) {
		t.Errorf("EncodeTree err = %v", err)
	}
	if _, err := DecodeTokens(&buf, Format("xml"), ""); !errors.Is(err, ErrUnknownFormat) {
		t.Errorf("DecodeTokens err = %v", err)
	}
}
