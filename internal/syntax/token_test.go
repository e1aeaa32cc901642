package syntax

import "testing"

func TestKindString(t *testing.T) {
	tests := []struct {
		kind Kind
		want string
	}{
		{Integer, "INTEGER"},
		{Identifier, "IDENTIFIER"},
		{Keyword, "KEYWORD"},
		{Operator, "OPERATOR"},
		{Punctuation, "PUNCTUATION"},
		{Kind(42), "Kind(42)"},
	}

	for _, tt := range tests {
		if got := tt.kind.String(); got != tt.want {
			t.Errorf("Kind(%d).String() = %q, want %q", tt.kind, got, tt.want)
		}
	}
}

func TestParseKind(t *testing.T) {
	for k := Integer; k < kindCount; k++ {
		got, ok := ParseKind(k.String())
		if !ok || got != k {
			t.Errorf("ParseKind(%q) = %v, %v; want %v, true", k.String(), got, ok, k)
		}
	}
	if got, ok := ParseKind("keyword"); !ok || got != Keyword {
		t.Errorf("ParseKind(\"keyword\") = %v, %v; want KEYWORD, true", got, ok)
	}
	if _, ok := ParseKind("STRING"); ok {
		t.Error("ParseKind(\"STRING\") succeeded")
	}
}

func TestIsKeyword(t *testing.T) {
	for _, kw := range []string{"if", "else", "while", "int"} {
		if !IsKeyword(kw) {
			t.Errorf("IsKeyword(%q) = false, want true", kw)
		}
	}
	for _, id := range []string{"x", "If", "for", "return", "integer", "int1"} {
		if IsKeyword(id) {
			t.Errorf("IsKeyword(%q) = true, want false", id)
		}
	}
}

func TestLookupOp(t *testing.T) {
	tests := []struct {
		lexeme string
		op     Op
		prec   int
		rel    bool
	}{
		{"+", Add, 1, false},
		{"-", Sub, 1, false},
		{"*", Mul, 2, false},
		{"/", Div, 2, false},
		{"==", Eql, 0, true},
		{"<", Lss, 0, true},
		{">", Gtr, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.lexeme, func(t *testing.T) {
			op, ok := LookupOp(tt.lexeme)
			if !ok || op != tt.op {
				t.Fatalf("LookupOp(%q) = %v, %v; want %v, true", tt.lexeme, op, ok, tt.op)
			}
			if op.String() != tt.lexeme {
				t.Errorf("String() = %q, want %q", op.String(), tt.lexeme)
			}
			if op.Precedence() != tt.prec {
				t.Errorf("Precedence() = %d, want %d", op.Precedence(), tt.prec)
			}
			if op.IsRelational() != tt.rel {
				t.Errorf("IsRelational() = %v, want %v", op.IsRelational(), tt.rel)
			}
			if op.IsArithmetic() == tt.rel {
				t.Errorf("IsArithmetic() = %v, want %v", op.IsArithmetic(), !tt.rel)
			}
		})
	}

	for _, bad := range []string{"=", "!=", "<=", "%", ""} {
		if op, ok := LookupOp(bad); ok {
			t.Errorf("LookupOp(%q) = %v, want failure", bad, op)
		}
	}
}

func TestTokenIs(t *testing.T) {
	tok := Token{Kind: Punctuation, Lexeme: ";"}
	if !tok.Is(Punctuation, ";") {
		t.Error("Is(PUNCTUATION, ;) = false")
	}
	if tok.Is(Operator, ";") || tok.Is(Punctuation, ",") {
		t.Error("Is matched a different token")
	}
	if got, want := tok.String(), `PUNCTUATION ";"`; got != want {
		t.Errorf("String() = %s, want %s", got, want)
	}
}
