package syntax

import (
	"fmt"
	"strings"
)

// DiagKind classifies a diagnostic.
type DiagKind uint8

const (
	LexicalError         DiagKind = iota // unrecognized character or bad encoding
	SyntaxError                          // token sequence does not match the grammar
	DuplicateDeclaration                 // name declared twice
	UndeclaredVariable                   // name used before its declaration

	diagKindCount
)

var diagKindNames = [...]string{
	LexicalError:         "LexicalError",
	SyntaxError:          "SyntaxError",
	DuplicateDeclaration: "DuplicateDeclaration",
	UndeclaredVariable:   "UndeclaredVariable",
}

func (k DiagKind) String() string {
	if k < diagKindCount {
		return diagKindNames[k]
	}
	return fmt.Sprintf("DiagKind(%d)", k)
}

// ParseDiagKind returns the kind named s.
func ParseDiagKind(s string) (DiagKind, bool) {
	for k, name := range diagKindNames {
		if name == s {
			return DiagKind(k), true
		}
	}
	return 0, false
}

// Diagnostic is a single reported problem.
type Diagnostic struct {
	Kind  DiagKind
	Msg   string
	Pos   Pos    // zero if the offending token carries no position
	Token *Token // offending token; nil at end of input and for lexical errors
}

// String formats d as "pos: kind: msg", leaving out an invalid position.
func (d Diagnostic) String() string {
	if d.Pos.IsValid() {
		return fmt.Sprintf("%s: %s: %s", d.Pos, d.Kind, d.Msg)
	}
	return fmt.Sprintf("%s: %s", d.Kind, d.Msg)
}

// Diagnostics is a list of diagnostics in report order.
// A non-empty list is usable as an error.
type Diagnostics []Diagnostic

func (l Diagnostics) Error() string {
	switch len(l) {
	case 0:
		return "no errors"
	case 1:
		return l[0].String()
	}
	return fmt.Sprintf("%s (and %d more errors)", l[0], len(l)-1)
}

// Err returns l as an error, or nil if l is empty.
func (l Diagnostics) Err() error {
	if len(l) == 0 {
		return nil
	}
	return l
}

// Count returns the number of diagnostics of the given kind.
func (l Diagnostics) Count(kind DiagKind) int {
	n := 0
	for _, d := range l {
		if d.Kind == kind {
			n++
		}
	}
	return n
}

// Format writes one diagnostic per line.
func (l Diagnostics) Format() string {
	var b strings.Builder
	for _, d := range l {
		b.WriteString(d.String())
		b.WriteByte('\n')
	}
	return b.String()
}
