// Package syntax implements lexical and syntactic analysis for SCL.
package syntax

import (
	"fmt"
	"strings"
)

// Kind classifies a token.
type Kind uint8

const (
	Integer     Kind = iota // 123
	Identifier              // x, total_1
	Keyword                 // if else while int
	Operator                // + - * / = < > ==
	Punctuation             // ; ( ) { } ,

	kindCount
)

// kindNames are the record names used in token files.
var kindNames = [...]string{
	Integer:     "INTEGER",
	Identifier:  "IDENTIFIER",
	Keyword:     "KEYWORD",
	Operator:    "OPERATOR",
	Punctuation: "PUNCTUATION",
}

// String returns the string representation of the kind.
func (k Kind) String() string {
	if k < kindCount {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", k)
}

// ParseKind returns the kind named s. Matching is case-insensitive.
func ParseKind(s string) (Kind, bool) {
	for k, name := range kindNames {
		if strings.EqualFold(name, s) {
			return Kind(k), true
		}
	}
	return 0, false
}

// Token is a lexeme together with its classification.
// Pos is the zero Pos for tokens read from files that carry no positions.
type Token struct {
	Kind   Kind
	Lexeme string
	Pos    Pos
}

// Is reports whether t has the given kind and lexeme.
func (t Token) Is(kind Kind, lexeme string) bool {
	return t.Kind == kind && t.Lexeme == lexeme
}

func (t Token) String() string {
	return fmt.Sprintf("%s %q", t.Kind, t.Lexeme)
}

// keywords is the reserved word set. Everything else scanned as a word is an Identifier.
var keywords = map[string]bool{
	"if":    true,
	"else":  true,
	"while": true,
	"int":   true,
}

// IsKeyword reports whether ident is a reserved word.
func IsKeyword(ident string) bool {
	return keywords[ident]
}

// Op is a binary operator appearing in expressions or conditions.
type Op uint8

const (
	BadOp Op = iota

	// arithmetic
	Add // +
	Sub // -
	Mul // *
	Div // /

	// relational
	Eql // ==
	Lss // <
	Gtr // >

	opCount
)

var opNames = [...]string{
	BadOp: "?",
	Add:   "+",
	Sub:   "-",
	Mul:   "*",
	Div:   "/",
	Eql:   "==",
	Lss:   "<",
	Gtr:   ">",
}

func (op Op) String() string {
	if op < opCount {
		return opNames[op]
	}
	return fmt.Sprintf("Op(%d)", op)
}

// LookupOp returns the operator spelled lexeme.
func LookupOp(lexeme string) (Op, bool) {
	for op := Add; op < opCount; op++ {
		if opNames[op] == lexeme {
			return op, true
		}
	}
	return BadOp, false
}

// Precedence returns the binding strength of an arithmetic operator.
// Relational operators return 0: they only appear in conditions.
//
//	1: + -
//	2: * /
func (op Op) Precedence() int {
	switch op {
	case Add, Sub:
		return 1
	case Mul, Div:
		return 2
	}
	return 0
}

// IsRelational reports whether op may appear in a condition.
func (op Op) IsRelational() bool {
	return op == Eql || op == Lss || op == Gtr
}

// IsArithmetic reports whether op may appear in an expression.
func (op Op) IsArithmetic() bool {
	return op >= Add && op <= Div
}
