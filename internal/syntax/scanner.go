package syntax

import (
	"fmt"
	"io"
	"strings"
)

// Scanner performs lexical analysis on SCL source code.
// Malformed input is reported through the error handler and skipped, so
// scanning always runs to the end of the input.
type Scanner struct {
	*source

	tok Token
}

// NewScanner creates a new scanner for the given source.
// The errh function is called for each lexical error; it may be nil.
func NewScanner(filename string, src io.Reader, errh func(line, col uint32, msg string)) *Scanner {
	return &Scanner{source: newSource(filename, src, errh)}
}

// Token returns the token produced by the last successful call to Next.
func (s *Scanner) Token() Token {
	return s.tok
}

// Pos returns the position of the current token.
func (s *Scanner) Pos() Pos {
	return s.tok.Pos
}

// Next advances to the next token. It reports false at end of input.
func (s *Scanner) Next() bool {
redo:
	s.skipWhitespace()

	pos := s.pos()
	switch {
	case s.ch < 0:
		return false

	case isLetter(s.ch):
		s.scanWord(pos)

	case isDigit(s.ch):
		s.scanNumber(pos)

	case s.ch == '/':
		s.nextch()
		if s.ch == '/' {
			s.skipLineComment()
			goto redo
		}
		s.tok = Token{Kind: Operator, Lexeme: "/", Pos: pos}

	case s.ch == '=':
		s.nextch()
		if s.ch == '=' {
			s.nextch()
			s.tok = Token{Kind: Operator, Lexeme: "==", Pos: pos}
			break
		}
		s.tok = Token{Kind: Operator, Lexeme: "=", Pos: pos}

	case strings.ContainsRune("+-*<>", s.ch):
		s.tok = Token{Kind: Operator, Lexeme: string(s.ch), Pos: pos}
		s.nextch()

	case isPunctuation(s.ch):
		s.tok = Token{Kind: Punctuation, Lexeme: string(s.ch), Pos: pos}
		s.nextch()

	default:
		if s.invalid {
			s.error("invalid UTF-8 encoding")
		} else {
			s.error(fmt.Sprintf("unexpected character %q", s.ch))
		}
		s.nextch()
		goto redo
	}

	return true
}

// skipWhitespace skips spaces, tabs, and line breaks.
func (s *Scanner) skipWhitespace() {
	for isWhitespace(s.ch) {
		s.nextch()
	}
}

// skipLineComment skips to the end of the line. The second '/' is current.
func (s *Scanner) skipLineComment() {
	for s.ch >= 0 && s.ch != '\n' {
		s.nextch()
	}
}

// scanWord scans an identifier or keyword.
func (s *Scanner) scanWord(pos Pos) {
	start := s.chOffs
	for isLetter(s.ch) || isDigit(s.ch) {
		s.nextch()
	}
	lit := s.segment(start)

	kind := Identifier
	if IsKeyword(lit) {
		kind = Keyword
	}
	s.tok = Token{Kind: kind, Lexeme: lit, Pos: pos}
}

// scanNumber scans a maximal run of decimal digits.
// A letter directly after the digits starts a new token.
func (s *Scanner) scanNumber(pos Pos) {
	start := s.chOffs
	for isDigit(s.ch) {
		s.nextch()
	}
	s.tok = Token{Kind: Integer, Lexeme: s.segment(start), Pos: pos}
}

// segment returns the source text from start up to the current character.
func (s *Scanner) segment(start int) string {
	return string(s.buf[start:s.chOffs])
}

// Tokenize scans src to the end and returns its tokens and lexical errors.
func Tokenize(src string) ([]Token, []Diagnostic) {
	return TokenizeFile("", src)
}

// TokenizeFile is like Tokenize but records filename in token positions.
func TokenizeFile(filename, src string) ([]Token, []Diagnostic) {
	return TokenizeReader(filename, strings.NewReader(src))
}

// TokenizeReader scans all of r.
func TokenizeReader(filename string, r io.Reader) ([]Token, []Diagnostic) {
	var diags []Diagnostic
	errh := func(line, col uint32, msg string) {
		diags = append(diags, Diagnostic{
			Kind: LexicalError,
			Pos:  NewPos(filename, line, col),
			Msg:  msg,
		})
	}

	s := NewScanner(filename, r, errh)
	var toks []Token
	for s.Next() {
		toks = append(toks, s.Token())
	}
	return toks, diags
}
