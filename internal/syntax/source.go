package syntax

import (
	"io"
	"unicode/utf8"
)

// source is a character reader with position tracking.
// It reads UTF-8 encoded source text and provides character-by-character access.
type source struct {
	buf []byte // entire input

	filename string
	line     uint32 // line of ch (1-based)
	col      uint32 // column of ch (1-based, byte offset)

	ch      rune // current character, -1 at EOF
	chOffs  int  // byte offset of ch
	offs    int  // byte offset of the character after ch
	invalid bool // ch came from a malformed UTF-8 sequence

	errh func(line, col uint32, msg string)
}

// newSource creates a new source from an io.Reader.
// The errh function is called for each error; if nil, errors are silently ignored.
func newSource(filename string, src io.Reader, errh func(line, col uint32, msg string)) *source {
	s := &source{
		filename: filename,
		line:     1,
		col:      0, // incremented to 1 by the first nextch
		ch:       -1,
		errh:     errh,
	}

	var err error
	s.buf, err = io.ReadAll(src)
	if err != nil {
		s.error("error reading source: " + err.Error())
		s.ch = -1
		return s
	}

	s.nextch()
	return s
}

// nextch reads the next character and updates the position.
// After it returns, (line, col) is the position of s.ch.
func (s *source) nextch() {
	if s.ch == '\n' {
		s.line++
		s.col = 1
	} else {
		s.col++
	}

	s.chOffs = s.offs
	if s.offs >= len(s.buf) {
		s.ch = -1
		s.invalid = false
		return
	}

	r, width := utf8.DecodeRune(s.buf[s.offs:])
	s.invalid = r == utf8.RuneError && width == 1
	s.ch = r
	s.offs += width
}

// pos returns the position of the current character.
func (s *source) pos() Pos {
	return NewPos(s.filename, s.line, s.col)
}

// error reports a lexical error at the current position.
func (s *source) error(msg string) {
	if s.errh != nil {
		s.errh(s.line, s.col, msg)
	}
}

// isLetter reports whether r can start an identifier (a-z, A-Z, or _).
func isLetter(r rune) bool {
	return 'a' <= r && r <= 'z' || 'A' <= r && r <= 'Z' || r == '_'
}

// isDigit reports whether r is a decimal digit (0-9).
func isDigit(r rune) bool {
	return '0' <= r && r <= '9'
}

// isWhitespace reports whether r separates lexemes.
func isWhitespace(r rune) bool {
	return r == ' ' || r == '\t' || r == '\r' || r == '\n'
}

// isPunctuation reports whether r is a punctuation token on its own.
func isPunctuation(r rune) bool {
	switch r {
	case ';', '(', ')', '{', '}', ',':
		return true
	}
	return false
}
