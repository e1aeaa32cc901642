package syntax

import "fmt"

// DefaultMaxDepth bounds nesting of blocks and parenthesized expressions.
const DefaultMaxDepth = 200

// An Option configures a Parser.
type Option func(*Parser)

// WithMaxDepth sets the nesting limit. Values below 1 select DefaultMaxDepth.
func WithMaxDepth(n int) Option {
	return func(p *Parser) {
		if n < 1 {
			n = DefaultMaxDepth
		}
		p.maxDepth = n
	}
}

// WithErrorHandler registers a function called for each diagnostic as it is reported.
func WithErrorHandler(errh func(Diagnostic)) Option {
	return func(p *Parser) {
		p.errh = errh
	}
}

// Parser performs syntax analysis on a token sequence.
//
// Errors never stop the parse. A failed statement is dropped, one token is
// discarded, and parsing resumes; while resuming, repeated "unexpected token"
// reports are held back until a ';' or '}' has been skipped or a statement
// starts cleanly.
type Parser struct {
	toks []Token
	cur  int

	syms  *SymbolTable
	diags []Diagnostic
	errh  func(Diagnostic)

	depth      int
	maxDepth   int
	recovering bool
}

// NewParser creates a Parser over toks. The slice is not modified.
func NewParser(toks []Token, opts ...Option) *Parser {
	p := &Parser{toks: toks, maxDepth: DefaultMaxDepth}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Parse parses toks with default options.
func Parse(toks []Token) (*Program, []Diagnostic) {
	return NewParser(toks).Parse()
}

// Parse parses the whole token sequence. Calling it again starts over.
func (p *Parser) Parse() (*Program, []Diagnostic) {
	p.cur = 0
	p.syms = NewSymbolTable()
	p.diags = nil
	p.depth = 0
	p.recovering = false

	var pos Pos
	if len(p.toks) > 0 {
		pos = p.toks[0].Pos
	}
	prog := NewProgram(pos, p.stmtList(false))
	return prog, p.diags
}

// Symbols returns the table built by the last call to Parse.
func (p *Parser) Symbols() *SymbolTable {
	return p.syms
}

// ----------------------------------------------------------------------------
// Token navigation

// peek returns the current token, or nil at end of input.
func (p *Parser) peek() *Token {
	if p.cur < len(p.toks) {
		return &p.toks[p.cur]
	}
	return nil
}

// next consumes and returns the current token.
func (p *Parser) next() *Token {
	tok := p.peek()
	if tok != nil {
		p.cur++
	}
	return tok
}

// at reports whether the current token is the given one.
func (p *Parser) at(kind Kind, lexeme string) bool {
	tok := p.peek()
	return tok != nil && tok.Is(kind, lexeme)
}

// got consumes the current token if it matches.
func (p *Parser) got(kind Kind, lexeme string) bool {
	if p.at(kind, lexeme) {
		p.cur++
		return true
	}
	return false
}

// want is like got but reports a syntax error on mismatch.
// The mismatched token is left in place.
func (p *Parser) want(kind Kind, lexeme, context string) bool {
	if p.got(kind, lexeme) {
		return true
	}
	p.syntaxError(fmt.Sprintf("expected '%s' %s", lexeme, context))
	return false
}

// ----------------------------------------------------------------------------
// Error handling

// describe names a token for error messages.
func describe(tok *Token) string {
	if tok == nil {
		return "end of input"
	}
	return "'" + tok.Lexeme + "'"
}

// errorAt reports a diagnostic about tok, which may be nil at end of input.
func (p *Parser) errorAt(kind DiagKind, tok *Token, msg string) {
	d := Diagnostic{Kind: kind, Msg: msg}
	if tok != nil {
		t := *tok
		d.Token = &t
		d.Pos = t.Pos
	} else if n := len(p.toks); n > 0 {
		d.Pos = p.toks[n-1].Pos
	}
	p.diags = append(p.diags, d)
	if p.errh != nil {
		p.errh(d)
	}
}

// syntaxError reports a syntax error at the current token.
// msg states what was expected; the found token is appended.
func (p *Parser) syntaxError(msg string) {
	tok := p.peek()
	p.errorAt(SyntaxError, tok, msg+", got "+describe(tok))
}

// enter increments the nesting depth, reporting an error at tok if the
// limit is exceeded.
func (p *Parser) enter(tok *Token) bool {
	if p.depth >= p.maxDepth {
		p.errorAt(SyntaxError, tok, fmt.Sprintf("nesting depth exceeds %d", p.maxDepth))
		return false
	}
	p.depth++
	return true
}

func (p *Parser) leave() {
	p.depth--
}

// ----------------------------------------------------------------------------
// Statements

// stmtList parses statements until end of input or, inside a block, a '}'.
func (p *Parser) stmtList(inBlock bool) []Stmt {
	list := []Stmt{}
	for {
		tok := p.peek()
		if tok == nil || inBlock && tok.Is(Punctuation, "}") {
			return list
		}
		if s := p.stmt(); s != nil {
			list = append(list, s)
			continue
		}
		p.recovering = true
		p.skip(inBlock)
	}
}

// skip discards one token after a dropped statement.
// A '}' that closes the enclosing block is kept for the block.
func (p *Parser) skip(inBlock bool) {
	tok := p.peek()
	if tok == nil || inBlock && tok.Is(Punctuation, "}") {
		return
	}
	p.cur++
	if tok.Is(Punctuation, ";") || tok.Is(Punctuation, "}") {
		p.recovering = false
	}
}

// Statement = Declaration | IfStmt | WhileStmt | Assignment .
func (p *Parser) stmt() Stmt {
	tok := p.peek()
	switch tok.Kind {
	case Keyword:
		switch tok.Lexeme {
		case "int":
			p.recovering = false
			return p.declaration()
		case "if":
			p.recovering = false
			return p.ifStmt()
		case "while":
			p.recovering = false
			return p.whileStmt()
		}
	case Identifier:
		p.recovering = false
		return p.assignment()
	}

	if !p.recovering {
		p.errorAt(SyntaxError, tok, fmt.Sprintf("unexpected %s at statement start", describe(tok)))
	}
	return nil
}

// Declaration = "int" Identifier [ "=" Expression ] ";" .
func (p *Parser) declaration() Stmt {
	kw := p.next()

	name := p.peek()
	if name == nil || name.Kind != Identifier {
		p.syntaxError("expected identifier after 'int'")
		return nil
	}
	p.next()
	if p.syms.Contains(name.Lexeme) {
		p.errorAt(DuplicateDeclaration, name, fmt.Sprintf("variable '%s' already declared", name.Lexeme))
		return nil
	}

	var init Expr
	if p.got(Operator, "=") {
		if init = p.expr(); init == nil {
			return nil
		}
	}
	if !p.want(Punctuation, ";", "after declaration") {
		return nil
	}

	// The name becomes visible only once the declaration is complete.
	if err := p.syms.declareAt(name.Lexeme, name.Pos); err != nil {
		p.errorAt(DuplicateDeclaration, name, err.Error())
		return nil
	}
	return NewDeclaration(kw.Pos, kw.Lexeme, name.Lexeme, init)
}

// Assignment = Identifier "=" Expression ";" .
func (p *Parser) assignment() Stmt {
	name := p.next()
	if !p.syms.Contains(name.Lexeme) {
		p.errorAt(UndeclaredVariable, name, fmt.Sprintf("variable '%s' not declared", name.Lexeme))
		return nil
	}
	if !p.want(Operator, "=", "in assignment") {
		return nil
	}
	value := p.expr()
	if value == nil {
		return nil
	}
	if !p.want(Punctuation, ";", "after assignment") {
		return nil
	}
	return NewAssignment(name.Pos, name.Lexeme, value)
}

// IfStmt = "if" "(" Condition ")" Block [ "else" Block ] .
func (p *Parser) ifStmt() Stmt {
	kw := p.next()
	if !p.want(Punctuation, "(", "after 'if'") {
		return nil
	}
	cond := p.condition()
	if cond == nil {
		return nil
	}
	if !p.want(Punctuation, ")", "after condition") {
		return nil
	}
	then := p.block()
	if then == nil {
		return nil
	}
	var els *Block
	if p.got(Keyword, "else") {
		if els = p.block(); els == nil {
			return nil
		}
	}
	return NewIfStmt(kw.Pos, cond, then, els)
}

// WhileStmt = "while" "(" Condition ")" Block .
func (p *Parser) whileStmt() Stmt {
	kw := p.next()
	if !p.want(Punctuation, "(", "after 'while'") {
		return nil
	}
	cond := p.condition()
	if cond == nil {
		return nil
	}
	if !p.want(Punctuation, ")", "after condition") {
		return nil
	}
	body := p.block()
	if body == nil {
		return nil
	}
	return NewWhileStmt(kw.Pos, cond, body)
}

// Block = "{" { Statement } "}" .
func (p *Parser) block() *Block {
	lbrace := p.peek()
	if !p.want(Punctuation, "{", "to open block") {
		return nil
	}
	if !p.enter(lbrace) {
		return nil
	}
	defer p.leave()

	stmts := p.stmtList(true)
	if !p.want(Punctuation, "}", "to close block") {
		return nil
	}
	return NewBlock(lbrace.Pos, stmts)
}

// ----------------------------------------------------------------------------
// Expressions

// Condition = Expression ( "==" | "<" | ">" ) Expression .
func (p *Parser) condition() *RelOp {
	x := p.expr()
	if x == nil {
		return nil
	}
	tok := p.peek()
	op := BadOp
	if tok != nil && tok.Kind == Operator {
		op, _ = LookupOp(tok.Lexeme)
	}
	if !op.IsRelational() {
		p.syntaxError("expected relational operator (==, <, >)")
		return nil
	}
	p.next()
	y := p.expr()
	if y == nil {
		return nil
	}
	return NewRelOp(x.Pos(), op, x, y)
}

// Expression = Term { ( "+" | "-" ) Term } .
// Term       = Factor { ( "*" | "/" ) Factor } .
func (p *Parser) expr() Expr {
	return p.binaryExpr(0)
}

// binaryExpr parses a binary expression using precedence climbing.
// Operators at the same level associate to the left.
func (p *Parser) binaryExpr(prec int) Expr {
	x := p.factor()
	if x == nil {
		return nil
	}
	for {
		tok := p.peek()
		if tok == nil || tok.Kind != Operator {
			return x
		}
		op, ok := LookupOp(tok.Lexeme)
		if !ok || !op.IsArithmetic() || op.Precedence() <= prec {
			return x
		}
		p.next()
		y := p.binaryExpr(op.Precedence())
		if y == nil {
			return nil
		}
		x = NewBinOp(x.Pos(), op, x, y)
	}
}

// Factor = Integer | Identifier | "(" Expression ")" .
func (p *Parser) factor() Expr {
	tok := p.peek()
	if tok == nil {
		p.syntaxError("expected expression")
		return nil
	}

	switch {
	case tok.Kind == Integer:
		p.next()
		return NewIntLit(tok.Pos, tok.Lexeme)

	case tok.Kind == Identifier:
		if !p.syms.Contains(tok.Lexeme) {
			p.errorAt(UndeclaredVariable, tok, fmt.Sprintf("variable '%s' not declared", tok.Lexeme))
			return nil
		}
		p.next()
		return NewIdent(tok.Pos, tok.Lexeme)

	case tok.Is(Punctuation, "("):
		if !p.enter(tok) {
			return nil
		}
		defer p.leave()
		p.next()
		x := p.expr()
		if x == nil {
			return nil
		}
		if !p.want(Punctuation, ")", "to close expression") {
			return nil
		}
		return x
	}

	p.syntaxError("expected expression")
	return nil
}
