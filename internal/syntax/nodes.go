package syntax

// ----------------------------------------------------------------------------
// Interfaces
//
// There are 2 main classes of nodes: Statements and Expressions.
// Program, Block and RelOp are structural nodes that belong to neither class.
// All nodes implement the Node interface.

// Node is the interface implemented by all AST nodes.
type Node interface {
	Pos() Pos // position of the first token belonging to the node
	aNode()   // marker method to restrict implementations to this package
}

// Expr is the interface for all expression nodes.
type Expr interface {
	Node
	aExpr()
}

// Stmt is the interface for all statement nodes.
type Stmt interface {
	Node
	aStmt()
}

// ----------------------------------------------------------------------------
// Base node types

// node is the base struct embedded in all AST nodes.
type node struct {
	pos Pos
}

func (n *node) Pos() Pos { return n.pos }
func (n *node) aNode()   {}

// expr is embedded in all expression nodes.
type expr struct{ node }

func (*expr) aExpr() {}

// stmt is embedded in all statement nodes.
type stmt struct{ node }

func (*stmt) aStmt() {}

// ----------------------------------------------------------------------------
// Structure

// Program is the root of a parsed token stream.
type Program struct {
	node
	Stmts []Stmt
}

// Block is a brace-delimited statement list: { Stmts }
type Block struct {
	node
	Stmts []Stmt
}

// RelOp is a condition: X Op Y, with Op one of == < >.
type RelOp struct {
	node
	Op   Op
	X, Y Expr
}

// ----------------------------------------------------------------------------
// Statements

type (
	// Declaration declares a variable: Type Name [= Init];
	Declaration struct {
		stmt
		Type string // always "int"
		Name string
		Init Expr // nil if absent
	}

	// Assignment stores a value: Name = Value;
	Assignment struct {
		stmt
		Name  string
		Value Expr
	}

	// IfStmt: if (Cond) Then [else Else]
	IfStmt struct {
		stmt
		Cond *RelOp
		Then *Block
		Else *Block // nil if absent
	}

	// WhileStmt: while (Cond) Body
	WhileStmt struct {
		stmt
		Cond *RelOp
		Body *Block
	}
)

// ----------------------------------------------------------------------------
// Expressions

type (
	// BinOp is an arithmetic expression: X Op Y, with Op one of + - * /.
	BinOp struct {
		expr
		Op   Op
		X, Y Expr
	}

	// IntLit is a decimal integer literal. Value is the literal text.
	IntLit struct {
		expr
		Value string
	}

	// Ident is a reference to a declared variable.
	Ident struct {
		expr
		Name string
	}
)

// ----------------------------------------------------------------------------
// Constructors

func NewProgram(pos Pos, stmts []Stmt) *Program {
	p := &Program{Stmts: stmts}
	p.pos = pos
	return p
}

func NewBlock(pos Pos, stmts []Stmt) *Block {
	b := &Block{Stmts: stmts}
	b.pos = pos
	return b
}

func NewRelOp(pos Pos, op Op, x, y Expr) *RelOp {
	r := &RelOp{Op: op, X: x, Y: y}
	r.pos = pos
	return r
}

func NewDeclaration(pos Pos, typ, name string, init Expr) *Declaration {
	d := &Declaration{Type: typ, Name: name, Init: init}
	d.pos = pos
	return d
}

func NewAssignment(pos Pos, name string, value Expr) *Assignment {
	a := &Assignment{Name: name, Value: value}
	a.pos = pos
	return a
}

func NewIfStmt(pos Pos, cond *RelOp, then, els *Block) *IfStmt {
	s := &IfStmt{Cond: cond, Then: then, Else: els}
	s.pos = pos
	return s
}

func NewWhileStmt(pos Pos, cond *RelOp, body *Block) *WhileStmt {
	s := &WhileStmt{Cond: cond, Body: body}
	s.pos = pos
	return s
}

func NewBinOp(pos Pos, op Op, x, y Expr) *BinOp {
	b := &BinOp{Op: op, X: x, Y: y}
	b.pos = pos
	return b
}

func NewIntLit(pos Pos, value string) *IntLit {
	l := &IntLit{Value: value}
	l.pos = pos
	return l
}

func NewIdent(pos Pos, name string) *Ident {
	id := &Ident{Name: name}
	id.pos = pos
	return id
}
