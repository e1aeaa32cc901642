package syntax

import (
	"fmt"
	"io"
	"strings"
)

// Fprint writes a textual representation of the AST to w.
func Fprint(w io.Writer, node Node) {
	p := &printer{w: w}
	p.print(node)
}

type printer struct {
	w      io.Writer
	indent int
}

func (p *printer) printf(format string, args ...interface{}) {
	fmt.Fprintf(p.w, "%s%s", strings.Repeat("  ", p.indent), fmt.Sprintf(format, args...))
}

// labeled prints node one level below a "label:" line.
func (p *printer) labeled(label string, node Node) {
	p.printf("%s:\n", label)
	p.indent++
	p.print(node)
	p.indent--
}

func (p *printer) print(node Node) {
	if node == nil {
		return
	}

	switch n := node.(type) {
	case *Program:
		p.printf("Program %s\n", n.pos)
		p.indent++
		for _, s := range n.Stmts {
			p.print(s)
		}
		p.indent--

	case *Block:
		p.printf("Block %s\n", n.pos)
		p.indent++
		for _, s := range n.Stmts {
			p.print(s)
		}
		p.indent--

	case *Declaration:
		p.printf("Declaration %s %s %s\n", n.pos, n.Type, n.Name)
		if n.Init != nil {
			p.indent++
			p.labeled("Init", n.Init)
			p.indent--
		}

	case *Assignment:
		p.printf("Assignment %s %s\n", n.pos, n.Name)
		p.indent++
		p.print(n.Value)
		p.indent--

	case *IfStmt:
		p.printf("If %s\n", n.pos)
		p.indent++
		p.labeled("Cond", n.Cond)
		p.labeled("Then", n.Then)
		if n.Else != nil {
			p.labeled("Else", n.Else)
		}
		p.indent--

	case *WhileStmt:
		p.printf("While %s\n", n.pos)
		p.indent++
		p.labeled("Cond", n.Cond)
		p.labeled("Body", n.Body)
		p.indent--

	case *RelOp:
		p.printf("RelOp %s %s\n", n.pos, n.Op)
		p.indent++
		p.print(n.X)
		p.print(n.Y)
		p.indent--

	case *BinOp:
		p.printf("BinOp %s %s\n", n.pos, n.Op)
		p.indent++
		p.print(n.X)
		p.print(n.Y)
		p.indent--

	case *IntLit:
		p.printf("IntLit %s %s\n", n.pos, n.Value)

	case *Ident:
		p.printf("Ident %s %s\n", n.pos, n.Name)

	default:
		p.printf("<%T>\n", node)
	}
}

// String returns a one-line form of node without positions, such as
//
//	Program[Declaration(int, x), Assignment(x, BinOp(+, 2, BinOp(*, 3, 4)))]
func String(node Node) string {
	var b strings.Builder
	writeShort(&b, node)
	return b.String()
}

func writeShort(b *strings.Builder, node Node) {
	switch n := node.(type) {
	case nil:
		b.WriteString("<nil>")
	case *Program:
		b.WriteString("Program")
		writeStmts(b, n.Stmts)
	case *Block:
		b.WriteString("Block")
		writeStmts(b, n.Stmts)
	case *Declaration:
		fmt.Fprintf(b, "Declaration(%s, %s", n.Type, n.Name)
		if n.Init != nil {
			b.WriteString(", ")
			writeShort(b, n.Init)
		}
		b.WriteByte(')')
	case *Assignment:
		fmt.Fprintf(b, "Assignment(%s, ", n.Name)
		writeShort(b, n.Value)
		b.WriteByte(')')
	case *IfStmt:
		b.WriteString("If(")
		writeShort(b, n.Cond)
		b.WriteString(", ")
		writeShort(b, n.Then)
		if n.Else != nil {
			b.WriteString(", ")
			writeShort(b, n.Else)
		}
		b.WriteByte(')')
	case *WhileStmt:
		b.WriteString("While(")
		writeShort(b, n.Cond)
		b.WriteString(", ")
		writeShort(b, n.Body)
		b.WriteByte(')')
	case *RelOp:
		fmt.Fprintf(b, "RelOp(%s, ", n.Op)
		writeShort(b, n.X)
		b.WriteString(", ")
		writeShort(b, n.Y)
		b.WriteByte(')')
	case *BinOp:
		fmt.Fprintf(b, "BinOp(%s, ", n.Op)
		writeShort(b, n.X)
		b.WriteString(", ")
		writeShort(b, n.Y)
		b.WriteByte(')')
	case *IntLit:
		b.WriteString(n.Value)
	case *Ident:
		b.WriteString(n.Name)
	default:
		fmt.Fprintf(b, "<%T>", node)
	}
}

func writeStmts(b *strings.Builder, list []Stmt) {
	b.WriteByte('[')
	for i, s := range list {
		if i > 0 {
			b.WriteString(", ")
		}
		writeShort(b, s)
	}
	b.WriteByte(']')
}
