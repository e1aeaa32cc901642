package interchange

import (
	"fmt"

	"github.com/you-not-fish/scl/internal/syntax"
)

// ToList converts node to the nested-list form. Parentheses leave no
// trace in the tree, so none appear in the list either.
func ToList(node syntax.Node) []interface{} {
	switch n := node.(type) {
	case *syntax.Program:
		list := []interface{}{"PROGRAM"}
		for _, s := range n.Stmts {
			list = append(list, ToList(s))
		}
		return list

	case *syntax.Block:
		stmts := make([]interface{}, len(n.Stmts))
		for i, s := range n.Stmts {
			stmts[i] = ToList(s)
		}
		return []interface{}{"BLOCK", stmts}

	case *syntax.Declaration:
		if n.Init == nil {
			return []interface{}{"DECLARATION", n.Type, n.Name}
		}
		return []interface{}{"DECLARATION_INIT", n.Type, n.Name, ToList(n.Init)}

	case *syntax.Assignment:
		return []interface{}{"ASSIGNMENT", n.Name, ToList(n.Value)}

	case *syntax.IfStmt:
		var els interface{}
		if n.Else != nil {
			els = ToList(n.Else)
		}
		return []interface{}{"IF", ToList(n.Cond), ToList(n.Then), els}

	case *syntax.WhileStmt:
		return []interface{}{"WHILE", ToList(n.Cond), ToList(n.Body)}

	case *syntax.RelOp:
		return []interface{}{"RELOP", n.Op.String(), ToList(n.X), ToList(n.Y)}

	case *syntax.BinOp:
		return []interface{}{"BINOP", n.Op.String(), ToList(n.X), ToList(n.Y)}

	case *syntax.IntLit:
		return []interface{}{"INT", n.Value}

	case *syntax.Ident:
		return []interface{}{"IDENTIFIER", n.Name}
	}
	return nil
}

// FromList is the inverse of ToList. The resulting nodes have no positions.
func FromList(list []interface{}) (syntax.Node, error) {
	return fromList(list, "$")
}

var listArity = map[string]int{
	"BLOCK":            2,
	"DECLARATION":      3,
	"DECLARATION_INIT": 4,
	"ASSIGNMENT":       3,
	"IF":               4,
	"WHILE":            3,
	"RELOP":            4,
	"BINOP":            4,
	"INT":              2,
	"IDENTIFIER":       2,
}

func fromList(list []interface{}, path string) (syntax.Node, error) {
	if len(list) == 0 {
		return nil, fmt.Errorf("%s: empty list", path)
	}
	tag, ok := list[0].(string)
	if !ok {
		return nil, fmt.Errorf("%s: missing tag", path)
	}
	if tag == "PROGRAM" {
		stmts, err := stmtList(list[1:], path, 1)
		if err != nil {
			return nil, err
		}
		return syntax.NewProgram(syntax.Pos{}, stmts), nil
	}

	want, ok := listArity[tag]
	if !ok {
		return nil, fmt.Errorf("%s: unknown tag %q", path, tag)
	}
	if len(list) != want {
		return nil, fmt.Errorf("%s: %s has %d elements, want %d", path, tag, len(list), want)
	}

	var nopos syntax.Pos
	switch tag {
	case "BLOCK":
		raw, ok := list[1].([]interface{})
		if !ok {
			return nil, fmt.Errorf("%s: BLOCK body is not a list", path)
		}
		stmts, err := stmtList(raw, path+"[1]", 0)
		if err != nil {
			return nil, err
		}
		return syntax.NewBlock(nopos, stmts), nil

	case "DECLARATION", "DECLARATION_INIT":
		typ, err1 := str(list, 1, path)
		name, err2 := str(list, 2, path)
		if err := firstErr(err1, err2); err != nil {
			return nil, err
		}
		var value syntax.Expr
		if tag == "DECLARATION_INIT" {
			if value, err1 = exprAt(list, 3, path); err1 != nil {
				return nil, err1
			}
		}
		return syntax.NewDeclaration(nopos, typ, name, value), nil

	case "ASSIGNMENT":
		name, err := str(list, 1, path)
		if err != nil {
			return nil, err
		}
		value, err := exprAt(list, 2, path)
		if err != nil {
			return nil, err
		}
		return syntax.NewAssignment(nopos, name, value), nil

	case "IF":
		cond, err := relOpAt(list, 1, path)
		if err != nil {
			return nil, err
		}
		then, err := blockAt(list, 2, path)
		if err != nil {
			return nil, err
		}
		var els *syntax.Block
		if list[3] != nil {
			if els, err = blockAt(list, 3, path); err != nil {
				return nil, err
			}
		}
		return syntax.NewIfStmt(nopos, cond, then, els), nil

	case "WHILE":
		cond, err := relOpAt(list, 1, path)
		if err != nil {
			return nil, err
		}
		body, err := blockAt(list, 2, path)
		if err != nil {
			return nil, err
		}
		return syntax.NewWhileStmt(nopos, cond, body), nil

	case "RELOP", "BINOP":
		lexeme, err := str(list, 1, path)
		if err != nil {
			return nil, err
		}
		op, ok := syntax.LookupOp(lexeme)
		if !ok || op.IsRelational() != (tag == "RELOP") {
			return nil, fmt.Errorf("%s: invalid %s operator %q", path, tag, lexeme)
		}
		x, err1 := exprAt(list, 2, path)
		y, err2 := exprAt(list, 3, path)
		if err := firstErr(err1, err2); err != nil {
			return nil, err
		}
		if tag == "RELOP" {
			return syntax.NewRelOp(nopos, op, x, y), nil
		}
		return syntax.NewBinOp(nopos, op, x, y), nil

	case "INT":
		v, err := str(list, 1, path)
		if err != nil {
			return nil, err
		}
		return syntax.NewIntLit(nopos, v), nil

	default: // IDENTIFIER
		name, err := str(list, 1, path)
		if err != nil {
			return nil, err
		}
		return syntax.NewIdent(nopos, name), nil
	}
}

func stmtList(raw []interface{}, path string, offset int) ([]syntax.Stmt, error) {
	stmts := make([]syntax.Stmt, 0, len(raw))
	for i := range raw {
		n, err := at(raw, i, path, offset)
		if err != nil {
			return nil, err
		}
		s, ok := n.(syntax.Stmt)
		if !ok {
			return nil, fmt.Errorf("%s[%d]: not a statement", path, i+offset)
		}
		stmts = append(stmts, s)
	}
	return stmts, nil
}

func at(list []interface{}, i int, path string, offset int) (syntax.Node, error) {
	ipath := fmt.Sprintf("%s[%d]", path, i+offset)
	sub, ok := list[i].([]interface{})
	if !ok {
		return nil, fmt.Errorf("%s: not a list", ipath)
	}
	return fromList(sub, ipath)
}

func str(list []interface{}, i int, path string) (string, error) {
	s, ok := list[i].(string)
	if !ok {
		return "", fmt.Errorf("%s[%d]: not a string", path, i)
	}
	return s, nil
}

func exprAt(list []interface{}, i int, path string) (syntax.Expr, error) {
	n, err := at(list, i, path, 0)
	if err != nil {
		return nil, err
	}
	x, ok := n.(syntax.Expr)
	if !ok {
		return nil, fmt.Errorf("%s[%d]: not an expression", path, i)
	}
	return x, nil
}

func relOpAt(list []interface{}, i int, path string) (*syntax.RelOp, error) {
	n, err := at(list, i, path, 0)
	if err != nil {
		return nil, err
	}
	r, ok := n.(*syntax.RelOp)
	if !ok {
		return nil, fmt.Errorf("%s[%d]: not a condition", path, i)
	}
	return r, nil
}

func blockAt(list []interface{}, i int, path string) (*syntax.Block, error) {
	n, err := at(list, i, path, 0)
	if err != nil {
		return nil, err
	}
	b, ok := n.(*syntax.Block)
	if !ok {
		return nil, fmt.Errorf("%s[%d]: not a block", path, i)
	}
	return b, nil
}

func firstErr(errs ...error) error {
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}
