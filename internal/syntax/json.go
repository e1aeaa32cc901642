package syntax

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
)

// FprintJSON writes a JSON representation of the AST to w.
func FprintJSON(w io.Writer, node Node) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	return enc.Encode(ToMap(node))
}

// ToMap converts node to a tree of tagged records. Each record holds a "type"
// tag, a "pos" string when the position is known, and the node's fields.
// The result only contains maps, []interface{} and strings, so it can be
// handed to any generic encoder.
func ToMap(node Node) map[string]interface{} {
	if node == nil {
		return nil
	}

	var m map[string]interface{}
	switch n := node.(type) {
	case *Program:
		m = map[string]interface{}{
			"type":  "Program",
			"stmts": mapSlice(n.Stmts, stmtToMap),
		}

	case *Block:
		m = map[string]interface{}{
			"type":  "Block",
			"stmts": mapSlice(n.Stmts, stmtToMap),
		}

	case *Declaration:
		m = map[string]interface{}{
			"type":    "Declaration",
			"vartype": n.Type,
			"name":    n.Name,
		}
		if n.Init != nil {
			m["init"] = ToMap(n.Init)
		}

	case *Assignment:
		m = map[string]interface{}{
			"type":  "Assignment",
			"name":  n.Name,
			"value": ToMap(n.Value),
		}

	case *IfStmt:
		m = map[string]interface{}{
			"type": "If",
			"cond": ToMap(n.Cond),
			"then": ToMap(n.Then),
		}
		if n.Else != nil {
			m["else"] = ToMap(n.Else)
		}

	case *WhileStmt:
		m = map[string]interface{}{
			"type": "While",
			"cond": ToMap(n.Cond),
			"body": ToMap(n.Body),
		}

	case *RelOp:
		m = map[string]interface{}{
			"type": "RelOp",
			"op":   n.Op.String(),
			"x":    ToMap(n.X),
			"y":    ToMap(n.Y),
		}

	case *BinOp:
		m = map[string]interface{}{
			"type": "BinOp",
			"op":   n.Op.String(),
			"x":    ToMap(n.X),
			"y":    ToMap(n.Y),
		}

	case *IntLit:
		m = map[string]interface{}{
			"type":  "IntLiteral",
			"value": n.Value,
		}

	case *Ident:
		m = map[string]interface{}{
			"type": "Identifier",
			"name": n.Name,
		}

	default:
		return map[string]interface{}{
			"type": "Unknown",
		}
	}

	if pos := node.Pos(); pos.IsValid() {
		m["pos"] = pos.String()
	}
	return m
}

func stmtToMap(s Stmt) interface{} { return ToMap(s) }

// FromMap rebuilds a node from the output of ToMap, or from any decoder
// output of the same shape.
func FromMap(m map[string]interface{}) (Node, error) {
	d := &mapDecoder{}
	n := d.node(m, "$")
	if d.err != nil {
		return nil, d.err
	}
	return n, nil
}

// mapDecoder keeps the first error and turns later calls into no-ops.
type mapDecoder struct {
	err error
}

func (d *mapDecoder) errorf(path, format string, args ...interface{}) {
	if d.err == nil {
		d.err = fmt.Errorf("%s: %s", path, fmt.Sprintf(format, args...))
	}
}

func (d *mapDecoder) str(m map[string]interface{}, key, path string) string {
	if d.err != nil {
		return ""
	}
	s, ok := m[key].(string)
	if !ok {
		d.errorf(path, "missing string field %q", key)
	}
	return s
}

func (d *mapDecoder) child(m map[string]interface{}, key, path string, optional bool) Node {
	if d.err != nil {
		return nil
	}
	v, ok := m[key]
	if !ok || v == nil {
		if !optional {
			d.errorf(path, "missing field %q", key)
		}
		return nil
	}
	cm, ok := asMap(v)
	if !ok {
		d.errorf(path, "field %q is not a record", key)
		return nil
	}
	return d.node(cm, path+"."+key)
}

func (d *mapDecoder) expr(m map[string]interface{}, key, path string) Expr {
	n := d.child(m, key, path, false)
	if n == nil {
		return nil
	}
	x, ok := n.(Expr)
	if !ok {
		d.errorf(path, "field %q is not an expression", key)
		return nil
	}
	return x
}

func (d *mapDecoder) block(m map[string]interface{}, key, path string, optional bool) *Block {
	n := d.child(m, key, path, optional)
	if n == nil {
		return nil
	}
	b, ok := n.(*Block)
	if !ok {
		d.errorf(path, "field %q is not a block", key)
		return nil
	}
	return b
}

func (d *mapDecoder) relOp(m map[string]interface{}, key, path string) *RelOp {
	n := d.child(m, key, path, false)
	if n == nil {
		return nil
	}
	r, ok := n.(*RelOp)
	if !ok {
		d.errorf(path, "field %q is not a condition", key)
		return nil
	}
	return r
}

func (d *mapDecoder) stmts(m map[string]interface{}, path string) []Stmt {
	list := []Stmt{}
	if d.err != nil {
		return list
	}
	raw, ok := m["stmts"].([]interface{})
	if !ok && m["stmts"] != nil {
		d.errorf(path, "field \"stmts\" is not a list")
		return list
	}
	for i, v := range raw {
		ipath := fmt.Sprintf("%s.stmts[%d]", path, i)
		sm, ok := asMap(v)
		if !ok {
			d.errorf(ipath, "not a record")
			return list
		}
		n := d.node(sm, ipath)
		if d.err != nil {
			return list
		}
		s, ok := n.(Stmt)
		if !ok {
			d.errorf(ipath, "%s is not a statement", sm["type"])
			return list
		}
		list = append(list, s)
	}
	return list
}

func (d *mapDecoder) op(m map[string]interface{}, path string, relational bool) Op {
	lexeme := d.str(m, "op", path)
	if d.err != nil {
		return BadOp
	}
	op, ok := LookupOp(lexeme)
	if !ok || op.IsRelational() != relational {
		d.errorf(path, "invalid operator %q", lexeme)
	}
	return op
}

func (d *mapDecoder) node(m map[string]interface{}, path string) Node {
	if d.err != nil {
		return nil
	}

	var pos Pos
	if s, ok := m["pos"].(string); ok {
		p, err := ParsePos(s)
		if err != nil {
			d.errorf(path, "%v", err)
			return nil
		}
		pos = p
	}

	typ := d.str(m, "type", path)
	if d.err != nil {
		return nil
	}

	var n Node
	switch typ {
	case "Program":
		n = NewProgram(pos, d.stmts(m, path))
	case "Block":
		n = NewBlock(pos, d.stmts(m, path))
	case "Declaration":
		var init Expr
		if m["init"] != nil {
			init = d.expr(m, "init", path)
		}
		n = NewDeclaration(pos, d.str(m, "vartype", path), d.str(m, "name", path), init)
	case "Assignment":
		n = NewAssignment(pos, d.str(m, "name", path), d.expr(m, "value", path))
	case "If":
		n = NewIfStmt(pos, d.relOp(m, "cond", path), d.block(m, "then", path, false), d.block(m, "else", path, true))
	case "While":
		n = NewWhileStmt(pos, d.relOp(m, "cond", path), d.block(m, "body", path, false))
	case "RelOp":
		n = NewRelOp(pos, d.op(m, path, true), d.expr(m, "x", path), d.expr(m, "y", path))
	case "BinOp":
		n = NewBinOp(pos, d.op(m, path, false), d.expr(m, "x", path), d.expr(m, "y", path))
	case "IntLiteral":
		n = NewIntLit(pos, d.str(m, "value", path))
	case "Identifier":
		n = NewIdent(pos, d.str(m, "name", path))
	default:
		d.errorf(path, "unknown node type %q", typ)
	}
	if d.err != nil {
		return nil
	}
	return n
}

// TokenToMap converts t to the {"type", "value"} record used by token
// files, adding "line" and "col" when the position is known.
func TokenToMap(t Token) map[string]interface{} {
	m := map[string]interface{}{
		"type":  t.Kind.String(),
		"value": t.Lexeme,
	}
	if t.Pos.IsValid() {
		m["line"] = int(t.Pos.Line())
		m["col"] = int(t.Pos.Col())
	}
	return m
}

// TokenFromMap is the inverse of TokenToMap. filename is recorded in the
// position, which stays invalid when the record has no line.
func TokenFromMap(m map[string]interface{}, filename string) (Token, error) {
	typ, ok := m["type"].(string)
	if !ok {
		return Token{}, fmt.Errorf("token record missing \"type\"")
	}
	kind, ok := ParseKind(typ)
	if !ok {
		return Token{}, fmt.Errorf("unknown token type %q", typ)
	}
	value, ok := m["value"].(string)
	if !ok {
		return Token{}, fmt.Errorf("token record missing \"value\"")
	}

	t := Token{Kind: kind, Lexeme: value}
	if v, ok := m["line"]; ok {
		line, ok1 := toUint32(v)
		col, ok2 := toUint32(m["col"])
		if !ok1 || !ok2 {
			return Token{}, fmt.Errorf("token %q: invalid position", value)
		}
		t.Pos = NewPos(filename, line, col)
	}
	return t, nil
}

// DiagnosticToMap converts d to a record with "kind", "message", and, when
// known, "pos" and "token".
func DiagnosticToMap(d Diagnostic) map[string]interface{} {
	m := map[string]interface{}{
		"kind":    d.Kind.String(),
		"message": d.Msg,
	}
	if d.Pos.IsValid() {
		m["pos"] = d.Pos.String()
	}
	if d.Token != nil {
		m["token"] = TokenToMap(*d.Token)
	}
	return m
}

// DiagnosticFromMap is the inverse of DiagnosticToMap.
func DiagnosticFromMap(m map[string]interface{}) (Diagnostic, error) {
	name, _ := m["kind"].(string)
	kind, ok := ParseDiagKind(name)
	if !ok {
		return Diagnostic{}, fmt.Errorf("unknown diagnostic kind %q", name)
	}
	msg, _ := m["message"].(string)
	d := Diagnostic{Kind: kind, Msg: msg}
	if s, ok := m["pos"].(string); ok {
		pos, err := ParsePos(s)
		if err != nil {
			return Diagnostic{}, err
		}
		d.Pos = pos
	}
	if tm, ok := asMap(m["token"]); ok {
		tok, err := TokenFromMap(tm, d.Pos.Filename())
		if err != nil {
			return Diagnostic{}, err
		}
		d.Token = &tok
	}
	return d, nil
}

// asMap accepts the map types produced by the JSON and YAML decoders.
func asMap(v interface{}) (map[string]interface{}, bool) {
	switch m := v.(type) {
	case map[string]interface{}:
		return m, true
	case map[interface{}]interface{}:
		out := make(map[string]interface{}, len(m))
		for k, v := range m {
			s, ok := k.(string)
			if !ok {
				return nil, false
			}
			out[s] = v
		}
		return out, true
	}
	return nil, false
}

// toUint32 accepts the number types produced by the JSON, YAML and protobuf decoders.
func toUint32(v interface{}) (uint32, bool) {
	switch n := v.(type) {
	case int:
		if n >= 0 && int64(n) <= math.MaxUint32 {
			return uint32(n), true
		}
	case int64:
		if n >= 0 && n <= math.MaxUint32 {
			return uint32(n), true
		}
	case uint64:
		if n <= math.MaxUint32 {
			return uint32(n), true
		}
	case float64:
		if n >= 0 && n <= math.MaxUint32 && n == math.Trunc(n) {
			return uint32(n), true
		}
	case json.Number:
		i, err := n.Int64()
		if err == nil && i >= 0 && i <= math.MaxUint32 {
			return uint32(i), true
		}
	}
	return 0, false
}

// mapSlice converts each element of s with f.
func mapSlice[T any](s []T, f func(T) interface{}) []interface{} {
	result := make([]interface{}, len(s))
	for i, v := range s {
		result[i] = f(v)
	}
	return result
}
