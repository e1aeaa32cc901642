package syntax

// Visitor is called for each node during Walk.
// If it returns false, the children of the node are not visited.
type Visitor func(node Node) bool

// Walk traverses an AST in depth-first order.
// If visitor returns false, children are not visited.
func Walk(node Node, v Visitor) {
	if node == nil || !v(node) {
		return
	}

	switch n := node.(type) {
	case *Program:
		for _, s := range n.Stmts {
			Walk(s, v)
		}

	case *Block:
		for _, s := range n.Stmts {
			Walk(s, v)
		}

	case *Declaration:
		if n.Init != nil {
			Walk(n.Init, v)
		}

	case *Assignment:
		Walk(n.Value, v)

	case *IfStmt:
		Walk(n.Cond, v)
		Walk(n.Then, v)
		if n.Else != nil {
			Walk(n.Else, v)
		}

	case *WhileStmt:
		Walk(n.Cond, v)
		Walk(n.Body, v)

	case *RelOp:
		Walk(n.X, v)
		Walk(n.Y, v)

	case *BinOp:
		Walk(n.X, v)
		Walk(n.Y, v)

	// Leaf nodes: IntLit, Ident
	// No children to visit
	}
}

// Inspect traverses an AST and calls f for each node.
// Convenience wrapper around Walk.
func Inspect(node Node, f func(Node) bool) {
	Walk(node, Visitor(f))
}
