package ast

// Walk traverses the tree rooted at node in depth-first pre-order, calling
// fn for each node. If fn returns false the node's children are skipped.
// Child iteration is spelled out per variant so adding a variant without
// extending this switch is caught in review rather than at runtime.
func Walk(node Node, fn func(Node) bool) {
	if node == nil || !fn(node) {
		return
	}

	switch n := node.(type) {
	case *Program:
		for _, d := range n.Decls {
			Walk(d, fn)
		}
	case *TypeNode:
		// leaf
	case *VarDecl:
		if n.DeclaredType != nil {
			Walk(n.DeclaredType, fn)
		}
		walkExpr(n.Init, fn)
	case *FuncDecl:
		for _, p := range n.Params {
			if p.Type != nil {
				Walk(p.Type, fn)
			}
		}
		if n.ReturnType != nil {
			Walk(n.ReturnType, fn)
		}
		if n.Body != nil {
			Walk(n.Body, fn)
		}
	case *ClassDecl:
		if n.Body != nil {
			Walk(n.Body, fn)
		}
	case *EnumDecl:
		// leaf
	case *Block:
		for _, s := range n.Stmts {
			Walk(s, fn)
		}
	case *ClassBlock:
		for _, d := range n.Decls {
			Walk(d, fn)
		}
	case *ExprStmt:
		walkExpr(n.X, fn)
	case *ReturnStmt:
		walkExpr(n.Result, fn)
	case *IfStmt:
		walkExpr(n.Cond, fn)
		if n.Then != nil {
			Walk(n.Then, fn)
		}
		if n.Else != nil {
			Walk(n.Else, fn)
		}
	case *ForStmt:
		if n.Init != nil {
			Walk(n.Init, fn)
		}
		walkExpr(n.Cond, fn)
		walkExpr(n.Post, fn)
		if n.Body != nil {
			Walk(n.Body, fn)
		}
	case *WhileStmt:
		walkExpr(n.Cond, fn)
		if n.Body != nil {
			Walk(n.Body, fn)
		}
	case *SwitchStmt:
		walkExpr(n.Tag, fn)
		for _, c := range n.Cases {
			walkExpr(c.Value, fn)
			if c.Body != nil {
				Walk(c.Body, fn)
			}
		}
		if n.Default != nil {
			Walk(n.Default, fn)
		}
	case *BreakStmt, *ContinueStmt:
		// leaves
	case *BinaryExpr:
		walkExpr(n.Left, fn)
		walkExpr(n.Right, fn)
	case *UnaryExpr:
		walkExpr(n.Operand, fn)
	case *Literal, *Ident:
		// leaves
	case *MemberAccess:
		walkExpr(n.Object, fn)
	case *IndexAccess:
		walkExpr(n.Object, fn)
		walkExpr(n.Index, fn)
	case *ArrayLit:
		for _, e := range n.Elems {
			walkExpr(e, fn)
		}
	case *CallExpr:
		walkExpr(n.Target, fn)
		for _, a := range n.Args {
			walkExpr(a, fn)
		}
	case *ObjectInstantiation:
		for _, a := range n.Args {
			walkExpr(a, fn)
		}
	}
}

func walkExpr(e Expr, fn func(Node) bool) {
	if e != nil {
		Walk(e, fn)
	}
}

// Inspect calls fn for every node in the tree rooted at node.
func Inspect(node Node, fn func(Node)) {
	Walk(node, func(n Node) bool {
		fn(n)
		return true
	})
}
