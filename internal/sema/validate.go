package sema

import "mano-lang/internal/ast"

// Pass 3: validation. Control-flow invariants are checked against the
// annotations recorded in pass 2: return coverage and typing, and
// break/continue containment.

func (a *Analyzer) validateProgram(prog *ast.Program) {
	ast.Inspect(prog, func(node ast.Node) {
		switch n := node.(type) {
		case *ast.ReturnStmt:
			a.validateReturn(n)
		case *ast.BreakStmt:
			if !n.InsideLoop {
				a.errorAt(n, "Break statement outside loop")
			}
		case *ast.ContinueStmt:
			if !n.InsideLoop {
				a.errorAt(n, "Continue statement outside loop")
			}
		case *ast.FuncDecl:
			a.validateFunction(n)
		}
	})
}

func (a *Analyzer) validateReturn(n *ast.ReturnStmt) {
	if n.Enclosing == nil {
		a.errorAt(n, "Return statement outside function")
		return
	}

	want := n.Enclosing.ReturnType
	if want == nil {
		want = typeNamed(voidType)
	}
	got := typeNamed(voidType)
	if n.Result != nil {
		got = a.exprType(n.Result)
	}
	if !compatible(want, got) {
		a.errorAt(n, "Return type mismatch in function %s", n.Enclosing.Name)
	}
}

// validateFunction checks return coverage: a function with a non-void
// return type must contain at least one return statement. Returns inside
// nested function declarations do not count.
func (a *Analyzer) validateFunction(n *ast.FuncDecl) {
	if n.ReturnType == nil || n.ReturnType.Name == voidType {
		return
	}
	if !bodyHasReturn(n.Body) {
		a.errorAt(n, "Function '%s' with return type '%s' lacks return statement",
			n.Name, n.ReturnType.Name)
	}
}

func bodyHasReturn(body *ast.Block) bool {
	found := false
	ast.Walk(body, func(node ast.Node) bool {
		if found {
			return false
		}
		switch node.(type) {
		case *ast.ReturnStmt:
			found = true
			return false
		case *ast.FuncDecl:
			return false
		}
		return true
	})
	return found
}
