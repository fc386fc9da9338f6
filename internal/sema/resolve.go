package sema

import (
	"fmt"
	"strings"

	"mano-lang/internal/ast"
)

// Pass 2: type resolution. Every expression gets an evaluated type
// computed bottom-up; identifiers are resolved against the scope chain
// built in pass 1; loop bodies run under an incremented loopDepth so
// break/continue containment can be validated in pass 3.

func (a *Analyzer) resolveProgram(prog *ast.Program) {
	a.enterScope(a.global)
	for _, decl := range prog.Decls {
		a.resolveNode(decl)
	}
	a.popScope()
}

func (a *Analyzer) resolveNode(node ast.Node) {
	switch n := node.(type) {
	case *ast.VarDecl:
		a.resolveVarDecl(n)
	case *ast.FuncDecl:
		a.resolveFuncDecl(n)
	case *ast.ClassDecl:
		a.enterScope(n.ClassScope)
		if n.Body != nil {
			for _, member := range n.Body.Decls {
				a.resolveNode(member)
			}
		}
		a.popScope()
	case *ast.EnumDecl:
		// nothing to resolve
	case *ast.Block:
		a.enterScope(n.BlockScope)
		for _, stmt := range n.Stmts {
			a.resolveNode(stmt)
		}
		a.popScope()
	case *ast.ExprStmt:
		a.resolveExpr(n.X)
	case *ast.ReturnStmt:
		n.Enclosing = a.currentFunction
		if n.Result != nil {
			a.resolveExpr(n.Result)
		}
	case *ast.IfStmt:
		a.resolveExpr(n.Cond)
		if t := a.exprType(n.Cond); !isBool(t) {
			a.errorAt(n.Cond, "If condition must be boolean")
		}
		a.resolveNode(n.Then)
		if n.Else != nil {
			a.resolveNode(n.Else)
		}
	case *ast.WhileStmt:
		a.resolveExpr(n.Cond)
		if t := a.exprType(n.Cond); !isBool(t) {
			a.errorAt(n.Cond, "While condition must be boolean")
		}
		a.loopDepth++
		a.resolveNode(n.Body)
		a.loopDepth--
	case *ast.ForStmt:
		a.resolveForStmt(n)
	case *ast.SwitchStmt:
		a.resolveSwitchStmt(n)
	case *ast.BreakStmt:
		n.InsideLoop = a.loopDepth > 0
	case *ast.ContinueStmt:
		n.InsideLoop = a.loopDepth > 0
	}
}

func (a *Analyzer) resolveVarDecl(d *ast.VarDecl) {
	if d.DeclaredType == nil {
		return // reported in pass 1
	}
	if d.Init != nil {
		a.resolveExpr(d.Init)
		initType := a.exprType(d.Init)
		if !compatible(d.DeclaredType, initType) {
			a.errorAt(d, "Type mismatch in variable '%s'. Declared: %s, Inferred: %s",
				d.Name, d.DeclaredType.Name, initType.Name)
		}
	}
	d.ResolvedType = d.DeclaredType.Clone()
}

func (a *Analyzer) resolveFuncDecl(d *ast.FuncDecl) {
	prev := a.currentFunction
	a.currentFunction = d
	a.enterScope(d.FunctionScope)
	a.resolveNode(d.Body)
	a.popScope()
	a.currentFunction = prev
}

func (a *Analyzer) resolveForStmt(n *ast.ForStmt) {
	// The body scope holds the induction variable; condition and update
	// resolve inside it.
	a.enterScope(n.Body.BlockScope)
	if n.Init != nil {
		a.resolveVarDecl(n.Init)
	}
	a.resolveExpr(n.Cond)
	if t := a.exprType(n.Cond); !isBool(t) {
		a.errorAt(n.Cond, "For loop condition must be boolean")
	}
	a.resolveExpr(n.Post)
	a.loopDepth++
	for _, stmt := range n.Body.Stmts {
		a.resolveNode(stmt)
	}
	a.loopDepth--
	a.popScope()
}

func (a *Analyzer) resolveSwitchStmt(n *ast.SwitchStmt) {
	a.resolveExpr(n.Tag)
	tagType := a.exprType(n.Tag)
	for _, c := range n.Cases {
		a.resolveExpr(c.Value)
		if caseType := a.exprType(c.Value); !compatible(tagType, caseType) {
			a.errorAt(c.Value, "Switch case type mismatch. Expected: %s, got: %s",
				tagType.Name, caseType.Name)
		}
		a.resolveNode(c.Body)
	}
	if n.Default != nil {
		a.resolveNode(n.Default)
	}
}

// ---- expressions ----

func (a *Analyzer) resolveExpr(expr ast.Expr) {
	switch e := expr.(type) {
	case nil:
		// tolerated in malformed trees
	case *ast.Ident:
		if sym := a.currentScope().Lookup(e.Name); sym != nil {
			e.Sym = sym
			e.EvaluatedType = sym.Type.Clone()
		} else {
			a.errorAt(e, "Undefined identifier: %s", e.Name)
		}
	case *ast.Literal:
		// typed on demand by exprType
	case *ast.BinaryExpr:
		a.resolveBinaryExpr(e)
	case *ast.UnaryExpr:
		a.resolveExpr(e.Operand)
	case *ast.CallExpr:
		a.resolveCallExpr(e)
	case *ast.MemberAccess:
		a.resolveMemberAccess(e)
	case *ast.IndexAccess:
		a.resolveIndexAccess(e)
	case *ast.ArrayLit:
		a.resolveArrayLit(e)
	case *ast.ObjectInstantiation:
		for _, arg := range e.Args {
			a.resolveExpr(arg)
		}
	default:
		panic(fmt.Sprintf("unsupported expression type %T", expr))
	}
}

func (a *Analyzer) resolveBinaryExpr(e *ast.BinaryExpr) {
	a.resolveExpr(e.Left)
	a.resolveExpr(e.Right)

	leftType := a.exprType(e.Left)
	rightType := a.exprType(e.Right)

	// Assignment is asymmetric: the lvalue type governs.
	if e.Op == ast.Assign {
		if !compatible(leftType, rightType) {
			a.errorAt(e, "Assignment type mismatch. Declared: %s, Inferred: %s",
				leftType.Name, rightType.Name)
		}
		e.EvaluatedType = leftType.Clone()
		return
	}

	if !compatible(leftType, rightType) {
		a.errorAt(e, "Operand type mismatch in binary expression")
	}

	if e.Op.IsComparison() || e.Op.IsLogical() {
		e.EvaluatedType = typeNamed("bool")
		return
	}
	if leftType != nil {
		e.EvaluatedType = leftType.Clone()
	} else {
		e.EvaluatedType = rightType.Clone()
	}
}

func (a *Analyzer) resolveCallExpr(e *ast.CallExpr) {
	for _, arg := range e.Args {
		a.resolveExpr(arg)
	}

	// Method call: the callee is an expression (obj.method).
	if e.Target != nil {
		a.resolveExpr(e.Target)
		if member, ok := e.Target.(*ast.MemberAccess); ok && member.MemberSym != nil {
			if member.MemberSym.Kind == ast.SymFunction {
				e.ResolvedFunc = member.MemberSym
				a.checkArity(e, member.MemberSym)
			} else {
				a.errorAt(e, "Member '%s' is not a function", member.Member)
			}
		}
		return
	}

	sym := a.currentScope().Lookup(e.Name)
	if sym == nil {
		a.errorAt(e, "Undefined function: %s", e.Name)
		return
	}
	switch sym.Kind {
	case ast.SymFunction:
		e.ResolvedFunc = sym
		a.checkArity(e, sym)
	case ast.SymClass:
		// C(args) instantiates the class.
		e.ResolvedFunc = sym
	default:
		a.errorAt(e, "'%s' is not a function", e.Name)
	}
}

func (a *Analyzer) checkArity(e *ast.CallExpr, sym *ast.Symbol) {
	decl, ok := sym.Decl.(*ast.FuncDecl)
	if !ok {
		return
	}
	if len(e.Args) != len(decl.Params) {
		a.errorAt(e, "Function '%s' expects %d arguments, got %d",
			sym.Name, len(decl.Params), len(e.Args))
	}
}

func (a *Analyzer) resolveMemberAccess(e *ast.MemberAccess) {
	a.resolveExpr(e.Object)
	objectType := a.exprType(e.Object)
	if objectType == nil {
		return
	}
	e.ObjectType = objectType.Clone()

	typeSym := a.currentScope().Lookup(objectType.Name)
	if typeSym == nil {
		return
	}
	switch typeSym.Kind {
	case ast.SymClass:
		classDecl, ok := typeSym.Decl.(*ast.ClassDecl)
		if !ok || classDecl.ClassScope == nil {
			return
		}
		if sym := classDecl.ClassScope.LookupLocal(e.Member); sym != nil {
			e.MemberSym = sym
		} else {
			a.errorAt(e, "Undefined member: %s", e.Member)
		}
	case ast.SymEnum:
		enumDecl, ok := typeSym.Decl.(*ast.EnumDecl)
		if !ok {
			return
		}
		if sym := a.enumMembers[enumDecl].LookupLocal(e.Member); sym != nil {
			e.MemberSym = sym
		} else {
			a.errorAt(e, "Undefined member: %s", e.Member)
		}
	default:
		a.errorAt(e, "Type '%s' has no members", objectType.Name)
	}
}

func (a *Analyzer) resolveIndexAccess(e *ast.IndexAccess) {
	a.resolveExpr(e.Object)
	a.resolveExpr(e.Index)

	if objectType := a.exprType(e.Object); objectType != nil && !objectType.IsArray() {
		a.errorAt(e, "Cannot index non-array type '%s'", objectType.Name)
	}
	if indexType := a.exprType(e.Index); indexType != nil &&
		indexType.Name != "int" && indexType.Name != "uint" {
		a.errorAt(e, "Array index must be an integer")
	}
}

func (a *Analyzer) resolveArrayLit(e *ast.ArrayLit) {
	for _, elem := range e.Elems {
		a.resolveExpr(elem)
	}
	if len(e.Elems) == 0 {
		e.EvaluatedType = typeNamed("[]")
		return
	}
	// Element type is the first element's; the rest must agree.
	first := a.exprType(e.Elems[0])
	for _, elem := range e.Elems[1:] {
		if t := a.exprType(elem); !compatible(first, t) {
			a.errorAt(elem, "Array literal element type mismatch")
		}
	}
	if first != nil {
		e.EvaluatedType = typeNamed("[" + first.Name + "]")
	}
}

// exprType returns the type of an already-resolved expression, or nil when
// an earlier error left it unknown. An unhandled variant is an analyzer
// bug and panics; Analyze recovers it as a final error.
func (a *Analyzer) exprType(expr ast.Expr) *ast.TypeNode {
	switch e := expr.(type) {
	case nil:
		return nil
	case *ast.Ident:
		return e.EvaluatedType
	case *ast.Literal:
		return literalType(e)
	case *ast.BinaryExpr:
		return e.EvaluatedType
	case *ast.UnaryExpr:
		if e.Op == "!" {
			return typeNamed("bool")
		}
		return a.exprType(e.Operand)
	case *ast.CallExpr:
		if e.ResolvedFunc == nil {
			return nil
		}
		if e.ResolvedFunc.Kind == ast.SymClass {
			return typeNamed(e.ResolvedFunc.Name)
		}
		return e.ResolvedFunc.Type.Clone()
	case *ast.MemberAccess:
		if e.MemberSym == nil {
			return nil
		}
		return e.MemberSym.Type.Clone()
	case *ast.IndexAccess:
		if t := a.exprType(e.Object); t != nil && t.IsArray() {
			return typeNamed(t.Elem())
		}
		return nil
	case *ast.ArrayLit:
		return e.EvaluatedType
	case *ast.ObjectInstantiation:
		return typeNamed(e.ClassName)
	default:
		panic(fmt.Sprintf("unsupported expression type %T", expr))
	}
}

// literalType infers a literal's type purely from its lexeme.
func literalType(lit *ast.Literal) *ast.TypeNode {
	value := lit.Value
	switch {
	case strings.Contains(value, "."):
		return typeNamed("float")
	case value == "true" || value == "false":
		return typeNamed("bool")
	case len(value) >= 2 && value[0] == '"' && value[len(value)-1] == '"':
		return typeNamed("string")
	default:
		return typeNamed("int")
	}
}
