package sema

import "mano-lang/internal/ast"

// Pass 1: declaration collection. Scopes are created mirroring syntactic
// nesting and attached to their nodes; every declaration introduces a
// symbol in the scope that is current at its site.

// primitiveTypes are pre-declared in the global scope so member access and
// resolution can classify them without special cases.
var primitiveTypes = []string{"int", "uint", "float", "bool", "string", voidType}

func (a *Analyzer) declareProgram(prog *ast.Program) {
	a.global = a.pushScope()
	for _, name := range primitiveTypes {
		a.global.Insert(&ast.Symbol{
			Kind: ast.SymType,
			Name: name,
			Type: typeNamed(name),
		})
	}
	for _, decl := range prog.Decls {
		a.declareDecl(decl)
	}
	a.popScope()
}

func (a *Analyzer) declareDecl(decl ast.Decl) {
	switch d := decl.(type) {
	case *ast.VarDecl:
		a.declareVar(d)
	case *ast.FuncDecl:
		a.declareFunc(d)
	case *ast.ClassDecl:
		a.declareClass(d)
	case *ast.EnumDecl:
		a.declareEnum(d)
	}
}

func (a *Analyzer) declareVar(d *ast.VarDecl) {
	if d.DeclaredType == nil {
		a.errorAt(d, "Missing type annotation for variable: %s", d.Name)
		return
	}
	sym := &ast.Symbol{
		Kind:          ast.SymVariable,
		Name:          d.Name,
		Type:          d.DeclaredType.Clone(),
		Decl:          d,
		IsInitialized: d.Init != nil,
	}
	if !a.currentScope().Insert(sym) {
		a.errorAt(d, "Duplicate variable declaration: %s", d.Name)
		return
	}
	d.Sym = sym
}

func (a *Analyzer) declareFunc(d *ast.FuncDecl) {
	returnType := d.ReturnType
	if returnType == nil {
		returnType = typeNamed(voidType)
	}
	sym := &ast.Symbol{
		Kind: ast.SymFunction,
		Name: d.Name,
		Type: returnType.Clone(),
		Decl: d,
	}
	if !a.currentScope().Insert(sym) {
		a.errorAt(d, "Duplicate declaration: %s", d.Name)
	} else {
		d.Sym = sym
	}

	// Parameter scope, with the body scope nested inside it.
	d.FunctionScope = a.pushScope()
	for _, param := range d.Params {
		psym := &ast.Symbol{
			Kind:          ast.SymVariable,
			Name:          param.Name,
			Type:          param.Type.Clone(),
			Decl:          d,
			IsInitialized: true,
		}
		if !a.currentScope().Insert(psym) {
			a.errorAt(d, "Duplicate parameter name: %s", param.Name)
		}
	}
	a.declareBlock(d.Body)
	a.popScope()
}

func (a *Analyzer) declareClass(d *ast.ClassDecl) {
	sym := &ast.Symbol{
		Kind: ast.SymClass,
		Name: d.Name,
		Type: typeNamed(d.Name),
		Decl: d,
	}
	if !a.currentScope().Insert(sym) {
		a.errorAt(d, "Duplicate declaration: %s", d.Name)
	} else {
		d.Sym = sym
	}

	d.ClassScope = a.pushScope()
	if d.Body != nil {
		d.Body.ClassScope = d.ClassScope
		for _, member := range d.Body.Decls {
			a.declareDecl(member)
		}
	}
	a.popScope()
}

func (a *Analyzer) declareEnum(d *ast.EnumDecl) {
	sym := &ast.Symbol{
		Kind: ast.SymEnum,
		Name: d.Name,
		Type: typeNamed(d.Name),
		Decl: d,
	}
	if !a.currentScope().Insert(sym) {
		a.errorAt(d, "Duplicate declaration: %s", d.Name)
	}

	// Members live in a side scope consulted by member-access resolution.
	members := a.pushScope()
	for _, name := range d.Members {
		msym := &ast.Symbol{
			Kind:          ast.SymVariable,
			Name:          name,
			Type:          typeNamed(d.Name),
			Decl:          d,
			IsInitialized: true,
		}
		if !members.Insert(msym) {
			a.errorAt(d, "Duplicate enum member: %s", name)
		}
	}
	a.popScope()
	a.enumMembers[d] = members
}

// declareBlock enters a fresh scope for the block and collects the
// declarations of its statements.
func (a *Analyzer) declareBlock(b *ast.Block) {
	if b == nil {
		return
	}
	b.BlockScope = a.pushScope()
	a.declareStmts(b.Stmts)
	a.popScope()
}

func (a *Analyzer) declareStmts(stmts []ast.Node) {
	for _, stmt := range stmts {
		a.declareStmt(stmt)
	}
}

func (a *Analyzer) declareStmt(node ast.Node) {
	switch n := node.(type) {
	case ast.Decl:
		a.declareDecl(n)
	case *ast.Block:
		a.declareBlock(n)
	case *ast.IfStmt:
		a.declareBlock(n.Then)
		a.declareBlock(n.Else)
	case *ast.WhileStmt:
		a.declareBlock(n.Body)
	case *ast.ForStmt:
		// The induction variable is declared in the body scope so the
		// condition and update resolve against it.
		n.Body.BlockScope = a.pushScope()
		if n.Init != nil {
			a.declareVar(n.Init)
		}
		a.declareStmts(n.Body.Stmts)
		a.popScope()
	case *ast.SwitchStmt:
		for _, c := range n.Cases {
			a.declareBlock(c.Body)
		}
		a.declareBlock(n.Default)
	}
}
