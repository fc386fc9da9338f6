package parser

import (
	"strings"
	"testing"

	"mano-lang/internal/ast"
	"mano-lang/internal/diag"
	"mano-lang/internal/lexer"
)

// parseOK parses source and fails the test on any diagnostic.
func parseOK(t *testing.T, source string) *ast.Program {
	t.Helper()
	l := lexer.New(source, "test.mano")
	tokens, lexDiags := l.Tokenize()
	if len(lexDiags) > 0 {
		t.Fatalf("lex errors: %v", lexDiags)
	}
	p := New(tokens)
	prog, parseDiags := p.ParseProgram()
	if len(parseDiags) > 0 {
		t.Fatalf("parse errors: %v", parseDiags)
	}
	if prog == nil {
		t.Fatal("program is nil")
	}
	return prog
}

// parseFail parses source expecting a syntax error and returns the
// diagnostics.
func parseFail(t *testing.T, source string) []diag.Diagnostic {
	t.Helper()
	l := lexer.New(source, "test.mano")
	tokens, _ := l.Tokenize()
	p := New(tokens)
	prog, diags := p.ParseProgram()
	if len(diags) == 0 {
		t.Fatal("expected parse errors, got none")
	}
	if prog != nil {
		t.Error("expected nil program on parse failure")
	}
	return diags
}

func wantMessage(t *testing.T, diags []diag.Diagnostic, substr string) {
	t.Helper()
	for _, d := range diags {
		if strings.Contains(d.Message, substr) {
			return
		}
	}
	t.Errorf("no diagnostic contains %q in %v", substr, diags)
}

func TestParseLetDecl(t *testing.T) {
	prog := parseOK(t, `let x: int = 42;`)
	if len(prog.Decls) != 1 {
		t.Fatalf("expected 1 declaration, got %d", len(prog.Decls))
	}
	decl, ok := prog.Decls[0].(*ast.VarDecl)
	if !ok {
		t.Fatalf("expected VarDecl, got %T", prog.Decls[0])
	}
	if decl.Name != "x" {
		t.Errorf("expected name 'x', got %q", decl.Name)
	}
	if decl.DeclaredType.Name != "int" {
		t.Errorf("expected type 'int', got %q", decl.DeclaredType.Name)
	}
	if !decl.DeclaredType.IsConst {
		t.Error("let declaration should have isConst=true")
	}
	lit, ok := decl.Init.(*ast.Literal)
	if !ok {
		t.Fatalf("expected Literal initializer, got %T", decl.Init)
	}
	if lit.Value != "42" {
		t.Errorf("expected literal '42', got %q", lit.Value)
	}
}

func TestParseVarDecl(t *testing.T) {
	prog := parseOK(t, `var y: float = 3.14;`)
	decl := prog.Decls[0].(*ast.VarDecl)
	if decl.DeclaredType.IsConst {
		t.Error("var declaration should have isConst=false")
	}
}

func TestParseVarDeclRequiresInitializer(t *testing.T) {
	diags := parseFail(t, `var x: int;`)
	wantMessage(t, diags, "Expected '=' after type")
}

func TestParseFuncDecl(t *testing.T) {
	prog := parseOK(t, `fun add(a: int, b: int): int { return a + b; }`)
	fn, ok := prog.Decls[0].(*ast.FuncDecl)
	if !ok {
		t.Fatalf("expected FuncDecl, got %T", prog.Decls[0])
	}
	if fn.Name != "add" {
		t.Errorf("expected name 'add', got %q", fn.Name)
	}
	if len(fn.Params) != 2 {
		t.Fatalf("expected 2 params, got %d", len(fn.Params))
	}
	if fn.Params[0].Name != "a" || fn.Params[0].Type.Name != "int" {
		t.Errorf("param[0]: got %s: %s", fn.Params[0].Name, fn.Params[0].Type.Name)
	}
	if fn.ReturnType == nil || fn.ReturnType.Name != "int" {
		t.Error("expected return type 'int'")
	}

	ret, ok := fn.Body.Stmts[0].(*ast.ReturnStmt)
	if !ok {
		t.Fatalf("expected ReturnStmt, got %T", fn.Body.Stmts[0])
	}
	bin, ok := ret.Result.(*ast.BinaryExpr)
	if !ok {
		t.Fatalf("expected BinaryExpr, got %T", ret.Result)
	}
	if bin.Op != ast.Add {
		t.Errorf("expected Add, got %s", bin.Op)
	}
}

func TestParseFuncDeclVoid(t *testing.T) {
	prog := parseOK(t, `fun f() { }`)
	fn := prog.Decls[0].(*ast.FuncDecl)
	if fn.ReturnType != nil {
		t.Error("expected nil return type for void function")
	}
	if len(fn.Params) != 0 {
		t.Errorf("expected empty parameter list, got %d", len(fn.Params))
	}
}

func TestParseConstParameter(t *testing.T) {
	prog := parseOK(t, `fun f(a: const int) { }`)
	fn := prog.Decls[0].(*ast.FuncDecl)
	if !fn.Params[0].Type.IsConst {
		t.Error("expected const parameter type")
	}
}

func TestParseClassDecl(t *testing.T) {
	source := `class Point {
	var x: int = 0;
	var y: int = 0;
	fun sum(): int { return 0; }
}`
	prog := parseOK(t, source)
	cls, ok := prog.Decls[0].(*ast.ClassDecl)
	if !ok {
		t.Fatalf("expected ClassDecl, got %T", prog.Decls[0])
	}
	if cls.Name != "Point" {
		t.Errorf("expected name 'Point', got %q", cls.Name)
	}
	if len(cls.Body.Decls) != 3 {
		t.Errorf("expected 3 member declarations, got %d", len(cls.Body.Decls))
	}
}

func TestParseClassBlockRejectsStatements(t *testing.T) {
	diags := parseFail(t, `class C { return 1; }`)
	wantMessage(t, diags, "Expected declaration.")
}

func TestParseEnumDecl(t *testing.T) {
	prog := parseOK(t, `enum Color { Red, Green, Blue }`)
	en, ok := prog.Decls[0].(*ast.EnumDecl)
	if !ok {
		t.Fatalf("expected EnumDecl, got %T", prog.Decls[0])
	}
	if len(en.Members) != 3 || en.Members[0] != "Red" || en.Members[2] != "Blue" {
		t.Errorf("unexpected members: %v", en.Members)
	}
}

func TestParseEnumTrailingComma(t *testing.T) {
	prog := parseOK(t, `enum E { A, B, }`)
	en := prog.Decls[0].(*ast.EnumDecl)
	if len(en.Members) != 2 {
		t.Errorf("expected 2 members, got %v", en.Members)
	}
}

func TestParseEmptyEnum(t *testing.T) {
	prog := parseOK(t, `enum E { }`)
	en := prog.Decls[0].(*ast.EnumDecl)
	if len(en.Members) != 0 {
		t.Errorf("expected empty enum, got %v", en.Members)
	}
}

func TestParseEmptyProgram(t *testing.T) {
	prog := parseOK(t, ``)
	if len(prog.Decls) != 0 {
		t.Errorf("expected no declarations, got %d", len(prog.Decls))
	}
}

func TestParseMultiplicationBindsTighter(t *testing.T) {
	prog := parseOK(t, `let z: int = 1 + 2 * 3;`)
	decl := prog.Decls[0].(*ast.VarDecl)
	bin := decl.Init.(*ast.BinaryExpr)
	if bin.Op != ast.Add {
		t.Fatalf("expected '+' at root, got %s", bin.Op)
	}
	right, ok := bin.Right.(*ast.BinaryExpr)
	if !ok || right.Op != ast.Multiply {
		t.Fatalf("expected '*' on the right, got %T", bin.Right)
	}
}

func TestParseBitwiseTiers(t *testing.T) {
	// | binds loosest, then ^, then &: 1 | 2 ^ 3 & 4 == 1 | (2 ^ (3 & 4)).
	prog := parseOK(t, `let z: int = 1 | 2 ^ 3 & 4;`)
	decl := prog.Decls[0].(*ast.VarDecl)
	or := decl.Init.(*ast.BinaryExpr)
	if or.Op != ast.BitwiseOr {
		t.Fatalf("expected '|' at root, got %s", or.Op)
	}
	xor := or.Right.(*ast.BinaryExpr)
	if xor.Op != ast.BitwiseXor {
		t.Fatalf("expected '^' below '|', got %s", xor.Op)
	}
	and := xor.Right.(*ast.BinaryExpr)
	if and.Op != ast.BitwiseAnd {
		t.Fatalf("expected '&' below '^', got %s", and.Op)
	}
}

func TestParseShiftBelowAdditive(t *testing.T) {
	// 1 << 2 + 3 parses as 1 << (2 + 3).
	prog := parseOK(t, `let z: int = 1 << 2 + 3;`)
	decl := prog.Decls[0].(*ast.VarDecl)
	shift := decl.Init.(*ast.BinaryExpr)
	if shift.Op != ast.LeftShift {
		t.Fatalf("expected '<<' at root, got %s", shift.Op)
	}
	add, ok := shift.Right.(*ast.BinaryExpr)
	if !ok || add.Op != ast.Add {
		t.Fatalf("expected '+' on the right of '<<', got %T", shift.Right)
	}
}

func TestParseAssignmentRightAssociative(t *testing.T) {
	prog := parseOK(t, `fun f() { x = y = 1; }`)
	fn := prog.Decls[0].(*ast.FuncDecl)
	stmt := fn.Body.Stmts[0].(*ast.ExprStmt)
	outer := stmt.X.(*ast.BinaryExpr)
	if outer.Op != ast.Assign {
		t.Fatalf("expected '=', got %s", outer.Op)
	}
	inner, ok := outer.Right.(*ast.BinaryExpr)
	if !ok || inner.Op != ast.Assign {
		t.Fatalf("expected nested '=', got %T", outer.Right)
	}
}

func TestParseRelationalChainRejected(t *testing.T) {
	diags := parseFail(t, `let b: bool = 1 < 2 < 3;`)
	wantMessage(t, diags, "Relational operators cannot be chained.")
}

func TestParseUnary(t *testing.T) {
	prog := parseOK(t, `let z: int = -x + !y;`)
	decl := prog.Decls[0].(*ast.VarDecl)
	bin := decl.Init.(*ast.BinaryExpr)
	left := bin.Left.(*ast.UnaryExpr)
	if left.Op != "-" {
		t.Errorf("expected '-', got %q", left.Op)
	}
	right := bin.Right.(*ast.UnaryExpr)
	if right.Op != "!" {
		t.Errorf("expected '!', got %q", right.Op)
	}
}

func TestParseBoolLiterals(t *testing.T) {
	prog := parseOK(t, `let b: bool = true;`)
	decl := prog.Decls[0].(*ast.VarDecl)
	lit, ok := decl.Init.(*ast.Literal)
	if !ok {
		t.Fatalf("expected Literal for 'true', got %T", decl.Init)
	}
	if lit.Value != "true" {
		t.Errorf("expected 'true', got %q", lit.Value)
	}
}

func TestParseArrayType(t *testing.T) {
	prog := parseOK(t, `let xs: [int] = [1, 2, 3];`)
	decl := prog.Decls[0].(*ast.VarDecl)
	if decl.DeclaredType.Name != "[int]" {
		t.Errorf("expected '[int]', got %q", decl.DeclaredType.Name)
	}
	if !decl.DeclaredType.IsArray() {
		t.Error("expected array type")
	}
	arr, ok := decl.Init.(*ast.ArrayLit)
	if !ok {
		t.Fatalf("expected ArrayLit, got %T", decl.Init)
	}
	if len(arr.Elems) != 3 {
		t.Errorf("expected 3 elements, got %d", len(arr.Elems))
	}
}

func TestParseEmptyArrayLiteral(t *testing.T) {
	prog := parseOK(t, `let xs: [int] = [];`)
	decl := prog.Decls[0].(*ast.VarDecl)
	arr := decl.Init.(*ast.ArrayLit)
	if len(arr.Elems) != 0 {
		t.Errorf("expected empty array literal, got %d elements", len(arr.Elems))
	}
}

func TestParseNestedArrayRejected(t *testing.T) {
	diags := parseFail(t, `let xs: [[int]] = [];`)
	wantMessage(t, diags, "Nested arrays not supported.")
}

func TestParseIfElse(t *testing.T) {
	prog := parseOK(t, `fun f() { if (x < 1) { g(); } else { h(); } }`)
	fn := prog.Decls[0].(*ast.FuncDecl)
	ifStmt, ok := fn.Body.Stmts[0].(*ast.IfStmt)
	if !ok {
		t.Fatalf("expected IfStmt, got %T", fn.Body.Stmts[0])
	}
	if ifStmt.Cond == nil || ifStmt.Then == nil || ifStmt.Else == nil {
		t.Error("incomplete if statement")
	}
}

func TestParseWhile(t *testing.T) {
	prog := parseOK(t, `fun f() { while (x < 10) { x = x + 1; } }`)
	fn := prog.Decls[0].(*ast.FuncDecl)
	whileStmt, ok := fn.Body.Stmts[0].(*ast.WhileStmt)
	if !ok {
		t.Fatalf("expected WhileStmt, got %T", fn.Body.Stmts[0])
	}
	if whileStmt.Cond == nil || whileStmt.Body == nil {
		t.Error("incomplete while statement")
	}
}

func TestParseForWithVarInit(t *testing.T) {
	prog := parseOK(t, `fun f() { for (var i: int = 0; i < 10; i = i + 1) { break; } }`)
	fn := prog.Decls[0].(*ast.FuncDecl)
	forStmt, ok := fn.Body.Stmts[0].(*ast.ForStmt)
	if !ok {
		t.Fatalf("expected ForStmt, got %T", fn.Body.Stmts[0])
	}
	if forStmt.Init == nil || forStmt.Init.Name != "i" {
		t.Error("expected var initializer 'i'")
	}
	if forStmt.Cond == nil || forStmt.Post == nil {
		t.Error("incomplete for statement")
	}
	if _, ok := forStmt.Body.Stmts[0].(*ast.BreakStmt); !ok {
		t.Errorf("expected BreakStmt in body, got %T", forStmt.Body.Stmts[0])
	}
}

func TestParseSwitch(t *testing.T) {
	source := `fun f(x: int) {
	switch (x) {
		case 1: { g(); }
		case 2: { h(); }
		default: { k(); }
	}
}`
	prog := parseOK(t, source)
	fn := prog.Decls[0].(*ast.FuncDecl)
	sw, ok := fn.Body.Stmts[0].(*ast.SwitchStmt)
	if !ok {
		t.Fatalf("expected SwitchStmt, got %T", fn.Body.Stmts[0])
	}
	if len(sw.Cases) != 2 {
		t.Errorf("expected 2 cases, got %d", len(sw.Cases))
	}
	if sw.Default == nil {
		t.Error("expected default block")
	}
}

func TestParseMultipleDefaultRejected(t *testing.T) {
	source := `fun f(x: int) {
	switch (x) {
		default: { }
		default: { }
	}
}`
	diags := parseFail(t, source)
	wantMessage(t, diags, "Multiple default clauses in switch statement.")
}

func TestParseExpressionStatementMustBeAssignOrCall(t *testing.T) {
	diags := parseFail(t, `fun f() { 1 + 2; }`)
	wantMessage(t, diags, "Expected statement.")
}

func TestParseCallStatement(t *testing.T) {
	prog := parseOK(t, `fun f() { g(1, 2, 3); }`)
	fn := prog.Decls[0].(*ast.FuncDecl)
	stmt := fn.Body.Stmts[0].(*ast.ExprStmt)
	call, ok := stmt.X.(*ast.CallExpr)
	if !ok {
		t.Fatalf("expected CallExpr, got %T", stmt.X)
	}
	if call.Name != "g" || len(call.Args) != 3 {
		t.Errorf("expected g with 3 args, got %q with %d", call.Name, len(call.Args))
	}
}

func TestParseMethodCallChain(t *testing.T) {
	prog := parseOK(t, `fun f() { obj.child.update(1); }`)
	fn := prog.Decls[0].(*ast.FuncDecl)
	stmt := fn.Body.Stmts[0].(*ast.ExprStmt)
	call, ok := stmt.X.(*ast.CallExpr)
	if !ok {
		t.Fatalf("expected CallExpr, got %T", stmt.X)
	}
	member, ok := call.Target.(*ast.MemberAccess)
	if !ok {
		t.Fatalf("expected MemberAccess target, got %T", call.Target)
	}
	if member.Member != "update" {
		t.Errorf("expected member 'update', got %q", member.Member)
	}
	inner, ok := member.Object.(*ast.MemberAccess)
	if !ok || inner.Member != "child" {
		t.Errorf("expected nested member 'child', got %T", member.Object)
	}
}

func TestParseIndexAccess(t *testing.T) {
	prog := parseOK(t, `fun f() { x = xs[0]; }`)
	fn := prog.Decls[0].(*ast.FuncDecl)
	stmt := fn.Body.Stmts[0].(*ast.ExprStmt)
	assign := stmt.X.(*ast.BinaryExpr)
	idx, ok := assign.Right.(*ast.IndexAccess)
	if !ok {
		t.Fatalf("expected IndexAccess, got %T", assign.Right)
	}
	if _, ok := idx.Object.(*ast.Ident); !ok {
		t.Errorf("expected Ident object, got %T", idx.Object)
	}
}

func TestParseMissingSemicolon(t *testing.T) {
	diags := parseFail(t, `let x: int = 1`)
	wantMessage(t, diags, "Expected ';' after variable declaration.")
}

func TestParseTopLevelStatementRejected(t *testing.T) {
	diags := parseFail(t, `if (x) { }`)
	wantMessage(t, diags, "Expected declaration.")
}

func TestParseDeterminism(t *testing.T) {
	source := `fun fib(n: int): int {
	if (n < 2) { return n; }
	return fib(n - 1) + fib(n - 2);
}`
	l := lexer.New(source, "test.mano")
	tokens, _ := l.Tokenize()

	first, _ := New(tokens).ParseProgram()
	second, _ := New(tokens).ParseProgram()

	if ast.NodeToMap(first) == nil || ast.NodeToMap(second) == nil {
		t.Fatal("expected both parses to succeed")
	}
	a := ast.NodeToMap(first)
	b := ast.NodeToMap(second)
	if len(a) != len(b) {
		t.Error("repeated parses differ")
	}
}

func TestParseErrorPositions(t *testing.T) {
	diags := parseFail(t, "let x: int = ;")
	d := diags[0]
	if d.Line != 1 || d.Column != 14 {
		t.Errorf("expected error at 1:14, got %d:%d", d.Line, d.Column)
	}
	if got := d.String(); !strings.HasPrefix(got, "[Line 1, Column 14] Error: ") {
		t.Errorf("unexpected diagnostic format: %q", got)
	}
}
