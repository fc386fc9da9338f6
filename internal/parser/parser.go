// Package parser implements syntax analysis for Mano: a hand-written
// recursive descent with one token of predictive lookahead plus lexeme
// inspection. The first syntax violation reports a diagnostic and aborts
// parsing; no recovery is attempted.
package parser

import (
	"fmt"

	"mano-lang/internal/ast"
	"mano-lang/internal/diag"
	"mano-lang/internal/span"
	"mano-lang/internal/token"
)

// Parser performs syntax analysis on a token stream terminated by EOF.
type Parser struct {
	tokens   []token.Token
	pos      int
	reporter *diag.Reporter
}

// bailout is the sentinel used to unwind the parser on the first syntax
// error. It never escapes ParseProgram.
type bailout struct{}

// New creates a new parser from a token slice.
func New(tokens []token.Token) *Parser {
	return &Parser{tokens: tokens, reporter: diag.NewReporter(diag.Parser)}
}

// ParseProgram parses the entire token stream. On a syntax error it
// returns a nil program together with the diagnostic; no partial tree
// escapes.
func (p *Parser) ParseProgram() (prog *ast.Program, diags []diag.Diagnostic) {
	defer func() {
		if r := recover(); r != nil {
			if _, ok := r.(bailout); !ok {
				panic(r)
			}
			prog = nil
			diags = p.reporter.Diagnostics()
		}
	}()

	prog = &ast.Program{}
	start := p.peek().Pos
	for !p.isAtEnd() {
		prog.Decls = append(prog.Decls, p.parseDeclaration())
	}
	prog.Span = span.Span{Start: start, End: p.peek().Pos}
	return prog, p.reporter.Diagnostics()
}

// ---- navigation helpers ----

func (p *Parser) peek() token.Token {
	return p.tokens[p.pos]
}

func (p *Parser) previous() token.Token {
	return p.tokens[p.pos-1]
}

func (p *Parser) isAtEnd() bool {
	return p.peek().Kind == token.EOF
}

// advance consumes the current token. The cursor never moves past EOF.
func (p *Parser) advance() token.Token {
	tok := p.peek()
	if !p.isAtEnd() {
		p.pos++
	}
	return tok
}

func (p *Parser) check(kind token.Kind) bool {
	return p.peek().Kind == kind
}

func (p *Parser) checkKeyword(lexeme string) bool {
	return p.peek().Is(token.Keyword, lexeme)
}

func (p *Parser) checkPunct(lexeme string) bool {
	return p.peek().Is(token.Punctuation, lexeme)
}

func (p *Parser) checkOperator(lexeme string) bool {
	return p.peek().Is(token.Operator, lexeme)
}

func (p *Parser) matchKeyword(lexeme string) bool {
	if p.checkKeyword(lexeme) {
		p.advance()
		return true
	}
	return false
}

func (p *Parser) matchPunct(lexeme string) bool {
	if p.checkPunct(lexeme) {
		p.advance()
		return true
	}
	return false
}

func (p *Parser) matchOperator(lexeme string) bool {
	if p.checkOperator(lexeme) {
		p.advance()
		return true
	}
	return false
}

func (p *Parser) consume(kind token.Kind, message string) token.Token {
	if p.check(kind) {
		return p.advance()
	}
	p.errorAtCurrent(message)
	return p.peek() // unreachable
}

func (p *Parser) consumePunct(lexeme, message string) token.Token {
	if p.checkPunct(lexeme) {
		return p.advance()
	}
	p.errorAtCurrent(message)
	return p.peek() // unreachable
}

// errorAtCurrent reports a diagnostic at the current token and aborts the
// parse.
func (p *Parser) errorAtCurrent(message string) {
	tok := p.peek()
	p.reporter.Report(tok.Pos.Line, tok.Pos.Column, message, diag.Error)
	panic(bailout{})
}

// ---- span helpers ----

// endOf returns the position one past the last byte of tok. Tokens never
// span lines, so column arithmetic is safe.
func endOf(tok token.Token) span.Position {
	return span.Position{
		Offset: tok.Pos.Offset + len(tok.Lexeme),
		Line:   tok.Pos.Line,
		Column: tok.Pos.Column + len(tok.Lexeme),
	}
}

// spanFrom returns a span from start to the end of the last consumed token.
func (p *Parser) spanFrom(start span.Position) span.Span {
	return span.Span{Start: start, End: endOf(p.previous())}
}

func nb(s span.Span) ast.NodeBase  { return ast.NodeBase{Span: s} }
func eb(s span.Span) ast.ExprBase  { return ast.ExprBase{NodeBase: nb(s)} }
func sb(s span.Span) ast.StmtBase  { return ast.StmtBase{NodeBase: nb(s)} }
func db(s span.Span) ast.DeclBase  { return ast.DeclBase{NodeBase: nb(s)} }

// ============================================================
// Declarations
// ============================================================

func (p *Parser) parseDeclaration() ast.Decl {
	if p.matchKeyword("let") {
		return p.parseVariableDeclaration(true)
	}
	if p.matchKeyword("var") {
		return p.parseVariableDeclaration(false)
	}
	if p.matchKeyword("fun") {
		return p.parseFunctionDeclaration()
	}
	if p.matchKeyword("class") {
		return p.parseClassDeclaration()
	}
	if p.matchKeyword("enum") {
		return p.parseEnumDeclaration()
	}
	p.errorAtCurrent("Expected declaration.")
	return nil // unreachable
}

// parseType parses a primitive name, a user-defined name, or a
// single-level array type "[T]".
func (p *Parser) parseType(isConst, allowArray bool) *ast.TypeNode {
	start := p.peek().Pos
	if p.check(token.Keyword) || p.check(token.Identifier) {
		tok := p.advance()
		return &ast.TypeNode{NodeBase: nb(p.spanFrom(start)), Name: tok.Lexeme, IsConst: isConst}
	}
	if p.matchPunct("[") {
		if !allowArray {
			p.errorAtCurrent("Nested arrays not supported.")
		}
		elem := p.parseType(false, false)
		p.consumePunct("]", "Expected ']' after array element type.")
		return &ast.TypeNode{
			NodeBase: nb(p.spanFrom(start)),
			Name:     "[" + elem.Name + "]",
			IsConst:  isConst,
		}
	}
	p.errorAtCurrent("Expected type name.")
	return nil // unreachable
}

// parseVariableDeclaration parses the remainder of a let/var declaration:
// name ':' type '=' expr ';'. The introducing keyword is already consumed.
func (p *Parser) parseVariableDeclaration(isConst bool) *ast.VarDecl {
	start := p.previous().Pos
	decl := &ast.VarDecl{}
	decl.Name = p.consume(token.Identifier, "Expected variable name.").Lexeme
	p.consumePunct(":", "Expected ':' after variable name.")
	decl.DeclaredType = p.parseType(isConst, true)

	if p.matchOperator("=") {
		decl.Init = p.parseExpression()
	} else {
		what := "variable"
		if isConst {
			what = "constant"
		}
		p.errorAtCurrent(fmt.Sprintf("Expected '=' after type for %s declaration.", what))
	}
	p.consumePunct(";", "Expected ';' after variable declaration.")
	decl.DeclBase = db(p.spanFrom(start))
	return decl
}

// parseFunctionDeclaration parses the remainder of a fun declaration:
// name '(' [params] ')' [':' type] block.
func (p *Parser) parseFunctionDeclaration() *ast.FuncDecl {
	start := p.previous().Pos
	decl := &ast.FuncDecl{}
	decl.Name = p.consume(token.Identifier, "Expected function name.").Lexeme
	p.consumePunct("(", "Expected '(' after function name.")
	if p.check(token.Identifier) {
		decl.Params = p.parseParameterList()
	}
	p.consumePunct(")", "Expected ')' after parameters.")
	if p.matchPunct(":") {
		decl.ReturnType = p.parseType(false, true)
	}
	decl.Body = p.parseBlock()
	decl.DeclBase = db(p.spanFrom(start))
	return decl
}

func (p *Parser) parseParameterList() []ast.Param {
	var params []ast.Param
	params = append(params, p.parseParameter())
	for p.matchPunct(",") {
		params = append(params, p.parseParameter())
	}
	return params
}

func (p *Parser) parseParameter() ast.Param {
	name := p.consume(token.Identifier, "Expected parameter name.").Lexeme
	p.consumePunct(":", "Expected ':' after parameter name.")
	isConst := p.matchKeyword("const")
	return ast.Param{Name: name, Type: p.parseType(isConst, true)}
}

func (p *Parser) parseClassDeclaration() *ast.ClassDecl {
	start := p.previous().Pos
	decl := &ast.ClassDecl{}
	decl.Name = p.consume(token.Identifier, "Expected class name.").Lexeme
	decl.Body = p.parseClassBlock()
	decl.DeclBase = db(p.spanFrom(start))
	return decl
}

func (p *Parser) parseEnumDeclaration() *ast.EnumDecl {
	start := p.previous().Pos
	decl := &ast.EnumDecl{}
	decl.Name = p.consume(token.Identifier, "Expected enum name.").Lexeme
	p.consumePunct("{", "Expected '{' to start enum body.")

	if !p.checkPunct("}") {
		for {
			decl.Members = append(decl.Members,
				p.consume(token.Identifier, "Expected enum member name.").Lexeme)
			if !p.matchPunct(",") {
				break
			}
			if p.checkPunct("}") { // trailing comma
				break
			}
		}
	}

	p.consumePunct("}", "Expected '}' to close enum body.")
	decl.DeclBase = db(p.spanFrom(start))
	return decl
}

// ============================================================
// Statements
// ============================================================

var declKeywords = []string{"let", "var", "fun", "class", "enum"}

func (p *Parser) atDeclaration() bool {
	if !p.check(token.Keyword) {
		return false
	}
	for _, kw := range declKeywords {
		if p.peek().Lexeme == kw {
			return true
		}
	}
	return false
}

func (p *Parser) parseBlock() *ast.Block {
	start := p.peek().Pos
	p.consumePunct("{", "Expected '{' to start a block.")
	block := &ast.Block{}
	for !p.checkPunct("}") {
		if p.isAtEnd() {
			p.errorAtCurrent("Expected '}' to close block.")
		}
		if p.atDeclaration() {
			block.Stmts = append(block.Stmts, p.parseDeclaration())
		} else {
			block.Stmts = append(block.Stmts, p.parseStatement())
		}
	}
	p.consumePunct("}", "Expected '}' to close block.")
	block.StmtBase = sb(p.spanFrom(start))
	return block
}

func (p *Parser) parseClassBlock() *ast.ClassBlock {
	start := p.peek().Pos
	p.consumePunct("{", "Expected '{' to start a class block.")
	block := &ast.ClassBlock{}
	for !p.checkPunct("}") {
		if p.isAtEnd() || !p.atDeclaration() {
			p.errorAtCurrent("Expected declaration.")
		}
		block.Decls = append(block.Decls, p.parseDeclaration())
	}
	p.consumePunct("}", "Expected '}' to close class block.")
	block.StmtBase = sb(p.spanFrom(start))
	return block
}

func (p *Parser) parseStatement() ast.Stmt {
	if p.matchKeyword("if") {
		return p.parseIfStatement()
	}
	if p.matchKeyword("for") {
		return p.parseForStatement()
	}
	if p.matchKeyword("while") {
		return p.parseWhileStatement()
	}
	if p.matchKeyword("return") {
		return p.parseReturnStatement()
	}
	if p.matchKeyword("break") {
		start := p.previous().Pos
		p.consumePunct(";", "Expected ';' after 'break'.")
		return &ast.BreakStmt{StmtBase: sb(p.spanFrom(start))}
	}
	if p.matchKeyword("continue") {
		start := p.previous().Pos
		p.consumePunct(";", "Expected ';' after 'continue'.")
		return &ast.ContinueStmt{StmtBase: sb(p.spanFrom(start))}
	}
	if p.matchKeyword("switch") {
		return p.parseSwitchStatement()
	}

	// An expression statement must be an assignment or a call.
	start := p.peek().Pos
	expr := p.parseExpression()
	if !isAssignmentOrCall(expr) {
		p.errorAtCurrent("Expected statement.")
	}
	p.consumePunct(";", "Expected ';' after expression statement.")
	return &ast.ExprStmt{StmtBase: sb(p.spanFrom(start)), X: expr}
}

func isAssignmentOrCall(expr ast.Expr) bool {
	switch e := expr.(type) {
	case *ast.BinaryExpr:
		return e.Op == ast.Assign
	case *ast.CallExpr:
		return true
	}
	return false
}

func (p *Parser) parseIfStatement() *ast.IfStmt {
	start := p.previous().Pos
	stmt := &ast.IfStmt{}
	p.consumePunct("(", "Expected '(' after 'if'.")
	stmt.Cond = p.parseExpression()
	p.consumePunct(")", "Expected ')' after if condition.")
	stmt.Then = p.parseBlock()
	if p.matchKeyword("else") {
		stmt.Else = p.parseBlock()
	}
	stmt.StmtBase = sb(p.spanFrom(start))
	return stmt
}

// parseForStatement parses: for ( [var decl] cond ; update ) block.
// The optional initializer must be a var declaration, which consumes its
// own ';'.
func (p *Parser) parseForStatement() *ast.ForStmt {
	start := p.previous().Pos
	stmt := &ast.ForStmt{}
	p.consumePunct("(", "Expected '(' after 'for'.")
	if p.matchKeyword("var") {
		stmt.Init = p.parseVariableDeclaration(false)
	}
	stmt.Cond = p.parseExpression()
	p.consumePunct(";", "Expected ';' after for condition.")
	stmt.Post = p.parseExpression()
	p.consumePunct(")", "Expected ')' after for clauses.")
	stmt.Body = p.parseBlock()
	stmt.StmtBase = sb(p.spanFrom(start))
	return stmt
}

func (p *Parser) parseWhileStatement() *ast.WhileStmt {
	start := p.previous().Pos
	stmt := &ast.WhileStmt{}
	p.consumePunct("(", "Expected '(' after 'while'.")
	stmt.Cond = p.parseExpression()
	p.consumePunct(")", "Expected ')' after while condition.")
	stmt.Body = p.parseBlock()
	stmt.StmtBase = sb(p.spanFrom(start))
	return stmt
}

func (p *Parser) parseReturnStatement() *ast.ReturnStmt {
	start := p.previous().Pos
	stmt := &ast.ReturnStmt{}
	if !p.checkPunct(";") {
		stmt.Result = p.parseExpression()
	}
	p.consumePunct(";", "Expected ';' after return statement.")
	stmt.StmtBase = sb(p.spanFrom(start))
	return stmt
}

func (p *Parser) parseSwitchStatement() *ast.SwitchStmt {
	start := p.previous().Pos
	stmt := &ast.SwitchStmt{}
	p.consumePunct("(", "Expected '(' after 'switch'.")
	stmt.Tag = p.parseExpression()
	p.consumePunct(")", "Expected ')' after switch expression.")
	p.consumePunct("{", "Expected '{' to start switch body.")

	for !p.checkPunct("}") {
		if p.isAtEnd() {
			p.errorAtCurrent("Expected '}' to close switch body.")
		}
		if p.matchKeyword("case") {
			caseStart := p.previous().Pos
			value := p.parseExpression()
			p.consumePunct(":", "Expected ':' after case expression.")
			body := p.parseBlock()
			stmt.Cases = append(stmt.Cases, ast.SwitchCase{
				Span:  p.spanFrom(caseStart),
				Value: value,
				Body:  body,
			})
		} else if p.matchKeyword("default") {
			p.consumePunct(":", "Expected ':' after 'default'.")
			body := p.parseBlock()
			if stmt.Default != nil {
				p.errorAtCurrent("Multiple default clauses in switch statement.")
			}
			stmt.Default = body
		} else {
			p.errorAtCurrent("Expected 'case' or 'default' in switch statement.")
		}
	}

	p.consumePunct("}", "Expected '}' to close switch body.")
	stmt.StmtBase = sb(p.spanFrom(start))
	return stmt
}

// ============================================================
// Expressions
//
// Precedence ladder, lowest to highest (standard C order):
// assignment, ||, &&, |, ^, &, equality, relational (non-chaining),
// shifts, additive, multiplicative, unary, postfix/primary.
// ============================================================

func (p *Parser) parseExpression() ast.Expr {
	return p.parseAssignment()
}

func (p *Parser) parseAssignment() ast.Expr {
	left := p.parseLogicalOr()
	if p.checkOperator("=") {
		start := left.GetSpan().Start
		p.advance()
		right := p.parseAssignment() // right-associative
		return &ast.BinaryExpr{
			ExprBase: eb(p.spanFrom(start)),
			Op:       ast.Assign,
			Left:     left,
			Right:    right,
		}
	}
	return left
}

// binaryLeft parses a left-associative tier: next {op next}.
func (p *Parser) binaryLeft(next func() ast.Expr, ops map[string]ast.BinaryOp) ast.Expr {
	expr := next()
	for p.check(token.Operator) {
		op, ok := ops[p.peek().Lexeme]
		if !ok {
			break
		}
		start := expr.GetSpan().Start
		p.advance()
		right := next()
		expr = &ast.BinaryExpr{
			ExprBase: eb(p.spanFrom(start)),
			Op:       op,
			Left:     expr,
			Right:    right,
		}
	}
	return expr
}

func (p *Parser) parseLogicalOr() ast.Expr {
	return p.binaryLeft(p.parseLogicalAnd, map[string]ast.BinaryOp{"||": ast.LogicalOr})
}

func (p *Parser) parseLogicalAnd() ast.Expr {
	return p.binaryLeft(p.parseBitwiseOr, map[string]ast.BinaryOp{"&&": ast.LogicalAnd})
}

func (p *Parser) parseBitwiseOr() ast.Expr {
	return p.binaryLeft(p.parseBitwiseXor, map[string]ast.BinaryOp{"|": ast.BitwiseOr})
}

func (p *Parser) parseBitwiseXor() ast.Expr {
	return p.binaryLeft(p.parseBitwiseAnd, map[string]ast.BinaryOp{"^": ast.BitwiseXor})
}

func (p *Parser) parseBitwiseAnd() ast.Expr {
	return p.binaryLeft(p.parseEquality, map[string]ast.BinaryOp{"&": ast.BitwiseAnd})
}

func (p *Parser) parseEquality() ast.Expr {
	return p.binaryLeft(p.parseRelational, map[string]ast.BinaryOp{
		"==": ast.Equal,
		"!=": ast.NotEqual,
	})
}

var relationalOps = map[string]ast.BinaryOp{
	"<":  ast.Less,
	">":  ast.Greater,
	"<=": ast.LessEqual,
	">=": ast.GreaterEqual,
}

// parseRelational parses at most one relational operator: the tier is
// non-associative, so a < b < c is a syntax error.
func (p *Parser) parseRelational() ast.Expr {
	expr := p.parseShift()
	if p.check(token.Operator) {
		if op, ok := relationalOps[p.peek().Lexeme]; ok {
			start := expr.GetSpan().Start
			p.advance()
			right := p.parseShift()
			expr = &ast.BinaryExpr{
				ExprBase: eb(p.spanFrom(start)),
				Op:       op,
				Left:     expr,
				Right:    right,
			}
			if p.check(token.Operator) {
				if _, chained := relationalOps[p.peek().Lexeme]; chained {
					p.errorAtCurrent("Relational operators cannot be chained.")
				}
			}
		}
	}
	return expr
}

func (p *Parser) parseShift() ast.Expr {
	return p.binaryLeft(p.parseAdditive, map[string]ast.BinaryOp{
		"<<": ast.LeftShift,
		">>": ast.RightShift,
	})
}

func (p *Parser) parseAdditive() ast.Expr {
	return p.binaryLeft(p.parseMultiplicative, map[string]ast.BinaryOp{
		"+": ast.Add,
		"-": ast.Subtract,
	})
}

func (p *Parser) parseMultiplicative() ast.Expr {
	return p.binaryLeft(p.parseUnary, map[string]ast.BinaryOp{
		"*": ast.Multiply,
		"/": ast.Divide,
		"%": ast.Modulo,
	})
}

func (p *Parser) parseUnary() ast.Expr {
	if p.checkOperator("-") || p.checkOperator("!") {
		tok := p.advance()
		operand := p.parseUnary()
		return &ast.UnaryExpr{
			ExprBase: eb(span.Span{Start: tok.Pos, End: operand.GetSpan().End}),
			Op:       tok.Lexeme,
			Operand:  operand,
		}
	}
	return p.parsePrimary()
}

func (p *Parser) parseArgumentList() []ast.Expr {
	var args []ast.Expr
	if !p.checkPunct(")") {
		args = append(args, p.parseExpression())
		for p.matchPunct(",") {
			args = append(args, p.parseExpression())
		}
	}
	return args
}

func (p *Parser) parsePrimary() ast.Expr {
	if p.check(token.Identifier) {
		tok := p.advance()

		// true/false are not reserved words; they surface here as
		// identifier lexemes and become boolean literals.
		if tok.Lexeme == "true" || tok.Lexeme == "false" {
			return &ast.Literal{ExprBase: eb(p.spanFrom(tok.Pos)), Value: tok.Lexeme}
		}

		if p.matchPunct("(") {
			args := p.parseArgumentList()
			p.consumePunct(")", "Expected ')' after arguments.")
			call := &ast.CallExpr{Name: tok.Lexeme, Args: args}
			call.ExprBase = eb(p.spanFrom(tok.Pos))
			return p.parsePostfix(call)
		}

		ident := &ast.Ident{ExprBase: eb(p.spanFrom(tok.Pos)), Name: tok.Lexeme}
		return p.parsePostfix(ident)
	}

	if p.check(token.Number) || p.check(token.String) {
		tok := p.advance()
		return &ast.Literal{ExprBase: eb(p.spanFrom(tok.Pos)), Value: tok.Lexeme}
	}

	if p.matchPunct("(") {
		expr := p.parseExpression()
		p.consumePunct(")", "Expected ')' after expression.")
		return expr
	}

	if p.checkPunct("[") {
		return p.parseArrayLiteral()
	}

	p.errorAtCurrent("Expected expression.")
	return nil // unreachable
}

// parsePostfix handles chained member accesses, method calls, and index
// accesses: x.y, x.y(args), x[i].
func (p *Parser) parsePostfix(expr ast.Expr) ast.Expr {
	start := expr.GetSpan().Start
	for {
		if p.matchPunct(".") {
			member := p.consume(token.Identifier, "Expected member name after '.'.").Lexeme
			expr = &ast.MemberAccess{
				ExprBase: eb(p.spanFrom(start)),
				Object:   expr,
				Member:   member,
			}
		} else if p.matchPunct("(") {
			args := p.parseArgumentList()
			p.consumePunct(")", "Expected ')' after arguments.")
			expr = &ast.CallExpr{
				ExprBase: eb(p.spanFrom(start)),
				Target:   expr,
				Args:     args,
			}
		} else if p.matchPunct("[") {
			index := p.parseExpression()
			p.consumePunct("]", "Expected ']' after index expression.")
			expr = &ast.IndexAccess{
				ExprBase: eb(p.spanFrom(start)),
				Object:   expr,
				Index:    index,
			}
		} else {
			return expr
		}
	}
}

func (p *Parser) parseArrayLiteral() *ast.ArrayLit {
	start := p.peek().Pos
	p.consumePunct("[", "Expected '['.")
	lit := &ast.ArrayLit{}
	if !p.checkPunct("]") {
		lit.Elems = append(lit.Elems, p.parseExpression())
		for p.matchPunct(",") {
			lit.Elems = append(lit.Elems, p.parseExpression())
		}
	}
	p.consumePunct("]", "Expected ']' after array elements.")
	lit.ExprBase = eb(p.spanFrom(start))
	return lit
}
