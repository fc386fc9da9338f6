// Package sema implements the three-pass semantic analyzer for Mano:
// declaration collection, type resolution, and validation. The analyzer
// annotates the AST in place with scopes, symbols, and types, and
// accumulates diagnostics; no expected program error stops analysis.
package sema

import (
	"fmt"

	"mano-lang/internal/ast"
	"mano-lang/internal/diag"
)

// Analyzer holds the per-analysis context: the scope stack, the retained
// scope storage, and the control-flow counters threaded through the walk.
type Analyzer struct {
	reporter *diag.Reporter

	stack  []*ast.Scope // current scope is the top
	scopes []*ast.Scope // owns every created scope for the AST's lifetime
	global *ast.Scope

	enumMembers map[*ast.EnumDecl]*ast.Scope

	currentFunction *ast.FuncDecl
	loopDepth       int
}

// NewAnalyzer creates an analyzer with an empty context.
func NewAnalyzer() *Analyzer {
	return &Analyzer{
		reporter:    diag.NewReporter(diag.Semantic),
		enumMembers: make(map[*ast.EnumDecl]*ast.Scope),
	}
}

// Analyze runs all three passes over prog and reports whether no errors
// were recorded. Expected program faults become diagnostics; an internal
// invariant violation is recovered here and reported as a final error.
func (a *Analyzer) Analyze(prog *ast.Program) (ok bool) {
	defer func() {
		if r := recover(); r != nil {
			a.reporter.Errorf(0, 0, "internal analyzer error: %v", r)
			ok = false
		}
	}()

	a.declareProgram(prog)
	a.resolveProgram(prog)
	a.validateProgram(prog)
	return !a.reporter.HasErrors()
}

// Diagnostics returns the accumulated semantic diagnostics.
func (a *Analyzer) Diagnostics() []diag.Diagnostic {
	return a.reporter.Diagnostics()
}

// GlobalScope returns the program's root scope, valid after Analyze.
func (a *Analyzer) GlobalScope() *ast.Scope {
	return a.global
}

// ---- scope stack ----

// pushScope creates a scope under the current one and makes it current.
// Created scopes are retained for the lifetime of the annotated AST;
// popping only moves the current-scope pointer.
func (a *Analyzer) pushScope() *ast.Scope {
	scope := ast.NewScope(a.currentScope())
	a.scopes = append(a.scopes, scope)
	a.stack = append(a.stack, scope)
	return scope
}

// enterScope re-enters a scope created during an earlier pass.
func (a *Analyzer) enterScope(scope *ast.Scope) {
	if scope == nil {
		panic("entering nil scope")
	}
	a.stack = append(a.stack, scope)
}

func (a *Analyzer) popScope() {
	if len(a.stack) == 0 {
		panic("scope stack underflow")
	}
	a.stack = a.stack[:len(a.stack)-1]
}

func (a *Analyzer) currentScope() *ast.Scope {
	if len(a.stack) == 0 {
		return nil
	}
	return a.stack[len(a.stack)-1]
}

// ---- reporting ----

func (a *Analyzer) errorAt(n ast.Node, format string, args ...interface{}) {
	pos := n.GetSpan().Start
	a.reporter.Report(pos.Line, pos.Column, fmt.Sprintf(format, args...), diag.Error)
}

// ---- type helpers ----

const voidType = "void"

// typeNamed builds a bare type with the given name.
func typeNamed(name string) *ast.TypeNode {
	return &ast.TypeNode{Name: name}
}

// compatible applies the type compatibility rule: identical names are
// compatible; array types are compatible when their element types are;
// the empty array literal type "[]" is compatible with every array type.
// A nil type is unknown (an earlier error); unknown is compatible with
// everything so one fault yields one diagnostic.
func compatible(want, got *ast.TypeNode) bool {
	if want == nil || got == nil {
		return true
	}
	if want.Name == got.Name {
		return true
	}
	if want.Name == "[]" && got.IsArray() {
		return true
	}
	if got.Name == "[]" && want.IsArray() {
		return true
	}
	if want.IsArray() && got.IsArray() {
		return compatible(typeNamed(want.Elem()), typeNamed(got.Elem()))
	}
	return false
}

func isBool(t *ast.TypeNode) bool {
	return t == nil || t.Name == "bool"
}
