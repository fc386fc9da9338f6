package main

import (
	"sort"

	"mano-lang/internal/ast"
	"mano-lang/internal/diag"
	"mano-lang/internal/lexer"
	"mano-lang/internal/parser"
	"mano-lang/internal/sema"
	"mano-lang/internal/token"
)

// runPipeline runs the full front end over source. Lex errors are not
// fatal: the parser still runs on a non-empty token stream. The analyzer
// runs only if parsing succeeded. Diagnostics come back in source order.
func runPipeline(source, filename string) (*ast.Program, []diag.Diagnostic, bool) {
	l := lexer.New(source, filename)
	tokens, diags := l.Tokenize()

	if len(tokens) == 0 || (len(tokens) == 1 && tokens[0].Kind == token.EOF) {
		return nil, sortDiags(diags), !hasErrors(diags)
	}

	p := parser.New(tokens)
	prog, parseDiags := p.ParseProgram()
	diags = append(diags, parseDiags...)
	if prog == nil {
		return nil, sortDiags(diags), false
	}

	analyzer := sema.NewAnalyzer()
	ok := analyzer.Analyze(prog)
	diags = append(diags, analyzer.Diagnostics()...)

	return prog, sortDiags(diags), ok && !hasErrors(diags)
}

func hasErrors(diags []diag.Diagnostic) bool {
	for _, d := range diags {
		if d.Severity == diag.Error {
			return true
		}
	}
	return false
}

// sortDiags orders diagnostics by source position; phase-global entries
// (line 0) sort last so positioned messages lead.
func sortDiags(diags []diag.Diagnostic) []diag.Diagnostic {
	sort.SliceStable(diags, func(i, j int) bool {
		a, b := diags[i], diags[j]
		if a.Line == 0 || b.Line == 0 {
			return b.Line == 0 && a.Line != 0
		}
		if a.Line != b.Line {
			return a.Line < b.Line
		}
		return a.Column < b.Column
	})
	return diags
}
