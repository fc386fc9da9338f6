package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"mano-lang/internal/diag"
	"mano-lang/internal/token"
)

// ---- output helpers ----

func printJSON(v interface{}) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		fmt.Fprintf(os.Stderr, "error: JSON encoding failed: %v\n", err)
		os.Exit(1)
	}
}

func printDiagsText(w io.Writer, diags []diag.Diagnostic) {
	for _, d := range diags {
		fmt.Fprintln(w, d.String())
	}
}

func diagsToSlice(diags []diag.Diagnostic) []map[string]interface{} {
	result := make([]map[string]interface{}, len(diags))
	for i, d := range diags {
		result[i] = map[string]interface{}{
			"phase":    d.Phase.String(),
			"severity": d.Severity.String(),
			"message":  d.Message,
			"line":     d.Line,
			"column":   d.Column,
		}
	}
	return result
}

// ---- token output helpers ----

func printTokensText(tokens []token.Token, diags []diag.Diagnostic) {
	for _, tok := range tokens {
		fmt.Printf("%-12s %-20s %d:%d\n", tok.Kind, tok.Lexeme, tok.Pos.Line, tok.Pos.Column)
	}
	printDiagsText(os.Stderr, diags)
}

func printTokensJSON(tokens []token.Token, diags []diag.Diagnostic) {
	type tokenJSON struct {
		Kind   string `json:"kind"`
		Lexeme string `json:"lexeme"`
		Line   int    `json:"line"`
		Column int    `json:"column"`
		Offset int    `json:"offset"`
	}

	var toks []tokenJSON
	for _, tok := range tokens {
		toks = append(toks, tokenJSON{
			Kind:   tok.Kind.String(),
			Lexeme: tok.Lexeme,
			Line:   tok.Pos.Line,
			Column: tok.Pos.Column,
			Offset: tok.Pos.Offset,
		})
	}

	printJSON(map[string]interface{}{
		"tokens":      toks,
		"diagnostics": diagsToSlice(diags),
	})
}
