// Package token defines the token types produced by the lexer.
package token

import (
	"fmt"

	"mano-lang/internal/span"
)

// Kind represents the type of a token.
type Kind int

const (
	Identifier  Kind = iota // e.g. foo
	Keyword                 // e.g. var, fun, class, if
	Number                  // integer and float literals
	String                  // string literal
	Operator                // + - * / = == && etc.
	Punctuation             // ( ) { } [ ] , : ; .
	EOF                     // end-of-input marker
	Unknown                 // anything that does not match known types
)

var kindNames = map[Kind]string{
	Identifier:  "Identifier",
	Keyword:     "Keyword",
	Number:      "Number",
	String:      "String",
	Operator:    "Operator",
	Punctuation: "Punctuation",
	EOF:         "EOF",
	Unknown:     "Unknown",
}

// String returns the human-readable name for a token kind.
func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// keywords is the full reserved-word set. The primitive type names are
// keywords so the parser can tell primitive types from user-defined
// types syntactically.
var keywords = map[string]bool{
	"var":      true,
	"let":      true,
	"const":    true,
	"fun":      true,
	"class":    true,
	"enum":     true,
	"if":       true,
	"else":     true,
	"for":      true,
	"while":    true,
	"break":    true,
	"continue": true,
	"return":   true,
	"switch":   true,
	"case":     true,
	"default":  true,
	"int":      true,
	"uint":     true,
	"float":    true,
	"bool":     true,
	"string":   true,
}

// IsKeyword reports whether text is a reserved word.
func IsKeyword(text string) bool {
	return keywords[text]
}

// Token represents a lexical token with its kind, exact source text, and
// the position of its first byte.
type Token struct {
	Kind   Kind          `json:"kind"`
	Lexeme string        `json:"lexeme"`
	Pos    span.Position `json:"pos"`
}

// Is reports whether the token has the given kind and lexeme.
func (t Token) Is(kind Kind, lexeme string) bool {
	return t.Kind == kind && t.Lexeme == lexeme
}

// String returns a human-readable representation of the token.
func (t Token) String() string {
	return fmt.Sprintf("%s %q %s", t.Kind, t.Lexeme, t.Pos)
}
