// Command manoc is the CLI entry point for the Mano front end.
//
// Usage:
//
//	manoc tokens <file> [--json]   Tokenize and print tokens
//	manoc parse  <file>            Parse and print AST (JSON)
//	manoc check  <file>            Run the full front-end pipeline
//	manoc repl                     Start interactive REPL
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"mano-lang/internal/ast"
	"mano-lang/internal/lexer"
	"mano-lang/internal/parser"
)

var version = "dev"

var rootCmd = &cobra.Command{
	Use:           "manoc",
	Short:         "Compiler front end for the Mano language",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.Version = version
	rootCmd.SetVersionTemplate("manoc version {{.Version}}\n")

	tokensCmd := &cobra.Command{
		Use:   "tokens <file>",
		Short: "Tokenize a source file and print the token stream",
		Args:  cobra.ExactArgs(1),
		RunE:  runTokens,
	}
	tokensCmd.Flags().Bool("json", false, "print tokens as JSON")

	rootCmd.AddCommand(tokensCmd)
	rootCmd.AddCommand(&cobra.Command{
		Use:   "parse <file>",
		Short: "Parse a source file and print the AST as JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  runParse,
	})
	rootCmd.AddCommand(&cobra.Command{
		Use:   "check <file>",
		Short: "Run lexing, parsing, and semantic analysis",
		Args:  cobra.ExactArgs(1),
		RunE:  runCheck,
	})
	rootCmd.AddCommand(&cobra.Command{
		Use:   "repl",
		Short: "Start an interactive checking session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRepl()
		},
	})
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func readFile(filename string) (string, error) {
	source, err := os.ReadFile(filename)
	if err != nil {
		return "", fmt.Errorf("cannot read file %s: %w", filename, err)
	}
	return string(source), nil
}

// ---- tokens command ----

func runTokens(cmd *cobra.Command, args []string) error {
	source, err := readFile(args[0])
	if err != nil {
		return err
	}

	l := lexer.New(source, args[0])
	tokens, diags := l.Tokenize()

	if jsonMode, _ := cmd.Flags().GetBool("json"); jsonMode {
		printTokensJSON(tokens, diags)
	} else {
		printTokensText(tokens, diags)
	}

	if len(diags) > 0 {
		os.Exit(1)
	}
	return nil
}

// ---- parse command ----

func runParse(cmd *cobra.Command, args []string) error {
	source, err := readFile(args[0])
	if err != nil {
		return err
	}

	l := lexer.New(source, args[0])
	tokens, lexDiags := l.Tokenize()

	p := parser.New(tokens)
	prog, parseDiags := p.ParseProgram()

	allDiags := append(lexDiags, parseDiags...)
	printJSON(map[string]interface{}{
		"ast":         ast.NodeToMap(prog),
		"diagnostics": diagsToSlice(allDiags),
	})

	if len(allDiags) > 0 {
		os.Exit(1)
	}
	return nil
}

// ---- check command ----

func runCheck(cmd *cobra.Command, args []string) error {
	source, err := readFile(args[0])
	if err != nil {
		return err
	}

	_, diags, ok := runPipeline(source, args[0])
	printDiagsText(os.Stderr, diags)
	if !ok {
		os.Exit(1)
	}
	return nil
}
