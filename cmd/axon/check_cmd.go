package main

import (
	"fmt"
	"os"

	"github.com/Bemarking/axon-ai/pkg/axerrors"
	"github.com/Bemarking/axon-ai/pkg/lexer"
	"github.com/Bemarking/axon-ai/pkg/parser"
	"github.com/Bemarking/axon-ai/pkg/types"
	"github.com/spf13/cobra"
)

// ── ANSI colors ──────────────────────────────────────────────────

const (
	ansiRed   = "\033[31m"
	ansiGreen = "\033[32m"
	ansiBold  = "\033[1m"
	ansiReset = "\033[0m"
	ansiDim   = "\033[2m"
)

func colorize(text, code string, noColor bool) string {
	if noColor {
		return text
	}
	return code + text + ansiReset
}

var checkNoColor bool

var checkCmd = &cobra.Command{
	Use:   "check [file]",
	Short: "Lex, parse, and type-check an .axon file",
	Args:  cobra.ExactArgs(1),
	RunE:  runCheck,
}

func init() {
	checkCmd.Flags().BoolVar(&checkNoColor, "no-color", false, "Disable colored output")
}

// runCheck runs the front-end pipeline (lex → parse → type-check) and
// reports the first failure, or a one-line success summary.
//
// Exit codes: 0 clean, 1 errors detected, 2 file not found.
func runCheck(cmd *cobra.Command, args []string) error {
	path := args[0]
	source, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintln(os.Stderr, colorize(fmt.Sprintf("✗ File not found: %s", path), ansiRed, checkNoColor))
		os.Exit(2)
	}

	toks, err := lexer.New(string(source)).Tokenize()
	if err != nil {
		printCompileError(path, err, checkNoColor)
		os.Exit(1)
	}

	prog, err := parser.New(toks).Parse()
	if err != nil {
		printCompileError(path, err, checkNoColor)
		os.Exit(1)
	}

	typeErrors := types.NewChecker(prog).Check()
	if len(typeErrors) > 0 {
		fmt.Println(colorize(fmt.Sprintf("✗ %s", path), ansiRed+ansiBold, checkNoColor) +
			fmt.Sprintf("  — %d type error(s)", len(typeErrors)))
		for _, e := range typeErrors {
			lineInfo := ""
			if e.Line > 0 {
				lineInfo = fmt.Sprintf("  line %d", e.Line)
			}
			fmt.Printf("  %s%s: %s\n", colorize("error", ansiRed, checkNoColor), lineInfo, e.Message)
		}
		os.Exit(1)
	}

	fmt.Println(colorize("✓", ansiGreen+ansiBold, checkNoColor) +
		" " + colorize(path, ansiBold, checkNoColor) +
		colorize(fmt.Sprintf("  %d tokens · %d declarations · 0 errors", len(toks), len(prog.Declarations)), ansiDim, checkNoColor))
	return nil
}

// printCompileError reports a lexer/parser failure with its source
// position when the error carries one.
func printCompileError(path string, err error, noColor bool) {
	line, col := 0, 0
	switch e := err.(type) {
	case *axerrors.ParseError:
		line, col = e.Line, e.Column
	case *axerrors.CompileError:
		line, col = e.Line, e.Column
	}

	loc := ""
	if line > 0 {
		loc = fmt.Sprintf(":%d:%d", line, col)
	}
	fmt.Fprintln(os.Stderr, colorize(fmt.Sprintf("✗ %s%s", path, loc), ansiRed+ansiBold, noColor)+"  "+err.Error())
}
