package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/Bemarking/axon-ai/pkg/ir"
	"github.com/Bemarking/axon-ai/pkg/lexer"
	"github.com/Bemarking/axon-ai/pkg/parser"
	"github.com/Bemarking/axon-ai/pkg/stdlib"
	"github.com/Bemarking/axon-ai/pkg/types"
	"github.com/spf13/cobra"
)

var (
	compileBackend string
	compileOutput  string
	compileStdout  bool
)

var compileCmd = &cobra.Command{
	Use:   "compile [file]",
	Short: "Compile an .axon file to IR JSON",
	Args:  cobra.ExactArgs(1),
	RunE:  runCompile,
}

func init() {
	compileCmd.Flags().StringVarP(&compileBackend, "backend", "b", "anthropic", "Target backend: anthropic, openai, gemini, ollama")
	compileCmd.Flags().StringVarP(&compileOutput, "output", "o", "", "Output path (default: <file>.ir.json)")
	compileCmd.Flags().BoolVar(&compileStdout, "stdout", false, "Print IR JSON to stdout instead of writing to file")
}

// runCompile runs the full front-end pipeline and writes (or prints) the
// resulting IR program as JSON.
//
// Exit codes: 0 success, 1 compile error, 2 I/O error.
func runCompile(cmd *cobra.Command, args []string) error {
	path := args[0]
	source, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "✗ File not found: %s\n", path)
		os.Exit(2)
	}

	toks, err := lexer.New(string(source)).Tokenize()
	if err != nil {
		fmt.Fprintf(os.Stderr, "✗ %s: %v\n", path, err)
		os.Exit(1)
	}

	prog, err := parser.New(toks).Parse()
	if err != nil {
		fmt.Fprintf(os.Stderr, "✗ %s: %v\n", path, err)
		os.Exit(1)
	}

	if errs := types.NewChecker(prog).Check(); len(errs) > 0 {
		for _, e := range errs {
			fmt.Fprintf(os.Stderr, "  error: %s\n", e.Message)
		}
		os.Exit(1)
	}

	irProgram, err := ir.NewGenerator().WithStdlib(stdlib.NewRegistry()).Generate(prog)
	if err != nil {
		fmt.Fprintf(os.Stderr, "✗ IR generation failed: %v\n", err)
		os.Exit(1)
	}

	out := map[string]any{
		"personas": irProgram.Personas,
		"contexts": irProgram.Contexts,
		"anchors":  irProgram.Anchors,
		"tools":    irProgram.Tools,
		"memories": irProgram.Memories,
		"types":    irProgram.Types,
		"flows":    irProgram.Flows,
		"runs":     irProgram.Runs,
		"imports":  irProgram.Imports,
		"_meta": map[string]any{
			"source":       path,
			"backend":      compileBackend,
			"axon_version": version,
		},
	}

	payload, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return fmt.Errorf("serialize IR: %w", err)
	}

	if compileStdout {
		fmt.Println(string(payload))
		return nil
	}

	outPath := compileOutput
	if outPath == "" {
		base := strings.TrimSuffix(path, filepath.Ext(path))
		outPath = base + ".ir.json"
	}
	if err := os.WriteFile(outPath, payload, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", outPath, err)
	}
	fmt.Printf("✓ Compiled → %s\n", outPath)
	return nil
}
