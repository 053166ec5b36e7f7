package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/Bemarking/axon-ai/pkg/backend"
	"github.com/Bemarking/axon-ai/pkg/config"
	"github.com/Bemarking/axon-ai/pkg/executor"
	"github.com/Bemarking/axon-ai/pkg/ir"
	"github.com/Bemarking/axon-ai/pkg/lexer"
	"github.com/Bemarking/axon-ai/pkg/model"
	"github.com/Bemarking/axon-ai/pkg/parser"
	"github.com/Bemarking/axon-ai/pkg/stdlib"
	"github.com/Bemarking/axon-ai/pkg/tools"
	"github.com/Bemarking/axon-ai/pkg/types"
	"github.com/spf13/cobra"
)

var (
	runBackend  string
	runTrace    bool
	runToolMode string
	runAPIKey   string
	runModel    string
)

var runCmd = &cobra.Command{
	Use:   "run [file]",
	Short: "Compile and execute an .axon file",
	Args:  cobra.ExactArgs(1),
	RunE:  runRun,
}

func init() {
	runCmd.Flags().StringVarP(&runBackend, "backend", "b", "anthropic", "Target backend: anthropic, openai, gemini, ollama")
	runCmd.Flags().BoolVar(&runTrace, "trace", false, "Save execution trace to <file>.trace.json")
	runCmd.Flags().StringVar(&runToolMode, "tool-mode", "stub", "Tool backend mode: stub, real, hybrid")
	runCmd.Flags().StringVar(&runAPIKey, "api-key", "", "API key for the chosen backend (overrides its env var)")
	runCmd.Flags().StringVar(&runModel, "model", "", "Model identifier override (default: backend's own default)")
}

// runRun compiles path end to end and executes it, printing a summary
// and optionally saving a full execution trace.
//
// Exit codes: 0 success, 1 compile/execution error, 2 I/O or config error.
func runRun(cmd *cobra.Command, args []string) error {
	path := args[0]
	source, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "✗ File not found: %s\n", path)
		os.Exit(2)
	}

	// ── Compile ───────────────────────────────────────────────
	toks, err := lexer.New(string(source)).Tokenize()
	if err != nil {
		fmt.Fprintf(os.Stderr, "✗ Compilation error: %v\n", err)
		os.Exit(1)
	}
	prog, err := parser.New(toks).Parse()
	if err != nil {
		fmt.Fprintf(os.Stderr, "✗ Compilation error: %v\n", err)
		os.Exit(1)
	}
	if errs := types.NewChecker(prog).Check(); len(errs) > 0 {
		fmt.Fprintf(os.Stderr, "✗ %d type error(s):\n", len(errs))
		for _, e := range errs {
			fmt.Fprintf(os.Stderr, "  %s\n", e.Message)
		}
		os.Exit(1)
	}

	irProgram, err := ir.NewGenerator().WithStdlib(stdlib.NewRegistry()).Generate(prog)
	if err != nil {
		fmt.Fprintf(os.Stderr, "✗ IR generation failed: %v\n", err)
		os.Exit(1)
	}

	// ── Backend compile ───────────────────────────────────────
	be, err := backend.Get(runBackend)
	if err != nil {
		fmt.Fprintf(os.Stderr, "✗ Backend error: %v\n", err)
		os.Exit(2)
	}
	compiled, err := backend.CompileProgram(be, irProgram)
	if err != nil {
		fmt.Fprintf(os.Stderr, "✗ Backend compilation failed: %v\n", err)
		os.Exit(1)
	}

	// ── Execute ───────────────────────────────────────────────
	client, err := clientFor(runBackend, runAPIKey, runModel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "✗ %v\n", err)
		os.Exit(2)
	}

	toolMode := tools.ModeStub
	if runToolMode == "real" || runToolMode == "hybrid" {
		toolMode = tools.ModeMCP
	}
	registry := tools.CreateDefaultRegistry(toolMode, nil)
	dispatcher := tools.NewToolDispatcher(registry, nil)

	exec := executor.New(client, executor.WithToolDispatcher(dispatcher))
	result, err := exec.Execute(context.Background(), compiled)
	if err != nil {
		fmt.Fprintf(os.Stderr, "✗ Execution failed: %v\n", err)
		os.Exit(1)
	}

	printResult(result)

	if runTrace {
		tracePath := strings.TrimSuffix(path, filepath.Ext(path)) + ".trace.json"
		traceJSON, err := json.MarshalIndent(result.Trace, "", "  ")
		if err != nil {
			fmt.Fprintf(os.Stderr, "\n⚠ Could not save trace: %v\n", err)
		} else if err := os.WriteFile(tracePath, traceJSON, 0o644); err != nil {
			fmt.Fprintf(os.Stderr, "\n⚠ Could not save trace: %v\n", err)
		} else {
			fmt.Printf("\n📋 Trace saved → %s\n", tracePath)
		}
	}

	if !result.Success {
		os.Exit(1)
	}
	return nil
}

// clientFor builds the model.Client the chosen backend runs against.
// Only anthropic and gemini have real HTTP clients; openai and ollama
// have no wired model client yet, matching their backend.Backend
// implementations (ErrBackendNotImplemented) — CompileProgram already
// fails for those before a client would ever be needed.
func clientFor(backendName, apiKey, modelOverride string) (model.Client, error) {
	resolvedKey, err := config.ResolveAPIKey(backendName, apiKey)
	if err != nil {
		return nil, err
	}
	modelID := modelOverride
	if modelID == "" {
		modelID = config.DefaultModelID(backendName)
	}
	maxTokens := config.MaxTokens(4096)

	switch backendName {
	case "anthropic":
		return model.NewAnthropicClient(resolvedKey, modelID, maxTokens), nil
	case "gemini":
		return model.NewGeminiClient(resolvedKey, modelID, maxTokens), nil
	default:
		return nil, fmt.Errorf("no model client wired for backend %q yet", backendName)
	}
}

// printResult pretty-prints an ExecutionResult's to_dict() representation.
func printResult(result executor.ExecutionResult) {
	fmt.Println()
	fmt.Println(strings.Repeat("═", 60))
	fmt.Println("  AXON Execution Result")
	fmt.Println(strings.Repeat("═", 60))

	data := result.ToDict()
	for _, key := range []string{"unit_results", "success", "duration_ms", "trace"} {
		val, ok := data[key]
		if !ok {
			continue
		}
		switch v := val.(type) {
		case bool, string, int, int64, float64:
			fmt.Printf("  %s: %v\n", key, v)
		default:
			formatted, _ := json.MarshalIndent(v, "    ", "  ")
			fmt.Printf("\n  %s:\n    %s\n", key, string(formatted))
		}
	}
	fmt.Println(strings.Repeat("═", 60))
}
