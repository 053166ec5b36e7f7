package backend

import (
	"errors"
	"strings"
	"testing"

	"github.com/Bemarking/axon-ai/pkg/ir"
	"github.com/Bemarking/axon-ai/pkg/lexer"
	"github.com/Bemarking/axon-ai/pkg/parser"
)

func compileSource(t *testing.T, src string) *ir.Program {
	t.Helper()
	toks, err := lexer.New(src).Tokenize()
	if err != nil {
		t.Fatalf("lex error: %v", err)
	}
	prog, err := parser.New(toks).Parse()
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	irProg, err := ir.NewGenerator().Generate(prog)
	if err != nil {
		t.Fatalf("generate error: %v", err)
	}
	return irProg
}

const sampleProgram = `
persona LegalExpert {
  domain: ["contract law"]
  tone: precise
  confidence_threshold: 0.9
  cite_sources: true
}
context Review { memory_scope: session depth: deep }
anchor NoHallucination { require: "cite sources" confidence_floor: 0.8 }
tool WebSearch { provider: "tavily" max_results: 5 }
flow Analyze(doc: Document) {
  step Extract {
    given: doc
    probe doc for [parties]
  }
}
run Analyze(myContract.pdf) as LegalExpert within Review constrained_by [NoHallucination]
`

func TestAnthropicCompileProgram(t *testing.T) {
	prog := compileSource(t, sampleProgram)
	compiled, err := CompileProgram(Anthropic{}, prog)
	if err != nil {
		t.Fatalf("compile error: %v", err)
	}
	if compiled.BackendName != "anthropic" {
		t.Errorf("backend name = %q", compiled.BackendName)
	}
	if len(compiled.ExecutionUnits) != 1 {
		t.Fatalf("got %d units, want 1", len(compiled.ExecutionUnits))
	}
	unit := compiled.ExecutionUnits[0]
	if !strings.Contains(unit.SystemPrompt, "You are LegalExpert.") {
		t.Errorf("system prompt missing persona block: %q", unit.SystemPrompt)
	}
	if len(unit.AnchorInstructions) != 1 || !strings.Contains(unit.AnchorInstructions[0], "NoHallucination") {
		t.Errorf("anchor instructions = %v", unit.AnchorInstructions)
	}
	if len(unit.Steps) != 1 {
		t.Fatalf("got %d steps, want 1", len(unit.Steps))
	}
}

func TestGeminiCompileProgram(t *testing.T) {
	prog := compileSource(t, sampleProgram)
	compiled, err := CompileProgram(Gemini{}, prog)
	if err != nil {
		t.Fatalf("compile error: %v", err)
	}
	unit := compiled.ExecutionUnits[0]
	if !strings.Contains(unit.SystemPrompt, "Your identity is LegalExpert.") {
		t.Errorf("system prompt missing persona block: %q", unit.SystemPrompt)
	}
}

func TestOpenAIBackendIsUnimplemented(t *testing.T) {
	prog := compileSource(t, sampleProgram)
	_, err := CompileProgram(OpenAI{}, prog)
	if !errors.Is(err, ErrBackendNotImplemented) {
		t.Errorf("got %v, want ErrBackendNotImplemented", err)
	}
}

func TestGetUnknownBackendErrors(t *testing.T) {
	if _, err := Get("does-not-exist"); err == nil {
		t.Fatal("expected error for unknown backend")
	}
}

func TestGetKnownBackends(t *testing.T) {
	for _, name := range []string{"anthropic", "gemini", "openai", "ollama"} {
		b, err := Get(name)
		if err != nil {
			t.Fatalf("Get(%q) error: %v", name, err)
		}
		if b.Name() != name {
			t.Errorf("Get(%q).Name() = %q", name, b.Name())
		}
	}
}
