package stdlib

import (
	"testing"

	"github.com/Bemarking/axon-ai/pkg/ir"
	"github.com/Bemarking/axon-ai/pkg/lexer"
	"github.com/Bemarking/axon-ai/pkg/parser"
)

// These tests exercise ir.Generator.WithStdlib end to end: an `import
// axon.*` statement alone, with no local persona/flow/anchor declaration,
// must be enough for a run statement to resolve.
func compileWithStdlib(t *testing.T, src string) *ir.Program {
	t.Helper()
	toks, err := lexer.New(src).Tokenize()
	if err != nil {
		t.Fatalf("lex error: %v", err)
	}
	prog, err := parser.New(toks).Parse()
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	irProg, err := ir.NewGenerator().WithStdlib(NewRegistry()).Generate(prog)
	if err != nil {
		t.Fatalf("generate error: %v", err)
	}
	return irProg
}

func TestGeneratorResolvesImportedPersonaAndFlow(t *testing.T) {
	src := `
import axon.personas { Analyst }
import axon.flows { Summarize }
run Summarize() as Analyst
`
	prog := compileWithStdlib(t, src)
	if len(prog.Runs) != 1 {
		t.Fatalf("got %d runs, want 1", len(prog.Runs))
	}
	run := prog.Runs[0]
	if run.ResolvedFlow == nil || run.ResolvedFlow.Name != "Summarize" {
		t.Errorf("resolved flow = %v", run.ResolvedFlow)
	}
	if run.ResolvedPersona == nil || run.ResolvedPersona.Name != "Analyst" {
		t.Errorf("resolved persona = %v", run.ResolvedPersona)
	}
}

func TestGeneratorResolvesImportedAnchor(t *testing.T) {
	src := `
import axon.anchors { NoHallucination }
import axon.flows { Summarize }
run Summarize() constrained_by [NoHallucination]
`
	prog := compileWithStdlib(t, src)
	run := prog.Runs[0]
	if len(run.ResolvedAnchors) != 1 || run.ResolvedAnchors[0].Name != "NoHallucination" {
		t.Errorf("resolved anchors = %v", run.ResolvedAnchors)
	}
}

func TestGeneratorWithoutStdlibLeavesImportsUnresolved(t *testing.T) {
	src := `
import axon.flows { Summarize }
run Summarize()
`
	toks, err := lexer.New(src).Tokenize()
	if err != nil {
		t.Fatalf("lex error: %v", err)
	}
	prog, err := parser.New(toks).Parse()
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	if _, err := ir.NewGenerator().Generate(prog); err == nil {
		t.Fatal("expected undefined-flow error when no stdlib resolver is attached")
	}
}

func TestGeneratorUnknownStdlibImportErrors(t *testing.T) {
	src := `import axon.personas { NoSuchPersona }`
	toks, err := lexer.New(src).Tokenize()
	if err != nil {
		t.Fatalf("lex error: %v", err)
	}
	prog, err := parser.New(toks).Parse()
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	if _, err := ir.NewGenerator().WithStdlib(NewRegistry()).Generate(prog); err == nil {
		t.Fatal("expected error resolving an unknown stdlib persona")
	}
}
