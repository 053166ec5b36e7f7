package ir

import (
	"testing"

	"github.com/Bemarking/axon-ai/pkg/lexer"
	"github.com/Bemarking/axon-ai/pkg/parser"
)

func generate(t *testing.T, src string) *Program {
	t.Helper()
	toks, err := lexer.New(src).Tokenize()
	if err != nil {
		t.Fatalf("lex error: %v", err)
	}
	prog, err := parser.New(toks).Parse()
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	irProg, err := NewGenerator().Generate(prog)
	if err != nil {
		t.Fatalf("generate error: %v", err)
	}
	return irProg
}

func TestGenerateResolvesRunReferences(t *testing.T) {
	src := `
persona P { tone: precise }
context C { memory_scope: session }
anchor A { require: "cite sources" }
flow F() { step S1 { given: "x" ask: "y" } }
run F() as P within C constrained_by [A]
`
	prog := generate(t, src)
	if len(prog.Runs) != 1 {
		t.Fatalf("got %d runs, want 1", len(prog.Runs))
	}
	run := prog.Runs[0]
	if run.ResolvedFlow == nil || run.ResolvedFlow.Name != "F" {
		t.Errorf("resolved flow = %v", run.ResolvedFlow)
	}
	if run.ResolvedPersona == nil || run.ResolvedPersona.Name != "P" {
		t.Errorf("resolved persona = %v", run.ResolvedPersona)
	}
	if run.ResolvedContext == nil || run.ResolvedContext.Name != "C" {
		t.Errorf("resolved context = %v", run.ResolvedContext)
	}
	if len(run.ResolvedAnchors) != 1 || run.ResolvedAnchors[0].Name != "A" {
		t.Errorf("resolved anchors = %v", run.ResolvedAnchors)
	}
}

func TestGenerateUndefinedFlowErrors(t *testing.T) {
	_, err := func() (*Program, error) {
		toks, err := lexer.New(`run Missing()`).Tokenize()
		if err != nil {
			return nil, err
		}
		ast, err := parser.New(toks).Parse()
		if err != nil {
			return nil, err
		}
		return NewGenerator().Generate(ast)
	}()
	if err == nil {
		t.Fatal("expected an undefined-flow error, got nil")
	}
}

func TestGenerateUndefinedToolInStepErrors(t *testing.T) {
	src := `flow F() { step S { use MissingTool("x") } }
run F()`
	toks, err := lexer.New(src).Tokenize()
	if err != nil {
		t.Fatalf("lex error: %v", err)
	}
	prog, err := parser.New(toks).Parse()
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	if _, err := NewGenerator().Generate(prog); err == nil {
		t.Fatal("expected an undefined-tool error, got nil")
	}
}

func TestGenerateNormalizesReasonGiven(t *testing.T) {
	src := `flow F() { reason about R { given: "x" } }
run F()`
	prog := generate(t, src)
	flow := prog.Flows[0]
	reason, ok := flow.Steps[0].(Reason)
	if !ok {
		t.Fatalf("got %T, want Reason", flow.Steps[0])
	}
	if len(reason.Given) != 1 || reason.Given[0] != "x" {
		t.Errorf("given = %v", reason.Given)
	}
}

func TestTypeJSONSchemaRange(t *testing.T) {
	src := `type RiskScore(0.0..1.0)`
	prog := generate(t, src)
	s := prog.Types[0].JSONSchema()
	if s.Type != "number" {
		t.Errorf("type = %q, want number", s.Type)
	}
}

func TestTypeJSONSchemaFields(t *testing.T) {
	src := `type Party { name: FactualClaim, role: FactualClaim }`
	prog := generate(t, src)
	s := prog.Types[0].JSONSchema()
	if s.Type != "object" {
		t.Errorf("type = %q, want object", s.Type)
	}
	if s.Properties.Len() != 2 {
		t.Errorf("got %d properties, want 2", s.Properties.Len())
	}
}
