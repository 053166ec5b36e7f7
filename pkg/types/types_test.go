package types

import (
	"testing"

	"github.com/Bemarking/axon-ai/pkg/ast"
	"github.com/Bemarking/axon-ai/pkg/lexer"
	"github.com/Bemarking/axon-ai/pkg/parser"
)

func checkSource(t *testing.T, src string) []string {
	t.Helper()
	toks, err := lexer.New(src).Tokenize()
	if err != nil {
		t.Fatalf("lex error: %v", err)
	}
	prog, err := parser.New(toks).Parse()
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	errs := NewChecker(prog).Check()
	msgs := make([]string, len(errs))
	for i, e := range errs {
		msgs[i] = e.Message
	}
	return msgs
}

func TestCheckUndefinedFlowInRun(t *testing.T) {
	msgs := checkSource(t, `run MissingFlow()`)
	if len(msgs) != 1 {
		t.Fatalf("got %d errors, want 1: %v", len(msgs), msgs)
	}
}

func TestCheckDuplicateDeclaration(t *testing.T) {
	msgs := checkSource(t, `persona X { tone: precise }
persona X { tone: formal }`)
	if len(msgs) != 1 {
		t.Fatalf("got %d errors, want 1: %v", len(msgs), msgs)
	}
}

func TestCheckInvalidToneRejected(t *testing.T) {
	msgs := checkSource(t, `persona X { tone: sarcastic }`)
	if len(msgs) != 1 {
		t.Fatalf("got %d errors, want 1: %v", len(msgs), msgs)
	}
}

func TestCheckWeaveRequiresTwoSources(t *testing.T) {
	msgs := checkSource(t, `flow F() { weave [Only.output] into Result {} }`)
	if len(msgs) != 1 {
		t.Fatalf("got %d errors, want 1: %v", len(msgs), msgs)
	}
}

// TestEpistemicLatticeIsTotal asserts CheckTypeCompatible is defined
// (returns a determinate bool, never panics) for every pairing across
// the full built-in type set — the epistemic lattice has no gaps.
func TestEpistemicLatticeIsTotal(t *testing.T) {
	allTypes := sortedKeys(BuiltinTypes)
	for _, source := range allTypes {
		for _, target := range allTypes {
			_ = CheckTypeCompatible(source, target)
		}
	}
}

func TestOpinionNeverSubstitutesForFactualClaim(t *testing.T) {
	if CheckTypeCompatible("Opinion", "FactualClaim") {
		t.Error("Opinion must never substitute for FactualClaim")
	}
}

func TestFactualClaimSubstitutesForString(t *testing.T) {
	if !CheckTypeCompatible("FactualClaim", "String") {
		t.Error("FactualClaim should substitute for String")
	}
}

func TestUncertaintyPropagatesEverywhere(t *testing.T) {
	for _, target := range sortedKeys(BuiltinTypes) {
		if !CheckTypeCompatible("Uncertainty", target) {
			t.Errorf("Uncertainty should be compatible with %s", target)
		}
	}
	if CheckUncertaintyPropagation("Uncertainty") != "Uncertainty" {
		t.Error("uncertainty propagation must taint the output type")
	}
}

func TestFloatNeverSubstitutesForRiskScore(t *testing.T) {
	if CheckTypeCompatible("Float", "RiskScore") {
		t.Error("Float must never substitute for RiskScore")
	}
}

func TestCompileGateConditionComparison(t *testing.T) {
	rule := ast.ValidateRule{Condition: "confidence", ComparisonOp: "<", ComparisonValue: "0.80"}
	prog, err := CompileGateCondition(rule)
	if err != nil {
		t.Fatalf("compile error: %v", err)
	}
	fired, err := EvaluateGate(prog, GateEnv{Confidence: 0.5})
	if err != nil {
		t.Fatalf("eval error: %v", err)
	}
	if !fired {
		t.Error("expected gate to fire for confidence 0.5 < 0.80")
	}
	fired, err = EvaluateGate(prog, GateEnv{Confidence: 0.95})
	if err != nil {
		t.Fatalf("eval error: %v", err)
	}
	if fired {
		t.Error("expected gate not to fire for confidence 0.95 < 0.80")
	}
}

func TestCompileGateConditionFlag(t *testing.T) {
	rule := ast.ValidateRule{Condition: "structural_mismatch"}
	prog, err := CompileGateCondition(rule)
	if err != nil {
		t.Fatalf("compile error: %v", err)
	}
	fired, err := EvaluateGate(prog, GateEnv{Flags: map[string]bool{"structural_mismatch": true}})
	if err != nil {
		t.Fatalf("eval error: %v", err)
	}
	if !fired {
		t.Error("expected flag gate to fire when flag set")
	}
}
