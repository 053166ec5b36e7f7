package stdlib

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/Bemarking/axon-ai/pkg/ir"
)

func TestRegistryResolvesEveryPersona(t *testing.T) {
	r := NewRegistry()
	for _, name := range []string{
		"Analyst", "LegalExpert", "Coder", "Researcher",
		"Writer", "Summarizer", "Critic", "Translator",
	} {
		node, err := r.Resolve(NamespacePersonas, name)
		if err != nil {
			t.Fatalf("resolve persona %s: %v", name, err)
		}
		p, ok := node.(ir.Persona)
		if !ok || p.Name != name {
			t.Errorf("resolve persona %s: got %+v", name, node)
		}
	}
}

func TestRegistryResolvesEveryAnchor(t *testing.T) {
	r := NewRegistry()
	names := []string{
		"NoHallucination", "FactualOnly", "SafeOutput", "PrivacyGuard",
		"NoBias", "ChildSafe", "NoCodeExecution", "AuditTrail",
	}
	for _, name := range names {
		node, err := r.Resolve(NamespaceAnchors, name)
		if err != nil {
			t.Fatalf("resolve anchor %s: %v", name, err)
		}
		a, ok := node.(ir.Anchor)
		if !ok || a.Name != name {
			t.Errorf("resolve anchor %s: got %+v", name, node)
		}
	}
	if got := r.ListNames(NamespaceAnchors); len(got) != len(names) {
		t.Errorf("ListNames(anchors) = %v, want %d entries", got, len(names))
	}
}

func TestRegistryResolvesEveryFlowAndTool(t *testing.T) {
	r := NewRegistry()
	flowNames := []string{
		"Summarize", "ExtractEntities", "CompareDocuments", "TranslateDocument",
		"FactCheck", "SentimentAnalysis", "ClassifyContent", "GenerateReport",
	}
	for _, name := range flowNames {
		f, err := r.ResolveFlow(name)
		if err != nil {
			t.Fatalf("resolve flow %s: %v", name, err)
		}
		if len(f.IR.Steps) == 0 {
			t.Errorf("flow %s has no steps", name)
		}
	}

	toolNames := []string{
		"WebSearch", "CodeExecutor", "FileReader", "PDFExtractor",
		"ImageAnalyzer", "Calculator", "DateTimeTool", "APICall",
	}
	for _, name := range toolNames {
		tool, err := r.ResolveTool(name)
		if err != nil {
			t.Fatalf("resolve tool %s: %v", name, err)
		}
		if tool.IR.Timeout == "" {
			t.Errorf("tool %s has no timeout", name)
		}
	}
}

func TestRegistryResolveUnknownNameErrors(t *testing.T) {
	r := NewRegistry()
	if _, err := r.Resolve(NamespacePersonas, "Nonexistent"); err == nil {
		t.Fatal("expected error for unknown persona")
	}
	if _, err := r.Resolve(Namespace("bogus"), "X"); err == nil {
		t.Fatal("expected error for invalid namespace")
	}
}

func TestRegistryTotalCount(t *testing.T) {
	r := NewRegistry()
	if got := r.TotalCount(); got != 32 {
		t.Errorf("TotalCount() = %d, want 32 (8 personas + 8 anchors + 8 flows + 8 tools)", got)
	}
}

func TestAnchorCheckersPassCleanContent(t *testing.T) {
	r := NewRegistry()
	clean := "The report was compiled from verified public records and audited financial statements."
	for _, name := range r.ListNames(NamespaceAnchors) {
		a, err := r.ResolveAnchor(name)
		if err != nil {
			t.Fatalf("resolve anchor %s: %v", name, err)
		}
		if name == "AuditTrail" {
			continue // requires an explicit reasoning marker, tested separately
		}
		if passed, violations := a.Check(clean); !passed {
			t.Errorf("anchor %s rejected clean content: %v", name, violations)
		}
	}
}

func TestNoHallucinationFlagsHedging(t *testing.T) {
	passed, violations := checkNoHallucination("I think the answer is probably 42.")
	if passed {
		t.Fatal("expected hedging language to fail NoHallucination")
	}
	if len(violations) == 0 {
		t.Error("expected at least one violation message")
	}
}

func TestPrivacyGuardFlagsSSN(t *testing.T) {
	passed, violations := checkPrivacyGuard("Their SSN is 123-45-6789.")
	if passed {
		t.Fatal("expected SSN pattern to fail PrivacyGuard")
	}
	if len(violations) != 1 {
		t.Errorf("violations = %v, want exactly 1", violations)
	}
}

func TestAuditTrailRequiresReasoningMarker(t *testing.T) {
	if passed, _ := checkAuditTrail("The answer is 42."); passed {
		t.Fatal("expected content with no reasoning marker to fail AuditTrail")
	}
	if passed, _ := checkAuditTrail("Therefore, the answer is 42."); !passed {
		t.Fatal("expected content with a reasoning marker to pass AuditTrail")
	}
}

func TestToolOverlayAppliesOverrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "tools.yaml")
	yamlDoc := "tools:\n  Calculator:\n    timeout: 5s\n  WebSearch:\n    provider: tavily\n    max_results: 3\n"
	if err := os.WriteFile(path, []byte(yamlDoc), 0o644); err != nil {
		t.Fatalf("write overlay file: %v", err)
	}

	overlay, err := LoadToolOverlay(path)
	if err != nil {
		t.Fatalf("LoadToolOverlay: %v", err)
	}

	r := NewRegistry()
	calc, _ := r.ResolveTool("Calculator")
	adjusted := overlay.Apply(calc.IR)
	if adjusted.Timeout != "5s" {
		t.Errorf("Calculator timeout = %q, want 5s", adjusted.Timeout)
	}

	search, _ := r.ResolveTool("WebSearch")
	adjustedSearch := overlay.Apply(search.IR)
	if adjustedSearch.Provider != "tavily" {
		t.Errorf("WebSearch provider = %q, want tavily", adjustedSearch.Provider)
	}
	if adjustedSearch.MaxResults == nil || *adjustedSearch.MaxResults != 3 {
		t.Errorf("WebSearch max_results = %v, want 3", adjustedSearch.MaxResults)
	}
	// Unmentioned field (FilterExpr) must survive untouched.
	if adjustedSearch.FilterExpr != search.IR.FilterExpr {
		t.Errorf("WebSearch filter_expr overwritten unexpectedly: %q", adjustedSearch.FilterExpr)
	}
}

func TestToolOverlayNilIsNoOp(t *testing.T) {
	var overlay *ToolOverlay
	spec := ir.ToolSpec{Name: "Calculator", Timeout: "2s"}
	if got := overlay.Apply(spec); got.Timeout != "2s" {
		t.Errorf("nil overlay mutated spec: %+v", got)
	}
}
