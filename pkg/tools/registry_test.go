package tools

import (
	"context"
	"testing"
)

func fakeConstructor(config map[string]any) (Tool, error) {
	return &webSearchStub{timeout: configFloat(config, "timeout_seconds", 10)}, nil
}

func TestRegisterRejectsEmptyName(t *testing.T) {
	r := NewRuntimeToolRegistry()
	if err := r.Register("", false, fakeConstructor); err == nil {
		t.Fatal("expected error for empty tool name")
	}
}

func TestGetUnknownToolListsAvailableNames(t *testing.T) {
	r := NewRuntimeToolRegistry()
	r.Register("Calculator", false, newCalculatorTool)

	_, err := r.Get("Nonexistent", nil)
	if err == nil {
		t.Fatal("expected error for unregistered tool")
	}
}

func TestGetCachesInstanceByConfig(t *testing.T) {
	r := NewRuntimeToolRegistry()
	r.Register("WebSearch", true, fakeConstructor)

	a, err := r.Get("WebSearch", map[string]any{"timeout_seconds": 5.0})
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	b, err := r.Get("WebSearch", map[string]any{"timeout_seconds": 5.0})
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if a != b {
		t.Error("expected identical config to return the cached instance")
	}

	c, err := r.Get("WebSearch", map[string]any{"timeout_seconds": 9.0})
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if a == c {
		t.Error("expected different config to construct a new instance")
	}
}

func TestReplaceEvictsCachedInstances(t *testing.T) {
	r := NewRuntimeToolRegistry()
	r.Register("WebSearch", true, fakeConstructor)
	first, _ := r.Get("WebSearch", nil)

	if err := r.Replace("WebSearch", false, fakeConstructor); err != nil {
		t.Fatalf("Replace: %v", err)
	}
	second, _ := r.Get("WebSearch", nil)
	if first == second {
		t.Error("expected Replace to evict the cached instance")
	}
	if r.ListTools()["WebSearch"] {
		t.Error("expected IsStub to reflect the replaced registration")
	}
}

func TestReplaceUnregisteredToolErrors(t *testing.T) {
	r := NewRuntimeToolRegistry()
	if err := r.Replace("Ghost", false, fakeConstructor); err == nil {
		t.Fatal("expected error replacing an unregistered tool")
	}
}

func TestListToolsAndToolNames(t *testing.T) {
	r := CreateDefaultRegistry(ModeStub, nil)

	names := r.ToolNames()
	if len(names) != 8 {
		t.Fatalf("got %d tool names, want 8", len(names))
	}
	listed := r.ListTools()
	if !listed["WebSearch"] {
		t.Error("expected WebSearch to be registered as a stub in ModeStub")
	}
	if listed["Calculator"] {
		t.Error("expected Calculator to be registered as non-stub")
	}
}

func TestClearRemovesEverything(t *testing.T) {
	r := CreateDefaultRegistry(ModeStub, nil)
	r.Clear()
	if r.Count() != 0 {
		t.Fatalf("Count after Clear = %d, want 0", r.Count())
	}
	if _, err := r.Get("Calculator", nil); err == nil {
		t.Fatal("expected Get to fail after Clear")
	}
}

func TestDefaultRegistryCalculatorEvaluatesExpression(t *testing.T) {
	r := CreateDefaultRegistry(ModeStub, nil)
	tool, err := r.Get("Calculator", nil)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	result, err := tool.Execute(context.Background(), "2 + 2", nil)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if !result.Success || result.Data != "4" {
		t.Errorf("result = %+v, want Data=4", result)
	}
}
