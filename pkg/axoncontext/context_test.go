package axoncontext

import "testing"

func TestSetAndGetStepResult(t *testing.T) {
	m := New("You are LegalExpert.")
	if err := m.SetStepResult("extract", map[string]any{"parties": []any{"Acme"}}); err != nil {
		t.Fatalf("SetStepResult: %v", err)
	}
	result, err := m.GetStepResult("extract")
	if err != nil {
		t.Fatalf("GetStepResult: %v", err)
	}
	if result.(map[string]any)["parties"].([]any)[0] != "Acme" {
		t.Errorf("unexpected result: %v", result)
	}
}

func TestGetStepResultMissingErrors(t *testing.T) {
	m := New("")
	if _, err := m.GetStepResult("missing"); err == nil {
		t.Fatal("expected error for missing step result")
	}
}

func TestSetStepResultEmptyNameErrors(t *testing.T) {
	m := New("")
	if err := m.SetStepResult("", "x"); err == nil {
		t.Fatal("expected error for empty step name")
	}
}

func TestCompletedStepsPreservesInsertionOrder(t *testing.T) {
	m := New("")
	m.SetStepResult("b", 1)
	m.SetStepResult("a", 2)
	m.SetStepResult("b", 3)
	got := m.CompletedSteps()
	want := []string{"b", "a"}
	if len(got) != len(want) || got[0] != want[0] || got[1] != want[1] {
		t.Errorf("completed steps = %v, want %v", got, want)
	}
}

func TestVariableBindings(t *testing.T) {
	m := New("")
	if err := m.SetVariable("document", "contract text"); err != nil {
		t.Fatalf("SetVariable: %v", err)
	}
	if !m.HasVariable("document") {
		t.Error("expected HasVariable to be true")
	}
	v, err := m.GetVariable("document")
	if err != nil || v != "contract text" {
		t.Errorf("GetVariable = %v, %v", v, err)
	}
	if _, err := m.GetVariable("missing"); err == nil {
		t.Fatal("expected error for missing variable")
	}
}

func TestAppendMessageValidatesRoleAndContent(t *testing.T) {
	m := New("")
	if err := m.AppendMessage("user", "Analyze this contract."); err != nil {
		t.Fatalf("AppendMessage: %v", err)
	}
	if err := m.AppendMessage("narrator", "x"); err == nil {
		t.Fatal("expected error for invalid role")
	}
	if err := m.AppendMessage("user", ""); err == nil {
		t.Fatal("expected error for empty content")
	}
	if m.MessageCount() != 1 {
		t.Errorf("message count = %d, want 1", m.MessageCount())
	}
}

func TestSnapshotDeepCopiesMutableState(t *testing.T) {
	m := New("")
	m.SetStepResult("extract", map[string]any{"n": float64(1)})
	snap := m.Snapshot()

	m.SetStepResult("extract", map[string]any{"n": float64(2)})

	if snap.StepResults["extract"].(map[string]any)["n"] != float64(1) {
		t.Errorf("snapshot was mutated by later writes: %v", snap.StepResults)
	}
}

func TestResetClearsStateButKeepsSystemPrompt(t *testing.T) {
	m := New("You are LegalExpert.")
	m.SetStepResult("extract", 1)
	m.SetVariable("document", "x")
	m.AppendMessage("user", "hi")
	m.SetCurrentStep("extract")

	m.Reset()

	if m.SystemPrompt() != "You are LegalExpert." {
		t.Error("reset should preserve the system prompt")
	}
	if len(m.CompletedSteps()) != 0 || len(m.Variables()) != 0 || m.MessageCount() != 0 || m.CurrentStep() != "" {
		t.Error("reset should clear all other state")
	}
}
