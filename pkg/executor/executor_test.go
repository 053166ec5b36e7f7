package executor

import (
	"context"
	"testing"

	"github.com/Bemarking/axon-ai/pkg/backend"
	"github.com/Bemarking/axon-ai/pkg/model"
	"github.com/Bemarking/axon-ai/pkg/tools"
)

func unitWithSteps(steps ...backend.CompiledStep) backend.CompiledExecutionUnit {
	return backend.CompiledExecutionUnit{
		FlowName:     "test_flow",
		SystemPrompt: "You are a test persona.",
		Steps:        steps,
		Effort:       "standard",
	}
}

func programWith(units ...backend.CompiledExecutionUnit) *backend.CompiledProgram {
	return &backend.CompiledProgram{BackendName: "anthropic", ExecutionUnits: units}
}

func TestExecuteRunsStepsInOrderAndSubstitutesPriorOutput(t *testing.T) {
	client := model.NewMockClient()
	client.QueueResponse(model.Response{Content: "first output"})
	client.QueueResponse(model.Response{Content: "used: first output"})

	exec := New(client)
	program := programWith(unitWithSteps(
		backend.CompiledStep{StepName: "step_one", UserPrompt: "do the first thing"},
		backend.CompiledStep{StepName: "step_two", UserPrompt: "build on {{step_one}}"},
	))

	result, err := exec.Execute(context.Background(), program)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if !result.Success {
		t.Fatalf("expected success, got %+v", result.UnitResults)
	}
	if len(result.UnitResults) != 1 || len(result.UnitResults[0].StepResults) != 2 {
		t.Fatalf("unexpected unit/step shape: %+v", result.UnitResults)
	}

	calls := client.Calls()
	if len(calls) != 2 {
		t.Fatalf("got %d model calls, want 2", len(calls))
	}
	if calls[1].UserPrompt != "build on first output" {
		t.Errorf("step_two prompt = %q, want substitution applied", calls[1].UserPrompt)
	}
}

func TestExecuteToolStepDispatchesAndSkipsValidation(t *testing.T) {
	client := model.NewMockClient()
	registry := tools.CreateDefaultRegistry(tools.ModeStub, nil)
	dispatcher := tools.NewToolDispatcher(registry, nil)

	exec := New(client, WithToolDispatcher(dispatcher))
	program := programWith(unitWithSteps(backend.CompiledStep{
		StepName: "calc_step",
		Metadata: map[string]any{
			"use_tool": map[string]any{"tool_name": "Calculator", "argument": "2 + 2"},
		},
	}))

	result, err := exec.Execute(context.Background(), program)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if !result.Success {
		t.Fatalf("expected success, got %+v", result.UnitResults[0])
	}
	stepResult := result.UnitResults[0].StepResults[0]
	if stepResult.Validation != nil {
		t.Errorf("tool steps should skip validation, got %+v", stepResult.Validation)
	}
	if stepResult.Response == nil || stepResult.Response.Content == "" {
		t.Errorf("expected tool response content, got %+v", stepResult.Response)
	}
	if len(client.Calls()) != 0 {
		t.Errorf("tool step should not call the model client, got %d calls", len(client.Calls()))
	}
}

func TestExecuteToolStepWithoutDispatcherErrors(t *testing.T) {
	client := model.NewMockClient()
	exec := New(client)
	program := programWith(unitWithSteps(backend.CompiledStep{
		StepName: "needs_tool",
		Metadata: map[string]any{
			"use_tool": map[string]any{"tool_name": "Calculator", "argument": "1 + 1"},
		},
	}))

	result, err := exec.Execute(context.Background(), program)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if result.Success {
		t.Fatal("expected unit failure when no tool dispatcher is configured")
	}
	if result.UnitResults[0].Error == "" {
		t.Error("expected a non-empty error message on the failed unit")
	}
}

func TestExecuteRetriesStepUntilSuccess(t *testing.T) {
	client := model.NewMockClient()
	attempt := 0
	client.ResponseFn = func(systemPrompt, userPrompt string, opts model.CallOptions) (model.Response, error) {
		attempt++
		if attempt < 2 {
			return model.Response{}, errAttemptFailed
		}
		return model.Response{Content: "succeeded on retry"}, nil
	}

	exec := New(client)
	program := programWith(unitWithSteps(backend.CompiledStep{
		StepName:   "flaky_step",
		UserPrompt: "try this",
		Metadata: map[string]any{
			"refine": map[string]any{"max_attempts": 3, "backoff": "none"},
		},
	}))

	result, err := exec.Execute(context.Background(), program)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if !result.Success {
		t.Fatalf("expected eventual success, got %+v", result.UnitResults[0])
	}
	stepResult := result.UnitResults[0].StepResults[0]
	if stepResult.RetryInfo == nil || len(stepResult.RetryInfo.Attempts) != 2 {
		t.Fatalf("expected 2 recorded attempts, got %+v", stepResult.RetryInfo)
	}
	if stepResult.Response.Content != "succeeded on retry" {
		t.Errorf("response content = %q", stepResult.Response.Content)
	}
}

func TestExecuteValidatesRequiredFieldsOnProbeOutput(t *testing.T) {
	client := model.NewMockClient()
	client.QueueResponse(model.Response{Structured: map[string]any{"name": "Ada"}})

	exec := New(client)
	program := programWith(unitWithSteps(backend.CompiledStep{
		StepName:   "probe_person",
		UserPrompt: "extract fields",
		OutputSchema: map[string]any{
			"type":     "object",
			"required": []string{"name", "age"},
		},
		Metadata: map[string]any{"required_fields": []string{"name", "age"}},
	}))

	result, err := exec.Execute(context.Background(), program)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if result.Success {
		t.Fatal("expected failure: response is missing the required 'age' field")
	}
}

func TestExtractRefineConfigDefaultsWhenAbsent(t *testing.T) {
	if cfg := extractRefineConfig(backend.CompiledStep{}); cfg != nil {
		t.Errorf("expected nil refine config for a step with no refine metadata, got %+v", cfg)
	}
}

func TestExtractRefineConfigReadsOverrides(t *testing.T) {
	step := backend.CompiledStep{Metadata: map[string]any{
		"refine": map[string]any{
			"max_attempts":  5,
			"backoff":       "linear",
			"on_exhaustion": "skip",
		},
	}}
	cfg := extractRefineConfig(step)
	if cfg == nil {
		t.Fatal("expected a non-nil refine config")
	}
	if cfg.MaxAttempts != 5 || cfg.Backoff != "linear" || cfg.OnExhaustion != "skip" {
		t.Errorf("config = %+v", cfg)
	}
}

var errAttemptFailed = attemptError{}

type attemptError struct{}

func (attemptError) Error() string { return "attempt failed" }
