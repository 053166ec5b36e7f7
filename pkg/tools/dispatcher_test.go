package tools

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/Bemarking/axon-ai/pkg/ir"
)

// slowStub is a cooperative-cancel tool: it observes ctx.Done() rather
// than blocking past it, the way a real tool making a cancellable
// network/subprocess call would.
type slowStub struct{ timeoutSeconds float64 }

func newSlowStub(config map[string]any) (Tool, error) {
	return &slowStub{timeoutSeconds: configFloat(config, "timeout_seconds", 0.05)}, nil
}

func (t *slowStub) Name() string                   { return "SlowEcho" }
func (t *slowStub) IsStub() bool                   { return true }
func (t *slowStub) DefaultTimeoutSeconds() float64 { return t.timeoutSeconds }

func (t *slowStub) Execute(ctx context.Context, query string, params map[string]any) (ToolResult, error) {
	select {
	case <-ctx.Done():
		return ToolResult{}, ctx.Err()
	case <-time.After(time.Second):
		return simpleResult(true, query, ""), nil
	}
}

func TestDispatchUnknownToolReturnsFailedResult(t *testing.T) {
	r := NewRuntimeToolRegistry()
	d := NewToolDispatcher(r, nil)

	result := d.Dispatch(context.Background(), &ir.UseTool{ToolName: "Ghost", Argument: "x"}, nil, nil)
	if result.Success {
		t.Fatal("expected dispatch to a missing tool to fail")
	}
	if result.Error == "" {
		t.Error("expected a non-empty error message")
	}
}

func TestDispatchSucceedsAndInjectsMetadata(t *testing.T) {
	r := CreateDefaultRegistry(ModeStub, nil)
	d := NewToolDispatcher(r, nil)

	result := d.Dispatch(context.Background(), &ir.UseTool{ToolName: "Calculator", Argument: "3 * 3"}, nil, nil)
	if !result.Success {
		t.Fatalf("expected success, got %+v", result)
	}
	if result.Metadata["tool_name"] != "Calculator" {
		t.Errorf("metadata.tool_name = %v, want Calculator", result.Metadata["tool_name"])
	}
	if result.Metadata["is_stub"] != false {
		t.Errorf("metadata.is_stub = %v, want false", result.Metadata["is_stub"])
	}
}

func TestDispatchMergesConfigOverride(t *testing.T) {
	r := NewRuntimeToolRegistry()
	r.Register("WebSearch", true, fakeConstructor)
	d := NewToolDispatcher(r, map[string]any{"timeout_seconds": 10.0})

	result := d.Dispatch(context.Background(), &ir.UseTool{ToolName: "WebSearch", Argument: "go modules"}, nil,
		map[string]any{"timeout_seconds": 1.0})
	if !result.Success {
		t.Fatalf("expected success, got %+v", result)
	}
}

func TestDispatchTimesOutCooperativeTool(t *testing.T) {
	r := NewRuntimeToolRegistry()
	r.Register("SlowEcho", true, newSlowStub)
	d := NewToolDispatcher(r, nil)

	result := d.Dispatch(context.Background(), &ir.UseTool{ToolName: "SlowEcho", Argument: "hi"}, nil, nil)
	if result.Success {
		t.Fatalf("expected timeout failure, got %+v", result)
	}
	if !strings.Contains(result.Error, "timed out") {
		t.Errorf("error = %q, want substring %q", result.Error, "timed out")
	}
	if result.Metadata["tool_name"] != "SlowEcho" {
		t.Errorf("metadata.tool_name = %v, want SlowEcho", result.Metadata["tool_name"])
	}
}

func TestDispatchStubToolMarksMetadataIsStub(t *testing.T) {
	r := CreateDefaultRegistry(ModeStub, nil)
	d := NewToolDispatcher(r, nil)

	result := d.Dispatch(context.Background(), &ir.UseTool{ToolName: "FileReader", Argument: "notes.md"}, nil, nil)
	if result.Metadata["is_stub"] != true {
		t.Errorf("metadata.is_stub = %v, want true", result.Metadata["is_stub"])
	}
}
