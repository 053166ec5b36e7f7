package tools

import (
	"context"
	"fmt"
)

// ToolResult is the standardized result returned by every AXON tool
// execution.
type ToolResult struct {
	Success  bool
	Data     any
	Error    string
	Metadata map[string]any
}

// Tool is the runtime contract every AXON tool implements, whether a
// Phase 4 stub or a real backend. Compile time (ir.ToolSpec) defines the
// parameter schema and metadata; this interface defines the execution.
type Tool interface {
	Name() string
	IsStub() bool
	DefaultTimeoutSeconds() float64
	Execute(ctx context.Context, query string, params map[string]any) (ToolResult, error)
}

// Constructor builds a Tool instance from a config map. Constructors are
// what get registered, not instances — Go has no notion of reading a
// class-level constant without instantiating, so IsStub/Name are read
// from a lightweight descriptor stored alongside the constructor instead
// (see the registration struct kept per name in RuntimeToolRegistry).
type Constructor func(config map[string]any) (Tool, error)

func simpleResult(success bool, data any, errMsg string) ToolResult {
	return ToolResult{Success: success, Data: data, Error: errMsg, Metadata: map[string]any{}}
}

func requireConfigKey(config map[string]any, key string) error {
	if _, ok := config[key]; !ok {
		return fmt.Errorf("missing required config key %q", key)
	}
	return nil
}
