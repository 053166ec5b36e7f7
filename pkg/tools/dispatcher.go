package tools

import (
	"context"
	"fmt"
	"time"

	"github.com/Bemarking/axon-ai/pkg/ir"
)

// ToolDispatcher resolves and executes a lowered UseTool node against a
// RuntimeToolRegistry, always returning a ToolResult rather than a Go
// error — a dispatch failure (unknown tool, timeout, panic-worthy
// executor error) is reported as ToolResult{Success: false}, exactly as
// the pipeline downstream (validator, retry engine) expects to consume.
type ToolDispatcher struct {
	registry      *RuntimeToolRegistry
	defaultConfig map[string]any
}

// NewToolDispatcher builds a dispatcher over registry using defaultConfig
// as the base configuration merged under any per-call override.
func NewToolDispatcher(registry *RuntimeToolRegistry, defaultConfig map[string]any) *ToolDispatcher {
	if defaultConfig == nil {
		defaultConfig = map[string]any{}
	}
	return &ToolDispatcher{registry: registry, defaultConfig: defaultConfig}
}

// Dispatch executes the tool named by useTool.ToolName with useTool.Argument
// as the query. execContext is merged into the params passed to the tool's
// Execute; configOverride is merged over the dispatcher's default config for
// this call only.
func (d *ToolDispatcher) Dispatch(ctx context.Context, useTool *ir.UseTool, execContext map[string]any, configOverride map[string]any) ToolResult {
	config := mergeMaps(d.defaultConfig, configOverride)

	tool, err := d.registry.Get(useTool.ToolName, config)
	if err != nil {
		return simpleResult(false, nil, fmt.Sprintf("Tool not found: %s", useTool.ToolName))
	}

	timeout := tool.DefaultTimeoutSeconds()
	if timeout <= 0 {
		timeout = 30
	}
	callCtx, cancel := context.WithTimeout(ctx, time.Duration(timeout*float64(time.Second)))
	defer cancel()

	result, err := tool.Execute(callCtx, useTool.Argument, execContext)
	// A cooperative tool reports its own cancellation as a non-nil err;
	// checking callCtx.Err() unconditionally also catches a tool that
	// never observes ctx.Done() and simply runs past the deadline before
	// returning (result, nil) — since Execute is called synchronously,
	// wall-clock time has already exceeded the deadline by the time it
	// returns, so callCtx.Err() is DeadlineExceeded either way.
	if err != nil || callCtx.Err() == context.DeadlineExceeded {
		if callCtx.Err() == context.DeadlineExceeded {
			result = simpleResult(false, nil, fmt.Sprintf("Tool %q timed out after %.1fs", useTool.ToolName, timeout))
		} else {
			result = simpleResult(false, nil, err.Error())
		}
	}

	if result.Metadata == nil {
		result.Metadata = map[string]any{}
	}
	if _, ok := result.Metadata["tool_name"]; !ok {
		result.Metadata["tool_name"] = tool.Name()
	}
	if _, ok := result.Metadata["is_stub"]; !ok {
		result.Metadata["is_stub"] = tool.IsStub()
	}
	return result
}

func mergeMaps(base, override map[string]any) map[string]any {
	out := make(map[string]any, len(base)+len(override))
	for k, v := range base {
		out[k] = v
	}
	for k, v := range override {
		out[k] = v
	}
	return out
}
