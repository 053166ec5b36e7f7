package tools

import (
	"context"
	"fmt"
	"strings"
	"sync"

	sdkclient "github.com/mark3labs/mcp-go/client"
	sdkmcp "github.com/mark3labs/mcp-go/mcp"
)

// mcpTool backs a WebSearch or FileReader tool with a real MCP server
// over stdio, instead of simulating a response. Config keys:
//
//	command        - the MCP server executable (required)
//	args           - []string of extra arguments
//	env            - []string of extra environment variables
//	remote_tool    - the tool name to invoke on the connected server
//	timeout_seconds
type mcpTool struct {
	name       string
	remoteTool string
	command    string
	args       []string
	env        []string
	timeout    float64

	mu    sync.Mutex
	inner sdkclient.MCPClient
}

func newMCPBackedTool(axonName string, config map[string]any) (Tool, error) {
	if err := requireConfigKey(config, "command"); err != nil {
		return nil, fmt.Errorf("mcp tool %q: %w", axonName, err)
	}
	command, _ := config["command"].(string)

	var args []string
	if raw, ok := config["args"].([]string); ok {
		args = raw
	}
	var env []string
	if raw, ok := config["env"].([]string); ok {
		env = raw
	}

	remoteTool := axonName
	if v, ok := config["remote_tool"].(string); ok && v != "" {
		remoteTool = v
	}

	return &mcpTool{
		name:       axonName,
		remoteTool: remoteTool,
		command:    command,
		args:       args,
		env:        env,
		timeout:    configFloat(config, "timeout_seconds", 10),
	}, nil
}

func newWebSearchMCPTool(config map[string]any) (Tool, error) { return newMCPBackedTool("WebSearch", config) }
func newFileReaderMCPTool(config map[string]any) (Tool, error) {
	return newMCPBackedTool("FileReader", config)
}

func (t *mcpTool) Name() string                   { return t.name }
func (t *mcpTool) IsStub() bool                   { return false }
func (t *mcpTool) DefaultTimeoutSeconds() float64 { return t.timeout }

// connect lazily starts the MCP server subprocess and performs the
// initialize handshake, exactly once per tool instance.
func (t *mcpTool) connect(ctx context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.inner != nil {
		return nil
	}

	cli, err := sdkclient.NewStdioMCPClient(t.command, t.env, t.args...)
	if err != nil {
		return fmt.Errorf("start mcp server %q: %w", t.command, err)
	}

	_, err = cli.Initialize(ctx, sdkmcp.InitializeRequest{
		Params: sdkmcp.InitializeParams{
			ProtocolVersion: sdkmcp.LATEST_PROTOCOL_VERSION,
			ClientInfo: sdkmcp.Implementation{
				Name:    "axon",
				Version: "0.1.0",
			},
		},
	})
	if err != nil {
		_ = cli.Close()
		return fmt.Errorf("initialize mcp server %q: %w", t.command, err)
	}

	t.inner = cli
	return nil
}

func (t *mcpTool) Execute(ctx context.Context, query string, params map[string]any) (ToolResult, error) {
	if err := t.connect(ctx); err != nil {
		return simpleResult(false, nil, err.Error()), nil
	}

	t.mu.Lock()
	inner := t.inner
	t.mu.Unlock()

	args := make(map[string]any, len(params)+1)
	for k, v := range params {
		args[k] = v
	}
	args["query"] = query

	req := sdkmcp.CallToolRequest{}
	req.Params.Name = t.remoteTool
	req.Params.Arguments = args

	result, err := inner.CallTool(ctx, req)
	if err != nil {
		return simpleResult(false, nil, fmt.Sprintf("mcp call to %q failed: %v", t.remoteTool, err)), nil
	}

	var parts []string
	for _, content := range result.Content {
		if tc, ok := content.(sdkmcp.TextContent); ok {
			parts = append(parts, tc.Text)
		}
	}
	text := strings.Join(parts, "\n")

	if result.IsError {
		return simpleResult(false, nil, fmt.Sprintf("tool %q returned error: %s", t.remoteTool, text)), nil
	}

	return ToolResult{
		Success: true,
		Data:    text,
		Metadata: map[string]any{
			"remote_tool": t.remoteTool,
			"is_stub":     false,
		},
	}, nil
}

// Close releases the MCP subprocess, if one was started.
func (t *mcpTool) Close() error {
	t.mu.Lock()
	inner := t.inner
	t.inner = nil
	t.mu.Unlock()

	if inner == nil {
		return nil
	}
	return inner.Close()
}
