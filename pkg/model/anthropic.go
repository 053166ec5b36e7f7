package model

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	anthropicAPIURL     = "https://api.anthropic.com/v1/messages"
	anthropicAPIVersion = "2023-06-01"
)

// AnthropicClient is the real Client backend for Claude models, talking
// directly to the Messages API over HTTP.
type AnthropicClient struct {
	apiKey     string
	modelID    string
	maxTokens  int
	apiURL     string
	httpClient *http.Client
}

// NewAnthropicClient builds a Client for the given model ID (e.g.
// "claude-sonnet-4-20250514"). maxTokens defaults to 4096 when zero.
func NewAnthropicClient(apiKey, modelID string, maxTokens int) *AnthropicClient {
	if maxTokens <= 0 {
		maxTokens = 4096
	}
	return &AnthropicClient{
		apiKey:     apiKey,
		modelID:    modelID,
		maxTokens:  maxTokens,
		apiURL:     anthropicAPIURL,
		httpClient: &http.Client{Timeout: 5 * time.Minute},
	}
}

type anthropicRequest struct {
	Model       string             `json:"model"`
	Messages    []anthropicMessage `json:"messages"`
	System      string             `json:"system,omitempty"`
	MaxTokens   int                `json:"max_tokens"`
	Temperature float64            `json:"temperature,omitempty"`
	Tools       []anthropicTool    `json:"tools,omitempty"`
}

type anthropicMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type anthropicTool struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	InputSchema map[string]any `json:"input_schema"`
}

type anthropicContentBlock struct {
	Type  string `json:"type"`
	Text  string `json:"text,omitempty"`
	ID    string `json:"id,omitempty"`
	Name  string `json:"name,omitempty"`
	Input any    `json:"input,omitempty"`
}

type anthropicResponse struct {
	Content []anthropicContentBlock `json:"content"`
	Model   string                  `json:"model"`
	Usage   anthropicUsage          `json:"usage"`
}

type anthropicUsage struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
}

type anthropicErrorResponse struct {
	Error struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}

func (c *AnthropicClient) Call(ctx context.Context, systemPrompt, userPrompt string, opts CallOptions) (Response, error) {
	req := anthropicRequest{
		Model:     c.modelID,
		MaxTokens: c.maxTokens,
		System:    systemPrompt,
		Messages:  []anthropicMessage{{Role: "user", Content: userPrompt}},
	}
	if opts.FailureContext != "" {
		req.Messages[0].Content = fmt.Sprintf("%s\n\nPrevious attempt failed: %s", userPrompt, opts.FailureContext)
	}
	for _, decl := range opts.Tools {
		name, _ := decl["name"].(string)
		desc, _ := decl["description"].(string)
		schema, _ := decl["input_schema"].(map[string]any)
		if schema == nil {
			schema = map[string]any{"type": "object", "properties": map[string]any{}}
		}
		req.Tools = append(req.Tools, anthropicTool{Name: name, Description: desc, InputSchema: schema})
	}

	body, err := json.Marshal(req)
	if err != nil {
		return Response{}, fmt.Errorf("marshal anthropic request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL, bytes.NewReader(body))
	if err != nil {
		return Response{}, fmt.Errorf("create anthropic request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-api-key", c.apiKey)
	httpReq.Header.Set("anthropic-version", anthropicAPIVersion)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return Response{}, fmt.Errorf("send anthropic request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return Response{}, fmt.Errorf("read anthropic response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var apiErr anthropicErrorResponse
		if jsonErr := json.Unmarshal(respBody, &apiErr); jsonErr == nil && apiErr.Error.Message != "" {
			return Response{}, fmt.Errorf("anthropic api error (%d %s): %s", resp.StatusCode, apiErr.Error.Type, apiErr.Error.Message)
		}
		return Response{}, fmt.Errorf("anthropic api error (%d): %s", resp.StatusCode, strings.TrimSpace(string(respBody)))
	}

	var anthropicResp anthropicResponse
	if err := json.Unmarshal(respBody, &anthropicResp); err != nil {
		return Response{}, fmt.Errorf("unmarshal anthropic response: %w", err)
	}

	return normalizeAnthropicResponse(anthropicResp, opts), nil
}

func normalizeAnthropicResponse(resp anthropicResponse, opts CallOptions) Response {
	var text strings.Builder
	var toolCalls []ToolCall
	for _, block := range resp.Content {
		switch block.Type {
		case "text":
			text.WriteString(block.Text)
		case "tool_use":
			args, _ := block.Input.(map[string]any)
			toolCalls = append(toolCalls, ToolCall{ID: block.ID, Name: block.Name, Arguments: args})
		}
	}

	out := Response{
		Content:   text.String(),
		ToolCalls: toolCalls,
		Usage: Usage{
			PromptTokens:     resp.Usage.InputTokens,
			CompletionTokens: resp.Usage.OutputTokens,
			TotalTokens:      resp.Usage.InputTokens + resp.Usage.OutputTokens,
		},
		Raw: resp,
	}

	if opts.OutputSchema != nil {
		if structured, confidence, ok := tryParseStructured(out.Content); ok {
			out.Structured = structured
			out.Confidence = confidence
		}
	}
	return out
}

// tryParseStructured attempts to parse the model's text content as a
// JSON object, extracting a top-level "confidence" field when present.
// Models asked for structured output are expected to respond with bare
// JSON; a model that wraps it in prose fails this parse and the caller
// falls back to unstructured content.
func tryParseStructured(content string) (map[string]any, *float64, bool) {
	trimmed := strings.TrimSpace(content)
	if !strings.HasPrefix(trimmed, "{") {
		return nil, nil, false
	}
	var parsed map[string]any
	if err := json.Unmarshal([]byte(trimmed), &parsed); err != nil {
		return nil, nil, false
	}
	var confidence *float64
	if v, ok := parsed["confidence"]; ok {
		if f, ok := v.(float64); ok {
			confidence = &f
		}
	}
	return parsed, confidence, true
}
