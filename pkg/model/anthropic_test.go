package model

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestAnthropicClientCallNormalizesResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("x-api-key") != "test-key" {
			t.Errorf("x-api-key header = %q", r.Header.Get("x-api-key"))
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(anthropicResponse{
			Content: []anthropicContentBlock{{Type: "text", Text: "the answer is 4"}},
			Model:   "claude-sonnet-4-20250514",
			Usage:   anthropicUsage{InputTokens: 12, OutputTokens: 4},
		})
	}))
	defer server.Close()

	client := NewAnthropicClient("test-key", "claude-sonnet-4-20250514", 0)
	client.apiURL = server.URL

	resp, err := client.Call(context.Background(), "You are helpful.", "What is 2+2?", CallOptions{})
	if err != nil {
		t.Fatalf("Call: %v", err)
	}
	if resp.Content != "the answer is 4" {
		t.Errorf("content = %q", resp.Content)
	}
	if resp.Usage.TotalTokens != 16 {
		t.Errorf("total tokens = %d, want 16", resp.Usage.TotalTokens)
	}
}

func TestAnthropicClientCallSurfacesAPIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		json.NewEncoder(w).Encode(anthropicErrorResponse{
			Error: struct {
				Type    string `json:"type"`
				Message string `json:"message"`
			}{Type: "rate_limit_error", Message: "too many requests"},
		})
	}))
	defer server.Close()

	client := NewAnthropicClient("test-key", "claude-sonnet-4-20250514", 0)
	client.apiURL = server.URL

	_, err := client.Call(context.Background(), "sys", "user", CallOptions{})
	if err == nil {
		t.Fatal("expected an error for a non-200 response")
	}
}

func TestAnthropicClientParsesToolUse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(anthropicResponse{
			Content: []anthropicContentBlock{
				{Type: "tool_use", ID: "call_1", Name: "Calculator", Input: map[string]any{"expression": "2+2"}},
			},
		})
	}))
	defer server.Close()

	client := NewAnthropicClient("test-key", "claude-sonnet-4-20250514", 0)
	client.apiURL = server.URL

	resp, err := client.Call(context.Background(), "sys", "user", CallOptions{})
	if err != nil {
		t.Fatalf("Call: %v", err)
	}
	if len(resp.ToolCalls) != 1 || resp.ToolCalls[0].Name != "Calculator" {
		t.Errorf("tool calls = %+v", resp.ToolCalls)
	}
}

func TestAnthropicClientParsesStructuredOutputWhenSchemaRequested(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(anthropicResponse{
			Content: []anthropicContentBlock{{Type: "text", Text: `{"risk": "low", "confidence": 0.75}`}},
		})
	}))
	defer server.Close()

	client := NewAnthropicClient("test-key", "claude-sonnet-4-20250514", 0)
	client.apiURL = server.URL

	resp, err := client.Call(context.Background(), "sys", "user", CallOptions{OutputSchema: map[string]any{"type": "object"}})
	if err != nil {
		t.Fatalf("Call: %v", err)
	}
	if resp.Structured["risk"] != "low" {
		t.Errorf("structured = %+v", resp.Structured)
	}
	if resp.Confidence == nil || *resp.Confidence != 0.75 {
		t.Errorf("confidence = %v", resp.Confidence)
	}
}
