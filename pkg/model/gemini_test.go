package model

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestGeminiClientCallNormalizesResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(geminiResponse{
			Candidates: []geminiCandidate{{
				Content: geminiContent{Parts: []geminiPart{{Text: "the answer is 4"}}},
			}},
			UsageMetadata: geminiUsageMetadata{PromptTokenCount: 10, CandidatesTokenCount: 4, TotalTokenCount: 14},
		})
	}))
	defer server.Close()

	client := NewGeminiClient("test-key", "gemini-3-flash-preview", 0)
	client.baseURL = server.URL

	resp, err := client.Call(context.Background(), "You are helpful.", "What is 2+2?", CallOptions{})
	if err != nil {
		t.Fatalf("Call: %v", err)
	}
	if resp.Content != "the answer is 4" {
		t.Errorf("content = %q", resp.Content)
	}
	if resp.Usage.TotalTokens != 14 {
		t.Errorf("total tokens = %d, want 14", resp.Usage.TotalTokens)
	}
}

func TestGeminiClientCallSurfacesAPIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error": {"message": "invalid request"}}`))
	}))
	defer server.Close()

	client := NewGeminiClient("test-key", "gemini-3-flash-preview", 0)
	client.baseURL = server.URL

	_, err := client.Call(context.Background(), "sys", "user", CallOptions{})
	if err == nil {
		t.Fatal("expected an error for a non-200 response")
	}
}

func TestGeminiClientParsesStructuredOutputWhenSchemaRequested(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(geminiResponse{
			Candidates: []geminiCandidate{{
				Content: geminiContent{Parts: []geminiPart{{Text: `{"risk": "low", "confidence": 0.6}`}}},
			}},
		})
	}))
	defer server.Close()

	client := NewGeminiClient("test-key", "gemini-3-flash-preview", 0)
	client.baseURL = server.URL

	resp, err := client.Call(context.Background(), "sys", "user", CallOptions{OutputSchema: map[string]any{"type": "object"}})
	if err != nil {
		t.Fatalf("Call: %v", err)
	}
	if resp.Structured["risk"] != "low" {
		t.Errorf("structured = %+v", resp.Structured)
	}
	if resp.Confidence == nil || *resp.Confidence != 0.6 {
		t.Errorf("confidence = %v", resp.Confidence)
	}
}
