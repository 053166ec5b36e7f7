package model

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const geminiDefaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"

// GeminiClient is the real Client backend for Google's Gemini models.
type GeminiClient struct {
	apiKey     string
	baseURL    string
	modelID    string
	maxTokens  int
	httpClient *http.Client
}

// NewGeminiClient builds a Client for the given Gemini model ID.
func NewGeminiClient(apiKey, modelID string, maxTokens int) *GeminiClient {
	if maxTokens <= 0 {
		maxTokens = 8192
	}
	return &GeminiClient{
		apiKey:     apiKey,
		baseURL:    geminiDefaultBaseURL,
		modelID:    modelID,
		maxTokens:  maxTokens,
		httpClient: &http.Client{Timeout: 5 * time.Minute},
	}
}

type geminiPart struct {
	Text string `json:"text,omitempty"`
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts"`
}

type geminiGenerationConfig struct {
	Temperature      float64 `json:"temperature,omitempty"`
	MaxOutputTokens  int     `json:"maxOutputTokens,omitempty"`
	ResponseMimeType string  `json:"responseMimeType,omitempty"`
}

type geminiRequest struct {
	Contents          []geminiContent        `json:"contents"`
	SystemInstruction *geminiContent         `json:"systemInstruction,omitempty"`
	GenerationConfig  geminiGenerationConfig `json:"generationConfig,omitempty"`
}

type geminiCandidate struct {
	Content geminiContent `json:"content"`
}

type geminiUsageMetadata struct {
	PromptTokenCount     int `json:"promptTokenCount"`
	CandidatesTokenCount int `json:"candidatesTokenCount"`
	TotalTokenCount      int `json:"totalTokenCount"`
}

type geminiError struct {
	Message string `json:"message"`
}

type geminiResponse struct {
	Candidates    []geminiCandidate   `json:"candidates"`
	UsageMetadata geminiUsageMetadata `json:"usageMetadata"`
	Error         *geminiError        `json:"error"`
}

func (c *GeminiClient) Call(ctx context.Context, systemPrompt, userPrompt string, opts CallOptions) (Response, error) {
	if opts.FailureContext != "" {
		userPrompt = fmt.Sprintf("%s\n\nPrevious attempt failed: %s", userPrompt, opts.FailureContext)
	}

	reqBody := geminiRequest{
		Contents: []geminiContent{{Role: "user", Parts: []geminiPart{{Text: userPrompt}}}},
		GenerationConfig: geminiGenerationConfig{
			Temperature:     1.0,
			MaxOutputTokens: c.maxTokens,
		},
	}
	if systemPrompt != "" {
		reqBody.SystemInstruction = &geminiContent{Parts: []geminiPart{{Text: systemPrompt}}}
	}
	if opts.OutputSchema != nil {
		reqBody.GenerationConfig.ResponseMimeType = "application/json"
	}

	url := fmt.Sprintf("%s/models/%s:generateContent?key=%s", c.baseURL, c.modelID, c.apiKey)

	body, err := json.Marshal(reqBody)
	if err != nil {
		return Response{}, fmt.Errorf("marshal gemini request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return Response{}, fmt.Errorf("create gemini request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return Response{}, fmt.Errorf("send gemini request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return Response{}, fmt.Errorf("read gemini response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return Response{}, fmt.Errorf("gemini api request failed with status %d: %s", resp.StatusCode, string(respBody))
	}

	var parsed geminiResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return Response{}, fmt.Errorf("unmarshal gemini response: %w", err)
	}
	if parsed.Error != nil {
		return Response{}, fmt.Errorf("gemini api error: %s", parsed.Error.Message)
	}

	return normalizeGeminiResponse(parsed, opts), nil
}

func normalizeGeminiResponse(resp geminiResponse, opts CallOptions) Response {
	var content string
	if len(resp.Candidates) > 0 {
		for _, part := range resp.Candidates[0].Content.Parts {
			content += part.Text
		}
	}

	out := Response{
		Content: content,
		Usage: Usage{
			PromptTokens:     resp.UsageMetadata.PromptTokenCount,
			CompletionTokens: resp.UsageMetadata.CandidatesTokenCount,
			TotalTokens:      resp.UsageMetadata.TotalTokenCount,
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
