package model

import "testing"

func TestResponseToDictOmitsUnsetFields(t *testing.T) {
	r := Response{Content: "hello"}
	d := r.ToDict()
	if d["content"] != "hello" {
		t.Errorf("content = %v, want hello", d["content"])
	}
	if _, ok := d["structured"]; ok {
		t.Error("did not expect 'structured' key when Structured is nil")
	}
	if _, ok := d["confidence"]; ok {
		t.Error("did not expect 'confidence' key when Confidence is nil")
	}
}

func TestResponseToDictIncludesSetFields(t *testing.T) {
	conf := 0.92
	r := Response{
		Content:    "hello",
		Structured: map[string]any{"risk": 0.2},
		ToolCalls:  []ToolCall{{Name: "Calculator"}},
		Confidence: &conf,
		Usage:      Usage{PromptTokens: 10, CompletionTokens: 5, TotalTokens: 15},
	}
	d := r.ToDict()
	if d["structured"] == nil {
		t.Error("expected 'structured' key to be present")
	}
	if d["confidence"] != 0.92 {
		t.Errorf("confidence = %v, want 0.92", d["confidence"])
	}
	if d["usage"] == nil {
		t.Error("expected 'usage' key to be present")
	}
}

func TestTryParseStructuredExtractsConfidence(t *testing.T) {
	structured, confidence, ok := tryParseStructured(`{"risk": "low", "confidence": 0.8}`)
	if !ok {
		t.Fatal("expected structured parse to succeed")
	}
	if structured["risk"] != "low" {
		t.Errorf("risk = %v, want low", structured["risk"])
	}
	if confidence == nil || *confidence != 0.8 {
		t.Errorf("confidence = %v, want 0.8", confidence)
	}
}

func TestTryParseStructuredRejectsProse(t *testing.T) {
	_, _, ok := tryParseStructured("The risk is low.")
	if ok {
		t.Fatal("expected prose content to fail structured parse")
	}
}
