package tools

import (
	"context"
	"testing"
)

func TestWebSearchStubCapsMaxResults(t *testing.T) {
	tool, _ := newWebSearchStub(nil)
	result, err := tool.Execute(context.Background(), "golang concurrency", map[string]any{"max_results": 50})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	results, ok := result.Data.([]map[string]any)
	if !ok || len(results) != 10 {
		t.Fatalf("got %d results, want 10 (capped)", len(results))
	}
	if result.Metadata["warning"] == "" {
		t.Error("expected a stub warning in metadata")
	}
}

func TestFileReaderStubVariesContentByExtension(t *testing.T) {
	tool, _ := newFileReaderStub(nil)

	result, err := tool.Execute(context.Background(), "report.json", nil)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	data := result.Data.(map[string]any)
	if data["mime_type"] != "application/json" {
		t.Errorf("mime_type = %v, want application/json", data["mime_type"])
	}

	result, _ = tool.Execute(context.Background(), "notes.txt", nil)
	data = result.Data.(map[string]any)
	if data["mime_type"] != "text/plain" {
		t.Errorf("mime_type = %v, want text/plain", data["mime_type"])
	}
}

func TestPDFExtractorStubReturnsThreePages(t *testing.T) {
	tool, _ := newPDFExtractorStub(nil)
	result, err := tool.Execute(context.Background(), "contract.pdf", nil)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	data := result.Data.(map[string]any)
	if data["total_pages"] != 3 {
		t.Errorf("total_pages = %v, want 3", data["total_pages"])
	}
}

func TestImageAnalyzerStubReturnsLabels(t *testing.T) {
	tool, _ := newImageAnalyzerStub(nil)
	result, err := tool.Execute(context.Background(), "photo.jpg", nil)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	data := result.Data.(map[string]any)
	labels := data["labels"].([]map[string]any)
	if len(labels) != 3 {
		t.Fatalf("got %d labels, want 3", len(labels))
	}
}

func TestAPICallStubEchoesMethodAndURL(t *testing.T) {
	tool, _ := newAPICallStub(nil)
	result, err := tool.Execute(context.Background(), "https://api.example.com/v1", map[string]any{"method": "POST"})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	data := result.Data.(map[string]any)
	body := data["body"].(map[string]any)
	if body["method"] != "POST" || body["url"] != "https://api.example.com/v1" {
		t.Errorf("body = %+v", body)
	}
}

func TestCodeExecutorStubNeverActuallyExecutes(t *testing.T) {
	tool, _ := newCodeExecutorStub(nil)
	result, err := tool.Execute(context.Background(), "print(1)", map[string]any{"language": "python"})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	data := result.Data.(map[string]any)
	if data["exit_code"] != 0 {
		t.Errorf("exit_code = %v, want 0", data["exit_code"])
	}
	if result.Metadata["warning"] == "" {
		t.Error("expected a stub warning noting code was not executed")
	}
}
