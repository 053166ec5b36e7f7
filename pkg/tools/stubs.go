package tools

import (
	"context"
	"fmt"
	"strings"
)

// The stub tools below simulate realistic-looking responses without
// making any real call. They exist so an AXON program can be compiled,
// run, and traced end to end before real backends (API keys, sandboxes,
// MCP servers) are wired in. Every stub result carries metadata.warning
// so a run trace makes it obvious no real work happened.

func paramString(params map[string]any, key, fallback string) string {
	if v, ok := params[key]; ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return fallback
}

func paramInt(params map[string]any, key string, fallback int) int {
	if v, ok := params[key]; ok {
		switch n := v.(type) {
		case int:
			return n
		case float64:
			return int(n)
		}
	}
	return fallback
}

// webSearchStub simulates a web search engine.
type webSearchStub struct{ timeout float64 }

func newWebSearchStub(config map[string]any) (Tool, error) {
	return &webSearchStub{timeout: configFloat(config, "timeout_seconds", 10)}, nil
}

func (t *webSearchStub) Name() string                   { return "WebSearch" }
func (t *webSearchStub) IsStub() bool                   { return true }
func (t *webSearchStub) DefaultTimeoutSeconds() float64 { return t.timeout }

func (t *webSearchStub) Execute(ctx context.Context, query string, params map[string]any) (ToolResult, error) {
	maxResults := paramInt(params, "max_results", 5)
	if maxResults > 10 {
		maxResults = 10
	}
	results := make([]map[string]any, 0, maxResults)
	for i := 0; i < maxResults; i++ {
		results = append(results, map[string]any{
			"title":          fmt.Sprintf("Result %d for: %s", i+1, query),
			"url":            fmt.Sprintf("https://example.com/search/%d", i+1),
			"snippet":        fmt.Sprintf("This is a simulated search result about %q. Contains relevant information from a trusted source.", query),
			"source":         "example.com",
			"published_date": "2026-02-01",
		})
	}
	return ToolResult{
		Success: true,
		Data:    results,
		Metadata: map[string]any{
			"query":         query,
			"total_results": len(results),
			"is_stub":       true,
			"warning":       "Simulated data from WebSearch stub",
		},
	}, nil
}

// fileReaderStub simulates reading a local or remote file.
type fileReaderStub struct{ timeout float64 }

func newFileReaderStub(config map[string]any) (Tool, error) {
	return &fileReaderStub{timeout: configFloat(config, "timeout_seconds", 5)}, nil
}

func (t *fileReaderStub) Name() string                   { return "FileReader" }
func (t *fileReaderStub) IsStub() bool                   { return true }
func (t *fileReaderStub) DefaultTimeoutSeconds() float64 { return t.timeout }

func (t *fileReaderStub) Execute(ctx context.Context, query string, params map[string]any) (ToolResult, error) {
	path := strings.TrimSpace(query)
	encoding := paramString(params, "encoding", "utf-8")

	var content, mime string
	switch {
	case strings.HasSuffix(path, ".json"), strings.HasSuffix(path, ".jsonl"):
		content = `{"key": "simulated_value", "items": [1, 2, 3]}`
		mime = "application/json"
	case strings.HasSuffix(path, ".csv"), strings.HasSuffix(path, ".tsv"):
		content = "col_a,col_b,col_c\nval1,val2,val3\nval4,val5,val6"
		mime = "text/csv"
	case strings.HasSuffix(path, ".md"), strings.HasSuffix(path, ".markdown"):
		content = fmt.Sprintf("# Simulated Markdown\n\nContent from `%s`.", path)
		mime = "text/markdown"
	case strings.HasSuffix(path, ".html"), strings.HasSuffix(path, ".htm"):
		content = fmt.Sprintf("<html><body><p>Simulated HTML from %s</p></body></html>", path)
		mime = "text/html"
	default:
		content = fmt.Sprintf("Simulated plain text content from: %s", path)
		mime = "text/plain"
	}

	return ToolResult{
		Success: true,
		Data: map[string]any{
			"content":    content,
			"path":       path,
			"encoding":   encoding,
			"mime_type":  mime,
			"size_bytes": len(content),
		},
		Metadata: map[string]any{
			"is_stub": true,
			"warning": fmt.Sprintf("Simulated file read for '%s'", path),
		},
	}, nil
}

// pdfExtractorStub simulates PDF text extraction.
type pdfExtractorStub struct{ timeout float64 }

func newPDFExtractorStub(config map[string]any) (Tool, error) {
	return &pdfExtractorStub{timeout: configFloat(config, "timeout_seconds", 15)}, nil
}

func (t *pdfExtractorStub) Name() string                   { return "PDFExtractor" }
func (t *pdfExtractorStub) IsStub() bool                   { return true }
func (t *pdfExtractorStub) DefaultTimeoutSeconds() float64 { return t.timeout }

func (t *pdfExtractorStub) Execute(ctx context.Context, query string, params map[string]any) (ToolResult, error) {
	path := strings.TrimSpace(query)
	allPages := []map[string]any{
		{"page": 1, "text": fmt.Sprintf("Simulated PDF content from '%s', page 1. Introduction and abstract of the document.", path)},
		{"page": 2, "text": "Main body of the simulated PDF. Contains detailed analysis and data."},
		{"page": 3, "text": "Conclusion and references. Summary of key findings from the document."},
	}

	pages := allPages
	if requested, ok := params["pages"].([]int); ok {
		wanted := make(map[int]bool, len(requested))
		for _, p := range requested {
			wanted[p] = true
		}
		filtered := make([]map[string]any, 0, len(allPages))
		for _, p := range allPages {
			if wanted[p["page"].(int)] {
				filtered = append(filtered, p)
			}
		}
		pages = filtered
	}

	texts := make([]string, 0, len(pages))
	for _, p := range pages {
		texts = append(texts, p["text"].(string))
	}

	return ToolResult{
		Success: true,
		Data: map[string]any{
			"text":        strings.Join(texts, "\n\n"),
			"pages":       pages,
			"total_pages": len(allPages),
			"path":        path,
		},
		Metadata: map[string]any{
			"is_stub": true,
			"warning": fmt.Sprintf("Simulated PDF extraction for '%s'", path),
		},
	}, nil
}

// imageAnalyzerStub simulates vision-based image analysis.
type imageAnalyzerStub struct{ timeout float64 }

func newImageAnalyzerStub(config map[string]any) (Tool, error) {
	return &imageAnalyzerStub{timeout: configFloat(config, "timeout_seconds", 20)}, nil
}

func (t *imageAnalyzerStub) Name() string                   { return "ImageAnalyzer" }
func (t *imageAnalyzerStub) IsStub() bool                   { return true }
func (t *imageAnalyzerStub) DefaultTimeoutSeconds() float64 { return t.timeout }

func (t *imageAnalyzerStub) Execute(ctx context.Context, query string, params map[string]any) (ToolResult, error) {
	path := strings.TrimSpace(query)
	detail := paramString(params, "detail", "standard")

	return ToolResult{
		Success: true,
		Data: map[string]any{
			"description": fmt.Sprintf("A simulated analysis of the image at '%s'. The image appears to contain objects of interest.", path),
			"labels": []map[string]any{
				{"label": "object", "confidence": 0.95},
				{"label": "scene", "confidence": 0.88},
				{"label": "text", "confidence": 0.72},
			},
			"dimensions": map[string]any{"width": 1920, "height": 1080},
			"format":     "JPEG",
			"path":       path,
		},
		Metadata: map[string]any{
			"is_stub":      true,
			"detail_level": detail,
			"warning":      fmt.Sprintf("Simulated image analysis for '%s'", path),
		},
	}, nil
}

// apiCallStub simulates a generic REST API call.
type apiCallStub struct{ timeout float64 }

func newAPICallStub(config map[string]any) (Tool, error) {
	return &apiCallStub{timeout: configFloat(config, "timeout_seconds", 30)}, nil
}

func (t *apiCallStub) Name() string                   { return "APICall" }
func (t *apiCallStub) IsStub() bool                   { return true }
func (t *apiCallStub) DefaultTimeoutSeconds() float64 { return t.timeout }

func (t *apiCallStub) Execute(ctx context.Context, query string, params map[string]any) (ToolResult, error) {
	url := strings.TrimSpace(query)
	method := paramString(params, "method", "GET")
	headers, _ := params["headers"].(map[string]any)

	return ToolResult{
		Success: true,
		Data: map[string]any{
			"status_code": 200,
			"body": map[string]any{
				"message": "Simulated API response",
				"url":     url,
				"method":  method,
			},
			"headers": map[string]any{
				"Content-Type": "application/json",
				"X-Stub":       "true",
			},
		},
		Metadata: map[string]any{
			"is_stub":         true,
			"url":             url,
			"method":          method,
			"request_headers": headers,
			"warning":         fmt.Sprintf("Simulated API call to '%s'", url),
		},
	}, nil
}

// codeExecutorStub simulates sandboxed code execution without running
// anything.
type codeExecutorStub struct{ timeout float64 }

func newCodeExecutorStub(config map[string]any) (Tool, error) {
	return &codeExecutorStub{timeout: configFloat(config, "timeout_seconds", 30)}, nil
}

func (t *codeExecutorStub) Name() string                   { return "CodeExecutor" }
func (t *codeExecutorStub) IsStub() bool                   { return true }
func (t *codeExecutorStub) DefaultTimeoutSeconds() float64 { return t.timeout }

func (t *codeExecutorStub) Execute(ctx context.Context, query string, params map[string]any) (ToolResult, error) {
	language := paramString(params, "language", "python")
	code := paramString(params, "code", query)
	snippet := code
	if len(snippet) > 80 {
		snippet = snippet[:80]
	}

	var stdout string
	switch language {
	case "python":
		stdout = fmt.Sprintf("# Simulated Python output for:\n# %s", snippet)
	case "javascript":
		stdout = fmt.Sprintf("// Simulated JS output for:\n// %s", snippet)
	default:
		stdout = fmt.Sprintf("[CodeExecutor stub] Would execute %s code", language)
	}

	return ToolResult{
		Success: true,
		Data: map[string]any{
			"stdout":            stdout,
			"stderr":            "",
			"exit_code":         0,
			"execution_time_ms": 42,
			"language":          language,
		},
		Metadata: map[string]any{
			"is_stub":  true,
			"language": language,
			"warning":  "Code was NOT actually executed (stub mode)",
		},
	}, nil
}

func configFloat(config map[string]any, key string, fallback float64) float64 {
	if v, ok := config[key]; ok {
		switch n := v.(type) {
		case float64:
			return n
		case int:
			return float64(n)
		}
	}
	return fallback
}
