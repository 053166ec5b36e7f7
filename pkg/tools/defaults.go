package tools

// Mode selects whether WebSearch and FileReader are backed by the
// built-in simulated responses or by a real MCP server connection.
type Mode int

const (
	// ModeStub registers every tool, including WebSearch/FileReader, as
	// a simulated stub. Suitable for `axon check`/`axon compile` and for
	// running AXON programs without external dependencies.
	ModeStub Mode = iota
	// ModeMCP registers WebSearch/FileReader against real MCP servers
	// (config must supply "command" for each), leaving the remaining
	// always-stub tools (CodeExecutor, PDFExtractor, ImageAnalyzer,
	// APICall) unchanged — the stdlib declares no real backend for them.
	ModeMCP
)

// CreateDefaultRegistry builds the registry of all 8 stdlib tools for the
// given mode. perToolConfig, if non-nil, supplies the registration config
// for the named tool (e.g. {"WebSearch": {"command": "...", "args": [...]}}).
func CreateDefaultRegistry(mode Mode, perToolConfig map[string]map[string]any) *RuntimeToolRegistry {
	r := NewRuntimeToolRegistry()
	cfg := func(name string) map[string]any {
		if perToolConfig == nil {
			return nil
		}
		return perToolConfig[name]
	}

	switch mode {
	case ModeMCP:
		r.Register("WebSearch", false, newWebSearchMCPTool)
		r.Register("FileReader", false, newFileReaderMCPTool)
	default:
		r.Register("WebSearch", true, newWebSearchStub)
		r.Register("FileReader", true, newFileReaderStub)
	}

	r.Register("CodeExecutor", true, newCodeExecutorStub)
	r.Register("PDFExtractor", true, newPDFExtractorStub)
	r.Register("ImageAnalyzer", true, newImageAnalyzerStub)
	r.Register("APICall", true, newAPICallStub)
	r.Register("Calculator", false, newCalculatorTool)
	r.Register("DateTimeTool", false, newDateTimeTool)

	// Pre-warm instances for any tool given explicit config so config
	// errors (e.g. a WebSearch MCP entry missing "command") surface at
	// startup rather than on first dispatch.
	for _, name := range r.ToolNames() {
		if c := cfg(name); c != nil {
			r.Get(name, c)
		}
	}
	return r
}
