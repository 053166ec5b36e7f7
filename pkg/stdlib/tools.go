package stdlib

import "github.com/Bemarking/axon-ai/pkg/ir"

// allTools holds the 8 built-in tool specs. Execution of these lives in
// pkg/tools (RuntimeToolRegistry/ToolDispatcher) — this catalog only
// carries the compile-time declaration an `import axon.tools.{Name}`
// resolves to.
var allTools = []Tool{
	{
		IR: ir.ToolSpec{
			Name:       "WebSearch",
			Provider:   "brave",
			MaxResults: intPtr(5),
			FilterExpr: "recent(days: 30)",
			Timeout:    "10s",
			Sandbox:    boolPtr(false),
		},
		Description:    "Live web search via Brave Search API.",
		RequiresAPIKey: true,
	},
	{
		IR: ir.ToolSpec{
			Name:    "CodeExecutor",
			Timeout: "30s",
			Runtime: "python",
			Sandbox: boolPtr(true),
		},
		Description:    "Safe sandboxed code execution environment.",
		RequiresAPIKey: false,
	},
	{
		IR: ir.ToolSpec{
			Name:    "FileReader",
			Timeout: "5s",
			Sandbox: boolPtr(false),
		},
		Description:    "Read local or remote files.",
		RequiresAPIKey: false,
	},
	{
		IR: ir.ToolSpec{
			Name:    "PDFExtractor",
			Timeout: "15s",
			Sandbox: boolPtr(false),
		},
		Description:    "Extract text and structure from PDF documents.",
		RequiresAPIKey: false,
	},
	{
		IR: ir.ToolSpec{
			Name:    "ImageAnalyzer",
			Timeout: "20s",
			Sandbox: boolPtr(false),
		},
		Description:    "Analyze images using vision model capabilities.",
		RequiresAPIKey: true,
	},
	{
		IR: ir.ToolSpec{
			Name:    "Calculator",
			Timeout: "2s",
			Sandbox: boolPtr(true),
		},
		Description:    "Precise arithmetic with safe expression evaluation.",
		RequiresAPIKey: false,
	},
	{
		IR: ir.ToolSpec{
			Name:    "DateTimeTool",
			Timeout: "1s",
			Sandbox: boolPtr(true),
		},
		Description:    "Temporal reasoning — current date, time, timestamps.",
		RequiresAPIKey: false,
	},
	{
		IR: ir.ToolSpec{
			Name:    "APICall",
			Timeout: "30s",
			Sandbox: boolPtr(false),
		},
		Description:    "Generic REST API caller for external service integration.",
		RequiresAPIKey: true,
	},
}
