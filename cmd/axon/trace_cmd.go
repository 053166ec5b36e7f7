package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

var traceNoColor bool

var traceCmd = &cobra.Command{
	Use:   "trace [file]",
	Short: "Pretty-print a saved execution trace",
	Args:  cobra.ExactArgs(1),
	RunE:  runTrace,
}

func init() {
	traceCmd.Flags().BoolVar(&traceNoColor, "no-color", false, "Disable colored output")
}

var eventColor = map[string]string{
	"step_start":       ansiCyan,
	"step_end":         ansiCyan,
	"model_call":       ansiMagenta,
	"model_response":   ansiMagenta,
	"anchor_check":     ansiYellow,
	"anchor_pass":      ansiGreen,
	"anchor_breach":    ansiRed,
	"validation_pass":  ansiGreen,
	"validation_fail":  ansiRed,
	"retry_attempt":    ansiYellow,
	"refine_start":     ansiYellow,
	"memory_read":      ansiDim,
	"memory_write":     ansiDim,
	"confidence_check": ansiCyan,
}

const (
	ansiCyan    = "\033[36m"
	ansiMagenta = "\033[35m"
	ansiYellow  = "\033[33m"
)

// runTrace reads a .trace.json file and renders it as a timeline.
//
// Exit codes: 0 success, 2 file not found or invalid JSON.
func runTrace(cmd *cobra.Command, args []string) error {
	path := args[0]
	raw, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "✗ File not found: %s\n", path)
		os.Exit(2)
	}

	var data map[string]any
	if err := json.Unmarshal(raw, &data); err != nil {
		fmt.Fprintf(os.Stderr, "✗ Invalid JSON: %v\n", err)
		os.Exit(2)
	}

	renderTrace(data, traceNoColor)
	return nil
}

func c(text, code string, noColor bool) string {
	if noColor {
		return text
	}
	return code + text + ansiReset
}

func renderTrace(data map[string]any, noColor bool) {
	fmt.Println()
	fmt.Println(c(strings.Repeat("═", 60), ansiBold, noColor))
	fmt.Println(c("  AXON Execution Trace", ansiBold, noColor))
	fmt.Println(c(strings.Repeat("═", 60), ansiBold, noColor))

	if runID, ok := data["run_id"].(string); ok {
		fmt.Println(c("  run_id: ", ansiDim, noColor) + runID)
	}
	if bn, ok := data["backend_name"].(string); ok {
		fmt.Println(c("  backend: ", ansiDim, noColor) + bn)
	}
	fmt.Println()

	if spans, ok := data["spans"].([]any); ok {
		for _, s := range spans {
			if span, ok := s.(map[string]any); ok {
				renderSpan(span, 1, noColor)
			}
		}
	}

	fmt.Println()
	fmt.Println(c(strings.Repeat("═", 60), ansiBold, noColor))
}

func renderSpan(span map[string]any, indent int, noColor bool) {
	prefix := strings.Repeat("  ", indent)
	name, _ := span["name"].(string)
	dur := ""
	if d, ok := span["duration_ms"].(float64); ok && d > 0 {
		dur = fmt.Sprintf(" (%.2fms)", d)
	}
	fmt.Printf("%s┌─ %s%s\n", prefix, c(name, ansiBold+ansiCyan, noColor), dur)

	if events, ok := span["events"].([]any); ok {
		for _, e := range events {
			if event, ok := e.(map[string]any); ok {
				renderEvent(event, indent+1, noColor)
			}
		}
	}
	if children, ok := span["children"].([]any); ok {
		for _, ch := range children {
			if child, ok := ch.(map[string]any); ok {
				renderSpan(child, indent+1, noColor)
			}
		}
	}
	fmt.Printf("%s└─\n", prefix)
}

func renderEvent(event map[string]any, indent int, noColor bool) {
	prefix := strings.Repeat("  ", indent)
	eventType, _ := event["event_type"].(string)
	color := eventColor[eventType]

	badge := c(fmt.Sprintf("[%s]", eventType), color+ansiBold, noColor)

	summary := ""
	if stepName, ok := event["step_name"].(string); ok && stepName != "" {
		summary = "  " + stepName
	}

	fmt.Printf("%s│ %s%s\n", prefix, badge, summary)

	if eventType == "anchor_breach" || eventType == "validation_fail" || eventType == "retry_attempt" {
		if dataMap, ok := event["data"].(map[string]any); ok {
			for k, v := range dataMap {
				val := fmt.Sprintf("%v", v)
				if len(val) > 60 {
					val = val[:57] + "..."
				}
				fmt.Printf("%s│   %s: %s\n", prefix, c(k, ansiDim, noColor), val)
			}
		}
	}
}
