package tools

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/expr-lang/expr"
)

// calculatorTool evaluates an arithmetic expression. The Python reference
// hand-rolls a restricted eval() namespace; expr-lang gives the same
// sandboxing natively, so the expression is compiled and run directly
// with no bespoke namespace allowlist.
type calculatorTool struct{ timeout float64 }

func newCalculatorTool(config map[string]any) (Tool, error) {
	return &calculatorTool{timeout: configFloat(config, "timeout_seconds", 2)}, nil
}

func (t *calculatorTool) Name() string                   { return "Calculator" }
func (t *calculatorTool) IsStub() bool                   { return false }
func (t *calculatorTool) DefaultTimeoutSeconds() float64 { return t.timeout }

// calculatorEnv exposes the math functions the original executor's
// restricted namespace allowed.
type calculatorEnv struct {
	Sqrt  func(float64) float64
	Abs   func(float64) float64
	Round func(float64) float64
	Pi    float64
	E     float64
	Log   func(float64) float64
	Log10 func(float64) float64
	Sin   func(float64) float64
	Cos   func(float64) float64
	Tan   func(float64) float64
	Ceil  func(float64) float64
	Floor func(float64) float64
	Pow   func(float64, float64) float64
	Min   func(float64, float64) float64
	Max   func(float64, float64) float64
}

func (t *calculatorTool) Execute(ctx context.Context, query string, params map[string]any) (ToolResult, error) {
	expression := strings.TrimSpace(query)
	if expression == "" {
		return simpleResult(false, nil, "expression must not be empty"), nil
	}

	program, err := expr.Compile(expression, expr.Env(calculatorEnv{}))
	if err != nil {
		return simpleResult(false, nil, fmt.Sprintf("invalid expression: %v", err)), nil
	}

	out, err := expr.Run(program, mathEnv())
	if err != nil {
		return simpleResult(false, nil, fmt.Sprintf("evaluation error: %v", err)), nil
	}

	return ToolResult{
		Success: true,
		Data:    fmt.Sprintf("%v", out),
		Metadata: map[string]any{
			"expression": expression,
			"is_stub":    false,
		},
	}, nil
}

func mathEnv() calculatorEnv {
	return calculatorEnv{
		Sqrt:  math.Sqrt,
		Abs:   math.Abs,
		Round: math.Round,
		Pi:    math.Pi,
		E:     math.E,
		Log:   math.Log,
		Log10: math.Log10,
		Sin:   math.Sin,
		Cos:   math.Cos,
		Tan:   math.Tan,
		Ceil:  math.Ceil,
		Floor: math.Floor,
		Pow:   math.Pow,
		Min:   math.Min,
		Max:   math.Max,
	}
}

// dateTimeTool answers date/time queries by matching well-known phrases,
// mirroring the Python reference's query-keyword dispatch.
type dateTimeTool struct{ timeout float64 }

func newDateTimeTool(config map[string]any) (Tool, error) {
	return &dateTimeTool{timeout: configFloat(config, "timeout_seconds", 1)}, nil
}

func (t *dateTimeTool) Name() string                   { return "DateTimeTool" }
func (t *dateTimeTool) IsStub() bool                   { return false }
func (t *dateTimeTool) DefaultTimeoutSeconds() float64 { return t.timeout }

func (t *dateTimeTool) Execute(ctx context.Context, query string, params map[string]any) (ToolResult, error) {
	now := time.Now().UTC()
	q := strings.ToLower(strings.TrimSpace(query))

	var data string
	switch {
	case containsAny(q, "now", "current", "current_time"):
		data = now.Format(time.RFC3339)
	case containsAny(q, "today", "date", "current_date"):
		data = now.Format("2006-01-02")
	case containsAny(q, "timestamp", "unix", "epoch"):
		data = fmt.Sprintf("%d", now.Unix())
	case strings.Contains(q, "year"):
		data = fmt.Sprintf("%d", now.Year())
	case strings.Contains(q, "month"):
		data = fmt.Sprintf("%d", int(now.Month()))
	case strings.Contains(q, "day") && !strings.Contains(q, "weekday") && !strings.Contains(q, "day_of_week"):
		data = fmt.Sprintf("%d", now.Day())
	case containsAny(q, "weekday", "day_of_week"):
		data = now.Weekday().String()
	case containsAny(q, "iso", "iso8601"):
		data = now.Format(time.RFC3339)
	default:
		data = fmt.Sprintf("Current UTC: %s, Timestamp: %d, Date: %s",
			now.Format(time.RFC3339), now.Unix(), now.Format("2006-01-02"))
	}

	return ToolResult{
		Success: true,
		Data:    data,
		Metadata: map[string]any{
			"query":   query,
			"is_stub": false,
		},
	}, nil
}

func containsAny(s string, substrs ...string) bool {
	for _, sub := range substrs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
