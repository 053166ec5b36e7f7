package tools

import (
	"context"
	"strings"
	"testing"
)

func TestCalculatorToolEvaluatesArithmetic(t *testing.T) {
	tool, _ := newCalculatorTool(nil)
	result, err := tool.Execute(context.Background(), "(2 + 3) * 4", nil)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if !result.Success || result.Data != "20" {
		t.Errorf("result = %+v, want Data=20", result)
	}
}

func TestCalculatorToolSupportsMathFunctions(t *testing.T) {
	tool, _ := newCalculatorTool(nil)
	result, err := tool.Execute(context.Background(), "Sqrt(16)", nil)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if !result.Success || result.Data != "4" {
		t.Errorf("result = %+v, want Data=4", result)
	}
}

func TestCalculatorToolRejectsEmptyExpression(t *testing.T) {
	tool, _ := newCalculatorTool(nil)
	result, err := tool.Execute(context.Background(), "   ", nil)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if result.Success {
		t.Fatal("expected failure for an empty expression")
	}
}

func TestCalculatorToolRejectsInvalidExpression(t *testing.T) {
	tool, _ := newCalculatorTool(nil)
	result, err := tool.Execute(context.Background(), "2 +", nil)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if result.Success {
		t.Fatal("expected failure for an invalid expression")
	}
}

func TestDateTimeToolAnswersYearMonthDay(t *testing.T) {
	tool, _ := newDateTimeTool(nil)

	result, err := tool.Execute(context.Background(), "what year is it", nil)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	year, _ := result.Data.(string)
	if len(year) != 4 {
		t.Errorf("year = %q, want a 4-digit year", year)
	}
}

func TestDateTimeToolAnswersWeekday(t *testing.T) {
	tool, _ := newDateTimeTool(nil)
	result, err := tool.Execute(context.Background(), "weekday", nil)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	day, _ := result.Data.(string)
	weekdays := []string{"Sunday", "Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday"}
	found := false
	for _, w := range weekdays {
		if day == w {
			found = true
		}
	}
	if !found {
		t.Errorf("day = %q, want one of %v", day, weekdays)
	}
}

func TestDateTimeToolFallsBackToComposite(t *testing.T) {
	tool, _ := newDateTimeTool(nil)
	result, err := tool.Execute(context.Background(), "something unrelated", nil)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	composite, _ := result.Data.(string)
	if !strings.Contains(composite, "Current UTC:") {
		t.Errorf("composite = %q, want fallback containing 'Current UTC:'", composite)
	}
}
