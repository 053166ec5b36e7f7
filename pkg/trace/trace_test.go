package trace

import "testing"

func TestStartSpanNestsUnderParent(t *testing.T) {
	tr := New("contract_analysis", "anthropic")
	outer := tr.StartSpan("analyze_clauses", nil)
	inner := tr.StartSpan("extract", nil)

	if tr.Depth() != 2 {
		t.Fatalf("depth = %d, want 2", tr.Depth())
	}
	if tr.CurrentSpan() != inner {
		t.Fatalf("current span should be the innermost span")
	}
	if len(outer.Children) != 1 || outer.Children[0] != inner {
		t.Fatalf("inner span was not nested under outer")
	}
}

func TestEmitDropsEventWithNoOpenSpan(t *testing.T) {
	tr := New("", "")
	tr.Emit(StepStart, "extract", nil, 0)

	trace := tr.Finalize()
	if trace.TotalEvents() != 0 {
		t.Fatalf("expected event to be dropped with no open span, got %d events", trace.TotalEvents())
	}
}

func TestEmitAppendsToInnermostSpan(t *testing.T) {
	tr := New("p", "b")
	tr.StartSpan("flow", nil)
	tr.StartSpan("step", nil)
	tr.EmitModelCall("extract", 1200, nil)
	tr.EmitModelResponse("extract", 350, 1200.5, nil)
	tr.EndSpan(nil)
	tr.EndSpan(nil)

	trace := tr.Finalize()
	if trace.TotalEvents() != 2 {
		t.Fatalf("total events = %d, want 2", trace.TotalEvents())
	}
	stepSpan := trace.Spans[0].Children[0]
	if len(stepSpan.Events) != 2 {
		t.Fatalf("step span has %d events, want 2", len(stepSpan.Events))
	}
	if stepSpan.Events[0].Data["prompt_tokens"] != 1200 {
		t.Errorf("prompt_tokens = %v", stepSpan.Events[0].Data["prompt_tokens"])
	}
	if stepSpan.Events[1].Data["output_tokens"] != 350 {
		t.Errorf("output_tokens = %v", stepSpan.Events[1].Data["output_tokens"])
	}
}

func TestEmitAnchorCheckEmitsPassOrBreach(t *testing.T) {
	tr := New("p", "b")
	tr.StartSpan("step", nil)

	passEvent := tr.EmitAnchorCheck("NoHallucination", "extract", true, nil)
	if passEvent.EventType != AnchorPass {
		t.Errorf("passing anchor check should emit AnchorPass, got %s", passEvent.EventType)
	}

	breachEvent := tr.EmitAnchorCheck("NoHallucination", "extract", false, nil)
	if breachEvent.EventType != AnchorBreach {
		t.Errorf("failing anchor check should emit AnchorBreach, got %s", breachEvent.EventType)
	}

	tr.EndSpan(nil)
	trace := tr.Finalize()
	if trace.TotalEvents() != 4 {
		t.Fatalf("expected 4 events (check+pass, check+breach), got %d", trace.TotalEvents())
	}
}

func TestFinalizeClosesAllOpenSpans(t *testing.T) {
	tr := New("p", "b")
	tr.StartSpan("flow", nil)
	tr.StartSpan("step", nil)

	trace := tr.Finalize()
	if tr.Depth() != 0 {
		t.Fatalf("finalize should close all spans, depth = %d", tr.Depth())
	}
	if trace.EndTime.IsZero() {
		t.Fatal("finalize should stamp end time")
	}
	if trace.Spans[0].IsOpen() || trace.Spans[0].Children[0].IsOpen() {
		t.Fatal("finalize should close nested spans too")
	}
}

func TestRunIDIsStamped(t *testing.T) {
	tr := New("p", "b")
	if tr.Trace().RunID == "" {
		t.Fatal("expected a non-empty run ID")
	}
}
