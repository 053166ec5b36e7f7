// Package trace records the semantic execution log of an AXON run: not
// just what the runtime did, but why — which anchor activated, which
// reasoning path was taken, which retry fired, what the validator decided.
package trace

import (
	"time"

	"github.com/google/uuid"
)

// EventType enumerates the semantic events the runtime can emit. Each
// value corresponds to a distinct runtime decision point.
type EventType string

const (
	StepStart EventType = "step_start"
	StepEnd   EventType = "step_end"

	ModelCall     EventType = "model_call"
	ModelResponse EventType = "model_response"

	AnchorCheck  EventType = "anchor_check"
	AnchorPass   EventType = "anchor_pass"
	AnchorBreach EventType = "anchor_breach"

	ValidationPass EventType = "validation_pass"
	ValidationFail EventType = "validation_fail"

	RetryAttempt EventType = "retry_attempt"
	RefineStart  EventType = "refine_start"

	MemoryRead  EventType = "memory_read"
	MemoryWrite EventType = "memory_write"

	ConfidenceCheck EventType = "confidence_check"
)

// Event is a single atomic observation within a Span.
type Event struct {
	EventType  EventType      `json:"event_type"`
	Timestamp  time.Time      `json:"timestamp"`
	StepName   string         `json:"step_name,omitempty"`
	Data       map[string]any `json:"data,omitempty"`
	DurationMs float64        `json:"duration_ms,omitempty"`
}

// Span is a named scope containing child events and nested sub-spans. A
// flow span contains step spans; a step span contains model_call,
// validation, and anchor_check events.
type Span struct {
	ID        string         `json:"id"`
	Name      string         `json:"name"`
	StartTime time.Time      `json:"start_time"`
	EndTime   time.Time      `json:"end_time,omitempty"`
	Events    []Event        `json:"events"`
	Children  []*Span        `json:"children,omitempty"`
	Metadata  map[string]any `json:"metadata,omitempty"`
}

// DurationMs reports the span's total duration, or 0 while still open.
func (s *Span) DurationMs() float64 {
	if s.EndTime.IsZero() {
		return 0
	}
	return roundMs(s.EndTime.Sub(s.StartTime))
}

// IsOpen reports whether the span has not yet been closed.
func (s *Span) IsOpen() bool {
	return s.EndTime.IsZero()
}

func roundMs(d time.Duration) float64 {
	ms := float64(d) / float64(time.Millisecond)
	return float64(int(ms*100+0.5)) / 100
}

// Execution is the root container for a complete program execution trace.
type Execution struct {
	RunID       string         `json:"run_id"`
	ProgramName string         `json:"program_name,omitempty"`
	BackendName string         `json:"backend_name,omitempty"`
	StartTime   time.Time      `json:"start_time"`
	EndTime     time.Time      `json:"end_time,omitempty"`
	Spans       []*Span        `json:"spans"`
	Metadata    map[string]any `json:"metadata,omitempty"`
}

// DurationMs reports the total execution duration, or 0 while still open.
func (e *Execution) DurationMs() float64 {
	if e.EndTime.IsZero() {
		return 0
	}
	return roundMs(e.EndTime.Sub(e.StartTime))
}

// TotalEvents counts all events across all spans, recursively.
func (e *Execution) TotalEvents() int {
	return countEvents(e.Spans)
}

func countEvents(spans []*Span) int {
	count := 0
	for _, s := range spans {
		count += len(s.Events)
		count += countEvents(s.Children)
	}
	return count
}

// Tracer records semantic execution events into a structured Execution
// trace. It maintains a stack of open spans: events emitted via Emit are
// appended to the innermost open span, StartSpan pushes a new child span,
// and EndSpan pops it.
//
// The Tracer never returns an error — it is an observer, not a
// participant. Emitting with no span open is a silent no-op.
type Tracer struct {
	trace     *Execution
	spanStack []*Span
}

// New creates a Tracer for a program execution, stamping a fresh run ID.
func New(programName, backendName string) *Tracer {
	return &Tracer{
		trace: &Execution{
			RunID:       uuid.NewString(),
			ProgramName: programName,
			BackendName: backendName,
			StartTime:   time.Now(),
		},
	}
}

// StartSpan opens a new span as a child of the current innermost span. If
// no span is open, the new span becomes top-level on the Execution.
func (t *Tracer) StartSpan(name string, metadata map[string]any) *Span {
	span := &Span{
		ID:        uuid.NewString(),
		Name:      name,
		StartTime: time.Now(),
		Metadata:  metadata,
	}

	if len(t.spanStack) > 0 {
		parent := t.spanStack[len(t.spanStack)-1]
		parent.Children = append(parent.Children, span)
	} else {
		t.trace.Spans = append(t.trace.Spans, span)
	}

	t.spanStack = append(t.spanStack, span)
	return span
}

// EndSpan closes the current innermost span, merging metadata into it.
// Returns nil if no span was open.
func (t *Tracer) EndSpan(metadata map[string]any) *Span {
	if len(t.spanStack) == 0 {
		return nil
	}

	n := len(t.spanStack) - 1
	span := t.spanStack[n]
	t.spanStack = t.spanStack[:n]
	span.EndTime = time.Now()

	if len(metadata) > 0 {
		if span.Metadata == nil {
			span.Metadata = make(map[string]any, len(metadata))
		}
		for k, v := range metadata {
			span.Metadata[k] = v
		}
	}

	return span
}

// CurrentSpan returns the innermost currently-open span, or nil.
func (t *Tracer) CurrentSpan() *Span {
	if len(t.spanStack) == 0 {
		return nil
	}
	return t.spanStack[len(t.spanStack)-1]
}

// Depth reports the current span nesting depth (0 = no open spans).
func (t *Tracer) Depth() int {
	return len(t.spanStack)
}

// Emit records a semantic event in the current span. If no span is open
// the event is silently dropped.
func (t *Tracer) Emit(eventType EventType, stepName string, data map[string]any, durationMs float64) Event {
	event := Event{
		EventType:  eventType,
		Timestamp:  time.Now(),
		StepName:   stepName,
		Data:       data,
		DurationMs: durationMs,
	}

	if len(t.spanStack) > 0 {
		cur := t.spanStack[len(t.spanStack)-1]
		cur.Events = append(cur.Events, event)
	}

	return event
}

// Finalize closes all remaining open spans and returns the complete
// trace, ensuring it is always well-formed even if a caller forgot to
// close a span.
func (t *Tracer) Finalize() *Execution {
	for len(t.spanStack) > 0 {
		t.EndSpan(nil)
	}
	t.trace.EndTime = time.Now()
	return t.trace
}

// Trace exposes the trace in progress; it may still have open spans.
func (t *Tracer) Trace() *Execution {
	return t.trace
}

// — Convenience emitters for common patterns —

func (t *Tracer) EmitStepStart(stepName string, data map[string]any) Event {
	return t.Emit(StepStart, stepName, data, 0)
}

func (t *Tracer) EmitStepEnd(stepName string, data map[string]any, durationMs float64) Event {
	return t.Emit(StepEnd, stepName, data, durationMs)
}

func (t *Tracer) EmitModelCall(stepName string, promptTokens int, data map[string]any) Event {
	payload := withData(data)
	if promptTokens > 0 {
		payload["prompt_tokens"] = promptTokens
	}
	return t.Emit(ModelCall, stepName, payload, 0)
}

func (t *Tracer) EmitModelResponse(stepName string, outputTokens int, durationMs float64, data map[string]any) Event {
	payload := withData(data)
	if outputTokens > 0 {
		payload["output_tokens"] = outputTokens
	}
	return t.Emit(ModelResponse, stepName, payload, durationMs)
}

// EmitAnchorCheck emits an ANCHOR_CHECK followed by an ANCHOR_PASS or
// ANCHOR_BREACH, and returns the terminal (pass/breach) event.
func (t *Tracer) EmitAnchorCheck(anchorName, stepName string, passed bool, data map[string]any) Event {
	payload := withData(data)
	payload["anchor_name"] = anchorName

	t.Emit(AnchorCheck, stepName, payload, 0)

	resultType := AnchorPass
	if !passed {
		resultType = AnchorBreach
	}
	return t.Emit(resultType, stepName, payload, 0)
}

func (t *Tracer) EmitValidationResult(stepName string, passed bool, expectedType string, violations []string, data map[string]any) Event {
	payload := withData(data)
	if expectedType != "" {
		payload["expected_type"] = expectedType
	}
	if len(violations) > 0 {
		payload["violations"] = violations
	}

	eventType := ValidationPass
	if !passed {
		eventType = ValidationFail
	}
	return t.Emit(eventType, stepName, payload, 0)
}

func (t *Tracer) EmitRetryAttempt(stepName string, attempt int, reason string, data map[string]any) Event {
	payload := withData(data)
	payload["attempt"] = attempt
	if reason != "" {
		payload["reason"] = reason
	}
	return t.Emit(RetryAttempt, stepName, payload, 0)
}

func (t *Tracer) EmitConfidenceCheck(stepName string, score, floor float64, passed bool, data map[string]any) Event {
	payload := withData(data)
	payload["score"] = score
	payload["floor"] = floor
	payload["passed"] = passed
	return t.Emit(ConfidenceCheck, stepName, payload, 0)
}

func withData(data map[string]any) map[string]any {
	if data == nil {
		return make(map[string]any)
	}
	return data
}
