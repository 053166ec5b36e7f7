// Package executor runs a compiled AXON program end to end: it walks
// every execution unit, calls the model for each step, dispatches tool
// steps, enforces anchors and semantic validation, and retries steps
// wrapped in a refine block — emitting a full trace as it goes.
package executor

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/Bemarking/axon-ai/pkg/axerrors"
	"github.com/Bemarking/axon-ai/pkg/axoncontext"
	"github.com/Bemarking/axon-ai/pkg/backend"
	"github.com/Bemarking/axon-ai/pkg/ir"
	"github.com/Bemarking/axon-ai/pkg/memory"
	"github.com/Bemarking/axon-ai/pkg/model"
	"github.com/Bemarking/axon-ai/pkg/retry"
	"github.com/Bemarking/axon-ai/pkg/tools"
	"github.com/Bemarking/axon-ai/pkg/trace"
	"github.com/Bemarking/axon-ai/pkg/validate"
)

// StepResult is the outcome of executing a single compiled step.
type StepResult struct {
	StepName   string
	Response   *model.Response
	Validation *validate.Result
	RetryInfo  *retry.Result
	DurationMs float64
}

// ToDict mirrors the reference StepResult.to_dict() for trace export
// and CLI rendering.
func (r StepResult) ToDict() map[string]any {
	out := map[string]any{
		"step_name":   r.StepName,
		"duration_ms": r.DurationMs,
	}
	if r.Response != nil {
		out["response"] = r.Response.ToDict()
	}
	if r.Validation != nil {
		out["validation"] = map[string]any{
			"is_valid": r.Validation.IsValid,
		}
	}
	if r.RetryInfo != nil {
		out["retry"] = map[string]any{
			"success":   r.RetryInfo.Success,
			"exhausted": r.RetryInfo.Exhausted,
			"attempts":  len(r.RetryInfo.Attempts),
		}
	}
	return out
}

// UnitResult is the outcome of executing one compiled execution unit
// (one `run` statement).
type UnitResult struct {
	FlowName    string
	StepResults []StepResult
	Success     bool
	Error       string
	DurationMs  float64
}

// ToDict mirrors the reference UnitResult.to_dict().
func (r UnitResult) ToDict() map[string]any {
	steps := make([]map[string]any, len(r.StepResults))
	for i, s := range r.StepResults {
		steps[i] = s.ToDict()
	}
	return map[string]any{
		"flow_name":    r.FlowName,
		"step_results": steps,
		"success":      r.Success,
		"error":        r.Error,
		"duration_ms":  r.DurationMs,
	}
}

// ExecutionResult is the full outcome of executing a compiled program.
type ExecutionResult struct {
	UnitResults []UnitResult
	Trace       *trace.Execution
	Success     bool
	DurationMs  float64
}

// ToDict mirrors the reference ExecutionResult.to_dict().
func (r ExecutionResult) ToDict() map[string]any {
	units := make([]map[string]any, len(r.UnitResults))
	for i, u := range r.UnitResults {
		units[i] = u.ToDict()
	}
	out := map[string]any{
		"unit_results": units,
		"success":      r.Success,
		"duration_ms":  r.DurationMs,
	}
	if r.Trace != nil {
		out["trace"] = r.Trace
	}
	return out
}

// Executor orchestrates a compiled program against a model client,
// validating, retrying, and dispatching tools as each step requires.
// The zero-value dependencies (validator, retryEngine, memory) are
// given sensible defaults by New; toolDispatcher has no default — a
// program with no tool steps never needs one, and one that does will
// surface a clear error rather than silently no-op.
type Executor struct {
	client          model.Client
	validator       *validate.Validator
	schemaValidator *validate.SchemaValidator
	retryEngine     *retry.Engine
	memoryBackend   memory.Backend
	toolDispatcher  *tools.ToolDispatcher
	types           map[string]ir.Type
}

// Option configures an Executor at construction time.
type Option func(*Executor)

// WithValidator overrides the default Validator.
func WithValidator(v *validate.Validator) Option {
	return func(e *Executor) { e.validator = v }
}

// WithSchemaValidator overrides the default SchemaValidator used to
// check structured output against a user-defined type's JSON Schema.
func WithSchemaValidator(v *validate.SchemaValidator) Option {
	return func(e *Executor) { e.schemaValidator = v }
}

// WithRetryEngine overrides the default retry Engine.
func WithRetryEngine(r *retry.Engine) Option {
	return func(e *Executor) { e.retryEngine = r }
}

// WithMemory overrides the default memory backend.
func WithMemory(m memory.Backend) Option {
	return func(e *Executor) { e.memoryBackend = m }
}

// WithToolDispatcher equips the executor to run tool steps. Without
// this, any step whose compiled metadata declares a tool fails with a
// runtime error naming the missing dispatcher.
func WithToolDispatcher(d *tools.ToolDispatcher) Option {
	return func(e *Executor) { e.toolDispatcher = d }
}

// New builds an Executor around client, applying opts over the
// defaults: a semantic Validator with no custom types, a stateless
// retry Engine, and an in-memory, untraced memory backend.
func New(client model.Client, opts ...Option) *Executor {
	e := &Executor{
		client:          client,
		validator:       validate.New(nil),
		schemaValidator: validate.NewSchemaValidator(),
		retryEngine:     retry.New(),
	}
	e.memoryBackend = memory.NewInMemoryBackend(nil)
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Execute runs every execution unit in program in order, returning an
// ExecutionResult with a populated Trace. A unit failure does not stop
// the remaining units — Success reflects whether every unit succeeded.
func (e *Executor) Execute(ctx context.Context, program *backend.CompiledProgram) (ExecutionResult, error) {
	started := time.Now()
	e.types = program.Types
	programName := ""
	if program.Metadata != nil {
		if name, ok := program.Metadata["program_name"].(string); ok {
			programName = name
		}
	}
	tracer := trace.New(programName, program.BackendName)

	if tracedMemory, ok := e.memoryBackend.(*memory.InMemoryBackend); ok {
		tracedMemory.SetTracer(tracer)
	}

	unitResults := make([]UnitResult, 0, len(program.ExecutionUnits))
	allSuccess := true
	for _, unit := range program.ExecutionUnits {
		result, err := e.executeUnit(ctx, unit, tracer)
		if err != nil {
			return ExecutionResult{}, err
		}
		unitResults = append(unitResults, result)
		if !result.Success {
			allSuccess = false
		}
	}

	execTrace := tracer.Finalize()
	return ExecutionResult{
		UnitResults: unitResults,
		Trace:       execTrace,
		Success:     allSuccess,
		DurationMs:  float64(time.Since(started).Microseconds()) / 1000.0,
	}, nil
}

// executeUnit runs every step of unit in sequence, feeding each
// completed step's output forward as template context for later steps.
func (e *Executor) executeUnit(ctx context.Context, unit backend.CompiledExecutionUnit, tracer *trace.Tracer) (UnitResult, error) {
	started := time.Now()
	tracer.StartSpan("unit:"+unit.FlowName, map[string]any{
		"persona": unit.PersonaName,
		"context": unit.ContextName,
		"effort":  unit.Effort,
	})

	ctxMgr := axoncontext.New(unit.SystemPrompt)

	var stepResults []StepResult
	errMsg := ""
	for _, step := range unit.Steps {
		stepResult, err := e.executeStep(ctx, step, unit, ctxMgr, tracer)
		if err != nil {
			errMsg = err.Error()
			tracer.EmitStepEnd(step.StepName, map[string]any{"success": false, "error": errMsg}, 0)
			break
		}
		stepResults = append(stepResults, stepResult)

		var output any
		if stepResult.Response != nil {
			if stepResult.Response.Structured != nil {
				output = stepResult.Response.Structured
			} else {
				output = stepResult.Response.Content
			}
		}
		_ = ctxMgr.SetStepResult(step.StepName, output)
	}

	tracer.EndSpan(map[string]any{"duration_ms": roundMs(time.Since(started))})

	return UnitResult{
		FlowName:    unit.FlowName,
		StepResults: stepResults,
		Success:     errMsg == "",
		Error:       errMsg,
		DurationMs:  roundMs(time.Since(started)),
	}, nil
}

// executeStep runs one compiled step: a tool dispatch if its metadata
// declares one, otherwise a model call — wrapped in a retry loop when
// the step's metadata carries a refine block — followed by the anchor
// check and semantic validation.
func (e *Executor) executeStep(ctx context.Context, step backend.CompiledStep, unit backend.CompiledExecutionUnit, ctxMgr *axoncontext.Manager, tracer *trace.Tracer) (StepResult, error) {
	started := time.Now()
	tracer.EmitStepStart(step.StepName, nil)

	if useTool, ok := step.Metadata["use_tool"]; ok && useTool != nil {
		return e.executeToolStep(ctx, step, ctxMgr, tracer)
	}

	errCtx := axerrors.ErrorContext{FlowName: unit.FlowName, StepName: step.StepName}
	refineConfig := extractRefineConfig(step)

	runStep := func(ctx context.Context, failureContext string) (any, error) {
		return e.callModel(ctx, step, unit, ctxMgr, tracer, failureContext)
	}

	var response model.Response
	var retryResult *retry.Result
	if refineConfig != nil && refineConfig.MaxAttempts > 1 {
		result, err := e.retryEngine.ExecuteWithRetry(ctx, runStep, *refineConfig, tracer, step.StepName, unit.FlowName)
		retryResult = &result
		if err != nil {
			return StepResult{}, err
		}
		if !result.Success {
			// on_exhaustion: "skip" — every attempt failed but the retry
			// engine returned a nil error instead of raising. There is no
			// response to check anchors or validate against; report the
			// step as a non-raising failure, per spec's "skip" outcome.
			tracer.EmitStepEnd(step.StepName, map[string]any{"success": false, "skipped": true}, roundMs(time.Since(started)))
			return StepResult{
				StepName:   step.StepName,
				RetryInfo:  retryResult,
				DurationMs: roundMs(time.Since(started)),
			}, nil
		}
		response = result.Result.(model.Response)
	} else {
		out, err := runStep(ctx, "")
		if err != nil {
			return StepResult{}, err
		}
		response = out.(model.Response)
	}

	e.checkAnchors(unit, step.StepName, tracer)

	validation, err := e.validateResponse(response, step, step.StepName, errCtx, tracer)
	if err != nil {
		return StepResult{}, err
	}

	tracer.EmitStepEnd(step.StepName, map[string]any{"success": true}, roundMs(time.Since(started)))

	return StepResult{
		StepName:   step.StepName,
		Response:   &response,
		Validation: validation,
		RetryInfo:  retryResult,
		DurationMs: roundMs(time.Since(started)),
	}, nil
}

// executeToolStep dispatches a tool-backed step through the configured
// ToolDispatcher and normalizes its ToolResult into a model.Response so
// downstream template substitution treats tool output the same as a
// model's output. No semantic validation runs against tool output — a
// tool returns data, not a claim to be epistemically judged.
func (e *Executor) executeToolStep(ctx context.Context, step backend.CompiledStep, ctxMgr *axoncontext.Manager, tracer *trace.Tracer) (StepResult, error) {
	started := time.Now()
	useToolMeta, _ := step.Metadata["use_tool"].(map[string]any)
	toolName, _ := useToolMeta["tool_name"].(string)
	argument, _ := useToolMeta["argument"].(string)
	if toolName == "" {
		toolName = "unknown"
	}

	tracer.EmitModelCall(step.StepName, 0, map[string]any{"tool_name": toolName})

	errCtx := axerrors.ErrorContext{StepName: step.StepName}
	if e.toolDispatcher == nil {
		return StepResult{}, &axerrors.RuntimeError{
			Message: fmt.Sprintf("step %q requires a tool (%q) but no tool dispatcher was configured", step.StepName, toolName),
			Level:   axerrors.LevelStepFailure,
			Context: errCtx,
		}
	}

	argument = substituteCompletedSteps(argument, ctxMgr)
	irUseTool := &ir.UseTool{ToolName: toolName, Argument: argument}
	toolResult := e.toolDispatcher.Dispatch(ctx, irUseTool, map[string]any{"step_name": step.StepName}, nil)

	response := model.Response{}
	if toolResult.Data != nil {
		if structured, ok := toolResult.Data.(map[string]any); ok {
			response.Structured = structured
		}
		if encoded, err := json.Marshal(toolResult.Data); err == nil {
			response.Content = string(encoded)
		}
	}

	if !toolResult.Success {
		return StepResult{}, &axerrors.RuntimeError{
			Message: fmt.Sprintf("tool %q failed: %s", toolName, toolResult.Error),
			Level:   axerrors.LevelStepFailure,
			Context: errCtx,
		}
	}

	_ = ctxMgr.SetStepResult(step.StepName, response.Content)

	isStub, _ := toolResult.Metadata["is_stub"].(bool)
	tracer.EmitStepEnd(step.StepName, map[string]any{
		"success":   true,
		"tool_name": toolName,
		"is_stub":   isStub,
	}, roundMs(time.Since(started)))

	return StepResult{
		StepName:   step.StepName,
		Response:   &response,
		DurationMs: roundMs(time.Since(started)),
	}, nil
}

// callModel builds the step's user prompt, calls the model client, and
// records the exchange in the unit's context manager.
func (e *Executor) callModel(ctx context.Context, step backend.CompiledStep, unit backend.CompiledExecutionUnit, ctxMgr *axoncontext.Manager, tracer *trace.Tracer, failureContext string) (model.Response, error) {
	userPrompt := substituteCompletedSteps(step.UserPrompt, ctxMgr)

	preview := userPrompt
	if len(preview) > 200 {
		preview = preview[:200]
	}
	tracer.EmitModelCall(step.StepName, len(userPrompt), map[string]any{
		"effort":         unit.Effort,
		"prompt_preview": preview,
	})

	opts := model.CallOptions{
		Tools:          toToolDeclarations(unit.ToolDeclarations),
		OutputSchema:   step.OutputSchema,
		Effort:         unit.Effort,
		FailureContext: failureContext,
	}

	response, err := e.client.Call(ctx, unit.SystemPrompt, userPrompt, opts)
	if err != nil {
		return model.Response{}, axerrors.NewModelCallError(
			axerrors.ErrorContext{FlowName: unit.FlowName, StepName: step.StepName},
			fmt.Errorf("model call failed for step %q: %w", step.StepName, err),
		)
	}

	tracer.EmitModelResponse(step.StepName, len(response.Content), 0, map[string]any{
		"content_length": len(response.Content),
		"has_structured": response.Structured != nil,
		"has_tool_calls": len(response.ToolCalls) > 0,
		"confidence":     response.Confidence,
	})

	_ = ctxMgr.AppendMessage("user", userPrompt)
	_ = ctxMgr.AppendMessage("assistant", response.Content)

	return response, nil
}

// checkAnchors is a Phase-3 placeholder: every anchor attached to the
// unit is reported as passed without semantic enforcement. Full
// NLI-based anchor checking (comparing the response against each
// anchor's natural-language instruction) is not performed, and the
// pkg/stdlib keyword checkers are not called from here.
func (e *Executor) checkAnchors(unit backend.CompiledExecutionUnit, stepName string, tracer *trace.Tracer) {
	for idx, instruction := range unit.AnchorInstructions {
		anchorName := fmt.Sprintf("anchor_%d", idx)
		tracer.EmitAnchorCheck(anchorName, stepName, true, map[string]any{"instruction": instruction})
	}
}

// validateResponse runs semantic validation when the step declares an
// output schema or an output_type in its metadata; a step with neither
// is untyped prose and skips validation entirely, even if it carries a
// confidence_floor or required_fields.
func (e *Executor) validateResponse(response model.Response, step backend.CompiledStep, stepName string, errCtx axerrors.ErrorContext, tracer *trace.Tracer) (*validate.Result, error) {
	outputType, _ := step.Metadata["output_type"].(string)
	if step.OutputSchema == nil && outputType == "" {
		return nil, nil
	}

	var output any = response.Content
	if response.Structured != nil {
		output = response.Structured
	}

	var confidenceFloor *float64
	if v, ok := step.Metadata["confidence_floor"].(float64); ok {
		confidenceFloor = &v
	}

	var requiredFields []string
	if v, ok := step.Metadata["required_fields"].([]string); ok {
		requiredFields = v
	}

	result, err := e.validator.ValidateAndRaise(output, validate.Options{
		ExpectedType:    outputType,
		ConfidenceFloor: confidenceFloor,
		TypeFields:      requiredFields,
		Tracer:          tracer,
		StepName:        stepName,
	}, errCtx)

	// Supplement the four base checks with full JSON Schema validation
	// when outputType names a user-defined type — the base checks only
	// confirm required fields are present, not that their values conform
	// to the type's declared shape/range.
	if typ, ok := e.types[outputType]; ok && e.schemaValidator != nil {
		schemaViolations := e.schemaValidator.ValidateType(typ, output)
		if len(schemaViolations) > 0 {
			result.Violations = append(result.Violations, schemaViolations...)
			result.IsValid = false
			messages := make([]string, len(schemaViolations))
			for i, v := range schemaViolations {
				messages[i] = v.Message
			}
			return &result, axerrors.NewValidationError(strings.Join(messages, "; "), errCtx, messages)
		}
	}

	if err != nil {
		return &result, err
	}
	return &result, nil
}

// extractRefineConfig reads a retry.Config out of the step's
// "refine" metadata, falling back to nil (run once, no retry) when
// the step has none.
func extractRefineConfig(step backend.CompiledStep) *retry.Config {
	raw, ok := step.Metadata["refine"].(map[string]any)
	if !ok {
		return nil
	}
	cfg := retry.Config{MaxAttempts: 3, PassFailureContext: true, Backoff: retry.BackoffNone}
	if v, ok := raw["max_attempts"].(int); ok {
		cfg.MaxAttempts = v
	}
	if v, ok := raw["pass_failure_context"].(bool); ok {
		cfg.PassFailureContext = v
	}
	if v, ok := raw["backoff"].(string); ok && v != "" {
		cfg.Backoff = v
	}
	if v, ok := raw["on_exhaustion"].(string); ok {
		cfg.OnExhaustion = v
	}
	if v, ok := raw["on_exhaustion_target"].(string); ok {
		cfg.OnExhaustionTarget = v
	}
	return &cfg
}

// substituteCompletedSteps replaces every "{{step_name}}" placeholder
// in prompt with the string form of that step's already-computed
// result, for every step completed so far in this unit.
func substituteCompletedSteps(prompt string, ctxMgr *axoncontext.Manager) string {
	for _, name := range ctxMgr.CompletedSteps() {
		placeholder := "{{" + name + "}}"
		if !strings.Contains(prompt, placeholder) {
			continue
		}
		value, err := ctxMgr.GetStepResult(name)
		if err != nil {
			continue
		}
		prompt = strings.ReplaceAll(prompt, placeholder, fmt.Sprintf("%v", value))
	}
	return prompt
}

func toToolDeclarations(decls []map[string]any) []model.ToolDeclaration {
	if decls == nil {
		return nil
	}
	out := make([]model.ToolDeclaration, len(decls))
	for i, d := range decls {
		out[i] = d
	}
	return out
}

func roundMs(d time.Duration) float64 {
	return float64(d.Microseconds()) / 1000.0
}
