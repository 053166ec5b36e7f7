// Package backend compiles AXON IR into provider-specific prompt
// structures. The IR generator produces WHAT to do (model-agnostic);
// a backend produces HOW to say it (model-specific); the executor
// later runs it. Every backend implements the same four-method
// contract; CompileProgram (below) supplies the shared orchestration
// so a backend only has to know how to render prompts and tool specs.
package backend

import (
	"fmt"
	"sort"
	"strings"

	"github.com/Bemarking/axon-ai/pkg/ir"
)

// CompiledStep is the compilation result for a single cognitive step:
// the prompt(s) to send, any tool declarations it needs, and its
// output-format expectation.
type CompiledStep struct {
	StepName         string
	SystemPrompt     string
	UserPrompt       string
	ToolDeclarations []map[string]any
	OutputSchema     map[string]any
	Metadata         map[string]any
}

// CompiledExecutionUnit is one run statement, fully compiled: the
// system prompt (persona + anchors), the ordered step prompts, and
// every tool declaration it may need.
type CompiledExecutionUnit struct {
	FlowName            string
	PersonaName         string
	ContextName         string
	SystemPrompt        string
	Steps               []CompiledStep
	ToolDeclarations    []map[string]any
	AnchorInstructions  []string
	Effort              string
	Metadata            map[string]any
}

// CompiledProgram is the complete compilation output for an AXON
// program: every execution unit plus backend-level metadata.
type CompiledProgram struct {
	BackendName    string
	ExecutionUnits []CompiledExecutionUnit
	Types          map[string]ir.Type
	Metadata       map[string]any
}

// CompilationContext carries state through step compilation: the
// active persona/context/anchors, the program's declared tools, the
// flow being compiled, and the names of steps already compiled.
type CompilationContext struct {
	Persona         *ir.Persona
	Context         *ir.Context
	Anchors         []*ir.Anchor
	Tools           map[string]ir.ToolSpec
	Flow            *ir.Flow
	PriorStepNames  []string
	Effort          string
}

// Backend is the interface every model-specific prompt compiler
// implements. The stub backends (OpenAI, Ollama) return
// ErrBackendNotImplemented from every method; Anthropic and Gemini
// never return an error.
type Backend interface {
	Name() string
	CompileStep(step ir.Node, ctx *CompilationContext) (CompiledStep, error)
	CompileSystemPrompt(persona *ir.Persona, context *ir.Context, anchors []*ir.Anchor) (string, error)
	CompileToolSpec(tool ir.ToolSpec) (map[string]any, error)
}

// CompileAnchorInstruction compiles a single anchor into a natural-
// language enforcement instruction for the system prompt. This is
// shared across every backend (none of the reference implementations
// override it) rather than duplicated per backend.
func CompileAnchorInstruction(anchor *ir.Anchor) string {
	lines := []string{fmt.Sprintf("[CONSTRAINT: %s]", anchor.Name)}
	if anchor.Require != "" {
		lines = append(lines, "  REQUIRE: "+anchor.Require)
	}
	if len(anchor.Reject) > 0 {
		lines = append(lines, "  REJECT: "+strings.Join(anchor.Reject, ", "))
	}
	if anchor.Enforce != "" {
		lines = append(lines, "  ENFORCE: "+anchor.Enforce)
	}
	if anchor.ConfidenceFloor != nil {
		lines = append(lines, fmt.Sprintf("  CONFIDENCE FLOOR: %v", *anchor.ConfidenceFloor))
	}
	if anchor.UnknownResponse != "" {
		lines = append(lines, fmt.Sprintf("  WHEN UNCERTAIN: %q", anchor.UnknownResponse))
	}
	if anchor.OnViolation != "" {
		violation := anchor.OnViolation
		if anchor.OnViolationTarget != "" {
			violation += " " + anchor.OnViolationTarget
		}
		lines = append(lines, "  ON VIOLATION: "+violation)
	}
	return strings.Join(lines, "\n")
}

// attachRefineMetadata folds a refine block's retry configuration into
// the metadata of the step compiled immediately before it, so the
// executor can recover it via CompiledStep.Metadata["refine"] without
// this package needing to know anything about retry semantics.
func attachRefineMetadata(steps []CompiledStep, refine ir.Refine) {
	if len(steps) == 0 {
		return
	}
	last := &steps[len(steps)-1]
	if last.Metadata == nil {
		last.Metadata = map[string]any{}
	}
	last.Metadata["refine"] = map[string]any{
		"max_attempts":         refine.MaxAttempts,
		"pass_failure_context": refine.PassFailureContext,
		"backoff":              refine.Backoff,
		"on_exhaustion":        refine.OnExhaustion,
		"on_exhaustion_target": refine.OnExhaustionTarget,
	}
}

// attachValidateMetadata folds a validate block's gate rules into the
// metadata of the preceding step, mirroring attachRefineMetadata.
func attachValidateMetadata(steps []CompiledStep, validate ir.Validate) {
	if len(steps) == 0 {
		return
	}
	last := &steps[len(steps)-1]
	if last.Metadata == nil {
		last.Metadata = map[string]any{}
	}
	rules := make([]map[string]any, 0, len(validate.Rules))
	for _, r := range validate.Rules {
		rules = append(rules, map[string]any{
			"condition":        r.Condition,
			"comparison_op":    r.ComparisonOp,
			"comparison_value": r.ComparisonValue,
			"action":           r.Action,
			"action_target":    r.ActionTarget,
		})
	}
	last.Metadata["validate_gate"] = map[string]any{
		"target": validate.Target,
		"schema": validate.Schema,
		"rules":  rules,
	}
}

// CompileProgram compiles a full IR program using b, iterating every
// resolved run statement and delegating prompt rendering to b. This
// is the shared orchestration logic every reference backend inherited
// from BaseBackend.compile_program — here a plain function taking the
// interface, since Go has no abstract-base-class default methods.
func CompileProgram(b Backend, program *ir.Program) (*CompiledProgram, error) {
	tools := make(map[string]ir.ToolSpec, len(program.Tools))
	for _, t := range program.Tools {
		tools[t.Name] = t
	}

	units := make([]CompiledExecutionUnit, 0, len(program.Runs))
	for _, run := range program.Runs {
		if run.ResolvedFlow == nil {
			continue
		}

		ctx := &CompilationContext{
			Persona: run.ResolvedPersona,
			Context: run.ResolvedContext,
			Anchors: run.ResolvedAnchors,
			Tools:   tools,
			Flow:    run.ResolvedFlow,
			Effort:  run.Effort,
		}

		systemPrompt, err := b.CompileSystemPrompt(run.ResolvedPersona, run.ResolvedContext, run.ResolvedAnchors)
		if err != nil {
			return nil, err
		}

		anchorInstructions := make([]string, 0, len(run.ResolvedAnchors))
		for _, a := range run.ResolvedAnchors {
			anchorInstructions = append(anchorInstructions, CompileAnchorInstruction(a))
		}

		toolNames := make([]string, 0, len(tools))
		for name := range tools {
			toolNames = append(toolNames, name)
		}
		sort.Strings(toolNames)
		toolDeclarations := make([]map[string]any, 0, len(toolNames))
		for _, name := range toolNames {
			decl, err := b.CompileToolSpec(tools[name])
			if err != nil {
				return nil, err
			}
			toolDeclarations = append(toolDeclarations, decl)
		}

		compiledSteps := make([]CompiledStep, 0, len(run.ResolvedFlow.Steps))
		for _, step := range run.ResolvedFlow.Steps {
			// refine/validate blocks are DSL-level modifiers on the step
			// immediately preceding them in flow order, not steps in
			// their own right — fold their configuration into that
			// step's metadata instead of compiling a pseudo-step for them.
			if refine, ok := step.(ir.Refine); ok {
				attachRefineMetadata(compiledSteps, refine)
				continue
			}
			if validate, ok := step.(ir.Validate); ok {
				attachValidateMetadata(compiledSteps, validate)
				continue
			}

			compiled, err := b.CompileStep(step, ctx)
			if err != nil {
				return nil, err
			}
			compiledSteps = append(compiledSteps, compiled)
			name := ""
			if s, ok := step.(ir.Step); ok {
				name = s.Name
			}
			ctx.PriorStepNames = append(ctx.PriorStepNames, name)
		}

		units = append(units, CompiledExecutionUnit{
			FlowName:           run.FlowName,
			PersonaName:        run.PersonaName,
			ContextName:        run.ContextName,
			SystemPrompt:       systemPrompt,
			Steps:              compiledSteps,
			ToolDeclarations:   toolDeclarations,
			AnchorInstructions: anchorInstructions,
			Effort:             run.Effort,
		})
	}

	types := make(map[string]ir.Type, len(program.Types))
	for _, t := range program.Types {
		types[t.Name] = t
	}

	return &CompiledProgram{
		BackendName:    b.Name(),
		ExecutionUnits: units,
		Types:          types,
	}, nil
}
