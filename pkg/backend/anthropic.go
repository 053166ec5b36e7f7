package backend

import (
	"fmt"
	"strings"

	"github.com/Bemarking/axon-ai/pkg/ir"
)

// Anthropic compiles AXON IR to Claude-native prompt structures:
// a system prompt (persona + anchors + context), ordered step
// prompts, and tools in the Anthropic Messages API's input_schema shape.
type Anthropic struct{}

func (Anthropic) Name() string { return "anthropic" }

func (a Anthropic) CompileSystemPrompt(persona *ir.Persona, context *ir.Context, anchors []*ir.Anchor) (string, error) {
	var sections []string
	if persona != nil {
		sections = append(sections, a.compilePersonaBlock(*persona))
	}
	if context != nil {
		sections = append(sections, a.compileContextBlock(*context))
	}
	if len(anchors) > 0 {
		sections = append(sections, a.compileAnchorBlock(anchors))
	}
	return strings.Join(sections, "\n\n"), nil
}

func (Anthropic) compilePersonaBlock(persona ir.Persona) string {
	lines := []string{fmt.Sprintf("You are %s.", persona.Name)}
	if persona.Description != "" {
		lines = append(lines, persona.Description)
	}
	if len(persona.Domain) > 0 {
		lines = append(lines, fmt.Sprintf("Your areas of expertise: %s.", strings.Join(persona.Domain, ", ")))
	}
	if persona.Tone != "" {
		lines = append(lines, fmt.Sprintf("Communication tone: %s.", persona.Tone))
	}
	if persona.Language != "" {
		lines = append(lines, fmt.Sprintf("Respond in: %s.", persona.Language))
	}
	if persona.ConfidenceThreshold != nil {
		lines = append(lines, fmt.Sprintf(
			"Only provide claims you are at least %.0f%% confident about.",
			*persona.ConfidenceThreshold*100,
		))
	}
	if persona.CiteSources != nil && *persona.CiteSources {
		lines = append(lines, "Always cite your sources.")
	}
	if len(persona.RefuseIf) > 0 {
		lines = append(lines, fmt.Sprintf("Refuse to engage if: %s.", strings.Join(persona.RefuseIf, "; ")))
	}
	return strings.Join(lines, "\n")
}

func (Anthropic) compileContextBlock(context ir.Context) string {
	lines := []string{"[SESSION CONFIGURATION]"}
	if context.Depth != "" {
		lines = append(lines, "  Depth: "+depthInstruction(context.Depth))
	}
	if context.Language != "" {
		lines = append(lines, "  Language: "+context.Language)
	}
	if context.MaxTokens != nil {
		lines = append(lines, fmt.Sprintf("  Target response length: ~%d tokens", *context.MaxTokens))
	}
	if context.CiteSources != nil && *context.CiteSources {
		lines = append(lines, "  Citation required: yes")
	}
	return strings.Join(lines, "\n")
}

func depthInstruction(depth string) string {
	switch depth {
	case "shallow":
		return "Provide concise, high-level responses."
	case "standard":
		return "Provide balanced, moderately detailed responses."
	case "deep":
		return "Provide thorough, detailed analysis."
	case "exhaustive":
		return "Provide exhaustive analysis covering all angles. Leave nothing unexamined."
	default:
		return "Analysis depth: " + depth + "."
	}
}

func (Anthropic) compileAnchorBlock(anchors []*ir.Anchor) string {
	lines := []string{"[HARD CONSTRAINTS — THESE RULES ARE ABSOLUTE AND NON-NEGOTIABLE]", ""}
	for i, anchor := range anchors {
		lines = append(lines, fmt.Sprintf("CONSTRAINT %d: %s", i+1, anchor.Name))
		if anchor.Require != "" {
			lines = append(lines, "  → You MUST: "+anchor.Require)
		}
		if len(anchor.Reject) > 0 {
			lines = append(lines, "  → You MUST NOT: "+strings.Join(anchor.Reject, ", "))
		}
		if anchor.Enforce != "" {
			lines = append(lines, "  → ENFORCE: "+anchor.Enforce)
		}
		if anchor.ConfidenceFloor != nil {
			lines = append(lines, fmt.Sprintf(
				"  → MINIMUM CONFIDENCE: %.0f%% — below this threshold, do not make the claim.",
				*anchor.ConfidenceFloor*100,
			))
		}
		if anchor.UnknownResponse != "" {
			lines = append(lines, fmt.Sprintf("  → WHEN UNCERTAIN, respond exactly with: %q", anchor.UnknownResponse))
		}
		lines = append(lines, "")
	}
	return strings.TrimRight(strings.Join(lines, "\n"), "\n")
}

func (a Anthropic) CompileStep(step ir.Node, context *CompilationContext) (CompiledStep, error) {
	switch s := step.(type) {
	case ir.Step:
		return a.compileStepNode(s, context), nil
	case ir.Intent:
		return a.compileIntent(s), nil
	case ir.Probe:
		return a.compileProbe(s), nil
	case ir.Reason:
		return a.compileReason(s), nil
	case ir.Weave:
		return a.compileWeave(s), nil
	default:
		return CompiledStep{
			StepName:   fallbackName(step),
			UserPrompt: fmt.Sprintf("[%T] Execute this operation.", step),
		}, nil
	}
}

func fallbackName(node ir.Node) string {
	return fmt.Sprintf("%T", node)
}

func (a Anthropic) compileStepNode(step ir.Step, context *CompilationContext) CompiledStep {
	var parts []string
	if step.Given != "" {
		parts = append(parts, "Given the input: "+step.Given)
	}

	switch {
	case step.Probe != nil:
		parts = append(parts, a.formatProbe(*step.Probe))
	case step.Reason != nil:
		parts = append(parts, a.formatReason(*step.Reason))
	case step.Weave != nil:
		parts = append(parts, a.formatWeave(*step.Weave))
	case step.Ask != "":
		parts = append(parts, step.Ask)
	}

	if step.OutputType != "" {
		parts = append(parts, "\nYour output MUST conform to the type: "+step.OutputType)
	}
	if step.ConfidenceFloor != nil {
		parts = append(parts, fmt.Sprintf(
			"\nMinimum confidence required: %.0f%%. If you cannot meet this threshold, indicate uncertainty.",
			*step.ConfidenceFloor*100,
		))
	}

	metadata := map[string]any{"ir_node_type": "step"}
	if step.OutputType != "" {
		metadata["output_type"] = step.OutputType
	}
	if step.ConfidenceFloor != nil {
		metadata["confidence_floor"] = *step.ConfidenceFloor
	}

	var toolDecls []map[string]any
	if step.UseTool != nil {
		toolName := step.UseTool.ToolName
		if tool, ok := context.Tools[toolName]; ok {
			decl, _ := a.CompileToolSpec(tool)
			toolDecls = append(toolDecls, decl)
		}
		msg := "\nUse the tool '" + step.UseTool.ToolName + "'"
		if step.UseTool.Argument != "" {
			msg += " with: " + step.UseTool.Argument
		}
		parts = append(parts, msg)
		metadata["use_tool"] = map[string]any{
			"tool_name": step.UseTool.ToolName,
			"argument":  step.UseTool.Argument,
		}
	}

	return CompiledStep{
		StepName:         step.Name,
		UserPrompt:       strings.Join(parts, "\n"),
		ToolDeclarations: toolDecls,
		Metadata:         metadata,
	}
}

func (Anthropic) compileIntent(intent ir.Intent) CompiledStep {
	var parts []string
	if intent.Given != "" {
		parts = append(parts, "Given: "+intent.Given)
	}
	parts = append(parts, intent.Ask)
	if intent.OutputTypeName != "" {
		typeStr := intent.OutputTypeName
		if intent.OutputTypeGeneric != "" {
			typeStr += "<" + intent.OutputTypeGeneric + ">"
		}
		if intent.OutputTypeOptional {
			typeStr += " (may be null)"
		}
		parts = append(parts, "\nExpected output type: "+typeStr)
	}
	if intent.ConfidenceFloor != nil {
		parts = append(parts, fmt.Sprintf("\nMinimum confidence: %.0f%%", *intent.ConfidenceFloor*100))
	}
	metadata := map[string]any{"ir_node_type": "intent"}
	if intent.OutputTypeName != "" {
		metadata["output_type"] = intent.OutputTypeName
	}
	if intent.ConfidenceFloor != nil {
		metadata["confidence_floor"] = *intent.ConfidenceFloor
	}
	return CompiledStep{
		StepName:   intent.Name,
		UserPrompt: strings.Join(parts, "\n"),
		Metadata:   metadata,
	}
}

func (Anthropic) compileProbe(probe ir.Probe) CompiledStep {
	fieldsStr := strings.Join(probe.Fields, ", ")
	prompt := fmt.Sprintf(
		"Analyze the following and extract these specific fields: [%s]\n\n"+
			"Source: %s\n\n"+
			"Return the results as a structured JSON object with exactly these keys: %s. "+
			"If a field cannot be determined, set its value to null.",
		fieldsStr, probe.Target, fieldsStr,
	)
	props := make(map[string]any, len(probe.Fields))
	for _, f := range probe.Fields {
		props[f] = map[string]any{"type": "string"}
	}
	return CompiledStep{
		StepName:   "probe_" + probe.Target,
		UserPrompt: prompt,
		OutputSchema: map[string]any{
			"type":       "object",
			"properties": props,
			"required":   probe.Fields,
		},
		Metadata: map[string]any{
			"ir_node_type":    "probe",
			"required_fields": probe.Fields,
		},
	}
}

func (Anthropic) compileReason(reason ir.Reason) CompiledStep {
	var parts []string
	if reason.About != "" {
		parts = append(parts, "Reason carefully about: "+reason.About)
	}
	if len(reason.Given) > 0 {
		parts = append(parts, "Based on: "+strings.Join(reason.Given, ", "))
	}
	if reason.Ask != "" {
		parts = append(parts, "\n"+reason.Ask)
	}
	if reason.Depth > 1 {
		parts = append(parts, fmt.Sprintf(
			"\nPerform %d levels of analysis, each building on the previous.", reason.Depth,
		))
	}
	if reason.ShowWork || reason.ChainOfThought {
		parts = append(parts, "\nShow your complete reasoning process step by step. "+
			"Make your chain of thought explicit and traceable.")
	}
	if reason.OutputType != "" {
		parts = append(parts, "\nFinal output must conform to type: "+reason.OutputType)
	}
	name := reason.Name
	if name == "" {
		name = "reason_" + reason.About
	}
	metadata := map[string]any{
		"ir_node_type": "reason",
		"depth":        reason.Depth,
		"show_work":    reason.ShowWork,
	}
	if reason.OutputType != "" {
		metadata["output_type"] = reason.OutputType
	}
	return CompiledStep{
		StepName:   name,
		UserPrompt: strings.Join(parts, "\n"),
		Metadata:   metadata,
	}
}

func (Anthropic) compileWeave(weave ir.Weave) CompiledStep {
	parts := []string{fmt.Sprintf(
		"Synthesize the following sources into a coherent result: [%s]",
		strings.Join(weave.Sources, ", "),
	)}
	if weave.Target != "" {
		parts = append(parts, "\nTarget output: "+weave.Target)
	}
	if weave.FormatType != "" {
		parts = append(parts, "Output format: "+weave.FormatType)
	}
	if len(weave.Priority) > 0 {
		parts = append(parts, "Priority ordering (address first to last): "+strings.Join(weave.Priority, " → "))
	}
	if weave.Style != "" {
		parts = append(parts, "Style: "+weave.Style)
	}
	name := "weave"
	if weave.Target != "" {
		name = "weave_" + weave.Target
	}
	return CompiledStep{
		StepName:   name,
		UserPrompt: strings.Join(parts, "\n"),
		Metadata:   map[string]any{"ir_node_type": "weave"},
	}
}

func (Anthropic) CompileToolSpec(tool ir.ToolSpec) (map[string]any, error) {
	descParts := []string{"External tool: " + tool.Name}
	if tool.Provider != "" {
		descParts = append(descParts, "Provider: "+tool.Provider)
	}
	if tool.Timeout != "" {
		descParts = append(descParts, "Timeout: "+tool.Timeout)
	}

	properties := map[string]any{
		"query": map[string]any{
			"type":        "string",
			"description": "The input query for " + tool.Name,
		},
	}
	if tool.MaxResults != nil {
		properties["max_results"] = map[string]any{
			"type":        "integer",
			"description": "Maximum number of results to return",
			"default":     *tool.MaxResults,
		}
	}

	return map[string]any{
		"name":        tool.Name,
		"description": strings.Join(descParts, ". "),
		"input_schema": map[string]any{
			"type":       "object",
			"properties": properties,
			"required":   []string{"query"},
		},
	}, nil
}

func (Anthropic) formatProbe(probe ir.Probe) string {
	fieldsStr := strings.Join(probe.Fields, ", ")
	return fmt.Sprintf("Extract the following from %s: [%s]\nReturn structured results for each field.",
		probe.Target, fieldsStr)
}

func (Anthropic) formatReason(reason ir.Reason) string {
	var parts []string
	if reason.About != "" {
		parts = append(parts, "Reason about: "+reason.About)
	}
	if reason.Ask != "" {
		parts = append(parts, reason.Ask)
	}
	if reason.ShowWork {
		parts = append(parts, "Show your complete reasoning process.")
	}
	return strings.Join(parts, "\n")
}

func (Anthropic) formatWeave(weave ir.Weave) string {
	target := weave.Target
	if target == "" {
		target = "a coherent result"
	}
	text := fmt.Sprintf("Synthesize [%s] into %s", strings.Join(weave.Sources, ", "), target)
	if len(weave.Priority) > 0 {
		text += " prioritizing: " + strings.Join(weave.Priority, ", ")
	}
	return text
}
