package backend

import (
	"fmt"
	"strings"

	"github.com/Bemarking/axon-ai/pkg/ir"
)

// Gemini compiles AXON IR to Google Gemini-native prompt structures:
// system_instruction, markdown-formatted step prompts, and function
// declarations in Gemini's uppercase-typed schema format.
type Gemini struct{}

func (Gemini) Name() string { return "gemini" }

func (g Gemini) CompileSystemPrompt(persona *ir.Persona, context *ir.Context, anchors []*ir.Anchor) (string, error) {
	var sections []string
	if persona != nil {
		sections = append(sections, g.compilePersonaBlock(*persona))
	}
	if context != nil {
		sections = append(sections, g.compileContextBlock(*context))
	}
	if len(anchors) > 0 {
		sections = append(sections, g.compileAnchorBlock(anchors))
	}
	return strings.Join(sections, "\n\n"), nil
}

func (Gemini) compilePersonaBlock(persona ir.Persona) string {
	lines := []string{fmt.Sprintf("Your identity is %s.", persona.Name)}
	if persona.Description != "" {
		lines = append(lines, persona.Description)
	}
	if len(persona.Domain) > 0 {
		lines = append(lines, "Expertise areas: "+strings.Join(persona.Domain, ", ")+".")
	}
	if persona.Tone != "" {
		lines = append(lines, "Tone of communication: "+persona.Tone+".")
	}
	if persona.Language != "" {
		lines = append(lines, "Language for all responses: "+persona.Language+".")
	}
	if persona.ConfidenceThreshold != nil {
		lines = append(lines, fmt.Sprintf(
			"Only state claims when you are at least %.0f%% confident.",
			*persona.ConfidenceThreshold*100,
		))
	}
	if persona.CiteSources != nil && *persona.CiteSources {
		lines = append(lines, "Cite sources for factual claims using inline references.")
	}
	if len(persona.RefuseIf) > 0 {
		lines = append(lines, "Decline to respond if: "+strings.Join(persona.RefuseIf, "; ")+".")
	}
	return strings.Join(lines, "\n")
}

func (Gemini) compileContextBlock(context ir.Context) string {
	lines := []string{"## Session Parameters"}
	if context.Depth != "" {
		lines = append(lines, "- Depth: "+geminiDepthInstruction(context.Depth))
	}
	if context.Language != "" {
		lines = append(lines, "- Language: "+context.Language)
	}
	if context.MaxTokens != nil {
		lines = append(lines, fmt.Sprintf("- Target response length: approximately %d tokens", *context.MaxTokens))
	}
	if context.CiteSources != nil && *context.CiteSources {
		lines = append(lines, "- Citations: Required for all factual statements")
	}
	return strings.Join(lines, "\n")
}

func geminiDepthInstruction(depth string) string {
	switch depth {
	case "shallow":
		return "Keep responses brief and high-level."
	case "standard":
		return "Provide clear, moderately detailed responses."
	case "deep":
		return "Provide in-depth, comprehensive analysis."
	case "exhaustive":
		return "Provide the most thorough analysis possible. Cover every aspect in detail."
	default:
		return "Response depth: " + depth + "."
	}
}

func (Gemini) compileAnchorBlock(anchors []*ir.Anchor) string {
	lines := []string{"## Mandatory Constraints", "The following rules are absolute. Never violate them.", ""}
	for i, anchor := range anchors {
		lines = append(lines, fmt.Sprintf("### Constraint %d: %s", i+1, anchor.Name))
		if anchor.Require != "" {
			lines = append(lines, "- **MUST**: "+anchor.Require)
		}
		if len(anchor.Reject) > 0 {
			lines = append(lines, "- **MUST NOT**: "+strings.Join(anchor.Reject, ", "))
		}
		if anchor.Enforce != "" {
			lines = append(lines, "- **Rule**: "+anchor.Enforce)
		}
		if anchor.ConfidenceFloor != nil {
			lines = append(lines, fmt.Sprintf(
				"- **Min Confidence**: %.0f%% — do not make claims below this threshold",
				*anchor.ConfidenceFloor*100,
			))
		}
		if anchor.UnknownResponse != "" {
			lines = append(lines, fmt.Sprintf("- **When uncertain**, respond with: %q", anchor.UnknownResponse))
		}
		lines = append(lines, "")
	}
	return strings.TrimRight(strings.Join(lines, "\n"), "\n")
}

func (g Gemini) CompileStep(step ir.Node, context *CompilationContext) (CompiledStep, error) {
	switch s := step.(type) {
	case ir.Step:
		return g.compileStepNode(s, context), nil
	case ir.Intent:
		return g.compileIntent(s), nil
	case ir.Probe:
		return g.compileProbe(s), nil
	case ir.Reason:
		return g.compileReason(s), nil
	case ir.Weave:
		return g.compileWeave(s), nil
	default:
		return CompiledStep{StepName: fallbackName(step), UserPrompt: fmt.Sprintf("Execute: %T", step)}, nil
	}
}

func (g Gemini) compileStepNode(step ir.Step, context *CompilationContext) CompiledStep {
	var parts []string
	if step.Given != "" {
		parts = append(parts, "**Input:** "+step.Given)
	}

	switch {
	case step.Probe != nil:
		parts = append(parts, g.formatProbe(*step.Probe))
	case step.Reason != nil:
		parts = append(parts, g.formatReason(*step.Reason))
	case step.Weave != nil:
		parts = append(parts, g.formatWeave(*step.Weave))
	case step.Ask != "":
		parts = append(parts, step.Ask)
	}

	if step.OutputType != "" {
		parts = append(parts, "\n**Required output type:** `"+step.OutputType+"`")
	}
	if step.ConfidenceFloor != nil {
		parts = append(parts, fmt.Sprintf(
			"\n**Minimum confidence:** %.0f%%. Express uncertainty if below this threshold.",
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
			decl, _ := g.CompileToolSpec(tool)
			toolDecls = append(toolDecls, decl)
		}
		msg := "\n**Tool to use:** `" + step.UseTool.ToolName + "`"
		if step.UseTool.Argument != "" {
			msg += " with input: " + step.UseTool.Argument
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

func (Gemini) compileIntent(intent ir.Intent) CompiledStep {
	var parts []string
	if intent.Given != "" {
		parts = append(parts, "**Given:** "+intent.Given)
	}
	parts = append(parts, intent.Ask)
	if intent.OutputTypeName != "" {
		typeStr := intent.OutputTypeName
		if intent.OutputTypeGeneric != "" {
			typeStr += "<" + intent.OutputTypeGeneric + ">"
		}
		if intent.OutputTypeOptional {
			typeStr += " (nullable)"
		}
		parts = append(parts, "\n**Expected output:** `"+typeStr+"`")
	}
	if intent.ConfidenceFloor != nil {
		parts = append(parts, fmt.Sprintf("\n**Min confidence:** %.0f%%", *intent.ConfidenceFloor*100))
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

func (Gemini) compileProbe(probe ir.Probe) CompiledStep {
	fieldsStr := strings.Join(probe.Fields, ", ")
	prompt := fmt.Sprintf(
		"Extract the following fields from the given source:\n\n"+
			"**Fields to extract:** %s\n**Source:** %s\n\n"+
			"Return a JSON object with keys: [%s]. Use `null` for fields that cannot be determined.",
		fieldsStr, probe.Target, fieldsStr,
	)
	props := make(map[string]any, len(probe.Fields))
	for _, f := range probe.Fields {
		props[f] = map[string]any{"type": "STRING"}
	}
	return CompiledStep{
		StepName:   "probe_" + probe.Target,
		UserPrompt: prompt,
		OutputSchema: map[string]any{
			"type":       "OBJECT",
			"properties": props,
			"required":   probe.Fields,
		},
		Metadata: map[string]any{
			"ir_node_type":    "probe",
			"required_fields": probe.Fields,
		},
	}
}

func (Gemini) compileReason(reason ir.Reason) CompiledStep {
	var parts []string
	if reason.About != "" {
		parts = append(parts, "**Topic:** "+reason.About)
	}
	if len(reason.Given) > 0 {
		parts = append(parts, "**Base information:** "+strings.Join(reason.Given, ", "))
	}
	if reason.Ask != "" {
		parts = append(parts, "\n"+reason.Ask)
	}
	if reason.Depth > 1 {
		parts = append(parts, fmt.Sprintf(
			"\nPerform a %d-level deep analysis. Each level should build on the insights of the previous one.",
			reason.Depth,
		))
	}
	if reason.ShowWork || reason.ChainOfThought {
		parts = append(parts, "\nThink step by step. Show your complete reasoning process "+
			"explicitly before arriving at your conclusion.")
	}
	if reason.OutputType != "" {
		parts = append(parts, "\n**Output type:** `"+reason.OutputType+"`")
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

func (Gemini) compileWeave(weave ir.Weave) CompiledStep {
	parts := []string{"**Synthesize** the following sources: [" + strings.Join(weave.Sources, ", ") + "]"}
	if weave.Target != "" {
		parts = append(parts, "\n**Target output:** "+weave.Target)
	}
	if weave.FormatType != "" {
		parts = append(parts, "**Format:** "+weave.FormatType)
	}
	if len(weave.Priority) > 0 {
		parts = append(parts, "**Priority order:** "+strings.Join(weave.Priority, " → "))
	}
	if weave.Style != "" {
		parts = append(parts, "**Style:** "+weave.Style)
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

func (Gemini) CompileToolSpec(tool ir.ToolSpec) (map[string]any, error) {
	descParts := []string{"Tool: " + tool.Name}
	if tool.Provider != "" {
		descParts = append(descParts, "Provider: "+tool.Provider)
	}
	if tool.Timeout != "" {
		descParts = append(descParts, "Timeout: "+tool.Timeout)
	}

	properties := map[string]any{
		"query": map[string]any{
			"type":        "STRING",
			"description": "The input query for " + tool.Name,
		},
	}
	if tool.MaxResults != nil {
		properties["max_results"] = map[string]any{
			"type":        "INTEGER",
			"description": "Maximum number of results to return",
		}
	}

	return map[string]any{
		"name":        tool.Name,
		"description": strings.Join(descParts, ". "),
		"parameters": map[string]any{
			"type":       "OBJECT",
			"properties": properties,
			"required":   []string{"query"},
		},
	}, nil
}

func (Gemini) formatProbe(probe ir.Probe) string {
	return fmt.Sprintf("**Extract** from `%s`: [%s]\nReturn structured results as JSON.",
		probe.Target, strings.Join(probe.Fields, ", "))
}

func (Gemini) formatReason(reason ir.Reason) string {
	var parts []string
	if reason.About != "" {
		parts = append(parts, "**Reason about:** "+reason.About)
	}
	if reason.Ask != "" {
		parts = append(parts, reason.Ask)
	}
	if reason.ShowWork {
		parts = append(parts, "Think step by step.")
	}
	return strings.Join(parts, "\n")
}

func (Gemini) formatWeave(weave ir.Weave) string {
	target := weave.Target
	if target == "" {
		target = "a unified result"
	}
	text := fmt.Sprintf("**Synthesize** [%s] into %s", strings.Join(weave.Sources, ", "), target)
	if len(weave.Priority) > 0 {
		text += " (priority: " + strings.Join(weave.Priority, ", ") + ")"
	}
	return text
}
