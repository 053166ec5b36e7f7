package backend

import (
	"errors"

	"github.com/Bemarking/axon-ai/pkg/ir"
)

// ErrBackendNotImplemented is returned by every method of a stub backend.
var ErrBackendNotImplemented = errors.New("backend not implemented")

// OpenAI is a stub: Phase 2 expansion should compile IR into OpenAI
// Chat Completions structures (system/user/assistant roles,
// function_call/tool_call declarations, JSON mode for structured
// output). See Anthropic for the reference shape to follow.
type OpenAI struct{}

func (OpenAI) Name() string { return "openai" }

func (OpenAI) CompileStep(step ir.Node, context *CompilationContext) (CompiledStep, error) {
	return CompiledStep{}, ErrBackendNotImplemented
}

func (OpenAI) CompileSystemPrompt(persona *ir.Persona, context *ir.Context, anchors []*ir.Anchor) (string, error) {
	return "", ErrBackendNotImplemented
}

func (OpenAI) CompileToolSpec(tool ir.ToolSpec) (map[string]any, error) {
	return nil, ErrBackendNotImplemented
}
