package backend

import "github.com/Bemarking/axon-ai/pkg/ir"

// Ollama is a stub: Phase 2 expansion should adapt prompts for local
// models (Llama, Mistral, ...) with smaller context windows and
// optional tool support, gracefully degrading where a local model
// lacks tool-calling.
type Ollama struct{}

func (Ollama) Name() string { return "ollama" }

func (Ollama) CompileStep(step ir.Node, context *CompilationContext) (CompiledStep, error) {
	return CompiledStep{}, ErrBackendNotImplemented
}

func (Ollama) CompileSystemPrompt(persona *ir.Persona, context *ir.Context, anchors []*ir.Anchor) (string, error) {
	return "", ErrBackendNotImplemented
}

func (Ollama) CompileToolSpec(tool ir.ToolSpec) (map[string]any, error) {
	return nil, ErrBackendNotImplemented
}
