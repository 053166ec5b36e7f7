package stdlib

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/Bemarking/axon-ai/pkg/ir"
)

// ToolOverlayEntry overrides a subset of a stdlib tool spec's compile-time
// fields without recompiling the catalog — timeouts and provider settings
// are the kind of thing an operator tunes per deployment.
type ToolOverlayEntry struct {
	Provider   string `yaml:"provider,omitempty"`
	MaxResults *int   `yaml:"max_results,omitempty"`
	FilterExpr string `yaml:"filter_expr,omitempty"`
	Timeout    string `yaml:"timeout,omitempty"`
	Runtime    string `yaml:"runtime,omitempty"`
	Sandbox    *bool  `yaml:"sandbox,omitempty"`
}

// ToolOverlay is the `tools.yaml` document shape: one overlay entry per
// tool name, keyed by the stdlib tool's name.
type ToolOverlay struct {
	Tools map[string]ToolOverlayEntry `yaml:"tools"`
}

// LoadToolOverlay reads and parses a tools.yaml overlay file.
func LoadToolOverlay(path string) (*ToolOverlay, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read tool overlay %s: %w", path, err)
	}

	var overlay ToolOverlay
	if err := yaml.Unmarshal(data, &overlay); err != nil {
		return nil, fmt.Errorf("parse tool overlay %s: %w", path, err)
	}
	return &overlay, nil
}

// Apply returns spec with any fields named in the overlay entry for
// spec.Name replaced. Fields the overlay leaves empty keep spec's value.
func (o *ToolOverlay) Apply(spec ir.ToolSpec) ir.ToolSpec {
	if o == nil {
		return spec
	}
	entry, ok := o.Tools[spec.Name]
	if !ok {
		return spec
	}

	if entry.Provider != "" {
		spec.Provider = entry.Provider
	}
	if entry.MaxResults != nil {
		spec.MaxResults = entry.MaxResults
	}
	if entry.FilterExpr != "" {
		spec.FilterExpr = entry.FilterExpr
	}
	if entry.Timeout != "" {
		spec.Timeout = entry.Timeout
	}
	if entry.Runtime != "" {
		spec.Runtime = entry.Runtime
	}
	if entry.Sandbox != nil {
		spec.Sandbox = entry.Sandbox
	}
	return spec
}

// ApplyToRegistry overlays every tool entry in r with the matching
// tools.yaml entry, returning the adjusted IR specs keyed by tool name.
// The Registry's own cached entries are left untouched — this is a
// read-modify-write over a snapshot, not a mutation of the catalog.
func (o *ToolOverlay) ApplyToRegistry(r *Registry) map[string]ir.ToolSpec {
	out := make(map[string]ir.ToolSpec, len(r.ListNames(NamespaceTools)))
	for _, name := range r.ListNames(NamespaceTools) {
		t, err := r.ResolveTool(name)
		if err != nil {
			continue
		}
		out[name] = o.Apply(t.IR)
	}
	return out
}
