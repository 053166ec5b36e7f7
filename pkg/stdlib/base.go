// Package stdlib is the AXON standard library: the built-in catalog of
// personas, anchors, flows, and tool specs that an `import axon.{ns}.{Name}`
// statement resolves against. The compiler never hand-writes these IR
// nodes — it asks a Registry to resolve one by namespace and name.
package stdlib

import (
	"fmt"
	"sort"
	"sync"

	"github.com/Bemarking/axon-ai/pkg/ir"
)

// Namespace is one of the four stdlib catalogs an import can reach into.
type Namespace string

const (
	NamespacePersonas Namespace = "personas"
	NamespaceAnchors  Namespace = "anchors"
	NamespaceFlows    Namespace = "flows"
	NamespaceTools    Namespace = "tools"
)

var validNamespaces = map[Namespace]bool{
	NamespacePersonas: true,
	NamespaceAnchors:  true,
	NamespaceFlows:    true,
	NamespaceTools:    true,
}

// CheckerFunc enforces an anchor against rendered model output, returning
// whether it passed and a human-readable violation per failure.
type CheckerFunc func(content string) (passed bool, violations []string)

// Persona pairs a built-in cognitive identity with catalog metadata.
type Persona struct {
	IR          ir.Persona
	Description string
	Version     string
	Category    string
}

// Name returns the persona's IR name.
func (p Persona) Name() string { return p.IR.Name }

// Anchor pairs a built-in hard constraint with its keyword checker and
// catalog metadata.
type Anchor struct {
	IR          ir.Anchor
	Checker     CheckerFunc
	Description string
	Severity    string
	Version     string
}

// Name returns the anchor's IR name.
func (a Anchor) Name() string { return a.IR.Name }

// Check runs the anchor's checker against content. An anchor with no
// checker always passes — mirrors a stdlib anchor declared without
// enforcement logic.
func (a Anchor) Check(content string) (bool, []string) {
	if a.Checker == nil {
		return true, nil
	}
	return a.Checker(content)
}

// Flow pairs a built-in multi-step pipeline with catalog metadata.
type Flow struct {
	IR          ir.Flow
	Description string
	Category    string
	Version     string
}

// Name returns the flow's IR name.
func (f Flow) Name() string { return f.IR.Name }

// Tool pairs a built-in external-capability declaration with catalog
// metadata. Execution itself lives in pkg/tools — this type only carries
// the compile-time spec an `import axon.tools.{Name}` resolves to.
type Tool struct {
	IR             ir.ToolSpec
	Description    string
	RequiresAPIKey bool
	Version        string
}

// Name returns the tool's IR name.
func (t Tool) Name() string { return t.IR.Name }

// Registry is the central catalog of every stdlib component. The zero
// value is ready to use; entries are lazy-loaded on first access.
type Registry struct {
	once     sync.Once
	personas map[string]Persona
	anchors  map[string]Anchor
	flows    map[string]Flow
	tools    map[string]Tool
}

// NewRegistry returns a Registry ready for use.
func NewRegistry() *Registry {
	return &Registry{}
}

func (r *Registry) ensureLoaded() {
	r.once.Do(func() {
		r.personas = make(map[string]Persona, len(allPersonas))
		for _, p := range allPersonas {
			r.personas[p.Name()] = p
		}
		r.anchors = make(map[string]Anchor, len(allAnchors))
		for _, a := range allAnchors {
			r.anchors[a.Name()] = a
		}
		r.flows = make(map[string]Flow, len(allFlows))
		for _, f := range allFlows {
			r.flows[f.Name()] = f
		}
		r.tools = make(map[string]Tool, len(allTools))
		for _, t := range allTools {
			r.tools[t.Name()] = t
		}
	})
}

// Resolve turns an `import axon.{namespace}.{name}` into its IR node.
func (r *Registry) Resolve(namespace Namespace, name string) (ir.Node, error) {
	r.ensureLoaded()
	switch namespace {
	case NamespacePersonas:
		p, ok := r.personas[name]
		if !ok {
			return nil, notFoundErr(namespace, name, r.ListNames(namespace))
		}
		return p.IR, nil
	case NamespaceAnchors:
		a, ok := r.anchors[name]
		if !ok {
			return nil, notFoundErr(namespace, name, r.ListNames(namespace))
		}
		return a.IR, nil
	case NamespaceFlows:
		f, ok := r.flows[name]
		if !ok {
			return nil, notFoundErr(namespace, name, r.ListNames(namespace))
		}
		return f.IR, nil
	case NamespaceTools:
		t, ok := r.tools[name]
		if !ok {
			return nil, notFoundErr(namespace, name, r.ListNames(namespace))
		}
		return t.IR, nil
	default:
		return nil, fmt.Errorf("invalid stdlib namespace %q, valid: personas, anchors, flows, tools", namespace)
	}
}

// ResolveNode is Resolve with a plain-string namespace, satisfying
// ir.StdlibResolver — pkg/ir can't reference the Namespace type without
// importing pkg/stdlib, which would cycle back through pkg/ir.
func (r *Registry) ResolveNode(namespace, name string) (ir.Node, error) {
	ns := Namespace(namespace)
	if !validNamespaces[ns] {
		return nil, fmt.Errorf("invalid stdlib namespace %q, valid: personas, anchors, flows, tools", namespace)
	}
	return r.Resolve(ns, name)
}

// ResolvePersona resolves name to its full Persona entry (IR + metadata).
func (r *Registry) ResolvePersona(name string) (Persona, error) {
	r.ensureLoaded()
	p, ok := r.personas[name]
	if !ok {
		return Persona{}, notFoundErr(NamespacePersonas, name, r.ListNames(NamespacePersonas))
	}
	return p, nil
}

// ResolveAnchor resolves name to its full Anchor entry (IR + checker +
// metadata).
func (r *Registry) ResolveAnchor(name string) (Anchor, error) {
	r.ensureLoaded()
	a, ok := r.anchors[name]
	if !ok {
		return Anchor{}, notFoundErr(NamespaceAnchors, name, r.ListNames(NamespaceAnchors))
	}
	return a, nil
}

// ResolveFlow resolves name to its full Flow entry (IR + metadata).
func (r *Registry) ResolveFlow(name string) (Flow, error) {
	r.ensureLoaded()
	f, ok := r.flows[name]
	if !ok {
		return Flow{}, notFoundErr(NamespaceFlows, name, r.ListNames(NamespaceFlows))
	}
	return f, nil
}

// ResolveTool resolves name to its full Tool entry (IR + metadata).
func (r *Registry) ResolveTool(name string) (Tool, error) {
	r.ensureLoaded()
	t, ok := r.tools[name]
	if !ok {
		return Tool{}, notFoundErr(NamespaceTools, name, r.ListNames(NamespaceTools))
	}
	return t, nil
}

// ListNames returns every registered name in namespace, sorted.
func (r *Registry) ListNames(namespace Namespace) []string {
	r.ensureLoaded()
	var names []string
	switch namespace {
	case NamespacePersonas:
		for n := range r.personas {
			names = append(names, n)
		}
	case NamespaceAnchors:
		for n := range r.anchors {
			names = append(names, n)
		}
	case NamespaceFlows:
		for n := range r.flows {
			names = append(names, n)
		}
	case NamespaceTools:
		for n := range r.tools {
			names = append(names, n)
		}
	}
	sort.Strings(names)
	return names
}

// Has reports whether name is registered under namespace.
func (r *Registry) Has(namespace Namespace, name string) bool {
	r.ensureLoaded()
	switch namespace {
	case NamespacePersonas:
		_, ok := r.personas[name]
		return ok
	case NamespaceAnchors:
		_, ok := r.anchors[name]
		return ok
	case NamespaceFlows:
		_, ok := r.flows[name]
		return ok
	case NamespaceTools:
		_, ok := r.tools[name]
		return ok
	default:
		return false
	}
}

// TotalCount returns the number of registered components across every
// namespace.
func (r *Registry) TotalCount() int {
	r.ensureLoaded()
	return len(r.personas) + len(r.anchors) + len(r.flows) + len(r.tools)
}

func notFoundErr(namespace Namespace, name string, available []string) error {
	if len(available) == 0 {
		available = []string{"(none registered)"}
	}
	return fmt.Errorf("%q not found in axon.%s, available: %v", name, namespace, available)
}

func floatPtr(f float64) *float64 { return &f }
func boolPtr(b bool) *bool        { return &b }
func intPtr(i int) *int           { return &i }
