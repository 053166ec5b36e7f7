package ir

import (
	"sort"

	"github.com/Bemarking/axon-ai/pkg/ast"
	"github.com/Bemarking/axon-ai/pkg/axerrors"
)

// Generator transforms a type-checked AST into an AXON IR Program.
//
// Usage:
//
//	gen := ir.NewGenerator()
//	program, err := gen.Generate(astProgram)
//
// Generation is two phases: lowering (every declaration becomes its IR
// equivalent, populating name-keyed symbol tables) and resolution
// (every run statement's flow/persona/context/anchor names are looked
// up and its flow's tool references are statically verified). This
// mirrors the reference IRGenerator's visitor-dispatch design, ported
// here as an exhaustive Go type switch rather than a string-keyed
// method registry — see DESIGN.md's REDESIGN FLAG entry.
type Generator struct {
	personas map[string]Persona
	contexts map[string]Context
	anchors  map[string]Anchor
	tools    map[string]ToolSpec
	memories map[string]Memory
	types    map[string]Type
	flows    map[string]Flow
	imports  []Import
	runs     []Run
	stdlib   StdlibResolver
}

// StdlibResolver resolves an `import axon.{namespace}.{name}` reference to
// its IR node. pkg/stdlib.Registry implements this (it can't be referenced
// directly here — pkg/stdlib imports pkg/ir for the node types it builds,
// so the dependency has to run the other way).
type StdlibResolver interface {
	ResolveNode(namespace, name string) (Node, error)
}

// NewGenerator builds a fresh Generator with empty symbol tables and no
// stdlib resolution — `import axon.*` statements are recorded but their
// names never populate the local symbol tables.
func NewGenerator() *Generator {
	return &Generator{
		personas: map[string]Persona{},
		contexts: map[string]Context{},
		anchors:  map[string]Anchor{},
		tools:    map[string]ToolSpec{},
		memories: map[string]Memory{},
		types:    map[string]Type{},
		flows:    map[string]Flow{},
	}
}

// WithStdlib attaches a stdlib resolver so that `import axon.{namespace}
// .{name}` statements pull the named built-in persona/anchor/flow/tool into
// this generator's symbol tables, making it resolvable by a later run
// statement exactly as if it had been declared locally.
func (g *Generator) WithStdlib(r StdlibResolver) *Generator {
	g.stdlib = r
	return g
}

// Generate lowers and cross-resolves a validated AST into an IR Program.
func (g *Generator) Generate(program *ast.Program) (*Program, error) {
	for _, decl := range program.Declarations {
		if _, err := g.visit(decl); err != nil {
			return nil, err
		}
	}

	resolvedRuns := make([]Run, 0, len(g.runs))
	for _, run := range g.runs {
		resolved, err := g.resolveRun(run)
		if err != nil {
			return nil, err
		}
		resolvedRuns = append(resolvedRuns, resolved)
	}

	return &Program{
		base:     base{Line: program.Line, Column: program.Column},
		Personas: mapValues(g.personas),
		Contexts: mapValues(g.contexts),
		Anchors:  mapValues(g.anchors),
		Tools:    mapValues(g.tools),
		Memories: mapValues(g.memories),
		Types:    mapValues(g.types),
		Flows:    mapValues(g.flows),
		Runs:     resolvedRuns,
		Imports:  g.imports,
	}, nil
}

// mapValues returns a map's values sorted by key, for deterministic output.
func mapValues[V any](m map[string]V) []V {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make([]V, 0, len(keys))
	for _, k := range keys {
		out = append(out, m[k])
	}
	return out
}

// visit dispatches a single AST node to its lowering. The switch is
// deliberately exhaustive and explicit (no reflection-based registry)
// so a node type with no case produces a compile-time-visible gap.
func (g *Generator) visit(node ast.Node) (Node, error) {
	switch n := node.(type) {
	case *ast.Import:
		return g.visitImport(n)
	case *ast.PersonaDefinition:
		return g.visitPersona(n), nil
	case *ast.ContextDefinition:
		return g.visitContext(n), nil
	case *ast.AnchorConstraint:
		return g.visitAnchor(n), nil
	case *ast.ToolDefinition:
		return g.visitTool(n), nil
	case *ast.MemoryDefinition:
		return g.visitMemory(n), nil
	case *ast.TypeDefinition:
		return g.visitType(n), nil
	case *ast.FlowDefinition:
		return g.visitFlow(n)
	case *ast.StepNode:
		return g.visitStep(n)
	case *ast.IntentNode:
		return g.visitIntent(n), nil
	case *ast.ProbeDirective:
		return g.visitProbe(n), nil
	case *ast.ReasonChain:
		return g.visitReason(n), nil
	case *ast.WeaveNode:
		return g.visitWeave(n), nil
	case *ast.ValidateGate:
		return g.visitValidate(n), nil
	case *ast.RefineBlock:
		return g.visitRefine(n), nil
	case *ast.UseToolNode:
		return g.visitUseTool(n), nil
	case *ast.RememberNode:
		return g.visitRemember(n), nil
	case *ast.RecallNode:
		return g.visitRecall(n), nil
	case *ast.ConditionalNode:
		return g.visitConditional(n)
	case *ast.RunStatement:
		return g.visitRun(n), nil
	default:
		line, col := node.Pos()
		return nil, axerrors.NewIRError(
			"no IR visitor for this AST node type", line, col, "", "node", nil,
		)
	}
}

// ── declaration visitors ──────────────────────────────────────────

func (g *Generator) visitImport(n *ast.Import) (Import, error) {
	im := Import{
		base:       base{Line: n.Line, Column: n.Column},
		ModulePath: n.ModulePath,
		Names:      n.Names,
	}
	g.imports = append(g.imports, im)

	if g.stdlib != nil && len(n.ModulePath) == 2 && n.ModulePath[0] == "axon" {
		namespace := n.ModulePath[1]
		for _, name := range n.Names {
			node, err := g.stdlib.ResolveNode(namespace, name)
			if err != nil {
				return Import{}, axerrors.NewIRError(
					"import axon."+namespace+"."+name+" could not be resolved: "+err.Error(),
					n.Line, n.Column, name, namespace, nil,
				)
			}
			switch v := node.(type) {
			case Persona:
				g.personas[name] = v
			case Anchor:
				g.anchors[name] = v
			case Flow:
				g.flows[name] = v
			case ToolSpec:
				g.tools[name] = v
			}
		}
	}

	return im, nil
}

func (g *Generator) visitPersona(n *ast.PersonaDefinition) Persona {
	p := Persona{
		base:                base{Line: n.Line, Column: n.Column},
		Name:                n.Name,
		Domain:              n.Domain,
		Tone:                n.Tone,
		ConfidenceThreshold: n.ConfidenceThreshold,
		CiteSources:         n.CiteSources,
		RefuseIf:            n.RefuseIf,
		Language:            n.Language,
		Description:         n.Description,
	}
	g.personas[n.Name] = p
	return p
}

func (g *Generator) visitContext(n *ast.ContextDefinition) Context {
	c := Context{
		base:        base{Line: n.Line, Column: n.Column},
		Name:        n.Name,
		MemoryScope: n.MemoryScope,
		Language:    n.Language,
		Depth:       n.Depth,
		MaxTokens:   n.MaxTokens,
		Temperature: n.Temperature,
		CiteSources: n.CiteSources,
	}
	g.contexts[n.Name] = c
	return c
}

func (g *Generator) visitAnchor(n *ast.AnchorConstraint) Anchor {
	a := Anchor{
		base:              base{Line: n.Line, Column: n.Column},
		Name:              n.Name,
		Require:           n.Require,
		Reject:            n.Reject,
		Enforce:           n.Enforce,
		ConfidenceFloor:   n.ConfidenceFloor,
		UnknownResponse:   n.UnknownResponse,
		OnViolation:       n.OnViolation,
		OnViolationTarget: n.OnViolationTarget,
	}
	g.anchors[n.Name] = a
	return a
}

func (g *Generator) visitTool(n *ast.ToolDefinition) ToolSpec {
	t := ToolSpec{
		base:       base{Line: n.Line, Column: n.Column},
		Name:       n.Name,
		Provider:   n.Provider,
		MaxResults: n.MaxResults,
		FilterExpr: n.FilterExpr,
		Timeout:    n.Timeout,
		Runtime:    n.Runtime,
		Sandbox:    n.Sandbox,
	}
	g.tools[n.Name] = t
	return t
}

func (g *Generator) visitMemory(n *ast.MemoryDefinition) Memory {
	m := Memory{
		base:      base{Line: n.Line, Column: n.Column},
		Name:      n.Name,
		Store:     n.Store,
		Backend:   n.Backend,
		Retrieval: n.Retrieval,
		Decay:     n.Decay,
	}
	g.memories[n.Name] = m
	return m
}

// ── type visitor ──────────────────────────────────────────────────

func (g *Generator) visitType(n *ast.TypeDefinition) Type {
	fields := make([]TypeField, 0, len(n.Fields))
	for _, f := range n.Fields {
		tf := TypeField{base: base{Line: f.Line, Column: f.Column}, Name: f.Name}
		if f.TypeExpr != nil {
			tf.TypeName = f.TypeExpr.Name
			tf.GenericParam = f.TypeExpr.GenericParam
			tf.Optional = f.TypeExpr.Optional
		}
		fields = append(fields, tf)
	}

	var rangeMin, rangeMax *float64
	if n.RangeConstraint != nil {
		min, max := n.RangeConstraint.MinValue, n.RangeConstraint.MaxValue
		rangeMin, rangeMax = &min, &max
	}

	whereExpr := ""
	if n.WhereClause != nil {
		whereExpr = n.WhereClause.Expression
	}

	t := Type{
		base:            base{Line: n.Line, Column: n.Column},
		Name:            n.Name,
		Fields:          fields,
		RangeMin:        rangeMin,
		RangeMax:        rangeMax,
		WhereExpression: whereExpr,
	}
	g.types[n.Name] = t
	return t
}

// ── flow & step visitors ──────────────────────────────────────────

func (g *Generator) visitFlow(n *ast.FlowDefinition) (Flow, error) {
	params := make([]Parameter, 0, len(n.Parameters))
	for _, p := range n.Parameters {
		ip := Parameter{base: base{Line: p.Line, Column: p.Column}, Name: p.Name}
		if p.TypeExpr != nil {
			ip.TypeName = p.TypeExpr.Name
			ip.GenericParam = p.TypeExpr.GenericParam
			ip.Optional = p.TypeExpr.Optional
		}
		params = append(params, ip)
	}

	steps := make([]Node, 0, len(n.Body))
	for _, child := range n.Body {
		lowered, err := g.visit(child)
		if err != nil {
			return Flow{}, err
		}
		steps = append(steps, lowered)
	}

	f := Flow{
		base:       base{Line: n.Line, Column: n.Column},
		Name:       n.Name,
		Parameters: params,
		Steps:      steps,
	}
	if n.ReturnType != nil {
		f.ReturnTypeName = n.ReturnType.Name
		f.ReturnTypeGeneric = n.ReturnType.GenericParam
		f.ReturnTypeOptional = n.ReturnType.Optional
	}
	g.flows[n.Name] = f
	return f, nil
}

func (g *Generator) visitStep(n *ast.StepNode) (Step, error) {
	s := Step{
		base:            base{Line: n.Line, Column: n.Column},
		Name:            n.Name,
		Given:           n.Given,
		Ask:             n.Ask,
		OutputType:      n.OutputType,
		ConfidenceFloor: n.ConfidenceFloor,
	}
	if n.UseTool != nil {
		ut := g.visitUseTool(n.UseTool)
		s.UseTool = &ut
	}
	if n.Probe != nil {
		p := g.visitProbe(n.Probe)
		s.Probe = &p
	}
	if n.Reason != nil {
		r := g.visitReason(n.Reason)
		s.Reason = &r
	}
	if n.Weave != nil {
		w := g.visitWeave(n.Weave)
		s.Weave = &w
	}
	body := make([]Node, 0, len(n.Body))
	for _, child := range n.Body {
		lowered, err := g.visit(child)
		if err != nil {
			return Step{}, err
		}
		body = append(body, lowered)
	}
	s.Body = body
	return s, nil
}

// ── cognitive node visitors ───────────────────────────────────────

func (g *Generator) visitIntent(n *ast.IntentNode) Intent {
	it := Intent{
		base:            base{Line: n.Line, Column: n.Column},
		Name:            n.Name,
		Given:           n.Given,
		Ask:             n.Ask,
		ConfidenceFloor: n.ConfidenceFloor,
	}
	if n.OutputType != nil {
		it.OutputTypeName = n.OutputType.Name
		it.OutputTypeGeneric = n.OutputType.GenericParam
		it.OutputTypeOptional = n.OutputType.Optional
	}
	return it
}

func (g *Generator) visitProbe(n *ast.ProbeDirective) Probe {
	return Probe{
		base:   base{Line: n.Line, Column: n.Column},
		Target: n.Target,
		Fields: n.Fields,
	}
}

// visitReason normalizes Given to always be a slice of strings, even
// when the source wrote a single bare identifier (the parser already
// does this normalization, but the generator mirrors the reference
// implementation's belt-and-suspenders re-normalization here).
func (g *Generator) visitReason(n *ast.ReasonChain) Reason {
	given := n.Given
	if given == nil {
		given = []string{}
	}
	return Reason{
		base:           base{Line: n.Line, Column: n.Column},
		Name:           n.Name,
		About:          n.About,
		Given:          given,
		Depth:          n.Depth,
		ShowWork:       n.ShowWork,
		ChainOfThought: n.ChainOfThought,
		Ask:            n.Ask,
		OutputType:     n.OutputType,
	}
}

func (g *Generator) visitWeave(n *ast.WeaveNode) Weave {
	return Weave{
		base:       base{Line: n.Line, Column: n.Column},
		Sources:    n.Sources,
		Target:     n.Target,
		FormatType: n.FormatType,
		Priority:   n.Priority,
		Style:      n.Style,
	}
}

func (g *Generator) visitValidate(n *ast.ValidateGate) Validate {
	rules := make([]ValidateRule, 0, len(n.Rules))
	for _, r := range n.Rules {
		rules = append(rules, ValidateRule{
			base:            base{Line: r.Line, Column: r.Column},
			Condition:       r.Condition,
			ComparisonOp:    r.ComparisonOp,
			ComparisonValue: r.ComparisonValue,
			Action:          r.Action,
			ActionTarget:    r.ActionTarget,
			ActionParams:    r.ActionParams,
		})
	}
	return Validate{
		base:   base{Line: n.Line, Column: n.Column},
		Target: n.Target,
		Schema: n.Schema,
		Rules:  rules,
	}
}

func (g *Generator) visitRefine(n *ast.RefineBlock) Refine {
	return Refine{
		base:               base{Line: n.Line, Column: n.Column},
		MaxAttempts:        n.MaxAttempts,
		PassFailureContext: n.PassFailureContext,
		Backoff:            n.Backoff,
		OnExhaustion:       n.OnExhaustion,
		OnExhaustionTarget: n.OnExhaustionTarget,
	}
}

func (g *Generator) visitUseTool(n *ast.UseToolNode) UseTool {
	return UseTool{
		base:     base{Line: n.Line, Column: n.Column},
		ToolName: n.ToolName,
		Argument: n.Argument,
	}
}

func (g *Generator) visitRemember(n *ast.RememberNode) Remember {
	return Remember{
		base:         base{Line: n.Line, Column: n.Column},
		Expression:   n.Expression,
		MemoryTarget: n.MemoryTarget,
	}
}

func (g *Generator) visitRecall(n *ast.RecallNode) Recall {
	return Recall{
		base:         base{Line: n.Line, Column: n.Column},
		Query:        n.Query,
		MemorySource: n.MemorySource,
	}
}

func (g *Generator) visitConditional(n *ast.ConditionalNode) (Conditional, error) {
	c := Conditional{
		base:            base{Line: n.Line, Column: n.Column},
		Condition:       n.Condition,
		ComparisonOp:    n.ComparisonOp,
		ComparisonValue: n.ComparisonValue,
	}
	if n.ThenStep != nil {
		then, err := g.visit(n.ThenStep)
		if err != nil {
			return Conditional{}, err
		}
		c.ThenBranch = then
	}
	if n.ElseStep != nil {
		els, err := g.visit(n.ElseStep)
		if err != nil {
			return Conditional{}, err
		}
		c.ElseBranch = els
	}
	return c, nil
}

// ── run statement visitor & cross-reference resolver ──────────────

func (g *Generator) visitRun(n *ast.RunStatement) Run {
	run := Run{
		base:            base{Line: n.Line, Column: n.Column},
		FlowName:        n.FlowName,
		Arguments:       n.Arguments,
		PersonaName:     n.Persona,
		ContextName:     n.Context,
		AnchorNames:     n.Anchors,
		OnFailure:       n.OnFailure,
		OnFailureParams: n.OnFailureParams,
		OutputTo:        n.OutputTo,
		Effort:          n.Effort,
	}
	g.runs = append(g.runs, run)
	return run
}

// resolveRun is the Anchor Enforcer + Tool Resolver integration point:
// anchors named on a run are resolved to Anchor values, the run's flow
// is resolved, and every tool reference reachable from that flow is
// statically verified against the declared tool table.
func (g *Generator) resolveRun(run Run) (Run, error) {
	flow, err := resolveRef(run.FlowName, g.flows, "flow", run)
	if err != nil {
		return Run{}, err
	}
	run.ResolvedFlow = flow

	if run.PersonaName != "" {
		persona, err := resolveRef(run.PersonaName, g.personas, "persona", run)
		if err != nil {
			return Run{}, err
		}
		run.ResolvedPersona = persona
	}

	if run.ContextName != "" {
		ctx, err := resolveRef(run.ContextName, g.contexts, "context", run)
		if err != nil {
			return Run{}, err
		}
		run.ResolvedContext = ctx
	}

	if len(run.AnchorNames) > 0 {
		resolved := make([]*Anchor, 0, len(run.AnchorNames))
		for _, name := range run.AnchorNames {
			a, err := resolveRef(name, g.anchors, "anchor", run)
			if err != nil {
				return Run{}, err
			}
			resolved = append(resolved, a)
		}
		run.ResolvedAnchors = resolved
	}

	if run.ResolvedFlow != nil {
		if err := g.verifyFlowTools(run.ResolvedFlow, run); err != nil {
			return Run{}, err
		}
	}

	return run, nil
}

// resolveRef looks up name in table, returning a pointer to a copy of
// the stored value (maps of structs are not addressable in Go).
func resolveRef[V any](name string, table map[string]V, kind string, referrer Run) (*V, error) {
	v, ok := table[name]
	if !ok {
		available := sortedKeysOf(table)
		return nil, axerrors.NewIRError(
			"run statement references undefined "+kind+" '"+name+"'",
			referrer.Line, referrer.Column, name, kind, available,
		)
	}
	return &v, nil
}

func sortedKeysOf[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// verifyFlowTools is the Tool Resolver's static verification pass:
// every use_tool reachable from a flow's steps must name a declared tool.
func (g *Generator) verifyFlowTools(flow *Flow, run Run) error {
	for _, step := range flow.Steps {
		if err := g.verifyStepTools(step, run); err != nil {
			return err
		}
	}
	return nil
}

func (g *Generator) verifyStepTools(node Node, run Run) error {
	step, ok := node.(Step)
	if !ok {
		return nil
	}
	if step.UseTool != nil && step.UseTool.ToolName != "" {
		if _, ok := g.tools[step.UseTool.ToolName]; !ok {
			available := sortedKeysOf(g.tools)
			return axerrors.NewIRError(
				"step '"+step.Name+"' uses undefined tool '"+step.UseTool.ToolName+"'",
				step.Line, step.Column, step.UseTool.ToolName, "tool", available,
			)
		}
	}
	for _, child := range step.Body {
		if err := g.verifyStepTools(child, run); err != nil {
			return err
		}
	}
	return nil
}
