// Package types implements AXON's epistemic type checker: it tracks the
// nature and reliability of information, not memory layout. It is a
// two-phase checker — register every declared name, then validate each
// declaration's body and cross-references against the symbol table.
package types

import (
	"fmt"
	"sort"

	"github.com/Bemarking/axon-ai/pkg/ast"
	"github.com/Bemarking/axon-ai/pkg/axerrors"
)

// EpistemicTypes are types the checker is aware of as unreliability markers.
var EpistemicTypes = set("FactualClaim", "Opinion", "Uncertainty", "Speculation")

// ContentTypes are document/extraction-shaped built-in types.
var ContentTypes = set("Document", "Chunk", "EntityMap", "Summary", "Translation")

// AnalysisTypes are scored/derived analysis built-in types.
var AnalysisTypes = set("RiskScore", "ConfidenceScore", "SentimentScore", "ReasoningChain", "Contradiction")

// BuiltinTypes is the full set of AXON's built-in semantic types.
var BuiltinTypes = union(EpistemicTypes, ContentTypes, AnalysisTypes,
	set("String", "Integer", "Float", "Boolean", "Duration", "List", "StructuredReport"))

// RangedTypes maps built-in types to their implicit numeric range.
var RangedTypes = map[string][2]float64{
	"RiskScore":       {0.0, 1.0},
	"ConfidenceScore": {0.0, 1.0},
	"SentimentScore":  {-1.0, 1.0},
}

// TypeCompatibility lists, per source type, the target types it may substitute for.
var TypeCompatibility = map[string]map[string]bool{
	"FactualClaim":     {"String": true, "CitedFact": true},
	"RiskScore":        {"Float": true},
	"ConfidenceScore":  {"Float": true},
	"SentimentScore":   {"Float": true},
	"StructuredReport": {},
}

// TypeIncompatibility lists, per source type, targets it may never substitute for.
var TypeIncompatibility = map[string]map[string]bool{
	"Opinion":     {"FactualClaim": true, "CitedFact": true},
	"Speculation": {"FactualClaim": true, "CitedFact": true},
	"Float":       {"RiskScore": true, "ConfidenceScore": true, "SentimentScore": true},
}

var (
	ValidTones               = set("precise", "friendly", "formal", "casual", "analytical", "diplomatic", "assertive", "empathetic")
	ValidMemoryScopes        = set("session", "persistent", "none", "ephemeral")
	ValidDepths              = set("shallow", "standard", "deep", "exhaustive")
	ValidBackoffStrategies   = set("none", "linear", "exponential")
	ValidViolationActions    = set("raise", "warn", "log", "escalate", "fallback")
	ValidEffortLevels        = set("low", "medium", "high", "max")
	ValidRetrievalStrategies = set("semantic", "exact", "hybrid")
)

func set(items ...string) map[string]bool {
	m := make(map[string]bool, len(items))
	for _, it := range items {
		m[it] = true
	}
	return m
}

func union(sets ...map[string]bool) map[string]bool {
	out := map[string]bool{}
	for _, s := range sets {
		for k := range s {
			out[k] = true
		}
	}
	return out
}

func sortedKeys(m map[string]bool) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Symbol is a named entity declared somewhere in an AXON program.
type Symbol struct {
	Name     string
	Kind     string // persona | context | anchor | memory | tool | type | flow | intent
	Node     ast.Node
	TypeName string
}

// SymbolTable is the registry of every declared name in a program.
type SymbolTable struct {
	symbols map[string]Symbol
}

func NewSymbolTable() *SymbolTable {
	return &SymbolTable{symbols: map[string]Symbol{}}
}

// Declare registers a name, returning a duplicate-declaration error message if taken.
func (st *SymbolTable) Declare(name, kind string, node ast.Node, typeName string) string {
	if existing, ok := st.symbols[name]; ok {
		line, _ := existing.Node.Pos()
		return fmt.Sprintf("duplicate declaration: %q already defined as %s (first defined at line %d)",
			name, existing.Kind, line)
	}
	st.symbols[name] = Symbol{Name: name, Kind: kind, Node: node, TypeName: typeName}
	return ""
}

func (st *SymbolTable) Lookup(name string) (Symbol, bool) {
	sym, ok := st.symbols[name]
	return sym, ok
}

// Checker runs the epistemic type-check pass over a parsed program.
type Checker struct {
	program   *ast.Program
	symbols   *SymbolTable
	errors    []axerrors.TypeErrorInfo
	userTypes map[string]*ast.TypeDefinition
}

func NewChecker(program *ast.Program) *Checker {
	return &Checker{
		program:   program,
		symbols:   NewSymbolTable(),
		userTypes: map[string]*ast.TypeDefinition{},
	}
}

// Check runs the full two-phase pass and returns every error found.
func (c *Checker) Check() []axerrors.TypeErrorInfo {
	c.errors = nil
	c.registerDeclarations()
	for _, decl := range c.program.Declarations {
		c.checkDeclaration(decl)
	}
	return c.errors
}

func (c *Checker) registerDeclarations() {
	for _, decl := range c.program.Declarations {
		switch d := decl.(type) {
		case *ast.PersonaDefinition:
			c.register(d.Name, "persona", d, "")
		case *ast.ContextDefinition:
			c.register(d.Name, "context", d, "")
		case *ast.AnchorConstraint:
			c.register(d.Name, "anchor", d, "")
		case *ast.MemoryDefinition:
			c.register(d.Name, "memory", d, "")
		case *ast.ToolDefinition:
			c.register(d.Name, "tool", d, "")
		case *ast.TypeDefinition:
			c.register(d.Name, "type", d, "")
			c.userTypes[d.Name] = d
		case *ast.FlowDefinition:
			ret := ""
			if d.ReturnType != nil {
				ret = d.ReturnType.Name
			}
			c.register(d.Name, "flow", d, ret)
		case *ast.IntentNode:
			ret := ""
			if d.OutputType != nil {
				ret = d.OutputType.Name
			}
			c.register(d.Name, "intent", d, ret)
		case *ast.Import, *ast.RunStatement:
			// imports/runs don't declare names
		}
	}
}

func (c *Checker) register(name, kind string, node ast.Node, typeName string) {
	if errMsg := c.symbols.Declare(name, kind, node, typeName); errMsg != "" {
		c.emit(errMsg, node)
	}
}

func (c *Checker) checkDeclaration(decl ast.Node) {
	switch d := decl.(type) {
	case *ast.PersonaDefinition:
		c.checkPersona(d)
	case *ast.ContextDefinition:
		c.checkContext(d)
	case *ast.AnchorConstraint:
		c.checkAnchor(d)
	case *ast.MemoryDefinition:
		c.checkMemory(d)
	case *ast.ToolDefinition:
		c.checkTool(d)
	case *ast.TypeDefinition:
		c.checkTypeDef(d)
	case *ast.FlowDefinition:
		c.checkFlow(d)
	case *ast.IntentNode:
		c.checkIntent(d)
	case *ast.RunStatement:
		c.checkRun(d)
	case *ast.Import:
		// module resolution is a later-phase concern
	}
}

func (c *Checker) checkPersona(n *ast.PersonaDefinition) {
	if n.Tone != "" && !ValidTones[n.Tone] {
		c.emit(fmt.Sprintf("unknown tone %q for persona %q. Valid tones: %s",
			n.Tone, n.Name, joinSorted(ValidTones)), n)
	}
	if n.ConfidenceThreshold != nil {
		c.checkRange(*n.ConfidenceThreshold, 0.0, 1.0, "confidence_threshold", n)
	}
}

func (c *Checker) checkContext(n *ast.ContextDefinition) {
	if n.MemoryScope != "" && !ValidMemoryScopes[n.MemoryScope] {
		c.emit(fmt.Sprintf("unknown memory scope %q in context %q. Valid: %s",
			n.MemoryScope, n.Name, joinSorted(ValidMemoryScopes)), n)
	}
	if n.Depth != "" && !ValidDepths[n.Depth] {
		c.emit(fmt.Sprintf("unknown depth %q in context %q. Valid: %s",
			n.Depth, n.Name, joinSorted(ValidDepths)), n)
	}
	if n.Temperature != nil {
		c.checkRange(*n.Temperature, 0.0, 2.0, "temperature", n)
	}
	if n.MaxTokens != nil && *n.MaxTokens <= 0 {
		c.emit(fmt.Sprintf("max_tokens must be positive, got %d in context %q", *n.MaxTokens, n.Name), n)
	}
}

func (c *Checker) checkAnchor(n *ast.AnchorConstraint) {
	if n.ConfidenceFloor != nil {
		c.checkRange(*n.ConfidenceFloor, 0.0, 1.0, "confidence_floor", n)
	}
	if n.OnViolation != "" && !ValidViolationActions[n.OnViolation] {
		c.emit(fmt.Sprintf("unknown on_violation action %q in anchor %q. Valid: %s",
			n.OnViolation, n.Name, joinSorted(ValidViolationActions)), n)
	}
	if n.OnViolation == "raise" && n.OnViolationTarget == "" {
		c.emit(fmt.Sprintf("anchor %q uses 'raise' but no error type specified", n.Name), n)
	}
}

func (c *Checker) checkMemory(n *ast.MemoryDefinition) {
	if n.Store != "" && !ValidMemoryScopes[n.Store] {
		c.emit(fmt.Sprintf("unknown store type %q in memory %q. Valid: %s",
			n.Store, n.Name, joinSorted(ValidMemoryScopes)), n)
	}
	if n.Retrieval != "" && !ValidRetrievalStrategies[n.Retrieval] {
		c.emit(fmt.Sprintf("unknown retrieval strategy %q in memory %q. Valid: %s",
			n.Retrieval, n.Name, joinSorted(ValidRetrievalStrategies)), n)
	}
}

func (c *Checker) checkTool(n *ast.ToolDefinition) {
	if n.MaxResults != nil && *n.MaxResults <= 0 {
		c.emit(fmt.Sprintf("max_results must be positive, got %d in tool %q", *n.MaxResults, n.Name), n)
	}
}

func (c *Checker) checkTypeDef(n *ast.TypeDefinition) {
	if n.RangeConstraint != nil {
		rc := n.RangeConstraint
		if rc.MinValue >= rc.MaxValue {
			c.emit(fmt.Sprintf("invalid range constraint in type %q: min (%v) must be less than max (%v)",
				n.Name, rc.MinValue, rc.MaxValue), n)
		}
	}
	for i := range n.Fields {
		fld := &n.Fields[i]
		if fld.TypeExpr != nil {
			c.checkTypeReference(fld.TypeExpr.Name)
			if fld.TypeExpr.GenericParam != "" {
				c.checkTypeReference(fld.TypeExpr.GenericParam)
			}
		}
	}
}

func (c *Checker) checkIntent(n *ast.IntentNode) {
	if n.Ask == "" {
		c.emit(fmt.Sprintf("intent %q is missing required 'ask' field — every intent must express a question", n.Name), n)
	}
	if n.OutputType != nil {
		c.checkTypeReference(n.OutputType.Name)
	}
	if n.ConfidenceFloor != nil {
		c.checkRange(*n.ConfidenceFloor, 0.0, 1.0, "confidence_floor", n)
	}
}

func (c *Checker) checkFlow(n *ast.FlowDefinition) {
	for i := range n.Parameters {
		if n.Parameters[i].TypeExpr != nil {
			c.checkTypeReference(n.Parameters[i].TypeExpr.Name)
		}
	}
	if n.ReturnType != nil {
		c.checkTypeReference(n.ReturnType.Name)
	}
	stepNames := map[string]bool{}
	for _, step := range n.Body {
		c.checkFlowStep(step, stepNames, n.Name)
	}
}

func (c *Checker) checkFlowStep(step ast.Node, stepNames map[string]bool, flowName string) {
	switch s := step.(type) {
	case *ast.StepNode:
		c.checkStep(s, stepNames, flowName)
	case *ast.ProbeDirective:
		c.checkProbe(s)
	case *ast.ReasonChain:
		c.checkReason(s)
	case *ast.ValidateGate:
		c.checkValidate(s)
	case *ast.RefineBlock:
		c.checkRefine(s)
	case *ast.WeaveNode:
		c.checkWeave(s)
	case *ast.ConditionalNode:
		c.checkConditional(s, stepNames, flowName)
	case *ast.RememberNode:
		c.checkRemember(s)
	case *ast.RecallNode:
		c.checkRecall(s)
	}
}

func (c *Checker) checkStep(n *ast.StepNode, stepNames map[string]bool, flowName string) {
	if stepNames[n.Name] {
		c.emit(fmt.Sprintf("duplicate step name %q in flow %q", n.Name, flowName), n)
	}
	stepNames[n.Name] = true

	if n.ConfidenceFloor != nil {
		c.checkRange(*n.ConfidenceFloor, 0.0, 1.0, "confidence_floor", n)
	}
	if n.Probe != nil {
		c.checkProbe(n.Probe)
	}
	if n.Reason != nil {
		c.checkReason(n.Reason)
	}
	if n.Weave != nil {
		c.checkWeave(n.Weave)
	}
	if n.UseTool != nil {
		c.checkUseTool(n.UseTool)
	}
}

func (c *Checker) checkProbe(n *ast.ProbeDirective) {
	if len(n.Fields) == 0 {
		c.emit("probe directive is missing extraction fields", n)
	}
}

func (c *Checker) checkReason(n *ast.ReasonChain) {
	if n.Depth < 1 {
		c.emit(fmt.Sprintf("reasoning depth must be >= 1, got %d", n.Depth), n)
	}
}

func (c *Checker) checkValidate(n *ast.ValidateGate) {
	if n.Schema != "" {
		c.checkTypeReference(n.Schema)
	}
	if len(n.Rules) == 0 {
		c.emit("validate gate has no rules — at least one rule is required", n)
	}
}

func (c *Checker) checkRefine(n *ast.RefineBlock) {
	if n.MaxAttempts < 1 {
		c.emit(fmt.Sprintf("refine max_attempts must be >= 1, got %d", n.MaxAttempts), n)
	}
	if n.Backoff != "" && !ValidBackoffStrategies[n.Backoff] {
		c.emit(fmt.Sprintf("unknown backoff strategy %q. Valid: %s", n.Backoff, joinSorted(ValidBackoffStrategies)), n)
	}
}

func (c *Checker) checkWeave(n *ast.WeaveNode) {
	if len(n.Sources) < 2 {
		c.emit(fmt.Sprintf("weave requires at least 2 sources to synthesize — got %d", len(n.Sources)), n)
	}
}

func (c *Checker) checkUseTool(n *ast.UseToolNode) {
	if n.ToolName == "" {
		return
	}
	if sym, ok := c.symbols.Lookup(n.ToolName); ok && sym.Kind != "tool" {
		c.emit(fmt.Sprintf("%q is a %s, not a tool", n.ToolName, sym.Kind), n)
	}
}

func (c *Checker) checkRemember(n *ast.RememberNode) {
	if n.MemoryTarget == "" {
		return
	}
	if sym, ok := c.symbols.Lookup(n.MemoryTarget); ok && sym.Kind != "memory" {
		c.emit(fmt.Sprintf("'remember' target %q is a %s, not a memory store", n.MemoryTarget, sym.Kind), n)
	}
}

func (c *Checker) checkRecall(n *ast.RecallNode) {
	if n.MemorySource == "" {
		return
	}
	if sym, ok := c.symbols.Lookup(n.MemorySource); ok && sym.Kind != "memory" {
		c.emit(fmt.Sprintf("'recall' source %q is a %s, not a memory store", n.MemorySource, sym.Kind), n)
	}
}

func (c *Checker) checkConditional(n *ast.ConditionalNode, stepNames map[string]bool, flowName string) {
	if n.ThenStep != nil {
		c.checkFlowStep(n.ThenStep, stepNames, flowName)
	}
	if n.ElseStep != nil {
		c.checkFlowStep(n.ElseStep, stepNames, flowName)
	}
}

func (c *Checker) checkRun(n *ast.RunStatement) {
	if n.FlowName != "" {
		if sym, ok := c.symbols.Lookup(n.FlowName); !ok {
			c.emit(fmt.Sprintf("undefined flow %q in run statement", n.FlowName), n)
		} else if sym.Kind != "flow" {
			c.emit(fmt.Sprintf("%q is a %s, not a flow — only flows can be run", n.FlowName, sym.Kind), n)
		}
	}
	if n.Persona != "" {
		if sym, ok := c.symbols.Lookup(n.Persona); !ok {
			c.emit(fmt.Sprintf("undefined persona %q", n.Persona), n)
		} else if sym.Kind != "persona" {
			c.emit(fmt.Sprintf("%q is a %s, not a persona", n.Persona, sym.Kind), n)
		}
	}
	if n.Context != "" {
		if sym, ok := c.symbols.Lookup(n.Context); !ok {
			c.emit(fmt.Sprintf("undefined context %q", n.Context), n)
		} else if sym.Kind != "context" {
			c.emit(fmt.Sprintf("%q is a %s, not a context", n.Context, sym.Kind), n)
		}
	}
	for _, anchorName := range n.Anchors {
		if sym, ok := c.symbols.Lookup(anchorName); !ok {
			c.emit(fmt.Sprintf("undefined anchor %q", anchorName), n)
		} else if sym.Kind != "anchor" {
			c.emit(fmt.Sprintf("%q is a %s, not an anchor", anchorName, sym.Kind), n)
		}
	}
	if n.Effort != "" && !ValidEffortLevels[n.Effort] {
		c.emit(fmt.Sprintf("unknown effort level %q. Valid: %s", n.Effort, joinSorted(ValidEffortLevels)), n)
	}
}

// CheckTypeCompatible reports whether source can substitute for target
// under AXON's epistemic rules. Identity and Uncertainty (which taints
// and propagates everywhere) are always compatible.
func CheckTypeCompatible(source, target string) bool {
	if source == target {
		return true
	}
	if source == "Uncertainty" {
		return true
	}
	if blocked, ok := TypeIncompatibility[source]; ok && blocked[target] {
		return false
	}
	if allowed, ok := TypeCompatibility[source]; ok && allowed[target] {
		return true
	}
	if source == "StructuredReport" {
		return true
	}
	return false
}

// CheckUncertaintyPropagation returns "Uncertainty" if typeName is
// Uncertainty — unreliable input data taints the output type.
func CheckUncertaintyPropagation(typeName string) string {
	if typeName == "Uncertainty" {
		return "Uncertainty"
	}
	return typeName
}

func (c *Checker) checkTypeReference(typeName string) {
	if BuiltinTypes[typeName] {
		return
	}
	if _, ok := c.userTypes[typeName]; ok {
		return
	}
	// Unresolved type names are accepted silently (no error, no warning) —
	// they might come from an imported module or a later compilation phase.
}

func (c *Checker) checkRange(value, lo, hi float64, fieldName string, node ast.Node) {
	if value < lo || value > hi {
		c.emit(fmt.Sprintf("%s must be between %v and %v, got %v", fieldName, lo, hi, value), node)
	}
}

func (c *Checker) emit(message string, node ast.Node) {
	line, col := node.Pos()
	c.errors = append(c.errors, axerrors.TypeErrorInfo{Message: message, Line: line, Column: col, Severity: "error"})
}

func joinSorted(m map[string]bool) string {
	keys := sortedKeys(m)
	out := ""
	for i, k := range keys {
		if i > 0 {
			out += ", "
		}
		out += k
	}
	return out
}
