// Package ir defines the AXON Intermediate Representation: the bridge
// between the language front-end (lexer/parser/types) and the backend
// prompt compilers. Every node is immutable once constructed — the
// generator builds a value, never mutates it in place — mirroring the
// frozen dataclasses of the reference implementation.
package ir

// Node is implemented by every IR node for source-position reporting
// and JSON serialization via the executor/trace layer.
type Node interface {
	Pos() (line, column int)
}

type base struct {
	Line   int
	Column int
}

func (b base) Pos() (int, int) { return b.Line, b.Column }

// Program is the root of a compiled AXON module: every declaration,
// lowered to IR and cross-referenced, ready for backend compilation.
type Program struct {
	base
	Personas []Persona
	Contexts []Context
	Anchors  []Anchor
	Tools    []ToolSpec
	Memories []Memory
	Types    []Type
	Flows    []Flow
	Runs     []Run
	Imports  []Import
}

// Import is a lowered `import axon.anchors.{NoHallucination}` declaration.
type Import struct {
	base
	ModulePath []string
	Names      []string
}

// Persona is the lowered cognitive identity a run statement selects.
type Persona struct {
	base
	Name                string
	Domain              []string
	Tone                string
	ConfidenceThreshold *float64
	CiteSources         *bool
	RefuseIf            []string
	Language            string
	Description         string
}

// Context is the lowered working-memory/session configuration.
type Context struct {
	base
	Name        string
	MemoryScope string
	Language    string
	Depth       string
	MaxTokens   *int
	Temperature *float64
	CiteSources *bool
}

// Anchor is the lowered hard constraint enforced across a run.
type Anchor struct {
	base
	Name               string
	Require            string
	Reject             []string
	Enforce            string
	ConfidenceFloor    *float64
	UnknownResponse    string
	OnViolation        string
	OnViolationTarget  string
}

// ToolSpec is the lowered external-capability declaration.
type ToolSpec struct {
	base
	Name       string
	Provider   string
	MaxResults *int
	FilterExpr string
	Timeout    string
	Runtime    string
	Sandbox    *bool
}

// Memory is the lowered persistent-storage configuration.
type Memory struct {
	base
	Name      string
	Store     string
	Backend   string
	Retrieval string
	Decay     string
}

// TypeField is a single field of a lowered structured type.
type TypeField struct {
	base
	Name         string
	TypeName     string
	GenericParam string
	Optional     bool
}

// Type is a lowered semantic type declaration: scalar range, structured
// fields, or a where-expression, any of which may be absent.
type Type struct {
	base
	Name           string
	Fields         []TypeField
	RangeMin       *float64
	RangeMax       *float64
	WhereExpression string
}

// Parameter is a lowered typed flow parameter.
type Parameter struct {
	base
	Name         string
	TypeName     string
	GenericParam string
	Optional     bool
}

// Flow is the lowered cognitive pipeline: parameters, return type, and
// a body of lowered step/probe/reason/weave/validate/... nodes.
type Flow struct {
	base
	Name               string
	Parameters         []Parameter
	ReturnTypeName     string
	ReturnTypeGeneric  string
	ReturnTypeOptional bool
	Steps              []Node
}

// Step is a lowered named cognitive step, possibly nesting further
// cognitive nodes (probe/reason/weave/use_tool) and sub-steps in Body.
type Step struct {
	base
	Name            string
	Given           string
	Ask             string
	UseTool         *UseTool
	Probe           *Probe
	Reason          *Reason
	Weave           *Weave
	OutputType      string
	ConfidenceFloor *float64
	Body            []Node
}

// Intent is a lowered atomic semantic instruction with typed I/O.
type Intent struct {
	base
	Name               string
	Given              string
	Ask                string
	OutputTypeName     string
	OutputTypeGeneric  string
	OutputTypeOptional bool
	ConfidenceFloor    *float64
}

// Probe is a lowered targeted structured-extraction directive.
type Probe struct {
	base
	Target string
	Fields []string
}

// Reason is a lowered explicit chain-of-thought directive. Given is
// always normalized to a tuple/slice, even when the source had a
// single bare identifier.
type Reason struct {
	base
	Name           string
	About          string
	Given          []string
	Depth          int
	ShowWork       bool
	ChainOfThought bool
	Ask            string
	OutputType     string
}

// Weave is a lowered semantic-synthesis directive combining sources.
type Weave struct {
	base
	Sources    []string
	Target     string
	FormatType string
	Priority   []string
	Style      string
}

// ValidateRule is a single lowered rule inside a validate gate.
// ActionParams is a plain map — Go has no need for the frozen-tuple-
// of-pairs the immutable reference representation used for hashability.
type ValidateRule struct {
	base
	Condition       string
	ComparisonOp    string
	ComparisonValue string
	Action          string
	ActionTarget    string
	ActionParams    map[string]string
}

// Validate is a lowered semantic validation checkpoint.
type Validate struct {
	base
	Target string
	Schema string
	Rules  []ValidateRule
}

// Refine is a lowered adaptive-retry configuration.
type Refine struct {
	base
	MaxAttempts        int
	PassFailureContext bool
	Backoff            string
	OnExhaustion       string
	OnExhaustionTarget string
}

// UseTool is a lowered external tool invocation.
type UseTool struct {
	base
	ToolName string
	Argument string
}

// Remember is a lowered semantic-memory write.
type Remember struct {
	base
	Expression   string
	MemoryTarget string
}

// Recall is a lowered semantic-memory read.
type Recall struct {
	base
	Query        string
	MemorySource string
}

// Conditional is a lowered cognitive branch.
type Conditional struct {
	base
	Condition       string
	ComparisonOp    string
	ComparisonValue string
	ThenBranch      Node
	ElseBranch      Node
}

// Run is the lowered entry point wiring flow + persona + context +
// anchors. It carries both the raw names written in source AND the
// resolved pointers populated by the generator's second pass — this
// is the REDESIGN FLAG decision recorded in DESIGN.md: typed pointer
// fields into the immutable Program rather than a name-keyed lookup
// repeated at every use site. MarshalJSON (in codec.go) omits the
// Resolved* fields to avoid cyclic/duplicated JSON.
type Run struct {
	base
	FlowName        string
	Arguments       []string
	PersonaName     string
	ContextName     string
	AnchorNames     []string
	OnFailure       string
	OnFailureParams map[string]string
	OutputTo        string
	Effort          string

	ResolvedFlow    *Flow
	ResolvedPersona *Persona
	ResolvedContext *Context
	ResolvedAnchors []*Anchor
}
