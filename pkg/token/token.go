// Package token defines every token kind the AXON lexer can produce,
// derived directly from the AXON grammar's cognitive keywords, literals
// and symbols.
package token

import "fmt"

// Kind identifies the lexical category of a Token.
type Kind int

const (
	ILLEGAL Kind = iota

	// keywords — cognitive primitives & language constructs
	PERSONA
	CONTEXT
	INTENT
	FLOW
	REASON
	ANCHOR
	VALIDATE
	REFINE
	MEMORY
	TOOL
	PROBE
	WEAVE
	STEP
	TYPE
	IMPORT
	RUN
	IF
	ELSE
	USE
	REMEMBER
	RECALL

	// run-statement modifiers
	AS
	WITHIN
	CONSTRAINED_BY
	ON_FAILURE
	OUTPUT_TO
	EFFORT

	// contextual keywords
	FOR
	INTO
	AGAINST
	ABOUT
	FROM
	WHERE

	// field keywords
	GIVEN
	ASK
	OUTPUT

	// literals
	STRING
	INTEGER
	FLOAT
	BOOL
	DURATION
	IDENTIFIER

	// symbols
	LBRACE
	RBRACE
	LPAREN
	RPAREN
	LBRACKET
	RBRACKET
	COLON
	COMMA
	DOT
	ARROW
	DOTDOT
	QUESTION

	// comparison
	LT
	GT
	LTE
	GTE
	EQ
	NEQ

	// special
	EOF
	NEWLINE
	COMMENT
)

var kindNames = map[Kind]string{
	PERSONA: "PERSONA", CONTEXT: "CONTEXT", INTENT: "INTENT", FLOW: "FLOW",
	REASON: "REASON", ANCHOR: "ANCHOR", VALIDATE: "VALIDATE", REFINE: "REFINE",
	MEMORY: "MEMORY", TOOL: "TOOL", PROBE: "PROBE", WEAVE: "WEAVE", STEP: "STEP",
	TYPE: "TYPE", IMPORT: "IMPORT", RUN: "RUN", IF: "IF", ELSE: "ELSE", USE: "USE",
	REMEMBER: "REMEMBER", RECALL: "RECALL", AS: "AS", WITHIN: "WITHIN",
	CONSTRAINED_BY: "CONSTRAINED_BY", ON_FAILURE: "ON_FAILURE", OUTPUT_TO: "OUTPUT_TO",
	EFFORT: "EFFORT", FOR: "FOR", INTO: "INTO", AGAINST: "AGAINST", ABOUT: "ABOUT",
	FROM: "FROM", WHERE: "WHERE", GIVEN: "GIVEN", ASK: "ASK", OUTPUT: "OUTPUT",
	STRING: "STRING", INTEGER: "INTEGER", FLOAT: "FLOAT", BOOL: "BOOL",
	DURATION: "DURATION", IDENTIFIER: "IDENTIFIER", LBRACE: "LBRACE", RBRACE: "RBRACE",
	LPAREN: "LPAREN", RPAREN: "RPAREN", LBRACKET: "LBRACKET", RBRACKET: "RBRACKET",
	COLON: "COLON", COMMA: "COMMA", DOT: "DOT", ARROW: "ARROW", DOTDOT: "DOTDOT",
	QUESTION: "QUESTION", LT: "LT", GT: "GT", LTE: "LTE", GTE: "GTE", EQ: "EQ",
	NEQ: "NEQ", EOF: "EOF", NEWLINE: "NEWLINE", COMMENT: "COMMENT", ILLEGAL: "ILLEGAL",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Keywords maps raw source text to its reserved Kind. "true"/"false" both
// map to BOOL; the parser recovers the boolean value from Token.Value.
var Keywords = map[string]Kind{
	"persona": PERSONA, "context": CONTEXT, "intent": INTENT, "flow": FLOW,
	"reason": REASON, "anchor": ANCHOR, "validate": VALIDATE, "refine": REFINE,
	"memory": MEMORY, "tool": TOOL, "probe": PROBE, "weave": WEAVE, "step": STEP,
	"type": TYPE, "import": IMPORT, "run": RUN, "if": IF, "else": ELSE, "use": USE,
	"remember": REMEMBER, "recall": RECALL, "as": AS, "within": WITHIN,
	"constrained_by": CONSTRAINED_BY, "on_failure": ON_FAILURE, "output_to": OUTPUT_TO,
	"effort": EFFORT, "for": FOR, "into": INTO, "against": AGAINST, "about": ABOUT,
	"from": FROM, "where": WHERE, "given": GIVEN, "ask": ASK, "output": OUTPUT,
	"true": BOOL, "false": BOOL,
}

// DurationSuffixes are the unit suffixes the lexer recognizes on a
// numeric literal to produce a DURATION token instead of INTEGER/FLOAT.
var DurationSuffixes = map[string]bool{
	"s": true, "ms": true, "m": true, "h": true, "d": true,
}

// Token is a single lexeme produced by the lexer: its kind, the raw or
// decoded source text, and its 1-based source position.
type Token struct {
	Kind   Kind
	Value  string
	Line   int
	Column int
}

func (t Token) String() string {
	return fmt.Sprintf("Token(%s, %q, L%d:C%d)", t.Kind, t.Value, t.Line, t.Column)
}
