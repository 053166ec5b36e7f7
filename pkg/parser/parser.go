// Package parser implements AXON's recursive-descent parser: token
// stream in, cognitive AST out. One method per EBNF grammar rule.
package parser

import (
	"strconv"
	"strings"

	"github.com/Bemarking/axon-ai/pkg/ast"
	"github.com/Bemarking/axon-ai/pkg/axerrors"
	"github.com/Bemarking/axon-ai/pkg/token"
)

// Parser turns a token slice into an *ast.Program.
type Parser struct {
	tokens   []token.Token
	pos      int
	warnings []string
}

// New wraps a token slice for parsing.
func New(tokens []token.Token) *Parser {
	return &Parser{tokens: tokens}
}

// Warnings returns non-fatal notices accumulated during parsing (e.g.
// unknown fields skipped). Empty unless something was skipped.
func (p *Parser) Warnings() []string { return p.warnings }

// Parse consumes the full token stream and returns the program root.
func (p *Parser) Parse() (*ast.Program, error) {
	prog := &ast.Program{}
	prog.Line, prog.Column = 1, 1
	for !p.check(token.EOF) {
		decl, err := p.parseDeclaration()
		if err != nil {
			return nil, err
		}
		if decl != nil {
			prog.Declarations = append(prog.Declarations, decl)
		}
	}
	return prog, nil
}

func (p *Parser) parseDeclaration() (ast.Node, error) {
	tok := p.current()
	switch tok.Kind {
	case token.IMPORT:
		return p.parseImport()
	case token.PERSONA:
		return p.parsePersona()
	case token.CONTEXT:
		return p.parseContext()
	case token.ANCHOR:
		return p.parseAnchor()
	case token.MEMORY:
		return p.parseMemory()
	case token.TOOL:
		return p.parseTool()
	case token.TYPE:
		return p.parseType()
	case token.FLOW:
		return p.parseFlow()
	case token.INTENT:
		return p.parseIntent()
	case token.RUN:
		return p.parseRun()
	default:
		return nil, axerrors.NewParseError("unexpected token at top level", tok.Line, tok.Column,
			"declaration (persona, context, anchor, flow, run, ...)", tok.Value)
	}
}

// ── IMPORT ──────────────────────────────────────────────────────────

func (p *Parser) parseImport() (*ast.Import, error) {
	tok, err := p.consume(token.IMPORT)
	if err != nil {
		return nil, err
	}
	node := &ast.Import{}
	node.Line, node.Column = tok.Line, tok.Column

	first, err := p.consume(token.IDENTIFIER)
	if err != nil {
		return nil, err
	}
	pathParts := []string{first.Value}
	for p.check(token.DOT) {
		p.advance()
		if p.check(token.LBRACE) {
			break
		}
		part, err := p.consume(token.IDENTIFIER)
		if err != nil {
			return nil, err
		}
		pathParts = append(pathParts, part.Value)
	}
	node.ModulePath = pathParts

	if p.check(token.LBRACE) {
		p.advance()
		names, err := p.parseIdentifierList()
		if err != nil {
			return nil, err
		}
		node.Names = names
		if _, err := p.consume(token.RBRACE); err != nil {
			return nil, err
		}
	}
	return node, nil
}

// ── PERSONA ─────────────────────────────────────────────────────────

func (p *Parser) parsePersona() (*ast.PersonaDefinition, error) {
	tok, err := p.consume(token.PERSONA)
	if err != nil {
		return nil, err
	}
	name, err := p.consume(token.IDENTIFIER)
	if err != nil {
		return nil, err
	}
	node := &ast.PersonaDefinition{Name: name.Value}
	node.Line, node.Column = tok.Line, tok.Column
	if _, err := p.consume(token.LBRACE); err != nil {
		return nil, err
	}

	for !p.check(token.RBRACE) {
		fieldName := p.current().Value
		p.advance()
		if _, err := p.consume(token.COLON); err != nil {
			return nil, err
		}

		switch fieldName {
		case "domain":
			if node.Domain, err = p.parseStringList(); err != nil {
				return nil, err
			}
		case "tone":
			t, err := p.consumeAnyIdentifierOrKeyword()
			if err != nil {
				return nil, err
			}
			node.Tone = t.Value
		case "confidence_threshold":
			v, err := p.consumeFloatValue(token.FLOAT)
			if err != nil {
				return nil, err
			}
			node.ConfidenceThreshold = &v
		case "cite_sources":
			v, err := p.parseBool()
			if err != nil {
				return nil, err
			}
			node.CiteSources = &v
		case "refuse_if":
			if node.RefuseIf, err = p.parseBracketedIdentifiers(); err != nil {
				return nil, err
			}
		case "language":
			t, err := p.consume(token.STRING)
			if err != nil {
				return nil, err
			}
			node.Language = t.Value
		case "description":
			t, err := p.consume(token.STRING)
			if err != nil {
				return nil, err
			}
			node.Description = t.Value
		default:
			p.skipValue()
			p.warnings = append(p.warnings, "skipped unknown persona field: "+fieldName)
		}
	}
	if _, err := p.consume(token.RBRACE); err != nil {
		return nil, err
	}
	return node, nil
}

// ── CONTEXT ─────────────────────────────────────────────────────────

func (p *Parser) parseContext() (*ast.ContextDefinition, error) {
	tok, err := p.consume(token.CONTEXT)
	if err != nil {
		return nil, err
	}
	name, err := p.consume(token.IDENTIFIER)
	if err != nil {
		return nil, err
	}
	node := &ast.ContextDefinition{Name: name.Value}
	node.Line, node.Column = tok.Line, tok.Column
	if _, err := p.consume(token.LBRACE); err != nil {
		return nil, err
	}

	for !p.check(token.RBRACE) {
		fieldName := p.current().Value
		p.advance()
		if _, err := p.consume(token.COLON); err != nil {
			return nil, err
		}

		switch fieldName {
		case "memory":
			t, err := p.consumeAnyIdentifierOrKeyword()
			if err != nil {
				return nil, err
			}
			node.MemoryScope = t.Value
		case "language":
			t, err := p.consume(token.STRING)
			if err != nil {
				return nil, err
			}
			node.Language = t.Value
		case "depth":
			t, err := p.consumeAnyIdentifierOrKeyword()
			if err != nil {
				return nil, err
			}
			node.Depth = t.Value
		case "max_tokens":
			t, err := p.consume(token.INTEGER)
			if err != nil {
				return nil, err
			}
			iv, _ := strconv.Atoi(t.Value)
			node.MaxTokens = &iv
		case "temperature":
			v, err := p.consumeFloatValue(token.FLOAT)
			if err != nil {
				return nil, err
			}
			node.Temperature = &v
		case "cite_sources":
			v, err := p.parseBool()
			if err != nil {
				return nil, err
			}
			node.CiteSources = &v
		default:
			p.skipValue()
			p.warnings = append(p.warnings, "skipped unknown context field: "+fieldName)
		}
	}
	if _, err := p.consume(token.RBRACE); err != nil {
		return nil, err
	}
	return node, nil
}

// ── ANCHOR ──────────────────────────────────────────────────────────

func (p *Parser) parseAnchor() (*ast.AnchorConstraint, error) {
	tok, err := p.consume(token.ANCHOR)
	if err != nil {
		return nil, err
	}
	name, err := p.consume(token.IDENTIFIER)
	if err != nil {
		return nil, err
	}
	node := &ast.AnchorConstraint{Name: name.Value}
	node.Line, node.Column = tok.Line, tok.Column
	if _, err := p.consume(token.LBRACE); err != nil {
		return nil, err
	}

	for !p.check(token.RBRACE) {
		fieldName := p.current().Value
		p.advance()
		if _, err := p.consume(token.COLON); err != nil {
			return nil, err
		}

		switch fieldName {
		case "require":
			t, err := p.consumeAnyIdentifierOrKeyword()
			if err != nil {
				return nil, err
			}
			node.Require = t.Value
		case "reject":
			if node.Reject, err = p.parseBracketedIdentifiers(); err != nil {
				return nil, err
			}
		case "enforce":
			t, err := p.consumeAnyIdentifierOrKeyword()
			if err != nil {
				return nil, err
			}
			node.Enforce = t.Value
		case "confidence_floor":
			v, err := p.consumeFloatValue(token.FLOAT)
			if err != nil {
				return nil, err
			}
			node.ConfidenceFloor = &v
		case "unknown_response":
			t, err := p.consume(token.STRING)
			if err != nil {
				return nil, err
			}
			node.UnknownResponse = t.Value
		case "on_violation":
			action, target, err := p.parseViolationAction()
			if err != nil {
				return nil, err
			}
			node.OnViolation = action
			node.OnViolationTarget = target
		default:
			p.skipValue()
			p.warnings = append(p.warnings, "skipped unknown anchor field: "+fieldName)
		}
	}
	if _, err := p.consume(token.RBRACE); err != nil {
		return nil, err
	}
	return node, nil
}

func (p *Parser) parseViolationAction() (action, target string, err error) {
	tok := p.current()
	switch tok.Value {
	case "raise":
		p.advance()
		t, err := p.consume(token.IDENTIFIER)
		if err != nil {
			return "", "", err
		}
		return "raise", t.Value, nil
	case "warn", "log", "escalate":
		p.advance()
		return tok.Value, "", nil
	case "fallback":
		p.advance()
		if _, err := p.consume(token.LPAREN); err != nil {
			return "", "", err
		}
		msg, err := p.consume(token.STRING)
		if err != nil {
			return "", "", err
		}
		if _, err := p.consume(token.RPAREN); err != nil {
			return "", "", err
		}
		return "fallback", msg.Value, nil
	default:
		p.advance()
		return tok.Value, "", nil
	}
}

// ── MEMORY ──────────────────────────────────────────────────────────

func (p *Parser) parseMemory() (*ast.MemoryDefinition, error) {
	tok, err := p.consume(token.MEMORY)
	if err != nil {
		return nil, err
	}
	name, err := p.consume(token.IDENTIFIER)
	if err != nil {
		return nil, err
	}
	node := &ast.MemoryDefinition{Name: name.Value}
	node.Line, node.Column = tok.Line, tok.Column
	if _, err := p.consume(token.LBRACE); err != nil {
		return nil, err
	}

	for !p.check(token.RBRACE) {
		fieldName := p.current().Value
		p.advance()
		if _, err := p.consume(token.COLON); err != nil {
			return nil, err
		}

		switch fieldName {
		case "store":
			t, err := p.consumeAnyIdentifierOrKeyword()
			if err != nil {
				return nil, err
			}
			node.Store = t.Value
		case "backend":
			t, err := p.consumeAnyIdentifierOrKeyword()
			if err != nil {
				return nil, err
			}
			node.Backend = t.Value
		case "retrieval":
			t, err := p.consumeAnyIdentifierOrKeyword()
			if err != nil {
				return nil, err
			}
			node.Retrieval = t.Value
		case "decay":
			if p.check(token.DURATION) {
				node.Decay = p.advance().Value
			} else {
				t, err := p.consumeAnyIdentifierOrKeyword()
				if err != nil {
					return nil, err
				}
				node.Decay = t.Value
			}
		default:
			p.skipValue()
			p.warnings = append(p.warnings, "skipped unknown memory field: "+fieldName)
		}
	}
	if _, err := p.consume(token.RBRACE); err != nil {
		return nil, err
	}
	return node, nil
}

// ── TOOL ────────────────────────────────────────────────────────────

func (p *Parser) parseTool() (*ast.ToolDefinition, error) {
	tok, err := p.consume(token.TOOL)
	if err != nil {
		return nil, err
	}
	name, err := p.consume(token.IDENTIFIER)
	if err != nil {
		return nil, err
	}
	node := &ast.ToolDefinition{Name: name.Value}
	node.Line, node.Column = tok.Line, tok.Column
	if _, err := p.consume(token.LBRACE); err != nil {
		return nil, err
	}

	for !p.check(token.RBRACE) {
		fieldName := p.current().Value
		p.advance()
		if _, err := p.consume(token.COLON); err != nil {
			return nil, err
		}

		switch fieldName {
		case "provider":
			t, err := p.consumeAnyIdentifierOrKeyword()
			if err != nil {
				return nil, err
			}
			node.Provider = t.Value
		case "max_results":
			t, err := p.consume(token.INTEGER)
			if err != nil {
				return nil, err
			}
			iv, _ := strconv.Atoi(t.Value)
			node.MaxResults = &iv
		case "filter":
			expr, err := p.parseFilterExpression()
			if err != nil {
				return nil, err
			}
			node.FilterExpr = expr
		case "timeout":
			t, err := p.consume(token.DURATION)
			if err != nil {
				return nil, err
			}
			node.Timeout = t.Value
		case "runtime":
			t, err := p.consumeAnyIdentifierOrKeyword()
			if err != nil {
				return nil, err
			}
			node.Runtime = t.Value
		case "sandbox":
			v, err := p.parseBool()
			if err != nil {
				return nil, err
			}
			node.Sandbox = &v
		default:
			p.skipValue()
			p.warnings = append(p.warnings, "skipped unknown tool field: "+fieldName)
		}
	}
	if _, err := p.consume(token.RBRACE); err != nil {
		return nil, err
	}
	return node, nil
}

func (p *Parser) parseFilterExpression() (string, error) {
	name, err := p.consumeAnyIdentifierOrKeyword()
	if err != nil {
		return "", err
	}
	if p.check(token.LPAREN) {
		p.advance()
		var b strings.Builder
		b.WriteString(name.Value)
		b.WriteString("(")
		for !p.check(token.RPAREN) {
			b.WriteString(p.advance().Value)
		}
		if _, err := p.consume(token.RPAREN); err != nil {
			return "", err
		}
		b.WriteString(")")
		return b.String(), nil
	}
	return name.Value, nil
}

// ── TYPE ────────────────────────────────────────────────────────────

func (p *Parser) parseType() (*ast.TypeDefinition, error) {
	tok, err := p.consume(token.TYPE)
	if err != nil {
		return nil, err
	}
	name, err := p.consume(token.IDENTIFIER)
	if err != nil {
		return nil, err
	}
	node := &ast.TypeDefinition{Name: name.Value}
	node.Line, node.Column = tok.Line, tok.Column

	if p.check(token.LPAREN) {
		p.advance()
		minVal, err := p.consumeNumber()
		if err != nil {
			return nil, err
		}
		if _, err := p.consume(token.DOTDOT); err != nil {
			return nil, err
		}
		maxVal, err := p.consumeNumber()
		if err != nil {
			return nil, err
		}
		if _, err := p.consume(token.RPAREN); err != nil {
			return nil, err
		}
		rc := &ast.RangeConstraint{MinValue: minVal, MaxValue: maxVal}
		rc.Line, rc.Column = tok.Line, tok.Column
		node.RangeConstraint = rc
	}

	if p.check(token.WHERE) {
		p.advance()
		var parts []string
		for !p.check(token.LBRACE) && !p.atDeclarationStart() {
			if p.check(token.EOF) {
				break
			}
			parts = append(parts, p.advance().Value)
		}
		wc := &ast.WhereClause{Expression: strings.Join(parts, " ")}
		wc.Line, wc.Column = tok.Line, tok.Column
		node.WhereClause = wc
	}

	if p.check(token.LBRACE) {
		p.advance()
		for !p.check(token.RBRACE) {
			fieldName, err := p.consume(token.IDENTIFIER)
			if err != nil {
				return nil, err
			}
			if _, err := p.consume(token.COLON); err != nil {
				return nil, err
			}
			typeExpr, err := p.parseTypeExpr()
			if err != nil {
				return nil, err
			}
			tf := ast.TypeField{Name: fieldName.Value, TypeExpr: typeExpr}
			tf.Line, tf.Column = fieldName.Line, fieldName.Column
			node.Fields = append(node.Fields, tf)
			if p.check(token.COMMA) {
				p.advance()
			}
		}
		if _, err := p.consume(token.RBRACE); err != nil {
			return nil, err
		}
	}

	return node, nil
}

func (p *Parser) parseTypeExpr() (*ast.TypeExpr, error) {
	nameTok, err := p.consume(token.IDENTIFIER)
	if err != nil {
		return nil, err
	}
	node := &ast.TypeExpr{Name: nameTok.Value}
	node.Line, node.Column = nameTok.Line, nameTok.Column

	if p.check(token.LT) {
		p.advance()
		param, err := p.consume(token.IDENTIFIER)
		if err != nil {
			return nil, err
		}
		node.GenericParam = param.Value
		if _, err := p.consume(token.GT); err != nil {
			return nil, err
		}
	}

	if p.check(token.QUESTION) {
		p.advance()
		node.Optional = true
	}

	return node, nil
}

// ── INTENT ──────────────────────────────────────────────────────────

func (p *Parser) parseIntent() (*ast.IntentNode, error) {
	tok, err := p.consume(token.INTENT)
	if err != nil {
		return nil, err
	}
	name, err := p.consume(token.IDENTIFIER)
	if err != nil {
		return nil, err
	}
	node := &ast.IntentNode{Name: name.Value}
	node.Line, node.Column = tok.Line, tok.Column
	if _, err := p.consume(token.LBRACE); err != nil {
		return nil, err
	}

	for !p.check(token.RBRACE) {
		fieldName := p.current().Value
		p.advance()
		if _, err := p.consume(token.COLON); err != nil {
			return nil, err
		}

		switch fieldName {
		case "given":
			t, err := p.consume(token.IDENTIFIER)
			if err != nil {
				return nil, err
			}
			node.Given = t.Value
		case "ask":
			t, err := p.consume(token.STRING)
			if err != nil {
				return nil, err
			}
			node.Ask = t.Value
		case "output":
			te, err := p.parseTypeExpr()
			if err != nil {
				return nil, err
			}
			node.OutputType = te
		case "confidence_floor":
			v, err := p.consumeFloatValue(token.FLOAT)
			if err != nil {
				return nil, err
			}
			node.ConfidenceFloor = &v
		default:
			p.skipValue()
			p.warnings = append(p.warnings, "skipped unknown intent field: "+fieldName)
		}
	}
	if _, err := p.consume(token.RBRACE); err != nil {
		return nil, err
	}
	return node, nil
}

// ── FLOW ────────────────────────────────────────────────────────────

func (p *Parser) parseFlow() (*ast.FlowDefinition, error) {
	tok, err := p.consume(token.FLOW)
	if err != nil {
		return nil, err
	}
	name, err := p.consume(token.IDENTIFIER)
	if err != nil {
		return nil, err
	}
	node := &ast.FlowDefinition{Name: name.Value}
	node.Line, node.Column = tok.Line, tok.Column

	if _, err := p.consume(token.LPAREN); err != nil {
		return nil, err
	}
	if !p.check(token.RPAREN) {
		params, err := p.parseParamList()
		if err != nil {
			return nil, err
		}
		node.Parameters = params
	}
	if _, err := p.consume(token.RPAREN); err != nil {
		return nil, err
	}

	if p.check(token.ARROW) {
		p.advance()
		rt, err := p.parseTypeExpr()
		if err != nil {
			return nil, err
		}
		node.ReturnType = rt
	}

	if _, err := p.consume(token.LBRACE); err != nil {
		return nil, err
	}
	for !p.check(token.RBRACE) {
		step, err := p.parseFlowStep()
		if err != nil {
			return nil, err
		}
		if step != nil {
			node.Body = append(node.Body, step)
		}
	}
	if _, err := p.consume(token.RBRACE); err != nil {
		return nil, err
	}

	return node, nil
}

func (p *Parser) parseParamList() ([]ast.Parameter, error) {
	var params []ast.Parameter
	name, err := p.consume(token.IDENTIFIER)
	if err != nil {
		return nil, err
	}
	if _, err := p.consume(token.COLON); err != nil {
		return nil, err
	}
	te, err := p.parseTypeExpr()
	if err != nil {
		return nil, err
	}
	param := ast.Parameter{Name: name.Value, TypeExpr: te}
	param.Line, param.Column = name.Line, name.Column
	params = append(params, param)

	for p.check(token.COMMA) {
		p.advance()
		name, err := p.consume(token.IDENTIFIER)
		if err != nil {
			return nil, err
		}
		if _, err := p.consume(token.COLON); err != nil {
			return nil, err
		}
		te, err := p.parseTypeExpr()
		if err != nil {
			return nil, err
		}
		param := ast.Parameter{Name: name.Value, TypeExpr: te}
		param.Line, param.Column = name.Line, name.Column
		params = append(params, param)
	}
	return params, nil
}

// ── FLOW STEPS ──────────────────────────────────────────────────────

func (p *Parser) parseFlowStep() (ast.Node, error) {
	tok := p.current()
	switch tok.Kind {
	case token.STEP:
		return p.parseStep()
	case token.PROBE:
		return p.parseProbe()
	case token.REASON:
		return p.parseReason()
	case token.VALIDATE:
		return p.parseValidate()
	case token.REFINE:
		return p.parseRefine()
	case token.WEAVE:
		return p.parseWeave()
	case token.USE:
		return p.parseUseTool()
	case token.REMEMBER:
		return p.parseRemember()
	case token.RECALL:
		return p.parseRecall()
	case token.IF:
		return p.parseIf()
	default:
		return nil, axerrors.NewParseError("unexpected token in flow body", tok.Line, tok.Column,
			"step, probe, reason, validate, refine, weave, use, remember, recall, if", tok.Value)
	}
}

func (p *Parser) parseStep() (*ast.StepNode, error) {
	tok, err := p.consume(token.STEP)
	if err != nil {
		return nil, err
	}
	name, err := p.consume(token.IDENTIFIER)
	if err != nil {
		return nil, err
	}
	node := &ast.StepNode{Name: name.Value}
	node.Line, node.Column = tok.Line, tok.Column
	if _, err := p.consume(token.LBRACE); err != nil {
		return nil, err
	}

	for !p.check(token.RBRACE) {
		inner := p.current()
		switch {
		case inner.Kind == token.GIVEN:
			p.advance()
			if _, err := p.consume(token.COLON); err != nil {
				return nil, err
			}
			s, err := p.parseExpressionString()
			if err != nil {
				return nil, err
			}
			node.Given = s
		case inner.Kind == token.ASK:
			p.advance()
			if _, err := p.consume(token.COLON); err != nil {
				return nil, err
			}
			t, err := p.consume(token.STRING)
			if err != nil {
				return nil, err
			}
			node.Ask = t.Value
		case inner.Kind == token.USE:
			ut, err := p.parseUseTool()
			if err != nil {
				return nil, err
			}
			node.UseTool = ut
		case inner.Kind == token.PROBE:
			pd, err := p.parseProbe()
			if err != nil {
				return nil, err
			}
			node.Probe = pd
		case inner.Kind == token.REASON:
			rc, err := p.parseReason()
			if err != nil {
				return nil, err
			}
			node.Reason = rc
		case inner.Kind == token.WEAVE:
			wn, err := p.parseWeave()
			if err != nil {
				return nil, err
			}
			node.Weave = wn
		case inner.Kind == token.OUTPUT:
			p.advance()
			if _, err := p.consume(token.COLON); err != nil {
				return nil, err
			}
			t, err := p.consume(token.IDENTIFIER)
			if err != nil {
				return nil, err
			}
			node.OutputType = t.Value
		case inner.Kind == token.IDENTIFIER && inner.Value == "confidence_floor":
			p.advance()
			if _, err := p.consume(token.COLON); err != nil {
				return nil, err
			}
			v, err := p.consumeFloatValue(token.FLOAT)
			if err != nil {
				return nil, err
			}
			node.ConfidenceFloor = &v
		default:
			return nil, axerrors.NewParseError("unexpected token in step body", inner.Line, inner.Column,
				"given, ask, use, probe, reason, weave, output, confidence_floor", inner.Value)
		}
	}
	if _, err := p.consume(token.RBRACE); err != nil {
		return nil, err
	}
	return node, nil
}

// ── PROBE ───────────────────────────────────────────────────────────

func (p *Parser) parseProbe() (*ast.ProbeDirective, error) {
	tok, err := p.consume(token.PROBE)
	if err != nil {
		return nil, err
	}
	target, err := p.consume(token.IDENTIFIER)
	if err != nil {
		return nil, err
	}
	if _, err := p.consume(token.FOR); err != nil {
		return nil, err
	}
	fields, err := p.parseBracketedIdentifiers()
	if err != nil {
		return nil, err
	}
	node := &ast.ProbeDirective{Target: target.Value, Fields: fields}
	node.Line, node.Column = tok.Line, tok.Column
	return node, nil
}

// ── REASON ──────────────────────────────────────────────────────────

func (p *Parser) parseReason() (*ast.ReasonChain, error) {
	tok, err := p.consume(token.REASON)
	if err != nil {
		return nil, err
	}
	node := &ast.ReasonChain{}
	node.Line, node.Column = tok.Line, tok.Column

	if p.check(token.ABOUT) {
		p.advance()
		t, err := p.consume(token.IDENTIFIER)
		if err != nil {
			return nil, err
		}
		node.About = t.Value
	} else if p.check(token.IDENTIFIER) {
		node.Name = p.current().Value
		p.advance()
	}

	if _, err := p.consume(token.LBRACE); err != nil {
		return nil, err
	}

	for !p.check(token.RBRACE) {
		fieldName := p.current().Value
		p.advance()
		if _, err := p.consume(token.COLON); err != nil {
			return nil, err
		}

		switch fieldName {
		case "given":
			s, err := p.parseExpressionString()
			if err != nil {
				return nil, err
			}
			node.Given = []string{s}
		case "about":
			t, err := p.consume(token.STRING)
			if err != nil {
				return nil, err
			}
			node.About = t.Value
		case "ask":
			t, err := p.consume(token.STRING)
			if err != nil {
				return nil, err
			}
			node.Ask = t.Value
		case "depth":
			t, err := p.consume(token.INTEGER)
			if err != nil {
				return nil, err
			}
			iv, _ := strconv.Atoi(t.Value)
			node.Depth = iv
		case "show_work":
			v, err := p.parseBool()
			if err != nil {
				return nil, err
			}
			node.ShowWork = v
		case "chain_of_thought":
			v, err := p.parseBool()
			if err != nil {
				return nil, err
			}
			node.ChainOfThought = v
		case "output":
			t, err := p.consume(token.IDENTIFIER)
			if err != nil {
				return nil, err
			}
			node.OutputType = t.Value
		default:
			p.skipValue()
			p.warnings = append(p.warnings, "skipped unknown reason field: "+fieldName)
		}
	}
	if _, err := p.consume(token.RBRACE); err != nil {
		return nil, err
	}
	return node, nil
}

// ── VALIDATE ────────────────────────────────────────────────────────

func (p *Parser) parseValidate() (*ast.ValidateGate, error) {
	tok, err := p.consume(token.VALIDATE)
	if err != nil {
		return nil, err
	}
	target, err := p.parseDottedIdentifier()
	if err != nil {
		return nil, err
	}
	if _, err := p.consume(token.AGAINST); err != nil {
		return nil, err
	}
	schema, err := p.consume(token.IDENTIFIER)
	if err != nil {
		return nil, err
	}
	node := &ast.ValidateGate{Target: target, Schema: schema.Value}
	node.Line, node.Column = tok.Line, tok.Column
	if _, err := p.consume(token.LBRACE); err != nil {
		return nil, err
	}

	for !p.check(token.RBRACE) {
		rule, err := p.parseValidateRule()
		if err != nil {
			return nil, err
		}
		node.Rules = append(node.Rules, *rule)
	}
	if _, err := p.consume(token.RBRACE); err != nil {
		return nil, err
	}
	return node, nil
}

func (p *Parser) parseValidateRule() (*ast.ValidateRule, error) {
	tok, err := p.consume(token.IF)
	if err != nil {
		return nil, err
	}
	rule := &ast.ValidateRule{ActionParams: map[string]string{}}
	rule.Line, rule.Column = tok.Line, tok.Column

	cond, err := p.consumeAnyIdentifierOrKeyword()
	if err != nil {
		return nil, err
	}
	rule.Condition = cond.Value

	if p.checkComparison() {
		rule.ComparisonOp = p.advance().Value
		rule.ComparisonValue = p.advance().Value
	}

	if _, err := p.consume(token.ARROW); err != nil {
		return nil, err
	}

	actionTok := p.current()
	switch actionTok.Value {
	case "refine":
		p.advance()
		rule.Action = "refine"
		if p.check(token.LPAREN) {
			p.advance()
			for !p.check(token.RPAREN) {
				key, err := p.consumeAnyIdentifierOrKeyword()
				if err != nil {
					return nil, err
				}
				if _, err := p.consume(token.COLON); err != nil {
					return nil, err
				}
				val := p.advance().Value
				rule.ActionParams[key.Value] = val
				if p.check(token.COMMA) {
					p.advance()
				}
			}
			if _, err := p.consume(token.RPAREN); err != nil {
				return nil, err
			}
		}
	case "raise":
		p.advance()
		rule.Action = "raise"
		t, err := p.consume(token.IDENTIFIER)
		if err != nil {
			return nil, err
		}
		rule.ActionTarget = t.Value
	case "warn":
		p.advance()
		rule.Action = "warn"
		t, err := p.consume(token.STRING)
		if err != nil {
			return nil, err
		}
		rule.ActionTarget = t.Value
	case "pass":
		p.advance()
		rule.Action = "pass"
	default:
		p.advance()
		rule.Action = actionTok.Value
	}

	return rule, nil
}

// ── REFINE ──────────────────────────────────────────────────────────

func (p *Parser) parseRefine() (*ast.RefineBlock, error) {
	tok, err := p.consume(token.REFINE)
	if err != nil {
		return nil, err
	}
	node := &ast.RefineBlock{MaxAttempts: 3, PassFailureContext: true, Backoff: "none"}
	node.Line, node.Column = tok.Line, tok.Column
	if _, err := p.consume(token.LBRACE); err != nil {
		return nil, err
	}

	for !p.check(token.RBRACE) {
		fieldName := p.current().Value
		p.advance()
		if _, err := p.consume(token.COLON); err != nil {
			return nil, err
		}

		switch fieldName {
		case "max_attempts":
			t, err := p.consume(token.INTEGER)
			if err != nil {
				return nil, err
			}
			iv, _ := strconv.Atoi(t.Value)
			node.MaxAttempts = iv
		case "pass_failure_context":
			v, err := p.parseBool()
			if err != nil {
				return nil, err
			}
			node.PassFailureContext = v
		case "backoff":
			t, err := p.consumeAnyIdentifierOrKeyword()
			if err != nil {
				return nil, err
			}
			node.Backoff = t.Value
		case "on_exhaustion":
			action, target, err := p.parseViolationAction()
			if err != nil {
				return nil, err
			}
			node.OnExhaustion = action
			node.OnExhaustionTarget = target
		default:
			p.skipValue()
			p.warnings = append(p.warnings, "skipped unknown refine field: "+fieldName)
		}
	}
	if _, err := p.consume(token.RBRACE); err != nil {
		return nil, err
	}
	return node, nil
}

// ── WEAVE ───────────────────────────────────────────────────────────

func (p *Parser) parseWeave() (*ast.WeaveNode, error) {
	tok, err := p.consume(token.WEAVE)
	if err != nil {
		return nil, err
	}
	sources, err := p.parseBracketedDotIdentifiers()
	if err != nil {
		return nil, err
	}
	if _, err := p.consume(token.INTO); err != nil {
		return nil, err
	}
	target, err := p.consume(token.IDENTIFIER)
	if err != nil {
		return nil, err
	}
	node := &ast.WeaveNode{Sources: sources, Target: target.Value}
	node.Line, node.Column = tok.Line, tok.Column

	if p.check(token.LBRACE) {
		p.advance()
		for !p.check(token.RBRACE) {
			fieldName := p.current().Value
			p.advance()
			if _, err := p.consume(token.COLON); err != nil {
				return nil, err
			}

			switch fieldName {
			case "format":
				t, err := p.consume(token.IDENTIFIER)
				if err != nil {
					return nil, err
				}
				node.FormatType = t.Value
			case "priority":
				pr, err := p.parseBracketedIdentifiers()
				if err != nil {
					return nil, err
				}
				node.Priority = pr
			case "style":
				t, err := p.consume(token.STRING)
				if err != nil {
					return nil, err
				}
				node.Style = t.Value
			default:
				p.skipValue()
				p.warnings = append(p.warnings, "skipped unknown weave field: "+fieldName)
			}
		}
		if _, err := p.consume(token.RBRACE); err != nil {
			return nil, err
		}
	}

	return node, nil
}

// ── USE TOOL ────────────────────────────────────────────────────────

func (p *Parser) parseUseTool() (*ast.UseToolNode, error) {
	tok, err := p.consume(token.USE)
	if err != nil {
		return nil, err
	}
	toolName, err := p.consume(token.IDENTIFIER)
	if err != nil {
		return nil, err
	}
	if _, err := p.consume(token.LPAREN); err != nil {
		return nil, err
	}
	arg := ""
	if p.check(token.STRING) {
		arg = p.advance().Value
	} else if !p.check(token.RPAREN) {
		t, err := p.consumeAnyIdentifierOrKeyword()
		if err != nil {
			return nil, err
		}
		arg = t.Value
	}
	if _, err := p.consume(token.RPAREN); err != nil {
		return nil, err
	}
	node := &ast.UseToolNode{ToolName: toolName.Value, Argument: arg}
	node.Line, node.Column = tok.Line, tok.Column
	return node, nil
}

// ── REMEMBER / RECALL ───────────────────────────────────────────────

func (p *Parser) parseRemember() (*ast.RememberNode, error) {
	tok, err := p.consume(token.REMEMBER)
	if err != nil {
		return nil, err
	}
	if _, err := p.consume(token.LPAREN); err != nil {
		return nil, err
	}
	expr, err := p.consume(token.IDENTIFIER)
	if err != nil {
		return nil, err
	}
	if _, err := p.consume(token.RPAREN); err != nil {
		return nil, err
	}
	if _, err := p.consume(token.ARROW); err != nil {
		return nil, err
	}
	target, err := p.consume(token.IDENTIFIER)
	if err != nil {
		return nil, err
	}
	node := &ast.RememberNode{Expression: expr.Value, MemoryTarget: target.Value}
	node.Line, node.Column = tok.Line, tok.Column
	return node, nil
}

func (p *Parser) parseRecall() (*ast.RecallNode, error) {
	tok, err := p.consume(token.RECALL)
	if err != nil {
		return nil, err
	}
	if _, err := p.consume(token.LPAREN); err != nil {
		return nil, err
	}
	var query string
	if p.check(token.STRING) {
		query = p.advance().Value
	} else {
		t, err := p.consume(token.IDENTIFIER)
		if err != nil {
			return nil, err
		}
		query = t.Value
	}
	if _, err := p.consume(token.RPAREN); err != nil {
		return nil, err
	}
	if _, err := p.consume(token.FROM); err != nil {
		return nil, err
	}
	source, err := p.consume(token.IDENTIFIER)
	if err != nil {
		return nil, err
	}
	node := &ast.RecallNode{Query: query, MemorySource: source.Value}
	node.Line, node.Column = tok.Line, tok.Column
	return node, nil
}

// ── IF / CONDITIONAL ────────────────────────────────────────────────

func (p *Parser) parseIf() (*ast.ConditionalNode, error) {
	tok, err := p.consume(token.IF)
	if err != nil {
		return nil, err
	}
	node := &ast.ConditionalNode{}
	node.Line, node.Column = tok.Line, tok.Column

	cond, err := p.consumeAnyIdentifierOrKeyword()
	if err != nil {
		return nil, err
	}
	node.Condition = cond.Value
	if p.checkComparison() {
		node.ComparisonOp = p.advance().Value
		node.ComparisonValue = p.advance().Value
	}

	if _, err := p.consume(token.ARROW); err != nil {
		return nil, err
	}
	thenStep, err := p.parseFlowStep()
	if err != nil {
		return nil, err
	}
	node.ThenStep = thenStep

	if p.check(token.ELSE) {
		p.advance()
		if _, err := p.consume(token.ARROW); err != nil {
			return nil, err
		}
		elseStep, err := p.parseFlowStep()
		if err != nil {
			return nil, err
		}
		node.ElseStep = elseStep
	}

	return node, nil
}

// ── RUN ─────────────────────────────────────────────────────────────

func (p *Parser) parseRun() (*ast.RunStatement, error) {
	tok, err := p.consume(token.RUN)
	if err != nil {
		return nil, err
	}
	flowName, err := p.consume(token.IDENTIFIER)
	if err != nil {
		return nil, err
	}
	node := &ast.RunStatement{FlowName: flowName.Value, OnFailureParams: map[string]string{}}
	node.Line, node.Column = tok.Line, tok.Column

	if _, err := p.consume(token.LPAREN); err != nil {
		return nil, err
	}
	if !p.check(token.RPAREN) {
		args, err := p.parseArgumentList()
		if err != nil {
			return nil, err
		}
		node.Arguments = args
	}
	if _, err := p.consume(token.RPAREN); err != nil {
		return nil, err
	}

	for p.checkRunModifier() {
		mod := p.current()
		switch mod.Kind {
		case token.AS:
			p.advance()
			t, err := p.consume(token.IDENTIFIER)
			if err != nil {
				return nil, err
			}
			node.Persona = t.Value
		case token.WITHIN:
			p.advance()
			t, err := p.consume(token.IDENTIFIER)
			if err != nil {
				return nil, err
			}
			node.Context = t.Value
		case token.CONSTRAINED_BY:
			p.advance()
			anchors, err := p.parseBracketedIdentifiers()
			if err != nil {
				return nil, err
			}
			node.Anchors = anchors
		case token.ON_FAILURE:
			p.advance()
			if _, err := p.consume(token.COLON); err != nil {
				return nil, err
			}
			action, params, err := p.parseFailureStrategy()
			if err != nil {
				return nil, err
			}
			node.OnFailure = action
			node.OnFailureParams = params
		case token.OUTPUT_TO:
			p.advance()
			if _, err := p.consume(token.COLON); err != nil {
				return nil, err
			}
			t, err := p.consume(token.STRING)
			if err != nil {
				return nil, err
			}
			node.OutputTo = t.Value
		case token.EFFORT:
			p.advance()
			if _, err := p.consume(token.COLON); err != nil {
				return nil, err
			}
			t, err := p.consumeAnyIdentifierOrKeyword()
			if err != nil {
				return nil, err
			}
			node.Effort = t.Value
		default:
			return node, nil
		}
	}

	return node, nil
}

func (p *Parser) parseFailureStrategy() (string, map[string]string, error) {
	tok := p.current()
	params := map[string]string{}
	switch tok.Value {
	case "retry":
		p.advance()
		if p.check(token.LPAREN) {
			p.advance()
			for !p.check(token.RPAREN) {
				key, err := p.consumeAnyIdentifierOrKeyword()
				if err != nil {
					return "", nil, err
				}
				if _, err := p.consume(token.COLON); err != nil {
					return "", nil, err
				}
				val, err := p.consumeAnyIdentifierOrKeyword()
				if err != nil {
					return "", nil, err
				}
				params[key.Value] = val.Value
				if p.check(token.COMMA) {
					p.advance()
				}
			}
			if _, err := p.consume(token.RPAREN); err != nil {
				return "", nil, err
			}
		}
		return "retry", params, nil
	case "raise":
		p.advance()
		target, err := p.consume(token.IDENTIFIER)
		if err != nil {
			return "", nil, err
		}
		return "raise", map[string]string{"target": target.Value}, nil
	default:
		p.advance()
		return tok.Value, params, nil
	}
}

// ── HELPERS ─────────────────────────────────────────────────────────

func (p *Parser) current() token.Token {
	if p.pos >= len(p.tokens) {
		return token.Token{Kind: token.EOF}
	}
	return p.tokens[p.pos]
}

func (p *Parser) advance() token.Token {
	tok := p.current()
	p.pos++
	return tok
}

func (p *Parser) check(kind token.Kind) bool { return p.current().Kind == kind }

func (p *Parser) checkComparison() bool {
	switch p.current().Kind {
	case token.LT, token.GT, token.LTE, token.GTE, token.EQ, token.NEQ:
		return true
	default:
		return false
	}
}

func (p *Parser) checkRunModifier() bool {
	switch p.current().Kind {
	case token.AS, token.WITHIN, token.CONSTRAINED_BY, token.ON_FAILURE, token.OUTPUT_TO, token.EFFORT:
		return true
	default:
		return false
	}
}

func (p *Parser) consume(expected token.Kind) (token.Token, error) {
	tok := p.current()
	if tok.Kind != expected {
		return token.Token{}, axerrors.NewParseError("unexpected token", tok.Line, tok.Column,
			expected.String(), tok.Kind.String()+"("+tok.Value+")")
	}
	return p.advance(), nil
}

// consumeAnyIdentifierOrKeyword allows a keyword to be used as a plain
// value in field-value position, e.g. `tone: precise`.
func (p *Parser) consumeAnyIdentifierOrKeyword() (token.Token, error) {
	tok := p.current()
	switch tok.Kind {
	case token.IDENTIFIER, token.BOOL, token.STRING, token.INTEGER, token.FLOAT:
		return p.advance(), nil
	}
	if isAlphaOrUnderscore(tok.Value) {
		return p.advance(), nil
	}
	return token.Token{}, axerrors.NewParseError("expected identifier or keyword value", tok.Line, tok.Column,
		"", tok.Kind.String()+"("+tok.Value+")")
}

func isAlphaOrUnderscore(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !((r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || r == '_') {
			return false
		}
	}
	return true
}

func (p *Parser) consumeNumber() (float64, error) {
	tok := p.current()
	switch tok.Kind {
	case token.FLOAT, token.INTEGER:
		p.advance()
		v, _ := strconv.ParseFloat(tok.Value, 64)
		return v, nil
	}
	return 0, axerrors.NewParseError("expected number", tok.Line, tok.Column,
		"", tok.Kind.String()+"("+tok.Value+")")
}

func (p *Parser) consumeFloatValue(kind token.Kind) (float64, error) {
	tok, err := p.consume(kind)
	if err != nil {
		return 0, err
	}
	v, _ := strconv.ParseFloat(tok.Value, 64)
	return v, nil
}

func (p *Parser) parseBool() (bool, error) {
	tok, err := p.consume(token.BOOL)
	if err != nil {
		return false, err
	}
	return tok.Value == "true", nil
}

func (p *Parser) parseIdentifierList() ([]string, error) {
	var names []string
	first, err := p.consume(token.IDENTIFIER)
	if err != nil {
		return nil, err
	}
	names = append(names, first.Value)
	for p.check(token.COMMA) {
		p.advance()
		t, err := p.consume(token.IDENTIFIER)
		if err != nil {
			return nil, err
		}
		names = append(names, t.Value)
	}
	return names, nil
}

func (p *Parser) parseBracketedIdentifiers() ([]string, error) {
	if _, err := p.consume(token.LBRACKET); err != nil {
		return nil, err
	}
	items, err := p.parseExtendedIdentifierList()
	if err != nil {
		return nil, err
	}
	if _, err := p.consume(token.RBRACKET); err != nil {
		return nil, err
	}
	return items, nil
}

func (p *Parser) parseExtendedIdentifierList() ([]string, error) {
	var items []string
	first, err := p.consumeAnyIdentifierOrKeyword()
	if err != nil {
		return nil, err
	}
	items = append(items, first.Value)
	for p.check(token.COMMA) {
		p.advance()
		t, err := p.consumeAnyIdentifierOrKeyword()
		if err != nil {
			return nil, err
		}
		items = append(items, t.Value)
	}
	return items, nil
}

func (p *Parser) parseBracketedDotIdentifiers() ([]string, error) {
	if _, err := p.consume(token.LBRACKET); err != nil {
		return nil, err
	}
	var items []string
	first, err := p.parseDottedIdentifier()
	if err != nil {
		return nil, err
	}
	items = append(items, first)
	for p.check(token.COMMA) {
		p.advance()
		next, err := p.parseDottedIdentifier()
		if err != nil {
			return nil, err
		}
		items = append(items, next)
	}
	if _, err := p.consume(token.RBRACKET); err != nil {
		return nil, err
	}
	return items, nil
}

func (p *Parser) parseDottedIdentifier() (string, error) {
	first, err := p.consume(token.IDENTIFIER)
	if err != nil {
		return "", err
	}
	parts := []string{first.Value}
	for p.check(token.DOT) {
		p.advance()
		t, err := p.consumeAnyIdentifierOrKeyword()
		if err != nil {
			return "", err
		}
		parts = append(parts, t.Value)
	}
	return strings.Join(parts, "."), nil
}

func (p *Parser) parseStringList() ([]string, error) {
	if _, err := p.consume(token.LBRACKET); err != nil {
		return nil, err
	}
	var items []string
	first, err := p.consume(token.STRING)
	if err != nil {
		return nil, err
	}
	items = append(items, first.Value)
	for p.check(token.COMMA) {
		p.advance()
		t, err := p.consume(token.STRING)
		if err != nil {
			return nil, err
		}
		items = append(items, t.Value)
	}
	if _, err := p.consume(token.RBRACKET); err != nil {
		return nil, err
	}
	return items, nil
}

func (p *Parser) parseArgumentList() ([]string, error) {
	var args []string
	for !p.check(token.RPAREN) {
		tok := p.current()
		switch tok.Kind {
		case token.STRING, token.INTEGER, token.FLOAT:
			args = append(args, p.advance().Value)
		case token.IDENTIFIER:
			val := p.advance().Value
			if p.check(token.DOT) {
				p.advance()
				t, err := p.consumeAnyIdentifierOrKeyword()
				if err != nil {
					return nil, err
				}
				val += "." + t.Value
			}
			args = append(args, val)
		default:
			key := p.advance().Value
			if p.check(token.COLON) {
				p.advance()
				val := p.advance().Value
				args = append(args, key+":"+val)
			} else {
				args = append(args, key)
			}
		}
		if p.check(token.COMMA) {
			p.advance()
		}
	}
	return args, nil
}

func (p *Parser) parseExpressionString() (string, error) {
	tok := p.current()
	if tok.Kind == token.LBRACKET {
		items, err := p.parseBracketedDotIdentifiers()
		if err != nil {
			return "", err
		}
		return "[" + strings.Join(items, ", ") + "]", nil
	}
	return p.parseDottedIdentifier()
}

func (p *Parser) skipValue() {
	tok := p.current()
	switch tok.Kind {
	case token.LBRACKET:
		p.advance()
		depth := 1
		for depth > 0 && !p.check(token.EOF) {
			if p.check(token.LBRACKET) {
				depth++
			} else if p.check(token.RBRACKET) {
				depth--
			}
			p.advance()
		}
	case token.LBRACE:
		p.advance()
		depth := 1
		for depth > 0 && !p.check(token.EOF) {
			if p.check(token.LBRACE) {
				depth++
			} else if p.check(token.RBRACE) {
				depth--
			}
			p.advance()
		}
	default:
		p.advance()
	}
}

func (p *Parser) atDeclarationStart() bool {
	switch p.current().Kind {
	case token.PERSONA, token.CONTEXT, token.ANCHOR, token.MEMORY, token.TOOL,
		token.TYPE, token.FLOW, token.INTENT, token.RUN, token.IMPORT, token.EOF:
		return true
	default:
		return false
	}
}
