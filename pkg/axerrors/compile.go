// Package axerrors defines AXON's compile-time and runtime error taxonomy.
//
// Compile-time errors (LexerError, ParseError, TypeError, IRError) all
// share a source position. Runtime errors (ValidationError .. ExecutionTimeoutError)
// share a severity level 1-6 and a structured ErrorContext.
package axerrors

import "fmt"

// CompileError is the common shape of every compile-time failure: a
// message plus the source position where it occurred.
type CompileError struct {
	Kind    string // "lexer", "parser", "type", "ir"
	Message string
	Line    int
	Column  int
}

func (e *CompileError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("%s [line %d, col %d]: %s", e.kindName(), e.Line, e.Column, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.kindName(), e.Message)
}

func (e *CompileError) kindName() string {
	switch e.Kind {
	case "lexer":
		return "AxonLexerError"
	case "parser":
		return "AxonParseError"
	case "ir":
		return "AxonIRError"
	default:
		return "AxonError"
	}
}

// NewLexerError builds a lexer-stage CompileError.
func NewLexerError(message string, line, column int) *CompileError {
	return &CompileError{Kind: "lexer", Message: message, Line: line, Column: column}
}

// ParseError adds expected/found token descriptions to a CompileError.
type ParseError struct {
	CompileError
	Expected string
	Found    string
}

func NewParseError(message string, line, column int, expected, found string) *ParseError {
	pe := &ParseError{
		CompileError: CompileError{Kind: "parser", Message: message, Line: line, Column: column},
		Expected:     expected,
		Found:        found,
	}
	return pe
}

func (e *ParseError) Error() string {
	base := e.CompileError.Error()
	if e.Expected != "" || e.Found != "" {
		return fmt.Sprintf("%s (expected %s, found %s)", base, e.Expected, e.Found)
	}
	return base
}

// TypeErrorInfo is one structured entry produced by the type checker.
// The checker never raises; it accumulates a slice of these.
type TypeErrorInfo struct {
	Message  string
	Line     int
	Column   int
	Severity string // "error" | "warning"
	Code     string
}

// TypeError aggregates every TypeErrorInfo produced by a single check pass.
type TypeError struct {
	Errors []TypeErrorInfo
}

func (e *TypeError) Error() string {
	if len(e.Errors) == 0 {
		return "AxonTypeError: no errors"
	}
	return fmt.Sprintf("AxonTypeError: %d error(s), first: %s", len(e.Errors), e.Errors[0].Message)
}

// IRError reports a dangling cross-reference during IR generation,
// carrying the sorted list of available candidates for the same kind.
type IRError struct {
	CompileError
	Name      string
	Kind      string
	Available []string
}

func NewIRError(message string, line, column int, name, kind string, available []string) *IRError {
	return &IRError{
		CompileError: CompileError{Kind: "ir", Message: message, Line: line, Column: column},
		Name:         name,
		Kind:         kind,
		Available:    available,
	}
}

func (e *IRError) Error() string {
	return e.CompileError.Error()
}
