package lexer

import (
	"testing"

	"github.com/Bemarking/axon-ai/pkg/token"
)

// TestTokenizeKeywordsAndSymbols checks that a persona declaration
// tokenizes to the expected token kind sequence.
func TestTokenizeKeywordsAndSymbols(t *testing.T) {
	src := `persona Analyst { tone: "precise" confidence_threshold: 0.85 }`
	toks, err := New(src).Tokenize()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []token.Kind{
		token.PERSONA, token.IDENTIFIER, token.LBRACE,
		token.IDENTIFIER, token.COLON, token.STRING,
		token.IDENTIFIER, token.COLON, token.FLOAT,
		token.RBRACE, token.EOF,
	}
	if len(toks) != len(want) {
		t.Fatalf("got %d tokens, want %d: %v", len(toks), len(want), toks)
	}
	for i, k := range want {
		if toks[i].Kind != k {
			t.Errorf("token %d: got %s, want %s", i, toks[i].Kind, k)
		}
	}
}

func TestTokenizeDuration(t *testing.T) {
	toks, err := New(`within 30s`).Tokenize()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if toks[1].Kind != token.DURATION || toks[1].Value != "30s" {
		t.Errorf("got %v, want DURATION 30s", toks[1])
	}
}

func TestTokenizeNegativeNumberOnlyBeforeDigit(t *testing.T) {
	toks, err := New(`-5`).Tokenize()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if toks[0].Kind != token.INTEGER || toks[0].Value != "-5" {
		t.Errorf("got %v, want INTEGER -5", toks[0])
	}

	if _, err := New(`- x`).Tokenize(); err == nil {
		t.Error("expected error for standalone '-' not preceding a digit")
	}
}

func TestTokenizeStringEscapes(t *testing.T) {
	toks, err := New(`"line1\nline2\ttab\"quote\""`).Tokenize()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := "line1\nline2\ttab\"quote\""
	if toks[0].Value != want {
		t.Errorf("got %q, want %q", toks[0].Value, want)
	}
}

func TestTokenizeComments(t *testing.T) {
	src := "persona // trailing comment\n/* block\ncomment */ Analyst"
	toks, err := New(src).Tokenize()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []token.Kind{token.PERSONA, token.IDENTIFIER, token.EOF}
	if len(toks) != len(want) {
		t.Fatalf("got %d tokens, want %d: %v", len(toks), len(want), toks)
	}
}

func TestTokenizeUnterminatedStringErrors(t *testing.T) {
	if _, err := New(`"unterminated`).Tokenize(); err == nil {
		t.Error("expected error for unterminated string")
	}
}

func TestTokenizeRangeVsDecimal(t *testing.T) {
	toks, err := New(`1..5`).Tokenize()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []token.Kind{token.INTEGER, token.DOTDOT, token.INTEGER, token.EOF}
	for i, k := range want {
		if toks[i].Kind != k {
			t.Errorf("token %d: got %s, want %s", i, toks[i].Kind, k)
		}
	}
}
