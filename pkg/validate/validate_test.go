package validate

import (
	"testing"

	"github.com/Bemarking/axon-ai/pkg/axerrors"
)

func floatPtr(f float64) *float64 { return &f }

func emptyContext() axerrors.ErrorContext { return axerrors.ErrorContext{} }

func TestValidateTypeCategoryEpistemicExclusion(t *testing.T) {
	v := New(nil)
	result := v.Validate(map[string]any{"type": "Opinion"}, Options{ExpectedType: "FactualClaim"})
	if result.IsValid {
		t.Fatal("Opinion should never satisfy FactualClaim")
	}
	if result.Errors()[0].Rule != "epistemic_exclusion" {
		t.Errorf("rule = %q, want epistemic_exclusion", result.Errors()[0].Rule)
	}
}

func TestValidateTypeCategoryNonEpistemicMismatch(t *testing.T) {
	v := New(nil)
	result := v.Validate(map[string]any{"type": "Chunk"}, Options{ExpectedType: "Document"})
	if result.IsValid {
		t.Fatal("expected type mismatch violation")
	}
	if result.Errors()[0].Rule != "type_mismatch" {
		t.Errorf("rule = %q, want type_mismatch", result.Errors()[0].Rule)
	}
}

func TestValidateConfidenceFloor(t *testing.T) {
	v := New(nil)
	result := v.Validate(map[string]any{"confidence": 0.6}, Options{ConfidenceFloor: floatPtr(0.85)})
	if result.IsValid {
		t.Fatal("expected confidence floor violation")
	}
	if result.Confidence == nil || *result.Confidence != 0.6 {
		t.Errorf("extracted confidence = %v", result.Confidence)
	}

	passResult := v.Validate(map[string]any{"confidence": 0.9}, Options{ConfidenceFloor: floatPtr(0.85)})
	if !passResult.IsValid {
		t.Fatal("0.9 should pass a 0.85 floor")
	}
}

func TestValidateMissingFields(t *testing.T) {
	v := New(nil)
	result := v.Validate(map[string]any{"parties": []any{"Acme"}}, Options{TypeFields: []string{"parties", "effective_date"}})
	if result.IsValid {
		t.Fatal("expected missing_fields violation")
	}
	if result.Errors()[0].Rule != "missing_fields" {
		t.Errorf("rule = %q", result.Errors()[0].Rule)
	}
}

func TestValidateFieldsOnNonMapOutput(t *testing.T) {
	v := New(nil)
	result := v.Validate("plain string", Options{TypeFields: []string{"x"}})
	if result.IsValid || result.Errors()[0].Rule != "structured_type" {
		t.Fatalf("expected structured_type violation, got %+v", result)
	}
}

func TestValidateCustomTypeFields(t *testing.T) {
	v := New(map[string][]string{"ContractSummary": {"parties", "term"}})
	result := v.Validate(map[string]any{"parties": []any{"Acme"}}, Options{ExpectedType: "ContractSummary"})
	if result.IsValid {
		t.Fatal("expected missing 'term' field from custom type registry")
	}
}

func TestValidateBuiltinRangedType(t *testing.T) {
	v := New(nil)
	result := v.Validate(1.5, Options{ExpectedType: "RiskScore"})
	if result.IsValid || result.Errors()[0].Rule != "range_above_max" {
		t.Fatalf("RiskScore of 1.5 should exceed the built-in 0..1 bound, got %+v", result)
	}
}

func TestValidateExplicitRange(t *testing.T) {
	v := New(nil)
	result := v.Validate(map[string]any{"score": -0.5}, Options{RangeMin: floatPtr(0), RangeMax: floatPtr(1)})
	if result.IsValid || result.Errors()[0].Rule != "range_below_min" {
		t.Fatalf("expected range_below_min, got %+v", result)
	}
}

func TestValidateAndRaiseReturnsConfidenceError(t *testing.T) {
	v := New(nil)
	_, err := v.ValidateAndRaise(map[string]any{"confidence": 0.5}, Options{ConfidenceFloor: floatPtr(0.9)}, emptyContext())
	if err == nil {
		t.Fatal("expected an error")
	}
}

func TestValidateAndRaiseReturnsValidationError(t *testing.T) {
	v := New(nil)
	_, err := v.ValidateAndRaise(map[string]any{"parties": []any{}}, Options{TypeFields: []string{"term"}}, emptyContext())
	if err == nil {
		t.Fatal("expected an error")
	}
}

func TestValidateAndRaiseSucceedsOnValidOutput(t *testing.T) {
	v := New(nil)
	result, err := v.ValidateAndRaise(map[string]any{"confidence": 0.95}, Options{ConfidenceFloor: floatPtr(0.8)}, emptyContext())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.IsValid {
		t.Fatal("expected a valid result")
	}
}
