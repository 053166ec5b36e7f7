package validate

import (
	"testing"

	"github.com/Bemarking/axon-ai/pkg/ir"
)

func TestSchemaValidatorAcceptsConformingOutput(t *testing.T) {
	typ := ir.Type{
		Name: "ContractSummary",
		Fields: []ir.TypeField{
			{Name: "parties", TypeName: "String", GenericParam: ""},
			{Name: "risk", TypeName: "RiskScore"},
		},
	}

	sv := NewSchemaValidator()
	violations := sv.ValidateType(typ, map[string]any{
		"parties": "Acme Corp",
		"risk":    0.4,
	})
	if len(violations) != 0 {
		t.Fatalf("expected no violations, got %+v", violations)
	}
}

func TestSchemaValidatorRejectsMissingRequiredField(t *testing.T) {
	typ := ir.Type{
		Name: "ContractSummary",
		Fields: []ir.TypeField{
			{Name: "parties", TypeName: "String"},
			{Name: "risk", TypeName: "RiskScore"},
		},
	}

	sv := NewSchemaValidator()
	violations := sv.ValidateType(typ, map[string]any{"parties": "Acme Corp"})
	if len(violations) == 0 {
		t.Fatal("expected a violation for the missing 'risk' field")
	}
}

func TestSchemaValidatorCachesCompiledSchema(t *testing.T) {
	typ := ir.Type{Name: "RiskScore", RangeMin: float64Ptr(0), RangeMax: float64Ptr(1)}
	sv := NewSchemaValidator()

	sv.ValidateType(typ, 0.5)
	if _, ok := sv.cached[typ.Name]; !ok {
		t.Fatal("expected the compiled schema to be cached after first use")
	}
	violations := sv.ValidateType(typ, 1.5)
	if len(violations) == 0 {
		t.Fatal("expected a violation for a value above the RiskScore range")
	}
}

func float64Ptr(f float64) *float64 { return &f }
