package ir

import (
	"math/big"

	"github.com/invopop/jsonschema"
)

// JSONSchema builds a JSON Schema document for a lowered semantic type,
// for backends that need to hand the model a formal output contract
// (probe/weave structured output, validate-gate target schemas).
//
// Unlike gert's schema.go, which reflects a static Go struct with
// invopop/jsonschema's Reflector, an IR Type's shape is only known at
// compile time from its field list — so the jsonschema.Schema tree is
// built by hand here rather than via struct reflection. The library
// still does the real work: its Schema type and Properties ordered
// map are what pkg/validate's SchemaValidator serializes and compiles.
// The backends build their own probe schemas and do not call this.
func (t Type) JSONSchema() *jsonschema.Schema {
	if len(t.Fields) == 0 {
		return t.scalarSchema()
	}

	s := &jsonschema.Schema{
		Type:  "object",
		Title: t.Name,
	}
	s.Properties = jsonschema.NewProperties()
	required := make([]string, 0, len(t.Fields))
	for _, f := range t.Fields {
		s.Properties.Set(f.Name, fieldSchema(f))
		if !f.Optional {
			required = append(required, f.Name)
		}
	}
	s.Required = required
	return s
}

func (t Type) scalarSchema() *jsonschema.Schema {
	s := &jsonschema.Schema{Title: t.Name}
	if t.RangeMin != nil && t.RangeMax != nil {
		s.Type = "number"
		s.Minimum = new(big.Rat).SetFloat64(*t.RangeMin)
		s.Maximum = new(big.Rat).SetFloat64(*t.RangeMax)
		return s
	}
	s.Type = jsonSchemaTypeFor(t.Name)
	return s
}

func fieldSchema(f TypeField) *jsonschema.Schema {
	if f.GenericParam != "" {
		return &jsonschema.Schema{
			Type: "array",
			Items: &jsonschema.Schema{
				Type:  jsonSchemaTypeFor(f.GenericParam),
				Title: f.GenericParam,
			},
		}
	}
	return &jsonschema.Schema{
		Type:  jsonSchemaTypeFor(f.TypeName),
		Title: f.TypeName,
	}
}

// jsonSchemaTypeFor maps an AXON epistemic/content/analysis type name
// to the closest JSON Schema primitive. Int is "integer"; Float and the
// scored types (RiskScore, ConfidenceScore, SentimentScore) are
// "number"; Boolean is "boolean"; EntityMap, StructuredReport and
// ReasoningChain are "object"; every other name serializes as a
// string — the epistemic layer's semantic
// distinctions (FactualClaim vs Opinion, say) live in pkg/types, not
// in the wire representation.
func jsonSchemaTypeFor(typeName string) string {
	switch typeName {
	case "Int":
		return "integer"
	case "Float", "RiskScore", "ConfidenceScore", "SentimentScore":
		return "number"
	case "Boolean":
		return "boolean"
	case "EntityMap", "StructuredReport", "ReasoningChain":
		return "object"
	default:
		return "string"
	}
}
