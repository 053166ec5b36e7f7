package validate

import (
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	sjsonschema "github.com/santhosh-tekuri/jsonschema/v6"

	"github.com/Bemarking/axon-ai/pkg/ir"
)

// SchemaValidator validates structured output against the JSON Schema
// pkg/ir.Type.JSONSchema builds for an AXON type,
// compiling each type's schema once via santhosh-tekuri/jsonschema and
// reusing the compiled validator across calls.
type SchemaValidator struct {
	mu     sync.Mutex
	cached map[string]*sjsonschema.Schema
}

// NewSchemaValidator creates an empty SchemaValidator.
func NewSchemaValidator() *SchemaValidator {
	return &SchemaValidator{cached: make(map[string]*sjsonschema.Schema)}
}

// ValidateType validates output against the compiled JSON Schema for
// typ, caching the compiled schema under typ.Name.
func (s *SchemaValidator) ValidateType(typ ir.Type, output any) []Violation {
	compiled, err := s.compile(typ)
	if err != nil {
		return []Violation{newViolation("schema_compile_error", err.Error(), typ.Name, "")}
	}

	data, err := json.Marshal(output)
	if err != nil {
		return []Violation{newViolation("schema_marshal_error", err.Error(), typ.Name, "")}
	}
	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		return []Violation{newViolation("schema_marshal_error", err.Error(), typ.Name, "")}
	}

	if err := compiled.Validate(doc); err != nil {
		return schemaViolationsFromError(err, typ.Name)
	}
	return nil
}

func (s *SchemaValidator) compile(typ ir.Type) (*sjsonschema.Schema, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if cached, ok := s.cached[typ.Name]; ok {
		return cached, nil
	}

	schemaJSON, err := json.Marshal(typ.JSONSchema())
	if err != nil {
		return nil, fmt.Errorf("marshal schema for type %q: %w", typ.Name, err)
	}

	var schemaDoc any
	if err := json.Unmarshal(schemaJSON, &schemaDoc); err != nil {
		return nil, fmt.Errorf("unmarshal schema for type %q: %w", typ.Name, err)
	}

	resourceName := typ.Name + ".json"
	c := sjsonschema.NewCompiler()
	if err := c.AddResource(resourceName, schemaDoc); err != nil {
		return nil, fmt.Errorf("add schema resource for type %q: %w", typ.Name, err)
	}

	compiled, err := c.Compile(resourceName)
	if err != nil {
		return nil, fmt.Errorf("compile schema for type %q: %w", typ.Name, err)
	}

	s.cached[typ.Name] = compiled
	return compiled, nil
}

func schemaViolationsFromError(err error, typeName string) []Violation {
	ve, ok := err.(*sjsonschema.ValidationError)
	if !ok {
		return []Violation{newViolation("schema_validation", err.Error(), typeName, "")}
	}

	var violations []Violation
	for _, cause := range flattenSchemaErrors(ve) {
		path := strings.Join(cause.InstanceLocation, "/")
		violations = append(violations, newViolation(
			"schema_validation",
			fmt.Sprintf("%s: %v", path, cause.ErrorKind),
			typeName, path,
		))
	}
	if len(violations) == 0 {
		violations = append(violations, newViolation("schema_validation", err.Error(), typeName, ""))
	}
	return violations
}

func flattenSchemaErrors(ve *sjsonschema.ValidationError) []*sjsonschema.ValidationError {
	var out []*sjsonschema.ValidationError
	if len(ve.Causes) == 0 {
		out = append(out, ve)
		return out
	}
	for _, cause := range ve.Causes {
		out = append(out, flattenSchemaErrors(cause)...)
	}
	return out
}
