// Package validate is the gate between raw model output and typed AXON
// values. It enforces type category matching, confidence floor checks,
// structured field presence, and numeric range constraints. The
// validator never modifies output — it only observes and judges.
package validate

import (
	"fmt"
	"sort"
	"strings"

	"github.com/Bemarking/axon-ai/pkg/axerrors"
	"github.com/Bemarking/axon-ai/pkg/trace"
)

// Epistemic types — mutually exclusive classification.
var EpistemicTypes = map[string]bool{
	"FactualClaim": true,
	"Opinion":      true,
	"Uncertainty":  true,
	"Speculation":  true,
}

// RangedTypeBounds holds the built-in numeric range for analysis types
// that carry one.
var RangedTypeBounds = map[string][2]float64{
	"RiskScore":       {0.0, 1.0},
	"ConfidenceScore": {0.0, 1.0},
	"SentimentScore":  {-1.0, 1.0},
}

// Violation is a single validation failure with structured context.
type Violation struct {
	Rule     string
	Message  string
	Expected string
	Actual   string
	Severity string // "error" (blocks execution) or "warning"
}

func newViolation(rule, message, expected, actual string) Violation {
	return Violation{Rule: rule, Message: message, Expected: expected, Actual: actual, Severity: "error"}
}

// Result is the aggregate outcome of a validation pass.
type Result struct {
	IsValid    bool
	Violations []Violation
	Confidence *float64
}

// Errors returns all violations with "error" severity.
func (r Result) Errors() []Violation {
	out := make([]Violation, 0, len(r.Violations))
	for _, v := range r.Violations {
		if v.Severity == "error" {
			out = append(out, v)
		}
	}
	return out
}

// Warnings returns all violations with "warning" severity.
func (r Result) Warnings() []Violation {
	out := make([]Violation, 0, len(r.Violations))
	for _, v := range r.Violations {
		if v.Severity == "warning" {
			out = append(out, v)
		}
	}
	return out
}

// Options configures a single Validate call.
type Options struct {
	ExpectedType     string
	ConfidenceFloor  *float64
	TypeFields       []string
	RangeMin         *float64
	RangeMax         *float64
	Tracer           *trace.Tracer
	StepName         string
}

// Validator validates model outputs against declared AXON semantic
// types. It is stateless: each Validate call is independent.
type Validator struct {
	customTypes map[string][]string
}

// New creates a Validator. customTypes maps user-defined type names to
// their required field names, for structured type validation.
func New(customTypes map[string][]string) *Validator {
	if customTypes == nil {
		customTypes = map[string][]string{}
	}
	return &Validator{customTypes: customTypes}
}

// Validate runs all applicable checks on output and returns the
// aggregate Result. It never errors; callers that want a Go error on
// failure should use ValidateAndRaise.
func (v *Validator) Validate(output any, opts Options) Result {
	var violations []Violation
	var extractedConfidence *float64

	if opts.ExpectedType != "" {
		violations = append(violations, v.validateTypeCategory(output, opts.ExpectedType)...)
	}

	if opts.ConfidenceFloor != nil {
		confViolations, extracted := v.validateConfidence(output, *opts.ConfidenceFloor, opts.Tracer, opts.StepName)
		violations = append(violations, confViolations...)
		extractedConfidence = extracted
	}

	effectiveFields := opts.TypeFields
	if len(effectiveFields) == 0 {
		if fields, ok := v.customTypes[opts.ExpectedType]; ok {
			effectiveFields = fields
		}
	}
	if len(effectiveFields) > 0 {
		violations = append(violations, v.validateFields(output, effectiveFields)...)
	}

	effectiveMin, effectiveMax := opts.RangeMin, opts.RangeMax
	if bounds, ok := RangedTypeBounds[opts.ExpectedType]; ok {
		if effectiveMin == nil {
			min := bounds[0]
			effectiveMin = &min
		}
		if effectiveMax == nil {
			max := bounds[1]
			effectiveMax = &max
		}
	}
	if effectiveMin != nil || effectiveMax != nil {
		violations = append(violations, v.validateRange(output, effectiveMin, effectiveMax)...)
	}

	hasErrors := false
	for _, viol := range violations {
		if viol.Severity == "error" {
			hasErrors = true
			break
		}
	}

	result := Result{
		IsValid:    !hasErrors,
		Violations: violations,
		Confidence: extractedConfidence,
	}

	if opts.Tracer != nil {
		messages := make([]string, len(violations))
		for i, viol := range violations {
			messages[i] = viol.Message
		}
		opts.Tracer.EmitValidationResult(opts.StepName, result.IsValid, opts.ExpectedType, messages, nil)
	}

	return result
}

func (v *Validator) validateTypeCategory(output any, expectedType string) []Violation {
	m, ok := output.(map[string]any)
	if !ok {
		return nil
	}

	declared, _ := m["type"].(string)
	if declared == "" {
		declared, _ = m["_type"].(string)
	}
	if declared == "" || declared == expectedType {
		return nil
	}

	if EpistemicTypes[expectedType] && EpistemicTypes[declared] {
		return []Violation{newViolation(
			"epistemic_exclusion",
			fmt.Sprintf("Epistemic type mismatch: expected '%s' but output declares '%s'. These types are mutually exclusive.", expectedType, declared),
			expectedType, declared,
		)}
	}

	return []Violation{newViolation(
		"type_mismatch",
		fmt.Sprintf("Type mismatch: expected '%s' but output declares '%s'.", expectedType, declared),
		expectedType, declared,
	)}
}

func (v *Validator) validateConfidence(output any, floor float64, tracer *trace.Tracer, stepName string) ([]Violation, *float64) {
	var extracted *float64

	if m, ok := output.(map[string]any); ok {
		raw, ok := m["confidence"]
		if !ok {
			raw, ok = m["_confidence"]
		}
		if ok {
			if f, ok := toFloat(raw); ok {
				extracted = &f
			}
		}
	}

	if extracted == nil {
		return nil, nil
	}

	passed := *extracted >= floor
	if tracer != nil {
		tracer.EmitConfidenceCheck(stepName, *extracted, floor, passed, nil)
	}

	if passed {
		return nil, extracted
	}

	return []Violation{newViolation(
		"confidence_floor",
		fmt.Sprintf("Confidence %.2f is below the floor of %.2f.", *extracted, floor),
		fmt.Sprintf(">= %v", floor),
		fmt.Sprintf("%.2f", *extracted),
	)}, extracted
}

func (v *Validator) validateFields(output any, requiredFields []string) []Violation {
	m, ok := output.(map[string]any)
	if !ok {
		return []Violation{newViolation(
			"structured_type",
			fmt.Sprintf("Expected structured output (map) with fields %v, but got %T.", requiredFields, output),
			"map", fmt.Sprintf("%T", output),
		)}
	}

	var missing []string
	for _, f := range requiredFields {
		if _, present := m[f]; !present {
			missing = append(missing, f)
		}
	}
	if len(missing) == 0 {
		return nil
	}

	present := make([]string, 0, len(m))
	for k := range m {
		present = append(present, k)
	}
	sort.Strings(present)

	return []Violation{newViolation(
		"missing_fields",
		fmt.Sprintf("Missing required fields: %v. Present fields: %v.", missing, present),
		fmt.Sprintf("%v", requiredFields),
		fmt.Sprintf("%v", present),
	)}
}

func (v *Validator) validateRange(output any, rangeMin, rangeMax *float64) []Violation {
	var value *float64
	if f, ok := toFloat(output); ok {
		value = &f
	} else if m, ok := output.(map[string]any); ok {
		raw, ok := m["value"]
		if !ok {
			raw, ok = m["score"]
		}
		if ok {
			if f, ok := toFloat(raw); ok {
				value = &f
			}
		}
	}

	if value == nil {
		return nil
	}

	var violations []Violation
	if rangeMin != nil && *value < *rangeMin {
		violations = append(violations, newViolation(
			"range_below_min",
			fmt.Sprintf("Value %v is below minimum %v.", *value, *rangeMin),
			fmt.Sprintf(">= %v", *rangeMin),
			fmt.Sprintf("%v", *value),
		))
	}
	if rangeMax != nil && *value > *rangeMax {
		violations = append(violations, newViolation(
			"range_above_max",
			fmt.Sprintf("Value %v exceeds maximum %v.", *value, *rangeMax),
			fmt.Sprintf("<= %v", *rangeMax),
			fmt.Sprintf("%v", *value),
		))
	}
	return violations
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	}
	return 0, false
}

// ValidateAndRaise runs Validate and returns a Go error on failure: an
// *axerrors.ConfidenceError if the confidence floor was breached, or an
// *axerrors.ValidationError for any other violation. This is the
// entry point the executor uses in its hot path.
func (v *Validator) ValidateAndRaise(output any, opts Options, errCtx axerrors.ErrorContext) (Result, error) {
	result := v.Validate(output, opts)
	if result.IsValid {
		return result, nil
	}

	var confidenceViolations []Violation
	for _, viol := range result.Errors() {
		if viol.Rule == "confidence_floor" {
			confidenceViolations = append(confidenceViolations, viol)
		}
	}

	if len(confidenceViolations) > 0 && opts.ConfidenceFloor != nil {
		observed := 0.0
		if result.Confidence != nil {
			observed = *result.Confidence
		}
		return result, axerrors.NewConfidenceError(errCtx, observed, *opts.ConfidenceFloor)
	}

	messages := make([]string, len(result.Errors()))
	for i, viol := range result.Errors() {
		messages[i] = viol.Message
	}
	return result, axerrors.NewValidationError(strings.Join(messages, "; "), errCtx, messages)
}
