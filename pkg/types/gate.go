package types

import (
	"fmt"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	"github.com/Bemarking/axon-ai/pkg/ast"
)

// GateEnv is the variable environment a compiled validate-rule condition
// runs against at execution time: the step's observed confidence plus
// any named boolean flags raised by the semantic validator (e.g.
// "structural_mismatch").
type GateEnv struct {
	Confidence float64
	Flags      map[string]bool
}

// CompileGateCondition turns a ValidateRule's condition/comparison pair
// into an executable expr-lang program. A bare flag condition like
// `structural_mismatch` compiles to `Flags["structural_mismatch"]`; a
// comparison like `confidence < 0.80` compiles to `Confidence < 0.80`.
func CompileGateCondition(rule ast.ValidateRule) (*vm.Program, error) {
	src := rule.Condition
	if rule.ComparisonOp != "" {
		lhs := conditionIdentifier(rule.Condition)
		src = fmt.Sprintf("%s %s %s", lhs, rule.ComparisonOp, rule.ComparisonValue)
	} else {
		src = fmt.Sprintf("Flags[%q]", rule.Condition)
	}
	return expr.Compile(src, expr.Env(GateEnv{}))
}

func conditionIdentifier(condition string) string {
	if condition == "confidence" {
		return "Confidence"
	}
	return fmt.Sprintf("Flags[%q]", condition)
}

// EvaluateGate runs a compiled gate program against env and returns
// whether the rule's condition fired.
func EvaluateGate(program *vm.Program, env GateEnv) (bool, error) {
	out, err := expr.Run(program, env)
	if err != nil {
		return false, err
	}
	fired, ok := out.(bool)
	if !ok {
		return false, fmt.Errorf("gate condition did not evaluate to a boolean, got %T", out)
	}
	return fired, nil
}
