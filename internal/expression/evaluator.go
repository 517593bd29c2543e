package expression

import (
	"fmt"
	"strconv"
	"strings"
)

// Evaluator evaluates tagged comparisons against a run's shared data.
type Evaluator struct{}

// NewEvaluator creates a new Evaluator.
func NewEvaluator() *Evaluator {
	return &Evaluator{}
}

// Evaluate resolves both operands against shared data and applies the
// operator: numeric coercion for < and >, string coercion for ==.
func (e *Evaluator) Evaluate(cmp *Comparison, shared map[string]any) (bool, error) {
	if cmp == nil {
		return false, NewEvaluationError("nil comparison", nil)
	}

	left := e.resolveOperand(cmp.Left, shared)
	right := e.resolveOperand(cmp.Right, shared)

	switch cmp.Operator {
	case OpEQ:
		return fmt.Sprintf("%v", left) == fmt.Sprintf("%v", right), nil

	case OpLT, OpGT:
		leftNum, ok := toFloat64(left)
		if !ok {
			return false, NewEvaluationError(fmt.Sprintf("operand %v is not numeric", left), nil)
		}
		rightNum, ok := toFloat64(right)
		if !ok {
			return false, NewEvaluationError(fmt.Sprintf("operand %v is not numeric", right), nil)
		}
		if cmp.Operator == OpLT {
			return leftNum < rightNum, nil
		}
		return leftNum > rightNum, nil

	default:
		return false, NewEvaluationError(fmt.Sprintf("unknown operator: %s", cmp.Operator), nil)
	}
}

// EvaluateString parses and evaluates a condition string in one call.
func (e *Evaluator) EvaluateString(condition string, shared map[string]any) (bool, error) {
	cmp, err := ParseCondition(condition)
	if err != nil {
		return false, err
	}
	return e.Evaluate(cmp, shared)
}

// resolveOperand turns an operand into a concrete value. Literals pass
// through; variables resolve against shared data in this order: exact key
// (with a one-level unwrap when the value is a mapping keyed by the same
// name), dotted path navigation, a scan of nested mappings, then the raw name
// as a numeric or string literal.
func (e *Evaluator) resolveOperand(op Operand, shared map[string]any) any {
	if !op.IsVariable() {
		return op.Literal
	}

	name := op.Variable

	if val, ok := shared[name]; ok {
		if m, ok := val.(map[string]any); ok {
			if inner, ok := m[name]; ok {
				return inner
			}
		}
		return val
	}

	if strings.Contains(name, ".") {
		if val, ok := resolvePath(name, shared); ok {
			return val
		}
	}

	for _, val := range shared {
		if m, ok := val.(map[string]any); ok {
			if inner, ok := m[name]; ok {
				return inner
			}
		}
	}

	if f, err := strconv.ParseFloat(name, 64); err == nil {
		return f
	}
	return name
}

// resolvePath navigates a dotted path like "quality.score" through nested
// mappings rooted in shared data.
func resolvePath(path string, shared map[string]any) (any, bool) {
	parts := strings.Split(path, ".")

	current, ok := shared[parts[0]]
	if !ok {
		return nil, false
	}

	for _, part := range parts[1:] {
		m, ok := current.(map[string]any)
		if !ok {
			return nil, false
		}
		if current, ok = m[part]; !ok {
			return nil, false
		}
	}

	return current, true
}

// toFloat64 converts a value to float64 if possible.
func toFloat64(v any) (float64, bool) {
	switch val := v.(type) {
	case int:
		return float64(val), true
	case int8:
		return float64(val), true
	case int16:
		return float64(val), true
	case int32:
		return float64(val), true
	case int64:
		return float64(val), true
	case uint:
		return float64(val), true
	case uint8:
		return float64(val), true
	case uint16:
		return float64(val), true
	case uint32:
		return float64(val), true
	case uint64:
		return float64(val), true
	case float32:
		return float64(val), true
	case float64:
		return val, true
	case string:
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			return f, true
		}
		return 0, false
	default:
		return 0, false
	}
}

// Evaluate is a convenience function to parse and evaluate a condition string.
func Evaluate(condition string, shared map[string]any) (bool, error) {
	return NewEvaluator().EvaluateString(condition, shared)
}
