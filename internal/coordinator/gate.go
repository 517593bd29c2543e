package coordinator

import (
	"teamresumes/agent-engine/pkg/types"
)

// ConditionFailOpen controls how an unevaluable condition gates a step.
// Fail-open runs the step when the condition cannot be parsed or its
// operands cannot be resolved, so a typo in a condition degrades to
// "always run" rather than silently skipping work.
const ConditionFailOpen = true

// gateVerdict says whether a step runs and, when it does not, why.
type gateVerdict struct {
	run    bool
	reason string
}

// shouldExecuteStep applies the two gates in order: every depends_on
// agent must already have a successful result, then the condition (if
// any) must evaluate true against shared data.
func (c *Coordinator) shouldExecuteStep(step *types.Step, execCtx *ExecutionContext) gateVerdict {
	if len(step.DependsOn) > 0 {
		succeeded := execCtx.SuccessfulAgents()
		for _, dep := range step.DependsOn {
			if _, ok := succeeded[dep]; !ok {
				return gateVerdict{reason: "dependency " + dep + " has not succeeded"}
			}
		}
	}

	if step.Condition != "" {
		result, err := c.evaluator.EvaluateString(step.Condition, execCtx.SharedSnapshot())
		if err != nil {
			c.log.Warn("condition %q could not be evaluated: %v", step.Condition, err)
			if ConditionFailOpen {
				return gateVerdict{run: true}
			}
			return gateVerdict{reason: "condition could not be evaluated"}
		}
		if !result {
			return gateVerdict{reason: "condition " + step.Condition + " is false"}
		}
	}

	return gateVerdict{run: true}
}
