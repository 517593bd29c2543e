package parser

import (
	"fmt"

	"teamresumes/agent-engine/pkg/types"
)

// Validator performs structural and semantic validation of workflow
// definitions. It never fails itself: Validate reports problems as an ordered
// message list and lets the caller decide whether to proceed.
type Validator struct{}

// NewValidator creates a new Validator.
func NewValidator() *Validator {
	return &Validator{}
}

// Validate checks a candidate definition and returns whether it is valid
// together with the ordered list of error messages.
func (v *Validator) Validate(def *types.WorkflowDefinition) (bool, []string) {
	var errs []string

	if def == nil {
		return false, []string{"workflow definition is nil"}
	}

	if def.Name == "" {
		errs = append(errs, "missing required field: name")
	}
	if def.Agents == nil {
		errs = append(errs, "missing required field: agents")
	} else if len(def.Agents) == 0 {
		errs = append(errs, "'agents' must be a non-empty list")
	}
	if def.Steps == nil {
		errs = append(errs, "missing required field: steps")
	} else if len(def.Steps) == 0 {
		errs = append(errs, "'steps' must be a non-empty list")
	} else {
		errs = append(errs, v.validateSteps(def.Steps, def.Execution.Type)...)
	}

	errs = append(errs, v.validateExecution(&def.Execution)...)

	return len(errs) == 0, errs
}

func (v *Validator) validateSteps(steps []types.Step, mode types.ExecutionType) []string {
	var errs []string

	for i := range steps {
		step := &steps[i]

		switch {
		case step.Agent == "" && step.Group == "":
			errs = append(errs, fmt.Sprintf("step %d must have either 'agent' or 'group' field", i))
		case step.Agent != "" && step.Group != "":
			errs = append(errs, fmt.Sprintf("step %d must not have both 'agent' and 'group' fields", i))
		}

		if step.IsGroup() {
			if len(step.Agents) == 0 {
				errs = append(errs, fmt.Sprintf("step %d group '%s' must have a non-empty 'agents' list", i, step.Group))
			}
			// Parallel execution mode dispatches single-agent steps only.
			if mode == types.ExecutionParallel {
				errs = append(errs, fmt.Sprintf("step %d: group steps are not allowed under parallel execution", i))
			}
			for j := range step.Agents {
				nested := &step.Agents[j]
				if nested.Agent == "" {
					errs = append(errs, fmt.Sprintf("step %d group member %d must have an 'agent' field", i, j))
				}
				if nested.IsGroup() {
					errs = append(errs, fmt.Sprintf("step %d group member %d must not be a nested group", i, j))
				}
			}
		}
	}

	return errs
}

func (v *Validator) validateExecution(exec *types.ExecutionConfig) []string {
	var errs []string

	switch exec.Type {
	case "", types.ExecutionSequential, types.ExecutionParallel, types.ExecutionMixed:
	default:
		errs = append(errs, fmt.Sprintf(
			"invalid execution type '%s', must be one of: sequential, parallel, mixed", exec.Type))
	}

	// Zero means absent after decoding; anything below is never valid.
	if exec.MaxConcurrent < 0 {
		errs = append(errs, "'max_concurrent' must be a positive integer")
	}

	return errs
}
