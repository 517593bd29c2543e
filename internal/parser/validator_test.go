package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"teamresumes/agent-engine/pkg/types"
)

func minimalDefinition() *types.WorkflowDefinition {
	return &types.WorkflowDefinition{
		Name:   "minimal",
		Agents: []string{"alpha"},
		Steps:  []types.Step{{Agent: "alpha"}},
	}
}

func TestValidateMinimal(t *testing.T) {
	valid, errs := NewValidator().Validate(minimalDefinition())
	assert.True(t, valid)
	assert.Empty(t, errs)
}

func TestValidateNil(t *testing.T) {
	valid, errs := NewValidator().Validate(nil)
	assert.False(t, valid)
	require.Len(t, errs, 1)
}

func TestValidateMissingFields(t *testing.T) {
	valid, errs := NewValidator().Validate(&types.WorkflowDefinition{})
	assert.False(t, valid)
	assert.Contains(t, errs, "missing required field: name")
	assert.Contains(t, errs, "missing required field: agents")
	assert.Contains(t, errs, "missing required field: steps")
}

func TestValidateEmptyLists(t *testing.T) {
	def := &types.WorkflowDefinition{
		Name:   "empty",
		Agents: []string{},
		Steps:  []types.Step{},
	}
	valid, errs := NewValidator().Validate(def)
	assert.False(t, valid)
	assert.Contains(t, errs, "'agents' must be a non-empty list")
	assert.Contains(t, errs, "'steps' must be a non-empty list")
}

func TestValidateStepShape(t *testing.T) {
	def := minimalDefinition()
	def.Steps = []types.Step{
		{Action: "generate"},
		{Agent: "alpha", Group: "both"},
	}
	valid, errs := NewValidator().Validate(def)
	assert.False(t, valid)
	assert.Contains(t, errs, "step 0 must have either 'agent' or 'group' field")
	assert.Contains(t, errs, "step 1 must not have both 'agent' and 'group' fields")
}

func TestValidateGroupSteps(t *testing.T) {
	def := minimalDefinition()
	def.Steps = []types.Step{
		{Group: "empty"},
		{Group: "nested", Agents: []types.Step{{Group: "inner", Agents: []types.Step{{Agent: "x"}}}}},
		{Group: "fine", Agents: []types.Step{{Agent: "alpha"}, {Agent: "beta"}}},
	}
	valid, errs := NewValidator().Validate(def)
	assert.False(t, valid)
	assert.Contains(t, errs, "step 0 group 'empty' must have a non-empty 'agents' list")
	assert.Contains(t, errs, "step 1 group member 0 must have an 'agent' field")
	assert.Contains(t, errs, "step 1 group member 0 must not be a nested group")
}

func TestValidateGroupUnderParallelMode(t *testing.T) {
	def := minimalDefinition()
	def.Execution = types.ExecutionConfig{Type: types.ExecutionParallel}
	def.Steps = []types.Step{
		{Group: "fanout", Agents: []types.Step{{Agent: "alpha"}}},
	}
	valid, errs := NewValidator().Validate(def)
	assert.False(t, valid)
	assert.Contains(t, errs, "step 0: group steps are not allowed under parallel execution")

	// The same group is fine under mixed execution.
	def.Execution.Type = types.ExecutionMixed
	valid, _ = NewValidator().Validate(def)
	assert.True(t, valid)
}

func TestValidateExecutionType(t *testing.T) {
	def := minimalDefinition()
	def.Execution = types.ExecutionConfig{Type: "round-robin"}
	valid, errs := NewValidator().Validate(def)
	assert.False(t, valid)
	assert.Contains(t, errs, "invalid execution type 'round-robin', must be one of: sequential, parallel, mixed")

	for _, mode := range []types.ExecutionType{"", types.ExecutionSequential, types.ExecutionParallel, types.ExecutionMixed} {
		def := minimalDefinition()
		def.Execution = types.ExecutionConfig{Type: mode}
		valid, _ := NewValidator().Validate(def)
		assert.True(t, valid, "mode %q", mode)
	}
}

func TestValidateMaxConcurrent(t *testing.T) {
	def := minimalDefinition()
	def.Execution = types.ExecutionConfig{Type: types.ExecutionParallel, MaxConcurrent: -1}
	valid, errs := NewValidator().Validate(def)
	assert.False(t, valid)
	assert.Contains(t, errs, "'max_concurrent' must be a positive integer")
}
