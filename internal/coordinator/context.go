package coordinator

import (
	"sync"

	"teamresumes/agent-engine/pkg/types"
)

// ExecutionContext carries the mutable state of one workflow run: the
// shared data map that steps write through output_key and read through
// input_from and conditions, plus the accumulated agent results and error
// records. Results and errors are append-only. The static context block is
// read-only and merged into step parameters, never into shared data.
type ExecutionContext struct {
	static map[string]any

	mu      sync.Mutex
	shared  map[string]any
	results []types.AgentResult
	errors  []types.ExecutionError
}

// NewExecutionContext starts a run with empty shared data. The static
// block is the caller-provided context when given, the workflow's own
// context block otherwise.
func NewExecutionContext(static map[string]any) *ExecutionContext {
	return &ExecutionContext{
		static: static,
		shared: make(map[string]any),
	}
}

// Static returns the read-only context block for parameter injection.
func (c *ExecutionContext) Static() map[string]any {
	return c.static
}

// Get reads a shared data value.
func (c *ExecutionContext) Get(key string) (any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.shared[key]
	return v, ok
}

// Set writes a shared data value.
func (c *ExecutionContext) Set(key string, value any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.shared[key] = value
}

// SharedSnapshot returns a shallow copy of the shared data map.
func (c *ExecutionContext) SharedSnapshot() map[string]any {
	c.mu.Lock()
	defer c.mu.Unlock()
	snapshot := make(map[string]any, len(c.shared))
	for k, v := range c.shared {
		snapshot[k] = v
	}
	return snapshot
}

// ReplaceShared swaps the whole shared data map. Used after hooks run,
// which see and edit a materialized copy.
func (c *ExecutionContext) ReplaceShared(data map[string]any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.shared = data
}

// AddResult appends an agent result.
func (c *ExecutionContext) AddResult(result types.AgentResult) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.results = append(c.results, result)
}

// AddError appends an error record.
func (c *ExecutionContext) AddError(err types.ExecutionError) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.errors = append(c.errors, err)
}

// Results returns a copy of the accumulated agent results.
func (c *ExecutionContext) Results() []types.AgentResult {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]types.AgentResult, len(c.results))
	copy(out, c.results)
	return out
}

// Errors returns a copy of the accumulated error records.
func (c *ExecutionContext) Errors() []types.ExecutionError {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]types.ExecutionError, len(c.errors))
	copy(out, c.errors)
	return out
}

// SuccessfulAgents lists the agents that have at least one successful
// result so far. Dependency gates consult this set.
func (c *ExecutionContext) SuccessfulAgents() map[string]struct{} {
	c.mu.Lock()
	defer c.mu.Unlock()
	agents := make(map[string]struct{})
	for _, r := range c.results {
		if r.IsSuccess() {
			agents[r.Agent] = struct{}{}
		}
	}
	return agents
}
