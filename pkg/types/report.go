package types

import (
	"time"

	"github.com/ohler55/ojg/oj"
)

// WorkflowStatus is the overall outcome of a workflow run.
type WorkflowStatus string

const (
	// StatusCompleted indicates the run recorded no errors.
	StatusCompleted WorkflowStatus = "completed"
	// StatusPartialFailure indicates errors were recorded but at least one
	// step succeeded.
	StatusPartialFailure WorkflowStatus = "partial_failure"
	// StatusFailed indicates errors were recorded and nothing succeeded, or
	// the orchestration loop itself failed.
	StatusFailed WorkflowStatus = "failed"
)

// Coarse phase markers passed to the status callback. Purely observational;
// they never affect control flow.
const (
	PhaseInitializing = "initializing"
	PhaseRunning      = "running"
)

// StatusCallback receives coarse phase markers during a run: initializing,
// running, then the final status.
type StatusCallback func(phase string)

// Error record types attached to ExecutionError.Type.
const (
	ErrTypeAgent        = "agent_error"
	ErrTypeStep         = "step_error"
	ErrTypeParallelStep = "parallel_step_error"
	ErrTypeMixedStep    = "mixed_step_error"
	ErrTypeGroup        = "group_error"
	ErrTypeWorkflow     = "workflow_error"
	ErrTypeHook         = "hook_error"
)

// ExecutionError is a structured, non-fatal error record accumulated during a
// run. Step is the declaration index of the failing step, -1 when the error is
// not tied to one step.
type ExecutionError struct {
	Step      int       `json:"step"`
	Agent     string    `json:"agent,omitempty"`
	Type      string    `json:"type"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

// DurationSummary condenses the per-step duration histogram of one run.
type DurationSummary struct {
	Count     int64 `json:"count"`
	P50Millis int64 `json:"p50_ms"`
	P95Millis int64 `json:"p95_ms"`
	P99Millis int64 `json:"p99_ms"`
	MaxMillis int64 `json:"max_ms"`
}

// ExecutionReport is the complete outcome of one workflow run. ExecuteWorkflow
// always returns one; every failure mode is captured here rather than raised.
type ExecutionReport struct {
	WorkflowID   string           `json:"workflow_id"`
	WorkflowName string           `json:"workflow_name"`
	Status       WorkflowStatus   `json:"status"`
	StartTime    time.Time        `json:"start_time"`
	EndTime      time.Time        `json:"end_time"`
	Duration     float64          `json:"duration_seconds"`
	AgentResults []AgentResult    `json:"agent_results"`
	Errors       []ExecutionError `json:"errors"`
	SharedData   map[string]any   `json:"shared_data"`
	Durations    *DurationSummary `json:"durations,omitempty"`
}

// SucceededAgents returns the identifiers of agents with a success result,
// in result order.
func (r *ExecutionReport) SucceededAgents() []string {
	var agents []string
	for _, res := range r.AgentResults {
		if res.IsSuccess() {
			agents = append(agents, res.Agent)
		}
	}
	return agents
}

// JSON renders the report as indented JSON for logs and the REST surface.
func (r *ExecutionReport) JSON() []byte {
	return []byte(oj.JSON(r, &oj.Options{Indent: 2, TimeFormat: time.RFC3339Nano, OmitNil: true, UseTags: true}))
}
