package types

import "time"

// ResultStatus is the outcome of one worker invocation.
type ResultStatus string

const (
	// ResultStatusSuccess indicates the worker completed its action.
	ResultStatusSuccess ResultStatus = "success"
	// ResultStatusError indicates the worker reported or caused a failure.
	ResultStatusError ResultStatus = "error"
)

// WorkerResponse is the uniform payload every worker returns through the call
// contract. All analyzer-specific behavior lives behind this boundary.
type WorkerResponse struct {
	Status  ResultStatus   `json:"status"`
	Results map[string]any `json:"results,omitempty"`
	Error   string         `json:"error,omitempty"`
}

// AgentResult records one step's outcome inside an execution report.
// Create it with NewAgentResult, fill it during execution and close it with
// Finish so EndTime and Duration are always set.
type AgentResult struct {
	Agent     string         `json:"agent"`
	Action    string         `json:"action"`
	Status    ResultStatus   `json:"status"`
	Results   map[string]any `json:"results,omitempty"`
	Error     string         `json:"error,omitempty"`
	StartTime time.Time      `json:"start_time"`
	EndTime   time.Time      `json:"end_time"`
	Duration  float64        `json:"duration_seconds"`
}

// NewAgentResult creates a result in success state with the given start
// timestamp. Fill it in during execution and close it with Finish.
func NewAgentResult(agent, action string, start time.Time) AgentResult {
	return AgentResult{
		Agent:     agent,
		Action:    action,
		Status:    ResultStatusSuccess,
		StartTime: start,
	}
}

// Fail marks the result as errored.
func (r *AgentResult) Fail(message string) {
	r.Status = ResultStatusError
	r.Error = message
}

// Finish sets EndTime and Duration. Call it exactly once, usually deferred.
func (r *AgentResult) Finish(end time.Time) {
	r.EndTime = end
	r.Duration = end.Sub(r.StartTime).Seconds()
}

// IsSuccess reports whether the step completed without error.
func (r *AgentResult) IsSuccess() bool {
	return r.Status == ResultStatusSuccess
}
