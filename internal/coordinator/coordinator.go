package coordinator

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"teamresumes/agent-engine/internal/expression"
	"teamresumes/agent-engine/internal/security"
	"teamresumes/agent-engine/pkg/logger"
	"teamresumes/agent-engine/pkg/types"
)

const (
	// DefaultMaxConcurrent bounds parallel mode when the workflow does
	// not set max_concurrent.
	DefaultMaxConcurrent = 10

	// batchConcurrency caps mixed-mode batches and parallel groups,
	// regardless of the workflow's max_concurrent.
	batchConcurrency = 5
)

// HookRunner executes a lifecycle hook against a materialized copy of
// shared data and returns the (possibly edited) copy.
type HookRunner interface {
	Run(ctx context.Context, hook *types.Hook, shared map[string]any) (map[string]any, error)
}

// Coordinator drives workflow runs: it schedules steps according to the
// execution mode, applies the dependency and condition gates, dispatches
// agents through the worker registry and compiles the final report.
// Execution never returns an error; every failure mode lands in the
// report as an error record.
type Coordinator struct {
	registry  *Registry
	evaluator *expression.Evaluator
	framework *security.Framework
	hooks     HookRunner
	now       func() time.Time
	log       *logger.ComponentLogger
}

// Option configures a Coordinator.
type Option func(*Coordinator)

// WithSecurity attaches a security framework. When set, every worker call
// runs inside a session opened for the step's agent.
func WithSecurity(f *security.Framework) Option {
	return func(c *Coordinator) { c.framework = f }
}

// WithHooks attaches a runner for pre/post workflow hooks.
func WithHooks(r HookRunner) Option {
	return func(c *Coordinator) { c.hooks = r }
}

// New creates a coordinator over the given worker registry.
func New(registry *Registry, opts ...Option) *Coordinator {
	c := &Coordinator{
		registry:  registry,
		evaluator: expression.NewEvaluator(),
		now:       time.Now,
		log:       logger.Component("coordinator"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ExecuteWorkflow runs the workflow and returns its report. The status
// callback, when given, observes the phases initializing and running
// followed by the final status. The initial context, when non-nil,
// replaces the workflow's own context block.
func (c *Coordinator) ExecuteWorkflow(ctx context.Context, def *types.WorkflowDefinition, callback types.StatusCallback, initial map[string]any) *types.ExecutionReport {
	workflowID := "workflow_" + uuid.NewString()
	startTime := c.now()

	static := initial
	if static == nil {
		static = def.Context
	}
	execCtx := NewExecutionContext(static)
	durations := newStepDurations()

	notify(callback, types.PhaseInitializing)
	c.log.Info("workflow %s (%s) starting", def.Name, workflowID)

	status := c.run(ctx, def, callback, execCtx, durations)

	notify(callback, string(status))
	endTime := c.now()
	c.log.Info("workflow %s finished with status %s in %s", workflowID, status, endTime.Sub(startTime).Round(time.Millisecond))

	return &types.ExecutionReport{
		WorkflowID:   workflowID,
		WorkflowName: def.Name,
		Status:       status,
		StartTime:    startTime,
		EndTime:      endTime,
		Duration:     endTime.Sub(startTime).Seconds(),
		AgentResults: execCtx.Results(),
		Errors:       execCtx.Errors(),
		SharedData:   execCtx.SharedSnapshot(),
		Durations:    durations.summary(),
	}
}

// run executes the hooks and step schedule and decides the final status.
// An escaped panic becomes a workflow_error and the run is failed.
func (c *Coordinator) run(ctx context.Context, def *types.WorkflowDefinition, callback types.StatusCallback, execCtx *ExecutionContext, durations *stepDurations) (status types.WorkflowStatus) {
	defer func() {
		if r := recover(); r != nil {
			execCtx.AddError(types.ExecutionError{
				Step:      -1,
				Type:      types.ErrTypeWorkflow,
				Message:   fmt.Sprintf("workflow execution panicked: %v", r),
				Timestamp: c.now(),
			})
			status = types.StatusFailed
		}
	}()

	if def.PreHook != nil && c.hooks != nil {
		edited, err := c.hooks.Run(ctx, def.PreHook, execCtx.SharedSnapshot())
		if err != nil {
			c.log.Error("pre-hook failed: %v", err)
			execCtx.AddError(types.ExecutionError{
				Step:      -1,
				Type:      types.ErrTypeHook,
				Message:   "pre-hook: " + err.Error(),
				Timestamp: c.now(),
			})
			return types.StatusFailed
		}
		execCtx.ReplaceShared(edited)
	}

	notify(callback, types.PhaseRunning)

	execType := def.Execution.Type
	if execType == "" {
		execType = types.ExecutionSequential
	}
	switch execType {
	case types.ExecutionSequential:
		c.executeSequential(ctx, def, execCtx, durations)
	case types.ExecutionParallel:
		c.executeParallel(ctx, def, execCtx, durations)
	case types.ExecutionMixed:
		c.executeMixed(ctx, def, execCtx, durations)
	default:
		execCtx.AddError(types.ExecutionError{
			Step:      -1,
			Type:      types.ErrTypeWorkflow,
			Message:   fmt.Sprintf("unknown execution type %q", execType),
			Timestamp: c.now(),
		})
		return types.StatusFailed
	}

	if def.PostHook != nil && c.hooks != nil {
		edited, err := c.hooks.Run(ctx, def.PostHook, execCtx.SharedSnapshot())
		if err != nil {
			c.log.Error("post-hook failed: %v", err)
			execCtx.AddError(types.ExecutionError{
				Step:      -1,
				Type:      types.ErrTypeHook,
				Message:   "post-hook: " + err.Error(),
				Timestamp: c.now(),
			})
		} else {
			execCtx.ReplaceShared(edited)
		}
	}

	if len(execCtx.Errors()) > 0 {
		if len(execCtx.Results()) > 0 {
			return types.StatusPartialFailure
		}
		return types.StatusFailed
	}
	return types.StatusCompleted
}

func (c *Coordinator) executeSequential(ctx context.Context, def *types.WorkflowDefinition, execCtx *ExecutionContext, durations *stepDurations) {
	for i := range def.Steps {
		step := &def.Steps[i]

		verdict := c.shouldExecuteStep(step, execCtx)
		if !verdict.run {
			c.log.Info("skipping step %d: %s", i, verdict.reason)
			continue
		}

		c.guardStep(i, types.ErrTypeStep, execCtx, func() {
			if step.IsGroup() {
				c.executeGroupStep(ctx, step, i, execCtx, durations)
				return
			}
			result := c.executeAgentStep(ctx, step, execCtx, durations)
			c.collectResult(step, i, result, execCtx, types.ErrTypeAgent)
		})
	}
}

func (c *Coordinator) executeParallel(ctx context.Context, def *types.WorkflowDefinition, execCtx *ExecutionContext, durations *stepDurations) {
	maxConcurrent := def.Execution.MaxConcurrent
	if maxConcurrent <= 0 {
		maxConcurrent = DefaultMaxConcurrent
	}

	// The gate sees the state as of the start of the batch. Steps in a
	// parallel workflow are mutually independent.
	var batch []indexedStep
	for i := range def.Steps {
		step := &def.Steps[i]
		verdict := c.shouldExecuteStep(step, execCtx)
		if !verdict.run {
			c.log.Info("skipping step %d: %s", i, verdict.reason)
			continue
		}
		batch = append(batch, indexedStep{index: i, step: step})
	}

	c.executeBatch(ctx, batch, maxConcurrent, execCtx, durations, types.ErrTypeParallelStep)
}

func (c *Coordinator) executeMixed(ctx context.Context, def *types.WorkflowDefinition, execCtx *ExecutionContext, durations *stepDurations) {
	steps := def.Steps
	for i := 0; i < len(steps); i++ {
		step := &steps[i]

		verdict := c.shouldExecuteStep(step, execCtx)
		if !verdict.run {
			c.log.Info("skipping step %d: %s", i, verdict.reason)
			continue
		}

		if step.Parallel && !step.IsGroup() {
			// Batch this step with every consecutive parallel
			// single-agent step whose gate passes. Group steps end the
			// batch; they run inline with their own concurrency.
			batch := []indexedStep{{index: i, step: step}}
			j := i + 1
			for j < len(steps) && steps[j].Parallel && !steps[j].IsGroup() {
				next := &steps[j]
				if v := c.shouldExecuteStep(next, execCtx); v.run {
					batch = append(batch, indexedStep{index: j, step: next})
				} else {
					c.log.Info("skipping step %d: %s", j, v.reason)
				}
				j++
			}
			c.executeBatch(ctx, batch, batchConcurrency, execCtx, durations, types.ErrTypeMixedStep)
			i = j - 1
			continue
		}

		c.guardStep(i, types.ErrTypeMixedStep, execCtx, func() {
			if step.IsGroup() {
				c.executeGroupStep(ctx, step, i, execCtx, durations)
				return
			}
			result := c.executeAgentStep(ctx, step, execCtx, durations)
			c.collectResult(step, i, result, execCtx, types.ErrTypeAgent)
		})
	}
}

type indexedStep struct {
	index int
	step  *types.Step
}

type stepOutcome struct {
	index  int
	step   *types.Step
	result types.AgentResult
	panic  any
}

// executeBatch dispatches single-agent steps on a semaphore-bounded pool
// and funnels every outcome through one collecting loop, which performs
// all context mutation.
func (c *Coordinator) executeBatch(ctx context.Context, batch []indexedStep, maxConcurrent int, execCtx *ExecutionContext, durations *stepDurations, errType string) {
	if len(batch) == 0 {
		return
	}

	sem := make(chan struct{}, maxConcurrent)
	outcomes := make(chan stepOutcome, len(batch))
	var wg sync.WaitGroup

	for _, item := range batch {
		if item.step.IsGroup() {
			// Only unvalidated definitions can put a group here: the
			// validator rejects groups under parallel mode and mixed
			// batches are built from single-agent steps.
			execCtx.AddError(types.ExecutionError{
				Step:      item.index,
				Type:      errType,
				Message:   "group steps cannot be dispatched in a parallel batch",
				Timestamp: c.now(),
			})
			continue
		}

		wg.Add(1)
		go func(item indexedStep) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			outcome := stepOutcome{index: item.index, step: item.step}
			func() {
				defer func() {
					if r := recover(); r != nil {
						outcome.panic = r
					}
				}()
				outcome.result = c.executeAgentStep(ctx, item.step, execCtx, durations)
			}()
			outcomes <- outcome
		}(item)
	}

	go func() {
		wg.Wait()
		close(outcomes)
	}()

	for outcome := range outcomes {
		if outcome.panic != nil {
			execCtx.AddError(types.ExecutionError{
				Step:      outcome.index,
				Agent:     outcome.step.Agent,
				Type:      errType,
				Message:   fmt.Sprintf("step panicked: %v", outcome.panic),
				Timestamp: c.now(),
			})
			continue
		}
		c.collectResult(outcome.step, outcome.index, outcome.result, execCtx, types.ErrTypeAgent)
	}
}

// executeGroupStep runs a group's nested agents, in parallel (bounded)
// when the group asks for it, sequentially otherwise. Members are
// individually error-tolerant.
func (c *Coordinator) executeGroupStep(ctx context.Context, step *types.Step, stepIndex int, execCtx *ExecutionContext, durations *stepDurations) {
	if step.Parallel {
		batch := make([]indexedStep, 0, len(step.Agents))
		for m := range step.Agents {
			batch = append(batch, indexedStep{index: stepIndex, step: &step.Agents[m]})
		}
		c.executeBatch(ctx, batch, batchConcurrency, execCtx, durations, types.ErrTypeGroup)
		return
	}

	for m := range step.Agents {
		member := &step.Agents[m]
		c.guardStep(stepIndex, types.ErrTypeGroup, execCtx, func() {
			result := c.executeAgentStep(ctx, member, execCtx, durations)
			c.collectResult(member, stepIndex, result, execCtx, types.ErrTypeAgent)
		})
	}
}

// executeAgentStep runs one single-agent step: parameter assembly, the
// optional security session, the worker call and the timing envelope.
// Worker failures come back as error-status results, never as panics.
func (c *Coordinator) executeAgentStep(ctx context.Context, step *types.Step, execCtx *ExecutionContext, durations *stepDurations) types.AgentResult {
	action := step.Action
	if action == "" {
		action = "default"
	}

	params := make(map[string]any, len(step.Parameters)+2)
	for k, v := range step.Parameters {
		params[k] = v
	}
	if static := execCtx.Static(); len(static) > 0 {
		params["context"] = static
	}
	if step.InputFrom != "" {
		if value, ok := execCtx.Get(step.InputFrom); ok {
			params[step.InputFrom] = value
		}
	}

	result := types.NewAgentResult(step.Agent, action, c.now())
	defer func() {
		result.Finish(c.now())
		durations.record(result.EndTime.Sub(result.StartTime))
	}()

	worker, ok := c.registry.Get(step.Agent)
	if !ok {
		result.Fail(fmt.Sprintf("no worker registered for agent %q", step.Agent))
		return result
	}

	if c.framework != nil {
		sessionID, err := c.framework.CreateSession(step.Agent)
		if err != nil {
			c.log.Warn("could not open security session for %s: %v", step.Agent, err)
		} else {
			defer c.framework.EndSession(sessionID)
		}
	}

	response, err := func() (resp *types.WorkerResponse, err error) {
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("worker panicked: %v", r)
			}
		}()
		return worker.Execute(ctx, step.Agent, action, params)
	}()
	if err != nil {
		c.log.Error("agent %s action %s failed: %v", step.Agent, action, err)
		result.Fail(err.Error())
		return result
	}
	if response == nil {
		result.Fail("worker returned no response")
		return result
	}

	result.Status = response.Status
	result.Results = response.Results
	result.Error = response.Error
	return result
}

// collectResult appends the result, records an agent_error for failures
// and writes the output_key on success. Called from exactly one goroutine
// per batch.
func (c *Coordinator) collectResult(step *types.Step, stepIndex int, result types.AgentResult, execCtx *ExecutionContext, errType string) {
	execCtx.AddResult(result)

	if !result.IsSuccess() {
		message := result.Error
		if message == "" {
			message = "unknown agent error"
		}
		execCtx.AddError(types.ExecutionError{
			Step:      stepIndex,
			Agent:     result.Agent,
			Type:      errType,
			Message:   message,
			Timestamp: c.now(),
		})
		return
	}

	if step.OutputKey != "" {
		execCtx.Set(step.OutputKey, result.Results)
	}
}

// guardStep recovers a panicking step body into an error record of the
// given type so the remaining steps still run.
func (c *Coordinator) guardStep(stepIndex int, errType string, execCtx *ExecutionContext, body func()) {
	defer func() {
		if r := recover(); r != nil {
			c.log.Error("step %d panicked: %v", stepIndex, r)
			execCtx.AddError(types.ExecutionError{
				Step:      stepIndex,
				Type:      errType,
				Message:   fmt.Sprintf("step panicked: %v", r),
				Timestamp: c.now(),
			})
		}
	}()
	body()
}

func notify(callback types.StatusCallback, phase string) {
	if callback != nil {
		callback(phase)
	}
}
