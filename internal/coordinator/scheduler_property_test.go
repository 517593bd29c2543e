package coordinator

import (
	"context"
	"fmt"
	"testing"

	"pgregory.net/rapid"

	"teamresumes/agent-engine/pkg/types"
)

// For any mix of worker outcomes in a sequential run: every step yields
// exactly one result, one error record per failing step, and the final
// status follows from errors and results alone (no errors -> completed,
// errors with results -> partial_failure).
func TestSequentialStatusProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		outcomes := rapid.SliceOfN(rapid.Bool(), 1, 12).Draw(t, "outcomes")

		registry := NewRegistry()
		def := &types.WorkflowDefinition{
			Name:      "property",
			Execution: types.ExecutionConfig{Type: types.ExecutionSequential},
		}
		failures := 0
		for i, success := range outcomes {
			agent := fmt.Sprintf("agent-%d", i)
			def.Agents = append(def.Agents, agent)
			def.Steps = append(def.Steps, types.Step{Agent: agent})
			if success {
				registry.MustRegister(agent, successWorker(nil))
			} else {
				registry.MustRegister(agent, failingWorker("failed"))
				failures++
			}
		}

		report := New(registry).ExecuteWorkflow(context.Background(), def, nil, nil)

		if len(report.AgentResults) != len(outcomes) {
			t.Fatalf("want %d results, got %d", len(outcomes), len(report.AgentResults))
		}
		if len(report.Errors) != failures {
			t.Fatalf("want %d errors, got %d", failures, len(report.Errors))
		}

		want := types.StatusCompleted
		if failures > 0 {
			want = types.StatusPartialFailure
		}
		if report.Status != want {
			t.Fatalf("want status %s, got %s", want, report.Status)
		}
	})
}

// Parallel runs deliver the same result multiset as sequential runs of
// independent steps, whatever the concurrency bound.
func TestParallelCompletenessProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		stepCount := rapid.IntRange(1, 10).Draw(t, "steps")
		maxConcurrent := rapid.IntRange(1, 10).Draw(t, "maxConcurrent")

		registry := NewRegistry()
		def := &types.WorkflowDefinition{
			Name:      "property",
			Execution: types.ExecutionConfig{Type: types.ExecutionParallel, MaxConcurrent: maxConcurrent},
		}
		for i := 0; i < stepCount; i++ {
			agent := fmt.Sprintf("agent-%d", i)
			def.Agents = append(def.Agents, agent)
			def.Steps = append(def.Steps, types.Step{Agent: agent})
			registry.MustRegister(agent, successWorker(nil))
		}

		report := New(registry).ExecuteWorkflow(context.Background(), def, nil, nil)

		if report.Status != types.StatusCompleted {
			t.Fatalf("want completed, got %s", report.Status)
		}
		seen := make(map[string]int)
		for _, r := range report.AgentResults {
			seen[r.Agent]++
		}
		if len(seen) != stepCount {
			t.Fatalf("want %d distinct agents, got %d", stepCount, len(seen))
		}
		for agent, count := range seen {
			if count != 1 {
				t.Fatalf("agent %s reported %d times", agent, count)
			}
		}
	})
}
