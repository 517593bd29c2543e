package types

import (
	"encoding/json"
	"fmt"
	"time"

	"gopkg.in/yaml.v3"
)

// ExecutionType selects how a workflow's steps are scheduled.
type ExecutionType string

const (
	// ExecutionSequential runs steps one at a time in declaration order.
	ExecutionSequential ExecutionType = "sequential"
	// ExecutionParallel dispatches gate-passing steps on a bounded pool.
	ExecutionParallel ExecutionType = "parallel"
	// ExecutionMixed interleaves inline steps with batches of consecutive
	// steps marked parallel.
	ExecutionMixed ExecutionType = "mixed"
)

// ExecutionConfig describes the scheduling mode of a workflow.
type ExecutionConfig struct {
	Type          ExecutionType `yaml:"type" json:"type"`
	MaxConcurrent int           `yaml:"max_concurrent,omitempty" json:"max_concurrent,omitempty"`
	Timeout       int           `yaml:"timeout,omitempty" json:"timeout,omitempty"`
}

// WorkflowDefinition is a named, versioned graph of steps with a declared
// execution mode. Source and ParsedAt are provenance metadata stamped by the
// parser, never by callers.
type WorkflowDefinition struct {
	Name        string          `yaml:"name" json:"name"`
	Version     string          `yaml:"version,omitempty" json:"version,omitempty"`
	Description string          `yaml:"description,omitempty" json:"description,omitempty"`
	Agents      []string        `yaml:"agents" json:"agents"`
	Execution   ExecutionConfig `yaml:"execution,omitempty" json:"execution,omitempty"`
	Steps       []Step          `yaml:"steps" json:"steps"`
	Context     map[string]any  `yaml:"context,omitempty" json:"context,omitempty"`
	PreHook     *Hook           `yaml:"pre_hook,omitempty" json:"pre_hook,omitempty"`
	PostHook    *Hook           `yaml:"post_hook,omitempty" json:"post_hook,omitempty"`

	Source   string    `yaml:"-" json:"source,omitempty"`
	ParsedAt time.Time `yaml:"-" json:"parsed_at,omitempty"`
}

// Step is one unit of work. It has exactly one of two shapes: a single-agent
// step (Agent set) or a group step (Group set with nested Agents). The
// validator enforces the invariant; consumers may rely on IsGroup.
type Step struct {
	// Single-agent shape.
	Agent      string         `yaml:"agent,omitempty" json:"agent,omitempty"`
	Action     string         `yaml:"action,omitempty" json:"action,omitempty"`
	Parameters map[string]any `yaml:"parameters,omitempty" json:"parameters,omitempty"`
	OutputKey  string         `yaml:"output_key,omitempty" json:"output_key,omitempty"`
	InputFrom  string         `yaml:"input_from,omitempty" json:"input_from,omitempty"`
	DependsOn  StringList     `yaml:"depends_on,omitempty" json:"depends_on,omitempty"`
	Condition  string         `yaml:"condition,omitempty" json:"condition,omitempty"`

	// Group shape.
	Group  string `yaml:"group,omitempty" json:"group,omitempty"`
	Agents []Step `yaml:"agents,omitempty" json:"agents,omitempty"`

	// Parallel marks the step for batching under mixed execution, or the
	// group's internal concurrency.
	Parallel bool `yaml:"parallel,omitempty" json:"parallel,omitempty"`
}

// IsGroup reports whether the step has the group shape.
func (s *Step) IsGroup() bool {
	return s.Group != ""
}

// Hook is an optional script run before or after a workflow.
type Hook struct {
	Script  string `yaml:"script" json:"script"`
	Timeout int    `yaml:"timeout,omitempty" json:"timeout,omitempty"`
}

// StringList accepts either a single scalar or a sequence when decoding, the
// way depends_on appears in workflow files.
type StringList []string

// UnmarshalYAML implements yaml.Unmarshaler.
func (l *StringList) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.ScalarNode:
		var s string
		if err := value.Decode(&s); err != nil {
			return err
		}
		*l = StringList{s}
		return nil
	case yaml.SequenceNode:
		var items []string
		if err := value.Decode(&items); err != nil {
			return err
		}
		*l = StringList(items)
		return nil
	default:
		return fmt.Errorf("depends_on must be a string or a list of strings")
	}
}

// UnmarshalJSON implements json.Unmarshaler with the same scalar-or-list
// flexibility as the YAML form.
func (l *StringList) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*l = StringList{s}
		return nil
	}
	var items []string
	if err := json.Unmarshal(data, &items); err != nil {
		return fmt.Errorf("depends_on must be a string or a list of strings")
	}
	*l = StringList(items)
	return nil
}
