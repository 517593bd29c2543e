// Package parser provides workflow definition loading and validation.
package parser

import (
	"teamresumes/agent-engine/pkg/types"
)

// Parser loads workflow definitions from external representations.
type Parser interface {
	// Parse parses a workflow definition from bytes.
	Parse(data []byte) (*types.WorkflowDefinition, error)

	// ParseFile parses a workflow definition from a file.
	ParseFile(path string) (*types.WorkflowDefinition, error)

	// ParseDefinition validates an in-memory definition and stamps
	// provenance metadata.
	ParseDefinition(def *types.WorkflowDefinition) (*types.WorkflowDefinition, error)
}
