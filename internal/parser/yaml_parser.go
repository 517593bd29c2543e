package parser

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"teamresumes/agent-engine/pkg/logger"
	"teamresumes/agent-engine/pkg/types"
)

// YAMLParser implements the Parser interface for YAML workflow definitions.
type YAMLParser struct {
	validator *Validator
	log       *logger.ComponentLogger
}

// NewYAMLParser creates a new YAMLParser.
func NewYAMLParser() *YAMLParser {
	return &YAMLParser{
		validator: NewValidator(),
		log:       logger.Component("parser"),
	}
}

// Parse parses a workflow definition from bytes.
func (p *YAMLParser) Parse(data []byte) (*types.WorkflowDefinition, error) {
	var def types.WorkflowDefinition

	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true) // Strict mode: error on unknown fields

	if err := decoder.Decode(&def); err != nil {
		return nil, p.wrapYAMLError(err)
	}

	return p.ParseDefinition(&def)
}

// ParseFile parses a workflow definition from a file and stamps its source.
func (p *YAMLParser) ParseFile(path string) (*types.WorkflowDefinition, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, NewParseError(0, 0, fmt.Sprintf("failed to read file: %s", path), err)
	}

	def, err := p.Parse(data)
	if err != nil {
		return nil, err
	}

	def.Source = path
	return def, nil
}

// ParseDefinition validates an in-memory definition and stamps parsed_at. On
// validation failure it returns a ValidationError and no definition; callers
// never see a partially validated workflow.
func (p *YAMLParser) ParseDefinition(def *types.WorkflowDefinition) (*types.WorkflowDefinition, error) {
	valid, messages := p.validator.Validate(def)
	if !valid {
		return nil, NewValidationError(messages)
	}

	def.ParsedAt = time.Now()
	return def, nil
}

// LoadDirectory loads every *.yaml workflow in a directory, keyed by workflow
// name. Files that fail to parse are logged and skipped.
func (p *YAMLParser) LoadDirectory(dir string) (map[string]*types.WorkflowDefinition, error) {
	matches, err := filepath.Glob(filepath.Join(dir, "*.yaml"))
	if err != nil {
		return nil, err
	}

	defs := make(map[string]*types.WorkflowDefinition)
	for _, path := range matches {
		def, err := p.ParseFile(path)
		if err != nil {
			p.log.Error("skipping workflow %s: %v", path, err)
			continue
		}
		defs[def.Name] = def
	}
	return defs, nil
}

// wrapYAMLError converts a yaml.v3 error into a ParseError with line
// information extracted from the message.
func (p *YAMLParser) wrapYAMLError(err error) error {
	errStr := err.Error()
	line, column := extractLineColumn(errStr)
	message := strings.TrimPrefix(errStr, "yaml: ")
	return NewParseError(line, column, message, err)
}

// extractLineColumn attempts to extract line and column from a YAML error
// message. yaml.v3 errors often contain a "line X:" pattern.
func extractLineColumn(errStr string) (int, int) {
	var line, column int

	if idx := strings.Index(errStr, "line "); idx != -1 {
		fmt.Sscanf(errStr[idx:], "line %d", &line)
	}
	if idx := strings.Index(errStr, "column "); idx != -1 {
		fmt.Sscanf(errStr[idx:], "column %d", &column)
	}

	return line, column
}
