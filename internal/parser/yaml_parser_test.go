package parser

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"teamresumes/agent-engine/pkg/types"
)

const validWorkflow = `
name: resume-refresh
version: "1.2"
description: Rebuild the CV set
agents:
  - cv_writer
  - reviewer
execution:
  type: sequential
steps:
  - agent: cv_writer
    action: generate
    output_key: draft
  - agent: reviewer
    action: review
    input_from: draft
    depends_on: cv_writer
    condition: draft.length > 0
context:
  project: resumes
`

func TestParseValidWorkflow(t *testing.T) {
	p := NewYAMLParser()

	def, err := p.Parse([]byte(validWorkflow))
	require.NoError(t, err)

	assert.Equal(t, "resume-refresh", def.Name)
	assert.Equal(t, "1.2", def.Version)
	assert.Equal(t, []string{"cv_writer", "reviewer"}, def.Agents)
	assert.Equal(t, types.ExecutionSequential, def.Execution.Type)
	require.Len(t, def.Steps, 2)
	assert.Equal(t, "draft", def.Steps[0].OutputKey)
	assert.Equal(t, types.StringList{"cv_writer"}, def.Steps[1].DependsOn)
	assert.Equal(t, "resumes", def.Context["project"])
	assert.False(t, def.ParsedAt.IsZero())
	assert.Empty(t, def.Source)
}

func TestParseDependsOnList(t *testing.T) {
	p := NewYAMLParser()

	def, err := p.Parse([]byte(`
name: fanin
agents: [a, b, c]
steps:
  - agent: a
  - agent: b
  - agent: c
    depends_on:
      - a
      - b
`))
	require.NoError(t, err)
	assert.Equal(t, types.StringList{"a", "b"}, def.Steps[2].DependsOn)
}

func TestParseUnknownFieldRejected(t *testing.T) {
	p := NewYAMLParser()

	_, err := p.Parse([]byte(`
name: typo
agents: [a]
stepz:
  - agent: a
`))
	require.Error(t, err)
	var parseErr *ParseError
	assert.ErrorAs(t, err, &parseErr)
}

func TestParseMalformedYAML(t *testing.T) {
	p := NewYAMLParser()

	_, err := p.Parse([]byte("name: [unclosed"))
	require.Error(t, err)
	var parseErr *ParseError
	require.ErrorAs(t, err, &parseErr)
	assert.Greater(t, parseErr.Line, 0)
}

func TestParseValidationFailure(t *testing.T) {
	p := NewYAMLParser()

	_, err := p.Parse([]byte(`
name: incomplete
agents: [a]
steps:
  - action: generate
`))
	require.Error(t, err)
	assert.True(t, IsValidationError(err))
	assert.Contains(t, err.Error(), "step 0")
}

func TestParseFileStampsSource(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "flow.yaml")
	require.NoError(t, os.WriteFile(path, []byte(validWorkflow), 0o644))

	p := NewYAMLParser()
	def, err := p.ParseFile(path)
	require.NoError(t, err)
	assert.Equal(t, path, def.Source)
}

func TestParseFileMissing(t *testing.T) {
	p := NewYAMLParser()
	_, err := p.ParseFile(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	var parseErr *ParseError
	assert.ErrorAs(t, err, &parseErr)
}

func TestLoadDirectorySkipsBadFiles(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "good.yaml"), []byte(validWorkflow), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "bad.yaml"), []byte("name: [unclosed"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "ignored.txt"), []byte("not yaml"), 0o644))

	p := NewYAMLParser()
	defs, err := p.LoadDirectory(dir)
	require.NoError(t, err)

	require.Len(t, defs, 1)
	assert.Contains(t, defs, "resume-refresh")
}
