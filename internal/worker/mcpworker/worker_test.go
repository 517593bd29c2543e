package mcpworker

import (
	"context"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"teamresumes/agent-engine/pkg/types"
)

func textResult(isError bool, texts ...string) *mcp.CallToolResult {
	result := &mcp.CallToolResult{IsError: isError}
	for _, text := range texts {
		result.Content = append(result.Content, mcp.TextContent{Type: "text", Text: text})
	}
	return result
}

func TestParseResultJSONObject(t *testing.T) {
	resp := parseResult(textResult(false, `{"score": 85, "issues": 3}`))

	assert.Equal(t, types.ResultStatusSuccess, resp.Status)
	assert.Equal(t, float64(85), resp.Results["score"])
	assert.Equal(t, float64(3), resp.Results["issues"])
}

func TestParseResultPlainText(t *testing.T) {
	resp := parseResult(textResult(false, "all checks passed"))

	assert.Equal(t, types.ResultStatusSuccess, resp.Status)
	assert.Equal(t, "all checks passed", resp.Results["result"])
}

func TestParseResultMultipleBlocks(t *testing.T) {
	resp := parseResult(textResult(false, "first", "second"))

	assert.Equal(t, types.ResultStatusSuccess, resp.Status)
	assert.Equal(t, []string{"first", "second"}, resp.Results["results"])
}

func TestParseResultEmpty(t *testing.T) {
	resp := parseResult(textResult(false))

	assert.Equal(t, types.ResultStatusSuccess, resp.Status)
	assert.Empty(t, resp.Results)
}

func TestParseResultToolError(t *testing.T) {
	resp := parseResult(textResult(true, "file not found"))

	assert.Equal(t, types.ResultStatusError, resp.Status)
	assert.Equal(t, "file not found", resp.Error)

	resp = parseResult(textResult(true))
	assert.Equal(t, "unknown tool error", resp.Error)
}

func TestExecuteNotConnected(t *testing.T) {
	w := New(Config{Command: "nonexistent-server"})

	_, err := w.Execute(context.Background(), "agent", "tool", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not connected")
}

func TestCloseIdempotent(t *testing.T) {
	w := New(Config{Command: "nonexistent-server"})
	assert.NoError(t, w.Close())
	assert.NoError(t, w.Close())
}
