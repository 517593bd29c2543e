// Package mcpworker adapts an MCP (Model Context Protocol) server running
// as a subprocess into a workflow worker. Each workflow action maps to an
// MCP tool call on the connected server.
package mcpworker

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/mark3labs/mcp-go/client"
	"github.com/mark3labs/mcp-go/mcp"

	"teamresumes/agent-engine/pkg/logger"
	"teamresumes/agent-engine/pkg/types"
)

const protocolVersion = "2024-11-05"

// Config describes how to launch and talk to an MCP server.
type Config struct {
	// Command starts the server subprocess, with Args and Env.
	Command string
	Args    []string
	Env     []string

	// ClientName and ClientVersion identify this engine during the MCP
	// handshake.
	ClientName    string
	ClientVersion string
}

// Worker is a workflow worker backed by one MCP server over stdio.
// Connect before registering it; Execute is safe for concurrent use.
type Worker struct {
	cfg Config
	log *logger.ComponentLogger

	mu     sync.Mutex
	client *client.Client
	tools  map[string]struct{}
}

// New creates a worker for the given server configuration.
func New(cfg Config) *Worker {
	if cfg.ClientName == "" {
		cfg.ClientName = "agent-engine"
	}
	if cfg.ClientVersion == "" {
		cfg.ClientVersion = "1.0.0"
	}
	return &Worker{
		cfg: cfg,
		log: logger.Component("mcpworker"),
	}
}

// Connect launches the server subprocess, performs the MCP handshake and
// learns the server's tool list.
func (w *Worker) Connect(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.client != nil {
		return nil
	}

	mcpClient, err := client.NewStdioMCPClient(w.cfg.Command, w.cfg.Env, w.cfg.Args...)
	if err != nil {
		return fmt.Errorf("create MCP client: %w", err)
	}
	if err := mcpClient.Start(ctx); err != nil {
		return fmt.Errorf("start MCP client: %w", err)
	}

	initReq := mcp.InitializeRequest{}
	initReq.Params.ClientInfo = mcp.Implementation{
		Name:    w.cfg.ClientName,
		Version: w.cfg.ClientVersion,
	}
	initReq.Params.ProtocolVersion = protocolVersion

	if _, err := mcpClient.Initialize(ctx, initReq); err != nil {
		mcpClient.Close()
		return fmt.Errorf("initialize MCP session: %w", err)
	}

	listResp, err := mcpClient.ListTools(ctx, mcp.ListToolsRequest{})
	if err != nil {
		mcpClient.Close()
		return fmt.Errorf("list MCP tools: %w", err)
	}

	tools := make(map[string]struct{}, len(listResp.Tools))
	for _, tool := range listResp.Tools {
		tools[tool.Name] = struct{}{}
	}

	w.client = mcpClient
	w.tools = tools
	w.log.Info("connected to %s, %d tools available", w.cfg.Command, len(tools))
	return nil
}

// Close shuts down the server subprocess.
func (w *Worker) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.client == nil {
		return nil
	}
	err := w.client.Close()
	w.client = nil
	w.tools = nil
	return err
}

// Execute calls the MCP tool named after the action. Tool-level failures
// come back as error-status responses; transport failures as errors.
func (w *Worker) Execute(ctx context.Context, agent, action string, params map[string]any) (*types.WorkerResponse, error) {
	w.mu.Lock()
	mcpClient := w.client
	_, known := w.tools[action]
	w.mu.Unlock()

	if mcpClient == nil {
		return nil, fmt.Errorf("mcp worker for %s is not connected", agent)
	}
	if !known {
		return &types.WorkerResponse{
			Status: types.ResultStatusError,
			Error:  fmt.Sprintf("server exposes no tool named %q", action),
		}, nil
	}

	req := mcp.CallToolRequest{}
	req.Params.Name = action
	req.Params.Arguments = params

	resp, err := mcpClient.CallTool(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("call tool %s: %w", action, err)
	}
	return parseResult(resp), nil
}

// parseResult converts an MCP tool result into the worker response shape.
// A single text block that decodes as a JSON object becomes the results
// map directly; anything else lands under the "result" key.
func parseResult(resp *mcp.CallToolResult) *types.WorkerResponse {
	var texts []string
	for _, content := range resp.Content {
		if textContent, ok := content.(mcp.TextContent); ok {
			texts = append(texts, textContent.Text)
		}
	}

	if resp.IsError {
		message := "unknown tool error"
		if len(texts) > 0 {
			message = texts[0]
		}
		return &types.WorkerResponse{Status: types.ResultStatusError, Error: message}
	}

	results := make(map[string]any)
	switch len(texts) {
	case 0:
	case 1:
		var decoded map[string]any
		if err := json.Unmarshal([]byte(texts[0]), &decoded); err == nil {
			results = decoded
		} else {
			results["result"] = texts[0]
		}
	default:
		results["results"] = texts
	}

	return &types.WorkerResponse{Status: types.ResultStatusSuccess, Results: results}
}
