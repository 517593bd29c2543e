// Package engine exposes the public API of the agent engine: workflow
// registration and execution, worker wiring and the security report.
package engine

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"teamresumes/agent-engine/internal/coordinator"
	"teamresumes/agent-engine/internal/hook"
	"teamresumes/agent-engine/internal/parser"
	"teamresumes/agent-engine/internal/security"
	"teamresumes/agent-engine/pkg/logger"
	"teamresumes/agent-engine/pkg/types"
)

// DefaultVersion is assumed for workflows registered without a version.
const DefaultVersion = "1.0.0"

// Config configures an Engine.
type Config struct {
	// LogLevel sets the global log threshold: debug, info, warn, error.
	LogLevel string
	// Capabilities maps agent names to their capability configuration.
	// Agents without an entry get empty permission patterns.
	Capabilities map[string]*types.CapabilityConfig
	// Sandbox overrides the default sandbox policy when non-nil.
	Sandbox *security.SandboxPolicy
}

// DefaultConfig returns the configuration the engine ships with.
func DefaultConfig() *Config {
	return &Config{
		LogLevel:     "info",
		Capabilities: make(map[string]*types.CapabilityConfig),
	}
}

// Engine wires the parser, worker registry, security framework and
// coordinator together behind one handle.
type Engine struct {
	config      *Config
	parser      *parser.YAMLParser
	registry    *coordinator.Registry
	framework   *security.Framework
	coordinator *coordinator.Coordinator
	log         *logger.ComponentLogger

	mu        sync.RWMutex
	workflows map[string]map[string]*types.WorkflowDefinition
}

// New creates an engine. A nil config means defaults.
func New(cfg *Config) *Engine {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if cfg.LogLevel != "" {
		logger.SetLevelFromString(cfg.LogLevel)
	}

	provider := security.CapabilityProviderFunc(func(agent string) *types.CapabilityConfig {
		return cfg.Capabilities[agent]
	})
	framework := security.NewFramework(provider)
	if cfg.Sandbox != nil {
		framework.SetSandboxPolicy(cfg.Sandbox)
	}

	registry := coordinator.NewRegistry()
	return &Engine{
		config:    cfg,
		parser:    parser.NewYAMLParser(),
		registry:  registry,
		framework: framework,
		coordinator: coordinator.New(registry,
			coordinator.WithSecurity(framework),
			coordinator.WithHooks(hook.NewRunner())),
		log:       logger.Component("engine"),
		workflows: make(map[string]map[string]*types.WorkflowDefinition),
	}
}

// RegisterWorker binds a worker implementation to an agent name.
func (e *Engine) RegisterWorker(agent string, worker coordinator.Worker) error {
	return e.registry.Register(agent, worker)
}

// RegisterWorkflow validates and stores a workflow definition, keyed by
// name and version. Re-registering a name/version pair overwrites it.
func (e *Engine) RegisterWorkflow(def *types.WorkflowDefinition) error {
	validated, err := e.parser.ParseDefinition(def)
	if err != nil {
		return err
	}

	version := validated.Version
	if version == "" {
		version = DefaultVersion
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.workflows[validated.Name] == nil {
		e.workflows[validated.Name] = make(map[string]*types.WorkflowDefinition)
	}
	e.workflows[validated.Name][version] = validated
	e.log.Info("registered workflow %s v%s", validated.Name, version)
	return nil
}

// GetWorkflow returns a registered workflow. An empty version selects the
// highest registered version.
func (e *Engine) GetWorkflow(name, version string) (*types.WorkflowDefinition, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	versions, ok := e.workflows[name]
	if !ok || len(versions) == 0 {
		return nil, false
	}
	if version != "" {
		def, ok := versions[version]
		return def, ok
	}

	keys := make([]string, 0, len(versions))
	for v := range versions {
		keys = append(keys, v)
	}
	sort.Sort(sort.Reverse(sort.StringSlice(keys)))
	return versions[keys[0]], true
}

// ListWorkflows returns the registered workflow names, sorted.
func (e *Engine) ListWorkflows() []string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	names := make([]string, 0, len(e.workflows))
	for name := range e.workflows {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// WorkflowVersions returns the registered versions of one workflow, sorted.
func (e *Engine) WorkflowVersions(name string) []string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	versions := make([]string, 0, len(e.workflows[name]))
	for v := range e.workflows[name] {
		versions = append(versions, v)
	}
	sort.Strings(versions)
	return versions
}

// LoadWorkflowDirectory parses and registers every workflow file in a
// directory, returning how many were registered.
func (e *Engine) LoadWorkflowDirectory(dir string) (int, error) {
	defs, err := e.parser.LoadDirectory(dir)
	if err != nil {
		return 0, err
	}
	count := 0
	for _, def := range defs {
		if err := e.RegisterWorkflow(def); err != nil {
			e.log.Error("skipping workflow %s: %v", def.Name, err)
			continue
		}
		count++
	}
	return count, nil
}

// ExecuteWorkflow validates and runs a definition directly.
func (e *Engine) ExecuteWorkflow(ctx context.Context, def *types.WorkflowDefinition, callback types.StatusCallback, initial map[string]any) (*types.ExecutionReport, error) {
	validated, err := e.parser.ParseDefinition(def)
	if err != nil {
		return nil, err
	}
	return e.coordinator.ExecuteWorkflow(ctx, validated, callback, initial), nil
}

// ExecuteByName runs a registered workflow. An empty version selects the
// highest registered version.
func (e *Engine) ExecuteByName(ctx context.Context, name, version string, callback types.StatusCallback, initial map[string]any) (*types.ExecutionReport, error) {
	def, ok := e.GetWorkflow(name, version)
	if !ok {
		return nil, fmt.Errorf("no workflow registered under %q", name)
	}
	return e.coordinator.ExecuteWorkflow(ctx, def, callback, initial), nil
}

// ExecuteFile parses a workflow file and runs it.
func (e *Engine) ExecuteFile(ctx context.Context, path string, callback types.StatusCallback, initial map[string]any) (*types.ExecutionReport, error) {
	def, err := e.parser.ParseFile(path)
	if err != nil {
		return nil, err
	}
	return e.coordinator.ExecuteWorkflow(ctx, def, callback, initial), nil
}

// SecurityReport returns the security framework's current summary.
func (e *Engine) SecurityReport() security.Report {
	return e.framework.SecurityReport()
}

// Security returns the engine's security framework, for callers that
// mediate file operations themselves.
func (e *Engine) Security() *security.Framework {
	return e.framework
}
