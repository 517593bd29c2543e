package coordinator

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"teamresumes/agent-engine/pkg/types"
)

// Worker executes one action on behalf of a named agent. Implementations
// must be safe for concurrent use; parallel steps call the same worker
// from multiple goroutines.
type Worker interface {
	Execute(ctx context.Context, agent, action string, params map[string]any) (*types.WorkerResponse, error)
}

// WorkerFunc adapts a function to the Worker interface.
type WorkerFunc func(ctx context.Context, agent, action string, params map[string]any) (*types.WorkerResponse, error)

func (f WorkerFunc) Execute(ctx context.Context, agent, action string, params map[string]any) (*types.WorkerResponse, error) {
	return f(ctx, agent, action, params)
}

// Registry maps agent names to the workers that implement them.
type Registry struct {
	mu      sync.RWMutex
	workers map[string]Worker
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{workers: make(map[string]Worker)}
}

// Register binds a worker to an agent name. Registering a name twice is
// an error; use a fresh registry per engine instead of rebinding.
func (r *Registry) Register(agent string, worker Worker) error {
	if agent == "" {
		return fmt.Errorf("register worker: agent name is empty")
	}
	if worker == nil {
		return fmt.Errorf("register worker: worker for %q is nil", agent)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.workers[agent]; exists {
		return fmt.Errorf("register worker: agent %q already registered", agent)
	}
	r.workers[agent] = worker
	return nil
}

// MustRegister is Register that panics on error. For static setup code.
func (r *Registry) MustRegister(agent string, worker Worker) {
	if err := r.Register(agent, worker); err != nil {
		panic(err)
	}
}

// Get returns the worker bound to the agent name.
func (r *Registry) Get(agent string) (Worker, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	w, ok := r.workers[agent]
	return w, ok
}

// Has reports whether the agent name is bound.
func (r *Registry) Has(agent string) bool {
	_, ok := r.Get(agent)
	return ok
}

// Agents returns the registered agent names, sorted.
func (r *Registry) Agents() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.workers))
	for name := range r.workers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Count returns the number of registered agents.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.workers)
}
