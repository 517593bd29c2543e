// Package hook runs pre/post workflow scripts on an embedded JavaScript
// engine. Scripts see the run's shared data through a `shared` object and
// their edits are handed back to the scheduler when the script succeeds.
package hook

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/dop251/goja"

	"teamresumes/agent-engine/pkg/logger"
	"teamresumes/agent-engine/pkg/types"
)

// DefaultTimeout applies when a hook does not set its own timeout.
const DefaultTimeout = 10 * time.Second

// Runner executes hook scripts. Each run gets a fresh VM; hooks share no
// state with each other.
type Runner struct {
	log *logger.ComponentLogger
}

// NewRunner creates a hook runner.
func NewRunner() *Runner {
	return &Runner{log: logger.Component("hook")}
}

// Run executes the hook script against a copy of shared data and returns
// the copy with the script's edits applied. A script error or timeout
// returns the original data untouched alongside the error.
func (r *Runner) Run(ctx context.Context, hook *types.Hook, shared map[string]any) (map[string]any, error) {
	if hook == nil || strings.TrimSpace(hook.Script) == "" {
		return shared, nil
	}

	timeout := DefaultTimeout
	if hook.Timeout > 0 {
		timeout = time.Duration(hook.Timeout) * time.Second
	}

	working := make(map[string]any, len(shared))
	for k, v := range shared {
		working[k] = v
	}

	vm := goja.New()
	r.setupShared(vm, working)
	r.setupConsole(vm)

	runCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	done := make(chan struct{})
	go func() {
		select {
		case <-runCtx.Done():
			vm.Interrupt("hook timed out")
		case <-done:
		}
	}()

	_, err := vm.RunString(hook.Script)
	close(done)

	if err != nil {
		if runCtx.Err() != nil {
			return shared, fmt.Errorf("hook timed out after %s", timeout)
		}
		return shared, fmt.Errorf("hook script: %w", err)
	}
	return working, nil
}

// setupShared exposes the working map as a `shared` object with
// get/set/has/del/all accessors. Writes go straight through to the map.
func (r *Runner) setupShared(vm *goja.Runtime, working map[string]any) {
	shared := vm.NewObject()

	shared.Set("get", func(call goja.FunctionCall) goja.Value {
		if len(call.Arguments) == 0 {
			return goja.Undefined()
		}
		if val, ok := working[call.Arguments[0].String()]; ok {
			return vm.ToValue(val)
		}
		return goja.Undefined()
	})
	shared.Set("set", func(call goja.FunctionCall) goja.Value {
		if len(call.Arguments) < 2 {
			return goja.Undefined()
		}
		working[call.Arguments[0].String()] = call.Arguments[1].Export()
		return goja.Undefined()
	})
	shared.Set("has", func(call goja.FunctionCall) goja.Value {
		if len(call.Arguments) == 0 {
			return vm.ToValue(false)
		}
		_, ok := working[call.Arguments[0].String()]
		return vm.ToValue(ok)
	})
	shared.Set("del", func(call goja.FunctionCall) goja.Value {
		if len(call.Arguments) == 0 {
			return goja.Undefined()
		}
		delete(working, call.Arguments[0].String())
		return goja.Undefined()
	})
	shared.Set("all", func(call goja.FunctionCall) goja.Value {
		return vm.ToValue(working)
	})

	vm.Set("shared", shared)
}

// setupConsole routes console output into the engine log.
func (r *Runner) setupConsole(vm *goja.Runtime) {
	console := vm.NewObject()

	log := func(emit func(string, ...any)) func(goja.FunctionCall) goja.Value {
		return func(call goja.FunctionCall) goja.Value {
			parts := make([]string, len(call.Arguments))
			for i, arg := range call.Arguments {
				parts[i] = formatValue(arg)
			}
			emit("%s", strings.Join(parts, " "))
			return goja.Undefined()
		}
	}

	console.Set("log", log(r.log.Info))
	console.Set("info", log(r.log.Info))
	console.Set("warn", log(r.log.Warn))
	console.Set("error", log(r.log.Error))

	vm.Set("console", console)
}

func formatValue(val goja.Value) string {
	if val == nil || goja.IsUndefined(val) {
		return "undefined"
	}
	if goja.IsNull(val) {
		return "null"
	}
	return fmt.Sprintf("%v", val.Export())
}
