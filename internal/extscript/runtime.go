// Package extscript embeds a small JavaScript runtime for optional site
// adapter scripts. An adapter can override auth-header derivation or supply
// extra touch URLs for nonstandard deployments of the target service,
// without rebuilding the daemon.
package extscript

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/dop251/goja"
	requirePkg "github.com/dop251/goja_nodejs/require"

	"github.com/jarvest/jarvest/pkg/logger"
)

// Runtime wraps one goja VM with require() support and a print binding.
// Not safe for concurrent use; the engine serializes adapter calls.
type Runtime struct {
	vm  *goja.Runtime
	req *requirePkg.RequireModule
	log logger.Logger
}

// NewRuntime creates a VM rooted at the script's directory for require()
// resolution.
func NewRuntime(l logger.Logger, wd string) (*Runtime, error) {
	registry := requirePkg.NewRegistry(requirePkg.WithGlobalFolders(wd))
	vm := goja.New()
	req := registry.Enable(vm)

	rt := &Runtime{vm: vm, req: req, log: l}
	if err := vm.Set("print", rt.print); err != nil {
		return nil, err
	}
	return rt, nil
}

func (r *Runtime) print(call goja.FunctionCall) goja.Value {
	parts := make([]interface{}, 0, len(call.Arguments))
	for _, v := range call.Arguments {
		parts = append(parts, v.Export())
	}
	r.log.Info("adapter: %v", parts)
	return goja.Undefined()
}

// RunFile executes the script at path in the VM.
func (r *Runtime) RunFile(path string) error {
	src, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("cannot read adapter script: %w", err)
	}
	if _, err := r.vm.RunScript(filepath.Base(path), string(src)); err != nil {
		return fmt.Errorf("adapter script failed: %w", err)
	}
	return nil
}

// Func looks up a global function by name.
func (r *Runtime) Func(name string) (goja.Callable, bool) {
	return goja.AssertFunction(r.vm.Get(name))
}

// ToValue converts a Go value for passing into the VM.
func (r *Runtime) ToValue(v interface{}) goja.Value {
	return r.vm.ToValue(v)
}
