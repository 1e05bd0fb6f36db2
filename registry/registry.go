// Package registry tracks the module instances of one script run.
//
// Instances are kept in creation order. A name resolves to the most recent
// instance bound to it, so rebinding a name replaces the binding and removing
// the newest instance uncovers the previous one. Registered aliases are the
// only names visible to imports of later modules.
package registry

import (
	"context"

	"github.com/wippyai/wasm-spectest/engine"
	"github.com/wippyai/wasm-spectest/errors"
	"github.com/wippyai/wasm-spectest/value"
)

type binding struct {
	inst engine.Instance
	name string
}

// Registry owns the instances of one script run. It is not safe for
// concurrent use.
type Registry struct {
	engine   engine.Engine
	aliases  map[string]engine.Instance
	bindings []binding
}

var _ engine.ImportResolver = (*Registry)(nil)

// New creates an empty registry instantiating modules with e.
func New(e engine.Engine) *Registry {
	return &Registry{
		engine:  e,
		aliases: make(map[string]engine.Instance),
	}
}

// Instantiate compiles and links binary against the registered aliases. On
// success the instance becomes the latest one and, when name is not empty,
// the one bound to name. On failure nothing is bound.
func (r *Registry) Instantiate(ctx context.Context, binary []byte, name string) (engine.Instance, error) {
	inst, err := r.engine.Instantiate(ctx, binary, r)
	if err != nil {
		return nil, err
	}
	r.bindings = append(r.bindings, binding{inst: inst, name: name})
	return inst, nil
}

// Register makes the instance bound to name importable under alias. An empty
// name selects the latest instance.
func (r *Registry) Register(name, alias string) error {
	inst, ok := r.InstanceNamed(name)
	if !ok {
		return notBound(errors.PhaseRegister, name)
	}
	r.aliases[alias] = inst
	return nil
}

// DeleteLast removes the most recently bound instance together with any
// alias that refers to it, and closes it.
func (r *Registry) DeleteLast(ctx context.Context) error {
	if len(r.bindings) == 0 {
		return nil
	}
	last := r.bindings[len(r.bindings)-1]
	r.bindings = r.bindings[:len(r.bindings)-1]
	for alias, inst := range r.aliases {
		if inst == last.inst {
			delete(r.aliases, alias)
		}
	}
	return last.inst.Close(ctx)
}

// InstanceNamed returns the instance bound to name, or the latest instance
// when name is empty.
func (r *Registry) InstanceNamed(name string) (engine.Instance, bool) {
	for i := len(r.bindings) - 1; i >= 0; i-- {
		if name == "" || r.bindings[i].name == name {
			return r.bindings[i].inst, true
		}
	}
	return nil, false
}

// Run invokes field on the instance named module, or on the latest instance
// when module is empty.
func (r *Registry) Run(ctx context.Context, module, field string, args []value.Value) (value.Return, error) {
	inst, ok := r.InstanceNamed(module)
	if !ok {
		return value.Return{}, notBound(errors.PhaseLookup, module)
	}
	return inst.Invoke(ctx, field, args)
}

// Resolve implements engine.ImportResolver over registered aliases.
func (r *Registry) Resolve(module string) (engine.Instance, bool) {
	inst, ok := r.aliases[module]
	return inst, ok
}

// Len returns the number of live instances.
func (r *Registry) Len() int {
	return len(r.bindings)
}

// Close closes every instance and empties the registry.
func (r *Registry) Close(ctx context.Context) error {
	var first error
	for i := len(r.bindings) - 1; i >= 0; i-- {
		if err := r.bindings[i].inst.Close(ctx); err != nil && first == nil {
			first = err
		}
	}
	r.bindings = nil
	r.aliases = make(map[string]engine.Instance)
	return first
}

func notBound(phase errors.Phase, name string) *errors.Error {
	if name == "" {
		return errors.New(phase, errors.KindNotFound).Detail("no module instantiated").Build()
	}
	return errors.NotFound(phase, "module", name)
}
