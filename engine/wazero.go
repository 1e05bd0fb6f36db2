package engine

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"
	"github.com/tetratelabs/wazero/experimental"
	"go.uber.org/zap"

	"github.com/wippyai/wasm-spectest/errors"
	"github.com/wippyai/wasm-spectest/value"
	"github.com/wippyai/wasm-spectest/wasm"
)

// Mode selects the wazero execution backend.
type Mode string

const (
	ModeAuto        Mode = "auto"
	ModeInterpreter Mode = "interpreter"
	ModeCompiler    Mode = "compiler"
)

// Config holds configuration for engine creation
type Config struct {
	// Mode selects interpreter or compiler. Empty means ModeAuto, which uses
	// the compiler where the platform supports it.
	Mode Mode

	// CoreFeatures enables WebAssembly proposals. 0 means api.CoreFeaturesV2.
	CoreFeatures api.CoreFeatures

	// MemoryLimitPages sets the maximum memory per instance in pages (64KB each).
	// 0 means default (65536 pages = 4GB). The spectest module needs at least 2.
	MemoryLimitPages uint32

	// InvokeTimeout bounds every export call and start function. 0 disables it.
	InvokeTimeout time.Duration

	// EnableThreads enables the WebAssembly threads proposal (experimental).
	EnableThreads bool

	// DisableSpectest skips instantiating the spectest host module.
	DisableSpectest bool

	// Logger receives the engine's logs. nil means the package Logger.
	Logger *zap.Logger
}

// WazeroEngine implements Engine using wazero runtime
type WazeroEngine struct {
	runtime  wazero.Runtime
	spectest *wazeroInstance
	log      *zap.Logger
	cfg      Config
	seq      atomic.Uint64
}

var _ Engine = (*WazeroEngine)(nil)

// NewWazeroEngine creates a new wazero-based engine
func NewWazeroEngine(ctx context.Context) (*WazeroEngine, error) {
	return NewWazeroEngineWithConfig(ctx, nil)
}

// NewWazeroEngineWithConfig creates a new engine with custom configuration
func NewWazeroEngineWithConfig(ctx context.Context, cfg *Config) (*WazeroEngine, error) {
	var c Config
	if cfg != nil {
		c = *cfg
	}

	var runtimeCfg wazero.RuntimeConfig
	switch c.Mode {
	case ModeInterpreter:
		runtimeCfg = wazero.NewRuntimeConfigInterpreter()
	case ModeCompiler:
		runtimeCfg = wazero.NewRuntimeConfigCompiler()
	case ModeAuto, "":
		runtimeCfg = wazero.NewRuntimeConfig()
	default:
		return nil, errors.InvalidInput(errors.PhaseLoad, fmt.Sprintf("unknown engine mode %q", c.Mode))
	}

	features := c.CoreFeatures
	if features == 0 {
		features = api.CoreFeaturesV2
	}
	if c.EnableThreads {
		features |= experimental.CoreFeaturesThreads
	}
	runtimeCfg = runtimeCfg.WithCoreFeatures(features)

	if c.MemoryLimitPages > 0 {
		runtimeCfg = runtimeCfg.WithMemoryLimitPages(c.MemoryLimitPages)
	}
	if c.InvokeTimeout > 0 {
		runtimeCfg = runtimeCfg.WithCloseOnContextDone(true)
	}

	e := &WazeroEngine{
		runtime: wazero.NewRuntimeWithConfig(ctx, runtimeCfg),
		log:     c.Logger,
		cfg:     c,
	}
	if e.log == nil {
		e.log = Logger()
	}

	if !c.DisableSpectest {
		inst, err := instantiateSpectest(ctx, e.runtime, e.log)
		if err != nil {
			_ = e.runtime.Close(ctx)
			return nil, fmt.Errorf("instantiate spectest module: %w", err)
		}
		inst.engine = e
		e.spectest = inst
	}

	e.log.Debug("engine created",
		zap.String("mode", string(c.Mode)),
		zap.Uint64("features", uint64(features)),
		zap.Bool("spectest", e.spectest != nil))
	return e, nil
}

// Close releases the runtime and every instance created by it.
func (e *WazeroEngine) Close(ctx context.Context) error {
	return e.runtime.Close(ctx)
}

func (e *WazeroEngine) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if e.cfg.InvokeTimeout > 0 {
		return context.WithTimeout(ctx, e.cfg.InvokeTimeout)
	}
	return ctx, func() {}
}

// Instantiate implements Engine.
//
// The binary is framed with wasm.Scan first so that malformed encodings are
// reported as deserialization errors before wazero sees them. It is then
// compiled as given, so validation errors win over unresolved imports. Import
// module names are rewritten to the internal names of the resolved
// instances, which lets registered aliases share memories, tables and
// globals with the instance they name.
func (e *WazeroEngine) Instantiate(ctx context.Context, binary []byte, imports ImportResolver) (Instance, error) {
	mod, err := wasm.Scan(binary)
	if err != nil {
		return nil, errors.Deserialization("scan module", err)
	}

	compiled, err := e.runtime.CompileModule(ctx, binary)
	if err != nil {
		return nil, classifyCompile(err)
	}

	renames, providers, err := e.resolveImports(mod, imports)
	if err != nil {
		_ = compiled.Close(ctx)
		return nil, err
	}
	if renamesChange(renames) {
		_ = compiled.Close(ctx)
		compiled, err = e.runtime.CompileModule(ctx, wasm.RewriteImportModules(binary, mod, renames))
		if err != nil {
			return nil, classifyCompile(err)
		}
	}

	if err := checkImports(compiled, providers); err != nil {
		_ = compiled.Close(ctx)
		return nil, err
	}

	name := fmt.Sprintf("$%d", e.seq.Add(1))
	callCtx, cancel := e.withTimeout(ctx)
	defer cancel()

	m, err := e.runtime.InstantiateModule(callCtx, compiled,
		wazero.NewModuleConfig().WithName(name).WithStartFunctions())
	if err != nil {
		_ = compiled.Close(ctx)
		return nil, classifyInstantiate(err)
	}

	e.log.Debug("instantiated module",
		zap.String("name", name),
		zap.Int("imports", len(mod.Imports)),
		zap.Int("exports", len(mod.Exports)))

	return &wazeroInstance{
		engine:   e,
		name:     name,
		module:   m,
		compiled: compiled,
	}, nil
}

// resolveImports maps every import module name to a live instance of this
// engine. Names no resolver knows fall back to the spectest host module.
func (e *WazeroEngine) resolveImports(mod *wasm.Module, imports ImportResolver) (map[string]string, map[string]*wazeroInstance, error) {
	names := mod.ImportModules()
	if len(names) == 0 {
		return nil, nil, nil
	}

	renames := make(map[string]string, len(names))
	providers := make(map[string]*wazeroInstance, len(names))
	for _, name := range names {
		var provider *wazeroInstance
		if imports != nil {
			if inst, ok := imports.Resolve(name); ok {
				wi, ok := inst.(*wazeroInstance)
				if !ok || wi.engine != e {
					return nil, nil, errors.Link(fmt.Sprintf("import module %q belongs to another engine", name), nil)
				}
				provider = wi
			}
		}
		if provider == nil && name == spectestModuleName && e.spectest != nil {
			provider = e.spectest
		}
		if provider == nil {
			return nil, nil, errors.Link(fmt.Sprintf("unknown import module %q", name), nil)
		}
		renames[name] = provider.name
		providers[provider.name] = provider
	}
	return renames, providers, nil
}

func renamesChange(renames map[string]string) bool {
	for from, to := range renames {
		if from != to {
			return true
		}
	}
	return false
}

// checkImports verifies imported functions and memories against the exports
// of their providers so that mismatches surface as link errors with the
// import named.
func checkImports(compiled wazero.CompiledModule, providers map[string]*wazeroInstance) error {
	for _, def := range compiled.ImportedFunctions() {
		modName, name, _ := def.Import()
		provider := providers[modName]
		if provider == nil {
			continue
		}
		export, ok := provider.module.ExportedFunctionDefinitions()[name]
		if !ok {
			return errors.Link(fmt.Sprintf("unknown import: function %q", name), nil)
		}
		if !sameTypes(export.ParamTypes(), def.ParamTypes()) || !sameTypes(export.ResultTypes(), def.ResultTypes()) {
			return errors.Link(fmt.Sprintf("incompatible import type: function %q", name), nil)
		}
	}
	for _, def := range compiled.ImportedMemories() {
		modName, name, _ := def.Import()
		provider := providers[modName]
		if provider == nil {
			continue
		}
		if provider.module.ExportedMemory(name) == nil {
			return errors.Link(fmt.Sprintf("unknown import: memory %q", name), nil)
		}
	}
	return nil
}

func sameTypes(a, b []api.ValueType) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// wazeroInstance implements Instance over an api.Module.
type wazeroInstance struct {
	engine   *WazeroEngine
	module   api.Module
	compiled wazero.CompiledModule
	name     string
}

var _ Instance = (*wazeroInstance)(nil)

func (i *wazeroInstance) Name() string {
	return i.name
}

// Invoke implements Instance.
func (i *wazeroInstance) Invoke(ctx context.Context, field string, args []value.Value) (value.Return, error) {
	fn := i.module.ExportedFunction(field)
	if fn == nil {
		return value.Return{}, errors.NotFound(errors.PhaseInvoke, "function export", field)
	}

	params := fn.Definition().ParamTypes()
	if len(params) != len(args) {
		return value.Return{}, errors.InvalidInput(errors.PhaseInvoke,
			fmt.Sprintf("invoke %q: expected %d arguments, got %d", field, len(params), len(args)))
	}
	for n, p := range params {
		if t := valueType(p); t != args[n].Type {
			return value.Return{}, errors.InvalidInput(errors.PhaseInvoke,
				fmt.Sprintf("invoke %q: argument %d is %s, want %s", field, n, args[n].Type, api.ValueTypeName(p)))
		}
	}

	callCtx, cancel := i.engine.withTimeout(ctx)
	defer cancel()

	results, err := fn.Call(callCtx, value.Args(args)...)
	if err != nil {
		return value.Return{}, classifyCall(field, err)
	}
	return value.NewReturn(results), nil
}

// ExportType implements Instance.
func (i *wazeroInstance) ExportType(field string) (ExportType, bool) {
	if def, ok := i.module.ExportedFunctionDefinitions()[field]; ok {
		return ExportType{
			Kind:    ExportFunc,
			Params:  valueTypes(def.ParamTypes()),
			Results: valueTypes(def.ResultTypes()),
		}, true
	}
	if g := i.module.ExportedGlobal(field); g != nil {
		_, mutable := g.(api.MutableGlobal)
		return ExportType{Kind: ExportGlobal, Global: valueType(g.Type()), Mutable: mutable}, true
	}
	if _, ok := i.module.ExportedMemoryDefinitions()[field]; ok {
		return ExportType{Kind: ExportMemory}, true
	}
	return ExportType{}, false
}

// Close implements Instance.
func (i *wazeroInstance) Close(ctx context.Context) error {
	err := i.module.Close(ctx)
	if i.compiled != nil {
		if cerr := i.compiled.Close(ctx); err == nil {
			err = cerr
		}
	}
	return err
}

func valueType(t api.ValueType) value.Type {
	switch t {
	case api.ValueTypeI32:
		return value.TypeI32
	case api.ValueTypeI64:
		return value.TypeI64
	case api.ValueTypeF32:
		return value.TypeF32
	case api.ValueTypeF64:
		return value.TypeF64
	default:
		return 0
	}
}

func valueTypes(ts []api.ValueType) []value.Type {
	if len(ts) == 0 {
		return nil
	}
	out := make([]value.Type, len(ts))
	for n, t := range ts {
		out[n] = valueType(t)
	}
	return out
}
