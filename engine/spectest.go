package engine

import (
	"context"
	"math"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"
	"go.uber.org/zap"

	"github.com/wippyai/wasm-spectest/wasm"
)

const (
	spectestModuleName = "spectest"
	spectestHostName   = "$spectest-host"
)

// Values of the spectest globals.
const (
	SpectestGlobalInt   = 666
	SpectestGlobalFloat = 666.6
)

type spectestFunc struct {
	name   string
	params []api.ValueType
}

var spectestFuncs = []spectestFunc{
	{"print", nil},
	{"print_i32", []api.ValueType{api.ValueTypeI32}},
	{"print_i64", []api.ValueType{api.ValueTypeI64}},
	{"print_f32", []api.ValueType{api.ValueTypeF32}},
	{"print_f64", []api.ValueType{api.ValueTypeF64}},
	{"print_i32_f32", []api.ValueType{api.ValueTypeI32, api.ValueTypeF32}},
	{"print_f64_f64", []api.ValueType{api.ValueTypeF64, api.ValueTypeF64}},
}

// instantiateSpectest provides the "spectest" import module the official
// test suite links against. Host functions cannot carry tables, memories or
// globals, so the printing functions live in a host module and a synthesized
// module imports and re-exports them next to its own definitions.
func instantiateSpectest(ctx context.Context, r wazero.Runtime, log *zap.Logger) (*wazeroInstance, error) {
	host := r.NewHostModuleBuilder(spectestHostName)
	for _, f := range spectestFuncs {
		host.NewFunctionBuilder().
			WithGoModuleFunction(printFunc(log, f), f.params, nil).
			WithParameterNames(paramNames(len(f.params))...).
			Export(f.name)
	}
	if _, err := host.Instantiate(ctx); err != nil {
		return nil, err
	}

	compiled, err := r.CompileModule(ctx, spectestBinary())
	if err != nil {
		return nil, err
	}
	m, err := r.InstantiateModule(ctx, compiled,
		wazero.NewModuleConfig().WithName(spectestModuleName).WithStartFunctions())
	if err != nil {
		_ = compiled.Close(ctx)
		return nil, err
	}
	return &wazeroInstance{name: spectestModuleName, module: m, compiled: compiled}, nil
}

func spectestBinary() []byte {
	b := wasm.NewBuilder()
	for _, f := range spectestFuncs {
		params := make([]wasm.ValType, len(f.params))
		for i, p := range f.params {
			params[i] = wasm.ValType(p)
		}
		idx := b.AddImportFunc(spectestHostName, f.name, params, nil)
		b.Export(f.name, wasm.KindFunc, idx)
	}

	b.Export("global_i32", wasm.KindGlobal, b.AddGlobal(wasm.ValI32, false, SpectestGlobalInt))
	b.Export("global_i64", wasm.KindGlobal, b.AddGlobal(wasm.ValI64, false, SpectestGlobalInt))
	b.Export("global_f32", wasm.KindGlobal, b.AddGlobal(wasm.ValF32, false, uint64(math.Float32bits(SpectestGlobalFloat))))
	b.Export("global_f64", wasm.KindGlobal, b.AddGlobal(wasm.ValF64, false, math.Float64bits(SpectestGlobalFloat)))
	b.Export("table", wasm.KindTable, b.AddTable(wasm.ValFuncRef, wasm.Limits{Min: 10, Max: 20, HasMax: true}))
	b.Export("memory", wasm.KindMemory, b.AddMemory(wasm.Limits{Min: 1, Max: 2, HasMax: true}))
	return b.Build()
}

func printFunc(log *zap.Logger, f spectestFunc) api.GoModuleFunc {
	return func(_ context.Context, _ api.Module, stack []uint64) {
		if ce := log.Check(zap.DebugLevel, "spectest "+f.name); ce != nil {
			fields := make([]zap.Field, len(f.params))
			for i, p := range f.params {
				fields[i] = printField(i, p, stack[i])
			}
			ce.Write(fields...)
		}
	}
}

func printField(i int, t api.ValueType, raw uint64) zap.Field {
	key := paramNames(i + 1)[i]
	switch t {
	case api.ValueTypeI32:
		return zap.Int32(key, api.DecodeI32(raw))
	case api.ValueTypeF32:
		return zap.Float32(key, api.DecodeF32(raw))
	case api.ValueTypeF64:
		return zap.Float64(key, api.DecodeF64(raw))
	default:
		return zap.Int64(key, int64(raw))
	}
}

func paramNames(n int) []string {
	names := make([]string, n)
	for i := range names {
		names[i] = string(rune('a' + i))
	}
	return names
}
