package engine

import (
	"context"

	"github.com/wippyai/wasm-spectest/value"
)

// Engine compiles, links and instantiates module binaries.
type Engine interface {
	// Instantiate decodes, validates, links and instantiates binary.
	// Import module names are resolved through imports. Errors are
	// *errors.Error values classified by phase and kind.
	Instantiate(ctx context.Context, binary []byte, imports ImportResolver) (Instance, error)
	Close(ctx context.Context) error
}

// Instance is a live module instance.
type Instance interface {
	// Name returns the engine-internal name, unique per engine.
	Name() string
	// Invoke calls the exported function field.
	Invoke(ctx context.Context, field string, args []value.Value) (value.Return, error)
	// ExportType reports the declared type of an export.
	ExportType(field string) (ExportType, bool)
	Close(ctx context.Context) error
}

// ImportResolver maps an import module name to the instance providing it.
type ImportResolver interface {
	Resolve(module string) (Instance, bool)
}

// ResolverFunc adapts a function to ImportResolver.
type ResolverFunc func(module string) (Instance, bool)

func (f ResolverFunc) Resolve(module string) (Instance, bool) {
	return f(module)
}

// ExportKind classifies an export.
type ExportKind uint8

const (
	ExportFunc ExportKind = iota + 1
	ExportGlobal
	ExportMemory
	ExportTable
)

func (k ExportKind) String() string {
	switch k {
	case ExportFunc:
		return "func"
	case ExportGlobal:
		return "global"
	case ExportMemory:
		return "memory"
	case ExportTable:
		return "table"
	default:
		return "unknown"
	}
}

// ExportType is the declared type of an export. Params and Results are set
// for functions; Global and Mutable for globals. Value types the harness
// cannot represent (v128, references) are reported as the zero Type.
type ExportType struct {
	Params  []value.Type
	Results []value.Type
	Kind    ExportKind
	Global  value.Type
	Mutable bool
}

// Result returns the single declared result type of a function export.
func (t ExportType) Result() (value.Type, bool) {
	if t.Kind != ExportFunc || len(t.Results) != 1 {
		return 0, false
	}
	return t.Results[0], true
}
