package interp

import (
	"context"
	"testing"

	"github.com/wippyai/wasm-spectest/engine"
	"github.com/wippyai/wasm-spectest/registry"
	"github.com/wippyai/wasm-spectest/script"
	"github.com/wippyai/wasm-spectest/wasm"
)

func newWazeroRegistry(t *testing.T) *registry.Registry {
	t.Helper()
	ctx := context.Background()
	e, err := engine.NewWazeroEngine(ctx)
	if err != nil {
		t.Fatalf("NewWazeroEngine failed: %v", err)
	}
	reg := registry.New(e)
	t.Cleanup(func() {
		_ = reg.Close(ctx)
		_ = e.Close(ctx)
	})
	return reg
}

func built(name string, b *wasm.Builder) script.Module {
	return script.Module{Filename: name + ".wasm", Binary: b.Build()}
}

func TestStep_Wazero(t *testing.T) {
	memoryBounds := wasm.NewBuilder()
	memoryBounds.AddMemory(wasm.Limits{Min: 2, Max: 1, HasMax: true})

	memoryTooLarge := wasm.NewBuilder()
	memoryTooLarge.AddMemory(wasm.Limits{Min: 1, Max: 65537, HasMax: true})

	twoMemories := wasm.NewBuilder()
	twoMemories.AddMemory(wasm.Limits{Min: 1})
	twoMemories.AddMemory(wasm.Limits{Min: 1})

	tableBounds := wasm.NewBuilder()
	tableBounds.AddTable(wasm.ValFuncRef, wasm.Limits{Min: 2, Max: 1, HasMax: true})

	invalidImporter := wasm.NewBuilder()
	invalidImporter.AddImportFunc("", "f", nil, nil)
	invalidImporter.AddFunc(nil, nil, nil, []byte{wasm.OpI32Add})

	unknownImport := wasm.NewBuilder()
	unknownImport.AddImportFunc("unknown", "f", nil, nil)

	startTrap := wasm.NewBuilder()
	startTrap.SetStart(startTrap.AddFunc(nil, nil, nil, []byte{wasm.OpUnreachable}))

	tests := []struct {
		cmd  script.Command
		name string
	}{
		{script.AssertInvalid{Module: built("memory-bounds", memoryBounds)}, "invalid memory min above max"},
		{script.AssertInvalid{Module: built("memory-large", memoryTooLarge)}, "invalid memory max above 65536 pages"},
		{script.AssertInvalid{Module: built("two-memories", twoMemories)}, "invalid multiple memories"},
		{script.AssertInvalid{Module: built("table-bounds", tableBounds)}, "invalid table min above max"},
		{script.AssertInvalid{Module: built("invalid-importer", invalidImporter)}, "invalid with unregistered import"},
		{script.AssertMalformed{Module: built("two-memories", twoMemories)}, "malformed accepts validation"},
		{script.AssertUnlinkable{Module: built("unknown-import", unknownImport)}, "unlinkable unknown import"},
		{script.AssertUninstantiable{Module: built("start-trap", startTrap)}, "uninstantiable start trap"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reg := newWazeroRegistry(t)
			if err := Step(context.Background(), reg, tt.cmd); err != nil {
				t.Fatalf("Step failed: %v", err)
			}
			if reg.Len() != 0 {
				t.Errorf("Len = %d, want no instance bound", reg.Len())
			}
		})
	}
}

func TestStep_WazeroRegisteredImport(t *testing.T) {
	provider := wasm.NewBuilder()
	provider.Export("f", wasm.KindFunc, provider.AddFunc(nil, nil, nil, nil))

	importer := wasm.NewBuilder()
	importer.AddImportFunc("lib", "f", nil, nil)

	reg := newWazeroRegistry(t)
	ctx := context.Background()
	steps := []script.Command{
		script.AssertUnlinkable{Module: built("importer", importer)},
		script.DefineModule{Module: built("provider", provider)},
		script.Register{As: "lib"},
		script.DefineModule{Module: built("importer", importer)},
	}
	for i, cmd := range steps {
		if err := Step(ctx, reg, cmd); err != nil {
			t.Fatalf("step %d (%s): %v", i, cmd.Kind(), err)
		}
	}
	if reg.Len() != 2 {
		t.Errorf("Len = %d, want 2", reg.Len())
	}
}
